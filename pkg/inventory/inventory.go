// Package inventory defines the low-stock query contract and the YAML
// catalog format used to seed the item table.
package inventory

import (
	"context"

	"github.com/shelfwatch/shelfwatch/pkg/model"
)

// DefaultThreshold is the stock level below which items are reported.
const DefaultThreshold = 5

// Query fetches the current low-stock snapshot. Every call re-queries;
// nothing is cached.
type Query interface {
	// LowStockItems returns items with stock strictly below threshold.
	LowStockItems(ctx context.Context, threshold int) ([]model.Item, error)
}
