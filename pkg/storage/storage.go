package storage

import (
	"context"
	"errors"

	"github.com/shelfwatch/shelfwatch/pkg/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence layer for inventory, alert state,
// alert history and transport sessions.
type Store interface {
	// UpsertItem creates or updates an inventory item.
	UpsertItem(ctx context.Context, item *model.Item) error

	// GetItem retrieves an item by identifier.
	GetItem(ctx context.Context, id string) (*model.Item, error)

	// ListItems returns all items ordered by identifier.
	ListItems(ctx context.Context) ([]model.Item, error)

	// LowStockItems returns items with stock strictly below threshold,
	// most critical (lowest stock) first.
	LowStockItems(ctx context.Context, threshold int) ([]model.Item, error)

	// DeleteItem removes an item.
	DeleteItem(ctx context.Context, id string) error

	// GetAlertState retrieves the daily alert state for a stream.
	// Returns ErrNotFound if the stream has never been marked.
	GetAlertState(ctx context.Context, stream string) (*model.AlertState, error)

	// MarkAlertSent conditionally advances the stream's last-sent date.
	// The write succeeds only if date is later than the stored one, so
	// concurrent callers cannot regress it. Returns whether this call
	// advanced the date.
	MarkAlertSent(ctx context.Context, stream, date string) (bool, error)

	// RecordAlert appends an entry to the alert history log.
	RecordAlert(ctx context.Context, rec *model.AlertRecord) error

	// ListAlerts returns the most recent history entries, newest first.
	ListAlerts(ctx context.Context, limit int) ([]model.AlertRecord, error)

	// SaveSession persists an opaque session blob, replacing any prior
	// blob under the same key.
	SaveSession(ctx context.Context, key string, blob []byte) error

	// LoadSession retrieves a session blob. Returns ErrNotFound if no
	// blob has been saved under the key.
	LoadSession(ctx context.Context, key string) ([]byte, error)

	// Close releases resources.
	Close() error
}
