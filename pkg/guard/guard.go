// Package guard provides the once-per-day idempotency check behind
// low-stock alerting.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelfwatch/shelfwatch/pkg/clock"
	"github.com/shelfwatch/shelfwatch/pkg/model"
	"github.com/shelfwatch/shelfwatch/pkg/storage"
)

// StateStore is the subset of storage the guard needs.
type StateStore interface {
	GetAlertState(ctx context.Context, stream string) (*model.AlertState, error)
	MarkAlertSent(ctx context.Context, stream, date string) (bool, error)
}

// Guard answers "was today's alert already sent?" and records sends,
// keyed by calendar date in the configured timezone.
type Guard struct {
	store  StateStore
	clock  clock.Clock
	stream string
}

// New creates a guard for a single alert stream.
func New(store StateStore, clk clock.Clock, stream string) *Guard {
	return &Guard{
		store:  store,
		clock:  clk,
		stream: stream,
	}
}

// AlreadySentToday reports whether the stream was marked for today's
// date. A store failure propagates: the caller must abort rather than
// assume "not sent", or a transient read error could produce a duplicate.
func (g *Guard) AlreadySentToday(ctx context.Context) (bool, error) {
	state, err := g.store.GetAlertState(ctx, g.stream)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read alert state: %w", err)
	}
	return state.LastSentDate == g.clock.Today(), nil
}

// MarkSentToday records today's date for the stream. The underlying
// write is conditional: the stored date only advances, so concurrent
// callers and stale processes cannot double-claim or regress a day.
// Returns whether this call advanced the date; false means another
// caller already marked today (or a later day), which is not an error.
func (g *Guard) MarkSentToday(ctx context.Context) (bool, error) {
	advanced, err := g.store.MarkAlertSent(ctx, g.stream, g.clock.Today())
	if err != nil {
		return false, fmt.Errorf("mark alert sent: %w", err)
	}
	return advanced, nil
}
