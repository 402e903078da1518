// Package alerter composes the inventory query, the daily guard and the
// message transport into one idempotent check-and-send action.
package alerter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/shelfwatch/shelfwatch/pkg/inventory"
	"github.com/shelfwatch/shelfwatch/pkg/model"
	"github.com/shelfwatch/shelfwatch/pkg/transport"
)

// Guard answers and records the once-per-day send decision.
type Guard interface {
	AlreadySentToday(ctx context.Context) (bool, error)
	MarkSentToday(ctx context.Context) (bool, error)
}

// HistoryStore appends sent alerts to the history log.
type HistoryStore interface {
	RecordAlert(ctx context.Context, rec *model.AlertRecord) error
}

// Alerter runs the daily low-stock check. Safe for concurrent use; the
// scheduler and the manual trigger surface share one instance.
type Alerter struct {
	inv       inventory.Query
	guard     Guard
	sender    transport.Sender
	history   HistoryStore
	stream    string
	recipient string
	threshold int
	logger    *slog.Logger

	// serializes in-process invocations so a manual trigger racing the
	// timer cannot double-send; cross-process safety comes from the
	// guard's conditional write.
	mu sync.Mutex
}

// New creates an alerter.
func New(inv inventory.Query, g Guard, sender transport.Sender, history HistoryStore, stream, recipient string, threshold int, logger *slog.Logger) *Alerter {
	if threshold <= 0 {
		threshold = inventory.DefaultThreshold
	}
	return &Alerter{
		inv:       inv,
		guard:     g,
		sender:    sender,
		history:   history,
		stream:    stream,
		recipient: recipient,
		threshold: threshold,
		logger:    logger,
	}
}

// CheckAndSend queries for low-stock items and sends today's alert if it
// has not gone out yet. Ordering is deliberate: the guard is checked
// before the send and marked only after a confirmed send, so a crash in
// between risks at most a duplicate, never a silently lost alert.
func (a *Alerter) CheckAndSend(ctx context.Context) (model.CheckResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	items, err := a.inv.LowStockItems(ctx, a.threshold)
	if err != nil {
		return "", fmt.Errorf("query low stock: %w", err)
	}

	// An empty day never consumes the daily flag, so the next genuinely
	// low day still alerts.
	if len(items) == 0 {
		return model.ResultNone, nil
	}

	sent, err := a.guard.AlreadySentToday(ctx)
	if err != nil {
		return "", err
	}
	if sent {
		return model.ResultSkipped, nil
	}

	msg := FormatMessage(items)

	// Single attempt; the next tick or manual trigger is the retry.
	if err := a.sender.Send(ctx, a.recipient, msg); err != nil {
		return "", fmt.Errorf("send alert: %w", err)
	}

	if _, err := a.guard.MarkSentToday(ctx); err != nil {
		// The message is already out. Failing here leaves the day
		// unmarked and a later invocation may duplicate, which is the
		// accepted side of the trade-off.
		a.logger.Error("mark sent after delivery", "stream", a.stream, "error", err)
	}

	a.recordHistory(ctx, msg, len(items))

	a.logger.Info("low stock alert sent",
		"stream", a.stream,
		"recipient", a.recipient,
		"items", len(items),
		"transport", a.sender.Name(),
	)
	return model.ResultSent, nil
}

func (a *Alerter) recordHistory(ctx context.Context, msg string, count int) {
	if a.history == nil {
		return
	}
	rec := &model.AlertRecord{
		ID:        ulid.Make().String(),
		Stream:    a.stream,
		Recipient: a.recipient,
		ItemCount: count,
		Message:   msg,
	}
	if err := a.history.RecordAlert(ctx, rec); err != nil {
		a.logger.Error("record alert history", "stream", a.stream, "error", err)
	}
}

// FormatMessage renders the daily alert body. Item order is preserved
// from the query, which already ranks by severity.
func FormatMessage(items []model.Item) string {
	var b strings.Builder
	noun := "items"
	if len(items) == 1 {
		noun = "item"
	}
	fmt.Fprintf(&b, "Low stock alert (%d %s):", len(items), noun)
	for _, it := range items {
		fmt.Fprintf(&b, "\n- %s: %d left", it.DisplayName(), it.Stock)
	}
	return b.String()
}
