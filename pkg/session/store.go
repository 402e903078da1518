// Package session persists the transport's opaque authentication blob
// so a restart can resume the connection without re-authenticating.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfwatch/shelfwatch/pkg/storage"
	"github.com/shelfwatch/shelfwatch/pkg/transport"
)

// DefaultBackupInterval is how often the active session is re-persisted
// even without an explicit change notification.
const DefaultBackupInterval = 10 * time.Minute

const persistTimeout = 5 * time.Second

// BlobStore is the subset of storage the session store needs.
type BlobStore interface {
	SaveSession(ctx context.Context, key string, blob []byte) error
	LoadSession(ctx context.Context, key string) ([]byte, error)
}

// Store persists and restores one logical session blob and runs the
// periodic backup loop.
type Store struct {
	store    BlobStore
	source   transport.SessionSource
	key      string
	interval time.Duration
	logger   *slog.Logger
}

// New creates a session store. source may be nil when the configured
// transport holds no session; the backup loop then has nothing to do.
func New(store BlobStore, source transport.SessionSource, key string, interval time.Duration, logger *slog.Logger) *Store {
	if interval <= 0 {
		interval = DefaultBackupInterval
	}
	return &Store{
		store:    store,
		source:   source,
		key:      key,
		interval: interval,
		logger:   logger,
	}
}

// Restore returns the previously saved blob, or nil if none was saved.
// Called once at startup, before the transport connects.
func (s *Store) Restore(ctx context.Context) ([]byte, error) {
	blob, err := s.store.LoadSession(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return blob, nil
}

// OnSessionChanged persists a new blob from the transport. Persist
// failures are logged, never surfaced: a stale-but-present session is
// preferable to disturbing a live connection, and the backup loop will
// retry on its next tick.
func (s *Store) OnSessionChanged(blob []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.store.SaveSession(ctx, s.key, blob); err != nil {
		s.logger.Error("persist session", "key", s.key, "error", err)
		return
	}
	s.logger.Debug("session persisted", "key", s.key, "bytes", len(blob))
}

// Run executes the backup loop until ctx is cancelled. Each tick
// re-persists the transport's active session if one exists, covering
// missed change notifications. The timer is relative: a suspended
// process resumes cleanly on the next interval.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.backup(ctx)
		}
	}
}

func (s *Store) backup(ctx context.Context) {
	if s.source == nil {
		return
	}
	blob, ok := s.source.ActiveSession()
	if !ok {
		return
	}

	pctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	if err := s.store.SaveSession(pctx, s.key, blob); err != nil {
		s.logger.Warn("session backup failed, will retry next cycle", "key", s.key, "error", err)
		return
	}
	s.logger.Debug("session backup complete", "key", s.key, "bytes", len(blob))
}
