package session_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwatch/shelfwatch/pkg/session"
	"github.com/shelfwatch/shelfwatch/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(t *testing.T) *storage.SQLite {
	t.Helper()
	db, err := storage.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// stubSource reports a fixed active session.
type stubSource struct {
	mu   sync.Mutex
	blob []byte
}

func (s *stubSource) ActiveSession() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blob == nil {
		return nil, false
	}
	return s.blob, true
}

func TestStore_RestoreAbsent(t *testing.T) {
	s := session.New(newTestStore(t), nil, "default", time.Minute, testLogger())

	blob, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, blob)
}

func TestStore_RoundTrip(t *testing.T) {
	db := newTestStore(t)
	s := session.New(db, nil, "default", time.Minute, testLogger())

	want := []byte(`{"token":"tok-1","device":"shelfwatch"}`)
	s.OnSessionChanged(want)

	got, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_ChangeOverwrites(t *testing.T) {
	db := newTestStore(t)
	s := session.New(db, nil, "default", time.Minute, testLogger())

	s.OnSessionChanged([]byte(`{"token":"old"}`))
	s.OnSessionChanged([]byte(`{"token":"new"}`))

	got, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"token":"new"}`), got)
}

func TestStore_BackupLoop(t *testing.T) {
	db := newTestStore(t)
	src := &stubSource{blob: []byte(`{"token":"live"}`)}
	s := session.New(db, src, "default", 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		blob, err := db.LoadSession(context.Background(), "default")
		return err == nil && string(blob) == `{"token":"live"}`
	}, time.Second, 5*time.Millisecond, "backup loop should persist the active session")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("backup loop did not stop on cancel")
	}
}

func TestStore_BackupSkipsWithoutSession(t *testing.T) {
	db := newTestStore(t)
	src := &stubSource{}
	s := session.New(db, src, "default", 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	_, err := db.LoadSession(context.Background(), "default")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// failingBlobStore always fails persistence.
type failingBlobStore struct{}

func (failingBlobStore) SaveSession(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func (failingBlobStore) LoadSession(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk full")
}

func TestStore_PersistFailureNotFatal(t *testing.T) {
	s := session.New(failingBlobStore{}, nil, "default", time.Minute, testLogger())

	// Must not panic or propagate
	s.OnSessionChanged([]byte(`{"token":"x"}`))

	_, err := s.Restore(context.Background())
	assert.Error(t, err)
}
