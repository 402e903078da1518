package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shelfwatch/shelfwatch/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements the Store interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// _pragma parameters apply per connection, so every pool connection
	// gets the busy timeout; a racing conditional write then waits
	// instead of failing with SQLITE_BUSY.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) UpsertItem(ctx context.Context, item *model.Item) error {
	if item.ID == "" {
		return fmt.Errorf("upsert item: empty identifier")
	}
	item.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, name, stock, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   stock = excluded.stock,
		   updated_at = excluded.updated_at`,
		item.ID, item.Name, item.Stock, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}
	return nil
}

func (s *SQLite) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var it model.Item
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, stock, updated_at FROM items WHERE id = ?`, id,
	).Scan(&it.ID, &it.Name, &it.Stock, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

func (s *SQLite) ListItems(ctx context.Context) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, stock, updated_at FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (s *SQLite) LowStockItems(ctx context.Context, threshold int) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, stock, updated_at FROM items
		 WHERE stock < ? ORDER BY stock ASC, id ASC`, threshold)
	if err != nil {
		return nil, fmt.Errorf("query low stock: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (s *SQLite) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLite) GetAlertState(ctx context.Context, stream string) (*model.AlertState, error) {
	var st model.AlertState
	err := s.db.QueryRowContext(ctx,
		`SELECT stream, last_sent_date, updated_at FROM alert_state WHERE stream = ?`, stream,
	).Scan(&st.Stream, &st.LastSentDate, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("alert state %q: %w", stream, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get alert state: %w", err)
	}
	return &st, nil
}

// MarkAlertSent relies on ISO dates comparing lexicographically: the
// stored date only ever moves forward, so two racing callers cannot both
// claim the same day and a stale writer cannot roll it back.
func (s *SQLite) MarkAlertSent(ctx context.Context, stream, date string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO alert_state (stream, last_sent_date, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(stream) DO UPDATE SET
		   last_sent_date = excluded.last_sent_date,
		   updated_at = excluded.updated_at
		 WHERE excluded.last_sent_date > alert_state.last_sent_date`,
		stream, date, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("mark alert sent: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return rows > 0, nil
}

func (s *SQLite) RecordAlert(ctx context.Context, rec *model.AlertRecord) error {
	if rec.SentAt.IsZero() {
		rec.SentAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alert_log (id, stream, recipient, item_count, message, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Stream, rec.Recipient, rec.ItemCount, rec.Message, rec.SentAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert record: %w", err)
	}
	return nil
}

func (s *SQLite) ListAlerts(ctx context.Context, limit int) ([]model.AlertRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stream, recipient, item_count, message, sent_at
		 FROM alert_log ORDER BY sent_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var records []model.AlertRecord
	for rows.Next() {
		var r model.AlertRecord
		if err := rows.Scan(&r.ID, &r.Stream, &r.Recipient, &r.ItemCount, &r.Message, &r.SentAt); err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLite) SaveSession(ctx context.Context, key string, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (key, blob, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   blob = excluded.blob,
		   updated_at = excluded.updated_at`,
		key, blob, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLite) LoadSession(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM sessions WHERE key = ?`, key,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return blob, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Stock, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
