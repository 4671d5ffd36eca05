package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pulse/internal/modules/healthstore/domain"

	_ "modernc.org/sqlite"
)

type SQLiteRecordStore struct {
	db *sql.DB
}

func NewSQLiteRecordStore(dbPath string) (*SQLiteRecordStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; concurrent connections would surface SQLITE_BUSY to callers
	db.SetMaxOpenConns(1)
	store := &SQLiteRecordStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteRecordStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS heart_rate_records (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  beats_per_minute INTEGER NOT NULL,
  start_unix_nano INTEGER NOT NULL,
  end_unix_nano INTEGER NOT NULL,
  zone_offset_seconds INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS heart_rate_records_start ON heart_rate_records(start_unix_nano);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create heart_rate_records table: %w", err)
	}
	return nil
}

func (s *SQLiteRecordStore) Insert(ctx context.Context, records []domain.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	const stmt = `
INSERT INTO heart_rate_records (id, beats_per_minute, start_unix_nano, end_unix_nano, zone_offset_seconds)
VALUES (?, ?, ?, ?, ?);
`
	for _, r := range records {
		if _, err := tx.ExecContext(ctx, stmt, r.ID, r.BeatsPerMinute, r.Start.UnixNano(), r.End.UnixNano(), r.ZoneOffsetSeconds); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

func (s *SQLiteRecordStore) Query(ctx context.Context, from, to time.Time) ([]domain.Record, error) {
	const query = `
SELECT id, beats_per_minute, start_unix_nano, end_unix_nano, zone_offset_seconds
FROM heart_rate_records
WHERE start_unix_nano BETWEEN ? AND ?
ORDER BY seq ASC;
`
	rows, err := s.db.QueryContext(ctx, query, from.UnixNano(), to.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []domain.Record{}
	for rows.Next() {
		var (
			r          domain.Record
			start, end int64
		)
		if err := rows.Scan(&r.ID, &r.BeatsPerMinute, &start, &end, &r.ZoneOffsetSeconds); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Start = time.Unix(0, start).UTC()
		r.End = time.Unix(0, end).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func (s *SQLiteRecordStore) Close() error {
	return s.db.Close()
}
