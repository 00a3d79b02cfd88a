// Package journal keeps a local SQLite history of submitted pallet scans.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"palletscan/internal/logging"
	"palletscan/internal/pallet"

	_ "modernc.org/sqlite"
)

// Store is the scan journal.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Open creates or opens the journal at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; the journal is small and the station is single-operator.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Journal("journal opened at %s", dbPath)
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		token TEXT NOT NULL UNIQUE,
		pallet_barcode TEXT NOT NULL,
		res_id INTEGER NOT NULL,
		success INTEGER NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		package_name TEXT NOT NULL DEFAULT '',
		stale INTEGER NOT NULL DEFAULT 0,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scans_started ON scans(started_at);
	CREATE INDEX IF NOT EXISTS idx_scans_res_id ON scans(res_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores one finished scan.
func (s *Store) Record(ctx context.Context, rec pallet.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scans (token, pallet_barcode, res_id, success, kind, message,
			package_name, stale, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Token, rec.PalletBarcode, rec.ContextID, rec.Success, rec.Kind, rec.Message,
		rec.PackageName, rec.Stale, rec.StartedAt.UnixMilli(), rec.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record scan: %w", err)
	}

	logging.Get(logging.CategoryJournal).Debug("recorded scan %s (%s, stale=%v)", rec.Token, rec.PalletBarcode, rec.Stale)
	return nil
}

// Recent returns up to limit scans, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]pallet.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT token, pallet_barcode, res_id, success, kind, message, package_name,
			stale, started_at, duration_ms
		FROM scans
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var records []pallet.Record
	for rows.Next() {
		var rec pallet.Record
		var startedMs, durationMs int64
		if err := rows.Scan(&rec.Token, &rec.PalletBarcode, &rec.ContextID, &rec.Success,
			&rec.Kind, &rec.Message, &rec.PackageName, &rec.Stale, &startedMs, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec.StartedAt = time.UnixMilli(startedMs)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats summarizes the journal.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
	Stale     int
}

// Stats counts the journaled scans.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN success = 1 AND stale = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN success = 0 AND stale = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(stale), 0)
		FROM scans
	`).Scan(&st.Total, &st.Succeeded, &st.Failed, &st.Stale)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count scans: %w", err)
	}
	return st, nil
}

var _ pallet.Recorder = (*Store)(nil)
