package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/chris00234/web-crawler/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "webcrawler.db"

// Collection kinds stored in the counters and url_sets tables.
const (
	kindWord      = "word"
	kindSubdomain = "subdomain"
	kindDynamic   = "dynamic"
	kindTrap      = "trap"
	kindAccepted  = "accepted"
	kindLinks     = "links"
	kindWords     = "words"
)

// CheckpointDB stores crawl runs and their checkpoints.
type CheckpointDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures CheckpointDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the checkpoint database in dbDir.
func Open(dbDir string, opts Options) (*CheckpointDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CheckpointDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CheckpointDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CheckpointDB) Close() error {
	return cdb.db.Close()
}

func (cdb *CheckpointDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seeds TEXT NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME,
		fetched INTEGER NOT NULL DEFAULT 0,
		accepted INTEGER NOT NULL DEFAULT 0,
		traps INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Best link and best word page of a run
	CREATE TABLE IF NOT EXISTS best_pages (
		run_id TEXT NOT NULL REFERENCES runs(id),
		kind TEXT NOT NULL,
		url TEXT NOT NULL,
		amount INTEGER NOT NULL,
		PRIMARY KEY (run_id, kind)
	);

	-- Word, subdomain and dynamic URL counters
	CREATE TABLE IF NOT EXISTS counters (
		run_id TEXT NOT NULL REFERENCES runs(id),
		kind TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		label TEXT NOT NULL,
		amount INTEGER NOT NULL,
		PRIMARY KEY (run_id, kind, label)
	);

	-- Trap and accepted URL sets
	CREATE TABLE IF NOT EXISTS url_sets (
		run_id TEXT NOT NULL REFERENCES runs(id),
		kind TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		url TEXT NOT NULL,
		PRIMARY KEY (run_id, kind, url)
	);

	-- URLs still waiting in the frontier
	CREATE TABLE IF NOT EXISTS pending (
		run_id TEXT NOT NULL REFERENCES runs(id),
		ordinal INTEGER NOT NULL,
		url TEXT NOT NULL,
		PRIMARY KEY (run_id, ordinal)
	);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run describes one crawl.
type Run struct {
	ID         string
	Seeds      []string
	StartedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt time.Time
	Fetched    int
	Accepted   int
	Traps      int
}

// Finished reports whether the run completed.
func (r *Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Checkpoint is everything needed to resume or report on a run.
type Checkpoint struct {
	// State is the aggregate crawl state.
	State *model.Snapshot

	// Pending are the frontier URLs not yet fetched, oldest first.
	Pending []string

	// Fetched is how many URLs the frontier had handed out.
	Fetched int
}

// CreateRun registers a new run and returns its ID.
func (cdb *CheckpointDB) CreateRun(ctx context.Context, seeds []string) (string, error) {
	if seeds == nil {
		seeds = []string{}
	}
	seedsJSON, err := json.Marshal(seeds)
	if err != nil {
		return "", fmt.Errorf("failed to serialize seeds: %w", err)
	}

	id := uuid.New().String()
	if _, err := cdb.db.ExecContext(ctx,
		`INSERT INTO runs (id, seeds, started_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, string(seedsJSON), now(), now(),
	); err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// FinishRun marks a run as completed.
func (cdb *CheckpointDB) FinishRun(ctx context.Context, runID string) error {
	result, err := cdb.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, updated_at = ? WHERE id = ?`,
		now(), now(), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return requireRow(result, runID)
}

// GetRun returns the run with the given ID.
func (cdb *CheckpointDB) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := cdb.db.QueryRowContext(ctx, runColumns+` WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// LatestRun returns the most recently started run.
func (cdb *CheckpointDB) LatestRun(ctx context.Context) (*Run, error) {
	row := cdb.db.QueryRowContext(ctx, runColumns+` ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return run, err
}

// ListRuns returns every run, newest first.
func (cdb *CheckpointDB) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := cdb.db.QueryContext(ctx, runColumns+` ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes a run and its checkpoint.
func (cdb *CheckpointDB) DeleteRun(ctx context.Context, runID string) error {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := clearRun(ctx, tx, runID); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if err := requireRow(result, runID); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveState replaces the checkpoint of a run in one transaction.
func (cdb *CheckpointDB) SaveState(ctx context.Context, runID string, cp *Checkpoint) error {
	snap := cp.State
	if snap == nil {
		snap = model.NewSnapshot()
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`UPDATE runs SET updated_at = ?, fetched = ?, accepted = ?, traps = ? WHERE id = ?`,
		now(), cp.Fetched, len(snap.Accepted), len(snap.Traps), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if err := requireRow(result, runID); err != nil {
		return err
	}

	if err := clearRun(ctx, tx, runID); err != nil {
		return err
	}

	if err := insertBestPages(ctx, tx, runID, snap); err != nil {
		return err
	}
	for kind, counts := range map[string][]model.Count{
		kindWord:      snap.Words,
		kindSubdomain: snap.Subdomains,
		kindDynamic:   snap.DynamicURLs,
	} {
		if err := insertCounts(ctx, tx, runID, kind, counts); err != nil {
			return err
		}
	}
	for kind, urls := range map[string][]string{
		kindTrap:     snap.Traps,
		kindAccepted: snap.Accepted,
	} {
		if err := insertURLs(ctx, tx, runID, kind, urls); err != nil {
			return err
		}
	}
	if err := insertPending(ctx, tx, runID, cp.Pending); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}
	return nil
}

// LoadState returns the latest checkpoint of a run.
// A run that never saved a checkpoint yields an empty one.
func (cdb *CheckpointDB) LoadState(ctx context.Context, runID string) (*Checkpoint, error) {
	run, err := cdb.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	snap := model.NewSnapshot()
	cp := &Checkpoint{State: snap, Pending: make([]string, 0), Fetched: run.Fetched}

	if err := cdb.loadBestPages(ctx, runID, snap); err != nil {
		return nil, err
	}
	for kind, dst := range map[string]*[]model.Count{
		kindWord:      &snap.Words,
		kindSubdomain: &snap.Subdomains,
		kindDynamic:   &snap.DynamicURLs,
	} {
		counts, err := cdb.loadCounts(ctx, runID, kind)
		if err != nil {
			return nil, err
		}
		*dst = counts
	}
	for kind, dst := range map[string]*[]string{
		kindTrap:     &snap.Traps,
		kindAccepted: &snap.Accepted,
	} {
		urls, err := cdb.loadStrings(ctx,
			`SELECT url FROM url_sets WHERE run_id = ? AND kind = ? ORDER BY ordinal`, runID, kind)
		if err != nil {
			return nil, err
		}
		*dst = urls
	}

	pending, err := cdb.loadStrings(ctx, `SELECT url FROM pending WHERE run_id = ? ORDER BY ordinal`, runID)
	if err != nil {
		return nil, err
	}
	cp.Pending = pending

	return cp, nil
}

func (cdb *CheckpointDB) loadBestPages(ctx context.Context, runID string, snap *model.Snapshot) error {
	rows, err := cdb.db.QueryContext(ctx, `SELECT kind, url, amount FROM best_pages WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to load best pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var page model.PageStat
		if err := rows.Scan(&kind, &page.URL, &page.Count); err != nil {
			return fmt.Errorf("failed to scan best page: %w", err)
		}
		switch kind {
		case kindLinks:
			snap.BestLinkPage = page
		case kindWords:
			snap.BestWordPage = page
		}
	}
	return rows.Err()
}

func (cdb *CheckpointDB) loadCounts(ctx context.Context, runID, kind string) ([]model.Count, error) {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT label, amount FROM counters WHERE run_id = ? AND kind = ? ORDER BY ordinal`, runID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s counters: %w", kind, err)
	}
	defer rows.Close()

	counts := make([]model.Count, 0)
	for rows.Next() {
		var c model.Count
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan %s counter: %w", kind, err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (cdb *CheckpointDB) loadStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load URLs: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func clearRun(ctx context.Context, tx *sql.Tx, runID string) error {
	for _, table := range []string{"best_pages", "counters", "url_sets", "pending"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func insertBestPages(ctx context.Context, tx *sql.Tx, runID string, snap *model.Snapshot) error {
	for kind, page := range map[string]model.PageStat{
		kindLinks: snap.BestLinkPage,
		kindWords: snap.BestWordPage,
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO best_pages (run_id, kind, url, amount) VALUES (?, ?, ?, ?)`,
			runID, kind, page.URL, page.Count,
		); err != nil {
			return fmt.Errorf("failed to save best %s page: %w", kind, err)
		}
	}
	return nil
}

func insertCounts(ctx context.Context, tx *sql.Tx, runID, kind string, counts []model.Count) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO counters (run_id, kind, ordinal, label, amount) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare %s counters: %w", kind, err)
	}
	defer stmt.Close()

	for i, c := range counts {
		if _, err := stmt.ExecContext(ctx, runID, kind, i, c.Key, c.Count); err != nil {
			return fmt.Errorf("failed to save %s counter: %w", kind, err)
		}
	}
	return nil
}

func insertURLs(ctx context.Context, tx *sql.Tx, runID, kind string, urls []string) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO url_sets (run_id, kind, ordinal, url) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare %s URLs: %w", kind, err)
	}
	defer stmt.Close()

	for i, u := range urls {
		if _, err := stmt.ExecContext(ctx, runID, kind, i, u); err != nil {
			return fmt.Errorf("failed to save %s URL: %w", kind, err)
		}
	}
	return nil
}

func insertPending(ctx context.Context, tx *sql.Tx, runID string, urls []string) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO pending (run_id, ordinal, url) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare pending URLs: %w", err)
	}
	defer stmt.Close()

	for i, u := range urls {
		if _, err := stmt.ExecContext(ctx, runID, i, u); err != nil {
			return fmt.Errorf("failed to save pending URL: %w", err)
		}
	}
	return nil
}

const runColumns = `SELECT id, seeds, started_at, updated_at, finished_at, fetched, accepted, traps FROM runs`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		seedsJSON string
		started   string
		updated   string
		finished  sql.NullString
	)
	if err := row.Scan(&run.ID, &seedsJSON, &started, &updated, &finished,
		&run.Fetched, &run.Accepted, &run.Traps); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if err := json.Unmarshal([]byte(seedsJSON), &run.Seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seeds: %w", err)
	}
	run.StartedAt = parseTimestamp(started)
	run.UpdatedAt = parseTimestamp(updated)
	if finished.Valid {
		run.FinishedAt = parseTimestamp(finished.String)
	}
	return &run, nil
}

func requireRow(result sql.Result, runID string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// now returns the current time formatted for storage. Fractional seconds
// keep runs started within the same second ordered.
func now() string {
	return time.Now().UTC().Format(timestampLayout)
}

const timestampLayout = "2006-01-02 15:04:05.000000"

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses s with each known format and returns the zero
// time if none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
