package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/cta/internal/model"
	"golang.org/x/crypto/sha3"
)

// FileName is the database file name inside the database directory.
const FileName = "history.db"

var (
	// ErrRunNotFound is returned when no run matches the requested ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrInvalidRunID is returned when a run ID is not a positive integer.
	ErrInvalidRunID = errors.New("invalid run ID")
)

// RunDB provides SQLite-based storage for annotation runs and scores.
type RunDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Runs store one annotation invocation each
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		top_n INTEGER NOT NULL,
		endpoint TEXT,
		targets_file TEXT,
		result_count INTEGER NOT NULL,
		empty_count INTEGER NOT NULL,
		digest TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs(digest);

	-- Annotations store the result of each target in run order
	CREATE TABLE IF NOT EXISTS annotations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		table_id TEXT NOT NULL,
		column_index INTEGER NOT NULL,
		prediction TEXT NOT NULL,
		ranking_json TEXT,
		stats_json TEXT,
		UNIQUE(run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_annotations_run ON annotations(run_id);
	CREATE INDEX IF NOT EXISTS idx_annotations_target ON annotations(table_id, column_index);

	-- Scores store evaluations, linked to a run when one was scored
	CREATE TABLE IF NOT EXISTS scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER REFERENCES runs(id) ON DELETE CASCADE,
		mode TEXT NOT NULL,
		matches INTEGER NOT NULL,
		total INTEGER NOT NULL,
		score REAL NOT NULL,
		ground_truth_file TEXT,
		scored_at TEXT NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scores_run ON scores(run_id);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// Digest returns the hex SHA3-256 digest of the predictions of results,
// taken over their "table,column,prediction" lines in order.
func Digest(results []model.AnnotationResult) string {
	h := sha3.New256()
	for _, res := range results {
		_, _ = h.Write([]byte(res.String()))
		_, _ = h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SaveRun stores a run with all of its results and sets run.ID.
func (rdb *RunDB) SaveRun(ctx context.Context, run *model.Run) (int64, error) {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (started_at, finished_at, top_n, endpoint, targets_file, result_count, empty_count, digest)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		run.TopN,
		run.Endpoint,
		run.TargetsFile,
		run.Len(),
		run.EmptyCount(),
		Digest(run.Results),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO annotations (run_id, position, table_id, column_index, prediction, ranking_json, stats_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare annotation insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range run.Results {
		rankingJSON, err := json.Marshal(r.Ranking)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize ranking: %w", err)
		}
		statsJSON, err := json.Marshal(r.Stats)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize stats: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, id, i, r.TableID, int(r.Column), r.Prediction(),
			string(rankingJSON), string(statsJSON)); err != nil {
			return 0, fmt.Errorf("failed to save annotation %s: %w", r.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	run.ID = id
	return id, nil
}

// RunMetadata contains summary information about a saved run.
type RunMetadata struct {
	ID          int64
	StartedAt   time.Time
	FinishedAt  time.Time
	TopN        int
	Endpoint    string
	TargetsFile string
	ResultCount int
	EmptyCount  int
	Digest      string

	// BestScore is the highest score recorded for the run, if any.
	BestScore sql.NullFloat64
}

// ListRuns returns the metadata of saved runs, newest first.
// A positive limit bounds the number of runs returned.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT r.id, r.started_at, r.finished_at, r.top_n, r.endpoint, r.targets_file,
		r.result_count, r.empty_count, r.digest, MAX(s.score)
	FROM runs r
	LEFT JOIN scores s ON s.run_id = r.id
	GROUP BY r.id
	ORDER BY r.id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var started string
		var finished, endpoint, targetsFile sql.NullString

		if err := rows.Scan(&meta.ID, &started, &finished, &meta.TopN, &endpoint, &targetsFile,
			&meta.ResultCount, &meta.EmptyCount, &meta.Digest, &meta.BestScore); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.StartedAt = parseTimestamp(started)
		meta.FinishedAt = parseTimestamp(finished.String)
		meta.Endpoint = endpoint.String
		meta.TargetsFile = targetsFile.String

		runs = append(runs, meta)
	}

	return runs, rows.Err()
}

// GetRun retrieves a run with its results in their original order.
// It returns ErrRunNotFound if there is no run with that ID.
func (rdb *RunDB) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	var run model.Run
	var started string
	var finished, endpoint, targetsFile sql.NullString

	err := rdb.db.QueryRowContext(ctx, `
	SELECT id, started_at, finished_at, top_n, endpoint, targets_file
	FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &started, &finished, &run.TopN, &endpoint, &targetsFile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.StartedAt = parseTimestamp(started)
	run.FinishedAt = parseTimestamp(finished.String)
	run.Endpoint = endpoint.String
	run.TargetsFile = targetsFile.String

	results, err := rdb.annotations(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Results = results

	return &run, nil
}

// GetLatestRun retrieves the most recently saved run.
// It returns ErrRunNotFound if the history is empty.
func (rdb *RunDB) GetLatestRun(ctx context.Context) (*model.Run, error) {
	var id int64
	err := rdb.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return rdb.GetRun(ctx, id)
}

// FindRunByDigest returns the ID of the newest run with the given digest.
// The boolean is false when no run matches.
func (rdb *RunDB) FindRunByDigest(ctx context.Context, digest string) (int64, bool, error) {
	var id int64
	err := rdb.db.QueryRowContext(ctx,
		`SELECT id FROM runs WHERE digest = ? ORDER BY id DESC LIMIT 1`, digest).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to find run: %w", err)
	}
	return id, true, nil
}

func (rdb *RunDB) annotations(ctx context.Context, runID int64) ([]model.AnnotationResult, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT table_id, column_index, ranking_json, stats_json
	FROM annotations
	WHERE run_id = ?
	ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get annotations: %w", err)
	}
	defer rows.Close()

	results := make([]model.AnnotationResult, 0)
	for rows.Next() {
		var target model.Target
		var column int
		var rankingJSON, statsJSON sql.NullString

		if err := rows.Scan(&target.TableID, &column, &rankingJSON, &statsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		target.Column = uint8(column) //nolint:gosec // stored from a uint8

		var ranking []model.ClassCount
		if rankingJSON.Valid && rankingJSON.String != "" {
			if err := json.Unmarshal([]byte(rankingJSON.String), &ranking); err != nil {
				return nil, fmt.Errorf("failed to parse ranking of %s: %w", target, err)
			}
		}
		var stats model.ColumnStats
		if statsJSON.Valid && statsJSON.String != "" {
			if err := json.Unmarshal([]byte(statsJSON.String), &stats); err != nil {
				return nil, fmt.Errorf("failed to parse stats of %s: %w", target, err)
			}
		}

		results = append(results, model.NewAnnotationResult(target, ranking, stats))
	}

	return results, rows.Err()
}

// SaveScore stores a score report. A runID of zero stores the score
// without linking it to a saved run.
func (rdb *RunDB) SaveScore(ctx context.Context, runID int64, report *model.ScoreReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize score: %w", err)
	}

	var run sql.NullInt64
	if runID > 0 {
		run = sql.NullInt64{Int64: runID, Valid: true}
	}

	res, err := rdb.db.ExecContext(ctx, `
	INSERT INTO scores (run_id, mode, matches, total, score, ground_truth_file, scored_at, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run,
		string(report.Mode),
		report.Matches,
		report.Total,
		report.Score,
		report.GroundTruthFile,
		formatTimestamp(report.ScoredAt),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save score: %w", err)
	}
	return res.LastInsertId()
}

// ListScores returns the scores recorded for a run, newest first.
func (rdb *RunDB) ListScores(ctx context.Context, runID int64) ([]*model.ScoreReport, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT report_json FROM scores
	WHERE run_id = ?
	ORDER BY id DESC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var reports []*model.ScoreReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}

		var report model.ScoreReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ParseRunID parses a run ID given on the command line.
func ParseRunID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRunID, s)
	}
	return id, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
