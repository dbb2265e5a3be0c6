// Package persistence provides SQLite-backed storage of analyses and
// simulation runs, so scored inputs and trajectories survive restarts.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/ljpw-field/internal/coord"
	"github.com/talgya/ljpw-field/internal/dynamics"
	"github.com/talgya/ljpw-field/internal/metrics"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		source TEXT NOT NULL,
		love REAL NOT NULL,
		justice REAL NOT NULL,
		power REAL NOT NULL,
		wisdom REAL NOT NULL,
		harmony REAL NOT NULL,
		voltage REAL NOT NULL,
		consciousness REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		duration REAL NOT NULL,
		step REAL NOT NULL,
		bounded INTEGER NOT NULL,
		overflowed INTEGER NOT NULL,
		path_length REAL NOT NULL,
		disharmony_integral REAL NOT NULL,
		struggle_ratio REAL NOT NULL,
		initial_json TEXT NOT NULL,
		samples_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Analysis is one stored extraction + metric record.
type Analysis struct {
	ID            string  `db:"id" json:"id"`
	CreatedAt     string  `db:"created_at" json:"created_at"`
	Source        string  `db:"source" json:"source"` // "text" or "proxies"
	Love          float64 `db:"love" json:"love"`
	Justice       float64 `db:"justice" json:"justice"`
	Power         float64 `db:"power" json:"power"`
	Wisdom        float64 `db:"wisdom" json:"wisdom"`
	Harmony       float64 `db:"harmony" json:"harmony"`
	Voltage       float64 `db:"voltage" json:"voltage"`
	Consciousness float64 `db:"consciousness" json:"consciousness"`
}

// SaveAnalysis stores a scored coordinate with its metric summary.
func (db *DB) SaveAnalysis(id, source string, c coord.Coordinate, sum metrics.Summary) error {
	_, err := db.conn.Exec(`INSERT INTO analyses
		(id, created_at, source, love, justice, power, wisdom, harmony, voltage, consciousness)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), source,
		c.Love, c.Justice, c.Power, c.Wisdom,
		sum.Harmony, sum.Voltage, sum.Consciousness,
	)
	if err != nil {
		return fmt.Errorf("insert analysis %s: %w", id, err)
	}
	return nil
}

// ListAnalyses returns the most recent analyses, newest first.
func (db *DB) ListAnalyses(limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Analysis
	err := db.conn.Select(&out,
		`SELECT * FROM analyses ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return out, nil
}

// RunSummary is the stored header of one simulation run.
type RunSummary struct {
	ID                 string  `db:"id" json:"id"`
	CreatedAt          string  `db:"created_at" json:"created_at"`
	Duration           float64 `db:"duration" json:"duration"`
	Step               float64 `db:"step" json:"step"`
	Bounded            bool    `db:"bounded" json:"bounded"`
	Overflowed         bool    `db:"overflowed" json:"overflowed"`
	PathLength         float64 `db:"path_length" json:"path_length"`
	DisharmonyIntegral float64 `db:"disharmony_integral" json:"disharmony_integral"`
	StruggleRatio      float64 `db:"struggle_ratio" json:"struggle_ratio"`
}

// SaveRun stores a completed trajectory, samples serialized as JSON.
func (db *DB) SaveRun(tr *dynamics.Trajectory) error {
	initialJSON, err := json.Marshal(tr.Initial)
	if err != nil {
		return fmt.Errorf("marshal initial: %w", err)
	}
	samplesJSON, err := json.Marshal(tr.Samples)
	if err != nil {
		return fmt.Errorf("marshal samples: %w", err)
	}

	_, err = db.conn.Exec(`INSERT INTO runs
		(id, created_at, duration, step, bounded, overflowed,
		 path_length, disharmony_integral, struggle_ratio, initial_json, samples_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.RunID, time.Now().UTC().Format(time.RFC3339),
		tr.Options.Duration, tr.Options.Step,
		boolToInt(tr.Options.Bounded), boolToInt(tr.Overflowed),
		tr.PathLength, tr.DisharmonyIntegral, tr.StruggleRatio,
		string(initialJSON), string(samplesJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", tr.RunID, err)
	}
	return nil
}

// ListRuns returns the most recent run summaries, newest first.
func (db *DB) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []RunSummary
	err := db.conn.Select(&out,
		`SELECT id, created_at, duration, step, bounded, overflowed,
		        path_length, disharmony_integral, struggle_ratio
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// GetRun loads one stored run with its full sample trace.
// Returns (nil, nil, nil) when the ID is unknown.
func (db *DB) GetRun(id string) (*RunSummary, []dynamics.Sample, error) {
	var row struct {
		RunSummary
		InitialJSON string `db:"initial_json"`
		SamplesJSON string `db:"samples_json"`
	}
	err := db.conn.Get(&row, `SELECT * FROM runs WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get run %s: %w", id, err)
	}

	var samples []dynamics.Sample
	if err := json.Unmarshal([]byte(row.SamplesJSON), &samples); err != nil {
		return nil, nil, fmt.Errorf("decode samples for run %s: %w", id, err)
	}
	summary := row.RunSummary
	return &summary, samples, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
