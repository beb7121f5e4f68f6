package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"PrebloomScout/internal/report"
)

// SQLiteRecorder persists scan history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id             TEXT PRIMARY KEY,
			started_at     INTEGER NOT NULL,
			finished_at    INTEGER NOT NULL,
			evaluated_at   INTEGER NOT NULL,
			units          INTEGER,
			candidates     INTEGER,
			confirmed      INTEGER,
			out_of_horizon INTEGER,
			records        INTEGER,
			ranked         INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON scan_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS ranked_tickers (
			run_id          TEXT NOT NULL REFERENCES scan_runs(id),
			rank            INTEGER NOT NULL,
			ticker          TEXT NOT NULL,
			security_name   TEXT,
			mentions_0_7    INTEGER,
			mentions_8_30   INTEGER,
			mentions_31_90  INTEGER,
			baseline_weekly REAL,
			mom_short       REAL,
			mom_long        REAL,
			score           REAL,
			tier            TEXT,
			subreddits      TEXT,
			samples         TEXT,
			PRIMARY KEY (run_id, ticker)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ranked_ticker ON ranked_tickers(ticker)`,

		`CREATE TABLE IF NOT EXISTS rejections (
			run_id TEXT NOT NULL REFERENCES scan_runs(id),
			symbol TEXT NOT NULL,
			reason TEXT NOT NULL,
			count  INTEGER NOT NULL,
			PRIMARY KEY (run_id, symbol, reason)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run, its ranking and its rejections in one transaction.
func (r *SQLiteRecorder) RecordRun(snap *RunSnapshot) (err error) {
	if snap == nil || snap.Result == nil {
		return errors.New("record run: empty snapshot")
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res := snap.Result
	st := res.Stats
	if _, err = tx.Exec(`INSERT INTO scan_runs
		(id, started_at, finished_at, evaluated_at, units, candidates, confirmed, out_of_horizon, records, ranked)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		snap.ID, snap.StartedAt.Unix(), snap.FinishedAt.Unix(), res.Now.Unix(),
		st.Units, st.Candidates, st.Confirmed, st.OutOfHorizon, st.Records, st.Ranked,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, e := range res.Entries {
		if _, err = tx.Exec(`INSERT INTO ranked_tickers
			(run_id, rank, ticker, security_name, mentions_0_7, mentions_8_30, mentions_31_90,
			 baseline_weekly, mom_short, mom_long, score, tier, subreddits, samples)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			snap.ID, i+1, e.Ticker, e.Name, e.Recent, e.Mid, e.Old,
			e.Baseline, e.MomentumShort, e.MomentumLong, e.Score, e.Tier,
			report.Breakdown(e.Subreddits), report.Samples(e.Evidence),
		); err != nil {
			return fmt.Errorf("insert ticker %s: %w", e.Ticker, err)
		}
	}

	for _, rej := range res.Rejected {
		if _, err = tx.Exec(`INSERT INTO rejections (run_id, symbol, reason, count) VALUES (?,?,?,?)`,
			snap.ID, rej.Symbol, string(rej.Reason), rej.Count,
		); err != nil {
			return fmt.Errorf("insert rejection %s: %w", rej.Symbol, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
