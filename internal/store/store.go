// Package store persists analysis results to a sqlite database so runs
// across many waveform files can be compared after the fact.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/export"
	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/vcd"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	label        TEXT NOT NULL,
	vcd_file     TEXT NOT NULL,
	timescale    TEXT NOT NULL,
	max_time     INTEGER NOT NULL,
	signal_count INTEGER NOT NULL,
	diagnostics  INTEGER NOT NULL,
	created_at   TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS run_signals (
	run_id       TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	name         TEXT NOT NULL,
	width        INTEGER NOT NULL,
	changes      INTEGER NOT NULL,
	transitions  INTEGER NOT NULL,
	first_change INTEGER NOT NULL,
	last_change  INTEGER NOT NULL,
	final_value  TEXT NOT NULL,
	PRIMARY KEY (run_id, name)
);
`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type Run struct {
	ID          string
	Label       string
	VCDFile     string
	Timescale   string
	MaxTime     uint64
	SignalCount int
	Diagnostics int
	CreatedAt   time.Time
}

// SaveRun records one analyzed document and its per-signal statistics,
// returning the generated run ID.
func (s *Store) SaveRun(ctx context.Context, label, vcdFile string, doc *vcd.Document, stats []export.SignalStats) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, label, vcd_file, timescale, max_time, signal_count, diagnostics, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, label, vcdFile, doc.Timescale.String(), int64(doc.MaxTime),
		len(doc.Signals()), len(doc.Diagnostics), time.Now().UTC())
	if err != nil {
		return "", errors.Wrap(err, "insert run")
	}

	for _, st := range stats {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_signals (run_id, name, width, changes, transitions, first_change, last_change, final_value)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, st.Name, st.Width, st.Changes, st.Transitions,
			int64(st.FirstChange), int64(st.LastChange), st.FinalValue)
		if err != nil {
			return "", errors.Wrapf(err, "insert signal %s", st.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit")
	}
	return id, nil
}

// Runs lists recorded runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, vcd_file, timescale, max_time, signal_count, diagnostics, created_at
		 FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var maxTime int64
		if err := rows.Scan(&r.ID, &r.Label, &r.VCDFile, &r.Timescale,
			&maxTime, &r.SignalCount, &r.Diagnostics, &r.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		r.MaxTime = uint64(maxTime)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunSignals returns the statistics rows stored for one run.
func (s *Store) RunSignals(ctx context.Context, runID string) ([]export.SignalStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, width, changes, transitions, first_change, last_change, final_value
		 FROM run_signals WHERE run_id = ? ORDER BY name`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query signals")
	}
	defer rows.Close()

	var stats []export.SignalStats
	for rows.Next() {
		var st export.SignalStats
		var first, last int64
		if err := rows.Scan(&st.Name, &st.Width, &st.Changes, &st.Transitions,
			&first, &last, &st.FinalValue); err != nil {
			return nil, errors.Wrap(err, "scan signal")
		}
		st.FirstChange = uint64(first)
		st.LastChange = uint64(last)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
