package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/civic-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	record_count INTEGER NOT NULL DEFAULT 0,
	payload      TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_scores (
	run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	entity_key    TEXT NOT NULL,
	score         REAL NOT NULL,
	centroid_ewkb BLOB NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_kind_created ON runs(kind, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_run_scores_entity ON run_scores(entity_key);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, kind model.RunKind, records any) (*model.Run, error) {
	run, err := newRun(kind, records)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin save run")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, record_count, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.RecordCount, string(run.Payload), run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_scores (run_id, position, entity_key, score, centroid_ewkb) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare run scores")
	}
	defer stmt.Close() //nolint:errcheck

	for i, sc := range run.Scores {
		wkb, err := encodeCentroid(sc.Centroid)
		if err != nil {
			return nil, err
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, sc.Key, sc.Score, wkb); err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert score %s", sc.Key)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit save run")
	}
	return run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	var r model.Run
	var kind, payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, kind, record_count, payload, created_at FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &kind, &r.RecordCount, &payload, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrRunNotFound, "sqlite: get run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", id)
	}
	r.Kind = model.RunKind(kind)
	r.Payload = []byte(payload)
	r.CreatedAt = r.CreatedAt.UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT entity_key, score, centroid_ewkb FROM run_scores WHERE run_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list scores %s", id)
	}
	defer rows.Close() //nolint:errcheck

	r.Scores = make([]model.RunScore, 0, r.RecordCount)
	for rows.Next() {
		var sc model.RunScore
		var wkb []byte
		if err := rows.Scan(&sc.Key, &sc.Score, &wkb); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan score")
		}
		if sc.Centroid, err = decodeCentroid(wkb); err != nil {
			return nil, err
		}
		r.Scores = append(r.Scores, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate scores")
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, kind, record_count, created_at FROM runs WHERE 1=1`
	var args []any

	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	query += ` ORDER BY created_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	runs := make([]model.Run, 0)
	for rows.Next() {
		var r model.Run
		var kind string
		var created time.Time
		if err := rows.Scan(&r.ID, &kind, &r.RecordCount, &created); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Kind = model.RunKind(kind)
		r.CreatedAt = created.UTC()
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}
