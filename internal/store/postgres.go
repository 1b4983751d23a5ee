package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/civic-cli/internal/db"
	"github.com/sells-group/civic-cli/internal/model"
)

// PostgresStore implements Store using pgxpool and PostGIS.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var queries = map[string]string{
	"insert_run": `INSERT INTO runs (id, kind, record_count, payload, created_at) VALUES ($1, $2, $3, $4, $5)`,
	"get_run":    `SELECT id, kind, record_count, payload, created_at FROM runs WHERE id = $1`,
	"get_scores": `SELECT entity_key, score, centroid_ewkb FROM run_scores WHERE run_id = $1 ORDER BY position`,
}

var scoreColumns = []string{"run_id", "position", "entity_key", "score", "centroid_ewkb"}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	err = connectRetry.do(ctx, "postgres connect", func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, pgxCfg)
		if err != nil {
			return eris.Wrap(err, "postgres: create pool")
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return eris.Wrap(err, "postgres: ping")
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// centroid is derived from the EWKB column so COPY can load plain bytea.
const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	record_count INTEGER NOT NULL DEFAULT 0,
	payload      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_scores (
	run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	entity_key    TEXT NOT NULL,
	score         DOUBLE PRECISION NOT NULL,
	centroid_ewkb BYTEA NOT NULL,
	centroid      geometry(Point, 4326) GENERATED ALWAYS AS (ST_GeomFromEWKB(centroid_ewkb)) STORED,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_kind_created ON runs(kind, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_run_scores_entity ON run_scores(entity_key);
CREATE INDEX IF NOT EXISTS idx_run_scores_centroid ON run_scores USING GIST (centroid);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, kind model.RunKind, records any) (*model.Run, error) {
	run, err := newRun(kind, records)
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(run.Scores))
	for i, sc := range run.Scores {
		wkb, err := encodeCentroid(sc.Centroid)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []any{run.ID, i, sc.Key, sc.Score, wkb})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin save run")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, queries["insert_run"],
		run.ID, string(run.Kind), run.RecordCount, []byte(run.Payload), run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	if _, err := db.CopyFrom(ctx, tx, "run_scores", scoreColumns, rows); err != nil {
		return nil, eris.Wrap(err, "postgres: copy run scores")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit save run")
	}
	return run, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	var r model.Run
	var kind string
	var payload []byte
	err := s.pool.QueryRow(ctx, queries["get_run"], id).
		Scan(&r.ID, &kind, &r.RecordCount, &payload, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrRunNotFound, "postgres: get run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", id)
	}
	r.Kind = model.RunKind(kind)
	r.Payload = payload
	r.CreatedAt = r.CreatedAt.UTC()

	rows, err := s.pool.Query(ctx, queries["get_scores"], id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list scores %s", id)
	}
	defer rows.Close()

	r.Scores = make([]model.RunScore, 0, r.RecordCount)
	for rows.Next() {
		var sc model.RunScore
		var wkb []byte
		if err := rows.Scan(&sc.Key, &sc.Score, &wkb); err != nil {
			return nil, eris.Wrap(err, "postgres: scan score")
		}
		if sc.Centroid, err = decodeCentroid(wkb); err != nil {
			return nil, err
		}
		r.Scores = append(r.Scores, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate scores")
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, kind, record_count, created_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Kind != "" {
		query += fmt.Sprintf(` AND kind = $%d`, argIdx)
		args = append(args, string(filter.Kind))
		argIdx++
	}
	query += ` ORDER BY created_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	runs := make([]model.Run, 0)
	for rows.Next() {
		var r model.Run
		var kind string
		if err := rows.Scan(&r.ID, &kind, &r.RecordCount, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Kind = model.RunKind(kind)
		r.CreatedAt = r.CreatedAt.UTC()
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}
