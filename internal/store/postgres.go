package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/placescout/placescout/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_recommendation": `INSERT INTO recommendations (id, query, location, preferences, context, places, narrative, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"get_recommendation":    `SELECT id, query, location, preferences, context, places, narrative, feedback, created_at FROM recommendations WHERE id = $1`,
	"set_feedback":          `UPDATE recommendations SET feedback = $1 WHERE id = $2 AND feedback IS NULL`,
	"get_place":             `SELECT data FROM places WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
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

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS recommendations (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	query       TEXT NOT NULL,
	location    JSONB,
	preferences JSONB,
	context     TEXT NOT NULL DEFAULT '',
	places      JSONB NOT NULL,
	narrative   TEXT NOT NULL DEFAULT '',
	feedback    INTEGER,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS places (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	category   TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_recommendations_query ON recommendations(query);
CREATE INDEX IF NOT EXISTS idx_recommendations_created_at ON recommendations(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_places_category ON places(category);
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

func (s *PostgresStore) CreateRecommendation(ctx context.Context, rec *model.RecommendationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var locationJSON, preferencesJSON []byte
	var err error
	if rec.Location != nil {
		if locationJSON, err = json.Marshal(rec.Location); err != nil {
			return eris.Wrap(err, "postgres: marshal location")
		}
	}
	if len(rec.Preferences) > 0 {
		if preferencesJSON, err = json.Marshal(rec.Preferences); err != nil {
			return eris.Wrap(err, "postgres: marshal preferences")
		}
	}
	placesJSON, err := json.Marshal(rec.Places)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal places")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO recommendations (id, query, location, preferences, context, places, narrative, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Query, locationJSON, preferencesJSON, rec.Context, placesJSON, rec.Narrative, rec.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert recommendation")
}

func (s *PostgresStore) GetRecommendation(ctx context.Context, id string) (*model.RecommendationRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, query, location, preferences, context, places, narrative, feedback, created_at
		 FROM recommendations WHERE id = $1`,
		id,
	)
	rec, err := scanPgRecommendation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get recommendation %s", id)
	}
	return rec, nil
}

func (s *PostgresStore) ListRecommendations(ctx context.Context, filter RecommendationFilter) ([]model.RecommendationRecord, error) {
	query := `SELECT id, query, location, preferences, context, places, narrative, feedback, created_at
	          FROM recommendations WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Query != "" {
		query += fmt.Sprintf(` AND query ILIKE $%d`, argIdx)
		args = append(args, "%"+filter.Query+"%")
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
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
		return nil, eris.Wrap(err, "postgres: list recommendations")
	}
	defer rows.Close()

	var recs []model.RecommendationRecord
	for rows.Next() {
		rec, err := scanPgRecommendation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan recommendation")
		}
		recs = append(recs, *rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list recommendations iterate")
}

func (s *PostgresStore) SetFeedback(ctx context.Context, id string, rating int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE recommendations SET feedback = $1 WHERE id = $2 AND feedback IS NULL`,
		rating, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set feedback %s", id)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM recommendations WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return eris.Wrapf(err, "postgres: check recommendation %s", id)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrFeedbackSet
}

func (s *PostgresStore) UpsertPlace(ctx context.Context, place model.NormalizedPlace) error {
	data, err := json.Marshal(place)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal place")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO places (id, name, category, data, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET name = $2, category = $3, data = $4, updated_at = $5`,
		place.ID, place.Name, place.Category, data, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: upsert place")
}

func (s *PostgresStore) GetPlace(ctx context.Context, id string) (*model.NormalizedPlace, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM places WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get place %s", id)
	}

	var place model.NormalizedPlace
	if err := json.Unmarshal(data, &place); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal place")
	}
	return &place, nil
}

func scanPgRecommendation(row scannable) (*model.RecommendationRecord, error) {
	var r model.RecommendationRecord
	var locationJSON, preferencesJSON, placesJSON []byte
	var feedback *int

	err := row.Scan(&r.ID, &r.Query, &locationJSON, &preferencesJSON, &r.Context,
		&placesJSON, &r.Narrative, &feedback, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(locationJSON) > 0 {
		r.Location = &model.Coordinates{}
		if err := json.Unmarshal(locationJSON, r.Location); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal location")
		}
	}
	if len(preferencesJSON) > 0 {
		if err := json.Unmarshal(preferencesJSON, &r.Preferences); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal preferences")
		}
	}
	if err := json.Unmarshal(placesJSON, &r.Places); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal places")
	}
	r.Feedback = feedback
	return &r, nil
}
