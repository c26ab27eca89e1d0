package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/placescout/placescout/internal/model"
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
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS recommendations (
	id          TEXT PRIMARY KEY,
	query       TEXT NOT NULL,
	location    TEXT,
	preferences TEXT,
	context     TEXT NOT NULL DEFAULT '',
	places      TEXT NOT NULL,
	narrative   TEXT NOT NULL DEFAULT '',
	feedback    INTEGER,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS places (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	category   TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_recommendations_query ON recommendations(query);
CREATE INDEX IF NOT EXISTS idx_recommendations_created_at ON recommendations(created_at);
CREATE INDEX IF NOT EXISTS idx_places_category ON places(category);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRecommendation(ctx context.Context, rec *model.RecommendationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	locationJSON, preferencesJSON, placesJSON, err := marshalRecord(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal recommendation")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recommendations (id, query, location, preferences, context, places, narrative, feedback, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Query, locationJSON, preferencesJSON, rec.Context, placesJSON, rec.Narrative, rec.Feedback, rec.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert recommendation")
}

func (s *SQLiteStore) GetRecommendation(ctx context.Context, id string) (*model.RecommendationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, query, location, preferences, context, places, narrative, feedback, created_at
		 FROM recommendations WHERE id = ?`,
		id,
	)
	return scanRecommendation(row)
}

func (s *SQLiteStore) ListRecommendations(ctx context.Context, filter RecommendationFilter) ([]model.RecommendationRecord, error) {
	query := `SELECT id, query, location, preferences, context, places, narrative, feedback, created_at
	          FROM recommendations WHERE 1=1`
	var args []any

	if filter.Query != "" {
		query += ` AND query LIKE ?`
		args = append(args, "%"+filter.Query+"%")
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list recommendations")
	}
	defer rows.Close()

	var recs []model.RecommendationRecord
	for rows.Next() {
		r, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *r)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list recommendations iterate")
}

func (s *SQLiteStore) SetFeedback(ctx context.Context, id string, rating int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recommendations SET feedback = ? WHERE id = ? AND feedback IS NULL`,
		rating, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set feedback %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n > 0 {
		return nil
	}

	// Distinguish a missing row from a second feedback attempt.
	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM recommendations WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return eris.Wrapf(err, "sqlite: check recommendation %s", id)
	}
	return ErrFeedbackSet
}

func (s *SQLiteStore) UpsertPlace(ctx context.Context, place model.NormalizedPlace) error {
	data, err := json.Marshal(place)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal place")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO places (id, name, category, data, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, category = excluded.category,
		   data = excluded.data, updated_at = excluded.updated_at`,
		place.ID, place.Name, place.Category, string(data), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: upsert place")
}

func (s *SQLiteStore) GetPlace(ctx context.Context, id string) (*model.NormalizedPlace, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM places WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get place %s", id)
	}

	var place model.NormalizedPlace
	if err := json.Unmarshal([]byte(data), &place); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal place")
	}
	return &place, nil
}

// helpers

func marshalRecord(rec *model.RecommendationRecord) (location, preferences, places sql.NullString, err error) {
	if rec.Location != nil {
		b, merr := json.Marshal(rec.Location)
		if merr != nil {
			return location, preferences, places, merr
		}
		location = sql.NullString{String: string(b), Valid: true}
	}
	if len(rec.Preferences) > 0 {
		b, merr := json.Marshal(rec.Preferences)
		if merr != nil {
			return location, preferences, places, merr
		}
		preferences = sql.NullString{String: string(b), Valid: true}
	}
	b, merr := json.Marshal(rec.Places)
	if merr != nil {
		return location, preferences, places, merr
	}
	places = sql.NullString{String: string(b), Valid: true}
	return location, preferences, places, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecommendation(row scannable) (*model.RecommendationRecord, error) {
	var r model.RecommendationRecord
	var locationJSON, preferencesJSON sql.NullString
	var placesJSON string
	var feedback sql.NullInt64

	err := row.Scan(&r.ID, &r.Query, &locationJSON, &preferencesJSON, &r.Context,
		&placesJSON, &r.Narrative, &feedback, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan recommendation")
	}

	if locationJSON.Valid {
		r.Location = &model.Coordinates{}
		if err := json.Unmarshal([]byte(locationJSON.String), r.Location); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal location")
		}
	}
	if preferencesJSON.Valid {
		if err := json.Unmarshal([]byte(preferencesJSON.String), &r.Preferences); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal preferences")
		}
	}
	if err := json.Unmarshal([]byte(placesJSON), &r.Places); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal places")
	}
	if feedback.Valid {
		n := int(feedback.Int64)
		r.Feedback = &n
	}
	return &r, nil
}
