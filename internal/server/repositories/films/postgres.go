package films

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/dbx"
	"github.com/dmitrijs2005/holocron/internal/server/models"
)

const filmColumns = `id, title, episode_id, opening_crawl, director, producer, release_date,
	characters, planets, starships, vehicles, species, url, created, edited,
	artwork_key, created_at, updated_at`

// PostgresRepository implements film storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanFilm reads one row in filmColumns order. text[] columns go through a
// pgtype.Map since database/sql cannot scan arrays on its own.
func scanFilm(m *pgtype.Map, row rowScanner) (*models.Film, error) {
	f := &models.Film{}
	err := row.Scan(
		&f.ID, &f.Title, &f.EpisodeID, &f.OpeningCrawl, &f.Director, &f.Producer, &f.ReleaseDate,
		m.SQLScanner(&f.Characters), m.SQLScanner(&f.Planets), m.SQLScanner(&f.Starships),
		m.SQLScanner(&f.Vehicles), m.SQLScanner(&f.Species),
		&f.URL, &f.Created, &f.Edited, &f.ArtworkKey, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// List returns one page of films ordered by episode.
func (r *PostgresRepository) List(ctx context.Context, q models.ListQuery) ([]*models.Film, error) {
	query := `SELECT ` + filmColumns + ` FROM films
		ORDER BY episode_id, created_at
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, q.Rows, q.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to select films: %w", err)
	}
	defer rows.Close()

	m := pgtype.NewMap()
	result := make([]*models.Film, 0)
	for rows.Next() {
		f, err := scanFilm(m, rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the total number of stored films.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM films`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// GetByID returns a single film.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Film, error) {
	query := `SELECT ` + filmColumns + ` FROM films WHERE id = $1`
	f, err := scanFilm(pgtype.NewMap(), r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// Create inserts film and fills in its id and row timestamps.
func (r *PostgresRepository) Create(ctx context.Context, film *models.Film) (*models.Film, error) {
	query := `
		INSERT INTO films (title, episode_id, opening_crawl, director, producer, release_date,
			characters, planets, starships, vehicles, species, url, created, edited)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		film.Title, film.EpisodeID, film.OpeningCrawl, film.Director, film.Producer, film.ReleaseDate,
		nonNil(film.Characters), nonNil(film.Planets), nonNil(film.Starships), nonNil(film.Vehicles), nonNil(film.Species),
		film.URL, film.Created, film.Edited,
	).Scan(&film.ID, &film.CreatedAt, &film.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return film, nil
}

// CreateMany inserts films one by one; run it inside dbx.WithTx to make the
// batch atomic.
func (r *PostgresRepository) CreateMany(ctx context.Context, films []*models.Film) error {
	for _, f := range films {
		if _, err := r.Create(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// Update overwrites every data column of the stored film with film's values.
func (r *PostgresRepository) Update(ctx context.Context, film *models.Film) error {
	query := `
		UPDATE films SET title = $1, episode_id = $2, opening_crawl = $3, director = $4, producer = $5,
			release_date = $6, characters = $7, planets = $8, starships = $9, vehicles = $10,
			species = $11, url = $12, created = $13, edited = $14, updated_at = now()
		WHERE id = $15
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		film.Title, film.EpisodeID, film.OpeningCrawl, film.Director, film.Producer, film.ReleaseDate,
		nonNil(film.Characters), nonNil(film.Planets), nonNil(film.Starships), nonNil(film.Vehicles), nonNil(film.Species),
		film.URL, film.Created, film.Edited, film.ID,
	).Scan(&film.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes a single film.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM films WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

// DeleteAll removes every film and reports how many rows went.
func (r *PostgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM films`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

// SetArtworkKey records the object-storage key of the film's artwork.
func (r *PostgresRepository) SetArtworkKey(ctx context.Context, id, key string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE films SET artwork_key = $1, updated_at = now() WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
