package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/dbx"
	"github.com/dmitrijs2005/holocron/internal/logging"
	"github.com/dmitrijs2005/holocron/internal/server/config"
	"github.com/dmitrijs2005/holocron/internal/server/models"
	"github.com/dmitrijs2005/holocron/internal/server/repositories/repomanager"
)

// SyncMessage is reported after a successful sync.
const SyncMessage = "Movies synchronized successfully"

// FilmSource fetches the authoritative film list from outside.
type FilmSource interface {
	Films(ctx context.Context) ([]*models.Film, error)
}

// FilmService manages film records.
type FilmService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	source      FilmSource
	syncTimeout time.Duration
	logger      logging.Logger
}

func NewFilmService(db *sql.DB, m repomanager.RepositoryManager, source FilmSource,
	cfg *config.Config, logger logging.Logger) *FilmService {
	return &FilmService{
		db:          db,
		repomanager: m,
		source:      source,
		syncTimeout: cfg.SyncTimeout,
		logger:      logger.With("module", "films"),
	}
}

func validationError(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorValidation, err)
}

// checkID rejects ids that are not UUIDs before they reach the database.
func checkID(id string) error {
	if err := validation.Validate(id, validation.Required, is.UUID); err != nil {
		return validationError(fmt.Errorf("id: %w", err))
	}
	return nil
}

func validateQuery(q models.ListQuery) error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Page, validation.Required, validation.Min(1), validation.Max(common.MaxPage)),
		validation.Field(&q.Rows, validation.Required, validation.Min(1), validation.Max(common.MaxRows)),
	)
}

// validateFilm requires every descriptive field. Link lists must be present
// but may be empty.
func validateFilm(f *models.Film) error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.Required),
		validation.Field(&f.EpisodeID, validation.Min(0)),
		validation.Field(&f.OpeningCrawl, validation.Required),
		validation.Field(&f.Director, validation.Required),
		validation.Field(&f.Producer, validation.Required),
		validation.Field(&f.ReleaseDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&f.Characters, validation.NotNil),
		validation.Field(&f.Planets, validation.NotNil),
		validation.Field(&f.Starships, validation.NotNil),
		validation.Field(&f.Vehicles, validation.NotNil),
		validation.Field(&f.Species, validation.NotNil),
		validation.Field(&f.URL, validation.Required, is.URL),
		validation.Field(&f.Created, validation.Required),
		validation.Field(&f.Edited, validation.Required),
	)
}

// List returns one page of films and the total count.
func (s *FilmService) List(ctx context.Context, q models.ListQuery) (*models.FilmPage, error) {
	if err := validateQuery(q); err != nil {
		return nil, validationError(err)
	}

	repo := s.repomanager.Films(s.db)

	films, err := repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("error listing films: %w", err)
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting films: %w", err)
	}

	return &models.FilmPage{Movies: films, TotalCount: total}, nil
}

// Get returns a single film.
func (s *FilmService) Get(ctx context.Context, id string) (*models.Film, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Films(s.db).GetByID(ctx, id)
}

// Create validates and stores a new film.
func (s *FilmService) Create(ctx context.Context, film *models.Film) (*models.Film, error) {
	if err := validateFilm(film); err != nil {
		return nil, validationError(err)
	}
	film.ID = ""
	created, err := s.repomanager.Films(s.db).Create(ctx, film)
	if err != nil {
		return nil, fmt.Errorf("error creating film: %w", err)
	}
	s.logger.Info(ctx, "film created", "film_id", created.ID, "title", created.Title)
	return created, nil
}

// Update merges patch onto the stored film and saves the result.
func (s *FilmService) Update(ctx context.Context, id string, patch *models.FilmPatch) (*models.Film, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var film *models.Film
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Films(tx)

		existing, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(existing)
		existing.ID = id

		if err := validateFilm(existing); err != nil {
			return validationError(err)
		}
		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
		film = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return film, nil
}

// Delete removes a film.
func (s *FilmService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repomanager.Films(s.db).Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "film deleted", "film_id", id)
	return nil
}

// Sync replaces every stored film with the source's list in one
// transaction. Nothing is deleted when the fetch fails.
func (s *FilmService) Sync(ctx context.Context) (*models.SyncResult, error) {
	if s.syncTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.syncTimeout)
		defer cancel()
	}

	films, err := s.source.Films(ctx)
	if err != nil {
		s.logger.Error(ctx, "fetching films failed", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrUpstream, err)
	}

	var removed int64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Films(tx)
		var err error
		if removed, err = repo.DeleteAll(ctx); err != nil {
			return err
		}
		return repo.CreateMany(ctx, films)
	})
	if err != nil {
		return nil, fmt.Errorf("error storing films: %w", err)
	}

	titles := make([]string, 0, len(films))
	for _, f := range films {
		titles = append(titles, f.Title)
	}

	s.logger.Info(ctx, "films synchronized", "removed", removed, "stored", len(films))
	return &models.SyncResult{Message: SyncMessage, SyncedMovies: titles, TotalCount: len(films)}, nil
}
