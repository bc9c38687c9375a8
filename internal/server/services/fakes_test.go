package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/dbx"
	"github.com/dmitrijs2005/holocron/internal/server/models"
	"github.com/dmitrijs2005/holocron/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/holocron/internal/server/repositories/films"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// fakeRepoManager hands out the same in-memory repositories for every DBTX.
type fakeRepoManager struct {
	accounts *fakeAccountsRepo
	films    *fakeFilmsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{accounts: newFakeAccountsRepo(), films: newFakeFilmsRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository {
	return m.accounts
}

func (m *fakeRepoManager) Films(dbx.DBTX) films.Repository {
	return m.films
}

type fakeAccountsRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*models.Account
	findErr   error
	createErr error
}

func newFakeAccountsRepo() *fakeAccountsRepo {
	return &fakeAccountsRepo{byEmail: map[string]*models.Account{}}
}

func (r *fakeAccountsRepo) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *a
	return &c, nil
}

func (r *fakeAccountsRepo) FindByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byEmail {
		if a.ID == id {
			c := *a
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeAccountsRepo) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.byEmail[a.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	now := time.Now().UTC()
	a.ID, a.CreatedAt, a.UpdatedAt = uuid.NewString(), now, now
	c := *a
	r.byEmail[a.Email] = &c
	return a, nil
}

type fakeFilmsRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.Film
	listErr   error
	createErr error
	deleteErr error
}

func newFakeFilmsRepo() *fakeFilmsRepo {
	return &fakeFilmsRepo{byID: map[string]*models.Film{}}
}

func (r *fakeFilmsRepo) put(f *models.Film) *models.Film {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	c := *f
	r.byID[f.ID] = &c
	return f
}

func (r *fakeFilmsRepo) sorted() []*models.Film {
	out := make([]*models.Film, 0, len(r.byID))
	for _, f := range r.byID {
		c := *f
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EpisodeID < out[j].EpisodeID })
	return out
}

func (r *fakeFilmsRepo) List(_ context.Context, q models.ListQuery) ([]*models.Film, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	all := r.sorted()
	from := min(q.Offset(), len(all))
	to := min(from+q.Rows, len(all))
	return all[from:to], nil
}

func (r *fakeFilmsRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

func (r *fakeFilmsRepo) GetByID(_ context.Context, id string) (*models.Film, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *f
	return &c, nil
}

func (r *fakeFilmsRepo) Create(_ context.Context, f *models.Film) (*models.Film, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.put(f), nil
}

func (r *fakeFilmsRepo) CreateMany(ctx context.Context, fs []*models.Film) error {
	for _, f := range fs {
		if _, err := r.Create(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeFilmsRepo) Update(_ context.Context, f *models.Film) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[f.ID]; !ok {
		return common.ErrorNotFound
	}
	c := *f
	r.byID[f.ID] = &c
	return nil
}

func (r *fakeFilmsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeFilmsRepo) DeleteAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	n := int64(len(r.byID))
	r.byID = map[string]*models.Film{}
	return n, nil
}

func (r *fakeFilmsRepo) SetArtworkKey(_ context.Context, id, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	f.ArtworkKey = key
	return nil
}

func sampleFilm(episode int, title string) *models.Film {
	return &models.Film{
		Title:        title,
		EpisodeID:    episode,
		OpeningCrawl: "It is a period of civil war.",
		Director:     "George Lucas",
		Producer:     "Gary Kurtz, Rick McCallum",
		ReleaseDate:  "1977-05-25",
		Characters:   []string{"https://www.swapi.tech/api/people/1"},
		Planets:      []string{"https://www.swapi.tech/api/planets/1"},
		Starships:    []string{"https://www.swapi.tech/api/starships/2"},
		Vehicles:     []string{"https://www.swapi.tech/api/vehicles/4"},
		Species:      []string{"https://www.swapi.tech/api/species/1"},
		URL:          "https://www.swapi.tech/api/films/1",
		Created:      time.Date(2014, 12, 10, 14, 23, 31, 0, time.UTC),
		Edited:       time.Date(2014, 12, 20, 19, 49, 45, 0, time.UTC),
	}
}
