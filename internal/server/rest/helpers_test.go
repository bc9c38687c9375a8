package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/logging"
	"github.com/dmitrijs2005/holocron/internal/server/auth"
	"github.com/dmitrijs2005/holocron/internal/server/config"
	"github.com/dmitrijs2005/holocron/internal/server/models"
	"github.com/dmitrijs2005/holocron/internal/server/services"
)

const testSecret = "rest-test-secret"

func testConfig() *config.Config {
	return &config.Config{SecretKey: testSecret, TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}
}

type accountStore struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

func (s *accountStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == email {
			c := *a
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (s *accountStore) FindByID(_ context.Context, id string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *a
	return &c, nil
}

type fakeAccounts struct {
	err  error
	last services.RegisterInput
}

func (f *fakeAccounts) Register(_ context.Context, in services.RegisterInput) (*auth.LoginResult, error) {
	f.last = in
	if f.err != nil {
		return nil, f.err
	}
	return auth.NewLoginResult("registered-token", &models.Identity{ID: uuid.NewString(), Email: in.Email, Role: models.RoleUser}), nil
}

type fakeFilms struct {
	err       error
	lastQuery models.ListQuery
	lastID    string
	film      *models.Film
	deleted   int
	synced    int
}

func (f *fakeFilms) List(_ context.Context, q models.ListQuery) (*models.FilmPage, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return &models.FilmPage{Movies: []*models.Film{f.film}, TotalCount: 1}, nil
}

func (f *fakeFilms) Get(_ context.Context, id string) (*models.Film, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.film, nil
}

func (f *fakeFilms) Create(_ context.Context, film *models.Film) (*models.Film, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := *film
	c.ID = uuid.NewString()
	return &c, nil
}

func (f *fakeFilms) Update(_ context.Context, id string, patch *models.FilmPatch) (*models.Film, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	c := *f.film
	patch.Apply(&c)
	return &c, nil
}

func (f *fakeFilms) Delete(_ context.Context, id string) error {
	f.lastID = id
	if f.err != nil {
		return f.err
	}
	f.deleted++
	return nil
}

func (f *fakeFilms) Sync(context.Context) (*models.SyncResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.synced++
	return &models.SyncResult{Message: services.SyncMessage, SyncedMovies: []string{f.film.Title}, TotalCount: 1}, nil
}

type fakeArtwork struct {
	err error
}

func (f *fakeArtwork) UploadURL(_ context.Context, filmID string) (*models.ArtworkURL, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ArtworkURL{FilmID: filmID, Method: http.MethodPut, URL: "http://s3.local/put"}, nil
}

func (f *fakeArtwork) DownloadURL(_ context.Context, filmID string) (*models.ArtworkURL, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ArtworkURL{FilmID: filmID, Method: http.MethodGet, URL: "http://s3.local/get"}, nil
}

// testAPI is a fully wired router over fake services and a real auth gate.
type testAPI struct {
	router   *mux.Router
	registry *prometheus.Registry
	metrics  *Metrics
	tokens   *auth.TokenIssuer
	store    *accountStore
	accounts *fakeAccounts
	films    *fakeFilms
	artwork  *fakeArtwork
}

const (
	userEmail     = "alice@example.com"
	adminEmail    = "admin@example.com"
	validPassword = "secret1"
	newHopeID     = "6f1c0a5e-2f0a-4c8e-9b3e-4f1d2a3b4c5d"
)

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := testConfig()
	hasher := auth.NewBcryptHasher(cfg)
	store := &accountStore{accounts: map[string]*models.Account{}}

	for _, a := range []struct {
		email string
		role  models.Role
	}{{userEmail, models.RoleUser}, {adminEmail, models.RoleAdmin}} {
		digest, err := hasher.Hash(validPassword)
		require.NoError(t, err)
		id := uuid.NewString()
		store.accounts[id] = &models.Account{ID: id, Email: a.email, PasswordHash: digest, Role: a.role}
	}

	tokens := auth.NewTokenIssuer(cfg)
	gate := auth.NewGate(auth.NewVerifier(store, hasher), tokens, logging.Nop{})

	api := &testAPI{
		registry: prometheus.NewRegistry(),
		tokens:   tokens,
		store:    store,
		accounts: &fakeAccounts{},
		films:    &fakeFilms{film: &models.Film{ID: newHopeID, Title: "A New Hope", EpisodeID: 4}},
		artwork:  &fakeArtwork{},
	}

	metrics, err := NewMetrics(api.registry)
	require.NoError(t, err)
	api.metrics = metrics

	h := NewHandlers(gate, api.accounts, api.films, api.artwork, logging.Nop{})
	api.router = NewRouter(h, metrics, api.registry)
	return api
}

func (a *testAPI) tokenFor(t *testing.T, email string) string {
	t.Helper()
	acc, err := a.store.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	tok, err := a.tokens.Issue(acc.Identity())
	require.NoError(t, err)
	return tok
}

func expiredToken(t *testing.T, subject string) string {
	t.Helper()
	past := time.Now().Add(-2 * time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
		Role: models.RoleAdmin,
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (a *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, fmt.Sprintf("%s %s", common.BearerScheme, token))
	}

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}
