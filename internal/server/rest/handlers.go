// Package rest exposes the film API and the auth endpoints over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/logging"
	"github.com/dmitrijs2005/holocron/internal/server/auth"
	"github.com/dmitrijs2005/holocron/internal/server/models"
	"github.com/dmitrijs2005/holocron/internal/server/services"
)

// Authenticator is the part of auth.Gate the HTTP layer uses.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	RequireAuthenticated(ctx context.Context, header string) (*models.Identity, error)
	RequireRole(identity *models.Identity, required auth.RoleSet) error
}

type AccountRegistrar interface {
	Register(ctx context.Context, in services.RegisterInput) (*auth.LoginResult, error)
}

type FilmManager interface {
	List(ctx context.Context, q models.ListQuery) (*models.FilmPage, error)
	Get(ctx context.Context, id string) (*models.Film, error)
	Create(ctx context.Context, film *models.Film) (*models.Film, error)
	Update(ctx context.Context, id string, patch *models.FilmPatch) (*models.Film, error)
	Delete(ctx context.Context, id string) error
	Sync(ctx context.Context) (*models.SyncResult, error)
}

type ArtworkProvider interface {
	UploadURL(ctx context.Context, filmID string) (*models.ArtworkURL, error)
	DownloadURL(ctx context.Context, filmID string) (*models.ArtworkURL, error)
}

// Handlers holds the HTTP handlers and their collaborators.
type Handlers struct {
	gate     Authenticator
	accounts AccountRegistrar
	films    FilmManager
	artwork  ArtworkProvider
	logger   logging.Logger
}

func NewHandlers(gate Authenticator, accounts AccountRegistrar, films FilmManager, artwork ArtworkProvider, logger logging.Logger) *Handlers {
	return &Handlers{
		gate:     gate,
		accounts: accounts,
		films:    films,
		artwork:  artwork,
		logger:   logger.With("module", "http"),
	}
}

const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return badRequest("malformed JSON body")
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.gate.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Register handles POST /users/register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(name + " must be an integer")
	}
	return n, nil
}

// ListFilms handles GET /films?page=&rows=.
func (h *Handlers) ListFilms(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", common.DefaultPage)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rows, err := queryInt(r, "rows", common.DefaultRows)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.films.List(r.Context(), models.ListQuery{Page: page, Rows: rows})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetFilm handles GET /films/{id}.
func (h *Handlers) GetFilm(w http.ResponseWriter, r *http.Request) {
	film, err := h.films.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, film)
}

// CreateFilm handles POST /films.
func (h *Handlers) CreateFilm(w http.ResponseWriter, r *http.Request) {
	var film models.Film
	if err := decodeJSON(r, &film); err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.films.Create(r.Context(), &film)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateFilm handles PATCH /films/{id}.
func (h *Handlers) UpdateFilm(w http.ResponseWriter, r *http.Request) {
	var patch models.FilmPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	film, err := h.films.Update(r.Context(), mux.Vars(r)["id"], &patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, film)
}

// DeleteFilm handles DELETE /films/{id}.
func (h *Handlers) DeleteFilm(w http.ResponseWriter, r *http.Request) {
	if err := h.films.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncFilms handles POST /films/sync.
func (h *Handlers) SyncFilms(w http.ResponseWriter, r *http.Request) {
	res, err := h.films.Sync(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ArtworkUpload handles POST /films/{id}/artwork.
func (h *Handlers) ArtworkUpload(w http.ResponseWriter, r *http.Request) {
	res, err := h.artwork.UploadURL(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ArtworkDownload handles GET /films/{id}/artwork.
func (h *Handlers) ArtworkDownload(w http.ResponseWriter, r *http.Request) {
	res, err := h.artwork.DownloadURL(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Ok!")
}
