package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/holocron/internal/server/auth"
	"github.com/dmitrijs2005/holocron/internal/server/models"
)

// Route binds a handler to a method, a path and the roles allowed to call it.
type Route struct {
	Method  string
	Path    string
	Roles   auth.RoleSet
	Handler http.HandlerFunc
}

var (
	adminOnly = auth.Roles(models.RoleAdmin)
	anyRole   = auth.Roles(models.RoleUser, models.RoleAdmin)
	public    = auth.Roles()
)

// Routes is the route table of the API.
func Routes(h *Handlers) []Route {
	return []Route{
		{http.MethodGet, "/health", public, h.Health},
		{http.MethodPost, "/auth/login", public, h.Login},
		{http.MethodPost, "/users/register", public, h.Register},

		{http.MethodGet, "/films", public, h.ListFilms},
		{http.MethodPost, "/films", adminOnly, h.CreateFilm},
		{http.MethodPost, "/films/sync", adminOnly, h.SyncFilms},
		{http.MethodGet, "/films/{id}", anyRole, h.GetFilm},
		{http.MethodPatch, "/films/{id}", adminOnly, h.UpdateFilm},
		{http.MethodDelete, "/films/{id}", adminOnly, h.DeleteFilm},
		{http.MethodPost, "/films/{id}/artwork", adminOnly, h.ArtworkUpload},
		{http.MethodGet, "/films/{id}/artwork", anyRole, h.ArtworkDownload},
	}
}

// NewRouter builds the mux router. gatherer backs the /metrics endpoint and
// may be nil to leave it out.
func NewRouter(h *Handlers, metrics *Metrics, gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()
	r.Use(accessLog(h.logger), metrics.Middleware)

	for _, route := range Routes(h) {
		r.HandleFunc(route.Path, h.guard(route.Roles, route.Handler)).Methods(route.Method)
	}

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return r
}
