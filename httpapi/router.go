// Package httpapi is the JSON HTTP interface of the catalog.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/acksell/catalog/logger"
	"github.com/acksell/catalog/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter registers the product routes, health check and metrics endpoint.
// m may be nil.
func NewRouter(svc ProductService, log *slog.Logger, m *metrics.Metrics) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	r := chi.NewRouter()
	r.Use(correlation(log))
	r.Use(instrument(m))
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Response{Data: map[string]string{"status": "ok"}})
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	h := &productHandler{svc: svc, logger: log}
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{sku}", h.get)
		r.Patch("/{sku}", h.update)
		r.Delete("/{sku}", h.remove)
	})
	return r
}
