package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/health", h.health)
		r.Get("/api/version", h.getServerVersion)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/sync/pull", h.pull)

		r.Group(func(r chi.Router) {
			if h.checkHash {
				r.Use(h.pushHashing)
			}
			r.Post("/api/sync/push", h.push)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
