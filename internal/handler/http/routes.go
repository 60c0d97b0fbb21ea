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
	router.Use(withCORS)
	router.Use(withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/version", h.version)
		r.Post("/api/features/authorize", h.authorizeFeature)
	})

	// deployment-internal surface
	router.Group(func(r chi.Router) {
		r.Use(h.requireInternalKey)
		r.Post("/api/credits/grant", h.grantCredits)
	})

	// bearer-protected surface
	router.Group(func(r chi.Router) {
		r.Use(h.identify)

		r.Get("/api/credits/balance", h.getBalance)
		r.Get("/api/credits/history", h.getHistory)

		r.Route("/api/sync/{app}", func(r chi.Router) {
			r.Use(h.requireSyncSubscription)
			r.Get("/", h.readSync)
			r.Post("/", h.writeSync)
			r.Get("/meta", h.readSyncMeta)
			r.Get("/history/{version}", h.readSyncSnapshot)
		})
	})

	router.NotFound(h.notFound)
	router.MethodNotAllowed(h.methodNotAllowed)

	return router
}
