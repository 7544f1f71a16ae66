package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
// Everything under /api except login and logout requires a session cookie.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID)
	r.Use(WithLogging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.Cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", app.healthHandler)
	r.Get("/openapi.yaml", app.openapiHandler)
	r.Get("/docs", app.docsHandler)

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", app.loginHandler)
		api.Post("/auth/logout", app.logoutHandler)

		api.Group(func(g chi.Router) {
			g.Use(app.RequireAuth)
			g.Get("/auth/check", app.checkAuthHandler)

			g.Route("/products", func(pr chi.Router) {
				pr.Get("/", app.listProductsHandler)
				pr.Post("/", app.createProductHandler)
				pr.Post("/scan", app.scanHandler)
				pr.Post("/clear", app.clearHandler)
				pr.Get("/{id}", app.getProductHandler)
				pr.Put("/{id}", app.updateProductHandler)
				pr.Delete("/{id}", app.deleteProductHandler)
			})

			g.Route("/manufacturers", func(mr chi.Router) {
				mr.Get("/", app.listManufacturersHandler)
				mr.Get("/{id}", app.getManufacturerHandler)
				mr.Put("/{id}", app.renameManufacturerHandler)
				mr.Delete("/{id}", app.deleteManufacturerHandler)
			})

			g.Route("/suppliers", func(sr chi.Router) {
				sr.Get("/", app.listSuppliersHandler)
				sr.Get("/{id}", app.getSupplierHandler)
				sr.Put("/{id}", app.renameSupplierHandler)
				sr.Delete("/{id}", app.deleteSupplierHandler)
			})

			g.Route("/updates", func(ur chi.Router) {
				ur.Get("/", app.listUpdatesHandler)
				ur.Get("/export", app.exportHandler)
				ur.Delete("/{id}", app.deleteUpdateHandler)
			})
		})
	})

	return r
}
