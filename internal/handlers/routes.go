package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tamecovita/reservations/internal/auth"
	"github.com/tamecovita/reservations/internal/logging"
)

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(h.log))
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/home", http.StatusFound)
	})
	r.Get("/home", h.Home)
	r.Get("/logo.png", h.Logo)
	r.Get("/customer", h.CustomerForm)
	r.Post("/submit", h.Submit)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Post("/logout", h.Logout)
	r.Get("/download", h.Download)
	r.Get("/receipt/{receiptNo}/word", h.Receipt)
	r.Get("/invoice/{receiptNo}/download", h.Invoice)

	// Admin pages
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAdmin)
		r.Get("/index", h.Index)
		r.Get("/edit/{receiptNo}", h.Edit)
		r.Post("/update/{receiptNo}", h.Update)
		r.Get("/search", h.Search)
	})

	// Admin JSON API
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAdminAPI)

		config := huma.DefaultConfig(h.opts.SiteName+" API", "1.0.0")
		config.OpenAPIPath = "/api/openapi"
		config.DocsPath = "/api/docs"
		config.SchemasPath = "/api/schemas"
		config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
			"cookieAuth": {
				Type: "apiKey",
				In:   "cookie",
				Name: auth.CookieName,
			},
		}
		api := humachi.New(r, config)

		secured := func(o *huma.Operation) {
			o.Security = []map[string][]string{{"cookieAuth": {}}}
		}
		huma.Get(api, "/api/reservations", h.HandleListReservations, secured)
		huma.Get(api, "/api/reservations/search", h.HandleSearchReservations, secured)
		huma.Get(api, "/api/reservations/{receiptNo}", h.HandleGetReservation, secured)
		huma.Get(api, "/api/reservations/{receiptNo}/revisions", h.HandleRevisions, secured)
		huma.Post(api, "/api/quote", h.HandleQuote, secured)
	})
}
