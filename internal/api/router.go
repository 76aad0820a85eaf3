package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

type RouterOptions struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

func NewRouter(h *APIHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         86400,
	}))
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", h.HealthHandler)
		r.Post("/chat", h.ChatHandler)
		r.Get("/history/{sessionID}", h.HistoryHandler)
		r.Get("/categories", h.CategoriesHandler)
		r.Get("/category/{name}", h.CategoryHandler)
		r.Get("/knowledge-base", h.KnowledgeBaseHandler)
		r.Get("/suggestions", h.SuggestionsHandler)
		r.Post("/test", h.TestLLMHandler)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.LoginHandler)

			r.Group(func(r chi.Router) {
				r.Use(h.AdminOnly)

				r.Post("/logout", h.LogoutHandler)
				r.Get("/analytics", h.AnalyticsHandler)

				r.Get("/chats", h.ListChatsHandler)
				r.Post("/chats/reset", h.ResetChatsHandler)
				r.Delete("/chats/{sessionID}", h.DeleteChatHandler)

				r.Get("/policies", h.GetPoliciesHandler)
				r.Put("/policies", h.PutPoliciesHandler)
				r.Get("/company", h.GetCompanyHandler)
				r.Put("/company", h.PutCompanyHandler)

				r.Route("/kb", func(r chi.Router) {
					r.Get("/categories", h.AdminCategoriesHandler)
					r.Post("/categories", h.ReplaceCategoryHandler)
					r.Get("/categories/disabled", h.GetDisabledHandler)
					r.Put("/categories/disabled", h.PutDisabledHandler)
					r.Get("/categories/settings", h.GetSettingsHandler)
					r.Put("/categories/settings", h.PutSettingsHandler)

					r.Post("/items", h.AddItemHandler)

					r.Get("/category/{category}", h.GetCategoryItemsHandler)
					r.Put("/category/{category}", h.PutCategoryItemsHandler)
					r.Delete("/category/{category}/{index}", h.DeleteItemHandler)
				})
			})
		})
	})

	return r
}
