package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_comics/internal/catalog"
	"github.com/fjod/go_comics/internal/service"
	"github.com/fjod/go_comics/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Catalog        *catalog.Catalog
	Sessions       *session.Manager
	UserActions    *service.UserActions
	RequestTimeout time.Duration
	// UpstreamTimeout bounds a single users API operation.
	UpstreamTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	catalogHandler := NewCatalogHandler(cfg.Catalog)
	cartHandler := NewCartHandler(cfg.Catalog, cfg.Sessions)
	userHandler := NewUserHandler(cfg.Sessions, cfg.UserActions, cfg.UpstreamTimeout)
	dispatchHandler := NewDispatchHandler(cfg.Sessions)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", catalogHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware)

			r.Get("/state", dispatchHandler.GetState)
			r.Post("/dispatch", dispatchHandler.Dispatch)
			r.Delete("/session", dispatchHandler.EndSession)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/items", cartHandler.AddItem)
				r.Delete("/items/{id}", cartHandler.RemoveItem)
				r.Post("/items/{id}/increment", cartHandler.IncrementItem)
				r.Post("/items/{id}/decrement", cartHandler.DecrementItem)
				r.Put("/shipping", cartHandler.SetShipping)
			})

			r.Route("/users", func(r chi.Router) {
				r.Post("/", userHandler.CreateUser)
				r.Get("/{id}", userHandler.GetUser)
				r.Put("/{id}", userHandler.UpdateUser)
				r.Delete("/{id}", userHandler.DeleteUser)
			})

			r.Get("/groups/{key}", userHandler.GetGroup)
		})
	})

	return r
}
