package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vasiliy-maslov/garage-platform/internal/auth"
	httpHandler "github.com/vasiliy-maslov/garage-platform/internal/handler/http"
)

type RouteRegistrar interface {
	RegisterRoutes(router chi.Router)
}

// NewRouter mounts every registrar under /api behind optional bearer authentication.
func NewRouter(tokens *auth.TokenManager, allowedOrigins []string, registrars ...RouteRegistrar) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpHandler.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.Authenticate(tokens))
		for _, reg := range registrars {
			reg.RegisterRoutes(api)
		}
	})

	return r
}
