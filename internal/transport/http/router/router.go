package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldcrew/marketplace-api/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health HealthHandler
	Auth   AuthHandler

	// SessionMW guards authenticated routes.
	SessionMW func(http.Handler) http.Handler

	// Per-route throttles; nil means unthrottled.
	RegisterLimitMW func(http.Handler) http.Handler
	LoginLimitMW    func(http.Handler) http.Handler

	RequestTimeout time.Duration
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.SessionMW == nil {
		return nil, fmt.Errorf("nil session middleware")
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 30 * time.Second
	}

	passthrough := func(next http.Handler) http.Handler { return next }
	if deps.RegisterLimitMW == nil {
		deps.RegisterLimitMW = passthrough
	}
	if deps.LoginLimitMW == nil {
		deps.LoginLimitMW = passthrough
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(deps.RequestTimeout))
	r.Use(middleware.Metrics)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/users", func(r chi.Router) {
		r.With(deps.RegisterLimitMW).Post("/", deps.Auth.Register)
		r.With(deps.LoginLimitMW).Post("/login", deps.Auth.Login)
		r.With(deps.SessionMW).Get("/me", deps.Auth.Me)
	})

	return r, nil
}
