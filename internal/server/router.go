// Package server is the thin HTTP collaborator described in §6: a chi
// router with CORS, JSON request/response bodies, a JWT-parsing
// authentication middleware, and routes that call straight into
// internal/gate and internal/service. HTTP transport is deliberately kept
// out of the evaluation core.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terraconstructs/iamcore/internal/credentials"
	"github.com/terraconstructs/iamcore/internal/gate"
	iammiddleware "github.com/terraconstructs/iamcore/internal/middleware"
	"github.com/terraconstructs/iamcore/internal/revocation"
	"github.com/terraconstructs/iamcore/internal/service"
)

// Options controls router construction. The zero value is not valid: Gate
// and STS must be supplied.
type Options struct {
	Gate        *gate.Gate
	STS         *service.STSService
	Credentials *credentials.Issuer
	Revocation  *revocation.Store
	CORSOptions *cors.Options
}

// DefaultCORSOptions mirrors a permissive local-development policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}

// NewRouter assembles the chi.Router serving iamd's HTTP surface.
func NewRouter(opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	r.Get("/healthz", handleHealthz)

	r.Post("/sts/login", handleLogin(opts.STS))
	r.Post("/sts/refresh", handleRefresh(opts.STS))
	r.Post("/sts/assume-role", handleAssumeRole(opts.STS))

	r.Group(func(r chi.Router) {
		r.Use(iammiddleware.Authenticate(opts.Credentials, opts.Revocation))
		r.Post("/sts/logout", handleLogout(opts.STS))
		r.Post("/authorize", handleAuthorize(opts.Gate))
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
