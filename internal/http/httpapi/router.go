package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"aititle/internal/http/handlers"
	"aititle/internal/infra"
	"aititle/internal/middleware"
)

type Options struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For and friends.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

func NewRouter(app *handlers.App, logger infra.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.Logger(logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/api/video", func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMinute, time.Minute))
		r.Post("/", app.CreateVideoTitle)
		r.Get("/{videoID}", app.GetVideo)
	})

	return r
}
