package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"legendemer/internal/http/handlers"
	"legendemer/internal/infra"
	"legendemer/internal/middleware"
)

// Options tunes the middleware stack.
type Options struct {
	Logger          infra.Logger
	AllowedOrigins  []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
	AdminToken      string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)
	r.Get("/v1/catalog", app.Catalog)
	r.Post("/v1/compose", app.Compose)
	r.Get("/v1/locations/info", app.LocationInfo)

	r.Route("/v1/generations", func(r chi.Router) {
		r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute)).Post("/", app.Generate)
		r.Get("/{id}/download", app.Download)
		r.Post("/{id}/share", app.Share)
		r.Get("/{id}/progress", app.Progress)
	})

	r.With(middleware.BearerToken(opts.AdminToken)).Post("/v1/credentials", app.Credentials)

	return r
}
