package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pressreach-backend/api/controllers"
	"github.com/angelmondragon/pressreach-backend/api/middleware"
	"github.com/angelmondragon/pressreach-backend/internal/branding"
	"github.com/angelmondragon/pressreach-backend/internal/outlets"
	"github.com/angelmondragon/pressreach-backend/internal/pipeline"
	"github.com/angelmondragon/pressreach-backend/internal/users"
	"github.com/angelmondragon/pressreach-backend/pkg/config"
	"github.com/angelmondragon/pressreach-backend/pkg/db"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	"github.com/angelmondragon/pressreach-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/pressreach-backend/pkg/redis"
)

// Dependencies are the services the router mounts. Idempotency and Redis may
// be nil when redis is not configured.
type Dependencies struct {
	DB          db.Pinger
	Redis       db.Pinger
	Idempotency pkgredis.IdempotencyStore
	Verifier    middleware.TokenVerifier

	Users         users.Service
	Branding      branding.Service
	Outlets       outlets.Service
	Distributions pipeline.Service

	Registry *prometheus.Registry
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	var httpMetrics *metrics.HTTPMetrics
	if deps.Registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(deps.Registry)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Logging(logg, httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.HealthCheck{Name: "db", Pinger: deps.DB},
			controllers.HealthCheck{Name: "redis", Pinger: deps.Redis},
		))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	requireAuth := middleware.Auth(deps.Verifier, deps.Users, logg)
	optionalAuth := middleware.OptionalAuth(deps.Verifier, deps.Users, logg)
	idempotent := middleware.Idempotency(deps.Idempotency, idempotencyTTL(cfg), logg)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", controllers.CategoryList(deps.Outlets, logg))
		r.With(optionalAuth).Get("/media", controllers.MediaList(deps.Outlets, logg))
		r.Post("/calculate-price", controllers.CalculatePrice(deps.Outlets, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/user", func(r chi.Router) {
				r.Post("/sync", controllers.UserSync(deps.Users, logg))
				r.Get("/stats", controllers.UserStats(deps.Users, logg))
			})

			r.Route("/branding", func(r chi.Router) {
				r.Get("/", controllers.BrandingGet(deps.Branding, logg))
				r.Put("/", controllers.BrandingUpdate(deps.Branding, logg))
				r.Post("/preview-email", controllers.BrandingPreviewEmail(deps.Branding, logg))
			})

			// Flat routes: a mounted /media subrouter would shadow the public GET.
			r.Post("/media", controllers.MediaCreate(deps.Outlets, logg))
			r.Put("/media/{mediaId}", controllers.MediaUpdate(deps.Outlets, logg))
			r.Delete("/media/{mediaId}", controllers.MediaDelete(deps.Outlets, logg))

			r.Route("/distributions", func(r chi.Router) {
				r.With(idempotent).Post("/", controllers.DistributionCreate(deps.Distributions, logg))
				r.Get("/", controllers.DistributionList(deps.Distributions, logg))
				r.Route("/{distributionId}", func(r chi.Router) {
					r.Get("/", controllers.DistributionGet(deps.Distributions, logg))
					r.Get("/preview", controllers.DistributionPreview(deps.Distributions, logg))
					r.With(idempotent).Post("/send", controllers.DistributionSend(deps.Distributions, logg))
					r.Post("/upload-file", controllers.DistributionUploadFile(deps.Distributions, cfg.Uploads.MaxBytes(), logg))
					r.Get("/files", controllers.DistributionFiles(deps.Distributions, logg))
					r.Get("/files/{fileId}/download", controllers.DistributionFileDownload(deps.Distributions, logg))
					r.Delete("/files/{fileId}", controllers.DistributionFileDelete(deps.Distributions, logg))
				})
			})
		})
	})

	return r
}

func idempotencyTTL(cfg *config.Config) time.Duration {
	if cfg.Redis.IdempotencyTTL > 0 {
		return cfg.Redis.IdempotencyTTL
	}
	return middleware.DefaultIdempotencyTTL
}
