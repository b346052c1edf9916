package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mfigueroa/openshelf-backend/api/controllers"
	"github.com/mfigueroa/openshelf-backend/api/middleware"
	"github.com/mfigueroa/openshelf-backend/internal/auth"
	"github.com/mfigueroa/openshelf-backend/internal/availability"
	"github.com/mfigueroa/openshelf-backend/internal/catalog"
	"github.com/mfigueroa/openshelf-backend/internal/feedback"
	"github.com/mfigueroa/openshelf-backend/internal/integrations"
	"github.com/mfigueroa/openshelf-backend/internal/profiles"
	"github.com/mfigueroa/openshelf-backend/internal/reports"
	"github.com/mfigueroa/openshelf-backend/pkg/auth/session"
	"github.com/mfigueroa/openshelf-backend/pkg/config"
	"github.com/mfigueroa/openshelf-backend/pkg/db"
	"github.com/mfigueroa/openshelf-backend/pkg/logger"
	"github.com/mfigueroa/openshelf-backend/pkg/redis"
	"github.com/mfigueroa/openshelf-backend/pkg/storage/gcs"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles every domain service the router mounts.
type Services struct {
	Auth         auth.Service
	Register     auth.RegisterService
	Catalog      catalog.Service
	Availability availability.Service
	Profiles     profiles.Service
	Feedback     feedback.Service
	Integrations integrations.Service
	Reports      reports.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	sessions sessionManager,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Register, logg))
		r.Post("/verify-email", controllers.AuthVerifyEmail(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
	})

	// Catalog browsing is open to guests; a presented token still
	// personalizes the availability answer.
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthOptional(cfg.JWT, sessions, logg))
			r.Get("/", controllers.CatalogList(svcs.Catalog, logg))
			r.Get("/genres", controllers.CatalogGenres(svcs.Catalog, logg))
			r.Get("/authors", controllers.CatalogAuthors(svcs.Catalog, logg))
			r.Get("/tags", controllers.CatalogTags(svcs.Catalog, logg))
			r.Get("/{contentID}", controllers.CatalogGet(svcs.Catalog, logg))
			r.Get("/{contentID}/availability", controllers.CatalogAvailability(svcs.Availability, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Get("/{contentID}/view", controllers.CatalogView(svcs.Catalog, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))
				r.Use(middleware.Idempotency(redisClient, logg))
				r.Post("/", controllers.CatalogCreate(svcs.Catalog, logg))
				r.Patch("/{contentID}", controllers.CatalogUpdate(svcs.Catalog, logg))
				r.With(middleware.RequireAdmin(logg)).Delete("/{contentID}", controllers.CatalogDelete(svcs.Catalog, logg))
			})
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/circulation", func(r chi.Router) {
			r.Post("/borrow", controllers.CirculationBorrow(svcs.Availability, logg))
			r.Post("/return/{borrowID}", controllers.CirculationReturn(svcs.Availability, logg))
			r.Post("/reserve", controllers.CirculationReserve(svcs.Availability, logg))
			r.Post("/waitlist", controllers.CirculationJoinWaitlist(svcs.Availability, logg))
			r.Get("/borrowed", controllers.CirculationBorrowed(svcs.Availability, logg))
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/me", controllers.ProfileMe(svcs.Profiles, logg))
			r.Patch("/me", controllers.ProfileUpdate(svcs.Profiles, logg))
			r.Get("/me/stats", controllers.ProfileStats(svcs.Profiles, logg))
		})

		r.Route("/feedback", func(r chi.Router) {
			r.Post("/", controllers.FeedbackSubmit(svcs.Feedback, logg))
			r.Get("/", controllers.FeedbackListOwn(svcs.Feedback, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))
			r.Route("/feedback", func(r chi.Router) {
				r.Get("/", controllers.AdminFeedbackList(svcs.Feedback, logg))
				r.Post("/{feedbackID}/respond", controllers.AdminFeedbackRespond(svcs.Feedback, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Route("/reports", func(r chi.Router) {
				r.Get("/overview", controllers.AdminReportsOverview(svcs.Reports, logg))
				r.Get("/export", controllers.AdminReportsExport(svcs.Reports, logg))
			})
			r.Route("/users", func(r chi.Router) {
				r.Post("/", controllers.AdminUserCreate(svcs.Profiles, logg))
				r.Get("/", controllers.AdminUserList(svcs.Profiles, logg))
				r.Get("/{userID}", controllers.AdminUserGet(svcs.Profiles, logg))
				r.Patch("/{userID}", controllers.AdminUserUpdate(svcs.Profiles, logg))
				r.Delete("/{userID}", controllers.AdminUserDelete(svcs.Profiles, logg))
			})
			r.Route("/integrations", func(r chi.Router) {
				r.Post("/", controllers.AdminIntegrationCreate(svcs.Integrations, logg))
				r.Get("/", controllers.AdminIntegrationList(svcs.Integrations, logg))
				r.Get("/{systemID}", controllers.AdminIntegrationGet(svcs.Integrations, logg))
				r.Patch("/{systemID}", controllers.AdminIntegrationUpdate(svcs.Integrations, logg))
				r.Delete("/{systemID}", controllers.AdminIntegrationDelete(svcs.Integrations, logg))
				r.Post("/{systemID}/sync", controllers.AdminIntegrationSync(svcs.Integrations, logg))
			})
		})
	})

	return r
}
