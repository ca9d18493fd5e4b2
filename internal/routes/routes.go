package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/farbour/farbour/internal/application"
	"github.com/farbour/farbour/internal/config"
	"github.com/farbour/farbour/internal/earnings"
	"github.com/farbour/farbour/internal/identity"
	"github.com/farbour/farbour/internal/job"
	"github.com/farbour/farbour/internal/middleware"
	"github.com/farbour/farbour/internal/notification"
	"github.com/farbour/farbour/internal/profile"
	"github.com/farbour/farbour/internal/review"
	"github.com/farbour/farbour/internal/sms"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories. Dev mode without a database runs on memory backends.
	var (
		identityRepo identity.Repository
		challenges   identity.ChallengeStore
		profiles     profile.Store
		jobRepo      job.Repository
		appRepo      application.Repository
		reviewRepo   review.Repository
		notifRepo    notification.Repository
		ledger       earnings.Ledger
	)
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		profiles = profile.NewPostgresStore(d.DB)
		jobRepo = job.NewPostgresRepository(d.DB)
		appRepo = application.NewPostgresRepository(d.DB)
		reviewRepo = review.NewPostgresRepository(d.DB)
		notifRepo = notification.NewPostgresRepository(d.DB)
		ledger = earnings.NewPostgresLedger(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
		profiles = profile.NewMemoryStore()
		jobRepo = job.NewMemoryRepository()
		appRepo = application.NewMemoryRepository()
		reviewRepo = review.NewMemoryRepository()
		notifRepo = notification.NewMemoryRepository()
		ledger = earnings.NewInMemory()
	}
	if d.Cache != nil {
		challenges = identity.NewRedisChallengeStore(d.Cache)
	} else {
		challenges = identity.NewMemoryChallengeStore()
	}

	var sender sms.Sender
	if d.Cfg.TwilioAccountSID != "" && d.Cfg.TwilioAuthToken != "" {
		sender = sms.NewTwilioSender(d.Cfg.TwilioAccountSID, d.Cfg.TwilioAuthToken, d.Cfg.TwilioFromNumber)
	} else {
		sender = sms.NewLoggerSender(d.Logger)
	}

	// Services and handlers
	issuer := identity.NewTokenIssuer(d.Cfg.JWTSecret, d.Cfg.RefreshSecret, d.Cfg.AccessTokenTTL, d.Cfg.RefreshTokenTTL)
	provider := identity.NewProvider(identityRepo, challenges, sender, issuer, d.Logger, identity.Options{
		OTPTTL:         d.Cfg.OTPTTL,
		OTPLength:      d.Cfg.OTPLength,
		OTPMaxAttempts: d.Cfg.OTPMaxAttempts,
	})
	notifSvc := notification.NewService(notifRepo)
	jobSvc := job.NewService(jobRepo)
	appSvc := application.NewService(appRepo, jobRepo, profiles, ledger, notifSvc, d.Logger)
	reviewSvc := review.NewService(reviewRepo, profiles, notifSvc, d.Logger)

	authHandler := identity.NewHandler(provider)
	profileHandler := profile.NewHandler(profiles)
	jobHandler := job.NewHandler(jobSvc)
	appHandler := application.NewHandler(appSvc)
	reviewHandler := review.NewHandler(reviewSvc)
	notifHandler := notification.NewHandler(notifSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.OTPRateLimit(d.Cache, 3)
	RegisterAuthRoutes(api, authHandler, profiles, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(issuer, identityRepo)
	protected := api.Group("", jwtmw)
	RegisterProfileRoutes(protected, profileHandler, ledger)
	RegisterJobRoutes(protected, jobHandler)
	RegisterApplicationRoutes(protected, appHandler)
	RegisterReviewRoutes(protected, reviewHandler)
	RegisterNotificationRoutes(protected, notifHandler)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
