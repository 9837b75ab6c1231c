package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"

	"teamdesk/config"
	"teamdesk/middleware"
	"teamdesk/models"
	"teamdesk/routes"
	"teamdesk/store"
	"teamdesk/store/filestore"
	"teamdesk/store/postgres"
	"teamdesk/utils"
)

func main() {
	// Load configuration
	if err := config.LoadEnv(config.EnvFiles...); err != nil {
		logrus.Fatalf("Failed to read env files: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := utils.ConfigureLogger(cfg.LogLevel, cfg.IsProduction())
	cfg.Log(logger)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			logger.WithError(err).Warn("Sentry initialization failed")
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer st.Close()

	if err := seedAdmin(ctx, st, cfg.SeedAdminEmail, cfg.SeedAdminPassword, logger); err != nil {
		logger.WithError(err).Fatal("Failed to seed admin user")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "teamdesk",
		ErrorHandler: middleware.ErrorHandler(logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(utils.Component(logger, "http")))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins
	app.Use(middleware.CORS(corsConfig))

	// Setup routes
	routes.SetupRoutes(app, routes.Deps{
		Store:              st,
		Tokens:             utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Logger:             logger,
		LoginRateLimit:     cfg.LoginRateLimit,
		RateLimitStorage:   middleware.NewRateLimitStorage(cfg.Redis),
		NotifyPollInterval: cfg.NotifyPollInterval,
	})

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logger.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}

// openStore picks the Postgres backend when DATABASE_URL is set and the
// JSON file store otherwise.
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (store.Store, error) {
	if !cfg.UsesDatabase() {
		fs := filestore.New(cfg.DataDir)
		logger.WithField("path", fs.Path()).Warn("DATABASE_URL not set, using file store")
		return fs, nil
	}

	factory := config.NewDatabaseFactory(cfg)
	if cfg.DBAutoMigrate {
		if err := postgres.Migrate(ctx, factory); err != nil {
			factory.Close()
			return nil, err
		}
		logger.Info("Database migration completed")
	}
	return postgres.New(factory), nil
}

// seedAdmin makes sure the configured admin account exists.
func seedAdmin(ctx context.Context, users store.Users, email, password string, logger *logrus.Logger) error {
	if email == "" || password == "" {
		return nil
	}
	email = strings.ToLower(email)

	_, err := users.UserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	user, err := users.InsertUser(ctx, models.User{
		Email:        email,
		Name:         "Admin",
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	logger.WithField("user_id", user.ID).Info("Seeded admin user")
	return nil
}
