// Package app assembles the fishing log HTTP application from its configuration.
package app

import (
	"errors"
	"fmt"
	"time"

	"fishlog/internal/authz"
	"fishlog/internal/config"
	"fishlog/internal/handlers"
	"fishlog/internal/logging"
	"fishlog/internal/middleware"
	"fishlog/internal/query"
	"fishlog/internal/repositories"
	"fishlog/internal/services"
	"fishlog/pkg/photostore"
	"fishlog/pkg/rabbitmq"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// App is the wired application. Everything a request needs hangs off it.
type App struct {
	Fiber       *fiber.App
	DB          *gorm.DB
	AuthService *services.AuthService // nil when authentication is disabled

	mq *rabbitmq.Client
}

// New wires repositories, services and handlers on db according to cfg.
// The database must already be migrated.
func New(cfg *config.Config, db *gorm.DB) (*App, error) {
	photos, err := photostore.New(cfg.UploadDir, photostore.Naming(cfg.UploadNaming))
	if err != nil {
		return nil, err
	}

	dialect, err := query.DialectFor(cfg.DBDriver)
	if err != nil {
		return nil, err
	}

	a := &App{DB: db}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return nil, err
		}
		a.mq = mq
		publisher = mq
	}

	observationRepo := repositories.NewGORMObservationRepository(db)
	builder := query.NewBuilder(dialect)
	observationService := services.NewObservationService(observationRepo, builder, publisher)

	a.Fiber = fiber.New(fiber.Config{
		AppName:      "fishlog",
		BodyLimit:    cfg.MaxUploadMB * 1024 * 1024,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: errorHandler,
	})
	a.Fiber.Use(recover.New())
	a.Fiber.Use(middleware.RequestLog())

	a.Fiber.Get("/health", a.handleHealth)
	a.Fiber.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	a.Fiber.Static("/static/uploads", cfg.UploadDir)

	guard := middleware.OpenGuard()
	if cfg.AuthEnabled {
		gate, err := authz.NewGate()
		if err != nil {
			a.Close()
			return nil, err
		}
		userRepo := repositories.NewGORMUserRepository(db)
		a.AuthService = services.NewAuthService(userRepo, cfg.JWTSecret, cfg.SessionTTL)

		a.Fiber.Use(middleware.Session(a.AuthService))
		guard = middleware.RoleGuard(gate)

		handlers.NewAuthHandler(a.AuthService, cfg.SessionTTL, cfg.LoginRateLimit).RegisterRoutes(a.Fiber)
		handlers.NewUserHandler(a.AuthService).RegisterRoutes(a.Fiber, guard)
	}

	handlers.NewObservationHandler(observationService, photos).RegisterRoutes(a.Fiber, guard)

	logging.Info().Bool("auth", cfg.AuthEnabled).Str("db", cfg.DBDriver).
		Bool("events", publisher != nil).Msg("application wired")
	return a, nil
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	status := fiber.Map{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	}
	code := fiber.StatusOK

	sqlDB, err := a.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		status["status"] = "unhealthy"
		status["database"] = err.Error()
		code = fiber.StatusServiceUnavailable
	} else {
		status["database"] = "connected"
	}

	if a.mq != nil {
		status["rabbitmq"] = "connected"
	} else {
		status["rabbitmq"] = "disabled"
	}
	return c.Status(code).JSON(status)
}

// Close releases the broker connection. The database handle belongs to the caller.
func (a *App) Close() error {
	if a.mq == nil {
		return nil
	}
	if err := a.mq.Close(); err != nil {
		return fmt.Errorf("failed to close RabbitMQ client: %w", err)
	}
	return nil
}

// errorHandler renders errors that escape the handlers, such as unknown routes
// or oversized bodies, in the same JSON shape the handlers use.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logging.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{
		"message": utils.StatusMessage(code),
		"error":   err.Error(),
	})
}
