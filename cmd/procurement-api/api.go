// Package main provides the procurement wizard API server implementation.
package main

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/backend"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/cache"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/draft"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/eventbus"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/reference"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/services"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/session"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/web"
)

const backendRetryAttempts = 3

type API struct {
	logger     *slog.Logger
	backendURL string
	store      session.Store
	cache      cache.Cache
	eventBus   eventbus.EventBus
	tracer     trace.Tracer
	validate   *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	backendURL string,
	store session.Store,
	cacheStore cache.Cache,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:     logger,
		backendURL: backendURL,
		store:      store,
		cache:      cacheStore,
		eventBus:   eventBus,
		tracer:     tracer,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	clientOpts := []backend.Option{
		backend.WithRetry(backend.RetryConfig{Attempts: backendRetryAttempts, Delay: time.Second}),
	}
	if a.tracer != nil {
		clientOpts = append(clientOpts, backend.WithTracer(a.tracer))
	}

	client := backend.NewClient(a.backendURL, a.logger, clientOpts...)
	drafts := draft.NewService(client, a.eventBus, a.logger)
	provider := reference.NewProvider(client, a.cache, a.logger)
	wizardService := services.NewWizard(a.store, drafts, provider, a.eventBus, a.logger)

	handlers := web.NewAPIHandlers(wizardService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Procurement Wizard API")
	})

	handlers.RegisterRoutes(app.Group("/wizard"))

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
