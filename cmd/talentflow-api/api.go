// Package main provides the TalentFlow automation API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/talentflow/pkg/eventbus"
	"github.com/dukex/talentflow/pkg/modelregistry"
	"github.com/dukex/talentflow/pkg/persistence"
	"github.com/dukex/talentflow/pkg/services"
	"github.com/dukex/talentflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	activities  services.ActivityReader
	catalog     modelregistry.Catalog
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

// NewAPI wires the automation service. activities may be nil to read timelines from persistence.
func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	activities services.ActivityReader,
	catalog modelregistry.Catalog,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		activities:  activities,
		catalog:     catalog,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	var opts []services.Option
	if a.activities != nil {
		opts = append(opts, services.WithActivities(a.activities))
	}

	automationService := services.NewAutomation(a.persistence, a.catalog, a.logger, opts...)
	handlers := web.NewAPIHandlers(automationService, a.validate, a.eventBus)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("TalentFlow Automations API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
