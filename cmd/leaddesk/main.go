package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/leaddesk/leaddesk/app/controllers"
	"github.com/leaddesk/leaddesk/app/repository"
	"github.com/leaddesk/leaddesk/internal/pkg/buyerflow"
	"github.com/leaddesk/leaddesk/internal/pkg/cache"
	"github.com/leaddesk/leaddesk/internal/pkg/database"
	"github.com/leaddesk/leaddesk/internal/pkg/env"
	"github.com/leaddesk/leaddesk/internal/pkg/logging"
	"github.com/leaddesk/leaddesk/internal/pkg/router"
)

func main() {
	app, appLog := NewApplication()
	defer func() {
		_ = appLog.Sync()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

// NewApplication wires config, storage, the mutation pipeline and the HTTP
// app. Returned separately so tests can exercise the app without Listen.
func NewApplication() (*fiber.App, *zap.Logger) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	appLog, err := logging.New()
	if err != nil {
		panic(err)
	}

	factory := repository.NewFactory(database.GetDB())
	repos := factory.GetRepositories()

	counters := repos.RateLimit
	if env.GetEnv("RATE_LIMIT_BACKEND", "db") == "redis" {
		counters = repository.NewRedisRateLimitRepository(cache.GetClient())
		appLog.Info("using redis rate limit counters")
	}

	pipeline := buyerflow.NewPipeline(repos.Buyer, repos.History, counters, appLog)
	buyerAPI := controllers.NewBuyerAPI(pipeline, repos.Buyer, repos.History, appLog)

	app := fiber.New(fiber.Config{
		AppName: "LeadDesk",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", monitor.New())

	// ROUTER
	router.InstallRouter(app, router.NewApiRouter(buyerAPI))

	return app, appLog
}
