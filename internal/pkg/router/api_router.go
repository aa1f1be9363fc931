package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/leaddesk/leaddesk/app/controllers"
	"github.com/leaddesk/leaddesk/internal/pkg/cache"
	"github.com/leaddesk/leaddesk/internal/pkg/env"
	"github.com/leaddesk/leaddesk/internal/pkg/middleware"
)

// ApiRouter installs the buyer lead API. The fiber limiter on the group is
// transport-level abuse protection; the per-user action quotas live in the
// mutation pipeline.
type ApiRouter struct {
	buyerAPI *controllers.BuyerAPI
}

// NewApiRouter creates the API router around its controller
func NewApiRouter(buyerAPI *controllers.BuyerAPI) *ApiRouter {
	return &ApiRouter{buyerAPI: buyerAPI}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Storage:    limiterStorage(),
	}))

	v1 := api.Group("/v1")
	v1.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
	})

	buyers := v1.Group("/buyers", middleware.BearerAuthMiddleware())
	buyers.Post("/", h.buyerAPI.HandleCreateBuyer)
	buyers.Get("/", h.buyerAPI.HandleListBuyers)
	buyers.Post("/import", h.buyerAPI.HandleImportBuyers)
	buyers.Get("/export", h.buyerAPI.HandleExportBuyers)
	buyers.Get("/:id", h.buyerAPI.HandleGetBuyer)
	buyers.Put("/:id", h.buyerAPI.HandleUpdateBuyer)
}

// limiterStorage backs the transport limiter with Redis so counters survive
// restarts; configuration is derived from the existing cache client.
func limiterStorage() *redis.Storage {
	cacheClient := cache.GetClient()
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1, // separate database from the domain counters
		Reset:    false,
	})
}
