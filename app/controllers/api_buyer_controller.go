package controllers

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/leaddesk/leaddesk/app/repository"
	"github.com/leaddesk/leaddesk/internal/pkg/buyerflow"
	"github.com/leaddesk/leaddesk/internal/pkg/usercontext"
)

const listPageSize = 10

// BuyerAPI serves the buyer lead endpoints. All mutations go through the
// pipeline; reads hit the repositories directly.
type BuyerAPI struct {
	pipeline *buyerflow.Pipeline
	buyers   repository.BuyerRepository
	history  repository.BuyerHistoryRepository
	log      *zap.Logger
}

// NewBuyerAPI creates the buyer API controller
func NewBuyerAPI(pipeline *buyerflow.Pipeline, buyers repository.BuyerRepository, history repository.BuyerHistoryRepository, log *zap.Logger) *BuyerAPI {
	return &BuyerAPI{pipeline: pipeline, buyers: buyers, history: history, log: log}
}

// HandleCreateBuyer creates one lead owned by the authenticated user.
func (a *BuyerAPI) HandleCreateBuyer(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	raw, err := parseJSONBody(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}

	result, err := a.pipeline.Create(userCtx.UserID, raw)
	if err != nil {
		return respondPipelineError(c, a.log, err)
	}
	return respondBuyer(c, fiber.StatusCreated, result)
}

// HandleUpdateBuyer applies changed fields to a lead. The body must carry
// the updatedAt token the caller last observed.
func (a *BuyerAPI) HandleUpdateBuyer(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}
	id := c.Params("id")

	raw, err := parseJSONBody(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}

	token, ok := raw["updatedAt"].(string)
	if !ok || token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "updatedAt version token is required"})
	}
	delete(raw, "updatedAt")
	delete(raw, "id")

	result, err := a.pipeline.Update(userCtx.UserID, id, token, raw)
	if err != nil {
		return respondPipelineError(c, a.log, err)
	}
	return respondBuyer(c, fiber.StatusOK, result)
}

// HandleGetBuyer returns one lead plus its most recent history entries.
func (a *BuyerAPI) HandleGetBuyer(c *fiber.Ctx) error {
	id := c.Params("id")

	buyer, err := a.buyers.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Buyer not found"})
		}
		a.log.Error("buyer lookup failed", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load buyer"})
	}

	entries, err := a.history.GetByBuyerID(id, 5)
	if err != nil {
		a.log.Error("history lookup failed", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load history"})
	}

	historyOut := make([]fiber.Map, 0, len(entries))
	for _, h := range entries {
		historyOut = append(historyOut, fiber.Map{
			"changedAt": h.ChangedAt,
			"changedBy": h.ChangedBy,
			"diff":      h.Diff,
		})
	}

	return c.JSON(fiber.Map{
		"buyer":   buyer,
		"history": historyOut,
	})
}

// HandleListBuyers returns a filtered page of leads, newest-updated-first.
func (a *BuyerAPI) HandleListBuyers(c *fiber.Ctx) error {
	filter := filterFromQuery(c)
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	total, err := a.buyers.Count(filter)
	if err != nil {
		a.log.Error("buyer count failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to list buyers"})
	}

	items, err := a.buyers.List(filter, (page-1)*listPageSize, listPageSize)
	if err != nil {
		a.log.Error("buyer list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to list buyers"})
	}

	return c.JSON(fiber.Map{
		"items":      items,
		"totalPages": int(math.Ceil(float64(total) / float64(listPageSize))),
	})
}

func filterFromQuery(c *fiber.Ctx) repository.BuyerFilter {
	return repository.BuyerFilter{
		Search:       c.Query("search"),
		City:         c.Query("city"),
		PropertyType: c.Query("propertyType"),
		Status:       c.Query("status"),
	}
}

func parseJSONBody(c *fiber.Ctx) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return raw, nil
}

// respondBuyer renders the mutated record; a degraded audit trail is
// surfaced as a warning field on the otherwise-flat record body.
func respondBuyer(c *fiber.Ctx, status int, result *buyerflow.Result) error {
	if !result.AuditDegraded {
		return c.Status(status).JSON(result.Buyer)
	}
	encoded, err := json.Marshal(result.Buyer)
	if err != nil {
		return c.Status(status).JSON(result.Buyer)
	}
	var body fiber.Map
	if err := json.Unmarshal(encoded, &body); err != nil {
		return c.Status(status).JSON(result.Buyer)
	}
	body["warning"] = WarnHistoryInsertFailed
	return c.Status(status).JSON(body)
}
