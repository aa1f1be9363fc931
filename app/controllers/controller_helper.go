package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/leaddesk/leaddesk/internal/pkg/buyerflow"
)

// WarnHistoryInsertFailed flags a committed mutation whose audit entry
// could not be written.
const WarnHistoryInsertFailed = "history_insert_failed"

// respondPipelineError maps a pipeline failure to its HTTP outcome.
// Store failures are reported generically; the detail is only logged.
func respondPipelineError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var validationErr *buyerflow.ValidationError
	var rowErr *buyerflow.RowValidationError
	var storeErr *buyerflow.StoreError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": validationErr.Error(),
			"fields":  validationErr.Fields,
		})
	case errors.As(err, &rowErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": rowErr.Rows,
		})
	case errors.Is(err, buyerflow.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Buyer not found"})
	case errors.Is(err, buyerflow.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "You do not own this record"})
	case errors.Is(err, buyerflow.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "Record changed, please refresh"})
	case errors.Is(err, buyerflow.ErrRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate_limited", "message": "Rate limit exceeded"})
	case errors.As(err, &storeErr):
		log.Error("store failure", zap.String("op", storeErr.Op), zap.Error(storeErr.Err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Request failed"})
	default:
		log.Error("unexpected pipeline failure", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Request failed"})
	}
}
