package controllers

import (
	"bytes"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/leaddesk/leaddesk/internal/pkg/csvutil"
	"github.com/leaddesk/leaddesk/internal/pkg/usercontext"
)

// HandleImportBuyers bulk-imports 1-200 rows, all-or-nothing. The body is
// either JSON `{"rows": [...]}` or a raw CSV document in the contract
// column order.
func (a *BuyerAPI) HandleImportBuyers(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	rows, err := importRows(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	result, err := a.pipeline.Import(userCtx.UserID, rows)
	if err != nil {
		return respondPipelineError(c, a.log, err)
	}

	body := fiber.Map{"inserted": result.Inserted}
	if result.AuditDegraded {
		body["warning"] = WarnHistoryInsertFailed
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

// HandleExportBuyers streams the filtered leads as CSV, newest-updated-first,
// capped at the export row limit.
func (a *BuyerAPI) HandleExportBuyers(c *fiber.Ctx) error {
	filter := filterFromQuery(c)

	buyers, err := a.buyers.List(filter, 0, csvutil.ExportMaxRows)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to export buyers"})
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="buyers.csv"`)
	return c.SendString(csvutil.EncodeBuyers(buyers))
}

func importRows(c *fiber.Ctx) ([]map[string]interface{}, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), "text/csv") {
		return csvutil.DecodeRows(bytes.NewReader(c.Body()))
	}

	var body struct {
		Rows []map[string]interface{} `json:"rows"`
	}
	if err := c.BodyParser(&body); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	return body.Rows, nil
}
