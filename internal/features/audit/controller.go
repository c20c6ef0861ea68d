package audit

import (
	"strconv"

	"go-formflow/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{service: service}
}

func (c *AuditController) List(ctx *fiber.Ctx) error {
	page, _ := strconv.ParseInt(ctx.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(ctx.Query("limit", "20"), 10, 64)

	filters := map[string]interface{}{}
	if action := ctx.Query("action"); action != "" {
		filters["action"] = action
	}
	if entityType := ctx.Query("entity_type"); entityType != "" {
		filters["entity_type"] = entityType
	}
	if entityID := ctx.Query("entity_id"); entityID != "" {
		filters["entity_id"] = entityID
	}
	if actorID := ctx.Query("actor_id"); actorID != "" {
		filters["actor_id"] = actorID
	}

	entries, err := c.service.List(ctx.Context(), filters, page, limit)
	if err != nil {
		return apperr.Respond(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"data":  entries,
		"page":  page,
		"limit": limit,
	})
}
