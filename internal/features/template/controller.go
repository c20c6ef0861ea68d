package template

import (
	"go-formflow/internal/common/apperr"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TemplateController struct {
	service TemplateService
}

func NewTemplateController(service TemplateService) *TemplateController {
	return &TemplateController{service: service}
}

func (c *TemplateController) Create(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var tpl Template
	if err := ctx.BodyParser(&tpl); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := c.service.Create(ctx.Context(), claims.UserID, tpl)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

func (c *TemplateController) Get(ctx *fiber.Ctx) error {
	tpl, err := c.service.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(tpl)
}

func (c *TemplateController) List(ctx *fiber.Ctx) error {
	activeOnly := ctx.Query("active", "true") == "true"
	summaries, err := c.service.List(ctx.Context(), activeOnly)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"data": summaries})
}

func (c *TemplateController) Update(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var tpl Template
	if err := ctx.BodyParser(&tpl); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updated, err := c.service.Update(ctx.Context(), claims.UserID, ctx.Params("id"), tpl)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(updated)
}

func (c *TemplateController) SetActive(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var body struct {
		Active bool `json:"active"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.service.SetActive(ctx.Context(), claims.UserID, ctx.Params("id"), body.Active); err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}
