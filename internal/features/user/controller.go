package user

import (
	"go-formflow/internal/common/apperr"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{service: service}
}

func (c *UserController) Me(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}
	u, err := c.service.Get(ctx.Context(), claims.UserID)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(u)
}

func (c *UserController) Get(ctx *fiber.Ctx) error {
	u, err := c.service.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(u)
}

func (c *UserController) List(ctx *fiber.Ctx) error {
	users, err := c.service.List(ctx.Context())
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"data": users})
}

func (c *UserController) UpdateRole(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var body struct {
		Role Role `json:"role"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.service.UpdateRole(ctx.Context(), claims.UserID, ctx.Params("id"), body.Role); err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}
