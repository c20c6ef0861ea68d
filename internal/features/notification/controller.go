package notification

import (
	"go-formflow/internal/common/apperr"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationController struct {
	service NotificationService
}

func NewNotificationController(service NotificationService) *NotificationController {
	return &NotificationController{service: service}
}

func recipientID(ctx *fiber.Ctx) (primitive.ObjectID, error) {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}
	oid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID")
	}
	return oid, nil
}

func (c *NotificationController) List(ctx *fiber.Ctx) error {
	recipient, err := recipientID(ctx)
	if err != nil {
		return err
	}

	filter := ListFilter(ctx.Query("filter", string(FilterAll)))
	notifications, err := c.service.List(ctx.Context(), recipient, filter)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"data": notifications})
}

func (c *NotificationController) ListForEntity(ctx *fiber.Ctx) error {
	recipient, err := recipientID(ctx)
	if err != nil {
		return err
	}

	notifications, err := c.service.ListForEntity(ctx.Context(), recipient, ctx.Params("entityId"))
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"data": notifications})
}

func (c *NotificationController) Stats(ctx *fiber.Ctx) error {
	recipient, err := recipientID(ctx)
	if err != nil {
		return err
	}

	stats, err := c.service.GetStats(ctx.Context(), recipient)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(stats)
}

func (c *NotificationController) MarkRead(ctx *fiber.Ctx) error {
	recipient, err := recipientID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.MarkRead(ctx.Context(), ctx.Params("id"), recipient); err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}

func (c *NotificationController) MarkAllRead(ctx *fiber.Ctx) error {
	recipient, err := recipientID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.MarkAllRead(ctx.Context(), recipient); err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}

func (c *NotificationController) Archive(ctx *fiber.Ctx) error {
	recipient, err := recipientID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Archive(ctx.Context(), ctx.Params("id"), recipient); err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}

func (c *NotificationController) Delete(ctx *fiber.Ctx) error {
	recipient, err := recipientID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.Context(), ctx.Params("id"), recipient); err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}
