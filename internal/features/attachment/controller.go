package attachment

import (
	"go-formflow/internal/common/apperr"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AttachmentController struct {
	service AttachmentService
}

func NewAttachmentController(service AttachmentService) *AttachmentController {
	return &AttachmentController{service: service}
}

func actorID(ctx *fiber.Ctx) (primitive.ObjectID, bool) {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func (c *AttachmentController) Attach(ctx *fiber.Ctx) error {
	actor, ok := actorID(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var body struct {
		FileName    string `json:"file_name"`
		ContentType string `json:"content_type"`
		SizeBytes   int64  `json:"size_bytes"`
		StorageKey  string `json:"storage_key"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	a, err := c.service.Attach(ctx.Context(), actor, ctx.Params("id"), body.FileName, body.ContentType, body.SizeBytes, body.StorageKey)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(a)
}

func (c *AttachmentController) List(ctx *fiber.Ctx) error {
	attachments, err := c.service.List(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"data": attachments})
}

func (c *AttachmentController) Remove(ctx *fiber.Ctx) error {
	actor, ok := actorID(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}
	if err := c.service.Remove(ctx.Context(), actor, ctx.Params("attachmentId")); err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}
