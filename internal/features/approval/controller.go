package approval

import (
	"go-formflow/internal/common/apperr"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApprovalController struct {
	service ApprovalService
}

func NewApprovalController(service ApprovalService) *ApprovalController {
	return &ApprovalController{service: service}
}

func approverID(ctx *fiber.Ctx) (primitive.ObjectID, error) {
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

func (c *ApprovalController) decide(ctx *fiber.Ctx, decision Decision) error {
	actor, err := approverID(ctx)
	if err != nil {
		return err
	}

	var body struct {
		Comments string `json:"comments"`
	}
	if err := ctx.BodyParser(&body); err != nil && len(ctx.Body()) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sub, notif, err := c.service.Decide(ctx.Context(), actor, ctx.Params("id"), decision, body.Comments)
	if err != nil {
		return apperr.Respond(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"submission":   sub,
		"notification": notif,
	})
}

func (c *ApprovalController) Approve(ctx *fiber.Ctx) error {
	return c.decide(ctx, DecisionApprove)
}

func (c *ApprovalController) Reject(ctx *fiber.Ctx) error {
	return c.decide(ctx, DecisionReject)
}

func (c *ApprovalController) bulkDecide(ctx *fiber.Ctx, decision Decision) error {
	actor, err := approverID(ctx)
	if err != nil {
		return err
	}

	var body struct {
		SubmissionIDs []string `json:"submission_ids"`
		Comments      string   `json:"comments"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := c.service.BulkDecide(ctx.Context(), actor, body.SubmissionIDs, decision, body.Comments)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(result)
}

func (c *ApprovalController) BulkApprove(ctx *fiber.Ctx) error {
	return c.bulkDecide(ctx, DecisionApprove)
}

func (c *ApprovalController) BulkReject(ctx *fiber.Ctx) error {
	return c.bulkDecide(ctx, DecisionReject)
}

func (c *ApprovalController) History(ctx *fiber.Ctx) error {
	records, err := c.service.History(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"data": records})
}
