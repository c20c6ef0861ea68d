package submission

import (
	"go-formflow/internal/common/apperr"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubmissionController struct {
	service SubmissionService
}

func NewSubmissionController(service SubmissionService) *SubmissionController {
	return &SubmissionController{service: service}
}

func actorID(ctx *fiber.Ctx) (primitive.ObjectID, error) {
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

func (c *SubmissionController) Create(ctx *fiber.Ctx) error {
	actor, err := actorID(ctx)
	if err != nil {
		return err
	}

	var body struct {
		TemplateID  string         `json:"template_id"`
		FieldValues map[string]any `json:"field_values"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sub, notif, err := c.service.Create(ctx.Context(), actor, body.TemplateID, body.FieldValues)
	if err != nil {
		return apperr.Respond(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"submission":   sub,
		"notification": notif,
	})
}

func (c *SubmissionController) AdvanceStep(ctx *fiber.Ctx) error {
	actor, err := actorID(ctx)
	if err != nil {
		return err
	}

	var body struct {
		FieldValues map[string]any `json:"field_values"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sub, err := c.service.AdvanceStep(ctx.Context(), actor, ctx.Params("id"), body.FieldValues)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(sub)
}

func (c *SubmissionController) Cancel(ctx *fiber.Ctx) error {
	actor, err := actorID(ctx)
	if err != nil {
		return err
	}

	sub, err := c.service.Cancel(ctx.Context(), actor, ctx.Params("id"))
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(sub)
}

func (c *SubmissionController) Get(ctx *fiber.Ctx) error {
	sub, err := c.service.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(sub)
}

func (c *SubmissionController) ListMine(ctx *fiber.Ctx) error {
	actor, err := actorID(ctx)
	if err != nil {
		return err
	}

	subs, err := c.service.ListBySubmitter(ctx.Context(), actor)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"data": subs})
}

func (c *SubmissionController) ListPending(ctx *fiber.Ctx) error {
	subs, err := c.service.ListPending(ctx.Context())
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"data": subs})
}

func (c *SubmissionController) List(ctx *fiber.Ctx) error {
	filter := Filter{
		Status:       Status(ctx.Query("status")),
		TemplateName: ctx.Query("template"),
	}
	if submitter := ctx.Query("submitter"); submitter != "" {
		if oid, err := primitive.ObjectIDFromHex(submitter); err == nil {
			filter.SubmitterID = oid
		}
	}

	subs, err := c.service.ListFiltered(ctx.Context(), filter)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{"data": subs})
}

func (c *SubmissionController) Stats(ctx *fiber.Ctx) error {
	stats, err := c.service.Stats(ctx.Context())
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(stats)
}
