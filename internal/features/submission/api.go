package submission

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SubmissionApi struct {
	controller *SubmissionController
	config     *config.Config
}

func NewSubmissionApi(controller *SubmissionController, config *config.Config) api.Route {
	return &SubmissionApi{
		controller: controller,
		config:     config,
	}
}

func (h *SubmissionApi) Setup(app *fiber.App) {
	group := app.Group("/api/submissions", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/", h.controller.Create)
	group.Get("/mine", h.controller.ListMine)
	group.Get("/pending", middleware.RequireRole("approver", "admin"), h.controller.ListPending)
	group.Get("/stats", middleware.RequireRole("approver", "admin"), h.controller.Stats)
	group.Get("/", middleware.RequireRole("approver", "admin"), h.controller.List)
	group.Get("/:id", h.controller.Get)
	group.Put("/:id/step", h.controller.AdvanceStep)
	group.Post("/:id/cancel", h.controller.Cancel)
}
