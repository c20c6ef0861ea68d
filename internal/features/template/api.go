package template

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TemplateApi struct {
	controller *TemplateController
	config     *config.Config
}

func NewTemplateApi(controller *TemplateController, config *config.Config) api.Route {
	return &TemplateApi{
		controller: controller,
		config:     config,
	}
}

func (h *TemplateApi) Setup(app *fiber.App) {
	group := app.Group("/api/templates", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.List)
	group.Get("/:id", h.controller.Get)

	// Template authoring is an admin concern
	group.Post("/", middleware.RequireRole("admin"), h.controller.Create)
	group.Put("/:id", middleware.RequireRole("admin"), h.controller.Update)
	group.Patch("/:id/active", middleware.RequireRole("admin"), h.controller.SetActive)
}
