package attachment

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AttachmentApi struct {
	controller *AttachmentController
	config     *config.Config
}

func NewAttachmentApi(controller *AttachmentController, config *config.Config) api.Route {
	return &AttachmentApi{
		controller: controller,
		config:     config,
	}
}

func (h *AttachmentApi) Setup(app *fiber.App) {
	group := app.Group("/api/submissions/:id/attachments", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/", h.controller.Attach)
	group.Get("/", h.controller.List)
	group.Delete("/:attachmentId", h.controller.Remove)
}
