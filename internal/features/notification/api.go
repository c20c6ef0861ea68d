package notification

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type NotificationApi struct {
	controller *NotificationController
	config     *config.Config
}

func NewNotificationApi(controller *NotificationController, config *config.Config) api.Route {
	return &NotificationApi{
		controller: controller,
		config:     config,
	}
}

func (h *NotificationApi) Setup(app *fiber.App) {
	group := app.Group("/api/notifications", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.List)
	group.Get("/stats", h.controller.Stats)
	group.Get("/entity/:entityId", h.controller.ListForEntity)
	group.Put("/:id/read", h.controller.MarkRead)
	group.Post("/mark-all-read", h.controller.MarkAllRead)
	group.Put("/:id/archive", h.controller.Archive)
	group.Delete("/:id", h.controller.Delete)
}
