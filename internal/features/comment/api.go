package comment

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CommentApi struct {
	controller *CommentController
	config     *config.Config
}

func NewCommentApi(controller *CommentController, config *config.Config) api.Route {
	return &CommentApi{
		controller: controller,
		config:     config,
	}
}

func (h *CommentApi) Setup(app *fiber.App) {
	group := app.Group("/api/submissions/:id/comments", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/", h.controller.Add)
	group.Get("/", h.controller.List)
}
