package user

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
}

func NewUserApi(controller *UserController, config *config.Config) api.Route {
	return &UserApi{
		controller: controller,
		config:     config,
	}
}

func (h *UserApi) Setup(app *fiber.App) {
	group := app.Group("/api/users", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/me", h.controller.Me)
	group.Get("/", middleware.RequireRole("admin"), h.controller.List)
	group.Get("/:id", middleware.RequireRole("admin"), h.controller.Get)
	group.Put("/:id/role", middleware.RequireRole("admin"), h.controller.UpdateRole)
}
