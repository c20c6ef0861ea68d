package approval

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ApprovalApi struct {
	controller *ApprovalController
	config     *config.Config
}

func NewApprovalApi(controller *ApprovalController, config *config.Config) api.Route {
	return &ApprovalApi{
		controller: controller,
		config:     config,
	}
}

func (h *ApprovalApi) Setup(app *fiber.App) {
	group := app.Group("/api/approvals", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/:id/approve", h.controller.Approve)
	group.Post("/:id/reject", h.controller.Reject)
	group.Post("/bulk-approve", h.controller.BulkApprove)
	group.Post("/bulk-reject", h.controller.BulkReject)
	group.Get("/:id/history", h.controller.History)
}
