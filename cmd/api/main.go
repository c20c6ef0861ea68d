package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/database"
	"go-formflow/internal/features/approval"
	"go-formflow/internal/features/attachment"
	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/auth"
	"go-formflow/internal/features/comment"
	"go-formflow/internal/features/notification"
	"go-formflow/internal/features/submission"
	"go-formflow/internal/features/template"
	"go-formflow/internal/features/user"
	"go-formflow/internal/logger"
	"go-formflow/internal/middleware"
	"go-formflow/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for _, route := range routes {
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	utils.SetSecret(cfg.JWTSecret)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(
	lc fx.Lifecycle,
	userRepo user.UserRepository,
	templateRepo template.TemplateRepository,
	submissionRepo submission.SubmissionRepository,
	stepRecordRepo approval.StepRecordRepository,
	commentRepo comment.CommentRepository,
	notificationRepo notification.NotificationRepository,
	attachmentRepo attachment.AttachmentRepository,
	auditRepo audit.AuditRepository,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				repos := map[string]interface {
					EnsureIndexes(ctx context.Context) error
				}{
					"user":         userRepo,
					"template":     templateRepo,
					"submission":   submissionRepo,
					"step_record":  stepRecordRepo,
					"comment":      commentRepo,
					"notification": notificationRepo,
					"attachment":   attachmentRepo,
					"audit":        auditRepo,
				}
				for name, repo := range repos {
					if err := repo.EnsureIndexes(ctx); err != nil {
						log.Printf("Failed to ensure %s indexes: %v", name, err)
					}
				}
			}()
			return nil
		},
	})
}

// userApproverDirectory resolves the fan-out pool for step notifications.
// Admins can decide any step but are not flooded with every pending form,
// so only users holding the approver role are listed.
type userApproverDirectory struct {
	repo user.UserRepository
}

func (d *userApproverDirectory) ListApproverIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	approvers, err := d.repo.ListByRole(ctx, user.RoleApprover)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(approvers))
	for _, a := range approvers {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

// roleAuthorizer adapts the user service's role check to the decision
// authorization predicate. Any approver or admin may decide any pending
// step; per-step assignment is not modeled.
type roleAuthorizer struct {
	users user.UserService
}

func (a *roleAuthorizer) CanApprove(ctx context.Context, userID string, submissionID string, step int) (bool, error) {
	return a.users.IsApprover(ctx, userID)
}

func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			user.NewUserRepository,
			template.NewTemplateRepository,
			submission.NewSubmissionRepository,
			approval.NewStepRecordRepository,
			comment.NewCommentRepository,
			notification.NewNotificationRepository,
			attachment.NewAttachmentRepository,
			audit.NewAuditRepository,

			// Initialize Services
			audit.NewAuditService,
			auth.NewAuthService,
			user.NewUserService,
			template.NewTemplateService,
			submission.NewSubmissionService,
			notification.NewNotificationService,
			notification.NewRetentionSweeper,
			comment.NewCommentService,
			attachment.NewAttachmentService,
			func(
				records approval.StepRecordRepository,
				submissions submission.SubmissionRepository,
				notifications notification.NotificationService,
				auditService audit.AuditService,
				authz approval.Authorizer,
				approvers approval.ApproverDirectory,
				zapLogger *zap.Logger,
				cfg *config.Config,
			) approval.ApprovalService {
				timeout := time.Duration(cfg.AuthCheckTimeoutMS) * time.Millisecond
				return approval.NewApprovalService(records, submissions, notifications, auditService, authz, approvers, zapLogger, timeout)
			},

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(r submission.SubmissionRepository) template.SubmissionCounter { return r },
			func(r submission.SubmissionRepository) comment.SubmissionFinder { return r },
			func(r submission.SubmissionRepository) attachment.SubmissionFinder { return r },
			func(r user.UserRepository) submission.ApproverDirectory {
				return &userApproverDirectory{repo: r}
			},
			func(r user.UserRepository) approval.ApproverDirectory {
				return &userApproverDirectory{repo: r}
			},
			func(s user.UserService) approval.Authorizer {
				return &roleAuthorizer{users: s}
			},

			// Initialize Controller
			auth.NewAuthController,
			user.NewUserController,
			template.NewTemplateController,
			submission.NewSubmissionController,
			approval.NewApprovalController,
			comment.NewCommentController,
			notification.NewNotificationController,
			attachment.NewAttachmentController,
			audit.NewAuditController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(template.NewTemplateApi),
			AsRoute(submission.NewSubmissionApi),
			AsRoute(approval.NewApprovalApi),
			AsRoute(comment.NewCommentApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(attachment.NewAttachmentApi),
			AsRoute(audit.NewAuditApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, sweeper *notification.RetentionSweeper) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return sweeper.Start()
					},
					OnStop: func(ctx context.Context) error {
						sweeper.Stop()
						return nil
					},
				})
			},
			InitializeIndexes,
		),
	)

	app.Run()
}
