package submission

import (
	"context"
	"fmt"
	"time"

	"go-formflow/internal/common/apperr"
	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/notification"
	"go-formflow/internal/features/template"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ApproverDirectory resolves the approver pool for fan-out notifications.
// Satisfied by the user repository; wired in main.
type ApproverDirectory interface {
	ListApproverIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

type SubmissionService interface {
	// Create validates step-1 required fields against the template and
	// creates the submission in SUBMITTED at step 1. The submitter's
	// form_status notification is returned alongside the submission so the
	// originating request can display it immediately.
	Create(ctx context.Context, submitterID primitive.ObjectID, templateID string, values map[string]any) (*Submission, *notification.Notification, error)

	// AdvanceStep moves a multi-step intake forward. Only the submitter may
	// advance, only while SUBMITTED. Reaching the final step hands the
	// submission to review (or straight to APPROVED for templates that
	// need no approval).
	AdvanceStep(ctx context.Context, actorID primitive.ObjectID, id string, values map[string]any) (*Submission, error)

	// Cancel is the submitter's terminal exit from SUBMITTED/UNDER_REVIEW.
	Cancel(ctx context.Context, actorID primitive.ObjectID, id string) (*Submission, error)

	Get(ctx context.Context, id string) (*Submission, error)
	ListBySubmitter(ctx context.Context, submitterID primitive.ObjectID) ([]Submission, error)
	ListPending(ctx context.Context) ([]Submission, error)
	ListFiltered(ctx context.Context, filter Filter) ([]Submission, error)
	Stats(ctx context.Context) (*StatusCounts, error)
}

type SubmissionServiceImpl struct {
	Repo          SubmissionRepository
	TemplateRepo  template.TemplateRepository
	Notifications notification.NotificationService
	Audit         audit.AuditService
	Approvers     ApproverDirectory
	Logger        *zap.Logger
}

func NewSubmissionService(
	repo SubmissionRepository,
	templateRepo template.TemplateRepository,
	notifications notification.NotificationService,
	auditService audit.AuditService,
	approvers ApproverDirectory,
	logger *zap.Logger,
) SubmissionService {
	return &SubmissionServiceImpl{
		Repo:          repo,
		TemplateRepo:  templateRepo,
		Notifications: notifications,
		Audit:         auditService,
		Approvers:     approvers,
		Logger:        logger,
	}
}

func (s *SubmissionServiceImpl) Create(ctx context.Context, submitterID primitive.ObjectID, templateID string, values map[string]any) (*Submission, *notification.Notification, error) {
	tpl, err := s.TemplateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}
	if tpl == nil {
		return nil, nil, apperr.NotFound("template", templateID)
	}
	if !tpl.Active {
		return nil, nil, apperr.InvalidState("template is not active")
	}

	if err := template.ValidateStep(tpl, 1, values); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	sub := &Submission{
		ID:               primitive.NewObjectID(),
		TemplateID:       tpl.ID,
		TemplateName:     tpl.Name,
		SubmitterID:      submitterID,
		FieldValues:      values,
		Status:           StatusSubmitted,
		CurrentStep:      1,
		TotalSteps:       tpl.TotalSteps,
		RequiresApproval: tpl.RequiresApproval,
		SubmittedAt:      now,
		LastTransitionAt: now,
		LastTransitionBy: submitterID.Hex(),
	}

	if err := s.Repo.Create(ctx, sub); err != nil {
		return nil, nil, err
	}

	var created *notification.Notification
	s.withRetry(func() error {
		n, err := s.Notifications.NotifyFormStatus(ctx, submitterID, tpl.Name, sub.ID.Hex(), "submitted", "It is now awaiting review.")
		if err == nil {
			created = n
		}
		return err
	})

	if tpl.RequiresApproval {
		s.notifyApproverPool(ctx, sub)
	}

	s.withRetry(func() error {
		return s.Audit.Record(ctx, audit.ActionSubmit, audit.EntityForm, sub.ID.Hex(), submitterID.Hex(),
			fmt.Sprintf("Form submitted: %s (ID: %s)", tpl.Name, sub.ID.Hex()))
	})

	return sub, created, nil
}

func (s *SubmissionServiceImpl) AdvanceStep(ctx context.Context, actorID primitive.ObjectID, id string, values map[string]any) (*Submission, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sub.SubmitterID != actorID {
		return nil, apperr.Forbidden("only the submitter can advance intake steps")
	}
	if sub.Status != StatusSubmitted {
		return nil, apperr.InvalidState("submission is not in intake")
	}

	targetStep := sub.CurrentStep + 1
	if targetStep > sub.TotalSteps {
		return nil, apperr.InvalidState("submission is already at its final step")
	}

	tpl, err := s.TemplateRepo.GetByID(ctx, sub.TemplateID.Hex())
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, apperr.NotFound("template", sub.TemplateID.Hex())
	}

	merged := make(map[string]any, len(sub.FieldValues)+len(values))
	for k, v := range sub.FieldValues {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}

	if err := template.ValidateStep(tpl, targetStep, merged); err != nil {
		return nil, err
	}

	set := bson.M{
		"field_values":       merged,
		"current_step":       targetStep,
		"last_transition_by": actorID.Hex(),
	}

	nextStatus := StatusSubmitted
	if targetStep == sub.TotalSteps {
		if sub.RequiresApproval {
			nextStatus = StatusUnderReview
		} else {
			nextStatus = StatusApproved
		}
		set["status"] = nextStatus
	}

	applied, err := s.Repo.Transition(ctx, sub.ID, sub.Status, sub.CurrentStep, set)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperr.InvalidState("submission changed concurrently")
	}

	if nextStatus == StatusApproved {
		s.withRetry(func() error {
			_, err := s.Notifications.NotifyApproval(ctx, sub.SubmitterID, sub.TemplateName, sub.ID.Hex(), "the system")
			return err
		})
		s.withRetry(func() error {
			return s.Audit.Record(ctx, audit.ActionApprove, audit.EntityForm, sub.ID.Hex(), actorID.Hex(),
				fmt.Sprintf("Form auto-approved on intake completion: %s", sub.TemplateName))
		})
	} else {
		s.withRetry(func() error {
			return s.Audit.Record(ctx, audit.ActionAdvance, audit.EntityForm, sub.ID.Hex(), actorID.Hex(),
				fmt.Sprintf("Form advanced to step %d of %d", targetStep, sub.TotalSteps))
		})
	}

	return s.Get(ctx, id)
}

func (s *SubmissionServiceImpl) Cancel(ctx context.Context, actorID primitive.ObjectID, id string) (*Submission, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sub.SubmitterID != actorID {
		return nil, apperr.Forbidden("only the submitter can cancel a submission")
	}
	if sub.Status != StatusSubmitted && sub.Status != StatusUnderReview {
		return nil, apperr.InvalidState("submission can no longer be cancelled")
	}

	applied, err := s.Repo.Transition(ctx, sub.ID, sub.Status, sub.CurrentStep, bson.M{
		"status":             StatusCancelled,
		"last_transition_by": actorID.Hex(),
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperr.InvalidState("submission changed concurrently")
	}

	s.withRetry(func() error {
		_, err := s.Notifications.NotifyFormStatus(ctx, sub.SubmitterID, sub.TemplateName, sub.ID.Hex(), "cancelled", "")
		return err
	})
	s.withRetry(func() error {
		return s.Audit.Record(ctx, audit.ActionCancel, audit.EntityForm, sub.ID.Hex(), actorID.Hex(),
			fmt.Sprintf("Form cancelled: %s (ID: %s)", sub.TemplateName, sub.ID.Hex()))
	})

	return s.Get(ctx, id)
}

func (s *SubmissionServiceImpl) Get(ctx context.Context, id string) (*Submission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("submission", id)
	}
	sub, err := s.Repo.Get(ctx, oid)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperr.NotFound("submission", id)
	}
	return sub, nil
}

func (s *SubmissionServiceImpl) ListBySubmitter(ctx context.Context, submitterID primitive.ObjectID) ([]Submission, error) {
	return s.Repo.ListBySubmitter(ctx, submitterID)
}

func (s *SubmissionServiceImpl) ListPending(ctx context.Context) ([]Submission, error) {
	submitted, err := s.Repo.ListByStatus(ctx, StatusSubmitted)
	if err != nil {
		return nil, err
	}
	underReview, err := s.Repo.ListByStatus(ctx, StatusUnderReview)
	if err != nil {
		return nil, err
	}
	return append(submitted, underReview...), nil
}

func (s *SubmissionServiceImpl) ListFiltered(ctx context.Context, filter Filter) ([]Submission, error) {
	return s.Repo.List(ctx, filter)
}

func (s *SubmissionServiceImpl) Stats(ctx context.Context) (*StatusCounts, error) {
	total, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	submitted, err := s.Repo.CountByStatus(ctx, StatusSubmitted)
	if err != nil {
		return nil, err
	}
	underReview, err := s.Repo.CountByStatus(ctx, StatusUnderReview)
	if err != nil {
		return nil, err
	}
	approved, err := s.Repo.CountByStatus(ctx, StatusApproved)
	if err != nil {
		return nil, err
	}
	rejected, err := s.Repo.CountByStatus(ctx, StatusRejected)
	if err != nil {
		return nil, err
	}
	cancelled, err := s.Repo.CountByStatus(ctx, StatusCancelled)
	if err != nil {
		return nil, err
	}

	counts := &StatusCounts{
		Total:     total,
		Pending:   submitted + underReview,
		Approved:  approved,
		Rejected:  rejected,
		Cancelled: cancelled,
	}
	if total > 0 {
		counts.ApprovalRate = float64(approved) / float64(total) * 100
	}
	return counts, nil
}

func (s *SubmissionServiceImpl) notifyApproverPool(ctx context.Context, sub *Submission) {
	approverIDs, err := s.Approvers.ListApproverIDs(ctx)
	if err != nil {
		s.Logger.Warn("could not resolve approver pool", zap.Error(err))
		return
	}
	for _, approverID := range approverIDs {
		id := approverID
		s.withRetry(func() error {
			_, err := s.Notifications.Create(ctx, id, notification.TypeGeneric,
				"New Form Submission",
				fmt.Sprintf("A new %s form has been submitted.", sub.TemplateName),
				sub.ID.Hex(), "/approvals/"+sub.ID.Hex())
			return err
		})
	}
}

// withRetry covers side-effect emission (notifications, audit records).
// The primary state transition is never re-run here.
func (s *SubmissionServiceImpl) withRetry(fn func() error) {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if err = fn(); err == nil {
			return
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	s.Logger.Error("side effect failed after retries", zap.Error(err))
}
