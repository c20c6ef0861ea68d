package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-formflow/internal/common/apperr"
	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/notification"
	"go-formflow/internal/features/submission"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Authorizer answers whether a user may decide the given step. A negative
// answer means Forbidden; an error (including a deadline) means the check
// itself was unavailable, which callers must keep distinct from a denial.
type Authorizer interface {
	CanApprove(ctx context.Context, userID string, submissionID string, step int) (bool, error)
}

// ApproverDirectory resolves the approver pool for next-step fan-out.
type ApproverDirectory interface {
	ListApproverIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

type ApprovalService interface {
	// Decide applies one approver decision. Decisions on the same
	// submission are serialized by a compare-and-set on (status, step);
	// the loser of a race gets InvalidState. The submitter's notification
	// entry is returned for immediate display.
	Decide(ctx context.Context, approverID primitive.ObjectID, submissionID string, decision Decision, comments string) (*submission.Submission, *notification.Notification, error)

	BulkDecide(ctx context.Context, approverID primitive.ObjectID, submissionIDs []string, decision Decision, comments string) (*BulkResult, error)

	History(ctx context.Context, submissionID string) ([]StepRecord, error)

	CanApprove(ctx context.Context, userID string, submissionID string, step int) (bool, error)
}

type ApprovalServiceImpl struct {
	Records        StepRecordRepository
	Submissions    submission.SubmissionRepository
	Notifications  notification.NotificationService
	Audit          audit.AuditService
	Authz          Authorizer
	Approvers      ApproverDirectory
	Logger         *zap.Logger
	AuthzTimeout   time.Duration
	sideEffectTrys int
}

func NewApprovalService(
	records StepRecordRepository,
	submissions submission.SubmissionRepository,
	notifications notification.NotificationService,
	auditService audit.AuditService,
	authz Authorizer,
	approvers ApproverDirectory,
	logger *zap.Logger,
	authzTimeout time.Duration,
) ApprovalService {
	return &ApprovalServiceImpl{
		Records:        records,
		Submissions:    submissions,
		Notifications:  notifications,
		Audit:          auditService,
		Authz:          authz,
		Approvers:      approvers,
		Logger:         logger,
		AuthzTimeout:   authzTimeout,
		sideEffectTrys: 3,
	}
}

func (s *ApprovalServiceImpl) Decide(ctx context.Context, approverID primitive.ObjectID, submissionID string, decision Decision, comments string) (*submission.Submission, *notification.Notification, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, nil, apperr.ValidationMsg("decision", "decision must be APPROVE or REJECT")
	}

	oid, err := primitive.ObjectIDFromHex(submissionID)
	if err != nil {
		return nil, nil, apperr.NotFound("submission", submissionID)
	}

	sub, err := s.Submissions.Get(ctx, oid)
	if err != nil {
		return nil, nil, err
	}
	if sub == nil {
		return nil, nil, apperr.NotFound("submission", submissionID)
	}

	if sub.Status != submission.StatusSubmitted && sub.Status != submission.StatusUnderReview {
		return nil, nil, apperr.InvalidState("submission is not awaiting a decision")
	}

	if err := s.authorize(ctx, approverID.Hex(), submissionID, sub.CurrentStep); err != nil {
		return nil, nil, err
	}

	// Compute the transition from the state read above; the CAS below
	// rejects it if anyone else moved the submission in the meantime.
	set := bson.M{"last_transition_by": approverID.Hex()}
	finalStep := sub.CurrentStep
	var nextStatus submission.Status

	switch {
	case decision == DecisionReject:
		nextStatus = submission.StatusRejected
	case sub.CurrentStep < sub.TotalSteps:
		nextStatus = submission.StatusUnderReview
		finalStep = sub.CurrentStep + 1
		set["current_step"] = finalStep
	default:
		nextStatus = submission.StatusApproved
	}
	set["status"] = nextStatus

	applied, err := s.Submissions.Transition(ctx, sub.ID, sub.Status, sub.CurrentStep, set)
	if err != nil {
		return nil, nil, err
	}
	if !applied {
		return nil, nil, apperr.InvalidState("submission was decided concurrently")
	}

	record := StepRecord{
		ID:           uuid.NewString(),
		SubmissionID: sub.ID,
		Step:         sub.CurrentStep,
		Decision:     decision,
		ApproverID:   approverID.Hex(),
		Comments:     comments,
		DecidedAt:    time.Now(),
	}
	s.withRetry(func() error { return s.Records.Append(ctx, record) })

	created := s.emitDecisionEffects(ctx, sub, decision, nextStatus, finalStep, approverID, comments)

	updated, err := s.Submissions.Get(ctx, sub.ID)
	if err != nil {
		return nil, nil, err
	}
	return updated, created, nil
}

func (s *ApprovalServiceImpl) authorize(ctx context.Context, userID, submissionID string, step int) error {
	checkCtx, cancel := context.WithTimeout(ctx, s.AuthzTimeout)
	defer cancel()

	allowed, err := s.Authz.CanApprove(checkCtx, userID, submissionID, step)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return err
		}
		return apperr.AuthorizationUnavailable(err)
	}
	if !allowed {
		return apperr.Forbidden("user is not authorized to decide this step")
	}
	return nil
}

func (s *ApprovalServiceImpl) emitDecisionEffects(ctx context.Context, sub *submission.Submission, decision Decision, nextStatus submission.Status, finalStep int, approverID primitive.ObjectID, comments string) *notification.Notification {
	var created *notification.Notification

	switch nextStatus {
	case submission.StatusRejected:
		s.withRetry(func() error {
			n, err := s.Notifications.NotifyRejection(ctx, sub.SubmitterID, sub.TemplateName, sub.ID.Hex(), comments)
			if err == nil {
				created = n
			}
			return err
		})
		s.withRetry(func() error {
			return s.Audit.Record(ctx, audit.ActionReject, audit.EntityForm, sub.ID.Hex(), approverID.Hex(),
				fmt.Sprintf("Form rejected: %s (ID: %s). Comments: %s", sub.TemplateName, sub.ID.Hex(), comments))
		})

	case submission.StatusApproved:
		s.withRetry(func() error {
			n, err := s.Notifications.NotifyApproval(ctx, sub.SubmitterID, sub.TemplateName, sub.ID.Hex(), approverID.Hex())
			if err == nil {
				created = n
			}
			return err
		})
		s.withRetry(func() error {
			return s.Audit.Record(ctx, audit.ActionApprove, audit.EntityForm, sub.ID.Hex(), approverID.Hex(),
				fmt.Sprintf("Form approved: %s (ID: %s). Comments: %s", sub.TemplateName, sub.ID.Hex(), comments))
		})

	default:
		// Intermediate approval: the chain moves on to the next step.
		s.withRetry(func() error {
			n, err := s.Notifications.NotifyFormStatus(ctx, sub.SubmitterID, sub.TemplateName, sub.ID.Hex(),
				fmt.Sprintf("advanced to step %d", finalStep), "")
			if err == nil {
				created = n
			}
			return err
		})
		s.notifyNextStepApprovers(ctx, sub, finalStep)
		s.withRetry(func() error {
			return s.Audit.Record(ctx, audit.ActionAdvance, audit.EntityForm, sub.ID.Hex(), approverID.Hex(),
				fmt.Sprintf("Form advanced to approval step %d of %d", finalStep, sub.TotalSteps))
		})
	}

	return created
}

func (s *ApprovalServiceImpl) notifyNextStepApprovers(ctx context.Context, sub *submission.Submission, step int) {
	approverIDs, err := s.Approvers.ListApproverIDs(ctx)
	if err != nil {
		s.Logger.Warn("could not resolve next-step approver pool", zap.Error(err))
		return
	}
	for _, approverID := range approverIDs {
		id := approverID
		s.withRetry(func() error {
			_, err := s.Notifications.Create(ctx, id, notification.TypeGeneric,
				"Form Awaiting Approval",
				fmt.Sprintf("A %s form is awaiting your decision at step %d.", sub.TemplateName, step),
				sub.ID.Hex(), "/approvals/"+sub.ID.Hex())
			return err
		})
	}
}

func (s *ApprovalServiceImpl) BulkDecide(ctx context.Context, approverID primitive.ObjectID, submissionIDs []string, decision Decision, comments string) (*BulkResult, error) {
	result := &BulkResult{Failed: make(map[string]string)}
	for _, id := range submissionIDs {
		if _, _, err := s.Decide(ctx, approverID, id, decision, comments); err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		result.Updated = append(result.Updated, id)
	}
	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result, nil
}

func (s *ApprovalServiceImpl) History(ctx context.Context, submissionID string) ([]StepRecord, error) {
	oid, err := primitive.ObjectIDFromHex(submissionID)
	if err != nil {
		return nil, apperr.NotFound("submission", submissionID)
	}
	sub, err := s.Submissions.Get(ctx, oid)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperr.NotFound("submission", submissionID)
	}
	return s.Records.ListBySubmission(ctx, oid)
}

func (s *ApprovalServiceImpl) CanApprove(ctx context.Context, userID string, submissionID string, step int) (bool, error) {
	checkCtx, cancel := context.WithTimeout(ctx, s.AuthzTimeout)
	defer cancel()
	return s.Authz.CanApprove(checkCtx, userID, submissionID, step)
}

func (s *ApprovalServiceImpl) withRetry(fn func() error) {
	var err error
	for attempt := 0; attempt < s.sideEffectTrys; attempt++ {
		if err = fn(); err == nil {
			return
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	s.Logger.Error("side effect failed after retries", zap.Error(err))
}
