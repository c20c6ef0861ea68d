package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-formflow/internal/common/apperr"
	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/notification"
	"go-formflow/internal/features/submission"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memSubmissionRepo struct {
	subs map[primitive.ObjectID]*submission.Submission

	ForceTransitionMiss bool
}

func newMemSubmissionRepo() *memSubmissionRepo {
	return &memSubmissionRepo{subs: make(map[primitive.ObjectID]*submission.Submission)}
}

func (m *memSubmissionRepo) Create(ctx context.Context, sub *submission.Submission) error {
	m.subs[sub.ID] = sub
	return nil
}

func (m *memSubmissionRepo) Get(ctx context.Context, id primitive.ObjectID) (*submission.Submission, error) {
	sub, ok := m.subs[id]
	if !ok {
		return nil, nil
	}
	copied := *sub
	return &copied, nil
}

func (m *memSubmissionRepo) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	_, ok := m.subs[id]
	return ok, nil
}

func (m *memSubmissionRepo) ListBySubmitter(ctx context.Context, submitterID primitive.ObjectID) ([]submission.Submission, error) {
	return nil, nil
}

func (m *memSubmissionRepo) ListByStatus(ctx context.Context, status submission.Status) ([]submission.Submission, error) {
	return nil, nil
}

func (m *memSubmissionRepo) List(ctx context.Context, filter submission.Filter) ([]submission.Submission, error) {
	return nil, nil
}

func (m *memSubmissionRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *memSubmissionRepo) CountByStatus(ctx context.Context, status submission.Status) (int64, error) {
	return 0, nil
}

func (m *memSubmissionRepo) CountByTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error) {
	return 0, nil
}

func (m *memSubmissionRepo) Transition(ctx context.Context, id primitive.ObjectID, fromStatus submission.Status, fromStep int, set bson.M) (bool, error) {
	if m.ForceTransitionMiss {
		m.ForceTransitionMiss = false
		return false, nil
	}
	sub, ok := m.subs[id]
	if !ok || sub.Status != fromStatus || sub.CurrentStep != fromStep {
		return false, nil
	}
	for key, value := range set {
		switch key {
		case "status":
			sub.Status = value.(submission.Status)
		case "current_step":
			sub.CurrentStep = value.(int)
		case "last_transition_by":
			sub.LastTransitionBy = value.(string)
		}
	}
	sub.LastTransitionAt = time.Now()
	return true, nil
}

func (m *memSubmissionRepo) EnsureIndexes(ctx context.Context) error { return nil }

type memStepRecordRepo struct {
	records []StepRecord
}

func (m *memStepRecordRepo) Append(ctx context.Context, record StepRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memStepRecordRepo) ListBySubmission(ctx context.Context, submissionID primitive.ObjectID) ([]StepRecord, error) {
	var out []StepRecord
	for _, r := range m.records {
		if r.SubmissionID == submissionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStepRecordRepo) EnsureIndexes(ctx context.Context) error { return nil }

type captureNotifier struct {
	Created []notification.Notification
}

func (c *captureNotifier) record(recipientID primitive.ObjectID, notifType notification.Type, message, entityID string) (*notification.Notification, error) {
	n := notification.Notification{
		ID:              primitive.NewObjectID(),
		RecipientID:     recipientID,
		Type:            notifType,
		Message:         message,
		RelatedEntityID: entityID,
		Status:          notification.StatusUnread,
		CreatedAt:       time.Now(),
	}
	c.Created = append(c.Created, n)
	return &n, nil
}

func (c *captureNotifier) Create(ctx context.Context, recipientID primitive.ObjectID, notifType notification.Type, title, message, relatedEntityID, actionRef string) (*notification.Notification, error) {
	return c.record(recipientID, notifType, message, relatedEntityID)
}

func (c *captureNotifier) NotifyFormStatus(ctx context.Context, recipientID primitive.ObjectID, formType, formID, status, message string) (*notification.Notification, error) {
	return c.record(recipientID, notification.TypeFormStatus, status, formID)
}

func (c *captureNotifier) NotifyApproval(ctx context.Context, recipientID primitive.ObjectID, formType, formID, approverName string) (*notification.Notification, error) {
	return c.record(recipientID, notification.TypeApproval, approverName, formID)
}

func (c *captureNotifier) NotifyRejection(ctx context.Context, recipientID primitive.ObjectID, formType, formID, reason string) (*notification.Notification, error) {
	return c.record(recipientID, notification.TypeRejection, reason, formID)
}

func (c *captureNotifier) NotifySystem(ctx context.Context, recipientID primitive.ObjectID, title, message string) (*notification.Notification, error) {
	return c.record(recipientID, notification.TypeSystem, message, "")
}

func (c *captureNotifier) List(ctx context.Context, recipientID primitive.ObjectID, filter notification.ListFilter) ([]notification.Notification, error) {
	return nil, nil
}

func (c *captureNotifier) ListForEntity(ctx context.Context, recipientID primitive.ObjectID, relatedEntityID string) ([]notification.Notification, error) {
	return nil, nil
}

func (c *captureNotifier) GetStats(ctx context.Context, recipientID primitive.ObjectID) (*notification.Stats, error) {
	return &notification.Stats{}, nil
}

func (c *captureNotifier) MarkRead(ctx context.Context, id string, recipientID primitive.ObjectID) error {
	return nil
}

func (c *captureNotifier) MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) error {
	return nil
}

func (c *captureNotifier) Archive(ctx context.Context, id string, recipientID primitive.ObjectID) error {
	return nil
}

func (c *captureNotifier) Delete(ctx context.Context, id string, recipientID primitive.ObjectID) error {
	return nil
}

type captureAudit struct {
	Actions []audit.Action
}

func (c *captureAudit) Record(ctx context.Context, action audit.Action, entityType audit.EntityType, entityID, actorID, details string) error {
	c.Actions = append(c.Actions, action)
	return nil
}

func (c *captureAudit) List(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]audit.Entry, error) {
	return nil, nil
}

type stubAuthorizer struct {
	Allowed bool
	Err     error
}

func (a *stubAuthorizer) CanApprove(ctx context.Context, userID string, submissionID string, step int) (bool, error) {
	return a.Allowed, a.Err
}

type staticDirectory struct {
	IDs []primitive.ObjectID
}

func (d *staticDirectory) ListApproverIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	return d.IDs, nil
}

type fixture struct {
	subs     *memSubmissionRepo
	records  *memStepRecordRepo
	notifier *captureNotifier
	audit    *captureAudit
	authz    *stubAuthorizer
	service  *ApprovalServiceImpl
}

func newFixture() *fixture {
	f := &fixture{
		subs:     newMemSubmissionRepo(),
		records:  &memStepRecordRepo{},
		notifier: &captureNotifier{},
		audit:    &captureAudit{},
		authz:    &stubAuthorizer{Allowed: true},
	}
	f.service = &ApprovalServiceImpl{
		Records:        f.records,
		Submissions:    f.subs,
		Notifications:  f.notifier,
		Audit:          f.audit,
		Authz:          f.authz,
		Approvers:      &staticDirectory{},
		Logger:         zap.NewNop(),
		AuthzTimeout:   time.Second,
		sideEffectTrys: 1,
	}
	return f
}

func (f *fixture) seed(status submission.Status, step, total int) *submission.Submission {
	sub := &submission.Submission{
		ID:               primitive.NewObjectID(),
		TemplateName:     "Purchase Order",
		SubmitterID:      primitive.NewObjectID(),
		Status:           status,
		CurrentStep:      step,
		TotalSteps:       total,
		RequiresApproval: true,
	}
	f.subs.subs[sub.ID] = sub
	return sub
}

func TestDecideApproveIntermediateStep(t *testing.T) {
	f := newFixture()
	sub := f.seed(submission.StatusSubmitted, 1, 2)
	approver := primitive.NewObjectID()
	ctx := context.Background()

	updated, created, err := f.service.Decide(ctx, approver, sub.ID.Hex(), DecisionApprove, "looks fine")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Status != submission.StatusUnderReview {
		t.Errorf("expected UNDER_REVIEW after an intermediate approval, got %s", updated.Status)
	}
	if updated.CurrentStep != 2 {
		t.Errorf("expected step 2, got %d", updated.CurrentStep)
	}
	if created == nil || created.RecipientID != sub.SubmitterID {
		t.Error("expected the submitter's notification to be returned")
	}
	if len(f.records.records) != 1 {
		t.Fatalf("expected 1 step record, got %d", len(f.records.records))
	}
	record := f.records.records[0]
	if record.Step != 1 || record.Decision != DecisionApprove || record.Comments != "looks fine" {
		t.Errorf("unexpected step record: %+v", record)
	}
	if len(f.audit.Actions) != 1 || f.audit.Actions[0] != audit.ActionAdvance {
		t.Errorf("expected an ADVANCE audit entry, got %v", f.audit.Actions)
	}
}

func TestDecideApproveFinalStep(t *testing.T) {
	f := newFixture()
	sub := f.seed(submission.StatusUnderReview, 2, 2)
	ctx := context.Background()

	updated, created, err := f.service.Decide(ctx, primitive.NewObjectID(), sub.ID.Hex(), DecisionApprove, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != submission.StatusApproved {
		t.Errorf("expected APPROVED, got %s", updated.Status)
	}
	if updated.CurrentStep != 2 {
		t.Errorf("expected the step counter to stay at %d, got %d", 2, updated.CurrentStep)
	}
	if created == nil || created.Type != notification.TypeApproval {
		t.Error("expected an approval notification for the submitter")
	}
	if len(f.audit.Actions) != 1 || f.audit.Actions[0] != audit.ActionApprove {
		t.Errorf("expected an APPROVE audit entry, got %v", f.audit.Actions)
	}
}

func TestDecideFullChainApproves(t *testing.T) {
	f := newFixture()
	sub := f.seed(submission.StatusSubmitted, 1, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := f.service.Decide(ctx, primitive.NewObjectID(), sub.ID.Hex(), DecisionApprove, ""); err != nil {
			t.Fatalf("decision %d: unexpected error: %v", i+1, err)
		}
	}

	final := f.subs.subs[sub.ID]
	if final.Status != submission.StatusApproved {
		t.Errorf("expected APPROVED after %d approvals, got %s", 3, final.Status)
	}
	if final.CurrentStep != 3 {
		t.Errorf("expected currentStep == totalSteps, got %d", final.CurrentStep)
	}
	if len(f.records.records) != 3 {
		t.Errorf("expected 3 step records, got %d", len(f.records.records))
	}
}

func TestDecideRejectIsTerminalAtAnyStep(t *testing.T) {
	f := newFixture()
	sub := f.seed(submission.StatusUnderReview, 2, 3)
	ctx := context.Background()

	updated, created, err := f.service.Decide(ctx, primitive.NewObjectID(), sub.ID.Hex(), DecisionReject, "missing receipts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != submission.StatusRejected {
		t.Errorf("expected REJECTED, got %s", updated.Status)
	}
	if created == nil || created.Type != notification.TypeRejection {
		t.Error("expected a rejection notification for the submitter")
	}

	// The chain is over; further decisions must be refused
	_, _, err = f.service.Decide(ctx, primitive.NewObjectID(), sub.ID.Hex(), DecisionApprove, "")
	if !apperr.IsKind(err, apperr.KindInvalidState) {
		t.Errorf("expected invalid state on a decided submission, got %v", err)
	}
}

func TestDecideDeniedIsForbidden(t *testing.T) {
	f := newFixture()
	f.authz.Allowed = false
	sub := f.seed(submission.StatusUnderReview, 1, 1)

	_, _, err := f.service.Decide(context.Background(), primitive.NewObjectID(), sub.ID.Hex(), DecisionApprove, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
	if len(f.records.records) != 0 {
		t.Error("expected no step record for a denied decision")
	}
}

func TestDecideAuthorizerFailureIsUnavailableNotDenial(t *testing.T) {
	f := newFixture()
	f.authz.Err = errors.New("directory timeout")
	sub := f.seed(submission.StatusUnderReview, 1, 1)

	_, _, err := f.service.Decide(context.Background(), primitive.NewObjectID(), sub.ID.Hex(), DecisionApprove, "")
	if !apperr.IsKind(err, apperr.KindAuthUnavailable) {
		t.Errorf("expected authorization-unavailable, got %v", err)
	}
	if apperr.IsKind(err, apperr.KindForbidden) {
		t.Error("an unavailable authorizer must not read as a denial")
	}
	if f.subs.subs[sub.ID].Status != submission.StatusUnderReview {
		t.Error("expected the submission to be untouched")
	}
}

func TestDecideLostRaceIsInvalidState(t *testing.T) {
	f := newFixture()
	sub := f.seed(submission.StatusUnderReview, 1, 2)
	f.subs.ForceTransitionMiss = true

	_, _, err := f.service.Decide(context.Background(), primitive.NewObjectID(), sub.ID.Hex(), DecisionApprove, "")
	if !apperr.IsKind(err, apperr.KindInvalidState) {
		t.Errorf("expected invalid state for the race loser, got %v", err)
	}
	if len(f.records.records) != 0 {
		t.Error("expected no step record for a lost race")
	}
}

func TestDecideRejectsUnknownDecision(t *testing.T) {
	f := newFixture()
	sub := f.seed(submission.StatusSubmitted, 1, 1)

	_, _, err := f.service.Decide(context.Background(), primitive.NewObjectID(), sub.ID.Hex(), Decision("DEFER"), "")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestBulkDecideIsBestEffort(t *testing.T) {
	f := newFixture()
	good := f.seed(submission.StatusUnderReview, 1, 1)
	done := f.seed(submission.StatusApproved, 1, 1)
	approver := primitive.NewObjectID()

	result, err := f.service.BulkDecide(context.Background(), approver,
		[]string{good.ID.Hex(), done.ID.Hex(), primitive.NewObjectID().Hex()}, DecisionApprove, "batch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Updated) != 1 || result.Updated[0] != good.ID.Hex() {
		t.Errorf("expected exactly the pending submission to be updated, got %v", result.Updated)
	}
	if len(result.Failed) != 2 {
		t.Errorf("expected 2 failures, got %v", result.Failed)
	}
	if f.subs.subs[good.ID].Status != submission.StatusApproved {
		t.Error("expected the pending submission to end APPROVED")
	}
}

func TestHistoryUnknownSubmission(t *testing.T) {
	f := newFixture()
	_, err := f.service.History(context.Background(), primitive.NewObjectID().Hex())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
