package notification

import (
	"context"
	"fmt"

	"go-formflow/internal/common/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationService interface {
	// Create is system-internal: only the submission and approval flows
	// call it. End users never create mailbox entries directly.
	Create(ctx context.Context, recipientID primitive.ObjectID, notifType Type, title, message, relatedEntityID, actionRef string) (*Notification, error)

	NotifyFormStatus(ctx context.Context, recipientID primitive.ObjectID, formType, formID, status, message string) (*Notification, error)
	NotifyApproval(ctx context.Context, recipientID primitive.ObjectID, formType, formID, approverName string) (*Notification, error)
	NotifyRejection(ctx context.Context, recipientID primitive.ObjectID, formType, formID, reason string) (*Notification, error)
	NotifySystem(ctx context.Context, recipientID primitive.ObjectID, title, message string) (*Notification, error)

	List(ctx context.Context, recipientID primitive.ObjectID, filter ListFilter) ([]Notification, error)
	ListForEntity(ctx context.Context, recipientID primitive.ObjectID, relatedEntityID string) ([]Notification, error)
	GetStats(ctx context.Context, recipientID primitive.ObjectID) (*Stats, error)
	MarkRead(ctx context.Context, id string, recipientID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) error
	Archive(ctx context.Context, id string, recipientID primitive.ObjectID) error
	Delete(ctx context.Context, id string, recipientID primitive.ObjectID) error
}

type NotificationServiceImpl struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) NotificationService {
	return &NotificationServiceImpl{repo: repo}
}

func (s *NotificationServiceImpl) Create(ctx context.Context, recipientID primitive.ObjectID, notifType Type, title, message, relatedEntityID, actionRef string) (*Notification, error) {
	n := &Notification{
		RecipientID:     recipientID,
		Type:            notifType,
		Title:           title,
		Message:         message,
		RelatedEntityID: relatedEntityID,
		ActionRef:       actionRef,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NotificationServiceImpl) NotifyFormStatus(ctx context.Context, recipientID primitive.ObjectID, formType, formID, status, message string) (*Notification, error) {
	full := fmt.Sprintf("Your %s (ID: %s) has been %s. %s", formType, formID, status, message)
	return s.Create(ctx, recipientID, TypeFormStatus, "Form Status Update", full, formID, "/forms/"+formID)
}

func (s *NotificationServiceImpl) NotifyApproval(ctx context.Context, recipientID primitive.ObjectID, formType, formID, approverName string) (*Notification, error) {
	msg := fmt.Sprintf("Your %s (ID: %s) has been approved by %s.", formType, formID, approverName)
	return s.Create(ctx, recipientID, TypeApproval, "Form Approved!", msg, formID, "/forms/"+formID)
}

func (s *NotificationServiceImpl) NotifyRejection(ctx context.Context, recipientID primitive.ObjectID, formType, formID, reason string) (*Notification, error) {
	msg := fmt.Sprintf("Your %s (ID: %s) requires attention. %s", formType, formID, reason)
	return s.Create(ctx, recipientID, TypeRejection, "Form Update Required", msg, formID, "/forms/"+formID)
}

func (s *NotificationServiceImpl) NotifySystem(ctx context.Context, recipientID primitive.ObjectID, title, message string) (*Notification, error) {
	return s.Create(ctx, recipientID, TypeSystem, title, message, "", "")
}

func (s *NotificationServiceImpl) List(ctx context.Context, recipientID primitive.ObjectID, filter ListFilter) ([]Notification, error) {
	switch filter {
	case FilterAll, FilterUnread, FilterRead, FilterArchived:
	case "":
		filter = FilterAll
	default:
		return nil, apperr.ValidationMsg("filter", "unknown mailbox filter "+string(filter))
	}
	return s.repo.ListByRecipient(ctx, recipientID, filter)
}

func (s *NotificationServiceImpl) ListForEntity(ctx context.Context, recipientID primitive.ObjectID, relatedEntityID string) ([]Notification, error) {
	return s.repo.ListByRecipientAndEntity(ctx, recipientID, relatedEntityID)
}

func (s *NotificationServiceImpl) GetStats(ctx context.Context, recipientID primitive.ObjectID) (*Stats, error) {
	total, err := s.repo.CountByRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	return &Stats{Total: total, Unread: unread}, nil
}

// MarkRead is idempotent: an entry already READ or ARCHIVED is left alone.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id string, recipientID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.NotFound("notification", id)
	}

	matched, err := s.repo.MarkRead(ctx, oid, recipientID)
	if err != nil {
		return err
	}
	if matched {
		return nil
	}

	// Nothing matched: either the entry is gone or it is past UNREAD.
	existing, err := s.repo.Get(ctx, oid, recipientID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("notification", id)
	}
	return nil
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) error {
	return s.repo.MarkAllRead(ctx, recipientID)
}

// Archive transitions UNREAD or READ to ARCHIVED. Archiving an already
// archived entry is flagged as InvalidState rather than ignored.
func (s *NotificationServiceImpl) Archive(ctx context.Context, id string, recipientID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.NotFound("notification", id)
	}

	matched, err := s.repo.Archive(ctx, oid, recipientID)
	if err != nil {
		return err
	}
	if matched {
		return nil
	}

	existing, err := s.repo.Get(ctx, oid, recipientID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("notification", id)
	}
	return apperr.InvalidState("notification is already archived")
}

// Delete removes the entry outright regardless of status.
func (s *NotificationServiceImpl) Delete(ctx context.Context, id string, recipientID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.NotFound("notification", id)
	}

	deleted, err := s.repo.Delete(ctx, oid, recipientID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("notification", id)
	}
	return nil
}
