package attachment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-formflow/internal/common/apperr"
	"go-formflow/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionFinder is the existence check needed before accepting an
// upload. Satisfied by the submission repository; wired in main.
type SubmissionFinder interface {
	Exists(ctx context.Context, submissionID primitive.ObjectID) (bool, error)
}

type AttachmentService interface {
	Attach(ctx context.Context, uploaderID primitive.ObjectID, submissionID, fileName, contentType string, sizeBytes int64, storageKey string) (*Attachment, error)
	List(ctx context.Context, submissionID string) ([]Attachment, error)
	Remove(ctx context.Context, actorID primitive.ObjectID, attachmentID string) error
}

type AttachmentServiceImpl struct {
	Repo        AttachmentRepository
	Submissions SubmissionFinder
	Audit       audit.AuditService
}

func NewAttachmentService(repo AttachmentRepository, submissions SubmissionFinder, auditService audit.AuditService) AttachmentService {
	return &AttachmentServiceImpl{
		Repo:        repo,
		Submissions: submissions,
		Audit:       auditService,
	}
}

func (s *AttachmentServiceImpl) Attach(ctx context.Context, uploaderID primitive.ObjectID, submissionID, fileName, contentType string, sizeBytes int64, storageKey string) (*Attachment, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, apperr.Validation("file_name")
	}
	if sizeBytes < 0 {
		return nil, apperr.ValidationMsg("size_bytes", "attachment size must not be negative")
	}

	oid, err := primitive.ObjectIDFromHex(submissionID)
	if err != nil {
		return nil, apperr.NotFound("submission", submissionID)
	}
	exists, err := s.Submissions.Exists(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("submission", submissionID)
	}

	a := &Attachment{
		SubmissionID: oid,
		UploaderID:   uploaderID,
		FileName:     fileName,
		ContentType:  contentType,
		SizeBytes:    sizeBytes,
		StorageKey:   storageKey,
		UploadedAt:   time.Now(),
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, err
	}

	_ = s.Audit.Record(ctx, audit.ActionUpload, audit.EntityForm, oid.Hex(), uploaderID.Hex(),
		fmt.Sprintf("File '%s' attached (%d bytes)", fileName, sizeBytes))

	return a, nil
}

func (s *AttachmentServiceImpl) List(ctx context.Context, submissionID string) ([]Attachment, error) {
	oid, err := primitive.ObjectIDFromHex(submissionID)
	if err != nil {
		return nil, apperr.NotFound("submission", submissionID)
	}
	exists, err := s.Submissions.Exists(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("submission", submissionID)
	}
	return s.Repo.ListBySubmission(ctx, oid)
}

func (s *AttachmentServiceImpl) Remove(ctx context.Context, actorID primitive.ObjectID, attachmentID string) error {
	oid, err := primitive.ObjectIDFromHex(attachmentID)
	if err != nil {
		return apperr.NotFound("attachment", attachmentID)
	}

	a, err := s.Repo.Get(ctx, oid)
	if err != nil {
		return err
	}
	if a == nil {
		return apperr.NotFound("attachment", attachmentID)
	}
	if a.UploaderID != actorID {
		return apperr.Forbidden("only the uploader can remove an attachment")
	}

	deleted, err := s.Repo.Delete(ctx, oid)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("attachment", attachmentID)
	}
	return nil
}
