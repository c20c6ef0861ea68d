package comment

import (
	"context"
	"strings"
	"time"

	"go-formflow/internal/common/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionFinder is the existence check the thread needs before
// accepting a note. Satisfied by the submission repository; wired in main.
type SubmissionFinder interface {
	Exists(ctx context.Context, submissionID primitive.ObjectID) (bool, error)
}

type CommentService interface {
	Add(ctx context.Context, authorID primitive.ObjectID, submissionID string, text string) (*Comment, error)
	List(ctx context.Context, submissionID string) ([]Comment, error)
}

type CommentServiceImpl struct {
	Repo        CommentRepository
	Submissions SubmissionFinder
}

func NewCommentService(repo CommentRepository, submissions SubmissionFinder) CommentService {
	return &CommentServiceImpl{
		Repo:        repo,
		Submissions: submissions,
	}
}

func (s *CommentServiceImpl) Add(ctx context.Context, authorID primitive.ObjectID, submissionID string, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.EmptyComment()
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

	c := &Comment{
		SubmissionID: oid,
		AuthorID:     authorID,
		Text:         text,
		CreatedAt:    time.Now(),
	}
	if err := s.Repo.Append(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentServiceImpl) List(ctx context.Context, submissionID string) ([]Comment, error) {
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
