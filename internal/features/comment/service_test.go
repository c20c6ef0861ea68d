package comment

import (
	"context"
	"testing"

	"go-formflow/internal/common/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memCommentRepo struct {
	comments []Comment
}

func (m *memCommentRepo) Append(ctx context.Context, c *Comment) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	m.comments = append(m.comments, *c)
	return nil
}

func (m *memCommentRepo) ListBySubmission(ctx context.Context, submissionID primitive.ObjectID) ([]Comment, error) {
	var out []Comment
	for _, c := range m.comments {
		if c.SubmissionID == submissionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCommentRepo) EnsureIndexes(ctx context.Context) error { return nil }

type stubFinder struct {
	known map[primitive.ObjectID]bool
}

func (f *stubFinder) Exists(ctx context.Context, submissionID primitive.ObjectID) (bool, error) {
	return f.known[submissionID], nil
}

func newCommentFixture(known ...primitive.ObjectID) (*CommentServiceImpl, *memCommentRepo) {
	finder := &stubFinder{known: make(map[primitive.ObjectID]bool)}
	for _, id := range known {
		finder.known[id] = true
	}
	repo := &memCommentRepo{}
	return &CommentServiceImpl{Repo: repo, Submissions: finder}, repo
}

func TestAddRejectsEmptyText(t *testing.T) {
	subID := primitive.NewObjectID()
	service, repo := newCommentFixture(subID)
	ctx := context.Background()

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := service.Add(ctx, primitive.NewObjectID(), subID.Hex(), text)
		if !apperr.IsKind(err, apperr.KindEmptyComment) {
			t.Errorf("text %q: expected empty-comment error, got %v", text, err)
		}
	}
	if len(repo.comments) != 0 {
		t.Error("expected nothing to be appended")
	}
}

func TestAddUnknownSubmission(t *testing.T) {
	service, _ := newCommentFixture()
	ctx := context.Background()

	_, err := service.Add(ctx, primitive.NewObjectID(), primitive.NewObjectID().Hex(), "hello")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	// A malformed id is also just "not found", never a 500
	_, err = service.Add(ctx, primitive.NewObjectID(), "not-a-hex-id", "hello")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found for malformed id, got %v", err)
	}
}

func TestListPreservesInsertionOrder(t *testing.T) {
	subID := primitive.NewObjectID()
	service, _ := newCommentFixture(subID)
	ctx := context.Background()
	author := primitive.NewObjectID()

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		if _, err := service.Add(ctx, author, subID.Hex(), text); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	listed, err := service.List(ctx, subID.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != len(texts) {
		t.Fatalf("expected %d comments, got %d", len(texts), len(listed))
	}
	for i, c := range listed {
		if c.Text != texts[i] {
			t.Errorf("position %d: expected %q, got %q", i, texts[i], c.Text)
		}
	}
}

func TestListUnknownSubmission(t *testing.T) {
	service, _ := newCommentFixture()
	_, err := service.List(context.Background(), primitive.NewObjectID().Hex())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
