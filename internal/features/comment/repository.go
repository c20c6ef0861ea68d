package comment

import (
	"context"

	"go-formflow/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentRepository interface {
	Append(ctx context.Context, c *Comment) error
	ListBySubmission(ctx context.Context, submissionID primitive.ObjectID) ([]Comment, error)
	EnsureIndexes(ctx context.Context) error
}

type CommentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewCommentRepository(mongodb *database.MongodbDB) CommentRepository {
	return &CommentRepositoryImpl{
		Collection: mongodb.DB.Collection("form_comments"),
	}
}

func (r *CommentRepositoryImpl) Append(ctx context.Context, c *Comment) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, c)
	return err
}

func (r *CommentRepositoryImpl) ListBySubmission(ctx context.Context, submissionID primitive.ObjectID) ([]Comment, error) {
	// Oldest first: insertion order is the thread order
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"submission_id": submissionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "submission_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return err
}
