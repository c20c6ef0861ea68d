package attachment

import (
	"context"

	"go-formflow/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AttachmentRepository interface {
	Create(ctx context.Context, a *Attachment) error
	Get(ctx context.Context, id primitive.ObjectID) (*Attachment, error)
	ListBySubmission(ctx context.Context, submissionID primitive.ObjectID) ([]Attachment, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

type AttachmentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAttachmentRepository(mongodb *database.MongodbDB) AttachmentRepository {
	return &AttachmentRepositoryImpl{
		Collection: mongodb.DB.Collection("form_attachments"),
	}
}

func (r *AttachmentRepositoryImpl) Create(ctx context.Context, a *Attachment) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, a)
	return err
}

func (r *AttachmentRepositoryImpl) Get(ctx context.Context, id primitive.ObjectID) (*Attachment, error) {
	var a Attachment
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AttachmentRepositoryImpl) ListBySubmission(ctx context.Context, submissionID primitive.ObjectID) ([]Attachment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: 1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"submission_id": submissionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var attachments []Attachment
	if err = cursor.All(ctx, &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *AttachmentRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *AttachmentRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "submission_id", Value: 1}}},
	})
	return err
}
