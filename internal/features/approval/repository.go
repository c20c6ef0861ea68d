package approval

import (
	"context"

	"go-formflow/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StepRecordRepository interface {
	Append(ctx context.Context, record StepRecord) error
	ListBySubmission(ctx context.Context, submissionID primitive.ObjectID) ([]StepRecord, error)
	EnsureIndexes(ctx context.Context) error
}

type StepRecordRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewStepRecordRepository(mongodb *database.MongodbDB) StepRecordRepository {
	return &StepRecordRepositoryImpl{
		Collection: mongodb.DB.Collection("approval_step_records"),
	}
}

func (r *StepRecordRepositoryImpl) Append(ctx context.Context, record StepRecord) error {
	_, err := r.Collection.InsertOne(ctx, record)
	return err
}

func (r *StepRecordRepositoryImpl) ListBySubmission(ctx context.Context, submissionID primitive.ObjectID) ([]StepRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "decided_at", Value: 1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"submission_id": submissionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []StepRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *StepRecordRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "submission_id", Value: 1}, {Key: "decided_at", Value: 1}},
	})
	return err
}
