package submission

import (
	"context"
	"time"

	"go-formflow/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SubmissionRepository interface {
	Create(ctx context.Context, sub *Submission) error
	Get(ctx context.Context, id primitive.ObjectID) (*Submission, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	ListBySubmitter(ctx context.Context, submitterID primitive.ObjectID) ([]Submission, error)
	ListByStatus(ctx context.Context, status Status) ([]Submission, error)
	List(ctx context.Context, filter Filter) ([]Submission, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
	CountByTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error)
	// Transition is the compare-and-set every state change goes through:
	// the update only applies if the document still holds the expected
	// status and step. A false return means another writer won the race.
	Transition(ctx context.Context, id primitive.ObjectID, fromStatus Status, fromStep int, set bson.M) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

type SubmissionRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewSubmissionRepository(mongodb *database.MongodbDB) SubmissionRepository {
	return &SubmissionRepositoryImpl{
		Collection: mongodb.DB.Collection("submissions"),
	}
}

func (r *SubmissionRepositoryImpl) Create(ctx context.Context, sub *Submission) error {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, sub)
	return err
}

func (r *SubmissionRepositoryImpl) Get(ctx context.Context, id primitive.ObjectID) (*Submission, error) {
	var sub Submission
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubmissionRepositoryImpl) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := r.Collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SubmissionRepositoryImpl) ListBySubmitter(ctx context.Context, submitterID primitive.ObjectID) ([]Submission, error) {
	return r.find(ctx, bson.M{"submitter_id": submitterID})
}

func (r *SubmissionRepositoryImpl) ListByStatus(ctx context.Context, status Status) ([]Submission, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *SubmissionRepositoryImpl) List(ctx context.Context, filter Filter) ([]Submission, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.TemplateName != "" {
		query["template_name"] = primitive.Regex{Pattern: filter.TemplateName, Options: "i"}
	}
	if !filter.SubmitterID.IsZero() {
		query["submitter_id"] = filter.SubmitterID
	}
	return r.find(ctx, query)
}

func (r *SubmissionRepositoryImpl) find(ctx context.Context, query bson.M) ([]Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []Submission
	if err = cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *SubmissionRepositoryImpl) Count(ctx context.Context) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{})
}

func (r *SubmissionRepositoryImpl) CountByStatus(ctx context.Context, status Status) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"status": status})
}

func (r *SubmissionRepositoryImpl) CountByTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"template_id": templateID})
}

func (r *SubmissionRepositoryImpl) Transition(ctx context.Context, id primitive.ObjectID, fromStatus Status, fromStep int, set bson.M) (bool, error) {
	set["last_transition_at"] = time.Now()
	result, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": fromStatus, "current_step": fromStep},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *SubmissionRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "submitter_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "template_id", Value: 1}}},
	})
	return err
}
