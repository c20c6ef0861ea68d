package notification

import (
	"context"
	"time"

	"go-formflow/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	Get(ctx context.Context, id, recipientID primitive.ObjectID) (*Notification, error)
	ListByRecipient(ctx context.Context, recipientID primitive.ObjectID, filter ListFilter) ([]Notification, error)
	ListByRecipientAndEntity(ctx context.Context, recipientID primitive.ObjectID, relatedEntityID string) ([]Notification, error)
	CountByRecipient(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	// MarkRead flips UNREAD to READ; returns false if nothing matched.
	MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) (bool, error)
	MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) error
	// Archive flips UNREAD/READ to ARCHIVED; returns false if nothing matched.
	Archive(ctx context.Context, id, recipientID primitive.ObjectID) (bool, error)
	Delete(ctx context.Context, id, recipientID primitive.ObjectID) (bool, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type NotificationRepositoryImpl struct {
	collection *mongo.Collection
}

func NewNotificationRepository(mongodb *database.MongodbDB) NotificationRepository {
	return &NotificationRepositoryImpl{
		collection: mongodb.DB.Collection("notifications"),
	}
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, n *Notification) error {
	n.Status = StatusUnread
	n.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, n)
	if err != nil {
		return err
	}
	n.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *NotificationRepositoryImpl) Get(ctx context.Context, id, recipientID primitive.ObjectID) (*Notification, error) {
	var n Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "recipient_id": recipientID}).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepositoryImpl) ListByRecipient(ctx context.Context, recipientID primitive.ObjectID, filter ListFilter) ([]Notification, error) {
	query := bson.M{"recipient_id": recipientID}
	switch filter {
	case FilterUnread:
		query["status"] = StatusUnread
	case FilterRead:
		query["status"] = StatusRead
	case FilterArchived:
		query["status"] = StatusArchived
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepositoryImpl) ListByRecipientAndEntity(ctx context.Context, recipientID primitive.ObjectID, relatedEntityID string) ([]Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{
		"recipient_id":      recipientID,
		"related_entity_id": relatedEntityID,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepositoryImpl) CountByRecipient(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient_id": recipientID})
}

func (r *NotificationRepositoryImpl) CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"recipient_id": recipientID,
		"status":       StatusUnread,
	})
}

func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) (bool, error) {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "recipient_id": recipientID, "status": StatusUnread},
		bson.M{"$set": bson.M{"status": StatusRead, "read_at": now}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *NotificationRepositoryImpl) MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) error {
	now := time.Now()
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "status": StatusUnread},
		bson.M{"$set": bson.M{"status": StatusRead, "read_at": now}},
	)
	return err
}

func (r *NotificationRepositoryImpl) Archive(ctx context.Context, id, recipientID primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":          id,
			"recipient_id": recipientID,
			"status":       bson.M{"$in": []Status{StatusUnread, StatusRead}},
		},
		bson.M{"$set": bson.M{"status": StatusArchived}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *NotificationRepositoryImpl) Delete(ctx context.Context, id, recipientID primitive.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "recipient_id": recipientID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (r *NotificationRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *NotificationRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "related_entity_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}
