package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditService interface {
	// Record is the one-way write path used by the rest of the system.
	Record(ctx context.Context, action Action, entityType EntityType, entityID, actorID, details string) error
	List(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]Entry, error)
}

type AuditServiceImpl struct {
	Repo AuditRepository
}

func NewAuditService(repo AuditRepository) AuditService {
	return &AuditServiceImpl{Repo: repo}
}

func (s *AuditServiceImpl) Record(ctx context.Context, action Action, entityType EntityType, entityID, actorID, details string) error {
	if actorID == "" {
		actorID = "system"
	}

	entry := Entry{
		ID:         primitive.NewObjectID(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Details:    details,
		CreatedAt:  time.Now(),
	}

	return s.Repo.Create(ctx, entry)
}

func (s *AuditServiceImpl) List(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]Entry, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit
	return s.Repo.List(ctx, filters, limit, offset)
}
