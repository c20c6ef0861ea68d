package user

import (
	"context"

	"go-formflow/internal/common/apperr"
	"go-formflow/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
	ListApprovers(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, actorID string, id string, role Role) error
	// IsApprover backs the approval authorization predicate: approvers
	// and admins may decide any pending step.
	IsApprover(ctx context.Context, userID string) (bool, error)
}

type UserServiceImpl struct {
	Repo  UserRepository
	Audit audit.AuditService
}

func NewUserService(repo UserRepository, auditService audit.AuditService) UserService {
	return &UserServiceImpl{
		Repo:  repo,
		Audit: auditService,
	}
}

func (s *UserServiceImpl) Get(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("user", id)
	}
	u, err := s.Repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user", id)
	}
	return u, nil
}

func (s *UserServiceImpl) List(ctx context.Context) ([]User, error) {
	return s.Repo.List(ctx)
}

func (s *UserServiceImpl) ListApprovers(ctx context.Context) ([]User, error) {
	return s.Repo.ListByRole(ctx, RoleApprover)
}

func (s *UserServiceImpl) UpdateRole(ctx context.Context, actorID string, id string, role Role) error {
	switch role {
	case RoleSubmitter, RoleApprover, RoleAdmin:
	default:
		return apperr.ValidationMsg("role", "unknown role "+string(role))
	}

	target, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.UpdateRole(ctx, target.ID, role); err != nil {
		return err
	}

	_ = s.Audit.Record(ctx, audit.ActionUpdate, audit.EntityUser, id, actorID,
		"Role changed for user "+target.Email+" from "+string(target.Role)+" to "+string(role))
	return nil
}

func (s *UserServiceImpl) IsApprover(ctx context.Context, userID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, nil
	}
	u, err := s.Repo.FindByID(ctx, oid)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}
	return u.Role == RoleApprover || u.Role == RoleAdmin, nil
}
