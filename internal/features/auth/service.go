package auth

import (
	"context"
	"errors"
	"strings"

	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/user"
	"go-formflow/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, *user.User, error)
}

type AuthServiceImpl struct {
	UserRepo user.UserRepository
	Audit    audit.AuditService
}

func NewAuthService(userRepo user.UserRepository, auditService audit.AuditService) AuthService {
	return &AuthServiceImpl{
		UserRepo: userRepo,
		Audit:    auditService,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, errors.New("username, email and password are required")
	}

	existing, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         user.RoleSubmitter,
	}
	if err := s.UserRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, errors.New("invalid credentials")
	}

	token, err := utils.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		return "", nil, err
	}

	_ = s.Audit.Record(ctx, audit.ActionLogin, audit.EntityUser, u.ID.Hex(), u.ID.Hex(), "User logged in successfully")

	return token, u, nil
}
