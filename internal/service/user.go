package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/db/bunx"
	"github.com/terraconstructs/iamcore/internal/db/models"
	"github.com/terraconstructs/iamcore/internal/repository"
)

// UserService manages Users (§3) within an Account.
type UserService struct {
	users repository.UserRepository
}

// NewUserService builds a UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// CreateUser hashes password with bcrypt and persists a new User. At most
// one User per Account may have IsRoot set; callers are responsible for
// enforcing that invariant at account bootstrap time.
func (s *UserService) CreateUser(ctx context.Context, accountID, username, email, password string, isRoot bool) (*models.User, error) {
	if username == "" {
		return nil, apierr.Validationf("Username", "username is required")
	}
	if password == "" {
		return nil, apierr.Validationf("Password", "password is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.Internalf(err, "hash password")
	}
	user := &models.User{
		ID:           bunx.NewUUIDv7(),
		AccountID:    accountID,
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		IsRoot:       isRoot,
		Status:       models.UserActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetUser fetches a User by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers lists every User in an Account.
func (s *UserService) ListUsers(ctx context.Context, accountID string) ([]*models.User, error) {
	return s.users.ListByAccount(ctx, accountID)
}

// DisableUser marks a User disabled, rejecting future Login/AssumeRole
// calls for it without revoking already-issued credentials — pair with
// STSService.RevokeAll to invalidate those too.
func (s *UserService) DisableUser(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.Status = models.UserDisabled
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("disable user: %w", err)
	}
	return nil
}

// DeleteUser removes a User. The repository refuses to delete an account's
// root user (apierr.KindConflict).
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
