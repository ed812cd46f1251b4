package service

import (
	"context"
	"fmt"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/db/bunx"
	"github.com/terraconstructs/iamcore/internal/db/models"
	"github.com/terraconstructs/iamcore/internal/repository"
)

// AccountService manages the multi-tenant isolation boundary (§3 Account).
type AccountService struct {
	accounts repository.AccountRepository
}

// NewAccountService builds an AccountService.
func NewAccountService(accounts repository.AccountRepository) *AccountService {
	return &AccountService{accounts: accounts}
}

// CreateAccount validates and persists a new Account.
func (s *AccountService) CreateAccount(ctx context.Context, name, email string) (*models.Account, error) {
	if name == "" {
		return nil, apierr.Validationf("Name", "name is required")
	}
	if email == "" {
		return nil, apierr.Validationf("Email", "email is required")
	}
	account := &models.Account{
		ID:     bunx.NewUUIDv7(),
		Name:   name,
		Email:  email,
		Status: models.AccountActive,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// GetAccount fetches an Account by ID.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// ListAccounts returns every Account.
func (s *AccountService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	return s.accounts.List(ctx)
}

// SuspendAccount sets an Account's status to suspended. STSService.Login
// and AssumeRole do not read the account status, so principals under a
// suspended account can still authenticate; there is no reactivate
// operation.
func (s *AccountService) SuspendAccount(ctx context.Context, id string) error {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	account.Status = models.AccountSuspended
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("suspend account: %w", err)
	}
	return nil
}
