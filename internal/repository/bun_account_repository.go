package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/db/models"
)

// BunAccountRepository is the bun-backed AccountRepository implementation.
type BunAccountRepository struct {
	db *bun.DB
}

func NewBunAccountRepository(db *bun.DB) *BunAccountRepository {
	return &BunAccountRepository{db: db}
}

func (r *BunAccountRepository) Create(ctx context.Context, account *models.Account) error {
	_, err := r.db.NewInsert().Model(account).Exec(ctx)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *BunAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	account := new(models.Account)
	err := r.db.NewSelect().Model(account).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFoundf("account %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return account, nil
}

func (r *BunAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	account := new(models.Account)
	err := r.db.NewSelect().Model(account).Where("email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFoundf("account with email %s not found", email)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return account, nil
}

func (r *BunAccountRepository) Update(ctx context.Context, account *models.Account) error {
	_, err := r.db.NewUpdate().Model(account).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

func (r *BunAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	var accounts []*models.Account
	if err := r.db.NewSelect().Model(&accounts).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}
