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

// BunUserRepository is the bun-backed UserRepository implementation.
type BunUserRepository struct {
	db *bun.DB
}

func NewBunUserRepository(db *bun.DB) *BunUserRepository {
	return &BunUserRepository{db: db}
}

func (r *BunUserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *BunUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFoundf("user %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *BunUserRepository) GetByUsername(ctx context.Context, accountID, username string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().Model(user).
		Where("account_id = ?", accountID).
		Where("username = ?", username).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFoundf("user %s not found in account %s", username, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

func (r *BunUserRepository) GetRootUser(ctx context.Context, accountID string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().Model(user).
		Where("account_id = ?", accountID).
		Where("is_root = ?", true).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFoundf("no root user for account %s", accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("get root user: %w", err)
	}
	return user, nil
}

func (r *BunUserRepository) Update(ctx context.Context, user *models.User) error {
	_, err := r.db.NewUpdate().Model(user).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *BunUserRepository) Delete(ctx context.Context, id string) error {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsRoot {
		return apierr.Conflictf("root user cannot be deleted")
	}
	_, err = r.db.NewDelete().Model((*models.User)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *BunUserRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.User, error) {
	var users []*models.User
	err := r.db.NewSelect().Model(&users).Where("account_id = ?", accountID).Order("created_at ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users by account: %w", err)
	}
	return users, nil
}
