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

// BunPolicyRepository is the bun-backed PolicyRepository implementation.
type BunPolicyRepository struct {
	db *bun.DB
}

func NewBunPolicyRepository(db *bun.DB) *BunPolicyRepository {
	return &BunPolicyRepository{db: db}
}

func (r *BunPolicyRepository) Create(ctx context.Context, policy *models.Policy) error {
	_, err := r.db.NewInsert().Model(policy).Exec(ctx)
	if err != nil {
		return fmt.Errorf("create policy: %w", err)
	}
	return nil
}

func (r *BunPolicyRepository) GetByID(ctx context.Context, id string) (*models.Policy, error) {
	policy := new(models.Policy)
	err := r.db.NewSelect().Model(policy).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFoundf("policy %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get policy by id: %w", err)
	}
	return policy, nil
}

func (r *BunPolicyRepository) GetByName(ctx context.Context, accountID, name string) (*models.Policy, error) {
	policy := new(models.Policy)
	q := r.db.NewSelect().Model(policy).Where("name = ?", name)
	if accountID == "" {
		q = q.Where("account_id IS NULL")
	} else {
		q = q.Where("account_id = ?", accountID)
	}
	err := q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFoundf("policy %s not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("get policy by name: %w", err)
	}
	return policy, nil
}

func (r *BunPolicyRepository) Update(ctx context.Context, policy *models.Policy) error {
	if policy.PolicyType == models.PolicyTypeSystem {
		return apierr.Conflictf("system policy %s is immutable", policy.Name)
	}
	_, err := r.db.NewUpdate().Model(policy).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update policy: %w", err)
	}
	return nil
}

func (r *BunPolicyRepository) Delete(ctx context.Context, id string) error {
	policy, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if policy.PolicyType == models.PolicyTypeSystem {
		return apierr.Conflictf("system policy %s is immutable", policy.Name)
	}
	_, err = r.db.NewDelete().Model((*models.Policy)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	return nil
}

func (r *BunPolicyRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Policy, error) {
	var policies []*models.Policy
	q := r.db.NewSelect().Model(&policies)
	if accountID == "" {
		q = q.Where("account_id IS NULL")
	} else {
		q = q.Where("account_id = ? OR account_id IS NULL", accountID)
	}
	if err := q.Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list policies by account: %w", err)
	}
	return policies, nil
}

func (r *BunPolicyRepository) ListByPathPrefix(ctx context.Context, accountID, prefix string) ([]*models.Policy, error) {
	var policies []*models.Policy
	err := r.db.NewSelect().Model(&policies).
		Where("account_id = ?", accountID).
		Where("path LIKE ?", prefix+"%").
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list policies by path prefix: %w", err)
	}
	return policies, nil
}
