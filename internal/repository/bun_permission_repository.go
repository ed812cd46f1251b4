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

// BunPermissionRepository is the bun-backed PermissionRepository
// implementation, backing the legacy granular row model (§4.12).
type BunPermissionRepository struct {
	db *bun.DB
}

func NewBunPermissionRepository(db *bun.DB) *BunPermissionRepository {
	return &BunPermissionRepository{db: db}
}

func (r *BunPermissionRepository) Create(ctx context.Context, perm *models.Permission) error {
	_, err := r.db.NewInsert().Model(perm).Exec(ctx)
	if err != nil {
		return fmt.Errorf("create permission: %w", err)
	}
	return nil
}

func (r *BunPermissionRepository) GetByID(ctx context.Context, id string) (*models.Permission, error) {
	perm := new(models.Permission)
	err := r.db.NewSelect().Model(perm).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFoundf("permission %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get permission by id: %w", err)
	}
	return perm, nil
}

func (r *BunPermissionRepository) ListByPolicy(ctx context.Context, policyID string) ([]*models.Permission, error) {
	var perms []*models.Permission
	err := r.db.NewSelect().Model(&perms).
		Join("JOIN policy_permissions AS pp ON pp.permission_id = perm.id").
		Where("pp.policy_id = ?", policyID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list permissions by policy: %w", err)
	}
	return perms, nil
}

func (r *BunPermissionRepository) AttachToPolicy(ctx context.Context, link *models.PolicyPermission) error {
	_, err := r.db.NewInsert().Model(link).Exec(ctx)
	if err != nil {
		return fmt.Errorf("attach permission to policy: %w", err)
	}
	return nil
}

func (r *BunPermissionRepository) DetachFromPolicy(ctx context.Context, policyID, permissionID string) error {
	_, err := r.db.NewDelete().Model((*models.PolicyPermission)(nil)).
		Where("policy_id = ?", policyID).
		Where("permission_id = ?", permissionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("detach permission from policy: %w", err)
	}
	return nil
}
