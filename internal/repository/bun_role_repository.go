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

// BunRoleRepository is the bun-backed RoleRepository implementation.
type BunRoleRepository struct {
	db *bun.DB
}

func NewBunRoleRepository(db *bun.DB) *BunRoleRepository {
	return &BunRoleRepository{db: db}
}

func (r *BunRoleRepository) Create(ctx context.Context, role *models.Role) error {
	_, err := r.db.NewInsert().Model(role).Exec(ctx)
	if err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

func (r *BunRoleRepository) GetByID(ctx context.Context, id string) (*models.Role, error) {
	role := new(models.Role)
	err := r.db.NewSelect().Model(role).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFoundf("role %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get role by id: %w", err)
	}
	return role, nil
}

func (r *BunRoleRepository) GetByName(ctx context.Context, accountID, name string) (*models.Role, error) {
	role := new(models.Role)
	q := r.db.NewSelect().Model(role).Where("name = ?", name)
	if accountID == "" {
		q = q.Where("account_id IS NULL")
	} else {
		q = q.Where("account_id = ?", accountID)
	}
	err := q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFoundf("role %s not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("get role by name: %w", err)
	}
	return role, nil
}

func (r *BunRoleRepository) Update(ctx context.Context, role *models.Role) error {
	if role.IsSystem() {
		return apierr.Conflictf("system role %s is immutable", role.Name)
	}
	_, err := r.db.NewUpdate().Model(role).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

func (r *BunRoleRepository) Delete(ctx context.Context, id string) error {
	role, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem() {
		return apierr.Conflictf("system role %s is immutable", role.Name)
	}
	_, err = r.db.NewDelete().Model((*models.Role)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

func (r *BunRoleRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Role, error) {
	var roles []*models.Role
	q := r.db.NewSelect().Model(&roles)
	if accountID == "" {
		q = q.Where("account_id IS NULL")
	} else {
		q = q.Where("account_id = ? OR account_id IS NULL", accountID)
	}
	if err := q.Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list roles by account: %w", err)
	}
	return roles, nil
}

// BunUserRoleAssignmentRepository is the bun-backed
// UserRoleAssignmentRepository implementation.
type BunUserRoleAssignmentRepository struct {
	db *bun.DB
}

func NewBunUserRoleAssignmentRepository(db *bun.DB) *BunUserRoleAssignmentRepository {
	return &BunUserRoleAssignmentRepository{db: db}
}

func (r *BunUserRoleAssignmentRepository) Assign(ctx context.Context, a *models.UserRoleAssignment) error {
	_, err := r.db.NewInsert().Model(a).Exec(ctx)
	if err != nil {
		return fmt.Errorf("assign user role: %w", err)
	}
	return nil
}

func (r *BunUserRoleAssignmentRepository) Unassign(ctx context.Context, userID, roleID string) error {
	_, err := r.db.NewDelete().Model((*models.UserRoleAssignment)(nil)).
		Where("user_id = ?", userID).
		Where("role_id = ?", roleID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("unassign user role: %w", err)
	}
	return nil
}

func (r *BunUserRoleAssignmentRepository) RolesForUser(ctx context.Context, userID string) ([]*models.Role, error) {
	var roles []*models.Role
	err := r.db.NewSelect().Model(&roles).
		Join("JOIN user_roles AS ur ON ur.role_id = rl.id").
		Where("ur.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("roles for user: %w", err)
	}
	return roles, nil
}
