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

// BunGroupRepository is the bun-backed GroupRepository implementation.
type BunGroupRepository struct {
	db *bun.DB
}

func NewBunGroupRepository(db *bun.DB) *BunGroupRepository {
	return &BunGroupRepository{db: db}
}

func (r *BunGroupRepository) Create(ctx context.Context, group *models.Group) error {
	_, err := r.db.NewInsert().Model(group).Exec(ctx)
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

func (r *BunGroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	group := new(models.Group)
	err := r.db.NewSelect().Model(group).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFoundf("group %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get group by id: %w", err)
	}
	return group, nil
}

func (r *BunGroupRepository) GetByName(ctx context.Context, accountID, name string) (*models.Group, error) {
	group := new(models.Group)
	err := r.db.NewSelect().Model(group).
		Where("account_id = ?", accountID).
		Where("name = ?", name).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFoundf("group %s not found in account %s", name, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("get group by name: %w", err)
	}
	return group, nil
}

func (r *BunGroupRepository) Update(ctx context.Context, group *models.Group) error {
	_, err := r.db.NewUpdate().Model(group).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

func (r *BunGroupRepository) Delete(ctx context.Context, id string) error {
	var count int
	count, err := r.db.NewSelect().Model((*models.GroupMembership)(nil)).Where("group_id = ?", id).Count(ctx)
	if err != nil {
		return fmt.Errorf("check group membership before delete: %w", err)
	}
	if count > 0 {
		return apierr.ResourceInUsef("group %s still has %d member(s)", id, count)
	}
	_, err = r.db.NewDelete().Model((*models.Group)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

func (r *BunGroupRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.NewSelect().Model(&groups).Where("account_id = ?", accountID).Order("created_at ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups by account: %w", err)
	}
	return groups, nil
}

// BunGroupMembershipRepository is the bun-backed GroupMembershipRepository
// implementation.
type BunGroupMembershipRepository struct {
	db *bun.DB
}

func NewBunGroupMembershipRepository(db *bun.DB) *BunGroupMembershipRepository {
	return &BunGroupMembershipRepository{db: db}
}

func (r *BunGroupMembershipRepository) Add(ctx context.Context, m *models.GroupMembership) error {
	_, err := r.db.NewInsert().Model(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("add group membership: %w", err)
	}
	return nil
}

func (r *BunGroupMembershipRepository) Remove(ctx context.Context, userID, groupID string) error {
	_, err := r.db.NewDelete().Model((*models.GroupMembership)(nil)).
		Where("user_id = ?", userID).
		Where("group_id = ?", groupID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("remove group membership: %w", err)
	}
	return nil
}

func (r *BunGroupMembershipRepository) GroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.NewSelect().Model(&groups).
		Join("JOIN user_groups AS ug ON ug.group_id = grp.id").
		Where("ug.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("groups for user: %w", err)
	}
	return groups, nil
}

func (r *BunGroupMembershipRepository) MembersOfGroup(ctx context.Context, groupID string) ([]*models.User, error) {
	var users []*models.User
	err := r.db.NewSelect().Model(&users).
		Join("JOIN user_groups AS ug ON ug.user_id = usr.id").
		Where("ug.group_id = ?", groupID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("members of group: %w", err)
	}
	return users, nil
}
