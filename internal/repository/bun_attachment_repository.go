package repository

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/iamcore/internal/db/bunx"
	"github.com/terraconstructs/iamcore/internal/db/models"
)

// BunAttachmentRepository is the bun-backed AttachmentRepository
// implementation, spanning the three concrete attachment tables
// (user_policies, group_policies, role_policies) that realize the
// abstract Attachment entity of §3.
type BunAttachmentRepository struct {
	db *bun.DB
}

func NewBunAttachmentRepository(db *bun.DB) *BunAttachmentRepository {
	return &BunAttachmentRepository{db: db}
}

func (r *BunAttachmentRepository) AttachToUser(ctx context.Context, userID, policyID string) error {
	link := &models.UserPolicyAttachment{ID: bunx.NewUUIDv7(), UserID: userID, PolicyID: policyID}
	_, err := r.db.NewInsert().Model(link).Exec(ctx)
	if err != nil {
		return fmt.Errorf("attach policy to user: %w", err)
	}
	return nil
}

func (r *BunAttachmentRepository) DetachFromUser(ctx context.Context, userID, policyID string) error {
	_, err := r.db.NewDelete().Model((*models.UserPolicyAttachment)(nil)).
		Where("user_id = ?", userID).
		Where("policy_id = ?", policyID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("detach policy from user: %w", err)
	}
	return nil
}

func (r *BunAttachmentRepository) PoliciesForUser(ctx context.Context, userID string) ([]*models.Policy, error) {
	var policies []*models.Policy
	err := r.db.NewSelect().Model(&policies).
		Join("JOIN user_policies AS up ON up.policy_id = pol.id").
		Where("up.user_id = ?", userID).
		Order("up.attached_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("policies for user: %w", err)
	}
	return policies, nil
}

func (r *BunAttachmentRepository) AttachToGroup(ctx context.Context, groupID, policyID string) error {
	link := &models.GroupPolicyAttachment{ID: bunx.NewUUIDv7(), GroupID: groupID, PolicyID: policyID}
	_, err := r.db.NewInsert().Model(link).Exec(ctx)
	if err != nil {
		return fmt.Errorf("attach policy to group: %w", err)
	}
	return nil
}

func (r *BunAttachmentRepository) DetachFromGroup(ctx context.Context, groupID, policyID string) error {
	_, err := r.db.NewDelete().Model((*models.GroupPolicyAttachment)(nil)).
		Where("group_id = ?", groupID).
		Where("policy_id = ?", policyID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("detach policy from group: %w", err)
	}
	return nil
}

func (r *BunAttachmentRepository) PoliciesForGroup(ctx context.Context, groupID string) ([]*models.Policy, error) {
	var policies []*models.Policy
	err := r.db.NewSelect().Model(&policies).
		Join("JOIN group_policies AS gp ON gp.policy_id = pol.id").
		Where("gp.group_id = ?", groupID).
		Order("gp.attached_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("policies for group: %w", err)
	}
	return policies, nil
}

func (r *BunAttachmentRepository) AttachToRole(ctx context.Context, roleID, policyID string) error {
	link := &models.RolePolicyAttachment{ID: bunx.NewUUIDv7(), RoleID: roleID, PolicyID: policyID}
	_, err := r.db.NewInsert().Model(link).Exec(ctx)
	if err != nil {
		return fmt.Errorf("attach policy to role: %w", err)
	}
	return nil
}

func (r *BunAttachmentRepository) DetachFromRole(ctx context.Context, roleID, policyID string) error {
	_, err := r.db.NewDelete().Model((*models.RolePolicyAttachment)(nil)).
		Where("role_id = ?", roleID).
		Where("policy_id = ?", policyID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("detach policy from role: %w", err)
	}
	return nil
}

func (r *BunAttachmentRepository) PoliciesForRole(ctx context.Context, roleID string) ([]*models.Policy, error) {
	var policies []*models.Policy
	err := r.db.NewSelect().Model(&policies).
		Join("JOIN role_policies AS rp ON rp.policy_id = pol.id").
		Where("rp.role_id = ?", roleID).
		Order("rp.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("policies for role: %w", err)
	}
	return policies, nil
}

func (r *BunAttachmentRepository) PolicyInUse(ctx context.Context, policyID string) (bool, error) {
	userCount, err := r.db.NewSelect().Model((*models.UserPolicyAttachment)(nil)).Where("policy_id = ?", policyID).Count(ctx)
	if err != nil {
		return false, fmt.Errorf("check user attachments: %w", err)
	}
	if userCount > 0 {
		return true, nil
	}
	groupCount, err := r.db.NewSelect().Model((*models.GroupPolicyAttachment)(nil)).Where("policy_id = ?", policyID).Count(ctx)
	if err != nil {
		return false, fmt.Errorf("check group attachments: %w", err)
	}
	if groupCount > 0 {
		return true, nil
	}
	roleCount, err := r.db.NewSelect().Model((*models.RolePolicyAttachment)(nil)).Where("policy_id = ?", policyID).Count(ctx)
	if err != nil {
		return false, fmt.Errorf("check role attachments: %w", err)
	}
	return roleCount > 0, nil
}
