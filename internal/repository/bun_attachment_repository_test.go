package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/iamcore/internal/db/bunx"
	"github.com/terraconstructs/iamcore/internal/db/models"
)

func TestBunAttachmentRepository_UserAttachments(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewBunAccountRepository(db)
	users := NewBunUserRepository(db)
	policies := NewBunPolicyRepository(db)
	attachments := NewBunAttachmentRepository(db)
	ctx := context.Background()

	account := mustCreateAccount(t, accounts)
	user := &models.User{ID: bunx.NewUUIDv7(), AccountID: account.ID, Username: "alice", PasswordHash: "h", Status: models.UserActive}
	require.NoError(t, users.Create(ctx, user))
	policy := &models.Policy{
		ID: bunx.NewUUIDv7(), AccountID: account.ID, Name: "s3-read", Path: "/",
		PolicyDocument: mustAllowDoc(t), PolicyType: models.PolicyTypeCustom, IsAttachable: true,
	}
	require.NoError(t, policies.Create(ctx, policy))

	require.NoError(t, attachments.AttachToUser(ctx, user.ID, policy.ID))

	inUse, err := attachments.PolicyInUse(ctx, policy.ID)
	require.NoError(t, err)
	assert.True(t, inUse)

	list, err := attachments.PoliciesForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, policy.ID, list[0].ID)

	require.NoError(t, attachments.DetachFromUser(ctx, user.ID, policy.ID))
	inUse, err = attachments.PolicyInUse(ctx, policy.ID)
	require.NoError(t, err)
	assert.False(t, inUse)
}

func TestBunAttachmentRepository_GroupAttachments(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewBunAccountRepository(db)
	groups := NewBunGroupRepository(db)
	policies := NewBunPolicyRepository(db)
	attachments := NewBunAttachmentRepository(db)
	ctx := context.Background()

	account := mustCreateAccount(t, accounts)
	group := &models.Group{ID: bunx.NewUUIDv7(), AccountID: account.ID, Name: "engineers", Path: "/"}
	require.NoError(t, groups.Create(ctx, group))
	policy := &models.Policy{
		ID: bunx.NewUUIDv7(), AccountID: account.ID, Name: "s3-read", Path: "/",
		PolicyDocument: mustAllowDoc(t), PolicyType: models.PolicyTypeCustom, IsAttachable: true,
	}
	require.NoError(t, policies.Create(ctx, policy))

	require.NoError(t, attachments.AttachToGroup(ctx, group.ID, policy.ID))
	list, err := attachments.PoliciesForGroup(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, attachments.DetachFromGroup(ctx, group.ID, policy.ID))
	list, err = attachments.PoliciesForGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, list, 0)
}

func TestBunAttachmentRepository_RoleAttachments(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewBunAccountRepository(db)
	roles := NewBunRoleRepository(db)
	policies := NewBunPolicyRepository(db)
	attachments := NewBunAttachmentRepository(db)
	ctx := context.Background()

	account := mustCreateAccount(t, accounts)
	role := &models.Role{
		ID: bunx.NewUUIDv7(), AccountID: account.ID, Name: "deployer", Path: "/",
		AssumeRolePolicyDocument: mustTrustDoc(t), MaxSessionDuration: 3600,
	}
	require.NoError(t, roles.Create(ctx, role))
	policy := &models.Policy{
		ID: bunx.NewUUIDv7(), AccountID: account.ID, Name: "s3-read", Path: "/",
		PolicyDocument: mustAllowDoc(t), PolicyType: models.PolicyTypeCustom, IsAttachable: true,
	}
	require.NoError(t, policies.Create(ctx, policy))

	require.NoError(t, attachments.AttachToRole(ctx, role.ID, policy.ID))
	list, err := attachments.PoliciesForRole(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	inUse, err := attachments.PolicyInUse(ctx, policy.ID)
	require.NoError(t, err)
	assert.True(t, inUse)

	require.NoError(t, attachments.DetachFromRole(ctx, role.ID, policy.ID))
	inUse, err = attachments.PolicyInUse(ctx, policy.ID)
	require.NoError(t, err)
	assert.False(t, inUse)
}
