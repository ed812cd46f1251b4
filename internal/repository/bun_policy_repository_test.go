package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/db/bunx"
	"github.com/terraconstructs/iamcore/internal/db/models"
)

func mustAllowDoc(t *testing.T) json.RawMessage {
	t.Helper()
	return json.RawMessage(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":["s3:GetObject"],"Resource":["*"]}]}`)
}

func TestBunPolicyRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewBunAccountRepository(db)
	policies := NewBunPolicyRepository(db)
	ctx := context.Background()

	account := mustCreateAccount(t, accounts)
	policy := &models.Policy{
		ID: bunx.NewUUIDv7(), AccountID: account.ID, Name: "s3-read", Path: "/",
		PolicyDocument: mustAllowDoc(t), PolicyType: models.PolicyTypeCustom, IsAttachable: true,
	}
	require.NoError(t, policies.Create(ctx, policy))

	fetched, err := policies.GetByID(ctx, policy.ID)
	require.NoError(t, err)
	assert.Equal(t, "s3-read", fetched.Name)

	byName, err := policies.GetByName(ctx, account.ID, "s3-read")
	require.NoError(t, err)
	assert.Equal(t, policy.ID, byName.ID)
}

func TestBunPolicyRepository_SystemPolicyImmutable(t *testing.T) {
	db := setupTestDB(t)
	policies := NewBunPolicyRepository(db)
	ctx := context.Background()

	policy := &models.Policy{
		ID: bunx.NewUUIDv7(), Name: "AdministratorAccess", Path: "/",
		PolicyDocument: mustAllowDoc(t), PolicyType: models.PolicyTypeSystem, IsAttachable: true,
	}
	require.NoError(t, policies.Create(ctx, policy))

	policy.Description = "changed"
	err := policies.Update(ctx, policy)
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.KindConflict))

	err = policies.Delete(ctx, policy.ID)
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.KindConflict))
}

func TestBunPolicyRepository_ListByPathPrefix(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewBunAccountRepository(db)
	policies := NewBunPolicyRepository(db)
	ctx := context.Background()

	account := mustCreateAccount(t, accounts)
	require.NoError(t, policies.Create(ctx, &models.Policy{
		ID: bunx.NewUUIDv7(), AccountID: account.ID, Name: "team-a-read", Path: "/team-a/",
		PolicyDocument: mustAllowDoc(t), PolicyType: models.PolicyTypeCustom, IsAttachable: true,
	}))
	require.NoError(t, policies.Create(ctx, &models.Policy{
		ID: bunx.NewUUIDv7(), AccountID: account.ID, Name: "team-b-read", Path: "/team-b/",
		PolicyDocument: mustAllowDoc(t), PolicyType: models.PolicyTypeCustom, IsAttachable: true,
	}))

	list, err := policies.ListByPathPrefix(ctx, account.ID, "/team-a/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "team-a-read", list[0].Name)
}

func TestBunPolicyRepository_ListByAccountIncludesSystem(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewBunAccountRepository(db)
	policies := NewBunPolicyRepository(db)
	ctx := context.Background()

	account := mustCreateAccount(t, accounts)
	require.NoError(t, policies.Create(ctx, &models.Policy{
		ID: bunx.NewUUIDv7(), Name: "AdministratorAccess", Path: "/",
		PolicyDocument: mustAllowDoc(t), PolicyType: models.PolicyTypeSystem, IsAttachable: true,
	}))
	require.NoError(t, policies.Create(ctx, &models.Policy{
		ID: bunx.NewUUIDv7(), AccountID: account.ID, Name: "s3-read", Path: "/",
		PolicyDocument: mustAllowDoc(t), PolicyType: models.PolicyTypeCustom, IsAttachable: true,
	}))

	list, err := policies.ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
