package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/iamcore/internal/cache"
	"github.com/terraconstructs/iamcore/internal/db/models"
	"github.com/terraconstructs/iamcore/internal/legacypolicy"
)

type fakePermissionRepo struct {
	byPolicy map[string][]*models.Permission
}

func (f *fakePermissionRepo) Create(ctx context.Context, perm *models.Permission) error { return nil }
func (f *fakePermissionRepo) GetByID(ctx context.Context, id string) (*models.Permission, error) {
	return nil, nil
}
func (f *fakePermissionRepo) ListByPolicy(ctx context.Context, policyID string) ([]*models.Permission, error) {
	return f.byPolicy[policyID], nil
}
func (f *fakePermissionRepo) AttachToPolicy(ctx context.Context, link *models.PolicyPermission) error {
	return nil
}
func (f *fakePermissionRepo) DetachFromPolicy(ctx context.Context, policyID, permissionID string) error {
	return nil
}

type fakeGroupMembershipRepo struct {
	groups []*models.Group
}

func (f *fakeGroupMembershipRepo) Add(ctx context.Context, m *models.GroupMembership) error { return nil }
func (f *fakeGroupMembershipRepo) Remove(ctx context.Context, userID, groupID string) error { return nil }
func (f *fakeGroupMembershipRepo) GroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return f.groups, nil
}
func (f *fakeGroupMembershipRepo) MembersOfGroup(ctx context.Context, groupID string) ([]*models.User, error) {
	return nil, nil
}

type fakeUserRoleAssignmentRepo struct {
	roles []*models.Role
}

func (f *fakeUserRoleAssignmentRepo) Assign(ctx context.Context, a *models.UserRoleAssignment) error {
	return nil
}
func (f *fakeUserRoleAssignmentRepo) Unassign(ctx context.Context, userID, roleID string) error {
	return nil
}
func (f *fakeUserRoleAssignmentRepo) RolesForUser(ctx context.Context, userID string) ([]*models.Role, error) {
	return f.roles, nil
}

type fakeAttachmentRepo struct {
	userPolicies  map[string][]*models.Policy
	groupPolicies map[string][]*models.Policy
	rolePolicies  map[string][]*models.Policy
}

func (f *fakeAttachmentRepo) AttachToUser(ctx context.Context, userID, policyID string) error { return nil }
func (f *fakeAttachmentRepo) DetachFromUser(ctx context.Context, userID, policyID string) error {
	return nil
}
func (f *fakeAttachmentRepo) PoliciesForUser(ctx context.Context, userID string) ([]*models.Policy, error) {
	return f.userPolicies[userID], nil
}
func (f *fakeAttachmentRepo) AttachToGroup(ctx context.Context, groupID, policyID string) error {
	return nil
}
func (f *fakeAttachmentRepo) DetachFromGroup(ctx context.Context, groupID, policyID string) error {
	return nil
}
func (f *fakeAttachmentRepo) PoliciesForGroup(ctx context.Context, groupID string) ([]*models.Policy, error) {
	return f.groupPolicies[groupID], nil
}
func (f *fakeAttachmentRepo) AttachToRole(ctx context.Context, roleID, policyID string) error {
	return nil
}
func (f *fakeAttachmentRepo) DetachFromRole(ctx context.Context, roleID, policyID string) error {
	return nil
}
func (f *fakeAttachmentRepo) PoliciesForRole(ctx context.Context, roleID string) ([]*models.Policy, error) {
	return f.rolePolicies[roleID], nil
}
func (f *fakeAttachmentRepo) PolicyInUse(ctx context.Context, policyID string) (bool, error) {
	return false, nil
}

func TestPolicyResolver_ResolveOrderAndDedup(t *testing.T) {
	directPolicy := &models.Policy{ID: "p-direct", Name: "direct"}
	groupPolicy := &models.Policy{ID: "p-group", Name: "group"}
	rolePolicy := &models.Policy{ID: "p-role", Name: "role"}
	sharedPolicy := &models.Policy{ID: "p-direct", Name: "direct-dup"}

	attachments := &fakeAttachmentRepo{
		userPolicies:  map[string][]*models.Policy{"u1": {directPolicy}},
		groupPolicies: map[string][]*models.Policy{"g1": {groupPolicy, sharedPolicy}},
		rolePolicies:  map[string][]*models.Policy{"r1": {rolePolicy}},
	}
	membership := cache.NewMembershipCache(
		&fakeGroupMembershipRepo{groups: []*models.Group{{ID: "g1", Name: "engineers"}}},
		&fakeUserRoleAssignmentRepo{roles: []*models.Role{{ID: "r1", Name: "deployer"}}},
		time.Minute,
	)
	r := NewPolicyResolver(attachments, membership, nil)

	policies, err := r.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, policies, 3)
	assert.Equal(t, "p-direct", policies[0].ID)
	assert.Equal(t, "p-group", policies[1].ID)
	assert.Equal(t, "p-role", policies[2].ID)
}

func TestPolicyResolver_ExtraRoleIDsFromSession(t *testing.T) {
	sessionRolePolicy := &models.Policy{ID: "p-session-role"}
	attachments := &fakeAttachmentRepo{
		rolePolicies: map[string][]*models.Policy{"r-session": {sessionRolePolicy}},
	}
	membership := cache.NewMembershipCache(
		&fakeGroupMembershipRepo{},
		&fakeUserRoleAssignmentRepo{},
		time.Minute,
	)
	r := NewPolicyResolver(attachments, membership, nil)

	policies, err := r.Resolve(context.Background(), "u1", "r-session")
	require.NoError(t, err)
	require.Len(t, policies, 1)
	assert.Equal(t, "p-session-role", policies[0].ID)
}

func TestPolicyResolver_NoAttachmentsReturnsEmpty(t *testing.T) {
	attachments := &fakeAttachmentRepo{}
	membership := cache.NewMembershipCache(&fakeGroupMembershipRepo{}, &fakeUserRoleAssignmentRepo{}, time.Minute)
	r := NewPolicyResolver(attachments, membership, nil)

	policies, err := r.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, policies)
}

func TestPolicyResolver_DocumentParsesAndCaches(t *testing.T) {
	attachments := &fakeAttachmentRepo{}
	membership := cache.NewMembershipCache(&fakeGroupMembershipRepo{}, &fakeUserRoleAssignmentRepo{}, time.Minute)
	docCache, err := cache.NewPolicyDocumentCache(4)
	require.NoError(t, err)
	r := NewPolicyResolver(attachments, membership, docCache)

	policy := &models.Policy{
		ID:             "p1",
		PolicyDocument: []byte(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":["s3:GetObject"],"Resource":["*"]}]}`),
	}
	doc, err := r.Document(policy)
	require.NoError(t, err)
	require.Len(t, doc.Statement, 1)

	doc2, err := r.Document(policy)
	require.NoError(t, err)
	assert.Same(t, doc, doc2)
}

func TestPolicyResolver_DocumentWithLegacyMergesPermissionRows(t *testing.T) {
	attachments := &fakeAttachmentRepo{}
	membership := cache.NewMembershipCache(&fakeGroupMembershipRepo{}, &fakeUserRoleAssignmentRepo{}, time.Minute)
	permissions := &fakePermissionRepo{byPolicy: map[string][]*models.Permission{
		"p1": {{ID: "perm1", Service: "ec2", Action: "StartInstances", ResourcePattern: "*", Effect: "Allow"}},
	}}
	r := NewPolicyResolver(attachments, membership, nil).WithLegacyCompiler(legacypolicy.NewCompiler(permissions))

	policy := &models.Policy{
		ID:             "p1",
		PolicyDocument: []byte(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":["s3:GetObject"],"Resource":["*"]}]}`),
	}

	merged, err := r.DocumentWithLegacy(context.Background(), policy)
	require.NoError(t, err)
	require.Len(t, merged.Statement, 2)
	assert.Equal(t, "s3:GetObject", merged.Statement[0].Action[0])
	assert.Equal(t, "ec2:StartInstances", merged.Statement[1].Action[0])

	plain, err := r.Document(policy)
	require.NoError(t, err)
	assert.Len(t, plain.Statement, 1, "plain Document must not carry legacy statements")
}
