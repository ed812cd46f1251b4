package gate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/cache"
	"github.com/terraconstructs/iamcore/internal/db/models"
	"github.com/terraconstructs/iamcore/internal/decision"
	"github.com/terraconstructs/iamcore/internal/resolver"
	"github.com/terraconstructs/iamcore/internal/revocation"
)

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
	userPolicies map[string][]*models.Policy
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
	return nil, nil
}
func (f *fakeAttachmentRepo) AttachToRole(ctx context.Context, roleID, policyID string) error {
	return nil
}
func (f *fakeAttachmentRepo) DetachFromRole(ctx context.Context, roleID, policyID string) error {
	return nil
}
func (f *fakeAttachmentRepo) PoliciesForRole(ctx context.Context, roleID string) ([]*models.Policy, error) {
	return nil, nil
}
func (f *fakeAttachmentRepo) PolicyInUse(ctx context.Context, policyID string) (bool, error) {
	return false, nil
}

type fakeRoleRepo struct {
	byID map[string]*models.Role
}

func (f *fakeRoleRepo) Create(ctx context.Context, role *models.Role) error { return nil }
func (f *fakeRoleRepo) GetByID(ctx context.Context, id string) (*models.Role, error) {
	role, ok := f.byID[id]
	if !ok {
		return nil, apierr.NotFoundf("role %s not found", id)
	}
	return role, nil
}
func (f *fakeRoleRepo) GetByName(ctx context.Context, accountID, name string) (*models.Role, error) {
	return nil, apierr.NotFoundf("not found")
}
func (f *fakeRoleRepo) Update(ctx context.Context, role *models.Role) error { return nil }
func (f *fakeRoleRepo) Delete(ctx context.Context, id string) error         { return nil }
func (f *fakeRoleRepo) ListByAccount(ctx context.Context, accountID string) ([]*models.Role, error) {
	return nil, nil
}

type fakeRevokedTokenRepo struct {
	rows map[string]*models.RevokedToken
}

func newFakeRevokedTokenRepo() *fakeRevokedTokenRepo {
	return &fakeRevokedTokenRepo{rows: make(map[string]*models.RevokedToken)}
}
func (f *fakeRevokedTokenRepo) Upsert(ctx context.Context, row *models.RevokedToken) error {
	f.rows[row.TokenHash] = row
	return nil
}
func (f *fakeRevokedTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RevokedToken, error) {
	row, ok := f.rows[tokenHash]
	if !ok {
		return nil, apierr.NotFoundf("not found")
	}
	return row, nil
}
func (f *fakeRevokedTokenRepo) DeleteExpired(ctx context.Context) (int, error) { return 0, nil }

func allowPolicy(id, action, resource string) *models.Policy {
	doc := []byte(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":["` + action + `"],"Resource":["` + resource + `"]}]}`)
	return &models.Policy{ID: id, Name: id, PolicyDocument: doc}
}

func denyPolicy(id, action, resource string) *models.Policy {
	doc := []byte(`{"Version":"2012-10-17","Statement":[{"Effect":"Deny","Action":["` + action + `"],"Resource":["` + resource + `"]}]}`)
	return &models.Policy{ID: id, Name: id, PolicyDocument: doc}
}

func newTestGate(userPolicies map[string][]*models.Policy, roles map[string]*models.Role) *Gate {
	attachments := &fakeAttachmentRepo{userPolicies: userPolicies}
	membership := cache.NewMembershipCache(&fakeGroupMembershipRepo{}, &fakeUserRoleAssignmentRepo{}, time.Minute)
	res := resolver.NewPolicyResolver(attachments, membership, nil)
	rev := revocation.NewStore(newFakeRevokedTokenRepo(), 50*time.Millisecond)
	roleRepo := &fakeRoleRepo{byID: roles}
	return New(rev, membership, roleRepo, res)
}

func TestGate_AllowMatchingPolicy(t *testing.T) {
	g := newTestGate(map[string][]*models.Policy{
		"u1": {allowPolicy("p1", "s3:GetObject", "arn:aws:s3:::bucket/*")},
	}, nil)

	outcome, err := g.Authorize(context.Background(), Request{
		PrincipalID: "u1", AccountID: "acct1",
		Action: "s3:GetObject", Resource: "arn:aws:s3:::bucket/photo.png",
	})
	require.NoError(t, err)
	assert.Equal(t, decision.Allow, outcome.Decision)
	require.Len(t, outcome.MatchedPolicies, 1)
	assert.Equal(t, "p1", outcome.MatchedPolicies[0].PolicyID)
}

func TestGate_ExplicitDenyWins(t *testing.T) {
	g := newTestGate(map[string][]*models.Policy{
		"u1": {
			allowPolicy("p1", "s3:GetObject", "arn:aws:s3:::bucket/*"),
			denyPolicy("p2", "s3:*", "*"),
		},
	}, nil)

	outcome, err := g.Authorize(context.Background(), Request{
		PrincipalID: "u1", AccountID: "acct1",
		Action: "s3:GetObject", Resource: "arn:aws:s3:::bucket/photo.png",
	})
	require.NoError(t, err)
	assert.Equal(t, decision.Deny, outcome.Decision)
}

func TestGate_ConditionFiltersBySourceIP(t *testing.T) {
	doc := []byte(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":["s3:GetObject"],"Resource":["*"],"Condition":{"IpAddress":{"aws:SourceIp":"192.168.1.0/24"}}}]}`)
	g := newTestGate(map[string][]*models.Policy{
		"u1": {{ID: "p1", Name: "p1", PolicyDocument: doc}},
	}, nil)

	allowed, err := g.Authorize(context.Background(), Request{
		PrincipalID: "u1", AccountID: "acct1",
		Action: "s3:GetObject", Resource: "arn:aws:s3:::bucket/x", SourceIP: "192.168.1.5",
	})
	require.NoError(t, err)
	assert.Equal(t, decision.Allow, allowed.Decision)

	denied, err := g.Authorize(context.Background(), Request{
		PrincipalID: "u1", AccountID: "acct1",
		Action: "s3:GetObject", Resource: "arn:aws:s3:::bucket/x", SourceIP: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, decision.Deny, denied.Decision)
}

func TestGate_RootRoleBypassesEvaluation(t *testing.T) {
	g := newTestGate(nil, nil)
	g.membership = cache.NewMembershipCache(
		&fakeGroupMembershipRepo{},
		&fakeUserRoleAssignmentRepo{roles: []*models.Role{{ID: "r-root", Name: models.SystemRootRoleName}}},
		time.Minute,
	)

	outcome, err := g.Authorize(context.Background(), Request{
		PrincipalID: "u1", AccountID: "acct1",
		Action: "anything:AtAll", Resource: "*",
	})
	require.NoError(t, err)
	assert.Equal(t, decision.Allow, outcome.Decision)
	assert.Equal(t, "root role", outcome.Reason)
}

func TestGate_DefaultDenyWithNoMatchingPolicy(t *testing.T) {
	g := newTestGate(map[string][]*models.Policy{
		"u1": {allowPolicy("p1", "s3:GetObject", "arn:aws:s3:::bucket/*")},
	}, nil)

	outcome, err := g.Authorize(context.Background(), Request{
		PrincipalID: "u1", AccountID: "acct1",
		Action: "ec2:TerminateInstances", Resource: "*",
	})
	require.NoError(t, err)
	assert.Equal(t, decision.Deny, outcome.Decision)
}

func TestGate_RevokedTokenShortCircuits(t *testing.T) {
	rev := revocation.NewStore(newFakeRevokedTokenRepo(), 50*time.Millisecond)
	require.NoError(t, rev.Revoke(context.Background(), "tok1", models.TokenAccess, "u1", "acct1", "logout", "", "", time.Now().Add(time.Hour)))

	attachments := &fakeAttachmentRepo{userPolicies: map[string][]*models.Policy{
		"u1": {allowPolicy("p1", "*", "*")},
	}}
	membership := cache.NewMembershipCache(&fakeGroupMembershipRepo{}, &fakeUserRoleAssignmentRepo{}, time.Minute)
	res := resolver.NewPolicyResolver(attachments, membership, nil)
	g := New(rev, membership, &fakeRoleRepo{}, res)

	outcome, err := g.Authorize(context.Background(), Request{
		TokenHash: "tok1", PrincipalID: "u1", AccountID: "acct1",
		Action: "s3:GetObject", Resource: "*",
	})
	require.NoError(t, err)
	assert.Equal(t, decision.Deny, outcome.Decision)
	assert.Equal(t, "token revoked", outcome.Reason)
}
