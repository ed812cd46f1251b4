package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/cache"
	"github.com/terraconstructs/iamcore/internal/credentials"
	"github.com/terraconstructs/iamcore/internal/db/models"
	"github.com/terraconstructs/iamcore/internal/gate"
	"github.com/terraconstructs/iamcore/internal/resolver"
	"github.com/terraconstructs/iamcore/internal/revocation"
	"github.com/terraconstructs/iamcore/internal/service"
	"github.com/terraconstructs/iamcore/internal/session"
)

type fakeUserRepo struct {
	byID       map[string]*models.User
	byUsername map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*models.User{}, byUsername: map[string]*models.User{}}
}
func (f *fakeUserRepo) put(u *models.User) {
	f.byID[u.ID] = u
	f.byUsername[u.AccountID+"/"+u.Username] = u
}
func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) error { f.put(u); return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apierr.NotFoundf("user %s", id)
	}
	return u, nil
}
func (f *fakeUserRepo) GetByUsername(ctx context.Context, accountID, username string) (*models.User, error) {
	u, ok := f.byUsername[accountID+"/"+username]
	if !ok {
		return nil, apierr.NotFoundf("user %s", username)
	}
	return u, nil
}
func (f *fakeUserRepo) GetRootUser(ctx context.Context, accountID string) (*models.User, error) {
	return nil, apierr.NotFoundf("root user")
}
func (f *fakeUserRepo) Update(ctx context.Context, u *models.User) error { f.put(u); return nil }
func (f *fakeUserRepo) Delete(ctx context.Context, id string) error     { delete(f.byID, id); return nil }
func (f *fakeUserRepo) ListByAccount(ctx context.Context, accountID string) ([]*models.User, error) {
	return nil, nil
}

type fakeRoleRepo struct{ byID map[string]*models.Role }

func (f *fakeRoleRepo) Create(ctx context.Context, r *models.Role) error { f.byID[r.ID] = r; return nil }
func (f *fakeRoleRepo) GetByID(ctx context.Context, id string) (*models.Role, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, apierr.NotFoundf("role %s", id)
	}
	return r, nil
}
func (f *fakeRoleRepo) GetByName(ctx context.Context, accountID, name string) (*models.Role, error) {
	return nil, apierr.NotFoundf("role %s", name)
}
func (f *fakeRoleRepo) Update(ctx context.Context, r *models.Role) error { f.byID[r.ID] = r; return nil }
func (f *fakeRoleRepo) Delete(ctx context.Context, id string) error     { delete(f.byID, id); return nil }
func (f *fakeRoleRepo) ListByAccount(ctx context.Context, accountID string) ([]*models.Role, error) {
	return nil, nil
}

type fakeSessionRepo struct {
	byID        map[string]*models.Session
	byTokenHash map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byID: map[string]*models.Session{}, byTokenHash: map[string]*models.Session{}}
}
func (f *fakeSessionRepo) Create(ctx context.Context, s *models.Session) error {
	f.byID[s.ID] = s
	f.byTokenHash[s.SessionTokenHash] = s
	return nil
}
func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, apierr.NotFoundf("session %s", id)
	}
	return s, nil
}
func (f *fakeSessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	s, ok := f.byTokenHash[tokenHash]
	if !ok {
		return nil, apierr.NotFoundf("session for hash")
	}
	return s, nil
}
func (f *fakeSessionRepo) Update(ctx context.Context, s *models.Session) error {
	f.byID[s.ID] = s
	f.byTokenHash[s.SessionTokenHash] = s
	return nil
}
func (f *fakeSessionRepo) ListActiveByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	return nil, nil
}
func (f *fakeSessionRepo) Revoke(ctx context.Context, id string) error {
	s, ok := f.byID[id]
	if !ok {
		return apierr.NotFoundf("session %s", id)
	}
	s.IsActive = false
	return nil
}

type fakeRevokedTokenRepo struct{ rows map[string]*models.RevokedToken }

func newFakeRevokedTokenRepo() *fakeRevokedTokenRepo {
	return &fakeRevokedTokenRepo{rows: map[string]*models.RevokedToken{}}
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

type fakeGroupMembershipRepo struct{}

func (fakeGroupMembershipRepo) Add(ctx context.Context, m *models.GroupMembership) error { return nil }
func (fakeGroupMembershipRepo) Remove(ctx context.Context, userID, groupID string) error { return nil }
func (fakeGroupMembershipRepo) GroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return nil, nil
}
func (fakeGroupMembershipRepo) MembersOfGroup(ctx context.Context, groupID string) ([]*models.User, error) {
	return nil, nil
}

type fakeUserRoleAssignmentRepo struct{}

func (fakeUserRoleAssignmentRepo) Assign(ctx context.Context, a *models.UserRoleAssignment) error {
	return nil
}
func (fakeUserRoleAssignmentRepo) Unassign(ctx context.Context, userID, roleID string) error {
	return nil
}
func (fakeUserRoleAssignmentRepo) RolesForUser(ctx context.Context, userID string) ([]*models.Role, error) {
	return nil, nil
}

type fakeAttachmentRepo struct{}

func (fakeAttachmentRepo) AttachToUser(ctx context.Context, userID, policyID string) error { return nil }
func (fakeAttachmentRepo) DetachFromUser(ctx context.Context, userID, policyID string) error {
	return nil
}
func (fakeAttachmentRepo) PoliciesForUser(ctx context.Context, userID string) ([]*models.Policy, error) {
	return nil, nil
}
func (fakeAttachmentRepo) AttachToGroup(ctx context.Context, groupID, policyID string) error { return nil }
func (fakeAttachmentRepo) DetachFromGroup(ctx context.Context, groupID, policyID string) error {
	return nil
}
func (fakeAttachmentRepo) PoliciesForGroup(ctx context.Context, groupID string) ([]*models.Policy, error) {
	return nil, nil
}
func (fakeAttachmentRepo) AttachToRole(ctx context.Context, roleID, policyID string) error { return nil }
func (fakeAttachmentRepo) DetachFromRole(ctx context.Context, roleID, policyID string) error {
	return nil
}
func (fakeAttachmentRepo) PoliciesForRole(ctx context.Context, roleID string) ([]*models.Policy, error) {
	return nil, nil
}
func (fakeAttachmentRepo) PolicyInUse(ctx context.Context, policyID string) (bool, error) {
	return false, nil
}

func newTestRouter(t *testing.T) (http.Handler, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	roles := &fakeRoleRepo{byID: map[string]*models.Role{}}
	issuer := credentials.NewIssuer("test-secret", time.Hour, 24*time.Hour)
	sessions := session.NewManager(newFakeSessionRepo())
	rev := revocation.NewStore(newFakeRevokedTokenRepo(), 0)
	sts := service.NewSTSService(users, roles, issuer, sessions, rev)

	membership := cache.NewMembershipCache(fakeGroupMembershipRepo{}, fakeUserRoleAssignmentRepo{}, time.Minute)
	docCache, err := cache.NewPolicyDocumentCache(16)
	require.NoError(t, err)
	res := resolver.NewPolicyResolver(fakeAttachmentRepo{}, membership, docCache)
	g := gate.New(rev, membership, roles, res)

	r := NewRouter(Options{Gate: g, STS: sts, Credentials: issuer, Revocation: rev})
	return r, users
}

func TestRouter_Healthz(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_LoginThenAuthorizeDeniesByDefault(t *testing.T) {
	r, users := newTestRouter(t)
	hashed, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users.put(&models.User{ID: "u1", AccountID: "acct1", Username: "alice", PasswordHash: string(hashed), Status: models.UserActive})

	loginBody, _ := json.Marshal(loginRequest{AccountID: "acct1", Username: "alice", Password: "hunter2"})
	req := httptest.NewRequest(http.MethodPost, "/sts/login", bytes.NewReader(loginBody))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var cred credentialResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cred))
	require.NotEmpty(t, cred.AccessToken)

	authzBody, _ := json.Marshal(authorizeRequest{Action: "s3:GetObject", Resource: "arn:aws:s3:::bucket/key"})
	req = httptest.NewRequest(http.MethodPost, "/authorize", bytes.NewReader(authzBody))
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp authorizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "DENY", resp.Decision)
}

func TestRouter_AuthorizeRejectsMissingToken(t *testing.T) {
	r, _ := newTestRouter(t)
	authzBody, _ := json.Marshal(authorizeRequest{Action: "s3:GetObject", Resource: "*"})
	req := httptest.NewRequest(http.MethodPost, "/authorize", bytes.NewReader(authzBody))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
