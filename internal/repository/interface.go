// Package repository defines the persistence contracts for every entity in
// the data model (§3) and their bun-backed implementations.
package repository

import (
	"context"

	"github.com/terraconstructs/iamcore/internal/db/models"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	List(ctx context.Context) ([]*models.Account, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, accountID, username string) (*models.User, error)
	GetRootUser(ctx context.Context, accountID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	ListByAccount(ctx context.Context, accountID string) ([]*models.User, error)
}

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (*models.Group, error)
	GetByName(ctx context.Context, accountID, name string) (*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) error
	ListByAccount(ctx context.Context, accountID string) ([]*models.Group, error)
}

type GroupMembershipRepository interface {
	Add(ctx context.Context, m *models.GroupMembership) error
	Remove(ctx context.Context, userID, groupID string) error
	GroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
	MembersOfGroup(ctx context.Context, groupID string) ([]*models.User, error)
}

type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id string) (*models.Role, error)
	GetByName(ctx context.Context, accountID, name string) (*models.Role, error)
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, id string) error
	ListByAccount(ctx context.Context, accountID string) ([]*models.Role, error)
}

type UserRoleAssignmentRepository interface {
	Assign(ctx context.Context, a *models.UserRoleAssignment) error
	Unassign(ctx context.Context, userID, roleID string) error
	RolesForUser(ctx context.Context, userID string) ([]*models.Role, error)
}

type PolicyRepository interface {
	Create(ctx context.Context, policy *models.Policy) error
	GetByID(ctx context.Context, id string) (*models.Policy, error)
	GetByName(ctx context.Context, accountID, name string) (*models.Policy, error)
	Update(ctx context.Context, policy *models.Policy) error
	Delete(ctx context.Context, id string) error
	ListByAccount(ctx context.Context, accountID string) ([]*models.Policy, error)
	ListByPathPrefix(ctx context.Context, accountID, prefix string) ([]*models.Policy, error)
}

type PermissionRepository interface {
	Create(ctx context.Context, perm *models.Permission) error
	GetByID(ctx context.Context, id string) (*models.Permission, error)
	ListByPolicy(ctx context.Context, policyID string) ([]*models.Permission, error)
	AttachToPolicy(ctx context.Context, link *models.PolicyPermission) error
	DetachFromPolicy(ctx context.Context, policyID, permissionID string) error
}

// AttachmentRepository covers the three concrete attachment tables
// (user_policies, group_policies, role_policies) that together implement
// the abstract Attachment entity of §3.
type AttachmentRepository interface {
	AttachToUser(ctx context.Context, userID, policyID string) error
	DetachFromUser(ctx context.Context, userID, policyID string) error
	PoliciesForUser(ctx context.Context, userID string) ([]*models.Policy, error)

	AttachToGroup(ctx context.Context, groupID, policyID string) error
	DetachFromGroup(ctx context.Context, groupID, policyID string) error
	PoliciesForGroup(ctx context.Context, groupID string) ([]*models.Policy, error)

	AttachToRole(ctx context.Context, roleID, policyID string) error
	DetachFromRole(ctx context.Context, roleID, policyID string) error
	PoliciesForRole(ctx context.Context, roleID string) ([]*models.Policy, error)

	PolicyInUse(ctx context.Context, policyID string) (bool, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	ListActiveByUser(ctx context.Context, userID string) ([]*models.Session, error)
	Revoke(ctx context.Context, id string) error
}

type RevokedTokenRepository interface {
	Upsert(ctx context.Context, row *models.RevokedToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RevokedToken, error)
	DeleteExpired(ctx context.Context) (int, error)
}
