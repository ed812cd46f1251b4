// Package cache provides the in-memory caching layer backing the Policy
// Resolver (C4): a short-TTL snapshot cache of a user's group and role
// membership, and an LRU cache of parsed policy documents.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/terraconstructs/iamcore/internal/db/models"
	"github.com/terraconstructs/iamcore/internal/repository"
)

// membershipSnapshot is an immutable view of one user's group and role
// membership, stamped with the time it was fetched.
type membershipSnapshot struct {
	groups    []*models.Group
	roles     []*models.Role
	fetchedAt time.Time
}

// MembershipCache caches group and role membership per user with a bounded
// TTL, trading a small staleness window for avoiding a join query on every
// authorization check. Readers never block each other: each user's entry is
// an atomic.Value swapped wholesale on refresh.
type MembershipCache struct {
	groupRepo repository.GroupMembershipRepository
	roleRepo  repository.UserRoleAssignmentRepository
	ttl       time.Duration

	entries sync.Map // userID -> *atomic.Value holding *membershipSnapshot
}

// NewMembershipCache builds a MembershipCache with the given TTL. A TTL of
// zero disables caching: every call goes straight to the repositories.
func NewMembershipCache(groupRepo repository.GroupMembershipRepository, roleRepo repository.UserRoleAssignmentRepository, ttl time.Duration) *MembershipCache {
	return &MembershipCache{groupRepo: groupRepo, roleRepo: roleRepo, ttl: ttl}
}

func (c *MembershipCache) load(userID string) (*membershipSnapshot, bool) {
	val, ok := c.entries.Load(userID)
	if !ok {
		return nil, false
	}
	snap, _ := val.(*atomic.Value).Load().(*membershipSnapshot)
	if snap == nil {
		return nil, false
	}
	if c.ttl <= 0 || time.Since(snap.fetchedAt) > c.ttl {
		return nil, false
	}
	return snap, true
}

func (c *MembershipCache) store(userID string, snap *membershipSnapshot) {
	val, _ := c.entries.LoadOrStore(userID, &atomic.Value{})
	val.(*atomic.Value).Store(snap)
}

func (c *MembershipCache) refresh(ctx context.Context, userID string) (*membershipSnapshot, error) {
	groups, err := c.groupRepo.GroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles, err := c.roleRepo.RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap := &membershipSnapshot{groups: groups, roles: roles, fetchedAt: time.Now()}
	c.store(userID, snap)
	return snap, nil
}

// GroupsForUser returns the groups a user belongs to, from cache when fresh.
func (c *MembershipCache) GroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	if snap, ok := c.load(userID); ok {
		return snap.groups, nil
	}
	snap, err := c.refresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snap.groups, nil
}

// RolesForUser returns the roles standingly assigned to a user, from cache
// when fresh.
func (c *MembershipCache) RolesForUser(ctx context.Context, userID string) ([]*models.Role, error) {
	if snap, ok := c.load(userID); ok {
		return snap.roles, nil
	}
	snap, err := c.refresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snap.roles, nil
}

// Invalidate drops a user's cached entry, forcing the next lookup to hit
// the repositories. Call after any group membership or role assignment
// change for that user.
func (c *MembershipCache) Invalidate(userID string) {
	c.entries.Delete(userID)
}
