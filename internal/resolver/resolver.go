// Package resolver implements the Policy Resolver (C4): given a principal,
// it collects the ordered, deduplicated set of policies that govern it.
package resolver

import (
	"context"
	"fmt"

	"github.com/terraconstructs/iamcore/internal/cache"
	"github.com/terraconstructs/iamcore/internal/db/models"
	"github.com/terraconstructs/iamcore/internal/legacypolicy"
	"github.com/terraconstructs/iamcore/internal/policydoc"
	"github.com/terraconstructs/iamcore/internal/repository"
)

// PolicyResolver collects effective policies for a principal: direct user
// attachments, group attachments for every group the user belongs to, and
// role policies for every role the user holds.
type PolicyResolver struct {
	attachments repository.AttachmentRepository
	membership  *cache.MembershipCache
	docCache    *cache.PolicyDocumentCache
	legacy      *legacypolicy.Compiler
}

// NewPolicyResolver builds a PolicyResolver. docCache may be nil, in which
// case documents are parsed on every call.
func NewPolicyResolver(attachments repository.AttachmentRepository, membership *cache.MembershipCache, docCache *cache.PolicyDocumentCache) *PolicyResolver {
	return &PolicyResolver{attachments: attachments, membership: membership, docCache: docCache}
}

// WithLegacyCompiler attaches the legacy Permission-row compiler (§4.12).
// Without one, Document never merges in synthetic statements.
func (r *PolicyResolver) WithLegacyCompiler(c *legacypolicy.Compiler) *PolicyResolver {
	r.legacy = c
	return r
}

// Resolve returns the ordered, deduplicated set of policies applicable to
// userID, per §4.7: direct attachments first, then group attachments (in
// group order), then role policies. extraRoleIDs carries roles held only
// via the current session (an assumed role not in UserRoleAssignment).
func (r *PolicyResolver) Resolve(ctx context.Context, userID string, extraRoleIDs ...string) ([]*models.Policy, error) {
	seen := make(map[string]struct{})
	var result []*models.Policy

	add := func(policies []*models.Policy) {
		for _, p := range policies {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			result = append(result, p)
		}
	}

	direct, err := r.attachments.PoliciesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve direct user policies: %w", err)
	}
	add(direct)

	groups, err := r.membership.GroupsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user groups: %w", err)
	}
	for _, g := range groups {
		groupPolicies, err := r.attachments.PoliciesForGroup(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve group policies for %s: %w", g.ID, err)
		}
		add(groupPolicies)
	}

	roles, err := r.membership.RolesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user roles: %w", err)
	}
	roleIDs := make([]string, 0, len(roles)+len(extraRoleIDs))
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
	}
	roleIDs = append(roleIDs, extraRoleIDs...)

	roleSeen := make(map[string]struct{})
	for _, roleID := range roleIDs {
		if roleID == "" {
			continue
		}
		if _, ok := roleSeen[roleID]; ok {
			continue
		}
		roleSeen[roleID] = struct{}{}
		rolePolicies, err := r.attachments.PoliciesForRole(ctx, roleID)
		if err != nil {
			return nil, fmt.Errorf("resolve role policies for %s: %w", roleID, err)
		}
		add(rolePolicies)
	}

	return result, nil
}

// Document parses a policy's document, consulting the LRU document cache
// keyed by policy ID and last-modified timestamp when one is configured.
// The cached/parsed document never includes legacy Permission-row
// statements; use DocumentWithLegacy for that.
func (r *PolicyResolver) Document(policy *models.Policy) (*policydoc.Document, error) {
	updatedAt := policy.UpdatedAt.Unix()
	if r.docCache != nil {
		if doc, ok := r.docCache.Get(policy.ID, updatedAt); ok {
			return doc, nil
		}
	}
	doc, err := policydoc.Parse(policy.PolicyDocument)
	if err != nil {
		return nil, fmt.Errorf("parse policy %s document: %w", policy.ID, err)
	}
	if r.docCache != nil {
		r.docCache.Put(policy.ID, updatedAt, doc)
	}
	return doc, nil
}

// DocumentWithLegacy is Document, additionally merging in synthetic
// Statements compiled from the policy's attached legacy Permission rows
// (§4.12) when a legacy compiler is configured. The merge happens on a
// shallow copy so the cached document itself never carries legacy
// statements.
func (r *PolicyResolver) DocumentWithLegacy(ctx context.Context, policy *models.Policy) (*policydoc.Document, error) {
	doc, err := r.Document(policy)
	if err != nil {
		return nil, err
	}
	if r.legacy == nil {
		return doc, nil
	}

	legacyStatements, err := r.legacy.CompileStatements(ctx, policy.ID)
	if err != nil {
		return nil, fmt.Errorf("compile legacy permissions for policy %s: %w", policy.ID, err)
	}
	if len(legacyStatements) == 0 {
		return doc, nil
	}

	merged := &policydoc.Document{
		Version:   doc.Version,
		Statement: append(append([]policydoc.Statement{}, doc.Statement...), legacyStatements...),
	}
	return merged, nil
}
