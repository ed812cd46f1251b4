// Package gate implements the Authorization Gate (C10), the per-request
// entry point orchestrating revocation, the root-role escape hatch,
// resolution (C4), evaluation (C3), and aggregation (C5).
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/cache"
	"github.com/terraconstructs/iamcore/internal/condition"
	"github.com/terraconstructs/iamcore/internal/db/models"
	"github.com/terraconstructs/iamcore/internal/decision"
	"github.com/terraconstructs/iamcore/internal/repository"
	"github.com/terraconstructs/iamcore/internal/resolver"
	"github.com/terraconstructs/iamcore/internal/revocation"
)

// Request carries everything the Gate needs to authorize one call. Per
// §4.11 the Gate builds its evaluation context only from these fields —
// it never reads other request state.
type Request struct {
	TokenHash       string
	PrincipalID     string // userID
	AccountID       string
	Action          string
	Resource        string
	IssuedAt        time.Time
	SessionRoleID   string // role ID the current session assumed, if any
	SourceIP        string
	UserAgent       string
	RequestedRegion string
	ExtraContext    map[string]string // caller-supplied x-context-* values, prefix already stripped
}

// Gate is the Authorization Gate (C10).
type Gate struct {
	revocation *revocation.Store
	membership *cache.MembershipCache
	roles      repository.RoleRepository
	resolver   *resolver.PolicyResolver
}

// New builds a Gate from its collaborators.
func New(rev *revocation.Store, membership *cache.MembershipCache, roles repository.RoleRepository, res *resolver.PolicyResolver) *Gate {
	return &Gate{revocation: rev, membership: membership, roles: roles, resolver: res}
}

// Authorize implements §4.11's five-step orchestration.
func (g *Gate) Authorize(ctx context.Context, req Request) (decision.Outcome, error) {
	revoked, err := g.revocation.IsRevoked(ctx, req.TokenHash, req.PrincipalID, req.IssuedAt)
	if err != nil {
		return decision.Outcome{Decision: decision.Deny, Reason: "token revoked"}, err
	}
	if revoked {
		return decision.Outcome{Decision: decision.Deny, Reason: "token revoked"}, nil
	}

	isRoot, err := g.holdsRootRole(ctx, req.PrincipalID, req.SessionRoleID)
	if err != nil {
		return decision.Outcome{}, fmt.Errorf("check root role: %w", err)
	}
	if isRoot {
		return decision.Outcome{Decision: decision.Allow, Reason: "root role"}, nil
	}

	policies, err := g.resolver.Resolve(ctx, req.PrincipalID, req.SessionRoleID)
	if err != nil {
		return decision.Outcome{}, fmt.Errorf("resolve policies: %w", err)
	}

	evalCtx := buildContext(req)

	evaluations := make([]decision.PolicyEvaluation, 0, len(policies))
	for _, policy := range policies {
		doc, err := g.resolver.DocumentWithLegacy(ctx, policy)
		if err != nil {
			return decision.Outcome{}, fmt.Errorf("parse policy %s: %w", policy.ID, err)
		}
		result := doc.Evaluate(req.Action, req.Resource, evalCtx)
		evaluations = append(evaluations, decision.PolicyEvaluation{
			PolicyID:   policy.ID,
			PolicyName: policy.Name,
			Result:     result,
		})
	}

	return decision.Aggregate(evaluations), nil
}

// holdsRootRole reports whether the principal currently holds the system
// "root" role, either via a standing UserRoleAssignment or via the role
// the active session assumed.
func (g *Gate) holdsRootRole(ctx context.Context, userID, sessionRoleID string) (bool, error) {
	if sessionRoleID != "" {
		role, err := g.roles.GetByID(ctx, sessionRoleID)
		if err != nil && !apierr.Is(err, apierr.KindNotFound) {
			return false, err
		}
		if err == nil && role.IsSystem() && role.Name == models.SystemRootRoleName {
			return true, nil
		}
	}

	roles, err := g.membership.RolesForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.IsSystem() && role.Name == models.SystemRootRoleName {
			return true, nil
		}
	}
	return false, nil
}

// buildContext assembles the condition evaluation context from request
// metadata per §4.11: aws:SourceIp, aws:UserAgent, aws:CurrentTime (ISO-8601
// now), aws:RequestedRegion, plus any caller-supplied x-context-* values.
func buildContext(req Request) condition.Context {
	ctx := condition.Context{
		"aws:SourceIp":        req.SourceIP,
		"aws:UserAgent":       req.UserAgent,
		"aws:CurrentTime":     time.Now().UTC().Format(time.RFC3339),
		"aws:RequestedRegion": req.RequestedRegion,
	}
	for k, v := range req.ExtraContext {
		ctx[k] = v
	}
	return ctx
}
