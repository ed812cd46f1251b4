// Package legacypolicy implements §4.12's resolution of the granular
// Permission-row Open Question: rows attached to a policy are compiled
// into synthetic policydoc Statements and merged into that policy's
// document, rather than consulted as a second, independently-authoritative
// decision path. Casbin backs the compiler's (subject, object, action)
// grouping; the compiled statements are matched by the policydoc evaluator,
// not by Casbin's matcher. It is the same library the teacher uses for its
// own RBAC grid (internal/auth/casbin.go), adapted here to compile rows
// instead of enforcing requests directly.
package legacypolicy

import (
	"context"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/terraconstructs/iamcore/internal/policydoc"
	"github.com/terraconstructs/iamcore/internal/repository"
)

// rbacModelText is a minimal deny-override Casbin model: subject is the
// policy ID the rows are compiled for, object is the resource pattern,
// action is "service:action". keyMatch2 gives wildcard-aware object
// matching consistent with the rest of the pack's Casbin usage.
const rbacModelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act, eft

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && r.act == p.act
`

// Compiler compiles a policy's attached legacy Permission rows into
// synthetic policydoc Statements.
type Compiler struct {
	permissions repository.PermissionRepository
}

// NewCompiler builds a Compiler backed by the given permission
// repository.
func NewCompiler(permissions repository.PermissionRepository) *Compiler {
	return &Compiler{permissions: permissions}
}

// CompileStatements loads every Permission row attached to policyID and
// returns one Statement per row. Returns (nil, nil) when the policy has no
// attached Permission rows — the common case for document-model policies.
func (c *Compiler) CompileStatements(ctx context.Context, policyID string) ([]policydoc.Statement, error) {
	perms, err := c.permissions.ListByPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("list legacy permissions for policy %s: %w", policyID, err)
	}
	if len(perms) == 0 {
		return nil, nil
	}

	m, err := model.NewModelFromString(rbacModelText)
	if err != nil {
		return nil, fmt.Errorf("load legacy permission model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("build legacy permission enforcer: %w", err)
	}

	for _, perm := range perms {
		action := perm.Service + ":" + perm.Action
		if _, err := enforcer.AddPolicy(policyID, perm.ResourcePattern, action, casbinEffect(perm.Effect)); err != nil {
			return nil, fmt.Errorf("compile permission %s: %w", perm.ID, err)
		}
	}

	rules, err := enforcer.GetFilteredPolicy(0, policyID)
	if err != nil {
		return nil, fmt.Errorf("read compiled legacy permissions: %w", err)
	}

	statements := make([]policydoc.Statement, 0, len(rules))
	for i, rule := range rules {
		if len(rule) < 4 {
			continue
		}
		obj, act, eft := rule[1], rule[2], rule[3]
		statements = append(statements, policydoc.Statement{
			Sid:      fmt.Sprintf("legacy-%d", i),
			Effect:   policyEffect(eft),
			Action:   policydoc.StringOrSlice{act},
			Resource: policydoc.StringOrSlice{obj},
		})
	}
	return statements, nil
}

func casbinEffect(raw string) string {
	if policydoc.Effect(raw) == policydoc.Deny {
		return "deny"
	}
	return "allow"
}

func policyEffect(eft string) policydoc.Effect {
	if eft == "deny" {
		return policydoc.Deny
	}
	return policydoc.Allow
}
