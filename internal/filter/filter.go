// Package filter implements label/attribute filter expressions for admin
// List* operations (e.g. "path=/service/*"), per spec.md §9's decision to
// preserve `path` as an opaque label used only for prefix filtering, never
// hierarchical scoping.
package filter

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-bexpr"

	"github.com/terraconstructs/iamcore/internal/db/models"
)

// Evaluator compiles and caches go-bexpr expressions, mirroring the
// teacher's bexprCache pattern in internal/auth/bexpr.go.
type Evaluator struct {
	cache sync.Map // expr string -> *bexpr.Evaluator
}

// New builds an empty Evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

func (e *Evaluator) compile(expr string) (*bexpr.Evaluator, error) {
	if cached, ok := e.cache.Load(expr); ok {
		return cached.(*bexpr.Evaluator), nil
	}
	compiled, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return nil, fmt.Errorf("compile filter expression %q: %w", expr, err)
	}
	e.cache.Store(expr, compiled)
	return compiled, nil
}

// Matches reports whether datum satisfies expr. An empty expr always
// matches, so callers can pass a caller-supplied (possibly absent) filter
// straight through.
func (e *Evaluator) Matches(expr string, datum any) (bool, error) {
	if expr == "" {
		return true, nil
	}
	compiled, err := e.compile(expr)
	if err != nil {
		return false, err
	}
	return compiled.Evaluate(datum)
}

type policyAttrs struct {
	Name      string `bexpr:"name"`
	Path      string `bexpr:"path"`
	AccountID string `bexpr:"account_id"`
	Type      string `bexpr:"type"`
}

// Policies returns the subset of policies matching expr, e.g.
// `path prefix "/service/"`.
func (e *Evaluator) Policies(expr string, policies []*models.Policy) ([]*models.Policy, error) {
	var out []*models.Policy
	for _, p := range policies {
		ok, err := e.Matches(expr, policyAttrs{Name: p.Name, Path: p.Path, AccountID: p.AccountID, Type: string(p.PolicyType)})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type roleAttrs struct {
	Name      string `bexpr:"name"`
	Path      string `bexpr:"path"`
	AccountID string `bexpr:"account_id"`
}

// Roles returns the subset of roles matching expr.
func (e *Evaluator) Roles(expr string, roles []*models.Role) ([]*models.Role, error) {
	var out []*models.Role
	for _, r := range roles {
		ok, err := e.Matches(expr, roleAttrs{Name: r.Name, Path: r.Path, AccountID: r.AccountID})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type groupAttrs struct {
	Name      string `bexpr:"name"`
	Path      string `bexpr:"path"`
	AccountID string `bexpr:"account_id"`
}

// Groups returns the subset of groups matching expr.
func (e *Evaluator) Groups(expr string, groups []*models.Group) ([]*models.Group, error) {
	var out []*models.Group
	for _, g := range groups {
		ok, err := e.Matches(expr, groupAttrs{Name: g.Name, Path: g.Path, AccountID: g.AccountID})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, g)
		}
	}
	return out, nil
}
