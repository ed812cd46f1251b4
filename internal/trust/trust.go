// Package trust implements the Trust Evaluator (C6): it answers whether a
// given principal may assume a role under a role's trust document.
package trust

import (
	"github.com/terraconstructs/iamcore/internal/condition"
	"github.com/terraconstructs/iamcore/internal/pattern"
	"github.com/terraconstructs/iamcore/internal/policydoc"
)

// Principal identifies the caller attempting to assume a role, e.g.
// {Type: "AWS", Value: "arn:aws:iam::acc:user/u"}.
type Principal struct {
	Type  string
	Value string
}

const (
	assumeRoleAction     = "sts:AssumeRole"
	assumeRoleWildcard   = "sts:*"
	universalWildcard    = "*"
	externalIDContextKey = "sts:ExternalId"
)

var assumeRoleActions = []string{assumeRoleAction, assumeRoleWildcard, universalWildcard}

// Result is the trust evaluator's verdict.
type Result struct {
	Admitted         bool
	Reason           string
	MatchedStatement int
}

// Evaluate answers "may principal P assume this role's document under
// context C?" per §4.6: an Allow statement admits P if its Principal block
// contains P (by type then value, `*` matching any value within a type),
// its Action contains sts:AssumeRole/sts:*/*, and its Condition passes
// (including the external-id confused-deputy check). Any matched Deny
// rejects outright.
func Evaluate(doc *policydoc.Document, p Principal, ctx condition.Context) Result {
	matchedAllow := -1

	for i, st := range doc.Statement {
		if !principalMatches(st.Principal, p) {
			continue
		}
		if !actionsContainAssumeRole(st.Action) {
			continue
		}
		if !condition.Evaluate(st.Condition, ctx) {
			continue
		}

		switch st.Effect {
		case policydoc.Deny:
			return Result{Admitted: false, Reason: "explicit deny in trust document", MatchedStatement: i}
		case policydoc.Allow:
			if matchedAllow == -1 {
				matchedAllow = i
			}
		}
	}

	if matchedAllow == -1 {
		return Result{Admitted: false, Reason: "no trust statement admits this principal", MatchedStatement: -1}
	}
	return Result{Admitted: true, Reason: "admitted by trust statement", MatchedStatement: matchedAllow}
}

func actionsContainAssumeRole(actions policydoc.StringOrSlice) bool {
	for _, want := range assumeRoleActions {
		if pattern.MatchAny(actions, want) {
			return true
		}
	}
	return false
}

func principalMatches(block policydoc.Principal, p Principal) bool {
	values, ok := block[p.Type]
	if !ok {
		return false
	}
	return pattern.MatchAny(values, p.Value)
}

// RequiresExternalID reports whether the given statement's Condition
// references the sts:ExternalId context key, the confused-deputy defense.
func RequiresExternalID(st policydoc.Statement) bool {
	for _, kv := range st.Condition {
		if _, ok := kv[externalIDContextKey]; ok {
			return true
		}
	}
	return false
}
