package decision

import (
	"testing"

	"github.com/terraconstructs/iamcore/internal/policydoc"
)

// TestAggregateAllowMatchingPolicy covers spec §8 scenario 1.
func TestAggregateAllowMatchingPolicy(t *testing.T) {
	evals := []PolicyEvaluation{
		{PolicyID: "p1", PolicyName: "AllowS3Read", Result: policydoc.Result{Verdict: policydoc.VerdictAllow, MatchedStatement: 0}},
	}
	out := Aggregate(evals)
	if out.Decision != Allow {
		t.Fatalf("expected ALLOW, got %v", out.Decision)
	}
	if len(out.MatchedPolicies) != 1 || out.MatchedPolicies[0].PolicyID != "p1" {
		t.Fatalf("expected matched policy p1, got %v", out.MatchedPolicies)
	}
}

// TestAggregateExplicitDenyWins covers spec §8 scenario 2 and invariant 1:
// any Deny anywhere in the policy set overrides any number of Allows.
func TestAggregateExplicitDenyWins(t *testing.T) {
	evals := []PolicyEvaluation{
		{PolicyID: "p1", PolicyName: "AllowS3Read", Result: policydoc.Result{Verdict: policydoc.VerdictAllow, MatchedStatement: 0}},
		{PolicyID: "p2", PolicyName: "DenyS3All", Result: policydoc.Result{Verdict: policydoc.VerdictDeny, MatchedStatement: 0}},
	}
	out := Aggregate(evals)
	if out.Decision != Deny {
		t.Fatalf("expected DENY, got %v", out.Decision)
	}
	if out.MatchedPolicies[0].PolicyID != "p2" {
		t.Fatalf("expected deny policy p2 cited, got %v", out.MatchedPolicies)
	}
}

// TestAggregateDefaultDeny covers invariant 2: no matching policy implies
// DENY, never ALLOW.
func TestAggregateDefaultDeny(t *testing.T) {
	evals := []PolicyEvaluation{
		{PolicyID: "p1", PolicyName: "Unrelated", Result: policydoc.Result{Verdict: policydoc.NoMatch, MatchedStatement: -1}},
	}
	out := Aggregate(evals)
	if out.Decision != Deny {
		t.Fatalf("expected default DENY, got %v", out.Decision)
	}
	if len(out.MatchedPolicies) != 0 {
		t.Fatalf("expected no matched policies on default deny, got %v", out.MatchedPolicies)
	}
}

func TestAggregateEmptyPolicySet(t *testing.T) {
	out := Aggregate(nil)
	if out.Decision != Deny {
		t.Fatalf("expected DENY for empty policy set, got %v", out.Decision)
	}
}

func TestAggregateMultipleAllowsOneReasonCitesFirst(t *testing.T) {
	evals := []PolicyEvaluation{
		{PolicyID: "p1", PolicyName: "First", Result: policydoc.Result{Verdict: policydoc.VerdictAllow, MatchedStatement: 0}},
		{PolicyID: "p2", PolicyName: "Second", Result: policydoc.Result{Verdict: policydoc.VerdictAllow, MatchedStatement: 0}},
	}
	out := Aggregate(evals)
	if out.Decision != Allow {
		t.Fatalf("expected ALLOW, got %v", out.Decision)
	}
	if len(out.MatchedPolicies) != 2 {
		t.Fatalf("expected both allow policies recorded, got %v", out.MatchedPolicies)
	}
	if out.Reason != "Allowed by policy First" {
		t.Fatalf("expected reason to cite first allow policy, got %q", out.Reason)
	}
}
