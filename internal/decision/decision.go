// Package decision implements the Access Decision Engine (C5): it
// aggregates per-policy evaluation results into one overall allow/deny
// decision, following AWS IAM precedence (explicit deny wins, implicit
// deny is the default).
package decision

import (
	"fmt"

	"github.com/terraconstructs/iamcore/internal/policydoc"
)

// Decision is the overall verdict returned to the caller.
type Decision string

const (
	Allow Decision = "ALLOW"
	Deny  Decision = "DENY"
)

// MatchedPolicy records one policy's contribution to the aggregated
// decision, for audit and the response's matchedPolicies list.
type MatchedPolicy struct {
	PolicyID       string
	PolicyName     string
	Effect         policydoc.Verdict
	StatementIndex int
}

// Outcome is the aggregated result of Aggregate.
type Outcome struct {
	Decision        Decision
	Reason          string
	MatchedPolicies []MatchedPolicy
}

// PolicyEvaluation pairs a policy's identity with its per-document
// evaluation result, as produced by the Policy Resolver (C4) driving C3
// across every applicable policy.
type PolicyEvaluation struct {
	PolicyID   string
	PolicyName string
	Result     policydoc.Result
}

// Aggregate implements C5: if any policy evaluates to Deny, the overall
// decision is DENY. Else if any evaluates to Allow, the overall decision is
// ALLOW. Else DENY (default deny).
func Aggregate(evaluations []PolicyEvaluation) Outcome {
	var denies, allows []MatchedPolicy

	for _, e := range evaluations {
		switch e.Result.Verdict {
		case policydoc.VerdictDeny:
			denies = append(denies, MatchedPolicy{
				PolicyID:       e.PolicyID,
				PolicyName:     e.PolicyName,
				Effect:         policydoc.VerdictDeny,
				StatementIndex: e.Result.MatchedStatement,
			})
		case policydoc.VerdictAllow:
			allows = append(allows, MatchedPolicy{
				PolicyID:       e.PolicyID,
				PolicyName:     e.PolicyName,
				Effect:         policydoc.VerdictAllow,
				StatementIndex: e.Result.MatchedStatement,
			})
		}
	}

	if len(denies) > 0 {
		return Outcome{
			Decision:        Deny,
			Reason:          fmt.Sprintf("Explicit deny from policy %s", denies[0].PolicyName),
			MatchedPolicies: denies,
		}
	}

	if len(allows) > 0 {
		return Outcome{
			Decision:        Allow,
			Reason:          fmt.Sprintf("Allowed by policy %s", allows[0].PolicyName),
			MatchedPolicies: allows,
		}
	}

	return Outcome{
		Decision:        Deny,
		Reason:          "No policy allows this action; default deny",
		MatchedPolicies: nil,
	}
}
