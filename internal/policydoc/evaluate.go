package policydoc

import (
	"github.com/terraconstructs/iamcore/internal/condition"
	"github.com/terraconstructs/iamcore/internal/pattern"
)

// Verdict is the outcome of evaluating one document against a single
// action/resource/context triple.
type Verdict string

const (
	NoMatch      Verdict = "NoMatch"
	VerdictAllow Verdict = "Allow"
	VerdictDeny  Verdict = "Deny"
)

// Result carries a document's verdict plus the index of the statement that
// decided it, for decision-engine reasoning and audit.
type Result struct {
	Verdict          Verdict
	MatchedStatement int // index of the deciding statement, -1 if NoMatch
}

// Evaluate implements C3: Action pattern-matches, Resource pattern-matches,
// and Condition (if any) passes, for each statement. A matched Deny within
// the document dominates any matched Allow.
func (d *Document) Evaluate(action, resource string, ctx condition.Context) Result {
	matchedAllow := -1

	for i, st := range d.Statement {
		if !pattern.MatchAny(st.Action, action) {
			continue
		}
		if !pattern.MatchAny(st.Resource, resource) {
			continue
		}
		if !condition.Evaluate(st.Condition, ctx) {
			continue
		}

		switch st.Effect {
		case Deny:
			return Result{Verdict: VerdictDeny, MatchedStatement: i}
		case Allow:
			if matchedAllow == -1 {
				matchedAllow = i
			}
		}
	}

	if matchedAllow != -1 {
		return Result{Verdict: VerdictAllow, MatchedStatement: matchedAllow}
	}
	return Result{Verdict: NoMatch, MatchedStatement: -1}
}
