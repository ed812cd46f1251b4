package policydoc

import (
	"testing"

	"github.com/terraconstructs/iamcore/internal/condition"
)

func allowDoc(action, resource string) *Document {
	return &Document{
		Version: Version,
		Statement: []Statement{{
			Effect:   Allow,
			Action:   StringOrSlice{action},
			Resource: StringOrSlice{resource},
		}},
	}
}

func TestEvaluateAllowMatch(t *testing.T) {
	doc := allowDoc("s3:GetObject", "arn:aws:s3:::bucket/*")
	result := doc.Evaluate("s3:GetObject", "arn:aws:s3:::bucket/photo.png", condition.Context{})
	if result.Verdict != VerdictAllow {
		t.Fatalf("expected Allow, got %v", result.Verdict)
	}
	if result.MatchedStatement != 0 {
		t.Fatalf("expected statement 0 to match, got %d", result.MatchedStatement)
	}
}

func TestEvaluateNoMatch(t *testing.T) {
	doc := allowDoc("s3:GetObject", "arn:aws:s3:::bucket/*")
	result := doc.Evaluate("ec2:RunInstances", "*", condition.Context{})
	if result.Verdict != NoMatch {
		t.Fatalf("expected NoMatch, got %v", result.Verdict)
	}
}

// TestEvaluateExplicitDenyWinsWithinDocument covers spec invariant: within a
// single policy, a matched Deny dominates any matched Allow.
func TestEvaluateExplicitDenyWinsWithinDocument(t *testing.T) {
	doc := &Document{
		Version: Version,
		Statement: []Statement{
			{Effect: Allow, Action: StringOrSlice{"s3:*"}, Resource: StringOrSlice{"*"}},
			{Effect: Deny, Action: StringOrSlice{"s3:DeleteObject"}, Resource: StringOrSlice{"*"}},
		},
	}
	result := doc.Evaluate("s3:DeleteObject", "arn:aws:s3:::bucket/photo.png", condition.Context{})
	if result.Verdict != VerdictDeny {
		t.Fatalf("expected Deny to dominate Allow, got %v", result.Verdict)
	}
}

func TestEvaluateConditionGatesMatch(t *testing.T) {
	doc := &Document{
		Version: Version,
		Statement: []Statement{{
			Effect:   Allow,
			Action:   StringOrSlice{"s3:GetObject"},
			Resource: StringOrSlice{"*"},
			Condition: condition.Block{
				"IpAddress": {"aws:SourceIp": {"203.0.113.0/24"}},
			},
		}},
	}
	allowed := doc.Evaluate("s3:GetObject", "arn:aws:s3:::bucket/x", condition.Context{"aws:SourceIp": "203.0.113.5"})
	if allowed.Verdict != VerdictAllow {
		t.Fatalf("expected Allow when condition passes, got %v", allowed.Verdict)
	}
	denied := doc.Evaluate("s3:GetObject", "arn:aws:s3:::bucket/x", condition.Context{"aws:SourceIp": "198.51.100.1"})
	if denied.Verdict != NoMatch {
		t.Fatalf("expected NoMatch when condition fails, got %v", denied.Verdict)
	}
}

func TestEvaluateFirstAllowWins(t *testing.T) {
	doc := &Document{
		Version: Version,
		Statement: []Statement{
			{Effect: Allow, Action: StringOrSlice{"s3:*"}, Resource: StringOrSlice{"*"}},
			{Effect: Allow, Action: StringOrSlice{"s3:GetObject"}, Resource: StringOrSlice{"*"}},
		},
	}
	result := doc.Evaluate("s3:GetObject", "arn:aws:s3:::bucket/x", condition.Context{})
	if result.Verdict != VerdictAllow || result.MatchedStatement != 0 {
		t.Fatalf("expected first matching Allow statement (0), got verdict=%v stmt=%d", result.Verdict, result.MatchedStatement)
	}
}
