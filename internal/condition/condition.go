// Package condition evaluates a policy Statement's Condition block against
// a request context map, per spec §4.3.
package condition

import (
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/terraconstructs/iamcore/internal/pattern"
)

// Context is the set of key/value facts a condition is evaluated against,
// e.g. "aws:SourceIp", "aws:CurrentTime", plus any caller-supplied keys.
type Context map[string]string

// Block is a policy Statement's Condition clause: operator name -> (context
// key -> one or more expected values).
type Block map[string]map[string][]string

// Operator is a named predicate evaluated over a single (ctxValue, expected)
// pair. It never sees the multi-value OR-expansion; Evaluate handles that.
type Operator func(ctxValue string, expected string) bool

var registry = map[string]Operator{
	"StringEquals":    stringEquals,
	"StringNotEquals": negate(stringEquals),
	"StringLike":      stringLike,
	"StringNotLike":   negate(stringLike),

	"NumericEquals":      numeric(func(a, b float64) bool { return a == b }),
	"NumericNotEquals":   numeric(func(a, b float64) bool { return a != b }),
	"NumericLessThan":    numeric(func(a, b float64) bool { return a < b }),
	"NumericGreaterThan": numeric(func(a, b float64) bool { return a > b }),

	"DateGreaterThan": date(func(a, b time.Time) bool { return a.After(b) }),
	"DateLessThan":    date(func(a, b time.Time) bool { return a.Before(b) }),

	"IpAddress": ipAddress,
	"Bool":      boolEquals,
}

func negate(op Operator) Operator {
	return func(ctxValue, expected string) bool { return !op(ctxValue, expected) }
}

func stringEquals(ctxValue, expected string) bool { return ctxValue == expected }

func stringLike(ctxValue, expected string) bool { return pattern.Match(expected, ctxValue) }

func numeric(cmp func(a, b float64) bool) Operator {
	return func(ctxValue, expected string) bool {
		a, err := strconv.ParseFloat(ctxValue, 64)
		if err != nil {
			return false
		}
		b, err := strconv.ParseFloat(expected, 64)
		if err != nil {
			return false
		}
		return cmp(a, b)
	}
}

func date(cmp func(a, b time.Time) bool) Operator {
	return func(ctxValue, expected string) bool {
		a, err := time.Parse(time.RFC3339, ctxValue)
		if err != nil {
			return false
		}
		b, err := time.Parse(time.RFC3339, expected)
		if err != nil {
			return false
		}
		return cmp(a, b)
	}
}

func ipAddress(ctxValue, expected string) bool {
	ip, err := netip.ParseAddr(ctxValue)
	if err != nil {
		return false
	}
	if !strings.Contains(expected, "/") {
		other, err := netip.ParseAddr(expected)
		return err == nil && ip == other
	}
	prefix, err := netip.ParsePrefix(expected)
	if err != nil {
		return false
	}
	return prefix.Contains(ip)
}

func boolEquals(ctxValue, expected string) bool {
	a, err1 := strconv.ParseBool(ctxValue)
	b, err2 := strconv.ParseBool(expected)
	return err1 == nil && err2 == nil && a == b
}

// Evaluate reports whether every operator in block passes against ctx.
// Each operator passes iff every (contextKey, expectedValues) pair under it
// passes, where a multi-value expectation passes if any single value
// passes (set-OR semantics). A missing context key fails the predicate.
// Unknown operator names cause the whole condition to fail closed.
func Evaluate(block Block, ctx Context) bool {
	for opName, kv := range block {
		op, ok := registry[opName]
		if !ok {
			return false // unknown operator: deny by default
		}
		for key, expectedValues := range kv {
			actual, present := ctx[key]
			if !present {
				return false
			}
			if !anyMatches(op, actual, expectedValues) {
				return false
			}
		}
	}
	return true
}

func anyMatches(op Operator, actual string, expectedValues []string) bool {
	for _, expected := range expectedValues {
		if op(actual, expected) {
			return true
		}
	}
	return false
}

// Known reports whether name is a registered operator, used by document
// validation to flag unknown operators at policy-creation time rather than
// only at evaluation time.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Names returns the supported operator names in no particular order,
// useful for error messages.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
