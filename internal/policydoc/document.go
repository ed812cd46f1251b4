// Package policydoc implements the policy document model: parsing,
// validation (§4.1), and single-document evaluation (§4.4) against an
// action, resource, and condition context.
package policydoc

import (
	"encoding/json"
	"fmt"

	"github.com/terraconstructs/iamcore/internal/condition"
)

// Version is the only supported policy-language version string.
const Version = "2012-10-17"

// Effect is a Statement's Allow/Deny verdict.
type Effect string

const (
	Allow Effect = "Allow"
	Deny  Effect = "Deny"
)

// StringOrSlice decodes a JSON value that is either a bare string or an
// array of strings, the shape Action/Resource/principal values take.
type StringOrSlice []string

func (s *StringOrSlice) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringOrSlice{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = StringOrSlice(many)
	return nil
}

func (s StringOrSlice) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

// Principal maps a principal type (AWS, Service, Federated, CanonicalUser)
// to one or more principal values. Only meaningful on trust documents.
type Principal map[string]StringOrSlice

var validPrincipalTypes = map[string]bool{
	"AWS": true, "Service": true, "Federated": true, "CanonicalUser": true,
}

// Statement is a single clause within a policy document.
type Statement struct {
	Sid       string          `json:"Sid,omitempty"`
	Effect    Effect          `json:"Effect"`
	Action    StringOrSlice   `json:"Action,omitempty"`
	Resource  StringOrSlice   `json:"Resource,omitempty"`
	Principal Principal       `json:"Principal,omitempty"`
	Condition condition.Block `json:"Condition,omitempty"`
}

// Document is a policy document: a version tag and one or more Statements.
type Document struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Parse decodes raw JSON into a Document without validating its contents;
// callers must call Validate separately.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing policy document: %w", err)
	}
	return &doc, nil
}

// ValidationError is one failure found by Validate, carrying a
// human-readable path like "Statement[2].Effect".
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks the document against §4.1's structural rules, returning
// every failure found (not just the first).
func (d *Document) Validate() []ValidationError {
	var errs []ValidationError

	if d.Version == "" {
		errs = append(errs, ValidationError{Path: "Version", Message: "missing Version"})
	} else if d.Version != Version {
		errs = append(errs, ValidationError{Path: "Version", Message: fmt.Sprintf("unsupported Version %q, want %q", d.Version, Version)})
	}

	if len(d.Statement) == 0 {
		errs = append(errs, ValidationError{Path: "Statement", Message: "must contain at least one statement"})
		return errs
	}

	for i, st := range d.Statement {
		path := fmt.Sprintf("Statement[%d]", i)
		errs = append(errs, st.validate(path)...)
	}

	return errs
}

func (st *Statement) validate(path string) []ValidationError {
	var errs []ValidationError

	switch st.Effect {
	case Allow, Deny:
	default:
		errs = append(errs, ValidationError{Path: path + ".Effect", Message: fmt.Sprintf("invalid Effect %q, want Allow or Deny", st.Effect)})
	}

	for i, a := range st.Action {
		if a == "" {
			errs = append(errs, ValidationError{Path: fmt.Sprintf("%s.Action[%d]", path, i), Message: "empty action"})
		}
	}

	for i, r := range st.Resource {
		if r == "" {
			errs = append(errs, ValidationError{Path: fmt.Sprintf("%s.Resource[%d]", path, i), Message: "empty resource"})
		}
	}

	for ptype := range st.Principal {
		if !validPrincipalTypes[ptype] {
			errs = append(errs, ValidationError{Path: path + ".Principal", Message: fmt.Sprintf("unknown principal type %q", ptype)})
		}
	}

	for opName := range st.Condition {
		if !condition.Known(opName) {
			errs = append(errs, ValidationError{Path: path + ".Condition", Message: fmt.Sprintf("unknown condition operator %q", opName)})
		}
	}

	return errs
}
