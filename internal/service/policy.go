package service

import (
	"context"
	"fmt"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/db/bunx"
	"github.com/terraconstructs/iamcore/internal/db/models"
	"github.com/terraconstructs/iamcore/internal/filter"
	"github.com/terraconstructs/iamcore/internal/policydoc"
	"github.com/terraconstructs/iamcore/internal/repository"
)

// PolicyService manages policy documents and their attachments (§3 Policy,
// §4.3 Policy Evaluator document validation).
type PolicyService struct {
	policies    repository.PolicyRepository
	attachments repository.AttachmentRepository
	filter      *filter.Evaluator
}

// NewPolicyService builds a PolicyService.
func NewPolicyService(policies repository.PolicyRepository, attachments repository.AttachmentRepository, filterEval *filter.Evaluator) *PolicyService {
	return &PolicyService{policies: policies, attachments: attachments, filter: filterEval}
}

// CreatePolicy parses and validates the document per C2/C3's grammar
// before persisting it; an invalid document is rejected outright rather
// than stored and failing evaluation later.
func (s *PolicyService) CreatePolicy(ctx context.Context, accountID, name, path string, document []byte) (*models.Policy, error) {
	doc, err := policydoc.Parse(document)
	if err != nil {
		return nil, apierr.Validationf("PolicyDocument", "invalid policy document: %v", err)
	}
	if errs := doc.Validate(); len(errs) > 0 {
		return nil, apierr.Validationf(errs[0].Path, "%s", errs[0].Message)
	}
	if path == "" {
		path = "/"
	}
	policy := &models.Policy{
		ID:             bunx.NewUUIDv7(),
		AccountID:      accountID,
		Name:           name,
		Path:           path,
		PolicyDocument: document,
		PolicyType:     models.PolicyTypeCustom,
		IsAttachable:   true,
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		return nil, fmt.Errorf("create policy: %w", err)
	}
	return policy, nil
}

// GetPolicy fetches a Policy by ID.
func (s *PolicyService) GetPolicy(ctx context.Context, id string) (*models.Policy, error) {
	return s.policies.GetByID(ctx, id)
}

// ListPolicies lists an Account's policies, optionally narrowed by a
// go-bexpr filter expression evaluated against Name/Path/AccountID/Type.
func (s *PolicyService) ListPolicies(ctx context.Context, accountID, filterExpr string) ([]*models.Policy, error) {
	policies, err := s.policies.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	if filterExpr == "" {
		return policies, nil
	}
	return s.filter.Policies(filterExpr, policies)
}

// DeletePolicy refuses to delete a policy that is still attached to any
// User, Group, or Role, per §3's in-use invariant.
func (s *PolicyService) DeletePolicy(ctx context.Context, id string) error {
	inUse, err := s.attachments.PolicyInUse(ctx, id)
	if err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	if inUse {
		return apierr.ResourceInUsef("policy %s is still attached", id)
	}
	if err := s.policies.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	return nil
}

// AttachToUser attaches a Policy to a User.
func (s *PolicyService) AttachToUser(ctx context.Context, userID, policyID string) error {
	if err := s.attachments.AttachToUser(ctx, userID, policyID); err != nil {
		return fmt.Errorf("attach policy to user: %w", err)
	}
	return nil
}

// DetachFromUser detaches a Policy from a User.
func (s *PolicyService) DetachFromUser(ctx context.Context, userID, policyID string) error {
	if err := s.attachments.DetachFromUser(ctx, userID, policyID); err != nil {
		return fmt.Errorf("detach policy from user: %w", err)
	}
	return nil
}

// AttachToGroup attaches a Policy to a Group.
func (s *PolicyService) AttachToGroup(ctx context.Context, groupID, policyID string) error {
	if err := s.attachments.AttachToGroup(ctx, groupID, policyID); err != nil {
		return fmt.Errorf("attach policy to group: %w", err)
	}
	return nil
}

// AttachToRole attaches a Policy to a Role.
func (s *PolicyService) AttachToRole(ctx context.Context, roleID, policyID string) error {
	if err := s.attachments.AttachToRole(ctx, roleID, policyID); err != nil {
		return fmt.Errorf("attach policy to role: %w", err)
	}
	return nil
}
