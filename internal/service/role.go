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

// RoleService manages Roles and their trust documents (§3 Role, §4.6 Trust
// Evaluator).
type RoleService struct {
	roles       repository.RoleRepository
	assignments repository.UserRoleAssignmentRepository
	filter      *filter.Evaluator
}

// NewRoleService builds a RoleService.
func NewRoleService(roles repository.RoleRepository, assignments repository.UserRoleAssignmentRepository, filterEval *filter.Evaluator) *RoleService {
	return &RoleService{roles: roles, assignments: assignments, filter: filterEval}
}

const defaultMaxSessionDuration = 3600

// CreateRole validates the trust document against C2/C3's grammar before
// persisting it.
func (s *RoleService) CreateRole(ctx context.Context, accountID, name, path string, trustDocument []byte, maxSessionDuration int) (*models.Role, error) {
	doc, err := policydoc.Parse(trustDocument)
	if err != nil {
		return nil, apierr.Validationf("AssumeRolePolicyDocument", "invalid trust document: %v", err)
	}
	if errs := doc.Validate(); len(errs) > 0 {
		return nil, apierr.Validationf(errs[0].Path, "%s", errs[0].Message)
	}
	if path == "" {
		path = "/"
	}
	if maxSessionDuration <= 0 {
		maxSessionDuration = defaultMaxSessionDuration
	}
	role := &models.Role{
		ID:                       bunx.NewUUIDv7(),
		AccountID:                accountID,
		Name:                     name,
		Path:                     path,
		AssumeRolePolicyDocument: trustDocument,
		MaxSessionDuration:       maxSessionDuration,
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

// GetRole fetches a Role by ID.
func (s *RoleService) GetRole(ctx context.Context, id string) (*models.Role, error) {
	return s.roles.GetByID(ctx, id)
}

// ListRoles lists an Account's roles, optionally narrowed by a go-bexpr
// filter expression.
func (s *RoleService) ListRoles(ctx context.Context, accountID, filterExpr string) ([]*models.Role, error) {
	roles, err := s.roles.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	if filterExpr == "" {
		return roles, nil
	}
	return s.filter.Roles(filterExpr, roles)
}

// DeleteRole removes a Role. Standing assignments are not checked here;
// callers should Unassign first to avoid leaving dangling grants.
func (s *RoleService) DeleteRole(ctx context.Context, id string) error {
	if err := s.roles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

// AssignToUser grants a User standing access to a Role.
func (s *RoleService) AssignToUser(ctx context.Context, userID, roleID, assignedBy string) error {
	assignment := &models.UserRoleAssignment{UserID: userID, RoleID: roleID, AssignedBy: assignedBy}
	if err := s.assignments.Assign(ctx, assignment); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

// UnassignFromUser revokes a User's standing access to a Role.
func (s *RoleService) UnassignFromUser(ctx context.Context, userID, roleID string) error {
	if err := s.assignments.Unassign(ctx, userID, roleID); err != nil {
		return fmt.Errorf("unassign role: %w", err)
	}
	return nil
}
