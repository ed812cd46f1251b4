package service

import (
	"context"
	"fmt"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/db/bunx"
	"github.com/terraconstructs/iamcore/internal/db/models"
	"github.com/terraconstructs/iamcore/internal/filter"
	"github.com/terraconstructs/iamcore/internal/repository"
)

// GroupService manages Groups and their membership (§3 Group).
type GroupService struct {
	groups      repository.GroupRepository
	memberships repository.GroupMembershipRepository
	filter      *filter.Evaluator
}

// NewGroupService builds a GroupService.
func NewGroupService(groups repository.GroupRepository, memberships repository.GroupMembershipRepository, filterEval *filter.Evaluator) *GroupService {
	return &GroupService{groups: groups, memberships: memberships, filter: filterEval}
}

// CreateGroup persists a new Group.
func (s *GroupService) CreateGroup(ctx context.Context, accountID, name, path string) (*models.Group, error) {
	if name == "" {
		return nil, apierr.Validationf("Name", "name is required")
	}
	if path == "" {
		path = "/"
	}
	group := &models.Group{
		ID:        bunx.NewUUIDv7(),
		AccountID: accountID,
		Name:      name,
		Path:      path,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return group, nil
}

// GetGroup fetches a Group by ID.
func (s *GroupService) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	return s.groups.GetByID(ctx, id)
}

// ListGroups lists an Account's groups, optionally narrowed by a go-bexpr
// filter expression.
func (s *GroupService) ListGroups(ctx context.Context, accountID, filterExpr string) ([]*models.Group, error) {
	groups, err := s.groups.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	if filterExpr == "" {
		return groups, nil
	}
	return s.filter.Groups(filterExpr, groups)
}

// DeleteGroup removes a Group. The repository refuses a group that still
// has members (apierr.KindResourceInUse).
func (s *GroupService) DeleteGroup(ctx context.Context, id string) error {
	if err := s.groups.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

// AddMember adds a User to a Group.
func (s *GroupService) AddMember(ctx context.Context, userID, groupID string) error {
	membership := &models.GroupMembership{ID: bunx.NewUUIDv7(), UserID: userID, GroupID: groupID}
	if err := s.memberships.Add(ctx, membership); err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

// RemoveMember removes a User from a Group.
func (s *GroupService) RemoveMember(ctx context.Context, userID, groupID string) error {
	if err := s.memberships.Remove(ctx, userID, groupID); err != nil {
		return fmt.Errorf("remove group member: %w", err)
	}
	return nil
}
