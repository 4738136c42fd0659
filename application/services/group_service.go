package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/application/ports"
	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/optimistic"
)

// GroupService manages canonical groups and their membership pointers.
type GroupService struct {
	groups   ports.GroupRepository
	pointers *PointerService
	logger   *zap.Logger
}

// NewGroupService creates the service.
func NewGroupService(groups ports.GroupRepository, pointers *PointerService, logger *zap.Logger) *GroupService {
	return &GroupService{groups: groups, pointers: pointers, logger: logger}
}

// CreateGroup creates a group with the creator as its first admin. The group
// and the owner membership are written together.
func (s *GroupService) CreateGroup(ctx context.Context, name string, visibility domain.GroupVisibility, creatorID, creatorImagePath string) (*domain.Group, error) {
	if name == "" {
		return nil, errors.NewValidationError("group name is required")
	}
	if visibility != domain.GroupVisibilityPublic && visibility != domain.GroupVisibilityPrivate {
		return nil, errors.NewValidationError("visibility must be PUBLIC or PRIVATE")
	}

	g := domain.NewGroup(name, visibility)
	owner := domain.NewMembership(g, creatorID, creatorImagePath, domain.RoleAdmin)
	if err := s.groups.CreateWithOwner(ctx, g, owner); err != nil {
		return nil, errors.Wrap(err, "create group")
	}

	s.logger.Info("group created",
		zap.String("groupID", g.ID),
		zap.String("creatorID", creatorID),
	)
	return g, nil
}

// GetGroup returns the group if userID is a member.
func (s *GroupService) GetGroup(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	if _, err := s.requireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}
	g, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "read group")
	}
	if g == nil {
		return nil, errors.NewNotFoundError("group")
	}
	return g, nil
}

// GroupUpdate carries the mutable display fields of a group. Nil fields are
// left unchanged.
type GroupUpdate struct {
	Name                *string
	MainImagePath       *string
	BackgroundImagePath *string
}

// UpdateGroup mutates the group's display fields and fans the change out to
// every membership pointer. Admin only.
func (s *GroupService) UpdateGroup(ctx context.Context, groupID, userID string, update GroupUpdate) (*domain.Group, error) {
	if _, err := s.requireAdmin(ctx, groupID, userID); err != nil {
		return nil, err
	}
	if update.Name != nil && *update.Name == "" {
		return nil, errors.NewValidationError("group name cannot be empty")
	}

	var updated *domain.Group
	err := optimistic.Do(ctx, optimistic.DefaultMaxAttempts, func(ctx context.Context) error {
		g, err := s.groups.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if g == nil {
			return errors.NewNotFoundError("group")
		}
		if update.Name != nil {
			g.Name = *update.Name
		}
		if update.MainImagePath != nil {
			g.MainImagePath = *update.MainImagePath
		}
		if update.BackgroundImagePath != nil {
			g.BackgroundImagePath = *update.BackgroundImagePath
		}
		if err := s.groups.SaveGroup(ctx, g); err != nil {
			return err
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.pointers.PropagateGroup(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// AddMember joins userID to the group. Any existing member may add; an
// existing membership is returned unchanged.
func (s *GroupService) AddMember(ctx context.Context, groupID, actorID, userID, userImagePath string) (*domain.GroupMembership, error) {
	if _, err := s.requireMembership(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	existing, err := s.groups.GetMembership(ctx, groupID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "read membership")
	}
	if existing != nil {
		return existing, nil
	}

	g, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "read group")
	}
	if g == nil {
		return nil, errors.NewNotFoundError("group")
	}

	m := domain.NewMembership(g, userID, userImagePath, domain.RoleMember)
	if err := s.groups.SaveMembership(ctx, m); err != nil {
		return nil, errors.Wrap(err, "save membership")
	}
	return m, nil
}

// RemoveMember removes userID from the group. Members may always remove
// themselves; removing someone else requires the admin role.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, actorID, userID string) error {
	actor, err := s.requireMembership(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if actorID != userID && !actor.IsAdmin() {
		return errors.NewForbiddenError("only admins can remove other members")
	}

	if err := s.groups.DeleteMembership(ctx, groupID, userID); err != nil {
		return errors.Wrap(err, "delete membership")
	}
	return nil
}

// ListGroupsForUser returns the user's membership pointers. The denormalized
// display fields make this a single query with no per-group reads.
func (s *GroupService) ListGroupsForUser(ctx context.Context, userID string) ([]*domain.GroupMembership, error) {
	memberships, err := s.groups.MembershipsByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list memberships")
	}
	return memberships, nil
}

// ListMembers returns every membership of the group, visible to members.
func (s *GroupService) ListMembers(ctx context.Context, groupID, userID string) ([]*domain.GroupMembership, error) {
	if _, err := s.requireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}
	memberships, err := s.groups.MembershipsByGroup(ctx, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "list group members")
	}
	return memberships, nil
}

// DeleteGroup removes the group and all of its memberships. Admin only.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, userID string) error {
	if _, err := s.requireAdmin(ctx, groupID, userID); err != nil {
		return err
	}

	memberships, err := s.groups.MembershipsByGroup(ctx, groupID)
	if err != nil {
		return errors.Wrap(err, "list group members")
	}
	for _, m := range memberships {
		if err := s.groups.DeleteMembership(ctx, groupID, m.UserID); err != nil {
			return errors.Wrap(err, "delete membership")
		}
	}
	if err := s.groups.DeleteGroup(ctx, groupID); err != nil {
		return errors.Wrap(err, "delete group")
	}

	s.logger.Info("group deleted", zap.String("groupID", groupID))
	return nil
}

func (s *GroupService) requireMembership(ctx context.Context, groupID, userID string) (*domain.GroupMembership, error) {
	m, err := s.groups.GetMembership(ctx, groupID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "read membership")
	}
	if m == nil {
		return nil, errors.NewForbiddenError("not a member of this group")
	}
	return m, nil
}

func (s *GroupService) requireAdmin(ctx context.Context, groupID, userID string) (*domain.GroupMembership, error) {
	m, err := s.requireMembership(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !m.IsAdmin() {
		return nil, errors.NewForbiddenError("admin role required")
	}
	return m, nil
}
