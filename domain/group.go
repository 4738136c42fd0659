package domain

import (
	"time"

	"github.com/google/uuid"
)

// GroupVisibility controls who can discover a group.
type GroupVisibility string

const (
	GroupVisibilityPublic  GroupVisibility = "PUBLIC"
	GroupVisibilityPrivate GroupVisibility = "PRIVATE"
)

// MemberRole is the role a user holds inside a group.
type MemberRole string

const (
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
)

// Group is the canonical group record. LastActivityAt is the group's change
// marker: a millisecond logical clock that strictly advances whenever any
// owned hangout, poll, vote or participation changes. It exists only for
// cache busting and must be mutated through the timestamp service.
type Group struct {
	ID                  string
	Name                string
	Visibility          GroupVisibility
	MainImagePath       string
	BackgroundImagePath string
	LastActivityAt      int64
	Version             int64
	CreatedAt           time.Time
}

// NewGroup creates a canonical group with a fresh ID and version 1.
func NewGroup(name string, visibility GroupVisibility) *Group {
	now := time.Now()
	return &Group{
		ID:             uuid.New().String(),
		Name:           name,
		Visibility:     visibility,
		LastActivityAt: now.UnixMilli(),
		Version:        1,
		CreatedAt:      now,
	}
}

// GroupMembership is the denormalized pointer linking a user to a group.
// The group display fields are copies of the canonical group record and are
// kept in sync by fan-out propagation.
type GroupMembership struct {
	GroupID             string
	UserID              string
	GroupName           string
	GroupMainImagePath  string
	GroupBackgroundPath string
	UserImagePath       string
	Role                MemberRole
	Version             int64
	CreatedAt           time.Time
}

// NewMembership derives a membership pointer from the canonical group.
func NewMembership(g *Group, userID, userImagePath string, role MemberRole) *GroupMembership {
	return &GroupMembership{
		GroupID:             g.ID,
		UserID:              userID,
		GroupName:           g.Name,
		GroupMainImagePath:  g.MainImagePath,
		GroupBackgroundPath: g.BackgroundImagePath,
		UserImagePath:       userImagePath,
		Role:                role,
		Version:             1,
		CreatedAt:           time.Now(),
	}
}

// ApplyGroup reassigns the denormalized group fields from the canonical
// record. Assignment is idempotent so fan-out retries are safe.
func (m *GroupMembership) ApplyGroup(g *Group) {
	m.GroupName = g.Name
	m.GroupMainImagePath = g.MainImagePath
	m.GroupBackgroundPath = g.BackgroundImagePath
}

// IsAdmin reports whether the membership carries the admin role.
func (m *GroupMembership) IsAdmin() bool {
	return m.Role == RoleAdmin
}
