package services

import (
	"context"
	"testing"

	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupService_CreateGroup_OwnerIsAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	g, err := h.groups.CreateGroup(ctx, "Hiking Club", domain.GroupVisibilityPublic, "alice", "alice.jpg")
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)

	m, err := h.store.GetMembership(ctx, g.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, m.IsAdmin())
	assert.Equal(t, "Hiking Club", m.GroupName)
	assert.Equal(t, "alice.jpg", m.UserImagePath)
}

func TestGroupService_CreateGroup_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.groups.CreateGroup(ctx, "", domain.GroupVisibilityPublic, "alice", "")
	assert.True(t, errors.IsValidation(err))

	_, err = h.groups.CreateGroup(ctx, "Hiking Club", "SECRET", "alice", "")
	assert.True(t, errors.IsValidation(err))
}

func TestGroupService_GetGroup_RequiresMembership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Hiking Club", "alice")

	got, err := h.groups.GetGroup(ctx, g.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	_, err = h.groups.GetGroup(ctx, g.ID, "mallory")
	assert.True(t, errors.IsForbidden(err))
}

func TestGroupService_UpdateGroup_PropagatesToMemberships(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Hiking Club", "alice")
	h.mustAddMember(t, g.ID, "alice", "bob")

	updated, err := h.groups.UpdateGroup(ctx, g.ID, "alice", GroupUpdate{
		Name:          strPtr("Alpine Club"),
		MainImagePath: strPtr("alpine.jpg"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alpine Club", updated.Name)

	for _, userID := range []string{"alice", "bob"} {
		m, err := h.store.GetMembership(ctx, g.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, "Alpine Club", m.GroupName)
		assert.Equal(t, "alpine.jpg", m.GroupMainImagePath)
	}
}

func TestGroupService_UpdateGroup_AdminOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Hiking Club", "alice")
	h.mustAddMember(t, g.ID, "alice", "bob")

	_, err := h.groups.UpdateGroup(ctx, g.ID, "bob", GroupUpdate{Name: strPtr("Bob's Club")})
	assert.True(t, errors.IsForbidden(err))
}

func TestGroupService_AddMember_ExistingReturnedUnchanged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Hiking Club", "alice")

	first, err := h.groups.AddMember(ctx, g.ID, "alice", "bob", "bob.jpg")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, first.Role)

	// Adding again returns the stored membership without resetting it.
	second, err := h.groups.AddMember(ctx, g.ID, "alice", "bob", "other.jpg")
	require.NoError(t, err)
	assert.Equal(t, "bob.jpg", second.UserImagePath)
}

func TestGroupService_AddMember_ActorMustBelong(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Hiking Club", "alice")

	_, err := h.groups.AddMember(ctx, g.ID, "mallory", "bob", "")
	assert.True(t, errors.IsForbidden(err))
}

func TestGroupService_RemoveMember_SelfAndAdminRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Hiking Club", "alice")
	h.mustAddMember(t, g.ID, "alice", "bob")
	h.mustAddMember(t, g.ID, "alice", "carol")

	// A plain member cannot remove someone else.
	err := h.groups.RemoveMember(ctx, g.ID, "bob", "carol")
	assert.True(t, errors.IsForbidden(err))

	// But may always leave.
	require.NoError(t, h.groups.RemoveMember(ctx, g.ID, "bob", "bob"))
	m, err := h.store.GetMembership(ctx, g.ID, "bob")
	require.NoError(t, err)
	assert.Nil(t, m)

	// Admins remove anyone.
	require.NoError(t, h.groups.RemoveMember(ctx, g.ID, "alice", "carol"))
}

func TestGroupService_ListGroupsForUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g1 := h.mustCreateGroup(t, "Hiking Club", "alice")
	g2 := h.mustCreateGroup(t, "Book Club", "bob")
	h.mustAddMember(t, g2.ID, "bob", "alice")

	memberships, err := h.groups.ListGroupsForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, memberships, 2)

	ids := []string{memberships[0].GroupID, memberships[1].GroupID}
	assert.ElementsMatch(t, []string{g1.ID, g2.ID}, ids)
}

func TestGroupService_DeleteGroup_RemovesMemberships(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Hiking Club", "alice")
	h.mustAddMember(t, g.ID, "alice", "bob")

	err := h.groups.DeleteGroup(ctx, g.ID, "bob")
	assert.True(t, errors.IsForbidden(err))

	require.NoError(t, h.groups.DeleteGroup(ctx, g.ID, "alice"))

	stored, err := h.store.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	memberships, err := h.store.MembershipsByGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, memberships)
}
