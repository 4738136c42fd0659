package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bbthechange/hangoutsBackend-sub012/application/ports"
	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointerService_PropagateHangout_CreatesAndUpdates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	g1 := h.mustCreateGroup(t, "Group One", "admin")
	g2 := h.mustCreateGroup(t, "Group Two", "admin")
	hang := h.mustCreateHangout(t, "admin", HangoutInput{
		Title:    "Picnic",
		GroupIDs: []string{g1.ID, g2.ID},
		Window:   window(h.now.Add(time.Hour), h.now.Add(2*time.Hour)),
	})

	for _, groupID := range []string{g1.ID, g2.ID} {
		p, err := h.store.GetHangoutPointer(ctx, groupID, hang.ID)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Picnic", p.Title)
		assert.Equal(t, int64(1), p.Version)
	}

	// A second propagation rewrites fields wholesale and bumps versions.
	hang.Title = "Beach Picnic"
	require.NoError(t, h.store.SaveHangout(ctx, hang))
	require.NoError(t, h.pointers.PropagateHangout(ctx, hang))

	for _, groupID := range []string{g1.ID, g2.ID} {
		p, err := h.store.GetHangoutPointer(ctx, groupID, hang.ID)
		require.NoError(t, err)
		assert.Equal(t, "Beach Picnic", p.Title)
		assert.Equal(t, int64(2), p.Version)
	}
}

// A group rename with 40 members splits into a chunk of 25 and a chunk of
// 15. When the second chunk fails, the first chunk's members keep the new
// name, the rest keep the old one, and the operation reports the failure.
func TestPointerService_PropagateGroup_PartialChunkFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	g := h.mustCreateGroup(t, "Old Name", "admin")
	for i := 0; i < 39; i++ {
		h.mustAddMember(t, g.ID, "admin", fmt.Sprintf("user-%02d", i))
	}

	var chunkSizes []int
	h.store.TransactErr = func(writes []ports.PointerWrite) error {
		chunkSizes = append(chunkSizes, len(writes))
		if len(chunkSizes) == 2 {
			return errors.NewRepositoryError("transact write", fmt.Errorf("throttled"))
		}
		return nil
	}

	_, err := h.groups.UpdateGroup(ctx, g.ID, "admin", GroupUpdate{Name: strPtr("New Name")})
	require.Error(t, err)
	assert.Equal(t, []int{25, 15}, chunkSizes)

	members, listErr := h.store.MembershipsByGroup(ctx, g.ID)
	require.NoError(t, listErr)
	require.Len(t, members, 40)

	var updated, stale int
	for _, m := range members {
		switch m.GroupName {
		case "New Name":
			updated++
		case "Old Name":
			stale++
		}
	}
	assert.Equal(t, 25, updated)
	assert.Equal(t, 15, stale)
}

// A failed chunk must not stop later chunks from being attempted.
func TestPointerService_PropagateGroup_ContinuesPastFailedChunk(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	g := h.mustCreateGroup(t, "Old Name", "admin")
	for i := 0; i < 59; i++ {
		h.mustAddMember(t, g.ID, "admin", fmt.Sprintf("user-%02d", i))
	}

	var call int
	h.store.TransactErr = func(writes []ports.PointerWrite) error {
		call++
		if call == 1 {
			return errors.NewRepositoryError("transact write", fmt.Errorf("throttled"))
		}
		return nil
	}

	_, err := h.groups.UpdateGroup(ctx, g.ID, "admin", GroupUpdate{Name: strPtr("New Name")})
	require.Error(t, err)
	assert.Equal(t, 3, call)

	members, listErr := h.store.MembershipsByGroup(ctx, g.ID)
	require.NoError(t, listErr)

	var updated int
	for _, m := range members {
		if m.GroupName == "New Name" {
			updated++
		}
	}
	assert.Equal(t, 35, updated)
}

func TestPointerService_UpdateHangoutPointer_RetriesOnConflict(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	g := h.mustCreateGroup(t, "Group", "admin")
	hang := h.mustCreateHangout(t, "admin", HangoutInput{
		Title:    "Picnic",
		GroupIDs: []string{g.ID},
		Window:   window(h.now.Add(time.Hour), h.now.Add(2*time.Hour)),
	})

	// First attempt loses the race: a competing writer bumps the pointer
	// version between the read and the write.
	raced := false
	err := h.pointers.UpdateHangoutPointer(ctx, g.ID, hang.ID, func(p *domain.HangoutPointer) {
		if !raced {
			raced = true
			competing, getErr := h.store.GetHangoutPointer(ctx, g.ID, hang.ID)
			require.NoError(t, getErr)
			require.NoError(t, h.store.SaveHangoutPointer(ctx, competing))
		}
		p.Title = "Renamed"
	})
	require.NoError(t, err)

	p, err := h.store.GetHangoutPointer(ctx, g.ID, hang.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Title)
	assert.Equal(t, int64(3), p.Version)
}

func TestPointerService_UpdateHangoutPointer_NotFound(t *testing.T) {
	h := newHarness(t)

	err := h.pointers.UpdateHangoutPointer(context.Background(), "g1", "h1", func(p *domain.HangoutPointer) {})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestPointerService_DeleteHangoutPointers_Idempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	g := h.mustCreateGroup(t, "Group", "admin")
	hang := h.mustCreateHangout(t, "admin", HangoutInput{
		Title:    "Picnic",
		GroupIDs: []string{g.ID},
	})

	require.NoError(t, h.pointers.DeleteHangoutPointers(ctx, hang.ID, []string{g.ID}))
	p, err := h.store.GetHangoutPointer(ctx, g.ID, hang.ID)
	require.NoError(t, err)
	assert.Nil(t, p)

	// Deleting again is a no-op, not an error.
	require.NoError(t, h.pointers.DeleteHangoutPointers(ctx, hang.ID, []string{g.ID}))
}
