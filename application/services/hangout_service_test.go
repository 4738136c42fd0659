package services

import (
	"context"
	"testing"
	"time"

	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHangoutService_CreateHangout_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Group", "alice")

	_, err := h.hangouts.CreateHangout(ctx, "alice", HangoutInput{GroupIDs: []string{g.ID}})
	assert.True(t, errors.IsValidation(err))

	_, err = h.hangouts.CreateHangout(ctx, "alice", HangoutInput{Title: "No groups"})
	assert.True(t, errors.IsValidation(err))

	_, err = h.hangouts.CreateHangout(ctx, "alice", HangoutInput{
		Title:    "Backwards window",
		GroupIDs: []string{g.ID},
		Window:   &domain.TimeWindow{Start: 2000, End: 1000},
	})
	assert.True(t, errors.IsValidation(err))

	_, err = h.hangouts.CreateHangout(ctx, "mallory", HangoutInput{
		Title:    "Not a member",
		GroupIDs: []string{g.ID},
	})
	assert.True(t, errors.IsForbidden(err))
}

func TestHangoutService_GetHangout_AnyAssociatedGroupGrantsAccess(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g1 := h.mustCreateGroup(t, "Group One", "alice")
	g2 := h.mustCreateGroup(t, "Group Two", "bob")
	h.mustAddMember(t, g1.ID, "alice", "bob")

	hang := h.mustCreateHangout(t, "bob", HangoutInput{
		Title:    "Joint hangout",
		GroupIDs: []string{g1.ID, g2.ID},
	})

	// alice belongs only to g1, which is enough.
	got, err := h.hangouts.GetHangout(ctx, hang.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, hang.ID, got.ID)

	_, err = h.hangouts.GetHangout(ctx, hang.ID, "mallory")
	assert.True(t, errors.IsForbidden(err))
}

func TestHangoutService_UpdateHangout_PropagatesToPointers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Group", "alice")
	hang := h.mustCreateHangout(t, "alice", HangoutInput{
		Title:    "Picnic",
		GroupIDs: []string{g.ID},
	})

	newWindow := window(h.now.Add(time.Hour), h.now.Add(3*time.Hour))
	updated, err := h.hangouts.UpdateHangout(ctx, hang.ID, "alice", HangoutUpdate{
		Title:  strPtr("Evening Picnic"),
		Window: newWindow,
	})
	require.NoError(t, err)
	assert.Equal(t, "Evening Picnic", updated.Title)

	p, err := h.store.GetHangoutPointer(ctx, g.ID, hang.ID)
	require.NoError(t, err)
	assert.Equal(t, "Evening Picnic", p.Title)
	assert.Equal(t, newWindow.Start, p.StartTimestamp)
	assert.Equal(t, newWindow.End, p.EndTimestamp)
}

func TestHangoutService_AssociateAndDisassociateGroup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g1 := h.mustCreateGroup(t, "Group One", "alice")
	g2 := h.mustCreateGroup(t, "Group Two", "alice")
	hang := h.mustCreateHangout(t, "alice", HangoutInput{
		Title:    "Picnic",
		GroupIDs: []string{g1.ID},
	})

	_, err := h.hangouts.AssociateGroup(ctx, hang.ID, g2.ID, "alice")
	require.NoError(t, err)

	p, err := h.store.GetHangoutPointer(ctx, g2.ID, hang.ID)
	require.NoError(t, err)
	require.NotNil(t, p)

	_, err = h.hangouts.DisassociateGroup(ctx, hang.ID, g2.ID, "alice")
	require.NoError(t, err)

	p, err = h.store.GetHangoutPointer(ctx, g2.ID, hang.ID)
	require.NoError(t, err)
	assert.Nil(t, p)

	// Disassociating a group that is not associated reports NotFound.
	_, err = h.hangouts.DisassociateGroup(ctx, hang.ID, g2.ID, "alice")
	assert.True(t, errors.IsNotFound(err))
}

func TestHangoutService_DeleteHangout_CascadesPointers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g1 := h.mustCreateGroup(t, "Group One", "alice")
	g2 := h.mustCreateGroup(t, "Group Two", "alice")
	hang := h.mustCreateHangout(t, "alice", HangoutInput{
		Title:    "Picnic",
		GroupIDs: []string{g1.ID, g2.ID},
	})
	offer, err := h.hangouts.CreateOffer(ctx, hang.ID, "alice", "Car seats", intPtr(2))
	require.NoError(t, err)
	_, err = h.claims.Claim(ctx, hang.ID, offer.ID, "alice")
	require.NoError(t, err)

	require.NoError(t, h.hangouts.DeleteHangout(ctx, hang.ID, "alice"))

	for _, groupID := range []string{g1.ID, g2.ID} {
		p, err := h.store.GetHangoutPointer(ctx, groupID, hang.ID)
		require.NoError(t, err)
		assert.Nil(t, p)
	}

	_, err = h.hangouts.GetHangout(ctx, hang.ID, "alice")
	assert.True(t, errors.IsNotFound(err))

	// Offer and claim items go with the partition.
	gone, err := h.store.GetOffer(ctx, hang.ID, offer.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	claim, err := h.store.GetClaim(ctx, hang.ID, offer.ID, "alice")
	require.NoError(t, err)
	assert.Nil(t, claim)
}

func TestHangoutService_PollsAndVotes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Group", "alice")
	h.mustAddMember(t, g.ID, "alice", "bob")
	hang := h.mustCreateHangout(t, "alice", HangoutInput{
		Title:    "Game Night",
		GroupIDs: []string{g.ID},
	})

	_, err := h.hangouts.AddPoll(ctx, hang.ID, "alice", "Which game?", []string{"Catan"})
	assert.True(t, errors.IsValidation(err))

	withPoll, err := h.hangouts.AddPoll(ctx, hang.ID, "alice", "Which game?", []string{"Catan", "Codenames"})
	require.NoError(t, err)
	require.Len(t, withPoll.Polls, 1)
	poll := withPoll.Polls[0]

	_, err = h.hangouts.CastVote(ctx, hang.ID, "no-such-poll", poll.Options[0].ID, "alice")
	assert.True(t, errors.IsNotFound(err))

	_, err = h.hangouts.CastVote(ctx, hang.ID, poll.ID, "no-such-option", "alice")
	assert.True(t, errors.IsNotFound(err))

	_, err = h.hangouts.CastVote(ctx, hang.ID, poll.ID, poll.Options[0].ID, "alice")
	require.NoError(t, err)
	_, err = h.hangouts.CastVote(ctx, hang.ID, poll.ID, poll.Options[0].ID, "bob")
	require.NoError(t, err)

	// Re-voting replaces, never stacks.
	voted, err := h.hangouts.CastVote(ctx, hang.ID, poll.ID, poll.Options[1].ID, "alice")
	require.NoError(t, err)
	require.Len(t, voted.Polls[0].Votes, 2)

	p, err := h.store.GetHangoutPointer(ctx, g.ID, hang.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.PollCount)
	assert.Equal(t, 2, p.VoteCount)
}

func TestHangoutService_Participation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Group", "alice")
	hang := h.mustCreateHangout(t, "alice", HangoutInput{
		Title:    "Picnic",
		GroupIDs: []string{g.ID},
	})

	_, err := h.hangouts.SetParticipation(ctx, hang.ID, "alice", "MAYBE")
	assert.True(t, errors.IsValidation(err))

	got, err := h.hangouts.SetParticipation(ctx, hang.ID, "alice", domain.ParticipationInterested)
	require.NoError(t, err)
	require.Len(t, got.Participations, 1)
	assert.Equal(t, domain.ParticipationInterested, got.Participations[0].Type)

	// Upgrading replaces the existing entry.
	got, err = h.hangouts.SetParticipation(ctx, hang.ID, "alice", domain.ParticipationGoing)
	require.NoError(t, err)
	require.Len(t, got.Participations, 1)
	assert.Equal(t, domain.ParticipationGoing, got.Participations[0].Type)

	got, err = h.hangouts.ClearParticipation(ctx, hang.ID, "alice")
	require.NoError(t, err)
	assert.Empty(t, got.Participations)

	// Clearing when nothing is set still succeeds.
	_, err = h.hangouts.ClearParticipation(ctx, hang.ID, "alice")
	require.NoError(t, err)
}

func TestHangoutService_CreateOffer_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Group", "alice")
	hang := h.mustCreateHangout(t, "alice", HangoutInput{
		Title:    "Picnic",
		GroupIDs: []string{g.ID},
	})

	_, err := h.hangouts.CreateOffer(ctx, hang.ID, "alice", "", intPtr(4))
	assert.True(t, errors.IsValidation(err))

	_, err = h.hangouts.CreateOffer(ctx, hang.ID, "alice", "Seats", intPtr(0))
	assert.True(t, errors.IsValidation(err))

	offer, err := h.hangouts.CreateOffer(ctx, hang.ID, "alice", "Seats", intPtr(4))
	require.NoError(t, err)
	assert.Equal(t, 4, *offer.Capacity)
	assert.Equal(t, 0, offer.ClaimedSpots)

	info, err := h.hangouts.CreateOffer(ctx, hang.ID, "alice", "Venue info", nil)
	require.NoError(t, err)
	assert.Nil(t, info.Capacity)
}

func TestHangoutService_CreateSeries_StampsPartsAndWritesPointer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Group", "alice")

	h1 := h.mustCreateHangout(t, "alice", HangoutInput{
		Title:    "Episode 1",
		GroupIDs: []string{g.ID},
		Window:   window(h.now.Add(24*time.Hour), h.now.Add(26*time.Hour)),
	})
	h2 := h.mustCreateHangout(t, "alice", HangoutInput{
		Title:    "Episode 2",
		GroupIDs: []string{g.ID},
		Window:   window(h.now.Add(48*time.Hour), h.now.Add(50*time.Hour)),
	})

	es, err := h.hangouts.CreateSeries(ctx, g.ID, "alice", "Season 1", []string{h1.ID, h2.ID})
	require.NoError(t, err)

	sp, err := h.store.GetSeriesPointer(ctx, g.ID, es.ID)
	require.NoError(t, err)
	require.NotNil(t, sp)
	assert.Equal(t, "Season 1", sp.Title)
	require.Len(t, sp.Parts, 2)
	assert.Equal(t, h.now.Add(24*time.Hour).UnixMilli(), sp.StartTimestamp)

	for _, id := range []string{h1.ID, h2.ID} {
		stored, err := h.store.GetHangout(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, es.ID, stored.SeriesID)

		p, err := h.store.GetHangoutPointer(ctx, g.ID, id)
		require.NoError(t, err)
		assert.Equal(t, es.ID, p.SeriesID)
	}
}

func TestHangoutService_CreateSeries_PartsMustBelongToGroup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g1 := h.mustCreateGroup(t, "Group One", "alice")
	g2 := h.mustCreateGroup(t, "Group Two", "alice")

	foreign := h.mustCreateHangout(t, "alice", HangoutInput{
		Title:    "Elsewhere",
		GroupIDs: []string{g2.ID},
	})

	_, err := h.hangouts.CreateSeries(ctx, g1.ID, "alice", "Season 1", []string{foreign.ID})
	assert.True(t, errors.IsValidation(err))
}

func TestHangoutService_DeleteSeries_PartsRevertToStandalone(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Group", "alice")

	h1 := h.mustCreateHangout(t, "alice", HangoutInput{
		Title:    "Episode 1",
		GroupIDs: []string{g.ID},
		Window:   window(h.now.Add(24*time.Hour), h.now.Add(26*time.Hour)),
	})

	es, err := h.hangouts.CreateSeries(ctx, g.ID, "alice", "Season 1", []string{h1.ID})
	require.NoError(t, err)

	require.NoError(t, h.hangouts.DeleteSeries(ctx, g.ID, es.ID, "alice"))

	sp, err := h.store.GetSeriesPointer(ctx, g.ID, es.ID)
	require.NoError(t, err)
	assert.Nil(t, sp)

	stored, err := h.store.GetHangout(ctx, h1.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.SeriesID)

	p, err := h.store.GetHangoutPointer(ctx, g.ID, h1.ID)
	require.NoError(t, err)
	assert.Empty(t, p.SeriesID)

	err = h.hangouts.DeleteSeries(ctx, g.ID, es.ID, "alice")
	assert.True(t, errors.IsNotFound(err))
}

// Series creation followed by a feed read: the parts collapse into one
// series entry alongside unrelated hangouts.
func TestHangoutService_SeriesEndToEndFeed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Group", "alice")

	standalone := h.mustCreateHangout(t, "alice", HangoutInput{
		Title:    "Standalone",
		GroupIDs: []string{g.ID},
		Window:   window(h.now.Add(36*time.Hour), h.now.Add(37*time.Hour)),
	})
	e1 := h.mustCreateHangout(t, "alice", HangoutInput{
		Title:    "Episode 1",
		GroupIDs: []string{g.ID},
		Window:   window(h.now.Add(24*time.Hour), h.now.Add(26*time.Hour)),
	})
	e2 := h.mustCreateHangout(t, "alice", HangoutInput{
		Title:    "Episode 2",
		GroupIDs: []string{g.ID},
		Window:   window(h.now.Add(48*time.Hour), h.now.Add(50*time.Hour)),
	})

	es, err := h.hangouts.CreateSeries(ctx, g.ID, "alice", "Season 1", []string{e1.ID, e2.ID})
	require.NoError(t, err)

	page, err := h.feed.GetFeed(ctx, g.ID, 10, "", "")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	assert.Equal(t, domain.FeedItemKindSeries, page.Items[0].Kind)
	assert.Equal(t, es.ID, page.Items[0].Series.SeriesID)
	require.Len(t, page.Items[0].Series.Parts, 2)

	assert.Equal(t, domain.FeedItemKindHangout, page.Items[1].Kind)
	assert.Equal(t, standalone.ID, page.Items[1].Hangout.HangoutID)
}
