package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestETagService_CheckFreshness_TokenFormat(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Book Club", "admin")

	result, err := h.etags.CheckFreshness(ctx, g.ID, "admin", "")
	require.NoError(t, err)
	assert.False(t, result.NotModified)

	stored, err := h.store.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	want := fmt.Sprintf("%q", fmt.Sprintf("%s-%d", g.ID, stored.LastActivityAt))
	assert.Equal(t, want, result.ETag.String())
}

func TestETagService_CheckFreshness_MatchThenInvalidatedByVote(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	g := h.mustCreateGroup(t, "Book Club", "admin")
	hang := h.mustCreateHangout(t, "admin", HangoutInput{
		Title:    "Chapter Discussion",
		GroupIDs: []string{g.ID},
		Window:   window(h.now.Add(time.Hour), h.now.Add(2*time.Hour)),
	})
	withPoll, err := h.hangouts.AddPoll(ctx, hang.ID, "admin", "Which chapter?", []string{"Ch. 3", "Ch. 4"})
	require.NoError(t, err)
	poll := withPoll.Polls[0]

	fresh, err := h.etags.CheckFreshness(ctx, g.ID, "admin", "")
	require.NoError(t, err)
	token := fresh.ETag.String()

	// The same token presented again is a hit.
	again, err := h.etags.CheckFreshness(ctx, g.ID, "admin", token)
	require.NoError(t, err)
	assert.True(t, again.NotModified)
	assert.Equal(t, token, again.ETag.String())

	// A vote propagates to the pointer and advances the change marker.
	h.advance(time.Second)
	_, err = h.hangouts.CastVote(ctx, hang.ID, poll.ID, poll.Options[0].ID, "admin")
	require.NoError(t, err)

	after, err := h.etags.CheckFreshness(ctx, g.ID, "admin", token)
	require.NoError(t, err)
	assert.False(t, after.NotModified)
	assert.NotEqual(t, token, after.ETag.String())
}

func TestETagService_CheckFreshness_SameMillisecondStillInvalidates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	g := h.mustCreateGroup(t, "Book Club", "admin")
	hang := h.mustCreateHangout(t, "admin", HangoutInput{
		Title:    "Chapter Discussion",
		GroupIDs: []string{g.ID},
		Window:   window(h.now.Add(time.Hour), h.now.Add(2*time.Hour)),
	})

	fresh, err := h.etags.CheckFreshness(ctx, g.ID, "admin", "")
	require.NoError(t, err)
	token := fresh.ETag.String()

	// A clock that hasn't moved must still produce a different marker.
	_, err = h.hangouts.SetParticipation(ctx, hang.ID, "admin", "GOING")
	require.NoError(t, err)

	after, err := h.etags.CheckFreshness(ctx, g.ID, "admin", token)
	require.NoError(t, err)
	assert.False(t, after.NotModified)
}

func TestETagService_CheckFreshness_NonMember(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.mustCreateGroup(t, "Book Club", "admin")

	_, err := h.etags.CheckFreshness(ctx, g.ID, "stranger", "")
	require.Error(t, err)
	assert.True(t, errors.IsForbidden(err))
}

func TestETagService_CheckFreshness_UnknownGroup(t *testing.T) {
	h := newHarness(t)

	_, err := h.etags.CheckFreshness(context.Background(), "no-such-group", "admin", "")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
