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

func setupOffer(t *testing.T, h *harness, capacity *int) (groupID, hangoutID, offerID string) {
	t.Helper()
	ctx := context.Background()

	g := h.mustCreateGroup(t, "Climbing Crew", "admin")
	h.mustAddMember(t, g.ID, "admin", "u1")
	h.mustAddMember(t, g.ID, "admin", "u2")
	h.mustAddMember(t, g.ID, "admin", "u3")

	hang := h.mustCreateHangout(t, "admin", HangoutInput{
		Title:    "Gym Session",
		GroupIDs: []string{g.ID},
		Window:   window(h.now.Add(24*time.Hour), h.now.Add(26*time.Hour)),
	})

	offer, err := h.hangouts.CreateOffer(ctx, hang.ID, "admin", "Carpool seats", capacity)
	require.NoError(t, err)
	return g.ID, hang.ID, offer.ID
}

func TestClaimService_Claim_FillsToCapacityThenRejects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, hangoutID, offerID := setupOffer(t, h, intPtr(2))

	p1, err := h.claims.Claim(ctx, hangoutID, offerID, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationClaimedSpot, p1.Type)
	assert.Equal(t, "u1", p1.UserID)

	_, err = h.claims.Claim(ctx, hangoutID, offerID, "u2")
	require.NoError(t, err)

	_, err = h.claims.Claim(ctx, hangoutID, offerID, "u3")
	require.Error(t, err)
	assert.True(t, errors.IsCapacityExceeded(err))

	offer, err := h.store.GetOffer(ctx, hangoutID, offerID)
	require.NoError(t, err)
	assert.Equal(t, 2, offer.ClaimedSpots)
}

func TestClaimService_Claim_DuplicateReturnsExistingWithoutConsumingSpot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, hangoutID, offerID := setupOffer(t, h, intPtr(2))

	first, err := h.claims.Claim(ctx, hangoutID, offerID, "u1")
	require.NoError(t, err)

	second, err := h.claims.Claim(ctx, hangoutID, offerID, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, first.OfferID, second.OfferID)

	offer, err := h.store.GetOffer(ctx, hangoutID, offerID)
	require.NoError(t, err)
	assert.Equal(t, 1, offer.ClaimedSpots)
}

func TestClaimService_Claim_OfferWithoutCapacity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, hangoutID, offerID := setupOffer(t, h, nil)

	_, err := h.claims.Claim(ctx, hangoutID, offerID, "u1")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestClaimService_Claim_UnknownOffer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, hangoutID, _ := setupOffer(t, h, intPtr(1))

	_, err := h.claims.Claim(ctx, hangoutID, "no-such-offer", "u1")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

// A writer that loses the version race must re-read and re-evaluate capacity
// against the fresh count instead of overselling.
func TestClaimService_Claim_ConcurrentClaimForcesRetry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, hangoutID, offerID := setupOffer(t, h, intPtr(1))

	// Between u1's read and write, u2 takes the last spot directly against
	// the store, bumping the offer version.
	h.store.BeforeOfferWrite = func() {
		h.store.BeforeOfferWrite = nil
		offer, err := h.store.GetOffer(ctx, hangoutID, offerID)
		require.NoError(t, err)
		offer.ClaimedSpots++
		p := domain.NewClaimedSpot(hangoutID, offerID, "u2")
		require.NoError(t, h.store.ClaimSpot(ctx, offer, p))
	}

	_, err := h.claims.Claim(ctx, hangoutID, offerID, "u1")
	require.Error(t, err)
	assert.True(t, errors.IsCapacityExceeded(err))

	offer, err := h.store.GetOffer(ctx, hangoutID, offerID)
	require.NoError(t, err)
	assert.Equal(t, 1, offer.ClaimedSpots)

	claim, err := h.store.GetClaim(ctx, hangoutID, offerID, "u2")
	require.NoError(t, err)
	require.NotNil(t, claim)
}

func TestClaimService_Unclaim_ReleasesSpotForReclaim(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, hangoutID, offerID := setupOffer(t, h, intPtr(1))

	_, err := h.claims.Claim(ctx, hangoutID, offerID, "u1")
	require.NoError(t, err)

	_, err = h.claims.Claim(ctx, hangoutID, offerID, "u2")
	require.Error(t, err)
	assert.True(t, errors.IsCapacityExceeded(err))

	require.NoError(t, h.claims.Unclaim(ctx, hangoutID, offerID, "u1"))

	_, err = h.claims.Claim(ctx, hangoutID, offerID, "u2")
	require.NoError(t, err)

	offer, err := h.store.GetOffer(ctx, hangoutID, offerID)
	require.NoError(t, err)
	assert.Equal(t, 1, offer.ClaimedSpots)
}

func TestClaimService_Unclaim_MissingClaimLeavesCountIntact(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, hangoutID, offerID := setupOffer(t, h, intPtr(2))

	_, err := h.claims.Claim(ctx, hangoutID, offerID, "u1")
	require.NoError(t, err)

	err = h.claims.Unclaim(ctx, hangoutID, offerID, "u2")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	offer, err := h.store.GetOffer(ctx, hangoutID, offerID)
	require.NoError(t, err)
	assert.Equal(t, 1, offer.ClaimedSpots)
}

func TestClaimService_Claim_PropagatesParticipantCount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	groupID, hangoutID, offerID := setupOffer(t, h, intPtr(2))

	_, err := h.claims.Claim(ctx, hangoutID, offerID, "u1")
	require.NoError(t, err)

	ptr, err := h.store.GetHangoutPointer(ctx, groupID, hangoutID)
	require.NoError(t, err)
	require.NotNil(t, ptr)
	assert.Equal(t, 1, ptr.ParticipantCount)

	require.NoError(t, h.claims.Unclaim(ctx, hangoutID, offerID, "u1"))

	ptr, err = h.store.GetHangoutPointer(ctx, groupID, hangoutID)
	require.NoError(t, err)
	assert.Equal(t, 0, ptr.ParticipantCount)
}
