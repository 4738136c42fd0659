package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/infrastructure/persistence/memory"
	"github.com/stretchr/testify/require"
)

// harness wires every service against one in-memory store so tests can
// drive full flows: canonical writes, pointer fan-out and feed reads.
type harness struct {
	store      *memory.Store
	now        time.Time
	timestamps *TimestampService
	pointers   *PointerService
	etags      *ETagService
	feed       *FeedService
	claims     *ClaimService
	groups     *GroupService
	hangouts   *HangoutService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store: memory.NewStore(),
		now:   time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }
	logger := zap.NewNop()

	h.timestamps = NewTimestampService(h.store, clock, logger)
	h.pointers = NewPointerService(h.store, h.store, h.timestamps, logger)
	h.etags = NewETagService(h.store)
	h.feed = NewFeedService(h.store, clock)
	h.claims = NewClaimService(h.store, h.pointers, logger)
	h.groups = NewGroupService(h.store, h.pointers, logger)
	h.hangouts = NewHangoutService(h.store, h.store, h.store, h.pointers, clock, logger)
	return h
}

// advance moves the harness clock forward so change markers and vote
// timestamps differ between steps.
func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func (h *harness) mustCreateGroup(t *testing.T, name, adminID string) *domain.Group {
	t.Helper()
	g, err := h.groups.CreateGroup(context.Background(), name, domain.GroupVisibilityPrivate, adminID, "")
	require.NoError(t, err)
	return g
}

func (h *harness) mustAddMember(t *testing.T, groupID, actorID, userID string) {
	t.Helper()
	_, err := h.groups.AddMember(context.Background(), groupID, actorID, userID, "")
	require.NoError(t, err)
}

func (h *harness) mustCreateHangout(t *testing.T, userID string, input HangoutInput) *domain.Hangout {
	t.Helper()
	hang, err := h.hangouts.CreateHangout(context.Background(), userID, input)
	require.NoError(t, err)
	return hang
}

func window(start, end time.Time) *domain.TimeWindow {
	return &domain.TimeWindow{Start: start.UnixMilli(), End: end.UnixMilli()}
}

func intPtr(n int) *int {
	return &n
}

func strPtr(s string) *string {
	return &s
}
