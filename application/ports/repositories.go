package ports

import (
	"context"

	"github.com/bbthechange/hangoutsBackend-sub012/domain"
)

// MaxTransactWriteItems is the backing store's per-call cap on all-or-nothing
// transactional writes. Fan-out propagation chunks at this boundary.
const MaxTransactWriteItems = 25

// PointerKey addresses one pointer record for a transactional delete.
// Exactly one of HangoutID, SeriesID and UserID is set.
type PointerKey struct {
	GroupID   string
	HangoutID string
	SeriesID  string
	UserID    string
}

// PointerWrite is one item of a transactional fan-out chunk. Exactly one of
// the payload fields is set. ExpectedVersion is the version read before the
// mutation; the write must fail if the stored version differs. A zero
// ExpectedVersion on a put means the item must not exist yet.
type PointerWrite struct {
	HangoutPointer  *domain.HangoutPointer
	SeriesPointer   *domain.SeriesPointer
	Membership      *domain.GroupMembership
	Delete          *PointerKey
	ExpectedVersion int64
}

// GroupRepository persists canonical groups and their membership pointers.
// Point reads are strongly consistent.
type GroupRepository interface {
	// CreateWithOwner writes the group and the creator's admin membership in
	// one all-or-nothing transaction.
	CreateWithOwner(ctx context.Context, g *domain.Group, owner *domain.GroupMembership) error

	// SaveGroup writes the group conditioned on the version it carries and
	// increments it. A version mismatch yields a Conflict error.
	SaveGroup(ctx context.Context, g *domain.Group) error

	GetGroup(ctx context.Context, groupID string) (*domain.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error

	// Touch sets the group's change marker. Best-effort with respect to the
	// pointer write it accompanies: not transactional, no version condition.
	Touch(ctx context.Context, groupID string, markerMillis int64) error

	SaveMembership(ctx context.Context, m *domain.GroupMembership) error
	GetMembership(ctx context.Context, groupID, userID string) (*domain.GroupMembership, error)
	DeleteMembership(ctx context.Context, groupID, userID string) error
	MembershipsByGroup(ctx context.Context, groupID string) ([]*domain.GroupMembership, error)
	MembershipsByUser(ctx context.Context, userID string) ([]*domain.GroupMembership, error)
}

// HangoutRepository persists canonical hangouts, reservation offers and
// participations.
type HangoutRepository interface {
	// SaveHangout writes the hangout conditioned on its version and
	// increments it.
	SaveHangout(ctx context.Context, h *domain.Hangout) error

	GetHangout(ctx context.Context, hangoutID string) (*domain.Hangout, error)

	// DeleteHangout removes the canonical record together with the offers
	// and claimed-spot items stored under it.
	DeleteHangout(ctx context.Context, hangoutID string) error

	SaveOffer(ctx context.Context, o *domain.ReservationOffer) error
	GetOffer(ctx context.Context, hangoutID, offerID string) (*domain.ReservationOffer, error)

	// ClaimSpot transactionally writes the offer (version-conditioned) and
	// the claimed-spot participation.
	ClaimSpot(ctx context.Context, o *domain.ReservationOffer, p *domain.Participation) error

	// ReleaseSpot transactionally writes the offer (version-conditioned) and
	// deletes the participation.
	ReleaseSpot(ctx context.Context, o *domain.ReservationOffer, userID string) error

	GetClaim(ctx context.Context, hangoutID, offerID, userID string) (*domain.Participation, error)
}

// SeriesRepository persists canonical event series.
type SeriesRepository interface {
	SaveSeries(ctx context.Context, s *domain.EventSeries) error
	GetSeries(ctx context.Context, seriesID string) (*domain.EventSeries, error)
	DeleteSeries(ctx context.Context, seriesID string) error
}

// PointerRepository persists the denormalized per-group pointer records and
// serves the range queries behind the feed. Point reads are strongly
// consistent; version-conditioned saves increment the version they condition
// on.
type PointerRepository interface {
	GetHangoutPointer(ctx context.Context, groupID, hangoutID string) (*domain.HangoutPointer, error)
	SaveHangoutPointer(ctx context.Context, p *domain.HangoutPointer) error
	DeleteHangoutPointer(ctx context.Context, groupID, hangoutID string) error
	HangoutPointersByGroup(ctx context.Context, groupID string) ([]*domain.HangoutPointer, error)

	GetSeriesPointer(ctx context.Context, groupID, seriesID string) (*domain.SeriesPointer, error)
	SaveSeriesPointer(ctx context.Context, p *domain.SeriesPointer) error
	DeleteSeriesPointer(ctx context.Context, groupID, seriesID string) error

	// QueryUpcoming returns dated pointers with (start, id) strictly after
	// the boundary, ascending, at most limit.
	QueryUpcoming(ctx context.Context, groupID string, afterTimestamp int64, afterID string, limit int) ([]*domain.HangoutPointer, error)

	// QueryInProgress returns dated pointers with start <= at and end > at,
	// ascending by (start, id).
	QueryInProgress(ctx context.Context, groupID string, at int64) ([]*domain.HangoutPointer, error)

	// QueryEndedBefore returns dated pointers with (end, id) strictly before
	// the boundary, descending, at most limit.
	QueryEndedBefore(ctx context.Context, groupID string, beforeTimestamp int64, beforeID string, limit int) ([]*domain.HangoutPointer, error)

	// TransactWrite applies one all-or-nothing chunk of pointer writes. The
	// chunk must not exceed MaxTransactWriteItems. Any version-condition
	// failure aborts the whole chunk with a Conflict error.
	TransactWrite(ctx context.Context, writes []PointerWrite) error
}
