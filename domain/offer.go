package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationOffer is a canonical record for a bounded set of claimable
// spots attached to a hangout, for example reserved seats at a venue.
// Invariant: when Capacity is non-nil, 0 <= ClaimedSpots <= *Capacity at all
// times. The invariant is protected by version-conditioned writes only.
type ReservationOffer struct {
	ID           string
	HangoutID    string
	Title        string
	Capacity     *int
	ClaimedSpots int
	Version      int64
	CreatedAt    time.Time
}

// NewReservationOffer creates an offer. A nil capacity means the offer is
// informational and spots on it cannot be claimed.
func NewReservationOffer(hangoutID, title string, capacity *int) *ReservationOffer {
	return &ReservationOffer{
		ID:        uuid.New().String(),
		HangoutID: hangoutID,
		Title:     title,
		Capacity:  capacity,
		Version:   1,
		CreatedAt: time.Now(),
	}
}

// Full reports whether every spot is claimed. Offers without a capacity are
// never full.
func (o *ReservationOffer) Full() bool {
	return o.Capacity != nil && o.ClaimedSpots >= *o.Capacity
}
