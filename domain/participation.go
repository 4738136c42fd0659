package domain

import "time"

// ParticipationType distinguishes the ways a user can be linked to a hangout.
type ParticipationType string

const (
	ParticipationInterested  ParticipationType = "INTERESTED"
	ParticipationGoing       ParticipationType = "GOING"
	ParticipationClaimedSpot ParticipationType = "CLAIMED_SPOT"
)

// Participation links a user to a hangout, optionally through a reservation
// offer for claimed spots.
type Participation struct {
	HangoutID string
	UserID    string
	OfferID   string
	Type      ParticipationType
	CreatedAt time.Time
}

// NewClaimedSpot creates the participation recorded alongside a successful
// capacity claim.
func NewClaimedSpot(hangoutID, offerID, userID string) *Participation {
	return &Participation{
		HangoutID: hangoutID,
		UserID:    userID,
		OfferID:   offerID,
		Type:      ParticipationClaimedSpot,
		CreatedAt: time.Now(),
	}
}
