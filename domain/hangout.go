package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimeWindow is an optional start/end pair, stored as epoch milliseconds.
// A hangout without a window never appears in the dated feed.
type TimeWindow struct {
	Start int64
	End   int64
}

// PollOption is a single choice inside a poll.
type PollOption struct {
	ID    string
	Title string
}

// Vote links a user to a poll option.
type Vote struct {
	PollID   string
	OptionID string
	UserID   string
	VotedAt  time.Time
}

// Poll is a question attached to a hangout, with its votes nested on the
// canonical record.
type Poll struct {
	ID      string
	Title   string
	Options []PollOption
	Votes   []Vote
}

// NewPoll creates a poll with generated option IDs.
func NewPoll(title string, optionTitles []string) Poll {
	options := make([]PollOption, 0, len(optionTitles))
	for _, t := range optionTitles {
		options = append(options, PollOption{ID: uuid.New().String(), Title: t})
	}
	return Poll{
		ID:      uuid.New().String(),
		Title:   title,
		Options: options,
	}
}

// Hangout is the canonical event record. GroupIDs lists every group the
// hangout is associated with; exactly those groups carry a HangoutPointer.
type Hangout struct {
	ID             string
	Title          string
	Description    string
	Location       string
	MainImagePath  string
	Window         *TimeWindow
	SeriesID       string
	GroupIDs       []string
	Polls          []Poll
	Participations []Participation
	Version        int64
	CreatedAt      time.Time
}

// NewHangout creates a canonical hangout associated with the given groups.
func NewHangout(title string, groupIDs []string) *Hangout {
	return &Hangout{
		ID:        uuid.New().String(),
		Title:     title,
		GroupIDs:  append([]string(nil), groupIDs...),
		Version:   1,
		CreatedAt: time.Now(),
	}
}

// HasGroup reports whether the hangout is associated with groupID.
func (h *Hangout) HasGroup(groupID string) bool {
	for _, id := range h.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// AssociateGroup adds groupID to the association set. Returns false when the
// group was already associated.
func (h *Hangout) AssociateGroup(groupID string) bool {
	if h.HasGroup(groupID) {
		return false
	}
	h.GroupIDs = append(h.GroupIDs, groupID)
	return true
}

// DisassociateGroup removes groupID from the association set. Returns false
// when the group was not associated.
func (h *Hangout) DisassociateGroup(groupID string) bool {
	for i, id := range h.GroupIDs {
		if id == groupID {
			h.GroupIDs = append(h.GroupIDs[:i], h.GroupIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Poll returns the poll with the given ID, or nil.
func (h *Hangout) Poll(pollID string) *Poll {
	for i := range h.Polls {
		if h.Polls[i].ID == pollID {
			return &h.Polls[i]
		}
	}
	return nil
}

// CastVote records userID's vote on a poll option, replacing any previous
// vote by the same user on the same poll. Re-applying the same vote is a
// no-op, which keeps retried writes safe.
func (p *Poll) CastVote(optionID, userID string, at time.Time) {
	for i := range p.Votes {
		if p.Votes[i].UserID == userID {
			p.Votes[i].OptionID = optionID
			p.Votes[i].VotedAt = at
			return
		}
	}
	p.Votes = append(p.Votes, Vote{
		PollID:   p.ID,
		OptionID: optionID,
		UserID:   userID,
		VotedAt:  at,
	})
}

// VoteCount returns the total number of votes across all polls.
func (h *Hangout) VoteCount() int {
	n := 0
	for i := range h.Polls {
		n += len(h.Polls[i].Votes)
	}
	return n
}
