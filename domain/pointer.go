package domain

// HangoutPointer is the per-group denormalized copy of a hangout. One exists
// for (GroupID, HangoutID) iff the canonical hangout currently lists that
// group. Every field except the key and Version is a copy of canonical state
// and is rewritten wholesale on propagation, never delta-adjusted.
type HangoutPointer struct {
	GroupID          string
	HangoutID        string
	Title            string
	Location         string
	MainImagePath    string
	StartTimestamp   int64
	EndTimestamp     int64
	SeriesID         string
	PollCount        int
	VoteCount        int
	ParticipantCount int
	Version          int64
}

// NewHangoutPointer projects the canonical hangout onto a pointer for one
// group.
func NewHangoutPointer(h *Hangout, groupID string) *HangoutPointer {
	p := &HangoutPointer{
		GroupID:   groupID,
		HangoutID: h.ID,
		Version:   1,
	}
	p.ApplyHangout(h)
	return p
}

// ApplyHangout reassigns every denormalized field from the canonical record.
// Assignment is idempotent so a retried fan-out chunk cannot double-count.
func (p *HangoutPointer) ApplyHangout(h *Hangout) {
	p.Title = h.Title
	p.Location = h.Location
	p.MainImagePath = h.MainImagePath
	p.SeriesID = h.SeriesID
	p.PollCount = len(h.Polls)
	p.VoteCount = h.VoteCount()
	p.ParticipantCount = len(h.Participations)
	if h.Window != nil {
		p.StartTimestamp = h.Window.Start
		p.EndTimestamp = h.Window.End
	} else {
		p.StartTimestamp = 0
		p.EndTimestamp = 0
	}
}

// Dated reports whether the pointer carries a time window and therefore
// participates in the chronological feed.
func (p *HangoutPointer) Dated() bool {
	return p.StartTimestamp > 0
}
