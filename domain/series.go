package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventSeries is the canonical record grouping an ordered set of hangouts,
// for example a recurring watch party.
type EventSeries struct {
	ID         string
	Title      string
	GroupID    string
	HangoutIDs []string
	Version    int64
	CreatedAt  time.Time
}

// NewEventSeries creates a canonical series.
func NewEventSeries(title, groupID string, hangoutIDs []string) *EventSeries {
	return &EventSeries{
		ID:         uuid.New().String(),
		Title:      title,
		GroupID:    groupID,
		HangoutIDs: append([]string(nil), hangoutIDs...),
		Version:    1,
		CreatedAt:  time.Now(),
	}
}

// SeriesPart is the summary of one hangout inside a series pointer.
type SeriesPart struct {
	HangoutID      string `json:"hangoutId"`
	Title          string `json:"title"`
	StartTimestamp int64  `json:"startTimestamp"`
	EndTimestamp   int64  `json:"endTimestamp"`
}

// SeriesPointer is the per-group denormalized copy of a series, carrying
// summaries of every part so a feed page can render the whole series from a
// single read.
type SeriesPointer struct {
	GroupID        string
	SeriesID       string
	Title          string
	StartTimestamp int64
	Parts          []SeriesPart
	Version        int64
}

// NewSeriesPointer projects a canonical series and its member hangouts onto a
// pointer for one group.
func NewSeriesPointer(s *EventSeries, groupID string, parts []SeriesPart) *SeriesPointer {
	p := &SeriesPointer{
		GroupID:  groupID,
		SeriesID: s.ID,
		Version:  1,
	}
	p.Apply(s, parts)
	return p
}

// Apply reassigns the denormalized fields from canonical state. The pointer's
// start timestamp is the earliest part start, used for chronological sorting.
func (p *SeriesPointer) Apply(s *EventSeries, parts []SeriesPart) {
	p.Title = s.Title
	p.Parts = append([]SeriesPart(nil), parts...)
	p.StartTimestamp = 0
	for _, part := range parts {
		if p.StartTimestamp == 0 || (part.StartTimestamp > 0 && part.StartTimestamp < p.StartTimestamp) {
			p.StartTimestamp = part.StartTimestamp
		}
	}
}
