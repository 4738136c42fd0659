package domain

// FeedItemKind tags the variant of a feed item. The feed is a sum type of
// hangout and series summaries; exactly one of the payload pointers is set
// for each kind.
type FeedItemKind string

const (
	FeedItemKindHangout FeedItemKind = "HANGOUT"
	FeedItemKindSeries  FeedItemKind = "SERIES"
)

// HangoutSummary is the feed projection of a hangout pointer.
type HangoutSummary struct {
	HangoutID        string `json:"hangoutId"`
	Title            string `json:"title"`
	Location         string `json:"location,omitempty"`
	MainImagePath    string `json:"mainImagePath,omitempty"`
	StartTimestamp   int64  `json:"startTimestamp"`
	EndTimestamp     int64  `json:"endTimestamp"`
	PollCount        int    `json:"pollCount"`
	ParticipantCount int    `json:"participantCount"`
}

// SeriesSummary is the feed projection of a series pointer. It carries every
// part of the series even when only one part falls inside the current page.
type SeriesSummary struct {
	SeriesID string       `json:"seriesId"`
	Title    string       `json:"title"`
	Parts    []SeriesPart `json:"parts"`
}

// FeedItem is one entry of the group feed. SortTimestamp and SortID define
// the feed's total order: (timestamp, id) ascending going forward.
type FeedItem struct {
	Kind          FeedItemKind    `json:"kind"`
	SortTimestamp int64           `json:"-"`
	SortID        string          `json:"-"`
	Hangout       *HangoutSummary `json:"hangout,omitempty"`
	Series        *SeriesSummary  `json:"series,omitempty"`
}

// NewHangoutFeedItem builds the hangout variant from a pointer.
func NewHangoutFeedItem(p *HangoutPointer) FeedItem {
	return FeedItem{
		Kind:          FeedItemKindHangout,
		SortTimestamp: p.StartTimestamp,
		SortID:        p.HangoutID,
		Hangout: &HangoutSummary{
			HangoutID:        p.HangoutID,
			Title:            p.Title,
			Location:         p.Location,
			MainImagePath:    p.MainImagePath,
			StartTimestamp:   p.StartTimestamp,
			EndTimestamp:     p.EndTimestamp,
			PollCount:        p.PollCount,
			ParticipantCount: p.ParticipantCount,
		},
	}
}

// NewSeriesFeedItem builds the series variant from a pointer. The series
// sorts at its pointer's start timestamp, the earliest part start across the
// whole series, so its feed position does not depend on which parts a page
// happened to retrieve.
func NewSeriesFeedItem(p *SeriesPointer) FeedItem {
	return FeedItem{
		Kind:          FeedItemKindSeries,
		SortTimestamp: p.StartTimestamp,
		SortID:        p.SeriesID,
		Series: &SeriesSummary{
			SeriesID: p.SeriesID,
			Title:    p.Title,
			Parts:    append([]SeriesPart(nil), p.Parts...),
		},
	}
}
