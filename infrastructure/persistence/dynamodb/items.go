package dynamodb

import (
	"time"

	"github.com/bbthechange/hangoutsBackend-sub012/domain"
)

// Item structs mirror the table layout. Every item carries an EntityType
// discriminator and an integer Version for conditional writes.

type groupItem struct {
	PK                  string `dynamodbav:"PK"`
	SK                  string `dynamodbav:"SK"`
	EntityType          string `dynamodbav:"EntityType"`
	GroupID             string `dynamodbav:"GroupID"`
	Name                string `dynamodbav:"Name"`
	Visibility          string `dynamodbav:"Visibility"`
	MainImagePath       string `dynamodbav:"MainImagePath,omitempty"`
	BackgroundImagePath string `dynamodbav:"BackgroundImagePath,omitempty"`
	LastActivityAt      int64  `dynamodbav:"LastActivityAt"`
	Version             int64  `dynamodbav:"Version"`
	CreatedAt           string `dynamodbav:"CreatedAt"`
}

func newGroupItem(g *domain.Group) groupItem {
	return groupItem{
		PK:                  groupPK(g.ID),
		SK:                  metadataSK,
		EntityType:          "GROUP",
		GroupID:             g.ID,
		Name:                g.Name,
		Visibility:          string(g.Visibility),
		MainImagePath:       g.MainImagePath,
		BackgroundImagePath: g.BackgroundImagePath,
		LastActivityAt:      g.LastActivityAt,
		Version:             g.Version,
		CreatedAt:           g.CreatedAt.Format(time.RFC3339),
	}
}

func (i groupItem) toDomain() *domain.Group {
	created, _ := time.Parse(time.RFC3339, i.CreatedAt)
	return &domain.Group{
		ID:                  i.GroupID,
		Name:                i.Name,
		Visibility:          domain.GroupVisibility(i.Visibility),
		MainImagePath:       i.MainImagePath,
		BackgroundImagePath: i.BackgroundImagePath,
		LastActivityAt:      i.LastActivityAt,
		Version:             i.Version,
		CreatedAt:           created,
	}
}

type membershipItem struct {
	PK                  string `dynamodbav:"PK"`
	SK                  string `dynamodbav:"SK"`
	GSI1PK              string `dynamodbav:"GSI1PK"`
	GSI1SK              string `dynamodbav:"GSI1SK"`
	EntityType          string `dynamodbav:"EntityType"`
	GroupID             string `dynamodbav:"GroupID"`
	UserID              string `dynamodbav:"UserID"`
	GroupName           string `dynamodbav:"GroupName"`
	GroupMainImagePath  string `dynamodbav:"GroupMainImagePath,omitempty"`
	GroupBackgroundPath string `dynamodbav:"GroupBackgroundPath,omitempty"`
	UserImagePath       string `dynamodbav:"UserImagePath,omitempty"`
	Role                string `dynamodbav:"Role"`
	Version             int64  `dynamodbav:"Version"`
	CreatedAt           string `dynamodbav:"CreatedAt"`
}

func newMembershipItem(m *domain.GroupMembership) membershipItem {
	return membershipItem{
		PK:                  groupPK(m.GroupID),
		SK:                  memberSK(m.UserID),
		GSI1PK:              userGSI1PK(m.UserID),
		GSI1SK:              groupPK(m.GroupID),
		EntityType:          "MEMBERSHIP",
		GroupID:             m.GroupID,
		UserID:              m.UserID,
		GroupName:           m.GroupName,
		GroupMainImagePath:  m.GroupMainImagePath,
		GroupBackgroundPath: m.GroupBackgroundPath,
		UserImagePath:       m.UserImagePath,
		Role:                string(m.Role),
		Version:             m.Version,
		CreatedAt:           m.CreatedAt.Format(time.RFC3339),
	}
}

func (i membershipItem) toDomain() *domain.GroupMembership {
	created, _ := time.Parse(time.RFC3339, i.CreatedAt)
	return &domain.GroupMembership{
		GroupID:             i.GroupID,
		UserID:              i.UserID,
		GroupName:           i.GroupName,
		GroupMainImagePath:  i.GroupMainImagePath,
		GroupBackgroundPath: i.GroupBackgroundPath,
		UserImagePath:       i.UserImagePath,
		Role:                domain.MemberRole(i.Role),
		Version:             i.Version,
		CreatedAt:           created,
	}
}

type pollOptionItem struct {
	ID    string `dynamodbav:"ID"`
	Title string `dynamodbav:"Title"`
}

type voteItem struct {
	PollID   string `dynamodbav:"PollID"`
	OptionID string `dynamodbav:"OptionID"`
	UserID   string `dynamodbav:"UserID"`
	VotedAt  string `dynamodbav:"VotedAt"`
}

type pollItem struct {
	ID      string           `dynamodbav:"ID"`
	Title   string           `dynamodbav:"Title"`
	Options []pollOptionItem `dynamodbav:"Options"`
	Votes   []voteItem       `dynamodbav:"Votes,omitempty"`
}

type participationAttr struct {
	HangoutID string `dynamodbav:"HangoutID"`
	UserID    string `dynamodbav:"UserID"`
	OfferID   string `dynamodbav:"OfferID,omitempty"`
	Type      string `dynamodbav:"Type"`
	CreatedAt string `dynamodbav:"CreatedAt"`
}

func newParticipationAttr(p domain.Participation) participationAttr {
	return participationAttr{
		HangoutID: p.HangoutID,
		UserID:    p.UserID,
		OfferID:   p.OfferID,
		Type:      string(p.Type),
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func (a participationAttr) toDomain() domain.Participation {
	created, _ := time.Parse(time.RFC3339, a.CreatedAt)
	return domain.Participation{
		HangoutID: a.HangoutID,
		UserID:    a.UserID,
		OfferID:   a.OfferID,
		Type:      domain.ParticipationType(a.Type),
		CreatedAt: created,
	}
}

type timeWindowAttr struct {
	Start int64 `dynamodbav:"Start"`
	End   int64 `dynamodbav:"End"`
}

type hangoutItem struct {
	PK             string              `dynamodbav:"PK"`
	SK             string              `dynamodbav:"SK"`
	EntityType     string              `dynamodbav:"EntityType"`
	HangoutID      string              `dynamodbav:"HangoutID"`
	Title          string              `dynamodbav:"Title"`
	Description    string              `dynamodbav:"Description,omitempty"`
	Location       string              `dynamodbav:"Location,omitempty"`
	MainImagePath  string              `dynamodbav:"MainImagePath,omitempty"`
	Window         *timeWindowAttr     `dynamodbav:"Window,omitempty"`
	SeriesID       string              `dynamodbav:"SeriesID,omitempty"`
	GroupIDs       []string            `dynamodbav:"GroupIDs"`
	Polls          []pollItem          `dynamodbav:"Polls,omitempty"`
	Participations []participationAttr `dynamodbav:"Participations,omitempty"`
	Version        int64               `dynamodbav:"Version"`
	CreatedAt      string              `dynamodbav:"CreatedAt"`
}

func newHangoutItem(h *domain.Hangout) hangoutItem {
	item := hangoutItem{
		PK:            hangoutPK(h.ID),
		SK:            metadataSK,
		EntityType:    "HANGOUT",
		HangoutID:     h.ID,
		Title:         h.Title,
		Description:   h.Description,
		Location:      h.Location,
		MainImagePath: h.MainImagePath,
		SeriesID:      h.SeriesID,
		GroupIDs:      h.GroupIDs,
		Version:       h.Version,
		CreatedAt:     h.CreatedAt.Format(time.RFC3339),
	}
	if h.Window != nil {
		item.Window = &timeWindowAttr{Start: h.Window.Start, End: h.Window.End}
	}
	for _, p := range h.Polls {
		pi := pollItem{ID: p.ID, Title: p.Title}
		for _, o := range p.Options {
			pi.Options = append(pi.Options, pollOptionItem{ID: o.ID, Title: o.Title})
		}
		for _, v := range p.Votes {
			pi.Votes = append(pi.Votes, voteItem{
				PollID:   v.PollID,
				OptionID: v.OptionID,
				UserID:   v.UserID,
				VotedAt:  v.VotedAt.Format(time.RFC3339),
			})
		}
		item.Polls = append(item.Polls, pi)
	}
	// Claimed spots are separate items; only direct participations nest here.
	for _, p := range h.Participations {
		if p.Type == domain.ParticipationClaimedSpot {
			continue
		}
		item.Participations = append(item.Participations, newParticipationAttr(p))
	}
	return item
}

func (i hangoutItem) toDomain() *domain.Hangout {
	created, _ := time.Parse(time.RFC3339, i.CreatedAt)
	h := &domain.Hangout{
		ID:            i.HangoutID,
		Title:         i.Title,
		Description:   i.Description,
		Location:      i.Location,
		MainImagePath: i.MainImagePath,
		SeriesID:      i.SeriesID,
		GroupIDs:      i.GroupIDs,
		Version:       i.Version,
		CreatedAt:     created,
	}
	if i.Window != nil {
		h.Window = &domain.TimeWindow{Start: i.Window.Start, End: i.Window.End}
	}
	for _, pi := range i.Polls {
		p := domain.Poll{ID: pi.ID, Title: pi.Title}
		for _, o := range pi.Options {
			p.Options = append(p.Options, domain.PollOption{ID: o.ID, Title: o.Title})
		}
		for _, v := range pi.Votes {
			votedAt, _ := time.Parse(time.RFC3339, v.VotedAt)
			p.Votes = append(p.Votes, domain.Vote{
				PollID:   v.PollID,
				OptionID: v.OptionID,
				UserID:   v.UserID,
				VotedAt:  votedAt,
			})
		}
		h.Polls = append(h.Polls, p)
	}
	for _, pa := range i.Participations {
		h.Participations = append(h.Participations, pa.toDomain())
	}
	return h
}

type offerItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"EntityType"`
	OfferID      string `dynamodbav:"OfferID"`
	HangoutID    string `dynamodbav:"HangoutID"`
	Title        string `dynamodbav:"Title"`
	Capacity     *int   `dynamodbav:"Capacity,omitempty"`
	ClaimedSpots int    `dynamodbav:"ClaimedSpots"`
	Version      int64  `dynamodbav:"Version"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
}

func newOfferItem(o *domain.ReservationOffer) offerItem {
	return offerItem{
		PK:           hangoutPK(o.HangoutID),
		SK:           offerSK(o.ID),
		EntityType:   "OFFER",
		OfferID:      o.ID,
		HangoutID:    o.HangoutID,
		Title:        o.Title,
		Capacity:     o.Capacity,
		ClaimedSpots: o.ClaimedSpots,
		Version:      o.Version,
		CreatedAt:    o.CreatedAt.Format(time.RFC3339),
	}
}

func (i offerItem) toDomain() *domain.ReservationOffer {
	created, _ := time.Parse(time.RFC3339, i.CreatedAt)
	return &domain.ReservationOffer{
		ID:           i.OfferID,
		HangoutID:    i.HangoutID,
		Title:        i.Title,
		Capacity:     i.Capacity,
		ClaimedSpots: i.ClaimedSpots,
		Version:      i.Version,
		CreatedAt:    created,
	}
}

type claimItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	HangoutID  string `dynamodbav:"HangoutID"`
	OfferID    string `dynamodbav:"OfferID"`
	UserID     string `dynamodbav:"UserID"`
	Type       string `dynamodbav:"Type"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

func newClaimItem(p *domain.Participation) claimItem {
	return claimItem{
		PK:         hangoutPK(p.HangoutID),
		SK:         claimSK(p.OfferID, p.UserID),
		EntityType: "CLAIM",
		HangoutID:  p.HangoutID,
		OfferID:    p.OfferID,
		UserID:     p.UserID,
		Type:       string(p.Type),
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

func (i claimItem) toDomain() *domain.Participation {
	created, _ := time.Parse(time.RFC3339, i.CreatedAt)
	return &domain.Participation{
		HangoutID: i.HangoutID,
		OfferID:   i.OfferID,
		UserID:    i.UserID,
		Type:      domain.ParticipationType(i.Type),
		CreatedAt: created,
	}
}

type seriesItem struct {
	PK         string   `dynamodbav:"PK"`
	SK         string   `dynamodbav:"SK"`
	EntityType string   `dynamodbav:"EntityType"`
	SeriesID   string   `dynamodbav:"SeriesID"`
	Title      string   `dynamodbav:"Title"`
	GroupID    string   `dynamodbav:"GroupID"`
	HangoutIDs []string `dynamodbav:"HangoutIDs"`
	Version    int64    `dynamodbav:"Version"`
	CreatedAt  string   `dynamodbav:"CreatedAt"`
}

func newSeriesItem(s *domain.EventSeries) seriesItem {
	return seriesItem{
		PK:         seriesPK(s.ID),
		SK:         metadataSK,
		EntityType: "SERIES",
		SeriesID:   s.ID,
		Title:      s.Title,
		GroupID:    s.GroupID,
		HangoutIDs: s.HangoutIDs,
		Version:    s.Version,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
	}
}

func (i seriesItem) toDomain() *domain.EventSeries {
	created, _ := time.Parse(time.RFC3339, i.CreatedAt)
	return &domain.EventSeries{
		ID:         i.SeriesID,
		Title:      i.Title,
		GroupID:    i.GroupID,
		HangoutIDs: i.HangoutIDs,
		Version:    i.Version,
		CreatedAt:  created,
	}
}

type hangoutPointerItem struct {
	PK               string `dynamodbav:"PK"`
	SK               string `dynamodbav:"SK"`
	GSI2PK           string `dynamodbav:"GSI2PK,omitempty"`
	GSI2SK           string `dynamodbav:"GSI2SK,omitempty"`
	GSI3PK           string `dynamodbav:"GSI3PK,omitempty"`
	GSI3SK           string `dynamodbav:"GSI3SK,omitempty"`
	EntityType       string `dynamodbav:"EntityType"`
	GroupID          string `dynamodbav:"GroupID"`
	HangoutID        string `dynamodbav:"HangoutID"`
	Title            string `dynamodbav:"Title"`
	Location         string `dynamodbav:"Location,omitempty"`
	MainImagePath    string `dynamodbav:"MainImagePath,omitempty"`
	StartTimestamp   int64  `dynamodbav:"StartTimestamp"`
	EndTimestamp     int64  `dynamodbav:"EndTimestamp"`
	SeriesID         string `dynamodbav:"SeriesID,omitempty"`
	PollCount        int    `dynamodbav:"PollCount"`
	VoteCount        int    `dynamodbav:"VoteCount"`
	ParticipantCount int    `dynamodbav:"ParticipantCount"`
	Version          int64  `dynamodbav:"Version"`
}

func newHangoutPointerItem(p *domain.HangoutPointer) hangoutPointerItem {
	item := hangoutPointerItem{
		PK:               groupPK(p.GroupID),
		SK:               hangoutPtrSK(p.HangoutID),
		EntityType:       "HANGOUT_POINTER",
		GroupID:          p.GroupID,
		HangoutID:        p.HangoutID,
		Title:            p.Title,
		Location:         p.Location,
		MainImagePath:    p.MainImagePath,
		StartTimestamp:   p.StartTimestamp,
		EndTimestamp:     p.EndTimestamp,
		SeriesID:         p.SeriesID,
		PollCount:        p.PollCount,
		VoteCount:        p.VoteCount,
		ParticipantCount: p.ParticipantCount,
		Version:          p.Version,
	}
	// Undated pointers stay out of the time indexes entirely.
	if p.Dated() {
		item.GSI2PK = groupPK(p.GroupID)
		item.GSI2SK = timeSortKey(p.StartTimestamp, p.HangoutID)
		item.GSI3PK = groupPK(p.GroupID)
		item.GSI3SK = timeSortKey(p.EndTimestamp, p.HangoutID)
	}
	return item
}

func (i hangoutPointerItem) toDomain() *domain.HangoutPointer {
	return &domain.HangoutPointer{
		GroupID:          i.GroupID,
		HangoutID:        i.HangoutID,
		Title:            i.Title,
		Location:         i.Location,
		MainImagePath:    i.MainImagePath,
		StartTimestamp:   i.StartTimestamp,
		EndTimestamp:     i.EndTimestamp,
		SeriesID:         i.SeriesID,
		PollCount:        i.PollCount,
		VoteCount:        i.VoteCount,
		ParticipantCount: i.ParticipantCount,
		Version:          i.Version,
	}
}

type seriesPartAttr struct {
	HangoutID      string `dynamodbav:"HangoutID"`
	Title          string `dynamodbav:"Title"`
	StartTimestamp int64  `dynamodbav:"StartTimestamp"`
	EndTimestamp   int64  `dynamodbav:"EndTimestamp"`
}

type seriesPointerItem struct {
	PK             string           `dynamodbav:"PK"`
	SK             string           `dynamodbav:"SK"`
	EntityType     string           `dynamodbav:"EntityType"`
	GroupID        string           `dynamodbav:"GroupID"`
	SeriesID       string           `dynamodbav:"SeriesID"`
	Title          string           `dynamodbav:"Title"`
	StartTimestamp int64            `dynamodbav:"StartTimestamp"`
	Parts          []seriesPartAttr `dynamodbav:"Parts"`
	Version        int64            `dynamodbav:"Version"`
}

func newSeriesPointerItem(p *domain.SeriesPointer) seriesPointerItem {
	item := seriesPointerItem{
		PK:             groupPK(p.GroupID),
		SK:             seriesPtrSK(p.SeriesID),
		EntityType:     "SERIES_POINTER",
		GroupID:        p.GroupID,
		SeriesID:       p.SeriesID,
		Title:          p.Title,
		StartTimestamp: p.StartTimestamp,
		Version:        p.Version,
	}
	for _, part := range p.Parts {
		item.Parts = append(item.Parts, seriesPartAttr{
			HangoutID:      part.HangoutID,
			Title:          part.Title,
			StartTimestamp: part.StartTimestamp,
			EndTimestamp:   part.EndTimestamp,
		})
	}
	return item
}

func (i seriesPointerItem) toDomain() *domain.SeriesPointer {
	p := &domain.SeriesPointer{
		GroupID:        i.GroupID,
		SeriesID:       i.SeriesID,
		Title:          i.Title,
		StartTimestamp: i.StartTimestamp,
		Version:        i.Version,
	}
	for _, part := range i.Parts {
		p.Parts = append(p.Parts, domain.SeriesPart{
			HangoutID:      part.HangoutID,
			Title:          part.Title,
			StartTimestamp: part.StartTimestamp,
			EndTimestamp:   part.EndTimestamp,
		})
	}
	return p
}
