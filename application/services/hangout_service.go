package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/application/ports"
	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/optimistic"
)

// HangoutService manages canonical hangouts, their nested polls, votes and
// participations, reservation offers, and event series. Every mutation ends
// by propagating the fresh canonical state onto all associated group
// pointers, so a feed read never has to touch the canonical record.
type HangoutService struct {
	hangouts ports.HangoutRepository
	groups   ports.GroupRepository
	series   ports.SeriesRepository
	pointers *PointerService
	clock    func() time.Time
	logger   *zap.Logger
}

// NewHangoutService creates the service. A nil clock defaults to time.Now.
func NewHangoutService(
	hangouts ports.HangoutRepository,
	groups ports.GroupRepository,
	series ports.SeriesRepository,
	pointers *PointerService,
	clock func() time.Time,
	logger *zap.Logger,
) *HangoutService {
	if clock == nil {
		clock = time.Now
	}
	return &HangoutService{
		hangouts: hangouts,
		groups:   groups,
		series:   series,
		pointers: pointers,
		clock:    clock,
		logger:   logger,
	}
}

// HangoutInput carries the fields of a new hangout.
type HangoutInput struct {
	Title         string
	Description   string
	Location      string
	MainImagePath string
	GroupIDs      []string
	Window        *domain.TimeWindow
}

// CreateHangout creates a canonical hangout and a pointer in every
// associated group. The creator must be a member of each group.
func (s *HangoutService) CreateHangout(ctx context.Context, userID string, input HangoutInput) (*domain.Hangout, error) {
	if input.Title == "" {
		return nil, errors.NewValidationError("hangout title is required")
	}
	if len(input.GroupIDs) == 0 {
		return nil, errors.NewValidationError("hangout must be associated with at least one group")
	}
	if input.Window != nil && input.Window.End <= input.Window.Start {
		return nil, errors.NewValidationError("time window end must be after start")
	}
	for _, groupID := range input.GroupIDs {
		if err := s.requireMembership(ctx, groupID, userID); err != nil {
			return nil, err
		}
	}

	h := domain.NewHangout(input.Title, input.GroupIDs)
	h.Description = input.Description
	h.Location = input.Location
	h.MainImagePath = input.MainImagePath
	if input.Window != nil {
		w := *input.Window
		h.Window = &w
	}

	if err := s.hangouts.SaveHangout(ctx, h); err != nil {
		return nil, errors.Wrap(err, "save hangout")
	}
	if err := s.pointers.PropagateHangout(ctx, h); err != nil {
		return nil, err
	}

	s.logger.Info("hangout created",
		zap.String("hangoutID", h.ID),
		zap.Int("groups", len(h.GroupIDs)),
	)
	return h, nil
}

// GetHangout returns the canonical hangout if userID belongs to at least one
// of its groups.
func (s *HangoutService) GetHangout(ctx context.Context, hangoutID, userID string) (*domain.Hangout, error) {
	h, err := s.hangouts.GetHangout(ctx, hangoutID)
	if err != nil {
		return nil, errors.Wrap(err, "read hangout")
	}
	if h == nil {
		return nil, errors.NewNotFoundError("hangout")
	}
	if err := s.requireAnyMembership(ctx, h, userID); err != nil {
		return nil, err
	}
	return h, nil
}

// HangoutUpdate carries the mutable fields of a hangout. Nil fields are left
// unchanged.
type HangoutUpdate struct {
	Title         *string
	Description   *string
	Location      *string
	MainImagePath *string
	Window        *domain.TimeWindow
}

// UpdateHangout mutates the canonical record and propagates to every
// pointer.
func (s *HangoutService) UpdateHangout(ctx context.Context, hangoutID, userID string, update HangoutUpdate) (*domain.Hangout, error) {
	if update.Title != nil && *update.Title == "" {
		return nil, errors.NewValidationError("hangout title cannot be empty")
	}
	if update.Window != nil && update.Window.End <= update.Window.Start {
		return nil, errors.NewValidationError("time window end must be after start")
	}

	return s.mutate(ctx, hangoutID, userID, func(h *domain.Hangout) error {
		if update.Title != nil {
			h.Title = *update.Title
		}
		if update.Description != nil {
			h.Description = *update.Description
		}
		if update.Location != nil {
			h.Location = *update.Location
		}
		if update.MainImagePath != nil {
			h.MainImagePath = *update.MainImagePath
		}
		if update.Window != nil {
			w := *update.Window
			h.Window = &w
		}
		return nil
	})
}

// AssociateGroup adds the hangout to another group, creating that group's
// pointer. The caller must belong to the target group.
func (s *HangoutService) AssociateGroup(ctx context.Context, hangoutID, groupID, userID string) (*domain.Hangout, error) {
	if err := s.requireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, hangoutID, userID, func(h *domain.Hangout) error {
		h.AssociateGroup(groupID)
		return nil
	})
}

// DisassociateGroup removes the hangout from a group and deletes that
// group's pointer.
func (s *HangoutService) DisassociateGroup(ctx context.Context, hangoutID, groupID, userID string) (*domain.Hangout, error) {
	h, err := s.mutate(ctx, hangoutID, userID, func(h *domain.Hangout) error {
		if !h.DisassociateGroup(groupID) {
			return errors.NewNotFoundError("group association")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.pointers.DeleteHangoutPointers(ctx, hangoutID, []string{groupID}); err != nil {
		return nil, err
	}
	return h, nil
}

// DeleteHangout removes the canonical record and cascades to every group's
// pointer.
func (s *HangoutService) DeleteHangout(ctx context.Context, hangoutID, userID string) error {
	h, err := s.hangouts.GetHangout(ctx, hangoutID)
	if err != nil {
		return errors.Wrap(err, "read hangout")
	}
	if h == nil {
		return errors.NewNotFoundError("hangout")
	}
	if err := s.requireAnyMembership(ctx, h, userID); err != nil {
		return err
	}

	if err := s.hangouts.DeleteHangout(ctx, hangoutID); err != nil {
		return errors.Wrap(err, "delete hangout")
	}
	return s.pointers.DeleteHangoutPointers(ctx, hangoutID, h.GroupIDs)
}

// AddPoll attaches a poll to the hangout.
func (s *HangoutService) AddPoll(ctx context.Context, hangoutID, userID, title string, optionTitles []string) (*domain.Hangout, error) {
	if title == "" {
		return nil, errors.NewValidationError("poll title is required")
	}
	if len(optionTitles) < 2 {
		return nil, errors.NewValidationError("poll needs at least two options")
	}
	return s.mutate(ctx, hangoutID, userID, func(h *domain.Hangout) error {
		h.Polls = append(h.Polls, domain.NewPoll(title, optionTitles))
		return nil
	})
}

// CastVote records the user's vote on a poll option. The vote lands on the
// canonical record and the resulting counts fan out to every pointer, which
// in turn advances each group's change marker.
func (s *HangoutService) CastVote(ctx context.Context, hangoutID, pollID, optionID, userID string) (*domain.Hangout, error) {
	now := s.clock()
	return s.mutate(ctx, hangoutID, userID, func(h *domain.Hangout) error {
		poll := h.Poll(pollID)
		if poll == nil {
			return errors.NewNotFoundError("poll")
		}
		found := false
		for _, o := range poll.Options {
			if o.ID == optionID {
				found = true
				break
			}
		}
		if !found {
			return errors.NewNotFoundError("poll option")
		}
		poll.CastVote(optionID, userID, now)
		return nil
	})
}

// SetParticipation records the user's interest level on the hangout,
// replacing any previous non-claim participation. Claimed spots are managed
// by the claim engine and are never touched here.
func (s *HangoutService) SetParticipation(ctx context.Context, hangoutID, userID string, pType domain.ParticipationType) (*domain.Hangout, error) {
	if pType != domain.ParticipationInterested && pType != domain.ParticipationGoing {
		return nil, errors.NewValidationError("participation type must be INTERESTED or GOING")
	}
	now := s.clock()
	return s.mutate(ctx, hangoutID, userID, func(h *domain.Hangout) error {
		for i := range h.Participations {
			p := &h.Participations[i]
			if p.UserID == userID && p.Type != domain.ParticipationClaimedSpot {
				p.Type = pType
				p.CreatedAt = now
				return nil
			}
		}
		h.Participations = append(h.Participations, domain.Participation{
			HangoutID: hangoutID,
			UserID:    userID,
			Type:      pType,
			CreatedAt: now,
		})
		return nil
	})
}

// ClearParticipation removes the user's non-claim participation. Succeeds
// even when none exists.
func (s *HangoutService) ClearParticipation(ctx context.Context, hangoutID, userID string) (*domain.Hangout, error) {
	return s.mutate(ctx, hangoutID, userID, func(h *domain.Hangout) error {
		for i := range h.Participations {
			p := h.Participations[i]
			if p.UserID == userID && p.Type != domain.ParticipationClaimedSpot {
				h.Participations = append(h.Participations[:i], h.Participations[i+1:]...)
				return nil
			}
		}
		return nil
	})
}

// CreateOffer attaches a reservation offer to the hangout. A nil capacity
// creates an informational offer whose spots cannot be claimed.
func (s *HangoutService) CreateOffer(ctx context.Context, hangoutID, userID, title string, capacity *int) (*domain.ReservationOffer, error) {
	if title == "" {
		return nil, errors.NewValidationError("offer title is required")
	}
	if capacity != nil && *capacity <= 0 {
		return nil, errors.NewValidationError("offer capacity must be positive")
	}

	h, err := s.hangouts.GetHangout(ctx, hangoutID)
	if err != nil {
		return nil, errors.Wrap(err, "read hangout")
	}
	if h == nil {
		return nil, errors.NewNotFoundError("hangout")
	}
	if err := s.requireAnyMembership(ctx, h, userID); err != nil {
		return nil, err
	}

	o := domain.NewReservationOffer(hangoutID, title, capacity)
	if err := s.hangouts.SaveOffer(ctx, o); err != nil {
		return nil, errors.Wrap(err, "save offer")
	}
	return o, nil
}

// CreateSeries groups existing hangouts of one group into an event series,
// for example the episodes of a watch party. Every part's SeriesID is set
// and a series pointer carrying part summaries lands in the group, so the
// feed can absorb the parts into a single entry.
func (s *HangoutService) CreateSeries(ctx context.Context, groupID, userID, title string, hangoutIDs []string) (*domain.EventSeries, error) {
	if title == "" {
		return nil, errors.NewValidationError("series title is required")
	}
	if len(hangoutIDs) == 0 {
		return nil, errors.NewValidationError("series needs at least one hangout")
	}
	if err := s.requireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}

	es := domain.NewEventSeries(title, groupID, hangoutIDs)
	parts := make([]domain.SeriesPart, 0, len(hangoutIDs))

	for _, hangoutID := range hangoutIDs {
		h, err := s.hangouts.GetHangout(ctx, hangoutID)
		if err != nil {
			return nil, errors.Wrap(err, "read series part")
		}
		if h == nil {
			return nil, errors.NewNotFoundError("hangout")
		}
		if !h.HasGroup(groupID) {
			return nil, errors.NewValidationError("series parts must belong to the series group")
		}
		part := domain.SeriesPart{HangoutID: h.ID, Title: h.Title}
		if h.Window != nil {
			part.StartTimestamp = h.Window.Start
			part.EndTimestamp = h.Window.End
		}
		parts = append(parts, part)
	}

	if err := s.series.SaveSeries(ctx, es); err != nil {
		return nil, errors.Wrap(err, "save series")
	}

	sp := domain.NewSeriesPointer(es, groupID, parts)
	if err := s.pointers.SaveSeriesPointer(ctx, sp); err != nil {
		return nil, err
	}

	// Stamp each part with the series and refresh its pointers so feed rows
	// resolve to the series entry.
	for _, hangoutID := range hangoutIDs {
		if _, err := s.mutate(ctx, hangoutID, userID, func(h *domain.Hangout) error {
			h.SeriesID = es.ID
			return nil
		}); err != nil {
			return nil, err
		}
	}
	return es, nil
}

// DeleteSeries dissolves a series: parts revert to standalone hangouts.
func (s *HangoutService) DeleteSeries(ctx context.Context, groupID, seriesID, userID string) error {
	if err := s.requireMembership(ctx, groupID, userID); err != nil {
		return err
	}
	es, err := s.series.GetSeries(ctx, seriesID)
	if err != nil {
		return errors.Wrap(err, "read series")
	}
	if es == nil {
		return errors.NewNotFoundError("series")
	}

	for _, hangoutID := range es.HangoutIDs {
		if _, err := s.mutate(ctx, hangoutID, userID, func(h *domain.Hangout) error {
			h.SeriesID = ""
			return nil
		}); err != nil && !errors.IsNotFound(err) {
			return err
		}
	}

	if err := s.pointers.DeleteSeriesPointer(ctx, groupID, seriesID); err != nil {
		return err
	}
	return errors.Wrap(s.series.DeleteSeries(ctx, seriesID), "delete series")
}

// mutate runs apply on the canonical hangout under the bounded retry loop,
// then propagates the committed state to all group pointers. apply errors
// other than Conflict abort without retry.
func (s *HangoutService) mutate(ctx context.Context, hangoutID, userID string, apply func(*domain.Hangout) error) (*domain.Hangout, error) {
	var committed *domain.Hangout

	err := optimistic.Do(ctx, optimistic.DefaultMaxAttempts, func(ctx context.Context) error {
		h, err := s.hangouts.GetHangout(ctx, hangoutID)
		if err != nil {
			return err
		}
		if h == nil {
			return errors.NewNotFoundError("hangout")
		}
		if err := s.requireAnyMembership(ctx, h, userID); err != nil {
			return err
		}
		if err := apply(h); err != nil {
			return err
		}
		if err := s.hangouts.SaveHangout(ctx, h); err != nil {
			return err
		}
		committed = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.pointers.PropagateHangout(ctx, committed); err != nil {
		return nil, err
	}
	return committed, nil
}

func (s *HangoutService) requireMembership(ctx context.Context, groupID, userID string) error {
	m, err := s.groups.GetMembership(ctx, groupID, userID)
	if err != nil {
		return errors.Wrap(err, "read membership")
	}
	if m == nil {
		return errors.NewForbiddenError("not a member of this group")
	}
	return nil
}

// requireAnyMembership passes when the user belongs to at least one of the
// hangout's groups.
func (s *HangoutService) requireAnyMembership(ctx context.Context, h *domain.Hangout, userID string) error {
	for _, groupID := range h.GroupIDs {
		m, err := s.groups.GetMembership(ctx, groupID, userID)
		if err != nil {
			return errors.Wrap(err, "read membership")
		}
		if m != nil {
			return nil
		}
	}
	return errors.NewForbiddenError("not a member of any associated group")
}
