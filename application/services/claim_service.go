package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/application/ports"
	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/optimistic"
)

// ClaimService implements capacity-limited spot claiming on reservation
// offers. Claims are bounded-counter increments guarded by the offer's
// version: a concurrent claim between read and write forces a retry that
// re-evaluates capacity against the fresh count, so an offer can never be
// oversold.
type ClaimService struct {
	hangouts ports.HangoutRepository
	pointers *PointerService
	logger   *zap.Logger
}

// NewClaimService creates the service.
func NewClaimService(hangouts ports.HangoutRepository, pointers *PointerService, logger *zap.Logger) *ClaimService {
	return &ClaimService{hangouts: hangouts, pointers: pointers, logger: logger}
}

// Claim takes one spot on the offer for userID. An offer without a capacity
// cannot be claimed at all; a full offer rejects with CapacityExceeded, which
// is a final answer and never retried. A user holding a claim already gets
// the same participation back without consuming another spot.
func (s *ClaimService) Claim(ctx context.Context, hangoutID, offerID, userID string) (*domain.Participation, error) {
	var claimed *domain.Participation

	err := optimistic.Do(ctx, optimistic.DefaultMaxAttempts, func(ctx context.Context) error {
		offer, err := s.hangouts.GetOffer(ctx, hangoutID, offerID)
		if err != nil {
			return err
		}
		if offer == nil {
			return errors.NewNotFoundError("reservation offer")
		}
		if offer.Capacity == nil {
			return errors.NewValidationError("offer has no capacity and cannot be claimed")
		}

		existing, err := s.hangouts.GetClaim(ctx, hangoutID, offerID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			claimed = existing
			return nil
		}

		if offer.Full() {
			return errors.NewCapacityExceededError("all spots on this offer are claimed")
		}

		offer.ClaimedSpots++
		p := domain.NewClaimedSpot(hangoutID, offerID, userID)
		if err := s.hangouts.ClaimSpot(ctx, offer, p); err != nil {
			return err
		}
		claimed = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.propagate(ctx, hangoutID); err != nil {
		return nil, err
	}
	return claimed, nil
}

// Unclaim releases the user's claimed spot. A missing claim reports NotFound
// and leaves the offer untouched, so repeating an unclaim never drives the
// counter below the real claim count.
func (s *ClaimService) Unclaim(ctx context.Context, hangoutID, offerID, userID string) error {
	err := optimistic.Do(ctx, optimistic.DefaultMaxAttempts, func(ctx context.Context) error {
		claim, err := s.hangouts.GetClaim(ctx, hangoutID, offerID, userID)
		if err != nil {
			return err
		}
		if claim == nil {
			return errors.NewNotFoundError("claimed spot")
		}

		offer, err := s.hangouts.GetOffer(ctx, hangoutID, offerID)
		if err != nil {
			return err
		}
		if offer == nil {
			return errors.NewNotFoundError("reservation offer")
		}

		if offer.ClaimedSpots > 0 {
			offer.ClaimedSpots--
		}
		return s.hangouts.ReleaseSpot(ctx, offer, userID)
	})
	if err != nil {
		return err
	}

	return s.propagate(ctx, hangoutID)
}

// propagate re-reads the canonical hangout and pushes the fresh
// participation count onto every group's pointer.
func (s *ClaimService) propagate(ctx context.Context, hangoutID string) error {
	h, err := s.hangouts.GetHangout(ctx, hangoutID)
	if err != nil {
		return errors.Wrap(err, "read hangout after claim change")
	}
	if h == nil {
		// The hangout was deleted concurrently; its pointers go with it.
		return nil
	}
	return s.pointers.PropagateHangout(ctx, h)
}
