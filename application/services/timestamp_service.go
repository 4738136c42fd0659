package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/application/ports"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
)

// TimestampService owns the group change marker. Nothing else in the
// codebase writes it. The marker is a logical clock that only needs to
// change for caches to invalidate, so the bump is deliberately not
// transactional with the pointer write it accompanies.
type TimestampService struct {
	groups ports.GroupRepository
	clock  func() time.Time
	logger *zap.Logger
}

// NewTimestampService creates the service. A nil clock defaults to
// time.Now.
func NewTimestampService(groups ports.GroupRepository, clock func() time.Time, logger *zap.Logger) *TimestampService {
	if clock == nil {
		clock = time.Now
	}
	return &TimestampService{groups: groups, clock: clock, logger: logger}
}

// Touch advances the change marker of every listed group to now.
// Duplicates are collapsed; an empty or nil list is a no-op. A group that
// disappeared concurrently is skipped: its marker no longer matters.
func (s *TimestampService) Touch(ctx context.Context, groupIDs []string) error {
	if len(groupIDs) == 0 {
		return nil
	}

	now := s.clock().UnixMilli()
	seen := make(map[string]struct{}, len(groupIDs))
	for _, groupID := range groupIDs {
		if groupID == "" {
			continue
		}
		if _, ok := seen[groupID]; ok {
			continue
		}
		seen[groupID] = struct{}{}

		if err := s.groups.Touch(ctx, groupID, now); err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			s.logger.Error("failed to bump group change marker",
				zap.String("groupID", groupID),
				zap.Error(err),
			)
			return errors.Wrap(err, "bump group change marker")
		}
	}
	return nil
}
