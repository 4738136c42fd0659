package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/application/ports"
	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/observability"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/optimistic"
)

// PointerService applies canonical mutations to the denormalized pointer
// records. Single-pointer updates run under the bounded optimistic retry
// loop; multi-pointer fan-out splits into transactional chunks of at most
// ports.MaxTransactWriteItems. Chunks are atomic individually but not with
// each other: a failed chunk leaves its pointers stale until the next
// propagation of the same canonical record, and the whole operation reports
// the failure rather than absorbing it.
type PointerService struct {
	pointers   ports.PointerRepository
	groups     ports.GroupRepository
	timestamps *TimestampService
	logger     *zap.Logger
}

// NewPointerService creates the service.
func NewPointerService(
	pointers ports.PointerRepository,
	groups ports.GroupRepository,
	timestamps *TimestampService,
	logger *zap.Logger,
) *PointerService {
	return &PointerService{
		pointers:   pointers,
		groups:     groups,
		timestamps: timestamps,
		logger:     logger,
	}
}

// UpdateHangoutPointer applies mutate to one pointer under the optimistic
// retry loop: read strongly consistent, mutate, write conditioned on the
// version read. mutate must assign fields idempotently, never apply deltas.
// The owning group's change marker advances on success.
func (s *PointerService) UpdateHangoutPointer(ctx context.Context, groupID, hangoutID string, mutate func(*domain.HangoutPointer)) error {
	err := optimistic.Do(ctx, optimistic.DefaultMaxAttempts, func(ctx context.Context) error {
		p, err := s.pointers.GetHangoutPointer(ctx, groupID, hangoutID)
		if err != nil {
			return err
		}
		if p == nil {
			return errors.NewNotFoundError("hangout pointer")
		}
		mutate(p)
		return s.pointers.SaveHangoutPointer(ctx, p)
	})
	if err != nil {
		return err
	}
	return s.timestamps.Touch(ctx, []string{groupID})
}

// PropagateHangout pushes the canonical hangout's current state onto the
// pointer of every associated group, creating pointers that do not exist
// yet. Each pointer write carries the version read just before it.
func (s *PointerService) PropagateHangout(ctx context.Context, h *domain.Hangout) error {
	writes := make([]ports.PointerWrite, 0, len(h.GroupIDs))
	for _, groupID := range h.GroupIDs {
		p, err := s.pointers.GetHangoutPointer(ctx, groupID, h.ID)
		if err != nil {
			return errors.Wrap(err, "read hangout pointer")
		}
		var expected int64
		if p == nil {
			p = domain.NewHangoutPointer(h, groupID)
		} else {
			expected = p.Version
			p.ApplyHangout(h)
		}
		writes = append(writes, ports.PointerWrite{HangoutPointer: p, ExpectedVersion: expected})
	}
	return s.writeChunked(ctx, writes)
}

// PropagateGroup pushes the canonical group's display fields onto every
// membership pointer of the group. With N members this produces ceil(N/25)
// independent all-or-nothing chunks.
func (s *PointerService) PropagateGroup(ctx context.Context, g *domain.Group) error {
	memberships, err := s.groups.MembershipsByGroup(ctx, g.ID)
	if err != nil {
		return errors.Wrap(err, "list group memberships")
	}

	writes := make([]ports.PointerWrite, 0, len(memberships))
	for _, m := range memberships {
		expected := m.Version
		m.ApplyGroup(g)
		writes = append(writes, ports.PointerWrite{Membership: m, ExpectedVersion: expected})
	}
	return s.writeChunked(ctx, writes)
}

// SaveSeriesPointer writes one group's series pointer and advances the
// group's change marker.
func (s *PointerService) SaveSeriesPointer(ctx context.Context, p *domain.SeriesPointer) error {
	if err := s.pointers.SaveSeriesPointer(ctx, p); err != nil {
		return errors.Wrap(err, "save series pointer")
	}
	return s.timestamps.Touch(ctx, []string{p.GroupID})
}

// DeleteSeriesPointer removes one group's series pointer and advances the
// group's change marker. Deletes are idempotent.
func (s *PointerService) DeleteSeriesPointer(ctx context.Context, groupID, seriesID string) error {
	if err := s.pointers.DeleteSeriesPointer(ctx, groupID, seriesID); err != nil {
		return errors.Wrap(err, "delete series pointer")
	}
	return s.timestamps.Touch(ctx, []string{groupID})
}

// DeleteHangoutPointers removes the pointer for hangoutID from every listed
// group, batched. Deletes are idempotent.
func (s *PointerService) DeleteHangoutPointers(ctx context.Context, hangoutID string, groupIDs []string) error {
	writes := make([]ports.PointerWrite, 0, len(groupIDs))
	for _, groupID := range groupIDs {
		writes = append(writes, ports.PointerWrite{
			Delete: &ports.PointerKey{GroupID: groupID, HangoutID: hangoutID},
		})
	}
	return s.writeChunked(ctx, writes)
}

// writeChunked issues one transactional write per chunk, attempts every
// chunk even after a failure, bumps the change marker of every group a
// successful chunk touched, and fails the operation if any chunk failed.
func (s *PointerService) writeChunked(ctx context.Context, writes []ports.PointerWrite) error {
	var firstErr error
	var touched []string

	for _, chunk := range chunkWrites(writes, ports.MaxTransactWriteItems) {
		if err := s.pointers.TransactWrite(ctx, chunk); err != nil {
			observability.FanoutChunkFailures.Inc()
			s.logger.Error("pointer fan-out chunk failed",
				zap.Int("chunkSize", len(chunk)),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		touched = append(touched, chunkGroupIDs(chunk)...)
	}

	if err := s.timestamps.Touch(ctx, touched); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return errors.Wrap(firstErr, "pointer propagation incomplete")
	}
	return nil
}

func chunkWrites(writes []ports.PointerWrite, size int) [][]ports.PointerWrite {
	var chunks [][]ports.PointerWrite
	for len(writes) > size {
		chunks = append(chunks, writes[:size])
		writes = writes[size:]
	}
	if len(writes) > 0 {
		chunks = append(chunks, writes)
	}
	return chunks
}

func chunkGroupIDs(chunk []ports.PointerWrite) []string {
	ids := make([]string, 0, len(chunk))
	for _, w := range chunk {
		switch {
		case w.HangoutPointer != nil:
			ids = append(ids, w.HangoutPointer.GroupID)
		case w.SeriesPointer != nil:
			ids = append(ids, w.SeriesPointer.GroupID)
		case w.Membership != nil:
			ids = append(ids, w.Membership.GroupID)
		case w.Delete != nil:
			ids = append(ids, w.Delete.GroupID)
		}
	}
	return ids
}
