package services

import (
	"context"

	"github.com/bbthechange/hangoutsBackend-sub012/application/ports"
	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/common"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/observability"
)

// FreshnessResult is the outcome of the ETag gate. When NotModified is true
// the caller responds 304 without running the feed query; either way ETag
// carries the canonical token to echo back.
type FreshnessResult struct {
	Group       *domain.Group
	ETag        common.ETag
	NotModified bool
}

// ETagService is the cheap pre-check in front of the feed: two strongly
// consistent point reads decide whether the expensive query can be skipped.
type ETagService struct {
	groups ports.GroupRepository
}

// NewETagService creates the gate.
func NewETagService(groups ports.GroupRepository) *ETagService {
	return &ETagService{groups: groups}
}

// CheckFreshness authorizes the caller against the group and compares the
// presented If-None-Match token with the canonical one derived from the
// group's change marker. Exactly two reads are spent regardless of outcome.
func (s *ETagService) CheckFreshness(ctx context.Context, groupID, userID, presentedToken string) (*FreshnessResult, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "read group")
	}
	if group == nil {
		return nil, errors.NewNotFoundError("group")
	}

	membership, err := s.groups.GetMembership(ctx, groupID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "read membership")
	}
	if membership == nil {
		return nil, errors.NewForbiddenError("not a member of this group")
	}

	tag := common.NewETag(groupID, group.LastActivityAt)
	if tag.Matches(presentedToken) {
		observability.FeedNotModified.Inc()
		return &FreshnessResult{Group: group, ETag: tag, NotModified: true}, nil
	}
	return &FreshnessResult{Group: group, ETag: tag, NotModified: false}, nil
}
