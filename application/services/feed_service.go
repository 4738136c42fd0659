package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bbthechange/hangoutsBackend-sub012/application/ports"
	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/common"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
)

const (
	// DefaultFeedLimit applies when the client sends no limit.
	DefaultFeedLimit = 20
	// MaxFeedLimit caps the page size.
	MaxFeedLimit = 100
)

// FeedPage is one page of the group feed. WithoutDay is a deprecated
// secondary list kept for API compatibility; no query backs it and it is
// always empty.
type FeedPage struct {
	Items      []domain.FeedItem `json:"items"`
	WithoutDay []domain.FeedItem `json:"withoutDay"`
	NextCursor string            `json:"nextCursor,omitempty"`
	PrevCursor string            `json:"prevCursor,omitempty"`
}

// FeedService merges hangout and series pointers into a chronological,
// bidirectionally paginated feed.
type FeedService struct {
	pointers ports.PointerRepository
	clock    func() time.Time
}

// NewFeedService creates the engine. A nil clock defaults to time.Now.
func NewFeedService(pointers ports.PointerRepository, clock func() time.Time) *FeedService {
	if clock == nil {
		clock = time.Now
	}
	return &FeedService{pointers: pointers, clock: clock}
}

// GetFeed returns one page. startingAfter and endingBefore are opaque
// cursors from a previous page; endingBefore wins when both are present
// because only it can carry a backward cursor.
func (s *FeedService) GetFeed(ctx context.Context, groupID string, limit int, startingAfter, endingBefore string) (*FeedPage, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	backCursor, err := common.DecodeFeedCursor(endingBefore)
	if err != nil {
		return nil, errors.NewValidationError("invalid endingBefore cursor").WithCause(err)
	}
	fwdCursor, err := common.DecodeFeedCursor(startingAfter)
	if err != nil {
		return nil, errors.NewValidationError("invalid startingAfter cursor").WithCause(err)
	}

	if backCursor != nil && backCursor.Direction == common.DirectionBackward {
		return s.backwardPage(ctx, groupID, limit, backCursor)
	}
	return s.forwardPage(ctx, groupID, limit, fwdCursor)
}

// forwardPage merges the "future" and "in-progress" sub-queries, issued
// concurrently, on ascending start time.
func (s *FeedService) forwardPage(ctx context.Context, groupID string, limit int, cursor *common.FeedCursor) (*FeedPage, error) {
	now := s.clock().UnixMilli()
	boundaryTS := now
	boundaryID := ""
	if cursor != nil {
		boundaryTS = cursor.Timestamp
		boundaryID = cursor.ItemID
	}

	var (
		wg                 sync.WaitGroup
		future, inProgress []*domain.HangoutPointer
		futureErr, progErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		future, futureErr = s.pointers.QueryUpcoming(ctx, groupID, boundaryTS, boundaryID, limit)
	}()
	go func() {
		defer wg.Done()
		inProgress, progErr = s.pointers.QueryInProgress(ctx, groupID, now)
	}()
	wg.Wait()

	if futureErr != nil {
		return nil, errors.Wrap(futureErr, "query upcoming hangouts")
	}
	if progErr != nil {
		return nil, errors.Wrap(progErr, "query in-progress hangouts")
	}

	merged := mergePointers(inProgress, future)
	if cursor != nil {
		// Continuation pages must not re-emit items at or before the
		// boundary; in-progress items only surface on the first page.
		merged = filterAfter(merged, boundaryTS, boundaryID)
	}

	items, err := s.buildItems(ctx, groupID, merged, cursor)
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool { return itemLess(items[i], items[j]) })
	if len(items) > limit {
		items = items[:limit]
	}

	page := &FeedPage{Items: items, WithoutDay: []domain.FeedItem{}}
	switch {
	case len(items) == limit:
		last := items[len(items)-1]
		page.NextCursor = common.FeedCursor{
			ItemID:    last.SortID,
			Timestamp: last.SortTimestamp,
			Direction: common.DirectionForward,
		}.Encode()
	case len(future) == limit:
		// Absorption can shrink a page below the limit even though more
		// pointers remain; the cursor still has to advance past everything
		// retrieved or the walk stalls on series parts.
		last := future[len(future)-1]
		page.NextCursor = common.FeedCursor{
			ItemID:    last.HangoutID,
			Timestamp: last.StartTimestamp,
			Direction: common.DirectionForward,
		}.Encode()
	}
	if len(items) > 0 {
		page.PrevCursor = common.FeedCursor{
			ItemID:    items[0].SortID,
			Timestamp: boundaryTS,
			Direction: common.DirectionBackward,
		}.Encode()
	}
	return page, nil
}

// backwardPage queries strictly by end time descending, less than the
// cursor boundary.
func (s *FeedService) backwardPage(ctx context.Context, groupID string, limit int, cursor *common.FeedCursor) (*FeedPage, error) {
	pointers, err := s.pointers.QueryEndedBefore(ctx, groupID, cursor.Timestamp, cursor.ItemID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query ended hangouts")
	}

	items, err := s.buildItems(ctx, groupID, pointers, nil)
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool { return itemLess(items[j], items[i]) })
	if len(items) > limit {
		items = items[:limit]
	}

	page := &FeedPage{Items: items, WithoutDay: []domain.FeedItem{}}
	if len(items) > 0 {
		first := items[0]
		page.NextCursor = common.FeedCursor{
			ItemID:    first.SortID,
			Timestamp: first.SortTimestamp,
			Direction: common.DirectionForward,
		}.Encode()
		oldest := items[len(items)-1]
		page.PrevCursor = common.FeedCursor{
			ItemID:    oldest.SortID,
			Timestamp: backwardBoundary(oldest),
			Direction: common.DirectionBackward,
		}.Encode()
	}
	return page, nil
}

// buildItems turns pointers into feed items, emitting each referenced
// series exactly once and absorbing its member hangouts. A seriesID whose
// pointer is missing degrades the hangout to standalone. A non-nil after
// cursor marks a forward continuation: series that sort at or before the
// boundary were already emitted on an earlier page, so their parts are
// absorbed without re-emitting the series item.
func (s *FeedService) buildItems(ctx context.Context, groupID string, pointers []*domain.HangoutPointer, after *common.FeedCursor) ([]domain.FeedItem, error) {
	var seriesOrder []string
	seen := make(map[string]bool)
	for _, p := range pointers {
		if p.SeriesID == "" || seen[p.SeriesID] {
			continue
		}
		seen[p.SeriesID] = true
		seriesOrder = append(seriesOrder, p.SeriesID)
	}

	surfaced := make(map[string]*domain.SeriesPointer, len(seriesOrder))
	for _, seriesID := range seriesOrder {
		sp, err := s.pointers.GetSeriesPointer(ctx, groupID, seriesID)
		if err != nil {
			return nil, errors.Wrap(err, "read series pointer")
		}
		if sp != nil {
			surfaced[seriesID] = sp
		}
	}

	items := make([]domain.FeedItem, 0, len(pointers))
	emitted := make(map[string]bool, len(surfaced))
	for _, p := range pointers {
		if p.SeriesID != "" {
			if sp, ok := surfaced[p.SeriesID]; ok {
				if !emitted[p.SeriesID] {
					emitted[p.SeriesID] = true
					if after == nil || sortsAfter(sp.StartTimestamp, sp.SeriesID, after.Timestamp, after.ItemID) {
						items = append(items, domain.NewSeriesFeedItem(sp))
					}
				}
				continue
			}
		}
		items = append(items, domain.NewHangoutFeedItem(p))
	}
	return items, nil
}

func mergePointers(a, b []*domain.HangoutPointer) []*domain.HangoutPointer {
	seen := make(map[string]bool, len(a)+len(b))
	merged := make([]*domain.HangoutPointer, 0, len(a)+len(b))
	for _, p := range append(append([]*domain.HangoutPointer(nil), a...), b...) {
		if seen[p.HangoutID] {
			continue
		}
		seen[p.HangoutID] = true
		merged = append(merged, p)
	}
	return merged
}

func filterAfter(pointers []*domain.HangoutPointer, ts int64, id string) []*domain.HangoutPointer {
	out := pointers[:0]
	for _, p := range pointers {
		if sortsAfter(p.StartTimestamp, p.HangoutID, ts, id) {
			out = append(out, p)
		}
	}
	return out
}

// sortsAfter reports whether (ts, id) falls strictly after the boundary in
// the feed's (timestamp, id) total order.
func sortsAfter(ts int64, id string, boundaryTS int64, boundaryID string) bool {
	return ts > boundaryTS || (ts == boundaryTS && id > boundaryID)
}

func itemLess(a, b domain.FeedItem) bool {
	if a.SortTimestamp != b.SortTimestamp {
		return a.SortTimestamp < b.SortTimestamp
	}
	return a.SortID < b.SortID
}

// backwardBoundary picks the end-time boundary a backward continuation
// resumes from.
func backwardBoundary(item domain.FeedItem) int64 {
	if item.Kind == domain.FeedItemKindHangout && item.Hangout != nil {
		return item.Hangout.EndTimestamp
	}
	return item.SortTimestamp
}
