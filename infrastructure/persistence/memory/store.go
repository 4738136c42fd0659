// Package memory provides an in-memory implementation of the repository
// ports with the same version-conditioning semantics as the DynamoDB
// implementation. It backs service tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bbthechange/hangoutsBackend-sub012/application/ports"
	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
)

// Store holds every entity kind behind one mutex. Reads return deep copies
// so callers never alias stored state.
type Store struct {
	mu sync.Mutex

	groups      map[string]*domain.Group
	memberships map[string]*domain.GroupMembership
	hangouts    map[string]*domain.Hangout
	offers      map[string]*domain.ReservationOffer
	claims      map[string]*domain.Participation
	series      map[string]*domain.EventSeries
	hangoutPtrs map[string]*domain.HangoutPointer
	seriesPtrs  map[string]*domain.SeriesPointer

	// TransactErr, when set, is consulted before every TransactWrite chunk.
	// Tests use it to fail selected chunks.
	TransactErr func(writes []ports.PointerWrite) error

	// BeforeOfferWrite, when set, runs after an offer's version check passed
	// but is re-checked afterwards. Tests use it to interleave a concurrent
	// claim between read and write.
	BeforeOfferWrite func()
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		groups:      make(map[string]*domain.Group),
		memberships: make(map[string]*domain.GroupMembership),
		hangouts:    make(map[string]*domain.Hangout),
		offers:      make(map[string]*domain.ReservationOffer),
		claims:      make(map[string]*domain.Participation),
		series:      make(map[string]*domain.EventSeries),
		hangoutPtrs: make(map[string]*domain.HangoutPointer),
		seriesPtrs:  make(map[string]*domain.SeriesPointer),
	}
}

func membershipKey(groupID, userID string) string  { return groupID + "/" + userID }
func offerKey(hangoutID, offerID string) string    { return hangoutID + "/" + offerID }
func claimKey(hangoutID, offerID, u string) string { return hangoutID + "/" + offerID + "/" + u }
func pointerKey(groupID, id string) string         { return groupID + "/" + id }

func copyGroup(g *domain.Group) *domain.Group {
	c := *g
	return &c
}

func copyMembership(m *domain.GroupMembership) *domain.GroupMembership {
	c := *m
	return &c
}

func copyHangout(h *domain.Hangout) *domain.Hangout {
	c := *h
	c.GroupIDs = append([]string(nil), h.GroupIDs...)
	c.Participations = append([]domain.Participation(nil), h.Participations...)
	c.Polls = make([]domain.Poll, len(h.Polls))
	for i, p := range h.Polls {
		cp := p
		cp.Options = append([]domain.PollOption(nil), p.Options...)
		cp.Votes = append([]domain.Vote(nil), p.Votes...)
		c.Polls[i] = cp
	}
	if h.Window != nil {
		w := *h.Window
		c.Window = &w
	}
	return &c
}

func copyOffer(o *domain.ReservationOffer) *domain.ReservationOffer {
	c := *o
	if o.Capacity != nil {
		cap := *o.Capacity
		c.Capacity = &cap
	}
	return &c
}

func copySeries(s *domain.EventSeries) *domain.EventSeries {
	c := *s
	c.HangoutIDs = append([]string(nil), s.HangoutIDs...)
	return &c
}

func copyHangoutPointer(p *domain.HangoutPointer) *domain.HangoutPointer {
	c := *p
	return &c
}

func copySeriesPointer(p *domain.SeriesPointer) *domain.SeriesPointer {
	c := *p
	c.Parts = append([]domain.SeriesPart(nil), p.Parts...)
	return &c
}

// --- GroupRepository ---

func (s *Store) CreateWithOwner(ctx context.Context, g *domain.Group, owner *domain.GroupMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.ID]; ok {
		return errors.NewConflictError("group already exists")
	}
	s.groups[g.ID] = copyGroup(g)
	s.memberships[membershipKey(owner.GroupID, owner.UserID)] = copyMembership(owner)
	return nil
}

func (s *Store) SaveGroup(ctx context.Context, g *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.groups[g.ID]
	if ok && stored.Version != g.Version {
		return errors.NewConflictError("group version mismatch")
	}
	g.Version++
	s.groups[g.ID] = copyGroup(g)
	return nil
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, nil
	}
	return copyGroup(g), nil
}

func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, groupID)
	return nil
}

func (s *Store) Touch(ctx context.Context, groupID string, markerMillis int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return errors.NewNotFoundError("group")
	}
	if markerMillis > g.LastActivityAt {
		g.LastActivityAt = markerMillis
	} else {
		// The marker only needs to change. A same-millisecond touch still
		// has to advance it.
		g.LastActivityAt++
	}
	return nil
}

func (s *Store) SaveMembership(ctx context.Context, m *domain.GroupMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membershipKey(m.GroupID, m.UserID)
	stored, ok := s.memberships[key]
	if ok && stored.Version != m.Version {
		return errors.NewConflictError("membership version mismatch")
	}
	m.Version++
	s.memberships[key] = copyMembership(m)
	return nil
}

func (s *Store) GetMembership(ctx context.Context, groupID, userID string) (*domain.GroupMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memberships[membershipKey(groupID, userID)]
	if !ok {
		return nil, nil
	}
	return copyMembership(m), nil
}

func (s *Store) DeleteMembership(ctx context.Context, groupID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memberships, membershipKey(groupID, userID))
	return nil
}

func (s *Store) MembershipsByGroup(ctx context.Context, groupID string) ([]*domain.GroupMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.GroupMembership
	for _, m := range s.memberships {
		if m.GroupID == groupID {
			out = append(out, copyMembership(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *Store) MembershipsByUser(ctx context.Context, userID string) ([]*domain.GroupMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.GroupMembership
	for _, m := range s.memberships {
		if m.UserID == userID {
			out = append(out, copyMembership(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	return out, nil
}

// --- HangoutRepository ---

func (s *Store) SaveHangout(ctx context.Context, h *domain.Hangout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.hangouts[h.ID]
	if ok && stored.Version != h.Version {
		return errors.NewConflictError("hangout version mismatch")
	}
	h.Version++
	c := copyHangout(h)
	// Claimed spots are stored as their own items and merged back on read;
	// persisting them here would double them on the next read.
	kept := c.Participations[:0]
	for _, p := range c.Participations {
		if p.Type != domain.ParticipationClaimedSpot {
			kept = append(kept, p)
		}
	}
	c.Participations = kept
	s.hangouts[h.ID] = c
	return nil
}

func (s *Store) GetHangout(ctx context.Context, hangoutID string) (*domain.Hangout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hangouts[hangoutID]
	if !ok {
		return nil, nil
	}
	c := copyHangout(h)
	// Claims live as separate items under the hangout partition; fold them
	// into the participation list so counts derive from canonical state.
	var keys []string
	for k, p := range s.claims {
		if p.HangoutID == hangoutID {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.Participations = append(c.Participations, *s.claims[k])
	}
	return c, nil
}

func (s *Store) DeleteHangout(ctx context.Context, hangoutID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hangouts, hangoutID)
	for k, o := range s.offers {
		if o.HangoutID == hangoutID {
			delete(s.offers, k)
		}
	}
	for k, p := range s.claims {
		if p.HangoutID == hangoutID {
			delete(s.claims, k)
		}
	}
	return nil
}

func (s *Store) SaveOffer(ctx context.Context, o *domain.ReservationOffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := offerKey(o.HangoutID, o.ID)
	stored, ok := s.offers[key]
	if ok && stored.Version != o.Version {
		return errors.NewConflictError("offer version mismatch")
	}
	o.Version++
	s.offers[key] = copyOffer(o)
	return nil
}

func (s *Store) GetOffer(ctx context.Context, hangoutID, offerID string) (*domain.ReservationOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[offerKey(hangoutID, offerID)]
	if !ok {
		return nil, nil
	}
	return copyOffer(o), nil
}

func (s *Store) ClaimSpot(ctx context.Context, o *domain.ReservationOffer, p *domain.Participation) error {
	if hook := s.BeforeOfferWrite; hook != nil {
		hook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := offerKey(o.HangoutID, o.ID)
	stored, ok := s.offers[key]
	if !ok {
		return errors.NewNotFoundError("reservation offer")
	}
	if stored.Version != o.Version {
		return errors.NewConflictError("offer version mismatch")
	}
	o.Version++
	s.offers[key] = copyOffer(o)
	cp := *p
	s.claims[claimKey(p.HangoutID, p.OfferID, p.UserID)] = &cp
	return nil
}

func (s *Store) ReleaseSpot(ctx context.Context, o *domain.ReservationOffer, userID string) error {
	if hook := s.BeforeOfferWrite; hook != nil {
		hook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := offerKey(o.HangoutID, o.ID)
	stored, ok := s.offers[key]
	if !ok {
		return errors.NewNotFoundError("reservation offer")
	}
	if stored.Version != o.Version {
		return errors.NewConflictError("offer version mismatch")
	}
	o.Version++
	s.offers[key] = copyOffer(o)
	delete(s.claims, claimKey(o.HangoutID, o.ID, userID))
	return nil
}

func (s *Store) GetClaim(ctx context.Context, hangoutID, offerID, userID string) (*domain.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.claims[claimKey(hangoutID, offerID, userID)]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// --- SeriesRepository ---

func (s *Store) SaveSeries(ctx context.Context, es *domain.EventSeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.series[es.ID]
	if ok && stored.Version != es.Version {
		return errors.NewConflictError("series version mismatch")
	}
	es.Version++
	s.series[es.ID] = copySeries(es)
	return nil
}

func (s *Store) GetSeries(ctx context.Context, seriesID string) (*domain.EventSeries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	es, ok := s.series[seriesID]
	if !ok {
		return nil, nil
	}
	return copySeries(es), nil
}

func (s *Store) DeleteSeries(ctx context.Context, seriesID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.series, seriesID)
	return nil
}

// --- PointerRepository ---

func (s *Store) GetHangoutPointer(ctx context.Context, groupID, hangoutID string) (*domain.HangoutPointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.hangoutPtrs[pointerKey(groupID, hangoutID)]
	if !ok {
		return nil, nil
	}
	return copyHangoutPointer(p), nil
}

func (s *Store) SaveHangoutPointer(ctx context.Context, p *domain.HangoutPointer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pointerKey(p.GroupID, p.HangoutID)
	stored, ok := s.hangoutPtrs[key]
	if ok && stored.Version != p.Version {
		return errors.NewConflictError("hangout pointer version mismatch")
	}
	p.Version++
	s.hangoutPtrs[key] = copyHangoutPointer(p)
	return nil
}

func (s *Store) DeleteHangoutPointer(ctx context.Context, groupID, hangoutID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hangoutPtrs, pointerKey(groupID, hangoutID))
	return nil
}

func (s *Store) HangoutPointersByGroup(ctx context.Context, groupID string) ([]*domain.HangoutPointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.HangoutPointer
	for _, p := range s.hangoutPtrs {
		if p.GroupID == groupID {
			out = append(out, copyHangoutPointer(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HangoutID < out[j].HangoutID })
	return out, nil
}

func (s *Store) GetSeriesPointer(ctx context.Context, groupID, seriesID string) (*domain.SeriesPointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.seriesPtrs[pointerKey(groupID, seriesID)]
	if !ok {
		return nil, nil
	}
	return copySeriesPointer(p), nil
}

func (s *Store) SaveSeriesPointer(ctx context.Context, p *domain.SeriesPointer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pointerKey(p.GroupID, p.SeriesID)
	stored, ok := s.seriesPtrs[key]
	if ok && stored.Version != p.Version {
		return errors.NewConflictError("series pointer version mismatch")
	}
	p.Version++
	s.seriesPtrs[key] = copySeriesPointer(p)
	return nil
}

func (s *Store) DeleteSeriesPointer(ctx context.Context, groupID, seriesID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seriesPtrs, pointerKey(groupID, seriesID))
	return nil
}

func after(ts int64, id string, boundaryTS int64, boundaryID string) bool {
	if ts != boundaryTS {
		return ts > boundaryTS
	}
	return id > boundaryID
}

func (s *Store) QueryUpcoming(ctx context.Context, groupID string, afterTimestamp int64, afterID string, limit int) ([]*domain.HangoutPointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.HangoutPointer
	for _, p := range s.hangoutPtrs {
		if p.GroupID == groupID && p.Dated() && after(p.StartTimestamp, p.HangoutID, afterTimestamp, afterID) {
			out = append(out, copyHangoutPointer(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTimestamp != out[j].StartTimestamp {
			return out[i].StartTimestamp < out[j].StartTimestamp
		}
		return out[i].HangoutID < out[j].HangoutID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) QueryInProgress(ctx context.Context, groupID string, at int64) ([]*domain.HangoutPointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.HangoutPointer
	for _, p := range s.hangoutPtrs {
		if p.GroupID == groupID && p.Dated() && p.StartTimestamp <= at && p.EndTimestamp > at {
			out = append(out, copyHangoutPointer(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTimestamp != out[j].StartTimestamp {
			return out[i].StartTimestamp < out[j].StartTimestamp
		}
		return out[i].HangoutID < out[j].HangoutID
	})
	return out, nil
}

func (s *Store) QueryEndedBefore(ctx context.Context, groupID string, beforeTimestamp int64, beforeID string, limit int) ([]*domain.HangoutPointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.HangoutPointer
	for _, p := range s.hangoutPtrs {
		if p.GroupID == groupID && p.Dated() && after(beforeTimestamp, beforeID, p.EndTimestamp, p.HangoutID) {
			out = append(out, copyHangoutPointer(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EndTimestamp != out[j].EndTimestamp {
			return out[i].EndTimestamp > out[j].EndTimestamp
		}
		return out[i].HangoutID > out[j].HangoutID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) TransactWrite(ctx context.Context, writes []ports.PointerWrite) error {
	if len(writes) > ports.MaxTransactWriteItems {
		return errors.NewValidationError("transaction exceeds item cap")
	}
	if hook := s.TransactErr; hook != nil {
		if err := hook(writes); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check every condition before applying anything: all-or-nothing.
	for _, w := range writes {
		var current int64
		var exists bool
		switch {
		case w.HangoutPointer != nil:
			current, exists = s.storedHangoutPtrVersion(w.HangoutPointer)
		case w.SeriesPointer != nil:
			current, exists = s.storedSeriesPtrVersion(w.SeriesPointer)
		case w.Membership != nil:
			current, exists = s.storedMembershipVersion(w.Membership)
		case w.Delete != nil:
			// Deletes are idempotent: absent targets pass.
			continue
		default:
			return errors.NewValidationError("empty pointer write")
		}
		if w.ExpectedVersion == 0 {
			if exists {
				return errors.NewConflictError("pointer already exists")
			}
			continue
		}
		if !exists || current != w.ExpectedVersion {
			return errors.NewConflictError("pointer version mismatch")
		}
	}

	for _, w := range writes {
		switch {
		case w.HangoutPointer != nil:
			p := copyHangoutPointer(w.HangoutPointer)
			p.Version = w.ExpectedVersion + 1
			s.hangoutPtrs[pointerKey(p.GroupID, p.HangoutID)] = p
		case w.SeriesPointer != nil:
			p := copySeriesPointer(w.SeriesPointer)
			p.Version = w.ExpectedVersion + 1
			s.seriesPtrs[pointerKey(p.GroupID, p.SeriesID)] = p
		case w.Membership != nil:
			m := copyMembership(w.Membership)
			m.Version = w.ExpectedVersion + 1
			s.memberships[membershipKey(m.GroupID, m.UserID)] = m
		case w.Delete != nil:
			k := w.Delete
			switch {
			case k.HangoutID != "":
				delete(s.hangoutPtrs, pointerKey(k.GroupID, k.HangoutID))
			case k.SeriesID != "":
				delete(s.seriesPtrs, pointerKey(k.GroupID, k.SeriesID))
			case k.UserID != "":
				delete(s.memberships, membershipKey(k.GroupID, k.UserID))
			}
		}
	}
	return nil
}

func (s *Store) storedHangoutPtrVersion(p *domain.HangoutPointer) (int64, bool) {
	stored, ok := s.hangoutPtrs[pointerKey(p.GroupID, p.HangoutID)]
	if !ok {
		return 0, false
	}
	return stored.Version, true
}

func (s *Store) storedSeriesPtrVersion(p *domain.SeriesPointer) (int64, bool) {
	stored, ok := s.seriesPtrs[pointerKey(p.GroupID, p.SeriesID)]
	if !ok {
		return 0, false
	}
	return stored.Version, true
}

func (s *Store) storedMembershipVersion(m *domain.GroupMembership) (int64, bool) {
	stored, ok := s.memberships[membershipKey(m.GroupID, m.UserID)]
	if !ok {
		return 0, false
	}
	return stored.Version, true
}
