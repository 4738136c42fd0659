package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/application/services"
	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/infrastructure/persistence/memory"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/auth"
)

type feedFixture struct {
	store   *memory.Store
	router  *chi.Mux
	groupID string
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	logger := zap.NewNop()

	g := domain.NewGroup("Test Group", domain.GroupVisibilityPrivate)
	owner := domain.NewMembership(g, "alice", "", domain.RoleAdmin)
	require.NoError(t, store.CreateWithOwner(ctx, g, owner))

	handler := NewFeedHandler(
		services.NewETagService(store),
		services.NewFeedService(store, nil),
		logger,
	)

	router := chi.NewRouter()
	router.Get("/groups/{groupID}/feed", handler.GetFeed)
	return &feedFixture{store: store, router: router, groupID: g.ID}
}

func (f *feedFixture) get(t *testing.T, userID, ifNoneMatch, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/groups/"+f.groupID+"/feed"+query, nil)
	if userID != "" {
		req = req.WithContext(auth.SetUserInContext(req.Context(), &auth.UserContext{UserID: userID}))
	}
	if ifNoneMatch != "" {
		req.Header.Set("If-None-Match", ifNoneMatch)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestFeedHandler_GetFeed_ETagRoundTrip(t *testing.T) {
	f := newFeedFixture(t)
	ctx := context.Background()

	start := time.Now().Add(time.Hour)
	ptr := &domain.HangoutPointer{
		GroupID:        f.groupID,
		HangoutID:      "h1",
		Title:          "Picnic",
		StartTimestamp: start.UnixMilli(),
		EndTimestamp:   start.Add(time.Hour).UnixMilli(),
		Version:        1,
	}
	require.NoError(t, f.store.SaveHangoutPointer(ctx, ptr))

	first := f.get(t, "alice", "", "")
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var page services.FeedPage
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Picnic", page.Items[0].Hangout.Title)

	// Replaying the token skips the feed query entirely.
	second := f.get(t, "alice", etag, "")
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Equal(t, etag, second.Header().Get("ETag"))
	assert.Empty(t, second.Body.Bytes())

	// Any group activity invalidates the token.
	require.NoError(t, f.store.Touch(ctx, f.groupID, time.Now().UnixMilli()+1))
	third := f.get(t, "alice", etag, "")
	assert.Equal(t, http.StatusOK, third.Code)
	assert.NotEqual(t, etag, third.Header().Get("ETag"))
}

func TestFeedHandler_GetFeed_NonMemberForbidden(t *testing.T) {
	f := newFeedFixture(t)

	rec := f.get(t, "mallory", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFeedHandler_GetFeed_MissingUserUnauthorized(t *testing.T) {
	f := newFeedFixture(t)

	rec := f.get(t, "", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFeedHandler_GetFeed_BadLimit(t *testing.T) {
	f := newFeedFixture(t)

	rec := f.get(t, "alice", "", "?limit=banana")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedHandler_GetFeed_BadCursor(t *testing.T) {
	f := newFeedFixture(t)

	rec := f.get(t, "alice", "", "?startingAfter=%25bad%25")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
