package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/application/services"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/auth"
)

// FeedHandler serves the group feed behind the ETag gate.
type FeedHandler struct {
	etags  *services.ETagService
	feed   *services.FeedService
	logger *zap.Logger
}

// NewFeedHandler creates the handler.
func NewFeedHandler(etags *services.ETagService, feed *services.FeedService, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{etags: etags, feed: feed, logger: logger}
}

// GetFeed handles GET /groups/{groupID}/feed.
//
// The If-None-Match header is compared against the group's change marker
// before any feed query runs: a match short-circuits to 304 after two point
// reads. Every 200 carries the current ETag for the next round trip.
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}
	groupID := chi.URLParam(r, "groupID")

	freshness, err := h.etags.CheckFreshness(r.Context(), groupID, user.UserID, r.Header.Get("If-None-Match"))
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	if freshness.NotModified {
		w.Header().Set("ETag", freshness.ETag.String())
		w.WriteHeader(http.StatusNotModified)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
	}

	page, err := h.feed.GetFeed(r.Context(), groupID, limit,
		r.URL.Query().Get("startingAfter"),
		r.URL.Query().Get("endingBefore"),
	)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}

	w.Header().Set("ETag", freshness.ETag.String())
	respondJSON(w, http.StatusOK, page)
}
