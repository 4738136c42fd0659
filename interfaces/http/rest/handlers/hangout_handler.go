package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/application/services"
	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/auth"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/utils"
)

// HangoutHandler handles hangout, poll, participation, offer and series
// endpoints.
type HangoutHandler struct {
	hangouts *services.HangoutService
	claims   *services.ClaimService
	logger   *zap.Logger
}

// NewHangoutHandler creates the handler.
func NewHangoutHandler(hangouts *services.HangoutService, claims *services.ClaimService, logger *zap.Logger) *HangoutHandler {
	return &HangoutHandler{hangouts: hangouts, claims: claims, logger: logger}
}

type timeWindowBody struct {
	Start int64 `json:"start" validate:"required,gt=0"`
	End   int64 `json:"end" validate:"required,gt=0"`
}

// CreateHangoutRequest is the request body for creating a hangout.
type CreateHangoutRequest struct {
	Title         string          `json:"title" validate:"required,min=1,max=200"`
	Description   string          `json:"description,omitempty"`
	Location      string          `json:"location,omitempty"`
	MainImagePath string          `json:"mainImagePath,omitempty"`
	GroupIDs      []string        `json:"groupIds" validate:"required,min=1,dive,required"`
	Window        *timeWindowBody `json:"window,omitempty"`
}

// UpdateHangoutRequest is the request body for updating a hangout.
type UpdateHangoutRequest struct {
	Title         *string         `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string         `json:"description,omitempty"`
	Location      *string         `json:"location,omitempty"`
	MainImagePath *string         `json:"mainImagePath,omitempty"`
	Window        *timeWindowBody `json:"window,omitempty"`
}

// CreatePollRequest is the request body for attaching a poll.
type CreatePollRequest struct {
	Title   string   `json:"title" validate:"required,min=1,max=200"`
	Options []string `json:"options" validate:"required,min=2,dive,required"`
}

// CastVoteRequest is the request body for voting.
type CastVoteRequest struct {
	OptionID string `json:"optionId" validate:"required"`
}

// SetParticipationRequest is the request body for interest marking.
type SetParticipationRequest struct {
	Type string `json:"type" validate:"required,oneof=INTERESTED GOING"`
}

// CreateOfferRequest is the request body for attaching a reservation offer.
type CreateOfferRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Capacity *int   `json:"capacity,omitempty" validate:"omitempty,gt=0"`
}

// CreateSeriesRequest is the request body for grouping hangouts into a
// series.
type CreateSeriesRequest struct {
	GroupID    string   `json:"groupId" validate:"required"`
	Title      string   `json:"title" validate:"required,min=1,max=200"`
	HangoutIDs []string `json:"hangoutIds" validate:"required,min=1,dive,required"`
}

type hangoutResponse struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description,omitempty"`
	Location       string                 `json:"location,omitempty"`
	MainImagePath  string                 `json:"mainImagePath,omitempty"`
	Window         *timeWindowBody        `json:"window,omitempty"`
	SeriesID       string                 `json:"seriesId,omitempty"`
	GroupIDs       []string               `json:"groupIds"`
	Polls          []domain.Poll          `json:"polls,omitempty"`
	Participations []domain.Participation `json:"participations,omitempty"`
}

func toHangoutResponse(h *domain.Hangout) hangoutResponse {
	resp := hangoutResponse{
		ID:             h.ID,
		Title:          h.Title,
		Description:    h.Description,
		Location:       h.Location,
		MainImagePath:  h.MainImagePath,
		SeriesID:       h.SeriesID,
		GroupIDs:       h.GroupIDs,
		Polls:          h.Polls,
		Participations: h.Participations,
	}
	if h.Window != nil {
		resp.Window = &timeWindowBody{Start: h.Window.Start, End: h.Window.End}
	}
	return resp
}

type participationResponse struct {
	HangoutID string `json:"hangoutId"`
	OfferID   string `json:"offerId,omitempty"`
	UserID    string `json:"userId"`
	Type      string `json:"type"`
}

func (h *HangoutHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return false
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (h *HangoutHandler) user(w http.ResponseWriter, r *http.Request) (*auth.UserContext, bool) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return nil, false
	}
	return user, true
}

// CreateHangout handles POST /hangouts
func (h *HangoutHandler) CreateHangout(w http.ResponseWriter, r *http.Request) {
	var req CreateHangoutRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	input := services.HangoutInput{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		MainImagePath: req.MainImagePath,
		GroupIDs:      req.GroupIDs,
	}
	if req.Window != nil {
		input.Window = &domain.TimeWindow{Start: req.Window.Start, End: req.Window.End}
	}

	hangout, err := h.hangouts.CreateHangout(r.Context(), user.UserID, input)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toHangoutResponse(hangout))
}

// GetHangout handles GET /hangouts/{hangoutID}
func (h *HangoutHandler) GetHangout(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	hangout, err := h.hangouts.GetHangout(r.Context(), chi.URLParam(r, "hangoutID"), user.UserID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toHangoutResponse(hangout))
}

// UpdateHangout handles PATCH /hangouts/{hangoutID}
func (h *HangoutHandler) UpdateHangout(w http.ResponseWriter, r *http.Request) {
	var req UpdateHangoutRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	update := services.HangoutUpdate{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		MainImagePath: req.MainImagePath,
	}
	if req.Window != nil {
		update.Window = &domain.TimeWindow{Start: req.Window.Start, End: req.Window.End}
	}

	hangout, err := h.hangouts.UpdateHangout(r.Context(), chi.URLParam(r, "hangoutID"), user.UserID, update)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toHangoutResponse(hangout))
}

// DeleteHangout handles DELETE /hangouts/{hangoutID}
func (h *HangoutHandler) DeleteHangout(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	if err := h.hangouts.DeleteHangout(r.Context(), chi.URLParam(r, "hangoutID"), user.UserID); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssociateGroup handles PUT /hangouts/{hangoutID}/groups/{groupID}
func (h *HangoutHandler) AssociateGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	hangout, err := h.hangouts.AssociateGroup(r.Context(), chi.URLParam(r, "hangoutID"), chi.URLParam(r, "groupID"), user.UserID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toHangoutResponse(hangout))
}

// DisassociateGroup handles DELETE /hangouts/{hangoutID}/groups/{groupID}
func (h *HangoutHandler) DisassociateGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	hangout, err := h.hangouts.DisassociateGroup(r.Context(), chi.URLParam(r, "hangoutID"), chi.URLParam(r, "groupID"), user.UserID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toHangoutResponse(hangout))
}

// CreatePoll handles POST /hangouts/{hangoutID}/polls
func (h *HangoutHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req CreatePollRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	hangout, err := h.hangouts.AddPoll(r.Context(), chi.URLParam(r, "hangoutID"), user.UserID, req.Title, req.Options)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toHangoutResponse(hangout))
}

// CastVote handles POST /hangouts/{hangoutID}/polls/{pollID}/votes
func (h *HangoutHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req CastVoteRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	hangout, err := h.hangouts.CastVote(r.Context(), chi.URLParam(r, "hangoutID"), chi.URLParam(r, "pollID"), req.OptionID, user.UserID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toHangoutResponse(hangout))
}

// SetParticipation handles PUT /hangouts/{hangoutID}/participation
func (h *HangoutHandler) SetParticipation(w http.ResponseWriter, r *http.Request) {
	var req SetParticipationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	hangout, err := h.hangouts.SetParticipation(r.Context(), chi.URLParam(r, "hangoutID"), user.UserID, domain.ParticipationType(req.Type))
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toHangoutResponse(hangout))
}

// ClearParticipation handles DELETE /hangouts/{hangoutID}/participation
func (h *HangoutHandler) ClearParticipation(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	if _, err := h.hangouts.ClearParticipation(r.Context(), chi.URLParam(r, "hangoutID"), user.UserID); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateOffer handles POST /hangouts/{hangoutID}/reservation-offers
func (h *HangoutHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req CreateOfferRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	offer, err := h.hangouts.CreateOffer(r.Context(), chi.URLParam(r, "hangoutID"), user.UserID, req.Title, req.Capacity)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":           offer.ID,
		"hangoutId":    offer.HangoutID,
		"title":        offer.Title,
		"capacity":     offer.Capacity,
		"claimedSpots": offer.ClaimedSpots,
	})
}

// ClaimSpot handles POST /hangouts/{hangoutID}/reservation-offers/{offerID}/claim-spot
func (h *HangoutHandler) ClaimSpot(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	p, err := h.claims.Claim(r.Context(), chi.URLParam(r, "hangoutID"), chi.URLParam(r, "offerID"), user.UserID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, participationResponse{
		HangoutID: p.HangoutID,
		OfferID:   p.OfferID,
		UserID:    p.UserID,
		Type:      string(p.Type),
	})
}

// UnclaimSpot handles POST /hangouts/{hangoutID}/reservation-offers/{offerID}/unclaim-spot
func (h *HangoutHandler) UnclaimSpot(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	if err := h.claims.Unclaim(r.Context(), chi.URLParam(r, "hangoutID"), chi.URLParam(r, "offerID"), user.UserID); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSeries handles POST /series
func (h *HangoutHandler) CreateSeries(w http.ResponseWriter, r *http.Request) {
	var req CreateSeriesRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	series, err := h.hangouts.CreateSeries(r.Context(), req.GroupID, user.UserID, req.Title, req.HangoutIDs)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         series.ID,
		"title":      series.Title,
		"groupId":    series.GroupID,
		"hangoutIds": series.HangoutIDs,
	})
}

// DeleteSeries handles DELETE /groups/{groupID}/series/{seriesID}
func (h *HangoutHandler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	if err := h.hangouts.DeleteSeries(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "seriesID"), user.UserID); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
