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

// GroupHandler handles group and membership endpoints.
type GroupHandler struct {
	groups *services.GroupService
	logger *zap.Logger
}

// NewGroupHandler creates the handler.
func NewGroupHandler(groups *services.GroupService, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, logger: logger}
}

// CreateGroupRequest is the request body for creating a group.
type CreateGroupRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=100"`
	Visibility string `json:"visibility" validate:"required,oneof=PUBLIC PRIVATE"`
}

// UpdateGroupRequest is the request body for updating a group.
type UpdateGroupRequest struct {
	Name                *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	MainImagePath       *string `json:"mainImagePath,omitempty"`
	BackgroundImagePath *string `json:"backgroundImagePath,omitempty"`
}

// AddMemberRequest is the request body for adding a member.
type AddMemberRequest struct {
	UserID        string `json:"userId" validate:"required"`
	UserImagePath string `json:"userImagePath,omitempty"`
}

type groupResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Visibility          string `json:"visibility"`
	MainImagePath       string `json:"mainImagePath,omitempty"`
	BackgroundImagePath string `json:"backgroundImagePath,omitempty"`
}

func toGroupResponse(g *domain.Group) groupResponse {
	return groupResponse{
		ID:                  g.ID,
		Name:                g.Name,
		Visibility:          string(g.Visibility),
		MainImagePath:       g.MainImagePath,
		BackgroundImagePath: g.BackgroundImagePath,
	}
}

type membershipResponse struct {
	GroupID       string `json:"groupId"`
	UserID        string `json:"userId"`
	GroupName     string `json:"groupName"`
	GroupImage    string `json:"groupMainImagePath,omitempty"`
	UserImagePath string `json:"userImagePath,omitempty"`
	Role          string `json:"role"`
}

func toMembershipResponse(m *domain.GroupMembership) membershipResponse {
	return membershipResponse{
		GroupID:       m.GroupID,
		UserID:        m.UserID,
		GroupName:     m.GroupName,
		GroupImage:    m.GroupMainImagePath,
		UserImagePath: m.UserImagePath,
		Role:          string(m.Role),
	}
}

// CreateGroup handles POST /groups
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	g, err := h.groups.CreateGroup(r.Context(), req.Name, domain.GroupVisibility(req.Visibility), user.UserID, user.ImagePath)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toGroupResponse(g))
}

// GetGroup handles GET /groups/{groupID}
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	g, err := h.groups.GetGroup(r.Context(), chi.URLParam(r, "groupID"), user.UserID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toGroupResponse(g))
}

// UpdateGroup handles PATCH /groups/{groupID}
func (h *GroupHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	g, err := h.groups.UpdateGroup(r.Context(), chi.URLParam(r, "groupID"), user.UserID, services.GroupUpdate{
		Name:                req.Name,
		MainImagePath:       req.MainImagePath,
		BackgroundImagePath: req.BackgroundImagePath,
	})
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toGroupResponse(g))
}

// DeleteGroup handles DELETE /groups/{groupID}
func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.groups.DeleteGroup(r.Context(), chi.URLParam(r, "groupID"), user.UserID); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListGroups handles GET /groups
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	memberships, err := h.groups.ListGroupsForUser(r.Context(), user.UserID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	out := make([]membershipResponse, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, toMembershipResponse(m))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"groups": out})
}

// ListMembers handles GET /groups/{groupID}/members
func (h *GroupHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	memberships, err := h.groups.ListMembers(r.Context(), chi.URLParam(r, "groupID"), user.UserID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	out := make([]membershipResponse, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, toMembershipResponse(m))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"members": out})
}

// AddMember handles POST /groups/{groupID}/members
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	m, err := h.groups.AddMember(r.Context(), chi.URLParam(r, "groupID"), user.UserID, req.UserID, req.UserImagePath)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toMembershipResponse(m))
}

// RemoveMember handles DELETE /groups/{groupID}/members/{userID}
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.groups.RemoveMember(r.Context(), chi.URLParam(r, "groupID"), user.UserID, chi.URLParam(r, "userID")); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
