package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/makerfolio/makerfolio-api/pkg/auth"
	"github.com/makerfolio/makerfolio-api/pkg/models"
	"github.com/makerfolio/makerfolio-api/pkg/services"
)

// CreateTeamRequest is the request body for creating a team.
type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateTeamRequest is the request body for updating team details.
type UpdateTeamRequest struct {
	Name         *string            `json:"name,omitempty"`
	Description  *string            `json:"description,omitempty"`
	Avatar       *string            `json:"avatar,omitempty"`
	Achievements *models.StringList `json:"achievements,omitempty"`
	Stats        *models.JSONBMap   `json:"stats,omitempty"`
}

// AddMemberRequest is the request body for adding a team member.
type AddMemberRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
}

// UpdateMemberRoleRequest is the request body for changing a member's role.
type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

// TransferLeadershipRequest is the request body for leadership transfer.
type TransferLeadershipRequest struct {
	NewLeaderID string `json:"newLeaderId"`
}

// TeamsHandler handles team-related HTTP requests.
type TeamsHandler struct {
	teamService services.TeamService
	logger      *zap.Logger
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(teamService services.TeamService, logger *zap.Logger) *TeamsHandler {
	return &TeamsHandler{
		teamService: teamService,
		logger:      logger,
	}
}

// RegisterRoutes registers the teams handler's routes on the given mux.
func (h *TeamsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/teams", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/teams/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/teams/{id}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/teams/{id}", authMiddleware.RequireAuth(h.Delete))
	mux.HandleFunc("GET /api/teams/{id}/members", authMiddleware.RequireAuth(h.GetMembers))
	mux.HandleFunc("POST /api/teams/{id}/members", authMiddleware.RequireAuth(h.AddMember))
	mux.HandleFunc("DELETE /api/teams/{id}/members/{memberId}", authMiddleware.RequireAuth(h.RemoveMember))
	mux.HandleFunc("PUT /api/teams/{id}/members/{memberId}", authMiddleware.RequireAuth(h.UpdateMemberRole))
	mux.HandleFunc("POST /api/teams/{id}/leadership", authMiddleware.RequireAuth(h.TransferLeadership))
	mux.HandleFunc("GET /api/user/teams", authMiddleware.RequireAuth(h.ListMine))
}

// Create handles POST /api/teams.
// Creates the team and its leader membership as one unit.
func (h *TeamsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	team, err := h.teamService.Create(r.Context(), req.Name, req.Description, actorID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to create team")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, team); err != nil {
		h.logger.Error("Failed to encode team response", zap.Error(err))
	}
}

// Get handles GET /api/teams/{id}.
func (h *TeamsHandler) Get(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.pathUUID(w, r, "id", "Invalid team ID format")
	if !ok {
		return
	}

	team, err := h.teamService.GetByID(r.Context(), teamID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to fetch team")
		return
	}

	if err := WriteJSON(w, http.StatusOK, team); err != nil {
		h.logger.Error("Failed to encode team response", zap.Error(err))
	}
}

// Update handles PUT /api/teams/{id}. Leader only.
func (h *TeamsHandler) Update(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.pathUUID(w, r, "id", "Invalid team ID format")
	if !ok {
		return
	}
	actorID := auth.GetUserIDFromContext(r.Context())

	var req UpdateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	team, err := h.teamService.Update(r.Context(), teamID, services.TeamUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Avatar:       req.Avatar,
		Achievements: req.Achievements,
		Stats:        req.Stats,
	}, actorID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to update team")
		return
	}

	if err := WriteJSON(w, http.StatusOK, team); err != nil {
		h.logger.Error("Failed to encode team response", zap.Error(err))
	}
}

// Delete handles DELETE /api/teams/{id}. Leader only; memberships are
// removed and team projects detached in the same unit.
func (h *TeamsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.pathUUID(w, r, "id", "Invalid team ID format")
	if !ok {
		return
	}
	actorID := auth.GetUserIDFromContext(r.Context())

	if err := h.teamService.Delete(r.Context(), teamID, actorID); err != nil {
		RespondServiceError(w, h.logger, err, "Failed to delete team")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetMembers handles GET /api/teams/{id}/members.
func (h *TeamsHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.pathUUID(w, r, "id", "Invalid team ID format")
	if !ok {
		return
	}

	members, err := h.teamService.GetMembers(r.Context(), teamID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to fetch team members")
		return
	}

	if err := WriteJSON(w, http.StatusOK, members); err != nil {
		h.logger.Error("Failed to encode members response", zap.Error(err))
	}
}

// AddMember handles POST /api/teams/{id}/members. Leader only.
func (h *TeamsHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.pathUUID(w, r, "id", "Invalid team ID format")
	if !ok {
		return
	}
	actorID := auth.GetUserIDFromContext(r.Context())

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_user_id", "Invalid user ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	member, err := h.teamService.AddMember(r.Context(), teamID, userID, req.Role, actorID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to add team member")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, member); err != nil {
		h.logger.Error("Failed to encode member response", zap.Error(err))
	}
}

// RemoveMember handles DELETE /api/teams/{id}/members/{memberId}.
// Leader only; removing the leader is rejected for any actor.
func (h *TeamsHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.pathUUID(w, r, "id", "Invalid team ID format")
	if !ok {
		return
	}
	memberID, ok := h.pathUUID(w, r, "memberId", "Invalid member ID format")
	if !ok {
		return
	}
	actorID := auth.GetUserIDFromContext(r.Context())

	if err := h.teamService.RemoveMember(r.Context(), teamID, memberID, actorID); err != nil {
		RespondServiceError(w, h.logger, err, "Failed to remove team member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateMemberRole handles PUT /api/teams/{id}/members/{memberId}.
// Leader only; role must be admin or member.
func (h *TeamsHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.pathUUID(w, r, "id", "Invalid team ID format")
	if !ok {
		return
	}
	memberID, ok := h.pathUUID(w, r, "memberId", "Invalid member ID format")
	if !ok {
		return
	}
	actorID := auth.GetUserIDFromContext(r.Context())

	var req UpdateMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	member, err := h.teamService.UpdateMemberRole(r.Context(), teamID, memberID, req.Role, actorID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to update member role")
		return
	}

	if err := WriteJSON(w, http.StatusOK, member); err != nil {
		h.logger.Error("Failed to encode member response", zap.Error(err))
	}
}

// TransferLeadership handles POST /api/teams/{id}/leadership.
// Leader only; atomically swaps the leader role and the team's leader
// column.
func (h *TeamsHandler) TransferLeadership(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.pathUUID(w, r, "id", "Invalid team ID format")
	if !ok {
		return
	}
	actorID := auth.GetUserIDFromContext(r.Context())

	var req TransferLeadershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	newLeaderID, err := uuid.Parse(req.NewLeaderID)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_user_id", "Invalid user ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.teamService.TransferLeadership(r.Context(), teamID, newLeaderID, actorID); err != nil {
		RespondServiceError(w, h.logger, err, "Failed to transfer leadership")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ListMine handles GET /api/user/teams.
func (h *TeamsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actorID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	teams, err := h.teamService.ListByUser(r.Context(), actorID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to fetch teams")
		return
	}

	if err := WriteJSON(w, http.StatusOK, teams); err != nil {
		h.logger.Error("Failed to encode teams response", zap.Error(err))
	}
}

// pathUUID parses a UUID path parameter, writing a 400 on failure.
func (h *TeamsHandler) pathUUID(w http.ResponseWriter, r *http.Request, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_"+name, message); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
