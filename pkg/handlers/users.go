package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/makerfolio/makerfolio-api/pkg/auth"
	"github.com/makerfolio/makerfolio-api/pkg/services"
)

// UpdateProfileRequest is the request body for profile updates.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

// UsersHandler handles profile and follow HTTP requests.
type UsersHandler struct {
	userService services.UserService
	logger      *zap.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(userService services.UserService, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers the users handler's routes on the given mux.
func (h *UsersHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/users/{id}", h.GetProfile)
	mux.HandleFunc("PUT /api/users/{id}", authMiddleware.RequireAuth(h.UpdateProfile))
	mux.HandleFunc("POST /api/users/{id}/follow", authMiddleware.RequireAuth(h.Follow))
	mux.HandleFunc("DELETE /api/users/{id}/follow", authMiddleware.RequireAuth(h.Unfollow))
	mux.HandleFunc("GET /api/users/{id}/followers", h.Followers)
	mux.HandleFunc("GET /api/users/{id}/following", h.Following)
}

// GetProfile handles GET /api/users/{id}.
func (h *UsersHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to fetch profile")
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to encode profile response", zap.Error(err))
	}
}

// UpdateProfile handles PUT /api/users/{id}. Users can only update
// their own profile.
func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	actorID := auth.GetUserIDFromContext(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, services.ProfileUpdate{
		Username: req.Username,
		Avatar:   req.Avatar,
		Bio:      req.Bio,
	}, actorID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to update profile")
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to encode profile response", zap.Error(err))
	}
}

// Follow handles POST /api/users/{id}/follow.
func (h *UsersHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	actorID := auth.GetUserIDFromContext(r.Context())

	if err := h.userService.Follow(r.Context(), actorID, userID); err != nil {
		RespondServiceError(w, h.logger, err, "Failed to follow user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unfollow handles DELETE /api/users/{id}/follow.
func (h *UsersHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	actorID := auth.GetUserIDFromContext(r.Context())

	if err := h.userService.Unfollow(r.Context(), actorID, userID); err != nil {
		RespondServiceError(w, h.logger, err, "Failed to unfollow user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Followers handles GET /api/users/{id}/followers.
func (h *UsersHandler) Followers(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	follows, err := h.userService.Followers(r.Context(), userID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to list followers")
		return
	}

	if err := WriteJSON(w, http.StatusOK, follows); err != nil {
		h.logger.Error("Failed to encode followers response", zap.Error(err))
	}
}

// Following handles GET /api/users/{id}/following.
func (h *UsersHandler) Following(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	follows, err := h.userService.Following(r.Context(), userID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to list following")
		return
	}

	if err := WriteJSON(w, http.StatusOK, follows); err != nil {
		h.logger.Error("Failed to encode following response", zap.Error(err))
	}
}

func (h *UsersHandler) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_"+name, "Invalid user ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
