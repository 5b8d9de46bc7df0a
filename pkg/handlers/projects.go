package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/makerfolio/makerfolio-api/pkg/auth"
	"github.com/makerfolio/makerfolio-api/pkg/models"
	"github.com/makerfolio/makerfolio-api/pkg/services"
)

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest struct {
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	Technologies  models.StringList `json:"technologies,omitempty"`
	Tags          models.StringList `json:"tags,omitempty"`
	Thumbnail     string            `json:"thumbnail,omitempty"`
	RepoURL       string            `json:"repoUrl,omitempty"`
	DemoURL       string            `json:"demoUrl,omitempty"`
	Status        string            `json:"status,omitempty"`
	IsTeamProject bool              `json:"isTeamProject,omitempty"`
	TeamID        *uuid.UUID        `json:"teamId,omitempty"`
}

// UpdateProjectRequest is the request body for updating a project.
type UpdateProjectRequest struct {
	Title        *string            `json:"title,omitempty"`
	Description  *string            `json:"description,omitempty"`
	Category     *string            `json:"category,omitempty"`
	Technologies *models.StringList `json:"technologies,omitempty"`
	Tags         *models.StringList `json:"tags,omitempty"`
	Thumbnail    *string            `json:"thumbnail,omitempty"`
	RepoURL      *string            `json:"repoUrl,omitempty"`
	DemoURL      *string            `json:"demoUrl,omitempty"`
	Status       *string            `json:"status,omitempty"`
}

// CreateCommentRequest is the request body for commenting on a project.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// ProjectsHandler handles project and comment HTTP requests.
type ProjectsHandler struct {
	projectService services.ProjectService
	commentService services.CommentService
	logger         *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projectService services.ProjectService, commentService services.CommentService, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		projectService: projectService,
		commentService: commentService,
		logger:         logger,
	}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
// Reads are public; all mutation requires authentication.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/projects", h.List)
	mux.HandleFunc("POST /api/projects", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/projects/{id}", h.Get)
	mux.HandleFunc("PUT /api/projects/{id}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/projects/{id}", authMiddleware.RequireAuth(h.Delete))
	mux.HandleFunc("GET /api/projects/{id}/comments", h.ListComments)
	mux.HandleFunc("POST /api/projects/{id}/comments", authMiddleware.RequireAuth(h.CreateComment))
	mux.HandleFunc("DELETE /api/comments/{id}", authMiddleware.RequireAuth(h.DeleteComment))
}

// List handles GET /api/projects with page/limit query parameters.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.projectService.List(r.Context(), page, limit)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to list projects")
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode projects response", zap.Error(err))
	}
}

// Create handles POST /api/projects. Team projects require a fresh
// membership in the referenced team.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	project, err := h.projectService.Create(r.Context(), services.ProjectInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Technologies:  req.Technologies,
		Tags:          req.Tags,
		Thumbnail:     req.Thumbnail,
		RepoURL:       req.RepoURL,
		DemoURL:       req.DemoURL,
		Status:        req.Status,
		IsTeamProject: req.IsTeamProject,
		TeamID:        req.TeamID,
	}, actorID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to create project")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, project); err != nil {
		h.logger.Error("Failed to encode project response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{id}.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.pathUUID(w, r, "id", "Invalid ID format")
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(r.Context(), projectID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to fetch project")
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to encode project response", zap.Error(err))
	}
}

// Update handles PUT /api/projects/{id}. Authorization is decided
// from the live membership graph at call time.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.pathUUID(w, r, "id", "Invalid ID format")
	if !ok {
		return
	}
	actorID := auth.GetUserIDFromContext(r.Context())

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	project, err := h.projectService.Update(r.Context(), projectID, services.ProjectUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Technologies: req.Technologies,
		Tags:         req.Tags,
		Thumbnail:    req.Thumbnail,
		RepoURL:      req.RepoURL,
		DemoURL:      req.DemoURL,
		Status:       req.Status,
	}, actorID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to update project")
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to encode project response", zap.Error(err))
	}
}

// Delete handles DELETE /api/projects/{id}.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.pathUUID(w, r, "id", "Invalid ID format")
	if !ok {
		return
	}
	actorID := auth.GetUserIDFromContext(r.Context())

	if err := h.projectService.Delete(r.Context(), projectID, actorID); err != nil {
		RespondServiceError(w, h.logger, err, "Failed to delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListComments handles GET /api/projects/{id}/comments.
func (h *ProjectsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.pathUUID(w, r, "id", "Invalid ID format")
	if !ok {
		return
	}

	comments, err := h.commentService.ListByProject(r.Context(), projectID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to list comments")
		return
	}

	if err := WriteJSON(w, http.StatusOK, comments); err != nil {
		h.logger.Error("Failed to encode comments response", zap.Error(err))
	}
}

// CreateComment handles POST /api/projects/{id}/comments.
func (h *ProjectsHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.pathUUID(w, r, "id", "Invalid ID format")
	if !ok {
		return
	}
	actorID := auth.GetUserIDFromContext(r.Context())

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	comment, err := h.commentService.Create(r.Context(), projectID, req.Content, actorID)
	if err != nil {
		RespondServiceError(w, h.logger, err, "Failed to create comment")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, comment); err != nil {
		h.logger.Error("Failed to encode comment response", zap.Error(err))
	}
}

// DeleteComment handles DELETE /api/comments/{id}. Author or site
// admin only.
func (h *ProjectsHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := h.pathUUID(w, r, "id", "Invalid ID format")
	if !ok {
		return
	}
	actorID := auth.GetUserIDFromContext(r.Context())
	actorRole := auth.GetRoleFromContext(r.Context())

	if err := h.commentService.Delete(r.Context(), commentID, actorID, actorRole); err != nil {
		RespondServiceError(w, h.logger, err, "Failed to delete comment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathUUID parses a UUID path parameter, writing a 400 on failure.
func (h *ProjectsHandler) pathUUID(w http.ResponseWriter, r *http.Request, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_"+name, message); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
