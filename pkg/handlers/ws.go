package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/makerfolio/makerfolio-api/pkg/auth"
	"github.com/makerfolio/makerfolio-api/pkg/ws"
)

// WSHandler upgrades authenticated connections and subscribes them to
// notification rooms.
type WSHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWSHandler creates a new websocket handler.
func NewWSHandler(hub *ws.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// RegisterRoutes registers the websocket endpoint on the given mux.
// Browsers cannot set an Authorization header on websocket requests,
// so the middleware also accepts a token query parameter here.
func (h *WSHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/ws", authMiddleware.RequireAuth(h.Connect))
}

// Connect handles GET /api/ws. The connection always joins the user's
// own room; a project query parameter additionally joins that
// project's room for live comment events.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	rooms := []string{ws.UserRoom(userID)}
	if raw := r.URL.Query().Get("project"); raw != "" {
		projectID, err := uuid.Parse(raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_project", "Invalid project ID format"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		rooms = append(rooms, ws.ProjectRoom(projectID))
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(conn, h.logger)
	for _, room := range rooms {
		h.hub.Register(room, client)
	}
	h.logger.Info("Websocket client connected",
		zap.String("user_id", userID.String()),
		zap.Int("rooms", len(rooms)))

	defer func() {
		for _, room := range rooms {
			h.hub.Unregister(room, client)
		}
		client.Close()
	}()

	// Inbound frames are drained only to detect disconnects; clients
	// do not send application messages.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
