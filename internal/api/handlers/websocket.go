package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/underneath-app/underneath/internal/notify"
	"github.com/underneath-app/underneath/internal/service"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin is enforced by the CORS layer in front
	},
}

type WebSocketHandler struct {
	hub         *notify.Hub
	authService *service.AuthService
}

func NewWebSocketHandler(hub *notify.Hub, authService *service.AuthService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
	}
}

// Handle upgrades an authenticated request to the notification socket.
// Browsers cannot set headers on websocket requests, so the token comes in
// as a query parameter.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token required")
		return
	}

	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
		return
	}

	userIDStr, ok := (*claims)["sub"].(string)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token claims")
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user ID")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR [handlers.WebSocket] upgrade failed: %v", err)
		return
	}

	client := notify.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
