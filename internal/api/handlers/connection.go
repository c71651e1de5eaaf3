package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/underneath-app/underneath/internal/api/middleware"
	"github.com/underneath-app/underneath/internal/domain"
	"github.com/underneath-app/underneath/internal/service"
)

type ConnectionHandler struct {
	connectionService *service.ConnectionService
}

func NewConnectionHandler(connectionService *service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService}
}

type MyConnectionResponse struct {
	HasConnection bool               `json:"hasConnection"`
	Connection    *domain.Connection `json:"connection,omitempty"`
}

func (h *ConnectionHandler) MyConnection(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	connection, err := h.connectionService.GetUserConnection(r.Context(), userID, role)
	if err != nil {
		log.Printf("ERROR [handlers.Connection] fetch failed for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "CONNECTIONS_FETCH_FAILED", "Failed to fetch connection")
		return
	}

	writeJSON(w, http.StatusOK, MyConnectionResponse{
		HasConnection: connection != nil,
		Connection:    connection,
	})
}

// Terminate ends the caller's active connection. The connection is located
// from the caller's role, so no id is taken from the client.
func (h *ConnectionHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	connection, err := h.connectionService.GetUserConnection(r.Context(), userID, role)
	if err != nil {
		log.Printf("ERROR [handlers.Connection] fetch failed for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "TERMINATION_FAILED", "Failed to terminate connection")
		return
	}
	if connection == nil {
		writeError(w, http.StatusNotFound, "CONNECTION_NOT_FOUND", "No active connection")
		return
	}

	terminated, err := h.connectionService.Terminate(r.Context(), connection.ID, userID)
	if err != nil {
		if writeBusinessError(w, err) {
			return
		}
		log.Printf("ERROR [handlers.Connection] terminate failed for %s: %v", connection.ID, err)
		writeError(w, http.StatusInternalServerError, "TERMINATION_FAILED", "Failed to terminate connection")
		return
	}

	writeJSON(w, http.StatusOK, terminated)
}

type AvailabilityResponse struct {
	CanCreateConnection bool `json:"canCreateConnection"`
	HasActiveConnection bool `json:"hasActiveConnection"`
}

func (h *ConnectionHandler) Availability(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	canCreate, err := h.connectionService.CanCreateConnection(r.Context(), userID, role)
	if err != nil {
		log.Printf("ERROR [handlers.Connection] availability check failed for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "CONNECTIONS_FETCH_FAILED", "Failed to check availability")
		return
	}

	writeJSON(w, http.StatusOK, AvailabilityResponse{
		CanCreateConnection: canCreate,
		HasActiveConnection: !canCreate,
	})
}

type AdminListResponse struct {
	Connections []*domain.Connection `json:"connections"`
	Total       int64                `json:"total"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

func (h *ConnectionHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	connections, total, err := h.connectionService.ListAll(r.Context(), limit, offset)
	if err != nil {
		log.Printf("ERROR [handlers.Connection] admin list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "CONNECTIONS_FETCH_FAILED", "Failed to fetch connections")
		return
	}

	// Echo the same clamping ListAll applied.
	if limit <= 0 {
		limit = service.DefaultConnectionPageSize
	}
	if limit > service.MaxConnectionPageSize {
		limit = service.MaxConnectionPageSize
	}

	writeJSON(w, http.StatusOK, AdminListResponse{
		Connections: connections,
		Total:       total,
		Limit:       limit,
		Offset:      offset,
	})
}

func (h *ConnectionHandler) AdminTerminate(w http.ResponseWriter, r *http.Request) {
	connectionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid connection ID")
		return
	}

	terminated, err := h.connectionService.AdminTerminate(r.Context(), connectionID)
	if err != nil {
		if writeBusinessError(w, err) {
			return
		}
		log.Printf("ERROR [handlers.Connection] admin terminate failed for %s: %v", connectionID, err)
		writeError(w, http.StatusInternalServerError, "TERMINATION_FAILED", "Failed to terminate connection")
		return
	}

	writeJSON(w, http.StatusOK, terminated)
}

type AdminCreateRequest struct {
	DomID string `json:"domId"`
	SubID string `json:"subId"`
}

// AdminCreate is the direct pairing path: an admin names both parties
// explicitly instead of routing through an invitation code.
func (h *ConnectionHandler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var req AdminCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	domID, err := uuid.Parse(req.DomID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_DOM", "Invalid dom ID")
		return
	}
	subID, err := uuid.Parse(req.SubID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_SUB", "Invalid sub ID")
		return
	}

	connection, err := h.connectionService.DirectCreate(r.Context(), domID, subID)
	if err != nil {
		if writeBusinessError(w, err) {
			return
		}
		log.Printf("ERROR [handlers.Connection] direct create failed (dom %s, sub %s): %v", domID, subID, err)
		writeError(w, http.StatusInternalServerError, "CONNECTION_CREATION_FAILED", "Failed to create connection")
		return
	}

	writeJSON(w, http.StatusCreated, connection)
}

func callerIdentity(r *http.Request) (uuid.UUID, domain.Role, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, "", false
	}
	role, ok := middleware.GetUserRole(r.Context())
	if !ok {
		return uuid.Nil, "", false
	}
	return userID, role, true
}
