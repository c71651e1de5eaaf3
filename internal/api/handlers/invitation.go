package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/underneath-app/underneath/internal/api/middleware"
	"github.com/underneath-app/underneath/internal/domain"
	"github.com/underneath-app/underneath/internal/service"
)

type InvitationHandler struct {
	invitationService *service.InvitationService
}

func NewInvitationHandler(invitationService *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

type CreateInvitationRequest struct {
	Email   string `json:"email"`
	Message string `json:"message,omitempty"`
}

type CreateInvitationResponse struct {
	InvitationID string    `json:"invitationId"`
	Code         string    `json:"code"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	invitation, err := h.invitationService.Create(r.Context(), service.CreateInvitationInput{
		DomID:   userID,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		if writeBusinessError(w, err) {
			return
		}
		log.Printf("ERROR [handlers.Invitation] create failed for dom %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create invitation")
		return
	}

	writeJSON(w, http.StatusCreated, CreateInvitationResponse{
		InvitationID: invitation.ID.String(),
		Code:         invitation.Code,
		ExpiresAt:    invitation.ExpiresAt,
	})
}

type ValidateInvitationRequest struct {
	Code string `json:"code"`
}

type ValidateInvitationResponse struct {
	Valid   bool   `json:"valid"`
	DomName string `json:"domName"`
	Email   string `json:"email"`
}

func (h *InvitationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Code is required")
		return
	}

	result, err := h.invitationService.Validate(r.Context(), req.Code)
	if err != nil {
		if writeBusinessError(w, err) {
			return
		}
		log.Printf("ERROR [handlers.Invitation] validate failed: %v", err)
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to validate invitation")
		return
	}

	writeJSON(w, http.StatusOK, ValidateInvitationResponse{
		Valid:   result.Valid,
		DomName: result.DomName,
		Email:   result.Email,
	})
}

type AcceptInvitationRequest struct {
	Code string `json:"code"`
}

type AcceptInvitationResponse struct {
	ConnectionID string             `json:"connectionId"`
	Connection   *domain.Connection `json:"connection"`
}

func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Code is required")
		return
	}

	result, err := h.invitationService.Accept(r.Context(), req.Code, userID)
	if err != nil {
		if writeBusinessError(w, err) {
			return
		}
		log.Printf("ERROR [handlers.Invitation] accept failed for sub %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "CONNECTION_CREATION_FAILED", "Failed to create connection")
		return
	}

	writeJSON(w, http.StatusOK, AcceptInvitationResponse{
		ConnectionID: result.Connection.ID.String(),
		Connection:   result.Connection,
	})
}

func (h *InvitationHandler) My(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	invitations, err := h.invitationService.ListByDom(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR [handlers.Invitation] list failed for dom %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch invitations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"invitations": invitations,
	})
}

func (h *InvitationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	invitationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid invitation ID")
		return
	}

	if err := h.invitationService.Resend(r.Context(), userID, invitationID); err != nil {
		if writeBusinessError(w, err) {
			return
		}
		log.Printf("ERROR [handlers.Invitation] resend failed for %s: %v", invitationID, err)
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to resend invitation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
