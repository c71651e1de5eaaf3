package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/underneath-app/underneath/internal/api/middleware"
	"github.com/underneath-app/underneath/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	profile, err := h.profileService.Get(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR [handlers.Profile] get failed for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

type SaveProfileRequest struct {
	Answers        json.RawMessage `json:"answers"`
	CompletedSteps int             `json:"completedSteps"`
}

func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req SaveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.CompletedSteps < 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "completedSteps must be non-negative")
		return
	}

	profile, err := h.profileService.Save(r.Context(), service.SaveProfileInput{
		UserID:         userID,
		Answers:        req.Answers,
		CompletedSteps: req.CompletedSteps,
	})
	if err != nil {
		log.Printf("ERROR [handlers.Profile] save failed for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
