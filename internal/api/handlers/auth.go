package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/underneath-app/underneath/internal/api/middleware"
	"github.com/underneath-app/underneath/internal/domain"
	"github.com/underneath-app/underneath/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type UserResponse struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	DisplayName        string `json:"displayName"`
	Role               string `json:"role"`
	OnboardingComplete bool   `json:"onboardingComplete"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:                 user.ID.String(),
		Email:              user.Email,
		DisplayName:        user.DisplayName,
		Role:               user.Role.String(),
		OnboardingComplete: user.OnboardingComplete,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" || req.DisplayName == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email, password, display name and role are required")
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        domain.Role(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			writeError(w, http.StatusConflict, "EMAIL_EXISTS", "Email already registered")
		case errors.Is(err, service.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid role")
		default:
			log.Printf("ERROR [handlers.Auth] register failed: %v", err)
			writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		User:         toUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
			return
		}
		log.Printf("ERROR [handlers.Auth] login failed: %v", err)
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		User:         toUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		log.Printf("ERROR [handlers.Auth] logout failed: %v", err)
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
