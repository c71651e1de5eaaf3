package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/underneath-app/underneath/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email       string
	displayName string
	password    string
	role        domain.Role
	status      domain.UserStatus
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		email:       fmt.Sprintf("testuser_%s@example.com", suffix),
		displayName: fmt.Sprintf("testuser_%s", suffix),
		password:    "testpassword123",
		role:        domain.RoleSub,
		status:      domain.UserStatusActive,
	}
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithRole(role domain.Role) *UserBuilder {
	b.role = role
	return b
}

func (b *UserBuilder) WithStatus(status domain.UserStatus) *UserBuilder {
	b.status = status
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		DisplayName:  b.displayName,
		PasswordHash: string(hashedPassword),
		Role:         b.role,
		Status:       b.status,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Role        string `json:"role"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates a user via API and returns the user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"email":       b.email,
		"displayName": b.displayName,
		"password":    b.password,
		"role":        b.role.String(),
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:          userID,
		Email:       authResp.User.Email,
		DisplayName: authResp.User.DisplayName,
		Role:        domain.Role(authResp.User.Role),
	}

	return user, authResp.AccessToken
}

// InvitationBuilder creates test invitations with a builder pattern
type InvitationBuilder struct {
	dom       *domain.User
	email     string
	message   string
	status    domain.InvitationStatus
	expiresAt time.Time
}

func NewInvitationBuilder(dom *domain.User) *InvitationBuilder {
	return &InvitationBuilder{
		dom:       dom,
		email:     fmt.Sprintf("invitee_%s@example.com", uuid.New().String()[:8]),
		status:    domain.InvitationStatusPending,
		expiresAt: time.Now().Add(domain.InvitationTTL),
	}
}

func (b *InvitationBuilder) WithEmail(email string) *InvitationBuilder {
	b.email = email
	return b
}

func (b *InvitationBuilder) WithMessage(message string) *InvitationBuilder {
	b.message = message
	return b
}

func (b *InvitationBuilder) WithStatus(status domain.InvitationStatus) *InvitationBuilder {
	b.status = status
	return b
}

func (b *InvitationBuilder) WithExpiresAt(expiresAt time.Time) *InvitationBuilder {
	b.expiresAt = expiresAt
	return b
}

func (b *InvitationBuilder) Build(t *testing.T, db *gorm.DB) *domain.Invitation {
	t.Helper()

	now := time.Now()
	invitation := &domain.Invitation{
		ID:        uuid.New(),
		Code:      domain.GenerateInvitationCode(),
		DomID:     b.dom.ID,
		Email:     b.email,
		Message:   b.message,
		Status:    b.status,
		CreatedAt: now,
		ExpiresAt: b.expiresAt,
	}
	if b.status == domain.InvitationStatusAccepted {
		invitation.AcceptedAt = &now
	}

	if err := db.Create(invitation).Error; err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}

	return invitation
}

// ConnectionBuilder creates test connections with a builder pattern
type ConnectionBuilder struct {
	dom    *domain.User
	sub    *domain.User
	status domain.ConnectionStatus
}

func NewConnectionBuilder(dom, sub *domain.User) *ConnectionBuilder {
	return &ConnectionBuilder{
		dom:    dom,
		sub:    sub,
		status: domain.ConnectionStatusActive,
	}
}

func (b *ConnectionBuilder) WithStatus(status domain.ConnectionStatus) *ConnectionBuilder {
	b.status = status
	return b
}

func (b *ConnectionBuilder) Build(t *testing.T, db *gorm.DB) *domain.Connection {
	t.Helper()

	now := time.Now()
	connection := &domain.Connection{
		ID:        uuid.New(),
		DomID:     b.dom.ID,
		SubID:     b.sub.ID,
		Status:    b.status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.Create(connection).Error; err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}

	return connection
}
