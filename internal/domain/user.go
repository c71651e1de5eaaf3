package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

type User struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email              string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash       string     `json:"-" gorm:"not null"`
	DisplayName        string     `json:"displayName" gorm:"not null"`
	Role               Role       `json:"role" gorm:"not null"`
	Status             UserStatus `json:"status" gorm:"not null;default:'ACTIVE'"`
	OnboardingComplete bool       `json:"onboardingComplete" gorm:"not null;default:false"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// IsActive reports whether the account may act at all.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

type UserSession struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           uuid.UUID `json:"userId" gorm:"type:uuid;not null"`
	RefreshTokenHash string    `json:"-" gorm:"not null"`
	ExpiresAt        time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`
}
