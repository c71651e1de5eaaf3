package domain

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "PENDING"
	InvitationStatusAccepted InvitationStatus = "ACCEPTED"
)

const (
	// InvitationCodeLength is the fixed length of invitation codes.
	InvitationCodeLength = 8

	// InvitationTTL is the window during which a pending invitation can be accepted.
	InvitationTTL = 48 * time.Hour

	// AcceptedInvitationRetention is how long accepted invitations keep showing
	// up in the owner's invitation list.
	AcceptedInvitationRetention = 30 * 24 * time.Hour
)

const invitationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Invitation is an offer from a DOM to a prospective SUB, addressed by a
// short single-use code. Invitations are never deleted; an accepted
// invitation is the provenance record of a connection.
type Invitation struct {
	ID         uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code       string           `json:"code" gorm:"uniqueIndex;not null"`
	DomID      uuid.UUID        `json:"domId" gorm:"type:uuid;not null"`
	Email      string           `json:"email" gorm:"not null"`
	Message    string           `json:"message"`
	Status     InvitationStatus `json:"status" gorm:"not null;default:'PENDING'"`
	CreatedAt  time.Time        `json:"createdAt"`
	ExpiresAt  time.Time        `json:"expiresAt" gorm:"not null"`
	AcceptedAt *time.Time       `json:"acceptedAt"`

	Dom *User `json:"dom,omitempty" gorm:"foreignKey:DomID"`
}

// IsExpired reports whether the invitation can no longer be accepted due to
// age. An invitation whose expiry equals the current instant is expired.
func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// IsPending reports whether the invitation has not been consumed yet.
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}

// GenerateInvitationCode returns a random uppercase alphanumeric code of
// InvitationCodeLength characters.
func GenerateInvitationCode() string {
	bytes := make([]byte, InvitationCodeLength)
	rand.Read(bytes)
	code := make([]byte, InvitationCodeLength)
	for i, b := range bytes {
		code[i] = invitationCodeAlphabet[int(b)%len(invitationCodeAlphabet)]
	}
	return string(code)
}

// PlaceholderEmail synthesizes a target address for invitations created
// without one, so the email column stays non-null and unique per code.
func PlaceholderEmail(code string) string {
	return fmt.Sprintf("invite+%s@underneath.app", code)
}
