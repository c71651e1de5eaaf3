package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConnectionStatus string

const (
	ConnectionStatusActive     ConnectionStatus = "ACTIVE"
	ConnectionStatusTerminated ConnectionStatus = "TERMINATED"
	ConnectionStatusSuspended  ConnectionStatus = "SUSPENDED"
)

// Connection is an exclusive pairing between exactly one DOM and one SUB.
// At most one ACTIVE connection may reference a given user on either side;
// partial unique indexes on (dom_id) and (sub_id) where status='ACTIVE'
// enforce this independently of transaction isolation.
type Connection struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DomID     uuid.UUID        `json:"domId" gorm:"type:uuid;not null"`
	SubID     uuid.UUID        `json:"subId" gorm:"type:uuid;not null"`
	Status    ConnectionStatus `json:"status" gorm:"not null;default:'ACTIVE'"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`

	Dom *User `json:"dom,omitempty" gorm:"foreignKey:DomID"`
	Sub *User `json:"sub,omitempty" gorm:"foreignKey:SubID"`
}

// IsActive reports whether the connection is the live pairing for its parties.
func (c *Connection) IsActive() bool {
	return c.Status == ConnectionStatusActive
}

// Involves reports whether the given user is one of the two parties.
func (c *Connection) Involves(userID uuid.UUID) bool {
	return c.DomID == userID || c.SubID == userID
}

// PartnerOf returns the other party of the connection.
func (c *Connection) PartnerOf(userID uuid.UUID) uuid.UUID {
	if c.DomID == userID {
		return c.SubID
	}
	return c.DomID
}
