package domain

import "errors"

// Invitation precondition errors
var (
	ErrInvitationExists   = errors.New("a pending invitation for this email already exists")
	ErrInvalidCode        = errors.New("invitation code not found")
	ErrInvitationUsed     = errors.New("invitation has already been used")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrInvitationNotFound = errors.New("invitation not found")
)

// Connection creation precondition errors
var (
	ErrConnectionExists    = errors.New("an active connection already exists")
	ErrDomAlreadyConnected = errors.New("dom already has an active connection")
	ErrSubAlreadyConnected = errors.New("sub already has an active connection")
	ErrInvalidDom          = errors.New("dom id does not resolve to an active DOM user")
	ErrInvalidSub          = errors.New("sub id does not resolve to an active SUB user")
)

// Connection termination precondition errors
var (
	ErrConnectionNotFound  = errors.New("connection not found")
	ErrConnectionNotActive = errors.New("connection is not active")
	ErrNotConnectionParty  = errors.New("user is not a party to this connection")
)
