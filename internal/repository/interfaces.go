package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/underneath-app/underneath/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// GetByIDForUpdate locks the user's row for the rest of the enclosing
	// transaction, serializing writers that key off this user.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type InvitationRepository interface {
	Create(ctx context.Context, invitation *domain.Invitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error)
	GetByCode(ctx context.Context, code string) (*domain.Invitation, error)
	// GetPendingByDomAndEmail returns a pending, unexpired invitation from the
	// dom to the email, if one exists.
	GetPendingByDomAndEmail(ctx context.Context, domID uuid.UUID, email string, now time.Time) (*domain.Invitation, error)
	// ListByDom returns the dom's pending unexpired invitations plus those
	// accepted after acceptedSince, newest first.
	ListByDom(ctx context.Context, domID uuid.UUID, now, acceptedSince time.Time) ([]*domain.Invitation, error)
	Update(ctx context.Context, invitation *domain.Invitation) error
}

type ConnectionRepository interface {
	Create(ctx context.Context, connection *domain.Connection) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error)
	// GetActiveByDomID returns the dom's single ACTIVE connection, or
	// gorm.ErrRecordNotFound.
	GetActiveByDomID(ctx context.Context, domID uuid.UUID) (*domain.Connection, error)
	GetActiveBySubID(ctx context.Context, subID uuid.UUID) (*domain.Connection, error)
	Update(ctx context.Context, connection *domain.Connection) error
	List(ctx context.Context, limit, offset int) ([]*domain.Connection, error)
	Count(ctx context.Context) (int64, error)
}

type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.UserProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)
}

type Repositories struct {
	User       UserRepository
	Session    SessionRepository
	Invitation InvitationRepository
	Connection ConnectionRepository
	Profile    ProfileRepository

	// Tx runs fn with a Repositories bound to a single database transaction.
	Tx TxManager
}

// TxManager scopes a group of repository calls to one transaction. Every
// state-changing invitation/connection operation runs inside WithTx.
type TxManager interface {
	WithTx(ctx context.Context, fn func(repos *Repositories) error) error
}
