package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/underneath-app/underneath/internal/domain"
	"github.com/underneath-app/underneath/internal/notify"
	"github.com/underneath-app/underneath/internal/repository"
	"gorm.io/gorm"
)

// Page-size bounds for the admin connection listing. Exported so the
// handler echoing the effective limit uses the same values.
const (
	DefaultConnectionPageSize = 50
	MaxConnectionPageSize     = 100
)

type ConnectionService struct {
	repos    *repository.Repositories
	notifier Notifier
}

func NewConnectionService(repos *repository.Repositories, notifier Notifier) *ConnectionService {
	return &ConnectionService{
		repos:    repos,
		notifier: notifier,
	}
}

// DirectCreate pairs a dom and a sub without an invitation code. Unlike
// acceptance, both parties are role-checked here because neither id came
// through an authenticated invitation flow.
func (s *ConnectionService) DirectCreate(ctx context.Context, domID, subID uuid.UUID) (*domain.Connection, error) {
	dom, err := s.repos.User.GetByID(ctx, domID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidDom
		}
		return nil, err
	}
	if dom.Role != domain.RoleDom || !dom.IsActive() {
		return nil, domain.ErrInvalidDom
	}

	sub, err := s.repos.User.GetByID(ctx, subID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidSub
		}
		return nil, err
	}
	if sub.Role != domain.RoleSub || !sub.IsActive() {
		return nil, domain.ErrInvalidSub
	}

	var connection *domain.Connection
	err = s.repos.Tx.WithTx(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.Connection.GetActiveByDomID(ctx, domID); err == nil {
			return domain.ErrDomAlreadyConnected
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if _, err := repos.Connection.GetActiveBySubID(ctx, subID); err == nil {
			return domain.ErrSubAlreadyConnected
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		connection = &domain.Connection{
			ID:        uuid.New(),
			DomID:     domID,
			SubID:     subID,
			Status:    domain.ConnectionStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.Connection.Create(ctx, connection); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrConnectionExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return connection, nil
}

// Terminate ends an active connection on behalf of one of its parties.
func (s *ConnectionService) Terminate(ctx context.Context, connectionID, initiatorID uuid.UUID) (*domain.Connection, error) {
	connection, err := s.terminate(ctx, connectionID, &initiatorID)
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(connection.PartnerOf(initiatorID), notify.NewEvent(notify.EventConnectionTerminated, map[string]string{
		"connectionId": connection.ID.String(),
	}))

	return connection, nil
}

// AdminTerminate ends an active connection without a party check.
func (s *ConnectionService) AdminTerminate(ctx context.Context, connectionID uuid.UUID) (*domain.Connection, error) {
	connection, err := s.terminate(ctx, connectionID, nil)
	if err != nil {
		return nil, err
	}

	event := notify.NewEvent(notify.EventConnectionTerminated, map[string]string{
		"connectionId": connection.ID.String(),
	})
	s.notifier.Publish(connection.DomID, event)
	s.notifier.Publish(connection.SubID, event)

	return connection, nil
}

func (s *ConnectionService) terminate(ctx context.Context, connectionID uuid.UUID, initiatorID *uuid.UUID) (*domain.Connection, error) {
	var connection *domain.Connection

	err := s.repos.Tx.WithTx(ctx, func(repos *repository.Repositories) error {
		var err error
		connection, err = repos.Connection.GetByID(ctx, connectionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrConnectionNotFound
			}
			return err
		}

		if !connection.IsActive() {
			return domain.ErrConnectionNotActive
		}
		if initiatorID != nil && !connection.Involves(*initiatorID) {
			return domain.ErrNotConnectionParty
		}

		connection.Status = domain.ConnectionStatusTerminated
		connection.UpdatedAt = time.Now()
		return repos.Connection.Update(ctx, connection)
	})
	if err != nil {
		return nil, err
	}

	return connection, nil
}

// GetUserConnection returns the user's single ACTIVE connection for the
// given role, or nil. The partial unique indexes guarantee there is never
// more than one.
func (s *ConnectionService) GetUserConnection(ctx context.Context, userID uuid.UUID, role domain.Role) (*domain.Connection, error) {
	var connection *domain.Connection
	var err error

	switch role {
	case domain.RoleDom:
		connection, err = s.repos.Connection.GetActiveByDomID(ctx, userID)
	case domain.RoleSub:
		connection, err = s.repos.Connection.GetActiveBySubID(ctx, userID)
	default:
		return nil, nil
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return connection, nil
}

// CanCreateConnection reports whether the user is free to enter a new
// connection in the given role.
func (s *ConnectionService) CanCreateConnection(ctx context.Context, userID uuid.UUID, role domain.Role) (bool, error) {
	connection, err := s.GetUserConnection(ctx, userID, role)
	if err != nil {
		return false, err
	}
	return connection == nil, nil
}

// ListAll returns connections for admin oversight, newest first, along
// with the total row count.
func (s *ConnectionService) ListAll(ctx context.Context, limit, offset int) ([]*domain.Connection, int64, error) {
	if limit <= 0 {
		limit = DefaultConnectionPageSize
	}
	if limit > MaxConnectionPageSize {
		limit = MaxConnectionPageSize
	}
	if offset < 0 {
		offset = 0
	}

	connections, err := s.repos.Connection.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repos.Connection.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return connections, total, nil
}
