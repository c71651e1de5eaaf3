package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/underneath-app/underneath/internal/domain"
	"github.com/underneath-app/underneath/internal/mailer"
	"github.com/underneath-app/underneath/internal/notify"
	"github.com/underneath-app/underneath/internal/repository"
	"gorm.io/gorm"
)

// codeGenerationAttempts bounds regeneration when a freshly generated code
// collides with an existing one. At 36^8 codes a single retry is already
// vanishingly unlikely.
const codeGenerationAttempts = 3

type InvitationService struct {
	repos    *repository.Repositories
	mail     mailer.Mailer
	notifier Notifier
}

func NewInvitationService(repos *repository.Repositories, mail mailer.Mailer, notifier Notifier) *InvitationService {
	return &InvitationService{
		repos:    repos,
		mail:     mail,
		notifier: notifier,
	}
}

type CreateInvitationInput struct {
	DomID   uuid.UUID
	Email   string
	Message string
}

// Create issues a new invitation from a DOM. The invitation row is
// committed first; the notification email is sent best-effort afterwards
// and a failed send leaves the invitation pending and resendable.
//
// A code collision aborts the whole transaction (a unique violation poisons
// it on postgres), so the retry loop re-runs the transaction rather than the
// insert alone.
func (s *InvitationService) Create(ctx context.Context, input CreateInvitationInput) (*domain.Invitation, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var invitation *domain.Invitation
	var domName string
	for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
		var err error
		invitation, domName, err = s.tryCreate(ctx, input.DomID, email, input.Message)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		invitation = nil
	}
	if invitation == nil {
		return nil, fmt.Errorf("failed to generate a unique invitation code after %d attempts", codeGenerationAttempts)
	}

	if email != "" {
		go s.sendInvitationEmail(invitation, domName)
	}

	return invitation, nil
}

// tryCreate runs one duplicate-check-plus-insert attempt in a transaction.
// The dom's user row is locked first, so concurrent creates for the same dom
// queue up and the duplicate-pending check always sees the winner's
// committed row instead of racing past it.
func (s *InvitationService) tryCreate(ctx context.Context, domID uuid.UUID, email, message string) (*domain.Invitation, string, error) {
	var invitation *domain.Invitation
	var domName string

	err := s.repos.Tx.WithTx(ctx, func(repos *repository.Repositories) error {
		dom, err := repos.User.GetByIDForUpdate(ctx, domID)
		if err != nil {
			return err
		}
		domName = dom.DisplayName

		if email != "" {
			_, err := repos.Invitation.GetPendingByDomAndEmail(ctx, domID, email, time.Now())
			if err == nil {
				return domain.ErrInvitationExists
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		code := domain.GenerateInvitationCode()
		targetEmail := email
		if targetEmail == "" {
			targetEmail = domain.PlaceholderEmail(code)
		}

		now := time.Now()
		invitation = &domain.Invitation{
			ID:        uuid.New(),
			Code:      code,
			DomID:     domID,
			Email:     targetEmail,
			Message:   message,
			Status:    domain.InvitationStatusPending,
			CreatedAt: now,
			ExpiresAt: now.Add(domain.InvitationTTL),
		}
		return repos.Invitation.Create(ctx, invitation)
	})
	if err != nil {
		return nil, "", err
	}

	return invitation, domName, nil
}

func (s *InvitationService) sendInvitationEmail(invitation *domain.Invitation, domName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subject := fmt.Sprintf("%s invited you to Underneath", domName)
	text := fmt.Sprintf(
		"%s has invited you to connect on Underneath.\n\nYour invitation code is %s. It expires in 48 hours.",
		domName, invitation.Code,
	)
	html := fmt.Sprintf(
		"<p>%s has invited you to connect on Underneath.</p><p>Your invitation code is <strong>%s</strong>. It expires in 48 hours.</p>",
		domName, invitation.Code,
	)
	if invitation.Message != "" {
		text += "\n\n" + invitation.Message
		html += fmt.Sprintf("<blockquote>%s</blockquote>", invitation.Message)
	}

	if err := s.mail.Send(ctx, invitation.Email, subject, html, text); err != nil {
		log.Printf("ERROR [service.Invitation] failed to send invitation email for %s: %v", invitation.ID, err)
	}
}

// Resend re-sends the email for the dom's own pending, unexpired invitation.
func (s *InvitationService) Resend(ctx context.Context, domID, invitationID uuid.UUID) error {
	invitation, err := s.repos.Invitation.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrInvitationNotFound
		}
		return err
	}
	// Another dom's invitation is indistinguishable from a missing one.
	if invitation.DomID != domID {
		return domain.ErrInvitationNotFound
	}
	if !invitation.IsPending() {
		return domain.ErrInvitationUsed
	}
	if invitation.IsExpired(time.Now()) {
		return domain.ErrInvitationExpired
	}

	domName := ""
	if invitation.Dom != nil {
		domName = invitation.Dom.DisplayName
	}

	s.sendInvitationEmail(invitation, domName)
	return nil
}

type ValidationResult struct {
	Valid   bool
	DomName string
	Email   string
}

// Validate is the read-only pre-acceptance check. It never mutates state
// and may be called any number of times with the same outcome.
func (s *InvitationService) Validate(ctx context.Context, code string) (*ValidationResult, error) {
	invitation, err := s.repos.Invitation.GetByCode(ctx, normalizeCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCode
		}
		return nil, err
	}

	if !invitation.IsPending() {
		return nil, domain.ErrInvitationUsed
	}
	if invitation.IsExpired(time.Now()) {
		return nil, domain.ErrInvitationExpired
	}

	domName := ""
	if invitation.Dom != nil {
		domName = invitation.Dom.DisplayName
	}

	return &ValidationResult{
		Valid:   true,
		DomName: domName,
		Email:   invitation.Email,
	}, nil
}

type AcceptResult struct {
	Invitation *domain.Invitation
	Connection *domain.Connection
}

// Accept consumes a valid invitation and creates the connection in one
// transaction. The invitation is re-validated inside the transaction —
// a prior Validate call proves nothing once another request may have run.
// The partial unique indexes on connections turn any lost race into a
// duplicate-key error, reported as ErrConnectionExists like a failed check.
func (s *InvitationService) Accept(ctx context.Context, code string, subID uuid.UUID) (*AcceptResult, error) {
	var result AcceptResult

	err := s.repos.Tx.WithTx(ctx, func(repos *repository.Repositories) error {
		invitation, err := repos.Invitation.GetByCode(ctx, normalizeCode(code))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrInvalidCode
			}
			return err
		}

		now := time.Now()
		if !invitation.IsPending() {
			return domain.ErrInvitationUsed
		}
		if invitation.IsExpired(now) {
			return domain.ErrInvitationExpired
		}

		if _, err := repos.Connection.GetActiveByDomID(ctx, invitation.DomID); err == nil {
			return domain.ErrConnectionExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if _, err := repos.Connection.GetActiveBySubID(ctx, subID); err == nil {
			return domain.ErrConnectionExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		invitation.Status = domain.InvitationStatusAccepted
		invitation.AcceptedAt = &now
		if err := repos.Invitation.Update(ctx, invitation); err != nil {
			return err
		}

		connection := &domain.Connection{
			ID:        uuid.New(),
			DomID:     invitation.DomID,
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

		result.Invitation = invitation
		result.Connection = connection
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(result.Connection.DomID, notify.NewEvent(notify.EventInvitationAccepted, map[string]string{
		"connectionId": result.Connection.ID.String(),
		"subId":        result.Connection.SubID.String(),
	}))

	return &result, nil
}

// ListByDom returns the dom's open invitations plus those accepted within
// the last 30 days.
func (s *InvitationService) ListByDom(ctx context.Context, domID uuid.UUID) ([]*domain.Invitation, error) {
	now := time.Now()
	return s.repos.Invitation.ListByDom(ctx, domID, now, now.Add(-domain.AcceptedInvitationRetention))
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
