package service

import (
	"github.com/google/uuid"
	"github.com/underneath-app/underneath/internal/config"
	"github.com/underneath-app/underneath/internal/mailer"
	"github.com/underneath-app/underneath/internal/notify"
	"github.com/underneath-app/underneath/internal/repository"
)

// Notifier pushes realtime events to a user's connected clients.
type Notifier interface {
	Publish(userID uuid.UUID, event notify.Event)
}

type Services struct {
	Auth       *AuthService
	Invitation *InvitationService
	Connection *ConnectionService
	Profile    *ProfileService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, mail mailer.Mailer, notifier Notifier) *Services {
	return &Services{
		Auth:       NewAuthService(repos.User, repos.Session, cfg),
		Invitation: NewInvitationService(repos, mail, notifier),
		Connection: NewConnectionService(repos, notifier),
		Profile:    NewProfileService(repos.Profile, repos.User),
	}
}
