package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/underneath-app/underneath/internal/domain"
	"gorm.io/gorm"
)

type invitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *invitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *domain.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *invitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := r.db.WithContext(ctx).
		Preload("Dom").
		First(&invitation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) GetByCode(ctx context.Context, code string) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := r.db.WithContext(ctx).
		Preload("Dom").
		First(&invitation, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) GetPendingByDomAndEmail(ctx context.Context, domID uuid.UUID, email string, now time.Time) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := r.db.WithContext(ctx).
		Where("dom_id = ? AND email = ? AND status = ? AND expires_at > ?",
			domID, email, domain.InvitationStatusPending, now).
		First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) ListByDom(ctx context.Context, domID uuid.UUID, now, acceptedSince time.Time) ([]*domain.Invitation, error) {
	var invitations []*domain.Invitation
	err := r.db.WithContext(ctx).
		Where("dom_id = ?", domID).
		Where(
			r.db.Where("status = ? AND expires_at > ?", domain.InvitationStatusPending, now).
				Or("status = ? AND accepted_at >= ?", domain.InvitationStatusAccepted, acceptedSince),
		).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *invitationRepository) Update(ctx context.Context, invitation *domain.Invitation) error {
	return r.db.WithContext(ctx).Save(invitation).Error
}
