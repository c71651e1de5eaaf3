package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/underneath-app/underneath/internal/domain"
	"gorm.io/gorm"
)

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *connectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, connection *domain.Connection) error {
	return r.db.WithContext(ctx).Create(connection).Error
}

func (r *connectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error) {
	var connection domain.Connection
	err := r.db.WithContext(ctx).
		Preload("Dom").
		Preload("Sub").
		First(&connection, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &connection, nil
}

func (r *connectionRepository) GetActiveByDomID(ctx context.Context, domID uuid.UUID) (*domain.Connection, error) {
	var connection domain.Connection
	err := r.db.WithContext(ctx).
		Preload("Dom").
		Preload("Sub").
		First(&connection, "dom_id = ? AND status = ?", domID, domain.ConnectionStatusActive).Error
	if err != nil {
		return nil, err
	}
	return &connection, nil
}

func (r *connectionRepository) GetActiveBySubID(ctx context.Context, subID uuid.UUID) (*domain.Connection, error) {
	var connection domain.Connection
	err := r.db.WithContext(ctx).
		Preload("Dom").
		Preload("Sub").
		First(&connection, "sub_id = ? AND status = ?", subID, domain.ConnectionStatusActive).Error
	if err != nil {
		return nil, err
	}
	return &connection, nil
}

func (r *connectionRepository) Update(ctx context.Context, connection *domain.Connection) error {
	return r.db.WithContext(ctx).Save(connection).Error
}

func (r *connectionRepository) List(ctx context.Context, limit, offset int) ([]*domain.Connection, error) {
	var connections []*domain.Connection
	err := r.db.WithContext(ctx).
		Preload("Dom").
		Preload("Sub").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&connections).Error
	if err != nil {
		return nil, err
	}
	return connections, nil
}

func (r *connectionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Connection{}).Count(&count).Error
	return count, err
}
