package postgres

import (
	"context"

	"github.com/underneath-app/underneath/internal/domain"
	"github.com/underneath-app/underneath/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs the schema migrations, including the partial unique indexes
// that enforce at most one ACTIVE connection per dom and per sub. The
// indexes are the backstop for the exclusivity invariant: even if two
// acceptance transactions race past the existence checks, only one insert
// can commit.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.Invitation{},
		&domain.Connection{},
		&domain.UserProfile{},
	)
	if err != nil {
		return err
	}

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_connections_active_dom
			ON connections (dom_id) WHERE status = 'ACTIVE'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_connections_active_sub
			ON connections (sub_id) WHERE status = 'ACTIVE'`,
	}
	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return err
		}
	}

	return nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:       NewUserRepository(db),
		Session:    NewSessionRepository(db),
		Invitation: NewInvitationRepository(db),
		Connection: NewConnectionRepository(db),
		Profile:    NewProfileRepository(db),
		Tx:         NewTxManager(db),
	}
}

type txManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *txManager {
	return &txManager{db: db}
}

func (m *txManager) WithTx(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
