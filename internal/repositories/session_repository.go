package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/orbtao/connectify/backend/internal/models"
	"gorm.io/gorm"
)

// SessionRepository stores login sessions in PostgreSQL.
type SessionRepository interface {
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	RevokeSession(ctx context.Context, id string, at time.Time) error
	RevokeUserSessions(ctx context.Context, userID string, at time.Time) error
}

type postgresSessionRepository struct {
	db *gorm.DB
}

func NewPostgresSessionRepository(db *gorm.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

// MigrateSessions creates or updates the sessions table.
func MigrateSessions(db *gorm.DB) error {
	return db.AutoMigrate(&models.Session{})
}

func (r *postgresSessionRepository) CreateSession(ctx context.Context, s *models.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *postgresSessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresSessionRepository) RevokeSession(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
}

func (r *postgresSessionRepository) RevokeUserSessions(ctx context.Context, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at).Error
}
