package memory

import (
	"context"
	"time"

	"github.com/orbtao/connectify/backend/internal/models"
	"github.com/orbtao/connectify/backend/internal/repositories"
)

type sessionRepo struct{ db *DB }

func (r *sessionRepo) CreateSession(ctx context.Context, s *models.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.sessions[s.ID]; ok {
		return repositories.ErrDuplicate
	}
	s.CreatedAt = stamp(s.CreatedAt)
	c := *s
	r.db.sessions[s.ID] = &c
	return nil
}

func (r *sessionRepo) GetSession(ctx context.Context, id string) (*models.Session, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	s, ok := r.db.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (r *sessionRepo) RevokeSession(ctx context.Context, id string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if s, ok := r.db.sessions[id]; ok && s.RevokedAt == nil {
		s.RevokedAt = &at
	}
	return nil
}

func (r *sessionRepo) RevokeUserSessions(ctx context.Context, userID string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &at
		}
	}
	return nil
}
