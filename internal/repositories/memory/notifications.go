package memory

import (
	"context"
	"slices"

	"github.com/orbtao/connectify/backend/internal/models"
	"github.com/orbtao/connectify/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type notificationRepo struct{ db *DB }

func (r *notificationRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = stamp(n.CreatedAt)
	c := *n
	r.db.notifications[c.ID] = &c
	return nil
}

func (r *notificationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	n, ok := r.db.notifications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (r *notificationRepo) filter(match func(*models.Notification) bool) []models.Notification {
	r.db.mu.RLock()
	out := []models.Notification{}
	for _, n := range r.db.notifications {
		if match(n) {
			out = append(out, *n)
		}
	}
	r.db.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.Notification) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return out
}

func (r *notificationRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Notification, int64, error) {
	out := r.filter(func(n *models.Notification) bool { return n.UserID == userID })
	return page(out, skip, limit), int64(len(out)), nil
}

func (r *notificationRepo) GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return int64(len(r.filter(func(n *models.Notification) bool { return n.UserID == userID && !n.Read }))), nil
}

func (r *notificationRepo) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n, ok := r.db.notifications[id]
	if !ok {
		return repositories.ErrNotFound
	}
	n.Read = true
	return nil
}

func (r *notificationRepo) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, n := range r.db.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *notificationRepo) GetAnnouncements(ctx context.Context, limit int64) ([]models.Notification, error) {
	out := r.filter(func(n *models.Notification) bool { return n.Type == models.NotificationAdmin })
	return page(out, 0, limit), nil
}
