package actions

import (
	"context"

	"github.com/orbtao/connectify/backend/internal/models"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const announcementsLimit = 20

// notify stores one notification and pushes it to the target's room. Failures
// are logged and never reach the caller.
func (a *Actions) notify(ctx context.Context, n models.Notification) {
	if n.Type != models.NotificationAdmin && n.UserID == n.ActorID {
		return
	}
	n.CreatedAt = a.now()
	if err := a.store.Notifications.CreateNotification(ctx, &n); err != nil {
		a.log.Warn("notification not stored", "type", n.Type, "target", n.UserID.Hex(), "error", err)
		return
	}
	if !n.UserID.IsZero() {
		a.emit(n.UserID, "notification", n)
	}
}

func (a *Actions) notificationViews(ctx context.Context, list []models.Notification) ([]NotificationView, error) {
	ids := make([]primitive.ObjectID, len(list))
	for i := range list {
		ids[i] = list[i].ActorID
	}
	cards, err := a.authors(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]NotificationView, len(list))
	for i := range list {
		out[i] = NotificationView{Notification: list[i]}
		if card, ok := cards[list[i].ActorID]; ok {
			out[i].Actor = &card
		}
	}
	return out, nil
}

// Notifications lists the caller's notifications, newest first.
func (a *Actions) Notifications(ctx context.Context, callerID string, page int) ([]NotificationView, Page, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, Page{}, err
	}
	page = normalizePage(page)
	skip, limit := a.window(page)
	list, _, err := a.store.Notifications.GetByUserID(ctx, user.ID, skip, limit)
	if err != nil {
		return nil, Page{}, a.storeErr(err, "")
	}
	list, more := trimPage(list, a.pageSize)
	views, err := a.notificationViews(ctx, list)
	if err != nil {
		return nil, Page{}, err
	}
	return views, Page{CurrentPage: page, ItemsPerPage: a.pageSize, HasNextPage: more}, nil
}

func (a *Actions) UnreadNotificationCount(ctx context.Context, callerID string) (int64, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return 0, err
	}
	n, err := a.store.Notifications.GetUnreadCount(ctx, user.ID)
	if err != nil {
		return 0, a.storeErr(err, "")
	}
	return n, nil
}

// MarkNotificationRead marks one notification read. Only its target may.
func (a *Actions) MarkNotificationRead(ctx context.Context, callerID, notificationID string) error {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return err
	}
	id, err := parseID(notificationID, "Notification not found")
	if err != nil {
		return err
	}
	n, err := a.store.Notifications.GetByID(ctx, id)
	if err != nil {
		return a.storeErr(err, "Notification not found")
	}
	if n.UserID != user.ID {
		return apperrors.Forbidden("Not authorized")
	}
	return a.storeErr(a.store.Notifications.MarkAsRead(ctx, id), "Notification not found")
}

func (a *Actions) MarkAllNotificationsRead(ctx context.Context, callerID string) error {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return err
	}
	return a.storeErr(a.store.Notifications.MarkAllAsRead(ctx, user.ID), "")
}

// AdminAnnouncements is the global feed of administrator broadcasts.
func (a *Actions) AdminAnnouncements(ctx context.Context, callerID string) ([]NotificationView, error) {
	if _, err := a.requireUser(ctx, callerID); err != nil {
		return nil, err
	}
	list, err := a.store.Notifications.GetAnnouncements(ctx, announcementsLimit)
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	return a.notificationViews(ctx, list)
}
