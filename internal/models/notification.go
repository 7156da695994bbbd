package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
	NotificationMention NotificationType = "mention"
	NotificationShare   NotificationType = "share"
	// NotificationAdmin is a broadcast announcement. It has no target user.
	NotificationAdmin NotificationType = "admin"
)

// Notification is one event delivered to UserID, caused by ActorID.
type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId,omitzero" bson:"user_id,omitempty"`
	Type      NotificationType   `json:"type" bson:"type"`
	ActorID   primitive.ObjectID `json:"actorId" bson:"actor_id"`
	PostID    primitive.ObjectID `json:"postId,omitzero" bson:"post_id,omitempty"`
	CommentID primitive.ObjectID `json:"commentId,omitzero" bson:"comment_id,omitempty"`
	Message   string             `json:"message,omitempty" bson:"message,omitempty"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

type BroadcastRequest struct {
	Message string `json:"message" form:"message" validate:"required,max=1000"`
}
