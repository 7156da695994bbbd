package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a direct message. Conversations are not stored; they are every
// message between two users in either direction.
type Message struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SenderID   primitive.ObjectID `json:"senderId" bson:"sender_id"`
	ReceiverID primitive.ObjectID `json:"receiverId" bson:"receiver_id"`
	Content    string             `json:"content" bson:"content"`
	Read       bool               `json:"read" bson:"read"`
	CreatedAt  time.Time          `json:"createdAt" bson:"created_at"`
}

// Partner returns the other side of the conversation as seen by userID.
func (m *Message) Partner(userID primitive.ObjectID) primitive.ObjectID {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" form:"receiverId" validate:"required"`
	Content    string `json:"content" form:"content" validate:"required,max=2000"`
}
