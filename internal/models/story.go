package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoryLifetime is how long a story stays visible after it is posted.
const StoryLifetime = 24 * time.Hour

// Story represents a user's story stored in MongoDB
type Story struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID   `json:"userId" bson:"user_id"`
	Media     string               `json:"media" bson:"media"`
	Viewers   []primitive.ObjectID `json:"-" bson:"viewers"`
	Status    StoryStatus          `json:"status" bson:"status"`
	CreatedAt time.Time            `json:"createdAt" bson:"created_at"`
	ExpiresAt time.Time            `json:"expiresAt" bson:"expires_at"`
}

// ActiveAt reports whether the story is visible at now. Expiry is evaluated on
// read; nothing deletes the document.
func (s *Story) ActiveAt(now time.Time) bool {
	return now.Before(s.ExpiresAt) && s.Status != StoryExpired
}

func (s *Story) SeenBy(userID primitive.ObjectID) bool {
	return containsID(s.Viewers, userID)
}

type CreateStoryRequest struct {
	Media string `json:"media" form:"media" validate:"omitempty,url"`
}
