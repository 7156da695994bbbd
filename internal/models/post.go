package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedWindow is how long a post stays visible to everyone regardless of follows.
const FeedWindow = 48 * time.Hour

// Post represents a social media post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID   `json:"userId" bson:"user_id"`
	Content   string               `json:"content" bson:"content"`
	Media     []string             `json:"media" bson:"media"`
	Likes     []primitive.ObjectID `json:"-" bson:"likes"`
	Comments  []primitive.ObjectID `json:"-" bson:"comments"`
	Status    PostStatus           `json:"status" bson:"status"`
	CreatedAt time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updated_at"`
}

func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	return containsID(p.Likes, userID)
}

// FeedQuery selects the posts a viewer sees: anything newer than Since, plus
// everything written by Authors (the viewer and whoever it follows).
type FeedQuery struct {
	Authors []primitive.ObjectID
	Since   time.Time
}

// NewFeedQuery builds the feed selection for viewer at now.
func NewFeedQuery(viewer *User, now time.Time) FeedQuery {
	authors := make([]primitive.ObjectID, 0, len(viewer.Following)+1)
	authors = append(authors, viewer.ID)
	authors = append(authors, viewer.Following...)
	return FeedQuery{Authors: authors, Since: now.Add(-FeedWindow)}
}

// Matches evaluates the feed rule for a single post. Hidden posts never match.
func (q FeedQuery) Matches(p *Post) bool {
	if p.Status == PostHidden {
		return false
	}
	return p.CreatedAt.After(q.Since) || containsID(q.Authors, p.UserID)
}

type CreatePostRequest struct {
	Content string   `json:"content" form:"content" validate:"max=2200"`
	Media   []string `json:"media,omitempty" form:"media" validate:"omitempty,max=10,dive,url"`
}

type CreateCommentRequest struct {
	Content string `json:"content" form:"content" validate:"required,min=1,max=500"`
}

type SetStatusRequest struct {
	Status string `json:"status" form:"status" validate:"required"`
}
