package actions

import (
	"context"
	"time"

	"github.com/orbtao/connectify/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostView struct {
	ID            string             `json:"id"`
	Author        models.UserCompact `json:"author"`
	Content       string             `json:"content"`
	Media         []string           `json:"media"`
	Status        models.PostStatus  `json:"status"`
	LikesCount    int                `json:"likesCount"`
	CommentsCount int                `json:"commentsCount"`
	IsLiked       bool               `json:"isLiked"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type CommentView struct {
	ID        string             `json:"id"`
	PostID    string             `json:"postId"`
	Author    models.UserCompact `json:"author"`
	Content   string             `json:"content"`
	CreatedAt time.Time          `json:"createdAt"`
}

type ProfileView struct {
	models.User
	FollowersCount int  `json:"followersCount"`
	FollowingCount int  `json:"followingCount"`
	IsFollowing    bool `json:"isFollowing"`
	IsOwnProfile   bool `json:"isOwnProfile"`
}

type StoryView struct {
	ID           string    `json:"id"`
	Media        string    `json:"media"`
	Seen         bool      `json:"seen"`
	ViewersCount int       `json:"viewersCount"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// StoryGroup is one author's active stories, oldest first.
type StoryGroup struct {
	User      models.UserCompact `json:"user"`
	Stories   []StoryView        `json:"stories"`
	HasUnseen bool               `json:"hasUnseen"`
}

type NotificationView struct {
	models.Notification
	Actor *models.UserCompact `json:"actor,omitempty"`
}

type ConversationView struct {
	Partner     models.UserCompact `json:"partner"`
	LastMessage models.Message     `json:"lastMessage"`
	UnreadCount int64              `json:"unreadCount"`
}

// AuthResult is returned by every sign-in path.
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	SessionID string       `json:"-"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// authors loads the compact cards of ids. Unknown ids map to a bare card.
func (a *Actions) authors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserCompact, error) {
	unique := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	users, err := a.store.Users.GetUsersByIDs(ctx, unique)
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	out := make(map[primitive.ObjectID]models.UserCompact, len(unique))
	for i := range users {
		out[users[i].ID] = users[i].ToCompact()
	}
	for _, id := range unique {
		if _, ok := out[id]; !ok {
			out[id] = models.UserCompact{ID: id.Hex()}
		}
	}
	return out, nil
}

func toPostView(p *models.Post, author models.UserCompact, viewer primitive.ObjectID) PostView {
	media := p.Media
	if media == nil {
		media = []string{}
	}
	return PostView{
		ID:            p.ID.Hex(),
		Author:        author,
		Content:       p.Content,
		Media:         media,
		Status:        p.Status,
		LikesCount:    len(p.Likes),
		CommentsCount: len(p.Comments),
		IsLiked:       p.LikedBy(viewer),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (a *Actions) postViews(ctx context.Context, posts []models.Post, viewer primitive.ObjectID) ([]PostView, error) {
	ids := make([]primitive.ObjectID, len(posts))
	for i := range posts {
		ids[i] = posts[i].UserID
	}
	cards, err := a.authors(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]PostView, len(posts))
	for i := range posts {
		out[i] = toPostView(&posts[i], cards[posts[i].UserID], viewer)
	}
	return out, nil
}

func (a *Actions) postView(ctx context.Context, p *models.Post, viewer primitive.ObjectID) (*PostView, error) {
	views, err := a.postViews(ctx, []models.Post{*p}, viewer)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func profileView(u *models.User, viewer *models.User) *ProfileView {
	own := viewer != nil && viewer.ID == u.ID
	v := &ProfileView{
		User:           *u,
		FollowersCount: len(u.Followers),
		FollowingCount: len(u.Following),
		IsOwnProfile:   own,
	}
	if viewer != nil && !own {
		v.IsFollowing = viewer.IsFollowing(u.ID)
		if !viewer.IsAdmin() {
			v.Email = ""
		}
	}
	return v
}
