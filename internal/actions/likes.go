package actions

import (
	"context"

	"github.com/orbtao/connectify/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LikeResult struct {
	LikesCount int  `json:"likesCount"`
	IsLiked    bool `json:"isLiked"`
}

func (a *Actions) likeTarget(ctx context.Context, callerID, postID string) (*models.User, *models.Post, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, nil, err
	}
	id, err := parseID(postID, "Post not found")
	if err != nil {
		return nil, nil, err
	}
	post, err := a.store.Posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, nil, a.storeErr(err, "Post not found")
	}
	return user, post, nil
}

// LikePost adds the caller to the post's likes. Liking twice equals liking
// once; the owner is notified of the first like unless it liked its own post.
func (a *Actions) LikePost(ctx context.Context, callerID, postID string) (*LikeResult, error) {
	user, post, err := a.likeTarget(ctx, callerID, postID)
	if err != nil {
		return nil, err
	}
	added, err := a.store.Posts.AddLike(ctx, post.ID, user.ID)
	if err != nil {
		return nil, a.storeErr(err, "Post not found")
	}
	if added {
		a.notify(ctx, models.Notification{
			UserID:  post.UserID,
			Type:    models.NotificationLike,
			ActorID: user.ID,
			PostID:  post.ID,
		})
	}
	return a.likeResult(ctx, post.ID, user.ID)
}

// UnlikePost removes the caller's like. Unliking a post never liked is a no-op.
func (a *Actions) UnlikePost(ctx context.Context, callerID, postID string) (*LikeResult, error) {
	user, post, err := a.likeTarget(ctx, callerID, postID)
	if err != nil {
		return nil, err
	}
	if err := a.store.Posts.RemoveLike(ctx, post.ID, user.ID); err != nil {
		return nil, a.storeErr(err, "Post not found")
	}
	return a.likeResult(ctx, post.ID, user.ID)
}

func (a *Actions) likeResult(ctx context.Context, postID, userID primitive.ObjectID) (*LikeResult, error) {
	post, err := a.store.Posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, a.storeErr(err, "Post not found")
	}
	return &LikeResult{LikesCount: len(post.Likes), IsLiked: post.LikedBy(userID)}, nil
}
