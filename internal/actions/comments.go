package actions

import (
	"context"
	"strings"

	"github.com/orbtao/connectify/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddComment stores a comment and appends it to the post.
func (a *Actions) AddComment(ctx context.Context, callerID, postID string, req models.CreateCommentRequest) (*CommentView, error) {
	user, post, err := a.likeTarget(ctx, callerID, postID)
	if err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := a.validate(req); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID:    user.ID,
		PostID:    post.ID,
		Content:   req.Content,
		CreatedAt: a.now(),
	}
	if err := a.store.Comments.CreateComment(ctx, comment); err != nil {
		return nil, a.storeErr(err, "")
	}
	if err := a.store.Posts.AppendComment(ctx, post.ID, comment.ID); err != nil {
		return nil, a.storeErr(err, "Post not found")
	}

	a.notify(ctx, models.Notification{
		UserID:    post.UserID,
		Type:      models.NotificationComment,
		ActorID:   user.ID,
		PostID:    post.ID,
		CommentID: comment.ID,
	})
	a.notifyMentions(ctx, user.ID, comment.Content, post.ID, comment.ID)

	return &CommentView{
		ID:        comment.ID.Hex(),
		PostID:    post.ID.Hex(),
		Author:    user.ToCompact(),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}, nil
}

// ListComments returns a post's comments with their authors, oldest first.
func (a *Actions) ListComments(ctx context.Context, callerID, postID string) ([]CommentView, error) {
	_, post, err := a.likeTarget(ctx, callerID, postID)
	if err != nil {
		return nil, err
	}
	comments, err := a.store.Comments.GetCommentsByPostID(ctx, post.ID)
	if err != nil {
		return nil, a.storeErr(err, "")
	}

	ids := make([]primitive.ObjectID, len(comments))
	for i := range comments {
		ids[i] = comments[i].UserID
	}
	cards, err := a.authors(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]CommentView, len(comments))
	for i, c := range comments {
		out[i] = CommentView{
			ID:        c.ID.Hex(),
			PostID:    c.PostID.Hex(),
			Author:    cards[c.UserID],
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		}
	}
	return out, nil
}
