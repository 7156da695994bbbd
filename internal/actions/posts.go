package actions

import (
	"context"
	"strings"

	"github.com/orbtao/connectify/backend/internal/models"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"github.com/orbtao/connectify/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreatePost publishes a post. It needs text or at least one media item;
// files are uploaded and appended after the given URLs.
func (a *Actions) CreatePost(ctx context.Context, callerID string, req models.CreatePostRequest, files []storage.File) (*PostView, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := a.validate(req); err != nil {
		return nil, err
	}
	if req.Content == "" && len(req.Media) == 0 && len(files) == 0 {
		return nil, apperrors.Validation("Post must have content or media")
	}

	media := append([]string{}, req.Media...)
	for i := range files {
		url, err := a.upload(ctx, "posts", &files[i])
		if err != nil {
			return nil, err
		}
		media = append(media, url)
	}

	post := &models.Post{
		UserID:    user.ID,
		Content:   req.Content,
		Media:     media,
		Status:    models.PostActive,
		CreatedAt: a.now(),
	}
	if err := a.store.Posts.CreatePost(ctx, post); err != nil {
		return nil, a.storeErr(err, "")
	}
	a.notifyMentions(ctx, user.ID, post.Content, post.ID, primitive.NilObjectID)
	return a.postView(ctx, post, user.ID)
}

// GetPost returns one post. Hidden posts are visible to the owner and admins only.
func (a *Actions) GetPost(ctx context.Context, callerID, postID string) (*PostView, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	id, err := parseID(postID, "Post not found")
	if err != nil {
		return nil, err
	}
	post, err := a.store.Posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, a.storeErr(err, "Post not found")
	}
	if post.Status == models.PostHidden && post.UserID != user.ID && !user.IsAdmin() {
		return nil, apperrors.NotFound("Post not found")
	}
	return a.postView(ctx, post, user.ID)
}

// ListUserPosts pages through the visible posts of username, newest first.
func (a *Actions) ListUserPosts(ctx context.Context, callerID, username string, page int) ([]PostView, Page, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, Page{}, err
	}
	owner, err := a.userByUsername(ctx, username)
	if err != nil {
		return nil, Page{}, err
	}
	page = normalizePage(page)
	skip, limit := a.window(page)
	posts, err := a.store.Posts.GetPostsByUserID(ctx, owner.ID, skip, limit)
	if err != nil {
		return nil, Page{}, a.storeErr(err, "")
	}
	posts, more := trimPage(posts, a.pageSize)
	views, err := a.postViews(ctx, posts, user.ID)
	if err != nil {
		return nil, Page{}, err
	}
	return views, Page{CurrentPage: page, ItemsPerPage: a.pageSize, HasNextPage: more}, nil
}

// DeletePost removes a post and its comments. Only the owner or an admin may.
func (a *Actions) DeletePost(ctx context.Context, callerID, postID string) error {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return err
	}
	id, err := parseID(postID, "Post not found")
	if err != nil {
		return err
	}
	post, err := a.store.Posts.GetPostByID(ctx, id)
	if err != nil {
		return a.storeErr(err, "Post not found")
	}
	if post.UserID != user.ID && !user.IsAdmin() {
		return apperrors.Forbidden("Not authorized")
	}
	return a.removePost(ctx, post)
}

func (a *Actions) removePost(ctx context.Context, post *models.Post) error {
	if err := a.store.Posts.DeletePost(ctx, post.ID); err != nil {
		return a.storeErr(err, "Post not found")
	}
	if err := a.store.Comments.DeleteCommentsByPostID(ctx, post.ID); err != nil {
		a.log.Warn("orphaned comments left behind", "post", post.ID.Hex(), "error", err)
	}
	a.log.Info("post deleted", "post", post.ID.Hex())
	return nil
}
