package actions

import (
	"context"
	"strings"

	"github.com/orbtao/connectify/backend/internal/models"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetPostStatus moves a post to any moderation state. Last write wins.
func (a *Actions) SetPostStatus(ctx context.Context, callerID, postID, status string) error {
	admin, err := a.requireAdmin(ctx, callerID)
	if err != nil {
		return err
	}
	st := models.PostStatus(status)
	if !st.Valid() {
		return apperrors.Validation("Invalid status")
	}
	id, err := parseID(postID, "Post not found")
	if err != nil {
		return err
	}
	if err := a.store.Posts.SetStatus(ctx, id, st); err != nil {
		return a.storeErr(err, "Post not found")
	}
	a.log.Info("post status changed", "post", postID, "status", st, "admin", admin.ID.Hex())
	return nil
}

func (a *Actions) SetStoryStatus(ctx context.Context, callerID, storyID, status string) error {
	admin, err := a.requireAdmin(ctx, callerID)
	if err != nil {
		return err
	}
	st := models.StoryStatus(status)
	if !st.Valid() {
		return apperrors.Validation("Invalid status")
	}
	id, err := parseID(storyID, "Story not found")
	if err != nil {
		return err
	}
	if err := a.store.Stories.SetStatus(ctx, id, st); err != nil {
		return a.storeErr(err, "Story not found")
	}
	a.log.Info("story status changed", "story", storyID, "status", st, "admin", admin.ID.Hex())
	return nil
}

// SetUserStatus changes an account's moderation state. Suspending revokes the
// account's sessions.
func (a *Actions) SetUserStatus(ctx context.Context, callerID, userID, status string) error {
	admin, err := a.requireAdmin(ctx, callerID)
	if err != nil {
		return err
	}
	st := models.UserStatus(status)
	if !st.Valid() {
		return apperrors.Validation("Invalid status")
	}
	id, err := parseID(userID, "User not found")
	if err != nil {
		return err
	}
	if id == admin.ID {
		return apperrors.Validation("You cannot change your own status")
	}
	if err := a.store.Users.SetStatus(ctx, id, st); err != nil {
		return a.storeErr(err, "User not found")
	}
	if st == models.UserSuspended {
		if err := a.store.Sessions.RevokeUserSessions(ctx, id.Hex(), a.now()); err != nil {
			a.log.Warn("sessions not revoked", "user", id.Hex(), "error", err)
		}
	}
	a.log.Info("user status changed", "user", userID, "status", st, "admin", admin.ID.Hex())
	return nil
}

type AdminPostList struct {
	Posts []PostView `json:"posts"`
	Total int64      `json:"total"`
	Page
}

func (a *Actions) AdminListPosts(ctx context.Context, callerID, status string, page int) (*AdminPostList, error) {
	admin, err := a.requireAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}
	st := models.PostStatus(status)
	if st != "" && !st.Valid() {
		return nil, apperrors.Validation("Invalid status")
	}
	page = normalizePage(page)
	skip, limit := a.window(page)
	posts, total, err := a.store.Posts.ListPosts(ctx, st, skip, limit)
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	posts, more := trimPage(posts, a.pageSize)
	views, err := a.postViews(ctx, posts, admin.ID)
	if err != nil {
		return nil, err
	}
	return &AdminPostList{Posts: views, Total: total, Page: Page{CurrentPage: page, ItemsPerPage: a.pageSize, HasNextPage: more}}, nil
}

// AdminStoryView is a story with its author and moderation fields.
type AdminStoryView struct {
	models.Story
	Author       models.UserCompact `json:"author"`
	ViewersCount int                `json:"viewersCount"`
	IsExpired    bool               `json:"isExpired"`
}

type AdminStoryList struct {
	Stories []AdminStoryView `json:"stories"`
	Total   int64            `json:"total"`
	Page
}

func (a *Actions) AdminListStories(ctx context.Context, callerID, status string, page int) (*AdminStoryList, error) {
	if _, err := a.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	st := models.StoryStatus(status)
	if st != "" && !st.Valid() {
		return nil, apperrors.Validation("Invalid status")
	}
	page = normalizePage(page)
	skip, limit := a.window(page)
	stories, total, err := a.store.Stories.ListStories(ctx, st, skip, limit)
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	stories, more := trimPage(stories, a.pageSize)

	ids := make([]primitive.ObjectID, len(stories))
	for i := range stories {
		ids[i] = stories[i].UserID
	}
	cards, err := a.authors(ctx, ids)
	if err != nil {
		return nil, err
	}
	now := a.now()
	out := make([]AdminStoryView, len(stories))
	for i := range stories {
		out[i] = AdminStoryView{
			Story:        stories[i],
			Author:       cards[stories[i].UserID],
			ViewersCount: len(stories[i].Viewers),
			IsExpired:    !stories[i].ActiveAt(now),
		}
	}
	return &AdminStoryList{Stories: out, Total: total, Page: Page{CurrentPage: page, ItemsPerPage: a.pageSize, HasNextPage: more}}, nil
}

type AdminUserList struct {
	Users []ProfileView `json:"users"`
	Total int64         `json:"total"`
	Page
}

func (a *Actions) AdminListUsers(ctx context.Context, callerID, status, query string, page int) (*AdminUserList, error) {
	admin, err := a.requireAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}
	st := models.UserStatus(status)
	if st != "" && !st.Valid() {
		return nil, apperrors.Validation("Invalid status")
	}
	page = normalizePage(page)
	skip, limit := a.window(page)
	users, total, err := a.store.Users.ListUsers(ctx, models.UserFilter{Status: st, Query: strings.TrimSpace(query)}, skip, limit)
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	users, more := trimPage(users, a.pageSize)
	out := make([]ProfileView, len(users))
	for i := range users {
		out[i] = *profileView(&users[i], admin)
	}
	return &AdminUserList{Users: out, Total: total, Page: Page{CurrentPage: page, ItemsPerPage: a.pageSize, HasNextPage: more}}, nil
}

// AdminDeletePost removes any post and its comments.
func (a *Actions) AdminDeletePost(ctx context.Context, callerID, postID string) error {
	admin, err := a.requireAdmin(ctx, callerID)
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
	a.log.Info("admin deleting post", "post", postID, "admin", admin.ID.Hex())
	return a.removePost(ctx, post)
}

// Broadcast publishes an administrator announcement. Unlike other
// notifications a storage failure is returned to the caller.
func (a *Actions) Broadcast(ctx context.Context, callerID string, req models.BroadcastRequest) (*models.Notification, error) {
	admin, err := a.requireAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := a.validate(req); err != nil {
		return nil, err
	}
	n := &models.Notification{
		Type:      models.NotificationAdmin,
		ActorID:   admin.ID,
		Message:   req.Message,
		CreatedAt: a.now(),
	}
	if err := a.store.Notifications.CreateNotification(ctx, n); err != nil {
		return nil, a.storeErr(err, "")
	}
	return n, nil
}

type Stats struct {
	Users                int64 `json:"users"`
	Posts                int64 `json:"posts"`
	ActiveStories        int64 `json:"activeStories"`
	PendingVerifications int64 `json:"pendingVerifications"`
}

func (a *Actions) Stats(ctx context.Context, callerID string) (*Stats, error) {
	if _, err := a.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	var s Stats
	var err error
	if _, s.Users, err = a.store.Users.ListUsers(ctx, models.UserFilter{}, 0, 1); err != nil {
		return nil, a.storeErr(err, "")
	}
	if s.Posts, err = a.store.Posts.CountPosts(ctx); err != nil {
		return nil, a.storeErr(err, "")
	}
	if s.ActiveStories, err = a.store.Stories.CountActiveStories(ctx, a.now()); err != nil {
		return nil, a.storeErr(err, "")
	}
	if s.PendingVerifications, err = a.store.Verifications.CountPending(ctx); err != nil {
		return nil, a.storeErr(err, "")
	}
	return &s, nil
}
