package actions

import (
	"context"
	"strings"

	"github.com/orbtao/connectify/backend/internal/models"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"github.com/orbtao/connectify/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxSearchResults = 20

// Me returns the caller's own profile.
func (a *Actions) Me(ctx context.Context, callerID string) (*ProfileView, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return profileView(user, user), nil
}

func (a *Actions) userByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := a.store.Users.GetUserByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, a.storeErr(err, "User not found")
	}
	return user, nil
}

// GetProfile returns the public profile of username as seen by the caller.
func (a *Actions) GetProfile(ctx context.Context, callerID, username string) (*ProfileView, error) {
	viewer, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	user, err := a.userByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.IsSuspended() && !viewer.IsAdmin() && viewer.ID != user.ID {
		return nil, apperrors.NotFound("User not found")
	}
	return profileView(user, viewer), nil
}

// UpdateProfile changes the caller's profile fields. A non-nil avatar file is
// uploaded and replaces the avatar URL.
func (a *Actions) UpdateProfile(ctx context.Context, callerID string, req models.UpdateProfileRequest, avatar *storage.File) (*ProfileView, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if err := a.validate(req); err != nil {
		return nil, err
	}

	update := models.ProfileUpdate{
		Name:     trimmed(req.Name),
		Bio:      trimmed(req.Bio),
		Location: trimmed(req.Location),
		Website:  trimmed(req.Website),
		Avatar:   trimmed(req.Avatar),
	}
	if avatar != nil {
		url, err := a.upload(ctx, "avatars", avatar)
		if err != nil {
			return nil, err
		}
		update.Avatar = &url
	}

	if err := a.store.Users.UpdateProfile(ctx, user.ID, update); err != nil {
		return nil, a.storeErr(err, "User not found")
	}
	return a.Me(ctx, callerID)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// SearchUsers matches query against usernames and display names.
func (a *Actions) SearchUsers(ctx context.Context, callerID, query string, limit int) ([]models.UserCompact, error) {
	if _, err := a.requireUser(ctx, callerID); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.UserCompact{}, nil
	}
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	users, err := a.store.Users.SearchUsers(ctx, query, int64(limit))
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	return compacts(users), nil
}

func compacts(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}

func (a *Actions) relations(ctx context.Context, callerID, username string, pick func(*models.User) []primitive.ObjectID) ([]models.UserCompact, error) {
	if _, err := a.requireUser(ctx, callerID); err != nil {
		return nil, err
	}
	user, err := a.userByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	users, err := a.store.Users.GetUsersByIDs(ctx, pick(user))
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	return compacts(users), nil
}

func (a *Actions) Followers(ctx context.Context, callerID, username string) ([]models.UserCompact, error) {
	return a.relations(ctx, callerID, username, func(u *models.User) []primitive.ObjectID { return u.Followers })
}

func (a *Actions) Following(ctx context.Context, callerID, username string) ([]models.UserCompact, error) {
	return a.relations(ctx, callerID, username, func(u *models.User) []primitive.ObjectID { return u.Following })
}
