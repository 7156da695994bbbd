package actions

import (
	"context"

	"github.com/orbtao/connectify/backend/internal/models"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowResult reports the relation after a follow or unfollow.
type FollowResult struct {
	IsFollowing    bool `json:"isFollowing"`
	FollowersCount int  `json:"followersCount"`
}

func (a *Actions) followTarget(ctx context.Context, callerID, targetID string) (*models.User, primitive.ObjectID, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	id, err := parseID(targetID, "User not found")
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	if id == user.ID {
		return nil, primitive.NilObjectID, apperrors.Validation("You cannot follow yourself")
	}
	return user, id, nil
}

// Follow adds the caller to target's followers. Following twice is a no-op;
// only the first follow notifies the target.
func (a *Actions) Follow(ctx context.Context, callerID, targetID string) (*FollowResult, error) {
	user, id, err := a.followTarget(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}
	created, err := a.store.Users.Follow(ctx, user.ID, id)
	if err != nil {
		return nil, a.storeErr(err, "User not found")
	}
	if created {
		a.notify(ctx, models.Notification{UserID: id, Type: models.NotificationFollow, ActorID: user.ID})
	}
	return a.followResult(ctx, id, true)
}

func (a *Actions) Unfollow(ctx context.Context, callerID, targetID string) (*FollowResult, error) {
	user, id, err := a.followTarget(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}
	if _, err := a.store.Users.GetUserByID(ctx, id); err != nil {
		return nil, a.storeErr(err, "User not found")
	}
	if err := a.store.Users.Unfollow(ctx, user.ID, id); err != nil {
		return nil, a.storeErr(err, "User not found")
	}
	return a.followResult(ctx, id, false)
}

func (a *Actions) followResult(ctx context.Context, targetID primitive.ObjectID, following bool) (*FollowResult, error) {
	target, err := a.store.Users.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, a.storeErr(err, "User not found")
	}
	return &FollowResult{IsFollowing: following, FollowersCount: len(target.Followers)}, nil
}
