package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/orbtao/connectify/backend/internal/models"
	"github.com/orbtao/connectify/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepo struct{ db *DB }

func copyUser(u *models.User) *models.User {
	c := *u
	c.Followers = cloneIDs(u.Followers)
	c.Following = cloneIDs(u.Following)
	return &c
}

func (r *userRepo) CreateUser(ctx context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repositories.ErrDuplicate
		}
		if user.FirebaseUID != "" && u.FirebaseUID == user.FirebaseUID {
			return repositories.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = stamp(user.CreatedAt)
	user.UpdatedAt = user.CreatedAt
	user.Followers = cloneIDs(user.Followers)
	user.Following = cloneIDs(user.Following)
	r.db.users[user.ID] = copyUser(user)
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *userRepo) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.db.users[id]; ok {
			out = append(out, *copyUser(u))
		}
	}
	return out, nil
}

func (r *userRepo) findOne(match func(*models.User) bool) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *userRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(func(u *models.User) bool { return u.Username == username })
}

func (r *userRepo) GetUsersByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.User{}
	for _, u := range r.db.users {
		if slices.Contains(usernames, u.Username) {
			out = append(out, *copyUser(u))
		}
	}
	return out, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(func(u *models.User) bool { return u.Email == email })
}

func (r *userRepo) GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return r.findOne(func(u *models.User) bool { return uid != "" && u.FirebaseUID == uid })
}

func (r *userRepo) mutate(id primitive.ObjectID, fn func(*models.User)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) error {
	return r.mutate(id, func(u *models.User) {
		if update.Name != nil {
			u.Name = *update.Name
		}
		if update.Bio != nil {
			u.Bio = *update.Bio
		}
		if update.Location != nil {
			u.Location = *update.Location
		}
		if update.Website != nil {
			u.Website = *update.Website
		}
		if update.Avatar != nil {
			u.Avatar = *update.Avatar
		}
	})
}

func (r *userRepo) SetFirebaseUID(ctx context.Context, id primitive.ObjectID, uid string) error {
	return r.mutate(id, func(u *models.User) { u.FirebaseUID = uid })
}

func (r *userRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status models.UserStatus) error {
	return r.mutate(id, func(u *models.User) { u.Status = status })
}

func (r *userRepo) SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) error {
	return r.mutate(id, func(u *models.User) { u.IsVerified = verified })
}

func (r *userRepo) Follow(ctx context.Context, followerID, targetID primitive.ObjectID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	follower, ok := r.db.users[followerID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	target, ok := r.db.users[targetID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	var added bool
	follower.Following, added = addID(follower.Following, targetID)
	target.Followers, _ = addID(target.Followers, followerID)
	return added, nil
}

func (r *userRepo) Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if follower, ok := r.db.users[followerID]; ok {
		follower.Following = removeID(follower.Following, targetID)
	}
	if target, ok := r.db.users[targetID]; ok {
		target.Followers = removeID(target.Followers, followerID)
	}
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (r *userRepo) SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error) {
	r.db.mu.RLock()
	out := []models.User{}
	for _, u := range r.db.users {
		if u.Status == models.UserSuspended {
			continue
		}
		if containsFold(u.Username, query) || containsFold(u.Name, query) {
			out = append(out, *copyUser(u))
		}
	}
	r.db.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.User) int { return strings.Compare(a.Username, b.Username) })
	return page(out, 0, limit), nil
}

func (r *userRepo) ListUsers(ctx context.Context, filter models.UserFilter, skip, limit int64) ([]models.User, int64, error) {
	r.db.mu.RLock()
	out := []models.User{}
	for _, u := range r.db.users {
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Query != "" && !containsFold(u.Username, filter.Query) && !containsFold(u.Name, filter.Query) && !containsFold(u.Email, filter.Query) {
			continue
		}
		out = append(out, *copyUser(u))
	}
	r.db.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.User) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return page(out, skip, limit), int64(len(out)), nil
}
