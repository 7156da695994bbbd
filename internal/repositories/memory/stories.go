package memory

import (
	"context"
	"slices"
	"time"

	"github.com/orbtao/connectify/backend/internal/models"
	"github.com/orbtao/connectify/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type storyRepo struct{ db *DB }

func copyStory(s *models.Story) *models.Story {
	c := *s
	c.Viewers = cloneIDs(s.Viewers)
	return &c
}

func (r *storyRepo) CreateStory(ctx context.Context, story *models.Story) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	story.ID = primitive.NewObjectID()
	story.CreatedAt = stamp(story.CreatedAt)
	if story.ExpiresAt.IsZero() {
		story.ExpiresAt = story.CreatedAt.Add(models.StoryLifetime)
	}
	if story.Status == "" {
		story.Status = models.StoryActive
	}
	story.Viewers = []primitive.ObjectID{}
	r.db.stories[story.ID] = copyStory(story)
	return nil
}

func (r *storyRepo) GetStoryByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	s, ok := r.db.stories[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyStory(s), nil
}

func (r *storyRepo) filter(match func(*models.Story) bool) []models.Story {
	r.db.mu.RLock()
	out := []models.Story{}
	for _, s := range r.db.stories {
		if match(s) {
			out = append(out, *copyStory(s))
		}
	}
	r.db.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.Story) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return out
}

func (r *storyRepo) GetActiveStories(ctx context.Context, now time.Time) ([]models.Story, error) {
	return r.filter(func(s *models.Story) bool { return s.ActiveAt(now) }), nil
}

func (r *storyRepo) mutate(id primitive.ObjectID, fn func(*models.Story)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.stories[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(s)
	return nil
}

func (r *storyRepo) AddViewer(ctx context.Context, storyID, userID primitive.ObjectID) error {
	return r.mutate(storyID, func(s *models.Story) { s.Viewers, _ = addID(s.Viewers, userID) })
}

func (r *storyRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status models.StoryStatus) error {
	return r.mutate(id, func(s *models.Story) { s.Status = status })
}

func (r *storyRepo) ListStories(ctx context.Context, status models.StoryStatus, skip, limit int64) ([]models.Story, int64, error) {
	out := r.filter(func(s *models.Story) bool { return status == "" || s.Status == status })
	return page(out, skip, limit), int64(len(out)), nil
}

func (r *storyRepo) CountActiveStories(ctx context.Context, now time.Time) (int64, error) {
	return int64(len(r.filter(func(s *models.Story) bool { return s.ActiveAt(now) }))), nil
}

func (r *storyRepo) DeleteExpiredStories(ctx context.Context, now time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, s := range r.db.stories {
		if !now.Before(s.ExpiresAt) {
			delete(r.db.stories, id)
			n++
		}
	}
	return n, nil
}
