package actions

import (
	"context"
	"slices"
	"strings"

	"github.com/orbtao/connectify/backend/internal/models"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"github.com/orbtao/connectify/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateStory posts a story from a media URL or an uploaded file. It expires
// a fixed lifetime after creation.
func (a *Actions) CreateStory(ctx context.Context, callerID string, req models.CreateStoryRequest, file *storage.File) (*StoryView, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	req.Media = strings.TrimSpace(req.Media)
	if err := a.validate(req); err != nil {
		return nil, err
	}

	media := req.Media
	if file != nil {
		if media, err = a.upload(ctx, "stories", file); err != nil {
			return nil, err
		}
	}
	if media == "" {
		return nil, apperrors.Validation("Story must have media")
	}

	now := a.now()
	story := &models.Story{
		UserID:    user.ID,
		Media:     media,
		Status:    models.StoryActive,
		CreatedAt: now,
		ExpiresAt: now.Add(models.StoryLifetime),
	}
	if err := a.store.Stories.CreateStory(ctx, story); err != nil {
		return nil, a.storeErr(err, "")
	}
	v := toStoryView(story, user.ID)
	return &v, nil
}

func toStoryView(s *models.Story, viewer primitive.ObjectID) StoryView {
	return StoryView{
		ID:           s.ID.Hex(),
		Media:        s.Media,
		Seen:         s.SeenBy(viewer),
		ViewersCount: len(s.Viewers),
		CreatedAt:    s.CreatedAt,
		ExpiresAt:    s.ExpiresAt,
	}
}

// ActiveStories groups every active story by author. The caller's own group
// comes first, then groups with unseen stories, then the rest; ties go to the
// group with the most recent story.
func (a *Actions) ActiveStories(ctx context.Context, callerID string) ([]StoryGroup, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	stories, err := a.store.Stories.GetActiveStories(ctx, a.now())
	if err != nil {
		return nil, a.storeErr(err, "")
	}

	// stories arrive newest first, so group order is by latest story
	var order []primitive.ObjectID
	groups := map[primitive.ObjectID]*StoryGroup{}
	for i := range stories {
		s := &stories[i]
		g, ok := groups[s.UserID]
		if !ok {
			g = &StoryGroup{Stories: []StoryView{}}
			groups[s.UserID] = g
			order = append(order, s.UserID)
		}
		v := toStoryView(s, user.ID)
		g.Stories = append(g.Stories, v)
		if !v.Seen {
			g.HasUnseen = true
		}
	}

	cards, err := a.authors(ctx, order)
	if err != nil {
		return nil, err
	}

	rank := func(id primitive.ObjectID) int {
		switch {
		case id == user.ID:
			return 0
		case groups[id].HasUnseen:
			return 1
		default:
			return 2
		}
	}
	slices.SortStableFunc(order, func(x, y primitive.ObjectID) int { return rank(x) - rank(y) })

	out := make([]StoryGroup, 0, len(order))
	for _, id := range order {
		g := groups[id]
		g.User = cards[id]
		slices.Reverse(g.Stories)
		out = append(out, *g)
	}
	return out, nil
}

// ViewStory records the caller as a viewer of an active story.
func (a *Actions) ViewStory(ctx context.Context, callerID, storyID string) error {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return err
	}
	id, err := parseID(storyID, "Story not found")
	if err != nil {
		return err
	}
	story, err := a.store.Stories.GetStoryByID(ctx, id)
	if err != nil {
		return a.storeErr(err, "Story not found")
	}
	if !story.ActiveAt(a.now()) {
		return apperrors.NotFound("Story not found")
	}
	return a.storeErr(a.store.Stories.AddViewer(ctx, story.ID, user.ID), "Story not found")
}

// SweepExpiredStories deletes stories past their expiry and reports how many.
func (a *Actions) SweepExpiredStories(ctx context.Context) (int64, error) {
	n, err := a.store.Stories.DeleteExpiredStories(ctx, a.now())
	if err != nil {
		return 0, a.storeErr(err, "")
	}
	return n, nil
}
