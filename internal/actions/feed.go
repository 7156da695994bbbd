package actions

import (
	"context"

	"github.com/orbtao/connectify/backend/internal/models"
)

// Feed returns one page of the caller's home feed: every post younger than the
// feed window plus everything by the caller and the accounts it follows,
// newest first. Hidden posts never appear.
func (a *Actions) Feed(ctx context.Context, callerID string, page int) ([]PostView, Page, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, Page{}, err
	}
	page = normalizePage(page)
	skip, limit := a.window(page)

	posts, err := a.store.Posts.GetFeed(ctx, models.NewFeedQuery(user, a.now()), skip, limit)
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
