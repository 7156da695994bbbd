package memory

import (
	"context"
	"slices"
	"time"

	"github.com/orbtao/connectify/backend/internal/models"
	"github.com/orbtao/connectify/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type postRepo struct{ db *DB }

func copyPost(p *models.Post) *models.Post {
	c := *p
	c.Media = slices.Clone(p.Media)
	if c.Media == nil {
		c.Media = []string{}
	}
	c.Likes = cloneIDs(p.Likes)
	c.Comments = cloneIDs(p.Comments)
	return &c
}

func (r *postRepo) CreatePost(ctx context.Context, post *models.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = stamp(post.CreatedAt)
	post.UpdatedAt = post.CreatedAt
	if post.Status == "" {
		post.Status = models.PostActive
	}
	post.Likes = []primitive.ObjectID{}
	post.Comments = []primitive.ObjectID{}
	r.db.posts[post.ID] = copyPost(post)
	return nil
}

func (r *postRepo) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyPost(p), nil
}

func (r *postRepo) filter(match func(*models.Post) bool) []models.Post {
	r.db.mu.RLock()
	out := []models.Post{}
	for _, p := range r.db.posts {
		if match(p) {
			out = append(out, *copyPost(p))
		}
	}
	r.db.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.Post) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return out
}

func (r *postRepo) GetPostsByUserID(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	out := r.filter(func(p *models.Post) bool { return p.UserID == userID && p.Status != models.PostHidden })
	return page(out, skip, limit), nil
}

func (r *postRepo) GetFeed(ctx context.Context, q models.FeedQuery, skip, limit int64) ([]models.Post, error) {
	return page(r.filter(q.Matches), skip, limit), nil
}

func (r *postRepo) ListPosts(ctx context.Context, status models.PostStatus, skip, limit int64) ([]models.Post, int64, error) {
	out := r.filter(func(p *models.Post) bool { return status == "" || p.Status == status })
	return page(out, skip, limit), int64(len(out)), nil
}

func (r *postRepo) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.db.posts, id)
	return nil
}

func (r *postRepo) mutate(id primitive.ObjectID, fn func(*models.Post)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(p)
	return nil
}

func (r *postRepo) AddLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	var added bool
	err := r.mutate(postID, func(p *models.Post) { p.Likes, added = addID(p.Likes, userID) })
	return added, err
}

func (r *postRepo) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return r.mutate(postID, func(p *models.Post) { p.Likes = removeID(p.Likes, userID) })
}

func (r *postRepo) AppendComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	return r.mutate(postID, func(p *models.Post) { p.Comments = append(p.Comments, commentID) })
}

func (r *postRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status models.PostStatus) error {
	return r.mutate(id, func(p *models.Post) {
		p.Status = status
		p.UpdatedAt = time.Now()
	})
}

func (r *postRepo) CountPosts(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.posts)), nil
}

type commentRepo struct{ db *DB }

func (r *commentRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = stamp(comment.CreatedAt)
	c := *comment
	r.db.comments[c.ID] = &c
	return nil
}

func (r *commentRepo) GetCommentsByPostID(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	r.db.mu.RLock()
	out := []models.Comment{}
	for _, c := range r.db.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	r.db.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.Comment) int { return -newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return out, nil
}

func (r *commentRepo) DeleteCommentsByPostID(ctx context.Context, postID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, c := range r.db.comments {
		if c.PostID == postID {
			delete(r.db.comments, id)
		}
	}
	return nil
}
