package repositories

import (
	"context"
	"time"

	"github.com/orbtao/connectify/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetPostsByUserID(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, error)
	GetFeed(ctx context.Context, q models.FeedQuery, skip, limit int64) ([]models.Post, error)
	ListPosts(ctx context.Context, status models.PostStatus, skip, limit int64) ([]models.Post, int64, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	// AddLike is a set-add; it reports whether the like is new.
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error
	AppendComment(ctx context.Context, postID, commentID primitive.ObjectID) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.PostStatus) error
	CountPosts(ctx context.Context) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.UpdatedAt = post.CreatedAt
	if post.Status == "" {
		post.Status = models.PostActive
	}
	if post.Media == nil {
		post.Media = []string{}
	}
	post.Likes = []primitive.ObjectID{}
	post.Comments = []primitive.ObjectID{}
	_, err := r.collection.InsertOne(ctx, post)
	return mongoErr(err)
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, mongoErr(err)
	}
	return &post, nil
}

func (r *MongoPostRepository) find(ctx context.Context, filter interface{}, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPostsByUserID retrieves posts by a specific user from MongoDB
func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, bson.M{"user_id": userID, "status": bson.M{"$ne": models.PostHidden}}, skip, limit)
}

// GetFeed returns the newest-first union of recent posts and posts by q.Authors.
func (r *MongoPostRepository) GetFeed(ctx context.Context, q models.FeedQuery, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, FeedFilter(q), skip, limit)
}

// FeedFilter translates a feed query into the Mongo filter evaluated by GetFeed.
func FeedFilter(q models.FeedQuery) bson.M {
	return bson.M{
		"status": bson.M{"$ne": models.PostHidden},
		"$or": bson.A{
			bson.M{"created_at": bson.M{"$gt": q.Since}},
			bson.M{"user_id": bson.M{"$in": q.Authors}},
		},
	}
}

func (r *MongoPostRepository) ListPosts(ctx context.Context, status models.PostStatus, skip, limit int64) ([]models.Post, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	posts, err := r.find(ctx, filter, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPostRepository) update(ctx context.Context, id primitive.ObjectID, update bson.M) (*mongo.UpdateResult, error) {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return res, nil
}

func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	res, err := r.update(ctx, postID, bson.M{"$addToSet": bson.M{"likes": userID}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	_, err := r.update(ctx, postID, bson.M{"$pull": bson.M{"likes": userID}})
	return err
}

func (r *MongoPostRepository) AppendComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	_, err := r.update(ctx, postID, bson.M{"$push": bson.M{"comments": commentID}})
	return err
}

func (r *MongoPostRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.PostStatus) error {
	_, err := r.update(ctx, id, bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}})
	return err
}

func (r *MongoPostRepository) CountPosts(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
