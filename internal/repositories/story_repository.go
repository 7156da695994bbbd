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

// StoryRepository defines the interface for story operations
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	GetActiveStories(ctx context.Context, now time.Time) ([]models.Story, error)
	AddViewer(ctx context.Context, storyID, userID primitive.ObjectID) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.StoryStatus) error
	ListStories(ctx context.Context, status models.StoryStatus, skip, limit int64) ([]models.Story, int64, error)
	CountActiveStories(ctx context.Context, now time.Time) (int64, error)
	DeleteExpiredStories(ctx context.Context, now time.Time) (int64, error)
}

type storyRepository struct {
	collection *mongo.Collection
}

func NewStoryRepository(db *mongo.Database) *storyRepository {
	return &storyRepository{collection: db.Collection("stories")}
}

func (r *storyRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *storyRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now()
	}
	if story.ExpiresAt.IsZero() {
		story.ExpiresAt = story.CreatedAt.Add(models.StoryLifetime)
	}
	if story.Status == "" {
		story.Status = models.StoryActive
	}
	story.Viewers = []primitive.ObjectID{}
	_, err := r.collection.InsertOne(ctx, story)
	return mongoErr(err)
}

func (r *storyRepository) GetStoryByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	var story models.Story
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&story); err != nil {
		return nil, mongoErr(err)
	}
	return &story, nil
}

func activeFilter(now time.Time) bson.M {
	return bson.M{
		"expires_at": bson.M{"$gt": now},
		"status":     bson.M{"$ne": models.StoryExpired},
	}
}

func (r *storyRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Story, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stories := []models.Story{}
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *storyRepository) GetActiveStories(ctx context.Context, now time.Time) ([]models.Story, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, activeFilter(now), opts)
}

func (r *storyRepository) AddViewer(ctx context.Context, storyID, userID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": storyID}, bson.M{"$addToSet": bson.M{"viewers": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *storyRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.StoryStatus) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *storyRepository) ListStories(ctx context.Context, status models.StoryStatus, skip, limit int64) ([]models.Story, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	stories, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return stories, total, nil
}

func (r *storyRepository) CountActiveStories(ctx context.Context, now time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, activeFilter(now))
}

// DeleteExpiredStories physically removes stories past their expiry. Reads
// never depend on it.
func (r *storyRepository) DeleteExpiredStories(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
