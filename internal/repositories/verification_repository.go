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

type VerificationRepository interface {
	CreateRequest(ctx context.Context, req *models.VerificationRequest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.VerificationRequest, error)
	// GetLatestByUserID returns the user's most recent request.
	GetLatestByUserID(ctx context.Context, userID primitive.ObjectID) (*models.VerificationRequest, error)
	HasPending(ctx context.Context, userID primitive.ObjectID) (bool, error)
	List(ctx context.Context, status models.VerificationStatus, skip, limit int64) ([]models.VerificationRequest, int64, error)
	// Resolve moves a pending request to status. It returns ErrConflict when the
	// request is no longer pending.
	Resolve(ctx context.Context, id primitive.ObjectID, status models.VerificationStatus, reviewer primitive.ObjectID, at time.Time) error
	CountPending(ctx context.Context) (int64, error)
}

type MongoVerificationRepository struct {
	collection *mongo.Collection
}

func NewMongoVerificationRepository(db *mongo.Database) *MongoVerificationRepository {
	return &MongoVerificationRepository{collection: db.Collection("verification_requests")}
}

func (r *MongoVerificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *MongoVerificationRepository) CreateRequest(ctx context.Context, req *models.VerificationRequest) error {
	req.ID = primitive.NewObjectID()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	req.UpdatedAt = req.CreatedAt
	req.Status = models.VerificationPending
	_, err := r.collection.InsertOne(ctx, req)
	return mongoErr(err)
}

func (r *MongoVerificationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.VerificationRequest, error) {
	var req models.VerificationRequest
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, mongoErr(err)
	}
	return &req, nil
}

func (r *MongoVerificationRepository) GetLatestByUserID(ctx context.Context, userID primitive.ObjectID) (*models.VerificationRequest, error) {
	var req models.VerificationRequest
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if err := r.collection.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&req); err != nil {
		return nil, mongoErr(err)
	}
	return &req, nil
}

func (r *MongoVerificationRepository) HasPending(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "status": models.VerificationPending}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoVerificationRepository) List(ctx context.Context, status models.VerificationStatus, skip, limit int64) ([]models.VerificationRequest, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetSkip(skip).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	out := []models.VerificationRequest{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *MongoVerificationRepository) Resolve(ctx context.Context, id primitive.ObjectID, status models.VerificationStatus, reviewer primitive.ObjectID, at time.Time) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.VerificationPending},
		bson.M{"$set": bson.M{
			"status":      status,
			"reviewed_by": reviewer,
			"reviewed_at": at,
			"updated_at":  at,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

func (r *MongoVerificationRepository) CountPending(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": models.VerificationPending})
}
