package repositories

import (
	"context"
	"regexp"
	"time"

	"github.com/orbtao/connectify/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsersByUsernames(ctx context.Context, usernames []string) ([]models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) error
	SetFirebaseUID(ctx context.Context, id primitive.ObjectID, uid string) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.UserStatus) error
	SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) error
	// Follow adds target to follower's following set and follower to target's
	// followers set as one unit. It reports whether the edge is new.
	Follow(ctx context.Context, followerID, targetID primitive.ObjectID) (bool, error)
	Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter, skip, limit int64) ([]models.User, int64, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(client *mongo.Client, db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{client: client, collection: db.Collection("users")}
}

func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "firebase_uid", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return mongoErr(err)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mongoErr(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.findMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) GetUsersByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	if len(usernames) == 0 {
		return []models.User{}, nil
	}
	return r.findMany(ctx, bson.M{"username": bson.M{"$in": usernames}}, options.Find())
}

func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"firebase_uid": uid})
}

func (r *MongoUserRepository) updateByID(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) error {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.Website != nil {
		set["website"] = *update.Website
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}
	return r.updateByID(ctx, id, set)
}

func (r *MongoUserRepository) SetFirebaseUID(ctx context.Context, id primitive.ObjectID, uid string) error {
	return r.updateByID(ctx, id, bson.M{"firebase_uid": uid})
}

func (r *MongoUserRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.UserStatus) error {
	return r.updateByID(ctx, id, bson.M{"status": status})
}

func (r *MongoUserRepository) SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) error {
	return r.updateByID(ctx, id, bson.M{"is_verified": verified})
}

// Follow runs both set additions in one transaction so the graph never ends up
// half written. Requires a replica set deployment.
func (r *MongoUserRepository) Follow(ctx context.Context, followerID, targetID primitive.ObjectID) (bool, error) {
	created, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (bool, error) {
		res, err := r.collection.UpdateOne(sc, bson.M{"_id": followerID}, bson.M{"$addToSet": bson.M{"following": targetID}})
		if err != nil {
			return false, err
		}
		if res.MatchedCount == 0 {
			return false, ErrNotFound
		}
		res2, err := r.collection.UpdateOne(sc, bson.M{"_id": targetID}, bson.M{"$addToSet": bson.M{"followers": followerID}})
		if err != nil {
			return false, err
		}
		if res2.MatchedCount == 0 {
			return false, ErrNotFound
		}
		return res.ModifiedCount > 0, nil
	})
	return created, err
}

func (r *MongoUserRepository) Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	_, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (bool, error) {
		if _, err := r.collection.UpdateOne(sc, bson.M{"_id": followerID}, bson.M{"$pull": bson.M{"following": targetID}}); err != nil {
			return false, err
		}
		if _, err := r.collection.UpdateOne(sc, bson.M{"_id": targetID}, bson.M{"$pull": bson.M{"followers": followerID}}); err != nil {
			return false, err
		}
		return true, nil
	})
	return err
}

func (r *MongoUserRepository) withTransaction(ctx context.Context, fn func(mongo.SessionContext) (bool, error)) (bool, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return false, err
	}
	defer session.EndSession(ctx)

	out, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return fn(sc)
	})
	if err != nil {
		return false, mongoErr(err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// SearchUsers searches for users by username or name
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"status": bson.M{"$ne": models.UserSuspended},
		"$or": bson.A{
			bson.M{"username": pattern},
			bson.M{"name": pattern},
		},
	}
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "username", Value: 1}})
	return r.findMany(ctx, filter, opts)
}

func (r *MongoUserRepository) ListUsers(ctx context.Context, filter models.UserFilter, skip, limit int64) ([]models.User, int64, error) {
	q := bson.M{}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if filter.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"username": pattern},
			bson.M{"name": pattern},
			bson.M{"email": pattern},
		}
	}

	total, err := r.collection.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	users, err := r.findMany(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
