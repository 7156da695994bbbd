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

// ConversationSummary is the latest message exchanged with one partner.
type ConversationSummary struct {
	PartnerID   primitive.ObjectID `bson:"_id"`
	LastMessage models.Message     `bson:"last_message"`
	UnreadCount int64              `bson:"unread_count"`
}

type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	// GetConversation returns messages between a and b in either direction, oldest first.
	GetConversation(ctx context.Context, a, b primitive.ObjectID, skip, limit int64) ([]models.Message, error)
	// MarkConversationRead marks every message from sender to receiver as read.
	MarkConversationRead(ctx context.Context, receiverID, senderID primitive.ObjectID) error
	GetConversations(ctx context.Context, userID primitive.ObjectID) ([]ConversationSummary, error)
	CountUnread(ctx context.Context, receiverID primitive.ObjectID) (int64, error)
}

type MongoMessageRepository struct {
	collection *mongo.Collection
}

func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

func (r *MongoMessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "read", Value: 1}}},
	})
	return err
}

func (r *MongoMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	msg.ID = primitive.NewObjectID()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.Read = false
	_, err := r.collection.InsertOne(ctx, msg)
	return mongoErr(err)
}

func between(a, b primitive.ObjectID) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender_id": a, "receiver_id": b},
		bson.M{"sender_id": b, "receiver_id": a},
	}}
}

func (r *MongoMessageRepository) GetConversation(ctx context.Context, a, b primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).SetSkip(skip).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, between(a, b), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MongoMessageRepository) MarkConversationRead(ctx context.Context, receiverID, senderID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"sender_id": senderID, "receiver_id": receiverID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}

// conversationsPipeline groups userID's messages by partner, keeping the latest
// message and the count of unread messages addressed to userID.
func conversationsPipeline(userID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"sender_id": userID},
			bson.M{"receiver_id": userID},
		}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$sender_id", userID}}, "$receiver_id", "$sender_id",
			}},
			"last_message": bson.M{"$first": "$$ROOT"},
			"unread_count": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$receiver_id", userID}},
					bson.M{"$eq": bson.A{"$read", false}},
				}}, 1, 0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_message.created_at", Value: -1}}}},
	}
}

// GetConversations groups the user's messages by partner, newest conversation first.
func (r *MongoMessageRepository) GetConversations(ctx context.Context, userID primitive.ObjectID) ([]ConversationSummary, error) {
	cursor, err := r.collection.Aggregate(ctx, conversationsPipeline(userID))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []ConversationSummary{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoMessageRepository) CountUnread(ctx context.Context, receiverID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"receiver_id": receiverID, "read": false})
}
