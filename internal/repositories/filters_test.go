package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/orbtao/connectify/backend/internal/models"
)

func TestFeedFilter(t *testing.T) {
	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	viewer := primitive.NewObjectID()
	followed := primitive.NewObjectID()

	tests := []struct {
		name    string
		query   models.FeedQuery
		authors []primitive.ObjectID
	}{
		{
			name:    "viewer only",
			query:   models.FeedQuery{Since: since, Authors: []primitive.ObjectID{viewer}},
			authors: []primitive.ObjectID{viewer},
		},
		{
			name:    "viewer and followed",
			query:   models.FeedQuery{Since: since, Authors: []primitive.ObjectID{viewer, followed}},
			authors: []primitive.ObjectID{viewer, followed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := FeedFilter(tt.query)

			assert.Equal(t, bson.M{"$ne": models.PostHidden}, filter["status"])
			assert.Equal(t, bson.A{
				bson.M{"created_at": bson.M{"$gt": since}},
				bson.M{"user_id": bson.M{"$in": tt.authors}},
			}, filter["$or"])
			assert.Len(t, filter, 2)
		})
	}
}

func TestActiveStoryFilter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	filter := activeFilter(now)

	// a story expiring exactly at now is no longer active
	assert.Equal(t, bson.M{"$gt": now}, filter["expires_at"])
	assert.Equal(t, bson.M{"$ne": models.StoryExpired}, filter["status"])
	assert.Len(t, filter, 2)
}

func TestConversationsPipeline(t *testing.T) {
	user := primitive.NewObjectID()

	pipeline := conversationsPipeline(user)
	require.Len(t, pipeline, 4)

	stages := make([]string, len(pipeline))
	for i, stage := range pipeline {
		require.Len(t, stage, 1)
		stages[i] = stage[0].Key
	}
	assert.Equal(t, []string{"$match", "$sort", "$group", "$sort"}, stages)

	assert.Equal(t, bson.M{"$or": bson.A{
		bson.M{"sender_id": user},
		bson.M{"receiver_id": user},
	}}, pipeline[0][0].Value)
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, pipeline[1][0].Value)

	group, ok := pipeline[2][0].Value.(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$sender_id", user}}, "$receiver_id", "$sender_id",
	}}, group["_id"])
	assert.Equal(t, bson.M{"$first": "$$ROOT"}, group["last_message"])
	assert.Equal(t, bson.M{"$sum": bson.M{"$cond": bson.A{
		bson.M{"$and": bson.A{
			bson.M{"$eq": bson.A{"$receiver_id", user}},
			bson.M{"$eq": bson.A{"$read", false}},
		}}, 1, 0,
	}}}, group["unread_count"])

	assert.Equal(t, bson.D{{Key: "last_message.created_at", Value: -1}}, pipeline[3][0].Value)
}
