package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Store groups every repository the actions layer needs.
type Store struct {
	Users         UserRepository
	Posts         PostRepository
	Comments      CommentRepository
	Stories       StoryRepository
	Messages      MessageRepository
	Notifications NotificationRepository
	Verifications VerificationRepository
	Sessions      SessionRepository
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// NewMongoStore builds the MongoDB backed store. Sessions live in PostgreSQL.
func NewMongoStore(client *mongo.Client, db *mongo.Database, pg *gorm.DB) *Store {
	return &Store{
		Users:         NewMongoUserRepository(client, db),
		Posts:         NewMongoPostRepository(db),
		Comments:      NewMongoCommentRepository(db),
		Stories:       NewStoryRepository(db),
		Messages:      NewMongoMessageRepository(db),
		Notifications: NewMongoNotificationRepository(db),
		Verifications: NewMongoVerificationRepository(db),
		Sessions:      NewPostgresSessionRepository(pg),
	}
}

// EnsureIndexes creates the indexes of every repository that declares any.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	repos := map[string]any{
		"users":                 s.Users,
		"posts":                 s.Posts,
		"comments":              s.Comments,
		"stories":               s.Stories,
		"messages":              s.Messages,
		"notifications":         s.Notifications,
		"verification_requests": s.Verifications,
	}
	for name, repo := range repos {
		ix, ok := repo.(indexer)
		if !ok {
			continue
		}
		if err := ix.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return nil
}
