// Package memory is an in-process implementation of the repositories used for
// local development (STORE_DRIVER=memory) and tests.
package memory

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/orbtao/connectify/backend/internal/models"
	"github.com/orbtao/connectify/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DB holds every collection behind a single lock, so multi-document updates
// such as follow are atomic.
type DB struct {
	mu sync.RWMutex

	users         map[primitive.ObjectID]*models.User
	posts         map[primitive.ObjectID]*models.Post
	comments      map[primitive.ObjectID]*models.Comment
	stories       map[primitive.ObjectID]*models.Story
	messages      map[primitive.ObjectID]*models.Message
	notifications map[primitive.ObjectID]*models.Notification
	verifications map[primitive.ObjectID]*models.VerificationRequest
	sessions      map[string]*models.Session
}

func New() *DB {
	return &DB{
		users:         map[primitive.ObjectID]*models.User{},
		posts:         map[primitive.ObjectID]*models.Post{},
		comments:      map[primitive.ObjectID]*models.Comment{},
		stories:       map[primitive.ObjectID]*models.Story{},
		messages:      map[primitive.ObjectID]*models.Message{},
		notifications: map[primitive.ObjectID]*models.Notification{},
		verifications: map[primitive.ObjectID]*models.VerificationRequest{},
		sessions:      map[string]*models.Session{},
	}
}

// NewStore returns a repositories.Store backed by a fresh DB.
func NewStore() *repositories.Store {
	return New().Store()
}

func (db *DB) Store() *repositories.Store {
	return &repositories.Store{
		Users:         &userRepo{db},
		Posts:         &postRepo{db},
		Comments:      &commentRepo{db},
		Stories:       &storyRepo{db},
		Messages:      &messageRepo{db},
		Notifications: &notificationRepo{db},
		Verifications: &verificationRepo{db},
		Sessions:      &sessionRepo{db},
	}
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return slices.Clone(ids)
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) ([]primitive.ObjectID, bool) {
	if slices.Contains(ids, id) {
		return ids, false
	}
	return append(ids, id), true
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	return slices.DeleteFunc(ids, func(x primitive.ObjectID) bool { return x == id })
}

// page applies skip and limit to an already sorted slice.
func page[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}

// newestFirst orders by time descending, then by id, which grows with insertion.
func newestFirst(a, b time.Time, ida, idb primitive.ObjectID) int {
	if c := b.Compare(a); c != 0 {
		return c
	}
	return strings.Compare(idb.Hex(), ida.Hex())
}
