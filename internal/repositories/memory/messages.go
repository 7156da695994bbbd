package memory

import (
	"context"
	"slices"

	"github.com/orbtao/connectify/backend/internal/models"
	"github.com/orbtao/connectify/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type messageRepo struct{ db *DB }

func (r *messageRepo) CreateMessage(ctx context.Context, msg *models.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = stamp(msg.CreatedAt)
	msg.Read = false
	m := *msg
	r.db.messages[m.ID] = &m
	return nil
}

func oldestFirst(a, b models.Message) int {
	return -newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
}

func (r *messageRepo) GetConversation(ctx context.Context, a, b primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	r.db.mu.RLock()
	out := []models.Message{}
	for _, m := range r.db.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, *m)
		}
	}
	r.db.mu.RUnlock()

	slices.SortFunc(out, oldestFirst)
	return page(out, skip, limit), nil
}

func (r *messageRepo) MarkConversationRead(ctx context.Context, receiverID, senderID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, m := range r.db.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID {
			m.Read = true
		}
	}
	return nil
}

func (r *messageRepo) GetConversations(ctx context.Context, userID primitive.ObjectID) ([]repositories.ConversationSummary, error) {
	r.db.mu.RLock()
	byPartner := map[primitive.ObjectID]*repositories.ConversationSummary{}
	for _, m := range r.db.messages {
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		partner := m.Partner(userID)
		s, ok := byPartner[partner]
		if !ok {
			s = &repositories.ConversationSummary{PartnerID: partner, LastMessage: *m}
			byPartner[partner] = s
		} else if oldestFirst(s.LastMessage, *m) < 0 {
			s.LastMessage = *m
		}
		if m.ReceiverID == userID && !m.Read {
			s.UnreadCount++
		}
	}
	r.db.mu.RUnlock()

	out := make([]repositories.ConversationSummary, 0, len(byPartner))
	for _, s := range byPartner {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b repositories.ConversationSummary) int {
		return oldestFirst(b.LastMessage, a.LastMessage)
	})
	return out, nil
}

func (r *messageRepo) CountUnread(ctx context.Context, receiverID primitive.ObjectID) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, m := range r.db.messages {
		if m.ReceiverID == receiverID && !m.Read {
			n++
		}
	}
	return n, nil
}
