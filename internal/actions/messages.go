package actions

import (
	"context"
	"strings"

	"github.com/orbtao/connectify/backend/internal/models"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const conversationPageSize = 50

// Relay event names.
const (
	EventMessage = "message"
	EventTyping  = "typing"
)

// TypingPayload is relayed as is to the receiver's room.
type TypingPayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

// SendMessage persists a direct message, then relays it to the receiver.
func (a *Actions) SendMessage(ctx context.Context, callerID string, req models.SendMessageRequest) (*models.Message, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := a.validate(req); err != nil {
		return nil, err
	}
	receiverID, err := parseID(req.ReceiverID, "User not found")
	if err != nil {
		return nil, err
	}
	if receiverID == user.ID {
		return nil, apperrors.Validation("You cannot message yourself")
	}
	if _, err := a.store.Users.GetUserByID(ctx, receiverID); err != nil {
		return nil, a.storeErr(err, "User not found")
	}

	msg := &models.Message{
		SenderID:   user.ID,
		ReceiverID: receiverID,
		Content:    req.Content,
		CreatedAt:  a.now(),
	}
	if err := a.store.Messages.CreateMessage(ctx, msg); err != nil {
		return nil, a.storeErr(err, "")
	}
	a.emit(receiverID, EventMessage, msg)
	return msg, nil
}

// RelayTyping forwards a typing indicator from the caller to the receiver.
// The sender is always the caller.
func (a *Actions) RelayTyping(callerID string, p TypingPayload) {
	receiver, err := primitive.ObjectIDFromHex(p.ReceiverID)
	if err != nil {
		return
	}
	p.SenderID = callerID
	a.emit(receiver, EventTyping, p)
}

// Conversation returns the messages between the caller and other, oldest
// first, and marks those the caller received as read.
func (a *Actions) Conversation(ctx context.Context, callerID, otherID string, page int) ([]models.Message, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	other, err := parseID(otherID, "User not found")
	if err != nil {
		return nil, err
	}
	page = normalizePage(page)
	skip := int64((page - 1) * conversationPageSize)

	messages, err := a.store.Messages.GetConversation(ctx, user.ID, other, skip, conversationPageSize)
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	if err := a.store.Messages.MarkConversationRead(ctx, user.ID, other); err != nil {
		return nil, a.storeErr(err, "")
	}
	for i := range messages {
		if messages[i].ReceiverID == user.ID {
			messages[i].Read = true
		}
	}
	return messages, nil
}

// Conversations lists the caller's conversation partners, most recent first.
func (a *Actions) Conversations(ctx context.Context, callerID string) ([]ConversationView, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	summaries, err := a.store.Messages.GetConversations(ctx, user.ID)
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	ids := make([]primitive.ObjectID, len(summaries))
	for i := range summaries {
		ids[i] = summaries[i].PartnerID
	}
	cards, err := a.authors(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ConversationView, len(summaries))
	for i, s := range summaries {
		out[i] = ConversationView{
			Partner:     cards[s.PartnerID],
			LastMessage: s.LastMessage,
			UnreadCount: s.UnreadCount,
		}
	}
	return out, nil
}

func (a *Actions) UnreadMessageCount(ctx context.Context, callerID string) (int64, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return 0, err
	}
	n, err := a.store.Messages.CountUnread(ctx, user.ID)
	if err != nil {
		return 0, a.storeErr(err, "")
	}
	return n, nil
}
