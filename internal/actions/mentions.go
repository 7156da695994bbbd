package actions

import (
	"context"
	"regexp"
	"strings"

	"github.com/orbtao/connectify/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var mentionPattern = regexp.MustCompile(`(?:^|[^\w@])@([A-Za-z0-9_.]{3,30})`)

// ParseMentions returns the distinct lower-cased usernames mentioned in text,
// in order of first appearance.
func ParseMentions(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimRight(strings.ToLower(m[1]), ".")
		if len(name) < 3 || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// notifyMentions sends a mention notification to every user named in text
// except the actor.
func (a *Actions) notifyMentions(ctx context.Context, actor primitive.ObjectID, text string, postID, commentID primitive.ObjectID) {
	names := ParseMentions(text)
	if len(names) == 0 {
		return
	}
	users, err := a.store.Users.GetUsersByUsernames(ctx, names)
	if err != nil {
		a.log.Warn("mention lookup failed", "error", err)
		return
	}
	for _, u := range users {
		a.notify(ctx, models.Notification{
			UserID:    u.ID,
			Type:      models.NotificationMention,
			ActorID:   actor,
			PostID:    postID,
			CommentID: commentID,
		})
	}
}
