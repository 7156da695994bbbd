package actions

import (
	"testing"
	"time"

	"github.com/orbtao/connectify/backend/internal/models"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"github.com/orbtao/connectify/backend/pkg/storage"
	"github.com/orbtao/connectify/backend/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
)

func TestAdmin_NonAdminForbidden(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	bob := f.user("bob")
	postID := f.post(alice, "hello")

	err := f.a.SetPostStatus(f.ctx, bob, postID, string(models.PostHidden))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, "Not authorized", apperrors.GetMessage(err))

	post, err := f.a.GetPost(f.ctx, bob, postID)
	require.NoError(t, err)
	assert.Equal(t, models.PostActive, post.Status)

	story, err := f.a.CreateStory(f.ctx, alice, models.CreateStoryRequest{Media: "https://cdn.example.com/s.jpg"}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, f.a.SetStoryStatus(f.ctx, bob, story.ID, string(models.StoryFlagged)), apperrors.ErrForbidden)
	storyID, err := primitive.ObjectIDFromHex(story.ID)
	require.NoError(t, err)
	stored, err := f.store.Stories.GetStoryByID(f.ctx, storyID)
	require.NoError(t, err)
	assert.Equal(t, models.StoryActive, stored.Status)

	assert.ErrorIs(t, f.a.SetUserStatus(f.ctx, bob, alice, string(models.UserSuspended)), apperrors.ErrForbidden)
	assert.Equal(t, models.UserActive, f.load(alice).Status)

	_, err = f.a.Stats(f.ctx, bob)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, _, err = f.a.ListVerifications(f.ctx, bob, "", 1)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.a.Broadcast(f.ctx, bob, models.BroadcastRequest{Message: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAdmin_Statuses(t *testing.T) {
	f := newFixture(t)
	admin := f.user("root", models.RoleAdmin)
	alice := f.user("alice")
	postID := f.post(alice, "hello")
	story, err := f.a.CreateStory(f.ctx, alice, models.CreateStoryRequest{Media: "https://cdn.example.com/s.jpg"}, nil)
	require.NoError(t, err)

	err = f.a.SetPostStatus(f.ctx, admin, postID, "deleted")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "Invalid status", apperrors.GetMessage(err))

	assert.ErrorIs(t, f.a.SetPostStatus(f.ctx, admin, primitive.NewObjectID().Hex(), string(models.PostHidden)), apperrors.ErrNotFound)

	require.NoError(t, f.a.SetPostStatus(f.ctx, admin, postID, string(models.PostFlagged)))
	require.NoError(t, f.a.SetPostStatus(f.ctx, admin, postID, string(models.PostActive)))
	post, err := f.a.GetPost(f.ctx, alice, postID)
	require.NoError(t, err)
	assert.Equal(t, models.PostActive, post.Status, "last write wins")

	require.NoError(t, f.a.SetStoryStatus(f.ctx, admin, story.ID, string(models.StoryExpired)))
	assert.ErrorIs(t, f.a.ViewStory(f.ctx, alice, story.ID), apperrors.ErrNotFound)

	stories, err := f.a.AdminListStories(f.ctx, admin, "", 1)
	require.NoError(t, err)
	require.Len(t, stories.Stories, 1)
	assert.True(t, stories.Stories[0].IsExpired)
	assert.Equal(t, "alice", stories.Stories[0].Author.Username)

	err = f.a.SetUserStatus(f.ctx, admin, admin, string(models.UserSuspended))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAdmin_SuspensionRevokesSessions(t *testing.T) {
	f := newFixture(t)
	admin := f.user("root", models.RoleAdmin)
	res, err := f.a.Register(f.ctx, models.RegisterRequest{
		Name: "Dan", Username: "dan", Email: "dan@example.com", Password: "password123",
	}, "")
	require.NoError(t, err)
	dan := res.User.ID.Hex()

	require.NoError(t, f.a.SetUserStatus(f.ctx, admin, dan, string(models.UserSuspended)))
	_, err = f.a.Authenticate(f.ctx, res.Token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = f.a.Login(f.ctx, models.LoginRequest{Identifier: "dan", Password: "password123"}, "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	users, err := f.a.AdminListUsers(f.ctx, admin, string(models.UserSuspended), "", 1)
	require.NoError(t, err)
	require.Len(t, users.Users, 1)
	assert.Equal(t, "dan", users.Users[0].Username)
	assert.EqualValues(t, 1, users.Total)
}

func verificationFixture(t *testing.T) (*fixture, *mocks.MockUploader) {
	ctrl := gomock.NewController(t)
	uploader := mocks.NewMockUploader(ctrl)
	return newFixture(t, func(o *Opts) { o.Uploader = uploader }), uploader
}

func TestSubmitVerification_Validation(t *testing.T) {
	f, _ := verificationFixture(t)
	alice := f.user("alice")
	doc := &storage.File{Name: "id.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
	links := []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"}

	cases := []struct {
		name string
		req  models.SubmitVerificationRequest
		doc  *storage.File
		msg  string
	}{
		{"two links", models.SubmitVerificationRequest{Links: links[:2], About: "me", Category: "creator"}, doc, "At least 3 links are required"},
		{"blank links do not count", models.SubmitVerificationRequest{Links: []string{links[0], links[1], "  "}, About: "me", Category: "creator"}, doc, "At least 3 links are required"},
		{"no about", models.SubmitVerificationRequest{Links: links, Category: "creator"}, doc, "About is required"},
		{"no category", models.SubmitVerificationRequest{Links: links, About: "me"}, doc, "Category is required"},
		{"bad category", models.SubmitVerificationRequest{Links: links, About: "me", Category: "royalty"}, doc, "Invalid category"},
		{"no document", models.SubmitVerificationRequest{Links: links, About: "me", Category: "creator"}, nil, "Government ID document is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.a.SubmitVerification(f.ctx, alice, tc.req, tc.doc)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Equal(t, tc.msg, apperrors.GetMessage(err))
		})
	}

	mine, err := f.a.MyVerification(f.ctx, alice)
	require.NoError(t, err)
	assert.Nil(t, mine, "nothing is stored on a rejected submission")
}

func TestVerificationLifecycle(t *testing.T) {
	f, uploader := verificationFixture(t)
	admin := f.user("root", models.RoleAdmin)
	alice := f.user("alice")
	doc := &storage.File{Name: "id.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
	req := models.SubmitVerificationRequest{
		Links:    []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"},
		About:    "I make videos",
		Category: "creator",
	}

	uploader.EXPECT().Upload(gomock.Any(), gomock.Any(), "application/pdf", gomock.Any()).
		Return("https://cdn.example.com/verification/id.pdf", nil)

	vr, err := f.a.SubmitVerification(f.ctx, alice, req, doc)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, vr.Status)
	assert.Equal(t, "https://cdn.example.com/verification/id.pdf", vr.GovernmentID)

	_, err = f.a.SubmitVerification(f.ctx, alice, req, doc)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	list, _, err := f.a.ListVerifications(f.ctx, admin, string(models.VerificationPending), 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].User.Username)

	stats, err := f.a.Stats(f.ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 2, Posts: 0, ActiveStories: 0, PendingVerifications: 1}, *stats)

	f.advance(time.Hour)
	reviewed, err := f.a.ReviewVerification(f.ctx, admin, vr.ID.Hex(), true)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedAt)
	assert.True(t, f.load(alice).IsVerified)

	_, err = f.a.ReviewVerification(f.ctx, admin, vr.ID.Hex(), false)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	mine, err := f.a.MyVerification(f.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationApproved, mine.Status)
}

func TestBroadcast(t *testing.T) {
	f := newFixture(t)
	admin := f.user("root", models.RoleAdmin)
	alice := f.user("alice")

	_, err := f.a.Broadcast(f.ctx, admin, models.BroadcastRequest{Message: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	n, err := f.a.Broadcast(f.ctx, admin, models.BroadcastRequest{Message: " maintenance tonight "})
	require.NoError(t, err)
	assert.Equal(t, "maintenance tonight", n.Message)
	assert.True(t, n.UserID.IsZero())

	list, err := f.a.AdminAnnouncements(f.ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationAdmin, list[0].Type)
	require.NotNil(t, list[0].Actor)
	assert.Equal(t, "root", list[0].Actor.Username)

	assert.Empty(t, f.notifications(alice), "announcements are not personal notifications")
}
