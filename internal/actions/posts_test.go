package actions

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/orbtao/connectify/backend/internal/models"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"github.com/orbtao/connectify/backend/pkg/storage"
	"github.com/orbtao/connectify/backend/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCreatePost_ContentOrMedia(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")

	_, err := f.a.CreatePost(f.ctx, alice, models.CreatePostRequest{Content: "   "}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	p, err := f.a.CreatePost(f.ctx, alice, models.CreatePostRequest{Media: []string{"https://cdn.example.com/a.jpg"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, p.Content)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, p.Media)
	assert.Equal(t, models.PostActive, p.Status)
	assert.Equal(t, "alice", p.Author.Username)

	_, err = f.a.CreatePost(f.ctx, alice, models.CreatePostRequest{Content: strings.Repeat("x", 2201)}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.a.CreatePost(f.ctx, alice, models.CreatePostRequest{Content: strings.Repeat("x", 2200)}, nil)
	assert.NoError(t, err)
}

func TestCreatePost_UploadsFiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	uploader := mocks.NewMockUploader(ctrl)
	f := newFixture(t, func(o *Opts) { o.Uploader = uploader })
	alice := f.user("alice")

	uploader.EXPECT().
		Upload(gomock.Any(), gomock.Any(), "image/png", gomock.Any()).
		DoAndReturn(func(_ context.Context, key, _ string, _ io.Reader) (string, error) {
			assert.True(t, strings.HasPrefix(key, "posts/"))
			assert.True(t, strings.HasSuffix(key, ".png"))
			return "https://cdn.example.com/" + key, nil
		})

	p, err := f.a.CreatePost(f.ctx, alice, models.CreatePostRequest{}, []storage.File{
		{Name: "photo.PNG", ContentType: "image/png", Data: []byte{1, 2, 3}},
	})
	require.NoError(t, err)
	require.Len(t, p.Media, 1)
	assert.True(t, strings.HasPrefix(p.Media[0], "https://cdn.example.com/posts/"))
}

func TestCreatePost_UploadFailureSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	uploader := mocks.NewMockUploader(ctrl)
	f := newFixture(t, func(o *Opts) { o.Uploader = uploader })
	alice := f.user("alice")

	uploader.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("bucket gone"))

	_, err := f.a.CreatePost(f.ctx, alice, models.CreatePostRequest{}, []storage.File{{Name: "a.jpg", Data: []byte{1}}})
	assert.ErrorIs(t, err, apperrors.ErrDownstream)
	assert.Equal(t, "Failed to upload media", apperrors.GetMessage(err))

	list, _, err := f.store.Posts.ListPosts(f.ctx, "", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLikePost_Idempotent(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	bob := f.user("bob")
	postID := f.post(alice, "hello")

	first, err := f.a.LikePost(f.ctx, bob, postID)
	require.NoError(t, err)
	second, err := f.a.LikePost(f.ctx, bob, postID)
	require.NoError(t, err)

	assert.Equal(t, 1, first.LikesCount)
	assert.Equal(t, *first, *second)
	assert.True(t, second.IsLiked)

	likes := 0
	for _, n := range f.notifications(alice) {
		if n.Type == models.NotificationLike {
			likes++
		}
	}
	assert.Equal(t, 1, likes, "only the first like notifies")
}

func TestLikePost_OwnPostDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	postID := f.post(alice, "hello")

	_, err := f.a.LikePost(f.ctx, alice, postID)
	require.NoError(t, err)
	assert.Empty(t, f.notifications(alice))
}

func TestUnlikePost_NeverLikedIsNoop(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	bob := f.user("bob")
	carol := f.user("carol")
	postID := f.post(alice, "hello")
	_, err := f.a.LikePost(f.ctx, carol, postID)
	require.NoError(t, err)

	res, err := f.a.UnlikePost(f.ctx, bob, postID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.LikesCount)
	assert.False(t, res.IsLiked)

	res, err = f.a.UnlikePost(f.ctx, carol, postID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.LikesCount)
}

func TestLikePost_MissingPost(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")

	for _, id := range []string{"not-an-id", "65f000000000000000000000"} {
		_, err := f.a.LikePost(f.ctx, alice, id)
		assert.ErrorIs(t, err, apperrors.ErrNotFound, id)
	}
	assert.Empty(t, f.notifications(alice))
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	bob := f.user("bob")
	carol := f.user("carol")
	postID := f.post(alice, "hello")

	_, err := f.a.AddComment(f.ctx, bob, postID, models.CreateCommentRequest{Content: ""})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.a.AddComment(f.ctx, bob, postID, models.CreateCommentRequest{Content: strings.Repeat("y", 501)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	c1, err := f.a.AddComment(f.ctx, bob, postID, models.CreateCommentRequest{Content: "first @carol"})
	require.NoError(t, err)
	f.advance(time.Second)
	_, err = f.a.AddComment(f.ctx, alice, postID, models.CreateCommentRequest{Content: "second"})
	require.NoError(t, err)

	list, err := f.a.ListComments(f.ctx, carol, postID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, c1.ID, list[0].ID)
	assert.Equal(t, "bob", list[0].Author.Username)
	assert.Equal(t, "alice", list[1].Author.Username)

	post, err := f.a.GetPost(f.ctx, carol, postID)
	require.NoError(t, err)
	assert.Equal(t, 2, post.CommentsCount)

	ownerTypes := []models.NotificationType{}
	for _, n := range f.notifications(alice) {
		ownerTypes = append(ownerTypes, n.Type)
	}
	assert.Equal(t, []models.NotificationType{models.NotificationComment}, ownerTypes, "own comment does not notify")

	mentions := f.notifications(carol)
	require.Len(t, mentions, 1)
	assert.Equal(t, models.NotificationMention, mentions[0].Type)
	assert.Equal(t, c1.ID, mentions[0].CommentID.Hex())
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	bob := f.user("bob")
	admin := f.user("root", models.RoleAdmin)

	postID := f.post(alice, "mine")
	_, err := f.a.AddComment(f.ctx, bob, postID, models.CreateCommentRequest{Content: "nice"})
	require.NoError(t, err)

	err = f.a.DeletePost(f.ctx, bob, postID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.a.DeletePost(f.ctx, alice, postID))
	_, err = f.a.GetPost(f.ctx, alice, postID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	other := f.post(bob, "theirs")
	require.NoError(t, f.a.DeletePost(f.ctx, admin, other))
}

func TestParseMentions(t *testing.T) {
	cases := map[string][]string{
		"hi @Alice and @bob.":     {"alice", "bob"},
		"mail me at a@b.com":      nil,
		"@al":                     nil,
		"@carol @carol @CAROL":    {"carol"},
		"(@dave) start":           {"dave"},
		"no mentions here at all": nil,
	}
	for text, want := range cases {
		assert.Equal(t, want, ParseMentions(text), text)
	}
}
