package actions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/orbtao/connectify/backend/internal/auth"
	"github.com/orbtao/connectify/backend/internal/models"
	"github.com/orbtao/connectify/backend/internal/repositories"
	"github.com/orbtao/connectify/backend/internal/repositories/memory"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"github.com/orbtao/connectify/backend/pkg/firebase"
	"github.com/orbtao/connectify/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type relayed struct {
	Room  string
	Event string
	Data  any
}

type recordingRelay struct {
	mu     sync.Mutex
	events []relayed
}

func (r *recordingRelay) Emit(room, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, relayed{Room: room, Event: event, Data: data})
}

func (r *recordingRelay) to(room, event string) []relayed {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []relayed
	for _, e := range r.events {
		if e.Room == room && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	a     *Actions
	store *repositories.Store
	relay *recordingRelay
	now   time.Time
}

func newFixture(t *testing.T, opts ...func(*Opts)) *fixture {
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: memory.NewStore(),
		relay: &recordingRelay{},
		now:   time.Now().Truncate(time.Second),
	}
	o := Opts{
		Store:  f.store,
		Tokens: auth.NewManager("test-secret", time.Hour),
		Logger: logger.Discard(),
		Relay:  f.relay,
		Clock:  func() time.Time { return f.now },
	}
	for _, fn := range opts {
		fn(&o)
	}
	f.a = New(o)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// user inserts an active account directly into the store and returns its id.
func (f *fixture) user(username string, role ...models.Role) string {
	f.t.Helper()
	u := &models.User{
		Name:      username,
		Username:  username,
		Email:     username + "@example.com",
		Role:      models.RoleUser,
		Status:    models.UserActive,
		CreatedAt: f.now,
	}
	if len(role) > 0 {
		u.Role = role[0]
	}
	require.NoError(f.t, f.store.Users.CreateUser(f.ctx, u))
	return u.ID.Hex()
}

func (f *fixture) load(id string) *models.User {
	f.t.Helper()
	oid, err := primitive.ObjectIDFromHex(id)
	require.NoError(f.t, err)
	u, err := f.store.Users.GetUserByID(f.ctx, oid)
	require.NoError(f.t, err)
	return u
}

func (f *fixture) post(owner, content string) string {
	f.t.Helper()
	p, err := f.a.CreatePost(f.ctx, owner, models.CreatePostRequest{Content: content}, nil)
	require.NoError(f.t, err)
	return p.ID
}

func (f *fixture) notifications(userID string) []models.Notification {
	f.t.Helper()
	oid, _ := primitive.ObjectIDFromHex(userID)
	list, _, err := f.store.Notifications.GetByUserID(f.ctx, oid, 0, 100)
	require.NoError(f.t, err)
	return list
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	res, err := f.a.Register(f.ctx, models.RegisterRequest{
		Name:     "Alice",
		Username: "Alice_01",
		Email:    "Alice@Example.com",
		Password: "password123",
	}, "go-test")
	require.NoError(t, err)
	assert.Equal(t, "alice_01", res.User.Username)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.NotEmpty(t, res.Token)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := f.a.Register(f.ctx, models.RegisterRequest{
			Name: "Other", Username: "alice_01", Email: "other@example.com", Password: "password123",
		}, "")
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("invalid username", func(t *testing.T) {
		_, err := f.a.Register(f.ctx, models.RegisterRequest{
			Name: "Bob", Username: "b!", Email: "bob@example.com", Password: "password123",
		}, "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("login by username and email", func(t *testing.T) {
		for _, id := range []string{"alice_01", "ALICE@example.com"} {
			res, err := f.a.Login(f.ctx, models.LoginRequest{Identifier: id, Password: "password123"}, "")
			require.NoError(t, err, id)
			assert.Equal(t, "alice_01", res.User.Username)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.a.Login(f.ctx, models.LoginRequest{Identifier: "alice_01", Password: "nope-nope"}, "")
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.a.Login(f.ctx, models.LoginRequest{Identifier: "ghost", Password: "password123"}, "")
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}

func TestAuthenticateAndLogout(t *testing.T) {
	f := newFixture(t)
	res, err := f.a.Register(f.ctx, models.RegisterRequest{
		Name: "Carol", Username: "carol", Email: "carol@example.com", Password: "password123",
	}, "")
	require.NoError(t, err)

	p, err := f.a.Authenticate(f.ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.Hex(), p.UserID)
	assert.Equal(t, res.SessionID, p.SessionID)

	require.NoError(t, f.a.Logout(f.ctx, p.SessionID))
	_, err = f.a.Authenticate(f.ctx, res.Token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = f.a.Authenticate(f.ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestSuspendedUserIsForbidden(t *testing.T) {
	f := newFixture(t)
	admin := f.user("admin", models.RoleAdmin)
	bob := f.user("bob")

	require.NoError(t, f.a.SetUserStatus(f.ctx, admin, bob, string(models.UserSuspended)))

	_, err := f.a.Feed(f.ctx, bob, 1)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, "Your account is suspended", apperrors.GetMessage(err))
}

func TestUnknownCallerIsUnauthenticated(t *testing.T) {
	f := newFixture(t)

	_, err := f.a.Me(f.ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	assert.Equal(t, "You must be logged in", apperrors.GetMessage(err))

	_, err = f.a.Me(f.ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

type fakeFirebase struct {
	identity *firebase.Identity
	err      error
}

func (f fakeFirebase) VerifyIDToken(context.Context, string) (*firebase.Identity, error) {
	return f.identity, f.err
}

func TestLoginWithFirebase(t *testing.T) {
	fb := fakeFirebase{identity: &firebase.Identity{UID: "fb-1", Email: "dana.smith@example.com", Name: "Dana"}}
	f := newFixture(t, func(o *Opts) { o.Firebase = fb })

	first, err := f.a.LoginWithFirebase(f.ctx, "token", "")
	require.NoError(t, err)
	assert.Equal(t, "dana.smith", first.User.Username)
	assert.Equal(t, "fb-1", first.User.FirebaseUID)

	second, err := f.a.LoginWithFirebase(f.ctx, "token", "")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	t.Run("links existing email", func(t *testing.T) {
		erin := f.user("erin")
		fb := fakeFirebase{identity: &firebase.Identity{UID: "fb-2", Email: "erin@example.com"}}
		f.a.firebase = fb
		res, err := f.a.LoginWithFirebase(f.ctx, "token", "")
		require.NoError(t, err)
		assert.Equal(t, erin, res.User.ID.Hex())
		assert.Equal(t, "fb-2", f.load(erin).FirebaseUID)
	})

	t.Run("not configured", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.a.LoginWithFirebase(f.ctx, "token", "")
		assert.ErrorIs(t, err, apperrors.ErrDownstream)
	})
}

func TestProfiles(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	bob := f.user("bob")
	_, err := f.a.Follow(f.ctx, alice, bob)
	require.NoError(t, err)

	p, err := f.a.GetProfile(f.ctx, alice, "BOB")
	require.NoError(t, err)
	assert.True(t, p.IsFollowing)
	assert.Equal(t, 1, p.FollowersCount)
	assert.Empty(t, p.Email)

	me, err := f.a.Me(f.ctx, alice)
	require.NoError(t, err)
	assert.True(t, me.IsOwnProfile)
	assert.Equal(t, "alice@example.com", me.Email)

	bio := "  hello  "
	updated, err := f.a.UpdateProfile(f.ctx, alice, models.UpdateProfileRequest{Bio: &bio}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)

	_, err = f.a.GetProfile(f.ctx, alice, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	found, err := f.a.SearchUsers(f.ctx, alice, "BO", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "bob", found[0].Username)

	followers, err := f.a.Followers(f.ctx, alice, "bob")
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, alice, followers[0].ID)
}
