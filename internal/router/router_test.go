package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/auth"
	"github.com/orbtao/connectify/backend/internal/ratelimit"
	"github.com/orbtao/connectify/backend/internal/realtime"
	"github.com/orbtao/connectify/backend/internal/repositories/memory"
	"github.com/orbtao/connectify/backend/pkg/config"
	"github.com/orbtao/connectify/backend/pkg/logger"
)

type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

type testAPI struct {
	t   *testing.T
	e   *echo.Echo
	hub *realtime.Hub
}

func newTestAPI(t *testing.T, limiter ratelimit.Limiter) *testAPI {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Auth.CookieName = "connectify_session"

	log := logger.Discard()
	hub := realtime.NewHub(log)
	a := actions.New(actions.Opts{
		Store:  memory.NewStore(),
		Tokens: auth.NewManager("router-secret", time.Hour),
		Logger: log,
		Config: cfg,
		Relay:  hub,
	})
	if limiter == nil {
		limiter = allowAll{}
	}

	e := echo.New()
	SetupRoutes(e, Deps{Config: cfg, Logger: log, Actions: a, Hub: hub, Limiter: limiter})
	t.Cleanup(hub.Close)
	return &testAPI{t: t, e: e, hub: hub}
}

type response struct {
	Code int
	Body map[string]any
	rec  *httptest.ResponseRecorder
}

func (api *testAPI) send(req *http.Request, token string) response {
	api.t.Helper()
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.e.ServeHTTP(rec, req)
	res := response{Code: rec.Code, rec: rec}
	if rec.Body.Len() > 0 {
		require.NoError(api.t, json.Unmarshal(rec.Body.Bytes(), &res.Body), rec.Body.String())
	}
	return res
}

func (api *testAPI) do(method, path, token string, body any) response {
	api.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(api.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return api.send(req, token)
}

// register signs a user up and returns its token and id.
func (api *testAPI) register(username string) (string, string) {
	api.t.Helper()
	res := api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     strings.ToUpper(username[:1]) + username[1:],
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(api.t, http.StatusCreated, res.Code, res.Body)
	user := res.Body["user"].(map[string]any)
	return res.Body["token"].(string), user["id"].(string)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, nil)
	res := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "healthy", res.Body["status"])
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t, nil)

	res := api.do(http.MethodGet, "/api/v1/feed", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, map[string]any{"error": "You must be logged in"}, res.Body)

	token, _ := api.register("alice")

	res = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Alice", "username": "alice", "email": "other@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, res.Code)

	res = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"identifier": "alice", "password": "password123"})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, true, res.Body["success"])
	cookies := res.rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "connectify_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// the cookie alone authenticates
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(cookies[0])
	res = api.send(req, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "alice", res.Body["user"].(map[string]any)["username"])

	res = api.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, res.Code)
	res = api.do(http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = api.do(http.MethodPost, "/api/v1/auth/firebase-login", "", map[string]string{"idToken": "x"})
	assert.Equal(t, http.StatusBadGateway, res.Code)
	assert.Equal(t, "Firebase sign-in is not available", res.Body["error"])
}

func TestPostsFeedAndLikes(t *testing.T) {
	api := newTestAPI(t, nil)
	alice, _ := api.register("alice")
	bob, _ := api.register("bob")

	res := api.do(http.MethodPost, "/api/v1/posts", alice, map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Post must have content or media", res.Body["error"])

	res = api.do(http.MethodPost, "/api/v1/posts", alice, map[string]string{"content": "hello @bob"})
	require.Equal(t, http.StatusCreated, res.Code, res.Body)
	postID := res.Body["post"].(map[string]any)["id"].(string)

	res = api.do(http.MethodGet, "/api/v1/feed?page=1", bob, nil)
	require.Equal(t, http.StatusOK, res.Code)
	posts := res.Body["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, map[string]any{"currentPage": float64(1), "itemsPerPage": float64(10), "hasNextPage": false}, res.Body["pagination"])

	for i := 0; i < 2; i++ {
		res = api.do(http.MethodPost, "/api/v1/posts/"+postID+"/like", bob, nil)
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, float64(1), res.Body["likesCount"])
		assert.Equal(t, true, res.Body["isLiked"])
	}

	res = api.do(http.MethodPost, "/api/v1/posts/"+postID+"/comments", bob, map[string]string{"content": "nice"})
	require.Equal(t, http.StatusCreated, res.Code)
	res = api.do(http.MethodGet, "/api/v1/posts/"+postID+"/comments", alice, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, res.Body["comments"], 1)

	res = api.do(http.MethodGet, "/api/v1/notifications/unread-count", alice, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, float64(2), res.Body["count"], "like and comment")

	res = api.do(http.MethodDelete, "/api/v1/posts/"+postID, bob, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = api.do(http.MethodGet, "/api/v1/posts/nope", bob, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestMultipartUploadWithoutStorage(t *testing.T) {
	api := newTestAPI(t, nil)
	alice, _ := api.register("alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("content", "with a photo"))
	part, err := mw.CreateFormFile("files", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	res := api.send(req, alice)
	assert.Equal(t, http.StatusBadGateway, res.Code)
	assert.Equal(t, "Media uploads are not configured", res.Body["error"])
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	api := newTestAPI(t, nil)
	alice, _ := api.register("alice")

	res := api.do(http.MethodGet, "/api/v1/admin/stats", alice, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "Not authorized", res.Body["error"])

	res = api.do(http.MethodPut, "/api/v1/admin/verifications/65f000000000000000000000", alice, map[string]string{"decision": "maybe"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewInMemoryLimiter(1, time.Hour, 3)
	api := newTestAPI(t, limiter)
	// registration spends one token from the anonymous bucket
	alice, _ := api.register("alice")

	for i := 0; i < 3; i++ {
		res := api.do(http.MethodPost, "/api/v1/posts", alice, map[string]string{"content": "post"})
		require.Equal(t, http.StatusCreated, res.Code)
	}
	res := api.do(http.MethodPost, "/api/v1/posts", alice, map[string]string{"content": "post"})
	assert.Equal(t, http.StatusTooManyRequests, res.Code)
	assert.Equal(t, "Too many requests", res.Body["error"])

	res = api.do(http.MethodGet, "/api/v1/feed", alice, nil)
	assert.Equal(t, http.StatusOK, res.Code, "reads are not limited")
}

func TestWebsocketRelay(t *testing.T) {
	api := newTestAPI(t, nil)
	alice, aliceID := api.register("alice")
	bob, bobID := api.register("bob")

	srv := httptest.NewServer(api.e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws?token=" + bob
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return api.hub.Online(bobID) == 1 }, 2*time.Second, 10*time.Millisecond)

	_, _, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/ws", nil)
	assert.Error(t, err, "unauthenticated upgrade is refused")

	// a join for someone else's room still lands in bob's own room
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "join", "data": aliceID}))
	ev := readEvent(t, conn)
	assert.Equal(t, "join", ev.Type)
	assert.JSONEq(t, `{"room":"`+bobID+`"}`, string(ev.Data))

	res := api.do(http.MethodPost, "/api/v1/messages", alice, map[string]string{"receiverId": bobID, "content": "hi bob"})
	require.Equal(t, http.StatusCreated, res.Code, res.Body)

	ev = readEvent(t, conn)
	assert.Equal(t, "message", ev.Type)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(ev.Data, &msg))
	assert.Equal(t, "hi bob", msg["content"])
	assert.Equal(t, aliceID, msg["senderId"])

	// a message sent over the socket is persisted and acknowledged
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "message", "data": map[string]string{"receiverId": aliceID, "content": "hey"}}))
	ev = readEvent(t, conn)
	assert.Equal(t, "message:sent", ev.Type)

	res = api.do(http.MethodGet, "/api/v1/messages/unread-count", alice, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, float64(1), res.Body["count"])
}

func readEvent(t *testing.T, conn *websocket.Conn) realtime.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev realtime.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}
