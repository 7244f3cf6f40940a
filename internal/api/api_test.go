package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"devwrite/internal/app"
	"devwrite/internal/domain/content"
	domainerr "devwrite/internal/domain/errors"
	"devwrite/internal/feed"
	"devwrite/internal/markdown"
	"devwrite/internal/member"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePosts struct {
	posts []content.PostSummary
	err   error
	last  feed.Criteria
}

func (f *fakePosts) Posts(c feed.Criteria) ([]content.PostSummary, error) {
	f.last = c
	if f.err != nil {
		return nil, f.err
	}
	return feed.Filter(f.posts, c), nil
}

func (f *fakePosts) PostURL(slug string) string { return "https://devwrite.africa/" + slug }

type fakeMembers struct {
	joined  []member.Application
	welcome []string
	emails  map[string]bool
}

func (f *fakeMembers) Join(_ context.Context, a member.Application) (*member.Member, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if f.emails[a.Email] {
		return nil, member.ErrAlreadyMember
	}
	if f.emails == nil {
		f.emails = map[string]bool{}
	}
	f.emails[a.Email] = true
	f.joined = append(f.joined, a)
	return &member.Member{ID: int64(len(f.joined)), Name: a.Name, Email: a.Email}, nil
}

func (f *fakeMembers) SendWelcome(email, name string) error {
	f.welcome = append(f.welcome, email)
	return nil
}

type fakeNotifier struct {
	title, link string
	err         error
}

func (f *fakeNotifier) Published(_ context.Context, title, link string) error {
	f.title, f.link = title, link
	return f.err
}

type fixture struct {
	engine   *gin.Engine
	posts    *fakePosts
	members  *fakeMembers
	sessions *app.Sessions
	notify   *fakeNotifier
}

func newFixture() *fixture {
	f := &fixture{
		posts: &fakePosts{posts: []content.PostSummary{
			{Slug: "go-channels", Title: "Go channels", Tags: []string{"go"}, Category: []string{"backend"}, Date: content.PostDate{StartDate: "2024-02-01"}},
			{Slug: "css-grid", Title: "CSS grid", Tags: []string{"css"}, Category: []string{"frontend"}, Date: content.PostDate{StartDate: "2024-03-01"}},
		}},
		members:  &fakeMembers{},
		sessions: app.NewSessions(markdown.New(), nil, nil, time.Minute, 0),
		notify:   &fakeNotifier{},
	}
	f.engine = NewServer(NewHandler(f.posts, f.members, f.sessions, f.notify))
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestListPosts(t *testing.T) {
	f := newFixture()

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/posts?tag=go&order=desc", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Feed-Items"))
	assert.Equal(t, feed.Criteria{Tag: "go", Order: feed.OrderDesc}, f.posts.last)

	body := decode(t, w)
	posts := body["posts"].([]interface{})
	require.Len(t, posts, 1)
	first := posts[0].(map[string]interface{})
	assert.Equal(t, "go-channels", first["slug"])
	assert.Equal(t, "https://devwrite.africa/go-channels", first["url"])
}

func TestListPostsKeywordAndOrder(t *testing.T) {
	f := newFixture()

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/posts?order=asc", nil))
	require.Equal(t, http.StatusOK, w.Code)
	posts := decode(t, w)["posts"].([]interface{})
	require.Len(t, posts, 2)
	assert.Equal(t, "go-channels", posts[0].(map[string]interface{})["slug"])

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/posts?q=GRID", nil))
	posts = decode(t, w)["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "css-grid", posts[0].(map[string]interface{})["slug"])

	// anything but asc sorts newest first
	w = f.do(httptest.NewRequest(http.MethodGet, "/api/posts?order=sideways", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, feed.Order("sideways"), f.posts.last.Order)
	posts = decode(t, w)["posts"].([]interface{})
	require.Len(t, posts, 2)
	assert.Equal(t, "css-grid", posts[0].(map[string]interface{})["slug"])
}

func TestListPostsError(t *testing.T) {
	f := newFixture()
	f.posts.err = errors.New("bolt closed")

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestJoin(t *testing.T) {
	f := newFixture()

	form := url.Values{
		"name":        {"Ada"},
		"email":       {"ada@example.com"},
		"career_path": {"Backend"},
		"experience":  {"1-3 years"},
		"publish_at":  {"soon"},
		"why_join":    {"write more"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/join", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := f.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "You have successfully joined Devwrite Africa Community", decode(t, w)["message"])
	require.Len(t, f.members.joined, 1)
	assert.Equal(t, "Backend", f.members.joined[0].CareerPath)
	assert.Equal(t, "write more", f.members.joined[0].WhyJoin)

	req = httptest.NewRequest(http.MethodPost, "/api/join",
		strings.NewReader(`{"name":"Ada","email":"ada@example.com","careerPath":"Backend"}`))
	req.Header.Set("Content-Type", "application/json")
	w = f.do(req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "You are already a member", decode(t, w)["error"])
}

func TestJoinValidation(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/join", strings.NewReader(`{"email":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "is not a valid address", fields["email"])

	var ve domainerr.ValidationError
	assert.True(t, errors.As(member.Application{}.Validate(), &ve))
}

func TestSendEmail(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/sendEmail", strings.NewReader(`{"email":"ada@example.com","name":"Ada"}`))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Email sent!", decode(t, w)["message"])
	assert.Equal(t, []string{"ada@example.com"}, f.members.welcome)

	req = httptest.NewRequest(http.MethodPost, "/api/sendEmail", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)
}

func TestCopy(t *testing.T) {
	f := newFixture()

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/copy?text=go+run+.", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["copied"])

	req := httptest.NewRequest(http.MethodPost, "/api/copy", strings.NewReader(`{"text":"go run ."}`))
	req.Header.Set("Content-Type", "application/json")
	w = f.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["copied"])
	assert.NotEmpty(t, body["until"])

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, app.SessionCookie, cookies[0].Name)

	req = httptest.NewRequest(http.MethodGet, "/api/copy?text=go+run+.", nil)
	req.AddCookie(cookies[0])
	w = f.do(req)
	assert.Equal(t, true, decode(t, w)["copied"])
	assert.Empty(t, w.Result().Cookies(), "known readers keep their cookie")

	// another reader never sees the copy
	w = f.do(httptest.NewRequest(http.MethodGet, "/api/copy?text=go+run+.", nil))
	assert.Equal(t, false, decode(t, w)["copied"])

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/copy", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks", strings.NewReader(`{"title":"Go channels","slug":"go-channels"}`))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
	assert.Equal(t, "Go channels", f.notify.title)
	assert.Equal(t, "https://devwrite.africa/go-channels", f.notify.link)

	req = httptest.NewRequest(http.MethodPost, "/api/webhooks", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)

	f.notify.err = errors.New("discord down")
	req = httptest.NewRequest(http.MethodPost, "/api/webhooks", strings.NewReader(`{"title":"x","link":"https://x.y"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadGateway, f.do(req).Code)
}

func TestHealth(t *testing.T) {
	f := newFixture()
	w := f.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["posts"])
	assert.NotEmpty(t, body["timestamp"])
}
