package api

import (
	"context"
	"net/http"

	"devwrite/internal/app"
	"devwrite/internal/domain/content"
	"devwrite/internal/feed"
	"devwrite/internal/markdown"
	"devwrite/internal/member"
	"devwrite/internal/notify"
)

// PostSource is the filtered feed.
type PostSource interface {
	Posts(c feed.Criteria) ([]content.PostSummary, error)
	PostURL(slug string) string
}

var _ PostSource = (*app.Site)(nil)

type MemberService interface {
	Join(ctx context.Context, a member.Application) (*member.Member, error)
	SendWelcome(email, name string) error
}

var _ MemberService = (*member.Service)(nil)

// SessionSource resolves the reader a request belongs to.
type SessionSource interface {
	For(w http.ResponseWriter, r *http.Request) *markdown.Session
}

var _ SessionSource = (*app.Sessions)(nil)

type Handler struct {
	posts    PostSource
	members  MemberService
	sessions SessionSource
	notifier notify.Notifier
}

type copyRequest struct {
	Text string `json:"text" form:"text" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" form:"email" binding:"required"`
	Name  string `json:"name" form:"name"`
}

type webhookRequest struct {
	Title string `json:"title" binding:"required"`
	Link  string `json:"link"`
	Slug  string `json:"slug"`
}
