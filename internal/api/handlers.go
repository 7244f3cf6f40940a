package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	domainerr "devwrite/internal/domain/errors"
	"devwrite/internal/feed"
	"devwrite/internal/markdown"
	"devwrite/internal/member"
	"devwrite/internal/notify"

	"github.com/gin-gonic/gin"
)

func NewHandler(posts PostSource, members MemberService, sessions SessionSource, notifier notify.Notifier) *Handler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Handler{
		posts:    posts,
		members:  members,
		sessions: sessions,
		notifier: notifier,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}
	if posts, err := h.posts.Posts(feed.Criteria{}); err == nil {
		health["posts"] = len(posts)
	}
	c.JSON(http.StatusOK, health)
}

// ListPosts is the feed as JSON, filtered by ?q, tag, category and order.
func (h *Handler) ListPosts(c *gin.Context) {
	var crit feed.Criteria
	if err := c.ShouldBindQuery(&crit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	posts, err := h.posts.Posts(crit)
	if err != nil {
		log.Printf("[api] list posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
		return
	}

	items := make([]map[string]interface{}, 0, len(posts))
	for _, p := range posts {
		items = append(items, map[string]interface{}{
			"slug":      p.Slug,
			"title":     p.Title,
			"summary":   p.Summary,
			"date":      p.Date.StartDate,
			"tags":      p.Tags,
			"category":  p.Category,
			"thumbnail": p.Thumbnail,
			"url":       h.posts.PostURL(p.Slug),
		})
	}
	c.Header("X-Feed-Items", strconv.Itoa(len(items)))
	c.JSON(http.StatusOK, gin.H{"posts": items, "total": len(items)})
}

// Join accepts the join form as form data or JSON.
func (h *Handler) Join(c *gin.Context) {
	var a member.Application
	if err := c.ShouldBind(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error submitting form"})
		return
	}

	m, err := h.members.Join(c.Request.Context(), a)
	if err != nil {
		var ve domainerr.ValidationError
		switch {
		case errors.Is(err, member.ErrAlreadyMember):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.As(err, &ve):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error submitting form", "fields": ve.Fields()})
		default:
			log.Printf("[api] join: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error submitting form"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "You have successfully joined Devwrite Africa Community",
		"member":  m,
	})
}

func (h *Handler) SendEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error occured", "error": err.Error()})
		return
	}
	if err := h.members.SendWelcome(req.Email, req.Name); err != nil {
		log.Printf("[api] send email to %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error occured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email sent!"})
}

// PostCopy records that the given code text was copied.
func (h *Handler) PostCopy(c *gin.Context) {
	var req copyRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := h.sessions.For(c.Writer, c.Request)
	sess.RequestCopy(req.Text)
	copyState(c, sess, req.Text)
}

func (h *Handler) GetCopy(c *gin.Context) {
	var req copyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	copyState(c, h.sessions.For(c.Writer, c.Request), req.Text)
}

func copyState(c *gin.Context, sess *markdown.Session, text string) {
	resp := gin.H{"copied": sess.IsCopied(text)}
	if until, ok := sess.Deadline(text); ok {
		resp["until"] = until.Format(time.RFC3339Nano)
	}
	c.JSON(http.StatusOK, resp)
}

// PostWebhook announces a published post. Link wins over slug.
func (h *Handler) PostWebhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	link := req.Link
	if link == "" && req.Slug != "" {
		link = h.posts.PostURL(req.Slug)
	}
	if link == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "link or slug is required"})
		return
	}

	if err := h.notifier.Published(c.Request.Context(), req.Title, link); err != nil {
		log.Printf("[api] webhook: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "failed to send notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
