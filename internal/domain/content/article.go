package content

import (
	"strings"
	"time"
)

type PostType string

const (
	TypePost PostType = "Post"
	TypePage PostType = "Page"
)

type PostStatus string

const (
	StatusPublic PostStatus = "Public"
	StatusDraft  PostStatus = "Draft"
	StatusHidden PostStatus = "Hidden"
)

// PostDate keeps the publication date the way authors wrote it. Feeds parse
// it on demand.
type PostDate struct {
	StartDate string `json:"start_date"`
}

var dateLayouts = []string{
	time.RFC3339,
	time.DateOnly,
	"2006-01-02 15:04",
	time.DateTime,
}

// Time parses StartDate. Date-only values are midnight UTC. An empty or
// unparseable value yields the zero time.
func (d PostDate) Time() time.Time {
	s := strings.TrimSpace(d.StartDate)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type PostSummary struct {
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Tags      []string   `json:"tags"`
	Category  []string   `json:"category"`
	Date      PostDate   `json:"date"`
	Type      PostType   `json:"type"`
	Status    PostStatus `json:"status"`
	Thumbnail string     `json:"thumbnail"`
	Author    string     `json:"author"`
}

func (p PostSummary) IsPublic() bool { return p.Status == StatusPublic }
func (p PostSummary) IsPage() bool   { return p.Type == TypePage }

type Heading struct {
	Level int
	ID    string
	Text  string
}

type BodyRef struct {
	SourcePath  string
	ContentHash string
}

type Post struct {
	Meta PostSummary
	Body BodyRef
}

func (m *PostSummary) Normalize() {
	m.Title = strings.TrimSpace(m.Title)
	m.Slug = strings.TrimSpace(m.Slug)
	m.Summary = strings.TrimSpace(m.Summary)
	m.Author = strings.TrimSpace(m.Author)
	m.Thumbnail = strings.TrimSpace(m.Thumbnail)
	m.Date.StartDate = strings.TrimSpace(m.Date.StartDate)

	// tags and categories are matched exactly by the feed, so only blanks
	// and duplicates go; case is the author's
	m.Tags = normalizeStrings(m.Tags)
	m.Category = normalizeStrings(m.Category)

	switch m.Type {
	case TypePost, TypePage:
	default:
		m.Type = TypePost
	}
	switch m.Status {
	case StatusPublic, StatusDraft, StatusHidden:
	default:
		m.Status = StatusPublic
	}
}

func normalizeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
