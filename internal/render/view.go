package render

import (
	"html/template"
	"time"

	"devwrite/internal/domain/config"
	"devwrite/internal/domain/content"
	"devwrite/internal/feed"
	"devwrite/internal/markdown"
)

type PostPage struct {
	Site    config.SiteConfig
	Meta    content.PostSummary
	HTML    template.HTML
	TOC     []markdown.TOCEntry
	Related []content.PostSummary
	IsDraft bool
	Title   string
}

// FeedPage is the post list with the criteria that produced it, so the
// template can keep the filter form populated.
type FeedPage struct {
	Site       config.SiteConfig
	Title      string
	Items      []content.PostSummary
	Criteria   feed.Criteria
	Tags       []TermStat
	Categories []TermStat
	Total      int
	Generated  time.Time
}

type NotFoundPage struct {
	Site  config.SiteConfig
	Path  string
	Title string
}

type TermStat struct {
	Name  string
	Count int
}

type TagsPage struct {
	Site  config.SiteConfig
	Tags  []TermStat
	Total int
	Title string
}

type CategoriesPage struct {
	Site       config.SiteConfig
	Categories []TermStat
	Total      int
	Title      string
}

type JoinPage struct {
	Site  config.SiteConfig
	Title string
	// CareerPaths and Experience fill the form's select boxes.
	CareerPaths []string
	Experience  []string
}

var (
	DefaultCareerPaths = []string{"Frontend", "Backend", "Fullstack", "Mobile", "DevOps", "Data", "Design", "Other"}
	DefaultExperience  = []string{"Beginner", "Intermediate", "Advanced"}
)
