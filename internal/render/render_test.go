package render

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"devwrite/internal/domain/config"
	"devwrite/internal/domain/content"
	"devwrite/internal/feed"
	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func siteConfig() config.SiteConfig {
	s := config.Default().Site
	s.SiteURL = "https://devwrite.africa"
	return s
}

func mustParse(t *testing.T, b []byte) *html.Node {
	t.Helper()
	n, err := html.Parse(bytes.NewReader(b))
	require.NoError(t, err)
	return n
}

func find(n *html.Node, sel string) []*html.Node {
	return cascadia.MustCompile(sel).MatchAll(n)
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestFeedPage(t *testing.T) {
	r, err := NewTemplateRenderer(t.TempDir(), "default", "/blog")
	require.NoError(t, err)

	out, err := r.RenderFeed(context.Background(), FeedPage{
		Site: siteConfig(),
		Items: []content.PostSummary{
			{Slug: "hooks", Title: "Hooks", Tags: []string{"react"}, Date: content.PostDate{StartDate: "2023-03-10"}},
			{Slug: "channels", Title: "Channels", Date: content.PostDate{StartDate: "2023-05-01"}},
		},
		Criteria:   feed.Criteria{Tag: "react", Category: "Frontend", Order: feed.OrderAsc},
		Categories: []TermStat{{Name: "Frontend", Count: 1}, {Name: "Backend", Count: 1}},
	})
	require.NoError(t, err)
	doc := mustParse(t, out)

	htmlEl := find(doc, "html")
	require.Len(t, htmlEl, 1)
	assert.Equal(t, "light", getAttr(htmlEl[0], "data-theme"))

	links := find(doc, "article.post-card h2 a")
	require.Len(t, links, 2)
	assert.Equal(t, "/blog/hooks", getAttr(links[0], "href"))

	tag := find(doc, "article.post-card .tags a")
	require.Len(t, tag, 1)
	assert.Equal(t, "/blog/?tag=react", getAttr(tag[0], "href"))

	sel := find(doc, `select[name="category"] option[selected]`)
	require.Len(t, sel, 1)
	assert.Equal(t, "Frontend", getAttr(sel[0], "value"))
	order := find(doc, `select[name="order"] option[selected]`)
	require.Len(t, order, 1)
	assert.Equal(t, "asc", getAttr(order[0], "value"))
}

func TestPostPageRendersMarkdown(t *testing.T) {
	cfg := config.Default().Render
	md := NewMarkdownRenderer(cfg)
	res := md.Render([]byte("## Setup Steps\n\n```bash\nnpm i\n```\n"), nil)
	require.Len(t, res.Headings, 1)
	assert.Equal(t, "setup-steps", res.Headings[0].ID)

	r, err := NewTemplateRenderer(t.TempDir(), "default", "")
	require.NoError(t, err)
	out, err := r.RenderPost(context.Background(), PostPage{
		Site:  siteConfig(),
		Meta:  content.PostSummary{Slug: "setup", Title: "Setup", Category: []string{"Tooling"}},
		HTML:  res.HTML,
		TOC:   res.Headings,
		Title: "Setup",
	})
	require.NoError(t, err)
	doc := mustParse(t, out)

	assert.Len(t, find(doc, "h2#setup-steps"), 1)
	toc := find(doc, "nav.toc a")
	require.Len(t, toc, 1)
	assert.Equal(t, "#setup-steps", getAttr(toc[0], "href"))
	assert.Len(t, find(doc, "button.copy-button"), 1)
	cat := find(doc, ".post-meta a")
	require.Len(t, cat, 1)
	assert.Equal(t, "/?category=Tooling", getAttr(cat[0], "href"))
}

func TestThemeOverride(t *testing.T) {
	themes := t.TempDir()
	dir := filepath.Join(themes, "custom", "templates")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "404.tmpl"), []byte(`custom {{.Path}}`), 0o644))

	r, err := NewTemplateRenderer(themes, "custom", "")
	require.NoError(t, err)

	out, err := r.RenderNotFound(context.Background(), NotFoundPage{Site: siteConfig(), Path: "/nope"})
	require.NoError(t, err)
	assert.Equal(t, "custom /nope", string(out))

	// templates the theme lacks come from the built-in one
	out, err = r.RenderJoin(context.Background(), JoinPage{Site: siteConfig(), CareerPaths: DefaultCareerPaths, Experience: DefaultExperience})
	require.NoError(t, err)
	assert.Len(t, find(mustParse(t, out), `form#join-form select[name="career_path"] option`), len(DefaultCareerPaths))

	assert.Error(t, CheckThemeTemplates(dir))
}
