package app

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	domainbuild "devwrite/internal/domain/build"
	"devwrite/internal/domain/config"
	"devwrite/internal/domain/content"
	"devwrite/internal/domain/site"
	"devwrite/internal/feed"
	"devwrite/internal/index"
	"devwrite/internal/ingest"
	"devwrite/internal/markdown"
	"devwrite/internal/render"
)

// Site renders every page from the index. The static build and the live
// server both go through it.
type Site struct {
	Cfg   config.Config
	Index *index.Store
	MD    *render.MarkdownRenderer
	Tpl   render.Renderer
}

func NewSite(cfg config.Config, st *index.Store) (*Site, error) {
	tpl, err := render.NewTemplateRenderer(cfg.Build.ThemeDir, cfg.Site.Theme, cfg.Build.BasePath)
	if err != nil {
		return nil, fmt.Errorf("load themes(%s): %w", cfg.Build.ThemeDir, err)
	}
	return &Site{
		Cfg:   cfg,
		Index: st,
		MD:    render.NewMarkdownRenderer(cfg.Render),
		Tpl:   tpl,
	}, nil
}

// Criteria fills unset fields from the feed configuration.
func (s *Site) Criteria(c feed.Criteria) feed.Criteria {
	if c.Category == "" {
		c.Category = s.Cfg.Feed.DefaultCategory
	}
	if c.Order == "" {
		c.Order = feed.Order(s.Cfg.Feed.DefaultOrder)
	}
	return c
}

// Posts is the filtered feed.
func (s *Site) Posts(c feed.Criteria) ([]content.PostSummary, error) {
	all, err := s.Index.List(index.ListOptions{})
	if err != nil {
		return nil, err
	}
	c = s.Criteria(c)
	// the configured catch-all category means no category filter
	if c.Category == s.Cfg.Feed.DefaultCategory {
		c.Category = feed.DefaultCategory
	}
	return feed.Filter(all, c), nil
}

func (s *Site) FeedPage(ctx context.Context, c feed.Criteria) ([]byte, error) {
	posts, err := s.Posts(c)
	if err != nil {
		return nil, err
	}
	tags, err := s.Index.TagCounts()
	if err != nil {
		return nil, err
	}
	cats, err := s.Index.CategoryCounts()
	if err != nil {
		return nil, err
	}
	return s.Tpl.RenderFeed(ctx, render.FeedPage{
		Site:       s.Cfg.Site,
		Items:      posts,
		Criteria:   s.Criteria(c),
		Tags:       termStats(tags),
		Categories: termStats(cats),
		Total:      len(posts),
		Generated:  s.Cfg.Build.Now,
	})
}

// PostPage renders one post or page as sess sees it. sess may be nil. The
// fingerprint identifies the output for caching.
func (s *Site) PostPage(ctx context.Context, slug string, sess *markdown.Session) ([]byte, domainbuild.Fingerprint, error) {
	var fp domainbuild.Fingerprint
	p, err := s.Index.GetPost(slug)
	if err != nil {
		return nil, fp, err
	}
	body, err := ingest.ReadBody(p.Body.SourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fp, index.ErrNotFound
		}
		return nil, fp, fmt.Errorf("read post source(%s): %w", p.Body.SourcePath, err)
	}
	res := s.MD.Render(body, sess)

	related, err := s.Related(p.Meta, 3)
	if err != nil {
		return nil, fp, err
	}
	out, err := s.Tpl.RenderPost(ctx, render.PostPage{
		Site:    s.Cfg.Site,
		Meta:    p.Meta,
		HTML:    res.HTML,
		TOC:     res.Headings,
		Related: related,
		IsDraft: p.Meta.Status == content.StatusDraft,
		Title:   p.Meta.Title,
	})
	if err != nil {
		return nil, fp, fmt.Errorf("render post(%s): %w", slug, err)
	}

	fp = domainbuild.Fingerprint{
		ContentHash:  p.Body.ContentHash,
		ThemeHash:    domainbuild.HashString(s.Cfg.Site.Theme),
		ConfigHash:   domainbuild.HashString(fmt.Sprintf("%+v|%+v", s.Cfg.Site, s.Cfg.Render)),
		RendererHash: domainbuild.HashString(s.MD.Version()),
		OutputHash:   domainbuild.HashString(string(out)),
	}
	fp.ComputeRenderHash()
	return out, fp, nil
}

// Related lists public posts sharing a tag with m, newest first.
func (s *Site) Related(m content.PostSummary, limit int) ([]content.PostSummary, error) {
	if len(m.Tags) == 0 || m.IsPage() {
		return nil, nil
	}
	all, err := s.Index.List(index.ListOptions{})
	if err != nil {
		return nil, err
	}
	var out []content.PostSummary
	for _, o := range all {
		if o.Slug == m.Slug {
			continue
		}
		if slices.ContainsFunc(o.Tags, func(t string) bool { return slices.Contains(m.Tags, t) }) {
			out = append(out, o)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Site) TagsPage(ctx context.Context) ([]byte, error) {
	tags, err := s.Index.TagCounts()
	if err != nil {
		return nil, err
	}
	return s.Tpl.RenderTagsPage(ctx, render.TagsPage{
		Site:  s.Cfg.Site,
		Tags:  termStats(tags),
		Total: len(tags),
		Title: "Tags",
	})
}

func (s *Site) CategoriesPage(ctx context.Context) ([]byte, error) {
	cats, err := s.Index.CategoryCounts()
	if err != nil {
		return nil, err
	}
	return s.Tpl.RenderCategoriesPage(ctx, render.CategoriesPage{
		Site:       s.Cfg.Site,
		Categories: termStats(cats),
		Total:      len(cats),
		Title:      "Categories",
	})
}

func (s *Site) JoinPage(ctx context.Context) ([]byte, error) {
	return s.Tpl.RenderJoin(ctx, render.JoinPage{
		Site:        s.Cfg.Site,
		Title:       "Join",
		CareerPaths: render.DefaultCareerPaths,
		Experience:  render.DefaultExperience,
	})
}

func (s *Site) NotFoundPage(ctx context.Context, path string) ([]byte, error) {
	return s.Tpl.RenderNotFound(ctx, render.NotFoundPage{
		Site:  s.Cfg.Site,
		Path:  path,
		Title: "Not found",
	})
}

// RSS is the newest posts as RSS 2.0.
func (s *Site) RSS() ([]byte, error) {
	posts, err := s.Posts(feed.Criteria{Order: feed.OrderDesc})
	if err != nil {
		return nil, err
	}
	g := feed.NewGenerator(s.Cfg.Feed.RSSItems, s.PostURL)
	return g.Run(feed.Channel{
		Title:       s.Cfg.Site.Title,
		Link:        s.siteURL() + site.Route{Kind: site.RouteFeed}.URL(s.Cfg.Build.BasePath),
		Description: s.Cfg.Site.Description,
		Language:    s.Cfg.Site.Language,
		SelfURL:     s.siteURL() + site.Route{Kind: site.RouteRSS}.URL(s.Cfg.Build.BasePath),
		Generator:   "devwrite",
	}, posts, s.Cfg.Build.Now), nil
}

// PostURL is the absolute URL of a post.
func (s *Site) PostURL(slug string) string {
	return s.siteURL() + site.Route{Kind: site.RoutePost, Slug: slug}.URL(s.Cfg.Build.BasePath)
}

func (s *Site) siteURL() string {
	return strings.TrimSuffix(s.Cfg.Site.SiteURL, "/")
}

func termStats(in []index.TermCount) []render.TermStat {
	out := make([]render.TermStat, 0, len(in))
	for _, t := range in {
		out = append(out, render.TermStat{Name: t.Name, Count: t.Count})
	}
	return out
}
