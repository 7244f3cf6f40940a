package app

import (
	"path/filepath"

	"devwrite/internal/domain/content"
	"devwrite/internal/domain/site"
)

// RouteBuilder maps site pages onto files of the static build.
type RouteBuilder struct{}

// BuildPostRoutes places every post and page at /<slug>/index.html, which
// is what /<slug> resolves to on a static host.
func (rb *RouteBuilder) BuildPostRoutes(metas []content.PostSummary) []site.Route {
	routes := make([]site.Route, 0, len(metas))
	for _, m := range metas {
		kind := site.RoutePost
		if m.IsPage() {
			kind = site.RoutePage
		}
		routes = append(routes, site.Route{
			Kind:    kind,
			Slug:    m.Slug,
			OutPath: filepath.Join(safePathSegment(m.Slug), "index.html"),
		})
	}
	return routes
}

// BuildSiteRoutes lists the fixed pages.
func (rb *RouteBuilder) BuildSiteRoutes() []site.Route {
	return []site.Route{
		{Kind: site.RouteFeed, OutPath: "index.html"},
		{Kind: site.RouteTags, OutPath: filepath.Join("tags", "index.html")},
		{Kind: site.RouteCats, OutPath: filepath.Join("categories", "index.html")},
		{Kind: site.RouteJoin, OutPath: filepath.Join("join", "index.html")},
		{Kind: site.RouteRSS, OutPath: "rss.xml"},
		{Kind: site.RouteNotFound, OutPath: "404.html"},
	}
}

func safePathSegment(s string) string {
	if s == "" || s == "." || s == ".." {
		return "untitled"
	}
	out := []rune(s)
	for i, r := range out {
		if r == '/' || r == '\\' || r == 0 {
			out[i] = '-'
		}
	}
	return string(out)
}
