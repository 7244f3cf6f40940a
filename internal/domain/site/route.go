package site

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

type RouteKind string

const (
	RouteFeed     RouteKind = "feed"
	RoutePost     RouteKind = "post"
	RoutePage     RouteKind = "page"
	RouteTag      RouteKind = "tag"
	RouteCategory RouteKind = "category"
	RouteTags     RouteKind = "tags"
	RouteCats     RouteKind = "categories"
	RouteJoin     RouteKind = "join"
	RouteRSS      RouteKind = "rss"
	RouteNotFound RouteKind = "404"
)

type Route struct {
	Kind    RouteKind
	Slug    string
	Key     string
	OutPath string
}

func (r Route) String() string {
	var parts []string
	parts = append(parts, string(r.Kind))
	if r.Slug != "" {
		parts = append(parts, "slug="+r.Slug)
	}
	if r.Key != "" {
		parts = append(parts, "key="+r.Key)
	}
	if r.OutPath != "" {
		parts = append(parts, "out="+r.OutPath)
	}
	return strings.Join(parts, " ")
}

// URL is the public path of the route below basePath. Tag and category
// routes point at the feed with a query, the way the feed page reads them.
func (r Route) URL(basePath string) string {
	base := strings.TrimSuffix(basePath, "/")
	switch r.Kind {
	case RoutePost, RoutePage:
		return base + "/" + url.PathEscape(r.Slug)
	case RouteTag:
		return fmt.Sprintf("%s/?tag=%s", base, url.QueryEscape(r.Key))
	case RouteCategory:
		return fmt.Sprintf("%s/?category=%s", base, url.QueryEscape(r.Key))
	case RouteTags:
		return base + "/tags"
	case RouteCats:
		return base + "/categories"
	case RouteJoin:
		return base + "/join"
	case RouteRSS:
		return base + "/rss.xml"
	default:
		return path.Clean(base + "/")
	}
}
