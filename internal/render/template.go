package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"devwrite/internal/domain/content"
	"devwrite/internal/domain/site"
)

//go:embed themes/default
var defaultTheme embed.FS

// DefaultTheme holds the built-in templates and static files.
func DefaultTheme() fs.FS {
	sub, err := fs.Sub(defaultTheme, "themes/default")
	if err != nil {
		panic(err)
	}
	return sub
}

var requiredTemplates = []string{
	"feed.tmpl",
	"post.tmpl",
	"404.tmpl",
	"tags-all.tmpl",
	"categories-all.tmpl",
	"join.tmpl",
}

type TemplateRenderer struct {
	tpl *template.Template
}

// NewTemplateRenderer loads the built-in theme and then any templates found
// in themeDir/themeName/templates, which override built-ins by name.
func NewTemplateRenderer(themeDir, themeName, basePath string) (*TemplateRenderer, error) {
	tpl, err := template.New("").Funcs(templateFuncs(basePath)).ParseFS(DefaultTheme(), "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(themeDir, themeName, "templates")
	if matches, _ := filepath.Glob(filepath.Join(dir, "*.tmpl")); len(matches) > 0 {
		if tpl, err = tpl.ParseFiles(matches...); err != nil {
			return nil, err
		}
	}
	return &TemplateRenderer{tpl: tpl}, nil
}

func templateFuncs(basePath string) template.FuncMap {
	return template.FuncMap{
		"date": func(d content.PostDate, layout string) string {
			t := d.Time()
			if t.IsZero() {
				return d.StartDate
			}
			return t.Format(layout)
		},
		"nowYear": func() int {
			return time.Now().Year()
		},
		"postURL": func(m content.PostSummary) string {
			return site.Route{Kind: site.RoutePost, Slug: m.Slug}.URL(basePath)
		},
		"tagURL": func(tag string) string {
			return site.Route{Kind: site.RouteTag, Key: tag}.URL(basePath)
		},
		"categoryURL": func(cat string) string {
			return site.Route{Kind: site.RouteCategory, Key: cat}.URL(basePath)
		},
		"url": func(kind string) string {
			return site.Route{Kind: site.RouteKind(kind)}.URL(basePath)
		},
		"asset": func(name string) string {
			return basePath + "/static/" + name
		},
		"add": func(a, b int) int { return a + b },
	}
}

func (r *TemplateRenderer) RenderFeed(ctx context.Context, page FeedPage) ([]byte, error) {
	return r.exec("feed.tmpl", page)
}

func (r *TemplateRenderer) RenderPost(ctx context.Context, page PostPage) ([]byte, error) {
	return r.exec("post.tmpl", page)
}

func (r *TemplateRenderer) RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error) {
	return r.exec("404.tmpl", page)
}

func (r *TemplateRenderer) RenderTagsPage(ctx context.Context, page TagsPage) ([]byte, error) {
	return r.exec("tags-all.tmpl", page)
}

func (r *TemplateRenderer) RenderCategoriesPage(ctx context.Context, page CategoriesPage) ([]byte, error) {
	return r.exec("categories-all.tmpl", page)
}

func (r *TemplateRenderer) RenderJoin(ctx context.Context, page JoinPage) ([]byte, error) {
	return r.exec("join.tmpl", page)
}

func (r *TemplateRenderer) exec(name string, data interface{}) ([]byte, error) {
	t := r.tpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CheckThemeTemplates reports the first page template a custom theme is
// missing. Missing templates fall back to the built-in theme, so this is
// advisory.
func CheckThemeTemplates(themeDir string) error {
	for _, name := range requiredTemplates {
		if _, err := os.Stat(filepath.Join(themeDir, name)); err != nil {
			return fmt.Errorf("missing template: %s", name)
		}
	}
	return nil
}
