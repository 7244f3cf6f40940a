package build

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"devwrite/internal/app"
	"devwrite/internal/domain/config"
	"devwrite/internal/domain/site"
	"devwrite/internal/feed"
	"devwrite/internal/index"
	"devwrite/internal/ingest"
	"devwrite/internal/render"
)

type Builder struct {
	Cfg config.Config
}

type Result struct {
	Posts    int
	Pages    int
	Warnings []ingest.Warning
}

// Reindex ingests the source tree into the index at Cfg.Build.IndexPath.
func Reindex(cfg config.Config, st *index.Store) ([]ingest.Warning, int, error) {
	posts, warns, err := ingest.Ingest(ingest.Options{
		SourceDir:    cfg.Build.SourceDir,
		IncludeDraft: cfg.Build.IncludeDraft,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("ingest failed: %w", err)
	}
	if err := st.Rebuild(posts, index.RebuildOptions{
		IncludeDraft: cfg.Build.IncludeDraft,
	}); err != nil {
		return nil, 0, fmt.Errorf("failed to rebuild index: %w", err)
	}
	return warns, len(posts), nil
}

// Run writes the whole site to Cfg.Build.PublicDir.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	st, err := index.Open(index.OpenOptions{Path: b.Cfg.Build.IndexPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer st.Close()

	warns, _, err := Reindex(b.Cfg, st)
	if err != nil {
		return nil, err
	}

	s, err := app.NewSite(b.Cfg, st)
	if err != nil {
		return nil, err
	}

	outDir := b.Cfg.Build.PublicDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir public: %w", err)
	}

	res := &Result{Warnings: warns}
	if err := b.buildAll(ctx, s, outDir, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (b *Builder) buildAll(ctx context.Context, s *app.Site, outDir string, res *Result) error {
	var rb app.RouteBuilder

	for _, r := range rb.BuildSiteRoutes() {
		data, err := b.renderRoute(ctx, s, r)
		if err != nil {
			return fmt.Errorf("build %s: %w", r.Kind, err)
		}
		if err := writeFile(outDir, r.OutPath, data); err != nil {
			return err
		}
	}

	metas, err := s.Index.List(index.ListOptions{IncludeHidden: true, IncludePages: true})
	if err != nil {
		return fmt.Errorf("build posts: %w", err)
	}
	for _, r := range rb.BuildPostRoutes(metas) {
		// the static build carries no copy state
		data, _, err := s.PostPage(ctx, r.Slug, nil)
		if err != nil {
			return fmt.Errorf("build posts: %w", err)
		}
		if err := writeFile(outDir, r.OutPath, data); err != nil {
			return err
		}
		if r.Kind == site.RoutePage {
			res.Pages++
		} else {
			res.Posts++
		}
	}

	if err := b.copyStaticAssets(outDir); err != nil {
		return fmt.Errorf("copy static assets: %w", err)
	}
	log.Printf("[build] wrote %d posts, %d pages to %s", res.Posts, res.Pages, outDir)
	return nil
}

func (b *Builder) renderRoute(ctx context.Context, s *app.Site, r site.Route) ([]byte, error) {
	switch r.Kind {
	case site.RouteFeed:
		return s.FeedPage(ctx, feed.Criteria{})
	case site.RouteTags:
		return s.TagsPage(ctx)
	case site.RouteCats:
		return s.CategoriesPage(ctx)
	case site.RouteJoin:
		return s.JoinPage(ctx)
	case site.RouteRSS:
		return s.RSS()
	case site.RouteNotFound:
		return s.NotFoundPage(ctx, "")
	}
	return nil, fmt.Errorf("no renderer for route %s", r)
}

func writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

// copyStaticAssets writes the built-in static files and then the theme's
// own, so a theme can replace any of them.
func (b *Builder) copyStaticAssets(outDir string) error {
	dst := filepath.Join(outDir, "static")
	if err := copyTree(render.DefaultTheme(), "static", dst); err != nil {
		return err
	}

	src := filepath.Join(b.Cfg.Build.ThemeDir, b.Cfg.Site.Theme, "static")
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}
	return copyTree(os.DirFS(src), ".", dst)
}

func copyTree(fsys fs.FS, root, dst string) error {
	return fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		in, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		return writeFile(dst, rel, in)
	})
}
