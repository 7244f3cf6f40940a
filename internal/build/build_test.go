package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"devwrite/internal/domain/config"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Site.SiteURL = "https://devwrite.africa/"
	cfg.Build.SourceDir = filepath.Join(root, "content")
	cfg.Build.PublicDir = filepath.Join(root, "public")
	cfg.Build.ThemeDir = filepath.Join(root, "themes")
	cfg.Build.IndexPath = filepath.Join(root, ".devwrite", "index.db")

	write := func(name, body string) {
		path := filepath.Join(cfg.Build.SourceDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write("hooks.md", "---\ntitle: Hooks\ndate: 2023-03-10\ntags: [react]\n---\n# Intro\n\n```tsx\nconst a = 1\n```\n")
	write("channels.md", "---\ntitle: Channels\ndate: 2023-05-01\ntags: [go]\n---\nbody\n")
	write("about.md", "---\ntitle: About\ntype: Page\n---\nWho we are\n")
	write("draft.md", "---\ntitle: Draft\nstatus: Draft\ndate: 2023-06-01\n---\n")
	return cfg
}

func TestBuilderWritesSite(t *testing.T) {
	cfg := testConfig(t)
	res, err := (&Builder{Cfg: cfg}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Posts)
	assert.Equal(t, 1, res.Pages)

	out := cfg.Build.PublicDir
	for _, rel := range []string{
		"index.html",
		"hooks/index.html",
		"channels/index.html",
		"about/index.html",
		"tags/index.html",
		"categories/index.html",
		"join/index.html",
		"404.html",
		"rss.xml",
		"static/copy.js",
		"static/style.css",
	} {
		assert.FileExists(t, filepath.Join(out, rel))
	}
	assert.NoFileExists(t, filepath.Join(out, "draft", "index.html"))

	post, err := os.ReadFile(filepath.Join(out, "hooks", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(post), `id="intro"`)
	assert.Contains(t, string(post), `class="copy-button"`)

	raw, err := os.ReadFile(filepath.Join(out, "rss.xml"))
	require.NoError(t, err)
	f, err := gofeed.NewParser().ParseString(string(raw))
	require.NoError(t, err)
	require.Len(t, f.Items, 2)
	assert.Equal(t, "https://devwrite.africa/channels", f.Items[0].Link)
}

func TestThemeStaticOverridesBuiltin(t *testing.T) {
	cfg := testConfig(t)
	static := filepath.Join(cfg.Build.ThemeDir, cfg.Site.Theme, "static")
	require.NoError(t, os.MkdirAll(static, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "style.css"), []byte("body{}"), 0o644))

	_, err := (&Builder{Cfg: cfg}).Run(context.Background())
	require.NoError(t, err)

	css, err := os.ReadFile(filepath.Join(cfg.Build.PublicDir, "static", "style.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(css))
}
