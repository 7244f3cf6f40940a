package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"devwrite/internal/domain/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseFrontMatter(t *testing.T) {
	raw := []byte("---\r\ntitle: Hooks in depth\r\ntags: [react, hooks]\r\ncategory: Frontend\r\ndate: 2023-03-10\r\n---\r\n# Body\r\n")
	fm, body, err := ParseFrontMatter(raw)
	require.NoError(t, err)

	assert.Equal(t, "Hooks in depth", fm.Title)
	assert.Equal(t, StringList{"react", "hooks"}, fm.Tags)
	assert.Equal(t, StringList{"Frontend"}, fm.Category)
	assert.Equal(t, "2023-03-10", fm.Date)
	assert.Equal(t, "# Body", string(body))
}

func TestParseFrontMatterEdgeCases(t *testing.T) {
	_, body, err := ParseFrontMatter([]byte("# just markdown\n"))
	assert.ErrorIs(t, err, errNoFrontMatter)
	assert.Equal(t, "# just markdown", string(body))

	fm, body, err := ParseFrontMatter([]byte("---\ntitle: Only meta\n---"))
	require.NoError(t, err)
	assert.Equal(t, "Only meta", fm.Title)
	assert.Empty(t, body)

	_, body, err = ParseFrontMatter([]byte("---\n---\nhello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	_, _, err = ParseFrontMatter([]byte("---\ntitle: never closed\n"))
	assert.ErrorIs(t, err, errInvalidFrontMatter)
}

func TestResolveSlug(t *testing.T) {
	assert.Equal(t, "my-post", ResolveSlug(FrontMatter{Slug: " My Post "}, "x.md"))
	assert.Equal(t, "creme-brulee-in-go", ResolveSlug(FrontMatter{Title: "Crème Brûlée in Go!"}, "x.md"))
	assert.Equal(t, "getting-started", ResolveSlug(FrontMatter{}, "/content/Getting_Started.md"))
	assert.Equal(t, "", ResolveSlug(FrontMatter{Title: "!!!"}, "x.md"))
}

func TestIngest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a-hooks.md", "---\ntitle: Hooks\ndate: 2023-03-10\ntags: [react]\ncategory: [Frontend]\nsummary: All about hooks\n---\nbody\n")
	writeFile(t, dir, "b-draft.md", "---\ntitle: WIP\nstatus: Draft\ndate: 2023-04-01\n---\n")
	writeFile(t, dir, "c-dup.md", "---\ntitle: Hooks\ndate: 2023-05-01\n---\n")
	writeFile(t, dir, "d-about.md", "---\ntitle: About\ntype: Page\ndate: 2022-01-01\n---\n")
	writeFile(t, dir, "notes/e-undated.markdown", "---\ntitle: Undated\n---\n")
	writeFile(t, dir, ".git/ignored.md", "---\ntitle: Ignored\n---\n")
	writeFile(t, dir, "readme.txt", "not markdown")

	posts, warns, err := Ingest(Options{SourceDir: dir})
	require.NoError(t, err)

	var got []string
	for _, p := range posts {
		got = append(got, p.Meta.Slug)
	}
	assert.Equal(t, []string{"hooks", "about", "undated"}, got)

	hooks := posts[0].Meta
	assert.Equal(t, []string{"react"}, hooks.Tags)
	assert.Equal(t, []string{"Frontend"}, hooks.Category)
	assert.Equal(t, "All about hooks", hooks.Summary)
	assert.Equal(t, content.StatusPublic, hooks.Status)
	assert.Len(t, posts[0].Body.ContentHash, 64)

	assert.True(t, posts[1].Meta.IsPage())
	assert.False(t, posts[2].Meta.Date.Time().IsZero())

	var msgs []string
	for _, w := range warns {
		msgs = append(msgs, filepath.Base(w.Path)+": "+w.Msg)
	}
	assert.Contains(t, msgs, "c-dup.md: duplicate slug, skipped: hooks")
	assert.Contains(t, msgs, "e-undated.markdown: using file modification time for date")

	drafts, _, err := Ingest(Options{SourceDir: dir, IncludeDraft: true})
	require.NoError(t, err)
	assert.Len(t, drafts, 4)
}

func TestReadBody(t *testing.T) {
	path := writeFile(t, t.TempDir(), "p.md", "---\ntitle: T\n---\n\n## Hi\n")
	body, err := ReadBody(path)
	require.NoError(t, err)
	assert.Equal(t, "## Hi", string(body))
}
