package index

import (
	"path/filepath"
	"testing"

	"devwrite/internal/domain/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(OpenOptions{Path: filepath.Join(t.TempDir(), "idx", "index.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mkPost(slug, date string, status content.PostStatus, typ content.PostType, tags, cats []string) content.Post {
	return content.Post{
		Meta: content.PostSummary{
			Slug:     slug,
			Title:    slug,
			Tags:     tags,
			Category: cats,
			Date:     content.PostDate{StartDate: date},
			Status:   status,
			Type:     typ,
		},
		Body: content.BodyRef{SourcePath: slug + ".md", ContentHash: "h-" + slug},
	}
}

func metaSlugs(ms []content.PostSummary) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Slug)
	}
	return out
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	posts := []content.Post{
		mkPost("hooks", "2023-03-10", content.StatusPublic, content.TypePost, []string{"react"}, []string{"Frontend"}),
		mkPost("channels", "2023-05-01", content.StatusPublic, content.TypePost, []string{"go"}, []string{"Backend"}),
		mkPost("tailwind", "2023-01-20", content.StatusPublic, content.TypePost, []string{"css", "react"}, []string{"Frontend"}),
		mkPost("secret", "2023-06-01", content.StatusHidden, content.TypePost, []string{"react"}, nil),
		mkPost("wip", "2023-07-01", content.StatusDraft, content.TypePost, []string{"react"}, nil),
		mkPost("about", "2020-01-01", content.StatusPublic, content.TypePage, nil, nil),
		mkPost("undated", "", content.StatusPublic, content.TypePost, nil, nil),
	}
	require.NoError(t, s.Rebuild(posts, RebuildOptions{}))
}

func TestListNewestFirstSkipsHiddenDraftsAndPages(t *testing.T) {
	s := openStore(t)
	seed(t, s)

	got, err := s.List(ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"channels", "hooks", "tailwind", "undated"}, metaSlugs(got))

	got, err = s.List(ListOptions{IncludeHidden: true, IncludePages: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"secret", "channels", "hooks", "tailwind", "about", "undated"}, metaSlugs(got))

	page2, err := s.List(ListOptions{Page: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"tailwind", "undated"}, metaSlugs(page2))
}

func TestGetPost(t *testing.T) {
	s := openStore(t)
	seed(t, s)

	p, err := s.GetPost("secret")
	require.NoError(t, err)
	assert.Equal(t, "secret.md", p.Body.SourcePath)
	assert.Equal(t, content.StatusHidden, p.Meta.Status)

	_, err = s.GetPost("wip")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetMeta(" ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTermIndexes(t *testing.T) {
	s := openStore(t)
	seed(t, s)

	got, err := s.ListByTag("react", ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"hooks", "tailwind"}, metaSlugs(got))

	got, err = s.ListByTag("React", ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.ListByCategory("Frontend", ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"hooks", "tailwind"}, metaSlugs(got))

	tags, err := s.TagCounts()
	require.NoError(t, err)
	assert.Equal(t, []TermCount{{"react", 2}, {"css", 1}, {"go", 1}}, tags)

	cats, err := s.CategoryCounts()
	require.NoError(t, err)
	assert.Equal(t, []TermCount{{"Frontend", 2}, {"Backend", 1}}, cats)
}

func TestRebuildReplacesEverything(t *testing.T) {
	s := openStore(t)
	seed(t, s)
	first := s.ContentHash()
	assert.Len(t, first, 64)

	require.NoError(t, s.Rebuild([]content.Post{
		mkPost("only", "2024-01-01", content.StatusPublic, content.TypePost, []string{"go"}, nil),
	}, RebuildOptions{}))

	got, err := s.List(ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, metaSlugs(got))
	_, err = s.GetPost("hooks")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotEqual(t, first, s.ContentHash())

	tags, err := s.TagCounts()
	require.NoError(t, err)
	assert.Equal(t, []TermCount{{"go", 1}}, tags)
}

func TestFreshIndexIsEmpty(t *testing.T) {
	s := openStore(t)

	metas, err := s.List(ListOptions{IncludeHidden: true, IncludePages: true})
	require.NoError(t, err)
	assert.Empty(t, metas)

	tags, err := s.TagCounts()
	require.NoError(t, err)
	assert.Empty(t, tags)

	_, err = s.GetPost("anything")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenMissingPath(t *testing.T) {
	_, err := Open(OpenOptions{})
	assert.Error(t, err)
}
