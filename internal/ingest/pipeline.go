package ingest

import (
	"devwrite/internal/domain/content"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

type Warning struct {
	Path string
	Msg  string
}

type Result struct {
	Post  content.Post
	Warns []Warning
	Skip  bool
	Err   error
}

type Options struct {
	SourceDir    string
	IncludeDraft bool
}

// Ingest reads every markdown file below opts.SourceDir into posts. Files
// that cannot be used are skipped with a warning; only I/O errors fail the
// whole run. Posts come back in source path order.
func Ingest(opts Options) ([]content.Post, []Warning, error) {
	files, err := DiscoverSource(opts.SourceDir)
	if err != nil {
		return nil, nil, err
	}

	workers := runtime.GOMAXPROCS(0)
	jobs := make(chan SourceFile)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sf := range jobs {
				results <- readPost(sf, opts)
			}
		}()
	}

	go func() {
		for _, f := range files {
			jobs <- f
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var (
		out      []content.Post
		warns    []Warning
		firstErr error
	)
	// drain everything so no worker blocks on a send
	for r := range results {
		if r.Err != nil {
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		warns = append(warns, r.Warns...)
		if !r.Skip {
			out = append(out, r.Post)
		}
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Body.SourcePath < out[j].Body.SourcePath })
	seen := make(map[string]struct{}, len(out))
	filtered := make([]content.Post, 0, len(out))
	for _, p := range out {
		if _, ok := seen[p.Meta.Slug]; ok {
			warns = append(warns, Warning{Path: p.Body.SourcePath, Msg: "duplicate slug, skipped: " + p.Meta.Slug})
			continue
		}
		seen[p.Meta.Slug] = struct{}{}
		filtered = append(filtered, p)
	}
	sort.SliceStable(warns, func(i, j int) bool { return warns[i].Path < warns[j].Path })
	return filtered, warns, nil
}

func readPost(sf SourceFile, opts Options) Result {
	st, err := os.Stat(sf.Path)
	if err != nil {
		return Result{Err: err}
	}
	raw, err := os.ReadFile(sf.Path)
	if err != nil {
		return Result{Err: err}
	}

	fm, _, fmErr := ParseFrontMatter(raw)
	var warns []Warning
	if fmErr != nil && fmErr != errNoFrontMatter {
		warns = append(warns, Warning{
			Path: sf.Path,
			Msg:  "failed to parse front matter: " + fmErr.Error(),
		})
		return Result{Warns: warns, Skip: true}
	}

	slug := ResolveSlug(fm, sf.Path)
	if slug == "" {
		warns = append(warns, Warning{Path: sf.Path, Msg: "empty slug"})
		return Result{Warns: warns, Skip: true}
	}

	meta := content.PostSummary{
		Slug:      slug,
		Title:     fm.Title,
		Summary:   fm.Summary,
		Tags:      fm.Tags,
		Category:  fm.Category,
		Date:      content.PostDate{StartDate: fm.Date},
		Type:      content.PostType(fm.Type),
		Status:    content.PostStatus(fm.Status),
		Thumbnail: fm.Thumbnail,
		Author:    fm.Author,
	}
	meta.Normalize()

	if meta.Status == content.StatusDraft && !opts.IncludeDraft {
		return Result{Skip: true}
	}
	if meta.Date.StartDate == "" || meta.Date.Time().IsZero() {
		if meta.Date.StartDate != "" {
			warns = append(warns, Warning{Path: sf.Path, Msg: "unparseable date " + meta.Date.StartDate})
		}
		meta.Date.StartDate = st.ModTime().UTC().Format(time.RFC3339)
		warns = append(warns, Warning{Path: sf.Path, Msg: "using file modification time for date"})
	}
	if strings.TrimSpace(meta.Title) == "" {
		warns = append(warns, Warning{Path: sf.Path, Msg: "title is empty"})
	}

	return Result{
		Post: content.Post{
			Meta: meta,
			Body: content.BodyRef{
				SourcePath:  sf.Path,
				ContentHash: HashBytes(raw),
			},
		},
		Warns: warns,
	}
}

// ReadBody returns the markdown of a post without its front matter.
func ReadBody(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	_, body, fmErr := ParseFrontMatter(raw)
	if fmErr == errNoFrontMatter {
		return body, nil
	}
	if fmErr != nil {
		return nil, fmErr
	}
	return body, nil
}
