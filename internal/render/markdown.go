package render

import (
	"html/template"

	"devwrite/internal/domain/config"
	"devwrite/internal/markdown"
	"github.com/microcosm-cc/bluemonday"
)

// MarkdownRenderer renders post bodies for pages.
type MarkdownRenderer struct {
	p *markdown.Pipeline
}

func NewMarkdownRenderer(cfg config.RenderConfig) *MarkdownRenderer {
	opts := []markdown.Option{
		markdown.WithHighlighter(markdown.NewChromaHighlighter(cfg.CodeStyle)),
		markdown.WithEmbedSize(cfg.ImageWidth, cfg.ImageHeight),
	}
	if cfg.Sanitize {
		opts = append(opts, markdown.WithSanitizer(bluemonday.UGCPolicy()))
	}
	return &MarkdownRenderer{p: markdown.New(opts...)}
}

func (r *MarkdownRenderer) Pipeline() *markdown.Pipeline { return r.p }

// Version changes whenever rendered output for the same input may change.
func (r *MarkdownRenderer) Version() string { return markdown.Version }

type MarkdownResult struct {
	HTML     template.HTML
	Headings []markdown.TOCEntry
}

// Render converts src for a reader's session. sess is nil for output
// without copy state, such as the static build.
func (r *MarkdownRenderer) Render(src []byte, sess *markdown.Session) MarkdownResult {
	var doc *markdown.Document
	if sess != nil {
		doc = sess.Render(src)
	} else {
		doc = r.p.Render(src, nil)
	}
	return MarkdownResult{
		HTML:     template.HTML(markdown.RenderHTML(doc)),
		Headings: doc.Headings,
	}
}
