package markdown

import (
	"bytes"
	"log"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Version identifies the rendering rules. It feeds build fingerprints, so
// bump it when output changes.
const Version = "devwrite-markdown/2"

type handler func(p *Pipeline, st *renderState, n ast.Node) Node

// Pipeline turns markdown into a rendered tree. It holds no per-render
// state and is safe for concurrent use.
type Pipeline struct {
	md        goldmark.Markdown
	hl        Highlighter
	sanitizer *bluemonday.Policy
	width     int
	height    int
	handlers  map[ast.NodeKind]handler
}

type Option func(*Pipeline)

func WithHighlighter(h Highlighter) Option {
	return func(p *Pipeline) { p.hl = h }
}

// WithSanitizer filters raw HTML from documents through policy and drops
// javascript:, vbscript:, file: and non-image data: destinations from
// links and images. Without it content is trusted and passed through.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(p *Pipeline) { p.sanitizer = policy }
}

// WithEmbedSize sets the display size of bare image embeds.
func WithEmbedSize(width, height int) Option {
	return func(p *Pipeline) {
		if width > 0 && height > 0 {
			p.width, p.height = width, height
		}
	}
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		// no linkify: it would split the tweet sentinel into a link
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.TaskList,
			),
		),
		width:  DefaultEmbedWidth,
		height: DefaultEmbedHeight,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.hl == nil {
		p.hl = NewChromaHighlighter("material")
	}
	p.handlers = map[ast.NodeKind]handler{
		ast.KindDocument:        renderDocument,
		ast.KindHeading:         renderHeading,
		ast.KindParagraph:       renderParagraph,
		ast.KindList:            renderList,
		ast.KindListItem:        renderListItem,
		ast.KindCodeSpan:        renderCodeSpan,
		ast.KindFencedCodeBlock: renderFencedCode,
		ast.KindCodeBlock:       renderIndentedCode,
		ast.KindImage:           renderImage,
		ast.KindRawHTML:         renderRawInline,
		ast.KindHTMLBlock:       renderHTMLBlock,
		ast.KindText:            renderText,
		ast.KindString:          renderString,
		ast.KindLink:            renderLink,
		ast.KindAutoLink:        renderAutoLink,
		ast.KindEmphasis:        renderEmphasis,
		east.KindTable:          renderTable,
		east.KindTaskCheckBox:   renderTaskCheckBox,
	}
	return p
}

// Parse runs the markdown parser only.
func (p *Pipeline) Parse(src []byte) ast.Node {
	return p.md.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))
}

// Render parses src and converts it. copies supplies the copy flags of code
// blocks and may be nil. Rendering never fails: broken nodes degrade to
// placeholders or are dropped.
func (p *Pipeline) Render(src []byte, copies *CopyTracker) *Document {
	st := &renderState{src: src, copies: copies}
	doc, ok := p.convert(st, p.Parse(src)).(*Document)
	if !ok {
		doc = &Document{}
	}
	doc.Headings = st.headings
	return doc
}

// Session is one reader's view of rendered documents: it owns the copy
// state that code block buttons reflect.
type Session struct {
	*CopyTracker
	p *Pipeline
}

func (p *Pipeline) NewSession(copies *CopyTracker) *Session {
	if copies == nil {
		copies = NewCopyTracker(nil, nil, DefaultCopyReset)
	}
	return &Session{CopyTracker: copies, p: p}
}

func (s *Session) Render(src []byte) *Document {
	return s.p.Render(src, s.CopyTracker)
}

type renderState struct {
	src      []byte
	copies   *CopyTracker
	headings []TOCEntry
}

func (p *Pipeline) convert(st *renderState, n ast.Node) Node {
	if h, ok := p.handlers[n.Kind()]; ok {
		return h(p, st, n)
	}
	return p.fallback(st, n)
}

func (p *Pipeline) convertChildren(st *renderState, n ast.Node) []Node {
	var out []Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if r := p.convert(st, c); r != nil {
			out = append(out, r)
		}
	}
	return out
}

// structuralTags is the default rendering of kinds without a handler.
var structuralTags = map[ast.NodeKind]string{
	ast.KindBlockquote:     "blockquote",
	ast.KindThematicBreak:  "hr",
	east.KindStrikethrough: "del",
}

func (p *Pipeline) fallback(st *renderState, n ast.Node) Node {
	tag := structuralTags[n.Kind()]
	if tag == "hr" {
		return &Element{Tag: tag, Void: true}
	}
	return &Element{Tag: tag, Children: p.convertChildren(st, n)}
}

func renderDocument(p *Pipeline, st *renderState, n ast.Node) Node {
	return &Document{Children: p.convertChildren(st, n)}
}

func renderHeading(p *Pipeline, st *renderState, n ast.Node) Node {
	h := n.(*ast.Heading)
	label := plainText(h, st.src)
	id := Slugify(label)
	st.headings = append(st.headings, TOCEntry{Level: h.Level, ID: id, Text: label})
	return &Heading{
		Level:    h.Level,
		ID:       id,
		Style:    headingStyle(h.Level),
		Children: p.convertChildren(st, n),
	}
}

func renderParagraph(p *Pipeline, st *renderState, n ast.Node) Node {
	if str, ok := collapsedText(n, st.src); ok {
		if embed, ok := RewriteEmbed(str, p.width, p.height); ok {
			return embed
		}
	}
	return &Paragraph{
		Class:    paragraphClass,
		Style:    paragraphStyle,
		Children: p.convertChildren(st, n),
	}
}

func renderList(p *Pipeline, st *renderState, n ast.Node) Node {
	l := n.(*ast.List)
	style := unorderedListStyle
	if l.IsOrdered() {
		style = orderedListStyle
	}
	return &List{
		Ordered:  l.IsOrdered(),
		Start:    l.Start,
		Style:    style,
		Children: p.convertChildren(st, n),
	}
}

func renderListItem(p *Pipeline, st *renderState, n ast.Node) Node {
	return &ListItem{
		Class:    listItemClass,
		Style:    listItemStyle,
		Children: p.convertChildren(st, n),
	}
}

func renderCodeSpan(p *Pipeline, st *renderState, n ast.Node) Node {
	return p.code(st, plainText(n, st.src), "", false)
}

func renderFencedCode(p *Pipeline, st *renderState, n ast.Node) Node {
	fc := n.(*ast.FencedCodeBlock)
	var class string
	if fc.Info != nil {
		class = languageClassName(string(fc.Info.Segment.Value(st.src)))
	}
	return p.code(st, linesText(fc, st.src), class, true)
}

func renderIndentedCode(p *Pipeline, st *renderState, n ast.Node) Node {
	return p.code(st, linesText(n, st.src), "", true)
}

// code classifies a code span or block. A block that classifies as inline
// keeps its line breaks inside a pre element.
func (p *Pipeline) code(st *renderState, body, class string, block bool) Node {
	c := Classify(body, class)
	if c.Inline {
		inline := &InlineCode{Text: body, Style: inlineCodeStyle}
		if block {
			return &Element{Tag: "pre", Children: []Node{inline}}
		}
		return inline
	}
	out, err := p.hl.Highlight(c.Code, c.Language)
	if err != nil {
		log.Printf("[markdown] highlight %s: %v", c.Language, err)
		out = plainCode(c.Code, c.Language)
	}
	cb := &CodeBlock{
		Language: c.Language,
		Code:     c.Code,
		HTML:     out,
	}
	if st.copies != nil {
		cb.Copied = st.copies.IsCopied(c.Code)
	}
	return cb
}

func renderImage(p *Pipeline, st *renderState, n ast.Node) Node {
	img := n.(*ast.Image)
	src := strings.TrimSpace(string(img.Destination))
	if src == "" || !p.safeURL(src) {
		return nil
	}
	return &Image{
		Src:   src,
		Alt:   plainText(img, st.src),
		Title: string(img.Title),
		Class: imageClass,
		Style: imageStyle,
	}
}

func renderRawInline(p *Pipeline, st *renderState, n ast.Node) Node {
	raw := n.(*ast.RawHTML)
	var b bytes.Buffer
	for i := 0; i < raw.Segments.Len(); i++ {
		seg := raw.Segments.At(i)
		b.Write(seg.Value(st.src))
	}
	return p.rawHTML(b.String())
}

func renderHTMLBlock(p *Pipeline, st *renderState, n ast.Node) Node {
	hb := n.(*ast.HTMLBlock)
	s := linesText(hb, st.src)
	if hb.HasClosure() {
		s += string(hb.ClosureLine.Value(st.src))
	}
	return p.rawHTML(s)
}

func (p *Pipeline) rawHTML(s string) Node {
	if p.sanitizer != nil {
		s = p.sanitizer.Sanitize(s)
	}
	return &RawHTML{HTML: s}
}

func renderText(p *Pipeline, st *renderState, n ast.Node) Node {
	t := n.(*ast.Text)
	v := string(textValue(t, st.src))
	switch {
	case t.HardLineBreak():
		return &Element{Children: []Node{&Text{Value: v}, &Element{Tag: "br", Void: true}}}
	case t.SoftLineBreak():
		v += "\n"
	}
	return &Text{Value: v}
}

func renderString(p *Pipeline, st *renderState, n ast.Node) Node {
	return &Text{Value: string(n.(*ast.String).Value)}
}

func renderLink(p *Pipeline, st *renderState, n ast.Node) Node {
	l := n.(*ast.Link)
	var attrs []Attr
	if dest := string(l.Destination); p.safeURL(dest) {
		attrs = append(attrs, Attr{"href", dest})
	}
	if len(l.Title) > 0 {
		attrs = append(attrs, Attr{"title", string(l.Title)})
	}
	return &Element{Tag: "a", Attrs: attrs, Children: p.convertChildren(st, n)}
}

func renderAutoLink(p *Pipeline, st *renderState, n ast.Node) Node {
	l := n.(*ast.AutoLink)
	href := string(l.URL(st.src))
	if l.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(href), "mailto:") {
		href = "mailto:" + href
	}
	var attrs []Attr
	if p.safeURL(href) {
		attrs = []Attr{{"href", href}}
	}
	return &Element{
		Tag:      "a",
		Attrs:    attrs,
		Children: []Node{&Text{Value: string(l.Label(st.src))}},
	}
}

// safeURL reports whether dest may be written into an href or src. Only
// a configured sanitizer rejects anything.
func (p *Pipeline) safeURL(dest string) bool {
	return p.sanitizer == nil || !gmhtml.IsDangerousURL([]byte(dest))
}

func renderEmphasis(p *Pipeline, st *renderState, n ast.Node) Node {
	tag := "em"
	if n.(*ast.Emphasis).Level >= 2 {
		tag = "strong"
	}
	return &Element{Tag: tag, Children: p.convertChildren(st, n)}
}

func renderTable(p *Pipeline, st *renderState, n ast.Node) Node {
	table := &Element{Tag: "table"}
	var body *Element
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.Kind() {
		case east.KindTableHeader:
			row := &Element{Tag: "tr", Children: p.tableCells(st, c, "th")}
			table.Children = append(table.Children, &Element{Tag: "thead", Children: []Node{row}})
		case east.KindTableRow:
			if body == nil {
				body = &Element{Tag: "tbody"}
				table.Children = append(table.Children, body)
			}
			body.Children = append(body.Children, &Element{Tag: "tr", Children: p.tableCells(st, c, "td")})
		}
	}
	return table
}

func (p *Pipeline) tableCells(st *renderState, row ast.Node, tag string) []Node {
	var cells []Node
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		cell, ok := c.(*east.TableCell)
		if !ok {
			continue
		}
		var attrs []Attr
		if cell.Alignment != east.AlignNone {
			attrs = append(attrs, Attr{"style", "text-align: " + cell.Alignment.String()})
		}
		cells = append(cells, &Element{Tag: tag, Attrs: attrs, Children: p.convertChildren(st, c)})
	}
	return cells
}

func renderTaskCheckBox(p *Pipeline, st *renderState, n ast.Node) Node {
	attrs := []Attr{{"type", "checkbox"}, {"disabled", ""}}
	if n.(*east.TaskCheckBox).IsChecked {
		attrs = append(attrs, Attr{"checked", ""})
	}
	return &Element{Tag: "input", Attrs: attrs, Void: true}
}

// collapsedText is the literal text of a node whose children are all plain
// text. ok is false for mixed inline content.
func collapsedText(n ast.Node, src []byte) (string, bool) {
	if n.FirstChild() == nil {
		return "", false
	}
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(textValue(t, src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			return "", false
		}
	}
	return b.String(), true
}

// plainText flattens the text of every descendant of n.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || c == n {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(textValue(t, src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.Label(src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// textValue is the displayed text of a segment, with backslash escapes and
// character references resolved. Raw segments, as in code spans, are kept
// verbatim.
func textValue(t *ast.Text, src []byte) []byte {
	v := t.Segment.Value(src)
	if t.IsRaw() {
		return v
	}
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	return util.ResolveEntityNames(v)
}

func linesText(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}
