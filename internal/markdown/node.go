package markdown

import "strings"

// NodeKind tags a rendered node.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindHeading
	KindList
	KindListItem
	KindCodeBlock
	KindInlineCode
	KindTweetEmbed
	KindImageEmbed
	KindImage
	KindParagraph
	KindPlaceholder
	KindText
	KindRawHTML
	KindElement
)

var kindNames = [...]string{
	KindDocument:    "document",
	KindHeading:     "heading",
	KindList:        "list",
	KindListItem:    "list-item",
	KindCodeBlock:   "code-block",
	KindInlineCode:  "inline-code",
	KindTweetEmbed:  "tweet-embed",
	KindImageEmbed:  "image-embed",
	KindImage:       "image",
	KindParagraph:   "paragraph",
	KindPlaceholder: "placeholder",
	KindText:        "text",
	KindRawHTML:     "raw-html",
	KindElement:     "element",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is an element of the rendered tree. The set of implementations is
// closed; WriteHTML switches over all of them.
type Node interface {
	Kind() NodeKind
	node()
}

// Decl is one CSS declaration.
type Decl struct {
	Prop  string
	Value string
}

// Style is an ordered list of declarations, written as an inline style.
type Style []Decl

func (s Style) String() string {
	parts := make([]string, 0, len(s))
	for _, d := range s {
		parts = append(parts, d.Prop+": "+d.Value)
	}
	return strings.Join(parts, "; ")
}

// Get returns the value of prop, or "".
func (s Style) Get(prop string) string {
	for _, d := range s {
		if d.Prop == prop {
			return d.Value
		}
	}
	return ""
}

type Attr struct {
	Key   string
	Value string
}

type TOCEntry struct {
	Level int
	ID    string
	Text  string
}

type Document struct {
	Children []Node
	Headings []TOCEntry
}

type Heading struct {
	Level    int
	ID       string
	Style    Style
	Children []Node
}

type List struct {
	Ordered  bool
	Start    int
	Style    Style
	Children []Node
}

type ListItem struct {
	Class    string
	Style    Style
	Children []Node
}

// CodeBlock is a highlighted fenced block with its copy control.
type CodeBlock struct {
	Language string
	Code     string
	// HTML is the highlighter output for Code.
	HTML   string
	Copied bool
}

type InlineCode struct {
	Text  string
	Style Style
}

type TweetEmbed struct {
	ID string
}

type ImageEmbed struct {
	Src    string
	Alt    string
	Width  int
	Height int
	Class  string
}

type Image struct {
	Src   string
	Alt   string
	Title string
	Class string
	Style Style
}

type Paragraph struct {
	Class    string
	Style    Style
	Children []Node
}

// Placeholder stands in for a node that could not be rendered.
type Placeholder struct {
	Message string
}

type Text struct {
	Value string
}

// RawHTML is author markup emitted verbatim.
type RawHTML struct {
	HTML string
}

// Element is default structural rendering for node kinds without an
// override. An empty Tag renders only the children.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
	Void     bool
}

func (*Document) Kind() NodeKind    { return KindDocument }
func (*Heading) Kind() NodeKind     { return KindHeading }
func (*List) Kind() NodeKind        { return KindList }
func (*ListItem) Kind() NodeKind    { return KindListItem }
func (*CodeBlock) Kind() NodeKind   { return KindCodeBlock }
func (*InlineCode) Kind() NodeKind  { return KindInlineCode }
func (*TweetEmbed) Kind() NodeKind  { return KindTweetEmbed }
func (*ImageEmbed) Kind() NodeKind  { return KindImageEmbed }
func (*Image) Kind() NodeKind       { return KindImage }
func (*Paragraph) Kind() NodeKind   { return KindParagraph }
func (*Placeholder) Kind() NodeKind { return KindPlaceholder }
func (*Text) Kind() NodeKind        { return KindText }
func (*RawHTML) Kind() NodeKind     { return KindRawHTML }
func (*Element) Kind() NodeKind     { return KindElement }

func (*Document) node()    {}
func (*Heading) node()     {}
func (*List) node()        {}
func (*ListItem) node()    {}
func (*CodeBlock) node()   {}
func (*InlineCode) node()  {}
func (*TweetEmbed) node()  {}
func (*ImageEmbed) node()  {}
func (*Image) node()       {}
func (*Paragraph) node()   {}
func (*Placeholder) node() {}
func (*Text) node()        {}
func (*RawHTML) node()     {}
func (*Element) node()     {}

// Walk visits n and its descendants depth-first.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range children(n) {
		Walk(c, fn)
	}
}

func children(n Node) []Node {
	switch v := n.(type) {
	case *Document:
		return v.Children
	case *Heading:
		return v.Children
	case *List:
		return v.Children
	case *ListItem:
		return v.Children
	case *Paragraph:
		return v.Children
	case *Element:
		return v.Children
	}
	return nil
}
