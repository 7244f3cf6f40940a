package markdown

import (
	"bufio"
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"
)

// RenderHTML writes doc as an HTML fragment.
func RenderHTML(doc *Document) []byte {
	var b bytes.Buffer
	_ = WriteHTML(&b, doc)
	return b.Bytes()
}

// WriteHTML writes n and its descendants to w.
func WriteHTML(w io.Writer, n Node) error {
	bw := bufio.NewWriter(w)
	writeNode(bw, n)
	return bw.Flush()
}

func writeNode(w *bufio.Writer, n Node) {
	switch v := n.(type) {
	case nil:
	case *Document:
		fmt.Fprintf(w, `<article class="%s"><div class="mb-8">`, articleClass)
		writeChildren(w, v.Children)
		w.WriteString("</div></article>")
	case *Heading:
		tag := "h" + strconv.Itoa(v.Level)
		fmt.Fprintf(w, `<%s id="%s"%s>`, tag, esc(v.ID), styleAttr(v.Style))
		writeChildren(w, v.Children)
		fmt.Fprintf(w, "</%s>\n", tag)
	case *List:
		tag := "ul"
		start := ""
		if v.Ordered {
			tag = "ol"
			if v.Start > 1 {
				start = fmt.Sprintf(` start="%d"`, v.Start)
			}
		}
		fmt.Fprintf(w, "<%s%s%s>\n", tag, start, styleAttr(v.Style))
		writeChildren(w, v.Children)
		fmt.Fprintf(w, "</%s>\n", tag)
	case *ListItem:
		fmt.Fprintf(w, `<li class="%s"%s>`, v.Class, styleAttr(v.Style))
		writeChildren(w, v.Children)
		w.WriteString("</li>\n")
	case *Paragraph:
		fmt.Fprintf(w, `<p class="%s"%s>`, v.Class, styleAttr(v.Style))
		writeChildren(w, v.Children)
		w.WriteString("</p>\n")
	case *CodeBlock:
		label := "copy"
		if v.Copied {
			label = "copied"
		}
		w.WriteString(`<div class="code-block" style="position: relative">`)
		w.WriteString(v.HTML)
		fmt.Fprintf(w, `<button type="button" class="copy-button" data-copy="%s"%s>%s</button>`,
			esc(v.Code), styleAttr(copyButtonStyle), label)
		w.WriteString("</div>\n")
	case *InlineCode:
		fmt.Fprintf(w, "<code%s>%s</code>", styleAttr(v.Style), esc(v.Text))
	case *TweetEmbed:
		fmt.Fprintf(w, `<blockquote class="twitter-tweet" data-tweet-id="%s"><a href="https://twitter.com/x/status/%s"></a></blockquote>`+"\n",
			esc(v.ID), esc(v.ID))
	case *ImageEmbed:
		fmt.Fprintf(w, `<img src="%s" alt="%s" width="%d" height="%d" class="%s" loading="lazy">`+"\n",
			esc(v.Src), esc(v.Alt), v.Width, v.Height, v.Class)
	case *Image:
		alt := v.Alt
		if alt == "" {
			alt = "markdown image"
		}
		fmt.Fprintf(w, `<img src="%s" alt="%s" class="%s"%s`, esc(v.Src), esc(alt), v.Class, styleAttr(v.Style))
		if v.Title != "" {
			fmt.Fprintf(w, ` title="%s"`, esc(v.Title))
		}
		w.WriteString(">")
	case *Placeholder:
		fmt.Fprintf(w, `<div class="embed-error">%s</div>`+"\n", esc(v.Message))
	case *Text:
		w.WriteString(esc(v.Value))
	case *RawHTML:
		w.WriteString(v.HTML)
	case *Element:
		if v.Tag == "" {
			writeChildren(w, v.Children)
			return
		}
		w.WriteString("<" + v.Tag)
		for _, a := range v.Attrs {
			if a.Value == "" {
				w.WriteString(" " + a.Key)
				continue
			}
			fmt.Fprintf(w, ` %s="%s"`, a.Key, esc(a.Value))
		}
		w.WriteString(">")
		if v.Void {
			return
		}
		writeChildren(w, v.Children)
		w.WriteString("</" + v.Tag + ">")
	}
}

func writeChildren(w *bufio.Writer, nodes []Node) {
	for _, c := range nodes {
		writeNode(w, c)
	}
}

func styleAttr(s Style) string {
	if len(s) == 0 {
		return ""
	}
	return ` style="` + esc(s.String()) + `"`
}

func esc(s string) string { return html.EscapeString(s) }
