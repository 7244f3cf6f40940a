package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"devwrite/internal/domain/content"
)

// Channel describes the site in the generated feed.
type Channel struct {
	Title       string
	Link        string
	Description string
	Language    string
	SelfURL     string
	Generator   string
}

// Generator writes RSS 2.0 documents.
type Generator struct {
	// Limit caps the number of items; zero means no cap.
	Limit int
	// PostURL builds the absolute URL of a post.
	PostURL func(slug string) string
}

func NewGenerator(limit int, postURL func(slug string) string) *Generator {
	return &Generator{Limit: limit, PostURL: postURL}
}

// Run writes posts in the given order. Callers pass the output of Filter.
func (g *Generator) Run(ch Channel, posts []content.PostSummary, now time.Time) []byte {
	if g.Limit > 0 && len(posts) > g.Limit {
		posts = posts[:g.Limit]
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", ch.Title, 4)
	g.writeElement(&buf, "link", ch.Link, 4)
	g.writeElement(&buf, "description", cmp.Or(ch.Description, ch.Title), 4)
	if ch.SelfURL != "" {
		fmt.Fprintf(&buf, "    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(ch.SelfURL))
	}
	g.writeElement(&buf, "language", ch.Language, 4)
	g.writeElement(&buf, "generator", ch.Generator, 4)

	lastBuild := now
	if len(posts) > 0 {
		if t := posts[0].Date.Time(); !t.IsZero() {
			lastBuild = t
		}
	}
	g.writeElement(&buf, "lastBuildDate", lastBuild.Format(time.RFC1123Z), 4)

	for _, p := range posts {
		g.writeItem(&buf, p)
	}

	buf.WriteString("  </channel>\n</rss>\n")
	return buf.Bytes()
}

func (g *Generator) writeItem(buf *bytes.Buffer, p content.PostSummary) {
	link := p.Slug
	if g.PostURL != nil {
		link = g.PostURL(p.Slug)
	}

	buf.WriteString("    <item>\n")
	g.writeElement(buf, "title", p.Title, 6)
	g.writeElement(buf, "link", link, 6)
	fmt.Fprintf(buf, "      <guid isPermaLink=\"%t\">", strings.HasPrefix(link, "http"))
	xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")
	g.writeElement(buf, "description", cmp.Or(p.Summary, p.Title), 6)
	if t := p.Date.Time(); !t.IsZero() {
		g.writeElement(buf, "pubDate", t.Format(time.RFC1123Z), 6)
	}
	g.writeElement(buf, "author", p.Author, 6)
	for _, c := range p.Category {
		g.writeElement(buf, "category", c, 6)
	}
	for _, t := range p.Tags {
		g.writeElement(buf, "category", t, 6)
	}
	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, text string, indent int) {
	if text == "" {
		return
	}
	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<" + tag + ">")
	xml.EscapeText(buf, []byte(text))
	buf.WriteString("</" + tag + ">\n")
}
