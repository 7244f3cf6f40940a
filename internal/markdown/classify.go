package markdown

import (
	"regexp"
	"strings"
)

var languageClass = regexp.MustCompile(`language-(\w+)`)

// Classification is the outcome of Classify.
type Classification struct {
	Inline   bool
	Language string
	// Code is the body with one trailing newline removed. It is both the
	// copy payload and the highlighter input.
	Code string
}

// Classify decides between inline code and a highlighted block. A block
// needs a newline in text and a "language-<id>" class; anything else
// renders inline.
func Classify(text, className string) Classification {
	c := Classification{
		Inline: true,
		Code:   strings.TrimSuffix(text, "\n"),
	}
	if !strings.Contains(text, "\n") {
		return c
	}
	m := languageClass.FindStringSubmatch(className)
	if m == nil {
		return c
	}
	c.Inline = false
	c.Language = m[1]
	return c
}

// languageClassName is the class a fenced block with the given info string
// carries, mirroring how markdown-to-HTML converters tag them.
func languageClassName(info string) string {
	lang, _, _ := strings.Cut(strings.TrimSpace(info), " ")
	if lang == "" {
		return ""
	}
	return "language-" + lang
}
