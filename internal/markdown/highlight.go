package markdown

import (
	"html"
	"log"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter turns code into display markup.
type Highlighter interface {
	Highlight(code, language string) (string, error)
}

// RegisteredLanguages are the languages highlighted out of the box.
var RegisteredLanguages = []string{"tsx", "typescript", "json", "bash"}

// ChromaHighlighter highlights a fixed set of languages with chroma. Other
// languages are shown as plain, escaped code.
type ChromaHighlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
	lexers    map[string]chroma.Lexer
}

func NewChromaHighlighter(styleName string, languages ...string) *ChromaHighlighter {
	if len(languages) == 0 {
		languages = RegisteredLanguages
	}
	h := &ChromaHighlighter{
		style:     styles.Get(styleName),
		formatter: chromahtml.New(chromahtml.TabWidth(2)),
		lexers:    make(map[string]chroma.Lexer, len(languages)),
	}
	for _, name := range languages {
		h.Register(name)
	}
	return h
}

// Register adds a language by chroma lexer name or alias. It reports false
// when chroma has no such lexer.
func (h *ChromaHighlighter) Register(name string) bool {
	l := lexers.Get(name)
	if l == nil {
		// chroma ships tsx inside its typescript lexer on some versions
		if name == "tsx" {
			l = lexers.Get("typescript")
		}
		if l == nil {
			log.Printf("[highlight] no lexer for %q", name)
			return false
		}
	}
	h.lexers[name] = chroma.Coalesce(l)
	return true
}

func (h *ChromaHighlighter) Registered(language string) bool {
	_, ok := h.lexers[language]
	return ok
}

func (h *ChromaHighlighter) Highlight(code, language string) (string, error) {
	l, ok := h.lexers[language]
	if !ok {
		return plainCode(code, language), nil
	}
	it, err := l.Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, it); err != nil {
		return "", err
	}
	return b.String(), nil
}

func plainCode(code, language string) string {
	var b strings.Builder
	b.WriteString(`<pre class="chroma"><code`)
	if language != "" {
		b.WriteString(` class="language-`)
		b.WriteString(html.EscapeString(language))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(code))
	b.WriteString("</code></pre>")
	return b.String()
}
