package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

var errNoFrontMatter = errors.New("no front matter found")
var errInvalidFrontMatter = errors.New("invalid front matter")

// StringList accepts either a single YAML scalar or a sequence.
type StringList []string

func (l *StringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if s := strings.TrimSpace(n.Value); s != "" {
			*l = StringList{s}
		}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	return errInvalidFrontMatter
}

type FrontMatter struct {
	Title     string     `yaml:"title"`
	Slug      string     `yaml:"slug"`
	Date      string     `yaml:"date"`
	Summary   string     `yaml:"summary"`
	Tags      StringList `yaml:"tags"`
	Category  StringList `yaml:"category"`
	Type      string     `yaml:"type"`
	Status    string     `yaml:"status"`
	Thumbnail string     `yaml:"thumbnail"`
	Author    string     `yaml:"author"`
}

func ParseFrontMatter(raw []byte) (FrontMatter, []byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return FrontMatter{}, raw, errNoFrontMatter
	}

	src := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	src = bytes.ReplaceAll(src, []byte("\r"), []byte("\n"))

	const (
		sep      = "---"
		sepLine  = sep + "\n"
		closeMid = "\n" + sep + "\n"
	)

	if !bytes.HasPrefix(src, []byte(sepLine)) {
		return FrontMatter{}, src, errNoFrontMatter
	}
	rest := src[len(sepLine):]

	var yamlPart, bodyPart []byte
	switch parts := bytes.SplitN(rest, []byte(closeMid), 2); {
	case len(parts) == 2:
		yamlPart, bodyPart = parts[0], parts[1]
	case bytes.HasSuffix(rest, []byte("\n"+sep)):
		// closing fence with no body
		yamlPart = rest[:len(rest)-len("\n"+sep)]
	case bytes.HasPrefix(rest, []byte(sepLine)) || bytes.Equal(rest, []byte(sep)):
		// empty front matter
		bodyPart = bytes.TrimPrefix(rest, []byte(sep))
	default:
		return FrontMatter{}, raw, errInvalidFrontMatter
	}

	yamlPart = bytes.TrimSpace(yamlPart)
	bodyPart = bytes.TrimSpace(bodyPart)

	var fm FrontMatter
	if len(yamlPart) > 0 {
		if err := yaml.Unmarshal(yamlPart, &fm); err != nil {
			return FrontMatter{}, raw, err
		}
	}
	return fm, bodyPart, nil
}

func ResolveSlug(fm FrontMatter, path string) string {
	if s := strings.TrimSpace(fm.Slug); s != "" {
		return slugify(s)
	}
	if t := strings.TrimSpace(fm.Title); t != "" {
		return slugify(t)
	}
	base := filepath.Base(path)
	return slugify(strings.TrimSuffix(base, filepath.Ext(base)))
}

func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// fold strips diacritics so "Crème brûlée" becomes "creme-brulee". A chain
// keeps state, so each call gets its own.
func fold() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// slugify builds URL slugs for posts. Unlike heading anchors it transliterates
// accented letters and trims hyphens at both ends.
func slugify(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(fold(), s); err == nil {
		s = folded
	}

	var out []rune
	lastDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			// letters without an ASCII form, such as CJK, stay as they are
			out = append(out, r)
			lastDash = false
		default:
			if !lastDash && len(out) > 0 {
				out = append(out, '-')
				lastDash = true
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	return string(out)
}
