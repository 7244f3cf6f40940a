package markdown

import "strings"

// Slugify derives a heading anchor id. The result is lower-case and keeps
// only ASCII word characters and single hyphens; uniqueness within a
// document is not guaranteed.
func Slugify(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		switch {
		case isWordRune(r):
			b.WriteRune(r)
			inRun = false
		case r == ' ' || r == '-':
			// a run of spaces and hyphens, with dropped characters in
			// between, becomes one hyphen
			if !inRun {
				b.WriteByte('-')
				inRun = true
			}
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' ||
		('a' <= r && r <= 'z') ||
		('A' <= r && r <= 'Z') ||
		('0' <= r && r <= '9')
}
