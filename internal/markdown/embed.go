package markdown

import "strings"

const (
	tweetPrefix = "%[https://twitter.com/"
	imagePrefix = "![]("

	tweetErrorMessage = "Error showing tweet"
	imageErrorMessage = "Error showing image"
)

// Embed image display size used when no other is configured.
const (
	DefaultEmbedWidth  = 920
	DefaultEmbedHeight = 640
)

// TweetID extracts the status id from a "%[https://twitter.com/...]"
// paragraph. ok is false when str is not a tweet reference; id may be empty
// when it is one but carries no usable id.
func TweetID(str string) (id string, ok bool) {
	if !strings.HasPrefix(str, tweetPrefix) {
		return "", false
	}
	tweetURL := str[2 : len(str)-1]
	last := tweetURL[strings.LastIndex(tweetURL, "/")+1:]
	id, _, _ = strings.Cut(last, "?")
	return id, true
}

// ImageURL extracts the source of a "![](<url> [title])" paragraph that the
// parser left as text. A title clause after the first space is dropped.
func ImageURL(str string) (src string, ok bool) {
	if !strings.HasPrefix(str, imagePrefix) {
		return "", false
	}
	if len(str) <= len(imagePrefix) {
		return "", true
	}
	inner := str[len(imagePrefix) : len(str)-1]
	src, _, _ = strings.Cut(inner, " ")
	return src, true
}

// RewriteEmbed turns the literal text of a paragraph into an embed, trying
// tweets first and then bare images. ok is false when neither sentinel
// matches and the paragraph should render as usual. Extraction failures
// yield a Placeholder, never an error.
func RewriteEmbed(str string, width, height int) (Node, bool) {
	if id, ok := TweetID(str); ok {
		if id == "" {
			return &Placeholder{Message: tweetErrorMessage}, true
		}
		return &TweetEmbed{ID: id}, true
	}
	if src, ok := ImageURL(str); ok {
		if src == "" {
			return &Placeholder{Message: imageErrorMessage}, true
		}
		return &ImageEmbed{Src: src, Width: width, Height: height, Class: "mx-auto"}, true
	}
	return nil, false
}
