package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTweetID(t *testing.T) {
	id, ok := TweetID("%[https://twitter.com/neorepo/status/1636728548080713728?s=20]")
	assert.True(t, ok)
	assert.Equal(t, "1636728548080713728", id)

	id, ok = TweetID("%[https://twitter.com/]")
	assert.True(t, ok)
	assert.Empty(t, id)

	_, ok = TweetID("%[https://example.com/status/1]")
	assert.False(t, ok)
}

func TestImageURL(t *testing.T) {
	src, ok := ImageURL("![](https://x.com/a.png)")
	assert.True(t, ok)
	assert.Equal(t, "https://x.com/a.png", src)

	src, ok = ImageURL(`![](https://x.com/a.png "A title")`)
	assert.True(t, ok)
	assert.Equal(t, "https://x.com/a.png", src)

	src, ok = ImageURL("![]()")
	assert.True(t, ok)
	assert.Empty(t, src)

	_, ok = ImageURL("![alt](https://x.com/a.png)")
	assert.False(t, ok)
}

func TestRewriteEmbed(t *testing.T) {
	n, ok := RewriteEmbed("%[https://twitter.com/neorepo/status/1636728548080713728?s=20]", 920, 640)
	require.True(t, ok)
	assert.Equal(t, &TweetEmbed{ID: "1636728548080713728"}, n)

	n, ok = RewriteEmbed("%[https://twitter.com/]", 920, 640)
	require.True(t, ok)
	assert.Equal(t, &Placeholder{Message: "Error showing tweet"}, n)

	n, ok = RewriteEmbed("![](https://x.com/a.png)", 920, 640)
	require.True(t, ok)
	assert.Equal(t, &ImageEmbed{Src: "https://x.com/a.png", Width: 920, Height: 640, Class: "mx-auto"}, n)

	n, ok = RewriteEmbed("![]()", 920, 640)
	require.True(t, ok)
	assert.Equal(t, &Placeholder{Message: "Error showing image"}, n)

	_, ok = RewriteEmbed("just words", 920, 640)
	assert.False(t, ok)
}
