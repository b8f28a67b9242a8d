package pipeline

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "hello", CleanText("```\nhello\n```"))
	assert.Equal(t, "hello", CleanText("```json\nhello\n```"))
	assert.Equal(t, "hello", CleanText("  hello  "))
	assert.Equal(t, "", CleanText(""))

	// Fences inside the text are left alone.
	assert.Equal(t, "a ``` b", CleanText("a ``` b"))
}

func TestExtractCodeBlock(t *testing.T) {
	assert.Equal(t, "print('hi')", ExtractCodeBlock("```python\nprint('hi')\n```"))
	assert.Equal(t, "print('hi')", ExtractCodeBlock("```\nprint('hi')\n```"))
	assert.Equal(t, "print('hi')", ExtractCodeBlock("Here you go:\n```python\nprint('hi')\n```\nEnjoy!"))

	// No fence: the cleaned text is assumed to already be code.
	assert.Equal(t, "x = 1", ExtractCodeBlock("x = 1"))

	assert.Equal(t, "# No code generated", ExtractCodeBlock(""))
}

func TestTruncateToRuneBoundary(t *testing.T) {
	assert.Equal(t, "abc", truncateToRuneBoundary("abc", 10))
	assert.Equal(t, "abc", truncateToRuneBoundary("abcde", 3))

	// A cut that would land inside a multi-byte rune backs up to the
	// start of that rune.
	assert.Equal(t, "aé", truncateToRuneBoundary("aéb", 3))
	assert.Equal(t, "a", truncateToRuneBoundary("aéb", 2))
	assert.Equal(t, "", truncateToRuneBoundary("é", 1))
	assert.True(t, utf8.ValidString(truncateToRuneBoundary("résumé résumé", 8)))
}
