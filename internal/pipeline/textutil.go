package pipeline

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	openingFence     = regexp.MustCompile("^```[a-zA-Z]*\n")
	closingFence     = regexp.MustCompile("```$")
	codeBlockPattern = regexp.MustCompile("(?s)```(?:python)?\\s*(.*?)```")
)

// CleanText strips leading/trailing code-fence markers from model output,
// ignoring any language hint after the opening fence.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.TrimSpace(text)
	text = openingFence.ReplaceAllString(text, "")
	text = closingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ExtractCodeBlock returns the contents of the first fenced code block, or
// the cleaned raw text when no fence is found.
func ExtractCodeBlock(text string) string {
	if text == "" {
		return "# No code generated"
	}
	if match := codeBlockPattern.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(match[1])
	}
	return CleanText(text)
}

// truncateToRuneBoundary cuts text to at most limit bytes, backing up so a
// multi-byte rune is never split at the cut.
func truncateToRuneBoundary(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
