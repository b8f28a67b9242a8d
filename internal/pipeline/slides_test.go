package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSlides(t *testing.T) {
	deck := `[{"title":"Intro","bullets":["a","b"]},{"title":"Results","bullets":["c"]}]`

	slides := ParseSlides(deck)
	assert.Equal(t, []Slide{
		{Title: "Intro", Bullets: []string{"a", "b"}},
		{Title: "Results", Bullets: []string{"c"}},
	}, slides)

	// Fenced output is cleaned before parsing.
	slides = ParseSlides("```json\n" + deck + "\n```")
	assert.Len(t, slides, 2)
}

func TestParseSlidesSingleObject(t *testing.T) {
	slides := ParseSlides(`{"title":"Only","bullets":["a"]}`)
	assert.Equal(t, []Slide{{Title: "Only", Bullets: []string{"a"}}}, slides)
}

func TestParseSlidesRecoversEmbeddedJSON(t *testing.T) {
	slides := ParseSlides(`Sure! Here are your slides: [{"title":"Intro","bullets":["a"]}] Hope that helps.`)
	assert.Equal(t, []Slide{{Title: "Intro", Bullets: []string{"a"}}}, slides)
}

func TestParseSlidesFallsBackToPlaceholder(t *testing.T) {
	assert.Equal(t, PlaceholderSlides(), ParseSlides("I could not produce slides."))
	assert.Equal(t, PlaceholderSlides(), ParseSlides(""))
	assert.Equal(t, PlaceholderSlides(), ParseSlides("[]"))
}

func TestRenderSlidesMarkdown(t *testing.T) {
	md := RenderSlidesMarkdown([]Slide{
		{Title: "Intro", Bullets: []string{"a", "b"}},
		{Bullets: []string{"c"}},
	})

	assert.Contains(t, md, "# ScholarMate Analysis")
	assert.Contains(t, md, "## Intro\n\n- a\n- b\n")
	assert.Contains(t, md, "## Untitled Slide\n\n- c\n")
}
