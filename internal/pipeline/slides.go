package pipeline

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Slide is one slide of the generated presentation.
type Slide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

var jsonFragmentPattern = regexp.MustCompile(`(?s)(\{.*\}|\[.*\])`)

// PlaceholderSlides is substituted when slide output cannot be parsed at all.
// The slides stage never aborts the pipeline.
func PlaceholderSlides() []Slide {
	return []Slide{{Title: "Error", Bullets: []string{"Generation failed"}}}
}

// ParseSlides decodes slide JSON from model output: strict parse first, then
// the first brace- or bracket-delimited substring, then the placeholder. A
// single JSON object becomes a one-element deck.
func ParseSlides(text string) []Slide {
	text = CleanText(text)

	if slides, ok := decodeSlides(text); ok {
		return slides
	}
	if match := jsonFragmentPattern.FindStringSubmatch(text); match != nil {
		if slides, ok := decodeSlides(match[1]); ok {
			return slides
		}
	}
	return PlaceholderSlides()
}

func decodeSlides(text string) ([]Slide, bool) {
	var slides []Slide
	if err := json.Unmarshal([]byte(text), &slides); err == nil && len(slides) > 0 {
		return slides, true
	}

	var slide Slide
	if err := json.Unmarshal([]byte(text), &slide); err == nil {
		if slide.Title != "" || len(slide.Bullets) > 0 {
			return []Slide{slide}, true
		}
	}
	return nil, false
}

// RenderSlidesMarkdown writes the deck as a markdown document, one section
// per slide, with a fixed title slide up front.
func RenderSlidesMarkdown(slides []Slide) string {
	var b strings.Builder
	b.WriteString("# ScholarMate Analysis\n\nAI-Generated Research Report\n")
	for _, slide := range slides {
		b.WriteString("\n---\n\n")
		title := slide.Title
		if title == "" {
			title = "Untitled Slide"
		}
		b.WriteString("## " + title + "\n\n")
		for _, bullet := range slide.Bullets {
			b.WriteString("- " + bullet + "\n")
		}
	}
	return b.String()
}
