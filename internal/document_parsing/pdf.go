package document_parsing

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/gen2brain/go-fitz"
)

// ValidateUpload checks that an uploaded payload is a readable PDF with at
// least one page before any generation work is queued for it.
func ValidateUpload(contents []byte) error {
	if len(contents) == 0 {
		return fmt.Errorf("the uploaded file is empty")
	}

	doc, err := fitz.NewFromMemory(contents)
	if err != nil {
		return fmt.Errorf("the file appears to be corrupted or is not a valid PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return fmt.Errorf("the PDF contains no pages")
	}
	return nil
}

// ExtractMarkdown converts each PDF page to HTML and then to markdown,
// which preserves enough structure (headings, lists, tables) to make a
// better generation context than raw text.
func ExtractMarkdown(contents []byte) (string, error) {
	doc, err := fitz.NewFromMemory(contents)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	converter := md.NewConverter("", true, nil)

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		html, err := doc.HTML(i, true)
		if err != nil {
			return "", err
		}

		text, err := converter.ConvertString(html)
		if err != nil {
			return "", err
		}

		// Strip inline base64 images to keep the context small.
		pages = append(pages, removeHardcodedImages(text))
	}

	return strings.Join(pages, "\n\n"), nil
}

func removeHardcodedImages(content string) string {
	re := regexp.MustCompile(`!\[\]\(data:image/[^)]+\)`)
	return re.ReplaceAllString(content, "")
}

// TextExtractor adapts ExtractMarkdown to the pipeline's extraction
// collaborator contract: failures never cross the boundary, they degrade to
// empty text.
type TextExtractor struct{}

func (TextExtractor) ExtractText(contents []byte) string {
	text, err := ExtractMarkdown(contents)
	if err != nil {
		slog.Error("pdf extraction failed", "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}
