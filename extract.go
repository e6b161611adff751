package flashnest

import (
	"context"

	"github.com/flashnest/flashnest-go/internal/extract"
)

// ExtractText reads study material from a .txt, .md, .pdf, or .docx file
// and returns its plain text, normalized for prompting. Unsupported types
// return ErrUnsupportedFile.
func ExtractText(path string) (string, error) {
	return extract.Text(path)
}

// GenerateFromFile extracts a document's text and runs the generation
// pipeline on it. count zero means the default batch size.
func (c *Client) GenerateFromFile(ctx context.Context, path string, count int) ([]Candidate, error) {
	content, err := ExtractText(path)
	if err != nil {
		return nil, err
	}
	return c.GenerateFlashcards(ctx, GenerateRequest{FileContent: content, Count: count})
}
