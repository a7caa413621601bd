package ingestion

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/recallit/objstore"
)

// maxExtractBytes bounds how much of an uploaded object is read for
// text extraction.
const maxExtractBytes = 2 << 20

// TextExtractor reads uploaded documents from object storage and
// recovers their plain text.
type TextExtractor struct {
	store objstore.Store
}

// NewTextExtractor creates a TextExtractor over the given store.
func NewTextExtractor(store objstore.Store) *TextExtractor {
	return &TextExtractor{store: store}
}

// Extract fetches the object and returns its content as text. Objects
// that are not valid UTF-8 yield an error; they are attachments for
// multimodal injection, not chunkable text.
func (e *TextExtractor) Extract(ctx context.Context, objectKey string) (string, error) {
	data, err := e.store.Get(ctx, objectKey)
	if err != nil {
		return "", err
	}
	if len(data) > maxExtractBytes {
		data = data[:maxExtractBytes]
		// Truncation may split a rune; drop the trailing partial bytes.
		for i := 0; i < utf8.UTFMax && len(data) > 0 && !utf8.Valid(data); i++ {
			data = data[:len(data)-1]
		}
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("object %s is not text", objectKey)
	}
	return strings.TrimSpace(string(data)), nil
}
