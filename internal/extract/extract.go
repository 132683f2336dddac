package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat indicates a file extension with no
	// registered extractor.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyDocument indicates the file yielded no extractable text.
	ErrEmptyDocument = errors.New("no extractable text in document")

	// ErrCorruptFile indicates the file could not be parsed.
	ErrCorruptFile = errors.New("corrupt or unreadable file")
)

// SupportedExtensions lists the file extensions Text accepts.
var SupportedExtensions = []string{".pdf", ".docx", ".txt", ".md"}

// Supported reports whether the filename's extension has an extractor.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Text extracts plain text from the file contents, dispatching on the
// filename's extension. The page count is the PDF page total; formats
// without a page structure report 0.
func Text(filename string, data []byte) (string, int, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return pdfText(data)
	case ".docx":
		text, err := docxText(data)
		return text, 0, err
	case ".txt", ".md":
		text, err := plainText(data)
		return text, 0, err
	default:
		return "", 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func plainText(data []byte) (string, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}
