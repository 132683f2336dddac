package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/ragd/internal/extract"
)

var (
	errEmptyFile       = errors.New("file is empty")
	errFileTooLarge    = errors.New("file exceeds the size limit")
	errTypeMismatch    = errors.New("file contents do not match the extension")
	errUnsupportedFile = errors.New("unsupported file type")
)

// sniffedPrefixes maps extensions to acceptable content-type prefixes
// as reported by http.DetectContentType. DOCX files sniff as ZIP
// because that is what they are.
var sniffedPrefixes = map[string][]string{
	".pdf":  {"application/pdf"},
	".docx": {"application/zip"},
	".txt":  {"text/"},
	".md":   {"text/"},
}

// validateUpload checks the filename and contents before anything is
// stored. The extension decides the extractor, so the sniffed content
// type must agree with it.
func validateUpload(filename string, data []byte, maxBytes int64) error {
	if !extract.Supported(filename) {
		return fmt.Errorf("%w: %q (supported: %s)",
			errUnsupportedFile, filepath.Ext(filename), strings.Join(extract.SupportedExtensions, ", "))
	}
	if len(data) == 0 {
		return errEmptyFile
	}
	if int64(len(data)) > maxBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", errFileTooLarge, len(data), maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	sniffed := http.DetectContentType(data)
	for _, prefix := range sniffedPrefixes[ext] {
		if strings.HasPrefix(sniffed, prefix) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s file sniffed as %s", errTypeMismatch, ext, sniffed)
}
