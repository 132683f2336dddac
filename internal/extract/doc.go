// Package extract pulls plain text out of uploaded document files.
//
// Supported formats are PDF, DOCX, and plain text (.txt, .md).
// Extraction dispatches on the file extension; unsupported extensions
// return ErrUnsupportedFormat. PDF extraction labels each page so
// downstream chunks retain a coarse position hint, and skips pages
// that fail to parse rather than aborting the whole document.
package extract
