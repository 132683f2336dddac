package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// docxText extracts paragraph text from a DOCX archive. A DOCX file is
// a ZIP containing WordprocessingML; the document body lives in
// word/document.xml.
func docxText(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}

	var docXML io.ReadCloser
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			docXML, err = file.Open()
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrCorruptFile, err)
			}
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("%w: missing word/document.xml", ErrCorruptFile)
	}
	defer docXML.Close()

	text, err := wordprocessingText(docXML)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

// wordprocessingText walks the XML token stream collecting the content
// of w:t runs, inserting a newline at each w:p paragraph boundary.
func wordprocessingText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var b strings.Builder
	var inText bool
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch el := token.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(el)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
