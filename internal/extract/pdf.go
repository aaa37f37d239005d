package extract

import (
	"bytes"
	"strings"

	"careermatch/internal/errors"

	"github.com/ledongthuc/pdf"
)

// PDFToText extracts plain text from a PDF held in memory, typically an
// uploaded CV. Pages that fail to decode are skipped; an entirely unreadable
// document is an error.
func PDFToText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeUnreadableDocument,
			"Failed to open PDF document", err)
	}

	var b strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	result := SanitizeWhitespace(b.String())
	if result == "" {
		return "", errors.NewIOError(errors.ErrCodeUnreadableDocument,
			"No text content found in PDF", nil)
	}
	return result, nil
}

// PDFFileToText extracts plain text from a PDF on disk.
func PDFFileToText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeUnreadableDocument,
			"Failed to open PDF document", err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	result := SanitizeWhitespace(b.String())
	if result == "" {
		return "", errors.NewIOError(errors.ErrCodeUnreadableDocument,
			"No text content found in PDF", nil)
	}
	return result, nil
}
