package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	apperrors "graphchat/pkg/errors"
)

// ExtractHTML returns the visible text of an HTML document with script,
// style, and noscript blocks removed and whitespace collapsed.
func ExtractHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if text == "" {
		return "", apperrors.NewInvalidInput("html", "no text content found")
	}
	return text, nil
}

// ExtractPDF returns the plain text of a PDF file.
func ExtractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", apperrors.NewInvalidInput("pdf", "no text content found")
	}
	return text, nil
}
