package document

import (
	"strings"
	"testing"

	apperrors "graphchat/pkg/errors"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
	<title>Test Page</title>
	<script>console.log('test');</script>
	<style>body { color: blue; }</style>
</head>
<body>
	<h1>Test Content</h1>
	<p>This is a test paragraph.</p>
	<script>alert('test');</script>
</body>
</html>`

func TestExtractHTML(t *testing.T) {
	text, err := ExtractHTML(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("ExtractHTML failed: %v", err)
	}
	if !strings.Contains(text, "Test Content") {
		t.Errorf("missing heading text: %q", text)
	}
	if !strings.Contains(text, "This is a test paragraph.") {
		t.Errorf("missing paragraph text: %q", text)
	}
	if strings.Contains(text, "console.log") || strings.Contains(text, "alert") {
		t.Errorf("script content leaked: %q", text)
	}
	if strings.Contains(text, "color: blue") {
		t.Errorf("style content leaked: %q", text)
	}
	if strings.Contains(text, "\n") {
		t.Errorf("whitespace not collapsed: %q", text)
	}
}

func TestExtractHTMLNoText(t *testing.T) {
	_, err := ExtractHTML(strings.NewReader("<html><body><script>x()</script></body></html>"))
	if err == nil {
		t.Fatal("expected error for empty body")
	}
	if !apperrors.IsErrorType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestExtractPDFMissingFile(t *testing.T) {
	_, err := ExtractPDF("/nonexistent/file.pdf")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
