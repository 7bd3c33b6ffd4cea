package graph

import (
	"testing"

	apperrors "graphchat/pkg/errors"
)

func TestSanitizeFulltext(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sky color", "sky color"},
		{"what's the sky-color?", "what s the sky color"},
		{"  spaced   out  ", "spaced out"},
		{"@#$%", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeFulltext(tt.in); got != tt.want {
			t.Errorf("sanitizeFulltext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeEpisodeFillsDefaults(t *testing.T) {
	ep := &Episode{Content: "The sky is blue"}
	if err := normalizeEpisode(ep); err != nil {
		t.Fatalf("normalizeEpisode() error: %v", err)
	}
	if ep.ID == "" {
		t.Error("ID should be generated")
	}
	if ep.Name == "" {
		t.Error("Name should be generated")
	}
	if ep.ContentType != ContentTypeText {
		t.Errorf("ContentType = %q, want text", ep.ContentType)
	}
	if ep.Source != SourceDocument {
		t.Errorf("Source = %q, want %q", ep.Source, SourceDocument)
	}
	if ep.CreatedAt.IsZero() {
		t.Error("CreatedAt should be filled")
	}
}

func TestNormalizeEpisodeKeepsCallerFields(t *testing.T) {
	ep := &Episode{
		ID:          "fixed-id",
		Name:        "fact1",
		Content:     "The sky is blue",
		ContentType: ContentTypeJSON,
		Source:      SourceChatUser,
	}
	if err := normalizeEpisode(ep); err != nil {
		t.Fatalf("normalizeEpisode() error: %v", err)
	}
	if ep.ID != "fixed-id" || ep.Name != "fact1" || ep.Source != SourceChatUser {
		t.Error("caller-provided fields must not be overwritten")
	}
}

func TestNormalizeEpisodeRejectsEmptyContent(t *testing.T) {
	err := normalizeEpisode(&Episode{Content: "   \n"})
	if err == nil {
		t.Fatal("expected error for whitespace-only content")
	}
	if !apperrors.IsErrorType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("error kind = %v, want validation", err)
	}
}

func TestNormalizeEpisodeRejectsUnknownContentType(t *testing.T) {
	err := normalizeEpisode(&Episode{Content: "x", ContentType: "xml"})
	if err == nil {
		t.Fatal("expected error for unknown content type")
	}
	if !apperrors.IsErrorType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("error kind = %v, want validation", err)
	}
}

func TestIsMissingIndex(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"There is no such fulltext schema index", true},
		{"Index episode_content not found", true},
		{"connection reset by peer", false},
		{"syntax error at offset 3", false},
	}
	for _, tt := range tests {
		err := errorString(tt.msg)
		if got := isMissingIndex(err); got != tt.want {
			t.Errorf("isMissingIndex(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
	if isMissingIndex(nil) {
		t.Error("nil error should not be a missing index")
	}
}

type errorString string

func (e errorString) Error() string { return string(e) }
