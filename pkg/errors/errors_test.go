package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestBaseErrorFormat(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := NewBaseError(ErrorTypeConnection, "graph store unreachable", cause)

	msg := err.Error()
	if !strings.Contains(msg, "[connection]") {
		t.Errorf("message %q missing type tag", msg)
	}
	if !strings.Contains(msg, "refused") {
		t.Errorf("message %q missing wrapped cause", msg)
	}

	bare := NewBaseError(ErrorTypeValidation, "empty content", nil)
	if strings.Contains(bare.Error(), "<nil>") {
		t.Errorf("nil cause leaked into message: %q", bare.Error())
	}
}

func TestIsErrorType(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{"direct base error", NewBaseError(ErrorTypeQuery, "boom", nil), ErrorTypeQuery, true},
		{"typed wrapper without cause", NewQueryFailed("MATCH (n)", nil), ErrorTypeQuery, true},
		{"typed wrapper wrong type", NewQueryFailed("MATCH (n)", nil), ErrorTypeIngest, false},
		{"connection wrapper", NewConnectionFailed("localhost:6379", stderrors.New("refused")), ErrorTypeConnection, true},
		{"validation wrapper", NewInvalidInput("content", "must not be empty"), ErrorTypeValidation, true},
		{"plain error", stderrors.New("plain"), ErrorTypeQuery, false},
		{"nil", nil, ErrorTypeQuery, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsErrorType(tt.err, tt.errType); got != tt.want {
				t.Errorf("IsErrorType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsErrorTypeWalksWrappedChain(t *testing.T) {
	inner := NewIngestFailed("doc_chunk_2", stderrors.New("write refused"))
	outer := fmt.Errorf("processing file: %w", inner)

	if !IsErrorType(outer, ErrorTypeIngest) {
		t.Error("expected ingest type to be found through fmt.Errorf wrapping")
	}
	if IsErrorType(outer, ErrorTypeSchema) {
		t.Error("schema type should not match an ingest chain")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(NewConnectionFailed("localhost:7687", nil)) {
		t.Error("connection errors should be retryable")
	}
	if IsRetryable(NewInvalidInput("query", "too long")) {
		t.Error("validation errors should not be retryable")
	}
	if IsRetryable(NewSchemaSetupFailed("episode_content", nil)) {
		t.Error("schema errors should not be retryable")
	}
	if IsRetryable(NewQueryFailed("CALL db.idx", stderrors.New("syntax"))) {
		t.Error("query errors should not be retryable")
	}
}
