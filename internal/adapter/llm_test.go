package adapter

import (
	"context"
	"testing"
)

func TestAPIBase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:4000", "http://localhost:4000/v1"},
		{"http://localhost:4000/", "http://localhost:4000/v1"},
		{"http://localhost:4000/v1", "http://localhost:4000/v1"},
		{"http://localhost:4000/v1/", "http://localhost:4000/v1"},
	}
	for _, tt := range tests {
		if got := apiBase(tt.in); got != tt.want {
			t.Errorf("apiBase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSetModel(t *testing.T) {
	adapter := NewLLMAdapter("http://localhost:4000", "", "gpt-4o-mini")
	if got := adapter.GetModel(); got != "gpt-4o-mini" {
		t.Errorf("model = %q", got)
	}

	adapter.SetModel("gpt-4o")
	if got := adapter.GetModel(); got != "gpt-4o" {
		t.Errorf("model after update = %q", got)
	}

	// Blank updates are ignored
	adapter.SetModel("")
	if got := adapter.GetModel(); got != "gpt-4o" {
		t.Errorf("model after blank update = %q", got)
	}
}

// TestLLMAdapter_Generate requires a running OpenAI-compatible endpoint
// This is a basic integration test
func TestLLMAdapter_Generate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	adapter := NewLLMAdapter("http://localhost:4000", "", "gpt-4o-mini")

	ctx := context.Background()
	systemPrompt := "You are a helpful assistant."
	userMsg := "Say hello in one sentence."

	response, err := adapter.Generate(ctx, systemPrompt, userMsg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if response == "" {
		t.Error("Expected non-empty content in response")
	}
}
