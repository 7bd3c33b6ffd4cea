package chat

import (
	"strings"
	"testing"

	"graphchat/internal/graph"
)

func TestSummarizeWithResults(t *testing.T) {
	results := []graph.SearchResult{
		{Content: "Go ships a race detector"},
		{Content: "Channels synchronize goroutines"},
	}

	got := Summarize("go concurrency", results, 5)
	if !strings.Contains(got, `"go concurrency"`) {
		t.Errorf("summary does not quote the query: %q", got)
	}
	if !strings.Contains(got, "Go ships a race detector") {
		t.Errorf("summary missing first result: %q", got)
	}
	if !strings.Contains(got, "Channels synchronize goroutines") {
		t.Errorf("summary missing second result: %q", got)
	}
	if strings.Contains(got, "more matches") {
		t.Error("resultset below the limit should not hint at more matches")
	}
}

func TestSummarizeNoResults(t *testing.T) {
	got := Summarize("unknown topic", nil, 5)
	if !strings.Contains(got, `"unknown topic"`) {
		t.Errorf("summary does not quote the query: %q", got)
	}
	if !strings.Contains(got, "couldn't find") {
		t.Errorf("summary should state nothing was found: %q", got)
	}
}

func TestSummarizeFullResultSetHintsAtMore(t *testing.T) {
	results := []graph.SearchResult{
		{Content: "one"}, {Content: "two"}, {Content: "three"},
	}
	got := Summarize("topic", results, 3)
	if !strings.Contains(got, "more matches") {
		t.Errorf("full resultset should hint at more matches: %q", got)
	}
}

func TestSummarizeGreeting(t *testing.T) {
	for _, q := range []string{"hello", "Hi there!", "hey, what's up"} {
		got := Summarize(q, nil, 5)
		if !strings.Contains(got, "Hello!") {
			t.Errorf("Summarize(%q) = %q, want greeting", q, got)
		}
	}
}

func TestSummarizeHelp(t *testing.T) {
	got := Summarize("help", nil, 5)
	if !strings.Contains(got, "Ask a question") {
		t.Errorf("help response missing guidance: %q", got)
	}
}

func TestClassifyQueryWholeWordsOnly(t *testing.T) {
	// "hi" inside "this" or "chip" must not read as a greeting.
	if classifyQuery("explain this chip design") != queryPlain {
		t.Error("substring match misclassified a plain query")
	}
	if classifyQuery("what is hip dysplasia") != queryPlain {
		t.Error("substring match misclassified a plain query")
	}
	if classifyQuery("Hello.") != queryGreeting {
		t.Error("trailing punctuation broke greeting detection")
	}
}

func TestSnippetTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("word ", 200)
	got := snippet(long)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long content not truncated: %q", got)
	}
	if len([]rune(got)) > snippetRunes+3 {
		t.Errorf("snippet too long: %d runes", len([]rune(got)))
	}

	if got := snippet("short"); got != "short" {
		t.Errorf("short content altered: %q", got)
	}
}

func TestSnippetCollapsesWhitespace(t *testing.T) {
	got := snippet("line one\n\tline two")
	if got != "line one line two" {
		t.Errorf("snippet = %q", got)
	}
}
