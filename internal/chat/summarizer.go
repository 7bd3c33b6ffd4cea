package chat

import (
	"fmt"
	"strings"

	"graphchat/internal/graph"
)

// snippetRunes caps how much of each retrieved entry the summarizer quotes.
const snippetRunes = 240

const helpResponse = `You can:
- Ask a question in plain language to search the knowledge base
- Type 'clear' to start a new conversation
- Type 'exit' or 'quit' to leave the chat

Example questions:
- "Tell me about knowledge graphs"
- "What documents mention deployment?"
- "What's the current project status?"`

// Summarize produces a response directly from search results, with no
// model behind it. It is the fallback for every turn the generator cannot
// serve, so it must succeed on any input, including zero results.
func Summarize(query string, results []graph.SearchResult, maxResults int) string {
	switch classifyQuery(query) {
	case queryGreeting:
		return "Hello! Ask me anything about what's stored in the knowledge base."
	case queryHelp:
		return helpResponse
	}

	if len(results) == 0 {
		return fmt.Sprintf(
			"I couldn't find anything about %q in the knowledge base.\n"+
				"Try a more specific question, or add relevant documents first.",
			query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here's what I found about %q:\n\n", query)
	for _, r := range results {
		fmt.Fprintf(&b, "- %s\n", snippet(r.Content))
	}
	if maxResults > 0 && len(results) >= maxResults {
		b.WriteString("\nThere may be more matches. Try a more specific question.")
	}
	return b.String()
}

type queryClass int

const (
	queryPlain queryClass = iota
	queryGreeting
	queryHelp
)

func classifyQuery(query string) queryClass {
	for _, token := range strings.Fields(strings.ToLower(query)) {
		switch strings.Trim(token, ".,!?") {
		case "hello", "hi", "hey":
			return queryGreeting
		case "help", "usage":
			return queryHelp
		}
	}
	return queryPlain
}

// snippet trims an entry to one readable line.
func snippet(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= snippetRunes {
		return content
	}
	return string(runes[:snippetRunes]) + "..."
}
