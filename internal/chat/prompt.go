package chat

import (
	"fmt"
	"strings"

	"graphchat/internal/graph"
)

// systemPrompt frames every completion request. The retrieved context
// travels in the user message so the system half stays cacheable.
const systemPrompt = `# Knowledge Base Assistant

You answer questions using a personal knowledge base. Each request carries
a "Retrieved Context" section with the entries most relevant to the
question, and possibly a "Recent Conversation" section with the ongoing
exchange.

## Instructions

1. Ground your answer in the retrieved context. Quote or paraphrase it
   rather than inventing details.
2. When the context does not contain the answer, say so plainly and
   suggest adding relevant documents instead of guessing.
3. Use the recent conversation only to resolve references like "it" or
   "that one", not as a source of facts.
4. Be direct. Answer the question with the data you were given.`

// buildUserMessage assembles the completion request body from the turn's
// retrieved context and bounded history.
func buildUserMessage(query string, results []graph.SearchResult, history []Turn) string {
	var b strings.Builder

	if len(history) > 0 {
		b.WriteString("## Recent Conversation\n")
		for _, t := range history {
			fmt.Fprintf(&b, "%s: %s\n", roleLabel(t.Role), t.Content)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Retrieved Context\n")
	if len(results) == 0 {
		b.WriteString("(the knowledge base has no entries matching this question)\n")
	} else {
		for _, r := range results {
			fmt.Fprintf(&b, "- %s\n", r.Content)
		}
	}

	fmt.Fprintf(&b, "\n## Question\n%s\n", query)
	return b.String()
}

func roleLabel(role string) string {
	if role == RoleAssistant {
		return "Assistant"
	}
	return "User"
}
