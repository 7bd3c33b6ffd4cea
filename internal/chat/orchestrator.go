package chat

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"graphchat/internal/graph"
	"graphchat/pkg/logger"
)

// maxQueryRunes bounds accepted question length.
const maxQueryRunes = 1000

// Canned guidance for input the orchestrator refuses to process.
const (
	msgEmptyQuery   = "Please enter a question."
	msgQueryTooLong = "That question is too long. Please keep it under 1000 characters."
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Generator produces a completion for a prompt. *adapter.LLMAdapter is
// the production implementation.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userMsg string) (string, error)
}

// Options tune per-turn defaults. Zero values fall back to sane limits.
type Options struct {
	// HistorySize is the number of prior exchanges carried into prompts
	// and returned to callers.
	HistorySize int
	// MaxResults bounds retrieval when the request does not override it.
	MaxResults int
}

// Orchestrator runs conversational turns over the knowledge graph. It
// holds no mutable state; history lives in the graph, so every surface
// sharing a store observes the same conversation.
type Orchestrator struct {
	store       graph.Store
	generator   Generator
	historySize int
	maxResults  int
	logger      *zap.Logger
}

// NewOrchestrator creates an orchestrator. A nil generator is valid and
// routes every turn through the extractive summarizer.
func NewOrchestrator(store graph.Store, generator Generator, opts Options) *Orchestrator {
	if opts.HistorySize <= 0 {
		opts.HistorySize = 10
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	return &Orchestrator{
		store:       store,
		generator:   generator,
		historySize: opts.HistorySize,
		maxResults:  opts.MaxResults,
		logger:      logger.Get(),
	}
}

// TurnRequest describes one user query.
type TurnRequest struct {
	Query  string
	UserID string
	// ConversationID groups turns; empty starts a new conversation.
	ConversationID string
	// MaxResults and HistorySize override the orchestrator defaults
	// when positive.
	MaxResults  int
	HistorySize int
}

// Turn is one message of a conversation.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TurnResult is the outcome of one processed turn.
type TurnResult struct {
	Response       string
	ConversationID string
	// Degraded reports that the summarizer produced the response, either
	// because no generator is configured or because it failed.
	Degraded bool
	// History is the bounded conversation including this turn, oldest
	// message first.
	History []Turn
}

// RunTurn executes a single conversational turn.
func (o *Orchestrator) RunTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	query := strings.TrimSpace(req.Query)
	convID := req.ConversationID
	if convID == "" {
		convID = uuid.New().String()
	}

	// 1. Validate input. Refused turns never touch the store.
	if query == "" {
		return &TurnResult{Response: msgEmptyQuery, ConversationID: convID, Degraded: true}, nil
	}
	if utf8.RuneCountInString(query) > maxQueryRunes {
		return &TurnResult{Response: msgQueryTooLong, ConversationID: convID, Degraded: true}, nil
	}

	maxResults := o.maxResults
	if req.MaxResults > 0 {
		maxResults = req.MaxResults
	}
	historySize := o.historySize
	if req.HistorySize > 0 {
		historySize = req.HistorySize
	}

	// 2. Retrieve context. Without it no response can be grounded, so
	// search failures abort the turn.
	results, err := o.store.Search(ctx, graph.SearchQuery{
		Text:         query,
		MaxResults:   maxResults,
		CenterUserID: req.UserID,
	})
	if err != nil {
		return nil, err
	}

	// 3. Reconstruct the conversation so far.
	history := o.loadHistory(ctx, convID, historySize)

	// 4. Generate the response, degrading to the summarizer on any
	// generator problem.
	response, degraded := o.generate(ctx, query, results, history, maxResults)

	// 5. Persist both sides of the turn. The response is already in
	// hand, so failures here are logged and swallowed.
	queryAt := time.Now().UTC()
	// The response is stamped just after the query so history reads keep
	// the pair ordered.
	responseAt := queryAt.Add(time.Nanosecond)
	pair := []*graph.Episode{
		{
			Content:        query,
			ContentType:    graph.ContentTypeText,
			Source:         graph.SourceChatUser,
			UserID:         req.UserID,
			ConversationID: convID,
			CreatedAt:      queryAt,
		},
		{
			Content:        response,
			ContentType:    graph.ContentTypeText,
			Source:         graph.SourceChatAssistant,
			UserID:         req.UserID,
			ConversationID: convID,
			CreatedAt:      responseAt,
		},
	}
	for _, ep := range pair {
		if err := o.store.Ingest(ctx, ep); err != nil {
			o.logger.Warn("Failed to persist chat turn",
				zap.String("source", ep.Source),
				zap.String("conversation_id", convID),
				zap.Error(err),
			)
		}
	}

	history = append(history,
		Turn{Role: RoleUser, Content: query, Timestamp: queryAt},
		Turn{Role: RoleAssistant, Content: response, Timestamp: responseAt},
	)

	o.logger.Debug("Chat turn completed",
		zap.String("conversation_id", convID),
		zap.Int("context_results", len(results)),
		zap.Bool("degraded", degraded),
	)

	return &TurnResult{
		Response:       response,
		ConversationID: convID,
		Degraded:       degraded,
		History:        boundHistory(history, historySize),
	}, nil
}

// generate is the explicit two-branch decision between the configured
// generator and the summarizer.
func (o *Orchestrator) generate(ctx context.Context, query string, results []graph.SearchResult, history []Turn, maxResults int) (string, bool) {
	if o.generator == nil {
		return Summarize(query, results, maxResults), true
	}

	response, err := o.generator.Generate(ctx, systemPrompt, buildUserMessage(query, results, history))
	if err != nil {
		o.logger.Warn("Generator failed, falling back to summarizer", zap.Error(err))
		return Summarize(query, results, maxResults), true
	}
	if strings.TrimSpace(response) == "" {
		o.logger.Warn("Generator returned empty response, falling back to summarizer")
		return Summarize(query, results, maxResults), true
	}
	return response, false
}

// loadHistory rebuilds the bounded conversation from the episode stream.
// A read failure degrades to an empty history instead of failing the turn.
func (o *Orchestrator) loadHistory(ctx context.Context, conversationID string, historySize int) []Turn {
	episodes, err := o.store.RecentEpisodes(ctx, graph.EpisodeFilter{
		Sources:        []string{graph.SourceChatUser, graph.SourceChatAssistant},
		ConversationID: conversationID,
		Limit:          historySize * 2,
	})
	if err != nil {
		o.logger.Warn("Failed to load conversation history",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return nil
	}

	turns := make([]Turn, 0, len(episodes))
	for _, ep := range episodes {
		role := RoleUser
		if ep.Source == graph.SourceChatAssistant {
			role = RoleAssistant
		}
		turns = append(turns, Turn{Role: role, Content: ep.Content, Timestamp: ep.CreatedAt})
	}
	return turns
}

// boundHistory keeps the trailing window of a conversation.
func boundHistory(turns []Turn, pairs int) []Turn {
	max := pairs * 2
	if len(turns) <= max {
		return turns
	}
	return turns[len(turns)-max:]
}
