package graph

import (
	"time"
)

// ContentType tags the kind of payload an episode carries.
type ContentType string

const (
	// ContentTypeText marks free-text content
	ContentTypeText ContentType = "text"
	// ContentTypeJSON marks structured JSON content
	ContentTypeJSON ContentType = "json"
)

// Well-known source labels. Sources are free-form strings; these are the
// ones the application itself writes.
const (
	SourceDocument      = "document"
	SourceChatUser      = "chat_user"
	SourceChatAssistant = "chat_assistant"
	SourceSample        = "sample_data"
)

// Episode is one unit of content ingested into the knowledge graph.
// Episodes are immutable once written; deletion happens only through a
// full graph reset.
type Episode struct {
	ID             string
	Name           string
	Content        string
	ContentType    ContentType
	Source         string
	UserID         string
	ConversationID string
	CreatedAt      time.Time
}

// SearchQuery describes one full-text retrieval request.
type SearchQuery struct {
	Text string
	// MaxResults bounds the number of hits; non-positive values fall
	// back to the package default.
	MaxResults int
	// CenterUserID, when set, re-ranks hits by graph proximity to that
	// user's node. A missing node degrades to relevance-only ranking.
	CenterUserID string
}

// SearchResult is one retrieved episode fragment. Results are ephemeral
// and never persisted.
type SearchResult struct {
	EpisodeID string
	Name      string
	Content   string
	Source    string
	Score     float64
	// Distance is the hop count from the center node, or -1 when no
	// center ranking applied or no path exists.
	Distance  int
	CreatedAt time.Time
}

// EpisodeFilter selects episodes for history reconstruction.
type EpisodeFilter struct {
	Sources        []string
	UserID         string
	ConversationID string
	// Limit bounds how many of the most recent matches are returned.
	Limit int
}

// HealthState classifies the store's condition.
type HealthState string

const (
	// StateHealthy means the store is reachable and serving graph queries
	StateHealthy HealthState = "healthy"
	// StateUninitialized means the store is reachable but the schema has
	// not been created yet
	StateUninitialized HealthState = "uninitialized"
	// StateDegraded means the store is reachable but graph queries fail
	StateDegraded HealthState = "degraded"
	// StateUnhealthy means the store is unreachable
	StateUnhealthy HealthState = "unhealthy"
)

// HealthStatus is the result of a liveness probe. Probes report status
// instead of returning errors so monitoring endpoints stay simple.
type HealthStatus struct {
	State     HealthState
	Message   string
	CheckedAt time.Time
}

// Reachable reports whether the underlying connection works at all.
func (s HealthStatus) Reachable() bool {
	return s.State != StateUnhealthy
}
