package graph

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"graphchat/pkg/config"
	apperrors "graphchat/pkg/errors"
)

// defaultSearchLimit bounds searches when the caller passes no limit.
const defaultSearchLimit = 5

// defaultRecentLimit bounds history reads when the caller passes no limit.
const defaultRecentLimit = 20

// Store is the client adapter for the knowledge graph. Orchestration code
// depends only on this interface; each supported backend provides one
// implementation. A single Store is shared process-wide and the backends'
// drivers handle their own connection pooling.
type Store interface {
	// Initialize creates the indexes and constraints the store needs.
	// With reset it destroys all existing graph data first.
	Initialize(ctx context.Context, reset bool) error
	// Ingest stores one episode, linking it to its user and conversation
	// nodes when those identifiers are set. The episode's ID and
	// CreatedAt are filled in when unset.
	Ingest(ctx context.Context, ep *Episode) error
	// Search runs a full-text query over episode content. Results come
	// back deterministically ordered; see SearchQuery.CenterUserID.
	Search(ctx context.Context, q SearchQuery) ([]SearchResult, error)
	// RecentEpisodes returns the most recent episodes matching the
	// filter, in chronological order (oldest first).
	RecentEpisodes(ctx context.Context, f EpisodeFilter) ([]Episode, error)
	// HealthCheck probes the store and reports a status without erroring.
	HealthCheck(ctx context.Context) HealthStatus
	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// Open constructs the store for the configured backend. No I/O happens
// here; connectivity problems surface on the first operation.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.GraphBackend {
	case config.BackendFalkor:
		return NewFalkorStore(FalkorOptions{
			Addr:     cfg.FalkorAddr(),
			Username: cfg.FalkorUsername,
			Password: cfg.FalkorPassword,
			Graph:    cfg.GraphName,
		}), nil
	case config.BackendNeo4j:
		driver, err := neo4j.NewDriverWithContext(
			cfg.Neo4jURI,
			neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
		)
		if err != nil {
			return nil, apperrors.NewConnectionFailed(cfg.Neo4jURI, err)
		}
		return NewNeoStore(driver), nil
	default:
		return nil, fmt.Errorf("unknown graph backend: %q", cfg.GraphBackend)
	}
}

// normalizeEpisode validates required fields and fills generated ones.
// Both backends run every episode through it before writing.
func normalizeEpisode(ep *Episode) error {
	if ep == nil {
		return apperrors.NewInvalidInput("episode", "must not be nil")
	}
	if strings.TrimSpace(ep.Content) == "" {
		return apperrors.NewInvalidInput("content", "must not be empty")
	}
	switch ep.ContentType {
	case ContentTypeText, ContentTypeJSON:
	case "":
		ep.ContentType = ContentTypeText
	default:
		return apperrors.NewInvalidInput("content type", fmt.Sprintf("unknown value %q", ep.ContentType))
	}
	if ep.ID == "" {
		ep.ID = uuid.New().String()
	}
	if ep.Name == "" {
		ep.Name = "episode_" + ep.ID[:8]
	}
	if ep.Source == "" {
		ep.Source = SourceDocument
	}
	if ep.CreatedAt.IsZero() {
		ep.CreatedAt = time.Now().UTC()
	}
	return nil
}

// sanitizeFulltext strips characters that carry operator meaning in the
// stores' full-text query syntaxes, leaving plain search terms.
func sanitizeFulltext(query string) string {
	var b strings.Builder
	for _, r := range query {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// isMissingIndex reports whether an error looks like a missing full-text
// index rather than a broken store. Used to tell "uninitialized" from
// "degraded" in health probes.
func isMissingIndex(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "index") {
		return false
	}
	return strings.Contains(msg, "no such") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "doesn't exist")
}
