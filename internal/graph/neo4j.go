package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "graphchat/pkg/errors"
	"graphchat/pkg/logger"
)

// NeoStore implements Store against a Neo4j server.
type NeoStore struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewNeoStore wraps an already-constructed driver. The driver owns the
// connection pool; the store just runs sessions against it.
func NewNeoStore(driver neo4j.DriverWithContext) *NeoStore {
	return &NeoStore{
		driver: driver,
		logger: logger.Get(),
	}
}

// Initialize creates the constraints and indexes. All statements use
// IF NOT EXISTS, so re-running against an initialized store is a no-op.
func (s *NeoStore) Initialize(ctx context.Context, reset bool) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return apperrors.NewConnectionFailed(s.driver.Target().Host, err)
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if reset {
		if _, err := session.Run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
			return apperrors.NewSchemaSetupFailed("graph reset", err)
		}
		s.logger.Info("Graph reset")
	}

	statements := []struct {
		name   string
		cypher string
	}{
		{"episode uuid constraint", "CREATE CONSTRAINT episode_uuid IF NOT EXISTS FOR (e:Episode) REQUIRE e.uuid IS UNIQUE"},
		{"user id constraint", "CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE"},
		{"conversation id constraint", "CREATE CONSTRAINT conversation_id IF NOT EXISTS FOR (c:Conversation) REQUIRE c.id IS UNIQUE"},
		{"episode created_at index", "CREATE INDEX episode_created_at IF NOT EXISTS FOR (e:Episode) ON (e.createdAt)"},
		{"episode fulltext index", "CREATE FULLTEXT INDEX episode_content IF NOT EXISTS FOR (e:Episode) ON EACH [e.content, e.name]"},
	}
	for _, st := range statements {
		if _, err := session.Run(ctx, st.cypher, nil); err != nil {
			return apperrors.NewSchemaSetupFailed(st.name, err)
		}
	}

	s.logger.Info("Neo4j store initialized")
	return nil
}

// Ingest writes one episode node and links it to its user and
// conversation when those identifiers are present.
func (s *NeoStore) Ingest(ctx context.Context, ep *Episode) error {
	if err := normalizeEpisode(ep); err != nil {
		return err
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	var b strings.Builder
	b.WriteString(`
		CREATE (e:Episode {
			uuid: $uuid, name: $name, content: $content,
			contentType: $contentType, source: $source,
			userId: $userId, conversationId: $conversationId,
			createdAt: $createdAt
		})`)
	if ep.UserID != "" {
		b.WriteString(`
		WITH e MERGE (u:User {id: $userId}) CREATE (u)-[:OWNS]->(e)`)
	}
	if ep.ConversationID != "" {
		b.WriteString(`
		WITH e MERGE (c:Conversation {id: $conversationId}) CREATE (e)-[:IN_CONVERSATION]->(c)`)
	}

	_, err := session.Run(ctx, b.String(), map[string]interface{}{
		"uuid":           ep.ID,
		"name":           ep.Name,
		"content":        ep.Content,
		"contentType":    string(ep.ContentType),
		"source":         ep.Source,
		"userId":         ep.UserID,
		"conversationId": ep.ConversationID,
		"createdAt":      ep.CreatedAt.UnixNano(),
	})
	if err != nil {
		return apperrors.NewIngestFailed(ep.Name, err)
	}

	s.logger.Debug("Episode ingested",
		zap.String("episode_id", ep.ID),
		zap.String("source", ep.Source),
	)
	return nil
}

// Search runs a full-text query and re-ranks the hits client-side.
func (s *NeoStore) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	text := sanitizeFulltext(q.Text)
	if text == "" {
		return []SearchResult{}, nil
	}
	limit := q.MaxResults
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		CALL db.index.fulltext.queryNodes('episode_content', $query) YIELD node, score
		RETURN node.uuid as uuid, node.name as name, node.content as content,
		       node.source as source, node.createdAt as createdAt, score
		ORDER BY score DESC
		LIMIT $limit
	`
	result, err := session.Run(ctx, query, map[string]interface{}{
		"query": text,
		"limit": limit,
	})
	if err != nil {
		if isMissingIndex(err) {
			return nil, apperrors.NewQueryFailed(q.Text, fmt.Errorf("store is not initialized, run init first: %w", err))
		}
		return nil, apperrors.NewQueryFailed(q.Text, err)
	}

	var results []SearchResult
	for result.Next(ctx) {
		record := result.Record()
		results = append(results, SearchResult{
			EpisodeID: recordString(record, "uuid"),
			Name:      recordString(record, "name"),
			Content:   recordString(record, "content"),
			Source:    recordString(record, "source"),
			CreatedAt: time.Unix(0, recordInt64(record, "createdAt")).UTC(),
			Score:     recordFloat(record, "score"),
			Distance:  -1,
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewQueryFailed(q.Text, err)
	}
	if results == nil {
		results = []SearchResult{}
	}

	centered := false
	if q.CenterUserID != "" && len(results) > 0 {
		centered = s.applyCenterDistances(ctx, q.CenterUserID, results)
	}
	rankResults(results, centered)
	return results, nil
}

// applyCenterDistances annotates results with their hop count from the
// center user's node. A missing node, or any error on the probe, leaves
// the results unranked rather than failing the search.
func (s *NeoStore) applyCenterDistances(ctx context.Context, userID string, results []SearchResult) bool {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	probe, err := session.Run(ctx, "MATCH (u:User {id: $id}) RETURN u.id LIMIT 1",
		map[string]interface{}{"id": userID})
	if err != nil {
		s.logger.Warn("Center node probe failed, ranking by relevance only",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return false
	}
	if !probe.Next(ctx) {
		return false
	}

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.EpisodeID
	}
	query := `
		MATCH (u:User {id: $id})
		MATCH (e:Episode) WHERE e.uuid IN $ids
		OPTIONAL MATCH p = shortestPath((u)-[*..4]-(e))
		RETURN e.uuid as uuid,
		       CASE WHEN p IS NULL THEN -1 ELSE length(p) END as distance
	`
	result, err := session.Run(ctx, query, map[string]interface{}{
		"id":  userID,
		"ids": ids,
	})
	if err != nil {
		s.logger.Warn("Center distance query failed, ranking by relevance only",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return false
	}

	distances := make(map[string]int, len(results))
	for result.Next(ctx) {
		record := result.Record()
		distances[recordString(record, "uuid")] = int(recordInt64(record, "distance"))
	}
	for i := range results {
		if d, ok := distances[results[i].EpisodeID]; ok && d >= 0 {
			results[i].Distance = d
		}
	}
	return true
}

// RecentEpisodes returns the newest matching episodes, oldest first.
func (s *NeoStore) RecentEpisodes(ctx context.Context, f EpisodeFilter) ([]Episode, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	params := map[string]interface{}{"limit": limit}
	var clauses []string
	if len(f.Sources) > 0 {
		clauses = append(clauses, "e.source IN $sources")
		params["sources"] = f.Sources
	}
	if f.UserID != "" {
		clauses = append(clauses, "e.userId = $userId")
		params["userId"] = f.UserID
	}
	if f.ConversationID != "" {
		clauses = append(clauses, "e.conversationId = $conversationId")
		params["conversationId"] = f.ConversationID
	}

	var b strings.Builder
	b.WriteString("MATCH (e:Episode)")
	if len(clauses) > 0 {
		b.WriteString(" WHERE " + strings.Join(clauses, " AND "))
	}
	b.WriteString(`
		RETURN e.uuid as uuid, e.name as name, e.content as content,
		       e.contentType as contentType, e.source as source,
		       e.userId as userId, e.conversationId as conversationId,
		       e.createdAt as createdAt
		ORDER BY e.createdAt DESC
		LIMIT $limit
	`)

	result, err := session.Run(ctx, b.String(), params)
	if err != nil {
		return nil, apperrors.NewQueryFailed("recent episodes", err)
	}

	var episodes []Episode
	for result.Next(ctx) {
		record := result.Record()
		episodes = append(episodes, Episode{
			ID:             recordString(record, "uuid"),
			Name:           recordString(record, "name"),
			Content:        recordString(record, "content"),
			ContentType:    ContentType(recordString(record, "contentType")),
			Source:         recordString(record, "source"),
			UserID:         recordString(record, "userId"),
			ConversationID: recordString(record, "conversationId"),
			CreatedAt:      time.Unix(0, recordInt64(record, "createdAt")).UTC(),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewQueryFailed("recent episodes", err)
	}

	// Reverse to get chronological order
	for i, j := 0, len(episodes)-1; i < j; i, j = i+1, j-1 {
		episodes[i], episodes[j] = episodes[j], episodes[i]
	}
	return episodes, nil
}

// HealthCheck distinguishes an unreachable server, a reachable server
// that cannot run queries, a store missing its schema, and a fully
// working store.
func (s *NeoStore) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{CheckedAt: time.Now().UTC()}

	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		status.State = StateUnhealthy
		status.Message = fmt.Sprintf("neo4j unreachable: %v", err)
		return status
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	if result, err := session.Run(ctx, "RETURN 1", nil); err != nil {
		status.State = StateDegraded
		status.Message = fmt.Sprintf("graph queries failing: %v", err)
		return status
	} else if _, err := result.Consume(ctx); err != nil {
		status.State = StateDegraded
		status.Message = fmt.Sprintf("graph queries failing: %v", err)
		return status
	}

	probe := "CALL db.index.fulltext.queryNodes('episode_content', 'health') YIELD node RETURN node.uuid LIMIT 1"
	if result, err := session.Run(ctx, probe, nil); err != nil {
		return classifyProbeFailure(status, err)
	} else if _, err := result.Consume(ctx); err != nil {
		return classifyProbeFailure(status, err)
	}

	status.State = StateHealthy
	status.Message = "ok"
	return status
}

func classifyProbeFailure(status HealthStatus, err error) HealthStatus {
	if isMissingIndex(err) {
		status.State = StateUninitialized
		status.Message = "fulltext index missing, run init"
		return status
	}
	status.State = StateDegraded
	status.Message = fmt.Sprintf("fulltext probe failed: %v", err)
	return status
}

// Close shuts down the underlying driver and its connection pool.
func (s *NeoStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Record accessors. The driver hands back interface{} values; these keep
// the row-decoding call sites flat.

func recordString(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func recordFloat(record *neo4j.Record, key string) float64 {
	val, ok := record.Get(key)
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func recordInt64(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}
