package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "graphchat/pkg/errors"
	"graphchat/pkg/logger"
)

// FalkorOptions configures the FalkorDB-backed store.
type FalkorOptions struct {
	Addr     string
	Username string
	Password string
	// Graph is the key the graph lives under.
	Graph string
}

// FalkorStore implements Store against FalkorDB. FalkorDB speaks the
// Redis protocol, so the store drives it through a plain Redis client
// and the GRAPH.* command family.
type FalkorStore struct {
	client *redis.Client
	graph  string
	logger *zap.Logger
}

// NewFalkorStore creates a store without touching the network.
func NewFalkorStore(opts FalkorOptions) *FalkorStore {
	return &FalkorStore{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Username: opts.Username,
			Password: opts.Password,
		}),
		graph:  opts.Graph,
		logger: logger.Get(),
	}
}

// query runs one Cypher statement via GRAPH.QUERY and decodes the reply.
func (s *FalkorStore) query(ctx context.Context, cypher string) (*resultSet, error) {
	reply, err := s.client.Do(ctx, "GRAPH.QUERY", s.graph, cypher).Result()
	if err != nil {
		return nil, err
	}
	return decodeResultSet(reply)
}

// Initialize creates the indexes the store relies on. FalkorDB treats
// duplicate index creation as an error, so "already exists" replies are
// swallowed to keep the call idempotent.
func (s *FalkorStore) Initialize(ctx context.Context, reset bool) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apperrors.NewConnectionFailed(s.client.Options().Addr, err)
	}

	if reset {
		if err := s.client.Do(ctx, "GRAPH.DELETE", s.graph).Err(); err != nil && !isMissingGraph(err) {
			return apperrors.NewSchemaSetupFailed("graph reset", err)
		}
		s.logger.Info("Graph reset", zap.String("graph", s.graph))
	}

	indexes := []struct {
		name   string
		cypher string
	}{
		{"episode uuid", "CREATE INDEX ON :Episode(uuid)"},
		{"episode created_at", "CREATE INDEX ON :Episode(createdAt)"},
		{"user id", "CREATE INDEX ON :User(id)"},
		{"conversation id", "CREATE INDEX ON :Conversation(id)"},
		{"episode fulltext", "CALL db.idx.fulltext.createNodeIndex('Episode', 'content', 'name')"},
	}
	for _, idx := range indexes {
		if _, err := s.query(ctx, idx.cypher); err != nil && !isIndexExists(err) {
			return apperrors.NewSchemaSetupFailed(idx.name, err)
		}
	}

	s.logger.Info("FalkorDB store initialized", zap.String("graph", s.graph))
	return nil
}

// Ingest writes one episode node and links it to its user and
// conversation when those identifiers are present.
func (s *FalkorStore) Ingest(ctx context.Context, ep *Episode) error {
	if err := normalizeEpisode(ep); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b,
		"CREATE (e:Episode {uuid: %s, name: %s, content: %s, contentType: %s, source: %s, userId: %s, conversationId: %s, createdAt: %d})",
		cypherString(ep.ID),
		cypherString(ep.Name),
		cypherString(ep.Content),
		cypherString(string(ep.ContentType)),
		cypherString(ep.Source),
		cypherString(ep.UserID),
		cypherString(ep.ConversationID),
		ep.CreatedAt.UnixNano(),
	)
	if ep.UserID != "" {
		fmt.Fprintf(&b, " WITH e MERGE (u:User {id: %s}) CREATE (u)-[:OWNS]->(e)", cypherString(ep.UserID))
	}
	if ep.ConversationID != "" {
		fmt.Fprintf(&b, " WITH e MERGE (c:Conversation {id: %s}) CREATE (e)-[:IN_CONVERSATION]->(c)", cypherString(ep.ConversationID))
	}

	if _, err := s.query(ctx, b.String()); err != nil {
		return apperrors.NewIngestFailed(ep.Name, err)
	}

	s.logger.Debug("Episode ingested",
		zap.String("episode_id", ep.ID),
		zap.String("source", ep.Source),
	)
	return nil
}

// Search runs a full-text query and re-ranks the hits client-side.
func (s *FalkorStore) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	text := sanitizeFulltext(q.Text)
	if text == "" {
		return []SearchResult{}, nil
	}
	limit := q.MaxResults
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	cypher := fmt.Sprintf(
		"CALL db.idx.fulltext.queryNodes('Episode', %s) YIELD node, score "+
			"RETURN node.uuid, node.name, node.content, node.source, node.createdAt, score "+
			"ORDER BY score DESC LIMIT %d",
		cypherString(text), limit,
	)
	rs, err := s.query(ctx, cypher)
	if err != nil {
		if isMissingIndex(err) {
			return nil, apperrors.NewQueryFailed(q.Text, fmt.Errorf("store is not initialized, run init first: %w", err))
		}
		return nil, apperrors.NewQueryFailed(q.Text, err)
	}

	results := make([]SearchResult, 0, len(rs.rows))
	for _, row := range rs.rows {
		results = append(results, SearchResult{
			EpisodeID: toString(cell(row, 0)),
			Name:      toString(cell(row, 1)),
			Content:   toString(cell(row, 2)),
			Source:    toString(cell(row, 3)),
			CreatedAt: time.Unix(0, toInt64(cell(row, 4))).UTC(),
			Score:     toFloat(cell(row, 5)),
			Distance:  -1,
		})
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
func (s *FalkorStore) applyCenterDistances(ctx context.Context, userID string, results []SearchResult) bool {
	probe := fmt.Sprintf("MATCH (u:User {id: %s}) RETURN u.id LIMIT 1", cypherString(userID))
	rs, err := s.query(ctx, probe)
	if err != nil {
		s.logger.Warn("Center node probe failed, ranking by relevance only",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return false
	}
	if len(rs.rows) == 0 {
		return false
	}

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.EpisodeID
	}
	cypher := fmt.Sprintf(
		"MATCH (u:User {id: %s}) MATCH p = (u)-[*1..4]-(e:Episode) "+
			"WHERE e.uuid IN %s RETURN e.uuid, min(length(p))",
		cypherString(userID), cypherStringList(ids),
	)
	rs, err = s.query(ctx, cypher)
	if err != nil {
		s.logger.Warn("Center distance query failed, ranking by relevance only",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return false
	}

	distances := make(map[string]int, len(rs.rows))
	for _, row := range rs.rows {
		distances[toString(cell(row, 0))] = int(toInt64(cell(row, 1)))
	}
	for i := range results {
		if d, ok := distances[results[i].EpisodeID]; ok {
			results[i].Distance = d
		}
	}
	return true
}

// RecentEpisodes returns the newest matching episodes, oldest first.
func (s *FalkorStore) RecentEpisodes(ctx context.Context, f EpisodeFilter) ([]Episode, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	var clauses []string
	if len(f.Sources) > 0 {
		clauses = append(clauses, "e.source IN "+cypherStringList(f.Sources))
	}
	if f.UserID != "" {
		clauses = append(clauses, "e.userId = "+cypherString(f.UserID))
	}
	if f.ConversationID != "" {
		clauses = append(clauses, "e.conversationId = "+cypherString(f.ConversationID))
	}

	var b strings.Builder
	b.WriteString("MATCH (e:Episode)")
	if len(clauses) > 0 {
		b.WriteString(" WHERE " + strings.Join(clauses, " AND "))
	}
	fmt.Fprintf(&b,
		" RETURN e.uuid, e.name, e.content, e.contentType, e.source, e.userId, e.conversationId, e.createdAt"+
			" ORDER BY e.createdAt DESC LIMIT %d", limit)

	rs, err := s.query(ctx, b.String())
	if err != nil {
		return nil, apperrors.NewQueryFailed("recent episodes", err)
	}

	episodes := make([]Episode, 0, len(rs.rows))
	// Rows arrive newest first; walk them backwards for chronological order.
	for i := len(rs.rows) - 1; i >= 0; i-- {
		row := rs.rows[i]
		episodes = append(episodes, Episode{
			ID:             toString(cell(row, 0)),
			Name:           toString(cell(row, 1)),
			Content:        toString(cell(row, 2)),
			ContentType:    ContentType(toString(cell(row, 3))),
			Source:         toString(cell(row, 4)),
			UserID:         toString(cell(row, 5)),
			ConversationID: toString(cell(row, 6)),
			CreatedAt:      time.Unix(0, toInt64(cell(row, 7))).UTC(),
		})
	}
	return episodes, nil
}

// HealthCheck distinguishes an unreachable server, a reachable server
// whose graph commands fail, a store missing its schema, and a fully
// working store.
func (s *FalkorStore) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{CheckedAt: time.Now().UTC()}

	if err := s.client.Ping(ctx).Err(); err != nil {
		status.State = StateUnhealthy
		status.Message = fmt.Sprintf("falkordb unreachable: %v", err)
		return status
	}
	if _, err := s.query(ctx, "RETURN 1"); err != nil {
		status.State = StateDegraded
		status.Message = fmt.Sprintf("graph queries failing: %v", err)
		return status
	}

	probe := "CALL db.idx.fulltext.queryNodes('Episode', 'health') YIELD node RETURN node.uuid LIMIT 1"
	if _, err := s.query(ctx, probe); err != nil {
		if isMissingIndex(err) {
			status.State = StateUninitialized
			status.Message = "fulltext index missing, run init"
			return status
		}
		status.State = StateDegraded
		status.Message = fmt.Sprintf("fulltext probe failed: %v", err)
		return status
	}

	status.State = StateHealthy
	status.Message = "ok"
	return status
}

// Close shuts down the underlying Redis connection pool.
func (s *FalkorStore) Close(ctx context.Context) error {
	return s.client.Close()
}
