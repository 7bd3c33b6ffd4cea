package graph

import (
	"context"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// These tests require a running Neo4j instance on the default bolt port.
// They follow the same opt-in convention as the FalkorDB live test.

func TestNeoStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestNeoDriver(ctx)
	if err != nil {
		t.Skipf("Neo4j not available: %v", err)
	}
	store := NewNeoStore(driver)
	defer store.Close(ctx)

	userID := "test-user-" + time.Now().Format("20060102150405")
	convID := "test-conv-" + time.Now().Format("20060102150405")

	// Clean up
	defer func() {
		session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)
		_, _ = session.Run(ctx,
			"MATCH (e:Episode {userId: $userId}) DETACH DELETE e",
			map[string]interface{}{"userId": userID})
		_, _ = session.Run(ctx,
			"MATCH (u:User {id: $userId}) DETACH DELETE u",
			map[string]interface{}{"userId": userID})
		_, _ = session.Run(ctx,
			"MATCH (c:Conversation {id: $convId}) DETACH DELETE c",
			map[string]interface{}{"convId": convID})
	}()

	if err := store.Initialize(ctx, false); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	first := &Episode{
		Content:        "Knowledge graphs link entities through typed relationships",
		Source:         SourceChatUser,
		UserID:         userID,
		ConversationID: convID,
	}
	if err := store.Ingest(ctx, first); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	second := &Episode{
		Content:        "Episodes carry the raw content the graph is built from",
		Source:         SourceChatAssistant,
		UserID:         userID,
		ConversationID: convID,
	}
	if err := store.Ingest(ctx, second); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	results, err := store.Search(ctx, SearchQuery{
		Text:         "typed relationships",
		MaxResults:   5,
		CenterUserID: userID,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	found := false
	for _, r := range results {
		if r.EpisodeID == first.ID {
			found = true
			if r.Distance != 1 {
				t.Errorf("owned episode distance = %d, want 1", r.Distance)
			}
		}
	}
	if !found {
		t.Error("ingested episode not found by search")
	}

	recent, err := store.RecentEpisodes(ctx, EpisodeFilter{
		ConversationID: convID,
		Limit:          10,
	})
	if err != nil {
		t.Fatalf("RecentEpisodes failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent episodes = %d, want 2", len(recent))
	}
	// Chronological order, oldest first
	if recent[0].ID != first.ID || recent[1].ID != second.ID {
		t.Errorf("episodes out of order: %s, %s", recent[0].ID, recent[1].ID)
	}

	if status := store.HealthCheck(ctx); status.State != StateHealthy {
		t.Errorf("health = %s (%s), want %s", status.State, status.Message, StateHealthy)
	}
}

func TestNeoStoreSearchMissingCenterFallsBack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestNeoDriver(ctx)
	if err != nil {
		t.Skipf("Neo4j not available: %v", err)
	}
	store := NewNeoStore(driver)
	defer store.Close(ctx)

	if err := store.Initialize(ctx, false); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	ep := &Episode{Content: "Fallback ranking still returns relevance ordered hits"}
	if err := store.Ingest(ctx, ep); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	defer func() {
		session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)
		_, _ = session.Run(ctx,
			"MATCH (e:Episode {uuid: $uuid}) DETACH DELETE e",
			map[string]interface{}{"uuid": ep.ID})
	}()

	results, err := store.Search(ctx, SearchQuery{
		Text:         "fallback ranking",
		CenterUserID: "no-such-user-anywhere",
	})
	if err != nil {
		t.Fatalf("Search with missing center must not error: %v", err)
	}
	for _, r := range results {
		if r.Distance != -1 {
			t.Errorf("uncentered result has distance %d", r.Distance)
		}
	}
}

func createTestNeoDriver(ctx context.Context) (neo4j.DriverWithContext, error) {
	uri := "bolt://localhost:7687"
	user := "neo4j"
	password := "password"

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	return driver, nil
}
