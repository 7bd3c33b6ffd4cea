package sample

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"graphchat/internal/document"
	"graphchat/internal/graph"
)

type captureStore struct {
	episodes []*graph.Episode
}

func (s *captureStore) Initialize(ctx context.Context, reset bool) error { return nil }

func (s *captureStore) Ingest(ctx context.Context, episode *graph.Episode) error {
	s.episodes = append(s.episodes, episode)
	return nil
}

func (s *captureStore) Search(ctx context.Context, query graph.SearchQuery) ([]graph.SearchResult, error) {
	return nil, nil
}

func (s *captureStore) RecentEpisodes(ctx context.Context, filter graph.EpisodeFilter) ([]graph.Episode, error) {
	return nil, nil
}

func (s *captureStore) HealthCheck(ctx context.Context) graph.HealthStatus {
	return graph.HealthStatus{State: graph.StateHealthy}
}

func (s *captureStore) Close(ctx context.Context) error { return nil }

func TestPayloadsAreValidJSON(t *testing.T) {
	for _, payload := range Payloads() {
		var v interface{}
		if err := json.Unmarshal([]byte(payload.Data), &v); err != nil {
			t.Errorf("payload %q is not valid JSON: %v", payload.Title, err)
		}
	}
}

func TestDocumentsMentionCoreTopics(t *testing.T) {
	joined := ""
	for _, doc := range Documents() {
		joined += doc.Content + "\n"
	}
	for _, topic := range []string{"Retrieval-Augmented Generation", "FalkorDB", "knowledge graph"} {
		if !strings.Contains(joined, topic) {
			t.Errorf("sample corpus should mention %q", topic)
		}
	}
}

func TestLoadIngestsWholeCorpus(t *testing.T) {
	store := &captureStore{}
	processor := document.NewProcessor(store)

	count, err := Load(context.Background(), processor)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if count != len(store.episodes) {
		t.Errorf("Load reported %d episodes, store saw %d", count, len(store.episodes))
	}
	if count < len(Documents())+len(Payloads()) {
		t.Errorf("expected at least %d episodes, got %d", len(Documents())+len(Payloads()), count)
	}
	for _, episode := range store.episodes {
		if episode.Source != graph.SourceSample {
			t.Errorf("episode %q has source %q, want %q", episode.Name, episode.Source, graph.SourceSample)
		}
	}
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()

	written, err := WriteFiles(filepath.Join(dir, "samples"))
	if err != nil {
		t.Fatalf("WriteFiles failed: %v", err)
	}
	want := len(Documents()) + len(Payloads())
	if len(written) != want {
		t.Fatalf("expected %d files, got %d", want, len(written))
	}

	first, err := os.ReadFile(written[0])
	if err != nil {
		t.Fatalf("failed to read %s: %v", written[0], err)
	}
	if !strings.HasPrefix(string(first), "Title: ") {
		t.Errorf("text sample should start with a title header, got %q", string(first)[:20])
	}

	for _, path := range written {
		if filepath.Ext(path) != ".json" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read %s: %v", path, err)
		}
		var v interface{}
		if err := json.Unmarshal(data, &v); err != nil {
			t.Errorf("%s is not valid JSON: %v", path, err)
		}
	}
}
