// Package sample bundles a small starter corpus so a fresh install has
// something to search before the user ingests their own documents.
package sample

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"graphchat/internal/document"
	"graphchat/internal/graph"
)

// Document is one bundled text document.
type Document struct {
	Title   string
	Content string
}

// Payload is one bundled JSON payload.
type Payload struct {
	Title string
	Data  string
}

// Documents returns the bundled text corpus.
func Documents() []Document {
	return []Document{
		{
			Title: "AI and Machine Learning Basics",
			Content: `Artificial intelligence (AI) refers to computer systems that imitate human intelligence.
Machine learning is a branch of AI in which models learn patterns from data and make predictions.
Common algorithm families include linear regression, decision trees, and neural networks.
Retrieval-Augmented Generation (RAG) combines search over a knowledge base with text generation,
grounding responses in retrieved facts instead of model memory alone.`,
		},
		{
			Title: "Graph Database Concepts",
			Content: `A graph database is a NoSQL database that stores data as nodes and edges.
Unlike relational databases it handles deeply connected data efficiently, because
relationships are first-class records instead of join computations.
FalkorDB is a graph database that runs inside Redis and answers Cypher queries with low latency.
Neo4j is a standalone graph database with the same query language family.
Knowledge graphs built on these systems power recommendation engines and social network analysis.`,
		},
		{
			Title: "Working With This Assistant",
			Content: `The assistant answers questions from documents ingested into its knowledge graph.
Add plain text with add-doc, structured records with add-json, or whole files and directories with add.
Long documents are split into sentence-aligned chunks so retrieval returns focused passages.
Every chat exchange is itself stored in the graph, which lets later questions build on earlier answers.`,
		},
	}
}

// Payloads returns the bundled JSON corpus.
func Payloads() []Payload {
	return []Payload{
		{
			Title: "Company Info",
			Data: `{
  "company": "Tech Solutions Inc",
  "founded": 2020,
  "industry": "Software Development",
  "location": "Seoul, South Korea",
  "employees": 150,
  "products": ["AI Platform", "Data Analytics", "Web Solutions"]
}`,
		},
		{
			Title: "Product Catalog",
			Data: `[
  {
    "id": "P001",
    "name": "AI Assistant",
    "category": "Artificial Intelligence",
    "price": 99.99,
    "features": ["NLP", "Machine Learning", "API Integration"]
  },
  {
    "id": "P002",
    "name": "Data Analyzer",
    "category": "Analytics",
    "price": 149.99,
    "features": ["Real-time Processing", "Visualization", "Reporting"]
  }
]`,
		},
		{
			Title: "User Guide",
			Data: `{
  "guide": {
    "getting_started": "Run init to create the graph schema, then add documents",
    "basic_commands": ["init", "add-doc", "add-json", "add", "search", "chat", "serve", "status"],
    "advanced_features": {
      "personalization": "Pass a user id to rank results near that user's history",
      "web_interface": "serve exposes a browser chat page and a JSON API",
      "api_integration": "POST /api/chat and /api/search accept JSON requests"
    }
  }
}`,
		},
	}
}

// Load ingests the whole sample corpus through the processor and returns
// the number of episodes written.
func Load(ctx context.Context, p *document.Processor) (int, error) {
	total := 0
	for _, doc := range Documents() {
		count, err := p.AddText(ctx, doc.Content, document.TextOptions{
			Title:  doc.Title,
			Source: graph.SourceSample,
		})
		if err != nil {
			return total, fmt.Errorf("failed to load sample document %q: %w", doc.Title, err)
		}
		total += count
	}
	for _, payload := range Payloads() {
		count, err := p.AddJSON(ctx, []byte(payload.Data), document.JSONOptions{
			Title:  payload.Title,
			Source: graph.SourceSample,
		})
		if err != nil {
			return total, fmt.Errorf("failed to load sample payload %q: %w", payload.Title, err)
		}
		total += count
	}
	return total, nil
}

// WriteFiles materializes the corpus as files under dir, for users who
// want something to point `add` at.
func WriteFiles(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	var written []string
	for i, doc := range Documents() {
		path := filepath.Join(dir, fmt.Sprintf("sample_doc_%d.txt", i+1))
		content := fmt.Sprintf("Title: %s\n\n%s\n", doc.Title, doc.Content)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	for i, payload := range Payloads() {
		path := filepath.Join(dir, fmt.Sprintf("sample_data_%d.json", i+1))
		var pretty json.RawMessage = []byte(payload.Data)
		if err := os.WriteFile(path, append(pretty, '\n'), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
