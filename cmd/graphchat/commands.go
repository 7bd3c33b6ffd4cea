package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"graphchat/internal/adapter"
	"graphchat/internal/chat"
	"graphchat/internal/document"
	"graphchat/internal/graph"
	"graphchat/internal/sample"
	"graphchat/pkg/config"
)

// openStore loads configuration and connects the configured graph backend.
// Callers own the returned store and must Close it.
func openStore() (*config.Config, graph.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	store, err := graph.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// buildOrchestrator assembles the chat pipeline. Without an LLM key the
// orchestrator falls back to search summaries.
func buildOrchestrator(cfg *config.Config, store graph.Store) *chat.Orchestrator {
	var generator chat.Generator
	if cfg.HasLLM() {
		generator = adapter.NewLLMAdapter(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	return chat.NewOrchestrator(store, generator, chat.Options{
		HistorySize: cfg.ChatHistorySize,
		MaxResults:  cfg.DefaultMaxResults,
	})
}

// --- init ---

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the graph schema and indexes",
	Long: `Create the graph schema and indexes.

Examples:
  graphchat init
  graphchat init --sample-data
  graphchat init --reset --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reset, _ := cmd.Flags().GetBool("reset")
		yes, _ := cmd.Flags().GetBool("yes")
		sampleData, _ := cmd.Flags().GetBool("sample-data")

		if reset && !yes {
			fmt.Fprint(os.Stderr, "This will delete ALL graph data. Type 'yes' to continue: ")
			reader := bufio.NewReader(os.Stdin)
			line, _ := reader.ReadString('\n')
			if strings.TrimSpace(line) != "yes" {
				printWarning("Aborted.")
				return nil
			}
		}

		cfg, store, err := openStore()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer store.Close(ctx)

		printStep("Initializing %s graph %q...", cfg.GraphBackend, cfg.GraphName)
		if err := store.Initialize(ctx, reset); err != nil {
			return err
		}
		printSuccess("Graph schema ready")

		if sampleData {
			printStep("Loading sample corpus...")
			count, err := sample.Load(ctx, document.NewProcessor(store))
			if err != nil {
				return err
			}
			printSuccess("Loaded sample corpus (%d episodes)", count)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("reset", false, "drop all existing graph data first")
	initCmd.Flags().Bool("yes", false, "skip the reset confirmation prompt")
	initCmd.Flags().Bool("sample-data", false, "load the bundled sample corpus")
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store and configuration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := openStore()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer store.Close(ctx)

		health := store.HealthCheck(ctx)

		printStatus("Backend", "%s", cfg.GraphBackend)
		if cfg.GraphBackend == config.BackendNeo4j {
			printStatus("Address", "%s", cfg.Neo4jURI)
		} else {
			printStatus("Address", "%s", cfg.FalkorAddr())
			printStatus("Graph", "%s", cfg.GraphName)
		}
		if health.Message != "" {
			printStatus("Store", "%s (%s)", health.State, health.Message)
		} else {
			printStatus("Store", "%s", health.State)
		}
		if cfg.HasLLM() {
			printStatus("LLM", "%s", cfg.OpenAIModel)
		} else {
			printStatus("LLM", "not configured, answers use search summaries")
		}
		printStatus("Max results", "%d", cfg.DefaultMaxResults)
		printStatus("History size", "%d", cfg.ChatHistorySize)

		if !health.Reachable() {
			return fmt.Errorf("store unreachable: %s", health.Message)
		}
		if health.State == graph.StateUninitialized {
			printWarning("Schema missing. Run 'graphchat init' first.")
		}
		return nil
	},
}

// --- add-doc ---

var addDocCmd = &cobra.Command{
	Use:   "add-doc",
	Short: "Ingest plain text into the knowledge graph",
	Long: `Ingest plain text into the knowledge graph.

Examples:
  graphchat add-doc --text "FalkorDB runs inside Redis" --title "Notes"
  graphchat add-doc --file ./notes.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		title, _ := cmd.Flags().GetString("title")
		source, _ := cmd.Flags().GetString("source")
		chunkSize, _ := cmd.Flags().GetInt("chunk-size")

		if text == "" && file == "" {
			return fmt.Errorf("one of --text or --file is required")
		}
		if file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			text = string(data)
			if title == "" {
				base := filepath.Base(file)
				title = strings.TrimSuffix(base, filepath.Ext(base))
			}
		}

		_, store, err := openStore()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer store.Close(ctx)

		count, err := document.NewProcessor(store).AddText(ctx, text, document.TextOptions{
			Title:     title,
			Source:    source,
			ChunkSize: chunkSize,
		})
		if err != nil {
			return err
		}
		printSuccess("Ingested %d chunk(s)", count)
		return nil
	},
}

func init() {
	addDocCmd.Flags().String("text", "", "text content to ingest")
	addDocCmd.Flags().String("file", "", "file to read as plain text")
	addDocCmd.Flags().String("title", "", "title for the document")
	addDocCmd.Flags().String("source", "", "source label stored on each episode")
	addDocCmd.Flags().Int("chunk-size", 0, "maximum chunk length in characters")
}

// --- add-json ---

var addJSONCmd = &cobra.Command{
	Use:   "add-json",
	Short: "Ingest structured JSON into the knowledge graph",
	Long: `Ingest structured JSON into the knowledge graph. A top-level array
fans out into one episode per element.

Examples:
  graphchat add-json --data '{"name": "graphchat", "lang": "Go"}'
  graphchat add-json --file ./catalog.json --title "Catalog"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, _ := cmd.Flags().GetString("data")
		file, _ := cmd.Flags().GetString("file")
		title, _ := cmd.Flags().GetString("title")
		source, _ := cmd.Flags().GetString("source")

		if data == "" && file == "" {
			return fmt.Errorf("one of --data or --file is required")
		}
		payload := []byte(data)
		if file != "" {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			payload = raw
			if title == "" {
				base := filepath.Base(file)
				title = strings.TrimSuffix(base, filepath.Ext(base))
			}
		}

		_, store, err := openStore()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer store.Close(ctx)

		count, err := document.NewProcessor(store).AddJSON(ctx, payload, document.JSONOptions{
			Title:  title,
			Source: source,
		})
		if err != nil {
			return err
		}
		printSuccess("Ingested %d episode(s)", count)
		return nil
	},
}

func init() {
	addJSONCmd.Flags().String("data", "", "inline JSON to ingest")
	addJSONCmd.Flags().String("file", "", "JSON file to ingest")
	addJSONCmd.Flags().String("title", "", "title for the payload")
	addJSONCmd.Flags().String("source", "", "source label stored on each episode")
}

// --- add ---

var addCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Ingest files or directories, dispatching on extension",
	Long: `Ingest files or directories. Supported extensions: .txt, .md, .json,
.html, .pdf. Directories are walked recursively.

Examples:
  graphchat add ./report.pdf
  graphchat add ./docs ./notes.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		source, _ := cmd.Flags().GetString("source")
		chunkSize, _ := cmd.Flags().GetInt("chunk-size")

		_, store, err := openStore()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer store.Close(ctx)

		processor := document.NewProcessor(store)
		total := 0
		failed := 0
		for _, path := range args {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("cannot access %s: %w", path, err)
			}

			if info.IsDir() {
				printStep("Ingesting directory %s...", path)
				results, err := processor.AddDirectory(ctx, path, nil, source)
				if err != nil {
					return err
				}
				for file, count := range results {
					if count == 0 {
						printWarning("Skipped %s", file)
						failed++
						continue
					}
					total += count
				}
				continue
			}

			printStep("Ingesting %s...", path)
			count, err := processor.AddFile(ctx, path, document.FileOptions{
				Title:     title,
				Source:    source,
				ChunkSize: chunkSize,
			})
			if err != nil {
				return err
			}
			total += count
		}

		if failed > 0 {
			printWarning("%d file(s) could not be ingested", failed)
		}
		printSuccess("Ingested %d episode(s)", total)
		return nil
	},
}

func init() {
	addCmd.Flags().String("title", "", "title override for single-file ingestion")
	addCmd.Flags().String("source", "", "source label stored on each episode")
	addCmd.Flags().Int("chunk-size", 0, "maximum chunk length in characters")
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over ingested episodes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		maxResults, _ := cmd.Flags().GetInt("max-results")
		userID, _ := cmd.Flags().GetString("user-id")
		detailed, _ := cmd.Flags().GetBool("detailed")

		_, store, err := openStore()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer store.Close(ctx)

		start := time.Now()
		results, err := store.Search(ctx, graph.SearchQuery{
			Text:         query,
			MaxResults:   maxResults,
			CenterUserID: userID,
		})
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		if len(results) == 0 {
			fmt.Println("No results found.")
			return nil
		}

		for i, r := range results {
			fmt.Print(formatResult(i+1, r, detailed))
		}
		fmt.Printf("\n%d result(s) in %s\n", len(results), elapsed.Round(time.Millisecond))
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("max-results", 0, "maximum number of results")
	searchCmd.Flags().String("user-id", "", "rank results near this user's history")
	searchCmd.Flags().Bool("detailed", false, "show source, date, and graph distance")
}

// formatResult renders one search hit for the terminal.
func formatResult(idx int, r graph.SearchResult, detailed bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s [score: %.3f]\n", colorize(colorBold, fmt.Sprintf("Result %d", idx)), r.Score)
	if detailed {
		fmt.Fprintf(&b, "  Source: %s  Created: %s\n", r.Source, r.CreatedAt.Format("2006-01-02 15:04"))
		if r.Distance >= 0 {
			fmt.Fprintf(&b, "  Distance: %d\n", r.Distance)
		}
	}
	fmt.Fprintf(&b, "  %s\n", truncate(r.Content, 500))
	return b.String()
}

// truncate shortens s to max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
