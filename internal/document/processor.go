package document

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"graphchat/internal/graph"
	apperrors "graphchat/pkg/errors"
	"graphchat/pkg/logger"
)

// DefaultPatterns are the file globs directory ingestion picks up.
var DefaultPatterns = []string{"*.txt", "*.md", "*.json", "*.html", "*.pdf"}

// Processor normalizes heterogeneous input into episodes and writes them
// to the graph. It holds no state beyond its dependencies.
type Processor struct {
	store  graph.Store
	logger *zap.Logger
}

// NewProcessor creates a document processor backed by the given store.
func NewProcessor(store graph.Store) *Processor {
	return &Processor{
		store:  store,
		logger: logger.Get(),
	}
}

// TextOptions tune text ingestion. Zero values get defaults.
type TextOptions struct {
	Title     string
	Source    string
	ChunkSize int
}

// AddText chunks a text document and ingests one episode per chunk.
// Returns the number of episodes written.
func (p *Processor) AddText(ctx context.Context, content string, opts TextOptions) (int, error) {
	if strings.TrimSpace(content) == "" {
		return 0, apperrors.NewInvalidInput("content", "must not be empty")
	}

	title := opts.Title
	if title == "" {
		title = "document_" + time.Now().UTC().Format("20060102_150405")
	}
	source := opts.Source
	if source == "" {
		source = graph.SourceDocument
	}

	chunks := SplitText(content, opts.ChunkSize)
	p.logger.Info("Processing document",
		zap.String("title", title),
		zap.Int("chunks", len(chunks)),
	)

	for i, chunk := range chunks {
		name := title
		if len(chunks) > 1 {
			name = fmt.Sprintf("%s_chunk_%d", title, i+1)
		}
		ep := &graph.Episode{
			Name:        name,
			Content:     chunk,
			ContentType: graph.ContentTypeText,
			Source:      source,
		}
		if err := p.store.Ingest(ctx, ep); err != nil {
			return i, err
		}
	}
	return len(chunks), nil
}

// JSONOptions tune JSON ingestion.
type JSONOptions struct {
	Title  string
	Source string
}

// AddJSON parses a JSON payload and ingests it. A top-level array becomes
// one episode per element; any other value becomes a single episode. The
// stored content is the compact re-encoding of the parsed value.
func (p *Processor) AddJSON(ctx context.Context, data []byte, opts JSONOptions) (int, error) {
	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, apperrors.NewInvalidInput("json", err.Error())
	}

	title := opts.Title
	if title == "" {
		title = "json_data_" + time.Now().UTC().Format("20060102_150405")
	}
	source := opts.Source
	if source == "" {
		source = "json_data"
	}

	items, isArray := payload.([]interface{})
	if !isArray {
		items = []interface{}{payload}
	}

	for i, item := range items {
		encoded, err := json.Marshal(item)
		if err != nil {
			return i, apperrors.NewInvalidInput("json", err.Error())
		}
		name := title
		if isArray {
			name = fmt.Sprintf("%s_item_%d", title, i+1)
		}
		ep := &graph.Episode{
			Name:        name,
			Content:     string(encoded),
			ContentType: graph.ContentTypeJSON,
			Source:      source,
		}
		if err := p.store.Ingest(ctx, ep); err != nil {
			return i, err
		}
	}

	p.logger.Info("Processed JSON payload",
		zap.String("title", title),
		zap.Int("episodes", len(items)),
	)
	return len(items), nil
}

// FileOptions tune file ingestion.
type FileOptions struct {
	Title     string
	Source    string
	ChunkSize int
}

// AddFile ingests one file, dispatching on its extension. Returns the
// number of episodes written.
func (p *Processor) AddFile(ctx context.Context, path string, opts FileOptions) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, apperrors.NewInvalidInput("file", fmt.Sprintf("not found: %s", path))
	}
	if info.IsDir() {
		return 0, apperrors.NewInvalidInput("file", fmt.Sprintf("is a directory: %s", path))
	}

	ext := strings.ToLower(filepath.Ext(path))
	title := opts.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	source := opts.Source
	if source == "" {
		source = "file_" + strings.TrimPrefix(ext, ".")
	}

	switch ext {
	case ".txt", ".md", ".text":
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return p.AddText(ctx, string(data), TextOptions{Title: title, Source: source, ChunkSize: opts.ChunkSize})

	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return p.AddJSON(ctx, data, JSONOptions{Title: title, Source: source})

	case ".html", ".htm":
		f, err := os.Open(path)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
		defer f.Close()
		text, err := ExtractHTML(f)
		if err != nil {
			return 0, err
		}
		return p.AddText(ctx, text, TextOptions{Title: title, Source: source, ChunkSize: opts.ChunkSize})

	case ".pdf":
		text, err := ExtractPDF(path)
		if err != nil {
			return 0, err
		}
		return p.AddText(ctx, text, TextOptions{Title: title, Source: source, ChunkSize: opts.ChunkSize})

	default:
		return 0, apperrors.NewUnsupportedFormat(path)
	}
}

// bulkWorkers bounds directory ingestion concurrency.
const bulkWorkers = 4

// AddDirectory recursively ingests every file under dir whose name
// matches one of the glob patterns. Files are processed concurrently;
// per-file failures are recorded as a zero count without aborting the
// batch. Returns episode counts keyed by file path.
func (p *Processor) AddDirectory(ctx context.Context, dir string, patterns []string, source string) (map[string]int, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, apperrors.NewInvalidInput("directory", fmt.Sprintf("not found: %s", dir))
	}

	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if source == "" {
		source = "bulk_import_" + filepath.Base(dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, pattern := range patterns {
			if ok, _ := filepath.Match(pattern, d.Name()); ok {
				files = append(files, path)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	results := make(map[string]int, len(files))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(bulkWorkers)
	for _, path := range files {
		path := path
		g.Go(func() error {
			count, err := p.AddFile(gCtx, path, FileOptions{Source: source})
			if err != nil {
				p.logger.Error("Failed to process file",
					zap.String("path", path),
					zap.Error(err),
				)
				count = 0
			}
			mu.Lock()
			results[path] = count
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, n := range results {
		total += n
	}
	p.logger.Info("Bulk processing completed",
		zap.Int("files", len(results)),
		zap.Int("episodes", total),
	)
	return results, nil
}
