package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"graphchat/internal/chat"
	"graphchat/internal/document"
	"graphchat/internal/graph"
	apperrors "graphchat/pkg/errors"
)

type chatRequest struct {
	Message        string `json:"message" binding:"required"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	HistorySize    int    `json:"history_size"`
}

type searchRequest struct {
	Query      string `json:"query" binding:"required"`
	MaxResults int    `json:"max_results"`
	UserID     string `json:"user_id"`
}

type searchResult struct {
	EpisodeID string    `json:"episode_id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Score     float64   `json:"score"`
	Distance  int       `json:"distance"`
	CreatedAt time.Time `json:"created_at"`
}

// statusForError maps an error kind onto an HTTP status code.
func statusForError(err error) int {
	switch {
	case apperrors.IsErrorType(err, apperrors.ErrorTypeValidation):
		return http.StatusBadRequest
	case apperrors.IsErrorType(err, apperrors.ErrorTypeConnection):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	status := s.store.HealthCheck(c.Request.Context())

	code := http.StatusOK
	if status.State != graph.StateHealthy && status.State != graph.StateDegraded {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     string(status.State),
		"message":    status.Message,
		"checked_at": status.CheckedAt,
	})
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.orchestrator.RunTurn(c.Request.Context(), chat.TurnRequest{
		Query:          req.Message,
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		HistorySize:    req.HistorySize,
	})
	if err != nil {
		s.logger.Error("Failed to run chat turn", zap.Error(err))
		c.JSON(statusForError(err), gin.H{"error": "Failed to process message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":        result.Response,
		"conversation_id": result.ConversationID,
		"degraded":        result.Degraded,
		"history":         result.History,
	})
}

func (s *Server) handleSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := s.store.Search(c.Request.Context(), graph.SearchQuery{
		Text:         req.Query,
		MaxResults:   req.MaxResults,
		CenterUserID: req.UserID,
	})
	if err != nil {
		s.logger.Error("Search failed", zap.String("query", req.Query), zap.Error(err))
		c.JSON(statusForError(err), gin.H{"error": "Search failed"})
		return
	}

	payload := make([]searchResult, 0, len(results))
	for _, r := range results {
		payload = append(payload, searchResult{
			EpisodeID: r.EpisodeID,
			Name:      r.Name,
			Content:   r.Content,
			Source:    r.Source,
			Score:     r.Score,
			Distance:  r.Distance,
			CreatedAt: r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"results": payload,
		"count":   len(payload),
	})
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		s.logger.Error("Failed to create upload directory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stage upload"})
		return
	}

	// Prefix with a timestamp so concurrent uploads of the same name don't clash.
	staged := filepath.Join(s.cfg.UploadDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, staged); err != nil {
		s.logger.Error("Failed to save upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stage upload"})
		return
	}
	defer os.Remove(staged)

	// Default the title to the uploaded name, not the staged one.
	title := c.PostForm("title")
	if title == "" {
		base := filepath.Base(file.Filename)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	count, err := s.processor.AddFile(c.Request.Context(), staged, document.FileOptions{
		Title:  title,
		Source: c.PostForm("source"),
	})
	if err != nil {
		s.logger.Error("Failed to ingest upload",
			zap.String("file", file.Filename),
			zap.Error(err),
		)
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file":   file.Filename,
		"chunks": count,
	})
}

func (s *Server) handleChatPage(c *gin.Context) {
	c.HTML(http.StatusOK, "chat.html", gin.H{
		"Conversation": s.snapshotPage(),
		"UserID":       "web_user",
		"StatusMsg":    "",
	})
}

func (s *Server) handleChatForm(c *gin.Context) {
	userInput := c.PostForm("user_input")
	userID := c.DefaultPostForm("user_id", "web_user")

	result, err := s.orchestrator.RunTurn(c.Request.Context(), chat.TurnRequest{
		Query:          userInput,
		UserID:         userID,
		ConversationID: s.pageConversationID(),
	})
	if err != nil {
		s.logger.Error("Failed to run chat turn", zap.Error(err))
		c.HTML(http.StatusOK, "chat.html", gin.H{
			"Conversation": s.snapshotPage(),
			"UserID":       userID,
			"StatusMsg":    "Something went wrong while answering. Please try again.",
		})
		return
	}

	s.appendPageTurns(
		chat.Turn{Role: chat.RoleUser, Content: userInput, Timestamp: time.Now().UTC()},
		chat.Turn{Role: chat.RoleAssistant, Content: result.Response, Timestamp: time.Now().UTC()},
	)

	c.HTML(http.StatusOK, "chat.html", gin.H{
		"Conversation": s.snapshotPage(),
		"UserID":       userID,
		"StatusMsg":    "",
	})
}

// statusRow is one line on the HTML status panel.
type statusRow struct {
	Component string
	Details   string
	Label     string
	Color     string
}

func (s *Server) handleStatusPage(c *gin.Context) {
	health := s.store.HealthCheck(c.Request.Context())

	rows := []statusRow{
		{
			Component: "Graph Store",
			Details:   health.Message,
			Label:     string(health.State),
			Color:     healthColor(health.State),
		},
	}

	switch s.cfg.GraphBackend {
	case "neo4j":
		rows = append(rows, statusRow{
			Component: "Neo4j Connection",
			Details:   s.cfg.Neo4jURI,
			Label:     "configured",
			Color:     "#2196f3",
		})
	default:
		rows = append(rows, statusRow{
			Component: "FalkorDB Connection",
			Details:   s.cfg.FalkorAddr(),
			Label:     "configured",
			Color:     "#2196f3",
		})
	}

	if s.cfg.HasLLM() {
		rows = append(rows, statusRow{
			Component: "LLM Provider",
			Details:   s.cfg.OpenAIModel,
			Label:     "available",
			Color:     "#4caf50",
		})
	} else {
		rows = append(rows, statusRow{
			Component: "LLM Provider",
			Details:   "no API key set, answers use search summaries",
			Label:     "not configured",
			Color:     "#ff9800",
		})
	}

	c.HTML(http.StatusOK, "status.html", gin.H{"Rows": rows})
}

func healthColor(state graph.HealthState) string {
	switch state {
	case graph.StateHealthy:
		return "#4caf50"
	case graph.StateUnhealthy:
		return "#f44336"
	default:
		return "#ff9800"
	}
}

// pageConversationID lazily assigns the shared browser conversation.
func (s *Server) pageConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pageConvID == "" {
		s.pageConvID = uuid.New().String()
	}
	return s.pageConvID
}

func (s *Server) appendPageTurns(turns ...chat.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageConversation = append(s.pageConversation, turns...)
	if len(s.pageConversation) > pageHistoryLimit {
		s.pageConversation = s.pageConversation[len(s.pageConversation)-pageHistoryLimit:]
	}
}

func (s *Server) snapshotPage() []chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.Turn, len(s.pageConversation))
	copy(out, s.pageConversation)
	return out
}
