// Package api exposes the support-bot HTTP surface: the chat endpoint, a
// dry-run match analyzer, prompt and FAQ administration, and service
// statistics.
package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coldflow/supportbot/internal/chat"
	"github.com/coldflow/supportbot/internal/database"
	"github.com/coldflow/supportbot/internal/domain"
	"github.com/coldflow/supportbot/internal/logger"
	"github.com/coldflow/supportbot/internal/matching"
)

// ChatService runs conversation turns.
type ChatService interface {
	Send(ctx context.Context, sessionID, message string) (*chat.Response, error)
	History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
	Close(ctx context.Context, sessionID string) error
}

// PromptStore is the prompt administration surface.
type PromptStore interface {
	Create(ctx context.Context, prompt *domain.Prompt) error
	GetByID(ctx context.Context, id int64) (*domain.Prompt, error)
	List(ctx context.Context, promptType string, active *bool) ([]*domain.Prompt, error)
	ListActivePrompts(ctx context.Context) ([]domain.Prompt, error)
	Update(ctx context.Context, prompt *domain.Prompt) error
	Delete(ctx context.Context, id int64) error
	MostUsed(ctx context.Context, limit int) ([]*domain.Prompt, error)
	Count(ctx context.Context) (int, error)
}

// FAQStore is the FAQ administration surface.
type FAQStore interface {
	Create(ctx context.Context, faq *domain.FAQ) error
	GetByID(ctx context.Context, id int64) (*domain.FAQ, error)
	List(ctx context.Context, active *bool) ([]*domain.FAQ, error)
	Update(ctx context.Context, faq *domain.FAQ) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// FAQRefresher rebuilds the FAQ lookup index after catalog writes.
type FAQRefresher interface {
	Refresh(ctx context.Context) error
}

// StatsStore supplies conversation counters.
type StatsStore interface {
	SessionCount(ctx context.Context) (int, error)
	MessageCountBySource(ctx context.Context) (map[string]int, error)
}

// Pinger reports storage liveness for the readiness check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

const mostUsedLimit = 10

// Handler handles HTTP requests for the support-bot API
type Handler struct {
	chat      ChatService
	prompts   PromptStore
	faqs      FAQStore
	faqIndex  FAQRefresher
	stats     StatsStore
	db        Pinger
	scorer    matching.Scorer
	weights   matching.Weights
	logger    logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	chatService ChatService,
	prompts PromptStore,
	faqs FAQStore,
	faqIndex FAQRefresher,
	stats StatsStore,
	db Pinger,
	scorer matching.Scorer,
	weights matching.Weights,
	log logger.Logger,
) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		chat:     chatService,
		prompts:  prompts,
		faqs:     faqs,
		faqIndex: faqIndex,
		stats:    stats,
		db:       db,
		scorer:   scorer,
		weights:  weights,
		logger:   log,
	}
}

// Chat handles POST /api/v1/chat
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.chat.Send(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
		case errors.Is(err, chat.ErrSessionClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "session is closed"})
		default:
			h.logger.Error("chat turn failed", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer message"})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// ChatHistory handles GET /api/v1/chat/:session_id/history
func (h *Handler) ChatHistory(c *gin.Context) {
	sessionID := c.Param("session_id")

	messages, err := h.chat.History(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.logger.Error("failed to load history", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   messages,
		"total":      len(messages),
	})
}

// CloseSession handles POST /api/v1/chat/:session_id/close
func (h *Handler) CloseSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := h.chat.Close(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.logger.Error("failed to close session", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to close session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "status": domain.SessionStatusClosed})
}

// Analyze handles POST /api/v1/match/analyze. It scores the message against
// every active prompt and returns the full ranking without incrementing any
// usage counter.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompts, err := h.prompts.ListActivePrompts(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list prompts for analysis", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load prompts"})
		return
	}

	candidates := make([]AnalyzeCandidate, 0, len(prompts))
	for i := range prompts {
		prompt := &prompts[i]
		eval := h.scorer.Score(req.Message, prompt)
		quality := matching.QualityLabel(eval.Confidence, h.weights)
		candidates = append(candidates, toAnalyzeCandidate(prompt.ID, prompt.TriggerPhrase, eval, quality))
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].FinalScore != candidates[b].FinalScore {
			return candidates[a].FinalScore > candidates[b].FinalScore
		}
		return candidates[a].Confidence > candidates[b].Confidence
	})

	response := AnalyzeResponse{Message: req.Message, Candidates: candidates}
	if len(candidates) > 0 && candidates[0].Eligible {
		response.Winner = &candidates[0]
	}

	c.JSON(http.StatusOK, response)
}

// ListPrompts handles GET /api/v1/prompts
func (h *Handler) ListPrompts(c *gin.Context) {
	var active *bool
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid active filter"})
			return
		}
		active = &parsed
	}

	prompts, err := h.prompts.List(c.Request.Context(), c.Query("type"), active)
	if err != nil {
		h.logger.Error("failed to list prompts", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list prompts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"prompts": prompts, "total": len(prompts)})
}

// GetPrompt handles GET /api/v1/prompts/:id
func (h *Handler) GetPrompt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	prompt, err := h.prompts.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
			return
		}
		h.logger.Error("failed to get prompt", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get prompt"})
		return
	}

	c.JSON(http.StatusOK, prompt)
}

// CreatePrompt handles POST /api/v1/prompts
func (h *Handler) CreatePrompt(c *gin.Context) {
	var req CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	promptType := req.PromptType
	if promptType == "" {
		promptType = domain.PromptTypeResponse
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	prompt := &domain.Prompt{
		TriggerPhrase: req.TriggerPhrase,
		Content:       req.Content,
		PromptType:    promptType,
		Priority:      req.Priority,
		Active:        active,
	}
	if err := h.prompts.Create(c.Request.Context(), prompt); err != nil {
		h.logger.Error("failed to create prompt", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create prompt"})
		return
	}

	h.logger.Info("prompt created",
		logger.Int64("prompt_id", prompt.ID),
		logger.String("trigger_phrase", prompt.TriggerPhrase))

	c.JSON(http.StatusCreated, prompt)
}

// UpdatePrompt handles PUT /api/v1/prompts/:id
func (h *Handler) UpdatePrompt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	var req UpdatePromptRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt, err := h.prompts.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
			return
		}
		h.logger.Error("failed to get prompt", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get prompt"})
		return
	}

	prompt.TriggerPhrase = req.TriggerPhrase
	prompt.Content = req.Content
	if req.PromptType != "" {
		prompt.PromptType = req.PromptType
	}
	prompt.Priority = req.Priority
	if req.Active != nil {
		prompt.Active = *req.Active
	}

	if err = h.prompts.Update(c.Request.Context(), prompt); err != nil {
		h.logger.Error("failed to update prompt", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update prompt"})
		return
	}

	c.JSON(http.StatusOK, prompt)
}

// DeletePrompt handles DELETE /api/v1/prompts/:id
func (h *Handler) DeletePrompt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	if err = h.prompts.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
			return
		}
		h.logger.Error("failed to delete prompt", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete prompt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// ListFAQs handles GET /api/v1/faqs
func (h *Handler) ListFAQs(c *gin.Context) {
	var active *bool
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid active filter"})
			return
		}
		active = &parsed
	}

	faqs, err := h.faqs.List(c.Request.Context(), active)
	if err != nil {
		h.logger.Error("failed to list faqs", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list faqs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"faqs": faqs, "total": len(faqs)})
}

// GetFAQ handles GET /api/v1/faqs/:id
func (h *Handler) GetFAQ(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid faq id"})
		return
	}

	faq, err := h.faqs.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "faq not found"})
			return
		}
		h.logger.Error("failed to get faq", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get faq"})
		return
	}

	c.JSON(http.StatusOK, faq)
}

// CreateFAQ handles POST /api/v1/faqs
func (h *Handler) CreateFAQ(c *gin.Context) {
	var req CreateFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	faq := &domain.FAQ{
		Question: req.Question,
		Answer:   req.Answer,
		Keywords: req.Keywords,
		Active:   active,
	}
	if err := h.faqs.Create(c.Request.Context(), faq); err != nil {
		h.logger.Error("failed to create faq", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create faq"})
		return
	}

	h.refreshFAQIndex(c.Request.Context())
	c.JSON(http.StatusCreated, faq)
}

// UpdateFAQ handles PUT /api/v1/faqs/:id
func (h *Handler) UpdateFAQ(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid faq id"})
		return
	}

	var req UpdateFAQRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	faq, err := h.faqs.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "faq not found"})
			return
		}
		h.logger.Error("failed to get faq", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get faq"})
		return
	}

	faq.Question = req.Question
	faq.Answer = req.Answer
	faq.Keywords = req.Keywords
	if req.Active != nil {
		faq.Active = *req.Active
	}

	if err = h.faqs.Update(c.Request.Context(), faq); err != nil {
		h.logger.Error("failed to update faq", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update faq"})
		return
	}

	h.refreshFAQIndex(c.Request.Context())
	c.JSON(http.StatusOK, faq)
}

// DeleteFAQ handles DELETE /api/v1/faqs/:id
func (h *Handler) DeleteFAQ(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid faq id"})
		return
	}

	if err = h.faqs.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "faq not found"})
			return
		}
		h.logger.Error("failed to delete faq", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete faq"})
		return
	}

	h.refreshFAQIndex(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) refreshFAQIndex(ctx context.Context) {
	if h.faqIndex == nil {
		return
	}
	if err := h.faqIndex.Refresh(ctx); err != nil {
		h.logger.Warn("failed to refresh faq index", logger.Error(err))
	}
}

// GetStats handles GET /api/v1/stats
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	promptCount, err := h.prompts.Count(ctx)
	if err != nil {
		h.logger.Error("failed to count prompts", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	faqCount, err := h.faqs.Count(ctx)
	if err != nil {
		h.logger.Error("failed to count faqs", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	sessionCount, err := h.stats.SessionCount(ctx)
	if err != nil {
		h.logger.Error("failed to count sessions", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	bySource, err := h.stats.MessageCountBySource(ctx)
	if err != nil {
		h.logger.Error("failed to count replies", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	mostUsed, err := h.prompts.MostUsed(ctx, mostUsedLimit)
	if err != nil {
		h.logger.Error("failed to load most used prompts", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	usage := make([]PromptUsage, 0, len(mostUsed))
	for _, prompt := range mostUsed {
		usage = append(usage, PromptUsage{
			PromptID:      prompt.ID,
			TriggerPhrase: prompt.TriggerPhrase,
			UsageCount:    prompt.UsageCount,
		})
	}

	c.JSON(http.StatusOK, StatsResponse{
		Prompts:         promptCount,
		FAQs:            faqCount,
		Sessions:        sessionCount,
		RepliesBySource: bySource,
		MostUsedPrompts: usage,
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadyCheck handles GET /ready. Readiness requires a live database.
func (h *Handler) ReadyCheck(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
