package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/faqmatch/assistant"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/metrics"
	"github.com/poiesic/faqmatch/storage"
	"github.com/prometheus/client_golang/prometheus"
)

const maxRequestBytes = 1 << 20

// Assistant is the chat surface served by the API. *assistant.Assistant
// satisfies it.
type Assistant interface {
	Ask(ctx context.Context, conversation, question string) (*assistant.Reply, error)
	Suggestions(ctx context.Context) ([]string, error)
	History(ctx context.Context, conversation string) ([]*core.ChatRecord, error)
}

// API holds dependencies for API handlers.
type API struct {
	assistant Assistant
	qaRepo    storage.QARepository
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
}

// Option configures an API.
type Option func(*API)

// WithMetrics records HTTP metrics on m and serves gatherer on /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(a *API) {
		a.metrics = m
		a.gatherer = gatherer
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
	}
}

// NewAPI creates a new API handler structure.
func NewAPI(asst Assistant, qaRepo storage.QARepository, opts ...Option) *API {
	a := &API{
		assistant: asst,
		qaRepo:    qaRepo,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewRouter builds a gin engine with recovery, logging and metrics
// middleware and every route registered.
func NewRouter(a *API) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), LoggingMiddleware(a.logger), RequestSizeLimitMiddleware(maxRequestBytes))
	if a.metrics != nil {
		router.Use(MetricsMiddleware(a.metrics))
	}
	SetupRoutes(router, a)
	return router
}

// SetupRoutes defines all the API routes.
func SetupRoutes(router *gin.Engine, a *API) {
	if a.gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(a.gatherer)))
	}

	apiRoutes := router.Group("/api")
	{
		apiRoutes.GET("/health", a.HealthCheckHandler)
		apiRoutes.POST("/ask", a.AskHandler)
		apiRoutes.GET("/suggestions", a.SuggestionsHandler)
		apiRoutes.GET("/conversations/:id/history", a.HistoryHandler)

		// Knowledge base management
		qaRoutes := apiRoutes.Group("/qa")
		{
			qaRoutes.GET("", a.ListQAItemsHandler)
			qaRoutes.POST("", a.CreateQAItemHandler)
			qaRoutes.GET("/:id", a.GetQAItemHandler)
			qaRoutes.PUT("/:id", a.UpdateQAItemHandler)
			qaRoutes.DELETE("/:id", a.DeleteQAItemHandler)
		}
	}
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Conversation string `json:"conversation"`
	Question     string `json:"question"`
}

// CandidateResponse is one ranked knowledge base item.
type CandidateResponse struct {
	ID       uint64  `json:"id"`
	Question string  `json:"question"`
	Score    float64 `json:"score"`
}

// AskResponse is the reply to POST /api/ask.
type AskResponse struct {
	Conversation string              `json:"conversation"`
	Question     string              `json:"question"`
	Answer       string              `json:"answer"`
	Outcome      string              `json:"outcome"`
	Candidates   []CandidateResponse `json:"candidates"`
}

// MessageResponse is one transcript entry.
type MessageResponse struct {
	ID          uint64    `json:"id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	MatchedItem uint64    `json:"matched_item,omitempty"`
	Score       float64   `json:"score,omitempty"`
}

// QAItemRequest is the body for creating or replacing an item.
type QAItemRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QAItemResponse is a stored knowledge base item.
type QAItemResponse struct {
	ID        uint64    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toQAItemResponse(item *core.QAItem) QAItemResponse {
	return QAItemResponse{
		ID:        uint64(item.Id),
		Question:  item.Question,
		Answer:    item.Answer,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// HealthCheckHandler reports liveness and the knowledge base size.
func (a *API) HealthCheckHandler(c *gin.Context) {
	count, err := a.qaRepo.CountQAItems(c.Request.Context())
	if err != nil {
		SendInternalError(c, "health check", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":               "ok",
		"knowledge_base_items": count,
	})
}

// AskHandler answers a question.
// Request Body: AskRequest
func (a *API) AskHandler(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	reply, err := a.assistant.Ask(c.Request.Context(), req.Conversation, req.Question)
	if err != nil {
		if errors.Is(err, core.ErrInvalidQuestion) || errors.Is(err, core.ErrInvalidConversation) {
			SendValidationError(c, err)
			return
		}
		SendInternalError(c, "ask", err)
		return
	}

	resp := AskResponse{
		Conversation: reply.Conversation,
		Question:     reply.Question,
		Answer:       reply.Answer,
		Outcome:      reply.Outcome.String(),
		Candidates:   make([]CandidateResponse, len(reply.Candidates)),
	}
	for i, cand := range reply.Candidates {
		resp.Candidates[i] = CandidateResponse{
			ID:       uint64(cand.Item.Id),
			Question: cand.Item.Question,
			Score:    cand.Score,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// SuggestionsHandler lists recently added questions.
func (a *API) SuggestionsHandler(c *gin.Context) {
	suggestions, err := a.assistant.Suggestions(c.Request.Context())
	if err != nil {
		SendInternalError(c, "suggestions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// HistoryHandler returns a conversation transcript, newest first.
func (a *API) HistoryHandler(c *gin.Context) {
	records, err := a.assistant.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidConversation) {
			SendValidationError(c, err)
			return
		}
		SendInternalError(c, "history", err)
		return
	}

	messages := make([]MessageResponse, len(records))
	for i, r := range records {
		messages[i] = MessageResponse{
			ID:          uint64(r.Id),
			Role:        r.Role.String(),
			Content:     r.Contents,
			Timestamp:   r.Timestamp,
			MatchedItem: uint64(r.MatchedItem),
			Score:       r.Score,
		}
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// ListQAItemsHandler lists every stored item.
func (a *API) ListQAItemsHandler(c *gin.Context) {
	items, err := a.qaRepo.ListQAItems(c.Request.Context())
	if err != nil {
		SendInternalError(c, "list items", err)
		return
	}

	resp := make([]QAItemResponse, len(items))
	for i, item := range items {
		resp[i] = toQAItemResponse(item)
	}
	c.JSON(http.StatusOK, gin.H{"items": resp, "total": len(resp)})
}

// GetQAItemHandler returns one item.
func (a *API) GetQAItemHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := a.qaRepo.GetQAItem(c.Request.Context(), id)
	if err != nil {
		a.sendStorageError(c, "get item", err)
		return
	}
	c.JSON(http.StatusOK, toQAItemResponse(item))
}

// CreateQAItemHandler adds an item.
// Request Body: QAItemRequest
func (a *API) CreateQAItemHandler(c *gin.Context) {
	item, ok := bindQAItem(c)
	if !ok {
		return
	}

	added, err := a.qaRepo.AddQAItems(c.Request.Context(), item)
	if err != nil {
		a.sendStorageError(c, "create item", err)
		return
	}
	c.JSON(http.StatusCreated, toQAItemResponse(added[0]))
}

// UpdateQAItemHandler replaces the question and answer of an item.
// Request Body: QAItemRequest
func (a *API) UpdateQAItemHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, ok := bindQAItem(c)
	if !ok {
		return
	}
	item.Id = id

	updated, err := a.qaRepo.UpdateQAItems(c.Request.Context(), item)
	if err != nil {
		a.sendStorageError(c, "update item", err)
		return
	}
	c.JSON(http.StatusOK, toQAItemResponse(updated[0]))
}

// DeleteQAItemHandler removes an item.
func (a *API) DeleteQAItemHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := a.qaRepo.DeleteQAItems(c.Request.Context(), id); err != nil {
		a.sendStorageError(c, "delete item", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) sendStorageError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		SendItemNotFoundError(c, c.Param("id"))
	case errors.Is(err, storage.ErrDuplicateKey):
		SendError(c, http.StatusConflict, ErrorCodeQuestionExists, err.Error())
	case errors.Is(err, core.ErrInvalidQAItem):
		SendValidationError(c, err)
	default:
		a.logger.Error("storage failure", "operation", operation, "err", err)
		SendInternalError(c, operation, err)
	}
}

func parseID(c *gin.Context) (core.ID, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid item id '"+c.Param("id")+"'")
		return 0, false
	}
	return core.ID(id), true
}

func bindQAItem(c *gin.Context) (*core.QAItem, bool) {
	var req QAItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return nil, false
	}

	item := &core.QAItem{
		Question: strings.TrimSpace(req.Question),
		Answer:   strings.TrimSpace(req.Answer),
	}
	if err := core.ValidateQAItem(item); err != nil {
		SendValidationError(c, err)
		return nil, false
	}
	return item, true
}
