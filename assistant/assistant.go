package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/metrics"
	"github.com/poiesic/faqmatch/search"
	"github.com/poiesic/faqmatch/storage"
)

// Outcome classifies how a question was resolved.
type Outcome int

const (
	// OutcomeAnswered means the best candidate reached the threshold and its
	// stored answer was returned.
	OutcomeAnswered Outcome = iota + 1
	// OutcomeNoConfidentMatch means the best score fell below the threshold.
	OutcomeNoConfidentMatch
	// OutcomeEmptyKnowledgeBase means there was nothing to match against.
	OutcomeEmptyKnowledgeBase
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAnswered:
		return "answered"
	case OutcomeNoConfidentMatch:
		return "no_match"
	case OutcomeEmptyKnowledgeBase:
		return "empty_knowledge_base"
	default:
		return "unknown"
	}
}

// Ranker ranks a corpus against a query. *search.Matcher satisfies it.
type Ranker interface {
	MatchWithMonitor(query string, corpus []string, topK int, monitor search.MatchMonitor) []core.Match
}

// Candidate is a ranked knowledge base item.
type Candidate struct {
	Item  *core.QAItem
	Score float64
}

// Reply is the result of one question.
type Reply struct {
	Conversation string
	Question     string
	Answer       string
	Outcome      Outcome
	Candidates   []Candidate
}

// Best returns the top candidate, or nil when nothing was ranked.
func (r *Reply) Best() *Candidate {
	if len(r.Candidates) == 0 {
		return nil
	}
	return &r.Candidates[0]
}

// Assistant answers questions from the knowledge base and keeps the
// conversation transcript.
type Assistant struct {
	qaRepo   storage.QARepository
	chatRepo storage.ChatRepository
	ranker   Ranker
	config   *Config
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures an Assistant.
type Option func(*Assistant) error

// WithConfig sets the decision policy. The config is validated.
// Default is DefaultConfig().
func WithConfig(cfg *Config) Option {
	return func(a *Assistant) error {
		if cfg == nil {
			return ErrConfigRequired
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// WithMetrics sets the collectors that observe each ask.
// Default is no metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Assistant) error {
		a.metrics = m
		return nil
	}
}

// NewAssistant creates an assistant over the given repositories.
func NewAssistant(qaRepo storage.QARepository, chatRepo storage.ChatRepository, ranker Ranker, opts ...Option) (*Assistant, error) {
	if qaRepo == nil {
		return nil, ErrQARepositoryRequired
	}
	if chatRepo == nil {
		return nil, ErrChatRepositoryRequired
	}
	if ranker == nil {
		return nil, ErrMatcherRequired
	}

	a := &Assistant{
		qaRepo:   qaRepo,
		chatRepo: chatRepo,
		ranker:   ranker,
		config:   DefaultConfig(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Config returns the active policy.
func (a *Assistant) Config() *Config {
	return a.config
}

// Ask answers question within conversation. An empty conversation starts a
// new one. Both the question and the reply are appended to the transcript.
func (a *Assistant) Ask(ctx context.Context, conversation, question string) (*Reply, error) {
	return a.AskWithMonitor(ctx, conversation, question, nil)
}

// AskWithMonitor is Ask with a monitor observing the ranking.
func (a *Assistant) AskWithMonitor(ctx context.Context, conversation, question string, monitor search.MatchMonitor) (*Reply, error) {
	question = strings.TrimSpace(question)
	if err := core.ValidateQuestion(question, a.config.MinQuestionLength, a.config.MaxQuestionLength); err != nil {
		return nil, err
	}

	conversation = strings.TrimSpace(conversation)
	if conversation == "" {
		conversation = uuid.NewString()
	} else if err := core.ValidateConversation(conversation); err != nil {
		return nil, err
	}

	asked := &core.ChatRecord{
		Conversation: conversation,
		Role:         core.RoleUser,
		Contents:     question,
		Timestamp:    time.Now().UTC(),
	}
	if _, err := a.chatRepo.AddChatRecords(ctx, asked); err != nil {
		return nil, fmt.Errorf("saving question: %w", err)
	}

	items, err := a.qaRepo.ListQAItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading knowledge base: %w", err)
	}
	a.metrics.SetKnowledgeBaseItems(len(items))

	reply := a.decide(question, items, monitor)
	reply.Conversation = conversation

	answered := &core.ChatRecord{
		Conversation: conversation,
		Role:         core.RoleAssistant,
		Contents:     reply.Answer,
		Timestamp:    time.Now().UTC(),
	}
	if best := reply.Best(); best != nil {
		answered.Score = best.Score
		if reply.Outcome == OutcomeAnswered {
			answered.MatchedItem = best.Item.Id
		}
	}
	if _, err := a.chatRepo.AddChatRecords(ctx, answered); err != nil {
		return nil, fmt.Errorf("saving reply: %w", err)
	}

	a.metrics.ObserveAsk(reply.Outcome.String())
	a.logger.Debug("question answered",
		"conversation", conversation,
		"outcome", reply.Outcome.String(),
		"candidates", len(reply.Candidates))

	return reply, nil
}

// decide ranks items against question and applies the threshold.
func (a *Assistant) decide(question string, items []*core.QAItem, monitor search.MatchMonitor) *Reply {
	reply := &Reply{Question: question, Candidates: []Candidate{}}

	if len(items) == 0 {
		reply.Outcome = OutcomeEmptyKnowledgeBase
		reply.Answer = a.config.EmptyKnowledgeBaseMessage
		return reply
	}

	questions := make([]string, len(items))
	for i, item := range items {
		questions[i] = item.Question
	}

	start := time.Now()
	ranked := a.ranker.MatchWithMonitor(question, questions, a.config.TopK, monitor)
	elapsed := time.Since(start)

	for _, m := range ranked {
		reply.Candidates = append(reply.Candidates, Candidate{Item: items[m.Index], Score: m.Score})
	}

	best := reply.Best()
	if best == nil {
		reply.Outcome = OutcomeEmptyKnowledgeBase
		reply.Answer = a.config.EmptyKnowledgeBaseMessage
		return reply
	}
	a.metrics.ObserveMatch(elapsed, best.Score)

	if best.Score < a.config.Threshold {
		reply.Outcome = OutcomeNoConfidentMatch
		reply.Answer = a.config.NoMatchMessage
		return reply
	}

	reply.Outcome = OutcomeAnswered
	reply.Answer = best.Item.Answer
	return reply
}

// Suggestions returns the most recently added questions.
func (a *Assistant) Suggestions(ctx context.Context) ([]string, error) {
	items, err := a.qaRepo.GetRecentQAItems(ctx, a.config.SuggestionCount)
	if err != nil {
		return nil, err
	}

	suggestions := make([]string, len(items))
	for i, item := range items {
		suggestions[i] = item.Question
	}
	return suggestions, nil
}

// History returns the newest messages of a conversation, newest first.
func (a *Assistant) History(ctx context.Context, conversation string) ([]*core.ChatRecord, error) {
	if err := core.ValidateConversation(conversation); err != nil {
		return nil, err
	}
	return a.chatRepo.GetConversation(ctx, conversation, a.config.HistoryLimit)
}
