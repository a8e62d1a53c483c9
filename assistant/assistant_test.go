package assistant

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/metrics"
	"github.com/poiesic/faqmatch/nlp"
	"github.com/poiesic/faqmatch/search"
	"github.com/poiesic/faqmatch/storage"
	"github.com/poiesic/faqmatch/storage/badger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testItems = []*core.QAItem{
	{Question: "O que é comunicação?", Answer: "Comunicação é o acto de transmitir informações."},
	{Question: "O que é feedback?", Answer: "É a resposta do receptor ao emissor."},
	{Question: "Quem é o emissor?", Answer: "É quem envia a mensagem."},
}

type fixture struct {
	qaRepo   storage.QARepository
	chatRepo storage.ChatRepository
	matcher  *search.Matcher
}

func newFixture(t *testing.T, seed bool) *fixture {
	t.Helper()
	qaRepo, chatRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chatRepo.Close()
		qaRepo.Close()
		backend.Close()
	})

	if seed {
		items := make([]*core.QAItem, len(testItems))
		for i, item := range testItems {
			copied := *item
			items[i] = &copied
		}
		_, err := qaRepo.AddQAItems(context.Background(), items...)
		require.NoError(t, err)
	}

	matcher, err := search.NewMatcher(nlp.NewNormalizer(nlp.Portuguese{}))
	require.NoError(t, err)

	return &fixture{qaRepo: qaRepo, chatRepo: chatRepo, matcher: matcher}
}

func (f *fixture) assistant(t *testing.T, opts ...Option) *Assistant {
	t.Helper()
	a, err := NewAssistant(f.qaRepo, f.chatRepo, f.matcher, opts...)
	require.NoError(t, err)
	return a
}

func TestNewAssistant(t *testing.T) {
	f := newFixture(t, false)

	_, err := NewAssistant(nil, f.chatRepo, f.matcher)
	assert.ErrorIs(t, err, ErrQARepositoryRequired)

	_, err = NewAssistant(f.qaRepo, nil, f.matcher)
	assert.ErrorIs(t, err, ErrChatRepositoryRequired)

	_, err = NewAssistant(f.qaRepo, f.chatRepo, nil)
	assert.ErrorIs(t, err, ErrMatcherRequired)

	_, err = NewAssistant(f.qaRepo, f.chatRepo, f.matcher, WithConfig(nil))
	assert.ErrorIs(t, err, ErrConfigRequired)

	_, err = NewAssistant(f.qaRepo, f.chatRepo, f.matcher, WithConfig(NewConfig(WithTopK(0))))
	assert.Error(t, err)

	// A NaN threshold would compare false against every score
	_, err = NewAssistant(f.qaRepo, f.chatRepo, f.matcher, WithConfig(NewConfig(WithThreshold(math.NaN()))))
	assert.Error(t, err)

	a, err := NewAssistant(f.qaRepo, f.chatRepo, f.matcher, WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), a.Config())
}

func TestAsk_EmptyKnowledgeBase(t *testing.T) {
	f := newFixture(t, false)
	a := f.assistant(t)
	ctx := context.Background()

	reply, err := a.Ask(ctx, "c1", "O que é comunicação?")
	require.NoError(t, err)

	assert.Equal(t, OutcomeEmptyKnowledgeBase, reply.Outcome)
	assert.Equal(t, DefaultEmptyKnowledgeBaseMessage, reply.Answer)
	assert.Empty(t, reply.Candidates)
	assert.Nil(t, reply.Best())

	history, err := a.History(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleAssistant, history[0].Role)
	assert.Equal(t, DefaultEmptyKnowledgeBaseMessage, history[0].Contents)
	assert.Equal(t, core.RoleUser, history[1].Role)
	assert.Equal(t, "O que é comunicação?", history[1].Contents)
}

func TestAsk_Answered(t *testing.T) {
	f := newFixture(t, true)
	a := f.assistant(t)
	ctx := context.Background()

	reply, err := a.Ask(ctx, "c1", "  O que é feedback?  ")
	require.NoError(t, err)

	assert.Equal(t, OutcomeAnswered, reply.Outcome)
	assert.Equal(t, "O que é feedback?", reply.Question)
	assert.Equal(t, "É a resposta do receptor ao emissor.", reply.Answer)
	require.NotEmpty(t, reply.Candidates)
	assert.LessOrEqual(t, len(reply.Candidates), 3)
	assert.InDelta(t, 1.0, reply.Best().Score, 1e-9)

	history, err := a.History(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, reply.Best().Item.Id, history[0].MatchedItem)
	assert.InDelta(t, 1.0, history[0].Score, 1e-9)
}

func TestAsk_NoConfidentMatch(t *testing.T) {
	f := newFixture(t, true)
	a := f.assistant(t)
	ctx := context.Background()

	reply, err := a.Ask(ctx, "c1", "xpto inexistente zzz")
	require.NoError(t, err)

	assert.Equal(t, OutcomeNoConfidentMatch, reply.Outcome)
	assert.Equal(t, DefaultNoMatchMessage, reply.Answer)
	require.Len(t, reply.Candidates, 3)
	assert.Zero(t, reply.Best().Score)

	// The stored answer is never exposed below the threshold
	for _, item := range testItems {
		assert.NotEqual(t, item.Answer, reply.Answer)
	}

	history, err := a.History(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Zero(t, history[0].MatchedItem)
}

func TestAsk_ThresholdIsConfigurable(t *testing.T) {
	f := newFixture(t, true)
	a := f.assistant(t, WithConfig(NewConfig(WithThreshold(0), WithTopK(1))))

	reply, err := a.Ask(context.Background(), "c1", "xpto inexistente zzz")
	require.NoError(t, err)

	// Ties at zero keep stored order, so the first item answers
	assert.Equal(t, OutcomeAnswered, reply.Outcome)
	assert.Equal(t, testItems[0].Answer, reply.Answer)
	assert.Len(t, reply.Candidates, 1)
}

func TestAsk_CustomMessages(t *testing.T) {
	f := newFixture(t, false)
	a := f.assistant(t, WithConfig(NewConfig(WithMessages("No knowledge yet.", "Try again."))))

	reply, err := a.Ask(context.Background(), "", "anything at all")
	require.NoError(t, err)
	assert.Equal(t, "No knowledge yet.", reply.Answer)
}

func TestAsk_InvalidQuestion(t *testing.T) {
	f := newFixture(t, true)
	a := f.assistant(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		question string
	}{
		{"empty", ""},
		{"whitespace", "    "},
		{"too short", " a "},
		{"too long", string(bytes.Repeat([]byte("a"), 301))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Ask(ctx, "c1", tt.question)
			assert.ErrorIs(t, err, core.ErrInvalidQuestion)
		})
	}

	// Rejected questions are not recorded
	history, err := a.History(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAsk_InvalidConversation(t *testing.T) {
	f := newFixture(t, true)
	a := f.assistant(t)

	_, err := a.Ask(context.Background(), "bad\x00id", "O que é feedback?")
	assert.ErrorIs(t, err, core.ErrInvalidConversation)
}

func TestAsk_GeneratesConversation(t *testing.T) {
	f := newFixture(t, true)
	a := f.assistant(t)
	ctx := context.Background()

	reply, err := a.Ask(ctx, "", "Quem é o emissor?")
	require.NoError(t, err)

	_, err = uuid.Parse(reply.Conversation)
	require.NoError(t, err)

	history, err := a.History(ctx, reply.Conversation)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestAskWithMonitor(t *testing.T) {
	f := newFixture(t, true)
	a := f.assistant(t)

	questions := make([]string, len(testItems))
	for i, item := range testItems {
		questions[i] = item.Question
	}
	var out bytes.Buffer
	_, err := a.AskWithMonitor(context.Background(), "c1", "O que é feedback?", search.NewWriterMonitor(&out, questions))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "feedback")
	assert.Contains(t, out.String(), "best: #1")
}

func TestAsk_Metrics(t *testing.T) {
	f := newFixture(t, true)
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	a := f.assistant(t, WithMetrics(m))
	ctx := context.Background()

	_, err = a.Ask(ctx, "c1", "O que é feedback?")
	require.NoError(t, err)
	_, err = a.Ask(ctx, "c1", "xpto inexistente zzz")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AsksTotal.WithLabelValues("answered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AsksTotal.WithLabelValues("no_match")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.KnowledgeBaseItems))
}

func TestSuggestions(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	a := f.assistant(t, WithConfig(NewConfig(WithSuggestionCount(2))))
	suggestions, err := a.Suggestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Quem é o emissor?", "O que é feedback?"}, suggestions)

	none := f.assistant(t, WithConfig(NewConfig(WithSuggestionCount(0))))
	suggestions, err = none.Suggestions(ctx)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestHistory_Limit(t *testing.T) {
	f := newFixture(t, true)
	a := f.assistant(t, WithConfig(NewConfig(WithHistoryLimit(3))))
	ctx := context.Background()

	for i := range 3 {
		_, err := a.Ask(ctx, "c1", fmt.Sprintf("pergunta número %d", i))
		require.NoError(t, err)
	}

	history, err := a.History(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, core.RoleAssistant, history[0].Role)
	assert.Equal(t, "pergunta número 2", history[1].Contents)

	_, err = a.History(ctx, "")
	assert.ErrorIs(t, err, core.ErrInvalidConversation)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "answered", OutcomeAnswered.String())
	assert.Equal(t, "no_match", OutcomeNoConfidentMatch.String())
	assert.Equal(t, "empty_knowledge_base", OutcomeEmptyKnowledgeBase.String())
	assert.Equal(t, "unknown", Outcome(0).String())
}
