package evaluate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/faqmatch/assistant"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/knowledge"
	"github.com/poiesic/faqmatch/nlp"
	"github.com/poiesic/faqmatch/search"
	"github.com/poiesic/faqmatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAsker answers from a fixed table keyed by question.
type fakeAsker struct {
	replies map[string]*assistant.Reply
	fail    map[string]int // remaining failures per question
	mu      sync.Mutex
	calls   atomic.Int32
}

func (f *fakeAsker) Ask(ctx context.Context, conversation, question string) (*assistant.Reply, error) {
	f.calls.Add(1)
	f.mu.Lock()
	if f.fail[question] > 0 {
		f.fail[question]--
		f.mu.Unlock()
		return nil, errors.New("temporary failure")
	}
	f.mu.Unlock()

	if question == "x" {
		return nil, fmt.Errorf("%w: too short", core.ErrInvalidQuestion)
	}
	reply, ok := f.replies[question]
	if !ok {
		return &assistant.Reply{Outcome: assistant.OutcomeNoConfidentMatch}, nil
	}
	return reply, nil
}

func answered(question string, score float64) *assistant.Reply {
	return &assistant.Reply{
		Outcome:    assistant.OutcomeAnswered,
		Candidates: []assistant.Candidate{{Item: &core.QAItem{Question: question}, Score: score}},
	}
}

func fastConfig() *Config {
	return &Config{Workers: 4, ReportInterval: 1, MaxRetries: 3, RetryDelay: time.Millisecond}
}

func TestNewEvaluator(t *testing.T) {
	_, err := NewEvaluator(nil, nil, nil)
	assert.ErrorIs(t, err, ErrAskerRequired)

	ev, err := NewEvaluator(&fakeAsker{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), ev.config)
}

func TestRun_Grading(t *testing.T) {
	asker := &fakeAsker{replies: map[string]*assistant.Reply{
		"q1": answered("O que é feedback?", 0.9),
		"q2": answered("O que é ruído?", 0.5),
		"q3": answered("O que é canal?", 0.3),
	}}
	ev, err := NewEvaluator(asker, fastConfig(), nil)
	require.NoError(t, err)

	cases := []Case{
		{Question: "q1", Expect: "o que é  FEEDBACK?"}, // pass
		{Question: "q2", Expect: "O que é feedback?"},  // wrong item
		{Question: "q3"},                               // should not answer
		{Question: "q4"},                               // no match, as expected
		{Question: "q5", Expect: "O que é canal?"},     // missed
	}
	report, err := ev.Run(context.Background(), cases)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, 3, report.Answered)
	assert.Equal(t, 2, report.NoMatch)
	assert.Zero(t, report.Errors)
	assert.InDelta(t, 0.4, report.Accuracy(), 1e-9)
	assert.True(t, strings.HasPrefix(report.Conversation, "eval-"))

	// Results follow input order
	require.Len(t, report.Results, 5)
	for i, r := range report.Results {
		assert.Equal(t, cases[i], r.Case)
	}
	assert.True(t, report.Results[0].Passed)
	assert.Equal(t, "O que é ruído?", report.Results[1].Matched)
	assert.False(t, report.Results[1].Passed)
	assert.False(t, report.Results[2].Passed)
	assert.True(t, report.Results[3].Passed)
}

func TestRun_RetriesTransientFailures(t *testing.T) {
	asker := &fakeAsker{
		replies: map[string]*assistant.Reply{"q1": answered("Q1", 1)},
		fail:    map[string]int{"q1": 2},
	}
	ev, err := NewEvaluator(asker, fastConfig(), nil)
	require.NoError(t, err)

	report, err := ev.Run(context.Background(), []Case{{Question: "q1", Expect: "Q1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, int32(3), asker.calls.Load())
}

func TestRun_RecordsErrors(t *testing.T) {
	asker := &fakeAsker{fail: map[string]int{"q1": 10}}
	ev, err := NewEvaluator(asker, fastConfig(), nil)
	require.NoError(t, err)

	report, err := ev.Run(context.Background(), []Case{{Question: "q1"}, {Question: "x"}})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Errors)
	assert.Zero(t, report.Passed)
	assert.ErrorIs(t, report.Results[1].Err, core.ErrInvalidQuestion)

	// 3 attempts for the transient failure, 1 for the invalid question
	assert.Equal(t, int32(4), asker.calls.Load())
}

func TestRun_Empty(t *testing.T) {
	ev, err := NewEvaluator(&fakeAsker{}, fastConfig(), nil)
	require.NoError(t, err)

	report, err := ev.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.Zero(t, report.Accuracy())
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev, err := NewEvaluator(&fakeAsker{}, fastConfig(), nil)
	require.NoError(t, err)

	_, err = ev.Run(ctx, []Case{{Question: "q1"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Progress(t *testing.T) {
	var buf bytes.Buffer
	ev, err := NewEvaluator(&fakeAsker{}, fastConfig(), &buf)
	require.NoError(t, err)

	_, err = ev.Run(context.Background(), []Case{{Question: "a1"}, {Question: "a2"}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Evaluating 2 cases")
	assert.Contains(t, buf.String(), "2/2")
}

func TestRun_SeedKnowledgeBase(t *testing.T) {
	qaRepo, chatRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chatRepo.Close()
		qaRepo.Close()
		backend.Close()
	}()
	ctx := context.Background()

	_, err = knowledge.Import(ctx, qaRepo, knowledge.Default(), knowledge.ModeIfEmpty)
	require.NoError(t, err)

	matcher, err := search.NewMatcher(nlp.NewNormalizer(nlp.Portuguese{}))
	require.NoError(t, err)
	asst, err := assistant.NewAssistant(qaRepo, chatRepo, matcher)
	require.NoError(t, err)

	ev, err := NewEvaluator(asst, fastConfig(), nil)
	require.NoError(t, err)

	cases := []Case{
		{Question: "O que é feedback?", Expect: "O que é feedback?"},
		{Question: "Quem é o receptor?", Expect: "Quem é o receptor?"},
		{Question: "Qual é o estilo de comunicação ideal?", Expect: "Qual é o estilo de comunicação ideal?"},
		{Question: "xpto inexistente zzz"},
	}
	report, err := ev.Run(ctx, cases)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Passed, "%+v", report.Results)

	// Every case left a question and a reply in the run's conversation
	history, err := chatRepo.GetConversation(ctx, report.Conversation, 0)
	require.NoError(t, err)
	assert.Len(t, history, 8)
}

func TestLoadCases(t *testing.T) {
	cases, err := LoadCases(strings.NewReader(`
cases:
  - question: o que significa feedback
    expect: O que é feedback?
  - question: xpto inexistente zzz
`))
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "O que é feedback?", cases[0].Expect)
	assert.Empty(t, cases[1].Expect)

	cases, err = LoadCases(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, cases)

	_, err = LoadCases(strings.NewReader("cases:\n  - expect: O que é feedback?\n"))
	assert.ErrorIs(t, err, ErrInvalidCase)

	_, err = LoadCases(strings.NewReader("cases: [oops"))
	assert.Error(t, err)
}
