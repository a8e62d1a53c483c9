// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package evaluate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/faqmatch/assistant"
	"github.com/poiesic/faqmatch/core"
)

// Config holds configuration for an evaluation run.
type Config struct {
	// Workers is the number of questions asked concurrently
	Workers int

	// ReportInterval is how often to report progress (number of cases)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per case
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:        max(1, runtime.NumCPU()/2),
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     100 * time.Millisecond,
	}
}

// Asker answers one question. *assistant.Assistant satisfies it.
type Asker interface {
	Ask(ctx context.Context, conversation, question string) (*assistant.Reply, error)
}

// Result is the outcome of one case.
type Result struct {
	Case    Case
	Outcome assistant.Outcome
	// Matched is the stored question of the best candidate, empty when none.
	Matched string
	Score   float64
	Passed  bool
	Err     error
}

// Report summarizes an evaluation run. Results follow input order.
type Report struct {
	Conversation       string
	Total              int
	Passed             int
	Answered           int
	NoMatch            int
	EmptyKnowledgeBase int
	Errors             int
	Elapsed            time.Duration
	Results            []Result
}

// Accuracy returns the fraction of passed cases, 0 for an empty run.
func (r *Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.Total)
}

// Evaluator asks labelled questions and checks the replies.
type Evaluator struct {
	asker    Asker
	config   *Config
	progress io.Writer
}

// NewEvaluator creates a new evaluator.
// progress: where to write progress output (typically os.Stderr), nil for none
func NewEvaluator(asker Asker, config *Config, progress io.Writer) (*Evaluator, error) {
	if asker == nil {
		return nil, ErrAskerRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Evaluator{
		asker:    asker,
		config:   config,
		progress: progress,
	}, nil
}

// Run asks every case through a worker pool. All cases share one
// conversation, reported in Report.Conversation. A failing case is
// recorded in its Result; Run itself fails only when ctx is done or the
// pool cannot be created.
func (e *Evaluator) Run(ctx context.Context, cases []Case) (*Report, error) {
	report := &Report{
		Conversation: "eval-" + uuid.NewString(),
		Total:        len(cases),
		Results:      make([]Result, len(cases)),
	}
	if len(cases) == 0 {
		return report, nil
	}

	pool, err := ants.NewPool(max(1, e.config.Workers))
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	fmt.Fprintf(e.progress, "Evaluating %d cases (workers: %d)\n", len(cases), pool.Cap())
	tracker := NewProgressTracker(e.progress, len(cases), e.config.ReportInterval)
	tracker.Start()

	var wg sync.WaitGroup
	for i, c := range cases {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			report.Results[i] = e.evaluate(ctx, report.Conversation, c)
			tracker.Done()
		})
		if err != nil {
			wg.Done()
			report.Results[i] = Result{Case: c, Err: err}
			tracker.Done()
		}
	}
	wg.Wait()
	tracker.Finish()
	report.Elapsed = tracker.Elapsed()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, r := range report.Results {
		switch {
		case r.Err != nil:
			report.Errors++
		case r.Outcome == assistant.OutcomeAnswered:
			report.Answered++
		case r.Outcome == assistant.OutcomeNoConfidentMatch:
			report.NoMatch++
		case r.Outcome == assistant.OutcomeEmptyKnowledgeBase:
			report.EmptyKnowledgeBase++
		}
		if r.Passed {
			report.Passed++
		}
	}

	return report, nil
}

// evaluate asks one case and grades the reply.
func (e *Evaluator) evaluate(ctx context.Context, conversation string, c Case) Result {
	result := Result{Case: c}

	var reply *assistant.Reply
	err := RetryWithBackoff(ctx, func() error {
		var askErr error
		reply, askErr = e.asker.Ask(ctx, conversation, c.Question)
		if errors.Is(askErr, core.ErrInvalidQuestion) {
			return Permanent(askErr)
		}
		return askErr
	}, max(1, e.config.MaxRetries), e.config.RetryDelay)
	if err != nil {
		result.Err = err
		return result
	}

	result.Outcome = reply.Outcome
	if best := reply.Best(); best != nil {
		result.Matched = best.Item.Question
		result.Score = best.Score
	}

	if c.Expect == "" {
		result.Passed = reply.Outcome != assistant.OutcomeAnswered
	} else {
		result.Passed = reply.Outcome == assistant.OutcomeAnswered &&
			core.CanonicalQuestion(result.Matched) == core.CanonicalQuestion(c.Expect)
	}
	return result
}
