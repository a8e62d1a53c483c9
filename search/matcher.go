package search

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/tfidf"
)

// Matcher ranks a corpus of texts against a query by TF-IDF cosine
// similarity. It keeps no state between calls.
type Matcher struct {
	builder *tfidf.Builder
	logger  *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewMatcher creates a matcher that extracts terms with normalizer.
func NewMatcher(normalizer tfidf.Normalizer, opts ...Option) (*Matcher, error) {
	if normalizer == nil {
		return nil, ErrNormalizerRequired
	}

	m := &Matcher{
		builder: tfidf.NewBuilder(normalizer),
		logger:  slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Match scores every corpus text against query and returns the best
// max(1, topK) positions, highest score first. Equal scores keep corpus
// order. An empty corpus yields an empty result.
func (m *Matcher) Match(query string, corpus []string, topK int) []core.Match {
	return m.MatchWithMonitor(query, corpus, topK, nil)
}

// MatchWithMonitor is Match with a monitor observing each stage.
func (m *Matcher) MatchWithMonitor(query string, corpus []string, topK int, monitor MatchMonitor) []core.Match {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query, len(corpus))
	if len(corpus) == 0 {
		monitor.Finish(nil)
		return []core.Match{}
	}

	// The query joins the batch so it shares the corpus IDF table.
	texts := make([]string, 0, len(corpus)+1)
	texts = append(texts, corpus...)
	texts = append(texts, query)
	batch := m.builder.Build(texts)
	monitor.AfterVectorize(batch)

	queryVec := batch.Vectors[len(corpus)]
	results := make([]core.Match, len(corpus))
	for i, docVec := range batch.Vectors[:len(corpus)] {
		score := tfidf.CosineSimilarity(queryVec, docVec)
		results[i] = core.Match{Index: i, Score: score}
		monitor.Scored(i, score)
	}

	slices.SortStableFunc(results, func(a, b core.Match) int {
		return cmp.Compare(b.Score, a.Score)
	})

	k := min(max(1, topK), len(results))
	results = results[:k]

	m.logger.Debug("matched query",
		"corpus", len(corpus),
		"queryTerms", len(batch.Terms[len(corpus)]),
		"vocabulary", len(batch.IDF),
		"topScore", results[0].Score)
	monitor.Finish(results)

	return results
}
