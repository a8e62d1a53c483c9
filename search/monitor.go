package search

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/tfidf"
)

// MatchMonitor provides hooks to observe the matching process.
// Implement this interface to track intermediate steps and results.
type MatchMonitor interface {
	Start(query string, corpusSize int)
	AfterVectorize(batch *tfidf.Batch)
	Scored(index int, score float64)
	Finish(results []core.Match)
}

// noopMonitor is a no-op implementation of MatchMonitor
type noopMonitor struct{}

var _ MatchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)             {}
func (n *noopMonitor) AfterVectorize(_ *tfidf.Batch)     {}
func (n *noopMonitor) Scored(_ int, _ float64)           {}
func (n *noopMonitor) Finish(_ []core.Match)             {}

// WriterMonitor prints a human-readable trace of a match to a writer.
// Only non-zero scores are listed.
type WriterMonitor struct {
	w      io.Writer
	corpus []string
	n      int
}

var _ MatchMonitor = (*WriterMonitor)(nil)

// NewWriterMonitor creates a monitor that labels scores with corpus texts.
func NewWriterMonitor(w io.Writer, corpus []string) *WriterMonitor {
	return &WriterMonitor{w: w, corpus: corpus}
}

func (wm *WriterMonitor) Start(query string, corpusSize int) {
	wm.n = corpusSize
	fmt.Fprintf(wm.w, "query: %q (%d candidates)\n", query, corpusSize)
}

func (wm *WriterMonitor) AfterVectorize(batch *tfidf.Batch) {
	terms := batch.Terms[len(batch.Terms)-1]
	fmt.Fprintf(wm.w, "query terms: [%s]\n", strings.Join(terms, " "))
	fmt.Fprintf(wm.w, "vocabulary: %d terms over %d documents\n", len(batch.IDF), batch.DocCount)

	weights := batch.Vectors[len(batch.Vectors)-1]
	for _, term := range slices.Sorted(maps.Keys(weights)) {
		fmt.Fprintf(wm.w, "  %-20s idf=%.4f weight=%.4f\n", term, batch.IDF[term], weights[term])
	}
}

func (wm *WriterMonitor) Scored(index int, score float64) {
	if score == 0 {
		return
	}
	label := ""
	if index < len(wm.corpus) {
		label = wm.corpus[index]
	}
	fmt.Fprintf(wm.w, "  #%d %.4f %s\n", index, score, label)
}

func (wm *WriterMonitor) Finish(results []core.Match) {
	if len(results) == 0 {
		fmt.Fprintln(wm.w, "no candidates")
		return
	}
	fmt.Fprintf(wm.w, "best: #%d %.4f\n", results[0].Index, results[0].Score)
}
