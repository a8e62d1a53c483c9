package nlp

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MinTermLength is the shortest base form, in characters, kept as a term.
const MinTermLength = 2

// Token is one segment of analyzed text.
type Token struct {
	Text    string
	Lemma   string // Base form; empty when the analyzer has none
	IsStop  bool
	IsPunct bool
	IsSpace bool
}

// Analyzer segments text and resolves each segment to its base form.
type Analyzer interface {
	Analyze(text string) []Token
}

// Normalizer reduces text to the ordered list of terms used for matching.
type Normalizer struct {
	analyzer Analyzer
}

// NewNormalizer creates a Normalizer backed by analyzer.
func NewNormalizer(analyzer Analyzer) *Normalizer {
	return &Normalizer{analyzer: analyzer}
}

// Normalize folds text to NFC lowercase, analyzes it and returns the base
// forms of the remaining tokens in their original order. Whitespace,
// punctuation, stop words, tokens without a base form and base forms
// shorter than MinTermLength are dropped.
func (n *Normalizer) Normalize(text string) []string {
	text = strings.TrimSpace(strings.ToLower(norm.NFC.String(text)))
	if text == "" {
		return nil
	}

	tokens := n.analyzer.Analyze(text)
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.IsSpace || tok.IsPunct || tok.IsStop {
			continue
		}
		lemma := strings.TrimSpace(tok.Lemma)
		if lemma == "" {
			continue
		}
		if utf8.RuneCountInString(lemma) < MinTermLength {
			continue
		}
		terms = append(terms, lemma)
	}
	return terms
}
