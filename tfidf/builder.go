// Package tfidf builds sparse TF-IDF vectors over a batch of texts and
// compares them by cosine similarity.
package tfidf

import "math"

// Normalizer turns text into its ordered list of terms.
type Normalizer interface {
	Normalize(text string) []string
}

// DocumentFrequency counts, per term, the documents of a batch containing it.
type DocumentFrequency map[string]int

// IDF maps each term of a batch to its inverse document frequency.
type IDF map[string]float64

// Weight returns the IDF of term, or 0 if the batch never saw it.
func (idf IDF) Weight(term string) float64 {
	return idf[term]
}

// Batch holds everything computed for one set of texts. All vectors share
// the same DF and IDF tables.
type Batch struct {
	Terms    [][]string
	DocFreq  DocumentFrequency
	IDF      IDF
	Vectors  []Vector
	DocCount int // max(1, number of texts)
}

// Builder computes TF-IDF vectors for batches of texts.
type Builder struct {
	normalizer Normalizer
}

// NewBuilder creates a Builder that extracts terms with normalizer.
func NewBuilder(normalizer Normalizer) *Builder {
	return &Builder{normalizer: normalizer}
}

// BuildVectors returns one vector per text, in input order, plus the IDF
// table they were weighted with.
func (b *Builder) BuildVectors(texts []string) ([]Vector, IDF) {
	batch := b.Build(texts)
	return batch.Vectors, batch.IDF
}

// Build normalizes texts and computes the batch's tables and vectors.
// Nothing is cached between calls.
func (b *Builder) Build(texts []string) *Batch {
	terms := make([][]string, len(texts))
	for i, text := range texts {
		terms[i] = b.normalizer.Normalize(text)
	}

	n := max(1, len(texts))
	df := ComputeDocumentFrequency(terms)
	idf := ComputeIDF(df, n)

	vectors := make([]Vector, len(terms))
	for i, docTerms := range terms {
		vectors[i] = Weigh(TermFrequency(docTerms), idf)
	}

	return &Batch{
		Terms:    terms,
		DocFreq:  df,
		IDF:      idf,
		Vectors:  vectors,
		DocCount: n,
	}
}

// ComputeDocumentFrequency counts each distinct term once per document.
func ComputeDocumentFrequency(docs [][]string) DocumentFrequency {
	df := make(DocumentFrequency)
	for _, terms := range docs {
		seen := make(map[string]bool, len(terms))
		for _, t := range terms {
			if !seen[t] {
				df[t]++
				seen[t] = true
			}
		}
	}
	return df
}

// ComputeIDF applies the smoothed formula ln((n+1)/(df+1)) + 1 to every
// term of df.
func ComputeIDF(df DocumentFrequency, n int) IDF {
	idf := make(IDF, len(df))
	for term, count := range df {
		idf[term] = math.Log(float64(n+1)/float64(count+1)) + 1.0
	}
	return idf
}

// TermFrequency returns each term's share of the document: count divided by
// max(1, total terms).
func TermFrequency(terms []string) map[string]float64 {
	counts := make(map[string]int, len(terms))
	for _, t := range terms {
		counts[t]++
	}
	total := float64(max(1, len(terms)))
	tf := make(map[string]float64, len(counts))
	for t, c := range counts {
		tf[t] = float64(c) / total
	}
	return tf
}

// Weigh multiplies term frequencies by their IDF. Terms without a positive
// IDF are left out.
func Weigh(tf map[string]float64, idf IDF) Vector {
	v := make(Vector, len(tf))
	for term, freq := range tf {
		if w := idf.Weight(term); w > 0 {
			v[term] = freq * w
		}
	}
	return v
}
