package nlp

import (
	"strings"

	"github.com/kljensen/snowball/english"
	"github.com/kljensen/snowball/spanish"
)

// English analyzes English text with the Snowball English stemmer.
type English struct{}

var _ Analyzer = English{}

// Analyze implements Analyzer.
func (English) Analyze(text string) []Token {
	return snowballAnalyze(text, englishStopWords, func(w string) string {
		return english.Stem(w, false)
	})
}

// Spanish analyzes Spanish text with the Snowball Spanish stemmer.
type Spanish struct{}

var _ Analyzer = Spanish{}

// Analyze implements Analyzer.
func (Spanish) Analyze(text string) []Token {
	return snowballAnalyze(text, spanishStopWords, func(w string) string {
		return spanish.Stem(w, false)
	})
}

func snowballAnalyze(text string, stopWords map[string]bool, stem func(string) string) []Token {
	tokens := segment(text)
	for i := range tokens {
		if tokens[i].IsPunct {
			continue
		}
		word := strings.ToLower(tokens[i].Text)
		tokens[i].IsStop = stopWords[word]
		tokens[i].Lemma = stem(word)
	}
	return tokens
}

var englishStopWords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any", "are",
	"as", "at", "be", "because", "been", "before", "being", "below", "between", "both", "but",
	"by", "can", "could", "did", "do", "does", "doing", "down", "during", "each", "few", "for",
	"from", "further", "had", "has", "have", "having", "he", "her", "here", "hers", "herself",
	"him", "himself", "his", "how", "i", "if", "in", "into", "is", "it", "its", "itself", "just",
	"me", "more", "most", "my", "myself", "no", "nor", "not", "now", "of", "off", "on", "once",
	"only", "or", "other", "our", "ours", "ourselves", "out", "over", "own", "same", "she",
	"should", "so", "some", "such", "than", "that", "the", "their", "theirs", "them",
	"themselves", "then", "there", "these", "they", "this", "those", "through", "to", "too",
	"under", "until", "up", "very", "was", "we", "were", "what", "when", "where", "which",
	"while", "who", "whom", "why", "will", "with", "would", "you", "your", "yours", "yourself",
	"yourselves",
)

var spanishStopWords = toSet(
	"a", "al", "algo", "algunas", "algunos", "ante", "antes", "como", "con", "contra", "cual",
	"cuales", "cuando", "de", "del", "desde", "donde", "durante", "e", "el", "ella", "ellas",
	"ellos", "en", "entre", "era", "es", "esa", "esas", "ese", "eso", "esos", "esta", "está",
	"están", "estas", "este", "esto", "estos", "fue", "ha", "hay", "la", "las", "le", "les",
	"lo", "los", "más", "me", "mi", "mis", "mucho", "muy", "nada", "ni", "no", "nos", "nosotros",
	"o", "otra", "otros", "para", "pero", "poco", "por", "porque", "qué", "que", "quien",
	"quienes", "se", "sea", "ser", "si", "sí", "sin", "sobre", "son", "su", "sus", "también",
	"tanto", "te", "tiene", "todo", "todos", "tu", "tus", "un", "una", "uno", "unos", "y", "ya",
	"yo",
)
