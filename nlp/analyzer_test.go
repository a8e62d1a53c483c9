package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedAnalyzer returns canned tokens regardless of input.
type fixedAnalyzer []Token

func (f fixedAnalyzer) Analyze(string) []Token { return f }

func TestNormalize_Portuguese(t *testing.T) {
	n := NewNormalizer(Portuguese{})

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"stop words and punctuation dropped", "O que é comunicação?", []string{"comunicação"}},
		{"case folded and trimmed", "   COMUNICAÇÃO   ", []string{"comunicação"}},
		{"order and repeats kept", "gato gato cão", []string{"gato", "gato", "cão"}},
		{"plurals reduced", "Emissores e receptores", []string{"emissor", "receptor"}},
		{"single characters dropped", "x y gato", []string{"gato"}},
		{"hyphenated word kept whole", "comunicação não-verbal", []string{"comunicação", "não-verbal"}},
		{"decomposed accents composed", "comunicac\u0327a\u0303o", []string{"comunicação"}},
		{"digits kept", "modelo 2025", []string{"modelo", "2025"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.text))
		})
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := NewNormalizer(Portuguese{})

	for _, text := range []string{"", "   ", "\t\n", "?!...", "o que é"} {
		assert.Empty(t, n.Normalize(text), "input %q", text)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	n := NewNormalizer(Portuguese{})
	text := "Quais são os elementos do processo de comunicação?"

	first := n.Normalize(text)
	require.NotEmpty(t, first)
	for range 10 {
		assert.Equal(t, first, n.Normalize(text))
	}
}

func TestNormalize_TokenFlags(t *testing.T) {
	n := NewNormalizer(fixedAnalyzer{
		{Text: " ", Lemma: " ", IsSpace: true},
		{Text: "?", Lemma: "?", IsPunct: true},
		{Text: "the", Lemma: "the", IsStop: true},
		{Text: "unknown", Lemma: ""},
		{Text: "blank", Lemma: "   "},
		{Text: "a", Lemma: "a"},
		{Text: "running", Lemma: "run"},
	})

	assert.Equal(t, []string{"run"}, n.Normalize("anything"))
}

func TestNormalize_English(t *testing.T) {
	n := NewNormalizer(English{})

	assert.Equal(t, []string{"cat", "run"}, n.Normalize("The cats are running!"))
}

func TestNormalize_Spanish(t *testing.T) {
	n := NewNormalizer(Spanish{})

	singular := n.Normalize("el gato")
	plural := n.Normalize("los gatos")
	require.Len(t, singular, 1)
	assert.Equal(t, singular, plural)
}

func TestSegment(t *testing.T) {
	tokens := segment("olá, mundo! d'água")

	var texts []string
	var punct []bool
	for _, tok := range tokens {
		texts = append(texts, tok.Text)
		punct = append(punct, tok.IsPunct)
	}
	assert.Equal(t, []string{"olá", ",", "mundo", "!", "d'água"}, texts)
	assert.Equal(t, []bool{false, true, false, true, false}, punct)
}

func TestSegment_TrailingJoiner(t *testing.T) {
	tokens := segment("bem- vindo")

	require.Len(t, tokens, 3)
	assert.Equal(t, "bem", tokens[0].Text)
	assert.True(t, tokens[1].IsPunct)
	assert.Equal(t, "vindo", tokens[2].Text)
}

func TestForLanguage(t *testing.T) {
	for _, code := range []string{"pt", "EN", " es "} {
		a, err := ForLanguage(code)
		require.NoError(t, err, code)
		assert.NotNil(t, a)
	}

	_, err := ForLanguage("xx")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	assert.Equal(t, []string{"en", "es", "pt"}, Languages())
}
