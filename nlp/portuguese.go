package nlp

import (
	"strings"
	"unicode/utf8"
)

// Portuguese analyzes Portuguese text with a built-in stop list and a light
// rule-based stemmer that folds plurals and -mente adverbs onto their base
// form. Accented letters are preserved.
type Portuguese struct{}

var _ Analyzer = Portuguese{}

// Analyze implements Analyzer.
func (Portuguese) Analyze(text string) []Token {
	tokens := segment(text)
	for i := range tokens {
		if tokens[i].IsPunct {
			continue
		}
		word := strings.ToLower(tokens[i].Text)
		tokens[i].IsStop = portugueseStopWords[word]
		tokens[i].Lemma = StemPortuguese(word)
	}
	return tokens
}

// StemPortuguese reduces a lowercase Portuguese word to its base form.
// A trailing possessive clitic ('s) is dropped first; after that, words of
// three characters or fewer are returned unchanged.
func StemPortuguese(word string) string {
	for _, clitic := range []string{"'s", "’s"} {
		if stem, ok := strings.CutSuffix(word, clitic); ok {
			word = stem
			break
		}
	}
	if utf8.RuneCountInString(word) <= 3 {
		return word
	}
	word = reducePlural(word)
	if stem, ok := strings.CutSuffix(word, "mente"); ok && utf8.RuneCountInString(stem) >= 4 {
		word = stem
	}
	return word
}

var pluralRules = []struct {
	suffix      string
	replacement string
	minStem     int
}{
	{"ões", "ão", 1},
	{"ães", "ão", 1},
	{"ãos", "ão", 1},
	{"ais", "al", 2},
	{"éis", "el", 1},
	{"óis", "ol", 1},
	{"ns", "m", 2},
	{"res", "r", 2},
	{"zes", "z", 2},
}

func reducePlural(word string) string {
	if !strings.HasSuffix(word, "s") {
		return word
	}
	for _, rule := range pluralRules {
		if stem, ok := strings.CutSuffix(word, rule.suffix); ok && utf8.RuneCountInString(stem) >= rule.minStem {
			return stem + rule.replacement
		}
	}
	stem := strings.TrimSuffix(word, "s")
	last, _ := utf8.DecodeLastRuneInString(stem)
	switch last {
	case 's', 'u', 'i', 'á', 'é', 'í', 'ó', 'ú', 'ê', 'ô':
		// lápis, ônibus, mês, país, através
		return word
	}
	return stem
}

var portugueseStopWords = toSet(
	"a", "à", "às", "acerca", "agora", "ainda", "além", "algo", "alguém", "algum", "alguma",
	"algumas", "alguns", "ali", "ambos", "antes", "ao", "aos", "apenas", "após", "aquela",
	"aquelas", "aquele", "aqueles", "aqui", "aquilo", "as", "assim", "até", "através", "cada",
	"coisa", "com", "como", "contra", "contudo", "da", "daquele", "daqueles", "das", "de",
	"dela", "delas", "dele", "deles", "depois", "desde", "dessa", "dessas", "desse", "desses",
	"desta", "destas", "deste", "destes", "deve", "devem", "do", "dos", "durante", "e", "é",
	"ela", "elas", "ele", "eles", "em", "enquanto", "entre", "era", "eram", "essa", "essas",
	"esse", "esses", "esta", "está", "estão", "estas", "estava", "este", "estes", "estou",
	"eu", "foi", "foram", "há", "isso", "isto", "já", "la", "lhe", "lhes", "lo", "mais", "mas",
	"me", "mesma", "mesmas", "mesmo", "mesmos", "meu", "meus", "minha", "minhas", "muito",
	"muitos", "na", "não", "nas", "nem", "nenhum", "nessa", "nesse", "nesta", "neste", "no",
	"nos", "nós", "nossa", "nossas", "nosso", "nossos", "num", "numa", "o", "onde", "os", "ou",
	"para", "pela", "pelas", "pelo", "pelos", "per", "perante", "pode", "podem", "por",
	"porque", "porquê", "pouco", "qual", "quais", "quando", "quanto", "quantos", "que", "quê",
	"quem", "se", "sem", "ser", "será", "seu", "seus", "si", "sido", "sob", "sobre", "sua",
	"suas", "são", "também", "tal", "tão", "te", "tem", "têm", "ter", "teu", "teus", "toda",
	"todas", "todo", "todos", "tu", "tua", "tuas", "tudo", "um", "uma", "umas", "uns", "vai",
	"você", "vocês", "vos", "vós",
)

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
