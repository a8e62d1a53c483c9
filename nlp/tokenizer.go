package nlp

import (
	"unicode"
)

// segment splits text into word and punctuation tokens. Words are runs of
// letters, digits and combining marks; a hyphen or apostrophe between two
// word characters stays inside the word ("não-verbal", "d'água"). Every
// other non-space rune becomes a punctuation token of its own. Whitespace is
// skipped.
func segment(text string) []Token {
	runes := []rune(text)
	var tokens []Token

	start := -1
	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, Token{Text: string(runes[start:end])})
			start = -1
		}
	}

	for i, r := range runes {
		switch {
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		case isJoiner(r) && start >= 0 && i+1 < len(runes) && isWordRune(runes[i+1]):
			// stays inside the current word
		case unicode.IsSpace(r):
			flush(i)
		default:
			flush(i)
			tokens = append(tokens, Token{Text: string(r), IsPunct: true})
		}
	}
	flush(len(runes))

	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isJoiner(r rune) bool {
	return r == '-' || r == '\'' || r == '’'
}
