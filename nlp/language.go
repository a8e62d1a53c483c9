package nlp

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DefaultLanguage is the language used when none is configured.
const DefaultLanguage = "pt"

// ErrUnsupportedLanguage is returned for a language without an analyzer.
var ErrUnsupportedLanguage = errors.New("unsupported language")

var analyzers = map[string]Analyzer{
	"pt": Portuguese{},
	"en": English{},
	"es": Spanish{},
}

// ForLanguage returns the analyzer for a language code such as "pt".
func ForLanguage(code string) (Analyzer, error) {
	a, ok := analyzers[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	return a, nil
}

// Languages lists the supported language codes in sorted order.
func Languages() []string {
	codes := make([]string, 0, len(analyzers))
	for code := range analyzers {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}
