package evaluate

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Case is a labelled question. Expect is the stored question that should
// answer it, or empty when no confident match is expected.
type Case struct {
	Question string `yaml:"question"`
	Expect   string `yaml:"expect"`
}

type caseFile struct {
	Cases []Case `yaml:"cases"`
}

// LoadCases parses a YAML case file:
//
//	cases:
//	  - question: "o que significa feedback"
//	    expect: "O que é feedback?"
//	  - question: "xpto inexistente zzz"
func LoadCases(r io.Reader) ([]Case, error) {
	var file caseFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return []Case{}, nil
		}
		return nil, fmt.Errorf("parsing cases: %w", err)
	}

	for i, c := range file.Cases {
		if strings.TrimSpace(c.Question) == "" {
			return nil, fmt.Errorf("%w: case %d has no question", ErrInvalidCase, i+1)
		}
	}
	if file.Cases == nil {
		return []Case{}, nil
	}
	return file.Cases, nil
}
