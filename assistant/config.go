// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package assistant

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/faqmatch/nlp"
	"gopkg.in/yaml.v3"
)

// Default reply texts, in the language of the default seed set.
const (
	DefaultEmptyKnowledgeBaseMessage = "Ainda não tenho base de conhecimento carregada. Pede ao admin para adicionar Perguntas/Respostas."
	DefaultNoMatchMessage            = "Não encontrei uma correspondência forte para isso. Tenta reformular a pergunta (mais concreta) ou escolhe uma sugestão."
)

// Config holds the decision policy and chat settings.
type Config struct {
	// Language selects the text analyzer (see nlp.Languages).
	// Default: "pt"
	Language string `yaml:"language"`

	// Threshold is the minimum top score for an answer to be returned.
	// Default: 0.12
	Threshold float64 `yaml:"threshold"`

	// TopK is the number of ranked candidates kept per question.
	// Default: 3
	TopK int `yaml:"topK"`

	// SuggestionCount is the number of recent questions offered as
	// suggestions.
	// Default: 8
	SuggestionCount int `yaml:"suggestionCount"`

	// HistoryLimit caps the messages returned for a conversation.
	// Default: 200
	HistoryLimit int `yaml:"historyLimit"`

	// MinQuestionLength and MaxQuestionLength bound a user question, in
	// characters after trimming. A MaxQuestionLength of 0 means unbounded.
	// Defaults: 2 and 300
	MinQuestionLength int `yaml:"minQuestionLength"`
	MaxQuestionLength int `yaml:"maxQuestionLength"`

	// EmptyKnowledgeBaseMessage is returned while no items are stored.
	EmptyKnowledgeBaseMessage string `yaml:"emptyKnowledgeBaseMessage"`

	// NoMatchMessage is returned when the best score is below Threshold.
	NoMatchMessage string `yaml:"noMatchMessage"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithLanguage sets the analyzer language.
func WithLanguage(language string) ConfigOption {
	return func(c *Config) {
		c.Language = language
	}
}

// WithThreshold sets the confidence threshold.
func WithThreshold(threshold float64) ConfigOption {
	return func(c *Config) {
		c.Threshold = threshold
	}
}

// WithTopK sets how many candidates are ranked per question.
func WithTopK(k int) ConfigOption {
	return func(c *Config) {
		c.TopK = k
	}
}

// WithSuggestionCount sets the number of suggested questions.
func WithSuggestionCount(n int) ConfigOption {
	return func(c *Config) {
		c.SuggestionCount = n
	}
}

// WithHistoryLimit sets the maximum number of history messages returned.
func WithHistoryLimit(n int) ConfigOption {
	return func(c *Config) {
		c.HistoryLimit = n
	}
}

// WithQuestionLength sets the question length bounds.
func WithQuestionLength(min, max int) ConfigOption {
	return func(c *Config) {
		c.MinQuestionLength = min
		c.MaxQuestionLength = max
	}
}

// WithMessages overrides the fallback reply texts. Empty values keep the
// current text.
func WithMessages(emptyKnowledgeBase, noMatch string) ConfigOption {
	return func(c *Config) {
		if emptyKnowledgeBase != "" {
			c.EmptyKnowledgeBaseMessage = emptyKnowledgeBase
		}
		if noMatch != "" {
			c.NoMatchMessage = noMatch
		}
	}
}

// DefaultConfig returns a Config with the default policy.
func DefaultConfig() *Config {
	return &Config{
		Language:                  nlp.DefaultLanguage,
		Threshold:                 0.12,
		TopK:                      3,
		SuggestionCount:           8,
		HistoryLimit:              200,
		MinQuestionLength:         2,
		MaxQuestionLength:         300,
		EmptyKnowledgeBaseMessage: DefaultEmptyKnowledgeBaseMessage,
		NoMatchMessage:            DefaultNoMatchMessage,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithThreshold(0.2),
//	    WithTopK(5),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize puts the configuration in canonical form: the language code is
// trimmed and lowercased, and empty messages fall back to the defaults.
func (c *Config) Normalize() {
	c.Language = strings.ToLower(strings.TrimSpace(c.Language))
	if c.Language == "" {
		c.Language = nlp.DefaultLanguage
	}
	if strings.TrimSpace(c.EmptyKnowledgeBaseMessage) == "" {
		c.EmptyKnowledgeBaseMessage = DefaultEmptyKnowledgeBaseMessage
	}
	if strings.TrimSpace(c.NoMatchMessage) == "" {
		c.NoMatchMessage = DefaultNoMatchMessage
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if _, err := nlp.ForLanguage(c.Language); err != nil {
		return fmt.Errorf("assistant config: %w", err)
	}
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return errors.New("assistant config: Threshold must be between 0 and 1")
	}
	if c.TopK < 1 {
		return errors.New("assistant config: TopK must be at least 1")
	}
	if c.SuggestionCount < 0 {
		return errors.New("assistant config: SuggestionCount cannot be negative")
	}
	if c.HistoryLimit < 1 {
		return errors.New("assistant config: HistoryLimit must be at least 1")
	}
	if c.MinQuestionLength < 1 {
		return errors.New("assistant config: MinQuestionLength must be at least 1")
	}
	if c.MaxQuestionLength != 0 && c.MaxQuestionLength < c.MinQuestionLength {
		return errors.New("assistant config: MaxQuestionLength must be 0 or at least MinQuestionLength")
	}
	return nil
}

// LoadConfig reads YAML overrides on top of the defaults and validates the
// result.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile is LoadConfig for a file path. An empty path yields the
// defaults with environment overrides applied.
func LoadConfigFile(path string) (*Config, error) {
	if path == "" {
		return LoadConfig(strings.NewReader(""))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// applyEnvOverrides reads FAQMATCH_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FAQMATCH_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("FAQMATCH_THRESHOLD"); v != "" {
		if threshold, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Threshold = threshold
		}
	}
	if v := os.Getenv("FAQMATCH_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.TopK = k
		}
	}
}
