// Package knowledge loads question/answer sets from YAML and imports them
// into a knowledge base.
//
// A knowledge file lists items:
//
//	items:
//	  - question: "O que é feedback?"
//	    answer: "É a resposta do receptor ao emissor."
//
// Default returns the built-in starter set.
package knowledge

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/storage"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedData string

// Entry is one question and its answer.
type Entry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type document struct {
	Items []Entry `yaml:"items"`
}

// Mode selects how Import treats an existing knowledge base.
type Mode int

const (
	// ModeIfEmpty inserts every entry only when the knowledge base holds no
	// items, and does nothing otherwise.
	ModeIfEmpty Mode = iota
	// ModeUpsert updates entries whose question is already stored and
	// inserts the rest.
	ModeUpsert
)

func (m Mode) String() string {
	switch m {
	case ModeIfEmpty:
		return "if-empty"
	case ModeUpsert:
		return "upsert"
	default:
		return "unknown"
	}
}

// Result counts what Import did.
type Result struct {
	Inserted int
	Updated  int
	Skipped  int
}

// Load parses a YAML knowledge file.
func Load(r io.Reader) ([]Entry, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("parsing knowledge file: %w", err)
	}
	if doc.Items == nil {
		return []Entry{}, nil
	}
	return doc.Items, nil
}

var defaultEntries = sync.OnceValue(func() []Entry {
	entries, err := Load(strings.NewReader(seedData))
	if err != nil {
		panic(fmt.Sprintf("knowledge: embedded seed: %v", err))
	}
	return entries
})

// Default returns a copy of the built-in starter set about personal and
// business communication, in Portuguese.
func Default() []Entry {
	return append([]Entry(nil), defaultEntries()...)
}

// Import writes entries to repo according to mode. Every entry is validated
// before anything is written. Repeated questions within entries keep the
// first occurrence.
func Import(ctx context.Context, repo storage.QARepository, entries []Entry, mode Mode) (*Result, error) {
	logger := slog.Default().With("component", "knowledge")
	result := &Result{}

	items, err := prepare(entries, result)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeIfEmpty:
		count, err := repo.CountQAItems(ctx)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			result.Skipped += len(items)
			logger.Info("knowledge base not empty, skipping import", "items", count)
			return result, nil
		}
		if len(items) > 0 {
			if _, err := repo.AddQAItems(ctx, items...); err != nil {
				return nil, fmt.Errorf("inserting items: %w", err)
			}
		}
		result.Inserted = len(items)

	case ModeUpsert:
		var toInsert, toUpdate []*core.QAItem
		for _, item := range items {
			existing, err := repo.FindQAItemByQuestion(ctx, item.Question)
			if errors.Is(err, storage.ErrNotFound) {
				toInsert = append(toInsert, item)
				continue
			}
			if err != nil {
				return nil, err
			}
			if existing.Question == item.Question && existing.Answer == item.Answer {
				result.Skipped++
				continue
			}
			existing.Question = item.Question
			existing.Answer = item.Answer
			toUpdate = append(toUpdate, existing)
		}

		if len(toUpdate) > 0 {
			if _, err := repo.UpdateQAItems(ctx, toUpdate...); err != nil {
				return nil, fmt.Errorf("updating items: %w", err)
			}
		}
		if len(toInsert) > 0 {
			if _, err := repo.AddQAItems(ctx, toInsert...); err != nil {
				return nil, fmt.Errorf("inserting items: %w", err)
			}
		}
		result.Updated = len(toUpdate)
		result.Inserted = len(toInsert)

	default:
		return nil, fmt.Errorf("unknown import mode %d", mode)
	}

	logger.Info("knowledge imported",
		"mode", mode.String(),
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped)
	return result, nil
}

// prepare trims and validates entries and drops repeated questions.
func prepare(entries []Entry, result *Result) ([]*core.QAItem, error) {
	seen := make(map[core.ID]bool, len(entries))
	items := make([]*core.QAItem, 0, len(entries))

	for i, entry := range entries {
		item := &core.QAItem{
			Question: strings.TrimSpace(entry.Question),
			Answer:   strings.TrimSpace(entry.Answer),
		}
		if err := core.ValidateQAItem(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}

		fp := core.QuestionFingerprint(item.Question)
		if seen[fp] {
			result.Skipped++
			continue
		}
		seen[fp] = true
		items = append(items, item)
	}
	return items, nil
}
