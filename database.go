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


package faqmatch

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/faqmatch/assistant"
	"github.com/poiesic/faqmatch/nlp"
	"github.com/poiesic/faqmatch/search"
	"github.com/poiesic/faqmatch/storage"
	"github.com/poiesic/faqmatch/storage/badger"
)

var (
	// ErrPathRequired is returned when an on-disk database has no path.
	ErrPathRequired = errors.New("database path is required")
	// ErrLanguageMismatch is returned when an assistant is configured for a
	// language other than the one the database matcher analyzes.
	ErrLanguageMismatch = errors.New("assistant language does not match database language")
)

type Database struct {
	backend  *badger.Backend
	qaRepo   storage.QARepository
	chatRepo storage.ChatRepository
	matcher  *search.Matcher
	config   *assistant.Config
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	inMemory bool
	config   *assistant.Config
	logger   *slog.Logger
}

// WithInMemory keeps everything in memory. The path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithConfig sets the assistant configuration.
// Default is assistant.DefaultConfig().
func WithConfig(cfg *assistant.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg != nil {
			o.config = cfg
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		config: assistant.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if !options.inMemory && filePath == "" {
		return nil, ErrPathRequired
	}
	if err := options.config.Validate(); err != nil {
		return nil, err
	}

	// Analyzer first so a bad language fails before anything is opened
	analyzer, err := nlp.ForLanguage(options.config.Language)
	if err != nil {
		return nil, err
	}
	matcher, err := search.NewMatcher(nlp.NewNormalizer(analyzer), search.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	qaRepo, err := badger.NewQARepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chatRepo, err := badger.NewChatRepository(backend)
	if err != nil {
		qaRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:  backend,
		qaRepo:   qaRepo,
		chatRepo: chatRepo,
		matcher:  matcher,
		config:   options.config,
		logger:   options.logger,
	}, nil
}

func (db *Database) Close() error {
	if err := db.chatRepo.Close(); err != nil {
		db.logger.Error("error closing chat repository", "err", err)
		return err
	}
	if err := db.qaRepo.Close(); err != nil {
		db.logger.Error("error closing QA repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) QARepository() storage.QARepository {
	return db.qaRepo
}

func (db *Database) ChatRepository() storage.ChatRepository {
	return db.chatRepo
}

func (db *Database) Matcher() *search.Matcher {
	return db.matcher
}

func (db *Database) Config() *assistant.Config {
	return db.config
}

// NewAssistant creates an assistant over this database with its config and
// logger. Later options override them, but a config must keep the
// database's language since the matcher is fixed at open time.
func (db *Database) NewAssistant(opts ...assistant.Option) (*assistant.Assistant, error) {
	base := []assistant.Option{
		assistant.WithConfig(db.config),
		assistant.WithLogger(db.logger),
	}
	asst, err := assistant.NewAssistant(db.qaRepo, db.chatRepo, db.matcher, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	if got := asst.Config().Language; got != db.config.Language {
		return nil, fmt.Errorf("%w: %q, database uses %q", ErrLanguageMismatch, got, db.config.Language)
	}
	return asst, nil
}
