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


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/faqmatch"
	"github.com/poiesic/faqmatch/assistant"
	"github.com/poiesic/faqmatch/evaluate"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func newApp() *cli.App {
	evalDefaults := evaluate.DefaultConfig()

	return &cli.App{
		Name:  "faqmatch",
		Usage: "Answer questions from a knowledge base by TF-IDF similarity",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML assistant configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Load the built-in knowledge base",
				Action: seedCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Update existing items instead of skipping a non-empty knowledge base",
					},
				},
			},
			{
				Name:   "import",
				Usage:  "Insert or update items from a YAML knowledge file",
				Action: importCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "YAML file with an items list of question/answer pairs",
						Required: true,
					},
				},
			},
			{
				Name:   "list",
				Usage:  "Print every stored item",
				Action: listCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
			{
				Name:   "add",
				Usage:  "Add one item",
				Action: addCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "question",
						Aliases:  []string{"q"},
						Usage:    "Question text",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "answer",
						Aliases:  []string{"a"},
						Usage:    "Answer text",
						Required: true,
					},
				},
			},
			{
				Name:   "delete",
				Usage:  "Delete one item",
				Action: deleteCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.Uint64Flag{
						Name:     "id",
						Usage:    "Item id",
						Required: true,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask one question",
				ArgsUsage: "<question...>",
				Action:    askCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "conversation",
						Usage: "Conversation id (a new one is generated when empty)",
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Print normalized terms and every score",
					},
				},
			},
			{
				Name:   "eval",
				Usage:  "Check answers against a YAML file of labelled questions",
				Action: evalCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "YAML file with a cases list of question/expect pairs",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of questions asked concurrently",
						Value: evalDefaults.Workers,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N cases",
						Value: evalDefaults.ReportInterval,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: evalDefaults.MaxRetries,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: evalDefaults.RetryDelay,
					},
					&cli.Float64Flag{
						Name:  "min-accuracy",
						Usage: "Fail when accuracy is below this fraction",
					},
					&cli.BoolFlag{
						Name:  "keep-transcript",
						Usage: "Keep the evaluation conversation in the database",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8080",
					},
					&cli.DurationFlag{
						Name:  "shutdown-timeout",
						Usage: "Time allowed for in-flight requests on shutdown",
						Value: 10 * time.Second,
					},
				},
			},
		},
	}
}

// openDatabase opens the --db database with the --config assistant settings.
func openDatabase(c *cli.Context) (*faqmatch.Database, error) {
	dbPath := c.String("db")
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	cfg, err := assistant.LoadConfigFile(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := faqmatch.NewDatabase(dbPath, faqmatch.WithConfig(cfg), faqmatch.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
