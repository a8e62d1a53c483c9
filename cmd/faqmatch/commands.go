package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/evaluate"
	"github.com/poiesic/faqmatch/knowledge"
	"github.com/poiesic/faqmatch/search"
	"github.com/urfave/cli/v2"
)

func seedCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	mode := knowledge.ModeIfEmpty
	if c.Bool("force") {
		mode = knowledge.ModeUpsert
	}

	result, err := knowledge.Import(c.Context, db.QARepository(), knowledge.Default(), mode)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	printImportResult(c, result)
	return nil
}

func importCommand(c *cli.Context) error {
	f, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open knowledge file: %w", err)
	}
	defer f.Close()

	entries, err := knowledge.Load(f)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := knowledge.Import(c.Context, db.QARepository(), entries, knowledge.ModeUpsert)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	printImportResult(c, result)
	return nil
}

func printImportResult(c *cli.Context, result *knowledge.Result) {
	fmt.Fprintf(c.App.Writer, "Inserted: %d, updated: %d, skipped: %d\n",
		result.Inserted, result.Updated, result.Skipped)
}

func listCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	items, err := db.QARepository().ListQAItems(c.Context)
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Fprintf(c.App.Writer, "%d\t%s\n", item.Id, item.Question)
	}
	fmt.Fprintf(c.App.ErrWriter, "%d items\n", len(items))
	return nil
}

func addCommand(c *cli.Context) error {
	item := &core.QAItem{
		Question: strings.TrimSpace(c.String("question")),
		Answer:   strings.TrimSpace(c.String("answer")),
	}
	if err := core.ValidateQAItem(item); err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	added, err := db.QARepository().AddQAItems(c.Context, item)
	if err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "%d\n", added[0].Id)
	return nil
}

func deleteCommand(c *cli.Context) error {
	id := core.ID(c.Uint64("id"))
	if id == 0 {
		return fmt.Errorf("id must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.QARepository().DeleteQAItems(c.Context, id); err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("question is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	asst, err := db.NewAssistant()
	if err != nil {
		return err
	}

	var monitor search.MatchMonitor
	if c.Bool("explain") {
		// Same order the assistant ranks in
		items, err := db.QARepository().ListQAItems(c.Context)
		if err != nil {
			return err
		}
		questions := make([]string, len(items))
		for i, item := range items {
			questions[i] = item.Question
		}
		monitor = search.NewWriterMonitor(c.App.ErrWriter, questions)
	}

	reply, err := asst.AskWithMonitor(c.Context, c.String("conversation"), question, monitor)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "conversation: %s\n", reply.Conversation)
	if c.Bool("explain") {
		fmt.Fprintf(c.App.ErrWriter, "outcome: %s (threshold %.2f)\n", reply.Outcome, db.Config().Threshold)
		for _, cand := range reply.Candidates {
			fmt.Fprintf(c.App.ErrWriter, "  %.4f  %s\n", cand.Score, cand.Item.Question)
		}
	}
	fmt.Fprintln(c.App.Writer, reply.Answer)
	return nil
}

func evalCommand(c *cli.Context) error {
	f, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open cases file: %w", err)
	}
	defer f.Close()

	cases, err := evaluate.LoadCases(f)
	if err != nil {
		return err
	}

	evalConfig := &evaluate.Config{
		Workers:        c.Int("workers"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if evalConfig.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}
	if evalConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if evalConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	asst, err := db.NewAssistant()
	if err != nil {
		return err
	}

	evaluator, err := evaluate.NewEvaluator(asst, evalConfig, c.App.ErrWriter)
	if err != nil {
		return err
	}

	report, err := evaluator.Run(c.Context, cases)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if !c.Bool("keep-transcript") {
		// Detached so an interrupted run still cleans up
		if err := db.ChatRepository().DeleteConversation(context.WithoutCancel(c.Context), report.Conversation); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "failed to delete transcript %s: %v\n", report.Conversation, err)
		}
	}

	printReport(c, report)

	if minAccuracy := c.Float64("min-accuracy"); report.Accuracy() < minAccuracy {
		return fmt.Errorf("accuracy %.1f%% is below %.1f%%", report.Accuracy()*100, minAccuracy*100)
	}
	return nil
}

func printReport(c *cli.Context, report *evaluate.Report) {
	w := c.App.Writer
	for _, r := range report.Results {
		if r.Passed {
			continue
		}
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "ERROR %q: %v\n", r.Case.Question, r.Err)
		case r.Matched == "":
			fmt.Fprintf(w, "FAIL  %q: no candidate, expected %q\n", r.Case.Question, r.Case.Expect)
		default:
			fmt.Fprintf(w, "FAIL  %q: %s %q (%.4f), expected %q\n",
				r.Case.Question, r.Outcome, r.Matched, r.Score, r.Case.Expect)
		}
	}

	fmt.Fprintf(w, "Cases: %d, passed: %d (%.1f%%)\n", report.Total, report.Passed, report.Accuracy()*100)
	fmt.Fprintf(w, "Answered: %d, no match: %d, empty knowledge base: %d, errors: %d\n",
		report.Answered, report.NoMatch, report.EmptyKnowledgeBase, report.Errors)
	fmt.Fprintf(w, "Elapsed: %s\n", report.Elapsed.Round(time.Millisecond))
}
