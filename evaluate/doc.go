// Package evaluate measures how well the knowledge base answers a set of
// labelled questions.
//
// Cases are asked concurrently through a bounded worker pool. Transient
// failures are retried with exponential backoff, and progress is written to
// an io.Writer while the run is in flight.
//
// # Usage
//
//	cases, err := evaluate.LoadCases(f)
//	ev, err := evaluate.NewEvaluator(asst, evaluate.DefaultConfig(), os.Stderr)
//	report, err := ev.Run(ctx, cases)
//	fmt.Printf("accuracy: %.1f%%\n", report.Accuracy()*100)
package evaluate
