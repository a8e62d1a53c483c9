package evaluate

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrAskerRequired is returned when an asker is not provided.
	ErrAskerRequired = errors.New("asker required")

	// ErrInvalidCase is returned for a case without a question.
	ErrInvalidCase = errors.New("invalid evaluation case")
)
