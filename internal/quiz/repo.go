package quiz

import (
	"context"
	"errors"
)

// ErrNotFound reports a quiz or result id that does not resolve. It is the
// only hard failure of the submission path besides storage errors.
var ErrNotFound = errors.New("not found")

type ListOpts struct {
	Q      string // substring match on title
	Author string
	Limit  int
	Offset int
}

type ResultListOpts struct {
	QuizID string
	UserID string
	Limit  int
	Offset int
}

type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	// GetQuiz is taker-safe: answer keys and explanations are stripped.
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	// GetQuizAdmin returns the full quiz, for authors and graders.
	GetQuizAdmin(ctx context.Context, id string) (Quiz, error)
	ListQuizzes(ctx context.Context, opts ListOpts) ([]QuizSummary, error)
	DeleteQuiz(ctx context.Context, id string) error

	// Submit scores the submission against the quiz, appends an immutable
	// Result to the results log and recomputes the quiz's attempt count
	// and average score from the log. At-least-once: a retried submission
	// records a second Result.
	Submit(ctx context.Context, quizID string, sub Submission) (Result, error)
	GetResult(ctx context.Context, id string) (Result, error)
	ListResults(ctx context.Context, opts ResultListOpts) ([]Result, error)
}
