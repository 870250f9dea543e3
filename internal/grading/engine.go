package grading

import (
	"context"
	"strings"
)

// Question type identifiers.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeOpenEnded      = "open_ended"
)

type Option struct {
	Text      string
	IsCorrect bool
}

// Question is a minimal view of a quiz question needed for grading.
// Keep this in sync with whatever fields your store uses.
type Question struct {
	ID          string
	Type        string
	Prompt      string
	Points      int
	Explanation string

	// multiple_choice
	Options         []Option
	MultipleCorrect bool

	// open_ended
	ExpectedAnswers []string
	Keywords        []string
	CaseSensitive   bool
	PartialCredit   bool
}

// Outcome is the result of grading a single answer. Malformed or missing
// answers never produce errors; they grade as zero credit.
type Outcome struct {
	PointsEarned  int
	MaxPoints     int
	Correct       bool
	CorrectAnswer string // canonical answer(s), for result breakdowns
}

// Strategy grades one answer for one question type.
type Strategy interface {
	Grade(ctx context.Context, q Question, a Answer) Outcome
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Question, a Answer) Outcome
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Question, a Answer) Outcome {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Outcome{MaxPoints: q.Points}
	}
	return s.Grade(ctx, q, a)
}

// Grader options

type graderConfig struct {
	AllowPartialMulti bool
	Extra             map[string]Strategy
}

type GraderOption func(*graderConfig)

// WithPartialMulti toggles partial credit for multi-select questions.
func WithPartialMulti(b bool) GraderOption {
	return func(c *graderConfig) { c.AllowPartialMulti = b }
}

// WithStrategy registers or overrides the strategy for a question type.
func WithStrategy(typ string, s Strategy) GraderOption {
	return func(c *graderConfig) { c.Extra[typ] = s }
}

// NewGrader installs the built-in strategies.
func NewGrader(opts ...GraderOption) Grader {
	cfg := &graderConfig{
		AllowPartialMulti: true,
		Extra:             map[string]Strategy{},
	}
	for _, o := range opts {
		o(cfg)
	}
	g := &defaultGrader{
		strategies: map[string]Strategy{
			TypeMultipleChoice: choiceStrategy{allowPartial: cfg.AllowPartialMulti},
			TypeOpenEnded:      openEndedStrategy{},
		},
	}
	for typ, s := range cfg.Extra {
		g.strategies[typ] = s
	}
	return g
}

// --- Strategies ---

// choiceStrategy grades multiple_choice questions, dispatching on the
// question's MultipleCorrect flag.
type choiceStrategy struct{ allowPartial bool }

func (s choiceStrategy) Grade(ctx context.Context, q Question, a Answer) Outcome {
	if q.MultipleCorrect {
		return s.gradeMulti(q, a)
	}
	return s.gradeSingle(q, a)
}

func (choiceStrategy) gradeSingle(q Question, a Answer) Outcome {
	// If an author marked more than one option correct the first one in
	// list order wins. Ambiguous input, not validated against.
	correct := ""
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correct = opt.Text
			break
		}
	}
	out := Outcome{MaxPoints: q.Points, CorrectAnswer: correct}
	if !a.Provided() {
		return out
	}
	if a.Text() == correct && correct != "" {
		out.Correct = true
		out.PointsEarned = q.Points
	}
	return out
}

func (s choiceStrategy) gradeMulti(q Question, a Answer) Outcome {
	correctSet := map[string]struct{}{}
	correctList := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correctSet[opt.Text] = struct{}{}
			correctList = append(correctList, opt.Text)
		}
	}
	out := Outcome{MaxPoints: q.Points, CorrectAnswer: strings.Join(correctList, ", ")}
	if !a.Provided() || len(correctSet) == 0 {
		return out
	}

	correctCount, incorrectCount := 0, 0
	for _, pick := range a.List() {
		if _, ok := correctSet[pick]; ok {
			correctCount++
		} else {
			incorrectCount++
		}
	}

	switch {
	case correctCount == len(correctSet) && incorrectCount == 0:
		out.Correct = true
		out.PointsEarned = q.Points
	case s.allowPartial && correctCount > 0:
		// Extra wrong picks forfeit correctness but not the credit for the
		// correct picks.
		out.PointsEarned = roundHalfUp(float64(q.Points) * float64(correctCount) / float64(len(correctSet)))
	}
	return out
}

type openEndedStrategy struct{}

func (openEndedStrategy) Grade(ctx context.Context, q Question, a Answer) Outcome {
	out := Outcome{MaxPoints: q.Points, CorrectAnswer: strings.Join(q.ExpectedAnswers, ", ")}
	if !a.Provided() {
		return out
	}

	fold := func(s string) string {
		if q.CaseSensitive {
			return s
		}
		return strings.ToLower(s)
	}
	text := fold(a.Text())

	for _, expected := range q.ExpectedAnswers {
		if text == fold(expected) {
			out.Correct = true
			out.PointsEarned = q.Points
			return out
		}
	}

	if q.PartialCredit && len(q.Keywords) > 0 {
		hits := 0
		for _, kw := range q.Keywords {
			if kw != "" && strings.Contains(text, fold(kw)) {
				hits++
			}
		}
		if hits > 0 {
			out.PointsEarned = roundHalfUp(float64(q.Points) * float64(hits) / float64(len(q.Keywords)))
		}
	}
	return out
}
