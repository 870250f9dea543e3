package grading

import (
	"context"
	"testing"
)

func mcSingle(points int, opts ...Option) Question {
	return Question{ID: "q1", Type: TypeMultipleChoice, Prompt: "pick one", Points: points, Options: opts}
}

func TestSingleChoiceCorrect(t *testing.T) {
	g := NewGrader()
	q := mcSingle(1, Option{Text: "A", IsCorrect: true}, Option{Text: "B"})

	out := g.Grade(context.Background(), q, SingleAnswer("A"))
	if !out.Correct || out.PointsEarned != 1 {
		t.Fatalf("want full credit, got %+v", out)
	}
	if out.CorrectAnswer != "A" {
		t.Fatalf("canonical answer = %q, want A", out.CorrectAnswer)
	}
}

func TestSingleChoiceWrong(t *testing.T) {
	g := NewGrader()
	q := mcSingle(1, Option{Text: "A", IsCorrect: true}, Option{Text: "B"})

	out := g.Grade(context.Background(), q, SingleAnswer("B"))
	if out.Correct || out.PointsEarned != 0 {
		t.Fatalf("want zero credit, got %+v", out)
	}
}

func TestSingleChoiceFirstMarkedOptionWins(t *testing.T) {
	// Two options marked correct is an authoring mistake; the first in
	// list order is the canonical answer.
	g := NewGrader()
	q := mcSingle(2, Option{Text: "A", IsCorrect: true}, Option{Text: "B", IsCorrect: true})

	if out := g.Grade(context.Background(), q, SingleAnswer("A")); !out.Correct {
		t.Fatalf("first marked option should grade correct: %+v", out)
	}
	if out := g.Grade(context.Background(), q, SingleAnswer("B")); out.Correct {
		t.Fatalf("second marked option should not grade correct: %+v", out)
	}
}

func TestMultiChoicePartialCredit(t *testing.T) {
	g := NewGrader()
	q := Question{
		ID: "q1", Type: TypeMultipleChoice, Points: 4, MultipleCorrect: true,
		Options: []Option{{Text: "A", IsCorrect: true}, {Text: "B", IsCorrect: true}, {Text: "C"}},
	}

	out := g.Grade(context.Background(), q, MultiAnswer([]string{"A"}))
	if out.Correct {
		t.Fatalf("partial selection must not be correct")
	}
	if out.PointsEarned != 2 {
		t.Fatalf("points = %d, want round(4*1/2) = 2", out.PointsEarned)
	}
}

func TestMultiChoiceExtraPickForfeitsCorrectness(t *testing.T) {
	g := NewGrader()
	q := Question{
		ID: "q1", Type: TypeMultipleChoice, Points: 4, MultipleCorrect: true,
		Options: []Option{{Text: "A", IsCorrect: true}, {Text: "B", IsCorrect: true}, {Text: "C"}},
	}

	// All correct options plus a wrong one: full points via the partial
	// branch, but never "correct".
	out := g.Grade(context.Background(), q, MultiAnswer([]string{"A", "B", "C"}))
	if out.Correct {
		t.Fatalf("extra wrong pick must forfeit correctness")
	}
	if out.PointsEarned != 4 {
		t.Fatalf("points = %d, want 4", out.PointsEarned)
	}
}

func TestMultiChoiceScalarAnswerWrapped(t *testing.T) {
	g := NewGrader()
	q := Question{
		ID: "q1", Type: TypeMultipleChoice, Points: 2, MultipleCorrect: true,
		Options: []Option{{Text: "A", IsCorrect: true}, {Text: "B", IsCorrect: true}},
	}

	out := g.Grade(context.Background(), q, SingleAnswer("A"))
	if out.PointsEarned != 1 {
		t.Fatalf("scalar answer should count as one pick: %+v", out)
	}
}

func TestMultiChoiceNoCorrectPicks(t *testing.T) {
	g := NewGrader()
	q := Question{
		ID: "q1", Type: TypeMultipleChoice, Points: 4, MultipleCorrect: true,
		Options: []Option{{Text: "A", IsCorrect: true}, {Text: "B", IsCorrect: true}, {Text: "C"}},
	}

	out := g.Grade(context.Background(), q, MultiAnswer([]string{"C"}))
	if out.PointsEarned != 0 || out.Correct {
		t.Fatalf("want zero credit, got %+v", out)
	}
}

func TestMultiChoicePartialDisabled(t *testing.T) {
	g := NewGrader(WithPartialMulti(false))
	q := Question{
		ID: "q1", Type: TypeMultipleChoice, Points: 4, MultipleCorrect: true,
		Options: []Option{{Text: "A", IsCorrect: true}, {Text: "B", IsCorrect: true}},
	}

	if out := g.Grade(context.Background(), q, MultiAnswer([]string{"A"})); out.PointsEarned != 0 {
		t.Fatalf("partial credit disabled, got %+v", out)
	}
	if out := g.Grade(context.Background(), q, MultiAnswer([]string{"A", "B"})); !out.Correct {
		t.Fatalf("exact match must still earn full credit")
	}
}

func TestOpenEndedExactMatchCaseInsensitive(t *testing.T) {
	g := NewGrader()
	q := Question{
		ID: "q1", Type: TypeOpenEnded, Points: 3,
		ExpectedAnswers: []string{"Paris"},
	}

	out := g.Grade(context.Background(), q, SingleAnswer("paris"))
	if !out.Correct || out.PointsEarned != 3 {
		t.Fatalf("case-insensitive exact match failed: %+v", out)
	}
}

func TestOpenEndedCaseSensitive(t *testing.T) {
	g := NewGrader()
	q := Question{
		ID: "q1", Type: TypeOpenEnded, Points: 3,
		ExpectedAnswers: []string{"Paris"},
		CaseSensitive:   true,
	}

	if out := g.Grade(context.Background(), q, SingleAnswer("paris")); out.Correct {
		t.Fatalf("case-sensitive question matched wrong case: %+v", out)
	}
	if out := g.Grade(context.Background(), q, SingleAnswer("Paris")); !out.Correct {
		t.Fatalf("exact case should match: %+v", out)
	}
}

func TestOpenEndedKeywordPartialCredit(t *testing.T) {
	g := NewGrader()
	q := Question{
		ID: "q1", Type: TypeOpenEnded, Points: 4,
		ExpectedAnswers: []string{"The mitochondria is the powerhouse of the cell"},
		Keywords:        []string{"mitochondria", "powerhouse"},
		PartialCredit:   true,
	}

	out := g.Grade(context.Background(), q, SingleAnswer("something about mitochondria"))
	if out.Correct {
		t.Fatalf("keyword match must not count as correct")
	}
	if out.PointsEarned != 2 {
		t.Fatalf("points = %d, want round(4*1/2) = 2", out.PointsEarned)
	}
}

func TestOpenEndedNoKeywordsNoPanic(t *testing.T) {
	g := NewGrader()
	q := Question{
		ID: "q1", Type: TypeOpenEnded, Points: 4,
		ExpectedAnswers: []string{"exact"},
		PartialCredit:   true, // keywords empty: partial step skipped
	}

	out := g.Grade(context.Background(), q, SingleAnswer("not it"))
	if out.PointsEarned != 0 {
		t.Fatalf("want zero credit, got %+v", out)
	}
}

func TestOpenEndedPartialDisabled(t *testing.T) {
	g := NewGrader()
	q := Question{
		ID: "q1", Type: TypeOpenEnded, Points: 4,
		ExpectedAnswers: []string{"exact"},
		Keywords:        []string{"exact"},
	}

	out := g.Grade(context.Background(), q, SingleAnswer("almost exact phrasing"))
	if out.PointsEarned != 0 {
		t.Fatalf("partial credit off, want 0 points, got %+v", out)
	}
}

func TestUnknownTypeGradesZero(t *testing.T) {
	g := NewGrader()
	q := Question{ID: "q1", Type: "essay", Points: 5}

	out := g.Grade(context.Background(), q, SingleAnswer("anything"))
	if out.PointsEarned != 0 || out.Correct {
		t.Fatalf("unknown type must grade zero: %+v", out)
	}
	if out.MaxPoints != 5 {
		t.Fatalf("max points must still be reported: %+v", out)
	}
}

func TestCustomStrategy(t *testing.T) {
	g := NewGrader(WithStrategy("always_right", strategyFunc(func(_ context.Context, q Question, _ Answer) Outcome {
		return Outcome{MaxPoints: q.Points, PointsEarned: q.Points, Correct: true}
	})))
	out := g.Grade(context.Background(), Question{Type: "always_right", Points: 2}, Answer{})
	if !out.Correct || out.PointsEarned != 2 {
		t.Fatalf("custom strategy not routed: %+v", out)
	}
}

type strategyFunc func(context.Context, Question, Answer) Outcome

func (f strategyFunc) Grade(ctx context.Context, q Question, a Answer) Outcome { return f(ctx, q, a) }
