package grading

import (
	"context"
	"math"
)

// DefaultPassPercentage applies when a quiz author did not set a pass
// threshold.
const DefaultPassPercentage = 70

// Quiz is the grading view of a quiz: its questions in authoring order and
// the minimum percentage required to pass.
type Quiz struct {
	Questions         []Question
	MinPassPercentage int
}

// QuestionResult is the per-question line of a result breakdown.
type QuestionResult struct {
	QuestionID    string      `json:"questionId"`
	QuestionText  string      `json:"questionText"`
	UserAnswer    interface{} `json:"userAnswer"`
	CorrectAnswer string      `json:"correctAnswer"`
	IsCorrect     bool        `json:"isCorrect"`
	PointsEarned  int         `json:"pointsEarned"`
	MaxPoints     int         `json:"maxPoints"`
	Explanation   string      `json:"explanation,omitempty"`
}

// Summary is the aggregate outcome of scoring one submission. It is a pure
// function of the quiz and the submission.
type Summary struct {
	ScorePercentage int              `json:"scorePercentage"`
	EarnedPoints    int              `json:"earnedPoints"`
	TotalPoints     int              `json:"totalPoints"`
	CorrectAnswers  int              `json:"correctAnswers"`
	TotalQuestions  int              `json:"totalQuestions"`
	Passed          bool             `json:"passed"`
	Details         []QuestionResult `json:"detailedResults"`
}

// Score grades every question of the quiz independently, in authoring
// order, and aggregates points, percentage and pass/fail. It never fails:
// missing or malformed answers grade as zero credit.
func Score(ctx context.Context, g Grader, quiz Quiz, sub Submission) Summary {
	sum := Summary{
		TotalQuestions: len(quiz.Questions),
		Details:        make([]QuestionResult, 0, len(quiz.Questions)),
	}
	for i, q := range quiz.Questions {
		a := sub.AnswerFor(q.ID, i)
		out := g.Grade(ctx, q, a)
		sum.TotalPoints += q.Points
		sum.EarnedPoints += out.PointsEarned
		if out.Correct {
			sum.CorrectAnswers++
		}
		sum.Details = append(sum.Details, QuestionResult{
			QuestionID:    q.ID,
			QuestionText:  q.Prompt,
			UserAnswer:    a.Wire(),
			CorrectAnswer: out.CorrectAnswer,
			IsCorrect:     out.Correct,
			PointsEarned:  out.PointsEarned,
			MaxPoints:     out.MaxPoints,
			Explanation:   q.Explanation,
		})
	}
	if sum.TotalPoints > 0 {
		sum.ScorePercentage = roundHalfUp(100 * float64(sum.EarnedPoints) / float64(sum.TotalPoints))
	}
	sum.Passed = sum.ScorePercentage >= quiz.MinPassPercentage
	return sum
}

// roundHalfUp is pinned for both partial credit and percentages so results
// are reproducible across drivers and architectures.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// RoundHalfUp exposes the engine's rounding rule for callers that derive
// aggregates (such as average scores) from stored percentages.
func RoundHalfUp(x float64) int { return roundHalfUp(x) }
