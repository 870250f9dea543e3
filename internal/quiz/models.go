package quiz

import (
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/grading"
)

type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

type Question struct {
	ID          string `json:"id"`
	Type        string `json:"type"` // multiple_choice, open_ended
	Prompt      string `json:"prompt"`
	Points      int    `json:"points"`
	Explanation string `json:"explanation,omitempty"`

	Options         []Option `json:"options,omitempty"`
	MultipleCorrect bool     `json:"multiple_correct,omitempty"`

	ExpectedAnswers []string `json:"expected_answers,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	CaseSensitive   bool     `json:"case_sensitive,omitempty"`
	PartialCredit   bool     `json:"partial_credit,omitempty"`
}

type Quiz struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	AuthorID          string     `json:"author_id,omitempty"`
	MinPassPercentage int        `json:"min_pass_percentage"`
	TotalPoints       int        `json:"total_points"`
	TotalAttempts     int        `json:"total_attempts"`
	AverageScore      int        `json:"average_score"`
	Questions         []Question `json:"questions"`
	CreatedAt         int64      `json:"created_at,omitempty"`
}

type QuizSummary struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	AuthorID          string `json:"author_id,omitempty"`
	QuestionCount     int    `json:"question_count"`
	TotalPoints       int    `json:"total_points"`
	MinPassPercentage int    `json:"min_pass_percentage"`
	TotalAttempts     int    `json:"total_attempts"`
	AverageScore      int    `json:"average_score"`
	CreatedAt         int64  `json:"created_at,omitempty"`
}

// Result is one immutable entry of a quiz's results log. It is never
// mutated after creation; quiz aggregates are recomputed from the log.
type Result struct {
	ID           string `json:"id"`
	QuizID       string `json:"quizId"`
	UserID       string `json:"userId"`
	UserEmail    string `json:"userEmail,omitempty"`
	SubmittedAt  int64  `json:"submittedAt"`
	TimeSpentSec int    `json:"timeSpent"`
	grading.Summary
}

// Submission is the wire payload of a quiz attempt. Answers are keyed by
// question id, or by question index for older clients.
type Submission struct {
	Answers      map[string]interface{} `json:"answers"`
	UserID       string                 `json:"userId,omitempty"`
	UserEmail    string                 `json:"userEmail,omitempty"`
	TimeSpentSec int                    `json:"timeSpent,omitempty"`
}

// GradingView converts the stored quiz into the scoring engine's input.
func (q Quiz) GradingView() grading.Quiz {
	gq := grading.Quiz{
		MinPassPercentage: q.MinPassPercentage,
		Questions:         make([]grading.Question, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		gq.Questions = append(gq.Questions, question.gradingView())
	}
	return gq
}

func (q Question) gradingView() grading.Question {
	opts := make([]grading.Option, 0, len(q.Options))
	for _, o := range q.Options {
		opts = append(opts, grading.Option{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return grading.Question{
		ID:              q.ID,
		Type:            q.Type,
		Prompt:          q.Prompt,
		Points:          q.Points,
		Explanation:     q.Explanation,
		Options:         opts,
		MultipleCorrect: q.MultipleCorrect,
		ExpectedAnswers: q.ExpectedAnswers,
		Keywords:        q.Keywords,
		CaseSensitive:   q.CaseSensitive,
		PartialCredit:   q.PartialCredit,
	}
}

// SumPoints recomputes total_points from the question list. Called whenever
// questions change.
func (q Quiz) SumPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// stripAnswers removes answer keys and grading hints before a quiz is
// served to a taker.
func stripAnswers(q Quiz) Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		c := question
		c.ExpectedAnswers = nil
		c.Keywords = nil
		c.Explanation = ""
		if len(question.Options) > 0 {
			c.Options = make([]Option, len(question.Options))
			for j, o := range question.Options {
				c.Options[j] = Option{Text: o.Text}
			}
		}
		out.Questions[i] = c
	}
	return out
}

func summarize(q Quiz) QuizSummary {
	return QuizSummary{
		ID:                q.ID,
		Title:             q.Title,
		Description:       q.Description,
		AuthorID:          q.AuthorID,
		QuestionCount:     len(q.Questions),
		TotalPoints:       q.TotalPoints,
		MinPassPercentage: q.MinPassPercentage,
		TotalAttempts:     q.TotalAttempts,
		AverageScore:      q.AverageScore,
		CreatedAt:         q.CreatedAt,
	}
}
