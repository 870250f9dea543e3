package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/eventlog"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/grading"
)

// SQLStore persists quizzes and their results log over database/sql.
// Questions and result breakdowns are stored as JSON text columns; the
// placeholder style ($1) works for both the pgx and modernc drivers.
type SQLStore struct {
	db     *sql.DB
	grader grading.Grader
	now    func() time.Time
}

func NewSQLStore(db *sql.DB, g grading.Grader) *SQLStore {
	return &SQLStore{db: db, grader: g, now: time.Now}
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	q.TotalPoints = q.SumPoints()
	if q.CreatedAt == 0 {
		q.CreatedAt = s.now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes
		(id,title,description,author_id,min_pass_percentage,total_points,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			title=EXCLUDED.title,
			description=EXCLUDED.description,
			min_pass_percentage=EXCLUDED.min_pass_percentage,
			total_points=EXCLUDED.total_points,
			questions_json=EXCLUDED.questions_json`,
		q.ID, q.Title, q.Description, q.AuthorID, q.MinPassPercentage, q.TotalPoints, string(qj), q.CreatedAt)
	if err != nil {
		return err
	}
	return eventlog.Append(ctx, s.db, eventlog.Event{
		Type: eventlog.TypeQuizPublished,
		Key:  q.ID,
		Data: fmt.Sprintf(`{"title":%q,"total_points":%d}`, q.Title, q.TotalPoints),
	})
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	q, err := s.GetQuizAdmin(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	return stripAnswers(q), nil
}

func (s *SQLStore) GetQuizAdmin(ctx context.Context, id string) (Quiz, error) {
	return scanQuiz(s.db.QueryRowContext(ctx, `SELECT
		id,title,description,author_id,min_pass_percentage,total_points,total_attempts,average_score,questions_json,created_at
		FROM quizzes WHERE id=$1`, id))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuiz(row rowScanner) (Quiz, error) {
	var q Quiz
	var qjson string
	err := row.Scan(&q.ID, &q.Title, &q.Description, &q.AuthorID, &q.MinPassPercentage,
		&q.TotalPoints, &q.TotalAttempts, &q.AverageScore, &qjson, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, fmt.Errorf("quiz: %w", ErrNotFound)
	}
	if err != nil {
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context, opts ListOpts) ([]QuizSummary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id,title,description,author_id,min_pass_percentage,total_points,total_attempts,average_score,questions_json,created_at
		FROM quizzes
		WHERE ($1 = '' OR lower(title) LIKE '%' || lower($1) || '%')
		  AND ($2 = '' OR author_id = $2)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`, opts.Q, opts.Author, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuizSummary{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(q))
	}
	return out, rows.Err()
}

// DeleteQuiz removes the quiz and its results log. Results are deleted
// explicitly rather than via the FK cascade, which sqlite only honors when
// the foreign_keys pragma is set on every pooled connection.
func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE quiz_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("quiz %q: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

// Submit grades the submission and, in one transaction, appends the Result
// to the results log and recomputes the quiz's aggregates from the log.
// Concurrent submissions therefore always converge on the true mean.
func (s *SQLStore) Submit(ctx context.Context, quizID string, sub Submission) (Result, error) {
	q, err := s.GetQuizAdmin(ctx, quizID)
	if err != nil {
		return Result{}, err
	}

	summary := grading.Score(ctx, s.grader, q.GradingView(), grading.DecodeSubmission(sub.Answers))
	res := Result{
		ID:           uuid.NewString(),
		QuizID:       quizID,
		UserID:       sub.UserID,
		UserEmail:    sub.UserEmail,
		SubmittedAt:  s.now().Unix(),
		TimeSpentSec: sub.TimeSpentSec,
		Summary:      summary,
	}
	dj, err := json.Marshal(res.Details)
	if err != nil {
		return Result{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO results
		(id,quiz_id,user_id,user_email,score_percentage,earned_points,total_points,correct_answers,total_questions,passed,time_spent_sec,details_json,submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		res.ID, res.QuizID, res.UserID, res.UserEmail, res.ScorePercentage, res.EarnedPoints,
		res.TotalPoints, res.CorrectAnswers, res.TotalQuestions, res.Passed, res.TimeSpentSec,
		string(dj), res.SubmittedAt)
	if err != nil {
		return Result{}, err
	}

	var attempts int
	var avg float64
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(CAST(score_percentage AS REAL)),0) FROM results WHERE quiz_id=$1`,
		quizID).Scan(&attempts, &avg)
	if err != nil {
		return Result{}, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE quizzes SET total_attempts=$1, average_score=$2 WHERE id=$3`,
		attempts, grading.RoundHalfUp(avg), quizID)
	if err != nil {
		return Result{}, err
	}

	if err := eventlog.Append(ctx, tx, eventlog.Event{
		Type: eventlog.TypeResultRecorded,
		Key:  res.ID,
		Data: fmt.Sprintf(`{"quiz_id":%q,"user_id":%q,"score":%d,"passed":%v}`,
			res.QuizID, res.UserID, res.ScorePercentage, res.Passed),
	}); err != nil {
		return Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (s *SQLStore) GetResult(ctx context.Context, id string) (Result, error) {
	return scanResult(s.db.QueryRowContext(ctx, `SELECT
		id,quiz_id,user_id,user_email,score_percentage,earned_points,total_points,correct_answers,total_questions,passed,time_spent_sec,details_json,submitted_at
		FROM results WHERE id=$1`, id))
}

func scanResult(row rowScanner) (Result, error) {
	var r Result
	var dj string
	err := row.Scan(&r.ID, &r.QuizID, &r.UserID, &r.UserEmail, &r.ScorePercentage, &r.EarnedPoints,
		&r.TotalPoints, &r.CorrectAnswers, &r.TotalQuestions, &r.Passed, &r.TimeSpentSec, &dj, &r.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, fmt.Errorf("result: %w", ErrNotFound)
	}
	if err != nil {
		return Result{}, err
	}
	if err := json.Unmarshal([]byte(dj), &r.Details); err != nil {
		return Result{}, err
	}
	return r, nil
}

func (s *SQLStore) ListResults(ctx context.Context, opts ResultListOpts) ([]Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id,quiz_id,user_id,user_email,score_percentage,earned_points,total_points,correct_answers,total_questions,passed,time_spent_sec,details_json,submitted_at
		FROM results
		WHERE ($1 = '' OR quiz_id = $1) AND ($2 = '' OR user_id = $2)
		ORDER BY submitted_at DESC, id
		LIMIT $3 OFFSET $4`, opts.QuizID, opts.UserID, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
