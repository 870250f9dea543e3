// Package forum is the Q&A surface of the platform: question threads with
// flat replies. CRUD only; scoring never touches it.
package forum

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type Question struct {
	ID         string `json:"id"`
	AuthorID   string `json:"author_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	ReplyCount int    `json:"reply_count"`
	CreatedAt  int64  `json:"created_at"`
}

type Reply struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	AuthorID   string `json:"author_id"`
	Body       string `json:"body"`
	CreatedAt  int64  `json:"created_at"`
}

type Store interface {
	CreateQuestion(ctx context.Context, q Question) (Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	ListQuestions(ctx context.Context, limit, offset int) ([]Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	AddReply(ctx context.Context, r Reply) (Reply, error)
	ListReplies(ctx context.Context, questionID string) ([]Reply, error)
}

type sqlStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) Store {
	return &sqlStore{db: db, now: time.Now}
}

func (s *sqlStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.CreatedAt = s.now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO forum_questions (id,author_id,title,body,created_at) VALUES ($1,$2,$3,$4,$5)`,
		q.ID, q.AuthorID, q.Title, q.Body, q.CreatedAt)
	return q, err
}

func (s *sqlStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	var q Question
	err := s.db.QueryRowContext(ctx, `SELECT q.id,q.author_id,q.title,q.body,q.created_at,
		(SELECT COUNT(*) FROM forum_replies r WHERE r.question_id=q.id)
		FROM forum_questions q WHERE q.id=$1`, id).
		Scan(&q.ID, &q.AuthorID, &q.Title, &q.Body, &q.CreatedAt, &q.ReplyCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, fmt.Errorf("forum question %q: %w", id, ErrNotFound)
	}
	return q, err
}

func (s *sqlStore) ListQuestions(ctx context.Context, limit, offset int) ([]Question, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT q.id,q.author_id,q.title,q.body,q.created_at,
		(SELECT COUNT(*) FROM forum_replies r WHERE r.question_id=q.id)
		FROM forum_questions q ORDER BY q.created_at DESC, q.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.AuthorID, &q.Title, &q.Body, &q.CreatedAt, &q.ReplyCount); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *sqlStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM forum_questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("forum question %q: %w", id, ErrNotFound)
	}
	return nil
}

func (s *sqlStore) AddReply(ctx context.Context, r Reply) (Reply, error) {
	if _, err := s.GetQuestion(ctx, r.QuestionID); err != nil {
		return Reply{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = s.now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO forum_replies (id,question_id,author_id,body,created_at) VALUES ($1,$2,$3,$4,$5)`,
		r.ID, r.QuestionID, r.AuthorID, r.Body, r.CreatedAt)
	return r, err
}

func (s *sqlStore) ListReplies(ctx context.Context, questionID string) ([]Reply, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,question_id,author_id,body,created_at FROM forum_replies
		 WHERE question_id=$1 ORDER BY created_at, id`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Reply{}
	for rows.Next() {
		var r Reply
		if err := rows.Scan(&r.ID, &r.QuestionID, &r.AuthorID, &r.Body, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
