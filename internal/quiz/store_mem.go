package quiz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/grading"
)

// memoryStore keeps everything in maps. Useful for tests and single-shot
// tooling; the gateway runs on SQLStore.
type memoryStore struct {
	mu      sync.RWMutex
	grader  grading.Grader
	quizzes map[string]Quiz
	results map[string]Result
	order   []string // result ids in append order
	now     func() time.Time
}

func NewInMemoryStore(g grading.Grader) Store {
	return &memoryStore{
		grader:  g,
		quizzes: map[string]Quiz{},
		results: map[string]Result{},
		now:     time.Now,
	}
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q.TotalPoints = q.SumPoints()
	if prev, ok := m.quizzes[q.ID]; ok {
		q.TotalAttempts = prev.TotalAttempts
		q.AverageScore = prev.AverageScore
		q.CreatedAt = prev.CreatedAt
	} else if q.CreatedAt == 0 {
		q.CreatedAt = m.now().Unix()
	}
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	q, err := m.GetQuizAdmin(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	return stripAnswers(q), nil
}

func (m *memoryStore) GetQuizAdmin(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, fmt.Errorf("quiz %q: %w", id, ErrNotFound)
	}
	return q, nil
}

func (m *memoryStore) ListQuizzes(_ context.Context, opts ListOpts) ([]QuizSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]QuizSummary, 0, len(m.quizzes))
	for _, q := range m.quizzes {
		if opts.Q != "" && !strings.Contains(strings.ToLower(q.Title), strings.ToLower(opts.Q)) {
			continue
		}
		if opts.Author != "" && q.AuthorID != opts.Author {
			continue
		}
		out = append(out, summarize(q))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) DeleteQuiz(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return fmt.Errorf("quiz %q: %w", id, ErrNotFound)
	}
	delete(m.quizzes, id)
	kept := m.order[:0]
	for _, rid := range m.order {
		if m.results[rid].QuizID == id {
			delete(m.results, rid)
			continue
		}
		kept = append(kept, rid)
	}
	m.order = kept
	return nil
}

func (m *memoryStore) Submit(ctx context.Context, quizID string, sub Submission) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[quizID]
	if !ok {
		return Result{}, fmt.Errorf("quiz %q: %w", quizID, ErrNotFound)
	}

	summary := grading.Score(ctx, m.grader, q.GradingView(), grading.DecodeSubmission(sub.Answers))
	res := Result{
		ID:           uuid.NewString(),
		QuizID:       quizID,
		UserID:       sub.UserID,
		UserEmail:    sub.UserEmail,
		SubmittedAt:  m.now().Unix(),
		TimeSpentSec: sub.TimeSpentSec,
		Summary:      summary,
	}
	m.results[res.ID] = res
	m.order = append(m.order, res.ID)

	// Recompute aggregates from the results log under the same lock that
	// appended the result.
	count, total := 0, 0
	for _, id := range m.order {
		if r := m.results[id]; r.QuizID == quizID {
			count++
			total += r.ScorePercentage
		}
	}
	q.TotalAttempts = count
	q.AverageScore = grading.RoundHalfUp(float64(total) / float64(count))
	m.quizzes[quizID] = q
	return res, nil
}

func (m *memoryStore) GetResult(_ context.Context, id string) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[id]
	if !ok {
		return Result{}, fmt.Errorf("result %q: %w", id, ErrNotFound)
	}
	return r, nil
}

func (m *memoryStore) ListResults(_ context.Context, opts ResultListOpts) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Result{}
	for i := len(m.order) - 1; i >= 0; i-- { // newest first
		r := m.results[m.order[i]]
		if opts.QuizID != "" && r.QuizID != opts.QuizID {
			continue
		}
		if opts.UserID != "" && r.UserID != opts.UserID {
			continue
		}
		out = append(out, r)
	}
	return paginate(out, opts.Limit, opts.Offset), nil
}

func paginate[T any](in []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
