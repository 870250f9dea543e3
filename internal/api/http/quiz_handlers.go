package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/auth"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/grading"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/quiz"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/rbac"
)

type quizPayload struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	MinPassPercentage *int            `json:"min_pass_percentage"`
	Questions         []quiz.Question `json:"questions"`
}

func (p quizPayload) validate() error {
	if p.Title == "" {
		return errors.New("title required")
	}
	if len(p.Questions) == 0 {
		return errors.New("at least one question required")
	}
	for i, q := range p.Questions {
		switch q.Type {
		case grading.TypeMultipleChoice:
			if len(q.Options) == 0 {
				return fmt.Errorf("question %d: options required", i)
			}
		case grading.TypeOpenEnded:
			if len(q.Options) > 0 {
				return fmt.Errorf("question %d: open_ended question has options", i)
			}
		default:
			return fmt.Errorf("question %d: unknown type %q", i, q.Type)
		}
		if q.Points < 0 {
			return fmt.Errorf("question %d: negative points", i)
		}
	}
	if p.MinPassPercentage != nil && (*p.MinPassPercentage < 0 || *p.MinPassPercentage > 100) {
		return errors.New("min_pass_percentage out of range")
	}
	return nil
}

func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p quizPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := p.validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q := quiz.Quiz{
			ID:                p.ID,
			Title:             p.Title,
			Description:       p.Description,
			AuthorID:          auth.SubjectFromContext(r.Context()),
			MinPassPercentage: grading.DefaultPassPercentage,
			Questions:         p.Questions,
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if p.MinPassPercentage != nil {
			q.MinPassPercentage = *p.MinPassPercentage
		}
		for i := range q.Questions {
			if q.Questions[i].ID == "" {
				q.Questions[i].ID = "q" + strconv.Itoa(i+1)
			}
		}
		if err := store.PutQuiz(r.Context(), q); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "id": q.ID})
	}
}

func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListQuizzes(r.Context(), quiz.ListOpts{
			Q:      r.URL.Query().Get("q"),
			Author: r.URL.Query().Get("author"),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, list)
	}
}

// GetQuizHandler serves takers an answer-free quiz; roles holding
// quiz:view-answers get the full definition.
func GetQuizHandler(store quiz.Store, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		role := auth.RoleFromContext(r.Context())
		var (
			q   quiz.Quiz
			err error
		)
		if checker.Has(role, "quiz:view-answers") {
			q, err = store.GetQuizAdmin(r.Context(), id)
		} else {
			q, err = store.GetQuiz(r.Context(), id)
		}
		if err != nil {
			respondStoreError(w, err)
			return
		}
		writeJSON(w, q)
	}
}

// DeleteQuizHandler removes a quiz and its results. Roles without
// quiz:delete-all may only delete quizzes they authored.
func DeleteQuizHandler(store quiz.Store, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		if !checker.Has(auth.RoleFromContext(r.Context()), "quiz:delete-all") {
			q, err := store.GetQuizAdmin(r.Context(), id)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			if q.AuthorID != auth.SubjectFromContext(r.Context()) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}
		if err := store.DeleteQuiz(r.Context(), id); err != nil {
			respondStoreError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}
