package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/qurbanovsiyasat/onlinetest-sub001/internal/api/http"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/auth"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/grading"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/quiz"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/rbac"
)

func testRouter(t *testing.T, store quiz.Store) (*chi.Mux, *auth.Service) {
	t.Helper()
	authSvc := auth.NewService("test-secret")
	checker := rbac.NewChecker(nil)

	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(authSvc))
		pr.With(rbac.Require("quiz:create")).Post("/quizzes", api.CreateQuizHandler(store))
		pr.With(rbac.Require("quiz:view")).Get("/quizzes/{quizID}", api.GetQuizHandler(store, checker))
		pr.With(rbac.Require("quiz:submit")).Post("/quizzes/{quizID}/submit", api.SubmitQuizHandler(store))
		pr.With(rbac.RequireAny("results:view-own", "results:view-all")).
			Get("/results", api.ListResultsHandler(store, checker))
	})
	return r, authSvc
}

func bearer(t *testing.T, svc *auth.Service, sub, role string) string {
	t.Helper()
	tok, err := svc.IssueJWT(sub, role)
	if err != nil {
		t.Fatalf("issue jwt: %v", err)
	}
	return "Bearer " + tok
}

func do(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seededStore(t *testing.T) quiz.Store {
	t.Helper()
	store := quiz.NewInMemoryStore(grading.NewGrader())
	err := store.PutQuiz(context.Background(), quiz.Quiz{
		ID:                "quiz-1",
		Title:             "Capitals",
		MinPassPercentage: 70,
		Questions: []quiz.Question{{
			ID: "q1", Type: grading.TypeMultipleChoice, Prompt: "capital of France?", Points: 1,
			Options: []quiz.Option{{Text: "Paris", IsCorrect: true}, {Text: "Lyon"}},
		}},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func TestSubmitEndpoint(t *testing.T) {
	store := seededStore(t)
	r, svc := testRouter(t, store)

	w := do(t, r, "POST", "/quizzes/quiz-1/submit", bearer(t, svc, "stu-1", "student"),
		map[string]interface{}{"answers": map[string]interface{}{"q1": "Paris"}, "timeSpent": 42})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Result  struct {
			ID              string `json:"id"`
			ScorePercentage int    `json:"scorePercentage"`
			EarnedPoints    int    `json:"earnedPoints"`
			TotalPoints     int    `json:"totalPoints"`
			CorrectAnswers  int    `json:"correctAnswers"`
			TotalQuestions  int    `json:"totalQuestions"`
			Passed          bool   `json:"passed"`
			TimeSpent       int    `json:"timeSpent"`
			UserID          string `json:"userId"`
			DetailedResults []struct {
				QuestionID string `json:"questionId"`
				IsCorrect  bool   `json:"isCorrect"`
			} `json:"detailedResults"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Result.ScorePercentage != 100 || !resp.Result.Passed {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Result.ID == "" || resp.Result.UserID != "stu-1" {
		t.Fatalf("identity not filled from token: %+v", resp.Result)
	}
	if len(resp.Result.DetailedResults) != 1 || !resp.Result.DetailedResults[0].IsCorrect {
		t.Fatalf("breakdown missing: %+v", resp.Result)
	}
	if resp.Result.TimeSpent != 42 {
		t.Fatalf("timeSpent = %d, want 42", resp.Result.TimeSpent)
	}
}

func TestSubmitUnknownQuizIs404(t *testing.T) {
	r, svc := testRouter(t, seededStore(t))
	w := do(t, r, "POST", "/quizzes/nope/submit", bearer(t, svc, "stu-1", "student"),
		map[string]interface{}{"answers": map[string]interface{}{}})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSubmitRequiresAuth(t *testing.T) {
	r, _ := testRouter(t, seededStore(t))
	w := do(t, r, "POST", "/quizzes/quiz-1/submit", "", map[string]interface{}{})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestCreateQuizForbiddenForStudents(t *testing.T) {
	r, svc := testRouter(t, seededStore(t))
	payload := map[string]interface{}{
		"title": "New quiz",
		"questions": []map[string]interface{}{{
			"type": "multiple_choice", "points": 1,
			"options": []map[string]interface{}{{"text": "A", "is_correct": true}},
		}},
	}
	if w := do(t, r, "POST", "/quizzes", bearer(t, svc, "stu-1", "student"), payload); w.Code != http.StatusForbidden {
		t.Fatalf("student create: status = %d, want 403", w.Code)
	}
	if w := do(t, r, "POST", "/quizzes", bearer(t, svc, "t-1", "teacher"), payload); w.Code != http.StatusCreated {
		t.Fatalf("teacher create: status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestCreateQuizValidation(t *testing.T) {
	r, svc := testRouter(t, seededStore(t))
	cases := []map[string]interface{}{
		{"title": "", "questions": []map[string]interface{}{}},
		{"title": "t", "questions": []map[string]interface{}{{"type": "essay", "points": 1}}},
		{"title": "t", "questions": []map[string]interface{}{{"type": "multiple_choice", "points": 1}}}, // no options
		{"title": "t", "min_pass_percentage": 250, "questions": []map[string]interface{}{{
			"type": "open_ended", "points": 1, "expected_answers": []string{"x"},
		}}},
	}
	for i, payload := range cases {
		if w := do(t, r, "POST", "/quizzes", bearer(t, svc, "t-1", "teacher"), payload); w.Code != http.StatusBadRequest {
			t.Fatalf("case %d: status = %d, want 400", i, w.Code)
		}
	}
}

func TestGetQuizHidesAnswersFromStudents(t *testing.T) {
	r, svc := testRouter(t, seededStore(t))

	w := do(t, r, "GET", "/quizzes/quiz-1", bearer(t, svc, "stu-1", "student"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var q quiz.Quiz
	if err := json.Unmarshal(w.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, o := range q.Questions[0].Options {
		if o.IsCorrect {
			t.Fatalf("answer leaked to student: %+v", q)
		}
	}

	w = do(t, r, "GET", "/quizzes/quiz-1", bearer(t, svc, "t-1", "teacher"), nil)
	if err := json.Unmarshal(w.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	leaked := false
	for _, o := range q.Questions[0].Options {
		leaked = leaked || o.IsCorrect
	}
	if !leaked {
		t.Fatalf("teacher view must include answer key")
	}
}

func TestListResultsScopedToOwnForStudents(t *testing.T) {
	store := seededStore(t)
	r, svc := testRouter(t, store)

	for _, user := range []string{"stu-1", "stu-2"} {
		w := do(t, r, "POST", "/quizzes/quiz-1/submit", bearer(t, svc, user, "student"),
			map[string]interface{}{"answers": map[string]interface{}{"q1": "Paris"}})
		if w.Code != http.StatusOK {
			t.Fatalf("submit as %s: %d", user, w.Code)
		}
	}

	w := do(t, r, "GET", "/results", bearer(t, svc, "stu-1", "student"), nil)
	var own []quiz.Result
	if err := json.Unmarshal(w.Body.Bytes(), &own); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(own) != 1 || own[0].UserID != "stu-1" {
		t.Fatalf("student sees foreign results: %+v", own)
	}

	w = do(t, r, "GET", "/results", bearer(t, svc, "t-1", "teacher"), nil)
	var all []quiz.Result
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("teacher sees %d results, want 2", len(all))
	}
}
