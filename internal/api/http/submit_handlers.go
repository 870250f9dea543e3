package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/auth"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/quiz"
)

// submitResponse is the wire shape of a scored submission.
type submitResponse struct {
	Success bool        `json:"success"`
	Result  quiz.Result `json:"result"`
}

// SubmitQuizHandler scores a submission and records the result.
// POST /quizzes/{quizID}/submit
// Malformed or missing answers grade as zero credit; the only client error
// distinguished here is an unknown quiz id.
func SubmitQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub quiz.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if sub.UserID == "" {
			sub.UserID = auth.SubjectFromContext(r.Context())
		}
		res, err := store.Submit(r.Context(), chi.URLParam(r, "quizID"), sub)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		writeJSON(w, submitResponse{Success: true, Result: res})
	}
}
