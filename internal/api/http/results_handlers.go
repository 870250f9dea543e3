package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/auth"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/quiz"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/rbac"
)

// GET /results?quiz_id=...&user_id=...&limit=50&offset=0
// Roles without results:view-all only see their own results: user_id is
// forced to the authenticated subject.
func ListResultsHandler(store quiz.Store, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := auth.RoleFromContext(r.Context())
		userID := r.URL.Query().Get("user_id")
		if !checker.Has(role, "results:view-all") {
			userID = auth.SubjectFromContext(r.Context())
		}
		list, err := store.ListResults(r.Context(), quiz.ResultListOpts{
			QuizID: r.URL.Query().Get("quiz_id"),
			UserID: userID,
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

// GET /quizzes/{quizID}/results
func QuizResultsHandler(store quiz.Store, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := auth.RoleFromContext(r.Context())
		userID := ""
		if !checker.Has(role, "results:view-all") {
			userID = auth.SubjectFromContext(r.Context())
		}
		list, err := store.ListResults(r.Context(), quiz.ResultListOpts{
			QuizID: chi.URLParam(r, "quizID"),
			UserID: userID,
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

// GET /results/{resultID}
func GetResultHandler(store quiz.Store, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := store.GetResult(r.Context(), chi.URLParam(r, "resultID"))
		if err != nil {
			respondStoreError(w, err)
			return
		}
		role := auth.RoleFromContext(r.Context())
		if !checker.Has(role, "results:view-all") && res.UserID != auth.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, res)
	}
}
