package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/auth"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/forum"
)

func CreateForumQuestionHandler(store forum.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Title == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		q, err := store.CreateQuestion(r.Context(), forum.Question{
			AuthorID: auth.SubjectFromContext(r.Context()),
			Title:    req.Title,
			Body:     req.Body,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(q)
	}
}

func ListForumQuestionsHandler(store forum.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListQuestions(r.Context(),
			parseIntDefault(r.URL.Query().Get("limit"), 50),
			parseIntDefault(r.URL.Query().Get("offset"), 0))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, list)
	}
}

func GetForumQuestionHandler(store forum.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "questionID")
		q, err := store.GetQuestion(r.Context(), id)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		replies, err := store.ListReplies(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"question": q, "replies": replies})
	}
}

func DeleteForumQuestionHandler(store forum.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
			respondStoreError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}

func AddForumReplyHandler(store forum.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Body == "" {
			http.Error(w, "body required", http.StatusBadRequest)
			return
		}
		reply, err := store.AddReply(r.Context(), forum.Reply{
			QuestionID: chi.URLParam(r, "questionID"),
			AuthorID:   auth.SubjectFromContext(r.Context()),
			Body:       req.Body,
		})
		if err != nil {
			respondStoreError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(reply)
	}
}
