package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/forum"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/quiz"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// respondStoreError maps missing ids to 404 and everything else to a
// generic 500: persistence failures are surfaced, never retried here.
func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, quiz.ErrNotFound) || errors.Is(err, forum.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
