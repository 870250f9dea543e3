package http

import (
	"net/http"

	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/eventlog"
)

// GET /admin/events?limit=100 — recent platform activity, newest first.
func RecentEventsHandler(repo *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := repo.Recent(r.Context(), parseIntDefault(r.URL.Query().Get("limit"), 100))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, events)
	}
}
