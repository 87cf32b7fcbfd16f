package http

import (
	"net/http"
	"strconv"

	"submanager/internal/suggest"
)

const defaultSuggestLimit = 8

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := defaultSuggestLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	results := suggest.Search(r.URL.Query().Get("q"), limit)
	respondJSON(w, http.StatusOK, map[string]any{"suggestions": results})
}
