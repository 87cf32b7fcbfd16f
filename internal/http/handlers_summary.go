package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"submanager/internal/core"
	applog "submanager/internal/log"
	"submanager/internal/rates"
)

// summaryResponse is the aggregate view over the active collection.
// Keyed in the cache by base currency and view mode; any mutation
// purges it.
type summaryResponse struct {
	BaseCurrency   core.Currency             `json:"baseCurrency"`
	ViewMode       core.ViewMode             `json:"viewMode"`
	Total          float64                   `json:"total"`
	FormattedTotal string                    `json:"formattedTotal"`
	ByCategory     map[core.Category]float64 `json:"byCategory"`
	MostExpensive  *mostExpensiveView        `json:"mostExpensive"`
	ActiveCount    int                       `json:"activeCount"`
	TotalCount     int                       `json:"totalCount"`
	FallbackRates  bool                      `json:"fallbackRates"`
}

type mostExpensiveView struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	NormalizedCost float64 `json:"normalizedCost"`
	FormattedCost  string  `json:"formattedCost"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	subs, prefs, table := s.store.Snapshot()

	cacheKey := string(prefs.BaseCurrency) + "|" + string(prefs.ViewMode)
	if cached, ok := s.summaryCache.Get(cacheKey); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	total := core.TotalCost(subs, prefs.BaseCurrency, table, prefs.ViewMode)
	resp := summaryResponse{
		BaseCurrency:   prefs.BaseCurrency,
		ViewMode:       prefs.ViewMode,
		Total:          total,
		FormattedTotal: formatAmount(total, prefs.BaseCurrency),
		ByCategory:     core.CategoryBreakdown(subs, prefs.BaseCurrency, table, prefs.ViewMode),
		TotalCount:     len(subs),
		FallbackRates:  rates.IsFallback(table),
	}
	for _, sub := range subs {
		if sub.IsActive {
			resp.ActiveCount++
		}
	}
	if top, found := core.MostExpensive(subs, prefs.BaseCurrency, table, prefs.ViewMode); found {
		cost := core.Normalize(top, prefs.BaseCurrency, table, prefs.ViewMode)
		resp.MostExpensive = &mostExpensiveView{
			ID:             top.ID,
			Name:           top.Name,
			NormalizedCost: cost,
			FormattedCost:  formatAmount(cost, prefs.BaseCurrency),
		}
	}

	s.summaryCache.Set(cacheKey, resp)
	respondJSON(w, http.StatusOK, resp)
}

type baseCurrencyRequest struct {
	BaseCurrency core.Currency `json:"baseCurrency"`
}

func (s *Server) handleBaseCurrency(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req baseCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !req.BaseCurrency.Valid() {
		errorJSON(w, http.StatusUnprocessableEntity, "currency must be one of RUB, USD, EUR")
		return
	}
	if err := s.store.SetBaseCurrency(r.Context(), req.BaseCurrency); err != nil {
		slog.ErrorContext(r.Context(), "Failed to set base currency",
			applog.FieldBaseCurrency, req.BaseCurrency, "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	s.summaryCache.Purge()
	respondJSON(w, http.StatusOK, map[string]any{"baseCurrency": req.BaseCurrency})
}

func (s *Server) handleToggleViewMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	mode, err := s.store.ToggleViewMode(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to toggle view mode", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	s.summaryCache.Purge()
	respondJSON(w, http.StatusOK, map[string]any{"viewMode": mode})
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	table := s.store.Rates()
	respondJSON(w, http.StatusOK, map[string]any{
		"rates":         table,
		"fallbackRates": rates.IsFallback(table),
	})
}

// handleRefreshRates fetches a fresh table and swaps it in wholesale.
// The fetch never fails; at worst the fallback table comes back.
func (s *Server) handleRefreshRates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	table := s.RefreshRates(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"rates":         table,
		"fallbackRates": rates.IsFallback(table),
	})
}

// RefreshRates re-fetches the rate table, installs it, and drops
// cached summaries computed from the previous table. The periodic
// refresher uses this too, so a cached summary never outlives the
// table it was computed from.
func (s *Server) RefreshRates(ctx context.Context) core.RateTable {
	table := s.provider.Fetch(ctx)
	s.store.SetRates(table)
	s.summaryCache.Purge()
	slog.InfoContext(ctx, "Exchange rates refreshed",
		applog.FieldFallback, rates.IsFallback(table))
	return table
}
