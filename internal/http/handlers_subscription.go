package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"submanager/internal/core"
	applog "submanager/internal/log"
	"submanager/internal/service"
	"submanager/internal/store"
)

// createSubscriptionRequest is the entry form payload. Price arrives
// as a string so "599.99" and "599,99" both parse without float noise.
type createSubscriptionRequest struct {
	Name      string        `json:"name"`
	Price     string        `json:"price"`
	Currency  core.Currency `json:"currency"`
	Cycle     core.Cycle    `json:"cycle"`
	Category  core.Category `json:"category"`
	StartDate string        `json:"startDate"`
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listSubscriptions(w, r)
	case http.MethodPost:
		s.createSubscription(w, r)
	default:
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, prefs, table := s.store.Snapshot()
	now := time.Now()

	views := make([]subscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, newSubscriptionView(sub, prefs, table, now))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"subscriptions": views,
		"baseCurrency":  prefs.BaseCurrency,
		"viewMode":      prefs.ViewMode,
	})
}

func (s *Server) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		errorJSON(w, http.StatusUnprocessableEntity, "name must be at least 2 characters")
		return
	}
	for _, existing := range s.store.Subscriptions() {
		if strings.EqualFold(existing.Name, name) {
			errorJSON(w, http.StatusConflict, "a subscription with this name already exists")
			return
		}
	}

	price, err := core.ParseMoney(req.Price)
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "price must be a positive amount")
		return
	}
	if !req.Currency.Valid() {
		errorJSON(w, http.StatusUnprocessableEntity, "currency must be one of RUB, USD, EUR")
		return
	}
	if !req.Cycle.Valid() {
		errorJSON(w, http.StatusUnprocessableEntity, "cycle must be monthly or yearly")
		return
	}
	if !req.Category.Valid() {
		errorJSON(w, http.StatusUnprocessableEntity, "category must be one of entertainment, work, utilities, other")
		return
	}

	now := time.Now()
	start := core.NewDate(now.Year(), int(now.Month()), now.Day())
	if req.StartDate != "" {
		start, err = core.ParseDate(req.StartDate)
		if err != nil {
			errorJSON(w, http.StatusUnprocessableEntity, "startDate must be YYYY-MM-DD")
			return
		}
		if core.DaysUntil(start, now) > 0 {
			errorJSON(w, http.StatusUnprocessableEntity, "startDate must not be in the future")
			return
		}
	}

	sub := core.Subscription{
		ID:              service.NewID(),
		Name:            name,
		Price:           price,
		Currency:        req.Currency,
		Cycle:           req.Cycle,
		Category:        req.Category,
		NextPaymentDate: core.NextPayment(start, req.Cycle),
		IsActive:        true,
	}
	if err := s.subs.Create(r.Context(), sub); err != nil {
		slog.ErrorContext(r.Context(), "Failed to create subscription",
			applog.FieldSubscriptionID, sub.ID, "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}
	s.summaryCache.Purge()

	_, prefs, table := s.store.Snapshot()
	respondJSON(w, http.StatusCreated, newSubscriptionView(sub, prefs, table, now))
}

func (s *Server) handleSubscriptionByID(w http.ResponseWriter, r *http.Request) {
	id, action, ok := subscriptionPath(r.URL.Path)
	if !ok {
		errorJSON(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodDelete:
		s.deleteSubscription(w, r, id)
	case action == "toggle" && r.Method == http.MethodPost:
		s.toggleSubscription(w, r, id)
	case action == "":
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		errorJSON(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) deleteSubscription(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.subs.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "subscription not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete subscription",
			applog.FieldSubscriptionID, id, "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}
	s.summaryCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleSubscription(w http.ResponseWriter, r *http.Request, id string) {
	updated, err := s.subs.Toggle(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "subscription not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to toggle subscription",
			applog.FieldSubscriptionID, id, "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to toggle subscription")
		return
	}
	s.summaryCache.Purge()

	_, prefs, table := s.store.Snapshot()
	respondJSON(w, http.StatusOK, newSubscriptionView(updated, prefs, table, time.Now()))
}
