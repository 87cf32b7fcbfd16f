package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"submanager/internal/core"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func errorJSON(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// formatAmount renders a normalized figure for display: symbol plus
// the amount rounded to whole units, matching the badge on the
// original dashboard. Raw unrounded values travel alongside it.
func formatAmount(v float64, c core.Currency) string {
	return fmt.Sprintf("%s%.0f", c.Symbol(), v)
}

// subscriptionPath splits /api/subscriptions/{id}[/action] into its
// id and optional trailing action.
func subscriptionPath(path string) (id, action string, ok bool) {
	rest := strings.TrimPrefix(path, "/api/subscriptions/")
	if rest == path || rest == "" {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	switch len(parts) {
	case 1:
		return parts[0], "", true
	case 2:
		return parts[0], parts[1], true
	}
	return "", "", false
}

// subscriptionView is the wire shape of one record, with the derived
// figures presentation needs so it never computes money math itself.
type subscriptionView struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Price           float64       `json:"price"`
	Currency        core.Currency `json:"currency"`
	Cycle           core.Cycle    `json:"cycle"`
	Category        core.Category `json:"category"`
	NextPaymentDate core.Date     `json:"nextPaymentDate"`
	IsActive        bool          `json:"isActive"`

	NormalizedCost   float64 `json:"normalizedCost"`
	FormattedCost    string  `json:"formattedCost"`
	DaysUntilPayment *int    `json:"daysUntilPayment,omitempty"`
}

func newSubscriptionView(sub core.Subscription, prefs core.Preferences, table core.RateTable, now time.Time) subscriptionView {
	cost := core.Normalize(sub, prefs.BaseCurrency, table, prefs.ViewMode)
	view := subscriptionView{
		ID:              sub.ID,
		Name:            sub.Name,
		Price:           sub.Price.Amount(),
		Currency:        sub.Currency,
		Cycle:           sub.Cycle,
		Category:        sub.Category,
		NextPaymentDate: sub.NextPaymentDate,
		IsActive:        sub.IsActive,
		NormalizedCost:  cost,
		FormattedCost:   formatAmount(cost, prefs.BaseCurrency),
	}
	if !sub.NextPaymentDate.IsZero() {
		days := core.DaysUntil(sub.NextPaymentDate, now)
		view.DaysUntilPayment = &days
	}
	return view
}
