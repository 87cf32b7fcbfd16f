package core

// The aggregate functions below are defined over the active subset
// only: an inactive subscription is invisible to every one of them.

// TotalCost sums the normalized cost of all active subscriptions.
// An empty (or all-inactive) collection sums to exactly 0.
func TotalCost(subs []Subscription, base Currency, rates RateTable, view ViewMode) float64 {
	var total float64
	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		total += Normalize(s, base, rates, view)
	}
	return total
}

// CategoryBreakdown partitions the normalized cost of active
// subscriptions by category. Categories with no active subscriptions
// are absent from the result, never present with value 0.
func CategoryBreakdown(subs []Subscription, base Currency, rates RateTable, view ViewMode) map[Category]float64 {
	out := make(map[Category]float64)
	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		out[s.Category] += Normalize(s, base, rates, view)
	}
	return out
}

// MostExpensive returns the active subscription with the greatest
// normalized cost. The scan uses strict greater-than in stored order,
// so an exact tie keeps the first-stored subscription. The boolean is
// false when there is no active subscription; callers must branch on
// it rather than treat the zero value as a cost of 0.
func MostExpensive(subs []Subscription, base Currency, rates RateTable, view ViewMode) (Subscription, bool) {
	var (
		best     Subscription
		bestCost float64
		found    bool
	)
	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		cost := Normalize(s, base, rates, view)
		if !found || cost > bestCost {
			best = s
			bestCost = cost
			found = true
		}
	}
	return best, found
}
