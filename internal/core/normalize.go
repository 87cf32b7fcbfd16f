package core

// Normalize converts one subscription's price into the base currency
// and the requested viewing period.
//
// Rates are multipliers relative to the USD pivot, so conversion is a
// two-step lookup: divide by the source currency's rate to reach the
// pivot, multiply by the base currency's rate to leave it. A currency
// missing from the table counts as multiplier 1 on either side, which
// degrades to identity conversion instead of failing. The cycle
// adjustment (x12 or /12) is applied last, and the result is returned
// unrounded; rounding is a presentation concern.
func Normalize(s Subscription, base Currency, rates RateTable, view ViewMode) float64 {
	sourceRate := rates.Rate(s.Currency)
	priceInPivot := s.Price.Amount() / sourceRate

	targetRate := rates.Rate(base)
	priceInBase := priceInPivot * targetRate

	if view == ViewYearly && s.Cycle == Monthly {
		priceInBase *= 12
	}
	if view == ViewMonthly && s.Cycle == Yearly {
		priceInBase /= 12
	}

	return priceInBase
}
