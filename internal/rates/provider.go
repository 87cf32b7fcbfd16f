// Package rates acquires currency exchange rates from a remote source
// with a deterministic fallback. The provider's contract is total: it
// never returns an error, only a usable table.
package rates

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"submanager/internal/core"
)

// DefaultURL serves all rates relative to the USD pivot as a nested
// document keyed by pivot currency: {"usd": {"usd": 1, "rub": ..., ...}}.
const DefaultURL = "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1/currencies/usd.min.json"

const pivot = "usd"

// Fallback returns the fixed table used whenever the remote source
// cannot be reached or parsed.
func Fallback() core.RateTable {
	return core.RateTable{"usd": 1, "rub": 92.5, "eur": 0.92}
}

// IsFallback reports whether a table is exactly the fallback table.
// This is the only failure signal the provider emits; orchestration
// layers that want to surface a degraded-rates notice compare against
// it instead of catching an error.
func IsFallback(r core.RateTable) bool {
	fb := Fallback()
	if len(r) != len(fb) {
		return false
	}
	for k, v := range fb {
		if r[k] != v {
			return false
		}
	}
	return true
}

type Provider struct {
	url    string
	client *http.Client
}

// NewProvider creates a provider for the given source URL. The timeout
// bounds the whole request; a stalled fetch takes the fallback path
// like any other failure.
func NewProvider(url string, timeout time.Duration) *Provider {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Provider{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch issues one GET to the rate source and unwraps the pivot-keyed
// sub-table. Every failure mode — transport error, non-2xx status,
// malformed body, missing pivot key — is absorbed here and logged;
// the caller always receives a complete table.
func (p *Provider) Fetch(ctx context.Context) core.RateTable {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		slog.WarnContext(ctx, "Building rates request failed, using fallback rates", "error", err)
		return Fallback()
	}

	resp, err := p.client.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "Rates fetch failed, using fallback rates", "error", err, "url", p.url)
		return Fallback()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.WarnContext(ctx, "Rates source returned non-success status, using fallback rates",
			"status", resp.StatusCode, "url", p.url)
		return Fallback()
	}

	// The source nests the flat code->multiplier table under the pivot
	// currency; exactly one level of unwrapping is required.
	var nested map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&nested); err != nil {
		slog.WarnContext(ctx, "Malformed rates response, using fallback rates", "error", err)
		return Fallback()
	}

	table, ok := nested[pivot]
	if !ok || len(table) == 0 {
		slog.WarnContext(ctx, "Rates response missing pivot table, using fallback rates", "pivot", pivot)
		return Fallback()
	}

	slog.DebugContext(ctx, "Fetched exchange rates", "entries", len(table))
	return core.RateTable(table)
}
