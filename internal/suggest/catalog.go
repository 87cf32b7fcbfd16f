// Package suggest offers autocomplete over a fixed catalog of popular
// subscription services, each with a default currency and category for
// pre-filling the entry form.
package suggest

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"submanager/internal/core"
)

type Suggestion struct {
	Name     string        `json:"name"`
	Currency core.Currency `json:"currency"`
	Category core.Category `json:"category"`
}

var catalog = []Suggestion{
	{"Youtube", core.RUB, core.Entertainment},
	{"Boosty", core.RUB, core.Entertainment},
	{"YouTube Premium", core.RUB, core.Entertainment},
	{"Spotify", core.RUB, core.Entertainment},
	{"ЛитРес", core.RUB, core.Entertainment},
	{"Ростелеком", core.RUB, core.Utilities},
	{"Яндекс Плюс", core.RUB, core.Utilities},
	{"KION", core.RUB, core.Entertainment},
	{"СберПрайм", core.RUB, core.Entertainment},
	{"Okko", core.RUB, core.Entertainment},
	{"IVI", core.RUB, core.Entertainment},
	{"VK Плюс", core.RUB, core.Entertainment},
	{"VK", core.RUB, core.Entertainment},
	{"Telegram Premium", core.RUB, core.Other},
	{"Telegram", core.RUB, core.Other},
	{"GitHub", core.RUB, core.Work},
	{"Trello", core.RUB, core.Work},
	{"ChatGPT Plus", core.RUB, core.Work},
	{"ChatGPT", core.RUB, core.Work},
	{"Figma", core.RUB, core.Work},
	{"Slack", core.RUB, core.Work},
	{"Adobe Creative Cloud", core.RUB, core.Work},
	{"Adobe", core.RUB, core.Work},
	{"Microsoft 365", core.RUB, core.Work},
}

// Catalog returns the full list in its fixed order.
func Catalog() []Suggestion {
	out := make([]Suggestion, len(catalog))
	copy(out, catalog)
	return out
}

// Search fuzzy-matches the query against service names, case- and
// diacritic-insensitively, best matches first. An empty query returns
// the head of the catalog. Limit <= 0 means no limit.
func Search(query string, limit int) []Suggestion {
	query = strings.TrimSpace(query)
	if query == "" {
		out := Catalog()
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return out
	}

	names := make([]string, len(catalog))
	for i, s := range catalog {
		names[i] = s.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	out := make([]Suggestion, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, catalog[r.OriginalIndex])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
