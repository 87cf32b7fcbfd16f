package suggest

import (
	"testing"

	"submanager/internal/core"
)

func TestSearchExactName(t *testing.T) {
	got := Search("Spotify", 5)
	if len(got) == 0 || got[0].Name != "Spotify" {
		t.Fatalf("expected Spotify first, got %v", got)
	}
	if got[0].Category != core.Entertainment {
		t.Fatalf("expected entertainment category, got %v", got[0].Category)
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	got := Search("spotify", 5)
	if len(got) == 0 || got[0].Name != "Spotify" {
		t.Fatalf("expected Spotify for lower-case query, got %v", got)
	}
}

func TestSearchPartialQuery(t *testing.T) {
	got := Search("git", 5)
	if len(got) == 0 {
		t.Fatalf("expected matches for partial query")
	}
	found := false
	for _, s := range got {
		if s.Name == "GitHub" {
			found = true
			if s.Category != core.Work {
				t.Fatalf("GitHub should default to work, got %v", s.Category)
			}
		}
	}
	if !found {
		t.Fatalf("GitHub missing from results: %v", got)
	}
}

func TestSearchCyrillicQuery(t *testing.T) {
	got := Search("Яндекс", 5)
	if len(got) == 0 || got[0].Name != "Яндекс Плюс" {
		t.Fatalf("expected Яндекс Плюс, got %v", got)
	}
	if got[0].Category != core.Utilities {
		t.Fatalf("expected utilities, got %v", got[0].Category)
	}
}

func TestSearchEmptyQueryReturnsCatalogHead(t *testing.T) {
	got := Search("  ", 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].Name != Catalog()[0].Name {
		t.Fatalf("expected catalog order, got %v", got)
	}
}

func TestSearchNoMatch(t *testing.T) {
	if got := Search("zzzzzzz", 5); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	if got := Search("a", 2); len(got) > 2 {
		t.Fatalf("limit ignored: %d results", len(got))
	}
}
