package storeparser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const listingHTML = `<!DOCTYPE html>
<html>
<head>
<meta property="og:title" content="Puzzle Quest - Apps on Google Play">
<meta property="og:description" content="Fallback description">
<meta property="og:image" content="https://play.example.com/og.png">
</head>
<body>
<h1 itemprop="name">Puzzle Quest</h1>
<img itemprop="image" src="https://play.example.com/icon.png">
<a itemprop="genre">Puzzle</a>
<div data-g-id="description">Match gems across hundreds of levels.

- Daily puzzles with fresh twists
- Offline mode for commutes
• Leaderboards with friends
plain line that is not a feature
- Seasonal events</div>
</body>
</html>`

func TestParseListing(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	if err != nil {
		t.Fatal(err)
	}

	listing, err := parseListing(doc, "https://play.google.com/store/apps/details?id=com.example.puzzle")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if listing.Name != "Puzzle Quest" {
		t.Errorf("name = %q", listing.Name)
	}
	if listing.Category != "Puzzle" {
		t.Errorf("category = %q", listing.Category)
	}
	if !strings.HasPrefix(listing.Description, "Match gems") {
		t.Errorf("description = %q", listing.Description)
	}
	if listing.IconURL != "https://play.example.com/icon.png" {
		t.Errorf("icon = %q", listing.IconURL)
	}

	want := []string{
		"Daily puzzles with fresh twists",
		"Offline mode for commutes",
		"Leaderboards with friends",
		"Seasonal events",
	}
	if len(listing.KeyFeatures) != len(want) {
		t.Fatalf("features = %v", listing.KeyFeatures)
	}
	for i := range want {
		if listing.KeyFeatures[i] != want[i] {
			t.Errorf("feature[%d] = %q, want %q", i, listing.KeyFeatures[i], want[i])
		}
	}
}

func TestParseListingFallsBackToMetaTags(t *testing.T) {
	html := `<html><head>
<meta property="og:title" content="Tiny App - Apps on Google Play">
<meta property="og:description" content="A very small app.">
</head><body></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	listing, err := parseListing(doc, "https://play.google.com/store/apps/details?id=com.tiny")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if listing.Name != "Tiny App" {
		t.Errorf("name = %q", listing.Name)
	}
	if listing.Description != "A very small app." {
		t.Errorf("description = %q", listing.Description)
	}
}

func TestParseListingWithoutNameFails(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parseListing(doc, "https://example.com"); err == nil {
		t.Fatal("expected error for nameless page")
	}
}

func TestAppID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://play.google.com/store/apps/details?id=com.example.puzzle", "com.example.puzzle", false},
		{"https://play.google.com/store/apps/details?id=com.a&hl=en", "com.a", false},
		{"https://play.google.com/store/apps/details", "", true},
		{"::bad::", "", true},
	}
	for _, tt := range tests {
		got, err := AppID(tt.url)
		if tt.wantErr != (err != nil) {
			t.Errorf("AppID(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("AppID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestExtractFeaturesCapsAtFive(t *testing.T) {
	desc := strings.Repeat("- feature line\n", 10)
	if got := extractFeatures(desc); len(got) != 5 {
		t.Errorf("expected 5 features, got %d", len(got))
	}
}
