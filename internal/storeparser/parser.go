// Package storeparser scrapes Google Play listing pages into app profile
// drafts, so a profile can be bootstrapped from a store URL instead of being
// typed in by hand.
package storeparser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// AppListing is a draft profile scraped from a store page. Fields the page
// does not expose (target audience, key selling points) stay empty for the
// operator to fill in.
type AppListing struct {
	AppID       string   `json:"app_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	KeyFeatures []string `json:"key_features"`
	IconURL     string   `json:"icon_url"`
	AppURL      string   `json:"app_url"`
	FetchedAt   string   `json:"fetched_at"`
}

type Parser struct {
	httpClient *http.Client
	log        *zap.Logger
	maxRetries int
}

func NewParser(timeoutMS, maxRetries int, log *zap.Logger) *Parser {
	return &Parser{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		},
		log:        log,
		maxRetries: maxRetries,
	}
}

// FetchListing downloads and parses a Play Store listing page.
func (p *Parser) FetchListing(ctx context.Context, appURL string) (*AppListing, error) {
	appID, err := AppID(appURL)
	if err != nil {
		return nil, err
	}

	var doc *goquery.Document
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, appURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, appURL)
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}

	if lastErr != nil {
		return nil, lastErr
	}

	listing, err := parseListing(doc, appURL)
	if err != nil {
		return nil, err
	}
	listing.AppID = appID
	listing.FetchedAt = time.Now().UTC().Format(time.RFC3339)

	p.log.Info("store listing fetched",
		zap.String("app_id", appID),
		zap.String("name", listing.Name))
	return listing, nil
}

func parseListing(doc *goquery.Document, appURL string) (*AppListing, error) {
	listing := &AppListing{AppURL: appURL}

	listing.Name = strings.TrimSpace(doc.Find(`h1[itemprop="name"]`).First().Text())
	if listing.Name == "" {
		if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
			listing.Name = strings.TrimSpace(strings.TrimSuffix(v, " - Apps on Google Play"))
		}
	}
	if listing.Name == "" {
		return nil, fmt.Errorf("listing page has no app name")
	}

	listing.Description = strings.TrimSpace(doc.Find(`div[data-g-id="description"]`).First().Text())
	if listing.Description == "" {
		if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
			listing.Description = strings.TrimSpace(v)
		}
	}

	listing.Category = strings.TrimSpace(doc.Find(`a[itemprop="genre"]`).First().Text())

	if v, ok := doc.Find(`img[itemprop="image"]`).First().Attr("src"); ok {
		listing.IconURL = v
	} else if v, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		listing.IconURL = v
	}

	listing.KeyFeatures = extractFeatures(listing.Description)
	return listing, nil
}

// extractFeatures pulls bullet-style lines out of a description. Listings
// commonly enumerate selling points with dashes, stars or check marks.
func extractFeatures(description string) []string {
	var features []string
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		for _, marker := range []string{"- ", "• ", "* ", "✓ ", "★ "} {
			if strings.HasPrefix(line, marker) {
				feature := strings.TrimSpace(strings.TrimPrefix(line, marker))
				if feature != "" {
					features = append(features, feature)
				}
				break
			}
		}
		if len(features) >= 5 {
			break
		}
	}
	return features
}

// AppID extracts the package name from a Play Store URL.
func AppID(appURL string) (string, error) {
	u, err := url.Parse(appURL)
	if err != nil {
		return "", fmt.Errorf("invalid store url: %w", err)
	}
	id := u.Query().Get("id")
	if id == "" {
		return "", fmt.Errorf("store url has no id parameter: %s", appURL)
	}
	return id, nil
}
