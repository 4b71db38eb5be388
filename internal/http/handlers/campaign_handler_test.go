package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/adforge/backend/internal/campaign"
	"github.com/adforge/backend/internal/config"
	"github.com/adforge/backend/internal/events"
	apphttp "github.com/adforge/backend/internal/http"
	"github.com/adforge/backend/internal/http/handlers"
	"github.com/adforge/backend/internal/models"
	"github.com/adforge/backend/internal/repositories"
	"github.com/adforge/backend/internal/social"
	"github.com/adforge/backend/internal/storeparser"
)

type stubContent struct{}

func (stubContent) Generate(_ context.Context, app models.AppInfo, p models.Platform) (*models.AdContent, error) {
	return &models.AdContent{
		Platform: p,
		AppURL:   app.AppURL,
		Headline: "H",
		BodyText: "B",
	}, nil
}

type stubImages struct{}

func (stubImages) Generate(context.Context, *models.AdContent) (string, error) {
	return "", fmt.Errorf("images disabled in tests")
}

type stubFactory struct{}

func (stubFactory) Adapter(p models.Platform) (social.Adapter, error) {
	return nil, fmt.Errorf("no adapter for platform %q", p)
}

type stubFetcher struct{}

func (stubFetcher) FetchListing(_ context.Context, appURL string) (*storeparser.AppListing, error) {
	return &storeparser.AppListing{Name: "Scraped App", AppURL: appURL}, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	log := zap.NewNop()

	cfg := &config.Config{
		OutputDir: t.TempDir(),
		Platforms: config.DefaultPlatformSettings(),
	}
	repo := repositories.NewCampaignRepo(cfg.OutputDir, log)
	appRepo := repositories.NewAppRepo(filepath.Join(t.TempDir(), "apps.json"), log)
	svc := campaign.NewService(stubContent{}, stubImages{}, stubFactory{}, repo, events.NewBus(log), log)

	app := fiber.New()
	apphttp.SetupRouter(app, cfg, log,
		handlers.NewCampaignHandler(svc, appRepo, log),
		handlers.NewAppHandler(appRepo, stubFetcher{}, log),
		handlers.NewWSHub(events.NewBus(log), log),
	)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var parsed map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&parsed)
	return resp, parsed
}

func TestGenerateAndFetchCampaign(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/campaigns",
		`{"app":{"name":"Puzzle Quest","app_url":"https://example.com"},"platforms":["twitter"]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}

	data := body["data"].(map[string]any)
	id, _ := data["id"].(string)
	if !strings.HasPrefix(id, "ads_") {
		t.Fatalf("campaign id = %q", id)
	}

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/campaigns/"+id, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	ads := body["data"].(map[string]any)["ads"].(map[string]any)
	if _, ok := ads["twitter"]; !ok {
		t.Errorf("ads = %v", ads)
	}

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/campaigns", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	ids := body["data"].([]any)
	if len(ids) != 1 || ids[0] != id {
		t.Errorf("ids = %v", ids)
	}
}

func TestGetMissingCampaignIs404(t *testing.T) {
	app := newTestApp(t)
	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/campaigns/ads_20250601_120000", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestPostUnknownPlatformIs400(t *testing.T) {
	app := newTestApp(t)
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/campaigns/ads_20250601_120000/post/myspace", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestGenerateRequiresApp(t *testing.T) {
	app := newTestApp(t)
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/campaigns", `{"platforms":["twitter"]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAppProfileLifecycle(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPut, "/api/v1/apps/puzzle-quest",
		`{"app":{"name":"Puzzle Quest"}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d", resp.StatusCode)
	}

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/apps/puzzle-quest", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	if name := body["data"].(map[string]any)["name"]; name != "Puzzle Quest" {
		t.Errorf("name = %v", name)
	}

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/apps/import",
		`{"store_url":"https://play.google.com/store/apps/details?id=com.x"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d", resp.StatusCode)
	}
	if name := body["data"].(map[string]any)["name"]; name != "Scraped App" {
		t.Errorf("imported name = %v", name)
	}

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/apps/puzzle-quest", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
}

func TestMetaPlatforms(t *testing.T) {
	app := newTestApp(t)
	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/meta/platforms", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	list := body["data"].([]any)
	if len(list) != 4 {
		t.Fatalf("platforms = %v", list)
	}
	first := list[0].(map[string]any)
	if first["name"] != "facebook" {
		t.Errorf("first platform = %v", first["name"])
	}
}
