package repositories

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/adforge/backend/internal/models"
)

func testCampaign(id string) *models.Campaign {
	return &models.Campaign{
		ID: id,
		Ads: map[models.Platform]*models.AdContent{
			models.PlatformTwitter: {
				Platform:     models.PlatformTwitter,
				Headline:     "Jeux d'été — 夏のゲーム 🎮",
				BodyText:     "Ünïcödé content & <symbols> survive storage",
				Hashtags:     []string{"#été", "#ゲーム"},
				CallToAction: "Download now",
				Timestamp:    "2025-06-01T12:00:00Z",
			},
		},
	}
}

func TestSaveGetRoundTripsUnicode(t *testing.T) {
	repo := NewCampaignRepo(t.TempDir(), zap.NewNop())
	want := testCampaign("ads_20250601_120000")

	if err := repo.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Get(want.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	ad := got.Ads[models.PlatformTwitter]
	if ad.Headline != "Jeux d'été — 夏のゲーム 🎮" {
		t.Errorf("headline = %q", ad.Headline)
	}
	if ad.BodyText != "Ünïcödé content & <symbols> survive storage" {
		t.Errorf("body = %q", ad.BodyText)
	}
	if len(ad.Hashtags) != 2 || ad.Hashtags[0] != "#été" {
		t.Errorf("hashtags = %v", ad.Hashtags)
	}

	// The file itself must hold readable UTF-8, not escape sequences.
	data, err := os.ReadFile(filepath.Join(repo.dir, want.ID+".json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "夏のゲーム") {
		t.Error("file does not contain raw UTF-8 text")
	}
	if !strings.Contains(string(data), "<symbols>") {
		t.Error("file HTML-escapes angle brackets")
	}
}

func TestListNewestFirst(t *testing.T) {
	repo := NewCampaignRepo(t.TempDir(), zap.NewNop())
	for _, id := range []string{"ads_20250601_090000", "ads_20250603_120000", "ads_20250602_100000"} {
		if err := repo.Save(testCampaign(id)); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := repo.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ads_20250603_120000", "ads_20250602_100000", "ads_20250601_090000"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	repo := NewCampaignRepo(dir, zap.NewNop())
	if err := repo.Save(testCampaign("ads_20250601_120000")); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "ads_bad.json", "ads_20250601_120000.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := repo.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "ads_20250601_120000" {
		t.Errorf("ids = %v", ids)
	}
}

func TestDeleteRemovesRecordAndImages(t *testing.T) {
	dir := t.TempDir()
	repo := NewCampaignRepo(dir, zap.NewNop())

	img := filepath.Join(dir, "ads_twitter_20250601_120000.jpg")
	if err := os.WriteFile(img, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := testCampaign("ads_20250601_120000")
	c.Ads[models.PlatformTwitter].ImagePath = img
	if err := repo.Save(c); err != nil {
		t.Fatal(err)
	}

	if err := repo.Delete(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := os.Stat(img); !errors.Is(err, os.ErrNotExist) {
		t.Error("image was not removed")
	}
	if _, err := repo.Get(c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestInvalidIDsRejected(t *testing.T) {
	repo := NewCampaignRepo(t.TempDir(), zap.NewNop())
	for _, id := range []string{"", "ads_2025_bad", "../../etc/passwd", "ads_20250601_120000x"} {
		if err := repo.Save(&models.Campaign{ID: id}); err == nil {
			t.Errorf("Save accepted invalid id %q", id)
		}
		if _, err := repo.Get(id); err == nil {
			t.Errorf("Get accepted invalid id %q", id)
		}
	}
}

func TestGetMissingCampaignIsNotFound(t *testing.T) {
	repo := NewCampaignRepo(t.TempDir(), zap.NewNop())
	if _, err := repo.Get("ads_20250601_120000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
