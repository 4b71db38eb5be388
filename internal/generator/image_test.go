package generator

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/adforge/backend/internal/config"
	"github.com/adforge/backend/internal/models"
)

type fakeImageModel struct {
	data   []byte
	err    error
	prompt string
	ratio  string
}

func (m *fakeImageModel) GenerateImage(_ context.Context, prompt, aspectRatio string) ([]byte, error) {
	m.prompt = prompt
	m.ratio = aspectRatio
	return m.data, m.err
}

// encodePNG renders a deterministic noisy image. Noise compresses poorly,
// which the size-ceiling test relies on.
func encodePNG(t *testing.T, w, h int, noisy bool) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 40, G: 90, B: 160, A: 255}
			if noisy {
				c = color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newImageTestGenerator(t *testing.T, model ImageModel, settings map[models.Platform]config.PlatformSettings) *ImageGenerator {
	t.Helper()
	g := NewImageGenerator(model, settings, t.TempDir(), zap.NewNop())
	g.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return g
}

func TestGenerateImageWritesFileUnderCeiling(t *testing.T) {
	settings := config.DefaultPlatformSettings()
	model := &fakeImageModel{data: encodePNG(t, 320, 180, false)}
	g := newImageTestGenerator(t, model, settings)

	ad := &models.AdContent{
		Platform:                  models.PlatformBluesky,
		SuggestedImageDescription: "Gems over a skyline",
	}
	path, err := g.Generate(context.Background(), ad)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if filepath.Base(path) != "ads_bluesky_20250601_120000.jpg" {
		t.Errorf("file name = %q", filepath.Base(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	maxBytes := int64(settings[models.PlatformBluesky].MaxImageKB) * 1024
	if info.Size() > maxBytes {
		t.Errorf("image is %d bytes, ceiling is %d", info.Size(), maxBytes)
	}
	if model.ratio != settings[models.PlatformBluesky].AspectRatio {
		t.Errorf("aspect ratio = %q", model.ratio)
	}
	for _, want := range []string{"Gems over a skyline", "no text", "Style:", "Tone:"} {
		if !strings.Contains(model.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateImageFailsRatherThanExceedCeiling(t *testing.T) {
	settings := map[models.Platform]config.PlatformSettings{
		models.PlatformBluesky: {
			ImageWidth:  800,
			ImageHeight: 800,
			AspectRatio: "1:1",
			MaxImageKB:  1,
		},
	}
	model := &fakeImageModel{data: encodePNG(t, 800, 800, true)}
	g := newImageTestGenerator(t, model, settings)

	ad := &models.AdContent{Platform: models.PlatformBluesky, SuggestedImageDescription: "Noise"}
	if _, err := g.Generate(context.Background(), ad); err == nil {
		t.Fatal("expected error for uncompressible image")
	}

	entries, err := os.ReadDir(g.outputDir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("no file may be written on failure, found %v", entries)
	}
}

func TestGenerateImageModelFailurePropagates(t *testing.T) {
	model := &fakeImageModel{err: fmt.Errorf("model unavailable")}
	g := newImageTestGenerator(t, model, config.DefaultPlatformSettings())

	ad := &models.AdContent{Platform: models.PlatformFacebook, SuggestedImageDescription: "A forest"}
	if _, err := g.Generate(context.Background(), ad); err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected wrapped model error, got %v", err)
	}
}

func TestGenerateImageRequiresDescription(t *testing.T) {
	model := &fakeImageModel{}
	g := newImageTestGenerator(t, model, config.DefaultPlatformSettings())

	ad := &models.AdContent{Platform: models.PlatformFacebook}
	if _, err := g.Generate(context.Background(), ad); err == nil {
		t.Fatal("expected error for empty image description")
	}
	if model.prompt != "" {
		t.Error("model must not be called without a description")
	}
}
