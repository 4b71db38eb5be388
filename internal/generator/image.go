package generator

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"github.com/sunshineplan/imgconv"
	"go.uber.org/zap"

	"github.com/adforge/backend/internal/config"
	"github.com/adforge/backend/internal/models"
)

// ImageModel is the generative image collaborator.
type ImageModel interface {
	GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error)
}

type ImageGenerator struct {
	model     ImageModel
	platforms map[models.Platform]config.PlatformSettings
	outputDir string
	log       *zap.Logger
	now       func() time.Time
}

func NewImageGenerator(model ImageModel, platforms map[models.Platform]config.PlatformSettings, outputDir string, log *zap.Logger) *ImageGenerator {
	return &ImageGenerator{
		model:     model,
		platforms: platforms,
		outputDir: outputDir,
		log:       log,
		now:       time.Now,
	}
}

// buildImagePrompt refines the copy generator's visual description into a
// final rendering prompt. The no-text clauses are repeated here even though
// the description is already text-free: image models drift.
func buildImagePrompt(description string, s config.PlatformSettings) string {
	return fmt.Sprintf("%s. Style: %s. Tone: %s. Modern, high-quality ad creative, visually striking, no text, no labels, no captions.",
		description, s.Style, s.Tone)
}

// Generate renders the ad's suggested image, fits it to the platform's
// dimensions and size ceiling, and writes it under the output directory.
// Returns the written file path.
func (g *ImageGenerator) Generate(ctx context.Context, ad *models.AdContent) (string, error) {
	s, ok := g.platforms[ad.Platform]
	if !ok {
		return "", fmt.Errorf("platform %s not configured", ad.Platform)
	}
	if ad.SuggestedImageDescription == "" {
		return "", fmt.Errorf("ad for %s has no image description", ad.Platform)
	}

	g.log.Info("generating ad image",
		zap.String("platform", ad.Platform.String()),
		zap.String("aspect_ratio", s.AspectRatio))

	raw, err := g.model.GenerateImage(ctx, buildImagePrompt(ad.SuggestedImageDescription, s), s.AspectRatio)
	if err != nil {
		return "", fmt.Errorf("generate image for %s: %w", ad.Platform, err)
	}

	img, err := imgconv.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decode generated image: %w", err)
	}

	if s.ImageWidth > 0 && s.ImageHeight > 0 {
		img = imgconv.Resize(img, &imgconv.ResizeOption{
			Width:  s.ImageWidth,
			Height: s.ImageHeight,
		})
	}

	data, err := encodeUnderLimit(img, s.MaxImageKB)
	if err != nil {
		return "", fmt.Errorf("encode image for %s: %w", ad.Platform, err)
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := fmt.Sprintf("ads_%s_%s.jpg", ad.Platform, g.now().Format(models.CampaignIDTimeLayout))
	path := filepath.Join(g.outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	g.log.Info("ad image written", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

// encodeUnderLimit JPEG-encodes the image, stepping quality down until the
// result fits under maxKB. maxKB <= 0 means no ceiling.
func encodeUnderLimit(img image.Image, maxKB int) ([]byte, error) {
	var buf bytes.Buffer
	for q := 95; q >= 10; q -= 5 {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, err
		}
		if maxKB <= 0 || buf.Len() <= maxKB*1024 {
			return buf.Bytes(), nil
		}
	}
	return nil, fmt.Errorf("image does not fit under %d KB even at minimum quality", maxKB)
}
