// Package generator turns app metadata into platform-aware ad creative:
// copy from a text model, imagery from an image model.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/adforge/backend/internal/config"
	"github.com/adforge/backend/internal/models"
)

// TextModel is the generative text collaborator.
type TextModel interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// ContentParseError means the model's output could not be turned into an
// AdContent: not JSON, or required fields missing. Callers treat it as
// "no content for this platform" and continue.
type ContentParseError struct {
	Platform models.Platform
	Err      error
}

func (e *ContentParseError) Error() string {
	return fmt.Sprintf("%s content: %v", e.Platform, e.Err)
}

func (e *ContentParseError) Unwrap() error { return e.Err }

type ContentGenerator struct {
	model     TextModel
	platforms map[models.Platform]config.PlatformSettings
	log       *zap.Logger
	now       func() time.Time
}

func NewContentGenerator(model TextModel, platforms map[models.Platform]config.PlatformSettings, log *zap.Logger) *ContentGenerator {
	return &ContentGenerator{
		model:     model,
		platforms: platforms,
		log:       log,
		now:       time.Now,
	}
}

// BuildPrompt renders the generation prompt for one platform. Pure function.
// The image description is constrained to be purely visual because image
// models render literal text poorly.
func BuildPrompt(app models.AppInfo, platform models.Platform, s config.PlatformSettings) string {
	return fmt.Sprintf(`Create a compelling social media ad for %s promoting a mobile app
with the following details:

App Name: %s
Description: %s
Category: %s
Key Features: %s
Target Audience: %s
App URL: %s
Game guide: [%s]

Platform Requirements:
- Maximum characters allowed: %d
- Maximum number of hashtags: %d
- Platform: %s

Please provide:
1. An attention-grabbing headline (max 60 characters).
2. Engaging body text that highlights the app's key benefits and appeals
to the target audience.
3. Relevant hashtags (max %d, concise and trending where possible).
4. A strong, clear call-to-action that encourages immediate engagement
(e.g., download, try now, explore).
5. A suggested promotional image description - must be a purely visual
concept, without any text, logos, or overlays.

Format your response as strict JSON with the following structure:
{
    "headline": "Your headline here",
    "body_text": "Your body text here",
    "hashtags": ["hashtag1", "hashtag2", "hashtag3"],
    "call_to_action": "Your CTA here",
    "suggested_image_description": "Purely visual description of promotional image, no text or logos"
}

Make the content engaging, benefit-focused, and aligned with what performs
best on %s.`,
		platform,
		app.Name,
		app.Description,
		app.Category,
		strings.Join(app.KeyFeatures, ", "),
		app.TargetAudience,
		app.AppURL,
		app.GameGuide,
		s.MaxChars,
		s.HashtagLimit,
		platform,
		s.HashtagLimit,
		platform,
	)
}

type contentPayload struct {
	Headline                  string   `json:"headline"`
	BodyText                  string   `json:"body_text"`
	Hashtags                  []string `json:"hashtags"`
	CallToAction              string   `json:"call_to_action"`
	SuggestedImageDescription string   `json:"suggested_image_description"`
}

// Generate asks the text model for ad copy and parses the five-field JSON it
// was instructed to return.
func (g *ContentGenerator) Generate(ctx context.Context, app models.AppInfo, platform models.Platform) (*models.AdContent, error) {
	s, ok := g.platforms[platform]
	if !ok {
		return nil, fmt.Errorf("platform %s not configured", platform)
	}

	g.log.Info("generating ad content", zap.String("platform", platform.String()), zap.String("app", app.Name))

	raw, err := g.model.GenerateContent(ctx, BuildPrompt(app, platform, s))
	if err != nil {
		return nil, fmt.Errorf("generate ad content for %s: %w", platform, err)
	}

	payload, err := parseContent(raw)
	if err != nil {
		return nil, &ContentParseError{Platform: platform, Err: err}
	}

	return &models.AdContent{
		Platform:                  platform,
		AppURL:                    app.AppURL,
		Headline:                  payload.Headline,
		BodyText:                  payload.BodyText,
		Hashtags:                  payload.Hashtags,
		CallToAction:              payload.CallToAction,
		SuggestedImageDescription: payload.SuggestedImageDescription,
		Timestamp:                 g.now().Format(models.ContentTimestampLayout),
	}, nil
}

func parseContent(raw string) (*contentPayload, error) {
	extracted, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var payload contentPayload
	if err := json.Unmarshal([]byte(extracted), &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch {
	case payload.Headline == "":
		return nil, fmt.Errorf("missing headline")
	case payload.BodyText == "":
		return nil, fmt.Errorf("missing body_text")
	case payload.SuggestedImageDescription == "":
		return nil, fmt.Errorf("missing suggested_image_description")
	}
	return &payload, nil
}

// extractJSON tolerates the markdown code fences models like to wrap JSON in:
// rather than trusting exact fence markers it takes everything between the
// first '{' and the last '}'.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object in model output")
	}
	return raw[start : end+1], nil
}
