package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/adforge/backend/internal/models"
)

// PlatformSettings is the read-only per-platform configuration consulted by
// both generators and the orchestrator.
type PlatformSettings struct {
	MaxChars     int    `yaml:"max_chars"`
	HashtagLimit int    `yaml:"hashtag_limit"`
	ImageWidth   int    `yaml:"image_width"`
	ImageHeight  int    `yaml:"image_height"`
	AspectRatio  string `yaml:"aspect_ratio"`
	MaxImageKB   int    `yaml:"max_image_kb"`
	Tone         string `yaml:"tone"`
	Style        string `yaml:"style"`
}

type Config struct {
	// Server
	APIPort   string
	OutputDir string

	// App templates
	AppTemplatesPath string

	// Generative models
	GoogleAPIKey string
	TextModel    string
	ImageModel   string
	GenAIBaseURL string

	// Facebook / Instagram (Graph API)
	FBPageID        string
	FBAccessToken   string
	IGAccountID     string
	IGAccessToken   string
	GraphAPIBaseURL string

	// Twitter/X: OAuth1 user context for media upload, OAuth2 user token for tweets
	TwitterAPIKey            string
	TwitterAPIKeySecret      string
	TwitterAccessToken       string
	TwitterAccessTokenSecret string
	TwitterBearerToken       string

	// Bluesky
	BskyHandle   string
	BskyPassword string
	BskyBaseURL  string

	// ImageKit (public image hosting for Instagram)
	ImageKitPrivateKey string
	ImageKitUploadURL  string

	// Per-platform settings, keyed by the closed platform set
	Platforms map[models.Platform]PlatformSettings
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:          getEnv("API_PORT", "5000"),
		OutputDir:        getEnv("OUTPUT_DIR", "output"),
		AppTemplatesPath: getEnv("APP_TEMPLATES_PATH", "configs/apps.json"),

		GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
		TextModel:    getEnv("TEXT_AI_MODEL", "gemini-2.0-flash"),
		ImageModel:   getEnv("IMAGE_AI_MODEL", "imagen-4.0-generate-001"),
		GenAIBaseURL: getEnv("GENAI_BASE_URL", "https://generativelanguage.googleapis.com"),

		FBPageID:        getEnv("FB_PAGE_ID", ""),
		FBAccessToken:   getEnv("FB_ACCESS_TOKEN", ""),
		IGAccountID:     getEnv("INSTAGRAM_ACCOUNT_ID", ""),
		IGAccessToken:   getEnv("INSTAGRAM_ACCESS_TOKEN", ""),
		GraphAPIBaseURL: getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v23.0"),

		TwitterAPIKey:            getEnv("TWITTER_API_KEY", ""),
		TwitterAPIKeySecret:      getEnv("TWITTER_API_KEY_SECRET", ""),
		TwitterAccessToken:       getEnv("TWITTER_ACCESS_TOKEN", ""),
		TwitterAccessTokenSecret: getEnv("TWITTER_ACCESS_TOKEN_SECRET", ""),
		TwitterBearerToken:       getEnv("TWITTER_BEARER_TOKEN", ""),

		BskyHandle:   getEnv("BSKY_HANDLE", ""),
		BskyPassword: getEnv("BSKY_PASSWORD", ""),
		BskyBaseURL:  getEnv("BSKY_BASE_URL", "https://bsky.social"),

		ImageKitPrivateKey: getEnv("IMAGEKIT_PRIVATE_KEY", ""),
		ImageKitUploadURL:  getEnv("IMAGEKIT_UPLOAD_URL", "https://upload.imagekit.io/api/v1/files/upload"),

		Platforms: DefaultPlatformSettings(),
	}

	if path := getEnv("PLATFORM_SETTINGS_PATH", ""); path != "" {
		if err := mergeSettingsFile(cfg.Platforms, path); err != nil {
			return nil, fmt.Errorf("platform settings: %w", err)
		}
	}

	return cfg, nil
}

// DefaultPlatformSettings mirrors the numbers each platform documents for
// feed posts; the Bluesky byte ceiling is the API's hard blob limit.
func DefaultPlatformSettings() map[models.Platform]PlatformSettings {
	return map[models.Platform]PlatformSettings{
		models.PlatformFacebook: {
			MaxChars:     2200,
			HashtagLimit: 30,
			ImageWidth:   1200,
			ImageHeight:  630,
			AspectRatio:  "16:9",
			Tone:         "friendly and engaging",
			Style:        "clean, vibrant visuals with clear subjects, community-oriented feel",
		},
		models.PlatformInstagram: {
			MaxChars:     2200,
			HashtagLimit: 30,
			ImageWidth:   1080,
			ImageHeight:  1080,
			AspectRatio:  "1:1",
			Tone:         "visual and trendy",
			Style:        "aesthetic, modern, bold colors, eye-catching composition",
		},
		models.PlatformTwitter: {
			MaxChars:     280,
			HashtagLimit: 10,
			ImageWidth:   1200,
			ImageHeight:  675,
			AspectRatio:  "16:9",
			Tone:         "concise and punchy",
			Style:        "minimalistic, high contrast, quick-to-digest imagery",
		},
		models.PlatformBluesky: {
			MaxChars:     200,
			HashtagLimit: 5,
			ImageWidth:   1200,
			ImageHeight:  675,
			AspectRatio:  "16:9",
			MaxImageKB:   976,
			Tone:         "casual, authentic, and community-driven",
			Style:        "clean, relatable visuals; organic feel; less polished, more 'real'",
		},
	}
}

func mergeSettingsFile(base map[models.Platform]PlatformSettings, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file map[string]PlatformSettings
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	for name, s := range file {
		p, err := models.ParsePlatform(name)
		if err != nil {
			return err
		}
		base[p] = s
	}
	return nil
}

// Validate warns about credentials that will make whole platforms unusable.
func (c *Config) Validate(log *zap.Logger) {
	if c.GoogleAPIKey == "" {
		log.Warn("GOOGLE_API_KEY is not set, content generation will fail")
	}
	if c.FBPageID == "" || c.FBAccessToken == "" {
		log.Warn("facebook credentials are not set")
	}
	if c.IGAccountID == "" || c.IGAccessToken == "" {
		log.Warn("instagram credentials are not set")
	}
	if c.TwitterBearerToken == "" {
		log.Warn("twitter bearer token is not set")
	}
	if c.BskyHandle == "" || c.BskyPassword == "" {
		log.Warn("bluesky credentials are not set")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
