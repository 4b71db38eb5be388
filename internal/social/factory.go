package social

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/adforge/backend/internal/config"
	"github.com/adforge/backend/internal/models"
)

// DefaultTwitterUploadURL and DefaultTwitterAPIURL are split because media
// upload and tweet creation live on different hosts and API versions.
const (
	DefaultTwitterUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	DefaultTwitterAPIURL    = "https://api.twitter.com"
)

// Factory builds a fresh adapter per posting attempt; each instance owns its
// own session exclusively.
type Factory struct {
	cfg    *config.Config
	hoster Hoster
	log    *zap.Logger
}

func NewFactory(cfg *config.Config, hoster Hoster, log *zap.Logger) *Factory {
	return &Factory{cfg: cfg, hoster: hoster, log: log}
}

// Adapter dispatches over the closed platform set.
func (f *Factory) Adapter(p models.Platform) (Adapter, error) {
	switch p {
	case models.PlatformFacebook:
		return NewFacebook(f.cfg.FBPageID, f.cfg.FBAccessToken, f.cfg.GraphAPIBaseURL, f.log), nil
	case models.PlatformInstagram:
		return NewInstagram(f.cfg.IGAccountID, f.cfg.IGAccessToken, f.cfg.GraphAPIBaseURL, f.hoster, f.log), nil
	case models.PlatformTwitter:
		return NewTwitter(
			f.cfg.TwitterAPIKey, f.cfg.TwitterAPIKeySecret,
			f.cfg.TwitterAccessToken, f.cfg.TwitterAccessTokenSecret,
			f.cfg.TwitterBearerToken,
			DefaultTwitterUploadURL, DefaultTwitterAPIURL,
			f.log,
		), nil
	case models.PlatformBluesky:
		return NewBluesky(f.cfg.BskyHandle, f.cfg.BskyPassword, f.cfg.BskyBaseURL, f.log), nil
	}
	return nil, fmt.Errorf("no adapter for platform %q", p)
}
