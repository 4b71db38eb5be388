// Package campaign orchestrates the pipeline: generate ad copy and imagery
// per platform, persist the run, and publish it to the social networks.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/adforge/backend/internal/events"
	"github.com/adforge/backend/internal/models"
	"github.com/adforge/backend/internal/social"
)

type ContentSource interface {
	Generate(ctx context.Context, app models.AppInfo, platform models.Platform) (*models.AdContent, error)
}

type ImageSource interface {
	Generate(ctx context.Context, ad *models.AdContent) (string, error)
}

type AdapterFactory interface {
	Adapter(p models.Platform) (social.Adapter, error)
}

type Store interface {
	Save(c *models.Campaign) error
	Get(id string) (*models.Campaign, error)
	List() ([]string, error)
	Delete(id string) error
}

// Service runs the campaign pipeline. The mutex serializes posting runs so
// two concurrent requests cannot interleave writes to the same record.
type Service struct {
	content  ContentSource
	images   ImageSource
	adapters AdapterFactory
	repo     Store
	bus      events.Publisher
	log      *zap.Logger
	now      func() time.Time
	mu       sync.Mutex
}

func NewService(
	content ContentSource,
	images ImageSource,
	adapters AdapterFactory,
	repo Store,
	bus events.Publisher,
	log *zap.Logger,
) *Service {
	return &Service{
		content:  content,
		images:   images,
		adapters: adapters,
		repo:     repo,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}
}

// Generate produces ad content for the requested platforms and saves the run.
// Unknown platforms and per-platform generation failures are logged and
// skipped; the campaign holds only the platforms that produced content. An
// image failure degrades that platform to text-only rather than dropping it.
func (s *Service) Generate(ctx context.Context, app models.AppInfo, platforms []string, withImages bool) (*models.Campaign, error) {
	c := &models.Campaign{
		ID:  models.NewCampaignID(s.now()),
		Ads: map[models.Platform]*models.AdContent{},
	}

	for _, raw := range platforms {
		p, err := models.ParsePlatform(raw)
		if err != nil {
			s.log.Warn("skipping unknown platform", zap.String("platform", raw))
			continue
		}

		ad, err := s.content.Generate(ctx, app, p)
		if err != nil {
			s.log.Warn("content generation failed, skipping platform",
				zap.String("platform", p.String()), zap.Error(err))
			continue
		}

		if withImages {
			path, err := s.images.Generate(ctx, ad)
			if err != nil {
				s.log.Warn("image generation failed, continuing text-only",
					zap.String("platform", p.String()), zap.Error(err))
			} else {
				ad.ImagePath = path
			}
		}

		c.Ads[p] = ad
	}

	if len(c.Ads) == 0 {
		return nil, fmt.Errorf("no content generated for any requested platform")
	}

	if err := s.repo.Save(c); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventCampaignGenerated, map[string]any{
		"campaign_id": c.ID,
		"platforms":   platformNames(c.Platforms()),
	})
	return c, nil
}

func (s *Service) Get(id string) (*models.Campaign, error) { return s.repo.Get(id) }

func (s *Service) List() ([]string, error) { return s.repo.List() }

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.publish(ctx, events.EventCampaignDeleted, map[string]any{"campaign_id": id})
	return nil
}

// PostAll publishes every platform in the campaign that has body text, in
// canonical order. One platform failing never stops the others; each outcome
// is recorded on the campaign and saved immediately.
func (s *Service) PostAll(ctx context.Context, id string) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventPostingStarted, map[string]any{"campaign_id": c.ID})
	for _, p := range c.Platforms() {
		if c.Ads[p].BodyText == "" {
			s.log.Warn("skipping platform with empty body text",
				zap.String("campaign", c.ID), zap.String("platform", p.String()))
			continue
		}
		s.postOne(ctx, c, p)
	}
	s.publish(ctx, events.EventPostingFinished, map[string]any{"campaign_id": c.ID})
	return c, nil
}

// PostPlatform publishes a single platform from the campaign.
func (s *Service) PostPlatform(ctx context.Context, id string, p models.Platform) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	ad, ok := c.Ads[p]
	if !ok {
		return nil, fmt.Errorf("campaign %s has no content for %s", id, p)
	}
	if ad.BodyText == "" {
		return nil, fmt.Errorf("campaign %s has empty body text for %s", id, p)
	}

	s.postOne(ctx, c, p)
	return c, nil
}

func (s *Service) postOne(ctx context.Context, c *models.Campaign, p models.Platform) {
	ad := c.Ads[p]
	ad.Progress = nil
	ad.ErrorDetails = nil

	err := s.publishAd(ctx, ad, p)
	if err != nil {
		ad.PostingStatus = models.PostingStatusFailed
		ad.ErrorDetails = &models.ErrorDetails{
			Type:    errorType(err),
			Message: err.Error(),
		}
		s.log.Error("posting failed", zap.String("platform", p.String()), zap.Error(err))
	} else {
		ad.PostingStatus = models.PostingStatusPosted
		ad.PostTime = s.now().Format(models.ContentTimestampLayout)
	}

	if saveErr := s.repo.Save(c); saveErr != nil {
		s.log.Error("could not save posting result",
			zap.String("campaign", c.ID), zap.Error(saveErr))
	}

	payload := map[string]any{
		"campaign_id": c.ID,
		"platform":    p.String(),
		"status":      ad.PostingStatus,
	}
	if ad.ErrorDetails != nil {
		payload["error"] = ad.ErrorDetails.Message
	}
	s.publish(ctx, events.EventPostingProgress, payload)
}

func (s *Service) publishAd(ctx context.Context, ad *models.AdContent, p models.Platform) error {
	adapter, err := s.adapters.Adapter(p)
	if err != nil {
		return err
	}

	ad.Trace("authenticating with %s", p)
	if err := adapter.Authenticate(ctx); err != nil {
		return err
	}

	var media *social.MediaRef
	if ad.ImagePath != "" {
		if _, statErr := os.Stat(ad.ImagePath); statErr != nil {
			ad.Trace("image %s unavailable, posting text-only", ad.ImagePath)
		} else {
			ad.Trace("uploading media")
			media, err = adapter.UploadMedia(ctx, ad.ImagePath)
			if err != nil {
				return err
			}
		}
	}

	ad.Trace("publishing post")
	postID, err := adapter.Publish(ctx, composeMessage(ad), ad.AppURL, media)
	if err != nil {
		return err
	}
	ad.Trace("published as %s", postID)

	// Bluesky folds the store link into the post itself; the other networks
	// get it as a follow-up comment under the post.
	if p != models.PlatformBluesky && ad.AppURL != "" {
		ad.Trace("posting store link comment")
		if _, err := adapter.Reply(ctx, postID, "Get the app on Google Play: "+ad.AppURL); err != nil {
			return err
		}
	}
	return nil
}

// composeMessage assembles the post text: headline, body, then hashtags.
func composeMessage(ad *models.AdContent) string {
	parts := []string{ad.Headline, ad.BodyText}
	if len(ad.Hashtags) > 0 {
		parts = append(parts, strings.Join(ad.Hashtags, " "))
	}
	var nonEmpty []string
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func errorType(err error) string {
	var authErr *social.AuthError
	var mediaErr *social.MediaUploadError
	var pubErr *social.PublishError
	switch {
	case errors.As(err, &authErr):
		return "authentication_error"
	case errors.As(err, &mediaErr):
		return "media_upload_error"
	case errors.As(err, &pubErr):
		return "publish_error"
	default:
		return "error"
	}
}

func (s *Service) publish(ctx context.Context, eventType string, payload map[string]any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, events.StreamPosting, events.Event{Type: eventType, Payload: payload}); err != nil {
		s.log.Warn("event publish failed", zap.String("type", eventType), zap.Error(err))
	}
}

func platformNames(ps []models.Platform) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}
