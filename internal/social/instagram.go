package social

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/adforge/backend/internal/models"
)

// Hoster turns a local file into a publicly reachable URL. Instagram's
// container endpoint only accepts public URLs, never raw uploads.
type Hoster interface {
	Upload(ctx context.Context, path, name string, tags []string) (string, error)
}

// Instagram publishes through the Graph API's two-step container pattern:
// create a media container from a public image URL, then publish the
// returned creation ID.
type Instagram struct {
	accountID   string
	accessToken string
	baseURL     string
	hoster      Hoster
	text        *http.Client
	log         *zap.Logger
	authed      bool
}

func NewInstagram(accountID, accessToken, baseURL string, hoster Hoster, log *zap.Logger) *Instagram {
	return &Instagram{
		accountID:   accountID,
		accessToken: accessToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
		hoster:      hoster,
		text:        newTextClient(),
		log:         log,
	}
}

func (g *Instagram) Platform() models.Platform { return models.PlatformInstagram }

func (g *Instagram) Authenticate(ctx context.Context) error {
	if g.accountID == "" || g.accessToken == "" {
		return &AuthError{Platform: g.Platform(), Err: fmt.Errorf("missing account id or access token")}
	}
	g.authed = true
	return nil
}

// UploadMedia hosts the local file externally and returns its public URL.
func (g *Instagram) UploadMedia(ctx context.Context, path string) (*MediaRef, error) {
	if !g.authed {
		return nil, notAuthenticated(g.Platform())
	}
	if g.hoster == nil {
		return nil, &MediaUploadError{Platform: g.Platform(), Err: fmt.Errorf("no image hoster configured")}
	}

	if info, err := os.Stat(path); err != nil {
		return nil, &MediaUploadError{Platform: g.Platform(), Err: err}
	} else if info.Size() == 0 {
		return nil, &MediaUploadError{Platform: g.Platform(), Err: fmt.Errorf("%s is empty", path)}
	}

	publicURL, err := g.hoster.Upload(ctx, path, filepath.Base(path), []string{"ads", "upload"})
	if err != nil {
		return nil, &MediaUploadError{Platform: g.Platform(), Err: err}
	}

	g.log.Info("instagram image hosted", zap.String("url", publicURL))
	return &MediaRef{URL: publicURL}, nil
}

// Publish runs the container pattern. Instagram is image-first: media is
// mandatory.
func (g *Instagram) Publish(ctx context.Context, text, _ string, media *MediaRef) (string, error) {
	if !g.authed {
		return "", notAuthenticated(g.Platform())
	}
	if media == nil || media.URL == "" {
		return "", &PublishError{Platform: g.Platform(), Err: fmt.Errorf("instagram requires a hosted image")}
	}

	creationID, err := g.postForm(ctx, fmt.Sprintf("%s/%s/media", g.baseURL, g.accountID), url.Values{
		"image_url":    {media.URL},
		"caption":      {text},
		"access_token": {g.accessToken},
	})
	if err != nil {
		return "", &PublishError{Platform: g.Platform(), Err: err}
	}

	postID, err := g.postForm(ctx, fmt.Sprintf("%s/%s/media_publish", g.baseURL, g.accountID), url.Values{
		"creation_id":  {creationID},
		"access_token": {g.accessToken},
	})
	if err != nil {
		return "", &PublishError{Platform: g.Platform(), Err: err}
	}

	g.log.Info("instagram post published", zap.String("media_id", postID))
	return postID, nil
}

// Reply attaches a comment to a published media object.
func (g *Instagram) Reply(ctx context.Context, postID, text string) (string, error) {
	if !g.authed {
		return "", notAuthenticated(g.Platform())
	}

	id, err := g.postForm(ctx, fmt.Sprintf("%s/%s/comments", g.baseURL, postID), url.Values{
		"message":      {text},
		"access_token": {g.accessToken},
	})
	if err != nil {
		return "", &PublishError{Platform: g.Platform(), Err: err}
	}
	return id, nil
}

func (g *Instagram) postForm(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.text.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError("graph media", resp)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}
