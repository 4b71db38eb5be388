package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/adforge/backend/internal/models"
)

// Twitter holds two credentialing contexts at once: OAuth1 user-context keys
// sign the v1.1 media upload, while tweet creation goes through v2 with an
// OAuth2 user bearer token.
type Twitter struct {
	signer      *oauth1Signer
	bearerToken string
	uploadURL   string
	apiURL      string
	text        *http.Client
	media       *http.Client
	log         *zap.Logger
	authed      bool
}

func NewTwitter(apiKey, apiKeySecret, accessToken, accessTokenSecret, bearerToken, uploadURL, apiURL string, log *zap.Logger) *Twitter {
	return &Twitter{
		signer:      newOAuth1Signer(apiKey, apiKeySecret, accessToken, accessTokenSecret),
		bearerToken: bearerToken,
		uploadURL:   uploadURL,
		apiURL:      strings.TrimRight(apiURL, "/"),
		text:        newTextClient(),
		media:       newMediaClient(),
		log:         log,
	}
}

func (t *Twitter) Platform() models.Platform { return models.PlatformTwitter }

// Authenticate verifies both credential sets are present. Both tokens are
// long-lived; there is no login exchange.
func (t *Twitter) Authenticate(ctx context.Context) error {
	if !t.signer.configured() {
		return &AuthError{Platform: t.Platform(), Err: fmt.Errorf("missing OAuth1 user-context credentials")}
	}
	if t.bearerToken == "" {
		return &AuthError{Platform: t.Platform(), Err: fmt.Errorf("missing OAuth2 bearer token")}
	}
	t.authed = true
	return nil
}

// UploadMedia posts the file to the v1.1 media endpoint with an OAuth1
// signature and returns the media ID string for tweet attachment.
func (t *Twitter) UploadMedia(ctx context.Context, path string) (*MediaRef, error) {
	if !t.authed {
		return nil, notAuthenticated(t.Platform())
	}

	img, err := os.Open(path)
	if err != nil {
		return nil, &MediaUploadError{Platform: t.Platform(), Err: err}
	}
	defer img.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := createFilePart(w, "media", path)
	if err != nil {
		return nil, &MediaUploadError{Platform: t.Platform(), Err: err}
	}
	if _, err := io.Copy(part, img); err != nil {
		return nil, &MediaUploadError{Platform: t.Platform(), Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &MediaUploadError{Platform: t.Platform(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.uploadURL, &buf)
	if err != nil {
		return nil, &MediaUploadError{Platform: t.Platform(), Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	// Multipart bodies are excluded from the signature base string.
	req.Header.Set("Authorization", t.signer.authorizationHeader(http.MethodPost, t.uploadURL, nil))

	resp, err := t.media.Do(req)
	if err != nil {
		return nil, &MediaUploadError{Platform: t.Platform(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &MediaUploadError{Platform: t.Platform(), Err: statusError("media upload", resp)}
	}

	var result struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return nil, &MediaUploadError{Platform: t.Platform(), Err: err}
	}

	t.log.Info("twitter media uploaded", zap.String("media_id", result.MediaIDString))
	return &MediaRef{ID: result.MediaIDString}, nil
}

type tweetRequest struct {
	Text  string `json:"text"`
	Media *struct {
		MediaIDs []string `json:"media_ids"`
	} `json:"media,omitempty"`
	Reply *struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	} `json:"reply,omitempty"`
}

// Publish creates the tweet via v2. Twitter renders a link preview from URLs
// in the text, but the CTA link is attached with Reply instead so the primary
// tweet stays clean.
func (t *Twitter) Publish(ctx context.Context, text, _ string, media *MediaRef) (string, error) {
	if !t.authed {
		return "", notAuthenticated(t.Platform())
	}

	payload := tweetRequest{Text: text}
	if media != nil {
		payload.Media = &struct {
			MediaIDs []string `json:"media_ids"`
		}{MediaIDs: []string{media.ID}}
	}

	id, err := t.createTweet(ctx, payload)
	if err != nil {
		return "", &PublishError{Platform: t.Platform(), Err: err}
	}

	t.log.Info("tweet posted", zap.String("tweet_id", id))
	return id, nil
}

// Reply posts a threaded reply to an existing tweet.
func (t *Twitter) Reply(ctx context.Context, postID, text string) (string, error) {
	if !t.authed {
		return "", notAuthenticated(t.Platform())
	}

	payload := tweetRequest{Text: text}
	payload.Reply = &struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	}{InReplyToTweetID: postID}

	id, err := t.createTweet(ctx, payload)
	if err != nil {
		return "", &PublishError{Platform: t.Platform(), Err: err}
	}

	t.log.Info("tweet reply posted", zap.String("reply_id", id))
	return id, nil
}

func (t *Twitter) createTweet(ctx context.Context, payload tweetRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := t.apiURL + "/2/tweets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.bearerToken)

	resp, err := t.text.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError("tweets", resp)
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return "", err
	}
	return result.Data.ID, nil
}
