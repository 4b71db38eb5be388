package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rivo/uniseg"
	"go.uber.org/zap"

	"github.com/adforge/backend/internal/models"
)

// blueskyTextLimit is deliberately below the platform's real 300-grapheme
// ceiling: the adapter reserves headroom for the appended product link.
const blueskyTextLimit = 150

// Bluesky talks to an AT Protocol PDS. Unlike the token-based platforms it
// performs a real login call, exchanging handle+password for a short-lived
// access token and the account DID.
type Bluesky struct {
	handle   string
	password string
	baseURL  string
	text     *http.Client
	media    *http.Client
	log      *zap.Logger
	session  *blueskySession
	lastPost *recordRef
}

type blueskySession struct {
	AccessJwt string `json:"accessJwt"`
	DID       string `json:"did"`
}

type recordRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

func NewBluesky(handle, password, baseURL string, log *zap.Logger) *Bluesky {
	return &Bluesky{
		handle:   handle,
		password: password,
		baseURL:  strings.TrimRight(baseURL, "/"),
		text:     newTextClient(),
		media:    newMediaClient(),
		log:      log,
	}
}

func (b *Bluesky) Platform() models.Platform { return models.PlatformBluesky }

// Authenticate calls createSession and keeps the returned access token and
// DID for the adapter's lifetime.
func (b *Bluesky) Authenticate(ctx context.Context) error {
	if b.handle == "" || b.password == "" {
		return &AuthError{Platform: b.Platform(), Err: fmt.Errorf("missing handle or password")}
	}

	body, _ := json.Marshal(map[string]string{
		"identifier": b.handle,
		"password":   b.password,
	})

	url := b.baseURL + "/xrpc/com.atproto.server.createSession"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &AuthError{Platform: b.Platform(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.text.Do(req)
	if err != nil {
		return &AuthError{Platform: b.Platform(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &AuthError{Platform: b.Platform(), Err: statusError("createSession", resp)}
	}

	var session blueskySession
	if err := decodeJSON(resp, &session); err != nil {
		return &AuthError{Platform: b.Platform(), Err: err}
	}

	b.session = &session
	b.log.Info("bluesky session created", zap.String("did", session.DID))
	return nil
}

// UploadMedia sends the raw file bytes to uploadBlob and keeps the returned
// blob descriptor verbatim; the record must echo it bit-exact.
func (b *Bluesky) UploadMedia(ctx context.Context, path string) (*MediaRef, error) {
	if b.session == nil {
		return nil, notAuthenticated(b.Platform())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MediaUploadError{Platform: b.Platform(), Err: err}
	}
	if len(data) == 0 {
		return nil, &MediaUploadError{Platform: b.Platform(), Err: fmt.Errorf("%s is empty", path)}
	}

	ctype := mime.TypeByExtension(filepath.Ext(path))
	if ctype == "" {
		ctype = "image/jpeg"
	}

	url := b.baseURL + "/xrpc/com.atproto.repo.uploadBlob"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, &MediaUploadError{Platform: b.Platform(), Err: err}
	}
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("Authorization", "Bearer "+b.session.AccessJwt)

	resp, err := b.media.Do(req)
	if err != nil {
		return nil, &MediaUploadError{Platform: b.Platform(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &MediaUploadError{Platform: b.Platform(), Err: statusError("uploadBlob", resp)}
	}

	var result struct {
		Blob json.RawMessage `json:"blob"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return nil, &MediaUploadError{Platform: b.Platform(), Err: err}
	}

	b.log.Info("bluesky blob uploaded", zap.Int("bytes", len(data)))
	return &MediaRef{Blob: result.Blob}, nil
}

// Publish creates the post record. The message is truncated to 150 grapheme
// clusters with an ellipsis before the link is appended, and the record
// envelope carries the fixed $type tags the API requires.
func (b *Bluesky) Publish(ctx context.Context, text, link string, media *MediaRef) (string, error) {
	if b.session == nil {
		return "", notAuthenticated(b.Platform())
	}
	if media == nil || len(media.Blob) == 0 {
		return "", &PublishError{Platform: b.Platform(), Err: fmt.Errorf("bluesky requires an uploaded image blob")}
	}

	message := truncateGraphemes(text, blueskyTextLimit)
	if link != "" {
		message = message + " " + link
	}

	record := map[string]any{
		"$type":     "app.bsky.feed.post",
		"text":      message,
		"createdAt": time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		"embed": map[string]any{
			"$type": "app.bsky.embed.images",
			"images": []map[string]any{
				{
					"alt":   "Ad image",
					"image": media.Blob,
				},
			},
		},
	}

	ref, err := b.createRecord(ctx, record)
	if err != nil {
		return "", &PublishError{Platform: b.Platform(), Err: err}
	}

	b.lastPost = ref
	b.log.Info("bluesky post created", zap.String("uri", ref.URI))
	return ref.URI, nil
}

// Reply posts a text-only record threaded under a post previously created by
// this adapter instance.
func (b *Bluesky) Reply(ctx context.Context, postID, text string) (string, error) {
	if b.session == nil {
		return "", notAuthenticated(b.Platform())
	}
	if b.lastPost == nil || b.lastPost.URI != postID {
		return "", &PublishError{Platform: b.Platform(), Err: fmt.Errorf("unknown parent post %s", postID)}
	}

	record := map[string]any{
		"$type":     "app.bsky.feed.post",
		"text":      text,
		"createdAt": time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		"reply": map[string]any{
			"root":   b.lastPost,
			"parent": b.lastPost,
		},
	}

	ref, err := b.createRecord(ctx, record)
	if err != nil {
		return "", &PublishError{Platform: b.Platform(), Err: err}
	}
	return ref.URI, nil
}

func (b *Bluesky) createRecord(ctx context.Context, record map[string]any) (*recordRef, error) {
	payload, err := json.Marshal(map[string]any{
		"repo":       b.session.DID,
		"collection": "app.bsky.feed.post",
		"record":     record,
	})
	if err != nil {
		return nil, err
	}

	url := b.baseURL + "/xrpc/com.atproto.repo.createRecord"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.session.AccessJwt)

	resp, err := b.text.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError("createRecord", resp)
	}

	var ref recordRef
	if err := decodeJSON(resp, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// truncateGraphemes cuts the message at limit user-perceived characters, not
// bytes or code points, and marks the cut with an ellipsis.
func truncateGraphemes(s string, limit int) string {
	if uniseg.GraphemeClusterCount(s) <= limit {
		return s
	}

	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for i := 0; i < limit && g.Next(); i++ {
		b.WriteString(g.Str())
	}
	return b.String() + "..."
}
