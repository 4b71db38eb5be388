package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adforge/backend/internal/models"
)

// Request timeouts shared by all adapters: text/record calls are quick,
// media uploads get more headroom. Nothing is ever retried.
const (
	textTimeout  = 30 * time.Second
	mediaTimeout = 60 * time.Second
)

// MediaRef is the opaque handle a platform returns for uploaded media. Its
// shape is deliberately not unified: Facebook and Twitter hand back an ID,
// Instagram needs a public URL, Bluesky returns a blob descriptor that must
// be echoed verbatim into the post record.
type MediaRef struct {
	ID   string
	URL  string
	Blob json.RawMessage
}

// Adapter is the capability contract every platform implements. Calling any
// media- or record-producing operation before a successful Authenticate fails
// with *AuthError and performs no network call.
//
// Publish creates the primary post. A non-empty link is handled per platform:
// Bluesky appends it to the post text after truncation, the others ignore it
// so the caller can attach it with Reply and keep the primary post clean.
type Adapter interface {
	Platform() models.Platform
	Authenticate(ctx context.Context) error
	UploadMedia(ctx context.Context, path string) (*MediaRef, error)
	Publish(ctx context.Context, text, link string, media *MediaRef) (string, error)
	Reply(ctx context.Context, postID, text string) (string, error)
}

func newTextClient() *http.Client {
	return &http.Client{Timeout: textTimeout}
}

func newMediaClient() *http.Client {
	return &http.Client{Timeout: mediaTimeout}
}

// statusError renders a non-2xx response into an error carrying a body snippet.
func statusError(api string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%s returned %d: %s", api, resp.StatusCode, string(body))
}

func decodeJSON(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}
