package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/adforge/backend/internal/models"
)

// Facebook publishes to a page via the Graph API using a long-lived page
// token. An image post is two sequential calls: an unpublished /photos
// upload, then /feed referencing the photo through attached_media.
type Facebook struct {
	pageID      string
	accessToken string
	baseURL     string
	text        *http.Client
	media       *http.Client
	log         *zap.Logger
	authed      bool
}

func NewFacebook(pageID, accessToken, baseURL string, log *zap.Logger) *Facebook {
	return &Facebook{
		pageID:      pageID,
		accessToken: accessToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
		text:        newTextClient(),
		media:       newMediaClient(),
		log:         log,
	}
}

func (f *Facebook) Platform() models.Platform { return models.PlatformFacebook }

// Authenticate confirms the static credentials are present. The Graph API
// uses the long-lived token directly, there is no interactive login.
func (f *Facebook) Authenticate(ctx context.Context) error {
	if f.pageID == "" || f.accessToken == "" {
		return &AuthError{Platform: f.Platform(), Err: fmt.Errorf("missing page id or access token")}
	}
	f.authed = true
	return nil
}

// UploadMedia uploads the file as an unpublished photo and returns its ID
// for use in attached_media.
func (f *Facebook) UploadMedia(ctx context.Context, path string) (*MediaRef, error) {
	if !f.authed {
		return nil, notAuthenticated(f.Platform())
	}

	img, err := os.Open(path)
	if err != nil {
		return nil, &MediaUploadError{Platform: f.Platform(), Err: err}
	}
	defer img.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := createFilePart(w, "source", path)
	if err != nil {
		return nil, &MediaUploadError{Platform: f.Platform(), Err: err}
	}
	if _, err := io.Copy(part, img); err != nil {
		return nil, &MediaUploadError{Platform: f.Platform(), Err: err}
	}
	_ = w.WriteField("access_token", f.accessToken)
	_ = w.WriteField("published", "false")
	if err := w.Close(); err != nil {
		return nil, &MediaUploadError{Platform: f.Platform(), Err: err}
	}

	url := fmt.Sprintf("%s/%s/photos", f.baseURL, f.pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, &MediaUploadError{Platform: f.Platform(), Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := f.media.Do(req)
	if err != nil {
		return nil, &MediaUploadError{Platform: f.Platform(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &MediaUploadError{Platform: f.Platform(), Err: statusError("graph photos", resp)}
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return nil, &MediaUploadError{Platform: f.Platform(), Err: err}
	}

	f.log.Info("facebook photo uploaded", zap.String("photo_id", result.ID))
	return &MediaRef{ID: result.ID}, nil
}

// Publish creates the feed post. With media it references the uploaded photo
// via attached_media; without media it posts the text directly.
func (f *Facebook) Publish(ctx context.Context, text, _ string, media *MediaRef) (string, error) {
	if !f.authed {
		return "", notAuthenticated(f.Platform())
	}

	payload := map[string]any{
		"access_token": f.accessToken,
		"message":      text,
	}
	if media != nil {
		payload["attached_media"] = []map[string]string{{"media_fbid": media.ID}}
	}

	url := fmt.Sprintf("%s/%s/feed", f.baseURL, f.pageID)
	id, err := f.postJSON(ctx, url, payload)
	if err != nil {
		return "", &PublishError{Platform: f.Platform(), Err: err}
	}

	f.log.Info("facebook post created", zap.String("post_id", id), zap.Bool("has_image", media != nil))
	return id, nil
}

// Reply attaches a comment to an existing post.
func (f *Facebook) Reply(ctx context.Context, postID, text string) (string, error) {
	if !f.authed {
		return "", notAuthenticated(f.Platform())
	}

	url := fmt.Sprintf("%s/%s/comments", f.baseURL, postID)
	id, err := f.postJSON(ctx, url, map[string]any{
		"access_token": f.accessToken,
		"message":      text,
	})
	if err != nil {
		return "", &PublishError{Platform: f.Platform(), Err: err}
	}

	f.log.Info("facebook comment created", zap.String("comment_id", id))
	return id, nil
}

func (f *Facebook) postJSON(ctx context.Context, url string, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.text.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError("graph feed", resp)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// createFilePart adds a file form part whose content type is derived from
// the file extension.
func createFilePart(w *multipart.Writer, field, path string) (io.Writer, error) {
	ctype := mime.TypeByExtension(filepath.Ext(path))
	if ctype == "" {
		ctype = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(path)))
	h.Set("Content-Type", ctype)
	return w.CreatePart(h)
}
