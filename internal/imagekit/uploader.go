// Package imagekit hosts local image files on ImageKit and returns public
// URLs. Instagram's Graph API only ingests images it can fetch over HTTPS,
// so locally generated creatives go through here first.
package imagekit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultUploadURL = "https://upload.imagekit.io/api/v1/files/upload"

type Uploader struct {
	privateKey string
	uploadURL  string
	client     *resty.Client
	log        *zap.Logger
}

func NewUploader(privateKey, uploadURL string, log *zap.Logger) *Uploader {
	if uploadURL == "" {
		uploadURL = DefaultUploadURL
	}
	return &Uploader{
		privateKey: privateKey,
		uploadURL:  uploadURL,
		client:     resty.New().SetTimeout(60 * time.Second),
		log:        log,
	}
}

type uploadResponse struct {
	URL    string `json:"url"`
	FileID string `json:"fileId"`
}

// Upload pushes the file and returns its public URL. The private key doubles
// as the basic-auth username with an empty password.
func (u *Uploader) Upload(ctx context.Context, path, name string, tags []string) (string, error) {
	if u.privateKey == "" {
		return "", fmt.Errorf("imagekit uploader misconfigured: missing private key")
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	if name == "" {
		name = filepath.Base(path)
	}

	var parsed uploadResponse
	resp, err := u.client.R().
		SetContext(ctx).
		SetBasicAuth(u.privateKey, "").
		SetFileReader("file", name, f).
		SetFormData(map[string]string{
			"fileName": name,
			"tags":     strings.Join(tags, ","),
		}).
		SetResult(&parsed).
		Post(u.uploadURL)
	if err != nil {
		return "", fmt.Errorf("upload to imagekit: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("imagekit error %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("imagekit response has no url")
	}

	u.log.Info("image hosted", zap.String("file", name), zap.String("url", parsed.URL))
	return parsed.URL, nil
}
