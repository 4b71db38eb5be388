package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ImageClient calls the predict endpoint of an image model and returns raw
// image bytes.
type ImageClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

func NewImageClient(baseURL, model, apiKey string, log *zap.Logger) *ImageClient {
	return &ImageClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: log,
	}
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

// GenerateImage requests one image at the given aspect ratio.
func (c *ImageClient) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("imagen client misconfigured: missing api key")
	}

	body, err := json.Marshal(map[string]any{
		"instances": []map[string]string{{"prompt": prompt}},
		"parameters": map[string]any{
			"sampleCount": 1,
			"aspectRatio": aspectRatio,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal imagen payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:predict", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("imagen error %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var parsed predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode imagen response: %w", err)
	}
	if len(parsed.Predictions) == 0 {
		return nil, fmt.Errorf("no image was generated")
	}

	data, err := base64.StdEncoding.DecodeString(parsed.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("decode image bytes: %w", err)
	}

	c.log.Debug("image generated", zap.Int("bytes", len(data)))
	return data, nil
}
