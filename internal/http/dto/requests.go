package dto

import "github.com/adforge/backend/internal/models"

// GenerateCampaignRequest starts a generation run. Either an inline app
// profile or the slug of a stored one must be given. Empty platforms means
// every supported platform.
type GenerateCampaignRequest struct {
	AppSlug    string          `json:"app_slug,omitempty"`
	App        *models.AppInfo `json:"app,omitempty"`
	Platforms  []string        `json:"platforms,omitempty"`
	WithImages bool            `json:"with_images"`
}

type SaveAppRequest struct {
	App models.AppInfo `json:"app"`
}

type ImportAppRequest struct {
	StoreURL string `json:"store_url"`
}
