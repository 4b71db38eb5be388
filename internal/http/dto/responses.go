package dto

import "github.com/adforge/backend/internal/models"

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// CampaignResponse flattens a campaign record for the API; the stored file
// holds only the per-platform map, the ID lives in the file name.
type CampaignResponse struct {
	ID  string                              `json:"id"`
	Ads map[models.Platform]*models.AdContent `json:"ads"`
}

func NewCampaignResponse(c *models.Campaign) CampaignResponse {
	return CampaignResponse{ID: c.ID, Ads: c.Ads}
}

type PlatformInfo struct {
	Name         string `json:"name"`
	MaxChars     int    `json:"max_chars"`
	HashtagLimit int    `json:"hashtag_limit"`
	ImageWidth   int    `json:"image_width"`
	ImageHeight  int    `json:"image_height"`
	AspectRatio  string `json:"aspect_ratio"`
}
