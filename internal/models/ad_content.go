package models

import (
	"fmt"
	"time"
)

// Posting statuses recorded after an adapter run.
const (
	PostingStatusPosted = "posted"
	PostingStatusFailed = "failed"
)

// ErrorDetails captures the last posting failure for a platform, surfaced
// verbatim on the dashboard.
type ErrorDetails struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AdContent is one generated ad for one platform. The generator fills the
// creative fields, the image generator fills ImagePath, and posting enriches
// the record with PostTime/PostingStatus/ErrorDetails/Progress.
type AdContent struct {
	Platform                  Platform      `json:"platform"`
	AppURL                    string        `json:"app_url"`
	Headline                  string        `json:"headline"`
	BodyText                  string        `json:"body_text"`
	Hashtags                  []string      `json:"hashtags"`
	CallToAction              string        `json:"call_to_action"`
	SuggestedImageDescription string        `json:"suggested_image_description"`
	Timestamp                 string        `json:"timestamp"`
	ImagePath                 string        `json:"image_path"`
	PostTime                  string        `json:"post_time,omitempty"`
	PostingStatus             string        `json:"posting_status,omitempty"`
	ErrorDetails              *ErrorDetails `json:"error_details,omitempty"`
	Progress                  []string      `json:"progress,omitempty"`
}

// Trace appends a step to the posting progress log.
func (a *AdContent) Trace(format string, args ...any) {
	a.Progress = append(a.Progress, fmt.Sprintf(format, args...))
}

// Campaign is one generation run: a mapping from platform to its AdContent,
// persisted as a single JSON document named after the creation timestamp.
// A platform key being present implies generation succeeded for it.
type Campaign struct {
	ID  string                 `json:"-"`
	Ads map[Platform]*AdContent `json:"-"`
}

// CampaignIDPrefix and CampaignIDTimeLayout define the on-disk naming scheme
// (ads_YYYYMMDD_HHMMSS.json).
const (
	CampaignIDPrefix       = "ads_"
	CampaignIDTimeLayout   = "20060102_150405"
	ContentTimestampLayout = time.RFC3339
)

// NewCampaignID derives a campaign identifier from its creation time.
func NewCampaignID(t time.Time) string {
	return CampaignIDPrefix + t.Format(CampaignIDTimeLayout)
}

// Platforms returns the record's platform keys in the canonical order.
func (c *Campaign) Platforms() []Platform {
	var out []Platform
	for _, p := range AllPlatforms() {
		if _, ok := c.Ads[p]; ok {
			out = append(out, p)
		}
	}
	return out
}
