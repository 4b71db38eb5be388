package events

import "context"

// Event types
const (
	EventCampaignGenerated = "campaign_generated"
	EventPostingStarted    = "posting_started"
	EventPostingProgress   = "posting_progress"
	EventPostingFinished   = "posting_finished"
	EventCampaignDeleted   = "campaign_deleted"
)

// StreamPosting carries campaign lifecycle events to dashboard subscribers.
const StreamPosting = "posting"

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
