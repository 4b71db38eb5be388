package models

// AppInfo describes the mobile app a campaign advertises. Loaded from the
// app template store at startup and treated as read-only by the pipeline.
type AppInfo struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	KeyFeatures    []string `json:"key_features"`
	GameGuide      string   `json:"game_guide"`
	TargetAudience string   `json:"target_audience"`
	AppURL         string   `json:"app_url"`
	IconPath       string   `json:"icon_path,omitempty"`
	Screenshots    []string `json:"screenshots,omitempty"`
}
