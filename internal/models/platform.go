package models

import "fmt"

// Platform is the closed set of social networks the service can publish to.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformBluesky   Platform = "bluesky"
)

// AllPlatforms returns every supported platform in stable order.
func AllPlatforms() []Platform {
	return []Platform{PlatformFacebook, PlatformInstagram, PlatformTwitter, PlatformBluesky}
}

// ParsePlatform maps a user-supplied name onto the closed platform set.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformFacebook, PlatformInstagram, PlatformTwitter, PlatformBluesky:
		return Platform(s), nil
	}
	return "", fmt.Errorf("unsupported platform %q", s)
}

func (p Platform) String() string {
	return string(p)
}
