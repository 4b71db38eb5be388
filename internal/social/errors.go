package social

import (
	"fmt"

	"github.com/adforge/backend/internal/models"
)

// AuthError means credentials are missing or the identity provider rejected
// them. Fatal for the adapter instance; never retried.
type AuthError struct {
	Platform models.Platform
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authentication: %v", e.Platform, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// MediaUploadError wraps any failure at the binary-upload step: missing file,
// timeout, connection failure or a non-2xx status.
type MediaUploadError struct {
	Platform models.Platform
	Err      error
}

func (e *MediaUploadError) Error() string {
	return fmt.Sprintf("%s media upload: %v", e.Platform, e.Err)
}

func (e *MediaUploadError) Unwrap() error { return e.Err }

// PublishError wraps any failure while creating the primary post or a reply.
type PublishError struct {
	Platform models.Platform
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s publish: %v", e.Platform, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

func notAuthenticated(p models.Platform) *AuthError {
	return &AuthError{Platform: p, Err: fmt.Errorf("not authenticated, call Authenticate first")}
}
