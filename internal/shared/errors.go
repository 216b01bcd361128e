package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed     = fmt.Errorf("authentication failed")
	ErrStateMismatch  = fmt.Errorf("authorization state mismatch")
	ErrTokenExpired   = fmt.Errorf("access token expired")
	ErrReauthRequired = fmt.Errorf("reauthorization required")
	ErrTimeout        = fmt.Errorf("operation timed out")

	// Extraction errors
	ErrFetchFailed   = fmt.Errorf("failed to fetch source page")
	ErrMissingData   = fmt.Errorf("playlist data not found on page")
	ErrMalformedData = fmt.Errorf("malformed playlist data")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
