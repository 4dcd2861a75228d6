package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("resource not found")
	ErrBookNotFound       = fmt.Errorf("book not found")
	ErrContentNotFound    = fmt.Errorf("book has no stored text")
	ErrAssistantFailed    = fmt.Errorf("assistant request failed")

	// Reader errors
	ErrNoSelection  = fmt.Errorf("no text selected")
	ErrNotOnShelf   = fmt.Errorf("book is not on the shelf")
	ErrUnknownTheme = fmt.Errorf("unknown theme")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
