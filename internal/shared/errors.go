package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authorization errors
	ErrListenerBind        = fmt.Errorf("loopback listener bind failed")
	ErrAuthorizationDenied = fmt.Errorf("authorization denied")
	ErrStateMismatch       = fmt.Errorf("state parameter mismatch")
	ErrMissingToken        = fmt.Errorf("access token missing from redirect")
	ErrUnauthorized        = fmt.Errorf("access token rejected")
	ErrTimeout             = fmt.Errorf("operation timed out")

	// API and fetch errors
	ErrAPIRequest      = fmt.Errorf("API request failed")
	ErrFetchExhausted  = fmt.Errorf("retry budget exhausted")
	ErrMalformedPage   = fmt.Errorf("malformed page")
	ErrPaginationLoop  = fmt.Errorf("next page link already fetched")
	ErrUnsupportedType = fmt.Errorf("unsupported output format")

	// Storage errors
	ErrRunNotFound  = fmt.Errorf("backup run not found")
	ErrNoMigrations = fmt.Errorf("no migrations to roll back")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
