package provider

import "fmt"

// ConfigurationError signals a missing required credential or client
// identifier. Fatal, never retried, surfaced verbatim to the caller.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// AuthError signals an OAuth exchange or token failure. Fatal for the
// current operation; the session is left disconnected.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth error: %s: %v", e.Reason, e.Err)
	}
	return "auth error: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// QueryError is a single failed scan-query tier. Always caught inside
// the adapter: it is logged and the next fallback tier runs.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q failed: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// DraftError is a single failed draft creation. Non-fatal to a batch:
// the orchestrator records it per item and moves on.
type DraftError struct {
	Reason string
	Err    error
}

func (e *DraftError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("draft creation failed: %s: %v", e.Reason, e.Err)
	}
	return "draft creation failed: " + e.Reason
}

func (e *DraftError) Unwrap() error { return e.Err }
