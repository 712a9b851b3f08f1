package airtable

import "fmt"

// UpstreamFetchError reports a failed page fetch. Page is 0-based; StatusCode
// is 0 when no response was received.
type UpstreamFetchError struct {
	Page       int
	StatusCode int
	Err        error
}

func (e *UpstreamFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch page %d: status %d: %v", e.Page, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch page %d: %v", e.Page, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}
