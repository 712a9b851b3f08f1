package llm

import "fmt"

// GenerationError reports a failed completion request. StatusCode is set when
// the provider answered with a non-200 status.
type GenerationError struct {
	Provider   Provider
	Model      string
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s/%s: status %d: %v", e.Provider, e.Model, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s/%s: %v", e.Provider, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
