package remote

import (
	"fmt"
)

// LoadFailure reports a failed fetch: a non-success status or a transport
// or read error. It is terminal; the client never retries.
type LoadFailure struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *LoadFailure) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("loading %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("loading %s: %v", e.URL, e.Cause)
}

func (e *LoadFailure) Unwrap() error {
	return e.Cause
}

// SaveFailure reports a failed upload: a non-success status or a transport
// error.
type SaveFailure struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *SaveFailure) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("saving %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("saving %s: %v", e.URL, e.Cause)
}

func (e *SaveFailure) Unwrap() error {
	return e.Cause
}
