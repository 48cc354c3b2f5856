package pokeapi

import (
	"fmt"
	"net/http"
)

// FetchError reports a request that failed after the retry policy was
// exhausted, or that failed fast on a non-transient status.
type FetchError struct {
	URL        string
	StatusCode int // 0 when the failure was a network error or timeout
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d after %d attempt(s)", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: %v after %d attempt(s)", e.URL, e.Err, e.Attempts)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the failure was a plain 404.
func (e *FetchError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}
