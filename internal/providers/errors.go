package providers

import (
	"errors"
	"fmt"
)

// ErrNoChoices is returned when a completion response carries no choice.
var ErrNoChoices = errors.New("empty choices in response")

// ErrMalformedContent is returned when the first choice's message content is
// missing, null or not a string.
var ErrMalformedContent = errors.New("message content is not a string")

// HTTPError is returned when the completion endpoint answers with a
// non-success status.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}
