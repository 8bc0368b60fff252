package spotify

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotAuthenticated means there is no usable credential for the user.
// Callers are expected to send the user through the authorize flow rather
// than surface this as a hard failure.
var ErrNotAuthenticated = errors.New("spotify: not authenticated")

// StatusError is a non-2xx response from the Spotify Web API.
type StatusError struct {
	Code     int
	Endpoint string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spotify: %s returned status %d", e.Endpoint, e.Code)
}

// Temporary reports whether the request is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code/100 == 5
}

// IsAuthError reports whether err should send the user back through the
// authorize flow.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden)
}
