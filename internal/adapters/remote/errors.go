package remote

import (
	"fmt"
	"net/http"
)

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
}
