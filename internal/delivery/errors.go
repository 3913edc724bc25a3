package delivery

import (
	"errors"
	"fmt"
)

var (
	// ErrAllStrategiesFailed is returned when no tier, local queue included, accepted a lead.
	ErrAllStrategiesFailed = errors.New("delivery: all strategies failed")

	// ErrNoStrategies is returned when a pipeline is built without any delivery tier.
	ErrNoStrategies = errors.New("delivery: no strategies configured")
)

// StatusError is a non-2xx response from a webhook endpoint.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("delivery: %s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("delivery: %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}
