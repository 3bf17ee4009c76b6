package adapters

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoAdapterAvailable is returned when no enabled adapter passes its
// availability probe at selection time.
var ErrNoAdapterAvailable = errors.New("no adapter available")

// InvocationError wraps a single failed adapter call (network error,
// timeout, malformed payload). The router recovers from it by moving to
// the next candidate.
type InvocationError struct {
	Adapter string
	Err     error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("adapter %s: %v", e.Adapter, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// AllAdaptersFailedError is surfaced when every enabled adapter was tried
// and failed. Attempts holds one entry per adapter in the order attempted.
type AllAdaptersFailedError struct {
	Attempts []*InvocationError
}

func (e *AllAdaptersFailedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return fmt.Sprintf("all adapters failed: [%s]", strings.Join(parts, "; "))
}
