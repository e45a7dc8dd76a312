package service

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches a ProviderFault for an unknown city.
	ErrNotFound    = errors.New("city not found")
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// NetworkFault is a transport failure where no response was received.
type NetworkFault struct {
	Op  string
	Err error
}

func (e *NetworkFault) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkFault) Unwrap() error {
	return e.Err
}

// ProviderFault is a non-2xx provider response. Message comes from the
// top-level "message" field, Detail from a nested "error.message".
type ProviderFault struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *ProviderFault) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Message
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, msg)
}

func (e *ProviderFault) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

func (e *ProviderFault) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
