package agent

import (
	"errors"
	"fmt"
)

// Errors for pipeline execution.
var (
	// ErrCapabilityUnavailable means a capability's dependency is missing or
	// misconfigured. Absorbed at the orchestrator boundary.
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrCapabilityTimeout means an invocation exceeded its deadline and was
	// abandoned.
	ErrCapabilityTimeout = errors.New("capability timed out")

	// ErrNoMatchingCapability is returned by the router when no candidate
	// scores above zero and no default handler is configured.
	ErrNoMatchingCapability = errors.New("no matching capability")
)

// CapabilityError wraps a failure from a named capability.
type CapabilityError struct {
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability %s: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}
