package agent

import (
	"context"
)

// Capability is a named, independently invokable unit of analysis.
//
// Implementations must respect context cancellation: once the context is
// done the invocation is considered abandoned and its result, if any, is
// discarded by the caller. Implementations must not write to shared state
// after that point.
type Capability interface {
	// Name identifies the capability. Observations are keyed by it.
	Name() string

	// Invoke runs the analysis against the request.
	// A degraded outcome (skipped, failed) is expressed through the Result;
	// the error return is reserved for invocation-level failures such as a
	// missing dependency.
	Invoke(ctx context.Context, req *Request) (Result, error)
}

// ResultKind tags the outcome of one capability invocation.
type ResultKind string

const (
	ResultAnalyzed ResultKind = "analyzed"
	ResultSkipped  ResultKind = "skipped"
	ResultFailed   ResultKind = "failed"
)

// Result is the outcome of invoking one Capability for one request.
// Exactly one of Data/Reason/Err is meaningful, selected by Kind.
type Result struct {
	Kind ResultKind

	// Data holds the capability's keyed findings when Kind is ResultAnalyzed.
	Data map[string]any

	// ConfidenceHint is an optional self-assessment ("High", "Medium", ...).
	ConfidenceHint string

	// Reason explains a skip when Kind is ResultSkipped.
	Reason string

	// Err holds the failure when Kind is ResultFailed.
	Err error
}

// Analyzed builds a successful result.
func Analyzed(data map[string]any, confidenceHint string) Result {
	return Result{Kind: ResultAnalyzed, Data: data, ConfidenceHint: confidenceHint}
}

// Skipped builds a result for a capability that chose not to run.
func Skipped(reason string) Result {
	return Result{Kind: ResultSkipped, Reason: reason}
}

// Failed builds a result for a capability that ran and failed.
func Failed(err error) Result {
	return Result{Kind: ResultFailed, Err: err}
}

// IsAnalyzed reports whether the capability produced findings.
func (r Result) IsAnalyzed() bool {
	return r.Kind == ResultAnalyzed
}

// String returns a stable value from Data, or empty string.
func (r Result) String(key string) string {
	if s, ok := r.Data[key].(string); ok {
		return s
	}
	return ""
}

// Int returns an integer value from Data, tolerating float64 from JSON
// round-trips. Returns 0 when absent.
func (r Result) Int(key string) int {
	switch v := r.Data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns a boolean value from Data, or false.
func (r Result) Bool(key string) bool {
	if b, ok := r.Data[key].(bool); ok {
		return b
	}
	return false
}

// Strings returns a string-slice value from Data, tolerating []any.
func (r Result) Strings(key string) []string {
	switch v := r.Data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Map returns a nested map value from Data, or nil.
func (r Result) Map(key string) map[string]any {
	if m, ok := r.Data[key].(map[string]any); ok {
		return m
	}
	return nil
}
