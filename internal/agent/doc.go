// Package agent provides the composition primitives for the analysis
// pipeline: the Capability contract, the per-request context, and the
// generic chain, fan-out, and routing executors.
//
// Capabilities are independent, unreliable units of analysis (vision,
// content, ...). The executors give any sequence of them retry, timeout,
// and partial-failure semantics without knowing what the capabilities do.
// A failed capability never fails a request; it degrades into an
// observation the decision layer can reason about.
package agent
