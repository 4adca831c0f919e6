// Package capability provides the concrete analysis capabilities wired into
// the pipeline: caption heuristics, image signal extraction, and an optional
// LLM-backed narrative polisher.
package capability
