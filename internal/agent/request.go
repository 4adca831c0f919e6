package agent

import (
	"strings"
	"time"
)

// Platform identifies the social platform a piece of content targets.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformUnknown   Platform = "unknown"
)

// ParsePlatform maps free-form input to a known platform.
// Unknown values degrade to PlatformUnknown rather than an error.
func ParsePlatform(s string) Platform {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformInstagram:
		return PlatformInstagram
	case PlatformYouTube:
		return PlatformYouTube
	case PlatformTwitter:
		return PlatformTwitter
	case PlatformLinkedIn:
		return PlatformLinkedIn
	default:
		return PlatformUnknown
	}
}

func (p Platform) String() string {
	return string(p)
}

// Request carries one analysis request through the pipeline.
//
// It is owned by a single orchestrator invocation and never shared across
// requests. Observations grows monotonically while capabilities run and is
// not mutated once reasoning begins.
type Request struct {
	UserID    string
	Platform  Platform
	Image     []byte
	Text      string
	SourceURL string
	CreatedAt time.Time

	// Observations holds per-capability results keyed by capability name.
	Observations map[string]Result
}

// NewRequest builds a request with an initialized observations map.
func NewRequest(userID string, platform Platform) *Request {
	return &Request{
		UserID:       userID,
		Platform:     platform,
		CreatedAt:    time.Now().UTC(),
		Observations: make(map[string]Result),
	}
}

// HasImage reports whether an image payload is attached.
func (r *Request) HasImage() bool {
	return len(r.Image) > 0
}

// HasText reports whether a text payload is attached.
func (r *Request) HasText() bool {
	return strings.TrimSpace(r.Text) != ""
}

// Observation returns the recorded result for a capability name.
func (r *Request) Observation(name string) (Result, bool) {
	res, ok := r.Observations[name]
	return res, ok
}
