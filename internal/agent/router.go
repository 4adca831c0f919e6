package agent

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/advisord/internal/logging"
)

// HandlerFunc processes a routed query.
type HandlerFunc func(ctx context.Context, query string, state map[string]any) (map[string]any, error)

type route struct {
	name     string
	keywords []string
	priority int
	fn       HandlerFunc
}

// Router selects a capability for free-text input by keyword scoring.
//
// Scoring: a candidate's score is the count of its keywords present in the
// input (case-insensitive substring match). Zero-score candidates are
// excluded. Ties break on priority, then registration order.
type Router struct {
	routes   []route
	fallback HandlerFunc
	logger   *logging.Logger
}

// NewRouter creates an empty router.
func NewRouter(logger *logging.Logger) *Router {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Router{logger: logger.Named("router")}
}

// Register adds a handler with its routing keywords.
// Returns the router for fluent construction.
func (r *Router) Register(name string, fn HandlerFunc, keywords []string, priority int) *Router {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	r.routes = append(r.routes, route{
		name:     name,
		keywords: lowered,
		priority: priority,
		fn:       fn,
	})
	return r
}

// SetDefault installs the handler used when no candidate matches.
func (r *Router) SetDefault(fn HandlerFunc) *Router {
	r.fallback = fn
	return r
}

// Detect returns the best-matching route name for the query.
// The second return is false when nothing scored above zero.
func (r *Router) Detect(query string) (string, bool) {
	lowered := strings.ToLower(query)

	type match struct {
		name     string
		score    int
		priority int
	}

	var matches []match
	for _, rt := range r.routes {
		score := 0
		for _, kw := range rt.keywords {
			if strings.Contains(lowered, kw) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, match{name: rt.name, score: score, priority: rt.priority})
		}
	}

	if len(matches) == 0 {
		return "", false
	}

	// Stable sort keeps registration order as the final tie-break.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].priority > matches[j].priority
	})

	return matches[0].name, true
}

// Route dispatches the query to the best-matching handler, the default
// handler when nothing matches, or ErrNoMatchingCapability when neither
// exists.
func (r *Router) Route(ctx context.Context, query string, state map[string]any) (map[string]any, error) {
	name, ok := r.Detect(query)
	if !ok {
		if r.fallback != nil {
			r.logger.Debug(ctx, "routing to default handler")
			return r.fallback(ctx, query, state)
		}
		return nil, ErrNoMatchingCapability
	}

	r.logger.Debug(ctx, "routed query", zap.String("capability", name))

	for _, rt := range r.routes {
		if rt.name == name {
			return rt.fn(ctx, query, state)
		}
	}

	return nil, ErrNoMatchingCapability
}
