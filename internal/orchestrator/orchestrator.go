package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/advisord/internal/agent"
	"github.com/fyrsmithlabs/advisord/internal/history"
	"github.com/fyrsmithlabs/advisord/internal/logging"
	"github.com/fyrsmithlabs/advisord/internal/memory"
	"github.com/fyrsmithlabs/advisord/internal/patterns"
	"github.com/fyrsmithlabs/advisord/internal/strategy"
)

// Narrator optionally rewrites the decision explanation for the creator.
// The pipeline proceeds without it when unavailable.
type Narrator interface {
	Available() bool
	Narrate(ctx context.Context, verdict string, advice []string) (string, error)
}

// Options tune the pipeline.
type Options struct {
	// ParallelTimeout bounds the whole OBSERVE fan-out.
	ParallelTimeout time.Duration

	// WindowLimit caps how much history UNDERSTAND reads.
	WindowLimit int
}

func (o *Options) defaults() {
	if o.ParallelTimeout <= 0 {
		o.ParallelTimeout = 30 * time.Second
	}
	if o.WindowLimit <= 0 {
		o.WindowLimit = 100
	}
}

// Orchestrator runs the request pipeline.
type Orchestrator struct {
	registry *agent.Registry
	store    history.Store
	engine   *patterns.Engine
	synth    *strategy.Synthesizer
	memory   *memory.Memory
	narrator Narrator
	router   *agent.Router
	logger   *logging.Logger
	opts     Options
}

// New wires the pipeline components together.
func New(
	registry *agent.Registry,
	store history.Store,
	engine *patterns.Engine,
	synth *strategy.Synthesizer,
	mem *memory.Memory,
	logger *logging.Logger,
	opts Options,
) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	opts.defaults()

	o := &Orchestrator{
		registry: registry,
		store:    store,
		engine:   engine,
		synth:    synth,
		memory:   mem,
		logger:   logger.Named("orchestrator"),
		opts:     opts,
	}
	o.router = o.buildRouter()
	return o
}

// SetNarrator installs an optional narrative polisher.
func (o *Orchestrator) SetNarrator(n Narrator) {
	o.narrator = n
}

// RunFull executes every phase. The only hard failure is a missing user id;
// everything else degrades into the decision.
func (o *Orchestrator) RunFull(ctx context.Context, req *agent.Request) (*Response, error) {
	if req.UserID == "" {
		return nil, ErrMissingUserID
	}

	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)
	ctx = logging.WithUserID(ctx, req.UserID)

	state := StateCreated
	o.logger.Info(ctx, "pipeline started",
		zap.String("state", string(state)),
		zap.String("platform", string(req.Platform)),
		zap.Bool("has_image", req.HasImage()),
		zap.Bool("has_text", req.HasText()),
	)

	state = StateObserving
	o.observe(ctx, req)

	state = StateUnderstanding
	summary := o.understand(ctx, req.UserID)

	state = StateReasoning
	decision := o.synth.Decide(ctx, req.Observations, summary, req.Platform)

	state = StateAdvising
	narrative := o.narrate(ctx, decision)

	state = StateRemembered
	o.memory.Store(ctx, req.UserID, req.Observations, decision, contextSummary(req))

	state = StateDone
	o.logger.Info(ctx, "pipeline finished",
		zap.String("state", string(state)),
		zap.String("verdict", decision.Verdict),
		zap.Int("score", decision.Score),
	)

	return &Response{
		RequestID:      requestID,
		UserID:         req.UserID,
		Platform:       string(req.Platform),
		Observations:   summarizeObservations(req.Observations),
		Decision:       decision,
		Narrative:      narrative,
		MemoryPatterns: o.memory.UserPatterns(ctx, req.UserID),
	}, nil
}

// RunQuick skips UNDERSTAND and REMEMBER for low-latency feedback.
func (o *Orchestrator) RunQuick(ctx context.Context, req *agent.Request) (*Response, error) {
	if req.UserID == "" {
		return nil, ErrMissingUserID
	}

	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)
	ctx = logging.WithUserID(ctx, req.UserID)

	o.observe(ctx, req)
	decision := o.synth.Decide(ctx, req.Observations, patterns.Summary{}, req.Platform)

	return &Response{
		RequestID:    requestID,
		UserID:       req.UserID,
		Platform:     string(req.Platform),
		Observations: summarizeObservations(req.Observations),
		Decision:     decision,
	}, nil
}

// observe fans out the applicable capabilities and collects their results
// into the request's observation map. Branch failures become degraded
// observations; nothing is written from inside a branch.
func (o *Orchestrator) observe(ctx context.Context, req *agent.Request) {
	parallel := agent.NewParallel(o.logger)

	launch := func(name string) {
		c, ok := o.registry.Get(name)
		if !ok {
			req.Observations[name] = agent.Failed(
				&agent.CapabilityError{Capability: name, Err: agent.ErrCapabilityUnavailable})
			return
		}
		parallel.Add(name, func(ctx context.Context, state map[string]any) (map[string]any, error) {
			res, err := c.Invoke(ctx, req)
			if err != nil {
				return nil, err
			}
			return map[string]any{"result": res}, nil
		})
	}

	launched := 0
	if req.HasImage() {
		launch("vision")
		launched++
	}
	if req.HasText() {
		launch("content")
		launched++
	}
	if launched == 0 {
		return
	}

	outcome := parallel.Run(ctx, nil, o.opts.ParallelTimeout)

	for name, branch := range outcome.Results {
		if res, ok := branch["result"].(agent.Result); ok {
			req.Observations[name] = res
		}
	}
	for _, branchErr := range outcome.Errors {
		req.Observations[branchErr.Name] = agent.Failed(
			&agent.CapabilityError{Capability: branchErr.Name, Err: fmt.Errorf("%s", branchErr.Err)})
		o.logger.Warn(ctx, "capability degraded",
			zap.String("capability", branchErr.Name),
			zap.String("error", branchErr.Err),
		)
	}
}

// understand reads the user's recent content and summarizes its patterns.
// A store failure yields an empty summary, never an error.
func (o *Orchestrator) understand(ctx context.Context, userID string) patterns.Summary {
	items, err := o.store.RecentContent(ctx, userID, o.opts.WindowLimit)
	if err != nil {
		o.logger.Warn(ctx, "history lookup failed", zap.Error(err))
		return patterns.Summary{}
	}
	return o.engine.Summarize(ctx, items)
}

func (o *Orchestrator) narrate(ctx context.Context, decision strategy.Decision) string {
	if o.narrator == nil || !o.narrator.Available() {
		return ""
	}
	narrative, err := o.narrator.Narrate(ctx, decision.Verdict, decision.Advice)
	if err != nil {
		o.logger.Warn(ctx, "narration unavailable", zap.Error(err))
		return ""
	}
	return narrative
}

// Route dispatches a free-text question to the best-matching handler.
func (o *Orchestrator) Route(ctx context.Context, userID, text string) (map[string]any, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	ctx = logging.WithUserID(ctx, userID)
	return o.router.Route(ctx, text, map[string]any{"user_id": userID})
}

func (o *Orchestrator) buildRouter() *agent.Router {
	r := agent.NewRouter(o.logger)

	r.Register("growth",
		func(ctx context.Context, query string, state map[string]any) (map[string]any, error) {
			userID, _ := state["user_id"].(string)
			summary := o.understand(ctx, userID)
			if !summary.HasData {
				return map[string]any{
					"intent":  "growth",
					"message": "I don't have enough history to analyze your growth yet. Keep posting!",
				}, nil
			}
			return map[string]any{
				"intent":         "growth",
				"trend":          summary.Trend,
				"change_percent": summary.ChangePercent,
				"insights":       summary.Insights,
				"recommendation": summary.Diagnosis.Recommendation,
			}, nil
		},
		[]string{"grow", "followers", "engagement", "reach", "trend"}, 1)

	r.Register("content",
		func(ctx context.Context, query string, state map[string]any) (map[string]any, error) {
			userID, _ := state["user_id"].(string)
			req := agent.NewRequest(userID, agent.PlatformUnknown)
			req.Text = query

			c, ok := o.registry.Get("content")
			if !ok {
				return nil, &agent.CapabilityError{Capability: "content", Err: agent.ErrCapabilityUnavailable}
			}
			res, err := c.Invoke(ctx, req)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"intent":      "content",
				"score":       res.Int("score"),
				"suggestions": res.Strings("suggestions"),
			}, nil
		},
		[]string{"caption", "post", "write", "hook"}, 0)

	r.SetDefault(func(ctx context.Context, query string, state map[string]any) (map[string]any, error) {
		return map[string]any{
			"intent":  "help",
			"message": "Ask me about your growth, or share a caption and I'll review it.",
		}, nil
	})

	return r
}

func summarizeObservations(observations map[string]agent.Result) map[string]string {
	out := make(map[string]string, len(observations))
	for name, res := range observations {
		if !res.IsAnalyzed() {
			out[name] = "not analyzed"
			continue
		}
		switch name {
		case "vision":
			out[name] = res.String("risk")
		case "content":
			out[name] = res.String("hook_strength")
		default:
			out[name] = "analyzed"
		}
	}
	return out
}

func contextSummary(req *agent.Request) string {
	if !req.HasText() {
		return fmt.Sprintf("%s: image only", req.Platform)
	}
	text := []rune(req.Text)
	if len(text) > 50 {
		text = text[:50]
	}
	return fmt.Sprintf("%s: %s", req.Platform, string(text))
}
