package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/advisord/internal/logging"
)

// StepFunc executes one chain step against the accumulated shared state.
// The state passed in includes every prior step's output under that step's
// name; the returned map becomes this step's contribution.
type StepFunc func(ctx context.Context, state map[string]any) (map[string]any, error)

// Step is a single named step in a Chain.
type Step struct {
	Name     string
	Run      StepFunc
	Required bool

	// Timeout bounds a single attempt. Zero means no per-step deadline.
	Timeout time.Duration

	// Attempts is the total number of tries, including the first.
	// Values below 1 are treated as 1. Retries are immediate: a timeout
	// usually means a slow but live dependency, not a systemic outage.
	Attempts int

	// Transform optionally rewrites the step output before it is merged
	// into shared state.
	Transform func(map[string]any) map[string]any
}

// StepResult captures the outcome of one executed step.
type StepResult struct {
	Name    string
	Success bool
	Output  map[string]any
	Err     string
}

// ChainResult is the outcome of running a chain.
type ChainResult struct {
	Success bool

	// Final is the merged shared state after the last executed step.
	Final map[string]any

	// Steps holds per-step outcomes in execution order. Steps skipped by a
	// halt are absent.
	Steps []StepResult

	Errors  []string
	Elapsed time.Duration
}

// Chain runs named steps strictly in order, threading an accumulating
// shared-state map from step to step.
type Chain struct {
	name   string
	steps  []Step
	logger *logging.Logger
}

// NewChain creates an empty chain.
func NewChain(name string, logger *logging.Logger) *Chain {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Chain{
		name:   name,
		logger: logger.Named("chain"),
	}
}

// AddStep appends a step. Returns the chain for fluent construction.
func (c *Chain) AddStep(step Step) *Chain {
	c.steps = append(c.steps, step)
	return c
}

// Run executes all steps in sequence.
//
// Each step's output is merged into shared state under the step's name
// before the next step runs. A failing step is recorded in the error list;
// it halts the chain only when it is required and stopOnError is set.
func (c *Chain) Run(ctx context.Context, initial map[string]any, stopOnError bool) ChainResult {
	start := time.Now()

	result := ChainResult{Success: true}

	state := make(map[string]any, len(initial)+len(c.steps))
	for k, v := range initial {
		state[k] = v
	}

	for _, step := range c.steps {
		output, err := c.executeStep(ctx, step, state)
		if err != nil {
			result.Steps = append(result.Steps, StepResult{
				Name:    step.Name,
				Success: false,
				Err:     err.Error(),
			})
			result.Errors = append(result.Errors, fmt.Sprintf("step %q failed: %v", step.Name, err))

			c.logger.Warn(ctx, "chain step failed",
				zap.String("chain", c.name),
				zap.String("step", step.Name),
				zap.Bool("required", step.Required),
				zap.Error(err),
			)

			if step.Required && stopOnError {
				result.Success = false
				break
			}
			continue
		}

		if step.Transform != nil {
			output = step.Transform(output)
		}

		result.Steps = append(result.Steps, StepResult{
			Name:    step.Name,
			Success: true,
			Output:  output,
		})
		state[step.Name] = output
	}

	result.Final = state
	result.Elapsed = time.Since(start)
	return result
}

// executeStep runs a single step with timeout and retry.
// The last attempt's error is returned when all attempts fail.
func (c *Chain) executeStep(ctx context.Context, step Step, state map[string]any) (map[string]any, error) {
	attempts := step.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		output, err := c.attempt(ctx, step, state)
		if err == nil {
			return output, nil
		}
		lastErr = err

		c.logger.Debug(ctx, "chain step attempt failed",
			zap.String("chain", c.name),
			zap.String("step", step.Name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	return nil, lastErr
}

// attempt runs the step function once, bounded by the step timeout.
// On expiry the attempt is abandoned; the goroutine's eventual result is
// discarded through the buffered channel.
func (c *Chain) attempt(ctx context.Context, step Step, state map[string]any) (map[string]any, error) {
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}

	type outcome struct {
		output map[string]any
		err    error
	}

	done := make(chan outcome, 1)
	go func() {
		output, err := step.Run(ctx, state)
		done <- outcome{output: output, err: err}
	}()

	select {
	case o := <-done:
		return o.output, o.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w after %s", ErrCapabilityTimeout, step.Timeout)
		}
		return nil, ctx.Err()
	}
}
