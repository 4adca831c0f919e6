package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/advisord/internal/logging"
)

// Invocation is one independent branch of a parallel fan-out.
// Branches must not share mutable state or depend on each other's output.
type Invocation struct {
	Name string
	Run  StepFunc
}

// BranchError tags a branch failure with the invocation's name.
type BranchError struct {
	Name string
	Err  string
}

func (e BranchError) String() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Err)
}

// ParallelResult is the outcome of a fan-out.
//
// Success means zero failures. Partial results are always returned: callers
// must be able to act on whatever completed before a failure or timeout.
type ParallelResult struct {
	Success   bool
	Results   map[string]map[string]any
	Errors    []BranchError
	Launched  int
	Succeeded int
	Elapsed   time.Duration
}

// Parallel runs independent invocations concurrently under one overall
// timeout. The timeout bounds the whole fan-out, not each branch: branches
// still running when it fires are abandoned and their eventual results
// discarded.
type Parallel struct {
	invocations []Invocation
	logger      *logging.Logger
}

// NewParallel creates an empty parallel executor.
func NewParallel(logger *logging.Logger) *Parallel {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Parallel{logger: logger.Named("parallel")}
}

// Add registers a branch. Returns the executor for fluent construction.
func (p *Parallel) Add(name string, run StepFunc) *Parallel {
	p.invocations = append(p.invocations, Invocation{Name: name, Run: run})
	return p
}

// Run executes all branches and returns when every branch has completed or
// the timeout elapses, whichever comes first.
func (p *Parallel) Run(ctx context.Context, state map[string]any, timeout time.Duration) ParallelResult {
	start := time.Now()

	result := ParallelResult{
		Results:  make(map[string]map[string]any, len(p.invocations)),
		Launched: len(p.invocations),
	}

	if len(p.invocations) == 0 {
		result.Success = true
		result.Elapsed = time.Since(start)
		return result
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		timer := time.AfterFunc(timeout, cancel)
		defer timer.Stop()
	}

	type branchOutcome struct {
		name   string
		output map[string]any
		err    error
	}

	// Buffered so abandoned branches can still send and be collected by GC
	// instead of leaking a blocked goroutine.
	outcomes := make(chan branchOutcome, len(p.invocations))

	for _, inv := range p.invocations {
		go func(inv Invocation) {
			output, err := p.runBranch(ctx, inv, state)
			outcomes <- branchOutcome{name: inv.Name, output: output, err: err}
		}(inv)
	}

	finished := make(map[string]bool, len(p.invocations))

collect:
	for len(finished) < len(p.invocations) {
		select {
		case o := <-outcomes:
			finished[o.name] = true
			if o.err != nil {
				result.Errors = append(result.Errors, BranchError{Name: o.name, Err: o.err.Error()})
				p.logger.Warn(ctx, "parallel branch failed",
					zap.String("branch", o.name),
					zap.Error(o.err),
				)
				continue
			}
			result.Results[o.name] = o.output
		case <-ctx.Done():
			break collect
		}
	}

	// Branches that never reported are abandoned and counted as timeouts.
	for _, inv := range p.invocations {
		if !finished[inv.Name] {
			result.Errors = append(result.Errors, BranchError{
				Name: inv.Name,
				Err:  ErrCapabilityTimeout.Error(),
			})
		}
	}

	result.Succeeded = len(result.Results)
	result.Success = len(result.Errors) == 0
	result.Elapsed = time.Since(start)
	return result
}

// runBranch isolates a single branch: an error in one branch must not
// cancel or corrupt the others.
func (p *Parallel) runBranch(ctx context.Context, inv Invocation, state map[string]any) (output map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("branch panicked: %v", r)
		}
	}()
	return inv.Run(ctx, state)
}
