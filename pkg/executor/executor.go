// Package executor orchestrates the execution of a verification plan.
// This file contains the main Execute function which runs the phases
// (setup, checks, captures) in order, calling the step runner for each step.
//
// Failures come in two kinds. A check that is not satisfied is a soft failure: it is
// recorded and the run continues. Any error from the page engine or filesystem is a
// hard failure: the run stops and the error is returned.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pageverify/pkg/actions"
	"pageverify/pkg/checks"
	execContext "pageverify/pkg/context"
	"pageverify/pkg/plan"
)

// ExecutionResult represents the outcome of running a plan
type ExecutionResult struct {
	RunID        string
	PlanID       string
	StartTime    time.Time
	EndTime      time.Time
	Duration     float64 // seconds
	PhaseResults []*PhaseResult
	Captures     []string
	Passed       int // checks satisfied
	Failed       int // checks not satisfied
	Skipped      int
	Warnings     int
	Error        error  // hard failure, if any
	LastStep     string // step running when the hard failure happened
}

// Success reports whether the run completed and every check passed
func (r *ExecutionResult) Success() bool {
	return r.Error == nil && r.Failed == 0
}

// PhaseResult represents the outcome of executing one phase
type PhaseResult struct {
	Name        string
	StartTime   time.Time
	EndTime     time.Time
	Duration    float64
	StepResults []*StepResult
	Error       error
}

// Success reports whether no step in the phase failed
func (p *PhaseResult) Success() bool {
	if p.Error != nil {
		return false
	}
	for _, s := range p.StepResults {
		if !s.Success {
			return false
		}
	}
	return true
}

// StepResult represents the outcome of executing an individual step
type StepResult struct {
	Phase     string
	Number    int
	ID        string
	DSL       string
	Kind      string // "action" or "check"
	Type      string
	Success   bool
	Skipped   bool
	Lines     []string
	Message   string // follows PASSED:/FAILED: for checks
	Warning   string
	Observed  string
	StartTime time.Time
	EndTime   time.Time
	Duration  float64
	Error     error
}

// Observer is notified as each step finishes, so output can stream while the
// run is in progress.
type Observer interface {
	StepFinished(step *StepResult)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(step *StepResult)

func (f ObserverFunc) StepFinished(step *StepResult) { f(step) }

// ExecutorOptions provides configuration options for the executor
type ExecutorOptions struct {
	// StopOnFailure stops the run at the first unsatisfied check
	StopOnFailure bool
	Observer      Observer
	Actions       *actions.ActionRegistry
	Checks        *checks.CheckRegistry
}

// DefaultOptions runs every step regardless of earlier check outcomes
func DefaultOptions() *ExecutorOptions {
	return &ExecutorOptions{
		StopOnFailure: false,
		Actions:       actions.DefaultRegistry,
		Checks:        checks.DefaultRegistry,
	}
}

// Execute runs every phase of p against execCtx. The returned result is always
// non-nil; the error is the hard failure that stopped the run, if any.
func Execute(ctx context.Context, p *plan.Plan, execCtx *execContext.ExecutionContext, options *ExecutorOptions) (*ExecutionResult, error) {
	if options == nil {
		options = DefaultOptions()
	}
	if options.Actions == nil {
		options.Actions = actions.DefaultRegistry
	}
	if options.Checks == nil {
		options.Checks = checks.DefaultRegistry
	}

	result := &ExecutionResult{
		RunID:     uuid.NewString(),
		PlanID:    p.Metadata.ID,
		StartTime: time.Now(),
	}

	logger := slog.With("run_id", result.RunID)
	logger.Info("Starting plan execution",
		"id", p.Metadata.ID,
		"title", p.Metadata.Title,
		"version", p.Metadata.Version)

	r := &runner{ctx: ctx, execCtx: execCtx, options: options, logger: logger, result: result}
	execCtx.SetRunContext(ctx)

	if err := preflight(p, options); err != nil {
		result.Error = fmt.Errorf("plan %s rejected: %w", p.Metadata.ID, err)
	}

	for _, phase := range p.Phases() {
		if result.Error != nil {
			break
		}
		phaseResult, err := r.executePhase(phase.Name, phase.Steps)
		result.PhaseResults = append(result.PhaseResults, phaseResult)
		if err != nil {
			result.Error = fmt.Errorf("%s phase failed: %w", phase.Name, err)
			break
		}
		if r.stopped {
			break
		}
	}

	result.Captures = execCtx.Captures()
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime).Seconds()

	if result.Error != nil {
		result.LastStep = execCtx.GetLastStep()
		logger.Debug("Plan execution aborted",
			"id", p.Metadata.ID,
			"last_step", result.LastStep,
			"error", result.Error,
			"duration", result.Duration)
		return result, result.Error
	}

	logger.Info("Plan execution finished",
		"id", p.Metadata.ID,
		"passed", result.Passed,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"duration", result.Duration)
	return result, nil
}

type runner struct {
	ctx     context.Context
	execCtx *execContext.ExecutionContext
	options *ExecutorOptions
	logger  *slog.Logger
	result  *ExecutionResult
	stopped bool
}

// executePhase runs all steps in a phase in order
func (r *runner) executePhase(name string, steps []plan.Step) (*PhaseResult, error) {
	result := &PhaseResult{
		Name:        name,
		StartTime:   time.Now(),
		StepResults: make([]*StepResult, 0, len(steps)),
	}
	defer func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime).Seconds()
	}()

	if len(steps) == 0 {
		return result, nil
	}
	r.logger.Debug("Starting phase", "phase", name, "steps", len(steps))

	for i := range steps {
		if err := r.ctx.Err(); err != nil {
			result.Error = fmt.Errorf("run cancelled before step %d: %w", i+1, err)
			return result, result.Error
		}

		stepResult, err := r.runStep(&steps[i], name, i+1)
		result.StepResults = append(result.StepResults, stepResult)
		r.tally(stepResult)
		if r.options.Observer != nil {
			r.options.Observer.StepFinished(stepResult)
		}

		if err != nil {
			result.Error = fmt.Errorf("step %d (%s) failed: %w", i+1, steps[i].DSL, err)
			return result, result.Error
		}
		if !stepResult.Success && r.options.StopOnFailure {
			r.logger.Warn("Stopping at failed check", "phase", name, "step", i+1)
			r.stopped = true
			break
		}
	}

	if err := r.ctx.Err(); err != nil {
		result.Error = fmt.Errorf("run cancelled during %s phase: %w", name, err)
		return result, result.Error
	}

	r.logger.Debug("Phase completed", "phase", name, "success", result.Success())
	return result, nil
}

// preflight resolves every step's type against the registries so a typo in a
// plan fails before anything runs.
func preflight(p *plan.Plan, options *ExecutorOptions) error {
	for _, phase := range p.Phases() {
		for i, step := range phase.Steps {
			var err error
			switch {
			case step.Action != nil:
				_, err = options.Actions.Get(step.Action.Type)
			case step.Check != nil:
				_, err = options.Checks.Get(step.Check.Type)
			}
			if err != nil {
				return fmt.Errorf("%s step %d (%s): %w", phase.Name, i+1, step.DSL, err)
			}
		}
	}
	return nil
}

func (r *runner) tally(step *StepResult) {
	if step.Warning != "" {
		r.result.Warnings++
	}
	switch {
	case step.Skipped:
		r.result.Skipped++
	case step.Kind != "check" || step.Error != nil:
	case step.Success:
		r.result.Passed++
	default:
		r.result.Failed++
	}
}
