// Package executor orchestrates the execution of a verification plan.
// This file contains the logic for running individual steps: evaluating the `if`
// condition, delegating to the action or check registry, and classifying errors.
package executor

import (
	"errors"
	"fmt"
	"time"

	"pageverify/pkg/browser"
	"pageverify/pkg/plan"
)

// runStep executes a single step. The error return is reserved for hard failures;
// unsatisfied checks and unsupported operations are reported through the result.
func (r *runner) runStep(step *plan.Step, phase string, number int) (*StepResult, error) {
	result := &StepResult{
		Phase:     phase,
		Number:    number,
		ID:        step.ID,
		DSL:       step.DSL,
		StartTime: time.Now(),
	}
	defer func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime).Seconds()
	}()

	stepID := fmt.Sprintf("%s.%d", phase, number)
	if step.ID != "" {
		stepID = fmt.Sprintf("%s.%s", phase, step.ID)
	}
	r.execCtx.SetLastStep(stepID)

	if step.If != "" {
		shouldRun, err := r.execCtx.EvaluateCondition(step.If)
		if err != nil {
			result.Error = fmt.Errorf("condition evaluation failed: %w", err)
			return result, result.Error
		}
		if !shouldRun {
			r.logger.Debug("Skipping step due to condition", "step_id", stepID, "condition", step.If)
			result.Success = true
			result.Skipped = true
			return result, nil
		}
	}

	var err error
	switch {
	case step.Action != nil:
		err = r.executeAction(step.Action, stepID, result)
	case step.Check != nil:
		err = r.executeCheck(step.Check, stepID, result)
	default:
		err = errors.New("step has neither action nor check")
	}

	if err == nil {
		return result, nil
	}

	if errors.Is(err, browser.ErrNotSupported) {
		r.logger.Warn("Step not supported by page engine, skipping", "step_id", stepID, "error", err)
		result.Success = true
		result.Skipped = true
		result.Warning = fmt.Sprintf("Skipping '%s': %v", step.DSL, err)
		return result, nil
	}

	r.execCtx.SetLastError(err)
	result.Success = false
	result.Error = err
	return result, err
}

func (r *runner) executeAction(action *plan.Action, stepID string, result *StepResult) error {
	result.Kind = "action"
	result.Type = action.Type

	r.logger.Info("Executing action", "step_id", stepID, "type", action.Type)
	out, err := r.options.Actions.Execute(r.execCtx, action)
	if err != nil {
		r.logger.Error("Action execution failed", "step_id", stepID, "type", action.Type, "error", err)
		return err
	}

	result.Success = true
	result.Lines = out.Lines
	result.Warning = out.Warning
	return nil
}

func (r *runner) executeCheck(check *plan.Check, stepID string, result *StepResult) error {
	result.Kind = "check"
	result.Type = check.Type

	r.logger.Info("Evaluating check", "step_id", stepID, "type", check.Type)
	out, err := r.options.Checks.Execute(r.execCtx, check)
	if err != nil {
		r.logger.Error("Check could not be evaluated", "step_id", stepID, "type", check.Type, "error", err)
		return err
	}

	result.Success = out.Passed
	result.Lines = out.Lines
	result.Message = out.Message
	result.Observed = out.Observed
	if !out.Passed {
		r.logger.Warn("Check failed", "step_id", stepID, "type", check.Type, "message", out.Message)
	}
	return nil
}
