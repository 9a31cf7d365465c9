// Package actions defines the interface and registry for runnable actions.
// This file implements the specific action handler for pausing execution
// for a specified duration (`type: wait`).
package actions

import (
	"fmt"
	"log/slog"
	"time"

	execContext "pageverify/pkg/context"
	"pageverify/pkg/plan"
)

// WaitHandler pauses for a fixed duration so CSS transitions can settle.
// It does not wait on any page condition.
func WaitHandler(ctx *execContext.ExecutionContext, action *plan.Action) (*Result, error) {
	if action.Type != "wait" {
		return nil, errInvalidActionType(action.Type, "wait")
	}

	resolved, err := ctx.Substitute(action.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve duration value: %w", err)
	}
	duration, err := time.ParseDuration(resolved)
	if err != nil {
		return nil, fmt.Errorf("invalid duration format '%s': %w", resolved, err)
	}

	slog.Debug("Waiting", "duration", duration.String())
	if err := ctx.Sleep(duration); err != nil {
		return nil, fmt.Errorf("wait interrupted: %w", err)
	}

	return &Result{}, nil
}

func init() {
	MustRegisterAction("wait", WaitHandler)
}
