// Package checks provides the registry and implementation of all checks a
// verification plan can run against the loaded page. A check reports a soft
// pass/fail Result; an error return means the check could not be evaluated at all.
package checks

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	execContext "pageverify/pkg/context"
	"pageverify/pkg/plan"
)

// Result is the outcome of one check
type Result struct {
	Passed bool
	// Observed is the value read from the page, if any
	Observed string
	// Lines are diagnostic lines printed before the PASSED/FAILED line
	Lines []string
	// Message follows PASSED: or FAILED:
	Message string
}

// CheckHandler is the function signature for check execution handlers
type CheckHandler func(ctx *execContext.ExecutionContext, check *plan.Check) (*Result, error)

// CheckRegistry manages the registration and lookup of check handlers
type CheckRegistry struct {
	mu       sync.RWMutex
	handlers map[string]CheckHandler
}

// NewCheckRegistry creates a new empty check registry
func NewCheckRegistry() *CheckRegistry {
	return &CheckRegistry{
		handlers: make(map[string]CheckHandler),
	}
}

// Register adds a new check handler to the registry
func (r *CheckRegistry) Register(checkType string, handler CheckHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if handler == nil {
		return fmt.Errorf("check handler for type '%s' is nil", checkType)
	}
	if _, exists := r.handlers[checkType]; exists {
		return fmt.Errorf("check handler for type '%s' is already registered", checkType)
	}

	r.handlers[checkType] = handler
	return nil
}

// MustRegister adds a new check handler to the registry, panicking if it fails
func (r *CheckRegistry) MustRegister(checkType string, handler CheckHandler) {
	if err := r.Register(checkType, handler); err != nil {
		panic(err)
	}
}

// Get retrieves a check handler by type
func (r *CheckRegistry) Get(checkType string) (CheckHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, exists := r.handlers[checkType]
	if !exists {
		return nil, fmt.Errorf("no handler registered for check type '%s'", checkType)
	}

	return handler, nil
}

// Execute runs a check using the appropriate handler. A failing check is re-run up
// to max_attempts times, retry_interval apart (default one attempt). Errors are
// never retried.
func (r *CheckRegistry) Execute(ctx *execContext.ExecutionContext, check *plan.Check) (*Result, error) {
	if check == nil {
		return nil, fmt.Errorf("cannot execute nil check")
	}
	if check.Type == "" {
		return nil, fmt.Errorf("check missing required 'type' field")
	}

	handler, err := r.Get(check.Type)
	if err != nil {
		return nil, err
	}

	maxAttempts := 1
	if check.MaxAttempts > 0 {
		maxAttempts = check.MaxAttempts
	}
	interval := time.Second
	if check.RetryInterval != "" {
		if interval, err = time.ParseDuration(check.RetryInterval); err != nil {
			return nil, fmt.Errorf("invalid retry_interval '%s': %w", check.RetryInterval, err)
		}
	}

	var result *Result
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err = handler(ctx, check)
		if err != nil {
			return nil, err
		}
		if result.Passed || attempt == maxAttempts {
			break
		}
		slog.Debug("Check not satisfied, retrying",
			"type", check.Type,
			"attempt", attempt,
			"max_attempts", maxAttempts)
		if err := ctx.Sleep(interval); err != nil {
			return nil, fmt.Errorf("retry of '%s' interrupted: %w", check.Type, err)
		}
	}

	return result, nil
}

// Global instance for convenience
var DefaultRegistry = NewCheckRegistry()

// MustRegisterCheck registers a check handler with the default registry, panicking if it fails
func MustRegisterCheck(checkType string, handler CheckHandler) {
	DefaultRegistry.MustRegister(checkType, handler)
}

// ExecuteCheck executes a check using the default registry
func ExecuteCheck(ctx *execContext.ExecutionContext, check *plan.Check) (*Result, error) {
	return DefaultRegistry.Execute(ctx, check)
}
