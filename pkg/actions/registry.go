// Package actions provides the registry and implementation of all actions a
// verification plan can perform against a page (loading, scrolling, waiting,
// clicking, capturing). Handlers register themselves in init().
package actions

import (
	"fmt"
	"sync"

	execContext "pageverify/pkg/context"
	"pageverify/pkg/plan"
)

// Result is what an action reports back to the console
type Result struct {
	// Lines are printed as-is, in order
	Lines []string
	// Warning, when set, is printed as a WARNING line
	Warning string
}

// ActionHandler is the function signature for action execution handlers
type ActionHandler func(ctx *execContext.ExecutionContext, action *plan.Action) (*Result, error)

// ActionRegistry manages the registration and lookup of action handlers
type ActionRegistry struct {
	mu       sync.RWMutex
	handlers map[string]ActionHandler
}

// NewActionRegistry creates a new empty action registry
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{
		handlers: make(map[string]ActionHandler),
	}
}

// Register adds a new action handler to the registry
func (r *ActionRegistry) Register(actionType string, handler ActionHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if handler == nil {
		return fmt.Errorf("action handler for type '%s' is nil", actionType)
	}
	if _, exists := r.handlers[actionType]; exists {
		return fmt.Errorf("action handler for type '%s' is already registered", actionType)
	}

	r.handlers[actionType] = handler
	return nil
}

// MustRegister adds a new action handler to the registry, panicking if it fails
func (r *ActionRegistry) MustRegister(actionType string, handler ActionHandler) {
	if err := r.Register(actionType, handler); err != nil {
		panic(err)
	}
}

// Get retrieves an action handler by type
func (r *ActionRegistry) Get(actionType string) (ActionHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, exists := r.handlers[actionType]
	if !exists {
		return nil, fmt.Errorf("no handler registered for action type '%s'", actionType)
	}

	return handler, nil
}

// Execute runs an action using the appropriate handler
func (r *ActionRegistry) Execute(ctx *execContext.ExecutionContext, action *plan.Action) (*Result, error) {
	if action == nil {
		return nil, fmt.Errorf("cannot execute nil action")
	}
	if action.Type == "" {
		return nil, fmt.Errorf("action missing required 'type' field")
	}

	handler, err := r.Get(action.Type)
	if err != nil {
		return nil, err
	}

	result, err := handler(ctx, action)
	if result == nil && err == nil {
		result = &Result{}
	}
	return result, err
}

// Global instance for convenience
var DefaultRegistry = NewActionRegistry()

// MustRegisterAction registers an action handler with the default registry, panicking if it fails
func MustRegisterAction(actionType string, handler ActionHandler) {
	DefaultRegistry.MustRegister(actionType, handler)
}

// ExecuteAction executes an action using the default registry
func ExecuteAction(ctx *execContext.ExecutionContext, action *plan.Action) (*Result, error) {
	return DefaultRegistry.Execute(ctx, action)
}

func errInvalidActionType(got, want string) error {
	return fmt.Errorf("invalid action type: got '%s', handler serves '%s'", got, want)
}
