// Package context defines the ExecutionContext which holds the state during a
// verification run: the page under test, the filesystem captures are written to,
// runtime variables set by steps, and `{{...}}` substitution and `if` evaluation.
package context

import (
	stdcontext "context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"pageverify/pkg/browser"
	"pageverify/pkg/plan"
)

// ExecutionContext holds the state during plan execution
type ExecutionContext struct {
	mu       sync.RWMutex
	resolved map[string]interface{}

	page      browser.Page
	fs        afero.Fs
	target    plan.Target
	outputDir string

	runCtx stdcontext.Context
	sleep  func(time.Duration)

	lastError error
	lastStep  string
	captures  []string
}

// NewExecutionContext creates a context for target, driving page and writing to fs.
// The target and its output directory are exposed as variables ("target.document",
// "target.output_dir").
func NewExecutionContext(target plan.Target, page browser.Page, fs afero.Fs) *ExecutionContext {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	outputDir := target.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	c := &ExecutionContext{
		resolved:  make(map[string]interface{}),
		page:      page,
		fs:        fs,
		target:    target,
		outputDir: outputDir,
		runCtx:    stdcontext.Background(),
	}
	c.resolved["target"] = map[string]interface{}{
		"document":   target.Document,
		"url":        target.URL,
		"output_dir": outputDir,
	}
	return c
}

// Page returns the page under verification
func (c *ExecutionContext) Page() browser.Page {
	return c.page
}

// FS returns the filesystem captures and auxiliary files go through
func (c *ExecutionContext) FS() afero.Fs {
	return c.fs
}

// Target returns the plan target
func (c *ExecutionContext) Target() plan.Target {
	return c.target
}

// SetRunContext binds the context that cancels the run. Sleep returns early
// once it is done.
func (c *ExecutionContext) SetRunContext(ctx stdcontext.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runCtx = ctx
}

// RunContext returns the context bound with SetRunContext
func (c *ExecutionContext) RunContext() stdcontext.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runCtx
}

// Sleep pauses the run for d. It returns the run context's error if the run is
// cancelled first.
func (c *ExecutionContext) Sleep(d time.Duration) error {
	ctx := c.RunContext()
	if c.sleep != nil {
		c.sleep(d)
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetSleeper replaces the timer used by Sleep, e.g. to record waits in tests
func (c *ExecutionContext) SetSleeper(fn func(time.Duration)) {
	c.sleep = fn
}

// OutputPath joins name onto the output directory
func (c *ExecutionContext) OutputPath(name string) string {
	return filepath.Join(c.outputDir, name)
}

// ResolveVariable resolves a dotted path like "target.document"
func (c *ExecutionContext) ResolveVariable(path string) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if path == "" {
		return nil, fmt.Errorf("invalid variable path: empty path")
	}

	parts := strings.Split(path, ".")
	var current interface{} = c.resolved
	for i, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("cannot resolve path '%s': '%s' is not a map", path, strings.Join(parts[:i], "."))
		}
		current, ok = m[part]
		if !ok {
			return nil, fmt.Errorf("variable '%s' is not set", path)
		}
	}
	return current, nil
}

// SetVariable sets a value at a dotted path, creating nested maps as needed
func (c *ExecutionContext) SetVariable(path string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if path == "" {
		return fmt.Errorf("invalid variable path: empty path")
	}

	parts := strings.Split(path, ".")
	currentMap := c.resolved
	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		next, exists := currentMap[part]
		if !exists {
			newMap := make(map[string]interface{})
			currentMap[part] = newMap
			currentMap = newMap
			continue
		}
		nextMap, ok := next.(map[string]interface{})
		if !ok {
			return fmt.Errorf("cannot set variable: path part '%s' conflicts with existing non-map value at '%s'", part, strings.Join(parts[:i+1], "."))
		}
		currentMap = nextMap
	}

	currentMap[parts[len(parts)-1]] = value
	return nil
}

// Substitute replaces every {{ path }} in input with the variable's value
func (c *ExecutionContext) Substitute(input string) (string, error) {
	if !strings.Contains(input, "{{") {
		return input, nil
	}

	var b strings.Builder
	rest := input
	for {
		open := strings.Index(rest, "{{")
		if open == -1 {
			b.WriteString(rest)
			break
		}
		closing := strings.Index(rest[open:], "}}")
		if closing == -1 {
			return input, fmt.Errorf("unclosed substitution pattern in '%s'", rest[open:])
		}
		closing += open

		b.WriteString(rest[:open])
		name := strings.TrimSpace(rest[open+2 : closing])
		value, err := c.ResolveVariable(name)
		if err != nil {
			return input, fmt.Errorf("substitution failed: %w", err)
		}
		fmt.Fprint(&b, value)
		rest = rest[closing+2:]
	}
	return b.String(), nil
}

// EvaluateCondition evaluates a step's `if` condition. Supported forms are a bare
// variable path (optionally negated with '!'), the literals true/false, and
// `a == b` / `a != b` after substitution. An unset variable is false.
func (c *ExecutionContext) EvaluateCondition(condition string) (bool, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return true, nil
	}

	if negated, ok := strings.CutPrefix(condition, "!"); ok && !strings.HasPrefix(negated, "=") {
		result, err := c.EvaluateCondition(negated)
		return !result, err
	}

	resolved, err := c.Substitute(condition)
	if err != nil {
		return false, fmt.Errorf("error substituting variables in condition: %w", err)
	}

	if left, right, ok := strings.Cut(resolved, "!="); ok {
		return strings.TrimSpace(left) != strings.TrimSpace(right), nil
	}
	if left, right, ok := strings.Cut(resolved, "=="); ok {
		return strings.TrimSpace(left) == strings.TrimSpace(right), nil
	}

	switch resolved = strings.TrimSpace(resolved); resolved {
	case "true":
		return true, nil
	case "false", "0", "":
		return false, nil
	}

	if resolved != condition {
		// came from substitution; any other text is truthy
		return true, nil
	}

	value, err := c.ResolveVariable(condition)
	if err != nil {
		return false, nil
	}
	return truthy(value), nil
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "false" && t != "0"
	case int:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}

// SetLastError records the most recent step error
func (c *ExecutionContext) SetLastError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastError = err
}

// GetLastError returns the most recent step error
func (c *ExecutionContext) GetLastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// SetLastStep records the most recently started step
func (c *ExecutionContext) SetLastStep(step string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastStep = step
}

// GetLastStep returns the most recently started step
func (c *ExecutionContext) GetLastStep() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastStep
}

// AddCapture records a written screenshot path
func (c *ExecutionContext) AddCapture(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.captures = append(c.captures, path)
}

// Captures returns the screenshot paths written so far
func (c *ExecutionContext) Captures() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.captures...)
}
