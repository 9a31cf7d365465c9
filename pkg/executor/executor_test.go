package executor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageverify/pkg/actions"
	"pageverify/pkg/browser"
	"pageverify/pkg/browser/browsertest"
	execContext "pageverify/pkg/context"
	"pageverify/pkg/plan"
)

type run struct {
	fs      afero.Fs
	execCtx *execContext.ExecutionContext
	slept   []time.Duration
	steps   []*StepResult
}

func newRun(t *testing.T, page browser.Page, fs afero.Fs) *run {
	t.Helper()
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	r := &run{fs: fs}
	r.execCtx = execContext.NewExecutionContext(plan.DefaultPlan().Target, page, fs)
	r.execCtx.SetSleeper(func(d time.Duration) { r.slept = append(r.slept, d) })
	return r
}

func (r *run) options() *ExecutorOptions {
	opts := DefaultOptions()
	opts.Observer = ObserverFunc(func(s *StepResult) { r.steps = append(r.steps, s) })
	return opts
}

func (r *run) exec(t *testing.T, p *plan.Plan) (*ExecutionResult, error) {
	t.Helper()
	return Execute(context.Background(), p, r.execCtx, r.options())
}

func TestDefaultPlanBothThemes(t *testing.T) {
	page := browsertest.Portfolio()
	r := newRun(t, page, nil)

	result, err := r.exec(t, plan.DefaultPlan())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Success())
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "portfolio-smoke", result.PlanID)
	assert.Equal(t, 3, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 0, result.Warnings)
	require.Len(t, result.PhaseResults, 3)

	assert.Equal(t, []string{"verification/experience_light.png", "verification/experience_dark.png"}, result.Captures)
	assert.Equal(t, []string{"#theme-btn-desktop"}, page.Clicks)
	assert.Equal(t, []string{"#experience", "#experience"}, page.Scrolls)
	assert.Equal(t, 2, page.Screenshots)
	assert.Equal(t, []time.Duration{time.Second, time.Second, 500 * time.Millisecond}, r.slept)

	for _, name := range []string{"experience_light.png", "experience_dark.png"} {
		exists, err := afero.Exists(r.fs, "verification/"+name)
		require.NoError(t, err)
		assert.True(t, exists, name)
	}

	// the link check reports what it read
	link := result.PhaseResults[1].StepResults[0]
	assert.Equal(t, "check", link.Kind)
	assert.Contains(t, link.Observed, "LinkedIn Profile")
	assert.Equal(t, "LinkedIn text updated successfully.", link.Message)
}

func TestDefaultPlanWithoutVisibleToggle(t *testing.T) {
	page := browsertest.Portfolio()
	page.Set("#theme-btn-desktop", &browsertest.Element{Count: 1, Visible: false})
	r := newRun(t, page, nil)

	result, err := r.exec(t, plan.DefaultPlan())
	require.NoError(t, err)

	assert.Equal(t, []string{"verification/experience_light.png"}, result.Captures)
	assert.Empty(t, page.Clicks)
	assert.Equal(t, 1, page.Screenshots)
	assert.Equal(t, 1, result.Warnings)
	assert.Equal(t, 4, result.Skipped)
	assert.Equal(t, []time.Duration{time.Second}, r.slept)

	var warnings []string
	for _, s := range r.steps {
		if s.Warning != "" {
			warnings = append(warnings, s.Warning)
		}
	}
	assert.Equal(t, []string{"Theme button not visible, skipping Dark Mode screenshot."}, warnings)

	exists, err := afero.Exists(r.fs, "verification/experience_dark.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSoftFailuresDoNotStopTheRun(t *testing.T) {
	page := browsertest.Portfolio()
	delete(page.Elements, "#contact .contact-info-container a[href*='linkedin.com']")
	delete(page.Elements, `meta[name="keywords"]`)
	r := newRun(t, page, nil)

	result, err := r.exec(t, plan.DefaultPlan())
	require.NoError(t, err)

	assert.False(t, result.Success())
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 2, result.Failed)
	assert.Len(t, result.Captures, 2)

	checks := result.PhaseResults[1].StepResults
	require.Len(t, checks, 3)
	assert.False(t, checks[0].Success)
	assert.Equal(t, "Could not find LinkedIn link in contact section.", checks[0].Message)
	assert.True(t, checks[1].Success)
	assert.False(t, checks[2].Success)
	assert.Equal(t, "Meta Keywords tag missing.", checks[2].Message)
}

func TestStopOnFailure(t *testing.T) {
	page := browsertest.Portfolio()
	delete(page.Elements, `meta[name="description"]`)
	r := newRun(t, page, nil)

	opts := r.options()
	opts.StopOnFailure = true
	result, err := Execute(context.Background(), plan.DefaultPlan(), r.execCtx, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.PhaseResults, 2)
	assert.Empty(t, result.Captures)
	assert.Zero(t, page.Screenshots)
}

func TestNavigationErrorAbortsRun(t *testing.T) {
	page := browsertest.Portfolio()
	page.NavigateErr = errors.New("net::ERR_FILE_NOT_FOUND")
	r := newRun(t, page, nil)

	result, err := r.exec(t, plan.DefaultPlan())
	require.Error(t, err)
	require.NotNil(t, result)
	assert.ErrorIs(t, err, page.NavigateErr)
	assert.Contains(t, err.Error(), "setup phase failed")
	assert.Equal(t, err, result.Error)

	require.Len(t, result.PhaseResults, 1)
	assert.Zero(t, result.Passed+result.Failed)
	assert.Zero(t, page.Screenshots)
	assert.Equal(t, page.NavigateErr, r.execCtx.GetLastError())
}

func TestScreenshotWriteErrorIsHard(t *testing.T) {
	page := browsertest.Portfolio()
	r := newRun(t, page, afero.NewReadOnlyFs(afero.NewMemMapFs()))

	result, err := r.exec(t, plan.DefaultPlan())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "captures phase failed")
	assert.Equal(t, 3, result.Passed)
	assert.Empty(t, result.Captures)
	assert.Empty(t, page.Clicks)
}

func TestUnsupportedStepIsSkipped(t *testing.T) {
	page := browsertest.Portfolio()
	page.ScreenshotErr = fmt.Errorf("screenshot: %w", browser.ErrNotSupported)
	r := newRun(t, page, nil)

	result, err := r.exec(t, plan.DefaultPlan())
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.Empty(t, result.Captures)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 2, result.Warnings)

	light := result.PhaseResults[2].StepResults[2]
	assert.True(t, light.Skipped)
	assert.Equal(t, "Skipping 'Capture light mode': screenshot: operation not supported by this page engine", light.Warning)
}

func TestRunTwiceOverwritesCaptures(t *testing.T) {
	fs := afero.NewMemMapFs()
	for i := 0; i < 2; i++ {
		page := browsertest.Portfolio()
		page.Image = []byte(fmt.Sprintf("\x89PNGrun%d", i))
		r := newRun(t, page, fs)

		_, err := r.exec(t, plan.DefaultPlan())
		require.NoError(t, err)
	}

	entries, err := afero.ReadDir(fs, "verification")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "experience_dark.png", entries[0].Name())
	assert.Equal(t, "experience_light.png", entries[1].Name())

	data, err := afero.ReadFile(fs, "verification/experience_light.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNGrun1"), data)
}

func TestCancelledContextStopsBeforeFirstStep(t *testing.T) {
	page := browsertest.Portfolio()
	r := newRun(t, page, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Execute(ctx, plan.DefaultPlan(), r.execCtx, r.options())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, page.Navigated)
	assert.Len(t, result.PhaseResults, 1)
}

func TestConditionalStepsFollowVariables(t *testing.T) {
	p := &plan.Plan{
		Metadata: plan.Metadata{ID: "cond", Title: "conditions", Version: plan.ExpectedVersion},
		Captures: []plan.Step{
			{DSL: "only when set", If: "flag", Action: &plan.Action{Type: "wait", Duration: "1ms"}},
			{DSL: "only when unset", If: "!flag", Action: &plan.Action{Type: "wait", Duration: "2ms"}},
		},
	}
	r := newRun(t, browsertest.New(nil), nil)

	result, err := r.exec(t, p)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []time.Duration{2 * time.Millisecond}, r.slept)
}

func TestCancelDuringWaitAbortsRun(t *testing.T) {
	p := &plan.Plan{
		Metadata: plan.Metadata{ID: "slow", Title: "slow", Version: plan.ExpectedVersion},
		Captures: []plan.Step{
			{DSL: "long pause", Action: &plan.Action{Type: "wait", Duration: "3s"}},
		},
	}
	// real timer, no recorded sleeper
	execCtx := execContext.NewExecutionContext(p.Target, browsertest.New(nil), afero.NewMemMapFs())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := Execute(ctx, p, execCtx, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.False(t, result.Success())
	assert.Equal(t, "captures.1", result.LastStep)
}

func TestCancelAfterLastStepIsReported(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := actions.NewActionRegistry()
	registry.MustRegister("interrupt", func(*execContext.ExecutionContext, *plan.Action) (*actions.Result, error) {
		cancel()
		return nil, nil
	})

	p := &plan.Plan{
		Metadata: plan.Metadata{ID: "cancel", Title: "cancel", Version: plan.ExpectedVersion},
		Setup:    []plan.Step{{DSL: "only step", Action: &plan.Action{Type: "interrupt"}}},
	}
	r := newRun(t, browsertest.New(nil), nil)
	opts := r.options()
	opts.Actions = registry

	result, err := Execute(ctx, p, r.execCtx, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "run cancelled during setup phase")
	require.Len(t, r.steps, 1)
	assert.True(t, r.steps[0].Success)
	assert.False(t, result.Success())
}

func TestUnknownStepTypeRejectedBeforeRun(t *testing.T) {
	page := browsertest.Portfolio()
	r := newRun(t, page, nil)

	p := plan.DefaultPlan()
	p.Checks[1].Check.Type = "element_exist"

	result, err := r.exec(t, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handler registered for check type 'element_exist'")
	assert.Contains(t, err.Error(), "checks step 2")
	assert.Empty(t, result.PhaseResults)
	assert.Empty(t, page.Navigated)
	assert.Empty(t, r.steps)
}

func TestHardFailureRecordsLastStep(t *testing.T) {
	page := browsertest.Portfolio()
	page.NavigateErr = errors.New("net::ERR_FILE_NOT_FOUND")
	r := newRun(t, page, nil)

	result, err := r.exec(t, plan.DefaultPlan())
	require.Error(t, err)
	assert.Equal(t, "setup.load", result.LastStep)
}
