package context

import (
	stdcontext "context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageverify/pkg/browser/browsertest"
	"pageverify/pkg/plan"
)

func newTestContext() *ExecutionContext {
	return NewExecutionContext(
		plan.Target{Document: "index.html", OutputDir: "verification"},
		browsertest.New(nil),
		afero.NewMemMapFs(),
	)
}

func TestVariables(t *testing.T) {
	ctx := newTestContext()

	v, err := ctx.ResolveVariable("target.output_dir")
	require.NoError(t, err)
	assert.Equal(t, "verification", v)

	require.NoError(t, ctx.SetVariable("theme.toggled", true))
	v, err = ctx.ResolveVariable("theme.toggled")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	err = ctx.SetVariable("theme.toggled.deeper", 1)
	assert.Error(t, err)

	_, err = ctx.ResolveVariable("nope")
	assert.Error(t, err)
}

func TestSubstitute(t *testing.T) {
	ctx := newTestContext()
	require.NoError(t, ctx.SetVariable("section", "experience"))

	out, err := ctx.Substitute("{{ target.output_dir }}/{{section}}_light.png")
	require.NoError(t, err)
	assert.Equal(t, "verification/experience_light.png", out)

	out, err = ctx.Substitute("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", out)

	_, err = ctx.Substitute("{{ section")
	assert.Error(t, err)

	_, err = ctx.Substitute("{{ missing }}")
	assert.Error(t, err)
}

func TestEvaluateCondition(t *testing.T) {
	ctx := newTestContext()
	require.NoError(t, ctx.SetVariable("toggled", true))
	require.NoError(t, ctx.SetVariable("off", false))
	require.NoError(t, ctx.SetVariable("mode", "dark"))

	tests := []struct {
		condition string
		want      bool
	}{
		{"", true},
		{"true", true},
		{"false", false},
		{"toggled", true},
		{"off", false},
		{"!toggled", false},
		{"!off", true},
		{"unset_variable", false},
		{"!unset_variable", true},
		{"{{mode}} == dark", true},
		{"{{mode}} != dark", false},
		{"{{toggled}}", true},
	}
	for _, tt := range tests {
		got, err := ctx.EvaluateCondition(tt.condition)
		require.NoError(t, err, tt.condition)
		assert.Equal(t, tt.want, got, tt.condition)
	}
}

func TestOutputPathAndCaptures(t *testing.T) {
	ctx := newTestContext()
	assert.Equal(t, filepath.Join("verification", "a.png"), ctx.OutputPath("a.png"))

	ctx.AddCapture("verification/a.png")
	captures := ctx.Captures()
	captures[0] = "mutated"
	assert.Equal(t, []string{"verification/a.png"}, ctx.Captures())

	bare := NewExecutionContext(plan.Target{}, nil, nil)
	assert.Equal(t, "a.png", bare.OutputPath("a.png"))
}

func TestSleepHonoursRunContext(t *testing.T) {
	ctx := newTestContext()
	require.NoError(t, ctx.Sleep(time.Millisecond))

	runCtx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 50*time.Millisecond)
	defer cancel()
	ctx.SetRunContext(runCtx)

	start := time.Now()
	err := ctx.Sleep(10 * time.Second)
	assert.ErrorIs(t, err, stdcontext.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSleeperStillReportsCancellation(t *testing.T) {
	ctx := newTestContext()
	var slept []time.Duration
	ctx.SetSleeper(func(d time.Duration) { slept = append(slept, d) })

	require.NoError(t, ctx.Sleep(time.Second))

	runCtx, cancel := stdcontext.WithCancel(stdcontext.Background())
	cancel()
	ctx.SetRunContext(runCtx)
	assert.ErrorIs(t, ctx.Sleep(time.Second), stdcontext.Canceled)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, slept)
}
