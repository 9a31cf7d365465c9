// Package reporter provides functions for formatting and outputting execution results.
// A Reporter streams each step's lines as the run progresses and closes with a summary.
package reporter

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"pageverify/pkg/executor"
	"pageverify/pkg/plan"
)

// Reporter writes verification progress to w. It implements executor.Observer.
type Reporter struct {
	w io.Writer

	success *color.Color
	failure *color.Color
	warning *color.Color
	faint   *color.Color
}

var _ executor.Observer = (*Reporter)(nil)

// New returns a reporter writing to w. Colors follow fatih/color's terminal
// detection unless noColor forces them off.
func New(w io.Writer, noColor bool) *Reporter {
	r := &Reporter{
		w:       w,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		warning: color.New(color.FgYellow),
		faint:   color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{r.success, r.failure, r.warning, r.faint} {
			c.DisableColor()
		}
	}
	return r
}

// Start prints the opening banner
func (r *Reporter) Start(p *plan.Plan) {
	fmt.Fprintln(r.w, "Starting verification...")
}

// StepFinished prints a step's diagnostic lines followed by its verdict
func (r *Reporter) StepFinished(step *executor.StepResult) {
	for _, line := range step.Lines {
		fmt.Fprintln(r.w, line)
	}

	if step.Kind == "check" && !step.Skipped && step.Error == nil {
		if step.Success {
			fmt.Fprintf(r.w, "%s %s\n", r.success.Sprint("PASSED:"), step.Message)
		} else {
			fmt.Fprintf(r.w, "%s %s\n", r.failure.Sprint("FAILED:"), step.Message)
		}
	}

	if step.Warning != "" {
		fmt.Fprintf(r.w, "%s %s\n", r.warning.Sprint("WARNING:"), step.Warning)
	}
	if step.Error != nil {
		fmt.Fprintf(r.w, "%s %s\n", r.failure.Sprint("ERROR:"), step.Error)
	}
}

// Finish prints the run summary and the closing banner
func (r *Reporter) Finish(result *executor.ExecutionResult) {
	if result != nil {
		fmt.Fprintln(r.w, r.faint.Sprintf("Run %s: %d passed, %d failed, %d skipped, %d warnings in %s",
			result.RunID,
			result.Passed,
			result.Failed,
			result.Skipped,
			result.Warnings,
			time.Duration(result.Duration*float64(time.Second)).Round(time.Millisecond)))
		if len(result.Captures) > 0 {
			fmt.Fprintln(r.w, r.faint.Sprintf("Captures: %d written", len(result.Captures)))
		}
		if result.Error != nil {
			fmt.Fprintf(r.w, "%s %s\n", r.failure.Sprint("ABORTED:"), result.Error)
		}
	}
	fmt.Fprintln(r.w, "Verification complete.")
}
