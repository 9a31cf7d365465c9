package actions

import (
	"fmt"
	"log/slog"
	"strings"

	execContext "pageverify/pkg/context"
	"pageverify/pkg/plan"
)

// ClickFirstVisibleHandler clicks the first candidate selector that is currently
// visible, in the order given; later candidates are only considered when earlier
// ones are not visible. target_variable is set to whether a click happened, so
// dependent steps can be gated on it. Finding nothing visible is not an error.
func ClickFirstVisibleHandler(ctx *execContext.ExecutionContext, action *plan.Action) (*Result, error) {
	if action.Type != "click_first_visible" {
		return nil, errInvalidActionType(action.Type, "click_first_visible")
	}
	if action.TargetVariable == "" {
		return nil, fmt.Errorf("click_first_visible requires target_variable field")
	}

	page := ctx.Page()
	for _, candidate := range action.Candidates {
		selector, err := ctx.Substitute(candidate)
		if err != nil {
			return nil, err
		}

		visible, err := page.Visible(selector)
		if err != nil {
			return nil, err
		}
		if !visible {
			slog.Debug("Candidate not visible", "selector", selector)
			continue
		}

		if err := page.Click(selector); err != nil {
			return nil, err
		}
		slog.Info("Clicked", "selector", selector)
		if err := ctx.SetVariable(action.TargetVariable, true); err != nil {
			return nil, err
		}
		return &Result{}, nil
	}

	if err := ctx.SetVariable(action.TargetVariable, false); err != nil {
		return nil, err
	}

	warning := action.Warning
	if warning == "" {
		warning = fmt.Sprintf("None of %s is visible, nothing clicked.", strings.Join(action.Candidates, ", "))
	}
	return &Result{Warning: warning}, nil
}

func init() {
	MustRegisterAction("click_first_visible", ClickFirstVisibleHandler)
}
