package actions

import (
	"log/slog"

	execContext "pageverify/pkg/context"
	"pageverify/pkg/plan"
)

// ScrollIntoViewHandler scrolls the first element matching selector into the viewport
func ScrollIntoViewHandler(ctx *execContext.ExecutionContext, action *plan.Action) (*Result, error) {
	if action.Type != "scroll_into_view" {
		return nil, errInvalidActionType(action.Type, "scroll_into_view")
	}

	selector, err := ctx.Substitute(action.Selector)
	if err != nil {
		return nil, err
	}

	slog.Debug("Scrolling into view", "selector", selector)
	if err := ctx.Page().ScrollIntoView(selector); err != nil {
		return nil, err
	}
	return &Result{}, nil
}

func init() {
	MustRegisterAction("scroll_into_view", ScrollIntoViewHandler)
}
