package checks

import (
	"fmt"
	"log/slog"
	"strings"

	execContext "pageverify/pkg/context"
	"pageverify/pkg/plan"
)

// elementTextContainsHandler implements the element_text_contains check: the first
// element matching selector must exist and its rendered text must contain `contains`.
func elementTextContainsHandler(ctx *execContext.ExecutionContext, check *plan.Check) (*Result, error) {
	selector, err := ctx.Substitute(check.Selector)
	if err != nil {
		return nil, err
	}
	expected, err := ctx.Substitute(check.Contains)
	if err != nil {
		return nil, err
	}

	page := ctx.Page()
	count, err := page.Count(selector)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return &Result{
			Passed:  false,
			Message: orDefault(check.MissingMessage, fmt.Sprintf("Could not find element matching '%s'.", selector)),
		}, nil
	}

	text, err := page.Text(selector)
	if err != nil {
		return nil, err
	}
	slog.Debug("Read element text", "selector", selector, "matches", count, "text", text)

	result := &Result{
		Observed: text,
		Lines:    []string{fmt.Sprintf("%s: '%s'", orDefault(check.Label, "Text of "+selector), text)},
	}
	if strings.Contains(text, expected) {
		result.Passed = true
		result.Message = orDefault(check.PassMessage, fmt.Sprintf("Text contains '%s'.", expected))
		return result, nil
	}

	prefix := orDefault(check.FailMessage, fmt.Sprintf("Text expected '%s'", expected))
	result.Message = fmt.Sprintf("%s, got '%s'", prefix, text)
	return result, nil
}

// elementExistsHandler implements the element_exists check. When attribute is set its
// value is printed, and when contains is also set the value must contain it.
func elementExistsHandler(ctx *execContext.ExecutionContext, check *plan.Check) (*Result, error) {
	selector, err := ctx.Substitute(check.Selector)
	if err != nil {
		return nil, err
	}
	expected, err := ctx.Substitute(check.Contains)
	if err != nil {
		return nil, err
	}

	page := ctx.Page()
	count, err := page.Count(selector)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return &Result{
			Passed:  false,
			Message: orDefault(check.MissingMessage, fmt.Sprintf("Element '%s' missing.", selector)),
		}, nil
	}

	result := &Result{Passed: true}
	if check.Attribute != "" {
		value, _, err := page.Attribute(selector, check.Attribute)
		if err != nil {
			return nil, err
		}
		result.Observed = value
		label := orDefault(check.Label, fmt.Sprintf("%s[%s]", selector, check.Attribute))
		result.Lines = []string{fmt.Sprintf("%s: %s", label, value)}

		if expected != "" && !strings.Contains(value, expected) {
			result.Passed = false
			prefix := orDefault(check.FailMessage, fmt.Sprintf("Attribute '%s' expected '%s'", check.Attribute, expected))
			result.Message = fmt.Sprintf("%s, got '%s'", prefix, value)
			return result, nil
		}
	}

	result.Message = orDefault(check.PassMessage, fmt.Sprintf("Element '%s' exists.", selector))
	return result, nil
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func init() {
	MustRegisterCheck("element_text_contains", elementTextContainsHandler)
	MustRegisterCheck("element_exists", elementExistsHandler)
}
