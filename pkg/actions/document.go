// Package actions defines the interface and registry for runnable actions.
// This file implements loading the target document (`type: load_document`).
package actions

import (
	"fmt"
	"log/slog"

	"pageverify/pkg/browser"
	execContext "pageverify/pkg/context"
	"pageverify/pkg/plan"
)

// LoadDocumentHandler navigates the page to the plan's document. An explicit url on
// the action or target wins; otherwise the document path is resolved to an absolute
// file:// URL. There is no retry: a navigation error is returned as-is.
func LoadDocumentHandler(ctx *execContext.ExecutionContext, action *plan.Action) (*Result, error) {
	if action.Type != "load_document" {
		return nil, errInvalidActionType(action.Type, "load_document")
	}

	target := ctx.Target()
	url := firstNonEmpty(action.URL, target.URL)
	if url == "" {
		path := firstNonEmpty(action.Path, target.Document)
		if path == "" {
			return nil, fmt.Errorf("load_document requires a path, url, or target document")
		}
		path, err := ctx.Substitute(path)
		if err != nil {
			return nil, err
		}
		if url, err = browser.FileURL(path); err != nil {
			return nil, err
		}
	}

	slog.Info("Loading document", "url", url)
	if err := ctx.Page().Navigate(url); err != nil {
		return nil, err
	}
	if err := ctx.SetVariable("page.url", url); err != nil {
		return nil, err
	}
	return &Result{}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	MustRegisterAction("load_document", LoadDocumentHandler)
}
