package actions

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	execContext "pageverify/pkg/context"
	"pageverify/pkg/plan"
)

// ScreenshotHandler captures the page as PNG and writes it under the output
// directory. The file is overwritten on every run.
func ScreenshotHandler(ctx *execContext.ExecutionContext, action *plan.Action) (*Result, error) {
	if action.Type != "screenshot" {
		return nil, errInvalidActionType(action.Type, "screenshot")
	}

	name, err := ctx.Substitute(action.Path)
	if err != nil {
		return nil, err
	}
	path := ctx.OutputPath(name)

	buf, err := ctx.Page().Screenshot(action.FullPage)
	if err != nil {
		return nil, err
	}

	fs := ctx.FS()
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, buf, 0644); err != nil {
		return nil, fmt.Errorf("failed to save screenshot: %w", err)
	}

	ctx.AddCapture(path)
	slog.Info("Screenshot saved", "path", path, "bytes", len(buf), "full_page", action.FullPage)

	message := action.Message
	if message == "" {
		message = "Captured " + filepath.ToSlash(path)
	} else if message, err = ctx.Substitute(message); err != nil {
		return nil, err
	}
	return &Result{Lines: []string{message}}, nil
}

func init() {
	MustRegisterAction("screenshot", ScreenshotHandler)
}
