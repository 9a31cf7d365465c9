package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"pageverify/pkg/browser"
	execContext "pageverify/pkg/context"
	"pageverify/pkg/executor"
	"pageverify/pkg/plan"
	"pageverify/pkg/reporter"
)

type rootOptions struct {
	planPath   string
	static     bool
	chromePath string
	logLevel   string
	noColor    bool
}

// reportedError is a hard failure the reporter and logger have already shown
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// newPage opens the page engine for a run. Tests replace it.
var newPage = func(ctx context.Context, opts *rootOptions) (browser.Page, error) {
	if opts.static {
		return browser.NewStaticPage(afero.NewOsFs()), nil
	}
	chromeOpts := browser.DefaultChromeOptions()
	chromeOpts.ExecPath = opts.chromePath
	session, err := browser.NewChromeSession(ctx, chromeOpts)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// NewRootCmd creates the root command. Without subcommands it runs a verification.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pageverify",
		Short: "Smoke-check a static web page in a headless browser",
		Long: `pageverify opens a page, checks a few elements against expected content,
and captures screenshots in light and dark mode.

Without -p it runs the built-in plan against ./index.html and writes
screenshots to ./verification. Unsatisfied checks are reported but do not
change the exit status; browser and filesystem errors abort the run.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.planPath, "plan", "p", "", "Path to plan YAML file (default: built-in portfolio plan)")
	cmd.Flags().BoolVar(&opts.static, "static", false, "Use the static HTML engine instead of headless Chrome")
	cmd.Flags().StringVar(&opts.chromePath, "chrome-path", "", "Chrome/Chromium executable (default: found on PATH)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(NewPlanCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func setupLogging(logLevel string) {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func loadPlan(path string) (*plan.Plan, error) {
	if path == "" {
		return plan.DefaultPlan(), nil
	}
	slog.Info("Loading plan", "path", path)
	p, err := plan.LoadPlanFromFile(afero.NewOsFs(), path)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", path, err)
	}
	return p, nil
}

func runVerify(cmd *cobra.Command, opts *rootOptions) (err error) {
	setupLogging(opts.logLevel)

	p, err := loadPlan(opts.planPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := reporter.New(cmd.OutOrStdout(), opts.noColor)
	rep.Start(p)

	page, err := newPage(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to open page engine: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			slog.Warn("Failed to close page engine", "error", cerr)
		}
	}()

	execCtx := execContext.NewExecutionContext(p.Target, page, afero.NewOsFs())

	options := executor.DefaultOptions()
	options.Observer = rep

	result, err := executor.Execute(ctx, p, execCtx, options)
	rep.Finish(result)
	if err != nil {
		slog.Error("Verification aborted", "plan", p.Metadata.ID, "last_step", result.LastStep, "error", err)
		return &reportedError{err: err}
	}
	return nil
}
