// Package main implements the command-line interface for pageverify.
// It loads a verification plan (the built-in portfolio plan unless -p is given),
// opens the page in headless Chrome or the static engine, runs the plan with the
// executor, and streams the results to stdout.
//
// Usage:
//
//	pageverify
//	pageverify -p plan.yaml --static
//	pageverify plan > plan.yaml
package main

// Import action/check packages to trigger init() registration
import (
	_ "pageverify/pkg/actions"
	_ "pageverify/pkg/checks"
)

func main() {
	Execute()
}
