package checks

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/spf13/afero"

	execContext "pageverify/pkg/context"
	"pageverify/pkg/plan"
)

// xmlXPathHandler implements the xml_xpath check against an XML file shipped with the
// page (a sitemap or feed). It passes when the XPath selects at least one node and,
// if contains is set, one of the selected nodes' text contains it.
func xmlXPathHandler(ctx *execContext.ExecutionContext, check *plan.Check) (*Result, error) {
	path, err := ctx.Substitute(check.Path)
	if err != nil {
		return nil, err
	}
	expr, err := ctx.Substitute(check.XPath)
	if err != nil {
		return nil, err
	}

	if !readable(ctx.FS(), path) {
		return &Result{
			Passed:  false,
			Message: orDefault(check.MissingMessage, fmt.Sprintf("'%s' not found.", path)),
		}, nil
	}
	f, err := ctx.FS().Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer f.Close()

	doc, err := xmlquery.Parse(f)
	if err != nil {
		return &Result{
			Passed:  false,
			Message: fmt.Sprintf("'%s' is not valid XML: %v", path, err),
		}, nil
	}

	nodes, err := xmlquery.QueryAll(doc, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath '%s': %w", expr, err)
	}
	slog.Debug("Evaluated XPath", "path", path, "xpath", expr, "nodes", len(nodes))

	if len(nodes) == 0 {
		return &Result{
			Passed:  false,
			Message: orDefault(check.MissingMessage, fmt.Sprintf("No nodes match '%s' in '%s'.", expr, path)),
		}, nil
	}

	result := &Result{Passed: true}
	if check.Contains != "" {
		result.Passed = false
		for _, node := range nodes {
			text := strings.TrimSpace(node.InnerText())
			if strings.Contains(text, check.Contains) {
				result.Passed = true
				result.Observed = text
				break
			}
		}
	} else {
		result.Observed = strings.TrimSpace(nodes[0].InnerText())
	}

	if check.Label != "" && result.Observed != "" {
		result.Lines = []string{fmt.Sprintf("%s: %s", check.Label, result.Observed)}
	}

	if result.Passed {
		result.Message = orDefault(check.PassMessage, fmt.Sprintf("%d node(s) match '%s'.", len(nodes), expr))
	} else {
		prefix := orDefault(check.FailMessage, fmt.Sprintf("No node matching '%s' contains '%s'", expr, check.Contains))
		result.Message = prefix + "."
	}
	return result, nil
}

// readable reports whether path exists on fs
func readable(fs afero.Fs, path string) bool {
	ok, err := afero.Exists(fs, path)
	return err == nil && ok
}

func init() {
	MustRegisterCheck("xml_xpath", xmlXPathHandler)
}
