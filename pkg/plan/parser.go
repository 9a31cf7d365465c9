// Package plan defines the Go data structures representing a page verification plan.
// This file handles loading plan definitions from YAML files, parsing them into the
// defined Go structs, and performing structural validation.
package plan

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const ExpectedVersion = "1.0"

// LoadPlanFromFile reads a plan from a YAML file path and validates it.
// It handles both bare Plan documents and PlanWrapper documents (top-level 'plan:' key).
func LoadPlanFromFile(fs afero.Fs, filePath string) (*Plan, error) {
	data, err := afero.ReadFile(fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file '%s': %w", filePath, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filePath), err)
	}
	return p, nil
}

// Parse decodes and validates a plan from raw YAML
func Parse(data []byte) (*Plan, error) {
	var root map[string]yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("YAML parsing error: %w", err)
	}

	var p Plan
	if _, wrapped := root["plan"]; wrapped {
		var wrapper PlanWrapper
		if err := yaml.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("YAML parsing error: %w", err)
		}
		p = wrapper.Plan
	} else if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("YAML parsing error: %w", err)
	}

	if p.Metadata.Version != ExpectedVersion {
		return nil, fmt.Errorf("invalid plan version: expected '%s', got '%s'",
			ExpectedVersion, p.Metadata.Version)
	}

	if err := ValidatePlan(&p); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &p, nil
}

// ValidatePlan performs structural validation of a Plan
func ValidatePlan(p *Plan) error {
	if p == nil {
		return fmt.Errorf("nil Plan cannot be validated")
	}

	if p.Metadata.ID == "" {
		return fmt.Errorf("plan metadata.id is required")
	}
	if p.Metadata.Title == "" {
		return fmt.Errorf("plan metadata.title is required")
	}
	if p.Metadata.Version == "" {
		return fmt.Errorf("plan metadata.version is required")
	}

	total := 0
	for _, phase := range p.Phases() {
		total += len(phase.Steps)
		for i := range phase.Steps {
			if err := validateStep(&phase.Steps[i]); err != nil {
				return fmt.Errorf("%s[%d]: %w", phase.Name, i, err)
			}
		}
	}
	if total == 0 {
		return fmt.Errorf("plan must contain at least one step")
	}

	return nil
}

func validateStep(step *Step) error {
	if step.DSL == "" {
		return fmt.Errorf("dsl is required")
	}

	if step.Action == nil && step.Check == nil {
		return fmt.Errorf("step must have either an action or a check")
	}
	if step.Action != nil && step.Check != nil {
		return fmt.Errorf("step must not have both an action and a check")
	}

	if a := step.Action; a != nil {
		switch a.Type {
		case "":
			return fmt.Errorf("action.type is required")
		case "scroll_into_view":
			if a.Selector == "" {
				return fmt.Errorf("action.selector is required for scroll_into_view")
			}
		case "wait":
			if _, err := time.ParseDuration(a.Duration); err != nil {
				return fmt.Errorf("action.duration is invalid for wait: %w", err)
			}
		case "click_first_visible":
			if len(a.Candidates) == 0 {
				return fmt.Errorf("action.candidates is required for click_first_visible")
			}
			if a.TargetVariable == "" {
				return fmt.Errorf("action.target_variable is required for click_first_visible")
			}
		case "screenshot":
			if a.Path == "" {
				return fmt.Errorf("action.path is required for screenshot")
			}
		}
	}

	if c := step.Check; c != nil {
		switch c.Type {
		case "":
			return fmt.Errorf("check.type is required")
		case "element_text_contains":
			if c.Selector == "" || c.Contains == "" {
				return fmt.Errorf("check.selector and check.contains are required for element_text_contains")
			}
		case "element_exists":
			if c.Selector == "" {
				return fmt.Errorf("check.selector is required for element_exists")
			}
		case "xml_xpath":
			if c.Path == "" || c.XPath == "" {
				return fmt.Errorf("check.path and check.xpath are required for xml_xpath")
			}
		}
		if c.RetryInterval != "" {
			if _, err := time.ParseDuration(c.RetryInterval); err != nil {
				return fmt.Errorf("check.retry_interval is invalid: %w", err)
			}
		}
	}

	return nil
}

// Marshal serializes a Plan to YAML, wrapped under a 'plan:' key
func Marshal(p *Plan) ([]byte, error) {
	data, err := yaml.Marshal(PlanWrapper{Plan: *p})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Plan to YAML: %w", err)
	}
	return data, nil
}

// SavePlanToFile serializes a Plan to YAML and saves it to a file
func SavePlanToFile(fs afero.Fs, p *Plan, filePath string) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}

	if err := afero.WriteFile(fs, filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to file '%s': %w", filePath, err)
	}
	return nil
}
