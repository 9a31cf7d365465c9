// Package plan defines the Go data structures representing a page verification plan.
// A plan names the document to load, where captures go, and three ordered phases
// of steps (setup, checks, captures). Each step carries exactly one Action or Check.
package plan

// PlanWrapper represents the top-level root containing a Plan definition.
// YAML files usually carry a top-level 'plan:' key.
type PlanWrapper struct {
	Plan Plan `yaml:"plan" json:"plan"`
}

// Plan is the full description of one verification run
type Plan struct {
	Metadata Metadata `yaml:"metadata" json:"metadata"`
	Target   Target   `yaml:"target" json:"target"`
	Setup    []Step   `yaml:"setup,omitempty" json:"setup,omitempty"`
	Checks   []Step   `yaml:"checks,omitempty" json:"checks,omitempty"`
	Captures []Step   `yaml:"captures,omitempty" json:"captures,omitempty"`
}

// Metadata contains descriptive information about the plan
type Metadata struct {
	ID      string   `yaml:"id" json:"id"`
	Title   string   `yaml:"title" json:"title"`
	Version string   `yaml:"version" json:"version"`
	Tags    []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Target describes the page under verification and the capture directory.
// Document is a filesystem path relative to the working directory; URL, when set,
// takes precedence and is navigated as-is.
type Target struct {
	Document  string `yaml:"document,omitempty" json:"document,omitempty"`
	URL       string `yaml:"url,omitempty" json:"url,omitempty"`
	OutputDir string `yaml:"output_dir,omitempty" json:"output_dir,omitempty"`
}

// Step represents a single entry within a phase
type Step struct {
	DSL    string  `yaml:"dsl" json:"dsl"`
	ID     string  `yaml:"id,omitempty" json:"id,omitempty"`
	If     string  `yaml:"if,omitempty" json:"if,omitempty"`
	Action *Action `yaml:"action,omitempty" json:"action,omitempty"`
	Check  *Check  `yaml:"check,omitempty" json:"check,omitempty"`
}

// Action defines an operation performed against the page
type Action struct {
	Type           string   `yaml:"type" json:"type"`
	Description    string   `yaml:"description,omitempty" json:"description,omitempty"`
	Path           string   `yaml:"path,omitempty" json:"path,omitempty"`
	URL            string   `yaml:"url,omitempty" json:"url,omitempty"`
	Selector       string   `yaml:"selector,omitempty" json:"selector,omitempty"`
	Candidates     []string `yaml:"candidates,omitempty" json:"candidates,omitempty"`
	Duration       string   `yaml:"duration,omitempty" json:"duration,omitempty"`
	FullPage       bool     `yaml:"full_page,omitempty" json:"full_page,omitempty"`
	TargetVariable string   `yaml:"target_variable,omitempty" json:"target_variable,omitempty"`
	Message        string   `yaml:"message,omitempty" json:"message,omitempty"`
	Warning        string   `yaml:"warning,omitempty" json:"warning,omitempty"`
}

// Check defines a condition on the loaded page to be verified
type Check struct {
	Type           string `yaml:"type" json:"type"`
	Description    string `yaml:"description,omitempty" json:"description,omitempty"`
	Selector       string `yaml:"selector,omitempty" json:"selector,omitempty"`
	Attribute      string `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	Contains       string `yaml:"contains,omitempty" json:"contains,omitempty"`
	Path           string `yaml:"path,omitempty" json:"path,omitempty"`
	XPath          string `yaml:"xpath,omitempty" json:"xpath,omitempty"`
	Label          string `yaml:"label,omitempty" json:"label,omitempty"`
	PassMessage    string `yaml:"pass_message,omitempty" json:"pass_message,omitempty"`
	FailMessage    string `yaml:"fail_message,omitempty" json:"fail_message,omitempty"`
	MissingMessage string `yaml:"missing_message,omitempty" json:"missing_message,omitempty"`
	RetryInterval  string `yaml:"retry_interval,omitempty" json:"retry_interval,omitempty"`
	MaxAttempts    int    `yaml:"max_attempts,omitempty" json:"max_attempts,omitempty"`
}

// Phase names in execution order
const (
	PhaseSetup    = "setup"
	PhaseChecks   = "checks"
	PhaseCaptures = "captures"
)

// Phases returns the plan's phases in execution order
func (p *Plan) Phases() []NamedPhase {
	return []NamedPhase{
		{Name: PhaseSetup, Steps: p.Setup},
		{Name: PhaseChecks, Steps: p.Checks},
		{Name: PhaseCaptures, Steps: p.Captures},
	}
}

// NamedPhase pairs a phase name with its steps
type NamedPhase struct {
	Name  string
	Steps []Step
}
