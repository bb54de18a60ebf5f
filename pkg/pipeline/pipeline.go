// Package pipeline sequences a whole project build.
//
// A build runs in phases:
//
//  1. Resolve: download the descriptor's Maven dependencies into the
//     repository directory; their jars form the base class path.
//  2. Core: compile and archive the core module.
//  3. Groups: compile and archive every group module concurrently, with
//     the core jar on the class path.
//  4. Native: run each group's cmake configure (once) and build steps.
//  5. Extras: run header extraction and build the modules that compile
//     against the generated sources.
//
// A missing required directory or a failed resolution aborts the run. A
// failed module or native step is recorded and the remaining work goes
// on; [Result.Err] joins every failure.
//
// # Usage
//
//	runner := pipeline.NewRunner(mavenClient, httpClient, compiler, tools, logger)
//	res, err := runner.Build(ctx, pipeline.Plan{
//	    Root:       ".",
//	    Descriptor: project.Default(),
//	    Env:        env,
//	})
//	if err == nil {
//	    err = res.Err()
//	}
package pipeline

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/bldr/pkg/errors"
	"github.com/matzehuels/bldr/pkg/platform"
	"github.com/matzehuels/bldr/pkg/project"
)

// DefaultWorkers bounds concurrent module builds when Plan.Workers is zero.
var DefaultWorkers = runtime.NumCPU()

// Stage names reported to hooks and in results.
const (
	StageCompile = "compile"
	StageArchive = "archive"
	StageCMake   = "cmake"
	StageExtract = "extract"
)

// =============================================================================
// Plan - Build Input
// =============================================================================

// Plan is the input of one build.
type Plan struct {
	Root       string
	Descriptor *project.Descriptor
	Env        platform.Env

	// Workers bounds concurrent module builds.
	Workers int

	// SkipNative skips cmake and header extraction, and with it every
	// module that needs generated sources.
	SkipNative bool

	// Epoch, when set, is the modification time of every archive entry.
	Epoch *time.Time

	// Logger overrides the runner's logger for this build.
	Logger *log.Logger
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (p *Plan) ValidateAndSetDefaults() error {
	if p.Root == "" {
		return errors.New(errors.ErrCodeInvalidInput, "project root is required")
	}
	if p.Descriptor == nil {
		p.Descriptor = project.Default()
	}
	if err := p.Descriptor.Validate(); err != nil {
		return err
	}
	if p.Workers <= 0 {
		p.Workers = DefaultWorkers
	}
	if p.Env.OS == "" {
		p.Env.OS = runtime.GOOS
		p.Env.Arch = runtime.GOARCH
	}
	return nil
}

// =============================================================================
// Result - Build Output
// =============================================================================

// Status is the outcome of one module or step.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ModuleResult describes one module build.
type ModuleResult struct {
	Name     string        `yaml:"name"`
	Group    string        `yaml:"group,omitempty"`
	Status   Status        `yaml:"status"`
	Jar      string        `yaml:"jar,omitempty"`
	Sources  int           `yaml:"sources"`
	Entries  int           `yaml:"entries"`
	Warnings int           `yaml:"warnings,omitempty"`
	Duration time.Duration `yaml:"duration"`
	Reason   string        `yaml:"reason,omitempty"`
	Error    string        `yaml:"error,omitempty"`

	err error
}

// StepResult describes one native step of a group or module.
type StepResult struct {
	Stage    string        `yaml:"stage"`
	Owner    string        `yaml:"owner"`
	Detail   string        `yaml:"detail,omitempty"`
	Status   Status        `yaml:"status"`
	Duration time.Duration `yaml:"duration"`
	Error    string        `yaml:"error,omitempty"`

	err error
}

// Result is the report of one build.
type Result struct {
	RunID        string         `yaml:"run_id"`
	Project      string         `yaml:"project"`
	Root         string         `yaml:"root"`
	Started      time.Time      `yaml:"started"`
	Duration     time.Duration  `yaml:"duration"`
	Dependencies []string       `yaml:"dependencies,omitempty"`
	ClassPath    []string       `yaml:"class_path,omitempty"`
	Modules      []ModuleResult `yaml:"modules"`
	Steps        []StepResult   `yaml:"steps,omitempty"`
}

// Err joins the errors of every failed module and step, or returns nil.
func (r *Result) Err() error {
	var errs []error
	for _, m := range r.Modules {
		if m.err != nil {
			errs = append(errs, m.err)
		}
	}
	for _, s := range r.Steps {
		if s.err != nil {
			errs = append(errs, s.err)
		}
	}
	return errors.Join(errs...)
}

// Module returns the result for the named module.
func (r *Result) Module(name string) (ModuleResult, bool) {
	for _, m := range r.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return ModuleResult{}, false
}

// Count returns how many modules ended with status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, m := range r.Modules {
		if m.Status == s {
			n++
		}
	}
	return n
}

// WriteYAML writes the report as YAML.
func (r *Result) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
