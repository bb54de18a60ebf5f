package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/bldr/pkg/archive"
	"github.com/matzehuels/bldr/pkg/artifact"
	"github.com/matzehuels/bldr/pkg/buildcfg"
	"github.com/matzehuels/bldr/pkg/compile"
	"github.com/matzehuels/bldr/pkg/errors"
	"github.com/matzehuels/bldr/pkg/observability"
	"github.com/matzehuels/bldr/pkg/project"
	"github.com/matzehuels/bldr/pkg/toolexec"
)

// Runner builds projects.
//
// A Runner holds no per-build state; concurrent builds of different
// projects may share one.
type Runner struct {
	// Fetcher downloads Maven artifacts. It may be nil for projects
	// without dependencies.
	Fetcher artifact.Fetcher

	// Downloader fetches the header-extraction tool when it is not
	// installed. It may be nil if no module needs extraction.
	Downloader toolexec.Downloader

	Compiler compile.Compiler
	Tools    *toolexec.Runner
	Logger   *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(f artifact.Fetcher, d toolexec.Downloader, c compile.Compiler, tools *toolexec.Runner, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if tools == nil {
		tools = toolexec.NewRunner(logger)
	}
	return &Runner{Fetcher: f, Downloader: d, Compiler: c, Tools: tools, Logger: logger}
}

// build is the state of one Build call.
type build struct {
	*Runner
	plan   Plan
	layout project.Layout
	logger *log.Logger
	stage  *compile.Stage
	asm    *archive.Assembler
	res    *Result
	mu     sync.Mutex

	jextractOnce sync.Once
	jextractHome string
	jextractErr  error
}

// Build runs every phase of plan. The returned error is non-nil only when
// the build could not run to the end; module and step failures are in
// the Result (see [Result.Err]).
func (r *Runner) Build(ctx context.Context, plan Plan) (*Result, error) {
	if err := plan.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := plan.Logger
	if logger == nil {
		logger = r.Logger
	}
	root, err := filepath.Abs(plan.Root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "project root %s", plan.Root)
	}

	b := &build{
		Runner: r,
		plan:   plan,
		layout: plan.Descriptor.Layout(root),
		logger: logger,
		stage:  compile.NewStage(r.Compiler, logger),
		asm:    archive.NewAssembler(logger),
		res: &Result{
			RunID:   uuid.NewString(),
			Project: plan.Descriptor.Name,
			Root:    root,
			Started: time.Now(),
		},
	}
	defer func() { b.res.Duration = time.Since(b.res.Started) }()

	logger.Info("build started", "project", b.res.Project, "run", b.res.RunID, "workers", plan.Workers)
	if err := b.run(ctx); err != nil {
		return b.res, err
	}
	logger.Info("build finished",
		"ok", b.res.Count(StatusOK),
		"failed", b.res.Count(StatusFailed),
		"skipped", b.res.Count(StatusSkipped),
		"duration", time.Since(b.res.Started))
	return b.res, nil
}

func (b *build) run(ctx context.Context) error {
	d := b.plan.Descriptor
	if err := requireDir(b.layout.Root); err != nil {
		return err
	}
	coreDir := d.Core.Path(b.layout.Root)
	if err := requireDir(coreDir); err != nil {
		return err
	}
	groups, err := b.groupDirs()
	if err != nil {
		return err
	}
	if err := b.layout.Ensure(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	base, err := b.resolve(ctx)
	if err != nil {
		return err
	}

	core := b.buildModule(ctx, moduleJob{Name: d.Core.Name, Dir: coreDir, Javac: base})
	b.record(core)
	if core.err != nil {
		return core.err
	}
	withCore := buildcfg.Compile{}.WithClassPath(core.Jar).BasedOn(base)

	if err := b.buildGroups(ctx, groups, withCore); err != nil {
		return err
	}
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.native(ctx, g)
	}
	for _, g := range groups {
		for _, m := range g.Extras {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.extra(ctx, g, m, withCore)
		}
	}
	return ctx.Err()
}

// groupDir is a group whose directory exists.
type groupDir struct {
	project.Group
	Dir string
}

func (b *build) groupDirs() ([]groupDir, error) {
	var out []groupDir
	for _, g := range b.plan.Descriptor.Groups {
		dir := g.Path(b.layout.Root)
		if !isDir(dir) {
			if g.Optional {
				b.logger.Debug("skipping optional group", "group", g.Name, "dir", dir)
				continue
			}
			return nil, errors.New(errors.ErrCodeMissingDirectory, "failed to find directory %s", dir)
		}
		out = append(out, groupDir{Group: g, Dir: dir})
	}
	return out, nil
}

// resolve downloads the declared dependencies and returns the base
// compile configuration with their jars on the class path.
func (b *build) resolve(ctx context.Context) (buildcfg.Compile, error) {
	base := buildcfg.Compile{}.With(b.layout.ExpandAll(b.plan.Descriptor.JavacOpts)...)
	coords := b.plan.Descriptor.Coordinates()
	if len(coords) == 0 {
		return base, nil
	}
	if b.Fetcher == nil {
		return base, errors.New(errors.ErrCodeInvalidInput, "project declares dependencies but no repository is configured")
	}

	start := time.Now()
	resolver := artifact.NewResolver(b.Fetcher, b.layout.Repo, b.logger)
	res, err := resolver.Resolve(ctx, coords...)
	if err != nil {
		return base, err
	}
	for _, a := range res.Artifacts {
		b.res.Dependencies = append(b.res.Dependencies, a.String())
	}
	jars := res.Jars()
	b.res.ClassPath = jars
	b.logger.Info("resolved dependencies", "artifacts", len(res.Artifacts), "jars", len(jars), "duration", time.Since(start))
	return base.WithClassPath(jars...), nil
}

// buildGroups builds the plain modules of every group in a bounded pool.
// Failures are recorded, not returned; only cancellation stops the pool.
func (b *build) buildGroups(ctx context.Context, groups []groupDir, javac buildcfg.Compile) error {
	var jobs []moduleJob
	for _, g := range groups {
		for _, name := range g.Modules {
			dir := filepath.Join(g.Dir, name)
			if !isDir(dir) {
				b.logger.Debug("skipping absent module", "group", g.Name, "module", name)
				continue
			}
			jobs = append(jobs, moduleJob{Group: g.Name, Prefix: g.Prefix, Name: name, Dir: dir, Javac: javac})
		}
	}

	results := make([]ModuleResult, len(jobs))
	var eg errgroup.Group
	eg.SetLimit(b.plan.Workers)
	for i, job := range jobs {
		eg.Go(func() error {
			if ctx.Err() != nil {
				results[i] = skipped(job, "canceled")
				return nil
			}
			results[i] = b.buildModule(ctx, job)
			return nil
		})
	}
	_ = eg.Wait()

	for _, mr := range results {
		b.record(mr)
	}
	return ctx.Err()
}

// native runs a group's cmake steps. Configure runs only when the build
// directory does not exist yet; build always runs.
func (b *build) native(ctx context.Context, g groupDir) {
	if g.CMake == nil {
		return
	}
	step := StepResult{Stage: StageCMake, Owner: g.Name}
	if b.plan.SkipNative {
		step.Status = StatusSkipped
		b.recordStep(step)
		return
	}
	if b.groupFailed(g.Name) {
		step.Status = StatusSkipped
		step.Detail = "module failures in group"
		b.recordStep(step)
		return
	}

	start := time.Now()
	buildDir := b.layout.Expand(g.CMake.BuildDir)
	if !filepath.IsAbs(buildDir) {
		buildDir = filepath.Join(b.layout.Build, buildDir)
	}
	cfg := buildcfg.CMake{}.Source(g.Dir).In(buildDir).With(b.layout.ExpandAll(g.CMake.Opts)...)
	step.Detail = buildDir

	var err error
	if !isDir(buildDir) {
		b.logger.Info("configuring native build", "group", g.Name, "dir", buildDir)
		err = b.Tools.CMake(ctx, cfg)
	}
	if err == nil {
		b.logger.Info("running native build", "group", g.Name)
		err = b.Tools.CMake(ctx, cfg.BuildStep())
	}
	b.finishStep(ctx, step, start, err)
}

// extra generates a module's sources and builds it.
func (b *build) extra(ctx context.Context, g groupDir, m project.Module, javac buildcfg.Compile) {
	job := moduleJob{Group: g.Name, Prefix: g.Prefix, Name: m.Name, Dir: m.Path(g.Dir), Javac: javac}
	if !isDir(job.Dir) {
		b.logger.Debug("skipping absent module", "group", g.Name, "module", m.Name)
		return
	}
	if b.plan.SkipNative && len(m.Extracts) > 0 {
		b.record(skipped(job, "native steps disabled"))
		return
	}
	if !m.Supported(b.plan.Env.OS) {
		b.logger.Warn("module not supported on this platform", "module", m.Name, "os", b.plan.Env.OS)
		b.record(skipped(job, "unsupported on "+b.plan.Env.OS))
		return
	}

	for _, x := range m.Extracts {
		out := x.Dir(b.layout.Extract)
		job.Extra = append(job.Extra, out)
		if isDir(out) {
			b.logger.Debug("extracted sources present", "package", x.Package)
			continue
		}
		if err := b.extract(ctx, job, x, out); err != nil {
			b.record(failed(job, err))
			return
		}
	}
	b.record(b.buildModule(ctx, job))
}

func (b *build) extract(ctx context.Context, job moduleJob, x project.Extract, out string) error {
	step := StepResult{Stage: StageExtract, Owner: job.Name, Detail: x.Package}
	start := time.Now()

	home, err := b.requireJExtract(ctx)
	if err == nil {
		b.logger.Info("extracting headers", "module", job.Name, "package", x.Package)
		cfg := buildcfg.Extract{Home: home, Dir: job.Dir}.
			Package(x.Package, b.layout.Extract).
			WithLibraries(b.layout.ExpandAll(x.Libraries)...).
			WithHeaders(b.layout.ExpandAll(x.Headers)...).
			WithCompileFlags(b.layout.ExpandAll(x.CompileFlags)...)
		err = b.Tools.Extract(ctx, cfg)
		if err != nil {
			// A partial package directory would be taken for a finished one.
			_ = os.RemoveAll(out)
		}
	}
	b.finishStep(ctx, step, start, err)
	return err
}

// requireJExtract provisions the extraction tool once per build.
func (b *build) requireJExtract(ctx context.Context) (string, error) {
	b.jextractOnce.Do(func() {
		p := &toolexec.Provisioner{
			Env:        b.plan.Env,
			Dir:        b.layout.ThirdParty,
			Downloader: b.Downloader,
			Logger:     b.logger,
		}
		b.jextractHome, b.jextractErr = p.Require(ctx)
	})
	return b.jextractHome, b.jextractErr
}

func (b *build) finishStep(ctx context.Context, step StepResult, start time.Time, err error) {
	step.Duration = time.Since(start)
	step.Status = StatusOK
	if err != nil {
		step.Status = StatusFailed
		step.Error = err.Error()
		step.err = errors.Wrap(codeOf(err, errors.ErrCodeExternalTool), err, "%s %s", step.Owner, step.Stage)
		b.logger.Error("step failed", "stage", step.Stage, "owner", step.Owner, "err", err)
	}
	observability.Build().OnStage(ctx, step.Owner, step.Stage, step.Duration, err)
	b.recordStep(step)
}

func (b *build) record(m ModuleResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.res.Modules = append(b.res.Modules, m)
}

func (b *build) recordStep(s StepResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.res.Steps = append(b.res.Steps, s)
}

func (b *build) groupFailed(group string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range b.res.Modules {
		if m.Group == group && m.Status == StatusFailed {
			return true
		}
	}
	return false
}

func requireDir(dir string) error {
	if !isDir(dir) {
		return errors.New(errors.ErrCodeMissingDirectory, "failed to find directory %s", dir)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
