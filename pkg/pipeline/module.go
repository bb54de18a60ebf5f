package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/matzehuels/bldr/pkg/buildcfg"
	"github.com/matzehuels/bldr/pkg/errors"
	"github.com/matzehuels/bldr/pkg/observability"
)

// Source and resource roots inside a module directory.
const (
	SourceDir   = "src/main/java"
	ResourceDir = "src/main/resources"
)

// moduleJob is one module to compile and archive.
type moduleJob struct {
	Group  string
	Prefix string
	Name   string
	Dir    string

	// Extra source roots, such as generated sources.
	Extra []string

	Javac buildcfg.Compile
}

// buildModule compiles a module into {prefix-}{name}-{variant}.jar.classes
// and archives the classes, plus resources when present, into the jar.
func (b *build) buildModule(ctx context.Context, job moduleJob) ModuleResult {
	variant := b.plan.Descriptor.Variant
	mr := ModuleResult{
		Name:  job.Name,
		Group: job.Group,
		Jar:   b.layout.Target(job.Prefix, job.Name, variant, ".jar"),
	}
	start := time.Now()
	hooks := observability.Build()
	hooks.OnModuleStart(ctx, job.Name)
	b.logger.Info("building", "module", job.Name+"-"+variant)

	err := b.compileAndArchive(ctx, job, &mr)
	mr.Duration = time.Since(start)
	hooks.OnModuleComplete(ctx, job.Name, mr.Duration, err)
	if err != nil {
		mr.Status = StatusFailed
		mr.Error = err.Error()
		mr.err = errors.Wrap(codeOf(err, errors.ErrCodeInternal), err, "module %s", job.Name)
		b.logger.Error("module failed", "module", job.Name, "err", err)
		return mr
	}
	mr.Status = StatusOK
	b.logger.Info("built", "module", job.Name, "jar", mr.Jar, "duration", mr.Duration)
	return mr
}

func (b *build) compileAndArchive(ctx context.Context, job moduleJob, mr *ModuleResult) error {
	javac := buildcfg.Compile{}.
		InDir(b.layout.Target(job.Prefix, job.Name, b.plan.Descriptor.Variant, ".jar.classes")).
		WithSourcePath(append([]string{filepath.Join(job.Dir, SourceDir)}, job.Extra...)...).
		BasedOn(job.Javac)

	start := time.Now()
	unit, err := b.stage.Compile(ctx, javac)
	if err == nil {
		mr.Sources = len(unit.Sources)
		mr.Warnings = unit.Warnings()
		err = unit.Err()
	}
	observability.Build().OnStage(ctx, job.Name, StageCompile, time.Since(start), err)
	if err != nil {
		return err
	}

	jar := buildcfg.Archive{}.To(mr.Jar).Compile(javac.InDir(unit.OutputDir))
	jar = buildcfg.When(jar, isDir(filepath.Join(job.Dir, ResourceDir)), func(a buildcfg.Archive) buildcfg.Archive {
		return a.WithRoots(filepath.Join(job.Dir, ResourceDir))
	})
	if b.plan.Epoch != nil {
		jar = jar.At(*b.plan.Epoch)
	}

	start = time.Now()
	res, err := b.asm.Assemble(ctx, jar)
	observability.Build().OnStage(ctx, job.Name, StageArchive, time.Since(start), err)
	if err != nil {
		return err
	}
	mr.Entries = res.Files + res.Dirs
	return nil
}

func skipped(job moduleJob, reason string) ModuleResult {
	return ModuleResult{Name: job.Name, Group: job.Group, Status: StatusSkipped, Reason: reason}
}

func failed(job moduleJob, err error) ModuleResult {
	return ModuleResult{
		Name:   job.Name,
		Group:  job.Group,
		Status: StatusFailed,
		Error:  err.Error(),
		err:    errors.Wrap(codeOf(err, errors.ErrCodeExternalTool), err, "module %s", job.Name),
	}
}

// codeOf returns err's code, or fallback when err carries none.
func codeOf(err error, fallback errors.Code) errors.Code {
	if c := errors.GetCode(err); c != "" {
		return c
	}
	return fallback
}
