package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bldr/pkg/archive"
	"github.com/matzehuels/bldr/pkg/compile"
	"github.com/matzehuels/bldr/pkg/errors"
	"github.com/matzehuels/bldr/pkg/pipeline"
	"github.com/matzehuels/bldr/pkg/platform"
	"github.com/matzehuels/bldr/pkg/project"
	"github.com/matzehuels/bldr/pkg/toolexec"
)

// reproducibleEpoch stamps archive entries under --reproducible when
// SOURCE_DATE_EPOCH is unset. It is the earliest time a zip entry can hold.
var reproducibleEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

type buildOptions struct {
	descriptor string
	skipNative bool
	report     string
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the core, every group module and the native steps",
		Long: `Build resolves the project's dependencies, compiles and archives the core
module, then every module of each group, runs the groups' cmake steps and
finally the modules that compile against extracted headers.

The project is described by bldr.toml in the root directory. Without one the
standard layout is used.`,
		Example: `  bldr build
  bldr build --root ~/src/hat --workers 4
  SOURCE_DATE_EPOCH=1700000000 bldr build --report build.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.descriptor, "descriptor", "", "project descriptor (default <root>/bldr.toml)")
	cmd.Flags().IntP("workers", "j", 0, "concurrent module builds (default: number of CPUs)")
	cmd.Flags().Bool("reproducible", false, "fixed archive timestamps (SOURCE_DATE_EPOCH or 1980-01-01)")
	cmd.Flags().BoolVar(&opts.skipNative, "skip-native", false, "skip cmake and header extraction")
	cmd.Flags().StringVar(&opts.report, "report", "", "write a YAML build report to file (- for stdout)")

	_ = c.settings.BindPFlag(keyWorkers, cmd.Flags().Lookup("workers"))
	_ = c.settings.BindPFlag(keyReproducible, cmd.Flags().Lookup("reproducible"))

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, opts buildOptions) error {
	logger := loggerFromContext(ctx)

	root, err := filepath.Abs(c.settings.GetString(keyRoot))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "project root")
	}
	desc, err := loadDescriptor(root, opts.descriptor)
	if err != nil {
		return err
	}

	env, err := platform.Detect()
	if err != nil {
		return err
	}
	epoch, err := c.epoch()
	if err != nil {
		return err
	}

	client, store, err := c.newMavenClient(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	tools := toolexec.NewRunner(logger)
	tools.CMakePath = c.settings.GetString(keyCMake)
	javac := c.settings.GetString(keyJavac)
	if javac == "" {
		javac = env.Java("javac")
	}
	compiler := compile.Javac{Runner: tools, Path: javac}

	runner := pipeline.NewRunner(client, client, compiler, tools, logger)
	prog := newProgress(logger)
	res, err := runner.Build(ctx, pipeline.Plan{
		Root:       root,
		Descriptor: desc,
		Env:        env,
		Workers:    c.settings.GetInt(keyWorkers),
		SkipNative: opts.skipNative,
		Epoch:      epoch,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %s", res.Project))

	printBuildResult(res)
	if opts.report != "" {
		path := opts.report
		if path == "-" {
			path = ""
		}
		if err := writeOutput(path, res.WriteYAML); err != nil {
			return err
		}
	}
	return res.Err()
}

// loadDescriptor reads an explicit descriptor or looks for one in root.
func loadDescriptor(root, path string) (*project.Descriptor, error) {
	if path != "" {
		return project.Load(path)
	}
	desc, _, err := project.Find(root)
	return desc, err
}

// epoch returns the archive timestamp override, if any.
func (c *CLI) epoch() (*time.Time, error) {
	t, err := archive.EpochFromEnv(os.Getenv)
	if err != nil || t != nil {
		return t, err
	}
	if c.settings.GetBool(keyReproducible) {
		e := reproducibleEpoch
		return &e, nil
	}
	return nil, nil
}
