package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/bldr/pkg/artifact"
	"github.com/matzehuels/bldr/pkg/dag"
	"github.com/matzehuels/bldr/pkg/errors"
	graphio "github.com/matzehuels/bldr/pkg/io"
)

// Output formats of the resolve command.
const (
	formatList = "list"
	formatYAML = "yaml"
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

type resolveOptions struct {
	repo     string
	format   string
	output   string
	detailed bool
	reduce   bool
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOptions

	cmd := &cobra.Command{
		Use:   "resolve [group:artifact[:version]...]",
		Short: "Download artifacts and their compile-scope dependencies",
		Long: `Resolve downloads each artifact and its compile-scope closure into the
repository directory and prints the result.

Without arguments the dependencies of the project descriptor are resolved.`,
		Example: `  bldr resolve org.testng:testng:7.1.0
  bldr resolve com.google.guava:guava --format dot
  bldr resolve org.testng:testng:7.1.0 --format svg -o deps.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.repo, "repo", "", "repository directory (default from the project layout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatList, "output format: list, yaml, json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node metadata in dot and svg labels")
	cmd.Flags().BoolVar(&opts.reduce, "reduce", false, "drop edges implied by longer paths (graph formats)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, args []string, opts resolveOptions) error {
	logger := loggerFromContext(ctx)

	switch opts.format {
	case formatList, formatYAML, formatJSON, formatDOT, formatSVG:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q", opts.format)
	}

	root, err := filepath.Abs(c.settings.GetString(keyRoot))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "project root")
	}
	desc, err := loadDescriptor(root, "")
	if err != nil {
		return err
	}

	coords := desc.Coordinates()
	if len(args) > 0 {
		coords = nil
		for _, arg := range args {
			co, err := artifact.ParseCoordinate(arg)
			if err != nil {
				return err
			}
			coords = append(coords, co)
		}
	}
	if len(coords) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "nothing to resolve")
	}

	repo := opts.repo
	if repo == "" {
		repo = desc.Layout(root).Repo
	}
	if err := os.MkdirAll(repo, 0o755); err != nil {
		return err
	}

	client, store, err := c.newMavenClient(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	prog := newProgress(logger)
	res, err := artifact.NewResolver(client, repo, logger).Resolve(ctx, coords...)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Resolved %d artifacts", len(res.Artifacts)))

	if opts.reduce {
		removed, err := dag.TransitiveReduction(res.Graph)
		if err != nil {
			logger.Warn("graph not reduced", "err", err)
		} else {
			logger.Debug("reduced graph", "removed_edges", removed)
		}
	}

	return writeOutput(opts.output, func(w io.Writer) error {
		return writeResolution(ctx, w, res, opts.format, opts.detailed)
	})
}

// resolution is the yaml form of a resolve result.
type resolution struct {
	Roots     []string           `yaml:"roots"`
	Artifacts []resolvedArtifact `yaml:"artifacts"`
}

type resolvedArtifact struct {
	Coordinate string   `yaml:"coordinate"`
	Scope      string   `yaml:"scope"`
	Jar        string   `yaml:"jar,omitempty"`
	Requires   []string `yaml:"requires,omitempty"`
}

func writeResolution(ctx context.Context, w io.Writer, res *artifact.Result, format string, detailed bool) error {
	switch format {
	case formatList:
		for _, a := range res.Artifacts {
			if a.HasJar() {
				fmt.Fprintf(w, "%s\t%s\n", a.String(), a.JarPath())
				continue
			}
			fmt.Fprintln(w, a.String())
		}
		return nil

	case formatYAML:
		out := resolution{}
		for _, a := range res.Roots {
			out.Roots = append(out.Roots, a.String())
		}
		for _, a := range res.Artifacts {
			ra := resolvedArtifact{
				Coordinate: a.String(),
				Scope:      a.Scope.String(),
				Requires:   res.Graph.Children(a.String()),
			}
			if a.HasJar() {
				ra.Jar = a.JarPath()
			}
			out.Artifacts = append(out.Artifacts, ra)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()

	case formatJSON:
		return graphio.WriteJSON(res.Graph, w)

	case formatDOT:
		_, err := io.WriteString(w, dag.ToDOT(res.Graph, dag.DOTOptions{Detailed: detailed}))
		return err

	case formatSVG:
		svg, err := dag.RenderSVG(ctx, dag.ToDOT(res.Graph, dag.DOTOptions{Detailed: detailed}))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown format %q", format)
}

// writeOutput runs write against path, or stdout when path is empty.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printFile(path)
	return nil
}
