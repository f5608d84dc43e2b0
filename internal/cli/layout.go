package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/sankey/pkg/errors"
	pkgio "github.com/matzehuels/sankey/pkg/io"
	"github.com/matzehuels/sankey/pkg/pipeline"
)

// layoutJob describes one layout command invocation.
type layoutJob struct {
	input  string
	output string // "-" writes to stdout
	format string // empty: from the output extension, else json
	paths  bool
	stdout io.Writer
}

// layoutCommand creates the layout command for computing Sankey layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags layoutFlags
		job   layoutJob
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json|graph.yaml]",
		Short: "Compute a Sankey layout from a flow graph",
		Long: `Compute a Sankey layout from a flow graph.

The input lists nodes and weighted links; a link's source and target are
either node indices or node ids. The output holds every node's column,
position and size plus every link's thickness and offsets, ready for any
renderer. Link paths (control points for a cubic curve) are included unless
--paths=false.

Results are cached locally for faster subsequent runs. With --watch the
layout is recomputed whenever the input file changes.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeGraphFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			job.input = args[0]
			job.stdout = cmd.OutOrStdout()
			opts := flags.resolve(cmd, c.cfg.Layout.Options())
			return c.runLayout(cmd.Context(), job, opts, flags.noCache, watch)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&job.output, "output", "o", "", "output file, - for stdout (default: <input>.layout.<format>)")
	cmd.Flags().StringVarP(&job.format, "format", "f", "", "output format: json, yaml (default: from output extension, else json)")
	cmd.Flags().BoolVar(&job.paths, "paths", true, "include link paths in the output")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "recompute when the input changes")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// runLayout computes the layout once and, when watching, again after every
// change to the input until ctx is cancelled.
func (c *CLI) runLayout(ctx context.Context, job layoutJob, opts pipeline.Options, noCache, watch bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if err := c.writeLayout(ctx, runner, job, opts); err != nil {
		if !watch {
			return err
		}
		printError("%s", errs.UserMessage(err))
	}
	if !watch {
		return nil
	}

	printInfo("Watching %s for changes (ctrl-c to stop)", job.input)
	err = watchFile(ctx, job.input, c.Logger, func() {
		if err := c.writeLayout(ctx, runner, job, opts); err != nil {
			printError("%s", errs.UserMessage(err))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// writeLayout loads the input, computes the layout, and writes output.
func (c *CLI) writeLayout(ctx context.Context, runner *pipeline.Runner, job layoutJob, opts pipeline.Options) error {
	prog := newProgress(c.Logger)

	in, err := pipeline.LoadInput(job.input)
	if err != nil {
		return err
	}
	path, format, err := job.target()
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, stderr, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, in, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	var lopts []pkgio.LayoutOption
	if job.paths {
		lopts = append(lopts, pkgio.WithPaths(opts.Curvature))
	}

	if path == "-" {
		return pkgio.WriteLayout(job.stdout, result.Layout, format, lopts...)
	}
	if err := writeFile(path, func(w io.Writer) error {
		return pkgio.WriteLayout(w, result.Layout, format, lopts...)
	}); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "write output %s", path)
	}

	prog.done("Layout written")
	printSuccess("Layout complete")
	printFile(path)
	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.Stats.Columns, result.CacheHit)
	printNewline()
	printNextStep("Inspect", appName+" inspect "+job.input)
	return nil
}

// target resolves the output path and format.
func (j layoutJob) target() (string, pkgio.Format, error) {
	if j.format != "" {
		format, err := pkgio.ParseFormat(j.format)
		if err != nil {
			return "", "", errs.Wrap(errs.ErrCodeInvalidFormat, err, "unsupported output format %q", j.format)
		}
		if j.output == "" {
			return defaultOutput(j.input, format), format, nil
		}
		return j.output, format, nil
	}
	switch j.output {
	case "":
		return defaultOutput(j.input, pkgio.FormatJSON), pkgio.FormatJSON, nil
	case "-":
		return "-", pkgio.FormatJSON, nil
	}
	format, err := pkgio.FormatFromPath(j.output)
	if err != nil {
		return "", "", errs.Wrap(errs.ErrCodeInvalidFormat, err, "cannot infer format from %s, use --format", j.output)
	}
	return j.output, format, nil
}

func defaultOutput(input string, format pkgio.Format) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".layout" + format.Ext()
}

// writeFile writes through a temp file and renames it into place so that
// readers never see a partial layout.
func writeFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sankey-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
