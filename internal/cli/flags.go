package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/sankey/pkg/pipeline"
)

// layoutFlags are the layout options shared by layout and inspect.
// Only flags set on the command line override the config file.
type layoutFlags struct {
	opts    pipeline.Options
	noCache bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	f.opts = pipeline.DefaultOptions()
	fs := cmd.Flags()
	fs.Float64Var(&f.opts.Width, "width", f.opts.Width, "drawing width")
	fs.Float64Var(&f.opts.Height, "height", f.opts.Height, "drawing height")
	fs.Float64Var(&f.opts.NodeWidth, "node-width", f.opts.NodeWidth, "node rectangle width")
	fs.Float64Var(&f.opts.NodePadding, "node-padding", f.opts.NodePadding, "vertical gap between nodes in a column")
	fs.IntVar(&f.opts.Iterations, "iterations", f.opts.Iterations, "relaxation rounds")
	fs.Float64Var(&f.opts.Curvature, "curvature", f.opts.Curvature, "link curvature between 0 and 1")
	fs.BoolVar(&f.opts.Refresh, "refresh", false, "recompute even when a cached layout exists")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// resolve layers the changed flags over base, which comes from the config.
func (f *layoutFlags) resolve(cmd *cobra.Command, base pipeline.Options) pipeline.Options {
	fs := cmd.Flags()
	if fs.Changed("width") {
		base.Width = f.opts.Width
	}
	if fs.Changed("height") {
		base.Height = f.opts.Height
	}
	if fs.Changed("node-width") {
		base.NodeWidth = f.opts.NodeWidth
	}
	if fs.Changed("node-padding") {
		base.NodePadding = f.opts.NodePadding
	}
	if fs.Changed("iterations") {
		base.Iterations = f.opts.Iterations
	}
	if fs.Changed("curvature") {
		base.Curvature = f.opts.Curvature
	}
	base.Refresh = f.opts.Refresh
	return base
}
