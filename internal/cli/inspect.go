package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sankey/pkg/pipeline"
	"github.com/matzehuels/sankey/pkg/sankey"
)

// inspectCommand creates the inspect command, which prints a computed layout
// as a table instead of writing it to a file.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:               "inspect [graph.json|graph.yaml]",
		Short:             "Print the columns and nodes of a computed layout",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeGraphFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.resolve(cmd, c.cfg.Layout.Options())
			return c.runInspect(cmd.Context(), cmd.OutOrStdout(), args[0], opts, flags.noCache)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, w io.Writer, input string, opts pipeline.Options, noCache bool) error {
	in, err := pipeline.LoadInput(input)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, in, opts)
	if err != nil {
		return err
	}
	l := result.Layout

	fmt.Fprintln(w, StyleTitle.Render(input))
	fmt.Fprintln(w, layoutTable(l).Render())
	top, bottom := l.Bounds()
	printStats(len(l.Nodes), len(l.Links), l.Columns, result.CacheHit)
	printKeyValue("scale", formatFloat(l.Scale))
	printKeyValue("extent", formatFloat(top)+" to "+formatFloat(bottom))
	return nil
}

// layoutTable renders one row per node, grouped by column and ordered top to
// bottom within each column.
func layoutTable(l *sankey.Layout) *table.Table {
	var rows [][]string
	for col, idx := range l.ColumnNodes() {
		for _, i := range idx {
			n := &l.Nodes[i]
			rows = append(rows, []string{
				strconv.Itoa(col),
				nodeLabel(n, i),
				formatFloat(n.Value),
				formatFloat(n.Y),
				formatFloat(n.DY),
				strconv.Itoa(len(n.Incoming)),
				strconv.Itoa(len(n.Outgoing)),
			})
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Col", "Node", "Value", "Y", "DY", "In", "Out").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col >= 2 {
				return StyleNumber
			}
			if col == 0 {
				return StyleDim
			}
			return StyleValue
		})
}

// nodeLabel prefers the display name, then the id, then the index.
func nodeLabel(n *sankey.Node, i int) string {
	switch {
	case n.Name != "":
		return n.Name
	case n.ID != "":
		return n.ID
	}
	return "#" + strconv.Itoa(i)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
