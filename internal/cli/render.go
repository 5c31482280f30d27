package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dynalayout/pkg/graph"
	"github.com/matzehuels/dynalayout/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		noCache    bool
		formatsStr string
		flags      pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a snapshot of a computed layout",
		Long: `Render a snapshot of a computed layout.

The snapshot shows the nodes and edges present at --time, drawn at their
layout positions. Formats:

  svg   node-link drawing rendered by Graphviz with pinned positions
  dot   the Graphviz source of that drawing
  json  the full layout, independent of --time

Output files are named <input>-t<time>.<format> unless -o is given for a
single format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolveOptions(cmd, &flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				opts.Formats = parseFormats(formatsStr)
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().Float64VarP(&flags.Time, "time", "t", 0, "snapshot time")
	cmd.Flags().Float64Var(&flags.Scale, "scale", pipeline.DefaultScale, "coordinate scale factor")
	cmd.Flags().BoolVar(&flags.Detailed, "detailed", false, "label nodes with their id and metadata")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "re-render even if cached artifacts exist")

	return cmd
}

// runRender loads a layout, renders the requested formats and writes one
// file per format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	layout, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sw := startStopwatch(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Rendering t=%s...", formatTime(opts.Time)))
	spinner.Start()
	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()
	sw.lap("rendered", "time", opts.Time, "cached", cacheHit)

	formats := slices.Sorted(maps.Keys(artifacts))
	paths := artifactPaths(output, input, opts.Time, formats)
	for _, format := range formats {
		if err := os.WriteFile(paths[format], artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
		c.Logger.Debug("wrote artifact", "format", format, "bytes", len(artifacts[format]))
	}
	sw.finish("render written", "formats", len(formats))

	printSuccess("Rendered snapshot at t=%s", formatTime(opts.Time))
	for _, format := range formats {
		printFile(paths[format])
	}
	printStats(len(layout.Graph.Nodes), len(layout.Graph.Edges), cacheHit)

	return nil
}

func formatTime(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
