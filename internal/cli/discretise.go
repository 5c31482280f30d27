package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dynalayout/pkg/dygraph"
	"github.com/matzehuels/dynalayout/pkg/graph"
	"github.com/matzehuels/dynalayout/pkg/pipeline"
)

// discretiseCommand creates the discretise command.
func (c *CLI) discretiseCommand() *cobra.Command {
	var (
		output    string
		noCache   bool
		times     string
		intervals string
		flags     pipeline.Options
	)

	cmd := &cobra.Command{
		Use:     "discretise [graph.json]",
		Aliases: []string{"discretize"},
		Short:   "Slice a dynamic graph into constant time slices",
		Long: `Slice a dynamic graph into constant time slices.

With --times, every snapshot time becomes a slice reaching halfway to its
neighbours, or --radius around it when set. With --intervals, each interval
becomes one slice. A node or edge is present in a slice when it is present
anywhere in the matching input interval; positions keep their motion across
the slice.

Intervals use bracket notation and are separated by semicolons:

  dynalayout discretise graph.json --intervals "[0, 4); [4, 10]"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolveOptions(cmd, &flags)
			if err != nil {
				return err
			}
			if err := overlaySlices(cmd, &opts, times, intervals); err != nil {
				return err
			}
			return c.runDiscretise(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.sliced.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&times, "times", "", "comma-separated snapshot times, e.g. 0,5,10")
	cmd.Flags().Float64Var(&flags.Radius, "radius", 0, "half-width of each snapshot slice (default: halfway to neighbours)")
	cmd.Flags().StringVar(&intervals, "intervals", "", "semicolon-separated slice intervals, e.g. \"[0, 4); [4, 10]\"")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "recompute even if a cached result exists")
	cmd.MarkFlagsMutuallyExclusive("times", "intervals")

	return cmd
}

// overlaySlices applies --times or --intervals. Either flag replaces both
// config values so the file cannot combine with the command line.
func overlaySlices(cmd *cobra.Command, opts *pipeline.Options, times, intervals string) error {
	switch {
	case cmd.Flags().Changed("times"):
		ts, err := parseTimes(times)
		if err != nil {
			return err
		}
		opts.SnapTimes, opts.Intervals = ts, nil
	case cmd.Flags().Changed("intervals"):
		opts.SnapTimes, opts.Intervals = nil, parseIntervals(intervals)
	}
	return nil
}

// runDiscretise loads the graph, slices it and writes the result.
func (c *CLI) runDiscretise(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sw := startStopwatch(c.Logger)
	sliced, cacheHit, err := runner.DiscretiseWithCacheInfo(ctx, g, opts)
	if err != nil {
		return fmt.Errorf("discretise: %w", err)
	}
	sw.lap("discretised", "cached", cacheHit)

	path := outputPath(output, input, ".sliced.json")
	if err := graph.WriteGraphFile(sliced, path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	sw.finish("slices written", "path", path, "nodes", sliced.NodeCount())

	printSuccess("Discretisation complete")
	printFile(path)
	printStats(sliced.NodeCount(), sliced.EdgeCount(), cacheHit)
	if times := sliced.Meta().Text(dygraph.MetaSnapshotTimes); times != "" {
		printKeyValue("Snapshots", times)
	}
	printNewline()
	printNextStep("Lay out", appName+" layout "+path)

	return nil
}
