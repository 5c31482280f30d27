package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dynalayout/pkg/coarsen"
	"github.com/matzehuels/dynalayout/pkg/graph"
	"github.com/matzehuels/dynalayout/pkg/observability"
	"github.com/matzehuels/dynalayout/pkg/pipeline"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		flags   pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute a multilevel layout for a dynamic graph",
		Long: `Compute a multilevel layout for a dynamic graph.

The input graph is coarsened into a hierarchy of smaller graphs. The coarsest
level is laid out first; every finer level is then seeded from its clusters
and refined by the solver until the original graph has position tracks.

The output is a layout.json file that can be rendered at any instant with
'dynalayout render'. Results are cached locally for faster subsequent runs.
Pass - to read the graph from stdin; the output then defaults to
stdin.layout.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolveOptions(cmd, &flags)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &flags)

	return cmd
}

// runLayout loads the graph, computes the layout and writes it out.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Laying out %d nodes...", g.NodeCount()))
	prev := observability.Layout()
	observability.SetLayoutHooks(&levelProgress{LayoutHooks: prev, spinner: spinner})
	defer observability.SetLayoutHooks(prev)

	sw := startStopwatch(c.Logger)
	spinner.Start()
	layout, cacheHit, err := runner.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	sw.lap("layout computed", "levels", layout.Depth(), "cached", cacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	path := outputPath(output, input, ".layout.json")
	if err := graph.WriteLayoutFile(layout, path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	sw.finish("layout written", "path", path)

	printSuccess("Layout complete")
	printFile(path)
	printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
	printLevelTable(layout.Levels)
	switch layout.StopReason {
	case "", coarsen.StopNone.String():
	case coarsen.StopNoProgress.String():
		printWarning("Coarsening stalled above %d nodes; try --policy %s", opts.MinNodes, coarsen.PolicyWalshaw)
	default:
		printDetail("Coarsening stopped: %s", layout.StopReason)
	}
	printNewline()
	printNextStep("Render", appName+" render "+path)

	return nil
}

// levelProgress reports solved levels on the spinner and forwards every
// event to the hooks it wraps.
type levelProgress struct {
	observability.LayoutHooks
	spinner *Spinner
}

func (p *levelProgress) OnLevelComplete(ctx context.Context, level, nodeCount int, d time.Duration, err error) {
	p.LayoutHooks.OnLevelComplete(ctx, level, nodeCount, d, err)
	if err == nil {
		p.spinner.SetMessage(fmt.Sprintf("Solved level %d (%d nodes)", level, nodeCount))
	}
}
