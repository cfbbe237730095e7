package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/impred/pkg/io"
	"github.com/matzehuels/impred/pkg/pipeline"
)

type layoutFlags struct {
	configPath string
	iterations int
	output     string
	formats    string
	directed   bool
	refresh    bool
	cache      cacheOptions
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Improve the drawing of a graph",
		Long: `Improve the drawing of a graph while preserving its edge crossings.

The input is a JSON graph with node positions. The command runs the layout
engine configured by --config (or the default preset) and writes the result
as <input>.layout.json, plus any other formats requested with --format.

Results are cached locally so repeated runs with the same graph and
configuration are instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "TOML engine configuration (default: built-in preset)")
	cmd.Flags().IntVarP(&flags.iterations, "iterations", "n", 0, "iterations to run (default: from config)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): json (default), dot, svg, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&flags.directed, "directed", false, "draw arrowheads in rendered output")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached results")
	flags.cache.register(cmd)

	return cmd
}

// runLayout loads the graph, lays it out, and writes the outputs.
func (c *CLI) runLayout(ctx context.Context, input string, flags layoutFlags) error {
	formats, err := parseFormats(flags.formats, pipeline.FormatJSON)
	if err != nil {
		return err
	}
	if flags.iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d", flags.iterations)
	}
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	doc, err := io.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, flags.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Laying out %d nodes", doc.Graph.NodeCount()))
	spinner.Start()

	result, err := runner.Execute(ctx, doc, pipeline.Options{
		Config:     cfg,
		Iterations: flags.iterations,
		Formats:    formats,
		Directed:   flags.directed,
		Refresh:    flags.refresh,
		Progress:   spinner.SetProgress,
		Logger:     c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	paths := outputPaths(input, flags.output, ".layout", formats)
	written, err := writeArtifacts(result.Artifacts, paths, formats)
	if err != nil {
		return err
	}

	printSuccess("Layout complete")
	for _, path := range written {
		printFile(path)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.Iterations, result.CacheInfo.LayoutHit)
	printDetail("crossings %d %s %d, mean edge length %.1f %s %.1f",
		result.Stats.Before.Crossings, iconArrow, result.Stats.After.Crossings,
		result.Stats.Before.MeanEdgeLength, iconArrow, result.Stats.After.MeanEdgeLength)
	if path, ok := paths[pipeline.FormatJSON]; ok {
		printNewline()
		printNextStep("Render", appName+" render "+path)
	}
	return nil
}
