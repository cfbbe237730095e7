package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/impred/pkg/io"
	"github.com/matzehuels/impred/pkg/pipeline"
)

type renderFlags struct {
	output   string
	formats  string
	directed bool
	cache    cacheOptions
}

// renderCommand creates the render command for drawing a laid-out graph.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a laid-out graph to SVG, PNG, PDF or DOT",
		Long: `Render a laid-out graph without changing it.

Node positions are used verbatim (Graphviz neato with pinned positions) and
edge bends are drawn through their control points.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot (comma-separated)")
	cmd.Flags().BoolVar(&flags.directed, "directed", false, "draw arrowheads")
	flags.cache.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, flags renderFlags) error {
	formats, err := parseFormats(flags.formats, pipeline.FormatSVG)
	if err != nil {
		return err
	}
	doc, err := io.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	layout, err := pipeline.MarshalDocument(doc)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, doc, layout, pipeline.Options{
		Formats:  formats,
		Directed: flags.directed,
		Logger:   c.Logger,
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	c.Logger.Debug("rendered", "formats", formats, "cached", hit, "duration", prog.elapsed())

	written, err := writeArtifacts(artifacts, outputPaths(input, flags.output, "", formats), formats)
	if err != nil {
		return err
	}
	printSuccess("Rendered %d file(s)", len(written))
	for _, path := range written {
		printFile(path)
	}
	return nil
}
