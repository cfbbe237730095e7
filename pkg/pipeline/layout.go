package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/impred/pkg/impred"
	"github.com/matzehuels/impred/pkg/io"
	"github.com/matzehuels/impred/pkg/observability"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout lays out doc in place: it builds an engine from
// opts.Config and runs opts.Iterations steps, stopping early when ctx is
// cancelled. opts must have been validated.
func ComputeLayout(ctx context.Context, doc *io.Document, opts Options) error {
	g := doc.Graph
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.NodeCount(), opts.Iterations)
	start := time.Now()

	err := runEngine(ctx, doc, opts)
	hooks.OnLayoutComplete(ctx, opts.Iterations, time.Since(start), err)
	return err
}

func runEngine(ctx context.Context, doc *io.Document, opts Options) error {
	engineOpts, err := opts.Config.Build(doc.Graph, opts.Logger)
	if err != nil {
		return err
	}
	e, err := impred.New(doc.Graph, engineOpts)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer e.Close()

	if opts.Progress == nil {
		return e.Iterate(ctx, opts.Iterations)
	}
	e.Plan(opts.Iterations)
	for i := range opts.Iterations {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(); err != nil {
			return err
		}
		opts.Progress(i+1, opts.Iterations)
	}
	return nil
}

// MarshalDocument encodes doc as JSON.
func MarshalDocument(doc *io.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := io.WriteJSON(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
