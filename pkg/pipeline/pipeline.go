// Package pipeline runs the load → layout → render pipeline shared by the
// CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of two stages over an [io.Document]:
//
//  1. Layout: build an engine from a [config.Config] and iterate it
//  2. Render: produce artifacts (JSON, DOT, SVG, PNG, PDF) from the result
//
// A [Runner] wraps both stages with a [cache.Cache] so identical requests
// skip the engine and the renderer.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Config:  config.Default(),
//	    Formats: []string{"json", "svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/impred/pkg/cache"
	"github.com/matzehuels/impred/pkg/config"
	"github.com/matzehuels/impred/pkg/io"
	"github.com/matzehuels/impred/pkg/quality"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultIterations is used when neither the options nor the
	// configuration set an iteration count.
	DefaultIterations = config.DefaultIterations

	// DefaultFormat is the output format when none is requested.
	DefaultFormat = FormatJSON
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It supports JSON for API requests.
type Options struct {
	// Config is the engine configuration. Nil uses config.Default().
	Config *config.Config `json:"config,omitempty"`

	// Iterations overrides Config.Iterations when positive.
	Iterations int `json:"iterations,omitempty"`

	Formats  []string `json:"formats,omitempty"`
	Directed bool     `json:"directed,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Progress, if set, is called after every iteration.
	Progress func(iteration, total int) `json:"-"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the laid-out graph.
	Document *io.Document

	// GraphHash is the content hash of the input document.
	GraphHash string

	// Layout is the JSON encoding of Document.
	Layout []byte

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Iterations int
	LayoutTime time.Duration
	RenderTime time.Duration

	// Before and After describe the input and the laid-out drawing.
	Before quality.Report
	After  quality.Report
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		names := make([]string, 0, len(ValidFormats))
		for f := range ValidFormats {
			names = append(names, f)
		}
		slices.Sort(names)
		return fmt.Errorf("invalid format: %q (must be one of: %s)", format, strings.Join(names, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults fills in defaults and validates the options.
// Calling it repeatedly has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Config == nil {
		o.Config = config.Default()
	}
	if o.Iterations == 0 {
		o.Iterations = o.Config.Iterations
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return nil
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() (cache.LayoutKeyOpts, error) {
	h, err := cache.HashJSON(o.Config)
	if err != nil {
		return cache.LayoutKeyOpts{}, err
	}
	return cache.LayoutKeyOpts{ConfigHash: h, Iterations: o.Iterations}, nil
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	if o.Directed {
		format += "+directed"
	}
	return cache.ArtifactKeyOpts{Format: format}
}
