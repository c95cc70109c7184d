// Package pipeline provides the parse → lens → generate pipeline for
// Polagram.
//
// The core of the package is [ApplyLens], which runs the filters of a lens
// in order and then the sanitizers, whatever the lens contains. [Runner]
// wraps the full pipeline with caching, observability hooks and logging so
// the CLI and any batch driver behave the same way.
//
// # Stages
//
//  1. Parse: source text in Mermaid or PlantUML to a tree (cached as msgpack)
//  2. Lens: filters and sanitizers applied to a copy of the tree
//  3. Generate: the view in every requested output format (cached per format)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:   text,
//	    Filename: "checkout.mmd",
//	    Lens:     publicLens,
//	    Formats:  []string{pipeline.FormatPlantUML},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(string(result.Artifacts[pipeline.FormatPlantUML]))
//
// Identical (source, lens, format) inputs always produce identical output.
// Independent jobs can run concurrently; see [Runner.Batch].
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/cache"
	"github.com/matzehuels/polagram/pkg/dialect"
	"github.com/matzehuels/polagram/pkg/errors"
	"github.com/matzehuels/polagram/pkg/lens"
)

// Format constants for output formats.
const (
	FormatMermaid  = string(dialect.Mermaid)
	FormatPlantUML = string(dialect.PlantUML)
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatSVG      = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatMermaid:  true,
	FormatPlantUML: true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatSVG:      true,
}

// Extensions maps output formats to file extensions.
var Extensions = map[string]string{
	FormatMermaid:  ".mmd",
	FormatPlantUML: ".puml",
	FormatJSON:     ".json",
	FormatDOT:      ".dot",
	FormatSVG:      ".svg",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Source is the diagram text.
	Source string `json:"source"`
	// Filename is used for format detection and in log lines.
	Filename string `json:"filename,omitempty"`
	// Format is the input dialect, detected from Filename and Source when
	// empty.
	Format dialect.Format `json:"format,omitempty"`

	// Lens is applied after parsing. The zero value means the identity lens.
	Lens lens.Lens `json:"lens"`

	// Formats are the output formats, defaulting to the input dialect.
	Formats []string `json:"formats,omitempty"`
	// Detailed labels graph edges with message texts (dot and svg).
	Detailed bool `json:"detailed,omitempty"`

	// Refresh bypasses cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Root is the parsed tree, View the tree after the lens.
	Root *ast.Root
	View *ast.Root

	// ASTHash is the content hash of the parsed tree.
	ASTHash string

	// Artifacts contains generated outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Participants int // participants in the view
	Events       int // events in the view, at any depth
	ParseTime    time.Duration
	LensTime     time.Duration
	GenerateTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit    bool // Whether the parsed tree came from cache
	GenerateHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid output format: %q (must be one of: mermaid, plantuml, json, dot, svg)", format)
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

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if o.Lens.Name == "" && len(o.Lens.Layers) == 0 {
		o.Lens = lens.Identity
	}
	if err := o.Lens.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{string(o.Format)}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse resolves the input format and the logger.
func (o *Options) ValidateForParse() error {
	if o.Format == "" {
		f, err := dialect.Detect(o.Filename, o.Source)
		if err != nil {
			return err
		}
		o.Format = f
	} else {
		f, err := dialect.ParseFormat(string(o.Format))
		if err != nil {
			return err
		}
		o.Format = f
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ViewKeyOpts returns cache key options for one generated format.
func (o *Options) ViewKeyOpts(format string) cache.ViewKeyOpts {
	return cache.ViewKeyOpts{
		LensHash: LensHash(o.Lens),
		Format:   format,
		Detailed: o.Detailed && (format == FormatDOT || format == FormatSVG),
	}
}

// name labels the run in logs and errors.
func (o *Options) name() string {
	if o.Filename != "" {
		return fmt.Sprintf("%s [%s]", o.Filename, o.Lens.Name)
	}
	return o.Lens.Name
}
