// Package convert wires the conversion pipeline end to end: read, resolve
// styles, build the heading tree, filter, generate, package. It owns the
// per-conversion state, so concurrent conversions never share anything.
package convert

import (
	"fmt"
	"sync"

	"github.com/dgallion1/docx2dita/internal/archive"
	"github.com/dgallion1/docx2dita/internal/dita"
	"github.com/dgallion1/docx2dita/internal/docreader"
	"github.com/dgallion1/docx2dita/internal/report"
	"github.com/dgallion1/docx2dita/internal/structure"
	"github.com/dgallion1/docx2dita/internal/styles"
)

// Options is the caller-supplied configuration for one conversion.
type Options struct {
	// StyleOverrides forces levels for listed styles, bypassing resolution.
	StyleOverrides map[string]int
	// ExcludedStyles names heading styles to treat as invisible.
	ExcludedStyles []string
	// Metadata is attached to the map root.
	Metadata dita.Metadata
	// ColorRules maps run colors to outputclass markers; nil uses defaults.
	ColorRules *styles.ColorRules
	// Progress, when set, receives phase markers. Fire and forget: the
	// return is never consulted and the pipeline never blocks on it.
	Progress func(phase string)
}

// Conversion holds one document's conversion state. The pristine tree and
// resolver survive generation so the exclusion set can be changed and the
// generator re-run without re-parsing the source.
type Conversion struct {
	source   docreader.Source
	resolver *styles.Resolver
	pristine *structure.Tree
	meta     dita.Metadata
	colors   styles.ColorRules
	progress func(string)

	// mu guards excluded, Result, and Archive: Regenerate may run
	// concurrently with snapshot, report, and archive reads.
	mu       sync.Mutex
	excluded map[string]bool

	// Result and Archive reflect the latest Regenerate call. Concurrent
	// readers go through Output.
	Result  *dita.Result
	Archive []byte
}

// Run converts raw .docx bytes. A document that cannot be opened is fatal;
// no partial state is retained.
func Run(data []byte, filename string, opts Options) (*Conversion, error) {
	notify(opts.Progress, "Loading document...")
	src, err := docreader.OpenDocx(data, filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	return RunSource(src, opts)
}

// RunSource converts an already-opened document source.
func RunSource(src docreader.Source, opts Options) (*Conversion, error) {
	colors := styles.DefaultColorRules()
	if opts.ColorRules != nil {
		colors = *opts.ColorRules
	}

	notify(opts.Progress, "Analyzing document styles...")
	resolver := styles.NewResolver(src.Styles(), opts.StyleOverrides)

	notify(opts.Progress, "Analyzing document structure...")
	tree := structure.Build(src.Blocks(), resolver)
	structure.DetermineRoles(tree)

	c := &Conversion{
		source:   src,
		resolver: resolver,
		pristine: tree,
		meta:     opts.Metadata,
		colors:   colors,
		progress: opts.Progress,
	}
	if err := c.Regenerate(opts.ExcludedStyles); err != nil {
		return nil, err
	}
	return c, nil
}

// Regenerate re-applies the exclusion filter to a copy of the pristine tree
// and re-runs generation and packaging. Style resolution and structure
// building are not repeated.
func (c *Conversion) Regenerate(excludedStyles []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.excluded = make(map[string]bool, len(excludedStyles))
	for _, s := range excludedStyles {
		c.excluded[s] = true
	}

	filtered := c.pristine.Clone()
	structure.ApplyExclusions(filtered, c.excluded)

	notify(c.progress, "Building topics...")
	res, err := dita.Generate(filtered, c.source, c.meta, c.colors, c.source.Name())
	if err != nil {
		return fmt.Errorf("generate topics: %w", err)
	}

	notify(c.progress, "Packaging archive...")
	zipBytes, err := archive.Write(res)
	if err != nil {
		return fmt.Errorf("package archive: %w", err)
	}

	c.Result = res
	c.Archive = zipBytes
	notify(c.progress, "Conversion finished.")
	return nil
}

// Snapshot exposes the pre-filter style and heading population so a caller
// can adjust exclusions before calling Regenerate.
func (c *Conversion) Snapshot() structure.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Conversion) snapshot() structure.Snapshot {
	return structure.TakeSnapshot(c.pristine, c.resolver, c.excluded)
}

// Report builds the human-readable conversion summary.
func (c *Conversion) Report() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	title := c.meta.Title
	if title == "" {
		title = c.source.Name()
	}
	return report.Markdown(title, c.snapshot(), c.Result)
}

// Output returns the latest generated result and packaged archive. The
// result pointer is immutable once generated; Regenerate swaps it wholesale.
func (c *Conversion) Output() (*dita.Result, []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Result, c.Archive
}

func notify(fn func(string), phase string) {
	if fn != nil {
		fn(phase)
	}
}
