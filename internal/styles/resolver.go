// Package styles maps paragraph style names to heading levels. Resolution is
// an ordered chain of independent rules, first match wins, with a per-document
// cache so a style keeps one verdict for the whole conversion.
package styles

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/docx2dita/internal/docreader"
)

// MaxDepth is the deepest heading level the conversion supports.
const MaxDepth = 9

// Record is the resolution result for one distinct style name.
type Record struct {
	Name               string
	OutlineLevel       int // from the style definition, 0 if absent
	BuiltinLevel       int // from built-in/localized name recognition, 0 if none
	NumericPrefixLevel int // from a dotted-numeral name prefix, 0 if none
	ResolvedLevel      int // final verdict, 0 = not a heading
	Origin             string
	ColorTag           string // UI tag, keyed by resolved level
}

// Resolver holds the per-conversion style cache. Not safe for concurrent use;
// each conversion owns its own Resolver.
type Resolver struct {
	defs      map[string]docreader.StyleDef
	overrides map[string]int
	cache     map[string]*Record
}

// NewResolver builds a resolver over the document's style definitions.
// Overrides (style name to forced level, 0 to force body text) bypass every
// other rule.
func NewResolver(defs map[string]docreader.StyleDef, overrides map[string]int) *Resolver {
	return &Resolver{
		defs:      defs,
		overrides: overrides,
		cache:     make(map[string]*Record),
	}
}

// Resolve returns the heading level for a style name, or 0 for body text.
// The first verdict per style name is cached for the rest of the document.
func (r *Resolver) Resolve(styleName string) int {
	if styleName == "" {
		return 0
	}
	if rec, ok := r.cache[styleName]; ok {
		return rec.ResolvedLevel
	}

	rec := &Record{Name: styleName}
	if def, ok := r.defs[styleName]; ok {
		rec.OutlineLevel = def.OutlineLevel
	}
	rec.BuiltinLevel = builtinLevel(styleName)
	rec.NumericPrefixLevel = NumericPrefixLevel(styleName)

	switch {
	case r.overrides != nil && hasOverride(r.overrides, styleName):
		rec.ResolvedLevel = clampLevel(r.overrides[styleName])
		rec.Origin = "override"
	case rec.OutlineLevel > 0:
		rec.ResolvedLevel = clampLevel(rec.OutlineLevel)
		rec.Origin = "outline-level"
	case rec.BuiltinLevel > 0:
		rec.ResolvedLevel = clampLevel(rec.BuiltinLevel)
		rec.Origin = "builtin-name"
	case rec.NumericPrefixLevel > 0:
		rec.ResolvedLevel = clampLevel(rec.NumericPrefixLevel)
		rec.Origin = "numeric-prefix"
	default:
		rec.Origin = "body-text"
	}
	rec.ColorTag = levelColorTag(rec.ResolvedLevel)

	r.cache[styleName] = rec
	return rec.ResolvedLevel
}

// Records returns every cached record, sorted by level then name, for the
// inspection snapshot.
func (r *Resolver) Records() []Record {
	out := make([]Record, 0, len(r.cache))
	for _, rec := range r.cache {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ResolvedLevel != out[j].ResolvedLevel {
			return out[i].ResolvedLevel < out[j].ResolvedLevel
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func hasOverride(m map[string]int, name string) bool {
	_, ok := m[name]
	return ok
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxDepth {
		return MaxDepth
	}
	return level
}

var (
	// Built-in headings plus common localized families: "Heading 2",
	// "heading2", "Titre 3", "Überschrift 1", "Título 4", ...
	builtinHeadingRe = regexp.MustCompile(`(?i)^(heading|titre|t[ií]tulo|[üu]berschrift|rubrik|overskrift|nadpis|kop)\s*([1-9])$`)

	// Leading dotted/dashed numeral: "1.2 Setup", "2-3-1 Procedure".
	numericPrefixRe = regexp.MustCompile(`^\s*\d+([.\-]\d+)*[.)]?\s`)

	digitRe = regexp.MustCompile(`[1-9]`)
)

// Styles Word ships that must never classify as headings, including the
// localized names the source documents actually use.
var knownBodyStyles = map[string]struct{}{
	"normal": {}, "no spacing": {}, "body text": {}, "body text 2": {},
	"body text 3": {}, "body text indent": {}, "list paragraph": {},
	"list": {}, "list 2": {}, "list 3": {}, "list bullet": {},
	"list bullet 2": {}, "list bullet 3": {}, "list number": {},
	"list number 2": {}, "list number 3": {}, "list continue": {},
	"caption": {}, "figure caption": {}, "table caption": {},
	"image caption": {}, "footnote text": {}, "endnote text": {},
	"bibliography": {}, "toc heading": {}, "table of contents": {},
	"header": {}, "footer": {}, "page number": {}, "quote": {},
	"intense quote": {}, "plain text": {}, "block text": {},
	"date": {}, "salutation": {}, "signature": {}, "closing": {},
	"sans interligne": {}, "texte normal": {}, "citation": {}, "legende": {},
}

var strongExclusions = []string{
	"caption", "footnote", "endnote", "toc", "bibliography",
	"break", "divider", "separator",
}

var headingTerms = []string{
	"titre", "titulo", "título", "uberschrift", "überschrift",
	"chapitre", "partie", "sous-titre", "sous-section", "sous section",
	"sous-chapitre", "sous chapitre",
}

// builtinLevel implements built-in heading recognition: native and localized
// "Heading N" families map directly, known body styles are rejected, and the
// remaining heading-flavored names get an inferred level.
func builtinLevel(name string) int {
	if m := builtinHeadingRe.FindStringSubmatch(name); m != nil {
		n, _ := strconv.Atoi(m[2])
		return n
	}

	lower := strings.ToLower(strings.TrimSpace(name))
	if _, ok := knownBodyStyles[lower]; ok {
		return 0
	}
	for _, pat := range strongExclusions {
		if strings.Contains(lower, pat) {
			return 0
		}
	}

	for _, term := range headingTerms {
		if strings.Contains(lower, term) {
			return inferLevel(lower)
		}
	}
	if strings.Contains(lower, "heading") {
		if strings.Contains(lower, "text") {
			return 0
		}
		return inferLevel(lower)
	}
	if strings.Contains(lower, "title") || strings.Contains(lower, "header") {
		return inferLevel(lower)
	}
	return 0
}

// inferLevel picks a level for custom heading-flavored names: an embedded
// digit wins, then semantic terms, then a conservative default of 2.
func inferLevel(lower string) int {
	if d := digitRe.FindString(lower); d != "" {
		n, _ := strconv.Atoi(d)
		return n
	}
	switch {
	case strings.Contains(lower, "subsection"), strings.Contains(lower, "sous-section"),
		strings.Contains(lower, "sous section"), strings.Contains(lower, "subchapter"),
		strings.Contains(lower, "sous-chapitre"), strings.Contains(lower, "sous chapitre"):
		return 3
	case strings.Contains(lower, "title"), strings.Contains(lower, "titre"),
		strings.Contains(lower, "main"), strings.Contains(lower, "principal"):
		return 1
	case strings.Contains(lower, "section"), strings.Contains(lower, "chapter"),
		strings.Contains(lower, "chapitre"), strings.Contains(lower, "partie"),
		strings.Contains(lower, "part"):
		return 2
	}
	return 2
}

// NumericPrefixLevel infers a level from a leading dotted numeral: the level
// is the number of numeric components, capped at MaxDepth. Returns 0 when the
// text has no such prefix. Exported so the structure builder can apply the
// same inference to paragraph text when the style itself is unresolved.
func NumericPrefixLevel(text string) int {
	m := numericPrefixRe.FindString(text)
	if m == "" {
		return 0
	}
	level := 1 + strings.Count(m, ".") + strings.Count(m, "-")
	if strings.HasSuffix(strings.TrimSpace(m), ".") {
		// Trailing dot ("1.2. Title") is a separator, not a component.
		level--
	}
	if level < 1 {
		level = 1
	}
	if level > MaxDepth {
		level = MaxDepth
	}
	return level
}
