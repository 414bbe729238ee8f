// Package docreader exposes a word-processing document as an ordered block
// stream plus style definitions and embedded-media lookup. It is the only
// package that touches the source container format.
package docreader

import "errors"

var (
	// ErrNotDocx is returned when the input is not a readable .docx package.
	ErrNotDocx = errors.New("not a readable docx package")
	// ErrImageNotFound is returned when a relationship ID has no backing media.
	ErrImageNotFound = errors.New("image relationship not found")
)

// Span is a run of text with the formatting hints the conversion carries
// (bold/italic/color only).
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Color  string // hex without '#', or "theme-<name>", empty if default
}

// ListInfo marks a paragraph as a list item.
type ListInfo struct {
	Ordered bool
	Level   int // 0-based nesting depth
}

// ParagraphRecord is one paragraph in document order.
type ParagraphRecord struct {
	StyleName string // display name of the paragraph style, "" if none
	Text      string
	Spans     []Span
	List      *ListInfo // nil for plain paragraphs
	Images    []string  // relationship IDs of inline images, in run order
}

// TableRecord is a table flattened to cell text.
type TableRecord struct {
	Rows [][]string
}

// Block is one body-level item: exactly one field is non-nil.
type Block struct {
	Paragraph *ParagraphRecord
	Table     *TableRecord
}

// StyleDef is a paragraph style definition from the document's style sheet.
type StyleDef struct {
	ID           string
	Name         string
	OutlineLevel int // 1-based heading level from w:outlineLvl, 0 if absent
}

// Source is the reader contract the pipeline consumes. Implementations must
// return blocks in original document order.
type Source interface {
	// Name is the source document name, used for fallback titles.
	Name() string
	// Blocks returns the ordered body stream.
	Blocks() []Block
	// Styles returns style definitions keyed by display name.
	Styles() map[string]StyleDef
	// Image resolves a relationship ID to raw bytes and a file extension
	// (without dot). Returns ErrImageNotFound for dangling references.
	Image(relID string) ([]byte, string, error)
}
