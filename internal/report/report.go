// Package report summarizes a conversion for human review: which styles
// resolved to which levels, how many headings each produced, and every
// warning raised during generation.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgallion1/docx2dita/internal/dita"
	"github.com/dgallion1/docx2dita/internal/structure"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown builds the report source.
func Markdown(title string, snap structure.Snapshot, res *dita.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Conversion report: %s\n\n", title)
	fmt.Fprintf(&b, "- Headings detected: %d\n", snap.HeadingCount)
	fmt.Fprintf(&b, "- Deepest level: %d\n", snap.MaxLevel)
	fmt.Fprintf(&b, "- Content blocks: %d\n", snap.BlockCount)
	if res != nil {
		fmt.Fprintf(&b, "- Topics generated: %d\n", len(res.Topics))
		fmt.Fprintf(&b, "- Map entries: %d\n", res.TopicCount())
		fmt.Fprintf(&b, "- Images extracted: %d\n", len(res.Media))
	}
	if len(snap.ExcludedSet) > 0 {
		fmt.Fprintf(&b, "- Excluded styles: %s\n", strings.Join(snap.ExcludedSet, ", "))
	}
	b.WriteString("\n## Styles\n\n")
	b.WriteString("| Style | Level | Origin | Headings |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, u := range snap.Styles {
		level := "body"
		if u.Level > 0 {
			level = fmt.Sprintf("%d", u.Level)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %d |\n", u.Style, level, u.Origin, u.HeadingCount)
	}

	if res != nil && len(res.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "- %s", w.Message)
			if w.TopicID != "" {
				fmt.Fprintf(&b, " (topic %s)", w.TopicID)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

var renderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML renders the report for the inspection endpoint.
func HTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
