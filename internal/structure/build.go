package structure

import (
	"github.com/dgallion1/docx2dita/internal/docreader"
	"github.com/dgallion1/docx2dita/internal/styles"
)

// Build consumes the ordered block stream and produces the heading tree. A
// heading paragraph opens a node at its resolved level; everything after it
// attaches there until a heading of equal or shallower level closes it.
//
// A heading of level L nests under the nearest open ancestor with a smaller
// level, or under the root when none is open. A document with no headings
// yields a root-only tree whose content becomes one fallback topic downstream.
func Build(blocks []docreader.Block, res *styles.Resolver) *Tree {
	t := NewTree()

	type open struct {
		id    NodeID
		level int
	}
	stack := []open{{id: RootID, level: 0}}
	current := func() NodeID { return stack[len(stack)-1].id }

	for i, b := range blocks {
		switch {
		case b.Paragraph != nil:
			p := b.Paragraph
			level := headingLevel(p, res)
			if level > 0 && p.Text != "" {
				for len(stack) > 1 && stack[len(stack)-1].level >= level {
					stack = stack[:len(stack)-1]
				}
				id := t.Add(current(), level, p.Text, p.StyleName, i)
				stack = append(stack, open{id: id, level: level})
				appendImages(t, id, p.Images)
				continue
			}
			target := current()
			if p.Text != "" {
				blk := ContentBlock{
					Kind:  BlockParagraph,
					Text:  p.Text,
					Spans: p.Spans,
				}
				if p.List != nil {
					blk.Kind = BlockListItem
					blk.Ordered = p.List.Ordered
					blk.ListLevel = p.List.Level
				}
				n := t.Node(target)
				n.Blocks = append(n.Blocks, blk)
			}
			appendImages(t, target, p.Images)

		case b.Table != nil:
			n := t.Node(current())
			n.Blocks = append(n.Blocks, ContentBlock{Kind: BlockTable, Rows: b.Table.Rows})
		}
	}
	return t
}

// headingLevel resolves the paragraph's style; when the style says body text,
// the paragraph's own dotted-numeral prefix is the last-resort signal. List
// items never become headings that way, since manually numbered lists would
// match the same pattern.
func headingLevel(p *docreader.ParagraphRecord, res *styles.Resolver) int {
	if level := res.Resolve(p.StyleName); level > 0 {
		return level
	}
	if p.StyleName != "" || p.List != nil {
		return 0
	}
	return styles.NumericPrefixLevel(p.Text)
}

func appendImages(t *Tree, id NodeID, relIDs []string) {
	if len(relIDs) == 0 {
		return
	}
	n := t.Node(id)
	for _, rel := range relIDs {
		n.Blocks = append(n.Blocks, ContentBlock{Kind: BlockImage, RelID: rel})
	}
}
