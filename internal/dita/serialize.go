package dita

import (
	"strconv"

	"github.com/dgallion1/docx2dita/internal/structure"
)

const (
	conceptDoctype = `<!DOCTYPE concept PUBLIC "-//OASIS//DTD DITA Concept//EN" "concept.dtd">`
	mapDoctype     = `<!DOCTYPE map PUBLIC "-//OASIS//DTD DITA Map//EN" "map.dtd">`
)

// renderTopic serializes one topic as a DITA concept document.
func (g *generator) renderTopic(id, title string, blocks []structure.ContentBlock) []byte {
	concept := el("concept", "id", id, "xml:lang", "en-US")
	concept.add(el("title").add(title))
	concept.add(g.renderBody(id, blocks))
	return document(conceptDoctype, concept)
}

func (g *generator) renderBody(topicID string, blocks []structure.ContentBlock) *elem {
	body := el("conbody")
	for i := 0; i < len(blocks); i++ {
		b := blocks[i]
		switch b.Kind {
		case structure.BlockParagraph:
			body.add(g.renderParagraph(b))
		case structure.BlockListItem:
			// Consume the whole run of consecutive list items.
			j := i
			for j < len(blocks) && blocks[j].Kind == structure.BlockListItem {
				j++
			}
			body.add(g.renderList(blocks[i:j]))
			i = j - 1
		case structure.BlockTable:
			body.add(renderTable(b.Rows))
		case structure.BlockImage:
			body.add(g.renderImage(b.RelID, topicID))
		}
	}
	return body
}

func (g *generator) renderParagraph(b structure.ContentBlock) *elem {
	p := el("p")
	g.addSpans(p, b)
	return p
}

// addSpans writes the block's text, wrapping spans that carry formatting
// hints. A block parsed without span detail falls back to its plain text.
func (g *generator) addSpans(target *elem, b structure.ContentBlock) {
	if len(b.Spans) == 0 {
		target.add(b.Text)
		return
	}
	for _, s := range b.Spans {
		var node any = s.Text
		if cls := g.colors.OutputClass(s.Color); cls != "" {
			node = el("ph", "outputclass", cls).add(node)
		}
		if s.Italic {
			node = el("i").add(node)
		}
		if s.Bold {
			node = el("b").add(node)
		}
		target.add(node)
	}
}

// renderList nests consecutive list items by their declared level, keeping
// ordinal/bullet fidelity per level.
func (g *generator) renderList(items []structure.ContentBlock) *elem {
	listEl := func(ordered bool) *elem {
		if ordered {
			return el("ol")
		}
		return el("ul")
	}

	top := listEl(items[0].Ordered)
	stack := []*elem{top}
	levels := []int{items[0].ListLevel}

	for _, item := range items {
		for len(stack) > 1 && item.ListLevel < levels[len(levels)-1] {
			stack = stack[:len(stack)-1]
			levels = levels[:len(levels)-1]
		}
		if item.ListLevel > levels[len(levels)-1] {
			sub := listEl(item.Ordered)
			parent := stack[len(stack)-1]
			if n := len(parent.children); n > 0 {
				if li, ok := parent.children[n-1].(*elem); ok {
					li.add(sub)
				}
			} else {
				parent.add(sub)
			}
			stack = append(stack, sub)
			levels = append(levels, item.ListLevel)
		}
		li := el("li")
		g.addSpans(li, item)
		stack[len(stack)-1].add(li)
	}
	return top
}

func renderTable(rows [][]string) *elem {
	table := el("simpletable")
	for _, row := range rows {
		tr := el("strow")
		for _, cell := range row {
			entry := el("stentry")
			if cell != "" {
				entry.add(cell)
			}
			tr.add(entry)
		}
		table.add(tr)
	}
	return table
}

func (g *generator) renderImage(relID, topicID string) *elem {
	ref := g.imageRef(relID, topicID)
	if ref.Unresolved {
		// Keep a placeholder so the reference survives for later repair.
		return el("fig").add(el("image", "href", relID, "id", ref.RefID, "outputclass", "unresolved"))
	}
	return el("fig").add(el("image", "href", "../"+ref.ExtractedPath, "id", ref.RefID))
}

// renderMap serializes the navigation structure. Caller metadata lands on the
// map root only; topicrefs carry navtitle, critdates, and the tocIndex that
// is the single persisted ordering key.
func (g *generator) renderMap(title string) []byte {
	m := el("map", "xml:lang", "en-US")
	m.add(el("title").add(title))

	meta := el("topicmeta")
	if g.meta.RevisionDate != "" {
		meta.add(el("critdates").add(
			el("created", "date", g.meta.RevisionDate),
			el("revised", "modified", g.meta.RevisionDate),
		))
	}
	if g.meta.Code != "" {
		meta.add(el("othermeta", "name", "code", "content", g.meta.Code))
	}
	if g.meta.Reference != "" {
		meta.add(el("othermeta", "name", "reference", "content", g.meta.Reference))
	}
	if g.meta.RevisionNumber != "" {
		meta.add(el("othermeta", "name", "revision-number", "content", g.meta.RevisionNumber))
	}
	if len(meta.children) > 0 {
		m.add(meta)
	}

	for _, entry := range g.result.Entries {
		m.add(g.renderMapEntry(entry))
	}
	return document(mapDoctype, m)
}

func (g *generator) renderMapEntry(entry *MapEntry) *elem {
	var ref *elem
	if entry.TopicID == "" {
		ref = el("topichead", "data-level", strconv.Itoa(entry.Level))
	} else {
		ref = el("topicref",
			"href", "topics/"+entry.TopicID+".dita",
			"locktitle", "yes",
			"data-level", strconv.Itoa(entry.Level),
		)
	}

	meta := el("topicmeta")
	meta.add(el("navtitle").add(entry.Title))
	if g.meta.RevisionDate != "" {
		meta.add(el("critdates").add(
			el("created", "date", g.meta.RevisionDate),
			el("revised", "modified", g.meta.RevisionDate),
		))
	}
	meta.add(el("othermeta", "name", "tocIndex", "content", strconv.Itoa(entry.TocIndex)))
	ref.add(meta)

	for _, child := range entry.Children {
		ref.add(g.renderMapEntry(child))
	}
	return ref
}
