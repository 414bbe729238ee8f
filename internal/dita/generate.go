// Package dita turns a filtered heading tree into topic documents, a
// navigation map with contiguous pre-order tocIndex values, and extracted
// media with deduplicated references.
package dita

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/dgallion1/docx2dita/internal/structure"
	"github.com/dgallion1/docx2dita/internal/styles"
)

// ErrDuplicateTopicID signals a violated uniqueness invariant: topic IDs are
// derived from source position and must never collide.
var ErrDuplicateTopicID = errors.New("duplicate topic id")

// Metadata is attached to the map root only, never to individual topics.
type Metadata struct {
	Title          string `json:"title"`
	Code           string `json:"code"`
	Reference      string `json:"reference"`
	RevisionDate   string `json:"revision_date"` // ISO 8601 date
	RevisionNumber string `json:"revision_number"`
}

// Topic is one generated topic document.
type Topic struct {
	ID       string
	Filename string // path within the archive, e.g. "topics/topic_ab12cd.dita"
	Title    string
	Level    int
	ParentID string // empty for top-level topics
	Body     []byte
}

// MapEntry mirrors the navigation structure. An empty TopicID marks a
// structural group with no body. TocIndex is the sole persisted ordering key.
type MapEntry struct {
	TopicID  string      `json:"topic_id,omitempty"`
	Title    string      `json:"title"`
	Level    int         `json:"level"`
	TocIndex int         `json:"toc_index"`
	Children []*MapEntry `json:"children,omitempty"`
}

// ImageRef is the one-per-relationship-ID record for extracted media.
type ImageRef struct {
	RelID         string
	ExtractedPath string // "media/img_3.png"
	RefID         string // "img_3"
	Unresolved    bool
}

// Warning is a non-fatal conversion problem, reported to the caller.
type Warning struct {
	RelID   string `json:"rel_id,omitempty"`
	TopicID string `json:"topic_id,omitempty"`
	Message string `json:"message"`
}

// ImageSource resolves relationship IDs to raw media bytes.
type ImageSource interface {
	Image(relID string) ([]byte, string, error)
}

// Result is the complete generated archive content.
type Result struct {
	Topics   []Topic
	Entries  []*MapEntry
	MapXML   []byte
	Media    map[string][]byte // extracted path -> bytes
	Refs     map[string]*ImageRef
	Warnings []Warning
}

// TopicCount returns the number of map entries, i.e. the tocIndex domain.
func (r *Result) TopicCount() int {
	var count func(es []*MapEntry) int
	count = func(es []*MapEntry) int {
		n := len(es)
		for _, e := range es {
			n += count(e.Children)
		}
		return n
	}
	return count(r.Entries)
}

type generator struct {
	tree   *structure.Tree
	src    ImageSource
	meta   Metadata
	colors styles.ColorRules

	result   *Result
	seenIDs  map[string]bool
	tocIndex int
	imageSeq int
}

// Generate walks the post-filter tree depth-first and emits the archive
// content: one topic per branch/leaf node (branches without direct content
// become structural groups), map entries in strict pre-order, and media
// extracted once per relationship ID. fallbackTitle names the single topic a
// heading-less document collapses into when metadata carries no title.
func Generate(tree *structure.Tree, src ImageSource, meta Metadata, colors styles.ColorRules, fallbackTitle string) (*Result, error) {
	g := &generator{
		tree:   tree,
		src:    src,
		meta:   meta,
		colors: colors,
		result: &Result{
			Media: make(map[string][]byte),
			Refs:  make(map[string]*ImageRef),
		},
		seenIDs: make(map[string]bool),
	}

	root := tree.Root()
	title := meta.Title
	if title == "" {
		title = fallbackTitle
	}
	if title == "" {
		title = "Document"
	}

	if len(root.Children) == 0 {
		// No headings anywhere: one ungrouped topic hosting all content.
		entry, err := g.emitTopic(title, 1, "", root.Blocks, root.SourceIndex)
		if err != nil {
			return nil, err
		}
		g.result.Entries = append(g.result.Entries, entry)
	} else {
		// Content ahead of the first heading becomes a preface topic so
		// it is not silently dropped.
		if len(root.Blocks) > 0 {
			entry, err := g.emitTopic(title, 1, "", root.Blocks, -1)
			if err != nil {
				return nil, err
			}
			g.result.Entries = append(g.result.Entries, entry)
		}
		for _, c := range root.Children {
			entry, err := g.walk(c, "")
			if err != nil {
				return nil, err
			}
			g.result.Entries = append(g.result.Entries, entry)
		}
	}

	g.result.MapXML = g.renderMap(title)
	return g.result, nil
}

func (g *generator) walk(id structure.NodeID, parentTopicID string) (*MapEntry, error) {
	n := g.tree.Node(id)

	var entry *MapEntry
	var err error
	childParent := parentTopicID

	if n.Role == structure.RoleBranch && len(n.Blocks) == 0 {
		// Structural group: a map entry with no body.
		entry = &MapEntry{Title: n.Title, Level: n.Level, TocIndex: g.nextTocIndex()}
	} else {
		entry, err = g.emitTopic(n.Title, n.Level, parentTopicID, n.Blocks, n.SourceIndex)
		if err != nil {
			return nil, err
		}
		childParent = entry.TopicID
	}

	for _, c := range n.Children {
		child, err := g.walk(c, childParent)
		if err != nil {
			return nil, err
		}
		entry.Children = append(entry.Children, child)
	}
	return entry, nil
}

func (g *generator) emitTopic(title string, level int, parentID string, blocks []structure.ContentBlock, sourceIndex int) (*MapEntry, error) {
	id := topicID(title, sourceIndex)
	if g.seenIDs[id] {
		return nil, fmt.Errorf("%w: %s (%q)", ErrDuplicateTopicID, id, title)
	}
	g.seenIDs[id] = true

	body := g.renderTopic(id, title, blocks)
	g.result.Topics = append(g.result.Topics, Topic{
		ID:       id,
		Filename: "topics/" + id + ".dita",
		Title:    title,
		Level:    level,
		ParentID: parentID,
		Body:     body,
	})
	return &MapEntry{
		TopicID:  id,
		Title:    title,
		Level:    level,
		TocIndex: g.nextTocIndex(),
	}, nil
}

func (g *generator) nextTocIndex() int {
	i := g.tocIndex
	g.tocIndex++
	return i
}

// imageRef returns the shared ref for a relationship ID, extracting the media
// on first sight. A dangling ID yields an unresolved placeholder ref plus a
// warning; the conversion continues.
func (g *generator) imageRef(relID, topicID string) *ImageRef {
	if ref, ok := g.result.Refs[relID]; ok {
		return ref
	}
	ref := &ImageRef{RelID: relID}
	data, ext, err := g.src.Image(relID)
	if err != nil {
		ref.Unresolved = true
		ref.RefID = relID
		g.result.Warnings = append(g.result.Warnings, Warning{
			RelID:   relID,
			TopicID: topicID,
			Message: fmt.Sprintf("image relationship %s could not be resolved", relID),
		})
	} else {
		g.imageSeq++
		ref.RefID = fmt.Sprintf("img_%d", g.imageSeq)
		ref.ExtractedPath = fmt.Sprintf("media/%s.%s", ref.RefID, ext)
		g.result.Media[ref.ExtractedPath] = data
	}
	g.result.Refs[relID] = ref
	return ref
}

// topicID derives a stable, filename-safe topic ID from the heading's source
// position and title.
func topicID(title string, sourceIndex int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%d|%s", sourceIndex, title))
	return fmt.Sprintf("topic_%x", sum[:5])
}
