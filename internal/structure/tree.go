// Package structure builds and reworks the heading tree: an arena of nodes
// addressed by integer ID, with children held as ordered ID lists so nodes
// can be re-parented without pointer cycles.
package structure

import "github.com/dgallion1/docx2dita/internal/docreader"

// NodeID addresses a node inside its owning Tree's arena.
type NodeID int

// RootID is the synthetic node representing the whole document.
const RootID NodeID = 0

// Role classifies a node for topic generation.
type Role uint8

const (
	RoleRoot Role = iota
	RoleBranch
	RoleLeaf
)

func (r Role) String() string {
	switch r {
	case RoleRoot:
		return "root"
	case RoleBranch:
		return "branch"
	default:
		return "leaf"
	}
}

// BlockKind tags a ContentBlock variant.
type BlockKind uint8

const (
	BlockParagraph BlockKind = iota
	BlockTable
	BlockListItem
	BlockImage
)

// ContentBlock is one unit of non-heading content owned by a heading node.
// The populated fields depend on Kind.
type ContentBlock struct {
	Kind BlockKind

	// Paragraph and list item.
	Text  string
	Spans []docreader.Span

	// List item.
	Ordered   bool
	ListLevel int

	// Table.
	Rows [][]string

	// Image placeholder.
	RelID string
}

// Node is one heading in the tree. Levels are 1-based; the root sits at 0.
type Node struct {
	ID          NodeID
	Parent      NodeID
	Level       int
	Title       string
	Style       string // originating style name, "" for root and text-inferred headings
	SourceIndex int
	Role        Role
	Blocks      []ContentBlock
	Children    []NodeID
}

// Tree is the arena. The zero-index node is always the synthetic root.
type Tree struct {
	nodes []Node
}

// NewTree returns a tree holding only the root.
func NewTree() *Tree {
	return &Tree{nodes: []Node{{ID: RootID, Parent: -1, Level: 0, Role: RoleRoot}}}
}

// Node returns a mutable pointer into the arena.
func (t *Tree) Node(id NodeID) *Node { return &t.nodes[id] }

// Root returns the synthetic root node.
func (t *Tree) Root() *Node { return &t.nodes[RootID] }

// Len reports the arena size, including the root and any detached nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Add appends a node under parent and returns its ID.
func (t *Tree) Add(parent NodeID, level int, title, style string, sourceIndex int) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		ID:          id,
		Parent:      parent,
		Level:       level,
		Title:       title,
		Style:       style,
		SourceIndex: sourceIndex,
		Role:        RoleLeaf,
	})
	p := &t.nodes[parent]
	p.Children = append(p.Children, id)
	return id
}

// Walk visits the attached tree in depth-first pre-order, skipping the root.
// Returning false from fn prunes the subtree.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var visit func(id NodeID)
	visit = func(id NodeID) {
		n := &t.nodes[id]
		if id != RootID && !fn(n) {
			return
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(RootID)
}

// Clone deep-copies the tree so filters can rewrite one copy while the
// pristine structure stays available for re-runs.
func (t *Tree) Clone() *Tree {
	nodes := make([]Node, len(t.nodes))
	copy(nodes, t.nodes)
	for i := range nodes {
		if nodes[i].Children != nil {
			nodes[i].Children = append([]NodeID(nil), nodes[i].Children...)
		}
		if nodes[i].Blocks != nil {
			nodes[i].Blocks = append([]ContentBlock(nil), nodes[i].Blocks...)
		}
	}
	return &Tree{nodes: nodes}
}

// subtreeHasContent reports whether the node or any descendant owns blocks.
func (t *Tree) subtreeHasContent(id NodeID) bool {
	n := &t.nodes[id]
	if len(n.Blocks) > 0 {
		return true
	}
	for _, c := range n.Children {
		if t.subtreeHasContent(c) {
			return true
		}
	}
	return false
}
