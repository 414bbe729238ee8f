package structure

import (
	"reflect"
	"testing"

	"github.com/dgallion1/docx2dita/internal/docreader"
	"github.com/dgallion1/docx2dita/internal/styles"
)

func para(style, text string) docreader.Block {
	return docreader.Block{Paragraph: &docreader.ParagraphRecord{StyleName: style, Text: text}}
}

func imagePara(relID string) docreader.Block {
	return docreader.Block{Paragraph: &docreader.ParagraphRecord{Images: []string{relID}}}
}

func table(rows [][]string) docreader.Block {
	return docreader.Block{Table: &docreader.TableRecord{Rows: rows}}
}

func build(t *testing.T, blocks []docreader.Block) *Tree {
	t.Helper()
	tree := Build(blocks, styles.NewResolver(nil, nil))
	DetermineRoles(tree)
	return tree
}

// titles walks the attached tree pre-order and returns heading titles.
func titles(tree *Tree) []string {
	var out []string
	tree.Walk(func(n *Node) bool {
		out = append(out, n.Title)
		return true
	})
	return out
}

func TestBuildNesting(t *testing.T) {
	tree := build(t, []docreader.Block{
		para("Heading 1", "Intro"),
		para("", "Welcome"),
		para("Heading 2", "Details"),
		para("", "Some details"),
		para("Heading 1", "Setup"),
		para("", "Steps"),
	})

	root := tree.Root()
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(root.Children))
	}
	intro := tree.Node(root.Children[0])
	setup := tree.Node(root.Children[1])
	if intro.Title != "Intro" || setup.Title != "Setup" {
		t.Fatalf("unexpected titles: %q %q", intro.Title, setup.Title)
	}
	if len(intro.Children) != 1 {
		t.Fatalf("Intro should have 1 child, got %d", len(intro.Children))
	}
	details := tree.Node(intro.Children[0])
	if details.Title != "Details" || details.Level != 2 {
		t.Errorf("Details node wrong: title=%q level=%d", details.Title, details.Level)
	}
	if len(intro.Blocks) != 1 || intro.Blocks[0].Text != "Welcome" {
		t.Errorf("Intro content wrong: %+v", intro.Blocks)
	}
	if len(setup.Blocks) != 1 || setup.Blocks[0].Text != "Steps" {
		t.Errorf("Setup content wrong: %+v", setup.Blocks)
	}

	// sourceIndex must increase across a pre-order traversal.
	last := -1
	tree.Walk(func(n *Node) bool {
		if n.SourceIndex <= last {
			t.Errorf("sourceIndex not increasing: %d after %d (%q)", n.SourceIndex, last, n.Title)
		}
		last = n.SourceIndex
		return true
	})
}

func TestBuildNumericPrefixNesting(t *testing.T) {
	tree := build(t, []docreader.Block{
		para("Heading 1", "Intro"),
		para("1.2 Setup", "Setup"), // resolves to level 2 via numeric prefix
		para("", "Steps"),
	})
	root := tree.Root()
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 top-level node, got %d", len(root.Children))
	}
	intro := tree.Node(root.Children[0])
	if len(intro.Children) != 1 {
		t.Fatalf("Setup should nest under Intro, children=%d", len(intro.Children))
	}
	setup := tree.Node(intro.Children[0])
	if setup.Level != 2 || len(setup.Blocks) != 1 {
		t.Errorf("setup: level=%d blocks=%d", setup.Level, len(setup.Blocks))
	}
}

func TestBuildUnstyledNumericText(t *testing.T) {
	// An unstyled paragraph whose text starts with a dotted numeral is the
	// fallback heading signal.
	tree := build(t, []docreader.Block{
		para("", "1.1 Overview"),
		para("", "Body follows"),
	})
	root := tree.Root()
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 heading from text inference, got %d", len(root.Children))
	}
	n := tree.Node(root.Children[0])
	if n.Title != "1.1 Overview" {
		t.Errorf("title = %q", n.Title)
	}
	if len(n.Blocks) != 1 {
		t.Errorf("expected body paragraph attached, got %d blocks", len(n.Blocks))
	}
}

func TestBuildNoHeadings(t *testing.T) {
	tree := build(t, []docreader.Block{
		para("", "Just text"),
		table([][]string{{"a", "b"}}),
		imagePara("rId7"),
	})
	root := tree.Root()
	if len(root.Children) != 0 {
		t.Fatalf("expected root-only tree, got %d children", len(root.Children))
	}
	kinds := []BlockKind{}
	for _, b := range root.Blocks {
		kinds = append(kinds, b.Kind)
	}
	want := []BlockKind{BlockParagraph, BlockTable, BlockImage}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("root block kinds = %v, want %v", kinds, want)
	}
	if root.Blocks[2].RelID != "rId7" {
		t.Errorf("image relID = %q", root.Blocks[2].RelID)
	}
}

func TestBuildListItems(t *testing.T) {
	blocks := []docreader.Block{
		para("Heading 1", "Steps"),
		{Paragraph: &docreader.ParagraphRecord{
			StyleName: "List Number", Text: "First",
			List: &docreader.ListInfo{Ordered: true},
		}},
		{Paragraph: &docreader.ParagraphRecord{
			StyleName: "List Bullet", Text: "Nested",
			List: &docreader.ListInfo{Level: 1},
		}},
	}
	tree := build(t, blocks)
	n := tree.Node(tree.Root().Children[0])
	if len(n.Blocks) != 2 {
		t.Fatalf("expected 2 list blocks, got %d", len(n.Blocks))
	}
	if n.Blocks[0].Kind != BlockListItem || !n.Blocks[0].Ordered {
		t.Errorf("first block should be ordered list item: %+v", n.Blocks[0])
	}
	if n.Blocks[1].ListLevel != 1 || n.Blocks[1].Ordered {
		t.Errorf("second block should be nested bullet: %+v", n.Blocks[1])
	}
}

func TestLevelSkipRepair(t *testing.T) {
	tree := build(t, []docreader.Block{
		para("Heading 1", "Top"),
		para("Heading 3", "Deep"), // skips level 2
		para("Heading 6", "Deeper"),
	})
	top := tree.Node(tree.Root().Children[0])
	deep := tree.Node(top.Children[0])
	deeper := tree.Node(deep.Children[0])
	if deep.Level != 2 {
		t.Errorf("H3 under H1 should repair to level 2, got %d", deep.Level)
	}
	if deeper.Level != 3 {
		t.Errorf("H6 under repaired H3 should repair to level 3, got %d", deeper.Level)
	}
	// After repair every parent/child difference is exactly 1.
	tree.Walk(func(n *Node) bool {
		parent := tree.Node(n.Parent)
		if n.Level != parent.Level+1 {
			t.Errorf("node %q: level %d under parent level %d", n.Title, n.Level, parent.Level)
		}
		return true
	})
}

func TestRoles(t *testing.T) {
	tree := build(t, []docreader.Block{
		para("Heading 1", "Branch"),
		para("", "direct content"),
		para("Heading 2", "Leaf"),
	})
	branch := tree.Node(tree.Root().Children[0])
	leaf := tree.Node(branch.Children[0])
	if branch.Role != RoleBranch {
		t.Errorf("branch role = %v", branch.Role)
	}
	if leaf.Role != RoleLeaf {
		t.Errorf("leaf role = %v", leaf.Role)
	}
	if tree.Root().Role != RoleRoot {
		t.Errorf("root role = %v", tree.Root().Role)
	}
}

func TestApplyExclusions(t *testing.T) {
	// H1 "A" -> [H2 "B" -> [content X], then content Y under B].
	tree := build(t, []docreader.Block{
		para("Heading 1", "A"),
		para("Heading 2", "B"),
		para("", "X"),
		para("", "Y"),
	})
	ApplyExclusions(tree, map[string]bool{"Heading 2": true})

	if got := titles(tree); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("visible titles = %v, want [A]", got)
	}
	a := tree.Node(tree.Root().Children[0])
	if len(a.Blocks) != 2 || a.Blocks[0].Text != "X" || a.Blocks[1].Text != "Y" {
		t.Errorf("A should own X then Y, got %+v", a.Blocks)
	}
	if a.Role != RoleLeaf {
		t.Errorf("A should be a leaf after losing its child, got %v", a.Role)
	}
}

func TestApplyExclusionsSpliceOrder(t *testing.T) {
	tree := build(t, []docreader.Block{
		para("Heading 1", "Parent"),
		para("Heading 2", "Before"),
		para("Titre 2", "Gone"),
		para("Heading 3", "Promoted"),
		para("Heading 2", "After"),
	})
	ApplyExclusions(tree, map[string]bool{"Titre 2": true})

	parent := tree.Node(tree.Root().Children[0])
	var names []string
	for _, c := range parent.Children {
		names = append(names, tree.Node(c).Title)
	}
	want := []string{"Before", "Promoted", "After"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("child order after splice = %v, want %v", names, want)
	}
	promoted := tree.Node(parent.Children[1])
	if promoted.Parent != parent.ID {
		t.Errorf("promoted node parent = %d, want %d", promoted.Parent, parent.ID)
	}
}

func TestApplyExclusionsTransitive(t *testing.T) {
	tree := build(t, []docreader.Block{
		para("Heading 1", "Top"),
		para("Heading 2", "Mid"),
		para("Heading 3", "Inner"),
		para("", "deep content"),
	})
	ApplyExclusions(tree, map[string]bool{"Heading 2": true, "Heading 3": true})

	if got := titles(tree); !reflect.DeepEqual(got, []string{"Top"}) {
		t.Fatalf("visible titles = %v, want [Top]", got)
	}
	top := tree.Node(tree.Root().Children[0])
	if len(top.Blocks) != 1 || top.Blocks[0].Text != "deep content" {
		t.Errorf("content should bubble to Top: %+v", top.Blocks)
	}
}

func TestApplyExclusionsIdempotent(t *testing.T) {
	blocks := []docreader.Block{
		para("Heading 1", "A"),
		para("Heading 2", "B"),
		para("", "X"),
		para("Heading 2", "C"),
		para("", "Y"),
	}
	excl := map[string]bool{"Heading 2": true}

	once := build(t, blocks)
	ApplyExclusions(once, excl)

	twice := build(t, blocks)
	ApplyExclusions(twice, excl)
	ApplyExclusions(twice, excl)

	if !reflect.DeepEqual(titles(once), titles(twice)) {
		t.Errorf("titles differ: %v vs %v", titles(once), titles(twice))
	}
	a1 := once.Node(once.Root().Children[0])
	a2 := twice.Node(twice.Root().Children[0])
	if !reflect.DeepEqual(a1.Blocks, a2.Blocks) {
		t.Errorf("blocks differ after double application:\n%+v\n%+v", a1.Blocks, a2.Blocks)
	}
}

func TestApplyExclusionsUnknownStyle(t *testing.T) {
	tree := build(t, []docreader.Block{para("Heading 1", "Only")})
	ApplyExclusions(tree, map[string]bool{"Nope": true})
	if got := titles(tree); !reflect.DeepEqual(got, []string{"Only"}) {
		t.Errorf("unknown exclusion must be a no-op, got %v", got)
	}
}

func TestCloneIsolation(t *testing.T) {
	tree := build(t, []docreader.Block{
		para("Heading 1", "A"),
		para("Heading 2", "B"),
		para("", "X"),
	})
	clone := tree.Clone()
	ApplyExclusions(clone, map[string]bool{"Heading 2": true})

	if got := titles(tree); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("original tree mutated by filtering the clone: %v", got)
	}
	if got := titles(clone); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("clone not filtered: %v", got)
	}
}

func TestTakeSnapshot(t *testing.T) {
	res := styles.NewResolver(nil, nil)
	tree := Build([]docreader.Block{
		para("Heading 1", "One"),
		para("Heading 2", "Two"),
		para("Heading 2", "Three"),
		para("", "body"),
	}, res)
	DetermineRoles(tree)

	snap := TakeSnapshot(tree, res, map[string]bool{"Heading 2": true})
	if snap.HeadingCount != 3 {
		t.Errorf("heading count = %d, want 3", snap.HeadingCount)
	}
	var h2 *StyleUsage
	for i := range snap.Styles {
		if snap.Styles[i].Style == "Heading 2" {
			h2 = &snap.Styles[i]
		}
	}
	if h2 == nil {
		t.Fatal("Heading 2 missing from snapshot")
	}
	if h2.HeadingCount != 2 || h2.Level != 2 {
		t.Errorf("Heading 2 usage: count=%d level=%d", h2.HeadingCount, h2.Level)
	}
	if !reflect.DeepEqual(h2.Occurrences, []string{"Two", "Three"}) {
		t.Errorf("occurrences = %v", h2.Occurrences)
	}
	if !reflect.DeepEqual(snap.ExcludedSet, []string{"Heading 2"}) {
		t.Errorf("excluded set = %v", snap.ExcludedSet)
	}
}
