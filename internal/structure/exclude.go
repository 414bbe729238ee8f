package structure

// ApplyExclusions removes every node whose originating style is in the
// excluded set, splicing its children into the parent's child list at the
// position it occupied and appending its content blocks to the nearest
// surviving ancestor. The root cannot be excluded, and excluding a style with
// no matching node is a no-op.
//
// Exclusion physically rewrites the tree, so re-running with the same set is
// trivially idempotent and the generator's walk needs no skip logic.
// Roles are re-determined afterwards since splicing changes child sets.
func ApplyExclusions(t *Tree, excluded map[string]bool) {
	if len(excluded) == 0 {
		return
	}
	var visit func(id NodeID)
	visit = func(id NodeID) {
		n := t.Node(id)
		orig := append([]NodeID(nil), n.Children...)
		// Children are processed bottom-up so a chain of excluded
		// ancestors splices transitively in one pass.
		for _, c := range orig {
			visit(c)
		}

		kept := make([]NodeID, 0, len(orig))
		for _, c := range orig {
			child := t.Node(c)
			if child.Style == "" || !excluded[child.Style] {
				kept = append(kept, c)
				continue
			}
			// Donate content, then splice grandchildren in place.
			n.Blocks = append(n.Blocks, child.Blocks...)
			child.Blocks = nil
			for _, gc := range child.Children {
				t.Node(gc).Parent = id
				kept = append(kept, gc)
			}
			child.Children = nil
			child.Parent = -1 // detached; stays in the arena but unreachable
		}
		n.Children = kept
	}
	visit(RootID)
	DetermineRoles(t)
}
