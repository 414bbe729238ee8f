package structure

// DetermineRoles normalizes levels and assigns structural roles. It runs
// after Build and before any filtering or generation.
//
// Level-skip repair: a child whose detected level exceeds its parent's level
// by more than one is treated as parent level + 1, so a lone H3 under an H1
// cannot produce an invalid two-level jump in the map. The repair is silent;
// skipped levels are expected input, not errors.
//
// Roles: a node with children is a branch, anything else is a leaf. The root
// keeps RoleRoot and never becomes a topic.
func DetermineRoles(t *Tree) {
	var visit func(id NodeID, parentLevel int)
	visit = func(id NodeID, parentLevel int) {
		n := t.Node(id)
		if id != RootID {
			if n.Level > parentLevel+1 {
				n.Level = parentLevel + 1
			}
			if len(n.Children) > 0 {
				n.Role = RoleBranch
			} else {
				n.Role = RoleLeaf
			}
		}
		for _, c := range n.Children {
			visit(c, n.Level)
		}
	}
	visit(RootID, 0)
}
