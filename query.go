package tcpoosc

// Walk visits h and every descendant of h, pre-order. visit returns
// whether Walk should descend into h's own children; returning false
// prunes that subtree without stopping the overall walk.
func Walk(a *NodeArena, h NodeHandle, visit func(NodeHandle) bool) {
	if a.IsNil(h) {
		return
	}
	if !visit(h) {
		return
	}
	node := a.Get(h)
	if node.Kind != NodeTree {
		return
	}
	for _, c := range node.Children {
		Walk(a, c, visit)
	}
}

// FindNodes returns every tree node in the subtree rooted at h whose
// TreeName equals typeName, in pre-order.
func FindNodes(a *NodeArena, h NodeHandle, typeName string) []NodeHandle {
	var out []NodeHandle
	Walk(a, h, func(n NodeHandle) bool {
		node := a.Get(n)
		if node.Kind == NodeTree && node.TreeName == typeName {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindFirstIdent returns the first NodeIdent leaf found in the
// subtree rooted at h (pre-order, h included), or NilHandle.
func FindFirstIdent(a *NodeArena, h NodeHandle) NodeHandle {
	var found NodeHandle
	Walk(a, h, func(n NodeHandle) bool {
		if !a.IsNil(found) {
			return false
		}
		if a.Get(n).Kind == NodeIdent {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindFirst returns the first descendant of h (pre-order, h included)
// with the given tree name, or NilHandle if none exists.
func FindFirst(a *NodeArena, h NodeHandle, typeName string) NodeHandle {
	var found NodeHandle
	Walk(a, h, func(n NodeHandle) bool {
		if !a.IsNil(found) {
			return false
		}
		node := a.Get(n)
		if node.Kind == NodeTree && node.TreeName == typeName {
			found = n
			return false
		}
		return true
	})
	return found
}
