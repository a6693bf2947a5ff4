package rbtree

import "fmt"

// nilLabel is printed in place of an absent neighbour.
const nilLabel = "<nil>"

// Node is a read-only view of a tree cell, addressed by its arena handle.
// The zero handle is the absent (black NIL) leaf.
//
// A Node stays valid for the life of its tree; insertions may change its
// color and neighbours but never its key or handle.
type Node[T any] struct {
	tree *Tree[T]
	idx  uint32
}

// IsNil checks if the node is the absent leaf.
func (n Node[T]) IsNil() bool {
	return n.idx == 0
}

// Handle returns the arena handle of the node; 0 for the absent leaf.
func (n Node[T]) Handle() uint32 {
	return n.idx
}

// Equal checks for the underlying nodes equality.
func (n Node[T]) Equal(other Node[T]) bool {
	return n.tree == other.tree && n.idx == other.idx
}

// Key returns the node key.
//
// REQUIRES: !n.IsNil().
func (n Node[T]) Key() T {
	doAssert(!n.IsNil())

	return n.tree.storage()[n.idx].key
}

// Color returns the node color. The absent leaf is Black.
func (n Node[T]) Color() Color {
	if n.IsNil() {
		return Black
	}

	return n.tree.colorOf(n.idx)
}

// Left returns the left child.
func (n Node[T]) Left() Node[T] {
	return n.link(func(nd *node[T]) uint32 { return nd.left })
}

// Right returns the right child.
func (n Node[T]) Right() Node[T] {
	return n.link(func(nd *node[T]) uint32 { return nd.right })
}

// Parent returns the structural parent; nil for the root.
func (n Node[T]) Parent() Node[T] {
	return n.link(func(nd *node[T]) uint32 { return nd.parent })
}

func (n Node[T]) link(pick func(nd *node[T]) uint32) Node[T] {
	if n.IsNil() {
		return n
	}

	return Node[T]{tree: n.tree, idx: pick(&n.tree.storage()[n.idx])}
}

// String describes the node and its immediate neighbours for diagnostics.
func (n Node[T]) String() string {
	if n.IsNil() {
		return "Node(" + nilLabel + ")"
	}

	return fmt.Sprintf("Node(key=%v, color=%s, left=%s, right=%s, parent=%s)",
		n.Key(), n.Color(), n.Left().label(), n.Right().label(), n.Parent().label())
}

func (n Node[T]) label() string {
	if n.IsNil() {
		return nilLabel
	}

	return fmt.Sprint(n.Key())
}
