package rbtree

import "cmp"

// Color is the color tag of a tree node.
type Color bool

// Node colors. Absent children read as Black.
const (
	Red   Color = false
	Black Color = true
)

func (c Color) String() string {
	if c == Black {
		return "black"
	}

	return "red"
}

// direction selects a child slot or a rotation sense.
type direction uint8

const (
	left direction = iota
	right
)

func (d direction) opposite() direction {
	if d == left {
		return right
	}

	return left
}

func (d direction) String() string {
	if d == left {
		return "left"
	}

	return "right"
}

type node[T any] struct {
	key                 T
	parent, left, right uint32
	color               Color
}

// Stats counts the structural work done by insertions.
type Stats struct {
	Inserts        int
	LeftRotations  int
	RightRotations int
	Recolorings    int
	// RedUncleFixes counts fix-up passes that only recolored.
	RedUncleFixes int
	// RotationFixes counts fix-up passes that ended with a rotation.
	RotationFixes int
}

// Tree is a red-black tree of keys ordered by a strict less function.
// Equal keys are kept and placed in the right subtree of their first match.
//
// A Tree is not safe for concurrent use.
type Tree[T any] struct {
	// Nodes allocator.
	allocator *Allocator[T]

	less func(a, b T) bool

	// Root of the tree.
	root uint32

	// Number of nodes under root, including the root.
	count int

	stats Stats
}

// New creates an empty tree over a naturally ordered key type.
func New[T cmp.Ordered]() *Tree[T] {
	return NewFunc(cmp.Less[T])
}

// NewFunc creates an empty tree ordered by less.
func NewFunc[T any](less func(a, b T) bool) *Tree[T] {
	return &Tree[T]{allocator: NewAllocator[T](), less: less}
}

func (tree *Tree[T]) storage() []node[T] {
	return tree.allocator.storage
}

// Allocator returns the bound nodes allocator.
func (tree *Tree[T]) Allocator() *Allocator[T] {
	return tree.allocator
}

// Len returns the number of elements in the tree.
func (tree *Tree[T]) Len() int {
	return tree.count
}

// Stats returns the accumulated insertion counters.
func (tree *Tree[T]) Stats() Stats {
	return tree.stats
}

// Root returns the root node, which is nil for an empty tree.
func (tree *Tree[T]) Root() Node[T] {
	return Node[T]{tree: tree, idx: tree.root}
}

// Clone performs a deep copy of the tree. Node handles are preserved.
func (tree *Tree[T]) Clone() *Tree[T] {
	clone := *tree
	clone.allocator = tree.allocator.Clone()

	return &clone
}

// Hibernate compresses the node arena. The tree cannot be used until Boot.
func (tree *Tree[T]) Hibernate() {
	tree.allocator.Hibernate()
}

// Boot restores a hibernated node arena.
func (tree *Tree[T]) Boot() {
	tree.allocator.Boot()
}

// Insert adds key to the tree. It never fails; a duplicate key goes to the
// right subtree of the first equal node met on the way down.
func (tree *Tree[T]) Insert(key T) {
	nodeIdx := tree.allocator.malloc()
	alloc := tree.storage()
	alloc[nodeIdx].key = key
	alloc[nodeIdx].color = Red

	var parent uint32

	for cursor := tree.root; cursor != 0; {
		parent = cursor

		if tree.less(key, alloc[cursor].key) {
			cursor = alloc[cursor].left
		} else {
			cursor = alloc[cursor].right
		}
	}

	alloc[nodeIdx].parent = parent
	tree.count++
	tree.stats.Inserts++

	switch {
	case parent == 0:
		tree.root = nodeIdx
	case tree.less(key, alloc[parent].key):
		alloc[parent].left = nodeIdx
	default:
		alloc[parent].right = nodeIdx
	}

	// The sole node is the root.
	if parent == 0 {
		alloc[nodeIdx].color = Black

		return
	}

	// A child of the root has no grandparent to conflict with.
	if alloc[parent].parent == 0 {
		return
	}

	tree.rebalance(nodeIdx)
}

// rebalance restores the red-black properties after nodeIdx was linked in red.
// The parent-is-left and parent-is-right cases are the same code run with
// mirrored sides.
func (tree *Tree[T]) rebalance(nodeIdx uint32) {
	alloc := tree.storage()

	for nodeIdx != tree.root && tree.colorOf(alloc[nodeIdx].parent) == Red {
		parent := alloc[nodeIdx].parent
		grandparent := alloc[parent].parent

		// A red parent is never the root.
		doAssert(grandparent != 0)

		side := tree.sideOf(parent)
		uncle := tree.child(grandparent, side.opposite())

		if tree.colorOf(uncle) == Red {
			tree.recolor(parent, Black)
			tree.recolor(uncle, Black)
			tree.recolor(grandparent, Red)
			tree.stats.RedUncleFixes++
			nodeIdx = grandparent

			continue
		}

		// Inner child: turn it into the outer case first.
		if tree.sideOf(nodeIdx) != side {
			tree.rotate(parent, side)
			nodeIdx = parent
			parent = alloc[nodeIdx].parent
		}

		tree.recolor(parent, Black)
		tree.recolor(grandparent, Red)
		tree.rotate(grandparent, side.opposite())
		tree.stats.RotationFixes++

		break
	}

	alloc[tree.root].color = Black
}

// rotate turns the subtree at pivot in the given direction: the child on the
// opposite side takes pivot's place and pivot becomes its child on dir.
// Colors are left unchanged.
//
// Left rotation:
//
//	  X              Y
//	A   Y    =>    X   C
//	  B C        A B
//
// Right rotation:
//
//	    Y            X
//	  X   C  =>    A   Y
//	A B              B C
//
//nolint:dupword // ASCII art diagrams contain intentional repeated letters.
func (tree *Tree[T]) rotate(pivot uint32, dir direction) {
	doAssert(pivot != 0)

	alloc := tree.storage()

	other := tree.child(pivot, dir.opposite())
	doAssert(other != 0)

	// Move the inner subtree.
	inner := tree.child(other, dir)
	tree.setChild(pivot, dir.opposite(), inner)

	if inner != 0 {
		alloc[inner].parent = pivot
	}

	// Update parent links.
	parent := alloc[pivot].parent
	alloc[other].parent = parent

	if parent == 0 {
		tree.root = other
	} else {
		tree.setChild(parent, tree.sideOf(pivot), other)
	}

	// Complete the rotation.
	tree.setChild(other, dir, pivot)
	alloc[pivot].parent = other

	if dir == left {
		tree.stats.LeftRotations++
	} else {
		tree.stats.RightRotations++
	}
}

// Internal node attribute accessors.

// colorOf reads the color of a possibly absent node.
func (tree *Tree[T]) colorOf(nodeIdx uint32) Color {
	if nodeIdx == 0 {
		return Black
	}

	return tree.storage()[nodeIdx].color
}

func (tree *Tree[T]) recolor(nodeIdx uint32, color Color) {
	doAssert(nodeIdx != 0)

	alloc := tree.storage()
	if alloc[nodeIdx].color != color {
		alloc[nodeIdx].color = color
		tree.stats.Recolorings++
	}
}

func (tree *Tree[T]) child(nodeIdx uint32, dir direction) uint32 {
	if dir == left {
		return tree.storage()[nodeIdx].left
	}

	return tree.storage()[nodeIdx].right
}

func (tree *Tree[T]) setChild(nodeIdx uint32, dir direction, childIdx uint32) {
	doAssert(nodeIdx != 0)

	if dir == left {
		tree.storage()[nodeIdx].left = childIdx
	} else {
		tree.storage()[nodeIdx].right = childIdx
	}
}

// sideOf reports which child slot of its parent nodeIdx occupies.
func (tree *Tree[T]) sideOf(nodeIdx uint32) direction {
	alloc := tree.storage()
	parent := alloc[nodeIdx].parent
	doAssert(parent != 0)

	if alloc[parent].left == nodeIdx {
		return left
	}

	doAssert(alloc[parent].right == nodeIdx)

	return right
}

func doAssert(condition bool) {
	if !condition {
		panic("rbtree internal assertion failed")
	}
}
