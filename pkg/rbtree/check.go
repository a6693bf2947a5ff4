package rbtree

import (
	"errors"
	"fmt"
)

// Invariant violations reported by Check.
var (
	ErrRedRoot      = errors.New("root is red")
	ErrRedViolation = errors.New("red node has a red child")
	ErrBlackHeight  = errors.New("black height differs between paths")
	ErrParentLink   = errors.New("parent link does not match child link")
	ErrOrder        = errors.New("keys out of order")
	ErrCount        = errors.New("node count mismatch")
)

// Check verifies the red-black and search tree invariants of the whole tree
// and returns the first violation found.
func (tree *Tree[T]) Check() error {
	if tree.root == 0 {
		if tree.count != 0 {
			return fmt.Errorf("%w: empty tree reports %d nodes", ErrCount, tree.count)
		}

		return nil
	}

	alloc := tree.storage()

	if alloc[tree.root].parent != 0 {
		return fmt.Errorf("%w: root has parent %d", ErrParentLink, alloc[tree.root].parent)
	}

	if alloc[tree.root].color != Black {
		return ErrRedRoot
	}

	seen := make([]bool, len(alloc))

	_, count, err := tree.checkSubtree(tree.root, keyBounds[T]{}, seen)
	if err != nil {
		return err
	}

	if count != tree.count {
		return fmt.Errorf("%w: reachable %d, recorded %d", ErrCount, count, tree.count)
	}

	return nil
}

// keyBounds constrains the keys of a subtree to lo <= key <= hi. The upper
// bound is inclusive because rotations may lift an equal key above an earlier
// duplicate.
type keyBounds[T any] struct {
	lo, hi       T
	hasLo, hasHi bool
}

// checkSubtree returns the black height of the subtree at nodeIdx, counting
// nodeIdx itself, and the number of nodes in it.
func (tree *Tree[T]) checkSubtree(nodeIdx uint32, bounds keyBounds[T], seen []bool) (int, int, error) {
	if nodeIdx == 0 {
		return 1, 0, nil
	}

	if seen[nodeIdx] {
		return 0, 0, fmt.Errorf("%w: node %d is reachable twice", ErrParentLink, nodeIdx)
	}

	seen[nodeIdx] = true

	alloc := tree.storage()
	nd := alloc[nodeIdx]

	if bounds.hasLo && tree.less(nd.key, bounds.lo) {
		return 0, 0, fmt.Errorf("%w: %v sorts before %v", ErrOrder, nd.key, bounds.lo)
	}

	if bounds.hasHi && tree.less(bounds.hi, nd.key) {
		return 0, 0, fmt.Errorf("%w: %v sorts after %v", ErrOrder, nd.key, bounds.hi)
	}

	for _, childIdx := range [...]uint32{nd.left, nd.right} {
		if childIdx == 0 {
			continue
		}

		if alloc[childIdx].parent != nodeIdx {
			return 0, 0, fmt.Errorf("%w: node %v, child %v", ErrParentLink, nd.key, alloc[childIdx].key)
		}

		if nd.color == Red && alloc[childIdx].color == Red {
			return 0, 0, fmt.Errorf("%w: %v under %v", ErrRedViolation, alloc[childIdx].key, nd.key)
		}
	}

	leftBounds := bounds
	leftBounds.hi, leftBounds.hasHi = nd.key, true

	leftHeight, leftCount, err := tree.checkSubtree(nd.left, leftBounds, seen)
	if err != nil {
		return 0, 0, err
	}

	rightBounds := bounds
	rightBounds.lo, rightBounds.hasLo = nd.key, true

	rightHeight, rightCount, err := tree.checkSubtree(nd.right, rightBounds, seen)
	if err != nil {
		return 0, 0, err
	}

	if leftHeight != rightHeight {
		return 0, 0, fmt.Errorf("%w: at %v left %d, right %d", ErrBlackHeight, nd.key, leftHeight, rightHeight)
	}

	height := leftHeight
	if nd.color == Black {
		height++
	}

	return height, leftCount + rightCount + 1, nil
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (tree *Tree[T]) Height() int {
	return tree.height(tree.root)
}

func (tree *Tree[T]) height(nodeIdx uint32) int {
	if nodeIdx == 0 {
		return 0
	}

	alloc := tree.storage()

	return 1 + max(tree.height(alloc[nodeIdx].left), tree.height(alloc[nodeIdx].right))
}

// BlackHeight returns the number of black nodes on the leftmost path from the
// root down to an absent leaf, excluding the root itself.
func (tree *Tree[T]) BlackHeight() int {
	if tree.root == 0 {
		return 0
	}

	blackHeight := 0
	alloc := tree.storage()

	for cursor := alloc[tree.root].left; cursor != 0; cursor = alloc[cursor].left {
		if alloc[cursor].color == Black {
			blackHeight++
		}
	}

	return blackHeight
}
