package rbtree

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrInvalidOrder is returned when a traversal order name is not recognized.
var ErrInvalidOrder = errors.New("invalid traversal order")

// Order is a depth-first visiting order.
type Order uint8

// Traversal orders.
const (
	Inorder Order = iota
	Preorder
	Postorder
)

var orderNames = [...]string{
	Inorder:   "inorder",
	Preorder:  "preorder",
	Postorder: "postorder",
}

func (o Order) String() string {
	if int(o) < len(orderNames) {
		return orderNames[o]
	}

	return fmt.Sprintf("Order(%d)", uint8(o))
}

// ParseOrder maps "inorder", "preorder" or "postorder" to an Order.
func ParseOrder(name string) (Order, error) {
	for idx, candidate := range orderNames {
		if strings.EqualFold(name, candidate) {
			return Order(idx), nil
		}
	}

	return Inorder, fmt.Errorf("%w: %q", ErrInvalidOrder, name)
}

// Traverse walks the subtree rooted at from in the given order and calls
// visit on every node. An absent from returns immediately.
func (tree *Tree[T]) Traverse(from Node[T], order Order, visit func(Node[T])) {
	if from.IsNil() {
		return
	}

	doAssert(from.tree == tree)

	switch order {
	case Inorder:
		tree.Traverse(from.Left(), order, visit)
		visit(from)
		tree.Traverse(from.Right(), order, visit)
	case Preorder:
		visit(from)
		tree.Traverse(from.Left(), order, visit)
		tree.Traverse(from.Right(), order, visit)
	case Postorder:
		tree.Traverse(from.Left(), order, visit)
		tree.Traverse(from.Right(), order, visit)
		visit(from)
	default:
		panic("rbtree: unknown traversal order " + order.String())
	}
}

// Keys returns every key of the tree in the given order.
func (tree *Tree[T]) Keys(order Order) []T {
	keys := make([]T, 0, tree.count)

	tree.Traverse(tree.Root(), order, func(n Node[T]) {
		keys = append(keys, n.Key())
	})

	return keys
}

// PrintNodes writes one diagnostic line per node to standard output, inorder.
func (tree *Tree[T]) PrintNodes() {
	_ = tree.Fprint(os.Stdout)
}

// Fprint writes one diagnostic line per node to w, inorder. It stops writing
// at the first error and returns it.
func (tree *Tree[T]) Fprint(w io.Writer) error {
	var err error

	tree.Traverse(tree.Root(), Inorder, func(n Node[T]) {
		if err != nil {
			return
		}

		_, err = fmt.Fprintln(w, n.String())
	})

	if err != nil {
		return fmt.Errorf("print nodes: %w", err)
	}

	return nil
}

// Min returns the node with the smallest key; nil for an empty tree.
func (tree *Tree[T]) Min() Node[T] {
	return tree.extreme(left)
}

// Max returns the node with the largest key; nil for an empty tree.
// Among equal maximal keys it returns the last inserted one.
func (tree *Tree[T]) Max() Node[T] {
	return tree.extreme(right)
}

func (tree *Tree[T]) extreme(dir direction) Node[T] {
	cursor := tree.root

	for cursor != 0 && tree.child(cursor, dir) != 0 {
		cursor = tree.child(cursor, dir)
	}

	return Node[T]{tree: tree, idx: cursor}
}

// Find returns the first node met on the way down whose key equals key, or
// the nil node when there is none.
func (tree *Tree[T]) Find(key T) Node[T] {
	alloc := tree.storage()
	cursor := tree.root

	for cursor != 0 {
		switch {
		case tree.less(key, alloc[cursor].key):
			cursor = alloc[cursor].left
		case tree.less(alloc[cursor].key, key):
			cursor = alloc[cursor].right
		default:
			return Node[T]{tree: tree, idx: cursor}
		}
	}

	return Node[T]{tree: tree}
}

// Contains checks if key is stored in the tree.
func (tree *Tree[T]) Contains(key T) bool {
	return !tree.Find(key).IsNil()
}
