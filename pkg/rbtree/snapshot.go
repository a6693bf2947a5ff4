package rbtree

import (
	"cmp"
	"errors"
	"fmt"
)

// ErrSnapshotCorrupt is returned when a snapshot cannot be restored.
var ErrSnapshotCorrupt = errors.New("corrupt tree snapshot")

// Snapshot is the exact shape of a tree: its keys by handle plus the
// lz4-compressed parent, left, right and color columns. Restoring a snapshot
// reproduces the same nodes, colors and links rather than re-inserting keys.
type Snapshot[T any] struct {
	// Keys[i] is the key of handle i+1.
	Keys    []T    `json:"keys"`
	Root    uint32 `json:"root"`
	Parents []byte `json:"parents"`
	Lefts   []byte `json:"lefts"`
	Rights  []byte `json:"rights"`
	Colors  []byte `json:"colors"`
}

// SnapshotJSONSchema describes the JSON encoding of a Snapshot.
const SnapshotJSONSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "redblack tree snapshot",
  "type": "object",
  "required": ["keys", "root", "parents", "lefts", "rights", "colors"],
  "properties": {
    "keys": {"type": ["array", "null"]},
    "root": {"type": "integer", "minimum": 0},
    "parents": {"type": "string"},
    "lefts": {"type": "string"},
    "rights": {"type": "string"},
    "colors": {"type": "string"}
  }
}`

// Snapshot captures the current shape of the tree.
func (tree *Tree[T]) Snapshot() *Snapshot[T] {
	alloc := tree.storage()
	if alloc == nil {
		panic("hibernated allocators cannot be used")
	}

	// Slot 0 is the reserved leaf and is never part of a snapshot.
	var nodes []node[T]
	if len(alloc) > 0 {
		nodes = alloc[1:]
	}

	snap := &Snapshot[T]{Keys: make([]T, len(nodes)), Root: tree.root}
	columns := [columnCount][]uint32{}

	for idx := range columns {
		columns[idx] = make([]uint32, len(nodes))
	}

	for idx, nd := range nodes {
		snap.Keys[idx] = nd.key
		columns[columnParent][idx] = nd.parent
		columns[columnLeft][idx] = nd.left
		columns[columnRight][idx] = nd.right

		if nd.color == Black {
			columns[columnColor][idx] = 1
		}
	}

	snap.Parents = CompressUInt32Slice(columns[columnParent])
	snap.Lefts = CompressUInt32Slice(columns[columnLeft])
	snap.Rights = CompressUInt32Slice(columns[columnRight])
	snap.Colors = CompressUInt32Slice(columns[columnColor])

	return snap
}

// Restore rebuilds a naturally ordered tree from a snapshot.
func Restore[T cmp.Ordered](snap *Snapshot[T]) (*Tree[T], error) {
	return RestoreFunc(snap, cmp.Less[T])
}

// RestoreFunc rebuilds a tree ordered by less from a snapshot. The result is
// verified with Check, so a snapshot taken under a different order is rejected.
func RestoreFunc[T any](snap *Snapshot[T], less func(a, b T) bool) (*Tree[T], error) {
	count := len(snap.Keys)
	columns := [columnCount][]uint32{}
	packed := [columnCount][]byte{
		columnParent: snap.Parents,
		columnLeft:   snap.Lefts,
		columnRight:  snap.Rights,
		columnColor:  snap.Colors,
	}

	for idx := range columns {
		columns[idx] = make([]uint32, count)

		err := DecompressUInt32Slice(packed[idx], columns[idx])
		if err != nil {
			return nil, fmt.Errorf("%w: column %d: %w", ErrSnapshotCorrupt, idx, err)
		}
	}

	if uint64(snap.Root) > uint64(count) || (count > 0) != (snap.Root != 0) {
		return nil, fmt.Errorf("%w: root handle %d for %d nodes", ErrSnapshotCorrupt, snap.Root, count)
	}

	tree := NewFunc(less)
	if count == 0 {
		return tree, nil
	}

	storage := make([]node[T], count+1)
	storage[0].color = Black

	for idx := range count {
		nd := &storage[idx+1]
		nd.key = snap.Keys[idx]
		nd.parent = columns[columnParent][idx]
		nd.left = columns[columnLeft][idx]
		nd.right = columns[columnRight][idx]
		nd.color = Color(columns[columnColor][idx] > 0)

		for _, link := range [...]uint32{nd.parent, nd.left, nd.right} {
			if uint64(link) > uint64(count) {
				return nil, fmt.Errorf("%w: handle %d out of range", ErrSnapshotCorrupt, link)
			}
		}
	}

	tree.allocator.storage = storage
	tree.root = snap.Root
	tree.count = count

	err := tree.Check()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}

	return tree, nil
}
