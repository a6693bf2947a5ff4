package rbtree

import (
	"math"
	"sync"
	"unsafe"
)

// growCapacityNumerator and growCapacityDenominator define the 3/2 growth factor for storage.
const (
	growCapacityNumerator   = 3
	growCapacityDenominator = 2
)

// maxHandle is the largest node handle the arena can hand out.
const maxHandle = math.MaxUint32 - 1

// Hibernated link columns.
const (
	columnParent = iota
	columnLeft
	columnRight
	columnColor
	columnCount
)

// Allocator is the node arena of a Tree. Handle 0 is reserved and stands for
// the absent (black NIL) leaf, so a zero handle never addresses a real node.
type Allocator[T any] struct {
	storage []node[T]

	// Keys survive hibernation uncompressed; only the link and color
	// columns are packed.
	hibernatedKeys []T
	hibernatedData [columnCount][]byte
	hibernatedLen  int

	// HibernationThreshold is the minimum arena size Hibernate will compress.
	HibernationThreshold int
}

// NewAllocator creates an empty node arena.
func NewAllocator[T any]() *Allocator[T] {
	return &Allocator[T]{storage: []node[T]{}}
}

// Size returns the number of allocated slots, including the reserved one.
func (allocator *Allocator[T]) Size() int {
	return len(allocator.storage)
}

// Used returns the number of nodes contained in the allocator.
func (allocator *Allocator[T]) Used() int {
	if allocator.storage == nil {
		panic("hibernated allocators cannot be used")
	}

	if len(allocator.storage) == 0 {
		return 0
	}

	return len(allocator.storage) - 1
}

// Hibernated reports whether the link columns are currently compressed.
func (allocator *Allocator[T]) Hibernated() bool {
	return allocator.storage == nil
}

// Bytes estimates the memory held by the arena, live or hibernated.
func (allocator *Allocator[T]) Bytes() uint64 {
	if allocator.storage != nil {
		return uint64(cap(allocator.storage)) * uint64(unsafe.Sizeof(node[T]{}))
	}

	var zero T

	total := uint64(len(allocator.hibernatedKeys)) * uint64(unsafe.Sizeof(zero))
	for _, column := range allocator.hibernatedData {
		total += uint64(len(column))
	}

	return total
}

// Clone copies an existing allocator. Handles stay valid in the copy.
func (allocator *Allocator[T]) Clone() *Allocator[T] {
	if allocator.storage == nil {
		panic("cannot clone a hibernated allocator")
	}

	clone := &Allocator[T]{
		HibernationThreshold: allocator.HibernationThreshold,
		storage:              make([]node[T], len(allocator.storage), cap(allocator.storage)),
	}
	copy(clone.storage, allocator.storage)

	return clone
}

// Hibernate compresses the link and color columns of the arena. Arenas
// smaller than HibernationThreshold are left untouched.
func (allocator *Allocator[T]) Hibernate() {
	if allocator.storage == nil {
		panic("cannot hibernate an already hibernated Allocator")
	}

	if len(allocator.storage) < allocator.HibernationThreshold {
		return
	}

	allocator.hibernatedLen = len(allocator.storage)

	buffers := [columnCount][]uint32{}
	for idx := range buffers {
		buffers[idx] = make([]uint32, len(allocator.storage))
	}

	allocator.hibernatedKeys = make([]T, len(allocator.storage))

	// We deinterleave to achieve a better compression ratio.
	for idx, nd := range allocator.storage {
		allocator.hibernatedKeys[idx] = nd.key
		buffers[columnParent][idx] = nd.parent
		buffers[columnLeft][idx] = nd.left
		buffers[columnRight][idx] = nd.right

		if nd.color == Black {
			buffers[columnColor][idx] = 1
		}
	}

	allocator.storage = nil

	wg := &sync.WaitGroup{}
	wg.Add(len(buffers))

	for idx, buffer := range buffers {
		go func(bufIdx int, buf []uint32) {
			defer wg.Done()

			allocator.hibernatedData[bufIdx] = CompressUInt32Slice(buf)
		}(idx, buffer)
	}

	wg.Wait()
}

// Boot performs the opposite of Hibernate() - decompresses and restores the arena.
func (allocator *Allocator[T]) Boot() {
	if allocator.storage != nil {
		return
	}

	buffers := [columnCount][]uint32{}
	errs := [columnCount]error{}

	wg := &sync.WaitGroup{}
	wg.Add(len(buffers))

	for idx := range buffers {
		go func(bufIdx int) {
			defer wg.Done()

			buffers[bufIdx] = make([]uint32, allocator.hibernatedLen)
			errs[bufIdx] = DecompressUInt32Slice(allocator.hibernatedData[bufIdx], buffers[bufIdx])
		}(idx)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			panic("cannot boot a corrupted Allocator: " + err.Error())
		}
	}

	capSize := (allocator.hibernatedLen * growCapacityNumerator) / growCapacityDenominator
	allocator.storage = make([]node[T], allocator.hibernatedLen, capSize)

	for idx := range allocator.storage {
		nd := &allocator.storage[idx]
		nd.key = allocator.hibernatedKeys[idx]
		nd.parent = buffers[columnParent][idx]
		nd.left = buffers[columnLeft][idx]
		nd.right = buffers[columnRight][idx]
		nd.color = Color(buffers[columnColor][idx] > 0)
	}

	allocator.hibernatedKeys = nil
	allocator.hibernatedData = [columnCount][]byte{}
	allocator.hibernatedLen = 0
}

func (allocator *Allocator[T]) malloc() uint32 {
	if allocator.storage == nil {
		panic("hibernated allocators cannot be used")
	}

	nodeLen := len(allocator.storage)
	if nodeLen == 0 {
		// Zero is reserved.
		allocator.storage = append(allocator.storage, node[T]{color: Black})
		nodeLen = 1
	}

	if uint64(nodeLen) > maxHandle {
		panic("the size of the RBTree allocator has reached the maximum value for uint32")
	}

	allocator.storage = append(allocator.storage, node[T]{})

	return uint32(nodeLen)
}
