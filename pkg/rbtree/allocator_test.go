package rbtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/redblack/pkg/rbtree"
)

func TestAllocatorCounts(t *testing.T) {
	t.Parallel()

	tree := rbtree.New[int]()
	assert.Equal(t, 0, tree.Allocator().Size())
	assert.Equal(t, 0, tree.Allocator().Used())

	for key := range 10 {
		tree.Insert(key)
	}

	assert.Equal(t, 11, tree.Allocator().Size())
	assert.Equal(t, 10, tree.Allocator().Used())
	assert.Positive(t, tree.Allocator().Bytes())
}

func TestHibernateBoot(t *testing.T) {
	t.Parallel()

	tree := rbtree.New[int]()
	for key := range 2000 {
		tree.Insert(key % 300)
	}

	before := tree.Keys(rbtree.Preorder)
	liveBytes := tree.Allocator().Bytes()

	tree.Hibernate()
	require.True(t, tree.Allocator().Hibernated())
	assert.Less(t, tree.Allocator().Bytes(), liveBytes)

	assert.Panics(t, func() { tree.Insert(1) })
	assert.Panics(t, func() { tree.Allocator().Clone() })
	assert.Panics(t, func() { tree.Hibernate() })

	tree.Boot()
	require.False(t, tree.Allocator().Hibernated())
	require.NoError(t, tree.Check())
	assert.Equal(t, before, tree.Keys(rbtree.Preorder))

	tree.Insert(5000)
	require.NoError(t, tree.Check())
	assert.Equal(t, 2001, tree.Len())
}

func TestHibernateBelowThreshold(t *testing.T) {
	t.Parallel()

	tree := rbtree.New[string]()
	tree.Allocator().HibernationThreshold = 100

	tree.Insert("b")
	tree.Insert("a")
	tree.Hibernate()

	assert.False(t, tree.Allocator().Hibernated())
	assert.Equal(t, []string{"a", "b"}, tree.Keys(rbtree.Inorder))
}

func TestBootIsIdempotent(t *testing.T) {
	t.Parallel()

	tree := rbtree.New[int]()
	tree.Insert(1)
	tree.Boot()

	assert.Equal(t, 1, tree.Len())
	require.NoError(t, tree.Check())
}
