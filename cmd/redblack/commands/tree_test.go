package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/redblack/pkg/rbtree"
)

var sampleKeys = []string{"5", "3", "8", "1", "4", "7", "9"}

func withKeys(args ...string) []string {
	return append(args, sampleKeys...)
}

func TestPrintNodes(t *testing.T) {
	t.Parallel()

	res, err := runCLI(t, "", "", withKeys("print")...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Node(key=1, color=red, left=<nil>, right=<nil>, parent=3)", lines[0])
	assert.Equal(t, "Node(key=9, color=red, left=<nil>, right=<nil>, parent=8)", lines[6])
}

func TestPrintSketch(t *testing.T) {
	t.Parallel()

	res, err := runCLI(t, "", "", "print", "--sketch", "10", "20", "30")
	require.NoError(t, err)
	assert.Equal(t, "    30\n20\n    10\n", res.stdout)
}

func TestPrintNeedsInput(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, "", "", "print")
	require.ErrorIs(t, err, ErrNoInput)

	_, err = runCLI(t, "", "", "print", "1", "two")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestTraverseOrders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		order string
		want  string
	}{
		{order: "inorder", want: "1 3 4 5 7 8 9\n"},
		{order: "preorder", want: "5 3 1 4 8 7 9\n"},
		{order: "postorder", want: "1 4 3 7 9 8 5\n"},
		{order: "PostOrder", want: "1 4 3 7 9 8 5\n"},
	}

	for _, tc := range tests {
		t.Run(tc.order, func(t *testing.T) {
			t.Parallel()

			res, err := runCLI(t, "", "", withKeys("traverse", "--order", tc.order)...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.stdout)
		})
	}
}

func TestTraverseInvalidOrder(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, "", "", "traverse", "--order", "levelorder", "1")
	require.ErrorIs(t, err, rbtree.ErrInvalidOrder)
}

func TestTraverseReadsStdin(t *testing.T) {
	t.Parallel()

	res, err := runCLI(t, "", "5 3\n8, 1\n", "traverse", "-", "2")
	require.NoError(t, err)
	assert.Equal(t, "1 2 3 5 8\n", res.stdout)
}

func TestTraverseEmptyStdin(t *testing.T) {
	t.Parallel()

	res, err := runCLI(t, "", "", "traverse", "-")
	require.NoError(t, err)
	assert.Equal(t, "\n", res.stdout)
}

func TestTraverseUsesConfigDefaults(t *testing.T) {
	t.Parallel()

	res, err := runCLI(t, "tree:\n  order: preorder\noutput:\n  format: json\n", "", withKeys("traverse")...)
	require.NoError(t, err)

	var got traversal

	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, traversal{Order: "preorder", Keys: []int64{5, 3, 1, 4, 8, 7, 9}}, got)
}

func TestTraverseYAMLAndTable(t *testing.T) {
	t.Parallel()

	res, err := runCLI(t, "", "", withKeys("traverse", "--format", "yaml", "--order", "postorder")...)
	require.NoError(t, err)

	var got traversal

	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, []int64{1, 4, 3, 7, 9, 8, 5}, got.Keys)

	res, err = runCLI(t, "", "", withKeys("traverse", "--format", "table")...)
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "inorder traversal, 7 nodes")
	assert.Contains(t, res.stdout, "black")
}

func TestTraverseUnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, "", "", "traverse", "--format", "csv", "1")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCheckCommand(t *testing.T) {
	t.Parallel()

	res, err := runCLI(t, "", "", withKeys("check")...)
	require.NoError(t, err)
	assert.Equal(t, "ok: 7 nodes, height 3, black height 1\n", res.stdout)
}

func TestStatsCommand(t *testing.T) {
	t.Parallel()

	res, err := runCLI(t, "", "", "stats", "--format", "json", "10", "20", "30")
	require.NoError(t, err)

	var got summaryView

	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, 3, got.Nodes)
	assert.Equal(t, 3, got.Inserts)
	assert.Equal(t, 1, got.LeftRotations)
	assert.Equal(t, 0, got.RightRotations)
	assert.Equal(t, 1, got.RotationFixes)
	assert.Positive(t, got.ArenaBytes)

	res, err = runCLI(t, "", "", withKeys("stats")...)
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "Left rotations")
}

func TestDumpCommand(t *testing.T) {
	t.Parallel()

	res, err := runCLI(t, "", "", "dump", "10", "20", "30")
	require.NoError(t, err)

	var got treeView

	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &got))
	require.NotNil(t, got.Root)
	assert.Equal(t, uint32(2), *got.Root)
	assert.Equal(t, 3, got.Size)
	require.Len(t, got.Nodes, 3)

	root := got.Nodes[0]
	assert.Equal(t, int64(20), root.Key)
	assert.Equal(t, "black", root.Color)
	assert.Nil(t, root.Parent)
	require.NotNil(t, root.Left)
	require.NotNil(t, root.Right)
	assert.Equal(t, uint32(1), *root.Left)
	assert.Equal(t, uint32(3), *root.Right)

	res, err = runCLI(t, "", "", "dump", "--format", "json", "-")
	require.NoError(t, err)

	var empty treeView

	require.NoError(t, json.Unmarshal([]byte(res.stdout), &empty))
	assert.Nil(t, empty.Root)
	assert.Empty(t, empty.Nodes)
}
