package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/redblack/pkg/persist"
	"github.com/Sumatoshi-tech/redblack/pkg/rbtree"
	"github.com/Sumatoshi-tech/redblack/pkg/render"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"tree.json", "tree.gob", "tree.json.lz4", "tree.gob.lz4", "tree.snapshot"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), name)

			res, err := runCLI(t, "", "", withKeys("save", "-o", path)...)
			require.NoError(t, err)
			assert.Equal(t, "saved 7 nodes to "+path+"\n", res.stdout)

			res, err = runCLI(t, "", "", "load", path)
			require.NoError(t, err)
			assert.Equal(t, path+": 7 nodes, height 3, black height 1\n1 3 4 5 7 8 9\n", res.stdout)

			res, err = runCLI(t, "", "", "traverse", "--order", "preorder", "--from", path)
			require.NoError(t, err)
			assert.Equal(t, "5 3 1 4 8 7 9\n", res.stdout)
		})
	}
}

func TestSaveUsesConfiguredCodec(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tree.bin")

	_, err := runCLI(t, "snapshot:\n  codec: gob\n  compress: true\n", "", withKeys("save", "-o", path)...)
	require.NoError(t, err)

	// The default JSON codec cannot read it back.
	_, err = runCLI(t, "", "", "load", path)
	require.Error(t, err)

	res, err := runCLI(t, "snapshot:\n  codec: gob\n  compress: true\n", "", "load", path)
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "1 3 4 5 7 8 9")
}

func TestLoadKeepsExactShape(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tree.json")

	_, err := runCLI(t, "", "", "save", "-o", path, "1", "2", "3", "4", "5", "6")
	require.NoError(t, err)

	saved, err := runCLI(t, "", "", "print", "1", "2", "3", "4", "5", "6")
	require.NoError(t, err)

	loaded, err := runCLI(t, "", "", "print", "--from", path)
	require.NoError(t, err)
	assert.Equal(t, saved.stdout, loaded.stdout)
}

func TestLoadRejectsBadSnapshots(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	foreign := filepath.Join(dir, "foreign.json")
	require.NoError(t, os.WriteFile(foreign, []byte(`{"name": "not a tree"}`), 0o600))

	_, err := runCLI(t, "", "", "load", foreign)
	require.ErrorIs(t, err, persist.ErrSchemaViolation)

	// Schema-valid but every column is garbage.
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(
		`{"keys": [1], "root": 1, "parents": "", "lefts": "", "rights": "", "colors": ""}`), 0o600))

	_, err = runCLI(t, "", "", "load", broken)
	require.ErrorIs(t, err, rbtree.ErrSnapshotCorrupt)

	_, err = runCLI(t, "", "", "load", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestInsertCreatesAndUpdatesSnapshot(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tree.json.lz4")

	res, err := runCLI(t, "", "", "insert", "-f", path, "10", "20")
	require.NoError(t, err)
	assert.Equal(t, "inserted 2 keys into "+path+", 2 nodes\n", res.stdout)

	res, err = runCLI(t, "", "", "insert", "-f", path, "30")
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "3 nodes")

	res, err = runCLI(t, "", "", "traverse", "--order", "preorder", "--from", path)
	require.NoError(t, err)
	assert.Equal(t, "20 10 30\n", res.stdout)
}

func TestInsertRequiresFile(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, "", "", "insert", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}

func TestDiffCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.gob")
	third := filepath.Join(dir, "third.json")

	_, err := runCLI(t, "", "", "save", "-o", first, "1", "2", "3")
	require.NoError(t, err)
	_, err = runCLI(t, "", "", "save", "-o", second, "1", "2", "3")
	require.NoError(t, err)
	_, err = runCLI(t, "", "", "save", "-o", third, "1", "2", "4")
	require.NoError(t, err)

	res, err := runCLI(t, "", "", "diff", first, second)
	require.NoError(t, err)
	assert.Equal(t, "trees are identical\n", res.stdout)

	res, err = runCLI(t, "", "", "diff", first, third)
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "--- "+first)
	assert.Contains(t, res.stdout, "- Node(key=3, color=red")
	assert.Contains(t, res.stdout, "+ Node(key=4, color=red")
	assert.True(t, strings.HasPrefix(res.stdout, "--- "))

	_, err = runCLI(t, "", "", "diff", "--exit-code", first, third)
	require.ErrorIs(t, err, ErrTreesDiffer)
}

func TestRenderCommand(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tree.html")

	res, err := runCLI(t, "", "", withKeys("render", "-o", path, "--title", "Sample", "--leaves")...)
	require.NoError(t, err)
	assert.Equal(t, "wrote "+path+"\n", res.stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html")
	assert.Contains(t, string(data), "Sample")
}

var errDiskFull = errors.New("disk full")

type closeFailWriter struct {
	bytes.Buffer
}

func (*closeFailWriter) Close() error {
	return errDiskFull
}

func TestWriteChartReportsCloseError(t *testing.T) {
	t.Parallel()

	tree := rbtree.New[int64]()
	tree.Insert(1)

	var out closeFailWriter

	err := writeChartTo(&out, tree, render.ChartOptions{Title: "t"})
	require.ErrorIs(t, err, errDiskFull)
	assert.Contains(t, out.String(), "<html")
}
