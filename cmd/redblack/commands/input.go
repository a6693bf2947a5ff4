package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/redblack/pkg/observability"
	"github.com/Sumatoshi-tech/redblack/pkg/persist"
	"github.com/Sumatoshi-tech/redblack/pkg/rbtree"
)

var (
	// ErrInvalidKey is returned for a key that is not a base-10 int64.
	ErrInvalidKey = errors.New("invalid key")
	// ErrNoInput is returned when a command needs keys or a snapshot and got neither.
	ErrNoInput = errors.New("no keys given; pass keys, \"-\" for stdin, or --from")
)

// stdinMarker requests keys from standard input.
const stdinMarker = "-"

// treeSource is the input shared by commands that operate on one tree.
type treeSource struct {
	from string
}

func (s *treeSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.from, "from", "", "start from a saved snapshot")
}

// parseKeys reads keys from args, expanding "-" into whitespace separated
// keys read from stdin.
func parseKeys(args []string, stdin io.Reader) ([]int64, error) {
	keys := make([]int64, 0, len(args))

	for _, arg := range args {
		if arg != stdinMarker {
			key, err := parseKey(arg)
			if err != nil {
				return nil, err
			}

			keys = append(keys, key)

			continue
		}

		scanner := bufio.NewScanner(stdin)
		scanner.Split(bufio.ScanWords)

		for scanner.Scan() {
			key, err := parseKey(scanner.Text())
			if err != nil {
				return nil, err
			}

			keys = append(keys, key)
		}

		err := scanner.Err()
		if err != nil {
			return nil, fmt.Errorf("read keys: %w", err)
		}
	}

	return keys, nil
}

func parseKey(text string) (int64, error) {
	key, err := strconv.ParseInt(strings.TrimSuffix(text, ","), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, text)
	}

	return key, nil
}

// buildTree loads the --from snapshot, if any, and inserts the keys given on
// the command line into it. The insert batch is recorded in the tree metrics.
func (a *app) buildTree(ctx context.Context, cmd *cobra.Command, src treeSource, args []string) (*rbtree.Tree[int64], error) {
	keys, err := parseKeys(args, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}

	if src.from == "" && len(args) == 0 {
		return nil, ErrNoInput
	}

	tree := rbtree.New[int64]()
	if src.from != "" {
		tree, err = a.loadTree(ctx, src.from)
		if err != nil {
			return nil, err
		}
	}

	a.insertKeys(ctx, tree, keys)

	return tree, nil
}

// insertKeys inserts keys and records the work done in the tree metrics.
func (a *app) insertKeys(ctx context.Context, tree *rbtree.Tree[int64], keys []int64) time.Duration {
	before := tree.Stats()
	started := time.Now()

	for _, key := range keys {
		tree.Insert(key)
	}

	elapsed := time.Since(started)
	after := tree.Stats()

	a.metrics.RecordStats(ctx, observability.TreeStats{
		Inserts:        after.Inserts - before.Inserts,
		LeftRotations:  after.LeftRotations - before.LeftRotations,
		RightRotations: after.RightRotations - before.RightRotations,
		Recolorings:    after.Recolorings - before.Recolorings,
		RedUncleFixes:  after.RedUncleFixes - before.RedUncleFixes,
		RotationFixes:  after.RotationFixes - before.RotationFixes,
		Height:         tree.Height(),
		Nodes:          tree.Len(),
		Duration:       elapsed,
	})

	a.logger.DebugContext(ctx, "keys inserted", "keys", len(keys), "nodes", tree.Len(), "elapsed", elapsed)

	return elapsed
}

// codecForPath picks the snapshot codec from the file extension, falling back
// to the configured codec for unknown extensions.
func (a *app) codecForPath(path string) (persist.Codec, error) {
	name := a.cfg.Snapshot.Codec
	compress := a.cfg.Snapshot.Compress

	base := path
	if trimmed, ok := strings.CutSuffix(base, ".lz4"); ok {
		base, compress = trimmed, true
	}

	switch {
	case strings.HasSuffix(base, ".json"):
		name = persist.CodecJSON
	case strings.HasSuffix(base, ".gob"):
		name = persist.CodecGob
	}

	return persist.CodecFor(name, compress, rbtree.SnapshotJSONSchema)
}

func (a *app) loadTree(ctx context.Context, path string) (*rbtree.Tree[int64], error) {
	codec, err := a.codecForPath(path)
	if err != nil {
		return nil, err
	}

	snap, err := persist.NewPersister[rbtree.Snapshot[int64]](codec).Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	tree, err := rbtree.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", path, err)
	}

	a.logger.DebugContext(ctx, "snapshot loaded", "path", path, "codec", codec.Name(), "nodes", tree.Len())

	return tree, nil
}

func (a *app) saveTree(ctx context.Context, path string, tree *rbtree.Tree[int64]) error {
	codec, err := a.codecForPath(path)
	if err != nil {
		return err
	}

	err = persist.NewPersister[rbtree.Snapshot[int64]](codec).Save(path, tree.Snapshot())
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	a.logger.DebugContext(ctx, "snapshot saved", "path", path, "codec", codec.Name(), "nodes", tree.Len())

	return nil
}
