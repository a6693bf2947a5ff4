package commands

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/redblack/pkg/observability"
	"github.com/Sumatoshi-tech/redblack/pkg/rbtree"
	"github.com/Sumatoshi-tech/redblack/pkg/render"
)

// Bench input errors.
var (
	ErrUnknownPattern = errors.New("unknown key pattern")
	ErrInvalidCount   = errors.New("count must not be negative")
)

// Key patterns accepted by bench.
const (
	patternRandom     = "random"
	patternAscending  = "ascending"
	patternDescending = "descending"
	patternSawtooth   = "sawtooth"
)

const (
	defaultBenchSize = 100_000
	sawtoothPeriod   = 1024
)

func benchKeys(pattern string, count int, seed int64) ([]int64, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	keys := make([]int64, count)

	switch pattern {
	case patternRandom:
		rng := rand.New(rand.NewSource(seed))
		for idx := range keys {
			keys[idx] = rng.Int63()
		}
	case patternAscending:
		for idx := range keys {
			keys[idx] = int64(idx)
		}
	case patternDescending:
		for idx := range keys {
			keys[idx] = int64(count - idx)
		}
	case patternSawtooth:
		for idx := range keys {
			keys[idx] = int64(idx % sawtoothPeriod)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, pattern)
	}

	return keys, nil
}

func (a *app) benchCmd() *cobra.Command {
	var (
		count   int
		pattern string
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure insertion and arena hibernation on generated keys",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().IntVarP(&count, "count", "n", defaultBenchSize, "number of keys to insert")
	cmd.Flags().StringVar(&pattern, "pattern", patternRandom, "random, ascending, descending or sawtooth")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random pattern seed")

	cmd.RunE = a.run("bench", observability.ModeBench, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
		keys, err := benchKeys(pattern, count, seed)
		if err != nil {
			return err
		}

		tree := rbtree.New[int64]()
		tree.Allocator().HibernationThreshold = a.cfg.Snapshot.HibernationThreshold

		_, span := a.tracer.Start(ctx, "redblack.bench.insert")
		elapsed := a.insertKeys(ctx, tree, keys)
		span.End()

		summary := render.Summarize(tree)
		summary.Elapsed = elapsed

		err = tree.Check()
		if err != nil {
			return fmt.Errorf("tree invariants: %w", err)
		}

		out := cmd.OutOrStdout()
		render.WriteSummaryTable(out, summary)

		started := time.Now()
		tree.Hibernate()

		if !tree.Allocator().Hibernated() {
			fmt.Fprintf(out, "hibernation skipped: %s slots below threshold %s\n",
				humanize.Comma(int64(tree.Allocator().Size())),
				humanize.Comma(int64(tree.Allocator().HibernationThreshold)))

			return nil
		}

		packed := tree.Allocator().Bytes()
		hibernate := time.Since(started)

		started = time.Now()
		tree.Boot()
		boot := time.Since(started)

		fmt.Fprintf(out, "hibernated arena: %s -> %s in %s, booted in %s\n",
			humanize.IBytes(summary.ArenaBytes), humanize.IBytes(packed),
			hibernate.Round(time.Microsecond), boot.Round(time.Microsecond))

		a.logger.InfoContext(ctx, "bench finished",
			"pattern", pattern, "keys", count, "elapsed", elapsed, "hibernated_bytes", packed)

		return tree.Check()
	})

	return cmd
}
