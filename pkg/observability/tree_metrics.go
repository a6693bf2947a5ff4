package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricInsertsTotal   = "redblack.tree.inserts.total"
	metricRotationsTotal = "redblack.tree.rotations.total"
	metricRecolorsTotal  = "redblack.tree.recolors.total"
	metricFixupsTotal    = "redblack.tree.fixups.total"
	metricHeight         = "redblack.tree.height"
	metricNodes          = "redblack.tree.nodes"
	metricInsertDuration = "redblack.tree.insert.batch.duration.seconds"

	attrDirection = "direction"
	attrCase      = "case"

	fixupRedUncle = "red_uncle"
	fixupRotation = "rotation"
	rotationLeft  = "left"
	rotationRight = "right"
)

// durationBucketBoundaries covers 1µs to 10s insert batches.
var durationBucketBoundaries = []float64{1e-6, 1e-5, 1e-4, 1e-3, 0.01, 0.1, 0.5, 1, 2.5, 10}

// TreeMetrics holds OTel instruments for red-black tree workloads.
type TreeMetrics struct {
	inserts        metric.Int64Counter
	rotations      metric.Int64Counter
	recolors       metric.Int64Counter
	fixups         metric.Int64Counter
	height         metric.Int64Gauge
	nodes          metric.Int64Gauge
	insertDuration metric.Float64Histogram
}

// TreeStats holds the counters of a finished batch of insertions,
// decoupled from the tree types.
type TreeStats struct {
	Inserts        int
	LeftRotations  int
	RightRotations int
	Recolorings    int
	RedUncleFixes  int
	RotationFixes  int
	Height         int
	Nodes          int
	Duration       time.Duration
}

// NewTreeMetrics creates tree metric instruments from the given meter.
func NewTreeMetrics(mt metric.Meter) (*TreeMetrics, error) {
	inserts, err := mt.Int64Counter(metricInsertsTotal,
		metric.WithDescription("Total keys inserted"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInsertsTotal, err)
	}

	rotations, err := mt.Int64Counter(metricRotationsTotal,
		metric.WithDescription("Rotations performed by direction"),
		metric.WithUnit("{rotation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRotationsTotal, err)
	}

	recolors, err := mt.Int64Counter(metricRecolorsTotal,
		metric.WithDescription("Node color changes"),
		metric.WithUnit("{recolor}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRecolorsTotal, err)
	}

	fixups, err := mt.Int64Counter(metricFixupsTotal,
		metric.WithDescription("Insertion fix-up passes by case"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFixupsTotal, err)
	}

	height, err := mt.Int64Gauge(metricHeight,
		metric.WithDescription("Nodes on the longest root-to-leaf path"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricHeight, err)
	}

	nodes, err := mt.Int64Gauge(metricNodes,
		metric.WithDescription("Nodes stored in the tree"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricNodes, err)
	}

	insertDur, err := mt.Float64Histogram(metricInsertDuration,
		metric.WithDescription("Duration of an insert batch in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInsertDuration, err)
	}

	return &TreeMetrics{
		inserts:        inserts,
		rotations:      rotations,
		recolors:       recolors,
		fixups:         fixups,
		height:         height,
		nodes:          nodes,
		insertDuration: insertDur,
	}, nil
}

// RecordStats records the counters of one insert batch.
// Safe to call on a nil receiver (no-op).
func (tm *TreeMetrics) RecordStats(ctx context.Context, stats TreeStats) {
	if tm == nil {
		return
	}

	tm.inserts.Add(ctx, int64(stats.Inserts))
	tm.rotations.Add(ctx, int64(stats.LeftRotations),
		metric.WithAttributes(attribute.String(attrDirection, rotationLeft)))
	tm.rotations.Add(ctx, int64(stats.RightRotations),
		metric.WithAttributes(attribute.String(attrDirection, rotationRight)))
	tm.recolors.Add(ctx, int64(stats.Recolorings))
	tm.fixups.Add(ctx, int64(stats.RedUncleFixes),
		metric.WithAttributes(attribute.String(attrCase, fixupRedUncle)))
	tm.fixups.Add(ctx, int64(stats.RotationFixes),
		metric.WithAttributes(attribute.String(attrCase, fixupRotation)))
	tm.height.Record(ctx, int64(stats.Height))
	tm.nodes.Record(ctx, int64(stats.Nodes))

	if stats.Duration > 0 {
		tm.insertDuration.Record(ctx, stats.Duration.Seconds())
	}
}
