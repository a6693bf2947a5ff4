// Package render turns red-black trees into terminal, table, HTML and diff
// output for the redblack command line.
package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/redblack/pkg/rbtree"
)

const (
	chartWidth     = "100%"
	chartHeight    = "720px"
	symbolSize     = 18
	redNodeColor   = "#c0392b"
	blackNodeColor = "#17202a"
	nilNodeColor   = "#bdc3c7"
	nilSymbolSize  = 6
)

// ChartOptions tunes the HTML tree chart.
type ChartOptions struct {
	Title string
	// ShowLeaves draws the absent leaves as small grey nodes.
	ShowLeaves bool
}

// Chart builds an echarts tree diagram of the tree, one node per key colored
// by its node color.
func Chart[T any](tree *rbtree.Tree[T], options ChartOptions) *charts.Tree {
	chart := charts.NewTree()
	chart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    options.Title,
			Subtitle: fmt.Sprintf("%d nodes, height %d, black height %d", tree.Len(), tree.Height(), tree.BlackHeight()),
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: options.Title,
			Width:     chartWidth,
			Height:    chartHeight,
		}),
	)

	var data []opts.TreeData
	if !tree.Root().IsNil() {
		data = append(data, *chartNode(tree.Root(), options.ShowLeaves))
	}

	chart.AddSeries("tree", data, charts.WithTreeOpts(opts.TreeChart{
		Layout:           "orthogonal",
		Orient:           "TB",
		InitialTreeDepth: -1,
		Roam:             opts.Bool(true),
		Label:            &opts.Label{Show: opts.Bool(true), Position: "top"},
	}))

	return chart
}

// WriteChart renders the tree chart as a standalone HTML page.
func WriteChart[T any](w io.Writer, tree *rbtree.Tree[T], options ChartOptions) error {
	err := Chart(tree, options).Render(w)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}

func chartNode[T any](n rbtree.Node[T], showLeaves bool) *opts.TreeData {
	if n.IsNil() {
		return &opts.TreeData{
			Name:       "nil",
			SymbolSize: nilSymbolSize,
			ItemStyle:  &opts.ItemStyle{Color: nilNodeColor},
		}
	}

	color := blackNodeColor
	if n.Color() == rbtree.Red {
		color = redNodeColor
	}

	item := &opts.TreeData{
		Name:       fmt.Sprint(n.Key()),
		Value:      n.Color().String(),
		SymbolSize: symbolSize,
		ItemStyle:  &opts.ItemStyle{Color: color},
	}

	for _, child := range [...]rbtree.Node[T]{n.Left(), n.Right()} {
		if child.IsNil() && !showLeaves {
			continue
		}

		item.Children = append(item.Children, chartNode(child, showLeaves))
	}

	return item
}
