package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/redblack/pkg/rbtree"
)

// Painter colors node descriptions by node color.
type Painter struct {
	red   *color.Color
	black *color.Color
}

// NewPainter creates a painter. Disabled painters return text unchanged,
// enabled ones emit escape codes even when the output is not a terminal.
func NewPainter(enabled bool) *Painter {
	red := color.New(color.FgRed, color.Bold)
	black := color.New(color.FgHiWhite, color.BgBlack)

	if enabled {
		red.EnableColor()
		black.EnableColor()
	} else {
		red.DisableColor()
		black.DisableColor()
	}

	return &Painter{red: red, black: black}
}

// Paint colors text as a node of color c.
func (p *Painter) Paint(c rbtree.Color, text string) string {
	if c == rbtree.Red {
		return p.red.Sprint(text)
	}

	return p.black.Sprint(text)
}

// WriteNodes writes one painted diagnostic line per node, inorder.
func WriteNodes[T any](w io.Writer, tree *rbtree.Tree[T], painter *Painter) error {
	var err error

	tree.Traverse(tree.Root(), rbtree.Inorder, func(n rbtree.Node[T]) {
		if err == nil {
			_, err = fmt.Fprintln(w, painter.Paint(n.Color(), n.String()))
		}
	})

	if err != nil {
		return fmt.Errorf("write nodes: %w", err)
	}

	return nil
}

// WriteSketch draws the tree sideways, right subtree on top, one node per
// line indented by depth.
func WriteSketch[T any](w io.Writer, tree *rbtree.Tree[T], painter *Painter) error {
	var out strings.Builder

	sketch(&out, tree.Root(), 0, painter)

	_, err := io.WriteString(w, out.String())
	if err != nil {
		return fmt.Errorf("write sketch: %w", err)
	}

	return nil
}

func sketch[T any](out *strings.Builder, n rbtree.Node[T], depth int, painter *Painter) {
	if n.IsNil() {
		return
	}

	sketch(out, n.Right(), depth+1, painter)
	out.WriteString(strings.Repeat("    ", depth))
	out.WriteString(painter.Paint(n.Color(), fmt.Sprint(n.Key())))
	out.WriteByte('\n')
	sketch(out, n.Left(), depth+1, painter)
}

// Summary is a printable digest of a tree and the work that built it.
type Summary struct {
	Stats       rbtree.Stats
	Nodes       int
	Height      int
	BlackHeight int
	ArenaBytes  uint64
	Elapsed     time.Duration
}

// Summarize collects the summary of tree. Elapsed is left to the caller.
func Summarize[T any](tree *rbtree.Tree[T]) Summary {
	return Summary{
		Stats:       tree.Stats(),
		Nodes:       tree.Len(),
		Height:      tree.Height(),
		BlackHeight: tree.BlackHeight(),
		ArenaBytes:  tree.Allocator().Bytes(),
	}
}

// WriteSummaryTable renders the summary as a two-column table.
func WriteSummaryTable(w io.Writer, summary Summary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Metric", "Value"})

	count := func(n int) string { return humanize.Comma(int64(n)) }

	tw.AppendRows([]table.Row{
		{"Nodes", count(summary.Nodes)},
		{"Height", count(summary.Height)},
		{"Black height", count(summary.BlackHeight)},
		{"Arena", humanize.IBytes(summary.ArenaBytes)},
	})
	tw.AppendSeparator()
	tw.AppendRows([]table.Row{
		{"Inserts", count(summary.Stats.Inserts)},
		{"Left rotations", count(summary.Stats.LeftRotations)},
		{"Right rotations", count(summary.Stats.RightRotations)},
		{"Recolorings", count(summary.Stats.Recolorings)},
		{"Red uncle fixes", count(summary.Stats.RedUncleFixes)},
		{"Rotation fixes", count(summary.Stats.RotationFixes)},
	})

	if summary.Elapsed > 0 {
		tw.AppendSeparator()
		tw.AppendRow(table.Row{"Elapsed", summary.Elapsed.Round(time.Microsecond).String()})

		if summary.Stats.Inserts > 0 {
			rate := float64(summary.Stats.Inserts) / summary.Elapsed.Seconds()
			tw.AppendRow(table.Row{"Throughput", humanize.SIWithDigits(rate, 2, "inserts/s")})
		}
	}

	tw.Render()
}

// WriteNodeTable renders one row per node in the given order.
func WriteNodeTable[T any](w io.Writer, tree *rbtree.Tree[T], order rbtree.Order) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Key", "Color", "Left", "Right", "Parent"})

	label := func(n rbtree.Node[T]) string {
		if n.IsNil() {
			return "-"
		}

		return fmt.Sprint(n.Key())
	}

	position := 0

	tree.Traverse(tree.Root(), order, func(n rbtree.Node[T]) {
		position++
		tw.AppendRow(table.Row{position, n.Key(), n.Color(), label(n.Left()), label(n.Right()), label(n.Parent())})
	})

	tw.SetCaption("%s traversal, %s nodes", order, humanize.Comma(int64(tree.Len())))
	tw.Render()
}
