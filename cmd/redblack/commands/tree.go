package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/redblack/pkg/config"
	"github.com/Sumatoshi-tech/redblack/pkg/observability"
	"github.com/Sumatoshi-tech/redblack/pkg/rbtree"
	"github.com/Sumatoshi-tech/redblack/pkg/render"
)

// ErrUnsupportedFormat is returned for an output format a command cannot produce.
var ErrUnsupportedFormat = errors.New("unsupported output format")

func (a *app) insertCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "insert KEY... --file SNAPSHOT",
		Short: "Insert keys into a snapshot file, creating it when missing",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "snapshot file to update")
	_ = cmd.MarkFlagRequired("file")

	cmd.RunE = a.run("insert", observability.ModeCLI, func(ctx context.Context, cmd *cobra.Command, args []string) error {
		keys, err := parseKeys(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		tree := rbtree.New[int64]()

		_, statErr := os.Stat(file)
		if statErr == nil {
			tree, err = a.loadTree(ctx, file)
			if err != nil {
				return err
			}
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", file, statErr)
		}

		a.insertKeys(ctx, tree, keys)

		err = tree.Check()
		if err != nil {
			return fmt.Errorf("tree invariants: %w", err)
		}

		err = a.saveTree(ctx, file, tree)
		if err != nil {
			return err
		}

		if !a.quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d keys into %s, %d nodes\n", len(keys), file, tree.Len())
		}

		return nil
	})

	return cmd
}

func (a *app) printCmd() *cobra.Command {
	var (
		src    treeSource
		sketch bool
	)

	cmd := &cobra.Command{
		Use:   "print [KEY...]",
		Short: "Print every node with its color and neighbours, inorder",
	}

	src.register(cmd)
	cmd.Flags().BoolVar(&sketch, "sketch", false, "draw the tree sideways instead")

	cmd.RunE = a.run("print", observability.ModeCLI, func(ctx context.Context, cmd *cobra.Command, args []string) error {
		tree, err := a.buildTree(ctx, cmd, src, args)
		if err != nil {
			return err
		}

		if sketch {
			return render.WriteSketch(cmd.OutOrStdout(), tree, a.painter())
		}

		return render.WriteNodes(cmd.OutOrStdout(), tree, a.painter())
	})

	return cmd
}

// traversal is the structured form of the traverse output.
type traversal struct {
	Order string  `json:"order" yaml:"order"`
	Keys  []int64 `json:"keys"  yaml:"keys"`
}

func (a *app) traverseCmd() *cobra.Command {
	var (
		src    treeSource
		order  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "traverse [KEY...]",
		Short: "List the keys in inorder, preorder or postorder",
	}

	src.register(cmd)
	cmd.Flags().StringVar(&order, "order", "", "inorder, preorder or postorder (default from config)")
	cmd.Flags().StringVar(&format, "format", "", "text, table, json or yaml (default from config)")

	cmd.RunE = a.run("traverse", observability.ModeCLI, func(ctx context.Context, cmd *cobra.Command, args []string) error {
		parsed, err := rbtree.ParseOrder(pick(order, a.cfg.Tree.Order))
		if err != nil {
			return err
		}

		tree, err := a.buildTree(ctx, cmd, src, args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		switch pick(format, a.cfg.Output.Format) {
		case config.FormatText:
			return writeKeyLine(out, tree.Keys(parsed))
		case config.FormatTable:
			render.WriteNodeTable(out, tree, parsed)

			return nil
		case config.FormatJSON:
			return writeJSON(out, traversal{Order: parsed.String(), Keys: tree.Keys(parsed)})
		case config.FormatYAML:
			return writeYAML(out, traversal{Order: parsed.String(), Keys: tree.Keys(parsed)})
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
		}
	})

	return cmd
}

func (a *app) checkCmd() *cobra.Command {
	var src treeSource

	cmd := &cobra.Command{
		Use:   "check [KEY...]",
		Short: "Verify the red-black invariants of a tree",
	}

	src.register(cmd)

	cmd.RunE = a.run("check", observability.ModeCLI, func(ctx context.Context, cmd *cobra.Command, args []string) error {
		tree, err := a.buildTree(ctx, cmd, src, args)
		if err != nil {
			return err
		}

		err = tree.Check()
		if err != nil {
			return fmt.Errorf("tree invariants: %w", err)
		}

		if !a.quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d nodes, height %d, black height %d\n",
				tree.Len(), tree.Height(), tree.BlackHeight())
		}

		return nil
	})

	return cmd
}

// summaryView is the structured form of the stats output.
type summaryView struct {
	Nodes          int    `json:"nodes"           yaml:"nodes"`
	Height         int    `json:"height"          yaml:"height"`
	BlackHeight    int    `json:"black_height"    yaml:"black_height"`
	ArenaBytes     uint64 `json:"arena_bytes"     yaml:"arena_bytes"`
	Inserts        int    `json:"inserts"         yaml:"inserts"`
	LeftRotations  int    `json:"left_rotations"  yaml:"left_rotations"`
	RightRotations int    `json:"right_rotations" yaml:"right_rotations"`
	Recolorings    int    `json:"recolorings"     yaml:"recolorings"`
	RedUncleFixes  int    `json:"red_uncle_fixes" yaml:"red_uncle_fixes"`
	RotationFixes  int    `json:"rotation_fixes"  yaml:"rotation_fixes"`
}

func newSummaryView(summary render.Summary) summaryView {
	return summaryView{
		Nodes:          summary.Nodes,
		Height:         summary.Height,
		BlackHeight:    summary.BlackHeight,
		ArenaBytes:     summary.ArenaBytes,
		Inserts:        summary.Stats.Inserts,
		LeftRotations:  summary.Stats.LeftRotations,
		RightRotations: summary.Stats.RightRotations,
		Recolorings:    summary.Stats.Recolorings,
		RedUncleFixes:  summary.Stats.RedUncleFixes,
		RotationFixes:  summary.Stats.RotationFixes,
	}
}

func (a *app) statsCmd() *cobra.Command {
	var (
		src    treeSource
		format string
	)

	cmd := &cobra.Command{
		Use:   "stats [KEY...]",
		Short: "Show size, height and the rebalancing work of the inserts",
	}

	src.register(cmd)
	cmd.Flags().StringVar(&format, "format", "", "text, table, json or yaml (default from config)")

	cmd.RunE = a.run("stats", observability.ModeCLI, func(ctx context.Context, cmd *cobra.Command, args []string) error {
		tree, err := a.buildTree(ctx, cmd, src, args)
		if err != nil {
			return err
		}

		summary := render.Summarize(tree)
		out := cmd.OutOrStdout()

		switch pick(format, a.cfg.Output.Format) {
		case config.FormatText, config.FormatTable:
			render.WriteSummaryTable(out, summary)

			return nil
		case config.FormatJSON:
			return writeJSON(out, newSummaryView(summary))
		case config.FormatYAML:
			return writeYAML(out, newSummaryView(summary))
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
		}
	})

	return cmd
}

// nodeView is one node of the dump output.
type nodeView struct {
	Handle uint32  `json:"handle"           yaml:"handle"`
	Key    int64   `json:"key"              yaml:"key"`
	Color  string  `json:"color"            yaml:"color"`
	Parent *uint32 `json:"parent,omitempty" yaml:"parent,omitempty"`
	Left   *uint32 `json:"left,omitempty"   yaml:"left,omitempty"`
	Right  *uint32 `json:"right,omitempty"  yaml:"right,omitempty"`
}

// treeView is the structured form of the dump output.
type treeView struct {
	Root  *uint32    `json:"root,omitempty" yaml:"root,omitempty"`
	Size  int        `json:"size"           yaml:"size"`
	Nodes []nodeView `json:"nodes"          yaml:"nodes"`
}

func handleOf(n rbtree.Node[int64]) *uint32 {
	if n.IsNil() {
		return nil
	}

	handle := n.Handle()

	return &handle
}

func newTreeView(tree *rbtree.Tree[int64]) treeView {
	view := treeView{Root: handleOf(tree.Root()), Size: tree.Len(), Nodes: make([]nodeView, 0, tree.Len())}

	tree.Traverse(tree.Root(), rbtree.Preorder, func(n rbtree.Node[int64]) {
		view.Nodes = append(view.Nodes, nodeView{
			Handle: n.Handle(),
			Key:    n.Key(),
			Color:  n.Color().String(),
			Parent: handleOf(n.Parent()),
			Left:   handleOf(n.Left()),
			Right:  handleOf(n.Right()),
		})
	})

	return view
}

func (a *app) dumpCmd() *cobra.Command {
	var (
		src    treeSource
		format string
	)

	cmd := &cobra.Command{
		Use:   "dump [KEY...]",
		Short: "Dump the node structure with handles as JSON or YAML",
	}

	src.register(cmd)
	cmd.Flags().StringVar(&format, "format", config.FormatYAML, "json or yaml")

	cmd.RunE = a.run("dump", observability.ModeCLI, func(ctx context.Context, cmd *cobra.Command, args []string) error {
		tree, err := a.buildTree(ctx, cmd, src, args)
		if err != nil {
			return err
		}

		switch strings.ToLower(format) {
		case config.FormatJSON:
			return writeJSON(cmd.OutOrStdout(), newTreeView(tree))
		case config.FormatYAML:
			return writeYAML(cmd.OutOrStdout(), newTreeView(tree))
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
		}
	})

	return cmd
}

func pick(flagValue, configured string) string {
	if flagValue != "" {
		return strings.ToLower(flagValue)
	}

	return configured
}

func writeKeyLine(w io.Writer, keys []int64) error {
	var line strings.Builder

	for idx, key := range keys {
		if idx > 0 {
			line.WriteByte(' ')
		}

		fmt.Fprint(&line, key)
	}

	line.WriteByte('\n')

	_, err := io.WriteString(w, line.String())
	if err != nil {
		return fmt.Errorf("write keys: %w", err)
	}

	return nil
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

func writeYAML(w io.Writer, value any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return fmt.Errorf("yaml close: %w", err)
	}

	return nil
}
