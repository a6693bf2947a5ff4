package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/redblack/pkg/observability"
	"github.com/Sumatoshi-tech/redblack/pkg/rbtree"
	"github.com/Sumatoshi-tech/redblack/pkg/render"
)

func (a *app) renderCmd() *cobra.Command {
	var (
		src     treeSource
		output  string
		options render.ChartOptions
	)

	cmd := &cobra.Command{
		Use:   "render [KEY...] -o FILE.html",
		Short: "Render the tree as an interactive HTML chart",
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "HTML file to write")
	cmd.Flags().StringVar(&options.Title, "title", "Red-black tree", "chart title")
	cmd.Flags().BoolVar(&options.ShowLeaves, "leaves", false, "draw the absent leaves")
	_ = cmd.MarkFlagRequired("output")

	cmd.RunE = a.run("render", observability.ModeCLI, func(ctx context.Context, cmd *cobra.Command, args []string) error {
		tree, err := a.buildTree(ctx, cmd, src, args)
		if err != nil {
			return err
		}

		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}

		err = writeChartTo(file, tree, options)
		if err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}

		if !a.quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
		}

		return nil
	})

	return cmd
}

// writeChartTo writes the chart and closes wc, reporting both failures.
func writeChartTo(wc io.WriteCloser, tree *rbtree.Tree[int64], options render.ChartOptions) error {
	err := render.WriteChart(wc, tree, options)

	return errors.Join(err, wc.Close())
}
