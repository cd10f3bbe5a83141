package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/boardio"
)

// layoutCommand creates the layout command for packing a board into rows.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [board.json|board.toml|board.yaml]",
		Short: "Pack a board file into rows",
		Long: `Pack a board file into rows.

The layout command reads a board file (JSON, TOML, or YAML), packs its tasks
into non-overlapping rows, and writes a layout.json file (same format as
'render -f json') that 'render' turns into SVG, PNG, or PDF.

In manual mode the rows saved for each task are kept instead; use
--saved PROJECT/PI to load them from the position store.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], &flags, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the board, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, flags *layoutFlags, output string) error {
	f, err := boardio.ImportBoard(input)
	if err != nil {
		return fmt.Errorf("load board %s: %w", input, err)
	}

	opts, err := c.layoutOptions(ctx, flags)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Packing board...")
	spinner.Start()

	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, f, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := boardio.ExportLayout(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(l.Tasks), l.Rows, cacheHit)
	printConflicts(l.Conflicts)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}
