package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/board"
)

// pisCommand creates the pis command that prints the PI calendar.
func (c *CLI) pisCommand() *cobra.Command {
	var (
		year   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "pis",
		Short: "Print the PI calendar",
		Long: `Print the PI calendar.

The calendar is configured by the [board] section (pi_start, pis_per_year,
sprints_per_pi, sprint_days); by default 2026 starts on Monday 19 January
with eight PIs of three two-week sprints.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cal := c.Config.Board.CalendarOptions
			if year > 0 {
				cal = cal.ForYear(year)
			}
			pis := board.GeneratePIs(cal)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(pis)
			}
			return writePITable(cmd.OutOrStdout(), pis, time.Now())
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default: board.year)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

// writePITable prints one row per sprint, highlighting the sprint that
// contains now.
func writePITable(w io.Writer, pis []board.PI, now time.Time) error {
	var rows [][]string
	current := -1
	for _, pi := range pis {
		for _, s := range pi.Sprints {
			if !now.Before(s.Start.Time) && now.Before(s.End.AddDays(1).Time) {
				current = len(rows)
			}
			rows = append(rows, []string{pi.ID, s.ID, s.Name, s.Start.Format("Mon 02/01"), s.End.Format("Mon 02/01")})
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("PI", "Sprint", "Name", "Start", "End").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1: // header
				return styleHeader
			case row == current:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case col == 0 || col == 1:
				return StyleDim
			}
			return StyleValue
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
