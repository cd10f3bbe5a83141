package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/boardio"
	"github.com/matzehuels/roadmap/pkg/render"
)

// previewCommand creates the preview command, an interactive row browser.
func (c *CLI) previewCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "preview [board|layout.json]",
		Short: "Browse a board's rows in the terminal",
		Long: `Browse a board's rows in the terminal.

Each row of the layout is drawn as a bar chart over the PI's columns; the
tasks of the selected row are listed below it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.loadLayout(cmd.Context(), args[0], &flags)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(NewPreviewModel(l), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	flags.register(cmd)

	return cmd
}

// loadLayout reads a layout file, or lays out a board file.
func (c *CLI) loadLayout(ctx context.Context, input string, flags *layoutFlags) (board.Layout, error) {
	kind, err := inputKind(input)
	if err != nil {
		return board.Layout{}, err
	}
	if kind == boardio.KindLayout {
		return boardio.ImportLayout(input)
	}

	f, err := boardio.ImportBoard(input)
	if err != nil {
		return board.Layout{}, fmt.Errorf("load board %s: %w", input, err)
	}
	opts, err := c.layoutOptions(ctx, flags)
	if err != nil {
		return board.Layout{}, err
	}
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return board.Layout{}, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	return runner.Layout(ctx, f, opts)
}

// =============================================================================
// PreviewModel - Interactive row browser
// =============================================================================

// Preview styles
var (
	previewSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewGapStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// cellWidth is the number of characters drawn per board column.
const cellWidth = 4

// PreviewModel is the bubbletea model of the row browser.
type PreviewModel struct {
	Layout board.Layout
	Rows   [][]board.PlacedTask
	Cursor int
	Height int
	Offset int
}

// NewPreviewModel groups the layout's tasks by row, ordered by start column.
func NewPreviewModel(l board.Layout) PreviewModel {
	rows := make([][]board.PlacedTask, l.Rows)
	for _, t := range l.Tasks {
		if t.Row >= 0 && t.Row < len(rows) {
			rows[t.Row] = append(rows[t.Row], t)
		}
	}
	for _, r := range rows {
		sort.SliceStable(r, func(i, j int) bool { return r[i].Start() < r[j].Start() })
	}
	return PreviewModel{Layout: l, Rows: rows, Height: 12}
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(len(m.Rows)-1, 0)
		}
	case tea.WindowSizeMsg:
		// Leave room for the title, the table borders and the detail list.
		m.Height = max(msg.Height-14, 3)
	}

	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m, nil
}

func (m PreviewModel) View() string {
	var b strings.Builder

	title := m.Layout.PIName
	if title == "" {
		title = "Board"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s · %d tasks · %d rows", m.Layout.Mode, len(m.Layout.Tasks), m.Layout.Rows)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(StyleDim.Render("  no tasks"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	var rows [][]string
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, fmt.Sprintf("%d", i), m.timeline(m.Rows[i]), fmt.Sprintf("%d", len(m.Rows[i]))})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Row", m.sprintHeader(), "Tasks").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor && col != 2 {
				return previewSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(m.details(m.Rows[m.Cursor]))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

// columns returns the layout's column count.
func (m PreviewModel) columns() int {
	return m.Layout.Geometry.WithDefaults().Columns
}

// sprintHeader labels the timeline with sprint IDs centred over their
// columns, falling back to column numbers.
func (m PreviewModel) sprintHeader() string {
	cols := m.columns()
	sprints := m.Layout.Sprints
	if len(sprints) == 0 || cols%len(sprints) != 0 {
		var b strings.Builder
		for c := range cols {
			b.WriteString(fmt.Sprintf("%-*d", cellWidth, c))
		}
		return b.String()
	}
	w := cols / len(sprints) * cellWidth
	var b strings.Builder
	for _, s := range sprints {
		label := s.ID
		if len(label) > w {
			label = label[:w]
		}
		b.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Center, label))
	}
	return b.String()
}

// timeline draws the tasks of a row as coloured bars.
func (m PreviewModel) timeline(tasks []board.PlacedTask) string {
	cols := m.columns()
	owner := make([]int, cols*cellWidth)
	for i := range owner {
		owner[i] = -1
	}
	for ti, t := range tasks {
		for x := max(t.Start(), 0) * cellWidth; x < min(t.End(), cols)*cellWidth; x++ {
			owner[x] = ti
		}
	}

	var b strings.Builder
	for x, ti := range owner {
		if ti < 0 {
			b.WriteString(previewGapStyle.Render("·"))
			continue
		}
		ch := "█"
		// Mark where adjacent tasks meet.
		if x > 0 && owner[x-1] >= 0 && owner[x-1] != ti {
			ch = "▌"
		}
		b.WriteString(projectStyle(tasks[ti].ProjectID).Render(ch))
	}
	return b.String()
}

// details lists the tasks of a row.
func (m PreviewModel) details(tasks []board.PlacedTask) string {
	var b strings.Builder
	for _, t := range tasks {
		key := t.JiraKey
		if key == "" {
			key = t.ID
		}
		line := fmt.Sprintf("  %s %s %s", projectStyle(t.ProjectID).Render("■"), StyleValue.Render(key), board.CleanTitle(t.Title))
		if st, ok := render.Status(t.JiraStatus); ok {
			line += " " + StyleDim.Render("["+st.Label+"]")
		}
		line += " " + StyleDim.Render(fmt.Sprintf("cols %d–%d", t.Start(), t.End()))
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
