package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/impred"
	"github.com/matzehuels/impred/pkg/io"
)

const (
	watchTick         = 33 * time.Millisecond
	watchHistory      = 48
	watchMinCanvasW   = 40
	watchMinCanvasH   = 10
	watchDefaultSpeed = 1
)

var (
	watchNodeStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	watchEdgeStyle = lipgloss.NewStyle().Foreground(colorDim)
)

type watchFlags struct {
	configPath string
	iterations int
	output     string
}

// watchCommand creates the watch command, an animated terminal view of a
// running layout.
func (c *CLI) watchCommand() *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch [graph.json]",
		Short: "Animate a layout in the terminal",
		Long: `Animate a layout in the terminal, one iteration per frame.

Keys: space pause, +/- speed, q quit. With --output the drawing is saved
when the view closes, whether or not the run finished.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "TOML engine configuration (default: built-in preset)")
	cmd.Flags().IntVarP(&flags.iterations, "iterations", "n", 0, "iterations to run (default: from config)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "save the final drawing as JSON")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, flags watchFlags) error {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	doc, err := io.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	opts, err := cfg.Build(doc.Graph, c.Logger)
	if err != nil {
		return err
	}
	engine, err := impred.New(doc.Graph, opts)
	if err != nil {
		return err
	}
	defer engine.Close()

	total := flags.iterations
	if total <= 0 {
		total = cfg.Iterations
	}
	engine.Plan(total)

	final, err := tea.NewProgram(newWatchModel(input, engine, total),
		tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	m := final.(watchModel)
	if m.err != nil {
		return m.err
	}

	if flags.output != "" {
		if err := io.ExportJSON(doc, flags.output); err != nil {
			return err
		}
		printSuccess("Saved after %d/%d iterations", engine.Iteration(), total)
		printFile(flags.output)
	}
	return nil
}

// =============================================================================
// watchModel - bubbletea model stepping the engine
// =============================================================================

type watchTickMsg time.Time

func watchTickCmd() tea.Cmd {
	return tea.Tick(watchTick, func(t time.Time) tea.Msg { return watchTickMsg(t) })
}

type watchModel struct {
	name   string
	engine *impred.Engine
	total  int

	paused  bool
	speed   int
	history []float64
	err     error

	width  int
	height int
}

func newWatchModel(name string, e *impred.Engine, total int) watchModel {
	return watchModel{
		name:   name,
		engine: e,
		total:  total,
		speed:  watchDefaultSpeed,
		width:  80,
		height: 24,
	}
}

func (m watchModel) finished() bool { return m.engine.Iteration() >= m.total }

func (m watchModel) Init() tea.Cmd { return watchTickCmd() }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "+", "=":
			m.speed = min(m.speed*2, 64)
		case "-":
			m.speed = max(m.speed/2, 1)
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case watchTickMsg:
		if m.paused || m.finished() {
			return m, watchTickCmd()
		}
		for range m.speed {
			if m.finished() {
				break
			}
			if err := m.engine.Step(); err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.history = append(m.history, m.engine.Temperature())
		}
		if len(m.history) > watchHistory {
			m.history = m.history[len(m.history)-watchHistory:]
		}
		return m, watchTickCmd()
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	status := StyleSuccess.Render("● running")
	switch {
	case m.finished():
		status = StyleNumber.Render("✓ done")
	case m.paused:
		status = StyleWarning.Render("○ paused")
	}
	fmt.Fprintf(&b, "\n  %s  %s  %s\n", StyleTitle.Render(m.name), status, StyleDim.Render(fmt.Sprintf("×%d", m.speed)))

	done := m.engine.Iteration()
	barWidth := 36
	filled := barWidth * done / max(m.total, 1)
	bar := StyleNumber.Render(strings.Repeat("━", filled)) + StyleDim.Render(strings.Repeat("─", barWidth-filled))
	fmt.Fprintf(&b, "  %s %s  %s %s\n\n", bar,
		StyleDim.Render(fmt.Sprintf("%d/%d", done, m.total)),
		StyleDim.Render("T"), StyleValue.Render(fmt.Sprintf("%.3f", m.engine.Temperature())))

	cw := max(m.width-4, watchMinCanvasW)
	ch := max(m.height-9, watchMinCanvasH)
	for _, row := range m.canvas(cw, ch) {
		b.WriteString("  " + row + "\n")
	}

	if len(m.history) > 1 {
		fmt.Fprintf(&b, "\n  %s %s\n", StyleDim.Render("T"), StyleNumber.Render(sparkline(m.history, watchHistory)))
	}
	b.WriteString("\n" + StyleDim.Render("  space pause  +/- speed  q quit") + "\n")
	return b.String()
}

// canvas rasterizes the engine's mirror graph: segments first, then bends
// and nodes on top.
func (m watchModel) canvas(w, h int) []string {
	cells := make([][]rune, h)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", w))
	}

	c := m.engine.Context()
	g := c.Graph
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return renderCells(cells)
	}

	pts := make([]geom.Vec, len(nodes))
	for i, n := range nodes {
		pts[i] = c.Positions.Get(n)
	}
	box := geom.BoxOf(pts...)
	bw, bh := geom.Extent(box)
	project := func(p geom.Vec) (int, int) {
		x, y := 0.5, 0.5
		if bw > geom.Epsilon {
			x = (p.X - box.Min.X) / bw
		}
		if bh > geom.Epsilon {
			y = (p.Y - box.Min.Y) / bh
		}
		return int(math.Round(x * float64(w-1))), int(math.Round(y * float64(h-1)))
	}

	for _, e := range g.Edges() {
		s, t, ok := g.Ends(e)
		if !ok {
			continue
		}
		x1, y1 := project(c.Positions.Get(s))
		x2, y2 := project(c.Positions.Get(t))
		drawLine(cells, x1, y1, x2, y2, '·')
	}
	for _, n := range nodes {
		x, y := project(c.Positions.Get(n))
		if c.Sync.IsBend(n) {
			setCell(cells, x, y, '+')
		} else {
			setCell(cells, x, y, '●')
		}
	}
	return renderCells(cells)
}

func renderCells(cells [][]rune) []string {
	rows := make([]string, len(cells))
	for i, row := range cells {
		var b strings.Builder
		for _, r := range row {
			switch r {
			case '●', '+':
				b.WriteString(watchNodeStyle.Render(string(r)))
			case '·':
				b.WriteString(watchEdgeStyle.Render(string(r)))
			default:
				b.WriteRune(r)
			}
		}
		rows[i] = b.String()
	}
	return rows
}

func setCell(cells [][]rune, x, y int, r rune) {
	if y >= 0 && y < len(cells) && x >= 0 && x < len(cells[y]) {
		cells[y][x] = r
	}
}

// drawLine plots a Bresenham line.
func drawLine(cells [][]rune, x1, y1, x2, y2 int, r rune) {
	dx, dy := absInt(x2-x1), absInt(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		setCell(cells, x1, y1, r)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// sparkline renders the last width values as block characters scaled to
// their range.
func sparkline(data []float64, width int) string {
	if len(data) > width {
		data = data[len(data)-width:]
	}
	if len(data) == 0 {
		return ""
	}
	blocks := []rune("▁▂▃▄▅▆▇█")
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	var b strings.Builder
	for _, v := range data {
		idx := int((v - lo) / span * float64(len(blocks)-1))
		b.WriteRune(blocks[min(max(idx, 0), len(blocks)-1)])
	}
	return b.String()
}
