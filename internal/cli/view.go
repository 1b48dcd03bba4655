package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/engine"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/interaction"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/pipeline"
)

// A terminal cell stands for cellWidth×cellHeight container pixels.
const (
	cellWidth  = 8.0
	cellHeight = 16.0

	// headerRows and footerRows frame the canvas.
	headerRows = 1
	footerRows = 1

	// wheelStep is the wheel delta of one scroll notch.
	wheelStep = 100.0

	doubleClickWindow = 400 * time.Millisecond
)

var (
	viewHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	viewHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// viewModel - Interactive flow viewer
// =============================================================================

// viewModel is the bubbletea model of the interactive viewer. Mouse input is
// translated to container pixels and fed to the engine's interaction machine.
type viewModel struct {
	inst *engine.Instance
	path string

	cols, rows int
	sized      bool
	status     string

	lastClick     time.Time
	lastClickCell [2]int
	now           func() time.Time
}

func newViewModel(inst *engine.Instance, path string) viewModel {
	return viewModel{inst: inst, path: path, cols: 80, rows: 24, now: time.Now}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.inst.Measure(engine.Measurement{Container: m.container()})
		if !m.sized {
			m.inst.FitView()
			m.sized = true
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m viewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	machine := m.inst.Machine()
	m.status = ""
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "+", "=":
		m.inst.ZoomIn()
	case "-", "_":
		m.inst.ZoomOut()
	case "f":
		m.inst.FitView()
	case "esc":
		machine.KeyDown(interaction.KeyEvent{Key: interaction.KeyEscape})
	case "delete", "backspace":
		machine.KeyDown(interaction.KeyEvent{Key: interaction.KeyDelete})
	case "up", "down", "left", "right", "shift+up", "shift+down", "shift+left", "shift+right":
		shift := strings.HasPrefix(key, "shift+")
		machine.KeyDown(interaction.KeyEvent{
			Key:       arrowKeys[strings.TrimPrefix(key, "shift+")],
			Modifiers: interaction.Modifiers{Shift: shift},
		})
	case "s":
		if err := graph.WriteFile(m.inst.ToObject(), m.path); err != nil {
			m.status = "save failed: " + err.Error()
		} else {
			m.status = "saved " + m.path
		}
	}
	return m, nil
}

var arrowKeys = map[string]string{
	"up":    interaction.KeyArrowUp,
	"down":  interaction.KeyArrowDown,
	"left":  interaction.KeyArrowLeft,
	"right": interaction.KeyArrowRight,
}

func (m *viewModel) handleMouse(msg tea.MouseMsg) {
	x, y := cellToPixel(msg.X, msg.Y)
	mods := interaction.Modifiers{Shift: msg.Shift, Ctrl: msg.Ctrl, Alt: msg.Alt}
	machine := m.inst.Machine()

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			machine.Wheel(interaction.WheelEvent{X: x, Y: y, DeltaY: -wheelStep, Modifiers: mods})
		case tea.MouseButtonWheelDown:
			machine.Wheel(interaction.WheelEvent{X: x, Y: y, DeltaY: wheelStep, Modifiers: mods})
		case tea.MouseButtonLeft, tea.MouseButtonMiddle, tea.MouseButtonRight:
			ev := interaction.PointerEvent{X: x, Y: y, Button: mouseButton(msg.Button), Modifiers: mods}
			if m.isDoubleClick(msg) {
				machine.DoubleClick(ev)
				return
			}
			machine.PointerDown(ev)
		}
	case tea.MouseActionMotion:
		machine.PointerMove(interaction.PointerEvent{X: x, Y: y, Modifiers: mods})
	case tea.MouseActionRelease:
		machine.PointerUp(interaction.PointerEvent{X: x, Y: y, Modifiers: mods})
	}
}

// isDoubleClick reports whether a primary press lands on the cell of the
// previous one within the double-click window.
func (m *viewModel) isDoubleClick(msg tea.MouseMsg) bool {
	if msg.Button != tea.MouseButtonLeft {
		return false
	}
	now := m.now()
	cell := [2]int{msg.X, msg.Y}
	double := cell == m.lastClickCell && now.Sub(m.lastClick) <= doubleClickWindow
	if double {
		m.lastClick = time.Time{}
	} else {
		m.lastClick, m.lastClickCell = now, cell
	}
	return double
}

func mouseButton(b tea.MouseButton) interaction.Button {
	switch b {
	case tea.MouseButtonMiddle:
		return interaction.ButtonMiddle
	case tea.MouseButtonRight:
		return interaction.ButtonSecondary
	}
	return interaction.ButtonPrimary
}

// cellToPixel returns the container point at the center of a terminal cell.
func cellToPixel(col, row int) (float64, float64) {
	return float64(col)*cellWidth + cellWidth/2, float64(row-headerRows)*cellHeight + cellHeight/2
}

// pixelToCell returns the canvas cell containing a container point.
func pixelToCell(x, y float64) (int, int) {
	return int(math.Floor(x / cellWidth)), int(math.Floor(y / cellHeight))
}

func (m viewModel) canvasRows() int {
	return max(m.rows-headerRows-footerRows, 1)
}

func (m viewModel) container() geometry.Dimensions {
	return geometry.Dimensions{Width: float64(m.cols) * cellWidth, Height: float64(m.canvasRows()) * cellHeight}
}

// =============================================================================
// Drawing
// =============================================================================

func (m viewModel) View() string {
	var b strings.Builder

	vp := m.inst.Viewport()
	header := fmt.Sprintf("%s  zoom %.2f  %d nodes  %d edges  %s",
		appName, vp.Zoom, len(m.inst.Nodes()), len(m.inst.Edges()), m.inst.Machine().State())
	if sel := len(m.inst.SelectedNodes()); sel > 0 {
		header += fmt.Sprintf("  %d selected", sel)
	}
	b.WriteString(viewHeaderStyle.Render(header))
	b.WriteString("\n")

	b.WriteString(m.drawCanvas())

	if m.status != "" {
		b.WriteString(viewStatusStyle.Render(m.status))
	} else {
		b.WriteString(viewHelpStyle.Render("drag: move/pan  shift+drag: select  wheel: zoom  +/-  f fit  arrows nudge  del delete  esc cancel  s save  q quit"))
	}
	return b.String()
}

// canvas is a grid of runes addressed by canvas cell.
type canvas struct {
	cols, rows int
	cells      [][]rune
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows, cells: make([][]rune, rows)}
	for i := range c.cells {
		c.cells[i] = []rune(strings.Repeat(" ", cols))
	}
	return c
}

func (c *canvas) set(col, row int, r rune) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row][col] = r
}

func (c *canvas) text(col, row int, s string, maxWidth int) {
	for i, r := range []rune(s) {
		if i >= maxWidth {
			break
		}
		c.set(col+i, row, r)
	}
}

// line draws a straight segment between two cells.
func (c *canvas) line(c0, r0, c1, r1 int, r rune) {
	steps := max(abs(c1-c0), abs(r1-r0))
	if steps == 0 {
		c.set(c0, r0, r)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		col := int(math.Round(float64(c0) + t*float64(c1-c0)))
		row := int(math.Round(float64(r0) + t*float64(r1-r0)))
		c.set(col, row, r)
	}
}

// box draws a rectangle outline between two corner cells.
func (c *canvas) box(c0, r0, c1, r1 int, glyphs [6]rune) {
	for col := c0 + 1; col < c1; col++ {
		c.set(col, r0, glyphs[0])
		c.set(col, r1, glyphs[0])
	}
	for row := r0 + 1; row < r1; row++ {
		c.set(c0, row, glyphs[1])
		c.set(c1, row, glyphs[1])
	}
	c.set(c0, r0, glyphs[2])
	c.set(c1, r0, glyphs[3])
	c.set(c0, r1, glyphs[4])
	c.set(c1, r1, glyphs[5])
}

func (c *canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	return b.String()
}

var (
	glyphsNode     = [6]rune{'─', '│', '┌', '┐', '└', '┘'}
	glyphsSelected = [6]rune{'═', '║', '╔', '╗', '╚', '╝'}
	glyphsBox      = [6]rune{'┄', '┆', '+', '+', '+', '+'}
)

func (m viewModel) drawCanvas() string {
	cv := newCanvas(m.cols, m.canvasRows())
	scene := m.inst.Scene(engine.SceneOptions{})

	screenCell := func(p geometry.XY) (int, int) {
		s := m.inst.FlowToScreenPosition(p)
		return pixelToCell(s.X, s.Y)
	}

	rects := make(map[string]geometry.Rect, len(scene.Nodes))
	for _, n := range scene.Nodes {
		rects[n.ID] = n.Rect
	}
	for _, e := range scene.Edges {
		src, ok1 := rects[e.Source]
		dst, ok2 := rects[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		glyph := '·'
		if e.Selected {
			glyph = '•'
		}
		c0, r0 := screenCell(src.Center())
		c1, r1 := screenCell(dst.Center())
		cv.line(c0, r0, c1, r1, glyph)
	}

	for _, n := range scene.Nodes {
		c0, r0 := screenCell(geometry.XY{X: n.Rect.X, Y: n.Rect.Y})
		c1, r1 := screenCell(geometry.XY{X: n.Rect.X + n.Rect.Width, Y: n.Rect.Y + n.Rect.Height})
		c1, r1 = max(c1, c0+1), max(r1, r0+1)
		for row := r0 + 1; row < r1; row++ {
			for col := c0 + 1; col < c1; col++ {
				cv.set(col, row, ' ')
			}
		}
		glyphs := glyphsNode
		if n.Selected {
			glyphs = glyphsSelected
		}
		cv.box(c0, r0, c1, r1, glyphs)
		if inner := c1 - c0 - 1; inner > 0 && r1-r0 > 1 {
			label := []rune(n.Label)
			col := c0 + 1 + max((inner-len(label))/2, 0)
			cv.text(col, (r0+r1)/2, n.Label, inner)
		}
	}

	if box, ok := m.inst.SelectionBox(); ok {
		c0, r0 := pixelToCell(box.X, box.Y)
		c1, r1 := pixelToCell(box.X+box.Width, box.Y+box.Height)
		cv.box(c0, r0, c1, r1, glyphsBox)
	}
	if conn, ok := m.inst.ConnectionState(); ok {
		c0, r0 := screenCell(conn.From.XY())
		c1, r1 := screenCell(conn.Pointer)
		cv.line(c0, r0, c1, r1, '*')
	}
	return cv.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// =============================================================================
// Command
// =============================================================================

// viewCommand creates the interactive viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "view [flow.json]",
		Short: "Explore and edit a flow in the terminal",
		Long: `Open a flow document in an interactive terminal viewer.

Drag nodes to move them, drag the pane to pan, shift-drag to box-select, drag
from a node edge handle to connect, and scroll to zoom. Press s to save the
flow (to --output, or back to the input file).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = args[0]
			}
			return c.runView(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file written by s (default: the input file)")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input, output string) error {
	doc, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}

	eo := c.engineOptions()
	eo.FitViewOnInit = false
	inst := newViewInstance(doc, eo)

	p := tea.NewProgram(newViewModel(inst, output),
		tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

// newViewInstance loads doc with every node measured at its stored or
// default size.
func newViewInstance(doc graph.Document, eo engine.Options) *engine.Instance {
	inst := engine.New(eo)
	inst.FromObject(doc)
	inst.Measure(pipeline.HeadlessMeasurement(doc, eo, pipeline.DefaultWidth, pipeline.DefaultHeight))
	return inst
}
