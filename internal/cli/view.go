package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/skein/pkg/graph"
	"github.com/matzehuels/skein/pkg/publish"
)

// Rows reserved around the canvas: title plus a blank line above, a blank
// line plus the key bar below.
const (
	headerRows = 2
	footerRows = 2
)

// Node glyphs. Groups render larger than members, matching the web view.
const (
	glyphGroup  = '◉'
	glyphMember = '●'
	glyphEdge   = '·'
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Canvas styles
var (
	styleEdgeCell   = lipgloss.NewStyle().Foreground(colorDim)
	styleGroupCell  = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	styleMemberCell = lipgloss.NewStyle().Foreground(colorGreen)
	stylePinnedCell = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	styleLabelCell  = lipgloss.NewStyle().Foreground(colorGray)
)

// updateMsg carries a publisher update into the bubbletea loop.
type updateMsg publish.Update

// =============================================================================
// GraphView - Live Terminal Model
// =============================================================================

// graphView is the bubbletea model for the live terminal view. It draws the
// publisher's latest update onto a cell grid and translates mouse gestures
// back into store mutations.
type graphView struct {
	ctx     context.Context
	sys     *system
	updates <-chan publish.Update

	update publish.Update // latest drawing model

	layoutW float64 // layout frame width in layout units
	layoutH float64

	width  int // terminal columns
	height int // terminal rows

	dragging  graph.NodeID
	adding    bool
	input     string
	status    string
	statusErr bool // styles the status as a warning instead of a success
	frame     int  // spinner frame index
}

// newGraphView builds the model and subscribes it to the publisher. The
// returned cleanup releases the subscription once the program exits.
func newGraphView(ctx context.Context, sys *system) (graphView, func()) {
	updates, unsubscribe := sys.pub.Subscribe()
	cfg := sys.engine.Config()
	m := graphView{
		ctx:     ctx,
		sys:     sys,
		updates: updates,
		update:  sys.pub.Current(),
		layoutW: cfg.Width,
		layoutH: cfg.Height,
	}
	return m, unsubscribe
}

// waitForUpdate relays the next publisher update into the message loop.
func waitForUpdate(updates <-chan publish.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		return updateMsg(u)
	}
}

func (m graphView) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func (m graphView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.update = publish.Update(msg)
		if m.update.Processing {
			m.frame++
		}
		return m, waitForUpdate(m.updates)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.adding {
			return m.handleAddKey(msg), nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "a":
			m.adding = true
			m.input = ""
			m.status = ""
		case "u":
			n := m.sys.store.UnpinAll()
			m.status = fmt.Sprintf("unpinned %d nodes", n)
			m.statusErr = false
			m.sys.runner.Kick()
		case "r":
			m.sys.runner.Kick()
			m.status = "layout kicked"
			m.statusErr = false
		}

	case tea.MouseMsg:
		if !m.adding {
			return m.handleMouse(msg), nil
		}
	}

	return m, nil
}

// handleAddKey edits the add-group prompt. The prompt format is
// "Label: member, member, ...".
func (m graphView) handleAddKey(msg tea.KeyMsg) graphView {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.input = ""
	case tea.KeyEnter:
		label, members, ok := strings.Cut(m.input, ":")
		if !ok {
			m.status = `format: "Label: member, member"`
			m.statusErr = true
			return m
		}
		if _, err := m.sys.driver.AddGroup(m.ctx, label, members); err != nil {
			m.status = err.Error()
			m.statusErr = true
		} else {
			m.status = fmt.Sprintf("added %q", strings.TrimSpace(label))
			m.statusErr = false
		}
		m.adding = false
		m.input = ""
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m
}

// handleMouse maps press/motion/release onto drag-to-pin. A press near a
// node starts the drag; every motion re-pins at the cursor; release ends
// the gesture, leaving the node pinned where it was dropped.
func (m graphView) handleMouse(msg tea.MouseMsg) graphView {
	gw, gh := m.canvasSize()
	if gw < 2 || gh < 2 {
		return m
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		pt := m.fromCell(msg.X, msg.Y-headerRows, gw, gh)
		id, label, ok := m.nodeNear(pt, gw, gh)
		if !ok {
			return m
		}
		m.dragging = id
		if err := m.sys.store.SetPosition(id, pt, true); err == nil {
			m.status = fmt.Sprintf("pinned %s", label)
			m.statusErr = false
		}

	case tea.MouseActionMotion:
		if m.dragging == "" {
			return m
		}
		pt := m.fromCell(msg.X, msg.Y-headerRows, gw, gh)
		_ = m.sys.store.SetPosition(m.dragging, pt, true)

	case tea.MouseActionRelease:
		m.dragging = ""
	}
	return m
}

// =============================================================================
// Projection
// =============================================================================

// canvasSize returns the cell grid dimensions for the current terminal.
func (m graphView) canvasSize() (gw, gh int) {
	return m.width, m.height - headerRows - footerRows
}

// toCell projects a layout point onto the cell grid.
func (m graphView) toCell(pt graph.Point, gw, gh int) (int, int) {
	x := int(math.Round(pt.X / m.layoutW * float64(gw-1)))
	y := int(math.Round(pt.Y / m.layoutH * float64(gh-1)))
	return clampInt(x, 0, gw-1), clampInt(y, 0, gh-1)
}

// fromCell maps a cell back into layout coordinates.
func (m graphView) fromCell(cx, cy, gw, gh int) graph.Point {
	return graph.Point{
		X: float64(clampInt(cx, 0, gw-1)) / float64(gw-1) * m.layoutW,
		Y: float64(clampInt(cy, 0, gh-1)) / float64(gh-1) * m.layoutH,
	}
}

// nodeNear finds the node closest to pt within roughly one and a half cells,
// the slack a finger-sized terminal click needs.
func (m graphView) nodeNear(pt graph.Point, gw, gh int) (graph.NodeID, string, bool) {
	tx := m.layoutW / float64(gw-1) * 1.5
	ty := m.layoutH / float64(gh-1) * 1.5

	var (
		bestID    graph.NodeID
		bestLabel string
		bestDist  = math.MaxFloat64
		found     bool
	)
	for _, n := range m.update.Nodes {
		dx := math.Abs(n.Pos.X - pt.X)
		dy := math.Abs(n.Pos.Y - pt.Y)
		if dx > tx || dy > ty {
			continue
		}
		if d := dx*dx + dy*dy; d < bestDist {
			bestID, bestLabel, bestDist, found = n.ID, n.Label, d, true
		}
	}
	return bestID, bestLabel, found
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// =============================================================================
// Rendering
// =============================================================================

const (
	cellEmpty = iota
	cellEdge
	cellGroup
	cellMember
	cellPinned
	cellLabel
)

type viewCell struct {
	ch   rune
	kind int
}

func (m graphView) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	gw, gh := m.canvasSize()
	if gw < 20 || gh < 4 {
		return "terminal too small"
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, m.headerView(), "")
	lines = append(lines, m.canvasView(gw, gh)...)
	lines = append(lines, "", m.footerView())
	return strings.Join(lines, "\n")
}

func (m graphView) headerView() string {
	pinned := 0
	for _, n := range m.update.Nodes {
		if n.Pinned {
			pinned++
		}
	}

	h := " " + StyleTitle.Render(appName)
	h += StyleDim.Render(fmt.Sprintf("  %d nodes · %d edges", len(m.update.Nodes), len(m.update.Edges)))
	if pinned > 0 {
		h += StyleDim.Render(fmt.Sprintf(" · %d pinned", pinned))
	}
	if m.update.Processing {
		frame := spinnerFrames[m.frame%len(spinnerFrames)]
		h += "  " + styleIconSpinner.Render(frame) + StyleDim.Render(" laying out")
	}
	return h
}

func (m graphView) footerView() string {
	if m.adding {
		return " " + StyleTitle.Render("add group ▸ ") + StyleValue.Render(m.input) +
			StyleValue.Render("█") + StyleDim.Render("   Label: member, member · enter confirm · esc cancel")
	}

	f := " " + StyleDim.Render("a add · u unpin all · r relayout · q quit · drag to pin")
	if m.status != "" {
		style := StyleSuccess
		if m.statusErr {
			style = StyleWarning
		}
		f += StyleDim.Render(" · ") + style.Render(m.status)
	}
	return f
}

// canvasView rasterizes the current update onto a gw x gh cell grid:
// edges first, then nodes, then labels into whatever space is left.
func (m graphView) canvasView(gw, gh int) []string {
	grid := make([][]viewCell, gh)
	for y := range grid {
		grid[y] = make([]viewCell, gw)
	}

	index := make(map[graph.NodeID]graph.Point, len(m.update.Nodes))
	for _, n := range m.update.Nodes {
		index[n.ID] = n.Pos
	}

	for _, e := range m.update.Edges {
		from, okF := index[e.From]
		to, okT := index[e.To]
		if !okF || !okT {
			continue
		}
		x0, y0 := m.toCell(from, gw, gh)
		x1, y1 := m.toCell(to, gw, gh)
		drawLine(grid, x0, y0, x1, y1)
	}

	for _, n := range m.update.Nodes {
		x, y := m.toCell(n.Pos, gw, gh)
		glyph, kind := glyphMember, cellMember
		if n.Category == graph.CategoryGroup {
			glyph, kind = glyphGroup, cellGroup
		}
		if n.Pinned {
			kind = cellPinned
		}
		grid[y][x] = viewCell{glyph, kind}
	}

	for _, n := range m.update.Nodes {
		x, y := m.toCell(n.Pos, gw, gh)
		drawLabel(grid, x+2, y, n.Label)
	}

	rows := make([]string, gh)
	for y := range grid {
		rows[y] = renderRow(grid[y])
	}
	return rows
}

// drawLine rasterizes a segment with Bresenham's algorithm, dotting only
// cells that nothing else has claimed.
func drawLine(grid [][]viewCell, x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if y0 >= 0 && y0 < len(grid) && x0 >= 0 && x0 < len(grid[y0]) && grid[y0][x0].kind == cellEmpty {
			grid[y0][x0] = viewCell{glyphEdge, cellEdge}
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawLabel writes text rightward from (x, y), stopping at the grid edge or
// at the first node glyph so labels never cover nodes.
func drawLabel(grid [][]viewCell, x, y int, text string) {
	if y < 0 || y >= len(grid) {
		return
	}
	for _, r := range text {
		if x < 0 || x >= len(grid[y]) {
			return
		}
		switch grid[y][x].kind {
		case cellGroup, cellMember, cellPinned:
			return
		}
		grid[y][x] = viewCell{r, cellLabel}
		x++
	}
}

// renderRow joins a grid row into a styled string, batching runs of the
// same style to keep escape sequences down.
func renderRow(row []viewCell) string {
	var b strings.Builder
	for i := 0; i < len(row); {
		j := i
		for j < len(row) && row[j].kind == row[i].kind {
			j++
		}

		var seg strings.Builder
		for _, c := range row[i:j] {
			if c.ch == 0 {
				seg.WriteByte(' ')
			} else {
				seg.WriteRune(c.ch)
			}
		}

		switch row[i].kind {
		case cellEmpty:
			b.WriteString(seg.String())
		case cellEdge:
			b.WriteString(styleEdgeCell.Render(seg.String()))
		case cellGroup:
			b.WriteString(styleGroupCell.Render(seg.String()))
		case cellMember:
			b.WriteString(styleMemberCell.Render(seg.String()))
		case cellPinned:
			b.WriteString(stylePinnedCell.Render(seg.String()))
		case cellLabel:
			b.WriteString(styleLabelCell.Render(seg.String()))
		}
		i = j
	}
	return b.String()
}
