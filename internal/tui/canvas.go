package tui

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/deskgrid/internal/block"
	"github.com/1broseidon/deskgrid/internal/desk"
	"github.com/1broseidon/deskgrid/internal/grid"
)

// cellStyle selects the lipgloss style of one canvas cell.
type cellStyle uint8

const (
	styleBlank cellStyle = iota
	styleBorder
	styleHover
	styleSelected
	styleDragging
	styleOverlay
	styleTitle
	styleText
	styleLasso
)

var cellStyles = map[cellStyle]lipgloss.Style{
	styleBlank:    lipgloss.NewStyle(),
	styleBorder:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	styleHover:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	styleSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true),
	styleDragging: lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
	styleOverlay:  lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
	styleTitle:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
	styleText:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	styleLasso:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
}

type boxRunes struct {
	tl, tr, bl, br, h, v rune
}

var (
	roundedBox = boxRunes{'╭', '╮', '╰', '╯', '─', '│'}
	doubleBox  = boxRunes{'╔', '╗', '╚', '╝', '═', '║'}
	lassoBox   = boxRunes{'┌', '┐', '└', '┘', '┄', '┆'}
)

type cell struct {
	r     rune
	style cellStyle
}

// canvas is a desk.Painter over a grid of terminal cells, one cell per pixel.
type canvas struct {
	width  int
	height int
	cells  []cell
	now    time.Time
}

func newCanvas(width, height int, now time.Time) *canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c := &canvas{width: width, height: height, now: now, cells: make([]cell, width*height)}
	for i := range c.cells {
		c.cells[i] = cell{r: ' '}
	}
	return c
}

func (c *canvas) set(x, y int, r rune, st cellStyle) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y*c.width+x] = cell{r: r, style: st}
}

// cellBounds converts a pixel rect to inclusive cell coordinates.
func cellBounds(r grid.Rect) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(r.X))
	y0 = int(math.Floor(r.Y))
	x1 = int(math.Ceil(r.Right())) - 1
	y1 = int(math.Ceil(r.Bottom())) - 1
	return x0, y0, x1, y1
}

// borderStyle picks the decoration; the overlay wins over dragging, which wins
// over selection, which wins over hover.
func borderStyle(st desk.PaintState) cellStyle {
	switch {
	case st.Overlay:
		return styleOverlay
	case st.Dragging:
		return styleDragging
	case st.Selected:
		return styleSelected
	case st.Hovering:
		return styleHover
	}
	return styleBorder
}

// PaintBlock implements desk.Painter.
func (c *canvas) PaintBlock(b block.Block, r grid.Rect, st desk.PaintState) {
	x0, y0, x1, y1 := cellBounds(r)
	if x1 <= x0 || y1 <= y0 {
		return
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.set(x, y, ' ', styleBlank)
		}
	}

	box := roundedBox
	if st.Overlay {
		box = doubleBox
	}
	c.box(x0, y0, x1, y1, box, borderStyle(st))

	title := b.Title
	if title == "" {
		title = b.Type.String()
	}
	c.text(x0+2, y0, x1-1, " "+title+" ", styleTitle)

	if st.Dragging && !st.Overlay {
		// the proxy carries the content while the block is in flight
		return
	}
	for i, line := range blockContent(b, c.now) {
		y := y0 + 1 + i
		if y >= y1 {
			break
		}
		c.text(x0+1, y, x1-1, line, styleText)
	}
}

// PaintLasso implements desk.Painter.
func (c *canvas) PaintLasso(r grid.Rect) {
	x0, y0, x1, y1 := cellBounds(r)
	if x1 < x0 || y1 < y0 {
		return
	}
	c.box(x0, y0, x1, y1, lassoBox, styleLasso)
}

func (c *canvas) box(x0, y0, x1, y1 int, b boxRunes, st cellStyle) {
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, b.h, st)
		c.set(x, y1, b.h, st)
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, b.v, st)
		c.set(x1, y, b.v, st)
	}
	c.set(x0, y0, b.tl, st)
	c.set(x1, y0, b.tr, st)
	c.set(x0, y1, b.bl, st)
	c.set(x1, y1, b.br, st)
}

// text writes s from x up to and including maxX, truncating.
func (c *canvas) text(x, y, maxX int, s string, st cellStyle) {
	for _, r := range s {
		if x > maxX {
			return
		}
		c.set(x, y, r, st)
		x++
	}
}

// plain returns the canvas runes without styling.
func (c *canvas) plain() string {
	var sb strings.Builder
	for y := 0; y < c.height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < c.width; x++ {
			sb.WriteRune(c.cells[y*c.width+x].r)
		}
	}
	return sb.String()
}

// Render styles runs of equal cells and joins the rows.
func (c *canvas) Render() string {
	rows := make([]string, c.height)
	for y := 0; y < c.height; y++ {
		var sb strings.Builder
		var run []rune
		cur := styleBlank
		flush := func() {
			if len(run) == 0 {
				return
			}
			sb.WriteString(cellStyles[cur].Render(string(run)))
			run = run[:0]
		}
		for x := 0; x < c.width; x++ {
			cl := c.cells[y*c.width+x]
			if cl.style != cur {
				flush()
				cur = cl.style
			}
			run = append(run, cl.r)
		}
		flush()
		rows[y] = sb.String()
	}
	return strings.Join(rows, "\n")
}
