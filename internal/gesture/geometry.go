package gesture

import (
	"math"

	"github.com/1broseidon/deskgrid/internal/block"
	"github.com/1broseidon/deskgrid/internal/grid"
)

// minimumCells is the hard floor applied to every resize, whatever the type table says.
const minimumCells = 2

// HitTest classifies a point against a block rect. Corners take precedence
// over edges; corner is the side of the square corner zone, edge the width of
// the band along each border. On blocks too small for two corner zones per
// side the corner shrinks so an edge band remains between them.
func HitTest(r grid.Rect, x, y, edge, corner float64) (Zone, ResizeMode) {
	if !r.Contains(x, y) {
		return ZoneNone, ResizeNone
	}
	if side := math.Min(r.Width, r.Height); 2*corner >= side {
		corner = math.Max(side/2-edge, edge)
	}

	left := x-r.X < corner
	right := r.Right()-x < corner
	top := y-r.Y < corner
	bottom := r.Bottom()-y < corner

	switch {
	case top && left:
		return ZoneCorner, ResizeNW
	case top && right:
		return ZoneCorner, ResizeNE
	case bottom && left:
		return ZoneCorner, ResizeSW
	case bottom && right:
		return ZoneCorner, ResizeSE
	}

	if x-r.X < edge || r.Right()-x < edge || y-r.Y < edge || r.Bottom()-y < edge {
		return ZoneEdge, ResizeNone
	}
	return ZoneInterior, ResizeNone
}

// applyResize adds one frame's pointer delta to the running rect. Size is
// clamped to the pixel bounds and position to >= 0; the opposite edge is not
// re-derived after a clamp.
func applyResize(r grid.Rect, mode ResizeMode, dx, dy float64, minW, minH, maxW, maxH float64) grid.Rect {
	switch mode {
	case ResizeSE:
		r.Width += dx
		r.Height += dy
	case ResizeSW:
		r.X += dx
		r.Width -= dx
		r.Height += dy
	case ResizeNE:
		r.Y += dy
		r.Width += dx
		r.Height -= dy
	case ResizeNW:
		r.X += dx
		r.Y += dy
		r.Width -= dx
		r.Height -= dy
	}

	r.Width = grid.ClampFloat(r.Width, minW, maxW)
	r.Height = grid.ClampFloat(r.Height, minH, maxH)
	r.X = math.Max(r.X, 0)
	r.Y = math.Max(r.Y, 0)
	return r
}

// finalizeResize quantizes the pixel rect and fits it to the type bounds, the
// 2x2 floor and the grid extent.
func finalizeResize(g grid.Grid, r grid.Rect, b block.Bounds) grid.Layout {
	l := g.Quantize(r)
	minW := max(b.MinW, minimumCells)
	minH := max(b.MinH, minimumCells)
	return g.Fit(l, minW, minH, b.MaxW, b.MaxH)
}

// placeAt builds the layout for a block whose top-left lands at the given
// desktop pixel position.
func placeAt(g grid.Grid, b block.Block, x, y float64) grid.Layout {
	return b.Fit(g, grid.Layout{
		X: g.ToGrid(x),
		Y: g.ToGrid(y),
		W: b.Layout.W,
		H: b.Layout.H,
	})
}
