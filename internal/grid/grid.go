package grid

import "math"

// Rect represents a block position and size in pixels
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Right returns the x coordinate of the right edge
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Empty reports whether the rect has zero area
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether the point lies inside the rect (edges inclusive)
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Intersects uses the open test: touching edges count as an intersection.
func (r Rect) Intersects(o Rect) bool {
	return !(r.Right() < o.X || r.X > o.Right() || r.Bottom() < o.Y || r.Y > o.Bottom())
}

// Translate returns the rect shifted by dx, dy
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// NormalizeRect builds a rect from two arbitrary corners
func NormalizeRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X:      math.Min(x0, x1),
		Y:      math.Min(y0, y1),
		Width:  math.Abs(x1 - x0),
		Height: math.Abs(y1 - y0),
	}
}

// Layout is a grid-aligned rectangle in cell units
type Layout struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
	W int `yaml:"w" json:"w"`
	H int `yaml:"h" json:"h"`
}

// Grid holds the cell size shared by all desktops and the extent of one desktop
type Grid struct {
	CellSize float64
	Cols     int
	Rows     int
}

// FromViewport derives the grid extent from a desktop's pixel size
func FromViewport(width, height, cellSize float64) Grid {
	g := Grid{CellSize: cellSize}
	if cellSize > 0 {
		g.Cols = int(math.Floor(width / cellSize))
		g.Rows = int(math.Floor(height / cellSize))
	}
	return g
}

// ToGrid converts a pixel offset to grid units
func (g Grid) ToGrid(px float64) int {
	return int(math.Round(px / g.CellSize))
}

// ToPixel converts grid units to a pixel offset
func (g Grid) ToPixel(units int) float64 {
	return float64(units) * g.CellSize
}

// LayoutRect returns the pixel rect covered by a layout
func (g Grid) LayoutRect(l Layout) Rect {
	return Rect{
		X:      g.ToPixel(l.X),
		Y:      g.ToPixel(l.Y),
		Width:  g.ToPixel(l.W),
		Height: g.ToPixel(l.H),
	}
}

// Quantize snaps a pixel rect to the grid: size is rounded, position goes through ToGrid.
func (g Grid) Quantize(r Rect) Layout {
	return Layout{
		X: g.ToGrid(r.X),
		Y: g.ToGrid(r.Y),
		W: int(math.Round(r.Width / g.CellSize)),
		H: int(math.Round(r.Height / g.CellSize)),
	}
}

// Fit clamps the layout size to [min, max] and then to the grid extent, and
// moves it so it lies inside the grid. A zero extent leaves that axis unbounded.
func (g Grid) Fit(l Layout, minW, minH, maxW, maxH int) Layout {
	l.W = clamp(l.W, minW, maxW)
	l.H = clamp(l.H, minH, maxH)

	if g.Cols > 0 && l.W > g.Cols {
		l.W = g.Cols
	}
	if g.Rows > 0 && l.H > g.Rows {
		l.H = g.Rows
	}

	if g.Cols > 0 && l.X+l.W > g.Cols {
		l.X = g.Cols - l.W
	}
	if g.Rows > 0 && l.Y+l.H > g.Rows {
		l.Y = g.Rows - l.H
	}
	if l.X < 0 {
		l.X = 0
	}
	if l.Y < 0 {
		l.Y = 0
	}
	return l
}

func clamp(v, lo, hi int) int {
	if hi > 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// ClampFloat bounds v to [lo, hi]
func ClampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
