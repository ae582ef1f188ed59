package block

import (
	"fmt"
	"strings"

	"github.com/1broseidon/deskgrid/internal/grid"
)

// Type identifies the kind of widget a block hosts. The set is closed; unknown
// tags parse to TypeDefault.
type Type uint8

const (
	TypeDefault Type = iota
	TypeClock
	TypeWeather
	TypeStock
	TypeFeed
	TypeNote
	TypeCalendar
	TypeBookmarks
	typeCount // sentinel for iteration
)

// Bounds are the size limits of a block type in grid cells.
type Bounds struct {
	MinW int `json:"min_w"`
	MinH int `json:"min_h"`
	MaxW int `json:"max_w"`
	MaxH int `json:"max_h"`
}

// PixelMin returns the minimum width and height in pixels.
func (b Bounds) PixelMin(g grid.Grid) (w, h float64) {
	return g.ToPixel(b.MinW), g.ToPixel(b.MinH)
}

// PixelMax returns the maximum width and height in pixels.
func (b Bounds) PixelMax(g grid.Grid) (w, h float64) {
	return g.ToPixel(b.MaxW), g.ToPixel(b.MaxH)
}

var typeInfo = [typeCount]struct {
	tag    string
	bounds Bounds
}{
	TypeDefault:   {"default", Bounds{MinW: 2, MinH: 2, MaxW: 40, MaxH: 30}},
	TypeClock:     {"clock", Bounds{MinW: 4, MinH: 2, MaxW: 20, MaxH: 10}},
	TypeWeather:   {"weather", Bounds{MinW: 6, MinH: 4, MaxW: 30, MaxH: 20}},
	TypeStock:     {"stock", Bounds{MinW: 6, MinH: 3, MaxW: 40, MaxH: 20}},
	TypeFeed:      {"feed", Bounds{MinW: 8, MinH: 6, MaxW: 40, MaxH: 30}},
	TypeNote:      {"note", Bounds{MinW: 4, MinH: 2, MaxW: 40, MaxH: 30}},
	TypeCalendar:  {"calendar", Bounds{MinW: 8, MinH: 6, MaxW: 30, MaxH: 24}},
	TypeBookmarks: {"bookmarks", Bounds{MinW: 4, MinH: 4, MaxW: 30, MaxH: 30}},
}

// Types returns every block type in declaration order.
func Types() []Type {
	out := make([]Type, 0, typeCount)
	for t := Type(0); t < typeCount; t++ {
		out = append(out, t)
	}
	return out
}

// String returns the type tag.
func (t Type) String() string {
	if t >= typeCount {
		return typeInfo[TypeDefault].tag
	}
	return typeInfo[t].tag
}

// Bounds returns the size limits for the type; out-of-range values use TypeDefault.
func (t Type) Bounds() Bounds {
	if t >= typeCount {
		return typeInfo[TypeDefault].bounds
	}
	return typeInfo[t].bounds
}

// ContentKey names the prop that holds the block's free-form content.
func (t Type) ContentKey() string {
	switch t {
	case TypeFeed, TypeBookmarks:
		return "items"
	}
	return "text"
}

// ParseType maps a tag to its type. Unknown tags fall back to TypeDefault and
// report ok=false.
func ParseType(tag string) (Type, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for t := Type(0); t < typeCount; t++ {
		if typeInfo[t].tag == tag {
			return t, true
		}
	}
	return TypeDefault, false
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	*t, _ = ParseType(string(text))
	return nil
}

// Block is a positioned widget instance. Only ID, Type and Layout are read by
// the layout engine; the rest is content owned by the host.
type Block struct {
	ID     string            `yaml:"id" json:"id"`
	Type   Type              `yaml:"type" json:"type"`
	Layout grid.Layout       `yaml:"layout" json:"layout"`
	Title  string            `yaml:"title,omitempty" json:"title,omitempty"`
	Props  map[string]string `yaml:"props,omitempty" json:"props,omitempty"`
}

// Rect returns the block's pixel rect on the given grid.
func (b Block) Rect(g grid.Grid) grid.Rect {
	return g.LayoutRect(b.Layout)
}

// Fit returns the layout clamped to the block's type bounds and the grid extent.
func (b Block) Fit(g grid.Grid, l grid.Layout) grid.Layout {
	bounds := b.Type.Bounds()
	return g.Fit(l, bounds.MinW, bounds.MinH, bounds.MaxW, bounds.MaxH)
}

// Desktop is one scrollable page of blocks.
type Desktop struct {
	ID     string  `yaml:"id" json:"id"`
	Title  string  `yaml:"title,omitempty" json:"title,omitempty"`
	Blocks []Block `yaml:"blocks" json:"blocks"`
}

// Find returns the index of the block with the given id, or -1.
func (d *Desktop) Find(id string) int {
	for i := range d.Blocks {
		if d.Blocks[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate checks that block ids are unique within the desktop.
func (d *Desktop) Validate() error {
	seen := make(map[string]struct{}, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.ID == "" {
			return fmt.Errorf("desktop %q: block with empty id", d.ID)
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("desktop %q: duplicate block id %q", d.ID, b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}
