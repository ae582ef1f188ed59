package mcp

// ListDesktopsInput is the input for the list_desktops tool.
type ListDesktopsInput struct{}

// DesktopInfo describes one desktop.
type DesktopInfo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Index  int    `json:"index"`
	Blocks int    `json:"blocks"`
}

// ListDesktopsOutput is the output for the list_desktops tool.
type ListDesktopsOutput struct {
	Desktops []DesktopInfo `json:"desktops"`
}

// ListBlocksInput is the input for the list_blocks tool.
type ListBlocksInput struct {
	Desktop string `json:"desktop" jsonschema:"Desktop id, or its 1-based position in the carousel"`
}

// BlockInfo describes one block and its layout in grid cells.
type BlockInfo struct {
	ID        string            `json:"id"`
	DesktopID string            `json:"desktop_id"`
	Type      string            `json:"type"`
	Title     string            `json:"title,omitempty"`
	X         int               `json:"x"`
	Y         int               `json:"y"`
	W         int               `json:"w"`
	H         int               `json:"h"`
	Props     map[string]string `json:"props,omitempty"`
}

// ListBlocksOutput is the output for the list_blocks tool.
type ListBlocksOutput struct {
	DesktopID string      `json:"desktop_id"`
	Blocks    []BlockInfo `json:"blocks"`
}

// MoveBlockInput is the input for the move_block tool.
type MoveBlockInput struct {
	BlockID string `json:"block_id" jsonschema:"Id of the block to move"`
	X       int    `json:"x" jsonschema:"Target column of the top-left corner"`
	Y       int    `json:"y" jsonschema:"Target row of the top-left corner"`
	W       *int   `json:"w,omitempty" jsonschema:"New width in cells (default: unchanged). Clamped to the block type bounds."`
	H       *int   `json:"h,omitempty" jsonschema:"New height in cells (default: unchanged). Clamped to the block type bounds."`
}

// MoveBlockToDesktopInput is the input for the move_block_to_desktop tool.
type MoveBlockToDesktopInput struct {
	BlockID string `json:"block_id" jsonschema:"Id of the block to move"`
	Desktop string `json:"desktop" jsonschema:"Target desktop id, or its 1-based position"`
	X       *int   `json:"x,omitempty" jsonschema:"Target column (default: current column)"`
	Y       *int   `json:"y,omitempty" jsonschema:"Target row (default: current row)"`
}

// MoveBlockOutput is the output for the move tools.
type MoveBlockOutput struct {
	Block BlockInfo `json:"block"`
	// Adjusted is true when the requested layout was clamped.
	Adjusted bool `json:"adjusted"`
}

// AddBlockInput is the input for the add_block tool.
type AddBlockInput struct {
	Desktop string `json:"desktop" jsonschema:"Desktop id, or its 1-based position"`
	Type    string `json:"type" jsonschema:"Block type: clock, weather, stock, feed, note, calendar, bookmarks or default"`
	Title   string `json:"title,omitempty" jsonschema:"Title shown in the block border"`
	Text    string `json:"text,omitempty" jsonschema:"Note text, or comma separated items for feed and bookmarks blocks"`
}

// AddBlockOutput is the output for the add_block tool.
type AddBlockOutput struct {
	Block BlockInfo `json:"block"`
}

// DeleteBlockInput is the input for the delete_block tool.
type DeleteBlockInput struct {
	BlockID string `json:"block_id" jsonschema:"Id of the block to delete"`
}

// DeleteBlockOutput is the output for the delete_block tool.
type DeleteBlockOutput struct {
	Deleted bool `json:"deleted"`
}
