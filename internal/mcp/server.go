// Package mcp exposes the board over the Model Context Protocol so agents can
// inspect and rearrange desktops.
package mcp

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskgrid/internal/board"
)

const (
	ServerName    = "deskgrid"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for board editing.
type Server struct {
	mcpServer *mcpsdk.Server
	store     *board.Store
	logger    *log.Logger

	// mu serializes mutate-then-save so saves never interleave.
	mu sync.Mutex
}

// NewServer creates a server over store. Layouts are fitted against the
// store's grid.
func NewServer(store *board.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		store:  store,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_desktops",
		Description: "List desktops in carousel order with their ids, titles and block counts.",
	}, s.handleListDesktops)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_blocks",
		Description: "List the blocks on a desktop in paint order. Layouts are in grid cells (x, y, w, h).",
	}, s.handleListBlocks)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_block",
		Description: "Move and optionally resize a block on its desktop. The layout is clamped to the block type's size bounds and the grid extent; the response reports whether it was adjusted. The board is saved.",
	}, s.handleMoveBlock)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_block_to_desktop",
		Description: "Move a block to another desktop, keeping its size. Position defaults to the current one. Moving to the desktop the block is already on is a no-op. The board is saved.",
	}, s.handleMoveBlockToDesktop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "add_block",
		Description: "Add a block of the given type to a desktop. It gets the type's minimum size and is placed below the existing blocks. The board is saved.",
	}, s.handleAddBlock)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "delete_block",
		Description: "Delete a block. The board is saved.",
	}, s.handleDeleteBlock)
}
