package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskgrid/internal/block"
	"github.com/1broseidon/deskgrid/internal/grid"
)

func blockInfo(b block.Block, desktopID string) BlockInfo {
	return BlockInfo{
		ID:        b.ID,
		DesktopID: desktopID,
		Type:      b.Type.String(),
		Title:     b.Title,
		X:         b.Layout.X,
		Y:         b.Layout.Y,
		W:         b.Layout.W,
		H:         b.Layout.H,
		Props:     b.Props,
	}
}

// resolveDesktop accepts a desktop id or a 1-based position.
func (s *Server) resolveDesktop(ref string) (block.Desktop, error) {
	if strings.TrimSpace(ref) == "" {
		return block.Desktop{}, fmt.Errorf("desktop is required")
	}
	return s.store.FindDesktop(ref)
}

func (s *Server) save() error {
	if err := s.store.Save(); err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}
	return nil
}

func (s *Server) handleListDesktops(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDesktopsInput) (*mcpsdk.CallToolResult, ListDesktopsOutput, error) {
	desktops := s.store.ListDesktops()
	out := ListDesktopsOutput{Desktops: make([]DesktopInfo, 0, len(desktops))}
	for i, d := range desktops {
		out.Desktops = append(out.Desktops, DesktopInfo{
			ID:     d.ID,
			Title:  d.Title,
			Index:  i + 1,
			Blocks: len(d.Blocks),
		})
	}
	return nil, out, nil
}

func (s *Server) handleListBlocks(_ context.Context, _ *mcpsdk.CallToolRequest, args ListBlocksInput) (*mcpsdk.CallToolResult, ListBlocksOutput, error) {
	d, err := s.resolveDesktop(args.Desktop)
	if err != nil {
		return nil, ListBlocksOutput{}, err
	}
	out := ListBlocksOutput{DesktopID: d.ID, Blocks: make([]BlockInfo, 0, len(d.Blocks))}
	for _, b := range d.Blocks {
		out.Blocks = append(out.Blocks, blockInfo(b, d.ID))
	}
	return nil, out, nil
}

func (s *Server) handleMoveBlock(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveBlockInput) (*mcpsdk.CallToolResult, MoveBlockOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, desktopID, err := s.store.Block(args.BlockID)
	if err != nil {
		return nil, MoveBlockOutput{}, err
	}

	want := grid.Layout{X: args.X, Y: args.Y, W: b.Layout.W, H: b.Layout.H}
	if args.W != nil {
		want.W = *args.W
	}
	if args.H != nil {
		want.H = *args.H
	}
	l := b.Fit(s.store.Grid(), want)
	if err := s.store.MoveBlock(b.ID, l); err != nil {
		return nil, MoveBlockOutput{}, err
	}
	if err := s.save(); err != nil {
		return nil, MoveBlockOutput{}, err
	}

	s.logger.Info("MCP: block moved", "block", b.ID, "layout", l)
	b.Layout = l
	return nil, MoveBlockOutput{Block: blockInfo(b, desktopID), Adjusted: l != want}, nil
}

func (s *Server) handleMoveBlockToDesktop(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveBlockToDesktopInput) (*mcpsdk.CallToolResult, MoveBlockOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, from, err := s.store.Block(args.BlockID)
	if err != nil {
		return nil, MoveBlockOutput{}, err
	}
	dst, err := s.resolveDesktop(args.Desktop)
	if err != nil {
		return nil, MoveBlockOutput{}, err
	}

	want := b.Layout
	if args.X != nil {
		want.X = *args.X
	}
	if args.Y != nil {
		want.Y = *args.Y
	}
	l := b.Fit(s.store.Grid(), want)
	if err := s.store.MoveBlockToDesktop(b.ID, dst.ID, l); err != nil {
		return nil, MoveBlockOutput{}, err
	}
	if err := s.save(); err != nil {
		return nil, MoveBlockOutput{}, err
	}

	s.logger.Info("MCP: block moved across desktops", "block", b.ID, "from", from, "to", dst.ID, "layout", l)
	b.Layout = l
	return nil, MoveBlockOutput{Block: blockInfo(b, dst.ID), Adjusted: l != want}, nil
}

func (s *Server) handleAddBlock(_ context.Context, _ *mcpsdk.CallToolRequest, args AddBlockInput) (*mcpsdk.CallToolResult, AddBlockOutput, error) {
	typ, ok := block.ParseType(args.Type)
	if !ok {
		names := make([]string, 0, len(block.Types()))
		for _, t := range block.Types() {
			names = append(names, t.String())
		}
		return nil, AddBlockOutput{}, fmt.Errorf("unknown block type %q (valid: %s)", args.Type, strings.Join(names, ", "))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.resolveDesktop(args.Desktop)
	if err != nil {
		return nil, AddBlockOutput{}, err
	}
	b, err := s.store.AddBlock(d.ID, typ, strings.TrimSpace(args.Title))
	if err != nil {
		return nil, AddBlockOutput{}, err
	}
	if text := strings.TrimSpace(args.Text); text != "" {
		b.Props = map[string]string{typ.ContentKey(): text}
		if err := s.store.SetContent(b.ID, b.Title, b.Props); err != nil {
			return nil, AddBlockOutput{}, err
		}
	}
	if err := s.save(); err != nil {
		return nil, AddBlockOutput{}, err
	}

	s.logger.Info("MCP: block added", "block", b.ID, "type", typ, "desktop", d.ID)
	return nil, AddBlockOutput{Block: blockInfo(b, d.ID)}, nil
}

func (s *Server) handleDeleteBlock(_ context.Context, _ *mcpsdk.CallToolRequest, args DeleteBlockInput) (*mcpsdk.CallToolResult, DeleteBlockOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.RemoveBlock(args.BlockID); err != nil {
		return nil, DeleteBlockOutput{}, err
	}
	if err := s.save(); err != nil {
		return nil, DeleteBlockOutput{}, err
	}

	s.logger.Info("MCP: block deleted", "block", args.BlockID)
	return nil, DeleteBlockOutput{Deleted: true}, nil
}
