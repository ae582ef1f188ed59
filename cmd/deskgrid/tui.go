package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskgrid/internal/paths"
	"github.com/1broseidon/deskgrid/internal/tui"
)

func (c *cli) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the board in the terminal",
		Long: `Open the board in the terminal. Drag a block by its border to move it,
drag a corner to resize it, shift-click to select several blocks and
shift-drag on empty space to lasso. Dragging past the left or right edge
pages to the neighbouring desktop and carries the selection along.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The alternate screen owns the terminal, so the TUI logs to a file.
			logPath, err := paths.LogPath()
			if err != nil {
				return err
			}
			f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()

			c.logger.SetOutput(f)

			store, cfg, err := c.openBoard()
			if err != nil {
				return err
			}
			c.logger.Info("Board: opened", "path", store.Path())

			return tui.Run(tui.Options{
				Store:  store,
				Config: cfg,
				Logger: c.logger,
			})
		},
	}
}
