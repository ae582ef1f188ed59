package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/deskgrid/internal/mcp"
)

func (c *cli) mcpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve board tools over stdio",
		Long: `Start the MCP server on stdio. Designed to be invoked by MCP clients.
Tools list desktops and blocks, move blocks within and across desktops,
add blocks and delete them. Every change is saved to the board file.

Example:
  claude mcp add deskgrid -- deskgrid mcp serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := c.openBoard()
			if err != nil {
				return err
			}
			c.logger.Info("MCP: serving", "board", store.Path(), "tools", 6)
			return mcp.NewServer(store, c.logger).Run(cmd.Context())
		},
	})
	return cmd
}
