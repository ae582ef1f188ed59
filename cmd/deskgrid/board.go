package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskgrid/internal/block"
	"github.com/1broseidon/deskgrid/internal/board"
)

func (c *cli) boardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Inspect and edit the board file",
	}
	cmd.AddCommand(c.boardInitCommand())
	cmd.AddCommand(c.boardListCommand())
	cmd.AddCommand(c.boardShowCommand())
	cmd.AddCommand(c.boardAddCommand())
	cmd.AddCommand(c.boardDeleteCommand())
	return cmd
}

func (c *cli) boardInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter board with two desktops",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := c.boardOptions(res.Config)
			if err != nil {
				return err
			}
			if _, err := os.Stat(opts.Path); err == nil && !force {
				return fmt.Errorf("board already exists at %s (use --force to overwrite)", opts.Path)
			}
			store := board.New(board.Default(), opts)
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "board: wrote %s\n", opts.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing board")
	return cmd
}

func (c *cli) boardListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List desktops",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := c.openBoard()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tTITLE\tBLOCKS\tID")
			for i, d := range store.ListDesktops() {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", i+1, d.Title, len(d.Blocks), d.ID)
			}
			return w.Flush()
		},
	}
}

func (c *cli) boardShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [desktop]",
		Short: "Show the blocks of one desktop, or of all desktops",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := c.openBoard()
			if err != nil {
				return err
			}
			desktops := store.ListDesktops()
			if len(args) == 1 {
				d, err := store.FindDesktop(args[0])
				if err != nil {
					return err
				}
				desktops = []block.Desktop{d}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DESKTOP\tTYPE\tTITLE\tLAYOUT\tID")
			for _, d := range desktops {
				for _, b := range d.Blocks {
					l := b.Layout
					fmt.Fprintf(w, "%s\t%s\t%s\t%d,%d %dx%d\t%s\n", d.Title, b.Type, b.Title, l.X, l.Y, l.W, l.H, b.ID)
				}
			}
			return w.Flush()
		},
	}
}

func (c *cli) boardAddCommand() *cobra.Command {
	var title, text string
	cmd := &cobra.Command{
		Use:   "add <desktop> <type>",
		Short: "Add a block below the existing blocks of a desktop",
		Long:  "Add a block. <desktop> is a desktop id or its 1-based position; <type> is one of: " + typeNames() + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, ok := block.ParseType(args[1])
			if !ok {
				return fmt.Errorf("unknown block type %q (valid: %s)", args[1], typeNames())
			}
			store, _, err := c.openBoard()
			if err != nil {
				return err
			}
			d, err := store.FindDesktop(args[0])
			if err != nil {
				return err
			}
			b, err := store.AddBlock(d.ID, typ, strings.TrimSpace(title))
			if err != nil {
				return err
			}
			if text = strings.TrimSpace(text); text != "" {
				if err := store.SetContent(b.ID, b.Title, map[string]string{typ.ContentKey(): text}); err != nil {
					return err
				}
			}
			if err := store.Save(); err != nil {
				return err
			}
			l := b.Layout
			fmt.Fprintf(cmd.OutOrStdout(), "board: added %s %s at %d,%d %dx%d\n", typ, b.ID, l.X, l.Y, l.W, l.H)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "block title")
	cmd.Flags().StringVar(&text, "text", "", "note text, or comma separated items for feed and bookmarks")
	return cmd
}

func (c *cli) boardDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <block-id>",
		Short: "Delete a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := c.openBoard()
			if err != nil {
				return err
			}
			if err := store.RemoveBlock(args[0]); err != nil {
				return err
			}
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "board: deleted %s\n", args[0])
			return nil
		},
	}
}

func typeNames() string {
	names := make([]string, 0, len(block.Types()))
	for _, t := range block.Types() {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}
