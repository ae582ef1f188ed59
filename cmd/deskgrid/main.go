package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/1broseidon/deskgrid/internal/board"
	"github.com/1broseidon/deskgrid/internal/config"
	"github.com/1broseidon/deskgrid/internal/grid"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newCLI(os.Stderr).rootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds state shared by every command.
type cli struct {
	logger *log.Logger

	configPath string
	boardPath  string
	verbose    bool
}

func newCLI(logOut io.Writer) *cli {
	return &cli{logger: newLogger(logOut, log.InfoLevel)}
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "deskgrid",
		Short:        "deskgrid arranges widget blocks on scrollable desktops",
		Long:         `deskgrid keeps a board of desktops, each holding snap-to-grid blocks. Blocks are moved, resized and carried between desktops with the mouse in the TUI, or edited from the command line and over MCP.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.logger.SetLevel(log.DebugLevel)
			}
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/deskgrid/config.yaml)")
	root.PersistentFlags().StringVar(&c.boardPath, "board", "", "board file (default: board.path from config)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.boardCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.mcpCommand())
	return root
}

func (c *cli) loadConfig() (*config.LoadResult, error) {
	path := c.configPath
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	if !c.verbose {
		if level, err := log.ParseLevel(res.Config.LogLevel); err == nil {
			c.logger.SetLevel(level)
		}
	}
	return res, nil
}

func gridFromConfig(cfg *config.Config) grid.Grid {
	return grid.Grid{
		CellSize: cfg.Grid.CellSize,
		Cols:     cfg.Grid.Columns,
		Rows:     cfg.Grid.Rows,
	}
}

func (c *cli) boardOptions(cfg *config.Config) (board.Options, error) {
	path := c.boardPath
	if path == "" {
		var err error
		path, err = cfg.BoardPath()
		if err != nil {
			return board.Options{}, err
		}
	}
	return board.Options{
		Path:   path,
		Grid:   gridFromConfig(cfg),
		Logger: c.logger,
	}, nil
}

// openBoard loads the configuration and the board it points at.
func (c *cli) openBoard() (*board.Store, *config.Config, error) {
	res, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	opts, err := c.boardOptions(res.Config)
	if err != nil {
		return nil, nil, err
	}
	store, err := board.Load(opts)
	if err != nil {
		return nil, nil, err
	}
	return store, res.Config, nil
}
