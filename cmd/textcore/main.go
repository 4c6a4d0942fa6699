// Package main is the entry point for the textcore command line tool.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/textcore/internal/config"
	"github.com/dshills/textcore/internal/engine"
	"github.com/dshills/textcore/internal/ingest"
	"github.com/dshills/textcore/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:           "textcore",
	Short:         "Inspect a project with the textcore editing engine",
	Long:          `textcore loads a directory into the editing engine and runs its analyses: tokens, folds, brackets, diffs, search, the project tree and the agent context.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(foldCmd)
	rootCmd.AddCommand(bracketsCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.PersistentFlags().String("config", "", "config file (toml or yaml); defaults to $"+config.EnvConfigFile)
	rootCmd.PersistentFlags().String("root", ".", "project directory to load")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error); overrides the config")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// session is the state every command starts from.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	engine *engine.Engine
	root   string
	color  bool
}

// newSession loads the configuration and builds the engine. When load is
// set the project directory is loaded too.
func newSession(cmd *cobra.Command, load bool) (*session, error) {
	flags := cmd.Root().PersistentFlags()

	path, _ := flags.GetString("config")
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := flags.GetString("log-level"); lvl != "" {
		if _, err := logging.ParseLevel(lvl); err != nil {
			return nil, err
		}
		cfg.Logging.Level = lvl
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: logging.Format(cfg.Logging.Format),
		Output: cmd.ErrOrStderr(),
	})

	s := &session{
		cfg:    cfg,
		logger: logger,
		engine: engine.New(engine.WithConfig(cfg), engine.WithLogger(logging.WithComponent(logger, "engine"))),
	}
	s.root, _ = flags.GetString("root")

	colorFlag, _ := flags.GetString("color")
	switch colorFlag {
	case "on":
		s.color = true
	case "off":
		s.color = false
	case "auto":
		s.color = isTerminal(os.Stdout)
	default:
		return nil, fmt.Errorf("unknown color mode: %s", colorFlag)
	}

	if load {
		res, err := ingest.LoadDir(cmd.Context(), s.engine, s.root, ingest.Options{Logger: logger})
		if err != nil {
			return nil, err
		}
		for _, sk := range res.Skipped {
			logger.Debug("skipped file", slog.String("path", sk.Path), slog.Any("reason", sk.Reason))
		}
	}
	return s, nil
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
