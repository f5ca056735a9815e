package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codesense/internal/analysis"
	"github.com/dusk-indust/codesense/internal/api"
	"github.com/dusk-indust/codesense/internal/config"
	"github.com/dusk-indust/codesense/internal/mcptools"
	"github.com/dusk-indust/codesense/internal/review"
	"github.com/dusk-indust/codesense/internal/store"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// app is the state built once the global flags are parsed.
type app struct {
	flags  globalFlags
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "codesense",
		Short: "Static analysis and code review for Python, JavaScript and C++ snippets",
		Long: `codesense lints a source snippet, measures it and scores it from 0 to 100.
Python gets a structural lint over its syntax tree plus unused-import,
cyclomatic-complexity and comment-density metrics. JavaScript and C++ get a
line-oriented pattern lint. The review command adds a readability score,
performance hints and a summary verdict.

The analyzer can also run as an HTTP API (serve) or as an MCP tool server (mcp).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.ConfigPath, "config", "c", "", "path to a codesense.yml (default: ./codesense.yml if present)")
	pf.StringVar(&a.flags.LogLevel, "log-level", "info", "log level: debug, info, warn or error")
	pf.StringVar(&a.flags.LogFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newAnalyzeCmd(a),
		newReviewCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newHistoryCmd(a),
	)
	return root
}

// setup configures logging and loads the configuration.
func (a *app) setup(logOut io.Writer) error {
	logger, err := newLogger(logOut, a.flags.LogLevel, a.flags.LogFormat)
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)

	api.Version = version
	mcptools.Version = version

	if a.flags.ConfigPath != "" {
		a.cfg, err = config.LoadFile(a.flags.ConfigPath)
	} else {
		a.cfg, err = config.Load(".")
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q (want text or json)", format)
	}
}

func (a *app) analyzer(opts ...analysis.Option) *analysis.Analyzer {
	opts = append([]analysis.Option{analysis.WithLogger(a.logger)}, opts...)
	return analysis.New(a.cfg, opts...)
}

func (a *app) reviewer() *review.Builder {
	return review.NewBuilder(a.cfg.Review)
}

// openHistory opens the configured history backend.
func (a *app) openHistory(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, a.cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	a.logger.Debug("history opened", "backend", a.cfg.Server.Store)
	return st, nil
}
