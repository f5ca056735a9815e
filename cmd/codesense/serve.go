package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/codesense/internal/analysis"
	"github.com/dusk-indust/codesense/internal/api"
	"github.com/dusk-indust/codesense/internal/mcptools"
	"github.com/dusk-indust/codesense/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr      string
		backend   string
		noHistory bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over HTTP",
		Long: `Serve exposes the analyzer, the review builder and the analysis history as a
JSON API, with Prometheus metrics on /metrics.

Endpoints:
  GET  /                  health
  POST /v1/analyze        analyze a snippet (also POST /metrics/)
  POST /v1/review         analyze and review a snippet
  GET  /v1/history        recent analyses
  GET  /v1/history/stats  aggregate history
  GET  /v1/history/:id    one analysis
  GET  /metrics           Prometheus exposition`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if backend != "" {
				a.cfg.Server.Store = backend
			}
			if a.logger.Enabled(cmd.Context(), slog.LevelDebug) {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			metrics := api.NewMetrics()
			analyzer := a.analyzer(analysis.WithObserver(metrics))

			var history store.Store
			if !noHistory {
				st, err := a.openHistory(cmd.Context())
				if err != nil {
					return err
				}
				defer st.Close()
				history = st
			}
			h := api.NewHandlers(analyzer, a.reviewer(), history, a.cfg.Server.HistoryLimit)

			a.logger.Info("starting codesense", "version", version, "addr", a.cfg.Server.Addr, "history", a.cfg.Server.Store)
			return api.ListenAndServe(cmd.Context(), a.cfg.Server.Addr, api.NewRouter(h, metrics))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config, :8080)")
	cmd.Flags().StringVar(&backend, "store", "", "history backend: memory or kuzu (default: server.store from config)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record analyses")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run as an MCP tool server",
		Long: `MCP serves the analyze_code, analyze_file, review_code, list_history and
history_stats tools. It speaks stdio unless --http is given.

Example:
  codesense mcp
  codesense mcp --http :8090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer history.Close()

			svc := mcptools.NewCodeSenseService(a.analyzer(), a.reviewer(), history)

			if httpAddr == "" {
				httpAddr = a.cfg.Server.MCPAddr
			}
			if httpAddr != "" {
				a.logger.Info("starting MCP server", "transport", "http", "addr", httpAddr)
				return mcptools.RunHTTP(cmd.Context(), svc, httpAddr)
			}
			a.logger.Debug("starting MCP server", "transport", "stdio")
			return mcptools.RunStdio(cmd.Context(), svc)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
	return cmd
}
