// Package mcptools exposes the analyzer, the review builder and the
// analysis history as MCP tools.
package mcptools

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported in the MCP implementation info.
var Version = "dev"

// NewMCPServer creates an MCP server with every codesense tool registered.
func NewMCPServer(svc *CodeSenseService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "codesense",
		Version: Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_code",
		Description: "Analyze a code snippet. Python gets structural lint, unused-import detection, per-function cyclomatic complexity and comment density; JavaScript and C++ get pattern lint. Returns issues and a 0-100 score.",
	}, svc.AnalyzeCode)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_file",
		Description: "Analyze a source file on disk. The language is guessed from the extension unless given.",
	}, svc.AnalyzeFile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "review_code",
		Description: "Analyze a snippet and build a review: quality score, readability score, performance hints, feedback lines and a summary verdict.",
	}, svc.ReviewCode)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_history",
		Description: "List recent stored analyses, newest first.",
	}, svc.ListHistory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "history_stats",
		Description: "Aggregate the stored history: number of analyses, mean score and issue counts by kind.",
	}, svc.HistoryStats)

	return server
}

// RunStdio runs the MCP server on the stdio transport, blocking until stdin
// is closed or ctx is canceled.
func RunStdio(ctx context.Context, svc *CodeSenseService) error {
	return NewMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP tools over streamable HTTP on addr until ctx is
// canceled.
func RunHTTP(ctx context.Context, svc *CodeSenseService, addr string) error {
	server := NewMCPServer(svc)
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shutdown gracefully when context is cancelled.
	stop := context.AfterFunc(ctx, func() {
		slog.Info("MCP server shutting down", "addr", addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	})
	defer stop()

	slog.Info("MCP server listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
