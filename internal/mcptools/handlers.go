package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/codesense/internal/analysis"
	"github.com/dusk-indust/codesense/internal/report"
	"github.com/dusk-indust/codesense/internal/review"
	"github.com/dusk-indust/codesense/internal/store"
)

const defaultHistoryLimit = 20

// maxFileSize bounds analyze_file reads.
const maxFileSize = 4 << 20

var errHistoryDisabled = errors.New("history is disabled")

// CodeSenseService holds the analyzer, review builder and history used by
// the MCP tool handlers.
type CodeSenseService struct {
	analyzer *analysis.Analyzer
	reviewer *review.Builder
	history  store.Store // nil disables recording and the history tools
}

// NewCodeSenseService creates a CodeSenseService. history may be nil.
func NewCodeSenseService(a *analysis.Analyzer, rb *review.Builder, history store.Store) *CodeSenseService {
	return &CodeSenseService{analyzer: a, reviewer: rb, history: history}
}

// AnalyzeCode analyzes a snippet and records the result.
func (s *CodeSenseService) AnalyzeCode(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeCodeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	result := s.analyzer.Analyze(ctx, input.Code, input.Language)
	return nil, AnalyzeOutput{ID: s.record(ctx, result, nil), Result: result}, nil
}

// AnalyzeFile reads a source file, picks its language from the extension
// unless one is given, and analyzes it.
func (s *CodeSenseService) AnalyzeFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeFileInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	if input.Path == "" {
		return nil, AnalyzeOutput{}, fmt.Errorf("path is required")
	}

	info, err := os.Stat(input.Path)
	if err != nil {
		return nil, AnalyzeOutput{}, fmt.Errorf("cannot access path: %w", err)
	}
	if info.IsDir() {
		return nil, AnalyzeOutput{}, fmt.Errorf("path is a directory: %s", input.Path)
	}
	if info.Size() > maxFileSize {
		return nil, AnalyzeOutput{}, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	language := input.Language
	if language == "" {
		lang, ok := analysis.LanguageForPath(input.Path)
		if !ok {
			return nil, AnalyzeOutput{}, fmt.Errorf("cannot infer language of %s; pass language", input.Path)
		}
		language = string(lang)
	}

	source, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, AnalyzeOutput{}, fmt.Errorf("read %s: %w", input.Path, err)
	}

	result := s.analyzer.Analyze(ctx, string(source), language)
	return nil, AnalyzeOutput{ID: s.record(ctx, result, nil), Result: result}, nil
}

// ReviewCode analyzes and reviews a snippet. Blank code and languages
// without an analysis variant are rejected.
func (s *CodeSenseService) ReviewCode(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReviewCodeInput,
) (*mcp.CallToolResult, ReviewCodeOutput, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ReviewCodeOutput{}, fmt.Errorf("code cannot be empty")
	}
	if _, ok := analysis.NormalizeLanguage(input.Language); !ok || strings.TrimSpace(input.Language) == "" {
		return nil, ReviewCodeOutput{}, fmt.Errorf("invalid language %q; use python, javascript or cpp", input.Language)
	}

	result := s.analyzer.Analyze(ctx, code, input.Language)
	rv := s.reviewer.Build(result)
	return nil, ReviewCodeOutput{
		ID:     s.record(ctx, result, &rv),
		Result: result,
		Review: rv,
	}, nil
}

// ListHistory returns the most recent stored analyses.
func (s *CodeSenseService) ListHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListHistoryInput,
) (*mcp.CallToolResult, ListHistoryOutput, error) {
	if s.history == nil {
		return nil, ListHistoryOutput{}, errHistoryDisabled
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	records, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, ListHistoryOutput{}, fmt.Errorf("list history: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, HistoryEntry{
			ID:          rec.ID,
			Language:    rec.Language,
			Status:      rec.Status,
			Score:       rec.Score,
			ReviewScore: rec.ReviewScore,
			IssueCount:  rec.IssueCount,
			CreatedAt:   rec.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	return nil, ListHistoryOutput{Entries: entries, Total: len(entries)}, nil
}

// HistoryStats aggregates the stored history.
func (s *CodeSenseService) HistoryStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ HistoryStatsInput,
) (*mcp.CallToolResult, HistoryStatsOutput, error) {
	if s.history == nil {
		return nil, HistoryStatsOutput{}, errHistoryDisabled
	}

	st, err := s.history.Stats(ctx)
	if err != nil {
		return nil, HistoryStatsOutput{}, fmt.Errorf("history stats: %w", err)
	}
	byKind := make([]store.KindCount, len(st.IssuesByKind))
	copy(byKind, st.IssuesByKind)
	return nil, HistoryStatsOutput{Total: st.Total, MeanScore: st.MeanScore, IssuesByKind: byKind}, nil
}

// record saves result and returns its id. Failures are logged and yield "".
func (s *CodeSenseService) record(ctx context.Context, result report.AnalysisResult, rv *report.Review) string {
	if s.history == nil {
		return ""
	}
	rec := store.NewRecord(result, rv)
	if err := s.history.Save(ctx, rec); err != nil {
		slog.Warn("failed to record analysis", "tool", "mcp", "error", err)
		return ""
	}
	return rec.ID
}
