package mcptools

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codesense/internal/analysis"
	"github.com/dusk-indust/codesense/internal/config"
	"github.com/dusk-indust/codesense/internal/report"
	"github.com/dusk-indust/codesense/internal/review"
	"github.com/dusk-indust/codesense/internal/store"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestService creates a service backed by a fresh MemStore.
func newTestService(t *testing.T) (*CodeSenseService, *store.MemStore) {
	t.Helper()
	cfg := config.Default()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	history := store.NewMemStore()
	require.NoError(t, history.InitSchema(context.Background()))
	svc := NewCodeSenseService(
		analysis.New(cfg, analysis.WithLogger(quiet)),
		review.NewBuilder(cfg.Review),
		history,
	)
	return svc, history
}

// writeFile creates name under a temp dir with content and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ---------------------------------------------------------------------------
// analyze_code
// ---------------------------------------------------------------------------

func TestAnalyzeCode(t *testing.T) {
	svc, history := newTestService(t)
	ctx := context.Background()

	_, out, err := svc.AnalyzeCode(ctx, nil, AnalyzeCodeInput{Code: "var x = 1", Language: "js"})
	require.NoError(t, err)

	assert.Equal(t, report.LangJavaScript, out.Result.Language)
	assert.Equal(t, 2, out.Result.IssueCount)
	assert.Equal(t, 100, out.Result.Meta.Score)
	require.NotEmpty(t, out.ID)

	rec, err := history.Get(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, report.LangJavaScript, rec.Language)
}

func TestAnalyzeCode_DefaultsToPython(t *testing.T) {
	svc, _ := newTestService(t)

	_, out, err := svc.AnalyzeCode(context.Background(), nil, AnalyzeCodeInput{Code: "# tools\nimport os\n"})
	require.NoError(t, err)
	assert.Equal(t, report.LangPython, out.Result.Language)
	require.Len(t, out.Result.Issues, 1)
	assert.Equal(t, report.KindUnusedImport, out.Result.Issues[0].Kind)
}

// ---------------------------------------------------------------------------
// analyze_file
// ---------------------------------------------------------------------------

func TestAnalyzeFile(t *testing.T) {
	svc, _ := newTestService(t)
	path := writeFile(t, "widget.cpp", "using namespace std;\nint main() { return 0; }\n")

	_, out, err := svc.AnalyzeFile(context.Background(), nil, AnalyzeFileInput{Path: path})
	require.NoError(t, err)
	assert.Equal(t, report.LangCpp, out.Result.Language)
	require.NotEmpty(t, out.Result.Issues)
	assert.Equal(t, "Using namespace std", out.Result.Issues[0].Kind)
}

func TestAnalyzeFile_LanguageOverride(t *testing.T) {
	svc, _ := newTestService(t)
	path := writeFile(t, "script.txt", "var a = 1;\n")

	_, out, err := svc.AnalyzeFile(context.Background(), nil, AnalyzeFileInput{Path: path, Language: "javascript"})
	require.NoError(t, err)
	assert.Equal(t, report.LangJavaScript, out.Result.Language)
	require.Len(t, out.Result.Issues, 1)
	assert.Equal(t, "Use of var", out.Result.Issues[0].Kind)
}

func TestAnalyzeFile_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.AnalyzeFile(ctx, nil, AnalyzeFileInput{})
	assert.ErrorContains(t, err, "path is required")

	_, _, err = svc.AnalyzeFile(ctx, nil, AnalyzeFileInput{Path: filepath.Join(t.TempDir(), "missing.py")})
	assert.ErrorContains(t, err, "cannot access path")

	_, _, err = svc.AnalyzeFile(ctx, nil, AnalyzeFileInput{Path: t.TempDir()})
	assert.ErrorContains(t, err, "is a directory")

	_, _, err = svc.AnalyzeFile(ctx, nil, AnalyzeFileInput{Path: writeFile(t, "notes.md", "# hi\n")})
	assert.ErrorContains(t, err, "cannot infer language")
}

// ---------------------------------------------------------------------------
// review_code
// ---------------------------------------------------------------------------

func TestReviewCode(t *testing.T) {
	svc, history := newTestService(t)
	ctx := context.Background()

	_, out, err := svc.ReviewCode(ctx, nil, ReviewCodeInput{Code: "  var a = b == c\n", Language: "js"})
	require.NoError(t, err)

	assert.Equal(t, 96, out.Review.Score)
	assert.Equal(t, 10, out.Review.ReadabilityScore)
	assert.Len(t, out.Review.Performance, 2)
	assert.Equal(t, "Excellent code quality. Minor improvements possible.", out.Review.Summary)

	rec, err := history.Get(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, 96, rec.ReviewScore)
}

func TestReviewCode_Rejects(t *testing.T) {
	svc, history := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.ReviewCode(ctx, nil, ReviewCodeInput{Code: " \n\t", Language: "python"})
	assert.ErrorContains(t, err, "code cannot be empty")

	_, _, err = svc.ReviewCode(ctx, nil, ReviewCodeInput{Code: "x = 1", Language: "ruby"})
	assert.ErrorContains(t, err, "invalid language")

	_, _, err = svc.ReviewCode(ctx, nil, ReviewCodeInput{Code: "x = 1", Language: ""})
	assert.ErrorContains(t, err, "invalid language")

	st, err := history.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Total, "rejected reviews are not recorded")
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

func TestListHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var ids []string
	for _, code := range []string{"# a\nimport a\n", "# b\nimport b\n", "# c\nimport c\n"} {
		_, out, err := svc.AnalyzeCode(ctx, nil, AnalyzeCodeInput{Code: code})
		require.NoError(t, err)
		ids = append(ids, out.ID)
	}

	_, out, err := svc.ListHistory(ctx, nil, ListHistoryInput{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 2, out.Total)
	assert.Equal(t, ids[2], out.Entries[0].ID)
	assert.Equal(t, ids[1], out.Entries[1].ID)
	assert.NotEmpty(t, out.Entries[0].CreatedAt)

	_, out, err = svc.ListHistory(ctx, nil, ListHistoryInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
}

func TestHistoryStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, out, err := svc.HistoryStats(ctx, nil, HistoryStatsInput{})
	require.NoError(t, err)
	assert.Zero(t, out.Total)
	assert.NotNil(t, out.IssuesByKind)

	for _, code := range []string{"# a\nimport a\n", "# b\nimport b\n"} {
		_, _, err := svc.AnalyzeCode(ctx, nil, AnalyzeCodeInput{Code: code})
		require.NoError(t, err)
	}

	_, out, err = svc.HistoryStats(ctx, nil, HistoryStatsInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	assert.InDelta(t, 99, out.MeanScore, 1e-9)
	require.Len(t, out.IssuesByKind, 1)
	assert.Equal(t, store.KindCount{Kind: report.KindUnusedImport, Count: 2}, out.IssuesByKind[0])
}

func TestHistoryDisabled(t *testing.T) {
	cfg := config.Default()
	svc := NewCodeSenseService(analysis.New(cfg), review.NewBuilder(cfg.Review), nil)
	ctx := context.Background()

	_, out, err := svc.AnalyzeCode(ctx, nil, AnalyzeCodeInput{Code: "x = 1\n"})
	require.NoError(t, err)
	assert.Empty(t, out.ID)

	_, _, err = svc.ListHistory(ctx, nil, ListHistoryInput{})
	assert.ErrorIs(t, err, errHistoryDisabled)

	_, _, err = svc.HistoryStats(ctx, nil, HistoryStatsInput{})
	assert.ErrorIs(t, err, errHistoryDisabled)
}
