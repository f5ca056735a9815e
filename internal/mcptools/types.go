package mcptools

import (
	"github.com/dusk-indust/codesense/internal/report"
	"github.com/dusk-indust/codesense/internal/store"
)

// --- MCP Tool Input Types ---
// The MCP Go SDK derives each tool's JSON schema from these struct tags.

// AnalyzeCodeInput is the input for the analyze_code MCP tool.
type AnalyzeCodeInput struct {
	Code     string `json:"code" jsonschema:"the source snippet to analyze"`
	Language string `json:"language,omitempty" jsonschema:"python, javascript (js) or cpp (c++). Default: python"`
}

// AnalyzeFileInput is the input for the analyze_file MCP tool.
type AnalyzeFileInput struct {
	Path     string `json:"path" jsonschema:"path to a source file"`
	Language string `json:"language,omitempty" jsonschema:"overrides the language guessed from the file extension"`
}

// AnalyzeOutput is the result of the analyze_code and analyze_file tools.
type AnalyzeOutput struct {
	ID     string                `json:"id,omitempty"`
	Result report.AnalysisResult `json:"result"`
}

// ReviewCodeInput is the input for the review_code MCP tool.
type ReviewCodeInput struct {
	Code     string `json:"code" jsonschema:"the source snippet to review"`
	Language string `json:"language" jsonschema:"python, javascript (js) or cpp (c++)"`
}

// ReviewCodeOutput is the result of the review_code MCP tool.
type ReviewCodeOutput struct {
	ID     string                `json:"id,omitempty"`
	Result report.AnalysisResult `json:"result"`
	Review report.Review         `json:"review"`
}

// ListHistoryInput is the input for the list_history MCP tool.
type ListHistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of entries, newest first (default: 20)"`
}

// HistoryEntry is a stored analysis without its issue and function lists.
type HistoryEntry struct {
	ID          string          `json:"id"`
	Language    report.Language `json:"language"`
	Status      report.Status   `json:"status"`
	Score       int             `json:"score"`
	ReviewScore int             `json:"reviewScore"`
	IssueCount  int             `json:"issueCount"`
	CreatedAt   string          `json:"createdAt"`
}

// ListHistoryOutput is the result of the list_history MCP tool.
type ListHistoryOutput struct {
	Entries []HistoryEntry `json:"entries"`
	Total   int            `json:"total"`
}

// HistoryStatsInput is the input for the history_stats MCP tool.
type HistoryStatsInput struct{}

// HistoryStatsOutput is the result of the history_stats MCP tool.
type HistoryStatsOutput struct {
	Total        int               `json:"total"`
	MeanScore    float64           `json:"meanScore"`
	IssuesByKind []store.KindCount `json:"issuesByKind"`
}
