package report

// --- Enums ---

// Severity is the penalty tier of an issue. The zero value means the issue
// carries no severity and does not affect the analysis score.
type Severity string

const (
	SeverityNone   Severity = ""
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Status reports whether an analysis ran to completion.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Language is a normalized language tag.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangCpp        Language = "cpp"
)

// SupportedLanguages lists the languages with an analysis variant.
var SupportedLanguages = []Language{LangPython, LangJavaScript, LangCpp}

// Issue kinds produced by the analyzers. Pattern linters and the structural
// linter define their own kinds alongside their rules.
const (
	KindSyntaxError         = "Syntax Error"
	KindUnsupportedLanguage = "Unsupported Language"
	KindAnalyzerFailure     = "Analyzer Failure"
	KindUnusedImport        = "Unused Import"
	KindHighComplexity      = "High Cyclomatic Complexity"
	KindModerateComplexity  = "Moderate Cyclomatic Complexity"
	KindLowDocumentation    = "Low Documentation"
)

// --- Models ---

// Issue is one reported finding. Line is 1-based; zero means the finding is
// not tied to a line.
type Issue struct {
	Kind     string   `json:"type"`
	Detail   string   `json:"detail"`
	Line     int      `json:"line,omitempty"`
	Severity Severity `json:"severity,omitempty"`
}

// FunctionComplexity is the branch-count complexity of one top-level function.
type FunctionComplexity struct {
	Name       string `json:"name"`
	Complexity int    `json:"complexity"`
	Line       int    `json:"line,omitempty"`
}

// CodeStats summarizes the shape of a parsed source unit.
type CodeStats struct {
	TotalLines            int     `json:"total_lines"`
	FunctionCount         int     `json:"function_count"`
	ClassCount            int     `json:"class_count"`
	AverageFunctionLength float64 `json:"average_function_length"`
	CyclomaticComplexity  int     `json:"cyclomatic_complexity"`
}

// Meta holds the score and metrics attached to an analysis.
type Meta struct {
	Score          int                  `json:"score"`
	Complexity     []FunctionComplexity `json:"complexity,omitempty"`
	CommentDensity *float64             `json:"comment_density,omitempty"`
	Stats          *CodeStats           `json:"stats,omitempty"`
}

// AnalysisResult is the report produced for one snippet.
type AnalysisResult struct {
	Status     Status   `json:"status"`
	Language   Language `json:"language"`
	Issues     []Issue  `json:"issues"`
	IssueCount int      `json:"issue_count"`
	Meta       Meta     `json:"meta"`

	// Code is the analysed snippet. It is kept for the review aggregator and
	// never serialized.
	Code string `json:"-"`
}

// Review is the human-oriented assessment derived from an AnalysisResult.
type Review struct {
	Score            int      `json:"score"`
	ReadabilityScore int      `json:"readability_score"`
	Performance      []string `json:"performance"`
	Issues           []Issue  `json:"issues"`
	Feedback         []string `json:"feedback"`
	Summary          string   `json:"summary"`
}
