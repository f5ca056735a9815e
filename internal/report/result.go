package report

// NewResult returns a successful result for language with the given issues.
// IssueCount is always derived from issues.
func NewResult(language Language, code string, issues []Issue) AnalysisResult {
	r := AnalysisResult{
		Status:   StatusSuccess,
		Language: language,
		Code:     code,
	}
	r.SetIssues(issues)
	return r
}

// SetIssues replaces the issue list and keeps IssueCount in sync.
// A nil slice is stored as empty so the JSON form is always an array.
func (r *AnalysisResult) SetIssues(issues []Issue) {
	if issues == nil {
		issues = []Issue{}
	}
	r.Issues = issues
	r.IssueCount = len(issues)
}

// Fail turns r into the single-issue error form used for syntax errors and
// internal failures: status error, score 0, no metrics.
func (r *AnalysisResult) Fail(issue Issue) {
	r.Status = StatusError
	r.SetIssues([]Issue{issue})
	r.Meta = Meta{Score: 0}
}

// CopyIssues returns a copy of issues that shares no backing array with the input.
func CopyIssues(issues []Issue) []Issue {
	out := make([]Issue, len(issues))
	copy(out, issues)
	return out
}
