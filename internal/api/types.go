package api

import (
	"github.com/dusk-indust/codesense/internal/report"
	"github.com/dusk-indust/codesense/internal/store"
)

// AnalyzeRequest is the body of POST /v1/analyze and the legacy
// POST /metrics/. A missing language means Python.
type AnalyzeRequest struct {
	Code     *string `json:"code" binding:"required"`
	Language string  `json:"language"`
}

// ReviewRequest is the body of POST /v1/review.
type ReviewRequest struct {
	Code     string `json:"code" binding:"required,notblank"`
	Language string `json:"language" binding:"required,codelang"`
}

// ReviewResponse combines an analysis with its review.
type ReviewResponse struct {
	Status           report.Status   `json:"status"`
	Language         report.Language `json:"language"`
	Issues           []report.Issue  `json:"issues"`
	AnalysisScore    int             `json:"analysis_score"`
	ReviewScore      int             `json:"review_score"`
	ReadabilityScore int             `json:"readability_score"`
	Summary          string          `json:"summary"`
	Feedback         []string        `json:"feedback"`
	Performance      []string        `json:"performance"`
	AnalysisID       string          `json:"analysis_id,omitempty"`
}

// HealthResponse is returned by GET /.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// HistoryResponse lists stored analyses.
type HistoryResponse struct {
	Records []store.Record `json:"records"`
	Count   int            `json:"count"`
}

// ErrorResponse is the body of every 4xx/5xx reply.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code,omitempty"`
}
