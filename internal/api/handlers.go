// Package api serves the analyzer, the review builder and the analysis
// history over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dusk-indust/codesense/internal/analysis"
	"github.com/dusk-indust/codesense/internal/report"
	"github.com/dusk-indust/codesense/internal/review"
	"github.com/dusk-indust/codesense/internal/store"
)

// Version is reported by the health endpoint. The CLI overrides it with the
// build version.
var Version = "dev"

// Handlers contains the HTTP handlers for codesense.
type Handlers struct {
	analyzer     *analysis.Analyzer
	reviewer     *review.Builder
	history      store.Store
	historyLimit int
}

// NewHandlers creates handlers around the given analyzer and review
// builder. history may be nil, which disables recording and the history
// endpoints answer 503.
func NewHandlers(a *analysis.Analyzer, rb *review.Builder, history store.Store, historyLimit int) *Handlers {
	registerValidators()
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &Handlers{analyzer: a, reviewer: rb, history: history, historyLimit: historyLimit}
}

// HandleHealth handles GET /.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Message: "codesense running",
		Version: Version,
	})
}

// HandleAnalyze handles POST /v1/analyze and the legacy POST /metrics/.
//
// Response:
//
//	200 OK: report.AnalysisResult, with the stored id in X-Analysis-ID
//	400 Bad Request: missing code or malformed body
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalyze")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		msg, code := validationMessage(err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: code})
		return
	}

	result := h.analyzer.Analyze(c.Request.Context(), *req.Code, req.Language)
	logger.Info("Analysis complete",
		"language", result.Language,
		"status", result.Status,
		"issues", result.IssueCount,
		"score", result.Meta.Score)

	if id := h.record(c, logger, result, nil); id != "" {
		c.Header("X-Analysis-ID", id)
	}
	c.JSON(http.StatusOK, result)
}

// HandleReview handles POST /v1/review.
//
// Response:
//
//	200 OK: ReviewResponse
//	400 Bad Request: blank code or a language without an analysis variant
func (h *Handlers) HandleReview(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleReview")

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		msg, code := validationMessage(err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: code})
		return
	}

	result := h.analyzer.Analyze(c.Request.Context(), strings.TrimSpace(req.Code), req.Language)
	rv := h.reviewer.Build(result)
	logger.Info("Review complete",
		"language", result.Language,
		"analysis_score", result.Meta.Score,
		"review_score", rv.Score)

	c.JSON(http.StatusOK, ReviewResponse{
		Status:           result.Status,
		Language:         result.Language,
		Issues:           result.Issues,
		AnalysisScore:    result.Meta.Score,
		ReviewScore:      rv.Score,
		ReadabilityScore: rv.ReadabilityScore,
		Summary:          rv.Summary,
		Feedback:         rv.Feedback,
		Performance:      rv.Performance,
		AnalysisID:       h.record(c, logger, result, &rv),
	})
}

// HandleListHistory handles GET /v1/history?limit=n.
func (h *Handlers) HandleListHistory(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleListHistory")
	if !h.requireHistory(c) {
		return
	}

	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "limit must be a non-negative integer",
				Code:  "INVALID_LIMIT",
			})
			return
		}
		limit = n
	}

	records, err := h.history.List(c.Request.Context(), limit)
	if err != nil {
		logger.Error("Failed to list history", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list history", Code: "HISTORY_FAILED"})
		return
	}
	c.JSON(http.StatusOK, HistoryResponse{Records: records, Count: len(records)})
}

// HandleGetHistory handles GET /v1/history/:id.
func (h *Handlers) HandleGetHistory(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetHistory")
	if !h.requireHistory(c) {
		return
	}

	rec, err := h.history.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Analysis not found", Code: "NOT_FOUND"})
		return
	}
	if err != nil {
		logger.Error("Failed to load analysis", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load analysis", Code: "HISTORY_FAILED"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleHistoryStats handles GET /v1/history/stats.
func (h *Handlers) HandleHistoryStats(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleHistoryStats")
	if !h.requireHistory(c) {
		return
	}

	st, err := h.history.Stats(c.Request.Context())
	if err != nil {
		logger.Error("Failed to compute stats", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to compute stats", Code: "HISTORY_FAILED"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// record saves result to the history and returns its id, or "" when there
// is no history or the save failed. A failed save never fails the request.
func (h *Handlers) record(c *gin.Context, logger *slog.Logger, result report.AnalysisResult, rv *report.Review) string {
	if h.history == nil {
		return ""
	}
	rec := store.NewRecord(result, rv)
	if err := h.history.Save(c.Request.Context(), rec); err != nil {
		logger.Warn("Failed to record analysis", "error", err)
		return ""
	}
	return rec.ID
}

func (h *Handlers) requireHistory(c *gin.Context) bool {
	if h.history != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "History is disabled", Code: "HISTORY_DISABLED"})
	return false
}

// getOrCreateRequestID gets or creates a request ID.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
