// Package store keeps the history of completed analyses.
package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dusk-indust/codesense/internal/config"
	"github.com/dusk-indust/codesense/internal/report"
)

var (
	// ErrNotFound is returned by Get for an unknown record id.
	ErrNotFound = errors.New("store: record not found")

	// ErrDuplicateID is returned by Save when the id is already stored.
	ErrDuplicateID = errors.New("store: duplicate record id")

	// ErrKuzuUnavailable is returned by Open when the binary was built
	// without cgo and the kuzu backend is requested.
	ErrKuzuUnavailable = errors.New("store: kuzu backend requires cgo")
)

// Store is the interface for the analysis history backend.
// Implementations: KuzuStore (persistent), MemStore (default and tests).
type Store interface {
	io.Closer

	// InitSchema is called once before any record is saved.
	InitSchema(ctx context.Context) error

	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, newest first. A limit <= 0
	// returns every record.
	List(ctx context.Context, limit int) ([]Record, error)

	Stats(ctx context.Context) (*Stats, error)
}

// Record is one stored analysis.
type Record struct {
	ID          string                      `json:"id"`
	Language    report.Language             `json:"language"`
	Status      report.Status               `json:"status"`
	Score       int                         `json:"score"`
	ReviewScore int                         `json:"review_score"`
	IssueCount  int                         `json:"issue_count"`
	Issues      []report.Issue              `json:"issues"`
	Functions   []report.FunctionComplexity `json:"functions"`
	CreatedAt   time.Time                   `json:"created_at"`
}

// KindCount is the number of stored issues of one kind.
type KindCount struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// Stats aggregates the stored history.
type Stats struct {
	Total        int         `json:"total"`
	MeanScore    float64     `json:"mean_score"`
	IssuesByKind []KindCount `json:"issues_by_kind"`
}

// NewRecord captures result, and the review score when rv is non-nil, under
// a fresh id.
func NewRecord(result report.AnalysisResult, rv *report.Review) Record {
	rec := Record{
		ID:         uuid.NewString(),
		Language:   result.Language,
		Status:     result.Status,
		Score:      result.Meta.Score,
		IssueCount: result.IssueCount,
		Issues:     report.CopyIssues(result.Issues),
		Functions:  slices.Clone(result.Meta.Complexity),
		CreatedAt:  time.Now().UTC(),
	}
	if rec.Functions == nil {
		rec.Functions = []report.FunctionComplexity{}
	}
	if rv != nil {
		rec.ReviewScore = rv.Score
	}
	return rec
}

// Persistent reports whether cfg selects a backend that outlives the
// process: kuzu with an on-disk path.
func Persistent(cfg config.Server) bool {
	return cfg.Store == "kuzu" && cfg.KuzuPath != "" && cfg.KuzuPath != ":memory:"
}

// Open returns the backend selected by cfg.Store with its schema
// initialized.
func Open(ctx context.Context, cfg config.Server) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Store {
	case "", "memory":
		s = NewMemStore()
	case "kuzu":
		s, err = openKuzu(cfg.KuzuPath)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Store)
	}
	if err := s.InitSchema(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// sortKindCounts orders counts by descending count, then kind.
func sortKindCounts(counts []KindCount) {
	slices.SortFunc(counts, func(a, b KindCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
}
