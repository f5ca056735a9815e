package analysis

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/codesense/internal/report"
)

// Job is one snippet of a batch.
type Job struct {
	// Name identifies the snippet in results, usually its file path.
	Name     string
	Code     string
	Language string
}

// JobResult holds the outcome of a single Job.
type JobResult struct {
	Name   string                `json:"name"`
	Result report.AnalysisResult `json:"result"`
}

// BatchOptions tunes AnalyzeAll.
type BatchOptions struct {
	// Concurrency caps the snippets analyzed at once. Zero or less means
	// GOMAXPROCS.
	Concurrency int

	// OnResult, if set, is called from the worker goroutines as each job
	// finishes. It must be safe for concurrent use.
	OnResult func(JobResult)
}

// AnalyzeAll analyzes every job in parallel and returns the results in job
// order. Analyze itself never fails, so the only error returned is ctx's.
// Once ctx is done no further job is started: those jobs get an Analyzer
// Failure result carrying ctx's error and are not passed to OnResult.
func (a *Analyzer) AnalyzeAll(ctx context.Context, jobs []Job, opts BatchOptions) ([]JobResult, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]JobResult, len(jobs))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			results[i] = JobResult{
				Name:   job.Name,
				Result: failure(a.variantFor(job.Language).Language(), job.Code, err),
			}
			continue
		}
		g.Go(func() error {
			results[i] = JobResult{
				Name:   job.Name,
				Result: a.Analyze(ctx, job.Code, job.Language),
			}
			if opts.OnResult != nil {
				opts.OnResult(results[i])
			}
			return nil
		})
	}

	_ = g.Wait()
	return results, ctx.Err()
}
