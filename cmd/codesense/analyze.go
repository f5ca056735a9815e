package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codesense/internal/analysis"
	"github.com/dusk-indust/codesense/internal/store"
)

var (
	// errBelowThreshold is returned when --fail-under is not met.
	errBelowThreshold = errors.New("score below threshold")

	// errEphemeralHistory is returned by --record when the configured store
	// would drop the record on exit.
	errEphemeralHistory = errors.New("--record needs a persistent history store (set server.store: kuzu and server.kuzuPath)")
)

type analyzeFlags struct {
	Language  string
	Format    string
	FailUnder int
	Record    bool
	Jobs      int
}

func (f *analyzeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Language, "language", "l", "", "python, javascript (js) or cpp (c++); default: guessed from the file extension, else python")
	cmd.Flags().StringVarP(&f.Format, "format", "f", "text", "output format: text or json")
	cmd.Flags().IntVar(&f.FailUnder, "fail-under", 0, "exit with an error when the score is below this value")
	cmd.Flags().BoolVar(&f.Record, "record", false, "save the result to the configured history store")
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var flags analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Lint, measure and score source snippets",
		Long: `Analyze reads a file (or stdin when the file is "-" or omitted), runs the
analysis for its language and prints the issues and the 0-100 score.
Several files are analyzed in parallel; --fail-under then applies to the
lowest score.

Example:
  codesense analyze app.py
  cat main.cpp | codesense analyze -l cpp --format json
  codesense analyze service.js --fail-under 90
  codesense analyze src/*.py --jobs 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return a.analyzeFiles(cmd, args, flags)
			}
			code, lang, err := readSource(cmd.InOrStdin(), args, flags.Language)
			if err != nil {
				return err
			}

			result := a.analyzer().Analyze(cmd.Context(), code, lang)
			if flags.Record {
				if err := a.record(cmd.Context(), store.NewRecord(result, nil)); err != nil {
					return err
				}
			}

			if err := writeAnalysis(cmd.OutOrStdout(), flags.Format, result); err != nil {
				return err
			}
			return checkThreshold(result.Meta.Score, flags.FailUnder)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&flags.Jobs, "jobs", "j", 0, "files analyzed at once (default: GOMAXPROCS)")
	return cmd
}

// analyzeFiles runs the batch form of analyze.
func (a *app) analyzeFiles(cmd *cobra.Command, paths []string, flags analyzeFlags) error {
	jobs := make([]analysis.Job, 0, len(paths))
	for _, path := range paths {
		if path == "-" {
			return fmt.Errorf("stdin cannot be combined with other files")
		}
		code, lang, err := readSource(nil, []string{path}, flags.Language)
		if err != nil {
			return err
		}
		jobs = append(jobs, analysis.Job{Name: path, Code: code, Language: lang})
	}

	results, err := a.analyzer().AnalyzeAll(cmd.Context(), jobs, analysis.BatchOptions{Concurrency: flags.Jobs})
	if err != nil {
		return err
	}

	lowest := analysis.MaxScore
	records := make([]store.Record, 0, len(results))
	for _, r := range results {
		lowest = min(lowest, r.Result.Meta.Score)
		records = append(records, store.NewRecord(r.Result, nil))
	}
	if flags.Record {
		if err := a.record(cmd.Context(), records...); err != nil {
			return err
		}
	}

	if err := writeBatch(cmd.OutOrStdout(), flags.Format, results); err != nil {
		return err
	}
	return checkThreshold(lowest, flags.FailUnder)
}

func newReviewCmd(a *app) *cobra.Command {
	var flags analyzeFlags
	cmd := &cobra.Command{
		Use:   "review [file]",
		Short: "Analyze a snippet and print a code review",
		Long: `Review analyzes the snippet, then derives a quality score, a readability
score, performance hints, feedback lines and a summary verdict.

Example:
  codesense review handler.js
  codesense review -l python --format json < script.py`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, lang, err := readSource(cmd.InOrStdin(), args, flags.Language)
			if err != nil {
				return err
			}

			result := a.analyzer().Analyze(cmd.Context(), code, lang)
			rv := a.reviewer().Build(result)
			if flags.Record {
				if err := a.record(cmd.Context(), store.NewRecord(result, &rv)); err != nil {
					return err
				}
			}

			if err := writeReview(cmd.OutOrStdout(), flags.Format, result, rv); err != nil {
				return err
			}
			return checkThreshold(rv.Score, flags.FailUnder)
		},
	}
	flags.register(cmd)
	return cmd
}

// readSource reads the snippet named by args, or stdin, and resolves its
// language: the flag wins, then the file extension, then the analyzer's
// default.
func readSource(stdin io.Reader, args []string, language string) (string, string, error) {
	path := "-"
	if len(args) > 0 {
		path = args[0]
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", path, err)
	}

	if language == "" && path != "-" {
		if lang, ok := analysis.LanguageForPath(path); ok {
			language = string(lang)
		}
	}
	return string(data), language, nil
}

func checkThreshold(score, floor int) error {
	if floor > 0 && score < floor {
		return fmt.Errorf("%w: %d < %d", errBelowThreshold, score, floor)
	}
	return nil
}

// record saves recs to the configured history store.
func (a *app) record(ctx context.Context, recs ...store.Record) error {
	if !store.Persistent(a.cfg.Server) {
		return errEphemeralHistory
	}
	history, err := a.openHistory(ctx)
	if err != nil {
		return err
	}
	defer history.Close()

	for _, rec := range recs {
		if err := history.Save(ctx, rec); err != nil {
			return fmt.Errorf("record analysis: %w", err)
		}
		a.logger.Info("analysis recorded", "id", rec.ID, "backend", a.cfg.Server.Store)
	}
	return nil
}
