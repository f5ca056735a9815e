//go:build cgo

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/codesense/internal/report"
)

// KuzuStore implements Store on KuzuDB. Each analysis is an Analysis node
// linked to its Issue nodes by FOUND and to its FunctionMetric nodes by
// MEASURED. It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	mu   sync.Mutex // serializes use of conn
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

func openKuzu(path string) (Store, error) {
	if path == "" || path == ":memory:" {
		return NewKuzuStore()
	}
	return NewKuzuFileStore(path)
}

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzuDatabase(":memory:")
}

// NewKuzuFileStore creates a KuzuStore persisted at dbPath. KuzuDB creates
// the leaf directory itself; parent directories are created here.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzuDatabase(dbPath)
}

func openKuzuDatabase(path string) (*KuzuStore, error) {
	db, err := kuzu.OpenDatabase(path, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database %s: %w", path, err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Analysis(
		id STRING,
		language STRING,
		status STRING,
		score INT64,
		review_score INT64,
		issue_count INT64,
		created_at INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Issue(
		id STRING,
		seq INT64,
		kind STRING,
		detail STRING,
		line INT64,
		severity STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS FunctionMetric(
		id STRING,
		seq INT64,
		name STRING,
		complexity INT64,
		line INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS FOUND(FROM Analysis TO Issue)`,
	`CREATE REL TABLE IF NOT EXISTS MEASURED(FROM Analysis TO FunctionMetric)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// Save inserts the Analysis node, then one Issue and one FunctionMetric node per
// entry, each linked back to the analysis.
func (s *KuzuStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.count("MATCH (a:Analysis {id: $id}) RETURN count(a)", map[string]any{"id": rec.ID})
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}

	err = s.exec(
		`CREATE (a:Analysis {
			id: $id,
			language: $lang,
			status: $status,
			score: $score,
			review_score: $review,
			issue_count: $count,
			created_at: $created
		})`,
		map[string]any{
			"id":      rec.ID,
			"lang":    string(rec.Language),
			"status":  string(rec.Status),
			"score":   int64(rec.Score),
			"review":  int64(rec.ReviewScore),
			"count":   int64(rec.IssueCount),
			"created": rec.CreatedAt.UnixNano(),
		},
	)
	if err != nil {
		return err
	}

	for i, is := range rec.Issues {
		childID := fmt.Sprintf("%s/issue/%d", rec.ID, i)
		err := s.exec(
			`CREATE (i:Issue {id: $id, seq: $seq, kind: $kind, detail: $detail, line: $line, severity: $sev})`,
			map[string]any{
				"id":     childID,
				"seq":    int64(i),
				"kind":   is.Kind,
				"detail": is.Detail,
				"line":   int64(is.Line),
				"sev":    string(is.Severity),
			},
		)
		if err != nil {
			return err
		}
		if err := s.link("FOUND", "Issue", rec.ID, childID); err != nil {
			return err
		}
	}

	for i, fc := range rec.Functions {
		childID := fmt.Sprintf("%s/function/%d", rec.ID, i)
		err := s.exec(
			`CREATE (f:FunctionMetric {id: $id, seq: $seq, name: $name, complexity: $cx, line: $line})`,
			map[string]any{
				"id":   childID,
				"seq":  int64(i),
				"name": fc.Name,
				"cx":   int64(fc.Complexity),
				"line": int64(fc.Line),
			},
		)
		if err != nil {
			return err
		}
		if err := s.link("MEASURED", "FunctionMetric", rec.ID, childID); err != nil {
			return err
		}
	}
	return nil
}

// link creates an Analysis -[rel]-> table edge. rel and table are fixed
// internal names, not user input.
func (s *KuzuStore) link(rel, table, analysisID, childID string) error {
	cypher := fmt.Sprintf(
		`MATCH (a:Analysis {id: $src}), (b:%s {id: $dst}) CREATE (a)-[:%s]->(b)`,
		table, rel,
	)
	return s.exec(cypher, map[string]any{"src": analysisID, "dst": childID})
}

// ---------- Read operations ----------

const analysisColumns = "a.id, a.language, a.status, a.score, a.review_score, a.issue_count, a.created_at"

// Get retrieves one record with its issues and functions.
func (s *KuzuStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query(
		"MATCH (a:Analysis {id: $id}) RETURN "+analysisColumns,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	rec := rowToRecord(rows[0])
	if err := s.loadChildren(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns records ordered by creation time, newest first.
func (s *KuzuStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cypher := "MATCH (a:Analysis) RETURN " + analysisColumns + " ORDER BY a.created_at DESC"
	var params map[string]any
	if limit > 0 {
		cypher += " LIMIT $lim"
		params = map[string]any{"lim": int64(limit)}
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		rec := rowToRecord(r)
		if err := s.loadChildren(&rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// loadChildren fills rec.Issues and rec.Functions in their saved order.
func (s *KuzuStore) loadChildren(rec *Record) error {
	issueRows, err := s.query(
		`MATCH (a:Analysis {id: $id})-[:FOUND]->(i:Issue)
		 RETURN i.kind, i.detail, i.line, i.severity ORDER BY i.seq`,
		map[string]any{"id": rec.ID},
	)
	if err != nil {
		return err
	}
	rec.Issues = make([]report.Issue, 0, len(issueRows))
	for _, r := range issueRows {
		rec.Issues = append(rec.Issues, report.Issue{
			Kind:     toString(r[0]),
			Detail:   toString(r[1]),
			Line:     toInt(r[2]),
			Severity: report.Severity(toString(r[3])),
		})
	}

	fnRows, err := s.query(
		`MATCH (a:Analysis {id: $id})-[:MEASURED]->(f:FunctionMetric)
		 RETURN f.name, f.complexity, f.line ORDER BY f.seq`,
		map[string]any{"id": rec.ID},
	)
	if err != nil {
		return err
	}
	rec.Functions = make([]report.FunctionComplexity, 0, len(fnRows))
	for _, r := range fnRows {
		rec.Functions = append(rec.Functions, report.FunctionComplexity{
			Name:       toString(r[0]),
			Complexity: toInt(r[1]),
			Line:       toInt(r[2]),
		})
	}
	return nil
}

// ---------- Stats ----------

// Stats returns the record count, mean score and issue counts by kind.
func (s *KuzuStore) Stats(_ context.Context) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query("MATCH (a:Analysis) RETURN count(a), avg(a.score)", nil)
	if err != nil {
		return nil, err
	}
	st := &Stats{IssuesByKind: []KindCount{}}
	if len(rows) > 0 {
		st.Total = toInt(rows[0][0])
		if st.Total > 0 {
			st.MeanScore = toFloat64(rows[0][1])
		}
	}

	kindRows, err := s.query("MATCH (i:Issue) RETURN i.kind, count(i)", nil)
	if err != nil {
		return nil, err
	}
	for _, r := range kindRows {
		st.IssuesByKind = append(st.IssuesByKind, KindCount{Kind: toString(r[0]), Count: toInt(r[1])})
	}
	sortKindCounts(st.IssuesByKind)
	return st, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a Cypher statement and collects all result rows. Each row is a
// []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value count query.
func (s *KuzuStore) count(cypher string, params map[string]any) (int, error) {
	rows, err := s.query(cypher, params)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// rowToRecord converts an analysisColumns row into a Record without
// children.
func rowToRecord(r []any) Record {
	return Record{
		ID:          toString(r[0]),
		Language:    report.Language(toString(r[1])),
		Status:      report.Status(toString(r[2])),
		Score:       toInt(r[3]),
		ReviewScore: toInt(r[4]),
		IssueCount:  toInt(r[5]),
		CreatedAt:   time.Unix(0, toInt64(r[6])).UTC(),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	return int(toInt64(v))
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
