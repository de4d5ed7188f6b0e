package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// Run represents one evaluation run
type Run struct {
	RunID      int64
	RunUUID    string
	CreatedAt  time.Time
	PredPath   string
	GTPath     string
	Matched    int
	PredOnly   int
	GTOnly     int
	Failed     int
	AvgTEDS    float64
	AvgTED     float64
	Clamped    bool
	Workers    int
	DurationMS int64
}

// PairScore is a stored per-pair result
type PairScore struct {
	Key            string
	StructureScore float64
	FullScore      float64
	ErrorType      string
	ErrorMessage   string
	ContentHash    string
}

const runColumns = `run_id, run_uuid, created_at, pred_path, gt_path, matched_count, pred_only_count,
       gt_only_count, failed_count, avg_teds, avg_ted, clamped, workers, duration_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	err := row.Scan(&r.RunID, &r.RunUUID, &r.CreatedAt, &r.PredPath, &r.GTPath, &r.Matched,
		&r.PredOnly, &r.GTOnly, &r.Failed, &r.AvgTEDS, &r.AvgTED, &r.Clamped, &r.Workers, &r.DurationMS)
	return r, err
}

// InsertRun stores a run and returns its id
func (db *DB) InsertRun(r Run) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (run_uuid, pred_path, gt_path, matched_count, pred_only_count, gt_only_count,
		                  failed_count, avg_teds, avg_ted, clamped, workers, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RunUUID, r.PredPath, r.GTPath, r.Matched, r.PredOnly, r.GTOnly,
		r.Failed, r.AvgTEDS, r.AvgTED, r.Clamped, r.Workers, r.DurationMS)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// InsertPairScores stores every pair of a run in one transaction
func (db *DB) InsertPairScores(runID int64, scores []PairScore) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO pair_scores (run_id, pair_key, structure_score, full_score, error_type, error_message, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare pair score insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range scores {
		if _, err := stmt.Exec(runID, s.Key, s.StructureScore, s.FullScore,
			NewNullString(s.ErrorType), NewNullString(s.ErrorMessage), NewNullString(s.ContentHash)); err != nil {
			return fmt.Errorf("failed to insert pair score %s: %w", s.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pair scores: %w", err)
	}
	return nil
}

// GetRunByID retrieves a run by its ID
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	r, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

// ListRuns retrieves runs ordered by most recent first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, run_id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunScores retrieves all pair scores of a run in key order
func (db *DB) GetRunScores(runID int64) ([]PairScore, error) {
	return db.queryScores(`
		SELECT pair_key, structure_score, full_score, error_type, error_message, content_hash
		FROM pair_scores
		WHERE run_id = ?
		ORDER BY pair_key
	`, runID)
}

// GetWorstScores retrieves the limit lowest full-table scores of a run
func (db *DB) GetWorstScores(runID int64, limit int) ([]PairScore, error) {
	return db.queryScores(`
		SELECT pair_key, structure_score, full_score, error_type, error_message, content_hash
		FROM pair_scores
		WHERE run_id = ?
		ORDER BY full_score ASC, pair_key ASC
		LIMIT ?
	`, runID, limit)
}

func (db *DB) queryScores(query string, args ...any) ([]PairScore, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get pair scores: %w", err)
	}
	defer rows.Close()

	var scores []PairScore
	for rows.Next() {
		var s PairScore
		var errorType, errorMessage, contentHash sql.NullString
		if err := rows.Scan(&s.Key, &s.StructureScore, &s.FullScore, &errorType, &errorMessage, &contentHash); err != nil {
			return nil, fmt.Errorf("failed to scan pair score: %w", err)
		}
		s.ErrorType = errorType.String
		s.ErrorMessage = errorMessage.String
		s.ContentHash = contentHash.String
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// NewNullString creates a sql.NullString from a string value.
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
