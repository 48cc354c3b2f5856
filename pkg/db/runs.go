package db

import (
	"time"
)

// Run represents one recorded pipeline invocation.
type Run struct {
	RunID      int64
	StartedAt  time.Time
	FinishedAt *time.Time
	Total      int
	Succeeded  int
	Failed     int
}

// RunResult is the per-pokemon outcome within a run.
type RunResult struct {
	PokemonID    int
	Status       string // "success" or "failed"
	Stage        string
	ErrorMessage string
}

// CreateRun inserts a new run row and returns its id.
func (db *DB) CreateRun(total int) (int64, error) {
	result, err := db.Exec("INSERT INTO runs (total) VALUES (?)", total)
	if err != nil {
		return 0, &StorageError{Op: "create run", Err: err}
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, &StorageError{Op: "create run", Err: err}
	}
	return runID, nil
}

// RecordRunResult stores the outcome for one pokemon id in a run.
func (db *DB) RecordRunResult(runID int64, res RunResult) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO run_results (run_id, pokemon_id, status, stage, error_message)
		VALUES (?, ?, ?, ?, ?)
	`, runID, res.PokemonID, res.Status, res.Stage, res.ErrorMessage)
	if err != nil {
		return &StorageError{Op: "record run result", Err: err}
	}
	return nil
}

// FinishRun stamps the run's end time and final counts.
func (db *DB) FinishRun(runID int64, succeeded, failed int) error {
	_, err := db.Exec(`
		UPDATE runs
		SET finished_at = CURRENT_TIMESTAMP, succeeded = ?, failed = ?
		WHERE run_id = ?
	`, succeeded, failed, runID)
	if err != nil {
		return &StorageError{Op: "finish run", Err: err}
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT run_id, started_at, finished_at, total, succeeded, failed
		FROM runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, &StorageError{Op: "list runs", Err: err}
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished *time.Time
		if err := rows.Scan(&r.RunID, &r.StartedAt, &finished, &r.Total, &r.Succeeded, &r.Failed); err != nil {
			return nil, &StorageError{Op: "scan run", Err: err}
		}
		r.FinishedAt = finished
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunResults returns the per-pokemon outcomes of a run.
func (db *DB) GetRunResults(runID int64) ([]RunResult, error) {
	rows, err := db.Query(`
		SELECT pokemon_id, status, stage, error_message
		FROM run_results
		WHERE run_id = ?
		ORDER BY pokemon_id
	`, runID)
	if err != nil {
		return nil, &StorageError{Op: "get run results", Err: err}
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var res RunResult
		var stage, errMsg *string
		if err := rows.Scan(&res.PokemonID, &res.Status, &stage, &errMsg); err != nil {
			return nil, &StorageError{Op: "scan run result", Err: err}
		}
		if stage != nil {
			res.Stage = *stage
		}
		if errMsg != nil {
			res.ErrorMessage = *errMsg
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
