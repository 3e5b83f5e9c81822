package repositories

import (
	"database/sql"
	"fmt"

	"github.com/tuneport/tuneport/internal/report"
)

// RunRepository stores transfer runs and their outcomes.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a RunRepository over the given database connection.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun persists a finished report and all of its outcomes in one
// transaction. The report's own ID becomes the run ID.
func (r *RunRepository) SaveRun(rep *report.Report) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	s := rep.Summary()
	_, err = tx.Exec(
		`INSERT INTO runs (id, started_at, finished_at, total, matched, unmatched, errored) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.StartedAt(), rep.FinishedAt(), s.Total, s.Matched, s.Unmatched, s.Errored,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO outcomes (run_id, playlist_source_id, source_id, title, artist, matched, dest_uri, dest_name, dest_artist, write_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range rep.Outcomes() {
		writeErr := ""
		if o.WriteErr != nil {
			writeErr = o.WriteErr.Error()
		}
		_, err = stmt.Exec(
			rep.ID, o.PlaylistSourceID, o.Item.SourceID, o.Item.Title, o.Item.RawArtist,
			o.Match.Matched, o.Match.URI, o.Match.Name, o.Match.Artist, writeErr,
		)
		if err != nil {
			return fmt.Errorf("failed to insert outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// GetRun retrieves one run by ID.
func (r *RunRepository) GetRun(id string) (*RunRecord, error) {
	row := r.db.QueryRow(
		`SELECT id, started_at, finished_at, total, matched, unmatched, errored FROM runs WHERE id = ?`, id,
	)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	return run, nil
}

// ListRuns retrieves all runs, newest first.
func (r *RunRepository) ListRuns() ([]*RunRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, started_at, finished_at, total, matched, unmatched, errored FROM runs ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// ListOutcomes retrieves a run's outcomes in insertion order.
func (r *RunRepository) ListOutcomes(runID string) ([]*OutcomeRecord, error) {
	rows, err := r.db.Query(`
		SELECT run_id, playlist_source_id, source_id, title, artist, matched, dest_uri, dest_name, dest_artist, write_error
		FROM outcomes
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []*OutcomeRecord
	for rows.Next() {
		var o OutcomeRecord
		err := rows.Scan(
			&o.RunID, &o.PlaylistSourceID, &o.SourceID, &o.Title, &o.Artist,
			&o.Matched, &o.DestURI, &o.DestName, &o.DestArtist, &o.WriteError,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return outcomes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var (
		run        RunRecord
		finishedAt sql.NullTime
	)

	err := row.Scan(&run.ID, &run.StartedAt, &finishedAt, &run.Total, &run.Matched, &run.Unmatched, &run.Errored)
	if err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}

	return &run, nil
}
