package main

import (
	"context"
	"time"

	"github.com/tuneport/tuneport/internal/formatter"
	"github.com/tuneport/tuneport/internal/repositories"
	"github.com/urfave/cli/v3"
)

// ReportList prints the persisted transfer runs, newest first.
func (r *Runner) ReportList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}

	runs, err := repositories.NewRunRepository(db).ListRuns()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		return r.writePlain("No transfer runs recorded yet.\n")
	}

	r.writePlainHeader("Transfer Runs")
	for _, run := range runs {
		r.writePlain("%s  %s  %d tracks (%d matched, %d unmatched, %d errored)\n",
			run.ID, run.StartedAt.Format(time.RFC3339), run.Total, run.Matched, run.Unmatched, run.Errored)
	}

	return nil
}

// ReportShow prints the per-track outcomes of one run.
func (r *Runner) ReportShow(ctx context.Context, cmd *cli.Command) error {
	runID := cmd.String("id")
	failedOnly := cmd.Bool("failed-only")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}

	repo := repositories.NewRunRepository(db)
	run, err := repo.GetRun(runID)
	if err != nil {
		return err
	}
	outcomes, err := repo.ListOutcomes(runID)
	if err != nil {
		return err
	}

	r.writePlainHeader("Run " + run.ID)
	r.writePlain("Started: %s\n", run.StartedAt.Format(time.RFC3339))
	r.writePlain("Tracks: %d total, %d matched, %d unmatched, %d errored\n\n", run.Total, run.Matched, run.Unmatched, run.Errored)

	for _, o := range outcomes {
		switch {
		case o.WriteError != "":
			r.writePlain("✗ %s - %s (write failed: %s)\n", o.Artist, o.Title, o.WriteError)
		case !o.Matched:
			r.writePlain("✗ %s - %s (no match)\n", o.Artist, o.Title)
		default:
			if failedOnly {
				continue
			}
			r.writePlain("✓ %s - %s → %s\n", o.Artist, o.Title, o.DestURI)
		}
	}

	return nil
}

// ReportExport writes one run to a CSV, Markdown, or JSON file.
func (r *Runner) ReportExport(ctx context.Context, cmd *cli.Command) error {
	runID := cmd.String("id")
	format := cmd.String("format")
	output := cmd.String("output")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}

	repo := repositories.NewRunRepository(db)
	run, err := repo.GetRun(runID)
	if err != nil {
		return err
	}
	outcomes, err := repo.ListOutcomes(runID)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(&formatter.RunExport{Run: run, Outcomes: outcomes}, format, output)
	if err != nil {
		return err
	}

	r.logger.Info("run exported", "id", runID, "format", format, "path", path)
	return r.writePlain("✓ Exported run %s to %s\n", runID, path)
}
