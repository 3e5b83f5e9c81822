package main

import (
	"context"
	"fmt"

	"github.com/tuneport/tuneport/internal/report"
	"github.com/tuneport/tuneport/internal/services"
	"github.com/tuneport/tuneport/internal/shared"
	"github.com/tuneport/tuneport/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TransferRun migrates the liked songs and every playlist in the source library.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	sync, rep, err := r.synchronizer()
	if err != nil {
		return err
	}

	r.logger.Info("starting full library transfer")
	r.writePlain("Starting library transfer...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.printProgress(progressCh)
	}()

	result, runErr := sync.Run(ctx, progressCh)
	close(progressCh)
	<-done

	r.persistRun(rep)

	if runErr != nil {
		return runErr
	}

	r.writePlain("\n")
	r.writePlainHeader("Transfer Complete!")
	if result.Liked != nil {
		r.printSyncSummary(result.Liked)
	}
	for _, res := range result.Playlists {
		r.printSyncSummary(res)
	}

	if result.ListErr != nil {
		r.writePlain("\nPlaylist listing was cut short: %v\n", result.ListErr)
	}
	if len(result.Failures) > 0 {
		r.writePlain("\n%d playlist(s) could not be started:\n", len(result.Failures))
		for _, f := range result.Failures {
			r.writePlain("  - %s: %v\n", f.Name, f.Err)
		}
	}

	r.writePlain("\nRun ID: %s (see 'report show --id %s')\n", rep.ID, rep.ID)
	return nil
}

// TransferLikes migrates only the liked-songs collection.
func (r *Runner) TransferLikes(ctx context.Context, cmd *cli.Command) error {
	sync, rep, err := r.synchronizer()
	if err != nil {
		return err
	}

	r.logger.Info("starting liked-songs transfer")
	r.writePlain("Transferring liked songs...\n\n")

	result, runErr := r.runOne(ctx, rep, func(progressCh chan tasks.ProgressUpdate) (*tasks.SyncResult, error) {
		return sync.SyncLiked(ctx, progressCh)
	})
	if runErr != nil {
		return runErr
	}

	r.writePlain("\n")
	r.writePlainHeader("Transfer Complete!")
	r.printSyncSummary(result)
	r.writePlain("\nRun ID: %s\n", rep.ID)
	return nil
}

// TransferPlaylist migrates a single source playlist by ID.
func (r *Runner) TransferPlaylist(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	destName := cmd.String("name")

	sync, rep, err := r.synchronizer()
	if err != nil {
		return err
	}

	pl, err := r.findPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}
	if destName != "" {
		pl.Name = destName
	}

	r.logger.Info("starting playlist transfer", "source", pl.SourceID, "name", pl.Name)
	r.writePlain("Transferring playlist %q...\n\n", pl.Name)

	result, runErr := r.runOne(ctx, rep, func(progressCh chan tasks.ProgressUpdate) (*tasks.SyncResult, error) {
		return sync.SyncPlaylist(ctx, progressCh, *pl)
	})
	if runErr != nil {
		return runErr
	}

	r.writePlain("\n")
	r.writePlainHeader("Transfer Complete!")
	r.printSyncSummary(result)
	r.writePlain("\nRun ID: %s\n", rep.ID)
	return nil
}

// runOne executes a single-playlist operation with progress printing and run
// persistence around it.
func (r *Runner) runOne(ctx context.Context, rep *report.Report, op func(chan tasks.ProgressUpdate) (*tasks.SyncResult, error)) (*tasks.SyncResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.printProgress(progressCh)
	}()

	result, err := op(progressCh)
	close(progressCh)
	<-done

	r.persistRun(rep)
	return result, err
}

// findPlaylist resolves a playlist ID against the source listing.
func (r *Runner) findPlaylist(ctx context.Context, playlistID string) (*services.SourcePlaylist, error) {
	if playlistID == services.LikedPlaylistID {
		return &services.SourcePlaylist{SourceID: services.LikedPlaylistID, Name: "Liked Songs"}, nil
	}

	reader, err := r.reader()
	if err != nil {
		return nil, err
	}

	playlists, err := reader.Playlists().Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list source playlists: %w", err)
	}

	for _, pl := range playlists {
		if pl.SourceID == playlistID {
			return &pl, nil
		}
	}

	return nil, fmt.Errorf("%w: no source playlist with ID %q", shared.ErrPlaylistNotFound, playlistID)
}

func (r *Runner) printProgress(progressCh <-chan tasks.ProgressUpdate) {
	for update := range progressCh {
		switch update.Phase {
		case tasks.ListPlaylists:
			r.writePlain("📋 %s\n", update.Message)
		case tasks.CreatePlaylist:
			r.writePlain("\n📝 %s\n", update.Message)
		case tasks.MatchTracks:
			r.writePlain("   %s\n", update.Message)
		case tasks.WriteBatch:
			r.writePlain("📤 %s\n", update.Message)
		case tasks.PlaylistDone:
			r.writePlain("✔ %s\n", update.Message)
		}
	}
}

func (r *Runner) printSyncSummary(res *tasks.SyncResult) {
	s := res.Summary
	r.writePlain("%s → %s: %d/%d matched, %d unmatched, %d write failures\n",
		res.SourceName, res.Playlist.Name, s.Matched, s.Total, s.Unmatched, s.Errored)
	if res.FetchErr != nil {
		r.writePlain("  (source listing was cut short: %v)\n", res.FetchErr)
	}
}
