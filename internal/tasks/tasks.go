// package tasks implements the playlist synchronization pipeline.
//
// The core abstraction is Synchronizer, which migrates one source playlist
// at a time: create the destination playlist, match every source item, write
// the matched tracks in fixed-size batches, and record one outcome per item
// in the transfer report. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tuneport/tuneport/internal/library"
	"github.com/tuneport/tuneport/internal/match"
	"github.com/tuneport/tuneport/internal/report"
	"github.com/tuneport/tuneport/internal/services"
	"github.com/tuneport/tuneport/internal/shared"
	"golang.org/x/time/rate"
)

// likedPlaylistName is the fixed destination name for the liked-songs
// pseudo-playlist, which has no user-editable name on the source side.
const likedPlaylistName = "Liked Songs"

// State tracks a playlist synchronization through its lifecycle.
//
// There is no failed terminal state: even total write failure completes,
// with every item marked errored in the report. Partial or zero success is
// a reportable outcome, not a fatal condition.
type State int

const (
	StateCreated State = iota
	StatePopulating
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePopulating:
		return "populating"
	case StateCompleted:
		return "completed"
	default:
		return ""
	}
}

// SyncResult describes one synchronized playlist.
type SyncResult struct {
	SourceID   string
	SourceName string
	Playlist   *services.DestinationPlaylist
	State      State
	Summary    report.Summary
	// FetchErr is set when the source pagination failed partway; items
	// matched before the failure were still written.
	FetchErr error
}

// PlaylistFailure records a playlist whose synchronization could not start.
type PlaylistFailure struct {
	SourceID string
	Name     string
	Err      error
}

// RunResult aggregates a full library migration.
type RunResult struct {
	Liked     *SyncResult
	Playlists []*SyncResult
	Failures  []PlaylistFailure
	// ListErr is set when the playlist listing itself failed partway.
	ListErr error
}

// Opts tunes the Synchronizer.
type Opts struct {
	BatchSize  int           // tracks per write call, capped at 20
	BatchPause time.Duration // fixed pause between batch writes
}

// Synchronizer migrates source playlists to the destination platform.
//
// Execution is strictly sequential: one playlist is fully synchronized
// before the next begins, and within a playlist the only suspension points
// are the page fetch, the per-track search, and the per-batch write.
type Synchronizer struct {
	reader  *library.Reader
	matcher *match.Matcher
	dest    services.DestinationClient
	rep     *report.Report
	logger  *log.Logger

	batchSize int
	limiter   *rate.Limiter

	userID string
}

type pendingWrite struct {
	item services.SourceItem
	res  match.Result
}

// NewSynchronizer creates a Synchronizer writing outcomes into rep.
func NewSynchronizer(reader *library.Reader, matcher *match.Matcher, dest services.DestinationClient, rep *report.Report, logger *log.Logger, opts Opts) *Synchronizer {
	if opts.BatchSize <= 0 || opts.BatchSize > 20 {
		opts.BatchSize = 20
	}
	if opts.BatchPause <= 0 {
		opts.BatchPause = time.Second
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Synchronizer{
		reader:    reader,
		matcher:   matcher,
		dest:      dest,
		rep:       rep,
		logger:    logger,
		batchSize: opts.BatchSize,
		// Burst 1 so the first write in a run goes out immediately and every
		// later write waits out the fixed interval.
		limiter: rate.NewLimiter(rate.Every(opts.BatchPause), 1),
	}
}

// Report returns the report outcomes are recorded into.
func (s *Synchronizer) Report() *report.Report { return s.rep }

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (s *Synchronizer) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run migrates the liked-songs pseudo-playlist and every source playlist,
// sequentially. Per-playlist failures are collected and do not stop the run;
// only authentication expiry aborts it.
func (s *Synchronizer) Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error) {
	result := &RunResult{}

	liked, err := s.SyncLiked(ctx, progress)
	if err != nil {
		if errors.Is(err, shared.ErrAuthExpired) {
			return result, err
		}
		result.Failures = append(result.Failures, PlaylistFailure{
			SourceID: services.LikedPlaylistID,
			Name:     likedPlaylistName,
			Err:      err,
		})
	} else {
		result.Liked = liked
	}

	playlists, listErr := s.reader.Playlists().Collect(ctx)
	result.ListErr = listErr
	s.sendProgress(progress, listPlaylistsUpdate(len(playlists)))

	for _, pl := range playlists {
		res, err := s.SyncPlaylist(ctx, progress, pl)
		if err != nil {
			if errors.Is(err, shared.ErrAuthExpired) {
				return result, err
			}
			result.Failures = append(result.Failures, PlaylistFailure{SourceID: pl.SourceID, Name: pl.Name, Err: err})
			continue
		}
		result.Playlists = append(result.Playlists, res)
	}

	return result, nil
}

// SyncLiked migrates the liked-songs pseudo-playlist.
func (s *Synchronizer) SyncLiked(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error) {
	return s.synchronize(ctx, progress, services.LikedPlaylistID, likedPlaylistName,
		"Liked songs migrated from YouTube Music", s.reader.LikedItems())
}

// SyncPlaylist migrates one source playlist.
func (s *Synchronizer) SyncPlaylist(ctx context.Context, progress chan<- ProgressUpdate, pl services.SourcePlaylist) (*SyncResult, error) {
	desc := fmt.Sprintf("Migrated from YouTube Music playlist %q", pl.Name)
	return s.synchronize(ctx, progress, pl.SourceID, pl.Name, desc, s.reader.PlaylistItems(pl.SourceID))
}

// synchronize runs the per-playlist pipeline: create, match, batch-write.
//
// Every item read from the iterator ends up as exactly one report outcome:
// unmatched items are recorded as soon as the matcher resolves them, matched
// items when their batch write settles. A source fetch error stops reading
// but the items matched so far are still written.
func (s *Synchronizer) synchronize(ctx context.Context, progress chan<- ProgressUpdate, sourceID, name, description string, items *library.Iterator[services.SourceItem]) (*SyncResult, error) {
	if s.dest == nil {
		return nil, fmt.Errorf("%w: destination client not initialized", shared.ErrServiceUnavailable)
	}

	if s.userID == "" {
		userID, err := s.dest.CurrentUserID(ctx)
		if err != nil {
			return nil, err
		}
		s.userID = userID
	}

	pl, err := s.dest.CreatePlaylist(ctx, s.userID, name, description, false)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create playlist %q: %v", shared.ErrAPIRequest, name, err)
	}

	result := &SyncResult{SourceID: sourceID, SourceName: name, Playlist: pl, State: StateCreated}
	s.sendProgress(progress, createPlaylistUpdate(name, pl))
	s.logger.Debug("playlist created", "source", sourceID, "dest", pl.ID, "state", result.State)

	result.State = StatePopulating

	var pending []pendingWrite
	step := 0
	for {
		item, ok, err := items.Next(ctx)
		if err != nil {
			result.FetchErr = err
			s.logger.Warn("source fetch aborted", "playlist", name, "err", err)
			break
		}
		if !ok {
			break
		}

		step++
		key := match.Extract(item)
		res, err := s.matcher.Match(ctx, key)
		if err != nil {
			// Only authentication expiry escapes the matcher.
			return result, err
		}

		s.sendProgress(progress, matchTrackUpdate(step, item, res.Matched))

		if res.Matched {
			pending = append(pending, pendingWrite{item: item, res: res})
		} else {
			s.rep.Record(report.Outcome{PlaylistSourceID: sourceID, Item: item, Match: res})
		}
	}

	if err := s.writeBatches(ctx, progress, sourceID, pl.ID, pending); err != nil {
		return result, err
	}

	result.State = StateCompleted
	result.Summary = s.rep.PlaylistSummary(sourceID)
	s.sendProgress(progress, playlistDoneUpdate(name, result))
	s.logger.Info("playlist synchronized",
		"source", sourceID, "dest", pl.ID, "state", result.State,
		"matched", result.Summary.Matched, "unmatched", result.Summary.Unmatched, "errored", result.Summary.Errored)

	return result, nil
}

// writeBatches submits matched tracks in fixed-size batches, preserving the
// original match order across batch boundaries. Each write waits out the
// fixed-rate limiter first; the pause is unconditional, not a reaction to
// rate-limit rejections. A failed batch is recorded per URI and does not
// stop the remaining batches.
func (s *Synchronizer) writeBatches(ctx context.Context, progress chan<- ProgressUpdate, sourceID, playlistID string, pending []pendingWrite) error {
	if len(pending) == 0 {
		return nil
	}

	total := (len(pending) + s.batchSize - 1) / s.batchSize
	for i := 0; i < total; i++ {
		batch := pending[i*s.batchSize : min((i+1)*s.batchSize, len(pending))]

		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		uris := make([]string, len(batch))
		for j, pw := range batch {
			uris[j] = pw.res.URI
		}

		err := s.dest.AddItems(ctx, playlistID, uris)
		if err != nil {
			err = fmt.Errorf("%w: %w", shared.ErrWriteFailed, err)
		}
		s.sendProgress(progress, writeBatchUpdate(i+1, total, len(batch), err))

		for _, pw := range batch {
			s.rep.Record(report.Outcome{PlaylistSourceID: sourceID, Item: pw.item, Match: pw.res, WriteErr: err})
		}

		if err != nil && errors.Is(err, shared.ErrAuthExpired) {
			return err
		}
	}

	return nil
}
