package tasks

import (
	"fmt"

	"github.com/tuneport/tuneport/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ListPlaylists Phase = iota
	CreatePlaylist
	MatchTracks
	WriteBatch
	PlaylistDone
)

func (p Phase) String() string {
	switch p {
	case ListPlaylists:
		return "list_playlists"
	case CreatePlaylist:
		return "create_playlist"
	case MatchTracks:
		return "match_tracks"
	case WriteBatch:
		return "write_batch"
	case PlaylistDone:
		return "playlist_done"
	default:
		return ""
	}
}

func listPlaylistsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d source playlists", count),
	}
}

func createPlaylistUpdate(name string, pl *services.DestinationPlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Created destination playlist: %s (ID: %s)", name, pl.ID),
		Data:    pl,
	}
}

func matchTrackUpdate(step int, item services.SourceItem, matched bool) ProgressUpdate {
	verdict := "✗"
	if matched {
		verdict = "✓"
	}
	return ProgressUpdate{
		Phase:   MatchTracks,
		Step:    step,
		Message: fmt.Sprintf("[%d] %s %s - %s", step, verdict, item.RawArtist, item.Title),
	}
}

func writeBatchUpdate(step, total, size int, err error) ProgressUpdate {
	msg := fmt.Sprintf("Wrote batch %d/%d (%d tracks)", step, total, size)
	if err != nil {
		msg = fmt.Sprintf("Batch %d/%d failed: %v", step, total, err)
	}
	return ProgressUpdate{
		Phase:   WriteBatch,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}

func playlistDoneUpdate(name string, result *SyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlaylistDone,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Finished %s: %d matched, %d unmatched, %d errored", name, result.Summary.Matched, result.Summary.Unmatched, result.Summary.Errored),
		Data:    result,
	}
}
