package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/tuneport/tuneport/internal/services"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
)

// likedEntryID marks the synthetic liked-songs row in the playlist list.
const likedEntryID = "LM"

// playlistItem wraps [services.SourcePlaylist] to implement [list.Item].
type playlistItem struct {
	playlist services.SourcePlaylist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	if i.playlist.SourceID == likedEntryID {
		return "your liked songs"
	}
	if i.playlist.TrackCount > 0 {
		return fmt.Sprintf("%d tracks", i.playlist.TrackCount)
	}
	return "playlist"
}

// trackItem wraps [services.SourceItem] to implement [list.Item].
type trackItem struct {
	track services.SourceItem
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string       { return i.track.Title }
func (i trackItem) Description() string { return i.track.RawArtist }
