// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for library migration:
//  1. [PlaylistListView] : Browse the YouTube Music playlists, including the liked-songs entry
//  2. [TrackListView] : Preview the tracks of the chosen playlist
//  3. [ConfirmView] : Confirm the transfer operation
//  4. [TransferView] : Monitor real-time progress updates
//  5. [ResultView] : Display match counts and write failures
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the Synchronizer, providing non-blocking status reporting during transfers.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
