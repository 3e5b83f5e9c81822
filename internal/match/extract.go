// package match derives canonical search keys from source items and resolves
// them against the destination catalog.
package match

import (
	"strings"

	"github.com/tuneport/tuneport/internal/services"
)

// topicMarker is the fixed suffix YouTube Music appends to auto-generated
// artist channels ("Band - Topic").
const topicMarker = " - Topic"

// SearchKey is the normalized (title, artist) pair used to query the
// destination catalog.
type SearchKey struct {
	Title  string
	Artist string
}

// Extract derives a SearchKey from a raw source item.
//
// If the raw artist label contains the topic marker, the label is truncated
// at its first occurrence. Known limitation: an artist whose display name
// legitimately contains " - Topic" elsewhere gets over-truncated; the
// heuristic has no way to tell the two apart, and mismatches from it show up
// as unmatched tracks in the report rather than wrong matches.
func Extract(item services.SourceItem) SearchKey {
	artist := item.RawArtist
	if idx := strings.Index(artist, topicMarker); idx >= 0 {
		artist = artist[:idx]
	}

	return SearchKey{
		Title:  strings.TrimSpace(item.Title),
		Artist: strings.TrimSpace(artist),
	}
}
