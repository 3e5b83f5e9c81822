package match

import (
	"testing"

	"github.com/tuneport/tuneport/internal/services"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		item services.SourceItem
		want SearchKey
	}{
		{
			name: "topic marker stripped",
			item: services.SourceItem{Title: "Song A", RawArtist: "Band B - Topic"},
			want: SearchKey{Title: "Song A", Artist: "Band B"},
		},
		{
			name: "no marker unchanged",
			item: services.SourceItem{Title: "Song C", RawArtist: "Band D"},
			want: SearchKey{Title: "Song C", Artist: "Band D"},
		},
		{
			name: "marker mid-label truncates at first occurrence",
			item: services.SourceItem{Title: "Song", RawArtist: "Duo - Topic Heavy - Topic"},
			want: SearchKey{Title: "Song", Artist: "Duo"},
		},
		{
			name: "whitespace trimmed",
			item: services.SourceItem{Title: "  Song  ", RawArtist: "  Band  "},
			want: SearchKey{Title: "Song", Artist: "Band"},
		},
		{
			name: "empty artist",
			item: services.SourceItem{Title: "Instrumental"},
			want: SearchKey{Title: "Instrumental"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.item)
			if got != tt.want {
				t.Errorf("Extract() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	item := services.SourceItem{Title: "Song A", RawArtist: "Band B - Topic", SourceID: "v1"}
	first := Extract(item)
	for range 5 {
		if got := Extract(item); got != first {
			t.Fatalf("Extract() not deterministic: %+v != %+v", got, first)
		}
	}
}
