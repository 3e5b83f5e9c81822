package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/tuneport/tuneport/internal/library"
	"github.com/tuneport/tuneport/internal/match"
	"github.com/tuneport/tuneport/internal/report"
	"github.com/tuneport/tuneport/internal/services"
	"github.com/tuneport/tuneport/internal/shared"
)

// fakeSource serves canned pages. Liked items are split into pages of
// pageSize to exercise pagination through the synchronizer.
type fakeSource struct {
	liked     []services.SourceItem
	playlists []services.SourcePlaylist
	items     map[string][]services.SourceItem
	pageSize  int

	// failLikedPage fails the fetch of the given 1-based liked page.
	failLikedPage int
	likedFetches  int
}

func (f *fakeSource) page(all []services.SourceItem, token string) (*services.ItemPage, error) {
	start := 0
	if token != "" {
		fmt.Sscanf(token, "p%d", &start)
	}
	size := f.pageSize
	if size <= 0 {
		size = len(all)
	}
	end := min(start+size, len(all))
	next := ""
	if end < len(all) {
		next = fmt.Sprintf("p%d", end)
	}
	return &services.ItemPage{Items: all[start:end], NextToken: next}, nil
}

func (f *fakeSource) LikedPage(ctx context.Context, token string) (*services.ItemPage, error) {
	f.likedFetches++
	if f.failLikedPage > 0 && f.likedFetches == f.failLikedPage {
		return nil, fmt.Errorf("%w: proxy gone", shared.ErrUpstreamUnavailable)
	}
	return f.page(f.liked, token)
}

func (f *fakeSource) PlaylistsPage(ctx context.Context, token string) (*services.PlaylistPage, error) {
	return &services.PlaylistPage{Items: f.playlists}, nil
}

func (f *fakeSource) PlaylistItemsPage(ctx context.Context, playlistID, token string) (*services.ItemPage, error) {
	return f.page(f.items[playlistID], token)
}

// fakeDest matches every searched track unless its title is listed in
// noMatch, and records every AddItems call.
type fakeDest struct {
	noMatch     map[string]bool
	searchErr   error
	createErr   map[string]error
	failBatch   map[int]error // 1-based AddItems call number to fail
	batches     [][]string
	created     []services.DestinationPlaylist
	createdFlag []bool // public flag per CreatePlaylist call
}

func (d *fakeDest) CurrentUserID(ctx context.Context) (string, error) { return "user1", nil }

func (d *fakeDest) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*services.DestinationPlaylist, error) {
	if err := d.createErr[name]; err != nil {
		return nil, err
	}
	pl := services.DestinationPlaylist{ID: "dest-" + name, Name: name, Description: description}
	d.created = append(d.created, pl)
	d.createdFlag = append(d.createdFlag, public)
	return &pl, nil
}

func (d *fakeDest) SearchTrack(ctx context.Context, title, artist string) (*services.TrackCandidate, error) {
	if d.searchErr != nil {
		return nil, d.searchErr
	}
	if d.noMatch[title] {
		return nil, nil
	}
	return &services.TrackCandidate{URI: "spotify:track:" + title, Name: title, Artist: artist}, nil
}

func (d *fakeDest) AddItems(ctx context.Context, playlistID string, uris []string) error {
	d.batches = append(d.batches, uris)
	if err := d.failBatch[len(d.batches)]; err != nil {
		return err
	}
	return nil
}

func likedItems(n int) []services.SourceItem {
	items := make([]services.SourceItem, n)
	for i := range n {
		items[i] = services.SourceItem{
			Title:     fmt.Sprintf("Song %02d", i),
			RawArtist: fmt.Sprintf("Band %02d", i),
			SourceID:  fmt.Sprintf("vid%02d", i),
		}
	}
	return items
}

func newTestSynchronizer(src *fakeSource, dest *fakeDest) *Synchronizer {
	logger := shared.NewLogger(io.Discard)
	reader := library.NewReader(src)
	matcher := match.NewMatcher(dest, nil, logger)
	rep := report.New(logger)
	return NewSynchronizer(reader, matcher, dest, rep, logger, Opts{
		BatchSize:  20,
		BatchPause: time.Millisecond,
	})
}

func TestSyncLikedBatchSizes(t *testing.T) {
	src := &fakeSource{liked: likedItems(45), pageSize: 10}
	dest := &fakeDest{}
	s := newTestSynchronizer(src, dest)

	res, err := s.SyncLiked(context.Background(), nil)
	if err != nil {
		t.Fatalf("SyncLiked() error = %v", err)
	}
	if res.State != StateCompleted {
		t.Errorf("state = %v, want completed", res.State)
	}

	want := []int{20, 20, 5}
	if len(dest.batches) != len(want) {
		t.Fatalf("AddItems called %d times, want %d", len(dest.batches), len(want))
	}
	for i, size := range want {
		if len(dest.batches[i]) != size {
			t.Errorf("batch %d has %d URIs, want %d", i+1, len(dest.batches[i]), size)
		}
	}

	// Order is preserved across batch boundaries.
	if dest.batches[1][0] != "spotify:track:Song 20" {
		t.Errorf("second batch starts with %q, want Song 20", dest.batches[1][0])
	}
	if dest.batches[2][4] != "spotify:track:Song 44" {
		t.Errorf("last URI = %q, want Song 44", dest.batches[2][4])
	}
}

func TestSyncLikedBatchFailureContinues(t *testing.T) {
	src := &fakeSource{liked: likedItems(45), pageSize: 45}
	dest := &fakeDest{failBatch: map[int]error{2: fmt.Errorf("server error")}}
	s := newTestSynchronizer(src, dest)

	res, err := s.SyncLiked(context.Background(), nil)
	if err != nil {
		t.Fatalf("SyncLiked() error = %v, batch failure must not abort", err)
	}
	if res.State != StateCompleted {
		t.Errorf("state = %v, want completed", res.State)
	}
	if len(dest.batches) != 3 {
		t.Fatalf("AddItems called %d times, want all 3 batches attempted", len(dest.batches))
	}

	sum := res.Summary
	if sum.Total != 45 || sum.Matched != 25 || sum.Errored != 20 {
		t.Errorf("summary = %+v, want 25 matched and 20 errored", sum)
	}

	errored := 0
	for _, o := range s.Report().Outcomes() {
		if o.Errored() {
			errored++
			if !errors.Is(o.WriteErr, shared.ErrWriteFailed) {
				t.Errorf("outcome %q error = %v, want ErrWriteFailed", o.Item.Title, o.WriteErr)
			}
		}
	}
	if errored != 20 {
		t.Errorf("%d errored outcomes, want the failed batch's 20", errored)
	}
}

func TestSyncLikedOutcomePerItem(t *testing.T) {
	src := &fakeSource{liked: likedItems(7), pageSize: 3}
	dest := &fakeDest{noMatch: map[string]bool{"Song 02": true, "Song 05": true}}
	s := newTestSynchronizer(src, dest)

	res, err := s.SyncLiked(context.Background(), nil)
	if err != nil {
		t.Fatalf("SyncLiked() error = %v", err)
	}

	if s.Report().Len() != 7 {
		t.Fatalf("Len() = %d, want one outcome per source item", s.Report().Len())
	}
	if res.Summary.Matched != 5 || res.Summary.Unmatched != 2 {
		t.Errorf("summary = %+v, want 5 matched, 2 unmatched", res.Summary)
	}
}

func TestSyncLikedStripsTopicMarker(t *testing.T) {
	src := &fakeSource{liked: []services.SourceItem{
		{Title: "Song A", RawArtist: "Band A - Topic", SourceID: "v1"},
	}}
	dest := &fakeDest{}
	s := newTestSynchronizer(src, dest)

	if _, err := s.SyncLiked(context.Background(), nil); err != nil {
		t.Fatalf("SyncLiked() error = %v", err)
	}

	outs := s.Report().Outcomes()
	if len(outs) != 1 || outs[0].Match.Artist != "Band A" {
		t.Errorf("matched artist = %q, want channel marker stripped before search", outs[0].Match.Artist)
	}
}

func TestSyncLikedPlaylistIsPrivate(t *testing.T) {
	src := &fakeSource{liked: likedItems(1)}
	dest := &fakeDest{}
	s := newTestSynchronizer(src, dest)

	if _, err := s.SyncLiked(context.Background(), nil); err != nil {
		t.Fatalf("SyncLiked() error = %v", err)
	}
	if len(dest.created) != 1 || dest.created[0].Name != "Liked Songs" {
		t.Fatalf("created = %+v, want one Liked Songs playlist", dest.created)
	}
	if dest.createdFlag[0] {
		t.Error("created playlist is public, want private")
	}
}

func TestSyncLikedAuthExpiredAborts(t *testing.T) {
	src := &fakeSource{liked: likedItems(5)}
	dest := &fakeDest{searchErr: shared.ErrAuthExpired}
	s := newTestSynchronizer(src, dest)

	_, err := s.SyncLiked(context.Background(), nil)
	if !errors.Is(err, shared.ErrAuthExpired) {
		t.Errorf("SyncLiked() error = %v, want ErrAuthExpired", err)
	}
	if len(dest.batches) != 0 {
		t.Errorf("AddItems called %d times after auth expiry, want 0", len(dest.batches))
	}
}

func TestSyncLikedAuthExpiredOnWriteAborts(t *testing.T) {
	src := &fakeSource{liked: likedItems(45), pageSize: 45}
	dest := &fakeDest{failBatch: map[int]error{
		1: fmt.Errorf("%w: spotify returned 401", shared.ErrAuthExpired),
	}}
	s := newTestSynchronizer(src, dest)

	_, err := s.SyncLiked(context.Background(), nil)
	if !errors.Is(err, shared.ErrAuthExpired) {
		t.Errorf("SyncLiked() error = %v, want ErrAuthExpired", err)
	}
	if !errors.Is(err, shared.ErrWriteFailed) {
		t.Errorf("SyncLiked() error = %v, want ErrWriteFailed in the chain", err)
	}
	if len(dest.batches) != 1 {
		t.Errorf("AddItems called %d times, want no batches after the expired write", len(dest.batches))
	}
}

func TestRunAbortsOnWriteAuthExpiry(t *testing.T) {
	src := &fakeSource{
		liked:     likedItems(2),
		playlists: []services.SourcePlaylist{{SourceID: "PL1", Name: "Road Trip"}},
	}
	dest := &fakeDest{failBatch: map[int]error{
		1: fmt.Errorf("%w: spotify returned 401", shared.ErrAuthExpired),
	}}
	s := newTestSynchronizer(src, dest)

	_, err := s.Run(context.Background(), nil)
	if !errors.Is(err, shared.ErrAuthExpired) {
		t.Errorf("Run() error = %v, want ErrAuthExpired", err)
	}
	// The run stopped during the liked write; PL1 was never created.
	if len(dest.created) != 1 {
		t.Errorf("created %d playlists, want 1", len(dest.created))
	}
}

func TestSyncLikedFetchErrorTruncates(t *testing.T) {
	src := &fakeSource{liked: likedItems(30), pageSize: 10, failLikedPage: 3}
	dest := &fakeDest{}
	s := newTestSynchronizer(src, dest)

	res, err := s.SyncLiked(context.Background(), nil)
	if err != nil {
		t.Fatalf("SyncLiked() error = %v, fetch failure truncates but does not abort", err)
	}
	if !errors.Is(res.FetchErr, shared.ErrUpstreamUnavailable) {
		t.Errorf("FetchErr = %v, want ErrUpstreamUnavailable", res.FetchErr)
	}
	if res.State != StateCompleted {
		t.Errorf("state = %v, want completed", res.State)
	}

	// Two pages made it through before the failure.
	if s.Report().Len() != 20 {
		t.Errorf("Len() = %d, want the 20 items fetched before the failure", s.Report().Len())
	}
	if len(dest.batches) != 1 || len(dest.batches[0]) != 20 {
		t.Errorf("batches = %v, want one write of the 20 fetched items", dest.batches)
	}
}

func TestRunCollectsPlaylistFailures(t *testing.T) {
	src := &fakeSource{
		liked: likedItems(2),
		playlists: []services.SourcePlaylist{
			{SourceID: "PL1", Name: "Road Trip", TrackCount: 2},
			{SourceID: "PL2", Name: "Workout", TrackCount: 1},
		},
		items: map[string][]services.SourceItem{
			"PL1": {
				{Title: "Song X", RawArtist: "Band X", SourceID: "vx"},
				{Title: "Song Y", RawArtist: "Band Y", SourceID: "vy"},
			},
			"PL2": {
				{Title: "Song Z", RawArtist: "Band Z", SourceID: "vz"},
			},
		},
	}
	dest := &fakeDest{createErr: map[string]error{"Workout": fmt.Errorf("quota exceeded")}}
	s := newTestSynchronizer(src, dest)

	result, err := s.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v, per-playlist failure must not abort the run", err)
	}

	if result.Liked == nil || result.Liked.Summary.Total != 2 {
		t.Errorf("liked = %+v, want 2 outcomes", result.Liked)
	}
	if len(result.Playlists) != 1 || result.Playlists[0].SourceName != "Road Trip" {
		t.Errorf("playlists = %+v, want Road Trip only", result.Playlists)
	}
	if len(result.Failures) != 1 || result.Failures[0].SourceID != "PL2" {
		t.Errorf("failures = %+v, want PL2 recorded", result.Failures)
	}
}

func TestRunAbortsOnAuthExpiry(t *testing.T) {
	src := &fakeSource{
		liked:     likedItems(1),
		playlists: []services.SourcePlaylist{{SourceID: "PL1", Name: "Road Trip"}},
	}
	dest := &fakeDest{searchErr: shared.ErrAuthExpired}
	s := newTestSynchronizer(src, dest)

	_, err := s.Run(context.Background(), nil)
	if !errors.Is(err, shared.ErrAuthExpired) {
		t.Errorf("Run() error = %v, want ErrAuthExpired", err)
	}
	// The run stopped at the liked playlist; nothing else was created.
	if len(dest.created) != 1 {
		t.Errorf("created %d playlists, want 1", len(dest.created))
	}
}

func TestProgressNeverBlocks(t *testing.T) {
	src := &fakeSource{liked: likedItems(25), pageSize: 25}
	dest := &fakeDest{}
	s := newTestSynchronizer(src, dest)

	// Unbuffered channel with no receiver: updates are dropped, never block.
	progress := make(chan ProgressUpdate)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := s.SyncLiked(context.Background(), progress); err != nil {
			t.Errorf("SyncLiked() error = %v", err)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("synchronizer blocked on progress channel")
	}
}
