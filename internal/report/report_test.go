package report

import (
	"fmt"
	"io"
	"testing"

	"github.com/tuneport/tuneport/internal/match"
	"github.com/tuneport/tuneport/internal/services"
	"github.com/tuneport/tuneport/internal/shared"
)

func newReport() *Report {
	return New(shared.NewLogger(io.Discard))
}

func outcome(playlist, id string, matched bool, writeErr error) Outcome {
	return Outcome{
		PlaylistSourceID: playlist,
		Item:             services.SourceItem{Title: "Song " + id, RawArtist: "Band " + id, SourceID: id},
		Match:            match.Result{Matched: matched, URI: "spotify:track:" + id},
		WriteErr:         writeErr,
	}
}

func TestReportSummary(t *testing.T) {
	r := newReport()

	r.Record(outcome("LM", "1", true, nil))
	r.Record(outcome("LM", "2", false, nil))
	r.Record(outcome("LM", "3", true, fmt.Errorf("%w: batch rejected", shared.ErrWriteFailed)))
	r.Record(outcome("PL1", "4", true, nil))

	s := r.Summary()
	if s.Total != 4 || s.Matched != 2 || s.Unmatched != 1 || s.Errored != 1 {
		t.Errorf("Summary() = %+v", s)
	}

	liked := r.PlaylistSummary("LM")
	if liked.Total != 3 || liked.Matched != 1 || liked.Unmatched != 1 || liked.Errored != 1 {
		t.Errorf("PlaylistSummary(LM) = %+v", liked)
	}

	if r.Len() != 4 {
		t.Errorf("Len() = %d, want 4", r.Len())
	}
}

func TestReportAppendOrder(t *testing.T) {
	r := newReport()
	for i := range 5 {
		r.Record(outcome("LM", fmt.Sprint(i), true, nil))
	}

	for i, o := range r.Outcomes() {
		if o.Item.SourceID != fmt.Sprint(i) {
			t.Errorf("outcome %d = %s, want append order preserved", i, o.Item.SourceID)
		}
	}
}

func TestOutcomeErrored(t *testing.T) {
	if outcome("LM", "1", true, nil).Errored() {
		t.Error("clean outcome should not be errored")
	}
	if !outcome("LM", "1", true, shared.ErrWriteFailed).Errored() {
		t.Error("write failure should be errored")
	}
}
