// package report accumulates per-track outcomes of a transfer run.
//
// The report is append-only: one Outcome per source item, recorded exactly
// once, never mutated. Under the sequential execution model no locking is
// needed; Record is the single mutation point if that ever changes.
package report

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/tuneport/tuneport/internal/match"
	"github.com/tuneport/tuneport/internal/services"
	"github.com/tuneport/tuneport/internal/shared"
)

// Outcome records the result of attempting to migrate one source track.
type Outcome struct {
	PlaylistSourceID string
	Item             services.SourceItem
	Match            match.Result
	WriteErr         error
}

// Errored reports whether the track matched but failed to write.
func (o Outcome) Errored() bool { return o.WriteErr != nil }

// Summary aggregates outcome counts.
type Summary struct {
	Total     int
	Matched   int
	Unmatched int
	Errored   int
}

// Report is the append-only outcome log for one run.
type Report struct {
	ID       string
	started  time.Time
	finished time.Time
	outcomes []Outcome
	logger   *log.Logger
}

// New creates an empty report with a fresh run ID.
func New(logger *log.Logger) *Report {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Report{
		ID:      shared.GenerateID(),
		started: time.Now(),
		logger:  logger,
	}
}

// Record appends one outcome and logs a line for it.
func (r *Report) Record(o Outcome) {
	r.outcomes = append(r.outcomes, o)

	switch {
	case o.WriteErr != nil:
		r.logger.Warn("write failed", "title", o.Item.Title, "artist", o.Item.RawArtist, "uri", o.Match.URI, "err", o.WriteErr)
	case o.Match.Matched:
		r.logger.Info("matched", "title", o.Item.Title, "artist", o.Item.RawArtist, "uri", o.Match.URI)
	default:
		r.logger.Info("unmatched", "title", o.Item.Title, "artist", o.Item.RawArtist)
	}
}

// Finish stamps the report's end time.
func (r *Report) Finish() { r.finished = time.Now() }

// StartedAt returns when the report was opened.
func (r *Report) StartedAt() time.Time { return r.started }

// FinishedAt returns when Finish was called, or the zero time.
func (r *Report) FinishedAt() time.Time { return r.finished }

// Outcomes returns the recorded outcomes in append order.
func (r *Report) Outcomes() []Outcome { return r.outcomes }

// Len returns the number of recorded outcomes.
func (r *Report) Len() int { return len(r.outcomes) }

// Summary aggregates all recorded outcomes.
func (r *Report) Summary() Summary {
	return summarize(r.outcomes)
}

// PlaylistSummary aggregates the outcomes of one source playlist.
func (r *Report) PlaylistSummary(playlistSourceID string) Summary {
	var subset []Outcome
	for _, o := range r.outcomes {
		if o.PlaylistSourceID == playlistSourceID {
			subset = append(subset, o)
		}
	}
	return summarize(subset)
}

func summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.WriteErr != nil:
			s.Errored++
		case o.Match.Matched:
			s.Matched++
		default:
			s.Unmatched++
		}
	}
	return s
}
