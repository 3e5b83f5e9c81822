// package formatter exports transfer run reports to CSV, Markdown, and JSON.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tuneport/tuneport/internal/repositories"
)

// RunExport bundles a run with its outcomes for export.
type RunExport struct {
	Run      *repositories.RunRecord
	Outcomes []*repositories.OutcomeRecord
}

// ExportToCSV converts a run's outcomes to CSV with one row per source track.
func ExportToCSV(export *RunExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Playlist", "Source ID", "Title", "Artist", "Matched", "Destination URI", "Destination Name", "Destination Artist", "Write Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, o := range export.Outcomes {
		record := []string{
			o.PlaylistSourceID,
			o.SourceID,
			o.Title,
			o.Artist,
			fmt.Sprintf("%t", o.Matched),
			o.DestURI,
			o.DestName,
			o.DestArtist,
			o.WriteError,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a run to a Markdown summary with a per-track table.
func ExportToMarkdown(export *RunExport) ([]byte, error) {
	var buf bytes.Buffer
	run := export.Run

	buf.WriteString(fmt.Sprintf("# Transfer Run %s\n\n", run.ID))
	buf.WriteString(fmt.Sprintf("**Started**: %s\n", run.StartedAt.Format(time.RFC3339)))
	if !run.FinishedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Finished**: %s\n", run.FinishedAt.Format(time.RFC3339)))
	}
	buf.WriteString(fmt.Sprintf("**Tracks**: %d total, %d matched, %d unmatched, %d errored\n\n", run.Total, run.Matched, run.Unmatched, run.Errored))

	buf.WriteString("## Tracks\n\n")
	buf.WriteString("| # | Playlist | Title | Artist | Status |\n")
	buf.WriteString("|---|----------|-------|--------|--------|\n")
	for i, o := range export.Outcomes {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n", i+1, o.PlaylistSourceID, o.Title, o.Artist, outcomeStatus(o)))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a run to indented JSON.
func ExportToJSON(export *RunExport) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run: %w", err)
	}
	return data, nil
}

func outcomeStatus(o *repositories.OutcomeRecord) string {
	switch {
	case o.WriteError != "":
		return "write failed"
	case o.Matched:
		return "matched"
	default:
		return "unmatched"
	}
}

// WriteExport writes a run export in the given format ("csv", "markdown",
// or "json") and returns the created file's path.
//
// The filepath defaults to {run.ID}.{ext}.
func WriteExport(export *RunExport, format, filepath string) (string, error) {
	var (
		data []byte
		err  error
		ext  string
	)

	switch format {
	case "csv":
		data, err = ExportToCSV(export)
		ext = "csv"
	case "markdown", "md":
		data, err = ExportToMarkdown(export)
		ext = "md"
	case "json":
		data, err = ExportToJSON(export)
		ext = "json"
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return "", err
	}

	if filepath == "" {
		filepath = fmt.Sprintf("%s.%s", export.Run.ID, ext)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return filepath, nil
}
