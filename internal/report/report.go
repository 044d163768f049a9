// Package report renders a finished scenario run as a colored terminal
// summary, an ASCII plot of the bandwidth trace, and machine-readable
// JSON/CSV/Markdown exports, adapting the teacher's report generator to
// congestion-control output instead of QUIC connection statistics.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"

	"bbrtrace/internal/scenario"
	"bbrtrace/internal/sla"
)

// Format selects the serialization report.Write produces.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Entry is one scenario's result plus its SLA grade, the unit this
// package reports on.
type Entry struct {
	Result *scenario.Result
	Grade  *sla.Result
}

// Write renders entries in format to w.
func Write(w io.Writer, entries []Entry, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, entries)
	case FormatCSV:
		return writeCSV(w, entries)
	case FormatMarkdown:
		return writeMarkdown(w, entries)
	default:
		return writeText(w, entries)
	}
}

type jsonEntry struct {
	Scenario   string  `json:"scenario"`
	FinalState string  `json:"final_state"`
	FilledPipe bool    `json:"filled_pipe"`
	Passed     bool    `json:"passed"`
	Score      float64 `json:"score"`
	Summary    string  `json:"summary"`
}

func writeJSON(w io.Writer, entries []Entry) error {
	out := make([]jsonEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, jsonEntry{
			Scenario:   e.Result.Name,
			FinalState: e.Result.FinalState,
			FilledPipe: e.Result.FilledPipe,
			Passed:     e.Grade.Passed,
			Score:      e.Grade.Score,
			Summary:    e.Grade.Summary,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"scenario", "final_state", "filled_pipe", "passed", "score"}); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.Result.Name,
			e.Result.FinalState,
			strconv.FormatBool(e.Result.FilledPipe),
			strconv.FormatBool(e.Grade.Passed),
			strconv.FormatFloat(e.Grade.Score, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdown(w io.Writer, entries []Entry) error {
	fmt.Fprintln(w, "| scenario | final state | filled pipe | passed | score |")
	fmt.Fprintln(w, "|---|---|---|---|---|")
	for _, e := range entries {
		fmt.Fprintf(w, "| %s | %s | %v | %v | %.2f |\n",
			e.Result.Name, e.Result.FinalState, e.Result.FilledPipe, e.Grade.Passed, e.Grade.Score)
	}
	return nil
}

func writeText(w io.Writer, entries []Entry) error {
	table := tablewriter.NewWriter(w)
	table.Header("Scenario", "Final State", "Filled Pipe", "Result", "Score")

	for _, e := range entries {
		result := color.GreenString("PASS")
		if !e.Grade.Passed {
			result = color.RedString("FAIL")
		}
		if err := table.Append(e.Result.Name, e.Result.FinalState, fmt.Sprintf("%v", e.Result.FilledPipe),
			result, fmt.Sprintf("%.2f", e.Grade.Score)); err != nil {
			return fmt.Errorf("append report row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render report table: %w", err)
	}

	for _, e := range entries {
		fmt.Fprintf(w, "\n%s bandwidth trace (bytes/sec):\n", e.Result.Name)
		fmt.Fprintln(w, Plot(e.Result))
	}

	return nil
}

// Plot renders an ASCII line chart of the per-round bandwidth estimate.
func Plot(r *scenario.Result) string {
	if len(r.Snapshots) == 0 {
		return "(no samples)"
	}
	data := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		data[i] = s.BandwidthBps
	}
	return asciigraph.Plot(data, asciigraph.Height(10), asciigraph.Width(60))
}

// StateTimeline renders the controller's top-level state names in run
// order, space-separated, with consecutive repeats collapsed: a compact
// textual trace of mode transitions across the run.
func StateTimeline(r *scenario.Result) string {
	var b strings.Builder
	last := ""
	for _, s := range r.Snapshots {
		if s.State != last {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(s.State)
			last = s.State
		}
	}
	return b.String()
}
