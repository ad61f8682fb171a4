package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pfrederiksen/ai-events/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteOutput writes the run state in the specified format. Text output is the report
// followed by a short summary; events are listed only when sorted or verbose.
func WriteOutput(w io.Writer, state *pipeline.RunState, format OutputFormat, order SortOrder, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, state)
	case FormatText:
		return writeText(w, state, order, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the run state as JSON
func writeJSON(w io.Writer, state *pipeline.RunState) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(state)
}

// writeText outputs the report and a human-readable summary
func writeText(w io.Writer, state *pipeline.RunState, order SortOrder, verbose bool) error {
	if state.Report != "" {
		fmt.Fprint(w, state.Report)
		fmt.Fprintln(w)
	}

	if order != "" || verbose {
		for _, evt := range sortEvents(state.Events, order) {
			fmt.Fprintf(w, "%s  %s (%s)\n", evt.Day.Format("Mon Jan 2"), evt.Title, evt.Category)
			if verbose {
				fmt.Fprintf(w, "     ID: %s\n", evt.ID)
				if evt.URL != "" {
					fmt.Fprintf(w, "     URL: %s\n", evt.URL)
				}
				if evt.Time != "" {
					fmt.Fprintf(w, "     Time: %s\n", evt.Time)
				}
			}
		}
		if len(state.Events) > 0 {
			fmt.Fprintln(w)
		}
	}

	if verbose {
		for _, o := range state.Outcomes {
			line := fmt.Sprintf("  %-10s %-9s %3d", o.Stage, o.Kind, o.Count)
			if o.Query != "" {
				line += "  query=" + o.Query
			}
			if o.Reason != "" {
				line += "  " + o.Reason
			}
			fmt.Fprintln(w, line)
		}
	}

	fmt.Fprintf(w, "Status: %s\n", state.Status)
	if state.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", state.Error)
	}
	fmt.Fprintf(w, "Total: %d events from %d candidates\n", len(state.Events), len(state.Candidates))

	return nil
}
