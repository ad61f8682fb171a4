// Package storage persists pipeline artifacts as files.
//
// Intermediate and final artifacts live in the data directory (default ./results):
// midway.json holds the classified candidates written after extraction, events.md and
// an empty done marker hold the rendered report, and events.ics the calendar export.
// The report is also written to the report file (default discord_events.txt) and the
// final run state to the results file (default final_results.json). Writes go through a
// temp file and rename so readers never see a partial file.
package storage
