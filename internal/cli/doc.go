// Package cli implements the command-line interface for ai-events.
//
// The cli package provides the Cobra-based CLI: run executes the discovery pipeline,
// render rebuilds the report from a saved candidate snapshot, schedule runs the
// pipeline on a cron schedule, and notify announces the events of the last run.
// Output is text or JSON.
package cli
