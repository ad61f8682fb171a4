// Package pipeline sequences the discovery stages and owns the run state.
//
// A run moves through searching, extracting, validating and formatting, ending in
// completed or error. Only a missing credential stops a run from starting; every
// other failure is recorded as an Outcome and degrades the result:
//
//   - a failed query is skipped
//   - an uninterpretable cleanup answer falls back to the raw search text
//   - zero candidates fall back to a single seed record
//   - a formatter failure ends the run in error with its events retained
//
// Run always returns a RunState.
package pipeline
