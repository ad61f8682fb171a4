// Package event provides the record types that flow through the ai-events pipeline.
//
// Each pipeline stage has its own record type: a RawBlock is a segment of search text,
// a CandidateRecord is what the extractor could pull out of one block, a ClassifiedRecord
// adds the event type, attendance format and report category, and a CanonicalRecord is a
// classified record that passed validation. Canonical records carry a deterministic
// SHA1-based ID generated from their URL, title and date, which stays stable across runs.
package event
