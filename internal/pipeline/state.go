package pipeline

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/ai-events/internal/config"
	"github.com/pfrederiksen/ai-events/internal/event"
)

// Status is the run's position in the state machine.
type Status string

const (
	StatusSearching  Status = "searching"
	StatusExtracting Status = "extracting"
	StatusValidating Status = "validating"
	StatusFormatting Status = "formatting"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether no further transitions happen from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

var (
	// ErrCredentialMissing aborts a run before any stage starts.
	ErrCredentialMissing = config.ErrCredentialMissing
	// ErrSearchFailure marks a query whose search call failed.
	ErrSearchFailure = errors.New("search failed")
	// ErrParseFailure marks a response that could not be interpreted.
	ErrParseFailure = errors.New("response not interpretable")
	// ErrFormattingFailure marks a report that could not be rendered.
	ErrFormattingFailure = errors.New("formatting failed")
)

// OutcomeKind tags the result of a stage.
type OutcomeKind string

const (
	OutcomeOK        OutcomeKind = "ok"
	OutcomeEmpty     OutcomeKind = "empty"
	OutcomeRecovered OutcomeKind = "recovered"
	OutcomeRejected  OutcomeKind = "rejected"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome records what happened at a stage boundary. Query is set for per-query
// search outcomes; Count is the number of items the outcome covers.
type Outcome struct {
	Stage  Status      `json:"stage"`
	Kind   OutcomeKind `json:"kind"`
	Reason string      `json:"reason,omitempty"`
	Query  string      `json:"query,omitempty"`
	Count  int         `json:"count"`
}

// Message is one entry of the run's conversation log.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RunState is the state of a single run. It is owned by the Orchestrator while the
// run is in progress and is terminal once Status is completed or error.
type RunState struct {
	ID         string                   `json:"id"`
	Status     Status                   `json:"status"`
	Queries    []string                 `json:"queries"`
	Messages   []Message                `json:"messages"`
	Candidates []event.ClassifiedRecord `json:"candidates"`
	Events     []event.CanonicalRecord  `json:"events"`
	Report     string                   `json:"report,omitempty"`
	Outcomes   []Outcome                `json:"outcomes"`
	Error      string                   `json:"error,omitempty"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at,omitempty"`

	err error
}

// NewRunState creates a RunState in the searching status.
func NewRunState(queries []string) *RunState {
	return &RunState{
		ID:         uuid.New().String(),
		Status:     StatusSearching,
		Queries:    append([]string(nil), queries...),
		Messages:   []Message{},
		Candidates: []event.ClassifiedRecord{},
		Events:     []event.CanonicalRecord{},
		Outcomes:   []Outcome{},
		StartedAt:  time.Now().UTC(),
	}
}

// Err returns the error that ended the run, if any.
func (s *RunState) Err() error {
	return s.err
}

// HasOutcome reports whether an outcome of kind was recorded at stage.
func (s *RunState) HasOutcome(stage Status, kind OutcomeKind) bool {
	for _, o := range s.Outcomes {
		if o.Stage == stage && o.Kind == kind {
			return true
		}
	}
	return false
}

func (s *RunState) record(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
}

func (s *RunState) say(role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

func (s *RunState) fail(err error) {
	s.Status = StatusError
	s.err = err
	s.Error = err.Error()
}
