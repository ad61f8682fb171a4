package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/ai-events/internal/calendar"
	"github.com/pfrederiksen/ai-events/internal/classify"
	"github.com/pfrederiksen/ai-events/internal/event"
	"github.com/pfrederiksen/ai-events/internal/extract"
	"github.com/pfrederiksen/ai-events/internal/logger"
	"github.com/pfrederiksen/ai-events/internal/report"
	"github.com/pfrederiksen/ai-events/internal/search"
	"github.com/pfrederiksen/ai-events/internal/validate"
)

// Store persists run artifacts. Failures are logged and recorded, never fatal.
type Store interface {
	SaveCandidates(records []event.ClassifiedRecord) error
	SaveReport(report string) error
	SaveCalendar(ics string) error
	SaveRunState(state *RunState) error
}

// Options configures an Orchestrator. Extractor, Validator and Formatter are required.
// Run also needs a Searcher; Render does not.
type Options struct {
	Searcher  search.Searcher
	Completer search.Completer
	Extractor *extract.Extractor
	Validator *validate.Validator
	Formatter *report.Formatter
	Store     Store
	// Seed is used when every query yields zero candidates.
	Seed *event.CandidateRecord
	// WeekLabel overrides the ISO week of the window start in the report header.
	WeekLabel string
	// Location is the timezone for timed calendar entries.
	Location *time.Location
}

// Orchestrator sequences the pipeline stages for one run at a time.
type Orchestrator struct {
	searcher  search.Searcher
	completer search.Completer
	extractor *extract.Extractor
	validator *validate.Validator
	formatter *report.Formatter
	store     Store
	seed      *event.CandidateRecord
	weekLabel string
	location  *time.Location
}

// New creates an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Extractor == nil || opts.Validator == nil || opts.Formatter == nil {
		return nil, errors.New("pipeline: extractor, validator and formatter are required")
	}

	weekLabel := opts.WeekLabel
	if weekLabel == "" {
		weekLabel = report.WeekLabel(opts.Validator.Window().Start)
	}

	return &Orchestrator{
		searcher:  opts.Searcher,
		completer: opts.Completer,
		extractor: opts.Extractor,
		validator: opts.Validator,
		formatter: opts.Formatter,
		store:     opts.Store,
		seed:      opts.Seed,
		weekLabel: weekLabel,
		location:  opts.Location,
	}, nil
}

// Run executes the full pipeline for queries in order. It always returns a RunState.
func (o *Orchestrator) Run(ctx context.Context, queries []string) *RunState {
	state := NewRunState(queries)
	state.say("user", "Find AI events for the upcoming week")

	logger.Info("Run started", logger.Fields{
		"run_id":  state.ID,
		"queries": len(queries),
	})
	logger.IncrCounter("runs.started")

	if o.searcher == nil {
		state.fail(errors.New("pipeline: no searcher configured"))
		return o.finish(state)
	}

	blocks, err := o.search(ctx, state, queries)
	if err != nil {
		state.fail(err)
		return o.finish(state)
	}

	o.transition(state, StatusExtracting)
	o.extract(state, blocks)

	return o.process(state)
}

// Render runs validation and formatting over previously extracted candidates.
func (o *Orchestrator) Render(ctx context.Context, candidates []event.ClassifiedRecord) *RunState {
	state := NewRunState(nil)
	state.Status = StatusExtracting
	state.Candidates = append(state.Candidates, candidates...)
	state.record(Outcome{Stage: StatusExtracting, Kind: OutcomeOK, Reason: "loaded", Count: len(candidates)})

	if err := ctx.Err(); err != nil {
		state.fail(err)
		return o.finish(state)
	}

	return o.process(state)
}

func (o *Orchestrator) process(state *RunState) *RunState {
	o.transition(state, StatusValidating)
	o.validate(state)

	o.transition(state, StatusFormatting)
	if err := o.format(state); err != nil {
		state.fail(err)
		logger.Error("Formatting failed", logger.Fields{
			"run_id": state.ID,
			"events": len(state.Events),
		}, err)
		return o.finish(state)
	}

	o.transition(state, StatusCompleted)
	state.say("assistant", "Task completed successfully")
	state.say("assistant", fmt.Sprintf("Reviewed %d events", len(state.Events)))
	return o.finish(state)
}

// search runs every query in order and returns the accumulated blocks. It fails only
// when ctx is done.
func (o *Orchestrator) search(ctx context.Context, state *RunState, queries []string) ([]event.RawBlock, error) {
	start := time.Now()
	defer func() { logger.RecordTiming("stage.searching", time.Since(start)) }()

	var blocks []event.RawBlock
	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search interrupted: %w", err)
		}

		text, err := o.searcher.Search(ctx, query)
		var perr *search.ParseError
		if errors.As(err, &perr) && strings.TrimSpace(perr.Raw) != "" {
			reason := fmt.Errorf("%w: %v", ErrParseFailure, err)
			state.record(Outcome{Stage: StatusSearching, Kind: OutcomeRecovered, Reason: reason.Error(), Query: query})
			logger.IncrCounter("search.parse_fallbacks")
			logger.Warn("Response not interpretable, using it as plain text", logger.Fields{
				"query": query,
				"error": err.Error(),
			})
			text, err = perr.Raw, nil
		}
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrSearchFailure, err)
			state.record(Outcome{Stage: StatusSearching, Kind: OutcomeFailed, Reason: err.Error(), Query: query})
			logger.IncrCounter("search.failures")
			logger.Warn("Query failed, skipping", logger.Fields{
				"query": query,
				"error": err.Error(),
			})
			continue
		}

		text = o.cleanup(ctx, state, query, text)
		found := extract.Segment(text, query)
		blocks = append(blocks, found...)

		state.record(Outcome{Stage: StatusSearching, Kind: OutcomeOK, Query: query, Count: len(found)})
		logger.IncrCounter("search.queries")
		logger.Debug("Query searched", logger.Fields{
			"query":  query,
			"blocks": len(found),
		})
	}

	return blocks, nil
}

// cleanup asks the completer to restructure text. The raw text is returned when there
// is no completer or its answer cannot be used.
func (o *Orchestrator) cleanup(ctx context.Context, state *RunState, query, text string) string {
	if o.completer == nil || strings.TrimSpace(text) == "" {
		return text
	}

	cleaned, err := o.completer.Complete(ctx, search.CleanupPrompt(text))
	if err == nil && strings.TrimSpace(cleaned) == "" {
		err = &search.ParseError{Raw: text, Reason: "empty answer"}
	}
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrParseFailure, err)
		state.record(Outcome{Stage: StatusSearching, Kind: OutcomeRecovered, Reason: err.Error(), Query: query})
		logger.IncrCounter("cleanup.fallbacks")
		logger.Warn("Cleanup failed, using raw search text", logger.Fields{
			"query": query,
			"error": err.Error(),
		})
		return text
	}

	return cleaned
}

func (o *Orchestrator) extract(state *RunState, blocks []event.RawBlock) {
	start := time.Now()
	defer func() { logger.RecordTiming("stage.extracting", time.Since(start)) }()

	candidates := classify.All(o.extractor.ExtractBlocks(blocks))
	if len(candidates) == 0 && o.seed != nil {
		seed := *o.seed
		seed.RawText = seed.Title
		candidates = []event.ClassifiedRecord{classify.Classify(seed)}
		state.record(Outcome{Stage: StatusExtracting, Kind: OutcomeEmpty, Reason: "no candidates, using seed record", Count: 1})
		logger.Info("No candidates found, using seed record", logger.Fields{"title": seed.Title})
	} else {
		state.record(Outcome{Stage: StatusExtracting, Kind: OutcomeOK, Count: len(candidates)})
	}

	state.Candidates = append(state.Candidates, candidates...)
	state.say("assistant", fmt.Sprintf("Found %d candidate events", len(candidates)))
	logger.SetGauge("candidates", float64(len(candidates)))

	if o.store != nil {
		o.persist(state, StatusExtracting, "midway snapshot", func() error {
			return o.store.SaveCandidates(state.Candidates)
		})
	}
}

func (o *Orchestrator) validate(state *RunState) {
	start := time.Now()
	defer func() { logger.RecordTiming("stage.validating", time.Since(start)) }()

	result := o.validator.Check(state.Candidates)
	state.Events = append(state.Events, result.Accepted...)

	state.record(Outcome{Stage: StatusValidating, Kind: OutcomeOK, Count: len(result.Accepted)})
	counts := result.Counts()
	for _, reason := range validate.Reasons {
		n := counts[reason]
		if n == 0 {
			continue
		}
		state.record(Outcome{Stage: StatusValidating, Kind: OutcomeRejected, Reason: string(reason), Count: n})
		logger.AddCounter("validation.rejected."+string(reason), int64(n))
	}

	logger.SetGauge("events", float64(len(state.Events)))
	logger.Info("Candidates validated", logger.Fields{
		"accepted": len(result.Accepted),
		"rejected": len(result.Rejected),
	})
}

// format renders the report. A panic inside the formatter is turned into an error.
func (o *Orchestrator) format(state *RunState) (err error) {
	start := time.Now()
	defer func() { logger.RecordTiming("stage.formatting", time.Since(start)) }()

	state.say("user", "Format these events for Discord")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFormattingFailure, r)
		}
	}()

	out, ferr := o.formatter.Format(state.Events, o.weekLabel)
	if ferr != nil {
		return fmt.Errorf("%w: %w", ErrFormattingFailure, ferr)
	}
	state.Report = out
	state.record(Outcome{Stage: StatusFormatting, Kind: OutcomeOK, Count: len(state.Events)})

	if o.store != nil {
		o.persist(state, StatusFormatting, "report", func() error {
			return o.store.SaveReport(out)
		})
		o.persist(state, StatusFormatting, "calendar", func() error {
			return o.store.SaveCalendar(calendar.GenerateICS(state.Events, o.location))
		})
	}
	return nil
}

func (o *Orchestrator) persist(state *RunState, stage Status, what string, save func() error) {
	if err := save(); err != nil {
		state.record(Outcome{Stage: stage, Kind: OutcomeFailed, Reason: fmt.Sprintf("saving %s: %v", what, err)})
		logger.Error("Failed to save "+what, logger.Fields{"run_id": state.ID}, err)
	}
}

func (o *Orchestrator) transition(state *RunState, next Status) {
	logger.Debug("Stage transition", logger.Fields{
		"run_id": state.ID,
		"from":   string(state.Status),
		"to":     string(next),
	})
	state.Status = next
}

func (o *Orchestrator) finish(state *RunState) *RunState {
	state.FinishedAt = time.Now().UTC()

	if o.store != nil {
		if err := o.store.SaveRunState(state); err != nil {
			logger.Error("Failed to save run state", logger.Fields{"run_id": state.ID}, err)
		}
	}

	logger.IncrCounter("runs." + string(state.Status))
	logger.RecordTiming("run", state.FinishedAt.Sub(state.StartedAt))
	logger.Info("Run finished", logger.Fields{
		"run_id":     state.ID,
		"status":     string(state.Status),
		"candidates": len(state.Candidates),
		"events":     len(state.Events),
		"metrics":    logger.GetMetricsSnapshot(),
	})
	return state
}
