package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/ai-events/internal/config"
	"github.com/pfrederiksen/ai-events/internal/event"
	"github.com/pfrederiksen/ai-events/internal/extract"
	"github.com/pfrederiksen/ai-events/internal/logger"
	"github.com/pfrederiksen/ai-events/internal/report"
	"github.com/pfrederiksen/ai-events/internal/search"
	"github.com/pfrederiksen/ai-events/internal/validate"
)

type fakeSearcher struct {
	answers map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) (string, error) {
	f.calls = append(f.calls, query)
	if err := f.errs[query]; err != nil {
		return "", err
	}
	return f.answers[query], nil
}

type fakeCompleter struct {
	answer string
	err    error
	calls  int
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.answer, f.err
}

type fakeStore struct {
	candidates []event.ClassifiedRecord
	report     string
	ics        string
	state      *RunState
	reportErr  error
}

func (f *fakeStore) SaveCandidates(records []event.ClassifiedRecord) error {
	f.candidates = records
	return nil
}

func (f *fakeStore) SaveReport(report string) error {
	if f.reportErr != nil {
		return f.reportErr
	}
	f.report = report
	return nil
}

func (f *fakeStore) SaveCalendar(ics string) error {
	f.ics = ics
	return nil
}

func (f *fakeStore) SaveRunState(state *RunState) error {
	f.state = state
	return nil
}

var testDays = map[string]string{
	"monday":    "2025-05-19",
	"tuesday":   "2025-05-20",
	"wednesday": "2025-05-21",
	"thursday":  "2025-05-22",
	"friday":    "2025-05-23",
}

func newOrchestrator(t *testing.T, s search.Searcher, c search.Completer, store Store) *Orchestrator {
	t.Helper()

	window, err := validate.NewWindow("2025-05-19", "2025-05-23")
	require.NoError(t, err)
	days, err := report.DaysFromTable(testDays)
	require.NoError(t, err)

	o, err := New(Options{
		Searcher:  s,
		Completer: c,
		Extractor: extract.New("San Francisco"),
		Validator: validate.New(window),
		Formatter: report.NewFormatter(days),
		Store:     store,
		Seed: &event.CandidateRecord{
			Title:    "AI & Machine Learning Meetup",
			Date:     "2025-05-20",
			Time:     "18:00",
			Location: "San Francisco Tech Hub",
			URL:      "https://example.com/ai-meetup",
		},
	})
	require.NoError(t, err)
	return o
}

func titles(events []event.CanonicalRecord) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Title)
	}
	return out
}

func TestRun_Completed(t *testing.T) {
	searcher := &fakeSearcher{answers: map[string]string{
		"q1": "AI Founders Meetup\nMay 20, 2025\nhttps://example.com/meetup\n\nIn summary, there are many events.",
		"q2": "GenAI Workshop\nMay 21, 2025\nhttps://example.com/workshop",
	}}
	store := &fakeStore{}
	o := newOrchestrator(t, searcher, nil, store)

	state := o.Run(context.Background(), []string{"q1", "q2"})

	assert.Equal(t, StatusCompleted, state.Status)
	assert.Empty(t, state.Error)
	assert.Equal(t, []string{"q1", "q2"}, searcher.calls)
	assert.Equal(t, []string{"AI Founders Meetup", "GenAI Workshop"}, titles(state.Events))
	assert.Equal(t, event.TypeMeetup, state.Events[0].Type)
	assert.Equal(t, event.TypeWorkshop, state.Events[1].Type)

	assert.True(t, strings.HasPrefix(state.Report, "**==================[ WEEK 21 EVENTS ]==================**"))
	assert.Contains(t, state.Report, "**[TUESDAY]**\n**[[AI Founders Meetup]](https://example.com/meetup)** (INPERSON)[Meetup]")

	assert.Len(t, store.candidates, 2)
	assert.Equal(t, state.Report, store.report)
	assert.Contains(t, store.ics, "BEGIN:VEVENT")
	assert.Same(t, state, store.state)
	assert.False(t, state.FinishedAt.IsZero())
	assert.NotEmpty(t, state.ID)
	assert.Equal(t, "Reviewed 2 events", state.Messages[len(state.Messages)-1].Content)
}

func TestRun_QueryFailureIsSkipped(t *testing.T) {
	searcher := &fakeSearcher{
		answers: map[string]string{
			"q1": "AI Founders Meetup\nMay 20, 2025\nhttps://example.com/meetup",
			"q3": "Bay Area Hackathon\nMay 22, 2025\nhttps://example.com/hack",
		},
		errs: map[string]error{"q2": errors.New("connection refused")},
	}
	o := newOrchestrator(t, searcher, nil, nil)

	state := o.Run(context.Background(), []string{"q1", "q2", "q3"})

	assert.Equal(t, StatusCompleted, state.Status)
	assert.Equal(t, []string{"AI Founders Meetup", "Bay Area Hackathon"}, titles(state.Events))
	assert.True(t, state.HasOutcome(StatusSearching, OutcomeFailed))

	var failed Outcome
	for _, out := range state.Outcomes {
		if out.Kind == OutcomeFailed {
			failed = out
		}
	}
	assert.Equal(t, "q2", failed.Query)
	assert.Contains(t, failed.Reason, ErrSearchFailure.Error())
}

func TestRun_UninterpretableResponseUsedAsText(t *testing.T) {
	raw := "AI Founders Meetup\nMay 20, 2025\nhttps://example.com/meetup"
	searcher := &fakeSearcher{
		errs: map[string]error{
			"q1": fmt.Errorf("searching: %w", &search.ParseError{Raw: raw, Reason: "unrecognized response shape"}),
		},
	}
	o := newOrchestrator(t, searcher, nil, nil)

	state := o.Run(context.Background(), []string{"q1"})

	assert.Equal(t, StatusCompleted, state.Status)
	assert.Equal(t, []string{"AI Founders Meetup"}, titles(state.Events))
	assert.True(t, state.HasOutcome(StatusSearching, OutcomeRecovered))
	assert.False(t, state.HasOutcome(StatusSearching, OutcomeFailed))
	assert.False(t, state.HasOutcome(StatusExtracting, OutcomeEmpty))

	for _, out := range state.Outcomes {
		if out.Kind == OutcomeRecovered {
			assert.Equal(t, "q1", out.Query)
			assert.Contains(t, out.Reason, ErrParseFailure.Error())
		}
	}
}

func TestRun_UninterpretableEmptyResponseFails(t *testing.T) {
	searcher := &fakeSearcher{
		errs: map[string]error{"q1": &search.ParseError{Raw: "  ", Reason: "empty body"}},
	}
	o := newOrchestrator(t, searcher, nil, nil)

	state := o.Run(context.Background(), []string{"q1"})

	assert.True(t, state.HasOutcome(StatusSearching, OutcomeFailed))
	assert.False(t, state.HasOutcome(StatusSearching, OutcomeRecovered))
	assert.Equal(t, []string{"AI & Machine Learning Meetup"}, titles(state.Events))
}

func TestRun_LogsMetricsSnapshot(t *testing.T) {
	var buf bytes.Buffer
	logger.SetDefault(logger.New(logger.LevelInfo, &buf))
	t.Cleanup(func() { logger.SetDefault(logger.New(logger.LevelInfo, io.Discard)) })

	searcher := &fakeSearcher{answers: map[string]string{
		"q1": "AI Founders Meetup\nMay 20, 2025\nhttps://example.com/meetup",
	}}
	o := newOrchestrator(t, searcher, nil, nil)
	o.Run(context.Background(), []string{"q1"})

	var finished map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["message"] == "Run finished" {
			finished = entry
		}
	}
	require.NotNil(t, finished)

	metrics, ok := finished["metrics"].(map[string]interface{})
	require.True(t, ok, "metrics field missing: %v", finished)
	counters, ok := metrics["counters"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, counters, "runs.started")
	assert.Contains(t, counters, "search.queries")
	assert.Contains(t, metrics, "timings")
}

func TestRun_SeedFallback(t *testing.T) {
	searcher := &fakeSearcher{
		answers: map[string]string{"q1": "Nothing scheduled this week."},
		errs:    map[string]error{"q2": errors.New("timeout")},
	}
	o := newOrchestrator(t, searcher, nil, nil)

	state := o.Run(context.Background(), []string{"q1", "q2"})

	assert.Equal(t, StatusCompleted, state.Status)
	require.Len(t, state.Events, 1)
	assert.Equal(t, "AI & Machine Learning Meetup", state.Events[0].Title)
	assert.Equal(t, event.TypeMeetup, state.Events[0].Type)
	assert.True(t, state.HasOutcome(StatusExtracting, OutcomeEmpty))
	assert.Contains(t, state.Report, "**[TUESDAY]**\n**[[AI & Machine Learning Meetup]](https://example.com/ai-meetup)**")
}

func TestRun_NoSeed(t *testing.T) {
	o := newOrchestrator(t, &fakeSearcher{}, nil, nil)
	o.seed = nil

	state := o.Run(context.Background(), []string{"q1"})

	assert.Equal(t, StatusCompleted, state.Status)
	assert.Empty(t, state.Events)
	assert.Equal(t, 5, strings.Count(state.Report, report.NoEvents))
}

func TestRun_CleanupFallsBackToRawText(t *testing.T) {
	searcher := &fakeSearcher{answers: map[string]string{
		"q1": "AI Founders Meetup\nMay 20, 2025\nhttps://example.com/meetup",
	}}
	completer := &fakeCompleter{err: &search.ParseError{Reason: "no choices"}}
	o := newOrchestrator(t, searcher, completer, nil)

	state := o.Run(context.Background(), []string{"q1"})

	assert.Equal(t, 1, completer.calls)
	assert.Equal(t, StatusCompleted, state.Status)
	assert.True(t, state.HasOutcome(StatusSearching, OutcomeRecovered))
	assert.Equal(t, []string{"AI Founders Meetup"}, titles(state.Events))
}

func TestRun_CleanupEmptyAnswer(t *testing.T) {
	searcher := &fakeSearcher{answers: map[string]string{
		"q1": "GenAI Workshop\nMay 21, 2025",
	}}
	completer := &fakeCompleter{answer: "   "}
	o := newOrchestrator(t, searcher, completer, nil)

	state := o.Run(context.Background(), []string{"q1"})

	assert.True(t, state.HasOutcome(StatusSearching, OutcomeRecovered))
	assert.Equal(t, []string{"GenAI Workshop"}, titles(state.Events))
}

func TestRun_CleanupAnswerUsed(t *testing.T) {
	searcher := &fakeSearcher{answers: map[string]string{"q1": "raw noisy answer"}}
	completer := &fakeCompleter{answer: "Applied AI Conference\nDate: May 23, 2025\nURL: https://example.com/conf"}
	o := newOrchestrator(t, searcher, completer, nil)

	state := o.Run(context.Background(), []string{"q1"})

	assert.False(t, state.HasOutcome(StatusSearching, OutcomeRecovered))
	require.Len(t, state.Events, 1)
	assert.Equal(t, "Applied AI Conference", state.Events[0].Title)
	assert.Equal(t, event.CategoryConference, state.Events[0].Category)
}

func TestRun_ValidationRejectionsAreOutcomes(t *testing.T) {
	searcher := &fakeSearcher{answers: map[string]string{
		"q1": "First Meetup\nMay 20, 2025\nhttps://example.com/x\n\n" +
			"Second Meetup\nMay 21, 2025\nhttps://example.com/x\n\n" +
			"Summer Hackathon\nJune 1, 2025\nhttps://example.com/june",
	}}
	o := newOrchestrator(t, searcher, nil, nil)

	state := o.Run(context.Background(), []string{"q1"})

	assert.Equal(t, StatusCompleted, state.Status)
	assert.Equal(t, []string{"First Meetup"}, titles(state.Events))
	assert.Len(t, state.Candidates, 3)

	reasons := map[string]int{}
	for _, out := range state.Outcomes {
		if out.Kind == OutcomeRejected {
			reasons[out.Reason] = out.Count
		}
	}
	assert.Equal(t, map[string]int{"out_of_window": 1, "duplicate_url": 1}, reasons)
	assert.NotContains(t, state.Report, "Summer Hackathon")
}

func TestRun_FormattingFailureKeepsEvents(t *testing.T) {
	searcher := &fakeSearcher{answers: map[string]string{
		"q1": "AI Founders Meetup\nMay 20, 2025\nhttps://example.com/meetup",
	}}
	store := &fakeStore{}
	o := newOrchestrator(t, searcher, nil, store)
	o.formatter = report.NewFormatter(nil)

	state := o.Run(context.Background(), []string{"q1"})

	assert.Equal(t, StatusError, state.Status)
	assert.ErrorIs(t, state.Err(), ErrFormattingFailure)
	assert.ErrorIs(t, state.Err(), report.ErrInvalidDayTable)
	assert.Len(t, state.Events, 1)
	assert.Empty(t, store.report)
	assert.Same(t, state, store.state)
}

func TestRun_FormatterPanicIsRecovered(t *testing.T) {
	searcher := &fakeSearcher{answers: map[string]string{
		"q1": "AI Founders Meetup\nMay 20, 2025\nhttps://example.com/meetup",
	}}
	o := newOrchestrator(t, searcher, nil, nil)
	o.formatter = nil

	var state *RunState
	require.NotPanics(t, func() {
		state = o.Run(context.Background(), []string{"q1"})
	})

	assert.Equal(t, StatusError, state.Status)
	assert.ErrorIs(t, state.Err(), ErrFormattingFailure)
	assert.Len(t, state.Events, 1)
}

func TestRun_ReportSaveFailureIsNotFatal(t *testing.T) {
	searcher := &fakeSearcher{answers: map[string]string{
		"q1": "AI Founders Meetup\nMay 20, 2025",
	}}
	store := &fakeStore{reportErr: errors.New("disk full")}
	o := newOrchestrator(t, searcher, nil, store)

	state := o.Run(context.Background(), []string{"q1"})

	assert.Equal(t, StatusCompleted, state.Status)
	assert.True(t, state.HasOutcome(StatusFormatting, OutcomeFailed))
	assert.Contains(t, store.ics, "AI Founders Meetup")
}

func TestRun_ContextCanceled(t *testing.T) {
	searcher := &fakeSearcher{}
	o := newOrchestrator(t, searcher, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := o.Run(ctx, []string{"q1"})

	assert.Equal(t, StatusError, state.Status)
	assert.ErrorIs(t, state.Err(), context.Canceled)
	assert.Empty(t, searcher.calls)
}

func TestRun_NoSearcher(t *testing.T) {
	o := newOrchestrator(t, nil, nil, nil)

	state := o.Run(context.Background(), []string{"q1"})

	assert.Equal(t, StatusError, state.Status)
	assert.NotEmpty(t, state.Error)
}

func TestRender(t *testing.T) {
	o := newOrchestrator(t, nil, nil, nil)
	candidates := []event.ClassifiedRecord{
		{
			CandidateRecord: event.CandidateRecord{Title: "GenAI Workshop", Date: "May 21, 2025", URL: "https://example.com/w"},
			Type:            event.TypeWorkshop,
			Format:          event.FormatOnline,
			Category:        event.CategoryWorkshop,
		},
	}

	state := o.Render(context.Background(), candidates)

	assert.Equal(t, StatusCompleted, state.Status)
	assert.Contains(t, state.Report, "**[WEDNESDAY]**\n**[[GenAI Workshop]](https://example.com/w)** (ONLINE)[Workshop]")
}

func TestRun_Deterministic(t *testing.T) {
	searcher := &fakeSearcher{answers: map[string]string{
		"q1": "### AI Founders Meetup\nMay 20, 2025\nhttps://example.com/meetup\n- **GenAI Workshop** May 21, 2025 https://example.com/w",
	}}
	o := newOrchestrator(t, searcher, nil, nil)

	first := o.Run(context.Background(), []string{"q1"})
	second := o.Run(context.Background(), []string{"q1"})

	assert.Equal(t, first.Report, second.Report)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestNew_RequiresStages(t *testing.T) {
	_, err := New(Options{Searcher: &fakeSearcher{}})
	assert.Error(t, err)
}

func TestFromConfig_MissingCredentials(t *testing.T) {
	cfg := config.DefaultConfig()

	_, err := FromConfig(cfg, nil)

	assert.ErrorIs(t, err, ErrCredentialMissing)
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Search.APIKey = "pplx-test"
	cfg.LLM.Provider = config.ProviderNone

	o, err := FromConfig(cfg, nil)
	require.NoError(t, err)

	assert.NotNil(t, o.searcher)
	assert.Nil(t, o.completer)
	assert.Equal(t, "21", o.weekLabel)
	require.NotNil(t, o.seed)
	assert.Equal(t, "AI & Machine Learning Meetup", o.seed.Title)
}

func TestRendererFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Window.WeekLabel = "20"

	o, err := RendererFromConfig(cfg, nil)
	require.NoError(t, err)

	assert.Nil(t, o.searcher)
	assert.Equal(t, "20", o.weekLabel)
}
