package pipeline

import (
	"fmt"
	"time"

	"github.com/pfrederiksen/ai-events/internal/config"
	"github.com/pfrederiksen/ai-events/internal/event"
	"github.com/pfrederiksen/ai-events/internal/extract"
	"github.com/pfrederiksen/ai-events/internal/logger"
	"github.com/pfrederiksen/ai-events/internal/report"
	"github.com/pfrederiksen/ai-events/internal/scraper"
	"github.com/pfrederiksen/ai-events/internal/search"
	"github.com/pfrederiksen/ai-events/internal/validate"
)

// FromConfig builds an Orchestrator that searches with the configured providers.
// Inputs that are page URLs are fetched directly instead of searched.
// It returns ErrCredentialMissing before building anything when a key is absent.
func FromConfig(cfg *config.Config, store Store) (*Orchestrator, error) {
	if err := cfg.CheckCredentials(); err != nil {
		return nil, err
	}

	opts, err := baseOptions(cfg, store)
	if err != nil {
		return nil, err
	}

	queries, err := search.NewSearcher(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("creating searcher: %w", err)
	}
	opts.Searcher = scraper.Router{Queries: queries, Pages: scraper.New()}
	opts.Completer, err = search.NewCompleter(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("creating completer: %w", err)
	}

	return New(opts)
}

// RendererFromConfig builds an Orchestrator for Render only. It needs no credentials.
func RendererFromConfig(cfg *config.Config, store Store) (*Orchestrator, error) {
	opts, err := baseOptions(cfg, store)
	if err != nil {
		return nil, err
	}
	return New(opts)
}

func baseOptions(cfg *config.Config, store Store) (Options, error) {
	window, err := validate.NewWindow(cfg.Window.Start, cfg.Window.End)
	if err != nil {
		return Options{}, fmt.Errorf("invalid window: %w", err)
	}

	days, err := report.DaysFromTable(cfg.Window.Days)
	if err != nil {
		return Options{}, fmt.Errorf("invalid window days: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("Unknown timezone, using UTC", logger.Fields{"timezone": cfg.Timezone})
		loc = time.UTC
	}

	opts := Options{
		Extractor: extract.New(cfg.City),
		Validator: validate.New(window),
		Formatter: report.NewFormatter(days),
		Store:     store,
		WeekLabel: cfg.Window.WeekLabel,
		Location:  loc,
	}

	if cfg.Seed.Title != "" {
		opts.Seed = &event.CandidateRecord{
			Title:    cfg.Seed.Title,
			Date:     cfg.Seed.Date,
			Time:     cfg.Seed.Time,
			Location: cfg.Seed.Location,
			URL:      cfg.Seed.URL,
		}
	}

	return opts, nil
}
