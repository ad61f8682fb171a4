package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ai-events/internal/config"
	"github.com/pfrederiksen/ai-events/internal/logger"
	"github.com/pfrederiksen/ai-events/internal/pipeline"
	"github.com/pfrederiksen/ai-events/internal/storage"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitRunFailed = 2
)

// errRunFailed is returned when a run finished in the error status.
var errRunFailed = errors.New("run finished with errors")

var (
	flagConfig  string
	flagDataDir string
	flagFormat  string
	flagSort    string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai-events",
		Short: "Discover AI events for the week and render a weekday report",
		Long: `A CLI tool that searches for AI events in a city for a fixed week,
extracts and validates them, and renders a Monday-Friday report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "config.yaml", "Path to the YAML config file")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory for results (overrides config)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().StringVar(&flagSort, "sort", "", "Sort listed events: date, title or category")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newRunCmd(), newRenderCmd(), newScheduleCmd(), newNotifyCmd())

	return cmd
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Search, extract, validate and render the weekly report",
		RunE:  runPipeline,
	}
}

// runPipeline is the main command logic
func runPipeline(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.DataDir, cfg.ReportFile, cfg.ResultsFile)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	orch, err := pipeline.FromConfig(cfg, store)
	if err != nil {
		return err
	}

	if flagVerbose {
		fmt.Fprintf(os.Stderr, "Running %d queries and %d pages for %s (%s..%s)\n", len(cfg.Queries), len(cfg.Sources), cfg.City, cfg.Window.Start, cfg.Window.End)
	}

	state := orch.Run(cmd.Context(), cfg.Inputs())
	return finishRun(cmd, state, format)
}

func finishRun(cmd *cobra.Command, state *pipeline.RunState, format OutputFormat) error {
	if err := WriteOutput(cmd.OutOrStdout(), state, format, SortOrder(flagSort), flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if state.Status == pipeline.StatusError {
		return fmt.Errorf("%w: %s", errRunFailed, state.Error)
	}
	return nil
}

func outputFormat() (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
	return format, nil
}

// loadConfig loads and validates the config and configures the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger.SetDefault(logger.New(logger.ParseLevel(cfg.Log.Level), os.Stderr))
	return cfg, nil
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errRunFailed):
		return ExitRunFailed
	default:
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(ExitCode(err))
}
