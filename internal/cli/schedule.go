package cli

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ai-events/internal/config"
	"github.com/pfrederiksen/ai-events/internal/logger"
	"github.com/pfrederiksen/ai-events/internal/pipeline"
	"github.com/pfrederiksen/ai-events/internal/storage"
)

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on the configured cron schedule until interrupted",
		RunE:  runSchedule,
	}
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.DataDir, cfg.ReportFile, cfg.ResultsFile)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	// Credentials are checked before the first tick.
	orch, err := pipeline.FromConfig(cfg, store)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c, err := newScheduler(cfg, func() {
		state := orch.Run(ctx, cfg.Inputs())
		logger.Info("Scheduled run finished", logger.Fields{
			"run_id": state.ID,
			"status": string(state.Status),
			"events": len(state.Events),
		})
	})
	if err != nil {
		return err
	}

	c.Start()
	logger.Info("Scheduler started", logger.Fields{"schedule": cfg.Schedule, "timezone": cfg.Timezone})

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("Scheduler stopped", nil)
	return nil
}

// newScheduler creates a cron scheduler running job on cfg.Schedule. Overlapping runs
// are skipped and panics are recovered.
func newScheduler(cfg *config.Config, job func()) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}

	l := cronLogger{}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(loc),
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)

	if _, err := c.AddFunc(cfg.Schedule, job); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}
	return c, nil
}

// cronLogger adapts the package logger to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, kvFields(keysAndValues), err)
}

func kvFields(keysAndValues []interface{}) logger.Fields {
	fields := logger.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
