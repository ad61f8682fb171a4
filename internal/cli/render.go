package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ai-events/internal/pipeline"
	"github.com/pfrederiksen/ai-events/internal/storage"
)

var flagInput string

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Validate and render the report from a saved candidate snapshot",
		Long: `Render rebuilds the report from midway.json (or --input) without searching.
No API credentials are needed.`,
		RunE: runRender,
	}
	cmd.Flags().StringVar(&flagInput, "input", "", "Candidate snapshot to render (default <data-dir>/midway.json)")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
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

	candidates, err := store.LoadCandidates(flagInput)
	if err != nil {
		return err
	}

	orch, err := pipeline.RendererFromConfig(cfg, store)
	if err != nil {
		return err
	}

	state := orch.Render(cmd.Context(), candidates)
	return finishRun(cmd, state, format)
}
