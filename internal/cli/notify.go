package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ai-events/internal/filter"
	"github.com/pfrederiksen/ai-events/internal/logger"
	"github.com/pfrederiksen/ai-events/internal/notifier"
	"github.com/pfrederiksen/ai-events/internal/storage"
)

var (
	flagDryRun     bool
	flagResultsIn  string
	flagMaxNotices int
	flagChannel    string
	notifyFilter   = filter.NewFilter()
)

func newNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Announce the events of the last run",
		Long: `Notify reads the final run snapshot and announces its events.

The twitter channel posts one tweet per event. Credentials are read from
TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_SECRET.

The telegram channel posts one digest grouped by day to TELEGRAM_CHAT_ID
using TELEGRAM_BOT_TOKEN.`,
		RunE: runNotify,
	}
	cmd.Flags().StringVar(&flagChannel, "channel", "twitter", "Notification channel: twitter or telegram")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print tweets without posting")
	cmd.Flags().StringVar(&flagResultsIn, "input", "", "Run snapshot to read (default: configured results file)")
	cmd.Flags().IntVar(&flagMaxNotices, "max", 0, "Maximum number of events to announce (0 for all)")
	cmd.Flags().StringSliceVar(&notifyFilter.Days, "day", nil, "Only announce events on these weekdays (e.g. tue,wed)")
	cmd.Flags().StringSliceVar(&notifyFilter.Categories, "category", nil, "Only announce these categories (e.g. Meetup,\"Tech Session\")")
	cmd.Flags().StringSliceVar(&notifyFilter.Formats, "attendance", nil, "Only announce these formats: INPERSON, ONLINE, HYBRID")
	cmd.Flags().StringSliceVar(&notifyFilter.Keywords, "keyword", nil, "Only announce events whose title contains one of these words")
	return cmd
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.DataDir, cfg.ReportFile, cfg.ResultsFile)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	state, err := store.LoadRunState(flagResultsIn)
	if err != nil {
		return err
	}

	events := sortEvents(notifyFilter.Apply(state.Events), SortOrder(flagSort))
	if flagVerbose {
		fmt.Fprintf(os.Stderr, "Filter: %s\n", notifyFilter)
	}
	if flagMaxNotices > 0 && len(events) > flagMaxNotices {
		events = events[:flagMaxNotices]
	}
	if len(events) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No events to announce.")
		return nil
	}

	n, err := newNotifier(cmd, flagChannel, flagDryRun)
	if err != nil {
		return err
	}

	if err := n.Notify(cmd.Context(), events); err != nil {
		return fmt.Errorf("notifying: %w", err)
	}

	logger.Info("Events announced", logger.Fields{
		"run_id":  state.ID,
		"events":  len(events),
		"channel": flagChannel,
		"dry_run": flagDryRun,
	})
	return nil
}

func newNotifier(cmd *cobra.Command, channel string, dryRun bool) (notifier.Notifier, error) {
	switch channel {
	case "twitter":
		if dryRun {
			return notifier.NewDryRunNotifier(cmd.OutOrStdout()), nil
		}
		return notifier.NewTwitterNotifier()
	case "telegram":
		if dryRun {
			return notifier.NewDryRunDigest(cmd.OutOrStdout()), nil
		}
		return notifier.NewTelegramNotifier()
	default:
		return nil, fmt.Errorf("unknown channel %q (want twitter or telegram)", channel)
	}
}
