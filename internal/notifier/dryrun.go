package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pfrederiksen/ai-events/internal/event"
)

// DryRunNotifier prints what would be tweeted without actually posting
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to out (stdout when nil)
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out}
}

// Notify prints the tweets that would be posted
func (n *DryRunNotifier) Notify(ctx context.Context, events []event.CanonicalRecord) error {
	for i, evt := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		tweet := formatTweet(evt)
		fmt.Fprintf(n.out, "--- Tweet %d/%d ---\n", i+1, len(events))
		fmt.Fprintln(n.out, tweet)
		fmt.Fprintf(n.out, "\n(Length: %d characters)\n\n", utf8.RuneCountInString(tweet))
	}
	return nil
}

// DryRunDigest prints the Telegram digest without sending it
type DryRunDigest struct {
	out io.Writer
}

// NewDryRunDigest creates a dry-run digest writing to out (stdout when nil)
func NewDryRunDigest(out io.Writer) *DryRunDigest {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunDigest{out: out}
}

// Notify prints the digest messages that would be sent
func (n *DryRunDigest) Notify(ctx context.Context, events []event.CanonicalRecord) error {
	chunks := splitMessage(FormatDigest(events), maxMessageLen)
	for i, msg := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(n.out, "--- Message %d/%d ---\n", i+1, len(chunks))
		fmt.Fprintln(n.out, msg)
	}
	return nil
}
