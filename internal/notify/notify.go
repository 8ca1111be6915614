package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"aasbench/internal/regression"
)

// Notifier delivers operator-facing alerts about a finished run.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Nop is used when no notification channel is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }

// SlackNotifier posts to a Slack incoming webhook.
type SlackNotifier struct {
	WebhookURL string
}

// NewSlackNotifier creates a new SlackNotifier.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{WebhookURL: webhookURL}
}

// Notify sends a message to the configured Slack webhook.
func (s *SlackNotifier) Notify(ctx context.Context, message string) error {
	if s.WebhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}
	if err := slack.PostWebhookContext(ctx, s.WebhookURL, &slack.WebhookMessage{Text: message}); err != nil {
		return fmt.Errorf("failed to send slack notification: %w", err)
	}
	return nil
}

// RegressionMessage formats the significant regressions of one run for
// a chat channel. Returns "" when there is nothing to report.
func RegressionMessage(runID string, regs []regression.Comparison) string {
	if len(regs) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, ":rotating_light: %d performance regression(s) in run %s\n", len(regs), runID)
	for _, c := range regs {
		fmt.Fprintf(&b, "• %s %s/%s: %.0f ns → %.0f ns (%+.1f%%)",
			c.Implementation, c.Dataset, c.OperationID,
			c.PreviousMeanNs, c.CurrentMeanNs, c.DeltaPct)
		if c.ReducedConfidence {
			b.WriteString(" [reduced confidence]")
		}
		b.WriteString("\n")
	}
	return b.String()
}
