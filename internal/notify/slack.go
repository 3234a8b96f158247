package notify

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/slack-go/slack"
)

var (
	boldPattern    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
)

// Slack posts to an incoming webhook.
type Slack struct {
	webhookURL string
	username   string
}

func NewSlack(webhookURL, username string) *Slack {
	return &Slack{webhookURL: webhookURL, username: username}
}

func (s *Slack) Send(ctx context.Context, text string) error {
	msg := &slack.WebhookMessage{
		Username: s.username,
		Text:     Mrkdwn(text),
	}
	if err := slack.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
		return fmt.Errorf("posting to slack: %w", err)
	}
	return nil
}

// Mrkdwn rewrites the markdown produced for recaps into the single-asterisk
// bold used by Slack and Telegram.
func Mrkdwn(text string) string {
	text = headingPattern.ReplaceAllString(text, "**$1**")
	text = boldPattern.ReplaceAllString(text, "*$1*")
	return strings.TrimSpace(text)
}
