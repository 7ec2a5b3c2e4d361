package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// SlackNotifier sends notifications to a Slack incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	Channel    string
	Username   string
	Client     *http.Client
}

// NewSlackNotifier creates a Slack webhook notifier.
func NewSlackNotifier(webhookURL string, opts ...SlackOption) *SlackNotifier {
	n := &SlackNotifier{
		WebhookURL: webhookURL,
		Username:   "artifactwait",
		Client:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SlackOption configures SlackNotifier.
type SlackOption func(*SlackNotifier)

// WithSlackChannel sets the channel to post to.
func WithSlackChannel(channel string) SlackOption {
	return func(n *SlackNotifier) { n.Channel = channel }
}

// WithSlackUsername sets the bot username.
func WithSlackUsername(username string) SlackOption {
	return func(n *SlackNotifier) { n.Username = username }
}

// Notify implements Notifier.
func (n *SlackNotifier) Notify(ctx context.Context, event Event) error {
	payload := slackPayload{
		Username: n.Username,
		Channel:  n.Channel,
		Attachments: []slackAttachment{
			{
				Color:     colorForSeverity(event.Severity),
				Title:     fmt.Sprintf("%s %s", emojiForEvent(event.Type), event.Type),
				Text:      event.Message,
				Footer:    fmt.Sprintf("%s | run %d", event.Repo, event.RunID),
				Timestamp: event.Timestamp.Unix(),
				Fields:    slackFields(event),
			},
		},
	}

	if err := postJSON(ctx, n.Client, n.WebhookURL, nil, payload); err != nil {
		return fmt.Errorf("send slack message: %w", err)
	}
	return nil
}

func emojiForEvent(t EventType) string {
	switch t {
	case EventArtifactsReady:
		return ":white_check_mark:"
	case EventWaitTimedOut:
		return ":hourglass:"
	case EventWaitFailed:
		return ":x:"
	default:
		return ":package:"
	}
}

func colorForSeverity(severity string) string {
	switch severity {
	case SeverityError:
		return "danger"
	case SeverityWarning:
		return "warning"
	default:
		return "good"
	}
}

func slackFields(event Event) []slackField {
	var fields []slackField
	for _, a := range event.Artifacts {
		fields = append(fields, slackField{Title: a.Name, Value: strconv.FormatInt(a.ID, 10), Short: true})
	}
	if len(event.Missing) > 0 {
		fields = append(fields, slackField{Title: "missing", Value: strings.Join(event.Missing, ", ")})
	}
	return fields
}

// Slack webhook payload types
type slackPayload struct {
	Username    string            `json:"username,omitempty"`
	Channel     string            `json:"channel,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color     string       `json:"color,omitempty"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Footer    string       `json:"footer,omitempty"`
	Timestamp int64        `json:"ts,omitempty"`
	Fields    []slackField `json:"fields,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
