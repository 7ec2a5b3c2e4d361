// Package notify reports the outcome of a wait to chat or HTTP endpoints.
//
// Implementations:
//   - SlackNotifier: Posts to a Slack incoming webhook
//   - WebhookNotifier: Posts the Event as JSON
//   - LogNotifier: Logs the Event with slog
//   - MultiNotifier: Fans out to several notifiers
//   - NopNotifier: Discards events
//
// Example usage:
//
//	found, err := waiter.Wait(ctx, req)
//	notifier := notify.NewSlackNotifier(webhookURL, notify.WithSlackChannel("#releases"))
//	_ = notifier.Notify(ctx, notify.NewEvent(req, found, err, time.Now()))
package notify
