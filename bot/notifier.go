/* notifier.go
 * Contains the discord diagnostics notifier: posts the warnings and errors raised while importing a workbook to a
 * channel. Posting is rate limited; a diagnostic over the limit is dropped and counted, it never delays the import
 * Authors: Zachary Bower
 */

package bot

import (
	"fmt"
	"log/slog"
	"time"
	"tournament-importer/api/metrics"
	"tournament-importer/api/shared"

	"golang.org/x/time/rate"
)

// DiscordNotifier implements shared.Notifier by posting to a discord channel
type DiscordNotifier struct {
	session   DiscordSession
	channelID string
	limiter   *rate.Limiter
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

var _ shared.Notifier = (*DiscordNotifier)(nil)

// NewDiscordNotifier creates a notifier that posts at most burst messages at once and one more every interval
// Preconditions: Receives a session, the channel to post to and the rate limit. m and logger may be nil
// Postconditions: Returns the notifier
func NewDiscordNotifier(session DiscordSession, channelID string, interval time.Duration, burst int,
	m *metrics.Metrics, logger *slog.Logger) *DiscordNotifier {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
		limiter:   rate.NewLimiter(limit, burst),
		metrics:   m,
		logger:    logger,
	}
}

// Notify posts a warning or error diagnostic. Info diagnostics are not posted
func (n *DiscordNotifier) Notify(d shared.Diagnostic) {
	if d.Severity == shared.SeverityInfo {
		return
	}
	if !n.limiter.Allow() {
		n.metrics.DroppedNotification()
		n.logger.Debug("diagnostic notification dropped", "kind", d.Kind, "sheet", d.Sheet)
		return
	}
	if _, err := n.session.ChannelMessageSend(n.channelID, formatDiagnostic(d)); err != nil {
		n.logger.Warn("failed to post diagnostic", "error", err)
	}
}

func formatDiagnostic(d shared.Diagnostic) string {
	location := d.Sheet
	if d.Cell != "" {
		location = fmt.Sprintf("%s!%s", d.Sheet, d.Cell)
	}
	if location == "" {
		return truncate(fmt.Sprintf("**%s** %s: %s", d.Severity, d.Kind, d.Message))
	}
	return truncate(fmt.Sprintf("**%s** %s `%s`: %s", d.Severity, d.Kind, location, d.Message))
}
