//go:build !test

/* bot_runtime.go
 * Contains runtime-only discord bot methods that use *discordgo.Session directly.
 * Delegates to the testable handlers in handlers.go
 */

package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"tournament-importer/api/metrics"

	"github.com/bwmarrin/discordgo"
)

// Run connects to discord and handles commands until ctx is cancelled. When the bot has a ChannelID, the API's
// diagnostics are posted there through a rate limited DiscordNotifier
// Preconditions: Receives a context that is cancelled on shutdown, and the notifier rate limit
// Postconditions: The session is closed when Run returns
func (b *Bot) Run(ctx context.Context, notifyInterval time.Duration, notifyBurst int) error {
	// create a session
	discord, err := discordgo.New("Bot " + b.BotToken)
	if err != nil {
		return err
	}
	if b.ChannelID != "" {
		b.APIPtr.Notifier = NewDiscordNotifier(discord, b.ChannelID, notifyInterval, notifyBurst, b.APIPtr.Metrics,
			b.logger())
	}
	discord.AddHandler(b.newMessage)

	if err := discord.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	defer discord.Close()

	b.logger().Info("discord bot started", "notifyChannel", b.ChannelID)
	<-ctx.Done()
	b.logger().Info("discord bot stopping")
	return nil
}

// NewChannelNotifier creates a DiscordNotifier over a REST only session, for processes that post diagnostics
// without handling commands
func NewChannelNotifier(botToken, channelID string, interval time.Duration, burst int, m *metrics.Metrics,
	logger *slog.Logger) (*DiscordNotifier, error) {
	if botToken == "" || channelID == "" {
		return nil, fmt.Errorf("a bot token and a channel id are required")
	}
	discord, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, err
	}
	return NewDiscordNotifier(discord, channelID, interval, burst, m, logger), nil
}

// newMessage delegates to the testable newMessageHandler
// *discordgo.Session implements DiscordSession interface
func (b *Bot) newMessage(discord *discordgo.Session, message *discordgo.MessageCreate) {
	b.newMessageHandler(discord, message, discord.State.User.ID)
}
