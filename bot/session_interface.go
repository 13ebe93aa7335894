/* session_interface.go
 * Contains the interface for the discord session, so that handlers and the notifier can be tested without discord
 * Authors: Zachary Bower
 */

package bot

import "github.com/bwmarrin/discordgo"

// DiscordSession defines the discord session methods used by the bot
type DiscordSession interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Ensure *discordgo.Session implements DiscordSession
var _ DiscordSession = (*discordgo.Session)(nil)
