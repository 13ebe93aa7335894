/* bot.go
 * Contains logic used for creating the bot. Requires a discord bot token and an APIPtr, both of which are passed in
 * from main.go
 * Authors: Zachary Bower
 */

package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"tournament-importer/api/api"
	"unicode/utf8"

	"github.com/go-andiamo/splitter"
)

// maxMessageLength is the longest message discord accepts
const maxMessageLength = 2000

type Bot struct {
	BotToken string
	APIPtr   *api.API
	// ChannelID receives the diagnostics of every import when set
	ChannelID string
	Logger    *slog.Logger
}

func NewBot(botToken string, apiPtr *api.API) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}
	if apiPtr == nil {
		return nil, fmt.Errorf("apiPtr is required but none was provided")
	}

	return &Bot{
		BotToken: botToken,
		APIPtr:   apiPtr,
		Logger:   slog.Default(),
	}, nil
}

// Helper function to check if a string starts with a given substring
// Preconditions: Recieves an input string and a substring
// Postconditions: Returns true if the substring is at the start of the string, else returns false
func startsWith(inputString string, substring string) bool {
	return strings.HasPrefix(inputString, substring)
}

// commandArgs splits a command message into its arguments, dropping the command itself. Arguments that contain
// spaces are enclosed in double quotes (e.g. $import https://... "Férfi egyes")
func commandArgs(content string) ([]string, error) {
	// splitter keeps quoted arguments together where strings.Fields would break them apart
	spaceSplitter, err := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	if err != nil {
		return nil, err
	}
	parts, err := spaceSplitter.Split(strings.TrimSpace(content))
	if err != nil {
		return nil, err
	}
	var args []string
	for i, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "\"“”")
		if i == 0 || p == "" {
			continue
		}
		args = append(args, p)
	}
	return args, nil
}

// truncate shortens a message to the discord limit
func truncate(message string) string {
	if len(message) <= maxMessageLength {
		return message
	}
	const suffix = "\n..."
	cut := maxMessageLength - len(suffix)
	// do not split a multi byte character
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut] + suffix
}

func (b *Bot) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}
