/* handlers.go
 * Contains testable handler methods that accept the DiscordSession interface
 * Authors: Zachary Bower
 */

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"tournament-importer/api/api"
	"tournament-importer/api/shared"

	"github.com/bwmarrin/discordgo"
)

// commandTimeout bounds the work done for a single command, downloads included
const commandTimeout = 2 * time.Minute

// maxListed is the number of records or imports listed by one message
const maxListed = 20

// helpMessageHandler handles the $help command with a DiscordSession interface
func (b *Bot) helpMessageHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("Tournament Importer\n")
	res.WriteString("`$import <url> [\"sheet filter\"]`: Imports a tournament workbook. Instead of a url you can attach the .xlsx file to the message. The optional filter limits the import to the sheets whose name contains it\n")
	res.WriteString("`$record <tournamentId>`: Shows a stored tournament and its draws\n")
	res.WriteString("`$records`: Lists the stored tournaments\n")
	res.WriteString("`$imports <tournamentId>`: Shows the import history of a tournament\n")
	res.WriteString("`$profiles [organization]`: Lists the organizations whose workbooks can be imported. Names are matched loosely\n")
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// importHandler handles the $import command with a DiscordSession interface
func (b *Bot) importHandler(session DiscordSession, message *discordgo.MessageCreate) {
	args, err := commandArgs(message.Content)
	if err != nil {
		session.ChannelMessageSend(message.ChannelID, "Could not read the command, check the quotes around the sheet filter")
		return
	}

	var url, sheetFilter string
	switch {
	case len(args) > 0 && strings.HasPrefix(args[0], "http"):
		url = args[0]
		if len(args) > 1 {
			sheetFilter = args[1]
		}
	case len(message.Attachments) > 0:
		url = message.Attachments[0].URL
		if len(args) > 0 {
			sheetFilter = args[0]
		}
	default:
		session.ChannelMessageSend(message.ChannelID, "Usage: `$import <url> [\"sheet filter\"]` or attach a workbook")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	result, err := b.APIPtr.ImportFromURL(ctx, url, sheetFilter)
	if err != nil {
		b.logger().Error("import failed", "url", url, "error", err)
		session.ChannelMessageSend(message.ChannelID, truncate(fmt.Sprintf("Import failed: %s", err)))
		return
	}
	session.ChannelMessageSend(message.ChannelID, truncate(formatImport(result)))
}

// recordHandler handles the $record command with a DiscordSession interface
func (b *Bot) recordHandler(session DiscordSession, message *discordgo.MessageCreate) {
	args, err := commandArgs(message.Content)
	if err != nil || len(args) == 0 {
		session.ChannelMessageSend(message.ChannelID, "Usage: `$record <tournamentId>`")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	record, err := b.APIPtr.GetRecord(ctx, args[0])
	if err != nil {
		if errors.Is(err, shared.ErrRecordNotFound) {
			session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("No tournament with id `%s`. Use $records to list them", args[0]))
			return
		}
		b.logger().Error("failed to get record", "tournamentId", args[0], "error", err)
		session.ChannelMessageSend(message.ChannelID, "An error occured getting the tournament")
		return
	}
	session.ChannelMessageSend(message.ChannelID, truncate(formatRecord(record)))
}

// recordsHandler handles the $records command with a DiscordSession interface
func (b *Bot) recordsHandler(session DiscordSession, message *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	summaries, err := b.APIPtr.ListRecords(ctx)
	if err != nil {
		b.logger().Error("failed to list records", "error", err)
		session.ChannelMessageSend(message.ChannelID, "An error occured listing the tournaments")
		return
	}
	if len(summaries) == 0 {
		session.ChannelMessageSend(message.ChannelID, "No tournaments have been imported yet")
		return
	}

	var res strings.Builder
	res.WriteString("Stored tournaments:\n")
	for i, s := range summaries {
		if i == maxListed {
			res.WriteString(fmt.Sprintf("... and %d more\n", len(summaries)-maxListed))
			break
		}
		res.WriteString(fmt.Sprintf("- `%s` %s, %s (%s) %d draws\n", s.TournamentID, s.TournamentName, s.City,
			s.Organization, s.Draws))
	}
	session.ChannelMessageSend(message.ChannelID, truncate(res.String()))
}

// importsHandler handles the $imports command with a DiscordSession interface
func (b *Bot) importsHandler(session DiscordSession, message *discordgo.MessageCreate) {
	args, err := commandArgs(message.Content)
	if err != nil || len(args) == 0 {
		session.ChannelMessageSend(message.ChannelID, "Usage: `$imports <tournamentId>`")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	logs, err := b.APIPtr.ListImports(ctx, args[0])
	if err != nil {
		b.logger().Error("failed to list imports", "tournamentId", args[0], "error", err)
		session.ChannelMessageSend(message.ChannelID, "An error occured listing the imports")
		return
	}
	if len(logs) == 0 {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("No imports of `%s`", args[0]))
		return
	}

	var res strings.Builder
	res.WriteString(fmt.Sprintf("Imports of `%s`:\n", args[0]))
	for i, l := range logs {
		if i == maxListed {
			break
		}
		from := ""
		if l.Cached {
			from = " (cached)"
		}
		res.WriteString(fmt.Sprintf("- %s %s%s, %d diagnostics\n", l.ImportedAt.Format(time.DateTime), l.Source,
			from, len(l.Diagnostics)))
	}
	session.ChannelMessageSend(message.ChannelID, truncate(res.String()))
}

// profilesHandler handles the $profiles command with a DiscordSession interface
func (b *Bot) profilesHandler(session DiscordSession, message *discordgo.MessageCreate) {
	args, _ := commandArgs(message.Content)
	profiles := b.APIPtr.Profiles()
	if len(args) > 0 {
		matches := make(map[string]bool)
		for _, org := range b.APIPtr.FindProfiles(strings.Join(args, " ")) {
			matches[org] = true
		}
		filtered := profiles[:0]
		for _, p := range profiles {
			if matches[p.Organization] {
				filtered = append(filtered, p)
			}
		}
		profiles = filtered
	}
	if len(profiles) == 0 {
		session.ChannelMessageSend(message.ChannelID, "No matching organizations")
		return
	}

	var res strings.Builder
	res.WriteString("Organizations:\n")
	for _, p := range profiles {
		switch {
		case !p.Supported:
			res.WriteString(fmt.Sprintf("- %s (recognised, not supported)\n", p.Organization))
		case p.ProviderID == "":
			res.WriteString(fmt.Sprintf("- %s\n", p.Organization))
		default:
			res.WriteString(fmt.Sprintf("- %s (%s)\n", p.Organization, p.ProviderID))
		}
	}
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// newMessageHandler routes messages to appropriate handlers with a DiscordSession interface
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author == nil || message.Author.ID == botUserID {
		return
	}

	// $imports must be matched before $import
	switch {
	case startsWith(message.Content, "$help"):
		b.helpMessageHandler(session, message)

	case startsWith(message.Content, "$imports"):
		b.importsHandler(session, message)

	case startsWith(message.Content, "$import"):
		b.importHandler(session, message)

	case startsWith(message.Content, "$records"):
		b.recordsHandler(session, message)

	case startsWith(message.Content, "$record"):
		b.recordHandler(session, message)

	case startsWith(message.Content, "$profiles"):
		b.profilesHandler(session, message)
	}
}

func formatImport(result api.ImportResult) string {
	var res strings.Builder
	r := result.Record
	res.WriteString(fmt.Sprintf("Imported `%s` (%s)", r.TournamentID, r.Organization))
	if result.Cached {
		res.WriteString(", unchanged since the last import")
	}
	res.WriteString("\n")
	res.WriteString(fmt.Sprintf("%d draws, %d participants\n", len(r.Draws), len(r.Participants)))

	counts := make(map[shared.Severity]int)
	for _, d := range result.Diagnostics {
		counts[d.Severity]++
	}
	if counts[shared.SeverityError] > 0 || counts[shared.SeverityWarning] > 0 {
		res.WriteString(fmt.Sprintf("%d errors, %d warnings\n", counts[shared.SeverityError],
			counts[shared.SeverityWarning]))
	}
	return res.String()
}

func formatRecord(r shared.TournamentRecord) string {
	var res strings.Builder
	res.WriteString(fmt.Sprintf("**%s**", r.TournamentName))
	if r.City != "" {
		res.WriteString(fmt.Sprintf(", %s", r.City))
	}
	if r.Dates.StartDate != "" {
		res.WriteString(fmt.Sprintf(" %s", r.Dates.StartDate))
		if r.Dates.EndDate != "" && r.Dates.EndDate != r.Dates.StartDate {
			res.WriteString(fmt.Sprintf(" - %s", r.Dates.EndDate))
		}
	}
	res.WriteString(fmt.Sprintf("\n%s, %d participants\n", r.Organization, len(r.Participants)))
	for _, d := range r.Draws {
		name := d.Event
		if name == "" {
			name = d.SheetName
		}
		res.WriteString(fmt.Sprintf("- %s: %s %s, %d entries, %d matches\n", name, d.DrawType, d.Stage,
			len(d.Entries), len(d.MatchUps)))
	}
	return res.String()
}
