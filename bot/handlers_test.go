/* handlers_test.go
 * Contains unit tests for bot command handlers using a mock discord session
 * Authors: Zachary Bower
 */

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"tournament-importer/api/api"
	"tournament-importer/api/shared"
	"tournament-importer/api/store"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestBot creates a Bot whose API imports the sample workbook from any url
func createTestBot(t *testing.T) (*Bot, *api.MockStore) {
	t.Helper()
	apiPtr, mockStore, err := api.NewTestAPI()
	require.NoError(t, err)
	data, err := api.SampleWorkbookBytes()
	require.NoError(t, err)
	apiPtr.Fetcher = api.FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
		if strings.Contains(url, "missing") {
			return nil, fmt.Errorf("GET %s: status 404", url)
		}
		return data, nil
	})
	return &Bot{BotToken: "test_token", APIPtr: apiPtr}, mockStore
}

// createMockMessage creates a mock discord message for testing
func createMockMessage(content, userID, username, channelID string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{
		Message: &discordgo.Message{
			Content:   content,
			ChannelID: channelID,
			Author: &discordgo.User{
				ID:       userID,
				Username: username,
			},
		},
	}
}

func send(b *Bot, content string) *MockDiscordSession {
	session := NewMockDiscordSession()
	b.newMessageHandler(session, createMockMessage(content, "user123", "TestUser", "channel123"), "bot456")
	return session
}

// region helpMessage tests

func TestHelpMessage_Success(t *testing.T) {
	bot, _ := createTestBot(t)
	session := send(bot, "$help")

	require.Len(t, session.SentMessages, 1)
	msg := session.GetLastMessage()
	assert.Equal(t, "channel123", msg.ChannelID)
	for _, command := range []string{"$import", "$record", "$records", "$imports", "$profiles"} {
		assert.Contains(t, msg.Content, command)
	}
}

// endregion

// region import tests

func TestImport_FromURL(t *testing.T) {
	bot, mockStore := createTestBot(t)
	session := send(bot, "$import https://example.com/tavaszi.xlsx")

	require.Len(t, session.SentMessages, 1)
	msg := session.GetLastMessage().Content
	assert.Contains(t, msg, "Imported `Tavaszi_Kupa_Budapest__` (TEST)")
	assert.Contains(t, msg, "1 draws, 4 participants")
	assert.Len(t, mockStore.Records, 1)
}

func TestImport_Cached(t *testing.T) {
	bot, _ := createTestBot(t)
	send(bot, "$import https://example.com/tavaszi.xlsx")
	session := send(bot, "$import https://example.com/tavaszi.xlsx")

	assert.Contains(t, session.GetLastMessage().Content, "unchanged since the last import")
}

func TestImport_WithSheetFilter(t *testing.T) {
	bot, mockStore := createTestBot(t)
	send(bot, `$import https://example.com/tavaszi.xlsx "ms"`)

	require.Len(t, mockStore.Imports, 1)
	assert.Equal(t, "ms", mockStore.Imports[0].SheetFilter)
}

func TestImport_FromAttachment(t *testing.T) {
	bot, mockStore := createTestBot(t)
	session := NewMockDiscordSession()
	message := createMockMessage(`$import "ms"`, "user123", "TestUser", "channel123")
	message.Attachments = []*discordgo.MessageAttachment{{URL: "https://cdn.example.com/tavaszi.xlsx"}}

	bot.importHandler(session, message)

	assert.Contains(t, session.GetLastMessage().Content, "Imported")
	require.Len(t, mockStore.Imports, 1)
	assert.Equal(t, "https://cdn.example.com/tavaszi.xlsx", mockStore.Imports[0].Source)
	assert.Equal(t, "ms", mockStore.Imports[0].SheetFilter)
}

func TestImport_Usage(t *testing.T) {
	bot, mockStore := createTestBot(t)
	session := send(bot, "$import")

	assert.Contains(t, session.GetLastMessage().Content, "Usage")
	assert.Empty(t, mockStore.Imports)
}

func TestImport_BadQuotes(t *testing.T) {
	bot, _ := createTestBot(t)
	session := send(bot, `$import https://example.com/tavaszi.xlsx "ms`)

	assert.Contains(t, session.GetLastMessage().Content, "Could not read the command")
}

func TestImport_FetchError(t *testing.T) {
	bot, _ := createTestBot(t)
	session := send(bot, "$import https://example.com/missing.xlsx")

	msg := session.GetLastMessage().Content
	assert.True(t, strings.HasPrefix(msg, "Import failed"))
	assert.Contains(t, msg, "status 404")
}

// endregion

// region record tests

func TestRecord_Success(t *testing.T) {
	bot, _ := createTestBot(t)
	send(bot, "$import https://example.com/tavaszi.xlsx")
	session := send(bot, "$record Tavaszi_Kupa_Budapest__")

	msg := session.GetLastMessage().Content
	assert.Contains(t, msg, "**Tavaszi Kupa**, Budapest")
	assert.Contains(t, msg, "- MS: KNOCKOUT MAIN, 4 entries, 3 matches")
}

func TestRecord_NotFound(t *testing.T) {
	bot, _ := createTestBot(t)
	session := send(bot, "$record nope")

	assert.Contains(t, session.GetLastMessage().Content, "No tournament with id `nope`")
}

func TestRecord_StoreError(t *testing.T) {
	bot, mockStore := createTestBot(t)
	mockStore.GetRecordError = errors.New("database unavailable")
	session := send(bot, "$record nope")

	assert.Equal(t, "An error occured getting the tournament", session.GetLastMessage().Content)
}

func TestRecord_Usage(t *testing.T) {
	bot, _ := createTestBot(t)
	session := send(bot, "$record")

	assert.Contains(t, session.GetLastMessage().Content, "Usage")
}

// endregion

// region records tests

func TestRecords_Empty(t *testing.T) {
	bot, _ := createTestBot(t)
	session := send(bot, "$records")

	assert.Equal(t, "No tournaments have been imported yet", session.GetLastMessage().Content)
}

func TestRecords_List(t *testing.T) {
	bot, mockStore := createTestBot(t)
	for i := range maxListed + 2 {
		id := fmt.Sprintf("T%02d", i)
		mockStore.Records[id] = shared.TournamentRecord{TournamentID: id, TournamentName: "Kupa", City: "Pécs",
			Organization: "HTS"}
	}
	session := send(bot, "$records")

	msg := session.GetLastMessage().Content
	assert.Contains(t, msg, "- `T00` Kupa, Pécs (HTS) 0 draws")
	assert.NotContains(t, msg, "`T21`")
	assert.Contains(t, msg, "... and 2 more")
}

func TestRecords_StoreError(t *testing.T) {
	bot, mockStore := createTestBot(t)
	mockStore.ListRecordsError = errors.New("database unavailable")
	session := send(bot, "$records")

	assert.Equal(t, "An error occured listing the tournaments", session.GetLastMessage().Content)
}

// endregion

// region imports tests

func TestImports_List(t *testing.T) {
	bot, mockStore := createTestBot(t)
	mockStore.Imports = []store.ImportLog{
		{TournamentID: "T1", Source: "first.xlsx", ImportedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{TournamentID: "T1", Source: "second.xlsx", Cached: true, ImportedAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
			Diagnostics: []shared.Diagnostic{{Kind: shared.KindNoRounds}}},
	}
	session := send(bot, "$imports T1")

	msg := session.GetLastMessage().Content
	lines := strings.Split(strings.TrimSpace(msg), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "- 2024-05-02 10:00:00 second.xlsx (cached), 1 diagnostics", lines[1])
	assert.Equal(t, "- 2024-05-01 10:00:00 first.xlsx, 0 diagnostics", lines[2])
}

func TestImports_None(t *testing.T) {
	bot, _ := createTestBot(t)
	session := send(bot, "$imports T1")

	assert.Equal(t, "No imports of `T1`", session.GetLastMessage().Content)
}

func TestImports_Usage(t *testing.T) {
	bot, _ := createTestBot(t)
	session := send(bot, "$imports")

	assert.Contains(t, session.GetLastMessage().Content, "Usage: `$imports")
}

// endregion

// region profiles tests

func TestProfiles_All(t *testing.T) {
	bot, _ := createTestBot(t)
	require.NoError(t, bot.APIPtr.Registry.LoadYAML([]byte(`
- organization: TP
  mustContainSheetNames: ["Players"]
`)))
	session := send(bot, "$profiles")

	msg := session.GetLastMessage().Content
	assert.Contains(t, msg, "- TEST (TEST-1)")
	assert.Contains(t, msg, "- TP (recognised, not supported)")
}

func TestProfiles_NoProviderID(t *testing.T) {
	bot, _ := createTestBot(t)
	noID := strings.NewReplacer("    providerId: TEST-1\n", "", "organization: TEST", "organization: NOID",
		"^MS$", "^WS$").Replace(api.TestProfilesYAML)
	require.NoError(t, bot.APIPtr.Registry.LoadYAML([]byte(noID)))

	msg := send(bot, "$profiles").GetLastMessage().Content
	assert.Contains(t, msg, "- NOID\n")
	assert.NotContains(t, msg, "()")
}

func TestProfiles_Query(t *testing.T) {
	bot, _ := createTestBot(t)
	assert.Contains(t, send(bot, "$profiles tst").GetLastMessage().Content, "- TEST (TEST-1)")
	assert.Equal(t, "No matching organizations", send(bot, "$profiles zzz").GetLastMessage().Content)
}

// endregion

// region newMessage routing tests

func TestNewMessage_IgnoresOwnMessages(t *testing.T) {
	bot, _ := createTestBot(t)
	session := NewMockDiscordSession()
	bot.newMessageHandler(session, createMockMessage("$help", "bot456", "Bot", "channel123"), "bot456")

	assert.Empty(t, session.SentMessages)
}

func TestNewMessage_IgnoresOtherMessages(t *testing.T) {
	bot, _ := createTestBot(t)
	assert.Empty(t, send(bot, "hello $help").SentMessages)
	assert.Empty(t, send(bot, "$unknown").SentMessages)
}

func TestNewMessage_SessionError(t *testing.T) {
	bot, _ := createTestBot(t)
	session := NewMockDiscordSession()
	session.ErrorToReturn = errors.New("discord unavailable")

	assert.NotPanics(t, func() {
		bot.newMessageHandler(session, createMockMessage("$help", "user123", "TestUser", "channel123"), "bot456")
	})
	assert.Empty(t, session.SentMessages)
}

// endregion
