package utils

import (
	"elk-bot/model"
	"elk-bot/utils/chattest"
	"elk-bot/utils/database"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHasAnyRole(t *testing.T) {
	assert.True(t, HasAnyRole([]string{"a", "b"}, []string{"b", "c"}))
	assert.False(t, HasAnyRole([]string{"a"}, []string{"c"}))
	assert.False(t, HasAnyRole([]string{"a"}, nil))
	assert.False(t, HasAnyRole(nil, []string{"a"}))
}

func TestFlagStoreToggle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "v1.json")
	store := NewFlagStore(path)

	flags, err := store.Load()
	require.NoError(t, err)
	assert.False(t, flags.TranslationEnabled)

	on, err := store.ToggleTranslation()
	require.NoError(t, err)
	assert.True(t, on)

	// a second store on the same file sees the change
	flags, err = NewFlagStore(path).Load()
	require.NoError(t, err)
	assert.True(t, flags.TranslationEnabled)

	off, err := store.ToggleTranslation()
	require.NoError(t, err)
	assert.False(t, off)
}

func TestFlagStoreReadsExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v1.json")
	store := NewFlagStore(path)
	require.NoError(t, os.WriteFile(path, []byte(`{"translation_enabled": true}`), 0644))

	flags, err := store.Load()
	require.NoError(t, err)
	assert.True(t, flags.TranslationEnabled)

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0644))
	_, err = store.Load()
	assert.Error(t, err)
}

func testNotifier(fake *chattest.Fake, opsChannel string) (*Notifier, *[]time.Duration, *[]func()) {
	logger := zap.NewNop()
	n := NewNotifier(fake, &OperatorLog{Messenger: fake, ChannelID: opsChannel, Logger: logger}, logger, 0)
	var delays []time.Duration
	var pending []func()
	n.AfterFunc = func(d time.Duration, f func()) {
		delays = append(delays, d)
		pending = append(pending, f)
	}
	return n, &delays, &pending
}

func TestTransientExpires(t *testing.T) {
	fake := chattest.New()
	n, delays, pending := testNotifier(fake, "ops")

	n.Transient("c1", "careful")

	assert.Equal(t, []string{"careful"}, fake.SentTo("c1"))
	assert.Equal(t, []time.Duration{DefaultTransientTTL}, *delays)
	assert.Empty(t, fake.Deleted)

	(*pending)[0]()
	assert.Equal(t, []string{"1001"}, fake.Deleted)
}

func TestFailReportsBothWays(t *testing.T) {
	fake := chattest.New()
	n, _, _ := testNotifier(fake, "ops")

	n.Fail("c1", "Translation", "AutoTranslate", "Translation Error: boom")

	assert.Equal(t, []string{"Translation Error: boom"}, fake.SentTo("c1"))
	require.Len(t, fake.Sent, 2)
	embed := fake.Sent[1].Embeds[0]
	assert.Equal(t, "ERROR Log", embed.Title)
	assert.Equal(t, 15158332, embed.Color)
	assert.Equal(t, []string{"Translation", "AutoTranslate", "Translation Error: boom"},
		[]string{embed.Fields[0].Value, embed.Fields[1].Value, embed.Fields[2].Value})
}

func TestOperatorLogWithoutChannel(t *testing.T) {
	fake := chattest.New()
	l := &OperatorLog{Messenger: fake, Logger: zap.NewNop()}

	require.NoError(t, l.LogWarn("System", "Startup", ""))
	msg, err := l.Send("hello")
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Empty(t, fake.Sent)
}

func TestOperatorLogTruncatesAndFillsFields(t *testing.T) {
	fake := chattest.New()
	l := &OperatorLog{Messenger: fake, ChannelID: "ops", Logger: zap.NewNop()}

	long := make([]rune, 1100)
	for i := range long {
		long[i] = 'é'
	}
	require.NoError(t, l.LogInfo("System", "", string(long)))

	embed := fake.Sent[0].Embeds[0]
	assert.Equal(t, "INFO Log", embed.Title)
	assert.Equal(t, "-", embed.Fields[1].Value)
	assert.Len(t, []rune(embed.Fields[2].Value), 1024)
}

func TestOperatorLogSendError(t *testing.T) {
	fake := chattest.New()
	fake.Errors["ChannelMessageSendComplex"] = chattest.RESTError(http.StatusForbidden)
	l := &OperatorLog{Messenger: fake, ChannelID: "ops", Logger: zap.NewNop()}

	assert.Error(t, l.LogError("System", "Startup", "x"))
}

func TestTaskLoggerRecordsAndAnnounces(t *testing.T) {
	fake := chattest.New()
	db, err := database.InitAuditDB(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	logger := zap.NewNop()
	tasks := &TaskLogger{
		DB:     db,
		Log:    &OperatorLog{Messenger: fake, ChannelID: "ops", Logger: logger},
		Logger: logger,
		Now:    func() time.Time { return at },
	}
	actor := TaskActor{UserID: "u1", UserName: "king", ChannelID: "c1", ChannelName: "general"}

	tasks.LogTask(actor, "Delete messages", "3")
	tasks.LogTask(actor, "Toggle translation", "")

	assert.Equal(t, []string{
		"Command `Delete messages` called by <@u1> in <#c1> with ```3```",
		"Command `Toggle translation` called by <@u1> in <#c1>",
	}, fake.SentTo("ops"))

	records, err := database.RecentTaskRecords(db, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Toggle translation", records[0].Task)
	assert.Equal(t, "Delete messages", records[1].Task)
	assert.Equal(t, "general", records[1].ChannelName)
	assert.True(t, at.Equal(records[1].CreatedAt))

	count, err := database.CountTaskRecords(db)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTaskLoggerEscapesCodeFences(t *testing.T) {
	fake := chattest.New()
	logger := zap.NewNop()
	tasks := &TaskLogger{Log: &OperatorLog{Messenger: fake, ChannelID: "ops", Logger: logger}, Logger: logger}

	tasks.LogTask(TaskActor{UserID: "u1", ChannelID: "c1"}, "Anonymize", "look ```rm -rf``` here")

	sent := fake.SentTo("ops")
	require.Len(t, sent, 1)
	body := strings.TrimSuffix(strings.SplitN(sent[0], " with ```", 2)[1], "```")
	assert.NotContains(t, body, "```")
	assert.Equal(t, "look ```rm -rf``` here", strings.ReplaceAll(body, "\u200b", ""))
}

func TestSendPrivateMessage(t *testing.T) {
	fake := chattest.New()
	require.NoError(t, SendPrivateMessage(fake, "u1", "hello"))
	assert.Equal(t, []string{"hello"}, fake.SentTo("dm-u1"))

	fake.Errors["UserChannelCreate"] = chattest.RESTError(http.StatusForbidden)
	assert.Error(t, SendPrivateMessage(fake, "u2", "hello"))
}

func TestSendErrorResponseIsEphemeral(t *testing.T) {
	fake := chattest.New()
	require.NoError(t, SendErrorResponse(fake, &discordgo.Interaction{ID: "i"}, "nope"))

	resp := fake.LastResponse()
	assert.Equal(t, "❌ nope", resp.Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestSendChoicesCapsAt25(t *testing.T) {
	fake := chattest.New()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 30)
	for i := range choices {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: "x", Value: i}
	}
	require.NoError(t, SendChoices(fake, &discordgo.Interaction{ID: "i"}, choices))
	assert.Len(t, fake.LastResponse().Data.Choices, 25)
}

var _ model.Messenger = (*chattest.Fake)(nil)
