package handlers

import (
	"context"
	"elk-bot/model"
	"elk-bot/utils"
	"elk-bot/utils/chattest"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type syncCall struct {
	appID, guildID string
	names          []string
}

type fakeSyncer struct {
	calls []syncCall
	err   error
}

func (f *fakeSyncer) ApplicationCommandBulkOverwrite(appID string, guildID string, cmds []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	call := syncCall{appID: appID, guildID: guildID}
	for _, c := range cmds {
		call.names = append(call.names, c.Name)
	}
	f.calls = append(f.calls, call)
	return cmds, f.err
}

type noScheduler struct{}

func (noScheduler) At(time.Time, func()) {}

type fixedDetector string

func (d fixedDetector) Detect(string) (string, error) { return string(d), nil }

type echoTranslator struct{}

func (echoTranslator) Translate(_ context.Context, text, src, dest string) (string, error) {
	return fmt.Sprintf("[%s>%s] %s", src, dest, text), nil
}

type delayed struct {
	d time.Duration
	f func()
}

type routerFixture struct {
	fake    *chattest.Fake
	syncer  *fakeSyncer
	router  *Router
	flags   *utils.FlagStore
	cfg     *model.Config
	delays  []delayed
	reloads int
}

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func baseConfig(dir string) *model.Config {
	return &model.Config{
		GuildID:         "g1",
		LogChannelID:    "ops",
		Prefix:          "!",
		AllowedRoleIDs:  []string{"r-staff"},
		MissionsSuffix:  "-missions",
		CommandHelpFile: filepath.Join(dir, "missing-commands.yaml"),
		Welcome:         model.WelcomeConfig{ChannelID: "welcome"},
	}
}

func newRouter(t *testing.T) *routerFixture {
	t.Helper()
	dir := t.TempDir()
	fake := chattest.New()
	fake.Channels["c1"] = &discordgo.Channel{ID: "c1", Name: "general"}
	fake.Channels["m1"] = &discordgo.Channel{ID: "m1", Name: "s07-missions"}
	fake.Roles["g1"] = []*discordgo.Role{{ID: "r-staff", Name: "Kings"}, {ID: "r-fr", Name: "fr"}}

	cities, err := utils.LoadCityStore(filepath.Join(dir, "cities.json"), utils.DefaultCities)
	require.NoError(t, err)

	fx := &routerFixture{
		fake:   fake,
		syncer: &fakeSyncer{},
		flags:  utils.NewFlagStore(filepath.Join(dir, "v1.json")),
		cfg:    baseConfig(dir),
	}
	router, err := New(Deps{
		Messenger:  fake,
		Syncer:     fx.syncer,
		Config:     func() *model.Config { return fx.cfg },
		Reload:     func() (*model.Config, error) { fx.reloads++; return fx.cfg, nil },
		Cities:     cities,
		Flags:      fx.flags,
		Detector:   fixedDetector("fr"),
		Translator: echoTranslator{},
		Scheduler:  noScheduler{},
		Logger:     zap.NewNop(),
		Now:        func() time.Time { return testNow },
		AfterFunc:  func(d time.Duration, f func()) { fx.delays = append(fx.delays, delayed{d, f}) },
	})
	require.NoError(t, err)
	router.SetBotUserID("bot")
	fx.router = router
	return fx
}

func message(id, channelID, content string, roles ...string) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		ChannelID: channelID,
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: "staff", Username: "king"},
		Member:    &discordgo.Member{Roles: roles},
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		content, name, args string
		ok                  bool
	}{
		{"!delete 3", "delete", "3", true},
		{"!ano hello\nworld", "ano", "hello\nworld", true},
		{"!toggletranslation", "toggletranslation", "", true},
		{"!  delete 3", "", "", false},
		{"!", "", "", false},
		{"delete 3", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			name, args, ok := ParseCommand("!", tt.content)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.name, name)
				assert.Equal(t, tt.args, args)
			}
		})
	}
}

func TestUnauthorizedPrefixCommand(t *testing.T) {
	fx := newRouter(t)
	cmd := message("cmd", "c1", "!delete 3")
	fx.fake.AddMessage(cmd)

	fx.router.OnMessage(context.Background(), cmd)

	assert.Equal(t, []string{notAllowedMessage}, fx.fake.SentTo("c1"))
	assert.Empty(t, fx.fake.Deleted)
	require.Len(t, fx.delays, 2)
	assert.Equal(t, 10*time.Second, fx.delays[0].d)
	assert.Equal(t, 11*time.Second, fx.delays[1].d)

	fx.delays[1].f()
	assert.Equal(t, []string{"cmd"}, fx.fake.Deleted)
}

func TestAuthorizedDelete(t *testing.T) {
	fx := newRouter(t)
	for i := 0; i < 5; i++ {
		fx.fake.AddMessage(&discordgo.Message{ID: fmt.Sprintf("h%d", i), ChannelID: "c1"})
	}
	cmd := message("cmd", "c1", "!delete 2", "r-staff")
	fx.fake.AddMessage(cmd)

	fx.router.OnMessage(context.Background(), cmd)

	assert.Equal(t, []string{"cmd", "h4", "h3"}, fx.fake.Deleted)
}

func TestCommandErrorIsReported(t *testing.T) {
	fx := newRouter(t)
	fx.fake.Errors["User"] = chattest.RESTError(http.StatusInternalServerError)
	cmd := message("cmd", "c1", "!rewrite u1 m1", "r-staff")
	fx.fake.AddMessage(cmd)

	fx.router.OnMessage(context.Background(), cmd)

	sent := fx.fake.SentTo("c1")
	require.Len(t, sent, 1)
	assert.True(t, strings.HasPrefix(sent[0], "Bot command error: "), sent[0])
	ops := lastEmbed(t, fx.fake, "ops")
	assert.Equal(t, "ERROR Log", ops.Title)
}

func lastEmbed(t *testing.T, fake *chattest.Fake, channelID string) *discordgo.MessageEmbed {
	t.Helper()
	for i := len(fake.Sent) - 1; i >= 0; i-- {
		if fake.Sent[i].ChannelID == channelID && len(fake.Sent[i].Embeds) > 0 {
			return fake.Sent[i].Embeds[0]
		}
	}
	require.FailNow(t, "no embed sent to "+channelID)
	return nil
}

func TestIgnoresOwnMessages(t *testing.T) {
	fx := newRouter(t)
	msg := message("x", "m1", "just words")
	msg.Author = &discordgo.User{ID: "bot", Bot: true}

	fx.router.OnMessage(context.Background(), msg)

	assert.Empty(t, fx.fake.Sent)
	assert.Empty(t, fx.fake.Deleted)
}

func TestMissionsChannelAnonymizes(t *testing.T) {
	fx := newRouter(t)
	msg := message("x", "m1", "meet at the gate")
	fx.fake.AddMessage(msg)

	fx.router.OnMessage(context.Background(), msg)

	assert.Equal(t, []string{"x"}, fx.fake.Deleted)
	assert.Equal(t, []string{"meet at the gate"}, fx.fake.SentTo("m1"))
}

func TestOtherChannelsGoToTranslationGate(t *testing.T) {
	fx := newRouter(t)
	_, err := fx.flags.ToggleTranslation()
	require.NoError(t, err)
	msg := message("x", "c1", "bonjour tout le monde", "r-fr")

	fx.router.OnMessage(context.Background(), msg)

	require.Len(t, fx.fake.Sent, 1)
	assert.Equal(t, "x", fx.fake.Sent[0].ReplyTo)
	assert.Equal(t, "🇫🇷 -> 🇬🇧 ・ [fr>en] bonjour tout le monde", fx.fake.Sent[0].Content)
}

func TestUnknownCommandFallsThrough(t *testing.T) {
	fx := newRouter(t)
	msg := message("x", "m1", "!unknown thing", "r-staff")
	fx.fake.AddMessage(msg)

	fx.router.OnMessage(context.Background(), msg)

	// anonymized like any other missions message
	assert.Equal(t, []string{"x"}, fx.fake.Deleted)
	assert.Equal(t, []string{"!unknown thing"}, fx.fake.SentTo("m1"))
}

func TestIgnoresDirectMessages(t *testing.T) {
	fx := newRouter(t)
	msg := message("x", "dm", "!ano hi", "r-staff")
	msg.GuildID = ""

	fx.router.OnMessage(context.Background(), msg)

	assert.Empty(t, fx.fake.Sent)
}

func interaction(name string, roles []string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        "i1",
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "staff", Username: "king"}, Roles: roles},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: opts,
		},
	}
}

func sub(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionSubCommand, Options: opts}
}

func TestUnauthorizedInteraction(t *testing.T) {
	fx := newRouter(t)

	fx.router.OnInteraction(context.Background(), interaction("siege", nil, sub("list_cities")))

	resp := fx.fake.LastResponse()
	require.NotNil(t, resp)
	assert.Equal(t, notAllowedMessage, resp.Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestSlashCommandDispatch(t *testing.T) {
	fx := newRouter(t)

	fx.router.OnInteraction(context.Background(), interaction("siege", []string{"r-staff"}, sub("list_cities")))

	resp := fx.fake.LastResponse()
	require.NotNil(t, resp)
	assert.Contains(t, resp.Data.Content, "Lv.5 Steadfast Citadel (`steadfast`)")
}

func TestSlashCommandError(t *testing.T) {
	fx := newRouter(t)
	role := &discordgo.ApplicationCommandInteractionDataOption{Name: "role", Type: discordgo.ApplicationCommandOptionRole, Value: "missing"}

	fx.router.OnInteraction(context.Background(), interaction("info", []string{"r-staff"}, sub("role", role)))

	resp := fx.fake.LastResponse()
	require.NotNil(t, resp)
	assert.Equal(t, "Bot command error: not found: role missing", resp.Data.Content)
	assert.Equal(t, "ERROR Log", lastEmbed(t, fx.fake, "ops").Title)
}

func TestAutocompleteRequiresRole(t *testing.T) {
	fx := newRouter(t)
	city := &discordgo.ApplicationCommandInteractionDataOption{Name: "city", Type: discordgo.ApplicationCommandOptionString, Value: "moon", Focused: true}
	i := interaction("siege", nil, sub("start", city))
	i.Type = discordgo.InteractionApplicationCommandAutocomplete

	fx.router.OnInteraction(context.Background(), i)
	assert.Empty(t, fx.fake.LastResponse().Data.Choices)

	i.Member.Roles = []string{"r-staff"}
	fx.router.OnInteraction(context.Background(), i)
	choices := fx.fake.LastResponse().Data.Choices
	require.Len(t, choices, 1)
	assert.Equal(t, "moonfallkeep", choices[0].Value)
}

func TestOnReady(t *testing.T) {
	fx := newRouter(t)

	fx.router.OnReady(context.Background(), &discordgo.Ready{
		User:   &discordgo.User{ID: "app", Username: "elkbot"},
		Guilds: []*discordgo.Guild{{ID: "g1"}, {ID: "g2"}},
	})

	assert.Equal(t, "app", fx.router.BotUserID())
	startup := fmt.Sprintf("<t:%d:F>", testNow.Unix())
	assert.Equal(t, []string{"ELKBot is starting: " + startup}, fx.fake.SentTo("ops")[:1])
	assert.Equal(t, "Connected to unexpected guild g2", lastEmbed(t, fx.fake, "ops").Fields[2].Value)

	require.Len(t, fx.syncer.calls, 1)
	assert.Equal(t, "app", fx.syncer.calls[0].appID)
	assert.Equal(t, "g1", fx.syncer.calls[0].guildID)
	assert.Equal(t, []string{"siege", "info", "Channel Info", "Message Info", "User Info"}, fx.syncer.calls[0].names)

	require.Len(t, fx.fake.Edited, 1)
	assert.Equal(t, "ELKBot is up and running: "+startup, fx.fake.Edited[0].Content)
}

func TestReloadRebuildsTables(t *testing.T) {
	fx := newRouter(t)
	next := *fx.cfg
	next.Prefix = "?"
	fx.cfg = &next

	cmd := message("cmd", "c1", "!reload", "r-staff")
	fx.router.OnMessage(context.Background(), cmd)

	assert.Equal(t, 1, fx.reloads)
	require.Len(t, fx.syncer.calls, 1)
	assert.Equal(t, []string{"Configuration reloaded."}, fx.fake.SentTo("c1"))

	ano := message("a1", "c1", "?ano hello there", "r-staff")
	fx.router.OnMessage(context.Background(), ano)
	assert.Equal(t, "hello there", fx.fake.SentTo("c1")[1])
}

func TestReactionAndMemberEvents(t *testing.T) {
	fx := newRouter(t)
	fx.fake.AddMessage(&discordgo.Message{ID: "m", ChannelID: "c1", Content: "good morning"})

	fx.router.OnReactionAdd(context.Background(), &discordgo.MessageReaction{
		UserID: "u1", MessageID: "m", ChannelID: "c1", GuildID: "g1",
		Emoji: discordgo.Emoji{Name: "🇩🇪"},
	})
	assert.Equal(t, "🇬🇧 -> 🇩🇪 ・ [en>de] good morning", fx.fake.SentTo("c1")[0])
	require.Len(t, fx.fake.ReactionsRemoved, 1)

	fx.router.OnMemberAdd(&discordgo.Member{GuildID: "g1", User: &discordgo.User{ID: "u2", Username: "newbie"}})
	posts := fx.fake.SentTo("welcome")
	require.Len(t, posts, 1)
	assert.True(t, strings.HasPrefix(posts[0], "Oh, it's you <@u2>?"))
	assert.Len(t, fx.fake.SentTo("dm-u2"), 1)

	fx.router.OnMemberAdd(&discordgo.Member{GuildID: "other", User: &discordgo.User{ID: "u3"}})
	assert.Empty(t, fx.fake.SentTo("dm-u3"))
}
