package translate

import (
	"context"
	"elk-bot/model"
	"elk-bot/utils"
	"elk-bot/utils/chattest"
	"elk-bot/utils/translator"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDetector struct {
	lang  string
	err   error
	calls int
}

func (d *stubDetector) Detect(string) (string, error) {
	d.calls++
	return d.lang, d.err
}

type translateCall struct{ text, src, dest string }

type stubTranslator struct {
	calls []translateCall
	err   error
}

func (s *stubTranslator) Translate(_ context.Context, text, src, dest string) (string, error) {
	s.calls = append(s.calls, translateCall{text, src, dest})
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("[%s>%s] %s", src, dest, text), nil
}

func newNotifier(fake *chattest.Fake) *utils.Notifier {
	logger := zap.NewNop()
	n := utils.NewNotifier(fake, &utils.OperatorLog{Messenger: fake, ChannelID: "ops", Logger: logger}, logger, time.Second)
	n.AfterFunc = func(time.Duration, func()) {}
	return n
}

type gateFixture struct {
	fake       *chattest.Fake
	detector   *stubDetector
	translator *stubTranslator
	gate       *Gate
}

func newGateFixture(t *testing.T, enabled bool) *gateFixture {
	t.Helper()
	flags := utils.NewFlagStore(filepath.Join(t.TempDir(), "v1.json"))
	if enabled {
		on, err := flags.ToggleTranslation()
		require.NoError(t, err)
		require.True(t, on)
	}

	fake := chattest.New()
	fake.Roles["g1"] = []*discordgo.Role{
		{ID: "r-fr", Name: "FR"},
		{ID: "r-de", Name: "de"},
		{ID: "r-king", Name: "Kings"},
	}
	d := &stubDetector{lang: "fr"}
	tr := &stubTranslator{}
	return &gateFixture{
		fake:       fake,
		detector:   d,
		translator: tr,
		gate: &Gate{
			Messenger:  fake,
			Flags:      flags,
			Detector:   d,
			Translator: tr,
			Notifier:   newNotifier(fake),
			Logger:     zap.NewNop(),
		},
	}
}

func message(content string, roles ...string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: "u1", Username: "pierre"},
		Member:    &discordgo.Member{Roles: roles},
	}
}

func TestLanguageRoles(t *testing.T) {
	f := newGateFixture(t, true)
	langs, err := LanguageRoles(f.fake, "g1", []string{"r-fr", "r-king"})
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"fr": {}, "kings": {}}, langs)

	langs, err = LanguageRoles(f.fake, "g1", nil)
	require.NoError(t, err)
	assert.Empty(t, langs)
}

func TestGateTranslatesDeclaredLanguage(t *testing.T) {
	f := newGateFixture(t, true)

	ok := f.gate.Handle(context.Background(), message("Bonjour tout le monde, on attaque ce soir", "r-fr"))

	require.True(t, ok)
	require.Len(t, f.translator.calls, 1)
	assert.Equal(t, translateCall{"Bonjour tout le monde, on attaque ce soir", "fr", "en"}, f.translator.calls[0])
	require.Len(t, f.fake.Sent, 1)
	sent := f.fake.Sent[0]
	assert.Equal(t, "m1", sent.ReplyTo)
	assert.Equal(t, "🇫🇷 -> 🇬🇧 ・ [fr>en] Bonjour tout le monde, on attaque ce soir", sent.Content)
}

func TestGateDisabled(t *testing.T) {
	f := newGateFixture(t, false)

	ok := f.gate.Handle(context.Background(), message("Bonjour tout le monde, on attaque ce soir", "r-fr"))

	assert.False(t, ok)
	assert.Zero(t, f.detector.calls)
	assert.Empty(t, f.fake.Sent)
}

func TestGateIgnoresShortMessages(t *testing.T) {
	f := newGateFixture(t, true)

	// ten code points, even though it is more than ten bytes
	short := "éééééééééé"
	require.Len(t, []rune(short), 10)
	assert.False(t, f.gate.Handle(context.Background(), message(short, "r-fr")))
	assert.False(t, f.gate.Handle(context.Background(), message("merci!", "r-fr")))

	assert.Zero(t, f.detector.calls)
	assert.Empty(t, f.translator.calls)
}

func TestGateRequiresDeclaredLanguage(t *testing.T) {
	f := newGateFixture(t, true)

	ok := f.gate.Handle(context.Background(), message("Bonjour tout le monde, on attaque ce soir", "r-de", "r-king"))

	assert.False(t, ok)
	assert.Empty(t, f.translator.calls)
	assert.Empty(t, f.fake.Sent)
}

func TestGateSkipsDestinationLanguage(t *testing.T) {
	f := newGateFixture(t, true)
	f.fake.Roles["g1"] = append(f.fake.Roles["g1"], &discordgo.Role{ID: "r-en", Name: "en"})
	f.detector.lang = "en"

	ok := f.gate.Handle(context.Background(), message("Hello everyone, we attack tonight", "r-en"))

	assert.False(t, ok)
	assert.Empty(t, f.translator.calls)
}

func TestGateReportsFailures(t *testing.T) {
	tests := []struct {
		name   string
		detect error
		trans  error
	}{
		{"detection", fmt.Errorf("%w: no letters", model.ErrDetection), nil},
		{"translation", nil, fmt.Errorf("%w: status 429", model.ErrTranslation)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGateFixture(t, true)
			f.detector.err = tt.detect
			f.translator.err = tt.trans

			ok := f.gate.Handle(context.Background(), message("Bonjour tout le monde, on attaque ce soir", "r-fr"))

			assert.False(t, ok)
			notices := f.fake.SentTo("c1")
			require.Len(t, notices, 1)
			assert.True(t, strings.HasPrefix(notices[0], "Translation Error: "))
			// operator embed
			require.Len(t, f.fake.SentTo("ops"), 1)
			assert.NotEmpty(t, f.fake.Sent[1].Embeds)
		})
	}
}

func TestGateDetectsPersianWithWhatlang(t *testing.T) {
	f := newGateFixture(t, true)
	f.fake.Roles["g1"] = append(f.fake.Roles["g1"], &discordgo.Role{ID: "r-fa", Name: "fa"})
	f.gate.Detector = translator.Whatlang{}
	text := "سلام به همه، امشب به قلعه حمله می کنیم"

	ok := f.gate.Handle(context.Background(), message(text, "r-fa"))

	require.True(t, ok)
	require.Len(t, f.translator.calls, 1)
	assert.Equal(t, translateCall{text, "fa", "en"}, f.translator.calls[0])
	assert.Empty(t, f.fake.SentTo("ops"))
	assert.Equal(t, []string{"🇮🇷 -> 🇬🇧 ・ [fa>en] " + text}, f.fake.SentTo("c1"))
}

func newFlagTranslator(fake *chattest.Fake, tr *stubTranslator) *FlagTranslator {
	return &FlagTranslator{Messenger: fake, Translator: tr, Notifier: newNotifier(fake), Logger: zap.NewNop()}
}

func reaction(emoji, userID string) *discordgo.MessageReaction {
	return &discordgo.MessageReaction{
		UserID:    userID,
		MessageID: "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Emoji:     discordgo.Emoji{Name: emoji},
	}
}

func flagFixture() *chattest.Fake {
	fake := chattest.New()
	fake.AddMessage(&discordgo.Message{ID: "m1", ChannelID: "c1", Content: "Siege starts at nine"})
	return fake
}

func TestFlagTranslatorTranslatesAndRemovesReaction(t *testing.T) {
	fake := flagFixture()
	tr := &stubTranslator{}

	ok := newFlagTranslator(fake, tr).Handle(context.Background(), reaction("🇯🇵", "u2"), "bot")

	require.True(t, ok)
	assert.Equal(t, []translateCall{{"Siege starts at nine", "en", "ja"}}, tr.calls)
	require.Len(t, fake.Sent, 1)
	assert.Equal(t, "🇬🇧 -> 🇯🇵 ・ [en>ja] Siege starts at nine", fake.Sent[0].Content)
	assert.Equal(t, "m1", fake.Sent[0].ReplyTo)
	require.Len(t, fake.ReactionsRemoved, 1)
	assert.Equal(t, chattest.Reaction{ChannelID: "c1", MessageID: "m1", Emoji: "🇯🇵", UserID: "u2"}, fake.ReactionsRemoved[0])
}

func TestFlagTranslatorEnglishFlags(t *testing.T) {
	for _, emoji := range []string{"🇬🇧", "🇺🇸"} {
		t.Run(emoji, func(t *testing.T) {
			fake := flagFixture()
			tr := &stubTranslator{err: errors.New("must not be called")}

			ok := newFlagTranslator(fake, tr).Handle(context.Background(), reaction(emoji, "u2"), "bot")

			require.True(t, ok)
			assert.Empty(t, tr.calls)
			assert.Equal(t, "🇬🇧 -> "+emoji+" ・ Siege starts at nine", fake.Sent[0].Content)
			assert.Len(t, fake.ReactionsRemoved, 1)
		})
	}
}

func TestFlagTranslatorIgnores(t *testing.T) {
	tests := []struct {
		name   string
		emoji  string
		userID string
	}{
		{"own reaction", "🇫🇷", "bot"},
		{"not a flag", "✅", "u2"},
		{"single indicator", "🇫", "u2"},
		{"two plain letters", "FR", "u2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := flagFixture()
			tr := &stubTranslator{}

			ok := newFlagTranslator(fake, tr).Handle(context.Background(), reaction(tt.emoji, tt.userID), "bot")

			assert.False(t, ok)
			assert.Empty(t, tr.calls)
			assert.Empty(t, fake.Sent)
		})
	}
}

func TestFlagTranslatorFailureKeepsReaction(t *testing.T) {
	fake := flagFixture()
	tr := &stubTranslator{err: fmt.Errorf("%w: status 500", model.ErrTranslation)}

	ok := newFlagTranslator(fake, tr).Handle(context.Background(), reaction("🇩🇪", "u2"), "bot")

	assert.False(t, ok)
	assert.Empty(t, fake.ReactionsRemoved)
	notices := fake.SentTo("c1")
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0], "Translation Error: ")
}

func TestDecodeFlag(t *testing.T) {
	code, ok := DecodeFlag("🇧🇷")
	assert.True(t, ok)
	assert.Equal(t, "BR", code)
	assert.Equal(t, "pt", TargetLanguage(code))
	assert.Equal(t, "fr", TargetLanguage("FR"))
	assert.Equal(t, "zh-CN", TargetLanguage("CN"))

	assert.Equal(t, "🇧🇷", EncodeFlag("br"))
	assert.Empty(t, EncodeFlag("b1"))
}

func TestLanguageFlag(t *testing.T) {
	assert.Equal(t, "🇬🇧", LanguageFlag("en"))
	assert.Equal(t, "🇫🇷", LanguageFlag("fr"))
	assert.Equal(t, "🇯🇵", LanguageFlag("ja"))
	assert.Equal(t, "🇨🇳", LanguageFlag("zh-CN"))
	assert.Equal(t, "[kings]", LanguageFlag("kings"))
}
