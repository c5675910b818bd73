package translate

import (
	"context"
	"elk-bot/model"
	"elk-bot/utils"
	"elk-bot/utils/translator"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	DefaultDestination = "en"
	DefaultMinLength   = 10
)

// LanguageRoles returns the lowercased names of the roles in memberRoleIDs.
// Every name is a candidate language code; nothing is validated.
func LanguageRoles(m model.Messenger, guildID string, memberRoleIDs []string) (map[string]struct{}, error) {
	if guildID == "" || len(memberRoleIDs) == 0 {
		return map[string]struct{}{}, nil
	}
	roles, err := m.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("fetching guild roles: %w", model.ClassifyDiscordError(err))
	}
	held := lo.Filter(roles, func(r *discordgo.Role, _ int) bool { return lo.Contains(memberRoleIDs, r.ID) })
	return lo.Associate(held, func(r *discordgo.Role) (string, struct{}) {
		return strings.ToLower(r.Name), struct{}{}
	}), nil
}

// Gate decides whether a message is auto-translated and posts the reply.
type Gate struct {
	Messenger   model.Messenger
	Flags       *utils.FlagStore
	Detector    translator.Detector
	Translator  translator.Translator
	Notifier    *utils.Notifier
	Logger      *zap.Logger
	Destination string
	MinLength   int
}

func (g *Gate) destination() string {
	if g.Destination == "" {
		return DefaultDestination
	}
	return g.Destination
}

func (g *Gate) minLength() int {
	if g.MinLength <= 0 {
		return DefaultMinLength
	}
	return g.MinLength
}

// Handle runs the gate for msg and reports whether a translation was posted.
// Failures are reported to the channel and the operator log, never returned.
func (g *Gate) Handle(ctx context.Context, msg *discordgo.Message) bool {
	flags, err := g.Flags.Load()
	if err != nil {
		g.Logger.Warn("could not read flags, auto translation skipped", zap.Error(err))
		return false
	}
	if !flags.TranslationEnabled {
		return false
	}
	if utf8.RuneCountInString(msg.Content) <= g.minLength() {
		return false
	}

	translated, src, err := g.translate(ctx, msg)
	if err != nil {
		g.Notifier.Fail(msg.ChannelID, "Translation", "AutoTranslate", fmt.Sprintf("Translation Error: %v", err))
		return false
	}
	if src == "" {
		return false
	}

	reply := fmt.Sprintf("%s -> %s ・ %s", LanguageFlag(src), LanguageFlag(g.destination()), translated)
	if _, err := g.Messenger.ChannelMessageSendReply(msg.ChannelID, reply, msg.Reference()); err != nil {
		g.Notifier.Fail(msg.ChannelID, "Translation", "Reply", fmt.Sprintf("Translation Error: %v", model.ClassifyDiscordError(err)))
		return false
	}
	return true
}

// translate returns an empty source language when msg is not eligible.
func (g *Gate) translate(ctx context.Context, msg *discordgo.Message) (string, string, error) {
	detected, err := g.Detector.Detect(msg.Content)
	if err != nil {
		return "", "", err
	}
	if detected == g.destination() {
		return "", "", nil
	}

	var memberRoles []string
	if msg.Member != nil {
		memberRoles = msg.Member.Roles
	}
	languages, err := LanguageRoles(g.Messenger, msg.GuildID, memberRoles)
	if err != nil {
		return "", "", err
	}
	if _, ok := languages[detected]; !ok {
		g.Logger.Debug("detected language not declared by author",
			zap.String("language", detected),
			zap.String("message_id", msg.ID))
		return "", "", nil
	}

	translated, err := g.Translator.Translate(ctx, msg.Content, detected, g.destination())
	if err != nil {
		return "", "", err
	}
	return translated, detected, nil
}
