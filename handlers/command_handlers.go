package handlers

import (
	"context"
	"elk-bot/handlers/moderation"
	"elk-bot/model"
	"elk-bot/utils"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	// DefaultPrefix starts every prefix command.
	DefaultPrefix = "!"

	notAllowedMessage  = "You are not allowed to run this command"
	commandDeleteDelay = 11 * time.Second
)

func prefixHandlers(r *Router, m *moderation.Moderation) map[string]PrefixHandler {
	return map[string]PrefixHandler{
		"ano":               m.Anonymize,
		"delete":            m.Delete,
		"rewrite":           m.Rewrite,
		"toggletranslation": m.ToggleTranslation,
		"reload":            r.reload,
	}
}

// ParseCommand splits "<prefix><name> <args>" into name and args.
func ParseCommand(prefix, content string) (name, args string, ok bool) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	rest := content[len(prefix):]
	idx := strings.IndexFunc(rest, unicode.IsSpace)
	if idx < 0 {
		return rest, "", rest != ""
	}
	return rest[:idx], strings.TrimSpace(rest[idx:]), idx > 0
}

func memberRoles(m *discordgo.Member) []string {
	if m == nil {
		return nil
	}
	return m.Roles
}

// OnMessage routes one inbound message. A recognised prefix command is run
// and nothing else happens; otherwise the message goes to the reformatter in
// missions channels and to the translation gate everywhere else.
func (r *Router) OnMessage(ctx context.Context, msg *discordgo.Message) {
	if msg.Author == nil || msg.Author.ID == r.BotUserID() {
		return
	}
	// 仅处理服务器内的消息
	if msg.GuildID == "" {
		return
	}
	t := r.snapshot()
	if r.runPrefixCommand(ctx, t, msg) {
		return
	}

	channel, err := r.Messenger.Channel(msg.ChannelID)
	if err != nil {
		r.Logger.Warn("could not resolve message channel", zap.String("channel_id", msg.ChannelID), zap.Error(err))
		return
	}
	if strings.Contains(channel.Name, missionsSuffix(t.cfg)) {
		t.reformatter.Handle(ctx, msg, channel)
		return
	}
	t.gate.Handle(ctx, msg)
}

// runPrefixCommand reports whether msg was a known command, authorised or not.
func (r *Router) runPrefixCommand(ctx context.Context, t *tables, msg *discordgo.Message) bool {
	name, args, ok := ParseCommand(t.cfg.Prefix, msg.Content)
	if !ok {
		return false
	}
	handler, ok := t.prefix[name]
	if !ok {
		return false
	}
	log := r.Logger.With(zap.String("command", name), zap.String("user_id", msg.Author.ID))

	if !utils.HasAnyRole(memberRoles(msg.Member), t.cfg.AllowedRoleIDs) {
		log.Info("rejected unauthorized command")
		t.notifier.Transient(msg.ChannelID, notAllowedMessage)
		t.notifier.DeleteAfter(msg.ChannelID, msg.ID, commandDeleteDelay)
		return true
	}

	channel, err := r.Messenger.Channel(msg.ChannelID)
	if err != nil {
		log.Warn("could not resolve command channel", zap.Error(err))
		channel = &discordgo.Channel{ID: msg.ChannelID}
	}
	inv := moderation.Invocation{Message: msg, Channel: channel, Name: name, Args: args}
	if err := handler(ctx, inv); err != nil {
		log.Error("command failed", zap.Error(err))
		t.notifier.Fail(msg.ChannelID, "commands", name, "Bot command error: "+err.Error())
	}
	return true
}

// reload re-reads the settings and command help, rebuilds every registration
// table and re-syncs the slash commands.
func (r *Router) reload(ctx context.Context, inv moderation.Invocation) error {
	var (
		cfg *model.Config
		err error
	)
	if r.Reload != nil {
		cfg, err = r.Reload()
	} else {
		cfg = r.Config()
	}
	if err != nil {
		return fmt.Errorf("reloading configuration: %w", err)
	}
	if err := r.Rebuild(cfg); err != nil {
		return fmt.Errorf("rebuilding handlers: %w", err)
	}

	t := r.snapshot()
	t.tasks.LogTask(inv.Actor(), "Reload", "")
	if err := r.SyncCommands(cfg); err != nil {
		return err
	}
	_, err = r.Messenger.ChannelMessageSend(inv.Message.ChannelID, "Configuration reloaded.")
	return err
}
