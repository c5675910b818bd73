package handlers

import (
	"context"
	"elk-bot/commands"
	"elk-bot/model"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// OnReady announces the start in the operator channel, checks the guilds the
// bot is in and registers the slash commands.
func (r *Router) OnReady(ctx context.Context, e *discordgo.Ready) {
	if e.User != nil {
		r.SetBotUserID(e.User.ID)
		r.Logger.Info("logged in", zap.String("user", e.User.Username), zap.Int("guilds", len(e.Guilds)))
	}
	t := r.snapshot()

	status, err := t.opLog.Send(fmt.Sprintf("ELKBot is starting: <t:%d:F>", r.Now().Unix()))
	if err != nil {
		r.Logger.Warn("failed to send startup log", zap.Error(err))
	}

	r.checkGuilds(t, e.Guilds)

	if err := r.SyncCommands(t.cfg); err != nil {
		r.Logger.Error("could not register commands", zap.Error(err))
		t.notifier.Operator(model.Error, "System", "Register commands", err.Error())
	}

	if status != nil {
		content := fmt.Sprintf("ELKBot is up and running: <t:%d:F>", r.Now().Unix())
		if _, err := r.Messenger.ChannelMessageEdit(status.ChannelID, status.ID, content); err != nil {
			r.Logger.Warn("failed to update startup log", zap.Error(err))
		}
	}
}

func (r *Router) checkGuilds(t *tables, guilds []*discordgo.Guild) {
	if t.cfg.GuildID == "" {
		r.Logger.Warn("guild is not configured, slash commands will not be registered")
		return
	}
	for _, g := range guilds {
		if g.ID == t.cfg.GuildID {
			continue
		}
		detail := fmt.Sprintf("Connected to unexpected guild %s", g.ID)
		r.Logger.Warn("unexpected guild", zap.String("guild_id", g.ID))
		t.notifier.Operator(model.Warn, "System", "Guild check", detail)
	}
}

// SyncCommands overwrites the guild's slash commands with the current set.
func (r *Router) SyncCommands(cfg *model.Config) error {
	if cfg.GuildID == "" || r.Syncer == nil {
		return nil
	}
	appID := r.BotUserID()
	if appID == "" {
		return fmt.Errorf("%w: bot user is not known before ready", model.ErrConfig)
	}
	cmds := commands.GenerateCommands()
	registered, err := r.Syncer.ApplicationCommandBulkOverwrite(appID, cfg.GuildID, cmds)
	if err != nil {
		return fmt.Errorf("cannot update commands for guild %s: %w", cfg.GuildID, model.ClassifyDiscordError(err))
	}
	r.Logger.Info("registered commands", zap.String("guild_id", cfg.GuildID), zap.Int("count", len(registered)))
	return nil
}

// OnReactionAdd hands reactions to the flag translator.
func (r *Router) OnReactionAdd(ctx context.Context, reaction *discordgo.MessageReaction) {
	r.snapshot().flags.Handle(ctx, reaction, r.BotUserID())
}

// OnMemberAdd greets new members.
func (r *Router) OnMemberAdd(member *discordgo.Member) {
	t := r.snapshot()
	if t.cfg.GuildID != "" && member.GuildID != t.cfg.GuildID {
		return
	}
	if err := t.welcome.Handle(member); err != nil {
		r.Logger.Warn("welcome failed", zap.Error(err))
	}
}
