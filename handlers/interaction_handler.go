package handlers

import (
	"context"
	"elk-bot/handlers/info"
	"elk-bot/handlers/siege"
	"elk-bot/model"
	"elk-bot/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func slashHandlers(sg *siege.Siege, inf *info.Info) map[string]InteractionHandler {
	contextMenu := func(_ context.Context, i *discordgo.Interaction) error {
		return inf.HandleContextMenu(i)
	}
	return map[string]InteractionHandler{
		"siege": sg.HandleCommand,
		"info": func(_ context.Context, i *discordgo.Interaction) error {
			return inf.HandleCommand(i)
		},
		"Channel Info": contextMenu,
		"Message Info": contextMenu,
		"User Info":    contextMenu,
	}
}

// OnInteraction dispatches slash commands, context menus and autocomplete
// requests. Every one of them goes through the same role check as the
// prefix commands.
func (r *Router) OnInteraction(ctx context.Context, i *discordgo.Interaction) {
	if i.GuildID == "" || i.Member == nil {
		r.Logger.Debug("ignoring interaction outside a guild", zap.String("interaction_id", i.ID))
		return
	}
	t := r.snapshot()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		r.runInteraction(ctx, t, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		r.runAutocomplete(ctx, t, i)
	}
}

func (r *Router) runInteraction(ctx context.Context, t *tables, i *discordgo.Interaction) {
	name := i.ApplicationCommandData().Name
	handler, ok := t.slash[name]
	if !ok {
		r.Logger.Warn("no handler for application command", zap.String("command", name))
		return
	}
	log := r.Logger.With(zap.String("command", name))
	if i.Member.User != nil {
		log = log.With(zap.String("user_id", i.Member.User.ID))
	}

	if !utils.HasAnyRole(i.Member.Roles, t.cfg.AllowedRoleIDs) {
		log.Info("rejected unauthorized interaction")
		if err := utils.SendSimpleResponse(r.Messenger, i, notAllowedMessage); err != nil {
			log.Warn("could not answer unauthorized interaction", zap.Error(err))
		}
		return
	}

	if err := handler(ctx, i); err != nil {
		log.Error("command failed", zap.Error(err))
		message := "Bot command error: " + err.Error()
		// 交互可能已经被响应过，此时只能记录日志
		if respErr := utils.SendSimpleResponse(r.Messenger, i, message); respErr != nil {
			log.Debug("could not report command error to user", zap.Error(respErr))
		}
		t.notifier.Operator(model.Error, "commands", name, message)
	}
}
