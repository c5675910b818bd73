package handlers

import (
	"context"
	"elk-bot/handlers/siege"
	"elk-bot/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func autocompleteHandlers(sg *siege.Siege) map[string]InteractionHandler {
	return map[string]InteractionHandler{
		"siege": func(_ context.Context, i *discordgo.Interaction) error {
			return sg.Autocomplete(i)
		},
	}
}

func (r *Router) runAutocomplete(ctx context.Context, t *tables, i *discordgo.Interaction) {
	name := i.ApplicationCommandData().Name
	handler, ok := t.autocomplete[name]
	if !ok || !utils.HasAnyRole(i.Member.Roles, t.cfg.AllowedRoleIDs) {
		if err := utils.SendChoices(r.Messenger, i, nil); err != nil {
			r.Logger.Debug("could not answer autocomplete", zap.String("command", name), zap.Error(err))
		}
		return
	}
	if err := handler(ctx, i); err != nil {
		r.Logger.Warn("error responding to autocomplete", zap.String("command", name), zap.Error(err))
	}
}
