package commands

import (
	"elk-bot/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns every application command synced to the guild.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Siege,
		defs.Info,
		defs.ChannelInfoContext,
		defs.MessageInfoContext,
		defs.UserInfoContext,
	}
}
