package defs

import "github.com/bwmarrin/discordgo"

func extendedOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "extended",
		Description: "Show every known field",
		Required:    false,
	}
}

var Info = &discordgo.ApplicationCommand{
	Name:        "info",
	Description: "Get info about different discord things",
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.French: "Informations sur le serveur, les salons et les membres",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "guild",
			Description: "Get info about the Guild",
			Options:     []*discordgo.ApplicationCommandOption{extendedOption()},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "channel",
			Description: "Get info about a Channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel to describe",
					Required:    true,
				},
				extendedOption(),
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "user",
			Description: "Get info about a user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to describe",
					Required:    true,
				},
				extendedOption(),
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "role",
			Description: "Get info about a role",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Role to describe",
					Required:    true,
				},
				extendedOption(),
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "system",
			Description: "Display bot and system status information",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "tasks",
			Description: "Show the most recent command audit records",
		},
	},
}

var ChannelInfoContext = &discordgo.ApplicationCommand{
	Name: "Channel Info",
	Type: discordgo.MessageApplicationCommand,
}

var MessageInfoContext = &discordgo.ApplicationCommand{
	Name: "Message Info",
	Type: discordgo.MessageApplicationCommand,
}

var UserInfoContext = &discordgo.ApplicationCommand{
	Name: "User Info",
	Type: discordgo.UserApplicationCommand,
}
