package defs

import "github.com/bwmarrin/discordgo"

var minCityLevel = 1.0

var Siege = &discordgo.ApplicationCommand{
	Name:        "siege",
	Description: "Siege things",
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.French: "Gestion des sièges",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "start",
			Description: "Schedule a siege on a city",
			DescriptionLocalizations: map[discordgo.Locale]string{
				discordgo.French: "Planifier un siège sur une ville",
			},
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "city",
					Description:  "Select the city we are going to siege",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "day",
					Description:  "Pick which day the siege will take place (or enter in format YYYY-MM-DD)",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "time",
					Description: "Set the start time of the siege, in 24 hour UTC (HH:MM)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Role to ping for the siege and its reminders",
					Required:    false,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "add_city",
			Description: "Add or update a siege target",
			DescriptionLocalizations: map[discordgo.Locale]string{
				discordgo.French: "Ajouter ou modifier une ville",
			},
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "City name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "level",
					Description: "City level",
					Required:    true,
					MinValue:    &minCityLevel,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "coords",
					Description: "Map coordinates as x,y",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "deep_link",
					Description: "Game deep link to the city",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "region",
					Description: "Region the city is in",
					Required:    false,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list_cities",
			Description: "List every known siege target",
			DescriptionLocalizations: map[discordgo.Locale]string{
				discordgo.French: "Lister les villes connues",
			},
		},
	},
}
