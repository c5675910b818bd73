package announce

import (
	"elk-bot/model"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
)

// GroupRole resolves the "Server NN" role for a sNN-missions channel. A
// channel without a group number or a guild without the role yields "".
func GroupRole(m model.Messenger, guildID, channelName string) (string, error) {
	group, ok := GroupNumber(channelName)
	if !ok || guildID == "" {
		return "", nil
	}
	roles, err := m.GuildRoles(guildID)
	if err != nil {
		return "", fmt.Errorf("fetching guild roles: %w", model.ClassifyDiscordError(err))
	}
	role, found := lo.Find(roles, func(r *discordgo.Role) bool { return r.Name == "Server "+group })
	if !found {
		return "", nil
	}
	return role.ID, nil
}
