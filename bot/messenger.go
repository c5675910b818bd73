package bot

import (
	"elk-bot/model"

	"github.com/bwmarrin/discordgo"
)

var _ model.Messenger = (*Messenger)(nil)

// Messenger is the session handed to the handlers. Channel, guild and role
// lookups are answered from the gateway state cache when it has them.
type Messenger struct {
	*discordgo.Session
}

func NewMessenger(s *discordgo.Session) *Messenger {
	return &Messenger{Session: s}
}

func (m *Messenger) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if m.State != nil {
		if ch, err := m.State.Channel(channelID); err == nil {
			return ch, nil
		}
	}
	return m.Session.Channel(channelID, options...)
}

func (m *Messenger) Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	if m.State != nil {
		if g, err := m.State.Guild(guildID); err == nil {
			return g, nil
		}
	}
	return m.Session.Guild(guildID, options...)
}

func (m *Messenger) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	if m.State != nil {
		if g, err := m.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
			return g.Roles, nil
		}
	}
	return m.Session.GuildRoles(guildID, options...)
}
