package utils

import (
	"elk-bot/model"
	"fmt"
)

// SendPrivateMessage sends a direct message to a user.
func SendPrivateMessage(m model.Messenger, userID, message string) error {
	channel, err := m.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("error creating private channel with user %s: %w", userID, err)
	}
	if _, err := m.ChannelMessageSend(channel.ID, message); err != nil {
		return fmt.Errorf("error sending private message to user %s: %w", userID, err)
	}
	return nil
}
