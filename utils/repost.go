package utils

import (
	"bytes"
	"context"
	"elk-bot/model"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// RepostMessage sends msg's text and attachments to channelID as the bot.
// It returns the first message posted, or an error naming the part that
// could not be sent.
func RepostMessage(ctx context.Context, m model.Messenger, channelID string, msg *discordgo.Message) (*discordgo.Message, error) {
	var first *discordgo.Message
	if msg.Content != "" {
		sent, err := m.ChannelMessageSend(channelID, msg.Content)
		if err != nil {
			return nil, fmt.Errorf("sending content: %w", model.ClassifyDiscordError(err))
		}
		first = sent
	}

	for _, attachment := range msg.Attachments {
		data, err := Download(ctx, attachment.URL)
		if err != nil {
			return first, fmt.Errorf("downloading %s: %w", attachment.Filename, err)
		}
		sent, err := m.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Files: []*discordgo.File{{
				Name:        attachment.Filename,
				ContentType: attachment.ContentType,
				Reader:      bytes.NewReader(data),
			}},
		})
		if err != nil {
			return first, fmt.Errorf("uploading %s: %w", attachment.Filename, model.ClassifyDiscordError(err))
		}
		if first == nil {
			first = sent
		}
	}

	if first == nil {
		return nil, fmt.Errorf("%w: message has no content to repost", model.ErrNotFound)
	}
	return first, nil
}
