// Package moderation implements the prefix commands staff use to speak as
// the bot and to clean up channels.
package moderation

import (
	"context"
	"elk-bot/commands"
	"elk-bot/model"
	"elk-bot/utils"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// historyPageSize is the largest page the message history endpoint returns.
const historyPageSize = 100

// Invocation is one parsed prefix command.
type Invocation struct {
	Message *discordgo.Message
	Channel *discordgo.Channel
	Name    string
	Args    string
}

// Actor identifies who ran the command for the audit trail.
func (inv Invocation) Actor() utils.TaskActor {
	a := utils.TaskActor{ChannelID: inv.Message.ChannelID}
	if inv.Channel != nil {
		a.ChannelName = inv.Channel.Name
	}
	if inv.Message.Author != nil {
		a.UserID = inv.Message.Author.ID
		a.UserName = inv.Message.Author.Username
	}
	return a
}

// Moderation holds the dependencies of the moderation commands.
type Moderation struct {
	Messenger model.Messenger
	Notifier  *utils.Notifier
	Tasks     *utils.TaskLogger
	Flags     *utils.FlagStore
	Help      commands.Catalog
	Prefix    string
	Logger    *zap.Logger
}

func (m *Moderation) deleteCommand(inv Invocation) {
	if err := m.Messenger.ChannelMessageDelete(inv.Message.ChannelID, inv.Message.ID); err != nil {
		m.Logger.Warn("could not delete command message",
			zap.String("command", inv.Name),
			zap.String("message_id", inv.Message.ID),
			zap.Error(err))
	}
}

// Anonymize handles "ano <text>" and "ano help".
func (m *Moderation) Anonymize(ctx context.Context, inv Invocation) error {
	if strings.TrimSpace(inv.Args) == "help" {
		text, ok := m.Help.Help("ano", m.Prefix)
		if !ok {
			return fmt.Errorf("%w: no help for ano", model.ErrNotFound)
		}
		_, err := m.Messenger.ChannelMessageSend(inv.Message.ChannelID, text)
		return err
	}

	m.deleteCommand(inv)

	text := strings.TrimSpace(inv.Args)
	if text == "" {
		usage, _ := m.Help.Help("ano", m.Prefix)
		m.Notifier.Transient(inv.Message.ChannelID, usage)
		return nil
	}

	m.Tasks.LogTask(inv.Actor(), "Anonymize", text)
	if _, err := m.Messenger.ChannelMessageSend(inv.Message.ChannelID, text); err != nil {
		return fmt.Errorf("sending anonymized message: %w", model.ClassifyDiscordError(err))
	}
	return nil
}

// Delete handles "delete <n>": the n latest messages plus the command itself.
func (m *Moderation) Delete(ctx context.Context, inv Invocation) error {
	n, err := strconv.Atoi(strings.TrimSpace(inv.Args))
	if err != nil || n <= 0 {
		m.Notifier.Transient(inv.Message.ChannelID, "Please provide a valid number of messages to delete (greater than 0).")
		return nil
	}

	messages, err := m.fetchLatest(inv.Message.ChannelID, n+1)
	if err != nil {
		return err
	}

	var failed []error
	for _, msg := range messages {
		if err := m.Messenger.ChannelMessageDelete(inv.Message.ChannelID, msg.ID); err != nil {
			failed = append(failed, fmt.Errorf("message %s: %w", msg.ID, model.ClassifyDiscordError(err)))
		}
	}

	m.Tasks.LogTask(inv.Actor(), "Delete messages", strconv.Itoa(n))
	if len(failed) > 0 {
		return fmt.Errorf("deleted %d of %d messages: %w", len(messages)-len(failed), len(messages), errors.Join(failed...))
	}
	return nil
}

// fetchLatest pages backwards through the channel history until count
// messages are collected or the history ends.
func (m *Moderation) fetchLatest(channelID string, count int) ([]*discordgo.Message, error) {
	var (
		out    []*discordgo.Message
		before string
	)
	for len(out) < count {
		limit := count - len(out)
		if limit > historyPageSize {
			limit = historyPageSize
		}
		page, err := m.Messenger.ChannelMessages(channelID, limit, before, "", "")
		if err != nil {
			return nil, fmt.Errorf("fetching message history: %w", model.ClassifyDiscordError(err))
		}
		if len(page) == 0 {
			break
		}
		out = append(out, page...)
		before = page[len(page)-1].ID
	}
	return out, nil
}

// Rewrite handles "rewrite <user_id> <message_id>".
func (m *Moderation) Rewrite(ctx context.Context, inv Invocation) error {
	fields := strings.Fields(inv.Args)
	if len(fields) != 2 {
		usage, _ := m.Help.Help("rewrite", m.Prefix)
		m.Notifier.Transient(inv.Message.ChannelID, usage)
		return nil
	}
	userID, messageID := fields[0], fields[1]

	m.deleteCommand(inv)

	user, err := m.Messenger.User(userID)
	if err == nil {
		var original *discordgo.Message
		original, err = m.Messenger.ChannelMessage(inv.Message.ChannelID, messageID)
		if err == nil {
			return m.rewrite(ctx, inv, user, original)
		}
	}
	if err = model.ClassifyDiscordError(err); errors.Is(err, model.ErrNotFound) {
		m.Notifier.Transient(inv.Message.ChannelID, "User or message not found.")
		return nil
	}
	return err
}

func (m *Moderation) rewrite(ctx context.Context, inv Invocation, user *discordgo.User, original *discordgo.Message) error {
	if original.Author == nil || original.Author.ID != user.ID {
		m.Notifier.Transient(inv.Message.ChannelID, "You can only rewrite messages from the specified user.")
		return nil
	}

	if err := m.Messenger.ChannelMessageDelete(original.ChannelID, original.ID); err != nil {
		return fmt.Errorf("deleting original message: %w", model.ClassifyDiscordError(err))
	}
	if _, err := utils.RepostMessage(ctx, m.Messenger, inv.Message.ChannelID, original); err != nil {
		return err
	}

	m.Tasks.LogTask(inv.Actor(), "Rewrite message", fmt.Sprintf("User ID: %s, Message ID: %s", user.ID, original.ID))
	return nil
}

// ToggleTranslation flips the automatic translation flag.
func (m *Moderation) ToggleTranslation(ctx context.Context, inv Invocation) error {
	enabled, err := m.Flags.ToggleTranslation()
	if err != nil {
		return err
	}
	state := "**disabled**"
	if enabled {
		state = "**enabled**"
	}
	m.Tasks.LogTask(inv.Actor(), "Toggle translation", state)
	_, err = m.Messenger.ChannelMessageSend(inv.Message.ChannelID, fmt.Sprintf("Automatic translation %s.", state))
	return err
}
