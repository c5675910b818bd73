package announce

import (
	"context"
	"elk-bot/model"
	"elk-bot/utils"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Reactions are added to every reposted announcement, in this order.
var Reactions = []string{"✅", "❌", "❓"}

const (
	threadArchiveMinutes = 1440
	maxThreadName        = 100
)

// Outcome records which side effects of one message actually happened.
type Outcome struct {
	Event           bool
	Reposted        bool
	Reactions       int
	Threaded        bool
	RoleMentioned   bool
	DeletedOriginal bool
}

// Reformatter handles every message posted in a missions channel.
//
// Announcements go RECEIVED -> CLASSIFIED -> REPOSTED -> ANNOTATED ->
// THREADED -> DELETED-ORIGINAL. Anything else is anonymized: the original is
// deleted first and then reposted by the bot. Steps are best effort; a
// failure is reported and earlier steps are never undone.
type Reformatter struct {
	Messenger model.Messenger
	Notifier  *utils.Notifier
	Tasks     *utils.TaskLogger
	Logger    *zap.Logger
	Now       func() time.Time
}

func (r *Reformatter) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Handle processes msg posted in channel.
func (r *Reformatter) Handle(ctx context.Context, msg *discordgo.Message, channel *discordgo.Channel) Outcome {
	if match, ok := Classify(msg.Content); ok {
		return r.repostEvent(msg, channel, match)
	}
	return r.anonymize(ctx, msg, channel)
}

// FormatAnnouncement renders the normalized announcement text.
func FormatAnnouncement(match Match, at time.Time) string {
	unix := at.Unix()
	return fmt.Sprintf("# %s\nAt <t:%d:t>\nIt's <t:%d:R>\nReact with ✅ if you will be there, or with ❌ if you can't. If you don't know, use ❓.",
		match.Title(), unix, unix)
}

func threadName(match Match) string {
	name := []rune(match.Title())
	if len(name) > maxThreadName {
		name = name[:maxThreadName]
	}
	return string(name)
}

func (r *Reformatter) repostEvent(msg *discordgo.Message, channel *discordgo.Channel, match Match) Outcome {
	out := Outcome{Event: true}
	logger := r.Logger.With(zap.String("channel", channel.Name), zap.String("message_id", msg.ID))

	at, err := Normalize(match.DayMonth, match.Clock, r.now())
	if err != nil {
		logger.Info("announcement time rejected", zap.Error(err))
		r.Notifier.Transient(msg.ChannelID, fmt.Sprintf("Could not read the event time: %v", err))
		return out
	}

	roleID, err := GroupRole(r.Messenger, msg.GuildID, channel.Name)
	if err != nil {
		logger.Warn("could not resolve group role", zap.Error(err))
		r.Notifier.Operator(model.Warn, "Announce", "ResolveRole", fmt.Sprintf("Channel `%s`: %v", channel.Name, err))
	}

	posted, err := r.Messenger.ChannelMessageSend(msg.ChannelID, FormatAnnouncement(match, at))
	if err != nil {
		r.Notifier.Fail(msg.ChannelID, "Announce", "Repost", fmt.Sprintf("Can't send new message: %v", err))
		return out
	}
	out.Reposted = true

	for _, emoji := range Reactions {
		if err := r.Messenger.MessageReactionAdd(msg.ChannelID, posted.ID, emoji); err != nil {
			logger.Warn("could not add reaction", zap.String("emoji", emoji), zap.Error(err))
			r.Notifier.Operator(model.Warn, "Announce", "AddReaction", fmt.Sprintf("Can't add %s in `%s`: %v", emoji, channel.Name, err))
			continue
		}
		out.Reactions++
	}

	thread, err := r.Messenger.MessageThreadStartComplex(msg.ChannelID, posted.ID, &discordgo.ThreadStart{
		Name:                threadName(match),
		AutoArchiveDuration: threadArchiveMinutes,
	})
	if err != nil {
		logger.Warn("could not create thread", zap.Error(err))
		r.Notifier.Operator(model.Warn, "Announce", "CreateThread", fmt.Sprintf("Can't create thread in `%s`: %v", channel.Name, err))
	} else {
		out.Threaded = true
		if roleID != "" {
			if _, err := r.Messenger.ChannelMessageSend(thread.ID, fmt.Sprintf("<@&%s>", roleID)); err != nil {
				logger.Warn("could not mention role", zap.Error(err))
				r.Notifier.Operator(model.Warn, "Announce", "MentionRole", fmt.Sprintf("Can't mention role in thread `%s`: %v", thread.Name, err))
			} else {
				out.RoleMentioned = true
			}
		}
	}

	if err := r.Messenger.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
		r.Notifier.Fail(msg.ChannelID, "Announce", "DeleteOriginal", fmt.Sprintf("Can't delete message: %v", err))
		return out
	}
	out.DeletedOriginal = true
	return out
}

func (r *Reformatter) anonymize(ctx context.Context, msg *discordgo.Message, channel *discordgo.Channel) Outcome {
	var out Outcome

	if err := r.Messenger.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
		err = model.ClassifyDiscordError(err)
		text := fmt.Sprintf("Can't delete message: %v", err)
		if errors.Is(err, model.ErrPermission) {
			text = fmt.Sprintf("Permissions error: %v", err)
		}
		r.Notifier.Fail(msg.ChannelID, "Anonymize", "DeleteOriginal", text)
		return out
	}
	out.DeletedOriginal = true

	sent, err := utils.RepostMessage(ctx, r.Messenger, msg.ChannelID, msg)
	if err != nil {
		r.Notifier.Fail(msg.ChannelID, "Anonymize", "Repost", fmt.Sprintf("Can't send new message: %v", err))
		return out
	}
	out.Reposted = true

	actor := utils.TaskActor{ChannelID: msg.ChannelID, ChannelName: channel.Name}
	if msg.Author != nil {
		actor.UserID = msg.Author.ID
		actor.UserName = msg.Author.Username
	}
	r.Tasks.LogTask(actor, "Anonymize Message", fmt.Sprintf("Message ID: %s", sent.ID))
	return out
}
