package translate

import (
	"context"
	"elk-bot/model"
	"elk-bot/utils"
	"elk-bot/utils/translator"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// FlagTranslator answers a flag reaction with a translation of the reacted
// message into the flag's language.
type FlagTranslator struct {
	Messenger  model.Messenger
	Translator translator.Translator
	Notifier   *utils.Notifier
	Logger     *zap.Logger
}

// Handle reports whether a translation reply was posted. botUserID is used to
// skip the bot's own reactions.
func (f *FlagTranslator) Handle(ctx context.Context, r *discordgo.MessageReaction, botUserID string) bool {
	if r.UserID == botUserID {
		return false
	}
	region, ok := DecodeFlag(r.Emoji.Name)
	if !ok {
		return false
	}
	lang := TargetLanguage(region)

	original, err := f.Messenger.ChannelMessage(r.ChannelID, r.MessageID)
	if err != nil {
		f.Notifier.Fail(r.ChannelID, "Translation", "FetchMessage", fmt.Sprintf("Translation Error: %v", model.ClassifyDiscordError(err)))
		return false
	}

	text, err := f.translate(ctx, original.Content, lang)
	if err != nil {
		f.Notifier.Fail(r.ChannelID, "Translation", "FlagTranslate", fmt.Sprintf("Translation Error: %v", err))
		return false
	}

	reply := fmt.Sprintf("%s -> %s ・ %s", LanguageFlag(DefaultDestination), r.Emoji.Name, text)
	if _, err := f.Messenger.ChannelMessageSendReply(r.ChannelID, reply, original.Reference()); err != nil {
		f.Notifier.Fail(r.ChannelID, "Translation", "Reply", fmt.Sprintf("Translation Error: %v", model.ClassifyDiscordError(err)))
		return false
	}

	// 移除用户的反应，以便再次触发
	if err := f.Messenger.MessageReactionRemove(r.ChannelID, r.MessageID, r.Emoji.APIName(), r.UserID); err != nil {
		f.Logger.Warn("could not remove flag reaction",
			zap.String("message_id", r.MessageID),
			zap.String("user_id", r.UserID),
			zap.Error(err))
	}
	return true
}

func (f *FlagTranslator) translate(ctx context.Context, text, lang string) (string, error) {
	if lang == DefaultDestination {
		return text, nil
	}
	return f.Translator.Translate(ctx, text, DefaultDestination, lang)
}
