package utils

import (
	"elk-bot/model"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// OperatorLog posts durable, human readable log embeds to the bot channel.
// With an empty channel ID it only writes to the process log.
type OperatorLog struct {
	Messenger model.Messenger
	ChannelID string
	Logger    *zap.Logger
}

func getColor(level model.LogLevel) int {
	switch level {
	case model.Info:
		return 3066993 // Green
	case model.Warn:
		return 15105570 // Orange
	case model.Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

func truncateField(v string) string {
	if v == "" {
		return "-"
	}
	runes := []rune(v)
	if len(runes) > 1024 {
		return string(runes[:1021]) + "..."
	}
	return v
}

func (l *OperatorLog) send(level model.LogLevel, module, operation, detail string) error {
	fields := []zap.Field{
		zap.String("module", module),
		zap.String("operation", operation),
		zap.String("detail", detail),
	}
	switch level {
	case model.Error:
		l.Logger.Error("operator log", fields...)
	case model.Warn:
		l.Logger.Warn("operator log", fields...)
	default:
		l.Logger.Info("operator log", fields...)
	}

	if l.ChannelID == "" || l.Messenger == nil {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title: string(level) + " Log",
		Color: getColor(level),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Module", Value: truncateField(module)},
			{Name: "Operation", Value: truncateField(operation)},
			{Name: "Detail", Value: truncateField(detail)},
		},
	}
	_, err := l.Messenger.ChannelMessageSendComplex(l.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsSuppressNotifications,
	})
	if err != nil {
		l.Logger.Warn("could not post to operator channel", zap.String("channel_id", l.ChannelID), zap.Error(err))
	}
	return err
}

// Send posts text to the operator channel without notifications and returns
// the posted message, or nil when no channel is configured.
func (l *OperatorLog) Send(content string) (*discordgo.Message, error) {
	if l.ChannelID == "" || l.Messenger == nil {
		return nil, nil
	}
	return l.Messenger.ChannelMessageSendComplex(l.ChannelID, &discordgo.MessageSend{
		Content: content,
		Flags:   discordgo.MessageFlagsSuppressNotifications,
	})
}

func (l *OperatorLog) LogInfo(module, operation, detail string) error {
	return l.send(model.Info, module, operation, detail)
}

func (l *OperatorLog) LogWarn(module, operation, detail string) error {
	return l.send(model.Warn, module, operation, detail)
}

func (l *OperatorLog) LogError(module, operation, detail string) error {
	return l.send(model.Error, module, operation, detail)
}
