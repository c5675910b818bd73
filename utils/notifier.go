package utils

import (
	"time"

	"elk-bot/model"

	"go.uber.org/zap"
)

// DefaultTransientTTL is how long a transient channel notice stays visible.
const DefaultTransientTTL = 10 * time.Second

// Notifier reports to users with auto-expiring channel notices and to
// operators through the OperatorLog.
type Notifier struct {
	Messenger model.Messenger
	Log       *OperatorLog
	Logger    *zap.Logger
	TTL       time.Duration

	// AfterFunc schedules the expiry; replaced in tests.
	AfterFunc func(d time.Duration, f func())
}

func NewNotifier(m model.Messenger, opLog *OperatorLog, logger *zap.Logger, ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTransientTTL
	}
	return &Notifier{
		Messenger: m,
		Log:       opLog,
		Logger:    logger,
		TTL:       ttl,
		AfterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Transient posts content and deletes it once the TTL has elapsed.
func (n *Notifier) Transient(channelID, content string) {
	msg, err := n.Messenger.ChannelMessageSend(channelID, content)
	if err != nil {
		n.Logger.Warn("could not send transient notice", zap.String("channel_id", channelID), zap.Error(err))
		return
	}
	n.DeleteAfter(channelID, msg.ID, n.TTL)
}

// DeleteAfter removes a message once d has elapsed.
func (n *Notifier) DeleteAfter(channelID, messageID string, d time.Duration) {
	n.AfterFunc(d, func() {
		if err := n.Messenger.ChannelMessageDelete(channelID, messageID); err != nil {
			n.Logger.Debug("could not expire message", zap.String("message_id", messageID), zap.Error(err))
		}
	})
}

// Operator forwards to the operator channel.
func (n *Notifier) Operator(level model.LogLevel, module, operation, detail string) {
	_ = n.Log.send(level, module, operation, detail)
}

// Fail is the dual report used at handler boundaries.
func (n *Notifier) Fail(channelID, module, operation, message string) {
	n.Transient(channelID, message)
	n.Operator(model.Error, module, operation, message)
}
