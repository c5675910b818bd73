package bot

import (
	"context"
	"elk-bot/config"
	"elk-bot/model"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	Session   *discordgo.Session
	Messenger *Messenger
	Scheduler *Scheduler
	Logger    *zap.Logger

	config atomic.Value // *model.Config
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

// Context is cancelled when the bot shuts down.
func (b *Bot) Context() context.Context {
	return b.ctx
}

func New(cfg *model.Config, logger *zap.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
	// 启用状态缓存以减少 REST 请求
	dg.StateEnabled = true

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		Session:   dg,
		Messenger: NewMessenger(dg),
		Scheduler: NewScheduler(logger.With(zap.String("module", "scheduler"))),
		Logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	b.config.Store(cfg)
	return b, nil
}

// Latency is the gateway heartbeat latency.
func (b *Bot) Latency() time.Duration {
	return b.Session.HeartbeatLatency()
}

func (b *Bot) Close() {
	b.Logger.Info("gracefully shutting down")
	close(b.done)
	b.cancel()
	b.Scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		b.Logger.Warn("error closing gateway session", zap.Error(err))
	}
}

// ReloadConfig re-reads the environment and settings file and stores the
// result for every later GetConfig call.
func (b *Bot) ReloadConfig() (*model.Config, error) {
	b.Logger.Info("reloading configuration")
	newCfg, err := config.Load()
	if err != nil {
		b.Logger.Error("error reloading config", zap.Error(err))
		return nil, err
	}
	b.config.Store(newCfg)
	b.Logger.Info("configuration reloaded")
	return newCfg, nil
}
