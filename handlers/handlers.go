package handlers

import (
	"context"
	"elk-bot/commands"
	"elk-bot/handlers/announce"
	"elk-bot/handlers/info"
	"elk-bot/handlers/moderation"
	"elk-bot/handlers/siege"
	"elk-bot/handlers/translate"
	"elk-bot/handlers/welcome"
	"elk-bot/model"
	"elk-bot/utils"
	"elk-bot/utils/translator"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// DefaultMissionsSuffix marks the channels whose messages are reformatted.
const DefaultMissionsSuffix = "-missions"

// CommandSyncer registers the slash commands of a guild.
type CommandSyncer interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Deps are the long lived collaborators every registration table is built from.
type Deps struct {
	Messenger  model.Messenger
	Syncer     CommandSyncer
	Config     func() *model.Config
	Reload     func() (*model.Config, error)
	Cities     *utils.CityStore
	Flags      *utils.FlagStore
	Detector   translator.Detector
	Translator translator.Translator
	Scheduler  siege.Scheduler
	DB         *sqlx.DB
	Latency    func() time.Duration
	Logger     *zap.Logger
	Now        func() time.Time

	// AfterFunc overrides how notices are expired; nil uses time.AfterFunc.
	AfterFunc func(d time.Duration, f func())
}

// PrefixHandler runs one prefix command.
type PrefixHandler func(ctx context.Context, inv moderation.Invocation) error

// InteractionHandler runs one slash command, context menu or autocomplete.
type InteractionHandler func(ctx context.Context, i *discordgo.Interaction) error

// tables is everything derived from one configuration snapshot. A reload
// replaces the whole value.
type tables struct {
	cfg      *model.Config
	opLog    *utils.OperatorLog
	notifier *utils.Notifier
	tasks    *utils.TaskLogger

	prefix       map[string]PrefixHandler
	slash        map[string]InteractionHandler
	autocomplete map[string]InteractionHandler

	reformatter *announce.Reformatter
	gate        *translate.Gate
	flags       *translate.FlagTranslator
	welcome     *welcome.Welcome
}

// Router receives every gateway event and dispatches it through the current
// registration tables.
type Router struct {
	Deps

	mu      sync.RWMutex
	current *tables
	botUser atomic.Value // string
}

// New builds the registration tables from the current configuration.
func New(deps Deps) (*Router, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	r := &Router{Deps: deps}
	if err := r.Rebuild(deps.Config()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Router) snapshot() *tables {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// BotUserID is the ID of the bot account once the session is ready.
func (r *Router) BotUserID() string {
	id, _ := r.botUser.Load().(string)
	return id
}

// SetBotUserID records the bot account; called on ready.
func (r *Router) SetBotUserID(id string) {
	r.botUser.Store(id)
}

// Rebuild replaces the registration tables with ones built from cfg.
func (r *Router) Rebuild(cfg *model.Config) error {
	t, err := r.build(cfg)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.current = t
	r.mu.Unlock()
	return nil
}

func (r *Router) build(cfg *model.Config) (*tables, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: no configuration loaded", model.ErrConfig)
	}
	catalog, err := commands.LoadCatalog(cfg.CommandHelpFile)
	if err != nil {
		return nil, err
	}

	logger := r.Logger
	if cfg.LogChannelID == "" {
		logger.Warn("operator log channel is not configured, operator reports go to the process log only")
	}
	opLog := &utils.OperatorLog{Messenger: r.Messenger, ChannelID: cfg.LogChannelID, Logger: logger.With(zap.String("module", "operator"))}
	notifier := utils.NewNotifier(r.Messenger, opLog, logger.With(zap.String("module", "notifier")), cfg.TransientTTL)
	if r.AfterFunc != nil {
		notifier.AfterFunc = r.AfterFunc
	}
	tasks := &utils.TaskLogger{DB: r.DB, Log: opLog, Logger: logger.With(zap.String("module", "audit")), Now: r.Now}

	mod := &moderation.Moderation{
		Messenger: r.Messenger,
		Notifier:  notifier,
		Tasks:     tasks,
		Flags:     r.Flags,
		Help:      catalog,
		Prefix:    cfg.Prefix,
		Logger:    logger.With(zap.String("module", "moderation")),
	}
	sg := &siege.Siege{
		Messenger:       r.Messenger,
		Cities:          r.Cities,
		Scheduler:       r.Scheduler,
		Tasks:           tasks,
		ReminderOffsets: cfg.Siege.ReminderOffsets,
		Logger:          logger.With(zap.String("module", "siege")),
		Now:             r.Now,
	}
	inf := &info.Info{
		Messenger: r.Messenger,
		Tasks:     tasks,
		DB:        r.DB,
		Cities:    r.Cities,
		Latency:   r.Latency,
		Logger:    logger.With(zap.String("module", "info")),
	}
	greeter, err := welcome.New(r.Messenger, notifier, cfg.Welcome, logger.With(zap.String("module", "welcome")))
	if err != nil {
		return nil, err
	}

	t := &tables{
		cfg:      cfg,
		opLog:    opLog,
		notifier: notifier,
		tasks:    tasks,
		reformatter: &announce.Reformatter{
			Messenger: r.Messenger,
			Notifier:  notifier,
			Tasks:     tasks,
			Logger:    logger.With(zap.String("module", "announce")),
			Now:       r.Now,
		},
		gate: &translate.Gate{
			Messenger:   r.Messenger,
			Flags:       r.Flags,
			Detector:    r.Detector,
			Translator:  r.Translator,
			Notifier:    notifier,
			Logger:      logger.With(zap.String("module", "translate")),
			Destination: cfg.Translation.Destination,
			MinLength:   cfg.Translation.MinLength,
		},
		flags: &translate.FlagTranslator{
			Messenger:  r.Messenger,
			Translator: r.Translator,
			Notifier:   notifier,
			Logger:     logger.With(zap.String("module", "translate")),
		},
		welcome: greeter,
	}
	t.prefix = prefixHandlers(r, mod)
	t.slash = slashHandlers(sg, inf)
	t.autocomplete = autocompleteHandlers(sg)
	return t, nil
}

// Register attaches the router to the bot's gateway session.
func Register(ctx context.Context, s *discordgo.Session, r *Router) {
	s.AddHandler(func(s *discordgo.Session, e *discordgo.Ready) {
		r.OnReady(ctx, e)
	})
	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		r.OnMessage(ctx, m.Message)
	})
	s.AddHandler(func(s *discordgo.Session, e *discordgo.MessageReactionAdd) {
		r.OnReactionAdd(ctx, e.MessageReaction)
	})
	s.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
		r.OnMemberAdd(e.Member)
	})
	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		r.OnInteraction(ctx, i.Interaction)
	})
}

func missionsSuffix(cfg *model.Config) string {
	if cfg.MissionsSuffix == "" {
		return DefaultMissionsSuffix
	}
	return cfg.MissionsSuffix
}
