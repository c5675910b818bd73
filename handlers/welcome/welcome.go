// Package welcome greets members when they join the guild.
package welcome

import (
	"elk-bot/model"
	"elk-bot/utils"
	"fmt"
	"strings"
	"text/template"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Defaults used when the settings leave a template empty.
const (
	DefaultDirectTemplate = "# Welcome to the **[ELK] Elements Kingdom server** 🖥️ ! \nHello {{.Mention}}! We're glad to have you here. 👋 \nIf you have any **problem** or want to be **recruited**, open a ticket (including if you're already in the alliance ingame): https://discord.com/channels/1182139977937723533/1182144002011697203 \nAnd be sure to read our **rules**: https://discord.com/channels/1182139977937723533/1182142923668734062 \nLet's chat! 😄 https://discord.com/channels/1182139977937723533/1182162116308897844"

	DefaultChannelTemplate = "Oh, it's you {{.Mention}}? \n\nCan you see the door, there? Yeah, with a guard in front of. Let's talk to him to **be approved** in our great Kingdom! \nYour next **mission** is to go to https://discord.com/channels/1182139977937723533/1182142923668734062 \n\nIf you have any trouble, you can **contact me directly** with opening a new https://discord.com/channels/1182139977937723533/1182144002011697203 \n\nHave a good day Lord, I hope you will have the favor of the Elements!\n\n."
)

// Member is the data available to the templates.
type Member struct {
	Mention string
	Name    string
	ID      string
}

// Welcome posts the onboarding messages for new members.
type Welcome struct {
	Messenger model.Messenger
	Notifier  *utils.Notifier
	ChannelID string
	Logger    *zap.Logger

	direct  *template.Template
	channel *template.Template
}

// New parses both templates. Empty strings fall back to the defaults.
func New(m model.Messenger, n *utils.Notifier, cfg model.WelcomeConfig, logger *zap.Logger) (*Welcome, error) {
	direct, err := parse("direct", cfg.DirectTemplate, DefaultDirectTemplate)
	if err != nil {
		return nil, err
	}
	channel, err := parse("channel", cfg.ChannelTemplate, DefaultChannelTemplate)
	if err != nil {
		return nil, err
	}
	if cfg.ChannelID == "" {
		logger.Warn("welcome channel is not configured, channel greetings are disabled")
	}
	return &Welcome{
		Messenger: m,
		Notifier:  n,
		ChannelID: cfg.ChannelID,
		Logger:    logger,
		direct:    direct,
		channel:   channel,
	}, nil
}

func parse(name, text, fallback string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		text = fallback
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: welcome %s template: %v", model.ErrConfig, name, err)
	}
	return tmpl, nil
}

func render(tmpl *template.Template, data Member) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// MemberFor builds the template data of a guild member.
func MemberFor(m *discordgo.Member) Member {
	name := m.Nick
	if name == "" && m.User != nil {
		name = m.User.GlobalName
		if name == "" {
			name = m.User.Username
		}
	}
	data := Member{Name: name}
	if m.User != nil {
		data.ID = m.User.ID
		data.Mention = m.User.Mention()
	}
	return data
}

// Handle greets member by direct message and in the welcome channel. The two
// posts are independent; a closed DM does not stop the channel greeting.
func (w *Welcome) Handle(member *discordgo.Member) error {
	if member.User == nil || member.User.Bot {
		return nil
	}
	data := MemberFor(member)
	log := w.Logger.With(zap.String("user_id", data.ID))

	var errs []error
	if text, err := render(w.direct, data); err != nil {
		errs = append(errs, fmt.Errorf("rendering direct welcome: %w", err))
	} else if err := utils.SendPrivateMessage(w.Messenger, data.ID, text); err != nil {
		// 用户可能关闭了私信
		log.Info("could not send welcome DM", zap.Error(err))
	}

	if w.ChannelID != "" {
		if text, err := render(w.channel, data); err != nil {
			errs = append(errs, fmt.Errorf("rendering channel welcome: %w", err))
		} else if _, err := w.Messenger.ChannelMessageSend(w.ChannelID, text); err != nil {
			errs = append(errs, fmt.Errorf("posting channel welcome: %w", model.ClassifyDiscordError(err)))
		}
	}

	for _, err := range errs {
		w.Notifier.Operator(model.Error, "welcome", "member join", err.Error())
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
