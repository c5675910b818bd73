package info

import (
	"elk-bot/model"
	"elk-bot/utils"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	previewLength = 30
	recentTasks   = 10
)

// Info holds the dependencies of the info commands.
type Info struct {
	Messenger model.Messenger
	Tasks     *utils.TaskLogger
	DB        *sqlx.DB
	Cities    *utils.CityStore
	// Latency reports the gateway heartbeat latency; nil hides the field.
	Latency func() time.Duration
	Logger  *zap.Logger
}

func actor(i *discordgo.Interaction) utils.TaskActor {
	a := utils.TaskActor{ChannelID: i.ChannelID}
	if i.Member != nil && i.Member.User != nil {
		a.UserID = i.Member.User.ID
		a.UserName = i.Member.User.Username
	}
	return a
}

func (h *Info) reply(i *discordgo.Interaction, infoType string, fields []Field) error {
	return utils.SendSimpleResponse(h.Messenger, i, FormatInfo(infoType, fields))
}

func boolOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) bool {
	if opt, ok := opts[name]; ok {
		return opt.BoolValue()
	}
	return false
}

func snowflakeTime(id string) time.Time {
	t, err := discordgo.SnowflakeTimestamp(id)
	if err != nil {
		return time.Time{}
	}
	return t
}

// HandleCommand dispatches an /info subcommand.
func (h *Info) HandleCommand(i *discordgo.Interaction) error {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return fmt.Errorf("%w: missing info subcommand", model.ErrParse)
	}
	sub := data.Options[0]
	opts := lo.KeyBy(sub.Options, func(o *discordgo.ApplicationCommandInteractionDataOption) string { return o.Name })
	extended := boolOption(opts, "extended")

	switch sub.Name {
	case "guild":
		return h.Guild(i, extended)
	case "channel":
		opt, ok := opts["channel"]
		if !ok {
			return fmt.Errorf("%w: channel option missing", model.ErrParse)
		}
		return h.Channel(i, opt.Value.(string), extended)
	case "user":
		opt, ok := opts["user"]
		if !ok {
			return fmt.Errorf("%w: user option missing", model.ErrParse)
		}
		return h.User(i, data.Resolved, opt.Value.(string), extended)
	case "role":
		opt, ok := opts["role"]
		if !ok {
			return fmt.Errorf("%w: role option missing", model.ErrParse)
		}
		return h.Role(i, data.Resolved, opt.Value.(string), extended)
	case "system":
		return h.System(i)
	case "tasks":
		return h.RecentTasks(i)
	}
	return fmt.Errorf("%w: unknown info subcommand %q", model.ErrNotFound, sub.Name)
}

// HandleContextMenu answers the Channel Info, Message Info and User Info menus.
func (h *Info) HandleContextMenu(i *discordgo.Interaction) error {
	data := i.ApplicationCommandData()
	switch data.Name {
	case "Channel Info":
		msg, err := resolvedMessage(data)
		if err != nil {
			return err
		}
		return h.Channel(i, msg.ChannelID, false)
	case "Message Info":
		msg, err := resolvedMessage(data)
		if err != nil {
			return err
		}
		return h.Message(i, msg)
	case "User Info":
		return h.User(i, data.Resolved, data.TargetID, false)
	}
	return fmt.Errorf("%w: unknown context menu %q", model.ErrNotFound, data.Name)
}

func resolvedMessage(data discordgo.ApplicationCommandInteractionData) (*discordgo.Message, error) {
	if data.Resolved != nil {
		if msg, ok := data.Resolved.Messages[data.TargetID]; ok {
			return msg, nil
		}
	}
	return nil, fmt.Errorf("%w: target message %s not resolved", model.ErrNotFound, data.TargetID)
}

// Guild describes the guild the command was run in.
func (h *Info) Guild(i *discordgo.Interaction, extended bool) error {
	h.Tasks.LogTask(actor(i), "info.guild", fmt.Sprintf("extended: %t", extended))

	g, err := h.Messenger.Guild(i.GuildID)
	if err != nil {
		return fmt.Errorf("fetching guild: %w", model.ClassifyDiscordError(err))
	}
	members := g.MemberCount
	if members == 0 {
		members = g.ApproximateMemberCount
	}
	fields := []Field{
		{"id", g.ID},
		{"name", g.Name},
		{"members", members},
	}
	if extended {
		fields = append(fields,
			Field{"channels", len(g.Channels)},
			Field{"vanity_url", g.VanityURLCode},
			Field{"owner", g.OwnerID},
			Field{"description", g.Description},
			Field{"verification", int(g.VerificationLevel)},
			Field{"created", snowflakeTime(g.ID)},
		)
	}
	return h.reply(i, "guild", fields)
}

func channelTypeName(t discordgo.ChannelType) string {
	switch t {
	case discordgo.ChannelTypeGuildText:
		return "text"
	case discordgo.ChannelTypeGuildVoice:
		return "voice"
	case discordgo.ChannelTypeGuildCategory:
		return "category"
	case discordgo.ChannelTypeGuildNews:
		return "news"
	case discordgo.ChannelTypeGuildForum:
		return "forum"
	case discordgo.ChannelTypeGuildPublicThread, discordgo.ChannelTypeGuildPrivateThread, discordgo.ChannelTypeGuildNewsThread:
		return "thread"
	case discordgo.ChannelTypeGuildStageVoice:
		return "stage"
	}
	return fmt.Sprintf("type %d", t)
}

// Channel describes channelID.
func (h *Info) Channel(i *discordgo.Interaction, channelID string, extended bool) error {
	ch, err := h.Messenger.Channel(channelID)
	if err != nil {
		return fmt.Errorf("fetching channel: %w", model.ClassifyDiscordError(err))
	}
	h.Tasks.LogTask(actor(i), "info.channel", fmt.Sprintf("channel: %s, extended: %t", ch.Name, extended))

	category := ""
	if ch.ParentID != "" {
		if parent, err := h.Messenger.Channel(ch.ParentID); err == nil {
			category = parent.Name
		}
	}
	fields := []Field{
		{"id", ch.ID},
		{"name", ch.Name},
		{"type", channelTypeName(ch.Type)},
		{"category", category},
		{"topic", ch.Topic},
	}
	if extended {
		fields = append(fields,
			Field{"position", ch.Position},
			Field{"slow_delay", ch.RateLimitPerUser},
			Field{"nsfw", ch.NSFW},
			Field{"created", snowflakeTime(ch.ID)},
		)
	}
	return h.reply(i, "channel", fields)
}

// Message describes msg; only reachable from the context menu.
func (h *Info) Message(i *discordgo.Interaction, msg *discordgo.Message) error {
	url := fmt.Sprintf("https://discord.com/channels/%s/%s/%s", i.GuildID, msg.ChannelID, msg.ID)
	h.Tasks.LogTask(actor(i), "info.message", fmt.Sprintf("message: %s", url))

	author := ""
	if msg.Author != nil {
		author = msg.Author.Username
	}
	preview := []rune(msg.Content)
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	channel := msg.ChannelID
	if ch, err := h.Messenger.Channel(msg.ChannelID); err == nil {
		channel = ch.Name
	}
	return h.reply(i, "message", []Field{
		{"id", msg.ID},
		{"author", author},
		{"channel", channel},
		{"preview", string(preview)},
		{"created", msg.Timestamp},
		{"edited", msg.EditedTimestamp},
		{"pinned", msg.Pinned},
		{"url", url},
	})
}

func (h *Info) roleNames(guildID string, roleIDs []string) []string {
	if len(roleIDs) == 0 {
		return []string{}
	}
	roles, err := h.Messenger.GuildRoles(guildID)
	if err != nil {
		h.Logger.Warn("could not fetch guild roles", zap.Error(err))
		return roleIDs
	}
	held := lo.Filter(roles, func(r *discordgo.Role, _ int) bool { return lo.Contains(roleIDs, r.ID) })
	return lo.Map(held, func(r *discordgo.Role, _ int) string { return r.Name })
}

// User describes userID, using the member record when the user is in the guild.
func (h *Info) User(i *discordgo.Interaction, resolved *discordgo.ApplicationCommandInteractionDataResolved, userID string, extended bool) error {
	var (
		user   *discordgo.User
		member *discordgo.Member
	)
	if resolved != nil {
		user = resolved.Users[userID]
		member = resolved.Members[userID]
	}
	if user == nil {
		fetched, err := h.Messenger.User(userID)
		if err != nil {
			return fmt.Errorf("fetching user: %w", model.ClassifyDiscordError(err))
		}
		user = fetched
	}
	h.Tasks.LogTask(actor(i), "info.user", fmt.Sprintf("user: %s, extended: %t", user.Username, extended))

	displayName := user.GlobalName
	if displayName == "" {
		displayName = user.Username
	}
	var roles []string
	if member != nil {
		roles = h.roleNames(i.GuildID, member.Roles)
		if member.Nick != "" {
			displayName = member.Nick
		}
	}

	fields := []Field{
		{"id", user.ID},
		{"name", user.Username},
		{"roles", roles},
		{"display_name", displayName},
	}
	if member != nil {
		fields = append(fields,
			Field{"nick", member.Nick},
			Field{"joined", member.JoinedAt},
			Field{"pending", member.Pending},
		)
	}
	if extended {
		fields = append(fields,
			Field{"global_name", user.GlobalName},
			Field{"created", snowflakeTime(user.ID)},
			Field{"bot", user.Bot},
			Field{"system", user.System},
		)
	}
	return h.reply(i, "user", fields)
}

// Role describes roleID.
func (h *Info) Role(i *discordgo.Interaction, resolved *discordgo.ApplicationCommandInteractionDataResolved, roleID string, extended bool) error {
	var role *discordgo.Role
	if resolved != nil {
		role = resolved.Roles[roleID]
	}
	if role == nil {
		roles, err := h.Messenger.GuildRoles(i.GuildID)
		if err != nil {
			return fmt.Errorf("fetching guild roles: %w", model.ClassifyDiscordError(err))
		}
		found, ok := lo.Find(roles, func(r *discordgo.Role) bool { return r.ID == roleID })
		if !ok {
			return fmt.Errorf("%w: role %s", model.ErrNotFound, roleID)
		}
		role = found
	}
	h.Tasks.LogTask(actor(i), "info.role", fmt.Sprintf("role: %s, extended: %t", role.Name, extended))

	members := "unknown"
	if g, err := h.Messenger.Guild(i.GuildID); err == nil && len(g.Members) > 0 {
		members = fmt.Sprint(lo.CountBy(g.Members, func(m *discordgo.Member) bool { return lo.Contains(m.Roles, role.ID) }))
	}
	fields := []Field{
		{"id", role.ID},
		{"name", role.Name},
		{"hoist", role.Hoist},
		{"members", members},
		{"color", fmt.Sprintf("#%06x", role.Color)},
		{"icon", role.Icon},
	}
	if extended {
		fields = append(fields,
			Field{"position", role.Position},
			Field{"managed", role.Managed},
			Field{"mentionable", role.Mentionable},
			Field{"created_at", snowflakeTime(role.ID)},
		)
	}
	return h.reply(i, "role", fields)
}
