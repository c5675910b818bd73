// Package siege implements the /siege command group: scheduling sieges with
// reminders and maintaining the list of target cities.
package siege

import (
	"context"
	"elk-bot/model"
	"elk-bot/utils"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	dayLayout   = "2006-01-02"
	clockLayout = "15:04"
)

// Reactions added under every siege announcement.
var Reactions = []string{"✅", "❌", "❓"}

// Scheduler runs job once at the given instant.
type Scheduler interface {
	At(at time.Time, job func())
}

// Siege holds the dependencies of the /siege commands.
type Siege struct {
	Messenger       model.Messenger
	Cities          *utils.CityStore
	Scheduler       Scheduler
	Tasks           *utils.TaskLogger
	ReminderOffsets []time.Duration
	Logger          *zap.Logger
	Now             func() time.Time
}

func (s *Siege) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	return lo.KeyBy(options, func(o *discordgo.ApplicationCommandInteractionDataOption) string { return o.Name })
}

func actor(i *discordgo.Interaction) utils.TaskActor {
	a := utils.TaskActor{ChannelID: i.ChannelID}
	if i.Member != nil && i.Member.User != nil {
		a.UserID = i.Member.User.ID
		a.UserName = i.Member.User.Username
	}
	return a
}

// CityLabel is how a city is shown in choices and listings.
func CityLabel(c model.City) string {
	return fmt.Sprintf("Lv.%d %s", c.Level, c.Name)
}

// HandleCommand dispatches a /siege subcommand.
func (s *Siege) HandleCommand(ctx context.Context, i *discordgo.Interaction) error {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return fmt.Errorf("%w: missing siege subcommand", model.ErrParse)
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "start":
		return s.Start(ctx, i, opts)
	case "add_city":
		return s.AddCity(i, opts)
	case "list_cities":
		return s.ListCities(i)
	}
	return fmt.Errorf("%w: unknown siege subcommand %q", model.ErrNotFound, sub.Name)
}

// ParseStart combines a YYYY-MM-DD day and HH:MM 24 hour clock as UTC.
func ParseStart(day, clock string) (time.Time, error) {
	at, err := time.ParseInLocation(dayLayout+" "+clockLayout, strings.TrimSpace(day)+" "+strings.TrimSpace(clock), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: expected day as YYYY-MM-DD and time as HH:MM, got %q %q", model.ErrParse, day, clock)
	}
	return at, nil
}

func (s *Siege) lookupCity(value string) (model.City, bool) {
	if city, ok := s.Cities.Get(value); ok {
		return city, true
	}
	// 用户未从自动补全中选择时，按名称匹配
	return lo.Find(s.Cities.All(), func(c model.City) bool {
		return strings.EqualFold(c.Name, strings.TrimSpace(value)) || c.ID == model.Slugify(value)
	})
}

// Start announces a siege, adds the attendance reactions and schedules the
// reminders.
func (s *Siege) Start(ctx context.Context, i *discordgo.Interaction, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	cityOpt, dayOpt, timeOpt := opts["city"], opts["day"], opts["time"]
	if cityOpt == nil || dayOpt == nil || timeOpt == nil {
		return utils.SendErrorResponse(s.Messenger, i, "city, day and time are required")
	}

	city, ok := s.lookupCity(cityOpt.StringValue())
	if !ok {
		return utils.SendErrorResponse(s.Messenger, i, fmt.Sprintf("Unknown city: %s", cityOpt.StringValue()))
	}
	start, err := ParseStart(dayOpt.StringValue(), timeOpt.StringValue())
	if err != nil {
		return utils.SendErrorResponse(s.Messenger, i, err.Error())
	}

	var roleID string
	if roleOpt, ok := opts["role"]; ok {
		roleID = roleOpt.RoleValue(nil, "").ID
	}

	unix := start.Unix()
	content := fmt.Sprintf("Lets start a siege on %s at <t:%d:F> (that's <t:%d:R>)", city.Name, unix, unix)
	if roleID != "" {
		content += fmt.Sprintf("\n<@&%s>", roleID)
	}
	if err := utils.SendPublicResponse(s.Messenger, i, content); err != nil {
		return fmt.Errorf("announcing siege: %w", model.ClassifyDiscordError(err))
	}

	s.Tasks.LogTask(actor(i), "siege.start", fmt.Sprintf("city: %s, start: %s", city.ID, start.Format(time.RFC3339)))

	if msg, err := s.Messenger.InteractionResponse(i); err != nil {
		s.Logger.Warn("could not fetch siege announcement", zap.Error(err))
	} else {
		for _, emoji := range Reactions {
			if err := s.Messenger.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
				s.Logger.Warn("could not add siege reaction", zap.String("emoji", emoji), zap.Error(err))
			}
		}
	}

	s.scheduleReminders(i.ChannelID, city, start, roleID)
	return nil
}

// ReminderText is posted when a reminder fires.
func ReminderText(city model.City, start time.Time, roleID string) string {
	text := fmt.Sprintf("Reminder: the siege on %s starts <t:%d:R> (<t:%d:t>)", city.Name, start.Unix(), start.Unix())
	if city.DeepLink != "" {
		text += "\n" + city.DeepLink
	}
	if roleID != "" {
		text += fmt.Sprintf("\n<@&%s>", roleID)
	}
	return text
}

func (s *Siege) scheduleReminders(channelID string, city model.City, start time.Time, roleID string) {
	now := s.now()
	for _, offset := range s.ReminderOffsets {
		at := start.Add(-offset)
		if !at.After(now) {
			continue
		}
		s.Scheduler.At(at, func() {
			if _, err := s.Messenger.ChannelMessageSend(channelID, ReminderText(city, start, roleID)); err != nil {
				s.Logger.Warn("could not post siege reminder",
					zap.String("city", city.ID),
					zap.Duration("offset", offset),
					zap.Error(err))
			}
		})
	}
}

// ParseCoords reads an "x,y" pair.
func ParseCoords(value string) (*[2]int, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: coords must be x,y, got %q", model.ErrParse, value)
	}
	var coords [2]int
	for idx, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: coords must be x,y, got %q", model.ErrParse, value)
		}
		coords[idx] = n
	}
	return &coords, nil
}

// AddCity stores or overwrites a city.
func (s *Siege) AddCity(i *discordgo.Interaction, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	nameOpt, levelOpt := opts["name"], opts["level"]
	if nameOpt == nil || levelOpt == nil {
		return utils.SendErrorResponse(s.Messenger, i, "name and level are required")
	}

	city := model.City{Name: strings.TrimSpace(nameOpt.StringValue()), Level: int(levelOpt.IntValue())}
	if opt, ok := opts["coords"]; ok {
		coords, err := ParseCoords(opt.StringValue())
		if err != nil {
			return utils.SendErrorResponse(s.Messenger, i, err.Error())
		}
		city.Coords = coords
	}
	if opt, ok := opts["deep_link"]; ok {
		city.DeepLink = strings.TrimSpace(opt.StringValue())
	}
	if opt, ok := opts["region"]; ok {
		city.Region = strings.TrimSpace(opt.StringValue())
	}

	stored, existed, err := s.Cities.Add(city)
	if err != nil {
		return err
	}
	s.Tasks.LogTask(actor(i), "siege.add_city", fmt.Sprintf("id: %s, level: %d", stored.ID, stored.Level))

	verb := "Added"
	if existed {
		verb = "Updated"
	}
	return utils.SendSimpleResponse(s.Messenger, i, fmt.Sprintf("%s city %s (`%s`)", verb, CityLabel(stored), stored.ID))
}

// FormatCity renders one line of the city listing.
func FormatCity(c model.City) string {
	line := fmt.Sprintf("%s (`%s`)", CityLabel(c), c.ID)
	if c.Region != "" {
		line += " - " + c.Region
	}
	if c.Coords != nil {
		line += fmt.Sprintf(" @ %d,%d", c.Coords[0], c.Coords[1])
	}
	if c.DeepLink != "" {
		line += " " + c.DeepLink
	}
	return line
}

// ListCities replies with every stored city.
func (s *Siege) ListCities(i *discordgo.Interaction) error {
	cities := s.Cities.All()
	if len(cities) == 0 {
		return utils.SendSimpleResponse(s.Messenger, i, "No cities have been added yet.")
	}
	lines := lo.Map(cities, func(c model.City, _ int) string { return FormatCity(c) })
	return utils.SendSimpleResponse(s.Messenger, i, strings.Join(lines, "\n"))
}
