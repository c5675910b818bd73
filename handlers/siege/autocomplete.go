package siege

import (
	"elk-bot/model"
	"elk-bot/utils"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
)

// CityChoices suggests cities whose name contains current.
func (s *Siege) CityChoices(current string) []*discordgo.ApplicationCommandOptionChoice {
	return lo.Map(s.Cities.Search(current), func(c model.City, _ int) *discordgo.ApplicationCommandOptionChoice {
		return &discordgo.ApplicationCommandOptionChoice{Name: CityLabel(c), Value: c.ID}
	})
}

// DayChoices suggests today, tomorrow and the day after, in UTC.
func DayChoices(now time.Time, current string) []*discordgo.ApplicationCommandOptionChoice {
	now = now.UTC()
	labels := []string{"today", "tomorrow", "in two days"}
	current = strings.ToLower(strings.TrimSpace(current))

	var choices []*discordgo.ApplicationCommandOptionChoice
	for offset, label := range labels {
		day := now.AddDate(0, 0, offset)
		value := day.Format(dayLayout)
		name := label + " (" + day.Format("Mon 02 Jan") + ")"
		if current != "" && !strings.Contains(strings.ToLower(name), current) && !strings.Contains(value, current) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: value + " - " + name, Value: value})
	}
	return choices
}

// Autocomplete answers the city and day options of /siege start.
func (s *Siege) Autocomplete(i *discordgo.Interaction) error {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return nil
	}
	sub := data.Options[0]
	focused, ok := lo.Find(sub.Options, func(o *discordgo.ApplicationCommandInteractionDataOption) bool { return o.Focused })
	if !ok {
		return nil
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	switch focused.Name {
	case "city":
		choices = s.CityChoices(focused.StringValue())
	case "day":
		choices = DayChoices(s.now(), focused.StringValue())
	}
	return utils.SendChoices(s.Messenger, i, choices)
}
