package announce

import (
	"regexp"
	"strconv"
)

var (
	announcementPattern = regexp.MustCompile(`^Lvl (\d+) (.+)\n(\d{1,2}:\d{2} [apAP][mM]) (\d{2}/\d{2})`)
	missionsPattern     = regexp.MustCompile(`s(\d{2})-missions`)
)

// Match is a parsed event announcement.
type Match struct {
	Level       int
	Description string
	Clock       string // h:mm am|pm
	DayMonth    string // dd/mm
}

// Title is the heading shared by the repost and its thread.
func (m Match) Title() string {
	return "Lvl " + strconv.Itoa(m.Level) + " " + m.Description
}

// Classify reports whether content is an event announcement. Only the start
// of the message is matched; anything after the date line is ignored.
func Classify(content string) (Match, bool) {
	groups := announcementPattern.FindStringSubmatch(content)
	if groups == nil {
		return Match{}, false
	}
	level, err := strconv.Atoi(groups[1])
	if err != nil {
		// Only reachable on overflow.
		return Match{}, false
	}
	return Match{
		Level:       level,
		Description: groups[2],
		Clock:       groups[3],
		DayMonth:    groups[4],
	}, true
}

// GroupNumber extracts NN from a channel named like "s07-missions".
func GroupNumber(channelName string) (string, bool) {
	groups := missionsPattern.FindStringSubmatch(channelName)
	if groups == nil {
		return "", false
	}
	return groups[1], true
}
