package announce

import (
	"elk-bot/model"
	"errors"
	"fmt"
	"strings"
	"time"
)

const announcementLayout = "02/01/2006 3:04 PM"

// staleAfter is how far in the past a date may fall before it is taken to
// mean the same day next year.
const staleAfter = 180 * 24 * time.Hour

// Normalize turns a dd/mm date and h:mm am|pm clock into a UTC instant.
// The year is now's year unless that lands more than 180 days ago, in which
// case the following year is used.
func Normalize(dayMonth, clock string, now time.Time) (time.Time, error) {
	clock = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(clock), "UTC"))
	clock = strings.ToUpper(clock)

	now = now.UTC()
	at, err := parseInYear(dayMonth, clock, now.Year())
	if errors.Is(err, errDayOutOfRange) {
		// 29/02 outside a leap year belongs to the next leap year
		return nextValidYear(dayMonth, clock, now.Year()+1)
	}
	if err != nil {
		return time.Time{}, err
	}
	if now.Sub(at) > staleAfter {
		return nextValidYear(dayMonth, clock, now.Year()+1)
	}
	return at, nil
}

var errDayOutOfRange = errors.New("day out of range")

func nextValidYear(dayMonth, clock string, from int) (time.Time, error) {
	var err error
	for year := from; year < from+4; year++ {
		var at time.Time
		if at, err = parseInYear(dayMonth, clock, year); !errors.Is(err, errDayOutOfRange) {
			return at, err
		}
	}
	return time.Time{}, err
}

func parseInYear(dayMonth, clock string, year int) (time.Time, error) {
	value := fmt.Sprintf("%s/%d %s", dayMonth, year, clock)
	at, err := time.ParseInLocation(announcementLayout, value, time.UTC)
	if err != nil {
		var perr *time.ParseError
		if errors.As(err, &perr) && strings.Contains(perr.Message, "day out of range") {
			return time.Time{}, fmt.Errorf("%w: %q: %w", model.ErrParse, dayMonth+" "+clock, errDayOutOfRange)
		}
		return time.Time{}, fmt.Errorf("%w: %q is not a dd/mm h:mm am|pm time: %v", model.ErrParse, dayMonth+" "+clock, err)
	}
	return at, nil
}
