package pacing

import (
	"github.com/letser/plotplay/pkg/game"
)

// Clock is the minute-resolution time position of one session. It is
// mutated only by the Engine; everything else reads it.
type Clock struct {
	Minutes int `json:"minutes"` // minutes since local midnight, 0-1439
	Day     int `json:"day"`
	Weekday int `json:"weekday"` // index into the game's weekday list
}

// NewClock returns the opening clock position for a game.
func NewClock(g *game.Game) Clock {
	minutes, err := game.ParseClock(g.Time.Start)
	if err != nil {
		minutes = 0
	}
	return Clock{
		Minutes: minutes,
		Day:     g.Time.StartDay,
		Weekday: g.Time.StartWeekdayIndex(),
	}
}

// String renders the clock as "HH:MM".
func (c Clock) String() string {
	return game.FormatClock(c.Minutes)
}

// WeekdayName resolves the weekday label against a game's weekday list.
func (c Clock) WeekdayName(g *game.Game) string {
	names := g.Time.WeekdayNames()
	if len(names) == 0 {
		return ""
	}
	return names[c.Weekday%len(names)]
}
