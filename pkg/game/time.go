package game

import (
	"fmt"
	"strconv"
	"strings"
)

// defaultWeekdays is used when a game does not define its own week.
var defaultWeekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// TimeConfig is the pacing configuration of a game: the category table,
// per-kind default categories, the slot windows partitioning the day, and
// the opening clock position.
type TimeConfig struct {
	Start        string `yaml:"start" json:"start"`                                   // "HH:MM"
	StartDay     int    `yaml:"start_day,omitempty" json:"start_day,omitempty"`       // day counter the session opens on
	StartWeekday string `yaml:"start_weekday,omitempty" json:"start_weekday,omitempty"`

	Weekdays []string `yaml:"weekdays,omitempty" json:"weekdays,omitempty"` // cyclic labels, default mon..sun

	Categories map[string]int `yaml:"categories" json:"categories"` // category name -> base minutes
	Defaults   Defaults       `yaml:"defaults" json:"defaults"`
	Slots      []SlotWindow   `yaml:"slots" json:"slots"`
}

// Defaults assigns a pacing category to each action kind. Fallback covers
// any kind without its own assignment.
type Defaults struct {
	Conversation string `yaml:"conversation,omitempty" json:"conversation,omitempty"`
	Choice       string `yaml:"choice,omitempty" json:"choice,omitempty"`
	Movement     string `yaml:"movement,omitempty" json:"movement,omitempty"`
	Travel       string `yaml:"travel,omitempty" json:"travel,omitempty"`
	Fallback     string `yaml:"fallback" json:"fallback"`
}

// For returns the default category for an action kind, falling back to
// the global fallback when the kind has no assignment of its own.
func (d Defaults) For(kind string) string {
	var cat string
	switch kind {
	case "conversation":
		cat = d.Conversation
	case "choice":
		cat = d.Choice
	case "movement":
		cat = d.Movement
	case "travel":
		cat = d.Travel
	}
	if cat == "" {
		return d.Fallback
	}
	return cat
}

// SlotWindow names one time-of-day slot and its clock bounds. A window
// with End before Start wraps past midnight.
type SlotWindow struct {
	Name  string `yaml:"name" json:"name"`
	Start string `yaml:"start" json:"start"` // inclusive, "HH:MM"
	End   string `yaml:"end" json:"end"`     // exclusive, "HH:MM" ("24:00" allowed)
}

// contains reports whether the window covers the given minute of day.
// Bounds that fail to parse never match; Validate rejects them at load.
func (w SlotWindow) contains(minute int) bool {
	start, err := ParseClock(w.Start)
	if err != nil {
		return false
	}
	end, err := ParseClock(w.End)
	if err != nil {
		return false
	}
	if start < end {
		return minute >= start && minute < end
	}
	// Wraps midnight.
	return minute >= start || minute < end
}

// SlotAt returns the name of the first slot window covering the given
// minute of day, or "" when no window matches.
func (t TimeConfig) SlotAt(minute int) string {
	for _, w := range t.Slots {
		if w.contains(minute) {
			return w.Name
		}
	}
	return ""
}

// WeekdayNames returns the game's weekday labels, defaulting to the
// standard seven.
func (t TimeConfig) WeekdayNames() []string {
	if len(t.Weekdays) > 0 {
		return t.Weekdays
	}
	return defaultWeekdays
}

// StartWeekdayIndex returns the index of the configured opening weekday,
// or 0 when none is set.
func (t TimeConfig) StartWeekdayIndex() int {
	if t.StartWeekday == "" {
		return 0
	}
	for i, name := range t.WeekdayNames() {
		if name == t.StartWeekday {
			return i
		}
	}
	return 0
}

// BaseMinutes looks up a category's base minute cost.
func (t TimeConfig) BaseMinutes(category string) (int, bool) {
	m, ok := t.Categories[category]
	return m, ok
}

// ParseClock converts an "HH:MM" content string to minutes since
// midnight. "24:00" is accepted as an end-of-day bound.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q, expected HH:MM", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}

	if h == 24 && m == 0 {
		return MinutesPerDay, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
