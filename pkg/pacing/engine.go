package pacing

import (
	"log/slog"

	"github.com/letser/plotplay/pkg/game"
)

// Kind classifies the action being paced.
type Kind string

const (
	KindConversation Kind = "conversation"
	KindChoice       Kind = "choice"
	KindMovement     Kind = "movement"
	KindTravel       Kind = "travel"
	KindOther        Kind = "other"
)

// Resolution sources, recorded on every Result so callers can tell an
// authored cost from a defaulted one.
const (
	SourceExplicitMinutes  = "explicit_minutes"
	SourceExplicitCategory = "explicit_category"
	SourceNodeOverride     = "node_override"
	SourceHint             = "hint"
	SourceKindDefault      = "kind_default"
	SourceFallback         = "fallback"
)

// DefaultHintConfidence is the minimum confidence at which an advisory
// hint is taken.
const DefaultHintConfidence = 0.6

// ActionContext describes how one action should be paced. It is built
// fresh per action and discarded afterwards.
type ActionContext struct {
	Kind Kind `json:"kind"`

	// Author overrides. ExplicitMinutes wins outright and skips
	// category resolution; Category skips everything below it.
	ExplicitMinutes *int   `json:"minutes,omitempty"`
	Category        string `json:"category,omitempty"`

	// NodeOverrides are the active node's per-kind category overrides.
	NodeOverrides map[Kind]string `json:"node_overrides,omitempty"`

	// CapPerVisit limits conversation/default minutes while the node
	// stays active. Nil means uncapped.
	CapPerVisit *int     `json:"cap_per_visit,omitempty"`
	Visit       VisitKey `json:"-"`

	// Exempt skips the modifier step, used for passive travel.
	Exempt bool `json:"-"`
}

// Result reports what one advancement did.
type Result struct {
	Minutes  int    `json:"minutes"`
	Category string `json:"category,omitempty"`
	Source   string `json:"source"`
	Capped   bool   `json:"capped,omitempty"`
	Days     int    `json:"days,omitempty"` // rollovers crossed
	Slot     string `json:"slot"`
}

// Engine computes and applies the minute delta for one action and keeps
// the clock, slot and day view consistent while doing it.
type Engine struct {
	game          *game.Game
	logger        *slog.Logger
	hints         HintProvider
	minConfidence float64
	dayEndHooks   []func(day int)
	dayStartHooks []func(day int)
}

// NewEngine creates a pacing engine for a loaded game.
func NewEngine(g *game.Game, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		game:          g,
		logger:        logger,
		minConfidence: DefaultHintConfidence,
	}
}

// WithHintProvider sets the advisory hint source.
// Returns the Engine for method chaining.
func (e *Engine) WithHintProvider(h HintProvider) *Engine {
	e.hints = h
	return e
}

// WithHintConfidence sets the minimum confidence at which hints apply.
// Returns the Engine for method chaining.
func (e *Engine) WithHintConfidence(min float64) *Engine {
	e.minConfidence = min
	return e
}

// OnDayEnd registers a hook fired just before each day rollover.
func (e *Engine) OnDayEnd(fn func(day int)) {
	e.dayEndHooks = append(e.dayEndHooks, fn)
}

// OnDayStart registers a hook fired just after each day rollover.
func (e *Engine) OnDayStart(fn func(day int)) {
	e.dayStartHooks = append(e.dayStartHooks, fn)
}

// Advance computes the minute delta for one action and applies it to the
// clock. Exactly one call happens per action.
func (e *Engine) Advance(clock *Clock, ctx ActionContext, mods []Modifier, visits *VisitLedger) Result {
	minutes, category, source := e.resolveBase(ctx, visits)

	if !ctx.Exempt {
		minutes = modify(minutes, mods)
	}

	capped := false
	if e.capSubject(ctx.Kind, source) && ctx.CapPerVisit != nil && visits != nil {
		headroom := *ctx.CapPerVisit - visits.Spent(ctx.Visit)
		if headroom < 0 {
			headroom = 0
		}
		if minutes > headroom {
			minutes = headroom
			capped = true
		}
		visits.Add(ctx.Visit, minutes)
	}

	days := e.advanceClock(clock, minutes)

	return Result{
		Minutes:  minutes,
		Category: category,
		Source:   source,
		Capped:   capped,
		Days:     days,
		Slot:     e.game.Time.SlotAt(clock.Minutes),
	}
}

// resolveBase walks the resolution order: explicit minutes, explicit
// category, node override, admissible hint, kind default, fallback.
func (e *Engine) resolveBase(ctx ActionContext, visits *VisitLedger) (minutes int, category, source string) {
	if ctx.ExplicitMinutes != nil {
		return clampMinutes(*ctx.ExplicitMinutes), "", SourceExplicitMinutes
	}

	if ctx.Category != "" {
		if base, ok := e.game.Time.BaseMinutes(ctx.Category); ok {
			return base, ctx.Category, SourceExplicitCategory
		}
		// Unknown categories in loaded content are caught at load time;
		// reaching this means the upstream sent a bad override.
		e.logger.Warn("Unknown explicit category, falling through",
			"category", ctx.Category, "kind", ctx.Kind)
	}

	if cat, ok := ctx.NodeOverrides[ctx.Kind]; ok && cat != "" {
		if base, ok := e.game.Time.BaseMinutes(cat); ok {
			return base, cat, SourceNodeOverride
		}
		e.logger.Warn("Unknown node override category, falling through",
			"category", cat, "kind", ctx.Kind)
	}

	if hint, ok := e.admissibleHint(ctx, visits); ok {
		if base, ok := e.game.Time.BaseMinutes(hint.Category); ok {
			return base, hint.Category, SourceHint
		}
		e.logger.Warn("Hint references unknown category, ignoring",
			"category", hint.Category, "confidence", hint.Confidence)
	}

	cat := e.game.Time.Defaults.For(string(ctx.Kind))
	source = SourceKindDefault
	if cat == e.game.Time.Defaults.Fallback && kindDefault(e.game.Time.Defaults, ctx.Kind) == "" {
		source = SourceFallback
	}
	if base, ok := e.game.Time.BaseMinutes(cat); ok {
		return base, cat, source
	}

	// Unreachable for validated games.
	e.logger.Warn("No resolvable category, advancing zero minutes", "kind", ctx.Kind)
	return 0, "", SourceFallback
}

// admissibleHint checks the gate on the advisory path: a provider exists,
// no author category governs the action, confidence clears the bar, and
// the visit cap still has headroom.
func (e *Engine) admissibleHint(ctx ActionContext, visits *VisitLedger) (Hint, bool) {
	if e.hints == nil {
		return Hint{}, false
	}
	if ctx.CapPerVisit != nil && visits != nil && visits.Spent(ctx.Visit) >= *ctx.CapPerVisit {
		return Hint{}, false
	}
	hint, ok := e.hints.TimeHint(ctx)
	if !ok || hint.Category == "" || hint.Confidence < e.minConfidence {
		return Hint{}, false
	}
	return hint, true
}

// capSubject reports whether the visit cap applies: conversation, choice
// and other actions whose category came through the default path.
// Explicit overrides bypass the cap; movement and travel are never
// capped.
func (e *Engine) capSubject(kind Kind, source string) bool {
	switch kind {
	case KindMovement, KindTravel:
		return false
	}
	switch source {
	case SourceNodeOverride, SourceHint, SourceKindDefault, SourceFallback:
		return true
	}
	return false
}

// advanceClock adds minutes and performs rollovers, firing day hooks in
// order around each boundary. Returns the days crossed.
func (e *Engine) advanceClock(clock *Clock, minutes int) int {
	clock.Minutes += minutes

	weekLen := len(e.game.Time.WeekdayNames())
	days := 0
	for clock.Minutes >= game.MinutesPerDay {
		for _, fn := range e.dayEndHooks {
			fn(clock.Day)
		}
		clock.Minutes -= game.MinutesPerDay
		clock.Day++
		clock.Weekday = (clock.Weekday + 1) % weekLen
		days++
		for _, fn := range e.dayStartHooks {
			fn(clock.Day)
		}
	}
	return days
}

// clampMinutes forces an explicit override into [0, MinutesPerDay]
// rather than rejecting it.
func clampMinutes(m int) int {
	if m < 0 {
		return 0
	}
	if m > game.MinutesPerDay {
		return game.MinutesPerDay
	}
	return m
}

func kindDefault(d game.Defaults, kind Kind) string {
	switch kind {
	case KindConversation:
		return d.Conversation
	case KindChoice:
		return d.Choice
	case KindMovement:
		return d.Movement
	case KindTravel:
		return d.Travel
	}
	return ""
}
