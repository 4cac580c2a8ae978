package pacing

import (
	"testing"

	"github.com/letser/plotplay/pkg/game"
)

func testGame() *game.Game {
	return &game.Game{
		ID:   "test_game",
		Name: "Test Game",
		Time: game.TimeConfig{
			Start:        "08:00",
			StartDay:     1,
			StartWeekday: "saturday",
			Categories: map[string]int{
				"instant":  0,
				"quick":    1,
				"standard": 5,
				"long":     15,
				"scene":    30,
			},
			Defaults: game.Defaults{
				Conversation: "quick",
				Choice:       "standard",
				Movement:     "standard",
				Travel:       "long",
				Fallback:     "standard",
			},
			Slots: []game.SlotWindow{
				{Name: "morning", Start: "06:00", End: "12:00"},
				{Name: "afternoon", Start: "12:00", End: "18:00"},
				{Name: "evening", Start: "18:00", End: "22:00"},
				{Name: "night", Start: "22:00", End: "06:00"},
			},
		},
	}
}

type fixedHints struct {
	hint Hint
	ok   bool
}

func (f fixedHints) TimeHint(ctx ActionContext) (Hint, bool) {
	return f.hint, f.ok
}

func intPtr(n int) *int { return &n }

func TestEngine_ResolutionOrder(t *testing.T) {
	g := testGame()

	tests := []struct {
		name       string
		ctx        ActionContext
		hints      HintProvider
		wantMin    int
		wantSource string
	}{
		{
			name:       "explicit minutes win outright",
			ctx:        ActionContext{Kind: KindConversation, ExplicitMinutes: intPtr(30), Category: "quick"},
			wantMin:    30,
			wantSource: SourceExplicitMinutes,
		},
		{
			name:       "explicit category",
			ctx:        ActionContext{Kind: KindConversation, Category: "long"},
			wantMin:    15,
			wantSource: SourceExplicitCategory,
		},
		{
			name: "node override",
			ctx: ActionContext{
				Kind:          KindConversation,
				NodeOverrides: map[Kind]string{KindConversation: "scene"},
			},
			wantMin:    30,
			wantSource: SourceNodeOverride,
		},
		{
			name:       "kind default",
			ctx:        ActionContext{Kind: KindConversation},
			wantMin:    1,
			wantSource: SourceKindDefault,
		},
		{
			name:       "fallback for other",
			ctx:        ActionContext{Kind: KindOther},
			wantMin:    5,
			wantSource: SourceFallback,
		},
		{
			name:       "hint taken when nothing authored",
			ctx:        ActionContext{Kind: KindConversation},
			hints:      fixedHints{Hint{Category: "scene", Confidence: 0.9}, true},
			wantMin:    30,
			wantSource: SourceHint,
		},
		{
			name:       "low-confidence hint ignored",
			ctx:        ActionContext{Kind: KindConversation},
			hints:      fixedHints{Hint{Category: "scene", Confidence: 0.3}, true},
			wantMin:    1,
			wantSource: SourceKindDefault,
		},
		{
			name:       "authored category beats hint",
			ctx:        ActionContext{Kind: KindConversation, Category: "long"},
			hints:      fixedHints{Hint{Category: "scene", Confidence: 0.9}, true},
			wantMin:    15,
			wantSource: SourceExplicitCategory,
		},
		{
			name: "node override beats hint",
			ctx: ActionContext{
				Kind:          KindConversation,
				NodeOverrides: map[Kind]string{KindConversation: "quick"},
			},
			hints:      fixedHints{Hint{Category: "scene", Confidence: 0.9}, true},
			wantMin:    1,
			wantSource: SourceNodeOverride,
		},
		{
			name:       "unknown hint category ignored",
			ctx:        ActionContext{Kind: KindConversation},
			hints:      fixedHints{Hint{Category: "leisurely", Confidence: 0.9}, true},
			wantMin:    1,
			wantSource: SourceKindDefault,
		},
		{
			name:       "unknown explicit category falls through",
			ctx:        ActionContext{Kind: KindConversation, Category: "leisurely"},
			wantMin:    1,
			wantSource: SourceKindDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(g, nil).WithHintProvider(tt.hints)
			clock := NewClock(g)

			res := e.Advance(&clock, tt.ctx, nil, NewVisitLedger())
			if res.Minutes != tt.wantMin {
				t.Errorf("Expected %d minutes, got %d", tt.wantMin, res.Minutes)
			}
			if res.Source != tt.wantSource {
				t.Errorf("Expected source %q, got %q", tt.wantSource, res.Source)
			}
		})
	}
}

func TestEngine_ExplicitMinutesClamped(t *testing.T) {
	g := testGame()
	e := NewEngine(g, nil)

	clock := NewClock(g)
	res := e.Advance(&clock, ActionContext{Kind: KindChoice, ExplicitMinutes: intPtr(-10)}, nil, nil)
	if res.Minutes != 0 {
		t.Errorf("Negative override should clamp to 0, got %d", res.Minutes)
	}
	if clock.Minutes != 480 {
		t.Errorf("Clock should not move, got %d", clock.Minutes)
	}

	res = e.Advance(&clock, ActionContext{Kind: KindChoice, ExplicitMinutes: intPtr(5000)}, nil, nil)
	if res.Minutes != game.MinutesPerDay {
		t.Errorf("Oversized override should clamp to %d, got %d", game.MinutesPerDay, res.Minutes)
	}
	if res.Days != 1 {
		t.Errorf("Expected exactly one rollover, got %d", res.Days)
	}
	if clock.Minutes != 480 || clock.Day != 2 {
		t.Errorf("Expected 08:00 on day 2, got %d on day %d", clock.Minutes, clock.Day)
	}
}

func TestEngine_ModifiersApplied(t *testing.T) {
	g := testGame()
	e := NewEngine(g, nil)

	tests := []struct {
		name    string
		ctx     ActionContext
		mods    []Modifier
		wantMin int
	}{
		{
			name:    "sleepy movement",
			ctx:     ActionContext{Kind: KindMovement, ExplicitMinutes: intPtr(10)},
			mods:    []Modifier{{Condition: "sleepy", Multiplier: 1.2}},
			wantMin: 12,
		},
		{
			name:    "passive travel exempt",
			ctx:     ActionContext{Kind: KindTravel, ExplicitMinutes: intPtr(10), Exempt: true},
			mods:    []Modifier{{Condition: "sleepy", Multiplier: 1.2}},
			wantMin: 10,
		},
		{
			name:    "extreme stack clamps high",
			ctx:     ActionContext{Kind: KindChoice, ExplicitMinutes: intPtr(10)},
			mods:    []Modifier{{Condition: "exhausted", Multiplier: 10}, {Condition: "injured", Multiplier: 3}},
			wantMin: 20,
		},
		{
			name:    "extreme stack clamps low",
			ctx:     ActionContext{Kind: KindChoice, ExplicitMinutes: intPtr(10)},
			mods:    []Modifier{{Condition: "hasty", Multiplier: 0.01}},
			wantMin: 5,
		},
		{
			name:    "rounding to nearest minute",
			ctx:     ActionContext{Kind: KindConversation, Category: "long"},
			mods:    []Modifier{{Condition: "sleepy", Multiplier: 1.1}},
			wantMin: 17, // 15 * 1.1 = 16.5, rounds away from zero
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := NewClock(g)
			res := e.Advance(&clock, tt.ctx, tt.mods, nil)
			if res.Minutes != tt.wantMin {
				t.Errorf("Expected %d minutes, got %d", tt.wantMin, res.Minutes)
			}
		})
	}
}

func TestEngine_VisitCap(t *testing.T) {
	g := testGame()
	e := NewEngine(g, nil)
	clock := NewClock(g)
	visits := NewVisitLedger()
	key := VisitKey{SessionID: "s1", VisitID: "inn_visit_1"}

	ctx := ActionContext{Kind: KindConversation, CapPerVisit: intPtr(5), Visit: key}

	// Four one-minute turns reach 4 of 5.
	for i := 0; i < 4; i++ {
		res := e.Advance(&clock, ctx, nil, visits)
		if res.Minutes != 1 {
			t.Fatalf("Turn %d: expected 1 minute, got %d", i+1, res.Minutes)
		}
	}
	if visits.Spent(key) != 4 {
		t.Errorf("Expected 4 spent, got %d", visits.Spent(key))
	}

	// Fifth turn fits exactly.
	res := e.Advance(&clock, ctx, nil, visits)
	if res.Minutes != 1 {
		t.Errorf("Fifth turn: expected 1 minute, got %d", res.Minutes)
	}
	if visits.Spent(key) != 5 {
		t.Errorf("Expected cap reached at 5, got %d", visits.Spent(key))
	}

	// Sixth turn advances nothing.
	res = e.Advance(&clock, ctx, nil, visits)
	if res.Minutes != 0 || !res.Capped {
		t.Errorf("Sixth turn: expected capped 0 minutes, got %d (capped=%v)", res.Minutes, res.Capped)
	}
	if clock.Minutes != 485 {
		t.Errorf("Expected clock at 485, got %d", clock.Minutes)
	}

	// An explicit override is unaffected by the exhausted cap.
	explicit := ActionContext{Kind: KindConversation, ExplicitMinutes: intPtr(30), CapPerVisit: intPtr(5), Visit: key}
	res = e.Advance(&clock, explicit, nil, visits)
	if res.Minutes != 30 {
		t.Errorf("Explicit override should bypass cap, got %d", res.Minutes)
	}
	if visits.Spent(key) != 5 {
		t.Errorf("Explicit override should not accrue, spent=%d", visits.Spent(key))
	}

	// So is an explicit category.
	catCtx := ActionContext{Kind: KindConversation, Category: "long", CapPerVisit: intPtr(5), Visit: key}
	res = e.Advance(&clock, catCtx, nil, visits)
	if res.Minutes != 15 {
		t.Errorf("Explicit category should bypass cap, got %d", res.Minutes)
	}

	// A new visit gets a fresh budget.
	fresh := VisitKey{SessionID: "s1", VisitID: "inn_visit_2"}
	res = e.Advance(&clock, ActionContext{Kind: KindConversation, CapPerVisit: intPtr(5), Visit: fresh}, nil, visits)
	if res.Minutes != 1 {
		t.Errorf("New visit should start uncapped, got %d", res.Minutes)
	}
}

func TestEngine_CapClampsPartial(t *testing.T) {
	g := testGame()
	e := NewEngine(g, nil)
	clock := NewClock(g)
	visits := NewVisitLedger()
	key := VisitKey{SessionID: "s1", VisitID: "v1"}
	visits.Seed(key, 4)

	// Category scene (30) with one minute of headroom clamps to 1.
	ctx := ActionContext{
		Kind:          KindConversation,
		NodeOverrides: map[Kind]string{KindConversation: "scene"},
		CapPerVisit:   intPtr(5),
		Visit:         key,
	}
	res := e.Advance(&clock, ctx, nil, visits)
	if res.Minutes != 1 || !res.Capped {
		t.Errorf("Expected capped 1 minute, got %d (capped=%v)", res.Minutes, res.Capped)
	}
	if visits.Spent(key) != 5 {
		t.Errorf("Expected spent 5, got %d", visits.Spent(key))
	}
}

func TestEngine_MovementNeverCapped(t *testing.T) {
	g := testGame()
	e := NewEngine(g, nil)
	clock := NewClock(g)
	visits := NewVisitLedger()
	key := VisitKey{SessionID: "s1", VisitID: "v1"}
	visits.Seed(key, 5)

	ctx := ActionContext{Kind: KindMovement, CapPerVisit: intPtr(5), Visit: key}
	res := e.Advance(&clock, ctx, nil, visits)
	if res.Minutes != 5 {
		t.Errorf("Movement should ignore the visit cap, got %d", res.Minutes)
	}
	if visits.Spent(key) != 5 {
		t.Errorf("Movement should not accrue visit minutes, spent=%d", visits.Spent(key))
	}
}

func TestEngine_HintBlockedWithoutHeadroom(t *testing.T) {
	g := testGame()
	e := NewEngine(g, nil).WithHintProvider(fixedHints{Hint{Category: "scene", Confidence: 0.9}, true})
	clock := NewClock(g)
	visits := NewVisitLedger()
	key := VisitKey{SessionID: "s1", VisitID: "v1"}
	visits.Seed(key, 5)

	ctx := ActionContext{Kind: KindConversation, CapPerVisit: intPtr(5), Visit: key}
	res := e.Advance(&clock, ctx, nil, visits)
	if res.Source != SourceKindDefault {
		t.Errorf("Exhausted cap should block the hint, got source %q", res.Source)
	}
	if res.Minutes != 0 {
		t.Errorf("Expected 0 minutes at exhausted cap, got %d", res.Minutes)
	}
}

func TestEngine_RolloverFiresHooksInOrder(t *testing.T) {
	g := testGame()
	e := NewEngine(g, nil)

	var events []string
	e.OnDayEnd(func(day int) { events = append(events, "end") })
	e.OnDayStart(func(day int) { events = append(events, "start") })

	clock := Clock{Minutes: 1430, Day: 3, Weekday: 5} // 23:50 saturday
	res := e.Advance(&clock, ActionContext{Kind: KindChoice, ExplicitMinutes: intPtr(30)}, nil, nil)

	if res.Days != 1 {
		t.Errorf("Expected 1 rollover, got %d", res.Days)
	}
	if clock.Minutes != 20 || clock.Day != 4 {
		t.Errorf("Expected 00:20 on day 4, got %s on day %d", clock.String(), clock.Day)
	}
	if clock.Weekday != 6 {
		t.Errorf("Expected weekday to advance to 6, got %d", clock.Weekday)
	}
	if len(events) != 2 || events[0] != "end" || events[1] != "start" {
		t.Errorf("Expected hooks [end start], got %v", events)
	}
	if res.Slot != "night" {
		t.Errorf("Expected slot night at 00:20, got %q", res.Slot)
	}
}

func TestEngine_MultiDayRollover(t *testing.T) {
	g := testGame()
	e := NewEngine(g, nil)

	rollovers := 0
	e.OnDayEnd(func(day int) { rollovers++ })

	clock := Clock{Minutes: 1430, Day: 1, Weekday: 0}
	mods := []Modifier{{Condition: "dazed", Multiplier: 2.0}}
	res := e.Advance(&clock, ActionContext{Kind: KindChoice, ExplicitMinutes: intPtr(1440)}, mods, nil)

	if res.Days != 2 || rollovers != 2 {
		t.Errorf("Expected 2 rollovers, got days=%d hooks=%d", res.Days, rollovers)
	}
	if clock.Minutes != 1430 || clock.Day != 3 {
		t.Errorf("Expected 23:50 on day 3, got %s on day %d", clock.String(), clock.Day)
	}
	if clock.Minutes < 0 || clock.Minutes >= game.MinutesPerDay {
		t.Errorf("Clock invariant violated: %d", clock.Minutes)
	}
}

func TestEngine_SlotRecomputedAfterAdvance(t *testing.T) {
	g := testGame()
	e := NewEngine(g, nil)

	clock := NewClock(g) // 08:00, morning
	res := e.Advance(&clock, ActionContext{Kind: KindChoice, ExplicitMinutes: intPtr(300)}, nil, nil)
	if res.Slot != "afternoon" {
		t.Errorf("Expected afternoon at 13:00, got %q", res.Slot)
	}
}

func TestNewClock(t *testing.T) {
	g := testGame()
	clock := NewClock(g)

	if clock.Minutes != 480 {
		t.Errorf("Expected 480 minutes, got %d", clock.Minutes)
	}
	if clock.Day != 1 {
		t.Errorf("Expected day 1, got %d", clock.Day)
	}
	if clock.Weekday != 5 {
		t.Errorf("Expected weekday index 5 (saturday), got %d", clock.Weekday)
	}
	if clock.String() != "08:00" {
		t.Errorf("Expected 08:00, got %q", clock.String())
	}
	if clock.WeekdayName(g) != "saturday" {
		t.Errorf("Expected saturday, got %q", clock.WeekdayName(g))
	}
}
