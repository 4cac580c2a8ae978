package state

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/letser/plotplay/pkg/game"
	"github.com/letser/plotplay/pkg/movement"
	"github.com/letser/plotplay/pkg/pacing"
	"github.com/letser/plotplay/pkg/wardrobe"
)

// Resolver applies one action's effects to a world state. Effects run
// strictly in the order supplied and each handler is total: an invalid
// request is refused and logged, never thrown, so a partly failing batch
// cannot corrupt the state. Time advances exactly once per action, not
// per effect.
type Resolver struct {
	ws       *WorldState
	game     *game.Game
	logger   *slog.Logger
	time     *pacing.Engine
	wardrobe *wardrobe.Machine
	movement *movement.Engine
}

// movePlan is the pre-validated outcome of the batch's priced move
// effect.
type movePlan struct {
	index int
	local bool
	plan  movement.Plan
	ok    bool
}

// NewResolver creates a resolver bound to one session's state.
func NewResolver(ws *WorldState, g *game.Game, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		ws:       ws,
		game:     g,
		logger:   logger,
		time:     pacing.NewEngine(g, logger),
		wardrobe: wardrobe.NewMachine(g, logger),
		movement: movement.NewEngine(g, logger),
	}
}

// WithTimeEngine replaces the default pacing engine, letting callers
// register day hooks or a hint provider first.
// Returns the Resolver for method chaining.
func (r *Resolver) WithTimeEngine(e *pacing.Engine) *Resolver {
	r.time = e
	return r
}

// WithHintProvider routes an advisory time hint source into the pacing
// engine. Returns the Resolver for method chaining.
func (r *Resolver) WithHintProvider(h pacing.HintProvider) *Resolver {
	r.time = r.time.WithHintProvider(h)
	return r
}

// Apply runs one action: it advances the clock once, then applies every
// effect in order, and reports the result with a fresh snapshot and a
// summary for the narrative layer.
func (r *Resolver) Apply(action Action, effects []Effect) Outcome {
	move := r.preflightMove(action, effects)

	key := pacing.VisitKey{SessionID: r.ws.ID.String(), VisitID: r.ws.VisitID}
	visits := pacing.NewVisitLedger()
	visits.Seed(key, r.ws.VisitSpent)

	actx := pacing.ActionContext{
		Kind:            action.Kind,
		ExplicitMinutes: action.Minutes,
		Category:        action.Category,
		NodeOverrides:   action.NodeOverrides,
		CapPerVisit:     action.CapPerVisit,
		Visit:           key,
	}
	if move != nil {
		if !move.ok {
			// A refused move costs nothing: the action is rejected
			// before any state mutation.
			zero := 0
			actx.ExplicitMinutes = &zero
			actx.Category = ""
		} else {
			actx.Exempt = move.plan.Cost.Exempt
			if actx.ExplicitMinutes == nil && actx.Category == "" {
				actx.ExplicitMinutes = move.plan.Cost.Minutes
				actx.Category = move.plan.Cost.Category
			}
		}
	}

	var mods []pacing.Modifier
	if cs := r.ws.PlayerState(); cs != nil {
		mods = cs.Modifiers()
	}

	res := r.time.Advance(&r.ws.Clock, actx, mods, visits)
	r.ws.VisitSpent = visits.Spent(key)

	applied, rejected := 0, 0
	var notes []string
	for i, e := range effects {
		ok, note := r.applyEffect(move, i, e)
		if ok {
			applied++
			if note != "" {
				notes = append(notes, note)
			}
		} else {
			rejected++
		}
	}

	r.ws.TurnCount++
	r.ws.UpdatedAt = time.Now().UTC()

	summary := strings.Join(append(notes, r.timeSummary(res)), " ")
	return Outcome{
		Time:     res,
		Applied:  applied,
		Rejected: rejected,
		Summary:  summary,
		Snapshot: NewSnapshot(r.ws, r.game),
	}
}

// preflightMove validates the first move effect of a movement or travel
// action against the starting position, so its cost can price the whole
// action before any effect runs.
func (r *Resolver) preflightMove(action Action, effects []Effect) *movePlan {
	if action.Kind != pacing.KindMovement && action.Kind != pacing.KindTravel {
		return nil
	}
	for i, e := range effects {
		if e.Kind != EffectMove {
			continue
		}
		plan, local, ok := r.routeMove(e)
		return &movePlan{index: i, local: local, plan: plan, ok: ok}
	}
	return nil
}

// routeMove classifies a move effect as local or inter-zone and
// validates it against the current position.
func (r *Resolver) routeMove(e Effect) (plan movement.Plan, local, ok bool) {
	dest := e.Zone
	if dest != "" {
		if z, found := r.game.Zone(dest); found {
			dest = z.ID
		}
	}
	if dest != "" && dest != r.ws.Zone {
		plan, ok = r.movement.Travel(r.ws.Zone, dest, e.Method, e.Location)
		return plan, false, ok
	}
	plan, ok = r.movement.LocalMove(r.ws.Zone, r.ws.Location, e.Location)
	return plan, true, ok
}

func (r *Resolver) applyEffect(move *movePlan, index int, e Effect) (bool, string) {
	switch e.Kind {
	case EffectMeterDelta:
		return r.handleMeterDelta(e)
	case EffectInventoryDelta:
		return r.handleInventoryDelta(e)
	case EffectClothingPutOn:
		return r.handleClothingPutOn(e)
	case EffectClothingTakeOff:
		return r.handleClothingTakeOff(e)
	case EffectClothingState:
		return r.handleClothingState(e)
	case EffectClothingSlot:
		return r.handleClothingSlot(e)
	case EffectOutfitPutOn:
		return r.handleOutfitPutOn(e)
	case EffectOutfitTakeOff:
		return r.handleOutfitTakeOff(e)
	case EffectFlagSet:
		return r.handleFlagSet(e)
	case EffectMove:
		return r.handleMove(move, index, e)
	}
	r.logger.Warn("Unknown effect kind", "kind", e.Kind)
	return false, ""
}

// target resolves the character an effect addresses, defaulting to the
// player.
func (r *Resolver) target(e Effect) (*CharacterState, bool) {
	id := e.Character
	if id == "" {
		id = r.ws.Player
	}
	if c, ok := r.game.Character(id); ok {
		id = c.ID
	}
	cs, ok := r.ws.Characters[id]
	if !ok {
		r.logger.Warn("Unknown character", "character", e.Character)
	}
	return cs, ok
}

// handleMeterDelta shifts a character meter, clamped to its range.
func (r *Resolver) handleMeterDelta(e Effect) (bool, string) {
	cs, ok := r.target(e)
	if !ok {
		return false, ""
	}
	def, ok := r.game.Meters[e.Meter]
	if !ok {
		r.logger.Warn("Unknown meter", "meter", e.Meter)
		return false, ""
	}
	before := cs.Meters[e.Meter]
	after := clampMeter(before+e.Delta, def)
	cs.Meters[e.Meter] = after
	if after == before {
		return true, ""
	}
	verb := "rose"
	if after < before {
		verb = "fell"
	}
	return true, fmt.Sprintf("%s's %s %s to %d.", cs.Name, e.Meter, verb, after)
}

// handleInventoryDelta changes an item count, never below zero. Items at
// zero are dropped from the map.
func (r *Resolver) handleInventoryDelta(e Effect) (bool, string) {
	cs, ok := r.target(e)
	if !ok {
		return false, ""
	}
	item := game.NormalizeID(e.Item)
	if item == "" {
		r.logger.Warn("Inventory change without an item")
		return false, ""
	}
	if cs.Inventory == nil {
		cs.Inventory = make(map[string]int)
	}
	before := cs.Inventory[item]
	after := before + e.Delta
	if after < 0 {
		after = 0
	}
	if after == 0 {
		delete(cs.Inventory, item)
	} else {
		cs.Inventory[item] = after
	}
	if after == before {
		return true, ""
	}
	label := game.TitleFromID(item)
	if after > before {
		if n := after - before; n > 1 {
			label = fmt.Sprintf("%d %s", n, label)
		}
		return true, fmt.Sprintf("%s gained %s.", cs.Name, label)
	}
	if n := before - after; n > 1 {
		label = fmt.Sprintf("%d %s", n, label)
	}
	return true, fmt.Sprintf("%s lost %s.", cs.Name, label)
}

func (r *Resolver) handleClothingPutOn(e Effect) (bool, string) {
	cs, ok := r.target(e)
	if !ok {
		return false, ""
	}
	if !r.wardrobe.PutOn(cs.Wardrobe, e.Garment, wardrobe.GarmentState(e.State)) {
		return false, ""
	}
	return true, fmt.Sprintf("%s put on %s.", cs.Name, r.game.GarmentName(e.Garment))
}

func (r *Resolver) handleClothingTakeOff(e Effect) (bool, string) {
	cs, ok := r.target(e)
	if !ok {
		return false, ""
	}
	if !r.wardrobe.TakeOff(cs.Wardrobe, e.Garment) {
		return false, ""
	}
	return true, fmt.Sprintf("%s took off %s.", cs.Name, r.game.GarmentName(e.Garment))
}

func (r *Resolver) handleClothingState(e Effect) (bool, string) {
	cs, ok := r.target(e)
	if !ok {
		return false, ""
	}
	if !r.wardrobe.SetItemState(cs.Wardrobe, e.Garment, wardrobe.GarmentState(e.State)) {
		return false, ""
	}
	return true, fmt.Sprintf("%s's %s is now %s.", cs.Name, r.game.GarmentName(e.Garment), e.State)
}

func (r *Resolver) handleClothingSlot(e Effect) (bool, string) {
	cs, ok := r.target(e)
	if !ok {
		return false, ""
	}
	occupant := cs.Wardrobe.SlotToItem[e.Slot]
	if !r.wardrobe.SetSlotState(cs.Wardrobe, e.Slot, wardrobe.GarmentState(e.State)) {
		return false, ""
	}
	return true, fmt.Sprintf("%s's %s is now %s at the %s.",
		cs.Name, r.game.GarmentName(occupant), e.State, e.Slot)
}

func (r *Resolver) handleOutfitPutOn(e Effect) (bool, string) {
	cs, ok := r.target(e)
	if !ok {
		return false, ""
	}
	if !r.wardrobe.PutOnOutfit(cs.Wardrobe, e.Outfit) {
		return false, ""
	}
	return true, fmt.Sprintf("%s changed into %s.", cs.Name, r.game.OutfitName(e.Outfit))
}

func (r *Resolver) handleOutfitTakeOff(e Effect) (bool, string) {
	cs, ok := r.target(e)
	if !ok {
		return false, ""
	}
	if !r.wardrobe.TakeOffOutfit(cs.Wardrobe, e.Outfit) {
		return false, ""
	}
	return true, fmt.Sprintf("%s took off %s.", cs.Name, r.game.OutfitName(e.Outfit))
}

// handleFlagSet records a story flag under a snake_case key. Flags are
// bookkeeping and produce no summary line.
func (r *Resolver) handleFlagSet(e Effect) (bool, string) {
	flag := game.NormalizeID(e.Flag)
	if flag == "" {
		r.logger.Warn("Flag set without a name")
		return false, ""
	}
	if r.ws.Flags == nil {
		r.ws.Flags = make(map[string]bool)
	}
	r.ws.Flags[flag] = e.Value
	return true, ""
}

// handleMove applies a move effect. The batch's priced move reuses its
// preflight result; any further move is validated where it occurs, from
// the position it occurs at.
func (r *Resolver) handleMove(move *movePlan, index int, e Effect) (bool, string) {
	var plan movement.Plan
	var local, ok bool
	if move != nil && move.index == index {
		plan, local, ok = move.plan, move.local, move.ok
	} else {
		plan, local, ok = r.routeMove(e)
	}
	if !ok {
		return false, ""
	}

	r.ws.Zone = plan.Zone
	r.ws.Location = plan.Location
	if local {
		return true, fmt.Sprintf("Moved to %s.", r.game.LocationName(plan.Location))
	}
	zoneName := plan.Zone
	if z, found := r.game.Zone(plan.Zone); found && z.Name != "" {
		zoneName = z.Name
	}
	return true, fmt.Sprintf("Traveled to %s (%s).", zoneName, r.game.LocationName(plan.Location))
}

// timeSummary phrases the clock movement for the narrative layer.
func (r *Resolver) timeSummary(res pacing.Result) string {
	var b strings.Builder
	switch {
	case res.Minutes == 1:
		b.WriteString("1 minute passes. ")
	case res.Minutes > 1:
		fmt.Fprintf(&b, "%d minutes pass. ", res.Minutes)
	}
	if res.Days > 0 {
		fmt.Fprintf(&b, "Day %d begins. ", r.ws.Clock.Day)
	}
	fmt.Fprintf(&b, "It is %s (%s), day %d.", r.ws.Clock.String(), res.Slot, r.ws.Clock.Day)
	return b.String()
}
