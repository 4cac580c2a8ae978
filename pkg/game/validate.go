package game

import (
	"fmt"
	"sort"
)

// Validate checks the whole document and returns every problem found.
// A game with any validation error must not be played; the error
// taxonomy treats all of these as fatal at load so they can never
// surface mid-session.
func (g *Game) Validate() []string {
	v := &validator{}

	if g.ID == "" {
		v.errorf("game id is required")
	} else if !ValidID(g.ID) {
		v.errorf("game id %q should be lowercase snake_case", g.ID)
	}
	if g.Name == "" {
		v.errorf("game name is required")
	}

	g.validateTime(v)
	g.validateMeters(v)
	g.validateCharacters(v)
	g.validateMethods(v)
	g.validateZones(v)
	g.validateGarments(v)
	g.validateOutfits(v)
	g.validateStart(v)

	return v.errors
}

type validator struct {
	errors []string
}

func (v *validator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (g *Game) hasCategory(name string) bool {
	_, ok := g.Time.Categories[name]
	return ok
}

func (g *Game) validateTime(v *validator) {
	t := g.Time

	if _, err := ParseClock(t.Start); err != nil {
		v.errorf("time.start: %v", err)
	}
	if t.StartDay < 0 {
		v.errorf("time.start_day must be non-negative, got %d", t.StartDay)
	}
	if t.StartWeekday != "" {
		found := false
		for _, name := range t.WeekdayNames() {
			if name == t.StartWeekday {
				found = true
				break
			}
		}
		if !found {
			v.errorf("time.start_weekday %q is not in the weekday list", t.StartWeekday)
		}
	}

	if len(t.Categories) == 0 {
		v.errorf("time.categories must define at least one category")
	}
	// Sorted for stable error output.
	names := make([]string, 0, len(t.Categories))
	for name := range t.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !ValidID(name) {
			v.errorf("category %q should be lowercase snake_case", name)
		}
		if t.Categories[name] < 0 {
			v.errorf("category %q has negative base minutes %d", name, t.Categories[name])
		}
	}

	if t.Defaults.Fallback == "" {
		v.errorf("time.defaults.fallback is required")
	}
	for kind, cat := range map[string]string{
		"conversation": t.Defaults.Conversation,
		"choice":       t.Defaults.Choice,
		"movement":     t.Defaults.Movement,
		"travel":       t.Defaults.Travel,
		"fallback":     t.Defaults.Fallback,
	} {
		if cat != "" && !g.hasCategory(cat) {
			v.errorf("time.defaults.%s references unknown category %q", kind, cat)
		}
	}

	g.validateSlots(v)
}

// validateSlots checks that the slot windows partition the full day:
// every minute covered exactly once. Gaps and overlaps both make slot
// recomputation nondeterministic.
func (g *Game) validateSlots(v *validator) {
	slots := g.Time.Slots
	if len(slots) == 0 {
		v.errorf("time.slots must define at least one window")
		return
	}

	type interval struct {
		start, end int
		name       string
	}
	var intervals []interval
	parseOK := true

	for _, w := range slots {
		if w.Name == "" {
			v.errorf("slot window with bounds %s-%s has no name", w.Start, w.End)
		} else if !ValidID(w.Name) {
			v.errorf("slot window %q should be lowercase snake_case", w.Name)
		}
		start, err := ParseClock(w.Start)
		if err != nil {
			v.errorf("slot %q start: %v", w.Name, err)
			parseOK = false
			continue
		}
		end, err := ParseClock(w.End)
		if err != nil {
			v.errorf("slot %q end: %v", w.Name, err)
			parseOK = false
			continue
		}
		if start == end || start == MinutesPerDay {
			v.errorf("slot %q has an empty window (%s-%s)", w.Name, w.Start, w.End)
			parseOK = false
			continue
		}
		if end > start {
			intervals = append(intervals, interval{start, end, w.Name})
		} else {
			// Wraps midnight: split into two intervals.
			intervals = append(intervals, interval{start, MinutesPerDay, w.Name})
			intervals = append(intervals, interval{0, end, w.Name})
		}
	}

	if !parseOK {
		return
	}

	sort.Slice(intervals, func(i, j int) bool { return intervals[i].start < intervals[j].start })
	cursor := 0
	for _, iv := range intervals {
		if iv.start > cursor {
			v.errorf("slot windows leave %s-%s uncovered", FormatClock(cursor), FormatClock(iv.start))
		} else if iv.start < cursor {
			v.errorf("slot %q overlaps the previous window at %s", iv.name, FormatClock(iv.start))
		}
		if iv.end > cursor {
			cursor = iv.end
		}
	}
	if cursor < MinutesPerDay {
		v.errorf("slot windows leave %s-24:00 uncovered", FormatClock(cursor))
	}
}

func (g *Game) validateMeters(v *validator) {
	names := make([]string, 0, len(g.Meters))
	for name := range g.Meters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := g.Meters[name]
		if !ValidID(name) {
			v.errorf("meter %q should be lowercase snake_case", name)
		}
		if def.Min > def.Max {
			v.errorf("meter %q has min %d above max %d", name, def.Min, def.Max)
		}
		if def.Default < def.Min || def.Default > def.Max {
			v.errorf("meter %q default %d is outside [%d, %d]", name, def.Default, def.Min, def.Max)
		}
	}
}

func (g *Game) validateCharacters(v *validator) {
	if len(g.Characters) == 0 {
		v.errorf("at least one character is required")
	}
	seen := map[string]bool{}
	for _, c := range g.Characters {
		if !ValidID(c.ID) {
			v.errorf("character id %q should be lowercase snake_case", c.ID)
		}
		if seen[c.ID] {
			v.errorf("duplicate character id %q", c.ID)
		}
		seen[c.ID] = true
		if c.Outfit != "" {
			if _, ok := g.Outfit(c.Outfit); !ok {
				v.errorf("character %q references unknown outfit %q", c.ID, c.Outfit)
			}
		}
		for meter := range c.Meters {
			if _, ok := g.Meters[meter]; !ok {
				v.errorf("character %q overrides unknown meter %q", c.ID, meter)
			}
		}
	}
}

func (g *Game) validateMethods(v *validator) {
	seen := map[string]bool{}
	for _, m := range g.Methods {
		if !ValidID(m.ID) {
			v.errorf("travel method id %q should be lowercase snake_case", m.ID)
		}
		if seen[m.ID] {
			v.errorf("duplicate travel method id %q", m.ID)
		}
		seen[m.ID] = true

		if m.Mode != "active" && m.Mode != "passive" {
			v.errorf("travel method %q mode must be active or passive, got %q", m.ID, m.Mode)
		}

		set := 0
		if m.TimeCost != 0 {
			set++
			if m.TimeCost < 0 {
				v.errorf("travel method %q has negative time_cost", m.ID)
			}
		}
		if m.Speed != 0 {
			set++
			if m.Speed < 0 {
				v.errorf("travel method %q has negative speed", m.ID)
			}
		}
		if m.Category != "" {
			set++
			if !g.hasCategory(m.Category) {
				v.errorf("travel method %q references unknown category %q", m.ID, m.Category)
			}
		}
		if set != 1 {
			v.errorf("travel method %q must set exactly one of time_cost, speed or category", m.ID)
		}
	}
}

func (g *Game) validateZones(v *validator) {
	if len(g.Zones) == 0 {
		v.errorf("at least one zone is required")
	}
	seenZones := map[string]bool{}
	for _, z := range g.Zones {
		if !ValidID(z.ID) {
			v.errorf("zone id %q should be lowercase snake_case", z.ID)
		}
		if seenZones[z.ID] {
			v.errorf("duplicate zone id %q", z.ID)
		}
		seenZones[z.ID] = true

		if z.Movement != nil {
			hasMinutes := z.Movement.Minutes != nil
			hasCategory := z.Movement.Category != ""
			if hasMinutes && hasCategory {
				v.errorf("zone %q sets both movement minutes and category", z.ID)
			}
			if !hasMinutes && !hasCategory {
				v.errorf("zone %q has an empty movement block", z.ID)
			}
			if hasMinutes && *z.Movement.Minutes < 0 {
				v.errorf("zone %q has negative movement minutes", z.ID)
			}
			if hasCategory && !g.hasCategory(z.Movement.Category) {
				v.errorf("zone %q movement references unknown category %q", z.ID, z.Movement.Category)
			}
		} else if g.Time.Defaults.Movement == "" && g.Time.Defaults.Fallback == "" {
			v.errorf("zone %q has no movement cost and no global movement default exists", z.ID)
		}

		if len(z.Locations) == 0 {
			v.errorf("zone %q has no locations", z.ID)
		}
		seenLocs := map[string]bool{}
		for _, loc := range z.Locations {
			if !ValidID(loc.ID) {
				v.errorf("location id %q in zone %q should be lowercase snake_case", loc.ID, z.ID)
			}
			if seenLocs[loc.ID] {
				v.errorf("duplicate location id %q in zone %q", loc.ID, z.ID)
			}
			seenLocs[loc.ID] = true
		}
		for _, loc := range z.Locations {
			for _, exit := range loc.Exits {
				if !seenLocs[exit] {
					v.errorf("location %q in zone %q has exit to unknown location %q", loc.ID, z.ID, exit)
				}
			}
		}

		for _, c := range z.Connects {
			if c.To == z.ID {
				v.errorf("zone %q has a connection to itself", z.ID)
				continue
			}
			dest, ok := g.Zone(c.To)
			if !ok {
				v.errorf("zone %q connects to unknown zone %q", z.ID, c.To)
				continue
			}
			if c.Distance <= 0 {
				v.errorf("connection %s-%s must have positive distance", z.ID, c.To)
			}
			if len(c.Methods) == 0 {
				v.errorf("connection %s-%s permits no travel methods", z.ID, c.To)
			}
			for _, m := range c.Methods {
				if _, ok := g.Method(m); !ok {
					v.errorf("connection %s-%s permits unknown travel method %q", z.ID, c.To, m)
				}
			}
			for _, e := range c.Entries {
				if _, ok := dest.Location(e); !ok {
					v.errorf("connection %s-%s has entry %q not in zone %q", z.ID, c.To, e, c.To)
				}
			}
		}
	}
}

func (g *Game) validateGarments(v *validator) {
	seen := map[string]bool{}
	for _, gar := range g.Garments {
		if !ValidID(gar.ID) {
			v.errorf("garment id %q should be lowercase snake_case", gar.ID)
		}
		if seen[gar.ID] {
			v.errorf("duplicate garment id %q", gar.ID)
		}
		seen[gar.ID] = true

		if len(gar.Slots) == 0 {
			v.errorf("garment %q covers no slots", gar.ID)
		}
		for _, slot := range gar.Slots {
			if !ValidID(slot) {
				v.errorf("garment %q slot %q should be lowercase snake_case", gar.ID, slot)
			}
		}

		if len(gar.States) > 0 {
			hasIntact, hasRemoved := false, false
			for _, s := range gar.States {
				switch s {
				case GarmentIntact:
					hasIntact = true
				case GarmentRemoved:
					hasRemoved = true
				case GarmentOpened, GarmentDisplaced:
				default:
					v.errorf("garment %q has unknown state %q", gar.ID, s)
				}
			}
			if !hasIntact || !hasRemoved {
				v.errorf("garment %q states must include intact and removed", gar.ID)
			}
		}
	}
}

func (g *Game) validateOutfits(v *validator) {
	seen := map[string]bool{}
	for _, o := range g.Outfits {
		if !ValidID(o.ID) {
			v.errorf("outfit id %q should be lowercase snake_case", o.ID)
		}
		if seen[o.ID] {
			v.errorf("duplicate outfit id %q", o.ID)
		}
		seen[o.ID] = true

		if len(o.Items) == 0 {
			v.errorf("outfit %q has no items", o.ID)
		}
		slotOwner := map[string]string{}
		for _, item := range o.Items {
			gar, ok := g.Garment(item)
			if !ok {
				v.errorf("outfit %q references unknown garment %q", o.ID, item)
				continue
			}
			for _, slot := range gar.Slots {
				if owner, taken := slotOwner[slot]; taken {
					v.errorf("outfit %q items %q and %q both cover slot %q", o.ID, owner, item, slot)
				}
				slotOwner[slot] = item
			}
		}

		states := make([]string, 0, len(o.States))
		for slot := range o.States {
			states = append(states, slot)
		}
		sort.Strings(states)
		for _, slot := range states {
			state := o.States[slot]
			owner, covered := slotOwner[slot]
			if !covered {
				v.errorf("outfit %q sets state for slot %q that no item covers", o.ID, slot)
				continue
			}
			if gar, ok := g.Garment(owner); ok {
				if !gar.SupportsState(state) {
					v.errorf("outfit %q sets slot %q to state %q unsupported by garment %q", o.ID, slot, state, owner)
				}
				if gar.Locked && state == GarmentRemoved {
					v.errorf("outfit %q sets locked garment %q to removed", o.ID, owner)
				}
			}
		}
	}
}

func (g *Game) validateStart(v *validator) {
	zone, ok := g.Zone(g.Start.Zone)
	if !ok {
		v.errorf("start.zone %q does not exist", g.Start.Zone)
	} else if _, ok := zone.Location(g.Start.Location); !ok {
		v.errorf("start.location %q is not in zone %q", g.Start.Location, g.Start.Zone)
	}
	if g.Start.Player == "" {
		v.errorf("start.player is required")
	} else if _, ok := g.Character(g.Start.Player); !ok {
		v.errorf("start.player %q is not a defined character", g.Start.Player)
	}
}
