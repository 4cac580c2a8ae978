// Package movement validates and prices moves across the world
// topology: local moves between locations of one zone, and travel
// across zone connections.
package movement

import (
	"log/slog"
	"math"

	"github.com/letser/plotplay/pkg/game"
)

// Cost is the time price of a move before modifiers are applied. Either
// Minutes or Category is set; when both are empty the price defers to
// the global movement default. Exempt marks passive travel, which
// ignores time modifiers.
type Cost struct {
	Minutes  *int
	Category string
	Exempt   bool
}

// Plan is a validated move: where the traveller ends up, in canonical
// ids, and what getting there costs.
type Plan struct {
	Zone     string
	Location string
	Cost     Cost
}

// Engine checks movement requests against a game's topology and prices
// them. It never mutates state; a rejected request returns false before
// anything else happens.
type Engine struct {
	game   *game.Game
	logger *slog.Logger
}

// NewEngine creates a movement engine for a loaded game.
func NewEngine(g *game.Game, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{game: g, logger: logger}
}

// LocalMove validates a move between two locations of one zone. The
// move must follow an exit from the origin location.
func (e *Engine) LocalMove(zone, from, to string) (Plan, bool) {
	z, ok := e.game.Zone(zone)
	if !ok {
		e.logger.Warn("Unknown zone", "zone", zone)
		return Plan{}, false
	}
	origin, ok := z.Location(from)
	if !ok {
		e.logger.Warn("Unknown location", "zone", z.ID, "location", from)
		return Plan{}, false
	}
	dest, ok := z.Location(to)
	if !ok {
		e.logger.Warn("Unknown location", "zone", z.ID, "location", to)
		return Plan{}, false
	}
	if !origin.HasExit(dest.ID) {
		e.logger.Warn("No exit between locations", "zone", z.ID, "from", origin.ID, "to", dest.ID)
		return Plan{}, false
	}
	return Plan{Zone: z.ID, Location: dest.ID, Cost: localCost(z)}, true
}

// localCost prices a local move from the zone's flat setting. A zone
// without one defers to the movement default category.
func localCost(z *game.Zone) Cost {
	if z.Movement == nil {
		return Cost{}
	}
	if z.Movement.Minutes != nil {
		m := *z.Movement.Minutes
		return Cost{Minutes: &m}
	}
	return Cost{Category: z.Movement.Category}
}

// Travel validates an inter-zone trip. The method must be permitted on
// the connection between the zones, and when the connection restricts
// arrival points the entry must name one of them. On an unrestricted
// connection an empty entry lands at the destination's first location.
func (e *Engine) Travel(fromZone, toZone, method, entry string) (Plan, bool) {
	from, ok := e.game.Zone(fromZone)
	if !ok {
		e.logger.Warn("Unknown zone", "zone", fromZone)
		return Plan{}, false
	}
	dest, ok := e.game.Zone(toZone)
	if !ok {
		e.logger.Warn("Unknown zone", "zone", toZone)
		return Plan{}, false
	}
	conn, ok := from.Connection(dest.ID)
	if !ok {
		e.logger.Warn("Zones are not connected", "from", from.ID, "to", dest.ID)
		return Plan{}, false
	}
	m, ok := e.game.Method(method)
	if !ok {
		e.logger.Warn("Unknown travel method", "method", method)
		return Plan{}, false
	}
	if !conn.PermitsMethod(m.ID) {
		e.logger.Warn("Method not permitted on connection", "from", from.ID, "to", dest.ID, "method", m.ID)
		return Plan{}, false
	}

	arrival, ok := e.resolveEntry(dest, conn, entry)
	if !ok {
		return Plan{}, false
	}
	return Plan{Zone: dest.ID, Location: arrival, Cost: methodCost(m, conn.Distance)}, true
}

// resolveEntry picks the arrival location for a trip.
func (e *Engine) resolveEntry(dest *game.Zone, conn *game.Connection, entry string) (string, bool) {
	if entry == "" {
		if len(conn.Entries) > 0 {
			e.logger.Warn("Connection requires an entry location", "to", dest.ID, "entries", conn.Entries)
			return "", false
		}
		return dest.Locations[0].ID, true
	}
	loc, ok := dest.Location(entry)
	if !ok {
		e.logger.Warn("Unknown entry location", "zone", dest.ID, "entry", entry)
		return "", false
	}
	if !conn.PermitsEntry(loc.ID) {
		e.logger.Warn("Entry not permitted on connection", "to", dest.ID, "entry", loc.ID)
		return "", false
	}
	return loc.ID, true
}

// methodCost prices a trip by the method's single cost field: minutes
// per distance unit, speed in units per hour, or a category.
func methodCost(m *game.TravelMethod, distance float64) Cost {
	cost := Cost{Exempt: m.Passive()}
	switch {
	case m.TimeCost > 0:
		minutes := int(math.Round(distance * m.TimeCost))
		cost.Minutes = &minutes
	case m.Speed > 0:
		minutes := int(math.Round(distance / m.Speed * 60))
		cost.Minutes = &minutes
	default:
		cost.Category = m.Category
	}
	return cost
}
